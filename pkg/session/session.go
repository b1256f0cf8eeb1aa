// Package session holds the authenticated state of the socratis client: the
// bearer token, the cached user profile and the theme preference, all mirrored
// to persistent storage under fixed keys.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/socratis/socratis-go/pkg/api"
)

// Storage keys. These match the keys the original web client used in browser
// storage, so the values survive restarts until an explicit logout.
const (
	accessTokenKey = "access_token"
	currentUserKey = "current_user"
	themeKey       = "socratis-theme"
)

// User is the backend's user profile.
type User struct {
	ID            string    `json:"id"`
	Email         string    `json:"email"`
	Nome          string    `json:"nome"`
	DataCriacao   time.Time `json:"data_criacao"`
	CorrecoesHoje int       `json:"correcoes_realizadas_hoje"`
	LimiteDiario  int       `json:"limite_diario"`
}

// Credentials is the login request body.
type Credentials struct {
	Email string `json:"email"`
	Senha string `json:"senha"`
}

// SignupData is the account-creation request body.
type SignupData struct {
	Email string `json:"email"`
	Nome  string `json:"nome"`
	Senha string `json:"senha"`
}

// TokenResponse is what login and signup return.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	Usuario     User   `json:"usuario"`
}

// tokenStore adapts Storage to the api.TokenStore interface.
type tokenStore struct {
	storage Storage
}

func (t tokenStore) Token() string {
	v, _ := t.storage.Get(accessTokenKey)
	return v
}

func (t tokenStore) SetToken(token string) error {
	if token == "" {
		return t.storage.Delete(accessTokenKey)
	}
	return t.storage.Set(accessTokenKey, token)
}

// Session is the explicitly constructed session object. It owns the api.Client
// so every request made through it carries the current token.
type Session struct {
	storage Storage
	client  *api.Client
	user    *User
}

// New builds a Session over the given storage and rehydrates the cached user
// profile if one was persisted by a previous run.
func New(storage Storage, apiURL string, timeout time.Duration) *Session {
	s := &Session{
		storage: storage,
		client:  api.NewClient(apiURL, timeout, tokenStore{storage: storage}),
	}
	if raw, ok := storage.Get(currentUserKey); ok {
		var u User
		if err := json.Unmarshal([]byte(raw), &u); err != nil {
			// Corrupt cache; drop it rather than carry a broken profile.
			_ = storage.Delete(currentUserKey)
		} else {
			s.user = &u
		}
	}
	return s
}

// Client exposes the API client for the other services.
func (s *Session) Client() *api.Client { return s.client }

// Token returns the stored bearer token, or "".
func (s *Session) Token() string {
	v, _ := s.storage.Get(accessTokenKey)
	return v
}

// CurrentUser returns the cached profile, or nil.
func (s *Session) CurrentUser() *User { return s.user }

// IsAuthenticated reports whether both a token and a cached user are present.
func (s *Session) IsAuthenticated() bool {
	return s.Token() != "" && s.user != nil
}

// Login exchanges credentials for a token and profile. The token is committed
// before the user so IsAuthenticated never observes a user without a token.
func (s *Session) Login(ctx context.Context, creds Credentials) (*User, error) {
	var resp TokenResponse
	if err := s.client.Post(ctx, "/usuarios/login", creds, &resp); err != nil {
		return nil, err
	}
	if err := s.commit(resp); err != nil {
		return nil, err
	}
	return s.user, nil
}

// Cadastro creates an account and logs the new user in.
func (s *Session) Cadastro(ctx context.Context, data SignupData) (*User, error) {
	var resp TokenResponse
	if err := s.client.Post(ctx, "/usuarios/cadastro", data, &resp); err != nil {
		return nil, err
	}
	if err := s.commit(resp); err != nil {
		return nil, err
	}
	return s.user, nil
}

func (s *Session) commit(resp TokenResponse) error {
	if err := s.storage.Set(accessTokenKey, resp.AccessToken); err != nil {
		return err
	}
	return s.setUser(resp.Usuario)
}

// Perfil refreshes the cached profile from the backend.
func (s *Session) Perfil(ctx context.Context) (*User, error) {
	var u User
	if err := s.client.Get(ctx, "/usuarios/me", &u); err != nil {
		return nil, err
	}
	if err := s.setUser(u); err != nil {
		return nil, err
	}
	return s.user, nil
}

func (s *Session) setUser(u User) error {
	data, err := json.Marshal(u)
	if err != nil {
		return err
	}
	if err := s.storage.Set(currentUserKey, string(data)); err != nil {
		return err
	}
	s.user = &u
	return nil
}

// Logout clears the token and the cached user. No network round-trip.
func (s *Session) Logout() error {
	if err := s.storage.Delete(accessTokenKey); err != nil {
		return err
	}
	if err := s.storage.Delete(currentUserKey); err != nil {
		return err
	}
	s.user = nil
	return nil
}

// TokenExpiresAt decodes the exp claim of the stored JWT without verifying the
// signature (the client has no signing key). Returns false when there is no
// token or it carries no expiry.
func (s *Session) TokenExpiresAt() (time.Time, bool) {
	token := s.Token()
	if token == "" {
		return time.Time{}, false
	}
	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return time.Time{}, false
	}
	exp, err := parsed.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

// Theme modes.
const (
	ThemeLight = "claro"
	ThemeDark  = "escuro"
)

// Theme returns the persisted theme preference, defaulting to light.
func (s *Session) Theme() string {
	if v, ok := s.storage.Get(themeKey); ok && (v == ThemeLight || v == ThemeDark) {
		return v
	}
	return ThemeLight
}

// SetTheme persists the theme preference. Invalid modes are rejected.
func (s *Session) SetTheme(mode string) error {
	if mode != ThemeLight && mode != ThemeDark {
		return fmt.Errorf("tema inválido %q: use %q ou %q", mode, ThemeLight, ThemeDark)
	}
	return s.storage.Set(themeKey, mode)
}
