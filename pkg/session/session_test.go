package session_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/socratis/socratis-go/pkg/apitest"
	"github.com/socratis/socratis-go/pkg/session"
)

func newTestSession(t *testing.T) (*session.Session, *apitest.Server, *session.MemStorage) {
	t.Helper()
	srv := apitest.New()
	t.Cleanup(srv.Close)
	storage := session.NewMemStorage()
	return session.New(storage, srv.URL(), 5*time.Second), srv, storage
}

func TestLoginAuthenticates(t *testing.T) {
	sess, srv, storage := newTestSession(t)
	srv.SeedUser("ana@example.com", "Ana", "senha123")

	if sess.IsAuthenticated() {
		t.Fatal("fresh session should not be authenticated")
	}

	user, err := sess.Login(context.Background(), session.Credentials{
		Email: "ana@example.com",
		Senha: "senha123",
	})
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if user.Nome != "Ana" {
		t.Errorf("Nome = %q, want Ana", user.Nome)
	}
	if !sess.IsAuthenticated() {
		t.Error("session should be authenticated after login")
	}
	if tok, ok := storage.Get("access_token"); !ok || tok == "" {
		t.Error("access_token not persisted")
	}
	if _, ok := storage.Get("current_user"); !ok {
		t.Error("current_user not persisted")
	}
}

func TestLoginWrongPassword(t *testing.T) {
	sess, srv, _ := newTestSession(t)
	srv.SeedUser("ana@example.com", "Ana", "senha123")

	_, err := sess.Login(context.Background(), session.Credentials{
		Email: "ana@example.com",
		Senha: "errada",
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if sess.IsAuthenticated() {
		t.Error("failed login must not authenticate")
	}
}

func TestCadastro(t *testing.T) {
	sess, _, _ := newTestSession(t)

	user, err := sess.Cadastro(context.Background(), session.SignupData{
		Email: "novo@example.com",
		Nome:  "Novo Usuário",
		Senha: "senha123",
	})
	if err != nil {
		t.Fatalf("Cadastro failed: %v", err)
	}
	if user.ID == "" {
		t.Error("user ID not assigned")
	}
	if !sess.IsAuthenticated() {
		t.Error("session should be authenticated after signup")
	}
}

func TestCadastroDuplicateEmail(t *testing.T) {
	sess, srv, _ := newTestSession(t)
	srv.SeedUser("ana@example.com", "Ana", "senha123")

	_, err := sess.Cadastro(context.Background(), session.SignupData{
		Email: "ana@example.com",
		Nome:  "Outra Ana",
		Senha: "senha456",
	})
	if err == nil {
		t.Fatal("expected duplicate email error")
	}
}

func TestPerfilRefreshesUser(t *testing.T) {
	sess, srv, _ := newTestSession(t)
	srv.SeedUser("ana@example.com", "Ana", "senha123")

	if _, err := sess.Login(context.Background(), session.Credentials{
		Email: "ana@example.com", Senha: "senha123",
	}); err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	user, err := sess.Perfil(context.Background())
	if err != nil {
		t.Fatalf("Perfil failed: %v", err)
	}
	if user.Email != "ana@example.com" {
		t.Errorf("Email = %q", user.Email)
	}
}

func TestPerfilWithoutToken(t *testing.T) {
	sess, _, _ := newTestSession(t)

	if _, err := sess.Perfil(context.Background()); err == nil {
		t.Fatal("expected error without authentication")
	}
}

func TestLogoutClearsState(t *testing.T) {
	sess, srv, storage := newTestSession(t)
	srv.SeedUser("ana@example.com", "Ana", "senha123")

	if _, err := sess.Login(context.Background(), session.Credentials{
		Email: "ana@example.com", Senha: "senha123",
	}); err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	if err := sess.Logout(); err != nil {
		t.Fatalf("Logout failed: %v", err)
	}
	if sess.IsAuthenticated() {
		t.Error("session still authenticated after logout")
	}
	if _, ok := storage.Get("access_token"); ok {
		t.Error("access_token survived logout")
	}
	if _, ok := storage.Get("current_user"); ok {
		t.Error("current_user survived logout")
	}
}

func TestRehydrateFromStorage(t *testing.T) {
	srv := apitest.New()
	defer srv.Close()
	storage := session.NewMemStorage()

	first := session.New(storage, srv.URL(), 5*time.Second)
	srv.SeedUser("ana@example.com", "Ana", "senha123")
	if _, err := first.Login(context.Background(), session.Credentials{
		Email: "ana@example.com", Senha: "senha123",
	}); err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	second := session.New(storage, srv.URL(), 5*time.Second)
	if !second.IsAuthenticated() {
		t.Error("rehydrated session should be authenticated")
	}
	if second.CurrentUser() == nil || second.CurrentUser().Nome != "Ana" {
		t.Errorf("rehydrated user = %+v", second.CurrentUser())
	}
}

func TestRehydrateDropsCorruptUser(t *testing.T) {
	storage := session.NewMemStorage()
	storage.Set("current_user", "{not json")

	sess := session.New(storage, "http://localhost:1", time.Second)
	if sess.CurrentUser() != nil {
		t.Error("corrupt cache should yield nil user")
	}
	if _, ok := storage.Get("current_user"); ok {
		t.Error("corrupt cache should be deleted")
	}
}

func TestTokenExpiresAt(t *testing.T) {
	sess, srv, _ := newTestSession(t)
	srv.SeedUser("ana@example.com", "Ana", "senha123")

	if _, ok := sess.TokenExpiresAt(); ok {
		t.Error("no token, no expiry")
	}

	if _, err := sess.Login(context.Background(), session.Credentials{
		Email: "ana@example.com", Senha: "senha123",
	}); err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	exp, ok := sess.TokenExpiresAt()
	if !ok {
		t.Fatal("expected an expiry on the minted token")
	}
	if !exp.After(time.Now()) {
		t.Errorf("expiry %v is in the past", exp)
	}
}

func TestTheme(t *testing.T) {
	storage := session.NewMemStorage()
	sess := session.New(storage, "http://localhost:1", time.Second)

	if got := sess.Theme(); got != session.ThemeLight {
		t.Errorf("default theme = %q, want %q", got, session.ThemeLight)
	}
	if err := sess.SetTheme(session.ThemeDark); err != nil {
		t.Fatalf("SetTheme failed: %v", err)
	}
	if got := sess.Theme(); got != session.ThemeDark {
		t.Errorf("theme = %q, want %q", got, session.ThemeDark)
	}
	if err := sess.SetTheme("azul"); err == nil {
		t.Error("invalid theme should be rejected")
	}

	// Garbage in storage falls back to the default.
	storage.Set("socratis-theme", "xyz")
	if got := sess.Theme(); got != session.ThemeLight {
		t.Errorf("theme with garbage stored = %q, want %q", got, session.ThemeLight)
	}
}

func TestUserJSONRoundtrip(t *testing.T) {
	u := session.User{ID: "u1", Email: "ana@example.com", Nome: "Ana", LimiteDiario: 5}
	data, err := json.Marshal(u)
	if err != nil {
		t.Fatal(err)
	}
	var back session.User
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatal(err)
	}
	if back != u {
		t.Errorf("roundtrip mismatch: %+v != %+v", back, u)
	}
}
