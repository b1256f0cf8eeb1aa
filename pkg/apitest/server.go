// Package apitest runs an in-process fake of the Socratis backend for tests.
// It implements the REST surface the client consumes, mints real HS256 tokens,
// and advances essay statuses through a configurable script so polling tests
// observe genuine pendente → analisando → concluida transitions.
package apitest

import (
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/socratis/socratis-go/pkg/analysis"
	"github.com/socratis/socratis-go/pkg/essay"
	"github.com/socratis/socratis-go/pkg/session"
)

var jwtSecret = []byte("apitest-secret")

type userRecord struct {
	user  session.User
	senha string
}

type essayRecord struct {
	essay  essay.Essay
	script []essay.Status
	reads  int
}

// Server is the fake backend. Zero-value fields are sane: new essays follow
// DefaultScript and analyses are free-tier unless Premium is set.
type Server struct {
	httpServer *httptest.Server

	mu       sync.Mutex
	users    map[string]*userRecord // keyed by email
	byID     map[string]*userRecord
	essays   map[string]*essayRecord
	analyses map[string]*analysis.Analysis

	// Script is the status sequence a newly submitted essay walks through,
	// one step per status read. The last entry repeats forever.
	Script []essay.Status
	// Premium makes generated analyses carry the full rubric breakdown.
	Premium bool
	// ForceStatus, when non-zero, makes every request fail with that HTTP
	// status and ForceDetail as the detail payload.
	ForceStatus int
	ForceDetail string
}

// DefaultScript is the usual lifecycle of a submitted essay.
var DefaultScript = []essay.Status{
	essay.StatusPending,
	essay.StatusAnalyzing,
	essay.StatusCompleted,
}

// New starts the fake backend. Callers must Close it.
func New() *Server {
	s := &Server{
		users:    make(map[string]*userRecord),
		byID:     make(map[string]*userRecord),
		essays:   make(map[string]*essayRecord),
		analyses: make(map[string]*analysis.Analysis),
		Script:   DefaultScript,
	}

	r := chi.NewRouter()
	r.Use(s.faults)
	r.Post("/usuarios/cadastro", s.handleCadastro)
	r.Post("/usuarios/login", s.handleLogin)
	r.Get("/usuarios/me", s.auth(s.handleMe))
	r.Post("/redacoes", s.auth(s.handleSubmit))
	r.Get("/redacoes", s.auth(s.handleListEssays))
	r.Get("/redacoes/{redacaoID}", s.auth(s.handleGetEssay))
	r.Get("/analises", s.auth(s.handleListAnalyses))
	r.Get("/analises/estatisticas/evolucao", s.auth(s.handleEvolution))
	r.Get("/analises/{redacaoID}", s.auth(s.handleGetAnalysis))

	s.httpServer = httptest.NewServer(r)
	return s
}

// URL is the base URL clients should be pointed at.
func (s *Server) URL() string { return s.httpServer.URL }

func (s *Server) Close() { s.httpServer.Close() }

// SeedUser registers an account directly and returns a valid token for it.
func (s *Server) SeedUser(email, nome, senha string) (session.User, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec := s.addUserLocked(email, nome, senha)
	return rec.user, mintToken(rec.user.ID)
}

// SetAnalysis overrides the generated analysis for an essay.
func (s *Server) SetAnalysis(redacaoID string, a *analysis.Analysis) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.analyses[redacaoID] = a
}

// EssayCount reports how many essays were submitted, for assertion purposes.
func (s *Server) EssayCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.essays)
}

func (s *Server) addUserLocked(email, nome, senha string) *userRecord {
	rec := &userRecord{
		user: session.User{
			ID:           uuid.NewString(),
			Email:        email,
			Nome:         nome,
			DataCriacao:  time.Now().UTC(),
			LimiteDiario: 5,
		},
		senha: senha,
	}
	s.users[email] = rec
	s.byID[rec.user.ID] = rec
	return rec
}

func mintToken(userID string) string {
	claims := jwt.MapClaims{
		"sub": userID,
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(24 * time.Hour).Unix(),
	}
	token, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(jwtSecret)
	return token
}

// faults short-circuits every request when fault injection is armed.
func (s *Server) faults(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		status, detail := s.ForceStatus, s.ForceDetail
		s.mu.Unlock()
		if status != 0 {
			writeDetail(w, status, detail)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// auth validates the bearer token and resolves the user.
func (s *Server) auth(next func(http.ResponseWriter, *http.Request, *userRecord)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		tokenString := strings.TrimPrefix(header, "Bearer ")
		if header == "" || tokenString == header {
			writeDetail(w, http.StatusUnauthorized, "Não autenticado")
			return
		}
		parsed, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
			return jwtSecret, nil
		})
		if err != nil || !parsed.Valid {
			writeDetail(w, http.StatusUnauthorized, "Token inválido")
			return
		}
		sub, _ := parsed.Claims.GetSubject()
		s.mu.Lock()
		rec := s.byID[sub]
		s.mu.Unlock()
		if rec == nil {
			writeDetail(w, http.StatusUnauthorized, "Usuário não encontrado")
			return
		}
		next(w, r, rec)
	}
}

func (s *Server) handleCadastro(w http.ResponseWriter, r *http.Request) {
	var data session.SignupData
	if err := json.NewDecoder(r.Body).Decode(&data); err != nil {
		writeDetail(w, http.StatusBadRequest, "Corpo inválido")
		return
	}
	s.mu.Lock()
	if _, exists := s.users[data.Email]; exists {
		s.mu.Unlock()
		writeDetail(w, http.StatusBadRequest, "Email já cadastrado")
		return
	}
	rec := s.addUserLocked(data.Email, data.Nome, data.Senha)
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, session.TokenResponse{
		AccessToken: mintToken(rec.user.ID),
		TokenType:   "bearer",
		Usuario:     rec.user,
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var creds session.Credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		writeDetail(w, http.StatusBadRequest, "Corpo inválido")
		return
	}
	s.mu.Lock()
	rec := s.users[creds.Email]
	s.mu.Unlock()
	if rec == nil || rec.senha != creds.Senha {
		writeDetail(w, http.StatusUnauthorized, "Email ou senha incorretos")
		return
	}
	writeJSON(w, http.StatusOK, session.TokenResponse{
		AccessToken: mintToken(rec.user.ID),
		TokenType:   "bearer",
		Usuario:     rec.user,
	})
}

func (s *Server) handleMe(w http.ResponseWriter, _ *http.Request, rec *userRecord) {
	writeJSON(w, http.StatusOK, rec.user)
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request, rec *userRecord) {
	var submit essay.Submit
	if err := json.NewDecoder(r.Body).Decode(&submit); err != nil {
		writeDetail(w, http.StatusBadRequest, "Corpo inválido")
		return
	}
	if len([]rune(submit.Texto)) < essay.MinTextoLength {
		writeDetail(w, http.StatusBadRequest, "O texto deve ter no mínimo 100 caracteres")
		return
	}
	if len([]rune(submit.Texto)) > essay.MaxTextoLength {
		writeDetail(w, http.StatusBadRequest, "O texto deve ter no máximo 10.000 caracteres")
		return
	}

	s.mu.Lock()
	script := s.Script
	if len(script) == 0 {
		script = DefaultScript
	}
	e := essay.Essay{
		ID:            uuid.NewString(),
		UsuarioID:     rec.user.ID,
		Titulo:        submit.Titulo,
		Texto:         submit.Texto,
		Tema:          submit.Tema,
		Tipo:          submit.Tipo,
		DataSubmissao: time.Now().UTC(),
		Status:        script[0],
	}
	s.essays[e.ID] = &essayRecord{essay: e, script: script}
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, e)
}

func (s *Server) handleGetEssay(w http.ResponseWriter, r *http.Request, rec *userRecord) {
	id := chi.URLParam(r, "redacaoID")
	s.mu.Lock()
	er := s.essays[id]
	if er == nil {
		s.mu.Unlock()
		writeDetail(w, http.StatusNotFound, "Redação não encontrada")
		return
	}
	if er.essay.UsuarioID != rec.user.ID {
		s.mu.Unlock()
		writeDetail(w, http.StatusForbidden, "Você não tem permissão para acessar esta redação")
		return
	}
	// One script step per read; the final status sticks.
	step := er.reads
	if step >= len(er.script) {
		step = len(er.script) - 1
	}
	er.reads++
	er.essay.Status = er.script[step]
	if er.essay.Status == essay.StatusCompleted && er.essay.NotaEnem == nil {
		a := s.analysisForLocked(&er.essay)
		notaEnem := math.Round(a.AvaliacaoFinal.NotaGeral * 100)
		if a.AvaliacaoFinal.NotaEnem != nil {
			notaEnem = float64(*a.AvaliacaoFinal.NotaEnem)
		}
		er.essay.NotaEnem = &notaEnem
		er.essay.NotaGeral = &a.AvaliacaoFinal.NotaGeral
	}
	out := er.essay
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleListEssays(w http.ResponseWriter, r *http.Request, rec *userRecord) {
	limite := queryInt(r, "limite", 10)
	s.mu.Lock()
	out := make([]essay.Essay, 0)
	for _, er := range s.essays {
		if er.essay.UsuarioID == rec.user.ID && len(out) < limite {
			out = append(out, er.essay)
		}
	}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetAnalysis(w http.ResponseWriter, r *http.Request, rec *userRecord) {
	id := chi.URLParam(r, "redacaoID")
	s.mu.Lock()
	er := s.essays[id]
	if er == nil || er.essay.Status != essay.StatusCompleted {
		s.mu.Unlock()
		writeDetail(w, http.StatusNotFound, "Análise não encontrada")
		return
	}
	a := s.analysisForLocked(&er.essay)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, a)
}

func (s *Server) handleListAnalyses(w http.ResponseWriter, r *http.Request, rec *userRecord) {
	limite := queryInt(r, "limite", 10)
	s.mu.Lock()
	out := make([]analysis.Summary, 0)
	for id, a := range s.analyses {
		if len(out) >= limite {
			break
		}
		out = append(out, analysis.Summary{
			RedacaoID:   id,
			NotaGeral:   a.AvaliacaoFinal.NotaGeral,
			NotaEnem:    a.AvaliacaoFinal.NotaEnem,
			DataAnalise: a.DataAnalise,
		})
	}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleEvolution(w http.ResponseWriter, _ *http.Request, rec *userRecord) {
	s.mu.Lock()
	total := len(s.analyses)
	premium := s.Premium
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, analysis.Evolution{
		TotalAnalises: total,
		MediaGeral:    7.2,
		MelhorNota:    8.5,
		PiorNota:      6.0,
		Premium:       premium,
	})
}

// analysisForLocked returns (creating on first use) the analysis of an essay.
func (s *Server) analysisForLocked(e *essay.Essay) *analysis.Analysis {
	if a, ok := s.analyses[e.ID]; ok {
		return a
	}
	a := GenerateAnalysis(e.ID, s.Premium)
	s.analyses[e.ID] = a
	return a
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

func queryInt(r *http.Request, key string, def int) int {
	if v, err := strconv.Atoi(r.URL.Query().Get(key)); err == nil && v > 0 {
		return v
	}
	return def
}
