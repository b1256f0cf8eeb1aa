package essay_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/socratis/socratis-go/pkg/api"
	"github.com/socratis/socratis-go/pkg/apitest"
	"github.com/socratis/socratis-go/pkg/essay"
	"github.com/socratis/socratis-go/pkg/session"
)

var longText = strings.Repeat("A educação transforma a sociedade brasileira. ", 12)

func validSubmit() essay.Submit {
	return essay.Submit{
		Titulo: "A educação no Brasil",
		Texto:  longText,
		Tema:   "livre",
		Tipo:   essay.TipoDissertativa,
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*essay.Submit)
		wantField string
		wantMsg   string
	}{
		{
			name:   "valid",
			mutate: func(s *essay.Submit) {},
		},
		{
			name:      "empty title",
			mutate:    func(s *essay.Submit) { s.Titulo = "" },
			wantField: "titulo",
			wantMsg:   "O título é obrigatório",
		},
		{
			name:      "short title",
			mutate:    func(s *essay.Submit) { s.Titulo = "Oi" },
			wantField: "titulo",
			wantMsg:   "O título deve ter no mínimo 5 caracteres",
		},
		{
			name:      "whitespace title",
			mutate:    func(s *essay.Submit) { s.Titulo = "   " },
			wantField: "titulo",
			wantMsg:   "O título é obrigatório",
		},
		{
			name:      "empty text",
			mutate:    func(s *essay.Submit) { s.Texto = "" },
			wantField: "redacao",
			wantMsg:   "A redação é obrigatória",
		},
		{
			name:      "short text",
			mutate:    func(s *essay.Submit) { s.Texto = strings.Repeat("a", 50) },
			wantField: "redacao",
			wantMsg:   "A redação deve ter no mínimo 100 caracteres. Você digitou 50 caracteres.",
		},
		{
			name:      "long text",
			mutate:    func(s *essay.Submit) { s.Texto = strings.Repeat("a", 10001) },
			wantField: "redacao",
			wantMsg:   "A redação não pode ter mais de 10000 caracteres. Você digitou 10001 caracteres.",
		},
		{
			name:      "invalid tipo",
			mutate:    func(s *essay.Submit) { s.Tipo = "haiku" },
			wantField: "tipo",
		},
		{
			name:   "empty tipo allowed",
			mutate: func(s *essay.Submit) { s.Tipo = "" },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := validSubmit()
			tt.mutate(&s)
			errs := essay.Validate(s)

			if tt.wantField == "" {
				if len(errs) != 0 {
					t.Fatalf("Validate = %v, want none", errs)
				}
				return
			}
			if len(errs) != 1 {
				t.Fatalf("Validate returned %d errors, want 1: %v", len(errs), errs)
			}
			if errs[0].Field != tt.wantField {
				t.Errorf("Field = %q, want %q", errs[0].Field, tt.wantField)
			}
			if tt.wantMsg != "" && errs[0].Message != tt.wantMsg {
				t.Errorf("Message = %q, want %q", errs[0].Message, tt.wantMsg)
			}
		})
	}
}

func TestValidateCountsRunes(t *testing.T) {
	// 99 multi-byte characters must still fail the 100-character minimum.
	s := validSubmit()
	s.Texto = strings.Repeat("ã", 99)
	errs := essay.Validate(s)
	if len(errs) != 1 || errs[0].Field != "redacao" {
		t.Fatalf("Validate = %v", errs)
	}
	if !strings.Contains(errs[0].Message, "Você digitou 99 caracteres") {
		t.Errorf("Message = %q, want rune count 99", errs[0].Message)
	}

	s.Texto = strings.Repeat("ã", 100)
	if errs := essay.Validate(s); len(errs) != 0 {
		t.Errorf("100 runes should validate, got %v", errs)
	}
}

func TestValidateReportsAllViolations(t *testing.T) {
	errs := essay.Validate(essay.Submit{Titulo: "", Texto: "", Tipo: "x"})
	if len(errs) != 3 {
		t.Fatalf("Validate returned %d errors, want 3: %v", len(errs), errs)
	}
}

func TestWarnings(t *testing.T) {
	s := validSubmit()
	s.Texto = strings.Repeat("a", 200)
	warnings := essay.Warnings(s)
	if len(warnings) != 1 {
		t.Fatalf("Warnings = %v, want one", warnings)
	}
	if !strings.Contains(warnings[0], "pelo menos 500 caracteres") {
		t.Errorf("warning = %q", warnings[0])
	}

	s.Texto = strings.Repeat("a", 500)
	if w := essay.Warnings(s); len(w) != 0 {
		t.Errorf("500 characters should not warn, got %v", w)
	}
	s.Texto = strings.Repeat("a", 50)
	if w := essay.Warnings(s); len(w) != 0 {
		t.Errorf("below the blocking minimum is not a warning, got %v", w)
	}
}

func TestStatus(t *testing.T) {
	terminal := map[essay.Status]bool{
		essay.StatusPending:   false,
		essay.StatusAnalyzing: false,
		essay.StatusCompleted: true,
		essay.StatusError:     true,
	}
	for status, want := range terminal {
		if got := status.IsTerminal(); got != want {
			t.Errorf("%s.IsTerminal() = %v, want %v", status, got, want)
		}
	}
	if essay.StatusCompleted.Label() != "Concluída" {
		t.Errorf("Label = %q", essay.StatusCompleted.Label())
	}
	if essay.Status("qualquer").Label() != "Pendente" {
		t.Errorf("unknown status should label as Pendente")
	}
}

func newTestService(t *testing.T) (*essay.Service, *apitest.Server) {
	t.Helper()
	srv := apitest.New()
	t.Cleanup(srv.Close)

	storage := session.NewMemStorage()
	sess := session.New(storage, srv.URL(), 5*time.Second)
	srv.SeedUser("ana@example.com", "Ana", "senha123")
	if _, err := sess.Login(context.Background(), session.Credentials{
		Email: "ana@example.com", Senha: "senha123",
	}); err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	svc := essay.NewService(sess.Client())
	svc.PollInterval = 5 * time.Millisecond
	return svc, srv
}

func TestSubmeterAndObter(t *testing.T) {
	svc, srv := newTestService(t)
	ctx := context.Background()

	e, err := svc.Submeter(ctx, validSubmit())
	if err != nil {
		t.Fatalf("Submeter failed: %v", err)
	}
	if e.ID == "" {
		t.Fatal("no ID assigned")
	}
	if e.Status != essay.StatusPending {
		t.Errorf("initial status = %s, want %s", e.Status, essay.StatusPending)
	}
	if srv.EssayCount() != 1 {
		t.Errorf("EssayCount = %d", srv.EssayCount())
	}

	got, err := svc.Obter(ctx, e.ID)
	if err != nil {
		t.Fatalf("Obter failed: %v", err)
	}
	if got.ID != e.ID || got.Titulo != e.Titulo {
		t.Errorf("Obter returned %+v", got)
	}
}

func TestSubmeterBackendRejection(t *testing.T) {
	svc, _ := newTestService(t)

	s := validSubmit()
	s.Texto = strings.Repeat("a", 10)
	if _, err := svc.Submeter(context.Background(), s); err == nil {
		t.Fatal("expected backend rejection")
	}
}

func TestAguardarProcessamento(t *testing.T) {
	svc, srv := newTestService(t)
	srv.Script = []essay.Status{
		essay.StatusPending,
		essay.StatusAnalyzing,
		essay.StatusAnalyzing,
		essay.StatusCompleted,
	}

	ctx := context.Background()
	e, err := svc.Submeter(ctx, validSubmit())
	if err != nil {
		t.Fatalf("Submeter failed: %v", err)
	}

	var seen []essay.Status
	svc.OnPoll = func(attempt int, status essay.Status) {
		seen = append(seen, status)
	}

	done, err := svc.AguardarProcessamento(ctx, e.ID)
	if err != nil {
		t.Fatalf("AguardarProcessamento failed: %v", err)
	}
	if done.Status != essay.StatusCompleted {
		t.Errorf("final status = %s", done.Status)
	}
	if done.NotaEnem == nil {
		t.Error("completed essay should carry nota_enem")
	}

	want := []essay.Status{
		essay.StatusPending,
		essay.StatusAnalyzing,
		essay.StatusAnalyzing,
		essay.StatusCompleted,
	}
	if len(seen) != len(want) {
		t.Fatalf("observed %v, want %v", seen, want)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Errorf("poll %d = %s, want %s", i, seen[i], want[i])
		}
	}
}

func TestAguardarProcessamentoImmediatelyTerminal(t *testing.T) {
	svc, srv := newTestService(t)
	srv.Script = []essay.Status{essay.StatusCompleted}

	ctx := context.Background()
	e, err := svc.Submeter(ctx, validSubmit())
	if err != nil {
		t.Fatalf("Submeter failed: %v", err)
	}

	polls := 0
	svc.OnPoll = func(int, essay.Status) { polls++ }

	start := time.Now()
	done, err := svc.AguardarProcessamento(ctx, e.ID)
	if err != nil {
		t.Fatalf("AguardarProcessamento failed: %v", err)
	}
	if done.Status != essay.StatusCompleted {
		t.Errorf("status = %s", done.Status)
	}
	if polls != 1 {
		t.Errorf("polls = %d, want 1", polls)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("terminal read should not wait, took %v", elapsed)
	}
}

func TestAguardarProcessamentoErrorStatus(t *testing.T) {
	svc, srv := newTestService(t)
	srv.Script = []essay.Status{essay.StatusPending, essay.StatusError}

	ctx := context.Background()
	e, err := svc.Submeter(ctx, validSubmit())
	if err != nil {
		t.Fatalf("Submeter failed: %v", err)
	}

	done, err := svc.AguardarProcessamento(ctx, e.ID)
	if err != nil {
		t.Fatalf("an erro status is a result, not an error: %v", err)
	}
	if done.Status != essay.StatusError {
		t.Errorf("status = %s, want %s", done.Status, essay.StatusError)
	}
}

func TestAguardarProcessamentoTimeout(t *testing.T) {
	svc, srv := newTestService(t)
	srv.Script = []essay.Status{essay.StatusPending}
	svc.MaxAttempts = 3

	ctx := context.Background()
	e, err := svc.Submeter(ctx, validSubmit())
	if err != nil {
		t.Fatalf("Submeter failed: %v", err)
	}

	_, err = svc.AguardarProcessamento(ctx, e.ID)
	if !errors.Is(err, essay.ErrPollTimeout) {
		t.Fatalf("err = %v, want ErrPollTimeout", err)
	}
}

func TestAguardarProcessamentoCancel(t *testing.T) {
	svc, srv := newTestService(t)
	srv.Script = []essay.Status{essay.StatusPending}

	ctx, cancel := context.WithCancel(context.Background())
	e, err := svc.Submeter(ctx, validSubmit())
	if err != nil {
		t.Fatalf("Submeter failed: %v", err)
	}

	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, err = svc.AguardarProcessamento(ctx, e.ID)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestSubmeterRateLimited(t *testing.T) {
	svc, srv := newTestService(t)
	srv.ForceStatus = 429
	srv.ForceDetail = "Limite diário de 5 correções atingido"

	_, err := svc.Submeter(context.Background(), validSubmit())
	var apiErr *api.Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %v, want *api.Error", err)
	}
	if apiErr.Status != 429 || apiErr.Message != "Limite diário de 5 correções atingido" {
		t.Errorf("err = %+v", apiErr)
	}
}

func TestListar(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := svc.Submeter(ctx, validSubmit()); err != nil {
			t.Fatalf("Submeter failed: %v", err)
		}
	}

	essays, err := svc.Listar(ctx, 2)
	if err != nil {
		t.Fatalf("Listar failed: %v", err)
	}
	if len(essays) != 2 {
		t.Errorf("Listar returned %d essays, want 2", len(essays))
	}
}
