package main

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/socratis/socratis-go/pkg/analysis"
	"github.com/socratis/socratis-go/pkg/config"
	"github.com/socratis/socratis-go/pkg/essay"
	"github.com/socratis/socratis-go/pkg/history"
	"github.com/socratis/socratis-go/pkg/importer"
	"github.com/socratis/socratis-go/pkg/review"
	"github.com/socratis/socratis-go/pkg/session"
	"github.com/socratis/socratis-go/pkg/view"
)

// Version is the current CLI version string.
const Version = "v0.1"

func printHelp() {
	fmt.Print(
		`socratis: correção de redações ENEM na linha de comando

Usage:
  socratis <command> [args]

Commands:
  help               Show this help
  version            Show version
  cadastro           Criar conta
  login              Entrar
  logout             Sair
  perfil             Ver perfil e estatísticas
  corrigir           Enviar redação e aguardar correção
  redacoes           Listar redações enviadas (interativo)
  analises           Listar análises recentes
  evolucao           Ver evolução das notas
  temas              Listar temas sugeridos
  tema               Ver ou definir o tema visual (claro/escuro)

Examples:
  socratis login -email ana@example.com
  socratis corrigir -titulo "Minha redação" -tema livre -arquivo redacao.txt
  socratis corrigir -url https://example.com/minha-redacao
  socratis redacoes -limite 20
`)
}

// app wires the services over one session. The history database opens lazily;
// most commands never touch it.
type app struct {
	cfg      config.Config
	sess     *session.Session
	essays   *essay.Service
	analyses *analysis.Service
	reviewer *review.Reviewer

	db *sql.DB
}

func newApp() (*app, error) {
	cfg := config.Load()
	storage, err := session.NewFileStorage(cfg.DataDir)
	if err != nil {
		return nil, err
	}
	sess := session.New(storage, cfg.APIURL, cfg.HTTPTimeout)
	essays := essay.NewService(sess.Client())
	analyses := analysis.NewService(sess.Client())
	return &app{
		cfg:      cfg,
		sess:     sess,
		essays:   essays,
		analyses: analyses,
		reviewer: review.NewReviewer(essays, analyses),
	}, nil
}

func (a *app) close() {
	if a.db != nil {
		_ = a.db.Close()
	}
}

// history opens the local record on first use.
func (a *app) history() (*sql.DB, error) {
	if a.db != nil {
		return a.db, nil
	}
	db, err := history.Open(filepath.Join(a.cfg.DataDir, "history.db"))
	if err != nil {
		return nil, fmt.Errorf("open history: %w", err)
	}
	a.db = db
	return db, nil
}

func (a *app) styler() view.Styler {
	return view.NewStyler(a.sess.Theme(), os.Getenv("NO_COLOR") != "")
}

// requireAuth refuses to run authenticated commands without a session, and
// warns when the stored token already expired.
func (a *app) requireAuth() error {
	if !a.sess.IsAuthenticated() {
		return errors.New("você não está autenticado. Use 'socratis login' ou 'socratis cadastro'")
	}
	if exp, ok := a.sess.TokenExpiresAt(); ok && time.Now().After(exp) {
		fmt.Fprintln(os.Stderr, "Aviso: sua sessão expirou; o servidor pode pedir um novo login.")
	}
	return nil
}

func rootContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func prompt(reader *bufio.Reader, label string) (string, error) {
	fmt.Printf("%s: ", label)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("read: %w", err)
	}
	return strings.TrimSpace(line), nil
}

func cmdLogin(args []string) int {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	email := fs.String("email", "", "Email da conta")
	senha := fs.String("senha", "", "Senha (será pedida se omitida)")
	fs.Parse(args)

	a, err := newApp()
	if err != nil {
		fmt.Fprintf(os.Stderr, "login: %v\n", err)
		return 1
	}
	defer a.close()

	reader := bufio.NewReader(os.Stdin)
	if *email == "" {
		if *email, err = prompt(reader, "Email"); err != nil {
			fmt.Fprintf(os.Stderr, "login: %v\n", err)
			return 1
		}
	}
	if *senha == "" {
		if *senha, err = prompt(reader, "Senha"); err != nil {
			fmt.Fprintf(os.Stderr, "login: %v\n", err)
			return 1
		}
	}

	ctx, cancel := rootContext()
	defer cancel()

	user, err := a.sess.Login(ctx, session.Credentials{Email: *email, Senha: *senha})
	if err != nil {
		fmt.Fprintf(os.Stderr, "login: %v\n", err)
		return 1
	}
	fmt.Printf("Bem-vindo(a), %s!\n", user.Nome)
	return 0
}

func cmdCadastro(args []string) int {
	fs := flag.NewFlagSet("cadastro", flag.ExitOnError)
	email := fs.String("email", "", "Email da conta")
	nome := fs.String("nome", "", "Nome completo")
	senha := fs.String("senha", "", "Senha (será pedida se omitida)")
	fs.Parse(args)

	a, err := newApp()
	if err != nil {
		fmt.Fprintf(os.Stderr, "cadastro: %v\n", err)
		return 1
	}
	defer a.close()

	reader := bufio.NewReader(os.Stdin)
	for _, field := range []struct {
		value *string
		label string
	}{{email, "Email"}, {nome, "Nome"}, {senha, "Senha"}} {
		if *field.value == "" {
			if *field.value, err = prompt(reader, field.label); err != nil {
				fmt.Fprintf(os.Stderr, "cadastro: %v\n", err)
				return 1
			}
		}
	}

	ctx, cancel := rootContext()
	defer cancel()

	user, err := a.sess.Cadastro(ctx, session.SignupData{Email: *email, Nome: *nome, Senha: *senha})
	if err != nil {
		fmt.Fprintf(os.Stderr, "cadastro: %v\n", err)
		return 1
	}
	fmt.Printf("Conta criada. Bem-vindo(a), %s!\n", user.Nome)
	return 0
}

func cmdLogout(args []string) int {
	a, err := newApp()
	if err != nil {
		fmt.Fprintf(os.Stderr, "logout: %v\n", err)
		return 1
	}
	defer a.close()

	if err := a.sess.Logout(); err != nil {
		fmt.Fprintf(os.Stderr, "logout: %v\n", err)
		return 1
	}
	fmt.Println("Sessão encerrada.")
	return 0
}

func cmdPerfil(args []string) int {
	a, err := newApp()
	if err != nil {
		fmt.Fprintf(os.Stderr, "perfil: %v\n", err)
		return 1
	}
	defer a.close()

	if err := a.requireAuth(); err != nil {
		fmt.Fprintf(os.Stderr, "perfil: %v\n", err)
		return 1
	}

	ctx, cancel := rootContext()
	defer cancel()

	user, err := a.sess.Perfil(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "perfil: %v\n", err)
		return 1
	}
	view.RenderUser(os.Stdout, user)

	if ev, err := a.analyses.Evolucao(ctx); err == nil && ev.TotalAnalises > 0 {
		fmt.Println()
		view.RenderEvolution(os.Stdout, ev)
	}
	return 0
}

// readEssayText resolves the essay body from -arquivo, -url, positional args
// or stdin, in that order of precedence. The second return is a title guess
// (only the URL importer provides one).
func readEssayText(ctx context.Context, arquivo, url string, positional []string) (string, string, error) {
	if arquivo != "" {
		data, err := os.ReadFile(arquivo)
		if err != nil {
			return "", "", fmt.Errorf("ler arquivo: %w", err)
		}
		return string(data), "", nil
	}
	if url != "" {
		article, err := importer.FetchText(ctx, url)
		if err != nil {
			return "", "", err
		}
		return article.Text, article.Title, nil
	}
	if len(positional) > 0 {
		return strings.Join(positional, " "), "", nil
	}
	fmt.Fprintln(os.Stderr, "Lendo a redação da entrada padrão (Ctrl+D para terminar)...")
	var sb strings.Builder
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		sb.WriteString(scanner.Text())
		sb.WriteString("\n")
	}
	if err := scanner.Err(); err != nil {
		return "", "", fmt.Errorf("ler entrada: %w", err)
	}
	return sb.String(), "", nil
}

func cmdCorrigir(args []string) int {
	fs := flag.NewFlagSet("corrigir", flag.ExitOnError)
	titulo := fs.String("titulo", "", "Título da redação")
	tema := fs.String("tema", "livre", "Tema da redação")
	tipo := fs.String("tipo", essay.TipoDissertativa, "Tipo: enem, dissertativa, argumentativa ou concurso")
	arquivo := fs.String("arquivo", "", "Arquivo com o texto da redação")
	url := fs.String("url", "", "Importar o texto de uma página web")
	fs.Parse(args)

	a, err := newApp()
	if err != nil {
		fmt.Fprintf(os.Stderr, "corrigir: %v\n", err)
		return 1
	}
	defer a.close()

	if err := a.requireAuth(); err != nil {
		fmt.Fprintf(os.Stderr, "corrigir: %v\n", err)
		return 1
	}

	ctx, cancel := rootContext()
	defer cancel()

	texto, tituloGuess, err := readEssayText(ctx, *arquivo, *url, fs.Args())
	if err != nil {
		fmt.Fprintf(os.Stderr, "corrigir: %v\n", err)
		return 1
	}

	if *titulo == "" {
		*titulo = tituloGuess
	}
	if *titulo == "" {
		*titulo = "Redação sobre " + *tema
	}

	submit := essay.Submit{
		Titulo: strings.TrimSpace(*titulo),
		Texto:  strings.TrimSpace(texto),
		Tema:   *tema,
		Tipo:   *tipo,
	}

	if errs := essay.Validate(submit); len(errs) > 0 {
		for _, fe := range errs {
			fmt.Fprintf(os.Stderr, "corrigir: %s\n", fe.Message)
		}
		return 2
	}
	for _, warning := range essay.Warnings(submit) {
		fmt.Fprintf(os.Stderr, "Aviso: %s\n", warning)
	}

	a.essays.OnPoll = func(attempt int, status essay.Status) {
		fmt.Printf("  status: %s\n", status.Label())
	}

	fmt.Println("Enviando redação...")
	processed, result, err := a.reviewer.Corrigir(ctx, submit)
	if processed != nil {
		a.recordEssay(processed)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "corrigir: %v\n", err)
		return 1
	}
	a.recordResult(processed.ID, result)

	fmt.Println()
	view.RenderResult(os.Stdout, result, a.styler())
	return 0
}

// recordEssay and recordResult are best-effort: a broken local history never
// fails the command that produced the result.
func (a *app) recordEssay(e *essay.Essay) {
	db, err := a.history()
	if err == nil {
		err = history.SaveEssay(db, e)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Aviso: não foi possível salvar no histórico local: %v\n", err)
	}
}

func (a *app) recordResult(redacaoID string, r *review.Result) {
	db, err := a.history()
	if err == nil {
		err = history.SaveResult(db, redacaoID, r)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Aviso: não foi possível salvar no histórico local: %v\n", err)
	}
}

func cmdRedacoes(args []string) int {
	fs := flag.NewFlagSet("redacoes", flag.ExitOnError)
	limite := fs.Int("limite", 20, "Quantidade de redações")
	local := fs.Bool("local", false, "Usar apenas o histórico local")
	fs.Parse(args)

	a, err := newApp()
	if err != nil {
		fmt.Fprintf(os.Stderr, "redacoes: %v\n", err)
		return 1
	}
	defer a.close()

	ctx, cancel := rootContext()
	defer cancel()

	var essays []essay.Essay
	if *local {
		essays, err = a.listLocal(*limite)
	} else {
		if err := a.requireAuth(); err != nil {
			fmt.Fprintf(os.Stderr, "redacoes: %v\n", err)
			return 1
		}
		essays, err = a.essays.Listar(ctx, *limite)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Aviso: %v. Mostrando o histórico local.\n", err)
			essays, err = a.listLocal(*limite)
		}
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "redacoes: %v\n", err)
		return 1
	}

	view.RenderEssayList(os.Stdout, essays)
	if len(essays) == 0 {
		return 0
	}
	return a.browse(ctx, essays)
}

func (a *app) listLocal(limit int) ([]essay.Essay, error) {
	db, err := a.history()
	if err != nil {
		return nil, err
	}
	return history.ListEssays(db, limit)
}

// browse runs the interactive list→detail loop. The transition controller
// guarantees at most one live analysis load; picking a new essay cancels the
// previous load before arming the next.
func (a *app) browse(ctx context.Context, essays []essay.Essay) int {
	controller := view.NewController(0)
	defer controller.Close()

	reader := bufio.NewReader(os.Stdin)
	for {
		fmt.Print("\n[número] ver análise, [q] sair: ")
		line, err := reader.ReadString('\n')
		if err != nil {
			return 0
		}
		choice := strings.TrimSpace(line)
		if strings.EqualFold(choice, "q") {
			return 0
		}
		idx, err := strconv.Atoi(choice)
		if err != nil || idx < 1 || idx > len(essays) {
			fmt.Fprintln(os.Stderr, "Escolha inválida.")
			continue
		}
		e := essays[idx-1]
		if e.Status != essay.StatusCompleted {
			fmt.Printf("Esta redação ainda está %s; análise indisponível.\n", strings.ToLower(e.Status.Label()))
			continue
		}

		loadCtx := controller.EnterDetail(ctx)
		result, err := a.loadResult(loadCtx, &e)
		if err != nil {
			fmt.Fprintf(os.Stderr, "redacoes: %v\n", err)
			controller.ExitDetail()
			continue
		}
		fmt.Println()
		view.RenderResult(os.Stdout, result, a.styler())
		controller.ExitDetail()
		view.RenderEssayList(os.Stdout, essays)
	}
}

// loadResult prefers the backend analysis and falls back to the local record.
func (a *app) loadResult(ctx context.Context, e *essay.Essay) (*review.Result, error) {
	result, err := a.reviewer.ResultFor(ctx, e)
	if err == nil {
		a.recordEssay(e)
		a.recordResult(e.ID, result)
		return result, nil
	}
	if db, dbErr := a.history(); dbErr == nil {
		if cached, cacheErr := history.GetResult(db, e.ID); cacheErr == nil {
			fmt.Fprintln(os.Stderr, "Aviso: mostrando resultado do histórico local.")
			return cached, nil
		}
	}
	return nil, err
}

func cmdAnalises(args []string) int {
	fs := flag.NewFlagSet("analises", flag.ExitOnError)
	limite := fs.Int("limite", 10, "Quantidade de análises")
	fs.Parse(args)

	a, err := newApp()
	if err != nil {
		fmt.Fprintf(os.Stderr, "analises: %v\n", err)
		return 1
	}
	defer a.close()

	if err := a.requireAuth(); err != nil {
		fmt.Fprintf(os.Stderr, "analises: %v\n", err)
		return 1
	}

	ctx, cancel := rootContext()
	defer cancel()

	summaries, err := a.analyses.Listar(ctx, *limite)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Aviso: %v. Mostrando o histórico local.\n", err)
		return a.localAnalises(*limite)
	}
	if len(summaries) == 0 {
		fmt.Println("Nenhuma análise encontrada.")
		return 0
	}
	fmt.Printf("%-38s %-10s %-10s %s\n", "REDAÇÃO", "NOTA", "ENEM", "DATA")
	for _, s := range summaries {
		enem := "-"
		if s.NotaEnem != nil {
			enem = strconv.Itoa(*s.NotaEnem)
		}
		fmt.Printf("%-38s %-10.1f %-10s %s\n", s.RedacaoID, s.NotaGeral, enem, s.DataAnalise.Format("2006-01-02 15:04"))
	}
	return 0
}

func (a *app) localAnalises(limit int) int {
	db, err := a.history()
	if err != nil {
		fmt.Fprintf(os.Stderr, "analises: %v\n", err)
		return 1
	}
	saved, err := history.ListResults(db, limit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "analises: %v\n", err)
		return 1
	}
	if len(saved) == 0 {
		fmt.Println("Nenhuma análise no histórico local.")
		return 0
	}
	fmt.Printf("%-38s %-10s %s\n", "REDAÇÃO", "NOTA", "SALVA EM")
	for _, sr := range saved {
		fmt.Printf("%-38s %-10d %s\n", sr.Titulo, sr.NotaTotal, sr.SavedAt.Format("2006-01-02 15:04"))
	}
	return 0
}

func cmdEvolucao(args []string) int {
	a, err := newApp()
	if err != nil {
		fmt.Fprintf(os.Stderr, "evolucao: %v\n", err)
		return 1
	}
	defer a.close()

	if err := a.requireAuth(); err != nil {
		fmt.Fprintf(os.Stderr, "evolucao: %v\n", err)
		return 1
	}

	ctx, cancel := rootContext()
	defer cancel()

	ev, err := a.analyses.Evolucao(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "evolucao: %v\n", err)
		return 1
	}
	view.RenderEvolution(os.Stdout, ev)
	return 0
}

func cmdTemas(args []string) int {
	fmt.Println("Temas sugeridos:")
	for _, t := range essay.FixedThemes {
		fmt.Printf("  - %s\n", t)
	}
	return 0
}

func cmdTema(args []string) int {
	a, err := newApp()
	if err != nil {
		fmt.Fprintf(os.Stderr, "tema: %v\n", err)
		return 1
	}
	defer a.close()

	if len(args) == 0 {
		fmt.Println(a.sess.Theme())
		return 0
	}
	if err := a.sess.SetTheme(args[0]); err != nil {
		fmt.Fprintf(os.Stderr, "tema: %v\n", err)
		return 2
	}
	fmt.Printf("Tema visual definido: %s\n", args[0])
	return 0
}

func main() {
	args := os.Args[1:]
	if len(args) == 0 {
		printHelp()
		return
	}

	cmd := args[0]
	rest := args[1:]

	switch cmd {
	case "help", "h":
		printHelp()
	case "version", "-v":
		fmt.Println("socratis " + Version)
	case "login":
		os.Exit(cmdLogin(rest))
	case "cadastro":
		os.Exit(cmdCadastro(rest))
	case "logout":
		os.Exit(cmdLogout(rest))
	case "perfil":
		os.Exit(cmdPerfil(rest))
	case "corrigir":
		os.Exit(cmdCorrigir(rest))
	case "redacoes":
		os.Exit(cmdRedacoes(rest))
	case "analises":
		os.Exit(cmdAnalises(rest))
	case "evolucao":
		os.Exit(cmdEvolucao(rest))
	case "temas":
		os.Exit(cmdTemas(rest))
	case "tema":
		os.Exit(cmdTema(rest))
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		printHelp()
		os.Exit(2)
	}
}
