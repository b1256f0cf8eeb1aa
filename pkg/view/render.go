package view

import (
	"fmt"
	"io"
	"strings"

	"github.com/socratis/socratis-go/pkg/analysis"
	"github.com/socratis/socratis-go/pkg/essay"
	"github.com/socratis/socratis-go/pkg/review"
	"github.com/socratis/socratis-go/pkg/session"
)

// Styler picks the ANSI codes for highlighted improvement spans based on the
// persisted theme preference.
type Styler struct {
	highlightOn  string
	highlightOff string
}

// NewStyler maps a theme mode to highlight styling. NoColor disables ANSI
// output entirely (spans are bracketed instead).
func NewStyler(theme string, noColor bool) Styler {
	if noColor {
		return Styler{}
	}
	if theme == session.ThemeDark {
		return Styler{highlightOn: "\x1b[30;43m", highlightOff: "\x1b[0m"}
	}
	return Styler{highlightOn: "\x1b[4;31m", highlightOff: "\x1b[0m"}
}

func (s Styler) highlight(text string) string {
	if s.highlightOn == "" {
		return "[" + text + "]"
	}
	return s.highlightOn + text + s.highlightOff
}

// RenderResult writes the full correction result: total score, competency
// cards, the essay text with improvement spans highlighted and footnoted, and
// the Socratic questions.
func RenderResult(w io.Writer, r *review.Result, styler Styler) {
	if r.TituloRedacao != "" {
		fmt.Fprintf(w, "%s\n", r.TituloRedacao)
	}
	if r.TemaRedacao != "" {
		fmt.Fprintf(w, "Tema: %s\n", r.TemaRedacao)
	}
	fmt.Fprintf(w, "Nota total: %d/1000\n\n", r.NotaTotal)

	for _, c := range r.Competencias {
		fmt.Fprintf(w, "Competência %d — %s: %d/200\n", c.Numero, c.Nome, c.Nota)
		if c.Feedback != "" {
			fmt.Fprintf(w, "  %s\n", c.Feedback)
		}
		if c.Sugestoes != "" {
			fmt.Fprintf(w, "  Sugestões: %s\n", c.Sugestoes)
		}
	}

	if r.ComentarioGeral != "" {
		fmt.Fprintf(w, "\nComentário geral: %s\n", r.ComentarioGeral)
	}

	if r.TextoRedacao != "" && len(r.TrechosMelhoria) > 0 {
		renderSegmentedText(w, r, styler)
	}

	if len(r.PerguntasSocraticas) > 0 {
		fmt.Fprintf(w, "\nPerguntas para reflexão:\n")
		for _, q := range r.PerguntasSocraticas {
			fmt.Fprintf(w, "  (%s) %s\n", q.Paragrafo, q.Pergunta)
		}
	}
}

// renderSegmentedText prints the essay with spans highlighted inline and a
// numbered footnote per span carrying its explanation and suggestion.
func renderSegmentedText(w io.Writer, r *review.Result, styler Styler) {
	segments := review.Segmentar(r.TextoRedacao, r.TrechosMelhoria)

	fmt.Fprintf(w, "\nSeu texto, com trechos a melhorar:\n\n")
	note := 0
	var footnotes []*analysis.Span
	for _, seg := range segments {
		if seg.Melhoria == nil {
			fmt.Fprint(w, seg.Texto)
			continue
		}
		note++
		footnotes = append(footnotes, seg.Melhoria)
		fmt.Fprintf(w, "%s[%d]", styler.highlight(seg.Texto), note)
	}
	fmt.Fprintln(w)

	for i, m := range footnotes {
		parts := make([]string, 0, 2)
		if m.Explicacao != "" {
			parts = append(parts, m.Explicacao)
		}
		if m.Sugestao != "" {
			parts = append(parts, m.Sugestao)
		}
		fmt.Fprintf(w, "\n[%d] %s: %s", i+1, m.Categoria, strings.Join(parts, " • "))
	}
	if len(footnotes) > 0 {
		fmt.Fprintln(w)
	}
}

// RenderEssayList writes one row per essay with its status label and score.
func RenderEssayList(w io.Writer, essays []essay.Essay) {
	if len(essays) == 0 {
		fmt.Fprintln(w, "Nenhuma redação encontrada.")
		return
	}
	fmt.Fprintf(w, "%-4s %-38s %-12s %-10s %s\n", "#", "TÍTULO", "STATUS", "NOTA", "ENVIADA EM")
	for i, e := range essays {
		nota := "-"
		if e.NotaEnem != nil {
			nota = fmt.Sprintf("%.0f", *e.NotaEnem)
		}
		fmt.Fprintf(w, "%-4d %-38s %-12s %-10s %s\n",
			i+1, truncate(e.Titulo, 38), e.Status.Label(), nota,
			e.DataSubmissao.Format("2006-01-02 15:04"))
	}
}

// RenderEvolution writes the aggregate score trend.
func RenderEvolution(w io.Writer, ev *analysis.Evolution) {
	fmt.Fprintf(w, "Análises realizadas: %d\n", ev.TotalAnalises)
	fmt.Fprintf(w, "Média geral: %.1f\n", ev.MediaGeral)
	fmt.Fprintf(w, "Melhor nota: %.1f   Pior nota: %.1f\n", ev.MelhorNota, ev.PiorNota)
	for _, p := range ev.Evolucao {
		enem := ""
		if p.NotaEnem != nil {
			enem = fmt.Sprintf("  (ENEM %.0f)", *p.NotaEnem)
		}
		fmt.Fprintf(w, "  %s  %.1f%s\n", p.Data, p.Nota, enem)
	}
	if ev.MensagemUpgrade != "" {
		fmt.Fprintf(w, "\n%s\n", ev.MensagemUpgrade)
	}
}

// RenderUser writes the profile and daily-usage counters.
func RenderUser(w io.Writer, u *session.User) {
	fmt.Fprintf(w, "%s <%s>\n", u.Nome, u.Email)
	fmt.Fprintf(w, "Conta criada em %s\n", u.DataCriacao.Format("02/01/2006"))
	fmt.Fprintf(w, "Correções hoje: %d de %d\n", u.CorrecoesHoje, u.LimiteDiario)
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + "…"
}
