// Package review turns a backend analysis into the simplified result the
// client displays: five rubric competencies, a total score, improvement spans
// and Socratic questions. It also runs the submit→poll→fetch pipeline.
package review

import (
	"fmt"
	"math"
	"strings"

	"github.com/socratis/socratis-go/pkg/analysis"
)

// Competency is one display-ready rubric entry.
type Competency struct {
	Numero    int    `json:"numero"`
	Nome      string `json:"nome"`
	Nota      int    `json:"nota"`
	Feedback  string `json:"feedback"`
	Sugestoes string `json:"sugestoes"`
}

// Question is a Socratic question stripped down for display.
type Question struct {
	Paragrafo string `json:"paragrafo"`
	Pergunta  string `json:"pergunta"`
}

// Result is the view model derived from an analysis. Never persisted by the
// backend; the local history keeps a copy for offline display.
type Result struct {
	Competencias        []Competency    `json:"competencias"`
	NotaTotal           int             `json:"notaTotal"`
	ComentarioGeral     string          `json:"comentarioGeral"`
	TextoRedacao        string          `json:"textoRedacao,omitempty"`
	TituloRedacao       string          `json:"tituloRedacao,omitempty"`
	TemaRedacao         string          `json:"temaRedacao,omitempty"`
	TrechosMelhoria     []analysis.Span `json:"trechosMelhoria,omitempty"`
	PerguntasSocraticas []Question      `json:"perguntasSocraticas,omitempty"`
}

// The five ENEM competency names, indexed by ordinal-1.
var competencyNames = [5]string{
	"Domínio da norma culta",
	"Compreensão do tema",
	"Seleção e organização de argumentos",
	"Mecanismos linguísticos",
	"Proposta de intervenção",
}

// CompetencyName returns the fixed name for an ordinal, or a generic label
// for ordinals outside the table.
func CompetencyName(numero int) string {
	if numero >= 1 && numero <= len(competencyNames) {
		return competencyNames[numero-1]
	}
	return fmt.Sprintf("Competência %d", numero)
}

// FromAnalysis projects an analysis onto the display result. Pure: the same
// analysis always yields the same result, and the input is not modified.
func FromAnalysis(a *analysis.Analysis) Result {
	var competencias []Competency
	if len(a.AvaliacaoFinal.CompetenciasEnem) > 0 {
		competencias = rubricCompetencies(a.AvaliacaoFinal.CompetenciasEnem)
	} else {
		competencias = synthesizedCompetencies(a)
	}

	perguntas := []Question{}
	if a.ModoSocratico != nil {
		for _, p := range a.ModoSocratico.Perguntas {
			perguntas = append(perguntas, Question{Paragrafo: p.Paragrafo, Pergunta: p.Pergunta})
		}
	}

	return Result{
		Competencias:        competencias,
		NotaTotal:           enemScore(a.AvaliacaoFinal),
		ComentarioGeral:     a.AvaliacaoFinal.FeedbackGeral,
		TrechosMelhoria:     append([]analysis.Span(nil), a.TrechosMelhoria...),
		PerguntasSocraticas: perguntas,
	}
}

// rubricCompetencies maps the premium per-competency breakdown one to one.
func rubricCompetencies(comps []analysis.ENEMCompetency) []Competency {
	out := make([]Competency, 0, len(comps))
	for _, c := range comps {
		out = append(out, Competency{
			Numero:    c.Numero,
			Nome:      CompetencyName(c.Numero),
			Nota:      c.Nota,
			Feedback:  c.Justificativa,
			Sugestoes: strings.Join(c.PontosFracos, " "),
		})
	}
	return out
}

// synthesizedCompetencies builds the five entries for free-tier analyses from
// the lower-fidelity signals available: grammar score for competency 1,
// thematic adherence for competency 2, and an even five-way split of the
// ENEM-equivalent score for the rest. The split is a display approximation,
// kept for compatibility with the established backend contract.
func synthesizedCompetencies(a *analysis.Analysis) []Competency {
	final := a.AvaliacaoFinal
	notaPorCompetencia := int(math.Round(float64(enemScore(final)) / 5))

	gramSugestoes := make([]string, 0, len(a.AnaliseGramatical.Erros))
	for _, e := range a.AnaliseGramatical.Erros {
		gramSugestoes = append(gramSugestoes, e.Sugestao)
	}

	temaFeedback := fmt.Sprintf("Aderência ao tema: %.1f%%. ", a.AderenciaTema)
	if a.FugaAoTema {
		temaFeedback = "Atenção: Fuga ao tema detectada. "
	}
	temaSugestoes := "Tente utilizar mais palavras-chave relacionadas ao tema."
	if len(a.PalavrasChaveUsadas) > 0 {
		temaSugestoes = "Palavras-chave utilizadas: " + strings.Join(a.PalavrasChaveUsadas, ", ")
	}

	// Competency 4 prefers structural feedback when the sub-analysis exists.
	mecanismosFeedback := final.FeedbackGeral
	mecanismosSugestoes := ""
	if a.AnaliseEstrutural != nil {
		mecanismosFeedback = a.AnaliseEstrutural.FeedbackGeral
		sugs := make([]string, 0, len(a.AnaliseEstrutural.Problemas))
		for _, p := range a.AnaliseEstrutural.Problemas {
			sugs = append(sugs, p.Sugestao)
		}
		mecanismosSugestoes = strings.Join(sugs, " ")
	}

	return []Competency{
		{
			Numero:    1,
			Nome:      CompetencyName(1),
			Nota:      int(math.Round(final.NotaGeral * 20)), // 0-10 → 0-200
			Feedback:  a.AnaliseGramatical.FeedbackGeral,
			Sugestoes: strings.Join(gramSugestoes, " "),
		},
		{
			Numero:    2,
			Nome:      CompetencyName(2),
			Nota:      int(math.Round(a.AderenciaTema * 2)), // percentage → 0-200
			Feedback:  temaFeedback,
			Sugestoes: temaSugestoes,
		},
		{
			Numero:    3,
			Nome:      CompetencyName(3),
			Nota:      notaPorCompetencia,
			Feedback:  final.FeedbackGeral,
			Sugestoes: strings.Join(final.SugestoesMelhoria, " "),
		},
		{
			Numero:    4,
			Nome:      CompetencyName(4),
			Nota:      notaPorCompetencia,
			Feedback:  mecanismosFeedback,
			Sugestoes: mecanismosSugestoes,
		},
		{
			Numero:    5,
			Nome:      CompetencyName(5),
			Nota:      notaPorCompetencia,
			Feedback:  final.FeedbackGeral,
			Sugestoes: strings.Join(final.SugestoesMelhoria, " "),
		},
	}
}

// enemScore resolves the ENEM-equivalent total: the backend's nota_enem when
// provided, otherwise the 0-10 general score scaled to the 0-1000 range.
func enemScore(final analysis.FinalEvaluation) int {
	if final.NotaEnem != nil {
		return *final.NotaEnem
	}
	return int(math.Round(final.NotaGeral * 100))
}
