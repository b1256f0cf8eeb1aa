package apitest

import (
	"time"

	"github.com/socratis/socratis-go/pkg/analysis"
)

// GenerateAnalysis builds a representative analysis payload. The premium
// variant carries the five-competency rubric breakdown and the premium
// sub-analyses; the free variant only the grammar and adherence signals.
func GenerateAnalysis(redacaoID string, premium bool) *analysis.Analysis {
	a := &analysis.Analysis{
		RedacaoID: redacaoID,
		AnaliseGramatical: analysis.Grammar{
			Nota: 7.5,
			Erros: []analysis.GrammarError{
				{
					Trecho:     "a nível de",
					Tipo:       "regência",
					Explicacao: "Expressão condenada pela norma culta.",
					Sugestao:   "Prefira 'em nível de' ou reformule a frase.",
					Regra:      "regência nominal",
				},
			},
			TotalErros:      1,
			ViciosLinguagem: []string{"a nível de"},
			FeedbackGeral:   "Bom domínio geral da norma culta, com desvios pontuais.",
		},
		FugaAoTema:          false,
		AderenciaTema:       85.0,
		PalavrasChaveUsadas: []string{"cidadania", "educação"},
		AvaliacaoFinal: analysis.FinalEvaluation{
			NotaGeral:         7.2,
			FeedbackGeral:     "Texto bem estruturado com argumentação consistente.",
			PontosFortes:      []string{"Coesão entre parágrafos"},
			PontosFracos:      []string{"Proposta de intervenção genérica"},
			SugestoesMelhoria: []string{"Detalhe os agentes da proposta de intervenção."},
		},
		TrechosMelhoria: []analysis.Span{
			{
				Inicio:     0,
				Fim:        10,
				Trecho:     "trecho",
				Categoria:  "gramática",
				Tipo:       "regência",
				Explicacao: "Desvio de regência.",
				Sugestao:   "Reformule o período.",
			},
		},
		TempoProcessamento: 4.2,
		DataAnalise:        time.Now().UTC(),
	}

	if !premium {
		return a
	}

	notaEnem := 820
	a.AvaliacaoFinal.NotaEnem = &notaEnem
	a.AvaliacaoFinal.CompetenciasEnem = []analysis.ENEMCompetency{
		{Numero: 1, Nota: 160, Justificativa: "Bom domínio da modalidade escrita.", PontosFracos: []string{"Desvios pontuais de regência."}},
		{Numero: 2, Nota: 180, Justificativa: "Tema plenamente compreendido.", PontosFracos: []string{}},
		{Numero: 3, Nota: 160, Justificativa: "Argumentos bem selecionados.", PontosFracos: []string{"Aprofunde o segundo argumento."}},
		{Numero: 4, Nota: 160, Justificativa: "Bom uso de conectivos.", PontosFracos: []string{"Varie os operadores argumentativos."}},
		{Numero: 5, Nota: 160, Justificativa: "Proposta presente, mas genérica.", PontosFracos: []string{"Especifique o agente da intervenção."}},
	}
	a.AnaliseEstrutural = &analysis.Structural{
		Nota:               8.0,
		EstruturaAdequada:  true,
		TemIntroducao:      true,
		TemDesenvolvimento: true,
		TemConclusao:       true,
		UsoConectivos:      map[string]int{"portanto": 2, "entretanto": 1},
		FeedbackGeral:      "Estrutura dissertativa completa.",
	}
	a.ModoSocratico = &analysis.Socratic{
		Perguntas: []analysis.SocraticQuestion{
			{Paragrafo: "2", Pergunta: "Que dados sustentariam melhor esse argumento?", Objetivo: "aprofundamento"},
		},
	}
	return a
}
