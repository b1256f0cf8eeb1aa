// Package analysis consumes the backend's analysis payloads. The shapes here
// mirror the wire contract exactly; the client never produces them.
package analysis

import "time"

// GrammarError is one grammar finding, optionally anchored in the text.
type GrammarError struct {
	Trecho        string `json:"trecho"`
	Tipo          string `json:"tipo"`
	Explicacao    string `json:"explicacao"`
	Sugestao      string `json:"sugestao"`
	Regra         string `json:"regra"`
	PosicaoInicio *int   `json:"posicao_inicio,omitempty"`
	PosicaoFim    *int   `json:"posicao_fim,omitempty"`
}

// Grammar is the grammar sub-analysis. Always present.
type Grammar struct {
	Nota            float64        `json:"nota"`
	Erros           []GrammarError `json:"erros"`
	TotalErros      int            `json:"total_erros"`
	ViciosLinguagem []string       `json:"vicios_linguagem"`
	FeedbackGeral   string         `json:"feedback_geral"`
}

// LogicProblem is one issue found by the logic sub-analysis.
type LogicProblem struct {
	Tipo          string `json:"tipo"`
	Paragrafo     int    `json:"paragrafo"`
	Trecho        string `json:"trecho"`
	Explicacao    string `json:"explicacao"`
	Sugestao      string `json:"sugestao"`
	PosicaoInicio *int   `json:"posicao_inicio,omitempty"`
	PosicaoFim    *int   `json:"posicao_fim,omitempty"`
}

// Logic is the premium argument-structure sub-analysis.
type Logic struct {
	Nota                     float64        `json:"nota"`
	TeseClara                bool           `json:"tese_clara"`
	TeseIdentificada         string         `json:"tese_identificada,omitempty"`
	Problemas                []LogicProblem `json:"problemas"`
	ProfundidadeArgumentacao string         `json:"profundidade_argumentacao"`
	FalaciasDetectadas       []string       `json:"falacias_detectadas"`
	FeedbackGeral            string         `json:"feedback_geral"`
}

// StructuralProblem is one issue found by the structural sub-analysis.
type StructuralProblem struct {
	Tipo        string `json:"tipo"`
	Localizacao string `json:"localizacao"`
	Explicacao  string `json:"explicacao"`
	Sugestao    string `json:"sugestao"`
}

// Structural is the premium text-structure sub-analysis.
type Structural struct {
	Nota               float64             `json:"nota"`
	EstruturaAdequada  bool                `json:"estrutura_adequada"`
	TemIntroducao      bool                `json:"tem_introducao"`
	TemDesenvolvimento bool                `json:"tem_desenvolvimento"`
	TemConclusao       bool                `json:"tem_conclusao"`
	UsoConectivos      map[string]int      `json:"uso_conectivos"`
	Problemas          []StructuralProblem `json:"problemas"`
	FeedbackGeral      string              `json:"feedback_geral"`
}

// ENEMCompetency is one of the five rubric competencies of the premium tier.
type ENEMCompetency struct {
	Numero        int      `json:"numero"`
	Nota          int      `json:"nota"`
	Justificativa string   `json:"justificativa"`
	PontosFortes  []string `json:"pontos_fortes"`
	PontosFracos  []string `json:"pontos_fracos"`
}

// FinalEvaluation is the aggregate verdict.
type FinalEvaluation struct {
	NotaGeral         float64          `json:"nota_geral"`
	NotaEnem          *int             `json:"nota_enem,omitempty"`
	CompetenciasEnem  []ENEMCompetency `json:"competencias_enem,omitempty"`
	FeedbackGeral     string           `json:"feedback_geral"`
	PontosFortes      []string         `json:"pontos_fortes"`
	PontosFracos      []string         `json:"pontos_fracos"`
	SugestoesMelhoria []string         `json:"sugestoes_melhoria"`
}

// Citation is one identified socio-cultural reference.
type Citation struct {
	Tipo      string `json:"tipo"`
	Conteudo  string `json:"conteudo"`
	Produtiva string `json:"produtiva"`
}

// Repertoire is the premium socio-cultural repertoire sub-analysis.
type Repertoire struct {
	CitacoesIdentificadas []Citation `json:"citacoes_identificadas"`
	UsoAdequado           bool       `json:"uso_adequado"`
	Feedback              string     `json:"feedback"`
}

// Rewrite is one premium comparative rewrite of a passage.
type Rewrite struct {
	TrechoOriginal  string   `json:"trecho_original"`
	TrechoReescrito string   `json:"trecho_reescrito"`
	Explicacao      string   `json:"explicacao"`
	Melhorias       []string `json:"melhorias"`
}

// SocraticQuestion probes one paragraph of the essay.
type SocraticQuestion struct {
	Paragrafo string `json:"paragrafo"`
	Pergunta  string `json:"pergunta"`
	Objetivo  string `json:"objetivo,omitempty"`
}

// Socratic is the premium Socratic-questioning sub-analysis.
type Socratic struct {
	Perguntas []SocraticQuestion `json:"perguntas"`
}

// Span flags a character range of the essay text for improvement.
// Inicio and Fim are rune offsets; Fim is exclusive.
type Span struct {
	Inicio     int    `json:"inicio"`
	Fim        int    `json:"fim"`
	Trecho     string `json:"trecho"`
	Categoria  string `json:"categoria"`
	Tipo       string `json:"tipo"`
	Explicacao string `json:"explicacao"`
	Sugestao   string `json:"sugestao"`
	Paragrafo  *int   `json:"paragrafo,omitempty"`
}

// Analysis is the complete analysis of one essay. Produced at most once per
// essay by the backend; immutable from the client's perspective. Premium
// sub-analyses are nil for free-tier users.
type Analysis struct {
	RedacaoID           string          `json:"redacao_id"`
	AnaliseGramatical   Grammar         `json:"analise_gramatical"`
	FugaAoTema          bool            `json:"fuga_ao_tema"`
	AderenciaTema       float64         `json:"aderencia_tema"`
	PalavrasChaveUsadas []string        `json:"palavras_chave_usadas"`
	AnaliseLogica       *Logic          `json:"analise_logica,omitempty"`
	AnaliseEstrutural   *Structural     `json:"analise_estrutural,omitempty"`
	Repertorio          *Repertoire     `json:"repertorio_sociocultural,omitempty"`
	Reescritas          []Rewrite       `json:"reescritas_comparativas,omitempty"`
	ModoSocratico       *Socratic       `json:"modo_socratico,omitempty"`
	AvaliacaoFinal      FinalEvaluation `json:"avaliacao_final"`
	TrechosMelhoria     []Span          `json:"trechos_melhoria,omitempty"`
	TempoProcessamento  float64         `json:"tempo_processamento"`
	DataAnalise         time.Time       `json:"data_analise"`
	TokensUtilizados    *int            `json:"tokens_utilizados,omitempty"`
}

// EvolutionPoint is one data point of the score trend.
type EvolutionPoint struct {
	Data     string   `json:"data"`
	Nota     float64  `json:"nota"`
	NotaEnem *float64 `json:"nota_enem,omitempty"`
}

// Evolution aggregates the user's score history.
type Evolution struct {
	TotalAnalises   int              `json:"total_analises"`
	MediaGeral      float64          `json:"media_geral"`
	MelhorNota      float64          `json:"melhor_nota"`
	PiorNota        float64          `json:"pior_nota"`
	Premium         bool             `json:"premium"`
	Evolucao        []EvolutionPoint `json:"evolucao,omitempty"`
	MensagemUpgrade string           `json:"mensagem_upgrade,omitempty"`
}

// Summary is one row of the recent-analyses listing.
type Summary struct {
	RedacaoID   string    `json:"redacao_id"`
	NotaGeral   float64   `json:"nota_geral"`
	NotaEnem    *int      `json:"nota_enem,omitempty"`
	DataAnalise time.Time `json:"data_analise"`
}
