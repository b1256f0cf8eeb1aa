// Package essay covers essay submission and the poll-until-processed workflow.
package essay

import "time"

// Status is the backend-owned processing state of a submitted essay. It only
// ever moves forward: pendente → analisando → concluida | erro.
type Status string

const (
	StatusPending   Status = "pendente"
	StatusAnalyzing Status = "analisando"
	StatusCompleted Status = "concluida"
	StatusError     Status = "erro"
)

// IsTerminal reports whether polling should stop at this status.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusError
}

// Label returns the Portuguese display label for a status.
func (s Status) Label() string {
	switch s {
	case StatusCompleted:
		return "Concluída"
	case StatusAnalyzing:
		return "Analisando"
	case StatusError:
		return "Erro"
	default:
		return "Pendente"
	}
}

// Essay types accepted by the backend.
const (
	TipoENEM          = "enem"
	TipoDissertativa  = "dissertativa"
	TipoArgumentativa = "argumentativa"
	TipoConcurso      = "concurso"
)

// Tipos lists the accepted essay types.
var Tipos = []string{TipoENEM, TipoDissertativa, TipoArgumentativa, TipoConcurso}

// FixedThemes is the curated theme catalog offered alongside the free theme.
var FixedThemes = []string{
	"livre",
	"Desafios para a valorização de comunidades e povos tradicionais no Brasil",
	"Caminhos para combater a intolerância religiosa no Brasil",
	"Desafios para a formação educacional de surdos no Brasil",
	"Invisibilidade e registro civil: garantia de acesso à cidadania no Brasil",
	"Democratização do acesso ao cinema no Brasil",
}

// Submit is the essay submission payload. Immutable once sent.
type Submit struct {
	Titulo               string   `json:"titulo"`
	Texto                string   `json:"texto"`
	Tema                 string   `json:"tema"`
	Tipo                 string   `json:"tipo"`
	ReferenciasEsperadas []string `json:"referencias_esperadas,omitempty"`
}

// Essay is the backend's record of a submission. The client holds a read-only
// snapshot; scores appear once analysis completes.
type Essay struct {
	ID            string    `json:"id"`
	UsuarioID     string    `json:"usuario_id"`
	Titulo        string    `json:"titulo"`
	Texto         string    `json:"texto"`
	Tema          string    `json:"tema"`
	Tipo          string    `json:"tipo"`
	DataSubmissao time.Time `json:"data_submissao"`
	Status        Status    `json:"status"`
	NotaEnem      *float64  `json:"nota_enem,omitempty"`
	NotaGeral     *float64  `json:"nota_geral,omitempty"`
}
