package essay

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Validation bounds, in characters (runes).
const (
	MinTituloLength        = 5
	MinTextoLength         = 100
	RecommendedTextoLength = 500
	MaxTextoLength         = 10000
)

// FieldError is a client-side validation failure tied to a form field.
// These never reach the network layer.
type FieldError struct {
	Field   string
	Message string
}

func (e FieldError) Error() string { return e.Message }

// Validate checks the submission against the backend's documented bounds.
// It returns every violation, not just the first, so callers can show all of
// them at once.
func Validate(s Submit) []FieldError {
	var errs []FieldError

	titulo := strings.TrimSpace(s.Titulo)
	switch {
	case titulo == "":
		errs = append(errs, FieldError{Field: "titulo", Message: "O título é obrigatório"})
	case utf8.RuneCountInString(titulo) < MinTituloLength:
		errs = append(errs, FieldError{
			Field:   "titulo",
			Message: fmt.Sprintf("O título deve ter no mínimo %d caracteres", MinTituloLength),
		})
	}

	texto := strings.TrimSpace(s.Texto)
	n := utf8.RuneCountInString(texto)
	switch {
	case texto == "":
		errs = append(errs, FieldError{Field: "redacao", Message: "A redação é obrigatória"})
	case n < MinTextoLength:
		errs = append(errs, FieldError{
			Field:   "redacao",
			Message: fmt.Sprintf("A redação deve ter no mínimo %d caracteres. Você digitou %d caracteres.", MinTextoLength, n),
		})
	case n > MaxTextoLength:
		errs = append(errs, FieldError{
			Field:   "redacao",
			Message: fmt.Sprintf("A redação não pode ter mais de %d caracteres. Você digitou %d caracteres.", MaxTextoLength, n),
		})
	}

	if s.Tipo != "" && !validTipo(s.Tipo) {
		errs = append(errs, FieldError{
			Field:   "tipo",
			Message: fmt.Sprintf("Tipo de redação inválido. Opções: %s", strings.Join(Tipos, ", ")),
		})
	}

	return errs
}

// Warnings returns non-blocking advice for an otherwise valid submission.
// A short essay still validates; the backend just has less to work with.
func Warnings(s Submit) []string {
	n := utf8.RuneCountInString(strings.TrimSpace(s.Texto))
	if n >= MinTextoLength && n < RecommendedTextoLength {
		return []string{fmt.Sprintf(
			"Recomendamos que a redação tenha pelo menos %d caracteres para uma análise mais completa. Você digitou %d caracteres.",
			RecommendedTextoLength, n)}
	}
	return nil
}

func validTipo(tipo string) bool {
	for _, t := range Tipos {
		if t == tipo {
			return true
		}
	}
	return false
}
