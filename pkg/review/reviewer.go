package review

import (
	"context"
	"errors"
	"strings"

	"github.com/socratis/socratis-go/pkg/analysis"
	"github.com/socratis/socratis-go/pkg/essay"
)

// ErrProcessingFailed is returned when the backend reports the essay's
// analysis ended in the erro status.
var ErrProcessingFailed = errors.New("Erro ao processar a redação")

// ValidationError aggregates client-side validation failures. A submission
// failing validation never reaches the network.
type ValidationError struct {
	Errors []essay.FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		msgs = append(msgs, fe.Message)
	}
	return strings.Join(msgs, "; ")
}

// Reviewer runs the full correction pipeline: submit, wait for processing,
// fetch the analysis and project it into a Result.
type Reviewer struct {
	Essays   *essay.Service
	Analyses *analysis.Service
}

// NewReviewer wires a Reviewer over the two backend services.
func NewReviewer(essays *essay.Service, analyses *analysis.Service) *Reviewer {
	return &Reviewer{Essays: essays, Analyses: analyses}
}

// Corrigir submits the essay and blocks (cooperatively, on ctx) until the
// projected result is available. A backend status of erro and an exhausted
// poll budget are both terminal failures. The processed essay is returned
// alongside the result so callers can record it.
func (r *Reviewer) Corrigir(ctx context.Context, submit essay.Submit) (*essay.Essay, *Result, error) {
	if errs := essay.Validate(submit); len(errs) > 0 {
		return nil, nil, &ValidationError{Errors: errs}
	}

	submitted, err := r.Essays.Submeter(ctx, submit)
	if err != nil {
		return nil, nil, err
	}

	processed, err := r.Essays.AguardarProcessamento(ctx, submitted.ID)
	if err != nil {
		return submitted, nil, err
	}
	if processed.Status == essay.StatusError {
		return processed, nil, ErrProcessingFailed
	}

	a, err := r.Analyses.Obter(ctx, submitted.ID)
	if err != nil {
		return processed, nil, err
	}

	result := FromAnalysis(a)
	result.TextoRedacao = processed.Texto
	result.TituloRedacao = processed.Titulo
	result.TemaRedacao = processed.Tema
	return processed, &result, nil
}

// ResultFor fetches and projects the analysis of an already processed essay,
// enriching the result with the essay's own text for display.
func (r *Reviewer) ResultFor(ctx context.Context, e *essay.Essay) (*Result, error) {
	a, err := r.Analyses.Obter(ctx, e.ID)
	if err != nil {
		return nil, err
	}
	result := FromAnalysis(a)
	result.TextoRedacao = e.Texto
	result.TituloRedacao = e.Titulo
	result.TemaRedacao = e.Tema
	return &result, nil
}
