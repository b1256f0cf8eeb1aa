package analysis

import (
	"context"
	"fmt"

	"github.com/socratis/socratis-go/pkg/api"
)

// Service talks to the /analises endpoints.
type Service struct {
	client *api.Client
}

// NewService creates a Service over the shared API client.
func NewService(client *api.Client) *Service {
	return &Service{client: client}
}

// Obter fetches the full analysis for an essay. Analyses are keyed by the
// essay id, not an id of their own.
func (s *Service) Obter(ctx context.Context, redacaoID string) (*Analysis, error) {
	var a Analysis
	if err := s.client.Get(ctx, "/analises/"+redacaoID, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

// Listar fetches the most recent analysis summaries.
func (s *Service) Listar(ctx context.Context, limite int) ([]Summary, error) {
	var out []Summary
	if err := s.client.Get(ctx, fmt.Sprintf("/analises?limite=%d", limite), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Evolucao fetches the aggregate score trend.
func (s *Service) Evolucao(ctx context.Context) (*Evolution, error) {
	var ev Evolution
	if err := s.client.Get(ctx, "/analises/estatisticas/evolucao", &ev); err != nil {
		return nil, err
	}
	return &ev, nil
}
