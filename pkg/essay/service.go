package essay

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/socratis/socratis-go/pkg/api"
)

// ErrPollTimeout is returned when the attempt budget runs out before the
// backend reaches a terminal status. The last observed status is irrelevant.
var ErrPollTimeout = errors.New("Tempo limite de processamento excedido")

// Defaults for the processing poll.
const (
	DefaultPollInterval = 2 * time.Second
	DefaultMaxAttempts  = 60
)

// Service talks to the /redacoes endpoints.
type Service struct {
	client *api.Client

	// PollInterval and MaxAttempts configure AguardarProcessamento.
	// Zero values fall back to the defaults; tests shrink the interval.
	PollInterval time.Duration
	MaxAttempts  int

	// OnPoll, when set, observes every status read of AguardarProcessamento,
	// including the immediate first one. attempt is 0 for the first read.
	OnPoll func(attempt int, status Status)
}

// NewService creates a Service over the shared API client.
func NewService(client *api.Client) *Service {
	return &Service{
		client:       client,
		PollInterval: DefaultPollInterval,
		MaxAttempts:  DefaultMaxAttempts,
	}
}

// Submeter submits an essay for analysis. The caller is expected to have run
// Validate first; backend validation failures come back as *api.Error.
func (s *Service) Submeter(ctx context.Context, submit Submit) (*Essay, error) {
	var e Essay
	if err := s.client.Post(ctx, "/redacoes", submit, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

// Obter fetches one essay with its current status.
func (s *Service) Obter(ctx context.Context, id string) (*Essay, error) {
	var e Essay
	if err := s.client.Get(ctx, "/redacoes/"+id, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

// Listar fetches the most recent essays, newest first.
func (s *Service) Listar(ctx context.Context, limite int) ([]Essay, error) {
	var out []Essay
	if err := s.client.Get(ctx, fmt.Sprintf("/redacoes?limite=%d", limite), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// AguardarProcessamento polls the essay until it reaches a terminal status.
//
// One read happens immediately; if the essay is already terminal no timer is
// armed. Otherwise the status is re-read on a fixed interval, each tick
// spending one attempt out of MaxAttempts. Exhausting the budget returns
// ErrPollTimeout regardless of the last status seen. The terminal read itself
// is the returned value, exactly once. An essay in StatusError is returned,
// not turned into an error; that call is the caller's to make.
//
// Reads are strictly sequential: the ticker only schedules the next read
// after the previous one resolved. Cancel ctx to abandon the poll.
func (s *Service) AguardarProcessamento(ctx context.Context, id string) (*Essay, error) {
	interval := s.PollInterval
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	maxAttempts := s.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}

	e, err := s.Obter(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.OnPoll != nil {
		s.OnPoll(0, e.Status)
	}
	if e.Status.IsTerminal() {
		return e, nil
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	attempts := 0
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
			attempts++
			if attempts > maxAttempts {
				return nil, ErrPollTimeout
			}
			e, err := s.Obter(ctx, id)
			if err != nil {
				return nil, err
			}
			if s.OnPoll != nil {
				s.OnPoll(attempts, e.Status)
			}
			if e.Status.IsTerminal() {
				return e, nil
			}
		}
	}
}
