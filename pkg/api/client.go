// Package api is the HTTP boundary of the socratis client. Every call to the
// backend goes through Client, which attaches the bearer token and maps
// transport and HTTP failures to a single user-facing message channel.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// TokenStore supplies the bearer token for outgoing requests. A 401 response
// clears the token through the same interface.
type TokenStore interface {
	Token() string
	SetToken(token string) error
}

// Error is a normalized backend failure. Message is ready for display.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string { return e.Message }

// Client issues JSON requests against the configured base URL.
type Client struct {
	baseURL string
	http    *http.Client
	tokens  TokenStore
}

// NewClient creates a Client. baseURL must include the API prefix
// (e.g. http://localhost:8000/api/v1). tokens may not be nil.
func NewClient(baseURL string, timeout time.Duration, tokens TokenStore) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		tokens:  tokens,
	}
}

// Get issues a GET and decodes the response body into out (unless out is nil).
func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

// Post issues a POST with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, body, out)
}

// Put issues a PUT with a JSON body.
func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPut, path, body, out)
}

// Delete issues a DELETE.
func (c *Client) Delete(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodDelete, path, nil, out)
}

const maxResponseSize = 4 * 1024 * 1024 // analyses are a few hundred KB at most

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token := c.tokens.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("erro de conexão com o servidor: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.normalizeError(resp.StatusCode, data)
	}

	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// normalizeError maps an HTTP status plus response body to a single
// human-readable *Error. This is the only place backend failures are
// translated; callers never interpret status codes themselves.
func (c *Client) normalizeError(status int, body []byte) *Error {
	detail := extractDetail(body)

	var message string
	switch {
	case status == http.StatusUnauthorized:
		message = "Sessão expirada. Por favor, faça login novamente."
		// Stale token is useless from here on.
		_ = c.tokens.SetToken("")
	case status == http.StatusForbidden:
		message = "Você não tem permissão para realizar esta ação."
	case status == http.StatusNotFound:
		message = "Recurso não encontrado."
	case status == http.StatusTooManyRequests:
		message = detail
		if message == "" {
			message = "Limite de requisições atingido. Tente novamente mais tarde."
		}
	case status >= 500:
		message = "Erro no servidor. Tente novamente mais tarde."
	default:
		message = detail
		if message == "" {
			message = "Erro ao processar requisição."
		}
	}

	return &Error{Status: status, Message: message}
}

// extractDetail pulls the "detail" field FastAPI-style backends attach to
// error responses. Non-string details (validation error lists) are ignored.
func extractDetail(body []byte) string {
	var payload struct {
		Detail any `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	if s, ok := payload.Detail.(string); ok {
		return s
	}
	return ""
}
