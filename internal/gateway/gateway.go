// Package gateway provides the remote contacts API client.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/rcliao/contacts/internal/model"
)

// ErrUnavailable matches every gateway failure: transport errors, non-2xx
// responses and undecodable bodies are all reported the same way.
var ErrUnavailable = errors.New("contacts api unavailable")

// Gateway lists and creates contacts on the remote service.
type Gateway interface {
	List(ctx context.Context) ([]model.Contact, error)
	Create(ctx context.Context, c model.Candidate) (model.Contact, error)
}

// Error describes a failed gateway call.
type Error struct {
	Op     string
	Status int // 0 when no response was received
	Err    error
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("gateway %s: status %d: %v", e.Op, e.Status, e.Err)
	}
	return fmt.Sprintf("gateway %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Is makes every *Error match ErrUnavailable.
func (e *Error) Is(target error) bool { return target == ErrUnavailable }

// HTTPGateway talks to a JSON contacts API:
//
//	GET  {base}/contacts -> [{id, name, email, phone}]
//	POST {base}/contacts {name, email, phone} -> {id, ...}
type HTTPGateway struct {
	baseURL string
	client  *http.Client
}

// Option configures an HTTPGateway.
type Option func(*HTTPGateway)

// WithTimeout sets the per-request client timeout.
func WithTimeout(d time.Duration) Option {
	return func(g *HTTPGateway) {
		if d > 0 {
			g.client.Timeout = d
		}
	}
}

// WithHTTPClient replaces the underlying client.
func WithHTTPClient(c *http.Client) Option {
	return func(g *HTTPGateway) {
		if c != nil {
			g.client = c
		}
	}
}

// NewHTTP creates a gateway for the API at baseURL. An empty baseURL gives
// an offline gateway whose calls always fail.
func NewHTTP(baseURL string, opts ...Option) *HTTPGateway {
	g := &HTTPGateway{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// BaseURL returns the configured API root.
func (g *HTTPGateway) BaseURL() string { return g.baseURL }

func (g *HTTPGateway) List(ctx context.Context) ([]model.Contact, error) {
	var out []model.Contact
	if err := g.do(ctx, "list", http.MethodGet, nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []model.Contact{}
	}
	return out, nil
}

func (g *HTTPGateway) Create(ctx context.Context, c model.Candidate) (model.Contact, error) {
	body, err := json.Marshal(c)
	if err != nil {
		return model.Contact{}, &Error{Op: "create", Err: err}
	}

	var out model.Contact
	if err := g.do(ctx, "create", http.MethodPost, body, &out); err != nil {
		return model.Contact{}, err
	}
	if out.ID == "" {
		return model.Contact{}, &Error{Op: "create", Err: errors.New("response has no id")}
	}

	// Fields the server did not echo back come from the submitted candidate.
	if out.Name == "" {
		out.Name = c.Name
	}
	if out.Email == "" {
		out.Email = c.Email
	}
	if out.Phone == "" {
		out.Phone = c.Phone
	}
	return out, nil
}

func (g *HTTPGateway) do(ctx context.Context, op, method string, body []byte, dst any) error {
	if g.baseURL == "" {
		return &Error{Op: op, Err: errors.New("no api url configured")}
	}

	var r io.Reader
	if body != nil {
		r = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+"/contacts", r)
	if err != nil {
		return &Error{Op: op, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return &Error{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &Error{Op: op, Status: resp.StatusCode, Err: errors.New(strings.TrimSpace(string(b)))}
	}

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return &Error{Op: op, Status: resp.StatusCode, Err: fmt.Errorf("decode: %w", err)}
	}
	return nil
}
