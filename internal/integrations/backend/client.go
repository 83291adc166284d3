// Package backend reads token, wallet and market data from the blockchain
// data API. Every read is best effort: failures come back as tagged results
// and are never retried.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"

	"solana-terminal/internal/domain"
	"solana-terminal/internal/logger"
	"solana-terminal/internal/metrics"
)

// ErrNotConfigured is returned without any network call when no base URL is set.
var ErrNotConfigured = errors.New("backend: base URL not configured")

// StatusError captures non-2xx upstream responses.
type StatusError struct {
	StatusCode int
	Path       string
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("backend: unexpected status %d from %s: %s", e.StatusCode, e.Path, e.Body)
}

func (e *StatusError) HTTPStatusCode() int {
	return e.StatusCode
}

// DecodeError wraps a payload that was not the expected JSON.
type DecodeError struct {
	Path string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("backend: decode %s: %v", e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Result is either a decoded value or the reason the read failed.
type Result[T any] struct {
	Value *T
	Err   error
}

func (r Result[T]) OK() bool {
	return r.Err == nil && r.Value != nil
}

// Report collapses the result to nil on failure, which formatters render as
// "no data".
func (r Result[T]) Report() *T {
	if !r.OK() {
		return nil
	}
	return r.Value
}

// Resource names used for logging and metrics.
const (
	ResourceToken    = "token"
	ResourceATH      = "ath"
	ResourceSearch   = "search"
	ResourceWallet   = "wallet"
	ResourcePrice    = "price"
	ResourceStats    = "stats"
	ResourceTrending = "trending"
)

const errorBodyLimit = 512

// Client is a focused client for the backend data API.
type Client struct {
	http       *resty.Client
	configured bool
	metrics    *metrics.Metrics
}

type Option func(*options)

type options struct {
	httpClient *http.Client
	metrics    *metrics.Metrics
}

func WithHTTPClient(hc *http.Client) Option {
	return func(o *options) {
		o.httpClient = hc
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

// New creates a Client. An empty baseURL yields a client whose reads all
// fail fast with ErrNotConfigured. apiKey is sent as x-api-key when set.
func New(baseURL, apiKey string, opts ...Option) *Client {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	var rc *resty.Client
	if o.httpClient != nil {
		rc = resty.NewWithClient(o.httpClient)
	} else {
		rc = resty.New()
	}
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	rc.SetBaseURL(baseURL)
	rc.SetHeader("Content-Type", "application/json")
	rc.SetHeader("Accept", "application/json")
	if key := strings.TrimSpace(apiKey); key != "" {
		rc.SetHeader("x-api-key", key)
	}

	return &Client{
		http:       rc,
		configured: baseURL != "",
		metrics:    o.metrics,
	}
}

// Configured reports whether a base URL was provided.
func (c *Client) Configured() bool {
	return c.configured
}

// Token fetches GET /tokens/{mint}.
func (c *Client) Token(ctx context.Context, mint string) Result[domain.TokenReport] {
	return fetch[domain.TokenReport](ctx, c, ResourceToken, "/tokens/{mint}", func(r *resty.Request) {
		r.SetPathParam("mint", mint)
	})
}

// ATH fetches GET /tokens/{mint}/ath.
func (c *Client) ATH(ctx context.Context, mint string) Result[domain.AthReport] {
	return fetch[domain.AthReport](ctx, c, ResourceATH, "/tokens/{mint}/ath", func(r *resty.Request) {
		r.SetPathParam("mint", mint)
	})
}

// Search fetches GET /search?query=.
func (c *Client) Search(ctx context.Context, query string) Result[domain.SearchResponse] {
	return fetch[domain.SearchResponse](ctx, c, ResourceSearch, "/search", func(r *resty.Request) {
		r.SetQueryParam("query", query)
	})
}

// Wallet fetches GET /wallet/{address}/chart.
func (c *Client) Wallet(ctx context.Context, address string) Result[domain.WalletReport] {
	return fetch[domain.WalletReport](ctx, c, ResourceWallet, "/wallet/{address}/chart", func(r *resty.Request) {
		r.SetPathParam("address", address)
	})
}

func fetch[T any](ctx context.Context, c *Client, resource, path string, prepare func(*resty.Request)) Result[T] {
	raw, err := c.get(ctx, path, prepare)
	if err != nil {
		c.observe(ctx, resource, err)
		return Result[T]{Err: err}
	}

	var v T
	if err := decode(raw, &v); err != nil {
		derr := &DecodeError{Path: path, Err: err}
		c.observe(ctx, resource, derr)
		return Result[T]{Err: derr}
	}
	c.observe(ctx, resource, nil)
	return Result[T]{Value: &v}
}

func decode(raw []byte, v any) error {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return errors.New("empty payload")
	}
	return json.Unmarshal(trimmed, v)
}

func (c *Client) get(ctx context.Context, path string, prepare func(*resty.Request)) ([]byte, error) {
	if !c.configured {
		return nil, ErrNotConfigured
	}

	req := c.http.R().SetContext(ctx)
	if prepare != nil {
		prepare(req)
	}
	resp, err := req.Get(path)
	if err != nil {
		return nil, fmt.Errorf("backend: GET %s: %w", path, err)
	}
	if !resp.IsSuccess() {
		body := resp.String()
		if len(body) > errorBodyLimit {
			body = body[:errorBodyLimit]
		}
		return nil, &StatusError{StatusCode: resp.StatusCode(), Path: path, Body: body}
	}
	return resp.Body(), nil
}

func (c *Client) observe(ctx context.Context, resource string, err error) {
	outcome := Outcome(err)
	c.metrics.ObserveFetch(resource, outcome)

	log := logger.FromContext(ctx)
	switch outcome {
	case OutcomeOK:
		log.Debug("backend fetch succeeded", "resource", resource)
	case OutcomeNotConfigured:
		log.Debug("backend not configured, skipping fetch", "resource", resource)
	default:
		log.Warn("backend fetch failed", "resource", resource, "outcome", outcome, "err", err)
	}
}

// Fetch outcomes, used as metric labels.
const (
	OutcomeOK            = "ok"
	OutcomeNotConfigured = "not_configured"
	OutcomeStatus        = "status"
	OutcomeDecode        = "decode"
	OutcomeTransport     = "transport"
)

// Outcome classifies a fetch error.
func Outcome(err error) string {
	if err == nil {
		return OutcomeOK
	}
	if errors.Is(err, ErrNotConfigured) {
		return OutcomeNotConfigured
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return OutcomeStatus
	}
	var decodeErr *DecodeError
	if errors.As(err, &decodeErr) {
		return OutcomeDecode
	}
	return OutcomeTransport
}
