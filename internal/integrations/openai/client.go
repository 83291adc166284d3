package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/packages/ssestream"

	"solana-terminal/internal/domain"
	"solana-terminal/internal/stream"
)

const (
	DefaultBaseURL     = "https://api.openai.com/v1"
	DefaultModel       = "gpt-4o"
	DefaultMaxTokens   = 2000
	DefaultTemperature = 0.7
)

// ErrMissingAPIKey is returned when no API key can be resolved.
var ErrMissingAPIKey = errors.New("openai: api key not configured")

// KeySource supplies the API key. *paramstore.Secret satisfies it.
type KeySource interface {
	Value(ctx context.Context) (string, error)
}

// StaticKey is a KeySource for a key known at startup.
type StaticKey string

func (k StaticKey) Value(context.Context) (string, error) {
	if strings.TrimSpace(string(k)) == "" {
		return "", ErrMissingAPIKey
	}
	return string(k), nil
}

// HTTPStatusError captures non-2xx upstream responses with status-aware context.
type HTTPStatusError struct {
	StatusCode int
	URL        string
	Body       string
	Err        error
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("openai: unexpected status %d from %s: %s", e.StatusCode, e.URL, e.Body)
}

func (e *HTTPStatusError) HTTPStatusCode() int {
	return e.StatusCode
}

func (e *HTTPStatusError) Unwrap() error {
	return e.Err
}

// Client streams chat completions from an OpenAI-compatible endpoint.
type Client struct {
	keys        KeySource
	baseURL     string
	httpClient  *http.Client
	model       string
	maxTokens   int
	temperature float64
}

type Option func(*Client)

func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if baseURL = strings.TrimSpace(baseURL); baseURL != "" {
			c.baseURL = baseURL
		}
	}
}

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

func WithModel(model string) Option {
	return func(c *Client) {
		if model = strings.TrimSpace(model); model != "" {
			c.model = model
		}
	}
}

func WithMaxTokens(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxTokens = n
		}
	}
}

func WithTemperature(t float64) Option {
	return func(c *Client) {
		c.temperature = t
	}
}

// NewClient creates a Client. The key is resolved through keys on every
// request so a parameter-store backed source can be fetched lazily.
func NewClient(keys KeySource, opts ...Option) (*Client, error) {
	if keys == nil {
		return nil, errors.New("openai: key source must not be nil")
	}
	c := &Client{
		keys:        keys,
		baseURL:     DefaultBaseURL,
		httpClient:  &http.Client{},
		model:       DefaultModel,
		maxTokens:   DefaultMaxTokens,
		temperature: DefaultTemperature,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Model returns the configured model name.
func (c *Client) Model() string { return c.model }

// Ready reports whether an API key can be resolved.
func (c *Client) Ready(ctx context.Context) error {
	_, err := c.resolveAPIKey(ctx)
	return err
}

func (c *Client) resolveAPIKey(ctx context.Context) (string, error) {
	key, err := c.keys.Value(ctx)
	if err != nil {
		if errors.Is(err, ErrMissingAPIKey) {
			return "", err
		}
		return "", fmt.Errorf("%w: %w", ErrMissingAPIKey, err)
	}
	if strings.TrimSpace(key) == "" {
		return "", ErrMissingAPIKey
	}
	return key, nil
}

// Stream starts a streaming chat completion. Errors returned here happened
// before any content was produced; failures after that surface through the
// returned source's Err.
func (c *Client) Stream(ctx context.Context, messages []domain.ChatMessage) (stream.Source, error) {
	if len(messages) == 0 {
		return nil, errors.New("openai: messages are required")
	}
	apiKey, err := c.resolveAPIKey(ctx)
	if err != nil {
		return nil, err
	}
	params, err := c.buildParams(messages)
	if err != nil {
		return nil, err
	}

	api := openai.NewClient(
		option.WithAPIKey(apiKey),
		option.WithBaseURL(baseURL(c.baseURL)),
		option.WithHTTPClient(c.resolvedHTTPClient()),
		option.WithMaxRetries(0),
	)
	s := api.Chat.Completions.NewStreaming(ctx, params)
	if err := s.Err(); err != nil {
		_ = s.Close()
		return nil, wrapAPIError(err)
	}
	return &chatStream{stream: s}, nil
}

func (c *Client) buildParams(messages []domain.ChatMessage) (openai.ChatCompletionNewParams, error) {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, m := range messages {
		p, err := toMessageParam(m)
		if err != nil {
			return openai.ChatCompletionNewParams{}, err
		}
		out = append(out, p)
	}
	params := openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(c.model),
		Messages:    out,
		Temperature: openai.Float(c.temperature),
	}
	if c.maxTokens > 0 {
		params.MaxTokens = openai.Int(int64(c.maxTokens))
	}
	return params, nil
}

func toMessageParam(m domain.ChatMessage) (openai.ChatCompletionMessageParamUnion, error) {
	switch strings.ToLower(strings.TrimSpace(m.Role)) {
	case domain.RoleSystem:
		return openai.SystemMessage(m.Content), nil
	case domain.RoleUser:
		return openai.UserMessage(m.Content), nil
	case domain.RoleAssistant:
		return openai.AssistantMessage(m.Content), nil
	default:
		return openai.ChatCompletionMessageParamUnion{}, fmt.Errorf("openai: unsupported role %q", m.Role)
	}
}

// resolvedHTTPClient returns the configured HTTP client, or the default one
// if none was set.
func (c *Client) resolvedHTTPClient() *http.Client {
	if c.httpClient != nil {
		return c.httpClient
	}
	return http.DefaultClient
}

func baseURL(base string) string {
	base = strings.TrimRight(base, "/")
	if base == "" {
		base = DefaultBaseURL
	}
	if !strings.HasSuffix(base, "/v1") {
		base += "/v1"
	}
	return base + "/"
}

func wrapAPIError(err error) error {
	var apiErr *openai.Error
	if !errors.As(err, &apiErr) {
		return fmt.Errorf("openai: start stream: %w", err)
	}
	var url string
	if apiErr.Request != nil && apiErr.Request.URL != nil {
		url = apiErr.Request.URL.String()
	}
	return &HTTPStatusError{
		StatusCode: apiErr.StatusCode,
		URL:        url,
		Body:       apiErr.Message,
		Err:        err,
	}
}

type chatStream struct {
	stream *ssestream.Stream[openai.ChatCompletionChunk]
}

func (s *chatStream) Next() bool {
	return s.stream.Next()
}

func (s *chatStream) Content() string {
	chunk := s.stream.Current()
	if len(chunk.Choices) == 0 {
		return ""
	}
	return chunk.Choices[0].Delta.Content
}

func (s *chatStream) Err() error {
	if err := s.stream.Err(); err != nil {
		return fmt.Errorf("openai: stream: %w", err)
	}
	return nil
}

func (s *chatStream) Close() error {
	return s.stream.Close()
}
