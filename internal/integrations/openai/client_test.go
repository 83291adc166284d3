package openai

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"solana-terminal/internal/domain"
)

type fakeKeys struct {
	key   string
	err   error
	calls int
}

func (f *fakeKeys) Value(context.Context) (string, error) {
	f.calls++
	return f.key, f.err
}

func writeChunk(t *testing.T, w http.ResponseWriter, content string) {
	t.Helper()
	data, err := json.Marshal(map[string]any{
		"id":      "chatcmpl-1",
		"object":  "chat.completion.chunk",
		"created": 1,
		"model":   "gpt-4o",
		"choices": []any{map[string]any{
			"index":         0,
			"delta":         map[string]any{"content": content},
			"finish_reason": nil,
		}},
	})
	require.NoError(t, err)
	_, _ = w.Write([]byte("data: "))
	_, _ = w.Write(data)
	_, _ = w.Write([]byte("\n\n"))
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}

func newTestClient(t *testing.T, srv *httptest.Server, opts ...Option) *Client {
	t.Helper()
	opts = append([]Option{
		WithBaseURL(srv.URL),
		WithHTTPClient(&http.Client{Timeout: 2 * time.Second}),
	}, opts...)
	c, err := NewClient(StaticKey("sk-test"), opts...)
	require.NoError(t, err)
	return c
}

func collect(t *testing.T, c *Client, msgs []domain.ChatMessage) ([]string, error) {
	t.Helper()
	src, err := c.Stream(context.Background(), msgs)
	require.NoError(t, err)
	defer func() { _ = src.Close() }()
	var parts []string
	for src.Next() {
		parts = append(parts, src.Content())
	}
	return parts, src.Err()
}

var userHi = []domain.ChatMessage{{Role: domain.RoleUser, Content: "hi"}}

// ---------------------------------------------------------------------------
// NewClient / Ready
// ---------------------------------------------------------------------------

func TestNewClient_NilKeySource(t *testing.T) {
	_, err := NewClient(nil)
	require.ErrorContains(t, err, "nil")
}

func TestNewClient_Defaults(t *testing.T) {
	c, err := NewClient(StaticKey("sk"))
	require.NoError(t, err)
	require.Equal(t, DefaultBaseURL, c.baseURL)
	require.Equal(t, DefaultModel, c.Model())
	require.Equal(t, DefaultMaxTokens, c.maxTokens)
	require.InDelta(t, DefaultTemperature, c.temperature, 1e-9)
}

func TestNewClient_OptionsIgnoreBlankValues(t *testing.T) {
	c, err := NewClient(StaticKey("sk"), WithModel(" "), WithBaseURL(""), WithMaxTokens(0))
	require.NoError(t, err)
	require.Equal(t, DefaultModel, c.model)
	require.Equal(t, DefaultBaseURL, c.baseURL)
	require.Equal(t, DefaultMaxTokens, c.maxTokens)
}

func TestReady(t *testing.T) {
	c, err := NewClient(StaticKey(""))
	require.NoError(t, err)
	require.ErrorIs(t, c.Ready(context.Background()), ErrMissingAPIKey)

	keys := &fakeKeys{err: errors.New("ssm unavailable")}
	c, err = NewClient(keys)
	require.NoError(t, err)
	err = c.Ready(context.Background())
	require.ErrorIs(t, err, ErrMissingAPIKey)
	require.ErrorContains(t, err, "ssm unavailable")

	c, err = NewClient(&fakeKeys{key: "sk-ssm"})
	require.NoError(t, err)
	require.NoError(t, c.Ready(context.Background()))
}

func TestBaseURL(t *testing.T) {
	cases := map[string]string{
		"https://api.openai.com/v1":  "https://api.openai.com/v1/",
		"https://api.openai.com/v1/": "https://api.openai.com/v1/",
		"http://localhost:8080":      "http://localhost:8080/v1/",
		"":                           "https://api.openai.com/v1/",
	}
	for in, want := range cases {
		require.Equal(t, want, baseURL(in), "base=%q", in)
	}
}

// ---------------------------------------------------------------------------
// Stream
// ---------------------------------------------------------------------------

func TestClient_Stream_HappyPath(t *testing.T) {
	var got map[string]any
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/chat/completions", r.URL.Path)
		require.Equal(t, http.MethodPost, r.Method)
		auth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "text/event-stream")
		writeChunk(t, w, "Hel")
		writeChunk(t, w, "lo")
		_, _ = w.Write([]byte("data: [DONE]\n\n"))
	}))
	defer srv.Close()

	c := newTestClient(t, srv)
	parts, err := collect(t, c, []domain.ChatMessage{
		{Role: domain.RoleSystem, Content: "be helpful"},
		{Role: domain.RoleUser, Content: "hi"},
		{Role: domain.RoleAssistant, Content: "hello"},
	})
	require.NoError(t, err)
	require.Equal(t, []string{"Hel", "lo"}, parts)

	require.Equal(t, "Bearer sk-test", auth)
	require.Equal(t, "gpt-4o", got["model"])
	require.Equal(t, true, got["stream"])
	require.Equal(t, float64(2000), got["max_tokens"])
	temp, _ := got["temperature"].(float64)
	require.Less(t, math.Abs(temp-0.7), 1e-4)
	msgs, ok := got["messages"].([]any)
	require.True(t, ok)
	require.Len(t, msgs, 3)
	for i, role := range []string{"system", "user", "assistant"} {
		require.Equal(t, role, msgs[i].(map[string]any)["role"])
	}
}

func TestClient_Stream_ModelOverride(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "text/event-stream")
		_, _ = w.Write([]byte("data: [DONE]\n\n"))
	}))
	defer srv.Close()

	c := newTestClient(t, srv, WithModel("gpt-4o-mini"), WithMaxTokens(10), WithTemperature(0.2))
	parts, err := collect(t, c, userHi)
	require.NoError(t, err)
	require.Empty(t, parts)
	require.Equal(t, "gpt-4o-mini", got["model"])
	require.Equal(t, float64(10), got["max_tokens"])
}

func TestClient_Stream_MissingKeySkipsNetwork(t *testing.T) {
	hit := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hit = true
	}))
	defer srv.Close()

	c, err := NewClient(StaticKey(""), WithBaseURL(srv.URL))
	require.NoError(t, err)
	_, err = c.Stream(context.Background(), userHi)
	require.ErrorIs(t, err, ErrMissingAPIKey)
	require.False(t, hit)
}

func TestClient_Stream_EmptyMessages(t *testing.T) {
	c, err := NewClient(StaticKey("sk"))
	require.NoError(t, err)
	_, err = c.Stream(context.Background(), nil)
	require.ErrorContains(t, err, "messages")
}

func TestClient_Stream_UnsupportedRole(t *testing.T) {
	c, err := NewClient(StaticKey("sk"))
	require.NoError(t, err)
	_, err = c.Stream(context.Background(), []domain.ChatMessage{{Role: "tool", Content: "x"}})
	require.ErrorContains(t, err, "unsupported role")
}

func TestClient_Stream_429(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"Rate limit reached","type":"requests","code":"rate_limit_exceeded"}}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv)
	_, err := c.Stream(context.Background(), userHi)
	require.Error(t, err)

	var se *HTTPStatusError
	require.ErrorAs(t, err, &se)
	require.Equal(t, http.StatusTooManyRequests, se.HTTPStatusCode())
	require.Contains(t, err.Error(), "429")
	require.Equal(t, 1, calls, "rate limits must not be retried")
}

func TestClient_Stream_500(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"message":"boom"}}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv)
	_, err := c.Stream(context.Background(), userHi)
	var se *HTTPStatusError
	require.ErrorAs(t, err, &se)
	require.Equal(t, http.StatusInternalServerError, se.StatusCode)
}

func TestClient_Stream_NetworkError(t *testing.T) {
	c, err := NewClient(StaticKey("sk"),
		WithBaseURL("http://127.0.0.1:1"),
		WithHTTPClient(&http.Client{Timeout: 200 * time.Millisecond}))
	require.NoError(t, err)

	_, err = c.Stream(context.Background(), userHi)
	require.ErrorContains(t, err, "start stream")
}

func TestClient_Stream_KeyResolvedPerRequest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		_, _ = w.Write([]byte("data: [DONE]\n\n"))
	}))
	defer srv.Close()

	keys := &fakeKeys{key: "sk-ssm"}
	c, err := NewClient(keys, WithBaseURL(srv.URL))
	require.NoError(t, err)
	_, err = collect(t, c, userHi)
	require.NoError(t, err)
	_, err = collect(t, c, userHi)
	require.NoError(t, err)
	require.Equal(t, 2, keys.calls)
}
