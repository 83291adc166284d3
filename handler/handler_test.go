package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambdaurl"
	"github.com/stretchr/testify/require"

	"solana-terminal/internal/domain"
	"solana-terminal/internal/intent"
	"solana-terminal/internal/metrics"
	"solana-terminal/internal/stream"
	"solana-terminal/internal/usecase"
)

// ---------------------------------------------------------------------------
// Fakes
// ---------------------------------------------------------------------------

type stubChat struct {
	out   usecase.ChatOutput
	err   error
	in    usecase.ChatInput
	panic any
}

func (s *stubChat) Chat(_ context.Context, in usecase.ChatInput) (usecase.ChatOutput, error) {
	if s.panic != nil {
		panic(s.panic)
	}
	s.in = in
	return s.out, s.err
}

type stubMarket struct {
	body      json.RawMessage
	err       error
	mint      string
	timeframe string
}

func (s *stubMarket) SolPrice(context.Context) (json.RawMessage, error) { return s.body, s.err }

func (s *stubMarket) NativePrice(context.Context) (json.RawMessage, error) { return s.body, s.err }

func (s *stubMarket) Stats(_ context.Context, mint string) (json.RawMessage, error) {
	s.mint = mint
	return s.body, s.err
}

func (s *stubMarket) Trending(_ context.Context, timeframe string) (json.RawMessage, error) {
	s.timeframe = timeframe
	return s.body, s.err
}

// brokenSource yields one fragment and then fails.
type brokenSource struct {
	sent bool
}

func (b *brokenSource) Next() bool {
	if b.sent {
		return false
	}
	b.sent = true
	return true
}

func (b *brokenSource) Content() string { return "partial" }
func (b *brokenSource) Err() error {
	if b.sent {
		return errors.New("upstream reset")
	}
	return nil
}
func (b *brokenSource) Close() error { return nil }

func newTestHandler(t *testing.T, chat ChatUseCase, market MarketUseCase, opts ...Option) http.Handler {
	t.Helper()
	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
	h, err := NewHandler(chat, market, append([]Option{WithLogger(quiet)}, opts...)...)
	require.NoError(t, err)
	return h.Routes()
}

func postChat(t *testing.T, routes http.Handler, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	routes.ServeHTTP(rec, req)
	return rec
}

func parseBody[T any](t *testing.T, body []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(body, &v))
	return v
}

// ---------------------------------------------------------------------------
// Construction
// ---------------------------------------------------------------------------

func TestNewHandler_ValidatesDependencies(t *testing.T) {
	_, err := NewHandler(nil, &stubMarket{})
	require.Error(t, err)

	_, err = NewHandler(&stubChat{}, nil)
	require.Error(t, err)
}

// ---------------------------------------------------------------------------
// Chat
// ---------------------------------------------------------------------------

func TestChat_StreamsFrames(t *testing.T) {
	m := metrics.New()
	chat := &stubChat{out: usecase.ChatOutput{Intent: intent.General, Source: stream.Fragments("Hel", "lo")}}
	routes := newTestHandler(t, chat, &stubMarket{}, WithMetrics(m))

	rec := postChat(t, routes, `{"messages":[{"role":"User","content":"hi"}]}`, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "data: {\"content\":\"Hel\"}\n\ndata: {\"content\":\"lo\"}\n\ndata: [DONE]\n\n", rec.Body.String())
	require.Equal(t, []domain.ChatMessage{{Role: domain.RoleUser, Content: "hi"}}, chat.in.Messages)
	require.Equal(t, float64(1), m.RelayCount(relayCompleted))
}

func TestChat_SetsStreamingHeaders(t *testing.T) {
	chat := &stubChat{out: usecase.ChatOutput{Source: stream.Text("ok")}}
	rec := postChat(t, newTestHandler(t, chat, &stubMarket{}), `{"messages":[{"role":"user","content":"hi"}]}`, nil)

	require.Equal(t, "text/plain; charset=utf-8", rec.Header().Get("Content-Type"))
	require.Equal(t, "no-cache", rec.Header().Get("Cache-Control"))
	require.Equal(t, "keep-alive", rec.Header().Get("Connection"))
	require.Equal(t, "no", rec.Header().Get("X-Accel-Buffering"))
	require.NotEmpty(t, rec.Header().Get("X-Correlation-Id"))
}

func TestChat_UsesIncomingCorrelationIDCaseInsensitive(t *testing.T) {
	chat := &stubChat{out: usecase.ChatOutput{Source: stream.Text("ok")}}
	routes := newTestHandler(t, chat, &stubMarket{})

	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(`{"messages":[{"role":"user","content":"hi"}]}`))
	req.Header.Set("x-correlation-id", "corr-123")
	rec := httptest.NewRecorder()
	routes.ServeHTTP(rec, req)

	require.Equal(t, "corr-123", rec.Header().Get("X-Correlation-Id"))
}

func TestChat_InvalidBody(t *testing.T) {
	chat := &stubChat{}
	rec := postChat(t, newTestHandler(t, chat, &stubMarket{}), `not-json`, nil)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	out := parseBody[errorResponse](t, rec.Body.Bytes())
	require.Equal(t, string(usecase.ErrorInvalidInput), out.Error)
}

func TestChat_MapsUseCaseErrors(t *testing.T) {
	cases := []struct {
		name    string
		err     error
		status  int
		code    string
		message string
	}{
		{
			name:   "invalid input",
			err:    &usecase.Error{Code: usecase.ErrorInvalidInput, Reason: "messages_required"},
			status: http.StatusBadRequest,
			code:   "INVALID_INPUT",
		},
		{
			name:    "missing key",
			err:     &usecase.Error{Code: usecase.ErrorConfiguration, Reason: "openai_key_missing"},
			status:  http.StatusInternalServerError,
			code:    "CONFIGURATION_ERROR",
			message: "OpenAI API key not configured",
		},
		{
			name:   "rate limited",
			err:    &usecase.Error{Code: usecase.ErrorRateLimited, Reason: "rate_limited"},
			status: http.StatusTooManyRequests,
			code:   "RATE_LIMITED",
		},
		{
			name:   "upstream",
			err:    &usecase.Error{Code: usecase.ErrorUpstream, Reason: "llm_error"},
			status: http.StatusBadGateway,
			code:   "UPSTREAM_ERROR",
		},
		{
			name:   "backend not configured",
			err:    &usecase.Error{Code: usecase.ErrorBackendNotConfigured, Reason: "backend_missing"},
			status: http.StatusServiceUnavailable,
			code:   "BACKEND_NOT_CONFIGURED",
		},
		{
			name:    "untyped",
			err:     errors.New("boom"),
			status:  http.StatusInternalServerError,
			code:    "INTERNAL_ERROR",
			message: "Internal server error",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := postChat(t, newTestHandler(t, &stubChat{err: tc.err}, &stubMarket{}), `{"messages":[{"role":"user","content":"hi"}]}`, nil)

			require.Equal(t, tc.status, rec.Code)
			out := parseBody[errorResponse](t, rec.Body.Bytes())
			require.Equal(t, tc.code, out.Error)
			if tc.message != "" {
				require.Equal(t, tc.message, out.Message)
			}
		})
	}
}

func TestChat_InternalErrorIncludesDetails(t *testing.T) {
	rec := postChat(t, newTestHandler(t, &stubChat{err: errors.New("boom")}, &stubMarket{}), `{"messages":[{"role":"user","content":"hi"}]}`, nil)

	out := parseBody[errorResponse](t, rec.Body.Bytes())
	require.Equal(t, "boom", out.Details)
}

func TestChat_MidStreamFailureAbortsWithoutDone(t *testing.T) {
	m := metrics.New()
	chat := &stubChat{out: usecase.ChatOutput{Source: &brokenSource{}}}
	srv := httptest.NewServer(newTestHandler(t, chat, &stubMarket{}, WithMetrics(m)))
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/api/chat", "application/json", strings.NewReader(`{"messages":[{"role":"user","content":"hi"}]}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, readErr := io.ReadAll(resp.Body)
	require.Error(t, readErr)
	require.Contains(t, string(body), `data: {"content":"partial"}`)
	require.NotContains(t, string(body), "[DONE]")
	require.Equal(t, float64(1), m.RelayCount(relayFailed))
}

func lambdaChatRequest(body string) *events.LambdaFunctionURLRequest {
	return &events.LambdaFunctionURLRequest{
		RawPath: "/api/chat",
		Body:    body,
		Headers: map[string]string{"content-type": "application/json"},
		RequestContext: events.LambdaFunctionURLRequestContext{
			DomainName: "example.lambda-url.us-east-1.on.aws",
			HTTP:       events.LambdaFunctionURLRequestContextHTTPDescription{Method: http.MethodPost},
		},
	}
}

func TestChat_LambdaMidStreamFailureEndsBodyWithoutDone(t *testing.T) {
	m := metrics.New()
	chat := &stubChat{out: usecase.ChatOutput{Source: &brokenSource{}}}
	invoke := lambdaurl.Wrap(RecoverAbort(newTestHandler(t, chat, &stubMarket{}, WithMetrics(m))))

	resp, err := invoke(context.Background(), lambdaChatRequest(`{"messages":[{"role":"user","content":"hi"}]}`))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Contains(t, string(body), `data: {"content":"partial"}`)
	require.NotContains(t, string(body), "[DONE]")
	require.Equal(t, float64(1), m.RelayCount(relayFailed))
}

func TestChat_LambdaCompletedStream(t *testing.T) {
	chat := &stubChat{out: usecase.ChatOutput{Source: stream.Text("ok")}}
	invoke := lambdaurl.Wrap(RecoverAbort(newTestHandler(t, chat, &stubMarket{})))

	resp, err := invoke(context.Background(), lambdaChatRequest(`{"messages":[{"role":"user","content":"hi"}]}`))
	require.NoError(t, err)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Equal(t, "data: {\"content\":\"ok\"}\n\ndata: [DONE]\n\n", string(body))
	require.Equal(t, "text/plain; charset=utf-8", resp.Headers["Content-Type"])
}

func TestRecoverAbort_SwallowsPanics(t *testing.T) {
	for _, v := range []any{http.ErrAbortHandler, "unexpected"} {
		h := RecoverAbort(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { panic(v) }))
		require.NotPanics(t, func() {
			h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
		})
	}
}

func TestChat_PanicBecomesInternalError(t *testing.T) {
	rec := postChat(t, newTestHandler(t, &stubChat{panic: "kaboom"}, &stubMarket{}), `{"messages":[{"role":"user","content":"hi"}]}`, nil)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	out := parseBody[errorResponse](t, rec.Body.Bytes())
	require.Equal(t, "INTERNAL_ERROR", out.Error)
	require.Contains(t, out.Details, "kaboom")
}

// ---------------------------------------------------------------------------
// Market proxies
// ---------------------------------------------------------------------------

func TestProxy_PassesBodyThrough(t *testing.T) {
	market := &stubMarket{body: json.RawMessage(`{"price":1.5}`)}
	routes := newTestHandler(t, &stubChat{}, market)

	for _, path := range []string{"/api/solPrice", "/api/nativePrice", "/api/stats?token=abc", "/api/trending?timeframe=1h"} {
		rec := httptest.NewRecorder()
		routes.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, path, nil))

		require.Equal(t, http.StatusOK, rec.Code, path)
		require.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		require.JSONEq(t, `{"price":1.5}`, rec.Body.String())
	}
	require.Equal(t, "abc", market.mint)
	require.Equal(t, "1h", market.timeframe)
}

func TestProxy_Failures(t *testing.T) {
	cases := []struct {
		path    string
		err     error
		status  int
		message string
	}{
		{"/api/solPrice", &usecase.Error{Code: usecase.ErrorUpstream, Reason: "price_error"}, http.StatusBadGateway, "Failed to fetch SOL price"},
		{"/api/nativePrice", &usecase.Error{Code: usecase.ErrorUpstream, Reason: "price_error"}, http.StatusBadGateway, "Failed to fetch native token price"},
		{"/api/stats?token=x", &usecase.Error{Code: usecase.ErrorUpstream, Reason: "stats_error"}, http.StatusBadGateway, "Failed to fetch token stats"},
		{"/api/trending", &usecase.Error{Code: usecase.ErrorUpstream, Reason: "trending_error"}, http.StatusBadGateway, "Failed to fetch trending tokens"},
		{"/api/stats?token=x", &usecase.Error{Code: usecase.ErrorInvalidInput, Reason: "invalid_token"}, http.StatusBadRequest, ""},
		{"/api/trending", &usecase.Error{Code: usecase.ErrorBackendNotConfigured, Reason: "backend_missing"}, http.StatusServiceUnavailable, ""},
	}

	for _, tc := range cases {
		t.Run(tc.path, func(t *testing.T) {
			routes := newTestHandler(t, &stubChat{}, &stubMarket{err: tc.err})
			rec := httptest.NewRecorder()
			routes.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, tc.path, nil))

			require.Equal(t, tc.status, rec.Code)
			if tc.message != "" {
				out := parseBody[errorResponse](t, rec.Body.Bytes())
				require.Equal(t, tc.message, out.Message)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// Ambient routes
// ---------------------------------------------------------------------------

func TestHealthz(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestHandler(t, &stubChat{}, &stubMarket{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestMetricsRoute(t *testing.T) {
	m := metrics.New()
	m.ObserveChat("general")
	routes := newTestHandler(t, &stubChat{}, &stubMarket{}, WithMetrics(m))

	rec := httptest.NewRecorder()
	routes.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, bytes.Contains(rec.Body.Bytes(), []byte("chat_requests_total")))
}

func TestCORSPreflight(t *testing.T) {
	routes := newTestHandler(t, &stubChat{}, &stubMarket{}, WithCORSOrigins([]string{"https://app.example"}))

	req := httptest.NewRequest(http.MethodOptions, "/api/chat", nil)
	req.Header.Set("Origin", "https://app.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	routes.ServeHTTP(rec, req)

	require.Equal(t, "https://app.example", rec.Header().Get("Access-Control-Allow-Origin"))
}
