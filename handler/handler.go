// Package handler exposes the chat and market use cases over HTTP.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/cors"

	"solana-terminal/internal/domain"
	"solana-terminal/internal/logger"
	"solana-terminal/internal/metrics"
	"solana-terminal/internal/stream"
	"solana-terminal/internal/usecase"
)

const (
	correlationHeader = "X-Correlation-Id"
	maxChatBodyBytes  = 1 << 20
)

// Relay outcomes recorded in stream_relays_total.
const (
	relayCompleted  = "completed"
	relayFailed     = "failed"
	relayClientGone = "client_gone"
)

type ChatUseCase interface {
	Chat(ctx context.Context, in usecase.ChatInput) (usecase.ChatOutput, error)
}

type MarketUseCase interface {
	SolPrice(ctx context.Context) (json.RawMessage, error)
	NativePrice(ctx context.Context) (json.RawMessage, error)
	Stats(ctx context.Context, mint string) (json.RawMessage, error)
	Trending(ctx context.Context, timeframe string) (json.RawMessage, error)
}

type Handler struct {
	chat        ChatUseCase
	market      MarketUseCase
	metrics     *metrics.Metrics
	log         *slog.Logger
	corsOrigins []string
}

type Option func(*Handler)

func WithMetrics(m *metrics.Metrics) Option {
	return func(h *Handler) {
		h.metrics = m
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(h *Handler) {
		if l != nil {
			h.log = l
		}
	}
}

func WithCORSOrigins(origins []string) Option {
	return func(h *Handler) {
		h.corsOrigins = origins
	}
}

func NewHandler(chat ChatUseCase, market MarketUseCase, opts ...Option) (*Handler, error) {
	if chat == nil {
		return nil, errors.New("handler: chat use case must not be nil")
	}
	if market == nil {
		return nil, errors.New("handler: market use case must not be nil")
	}
	h := &Handler{
		chat:        chat,
		market:      market,
		log:         slog.Default(),
		corsOrigins: []string{"*"},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h, nil
}

// Routes builds the HTTP router.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(h.withCorrelation)
	r.Use(h.recoverer)
	r.Use(cors.New(cors.Options{
		AllowedOrigins: h.corsOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", correlationHeader},
		ExposedHeaders: []string{correlationHeader},
	}).Handler)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if h.metrics != nil {
		r.Method(http.MethodGet, "/metrics", h.metrics.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		r.Post("/chat", h.handleChat)
		r.Post("/solPrice", h.proxy("Failed to fetch SOL price", func(r *http.Request) (json.RawMessage, error) {
			return h.market.SolPrice(r.Context())
		}))
		r.Post("/nativePrice", h.proxy("Failed to fetch native token price", func(r *http.Request) (json.RawMessage, error) {
			return h.market.NativePrice(r.Context())
		}))
		r.Post("/stats", h.proxy("Failed to fetch token stats", func(r *http.Request) (json.RawMessage, error) {
			return h.market.Stats(r.Context(), r.URL.Query().Get("token"))
		}))
		r.Post("/trending", h.proxy("Failed to fetch trending tokens", func(r *http.Request) (json.RawMessage, error) {
			return h.market.Trending(r.Context(), r.URL.Query().Get("timeframe"))
		}))
	})
	return r
}

type chatRequest struct {
	Messages []domain.ChatMessage `json:"messages"`
}

func (h *Handler) handleChat(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req chatRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxChatBodyBytes)).Decode(&req); err != nil {
		h.writeError(w, r, &usecase.Error{Code: usecase.ErrorInvalidInput, Reason: "invalid_body", Err: err}, "")
		return
	}
	for i := range req.Messages {
		req.Messages[i].Role = strings.ToLower(strings.TrimSpace(req.Messages[i].Role))
	}

	out, err := h.chat.Chat(ctx, usecase.ChatInput{Messages: req.Messages})
	if err != nil {
		h.writeError(w, r, err, "")
		return
	}

	header := w.Header()
	header.Set("Content-Type", "text/plain; charset=utf-8")
	header.Set("Cache-Control", "no-cache")
	header.Set("Connection", "keep-alive")
	header.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	err = stream.Relay(ctx, w, out.Source)
	switch {
	case err == nil:
		h.metrics.ObserveRelay(relayCompleted)
	case ctx.Err() != nil:
		h.metrics.ObserveRelay(relayClientGone)
		logger.FromContext(ctx).Info("client disconnected mid-stream", "intent", out.Intent.String())
	default:
		h.metrics.ObserveRelay(relayFailed)
		logger.FromContext(ctx).Error("stream relay failed", "intent", out.Intent.String(), "err", err)
		// Headers are already sent.
		panic(http.ErrAbortHandler)
	}
}

func (h *Handler) proxy(failure string, read func(*http.Request) (json.RawMessage, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := read(r)
		if err != nil {
			h.writeError(w, r, err, failure)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(body)
	}
}
