package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"solana-terminal/internal/logger"
)

// withCorrelation reuses the caller's correlation id or mints one, echoes it
// on the response, and stores a request logger carrying it.
func (h *Handler) withCorrelation(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(correlationHeader))
		if id == "" {
			id = logger.NewCorrelationID()
		}
		w.Header().Set(correlationHeader, id)

		log := h.log.With("correlation_id", id)
		ctx := logger.WithContext(r.Context(), log)

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		defer func() {
			log.Info("request completed",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration_ms", time.Since(start).Milliseconds(),
			)
		}()
		next.ServeHTTP(ww, r.WithContext(ctx))
	})
}

// recoverer turns panics into the generic 500 response. http.ErrAbortHandler
// is re-raised so the server aborts the stream.
func (h *Handler) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if err, ok := rec.(error); ok && errors.Is(err, http.ErrAbortHandler) {
				panic(rec)
			}
			logger.FromContext(r.Context()).Error("panic recovered", "panic", rec)
			if ww, ok := w.(middleware.WrapResponseWriter); ok && ww.Status() != 0 {
				panic(http.ErrAbortHandler)
			}
			status, body := internalError(fmt.Errorf("panic: %v", rec))
			writeJSON(w, status, body)
		}()
		next.ServeHTTP(w, r)
	})
}

// RecoverAbort absorbs the abort raised for a failed stream so the handler
// returns normally and the transport closes the body early. Use it for
// transports that run handlers without their own recover, such as Lambda
// function URL streaming.
func RecoverAbort(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if err, ok := rec.(error); ok && errors.Is(err, http.ErrAbortHandler) {
				return
			}
			logger.FromContext(r.Context()).Error("panic escaped handler", "panic", rec)
		}()
		next.ServeHTTP(w, r)
	})
}
