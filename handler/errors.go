package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"solana-terminal/internal/logger"
	"solana-terminal/internal/usecase"
)

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// writeError maps err onto a status and JSON body. upstreamMessage, when set,
// replaces the default message for upstream failures.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error, upstreamMessage string) {
	status, body := toErrorResponse(err, upstreamMessage)
	log := logger.FromContext(r.Context())
	if status >= http.StatusInternalServerError {
		log.Error("request failed", "status", status, "code", body.Error, "err", err)
	} else {
		log.Warn("request rejected", "status", status, "code", body.Error, "err", err)
	}
	writeJSON(w, status, body)
}

func toErrorResponse(err error, upstreamMessage string) (int, errorResponse) {
	var ue *usecase.Error
	if !errors.As(err, &ue) {
		return internalError(err)
	}
	switch ue.Code {
	case usecase.ErrorInvalidInput:
		return http.StatusBadRequest, errorResponse{Error: string(ue.Code), Message: "Invalid request: " + ue.Reason}
	case usecase.ErrorConfiguration:
		return http.StatusInternalServerError, errorResponse{Error: string(ue.Code), Message: "OpenAI API key not configured"}
	case usecase.ErrorBackendNotConfigured:
		return http.StatusServiceUnavailable, errorResponse{Error: string(ue.Code), Message: "Backend data API not configured"}
	case usecase.ErrorRateLimited:
		return http.StatusTooManyRequests, errorResponse{Error: string(ue.Code), Message: "Language model rate limit reached, try again shortly"}
	case usecase.ErrorUpstream:
		msg := upstreamMessage
		if msg == "" {
			msg = "Language model request failed"
		}
		return http.StatusBadGateway, errorResponse{Error: string(ue.Code), Message: msg}
	default:
		return internalError(err)
	}
}

func internalError(err error) (int, errorResponse) {
	details := "Unknown error"
	if err != nil {
		details = err.Error()
	}
	return http.StatusInternalServerError, errorResponse{
		Error:   "INTERNAL_ERROR",
		Message: "Internal server error",
		Details: details,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
