package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/planmoni/assistant-bfa-go/internal/domain"

	"go.uber.org/zap"
)

// ============================================================
// Shared helper functions
// ============================================================

// errorResponse pairs a machine-readable error with a user-facing fallback
// string. The client renders Response as an assistant chat message.
type errorResponse struct {
	Error    string `json:"error"`
	Response string `json:"response"`
}

// User-facing fallback strings. Each upstream failure kind gets its own
// message so the client can surface a distinct explanation in chat.
const (
	msgMessageRequired    = "Please type a message so I can help you."
	msgUserRequired       = "I couldn't verify your account. Please sign in and try again."
	msgNotConfigured      = "I'm not fully set up yet. Please try again later."
	msgRateLimited        = "I'm receiving a lot of requests right now. Please wait a moment and try again."
	msgQuotaExceeded      = "I've reached my usage limit for now. Please try again later."
	msgInvalidCredentials = "I'm unable to reach my knowledge base because my access was rejected. Please try again later."
	msgUnavailable        = "I'm sorry, I'm having trouble connecting to my knowledge base right now. Please try again later."
	msgUnexpected         = "I apologize, but I encountered an unexpected error. Please try again later."
)

func writeError(w http.ResponseWriter, status int, errMsg, userMsg string) {
	writeJSON(w, status, errorResponse{Error: errMsg, Response: userMsg})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// handleServiceError maps domain errors to HTTP responses. Every error path
// returns a body with a user-facing Response string so the client always has
// something to render in chat.
func handleServiceError(w http.ResponseWriter, err error, logger *zap.Logger) {
	var validation *domain.ErrValidation
	var unauthorized *domain.ErrUnauthorized
	var configuration *domain.ErrConfiguration
	var upstream *domain.ErrUpstream

	switch {
	case errors.As(err, &validation):
		logger.Debug("validation error", zap.String("error", err.Error()))
		writeError(w, http.StatusBadRequest, "Message is required", msgMessageRequired)
	case errors.As(err, &unauthorized):
		logger.Warn("unauthorized", zap.String("error", err.Error()))
		writeError(w, http.StatusUnauthorized, "User not authenticated", msgUserRequired)
	case errors.As(err, &configuration):
		logger.Error("missing configuration", zap.String("setting", configuration.Setting))
		writeError(w, http.StatusInternalServerError, "Assistant not configured", msgNotConfigured)
	case errors.As(err, &upstream):
		logger.Error("upstream provider failure",
			zap.String("kind", string(upstream.Kind)),
			zap.Error(err),
		)
		writeError(w, http.StatusInternalServerError, "Failed to get AI response", upstreamMessage(upstream.Kind))
	default:
		logger.Error("unhandled error", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Internal server error", msgUnexpected)
	}
}

func upstreamMessage(kind domain.UpstreamKind) string {
	switch kind {
	case domain.UpstreamRateLimited:
		return msgRateLimited
	case domain.UpstreamQuota:
		return msgQuotaExceeded
	case domain.UpstreamBadKey:
		return msgInvalidCredentials
	default:
		return msgUnavailable
	}
}
