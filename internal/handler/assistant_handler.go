package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/planmoni/assistant-bfa-go/internal/domain"
	"github.com/planmoni/assistant-bfa-go/internal/service"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ============================================================
// Assistant — POST /api/ai-assistant
// ============================================================

func assistantHandler(svc *service.Assistant, timeout time.Duration, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /api/ai-assistant")
		defer span.End()

		var req domain.AssistantRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body", msgUnexpected)
			return
		}

		// The authenticated subject wins over whatever the body carries.
		if authUserID := UserIDFromContext(ctx); authUserID != "" {
			if req.UserID != "" && req.UserID != authUserID {
				logger.Warn("assistant: body userId does not match token subject",
					zap.String("user_id", req.UserID),
				)
				writeError(w, http.StatusUnauthorized, "User not authenticated", msgUserRequired)
				return
			}
			req.UserID = authUserID
		}
		span.SetAttributes(attribute.String("user.id", req.UserID))

		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		reply, err := svc.Respond(ctx, &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, reply)
	}
}
