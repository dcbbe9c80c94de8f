package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"voxcal.io/calendar-assistant/internal/apperrors"
	"voxcal.io/calendar-assistant/internal/core"
)

// Services bundles what the handlers call into.
type Services struct {
	Calendar      *core.CalendarService
	Prompts       *core.PromptService
	Conversations *core.ConversationService
	Media         *core.MediaService
	Realtime      *core.RealtimeService
	// Health reports whether the backing store is reachable.
	Health func(ctx context.Context) error
}

type APIHandler struct {
	calendar       *core.CalendarService
	prompts        *core.PromptService
	conversations  *core.ConversationService
	media          *core.MediaService
	realtime       *core.RealtimeService
	health         func(ctx context.Context) error
	maxUploadBytes int64
	logger         *zap.Logger
}

func NewAPIHandler(svc Services, maxUploadBytes int64, logger *zap.Logger) *APIHandler {
	return &APIHandler{
		calendar:       svc.Calendar,
		prompts:        svc.Prompts,
		conversations:  svc.Conversations,
		media:          svc.Media,
		realtime:       svc.Realtime,
		health:         svc.Health,
		maxUploadBytes: maxUploadBytes,
		logger:         logger,
	}
}

func (h *APIHandler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	if h.health != nil {
		if err := h.health(r.Context()); err != nil {
			h.logger.Error("health check failed", zap.Error(err))
			writeJSON(w, http.StatusInternalServerError, map[string]string{"status": "error"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type errorResponse struct {
	Error   string         `json:"error"`
	Details map[string]any `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError reports err to the client. Anything that is not an AppError is
// treated as an internal failure and its text is kept out of the response.
func (h *APIHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	appErr, ok := apperrors.As(err)
	if !ok {
		h.logger.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
		return
	}

	status := appErr.HTTPStatus()
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("kind", string(appErr.Kind)),
			zap.Error(err))
	}
	writeJSON(w, status, errorResponse{Error: appErr.Message, Details: appErr.Details})
}

// decodeJSON reads a JSON request body into dst.
func decodeJSON(r *http.Request, dst any) error {
	if r.Body == nil || r.Body == http.NoBody {
		return apperrors.NewValidationError("request body is required")
	}
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return apperrors.NewValidationError("request body is required")
		}
		return apperrors.NewValidationError("invalid JSON body").
			WithDetails(map[string]any{"body": err.Error()})
	}
	return nil
}

// urlID parses a positive integer route parameter.
func urlID(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.NewFieldError(name, name+" must be a positive integer")
	}
	return id, nil
}
