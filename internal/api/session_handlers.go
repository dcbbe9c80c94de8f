package api

import (
	"net/http"
	"strconv"

	"voxcal.io/calendar-assistant/internal/apperrors"
	"voxcal.io/calendar-assistant/internal/core"
)

// RealtimeSessionHandler mints an ephemeral realtime credential for the
// browser. Query parameters: model (allow-listed), prompt_version_id.
func (h *APIHandler) RealtimeSessionHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := core.SessionRequest{Model: q.Get("model")}

	if raw := q.Get("prompt_version_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			h.writeError(w, r, apperrors.NewFieldError("prompt_version_id", "prompt_version_id must be a positive integer"))
			return
		}
		req.PromptVersionID = &id
	}

	session, err := h.realtime.CreateSession(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(session)
}
