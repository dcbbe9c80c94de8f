package api

import (
	"net/http"

	"voxcal.io/calendar-assistant/internal/core"
)

func (h *APIHandler) ListEventsHandler(w http.ResponseWriter, r *http.Request) {
	events, err := h.calendar.ListEvents(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, events)
}

func (h *APIHandler) CreateEventHandler(w http.ResponseWriter, r *http.Request) {
	var req core.EventInput
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	event, err := h.calendar.CreateEvent(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, event)
}

func (h *APIHandler) GetEventHandler(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	event, err := h.calendar.GetEvent(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, event)
}

func (h *APIHandler) UpdateEventHandler(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var req core.EventInput
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	event, err := h.calendar.UpdateEvent(r.Context(), id, req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, event)
}

func (h *APIHandler) DeleteEventHandler(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := h.calendar.DeleteEvent(r.Context(), id); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
