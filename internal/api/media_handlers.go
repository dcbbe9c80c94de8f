package api

import (
	"errors"
	"net/http"

	"voxcal.io/calendar-assistant/internal/apperrors"
	"voxcal.io/calendar-assistant/internal/core"
)

func (h *APIHandler) ListAudioHandler(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	audio, err := h.conversations.ListAudio(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, audio)
}

// multipartOverhead is allowed on top of the file limit for part headers and
// boundaries.
const multipartOverhead = 1 << 20

// UploadAudioHandler accepts a multipart form whose "file" field holds the
// recording. The size limit applies to the file itself.
func (h *APIHandler) UploadAudioHandler(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes+multipartOverhead)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.writeError(w, r, apperrors.NewFieldError("file", "file exceeds the upload size limit"))
			return
		}
		h.writeError(w, r, apperrors.NewValidationError("expected multipart/form-data body").
			WithDetails(map[string]any{"body": err.Error()}))
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		h.writeError(w, r, apperrors.NewFieldError("file", "file is required"))
		return
	}
	defer file.Close()
	if header.Size > h.maxUploadBytes {
		h.writeError(w, r, apperrors.NewFieldError("file", "file exceeds the upload size limit"))
		return
	}

	audio, err := h.media.SaveAudio(r.Context(), id, header.Filename, header.Header.Get("Content-Type"), file)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, audio)
}

func (h *APIHandler) CreateTranscriptionHandler(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "audioID")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var req core.TranscriptionInput
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	transcription, err := h.media.AddTranscription(r.Context(), id, req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, transcription)
}

func (h *APIHandler) TranscribeAudioHandler(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "audioID")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	transcription, err := h.media.TranscribeAudio(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, transcription)
}
