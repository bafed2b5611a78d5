package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/iscbashan/contact/internal/model"
	"github.com/iscbashan/contact/internal/service"
)

// maxBodyBytes caps the request body; the identity image travels inline as base64.
const maxBodyBytes = 10 << 20

// invalidFormData is the only error text a client ever sees.
const invalidFormData = "Invalid form data"

// ContactHandler handles contact form submission.
type ContactHandler struct {
	contactService service.ContactService
}

// NewContactHandler creates a ContactHandler with the given service.
func NewContactHandler(contactService service.ContactService) *ContactHandler {
	return &ContactHandler{contactService: contactService}
}

type submitResponse struct {
	Success bool   `json:"success"`
	ID      string `json:"id,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Preflight handles OPTIONS /api/contact.
func (h *ContactHandler) Preflight(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// Submit handles POST /api/contact.
// Every failure, whatever its stage, is answered with the same 400 body; the
// detail goes to the log only.
func (h *ContactHandler) Submit(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetReqID(r.Context())

	var req model.ContactSubmission
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		slog.Warn("contact form: undecodable body", "request_id", reqID, "error", err)
		writeJSON(w, http.StatusBadRequest, submitResponse{Error: invalidFormData})
		return
	}

	msg, err := h.contactService.Submit(r.Context(), &req)
	if err != nil {
		logSubmitError(reqID, err)
		writeJSON(w, http.StatusBadRequest, submitResponse{Error: invalidFormData})
		return
	}

	writeJSON(w, http.StatusCreated, submitResponse{Success: true, ID: msg.ID})
}

func logSubmitError(reqID string, err error) {
	var verr *service.ValidationError
	var upErr *service.StorageUploadError
	switch {
	case errors.As(err, &verr):
		slog.Warn("contact form: validation failed", "request_id", reqID, "fields", verr.Fields())
	case errors.As(err, &upErr):
		slog.Error("contact form: image upload failed", "request_id", reqID, "status", upErr.StatusCode(), "error", err)
	default:
		slog.Error("contact form: submission failed", "request_id", reqID, "error", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
