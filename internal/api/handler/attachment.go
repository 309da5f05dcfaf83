package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/helpdock/helpdock/internal/api/response"
	"github.com/helpdock/helpdock/internal/domain"
)

// AttachmentHandler exposes the store's attachment operations. The reference
// store rejects all of them; the routes exist so integrators hit a clear 501
// instead of a silent 404.
type AttachmentHandler struct {
	store domain.Store
}

// NewAttachmentHandler creates a new attachment handler
func NewAttachmentHandler(store domain.Store) *AttachmentHandler {
	return &AttachmentHandler{store: store}
}

// Save stores an attachment record.
func (h *AttachmentHandler) Save(w http.ResponseWriter, r *http.Request) {
	var attachment domain.Attachment
	if err := json.NewDecoder(r.Body).Decode(&attachment); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	if err := h.store.SaveAttachment(r.Context(), attachment); err != nil {
		storeError(w, err)
		return
	}

	response.Created(w, attachment)
}

// Load fetches an attachment record.
func (h *AttachmentHandler) Load(w http.ResponseWriter, r *http.Request) {
	attachment, err := h.store.LoadAttachment(r.Context(), chi.URLParam(r, "attachmentID"))
	if err != nil {
		storeError(w, err)
		return
	}

	response.OK(w, attachment)
}

// Delete removes an attachment record.
func (h *AttachmentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteAttachment(r.Context(), chi.URLParam(r, "attachmentID")); err != nil {
		storeError(w, err)
		return
	}

	response.NoContent(w)
}
