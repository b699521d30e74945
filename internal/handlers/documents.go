package handlers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/AnshRaj112/serenify-care/internal/apperrors"
)

type CreateDocumentRequest struct {
	UserID  uuid.UUID `json:"user_id"`
	Title   string    `json:"title" validate:"max=200"`
	Content string    `json:"content"`
}

type UpdateDocumentRequest struct {
	Title   *string `json:"title" validate:"omitempty,max=200"`
	Content *string `json:"content" validate:"required"`
}

// CreateDocument handles POST /api/documents/createDocument. The initial content is recorded in the audit.
func (h *Handler) CreateDocument(w http.ResponseWriter, r *http.Request) {
	var req CreateDocumentRequest
	if err := h.decode(r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}
	userID := orCaller(r, req.UserID)
	if userID == uuid.Nil {
		h.respondError(w, r, apperrors.BadRequest("user_id is required"))
		return
	}
	doc, err := h.store.CreateDocument(r.Context(), userID, req.Title, req.Content)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respond(w, http.StatusCreated, "Document created", envelope{"document": doc})
}

// GetDocument handles GET /api/documents/{id}.
func (h *Handler) GetDocument(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	doc, err := h.store.GetDocument(r.Context(), id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, "Document retrieved", envelope{"document": doc})
}

// UserDocuments handles GET /api/documents/users/{id}/documents.
func (h *Handler) UserDocuments(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	docs, err := h.store.ListUserDocuments(r.Context(), id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, "Documents retrieved", envelope{"documents": docs})
}

// UpdateDocument handles PUT /api/documents/{id}. Only the owner may edit; the prior content is audited first.
func (h *Handler) UpdateDocument(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	var req UpdateDocumentRequest
	if err := h.decode(r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}
	current, err := h.store.GetDocument(r.Context(), id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	if current.UserID != callerID(r) {
		h.respondError(w, r, apperrors.Forbidden("You can only edit your own documents"))
		return
	}
	doc, err := h.store.UpdateDocument(r.Context(), id, req.Title, *req.Content)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, "Document updated", envelope{"document": doc})
}

// DocumentAudit handles GET /api/documents/{id}/audit.
func (h *Handler) DocumentAudit(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	entries, err := h.store.ListDocumentAudit(r.Context(), id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, "Document audit retrieved", envelope{"audit": entries})
}

// UserDocumentAudit handles GET /api/documents/audit/user/{id}.
func (h *Handler) UserDocumentAudit(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	entries, err := h.store.ListUserDocumentAudit(r.Context(), id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, "Document audit retrieved", envelope{"audit": entries})
}
