package handlers

import (
	"net/http"

	"github.com/AnshRaj112/serenify-care/internal/apperrors"
	"github.com/AnshRaj112/serenify-care/internal/models"
	"github.com/AnshRaj112/serenify-care/internal/store"
)

type CreateJournalRequest struct {
	Title   string `json:"title" validate:"required,max=200"`
	Content string `json:"content" validate:"required"`
	Mood    string `json:"mood" validate:"max=50"`
}

type UpdateJournalRequest struct {
	Title   *string `json:"title" validate:"omitempty,max=200"`
	Content *string `json:"content"`
	Mood    *string `json:"mood" validate:"omitempty,max=50"`
}

// Journals are private: every operation is limited to the owner.

// ownJournal loads the journal and checks the caller owns it.
func (h *Handler) ownJournal(r *http.Request) (*models.Journal, error) {
	id, err := uuidParam(r, "id")
	if err != nil {
		return nil, err
	}
	j, err := h.store.GetJournal(r.Context(), id)
	if err != nil {
		return nil, err
	}
	if j.UserID != callerID(r) {
		return nil, apperrors.Forbidden("You can only access your own journals")
	}
	return j, nil
}

// CreateJournal handles POST /api/journals.
func (h *Handler) CreateJournal(w http.ResponseWriter, r *http.Request) {
	var req CreateJournalRequest
	if err := h.decode(r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}
	j, err := h.store.CreateJournal(r.Context(), models.Journal{
		UserID:  callerID(r),
		Title:   req.Title,
		Content: req.Content,
		Mood:    req.Mood,
	})
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respond(w, http.StatusCreated, "Journal entry created successfully", envelope{"journal": j})
}

// GetJournal handles GET /api/journals/{id}.
func (h *Handler) GetJournal(w http.ResponseWriter, r *http.Request) {
	j, err := h.ownJournal(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, "Journal retrieved", envelope{"journal": j})
}

// UserJournals handles GET /api/journals/user/{id}.
func (h *Handler) UserJournals(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	if id != callerID(r) {
		h.respondError(w, r, apperrors.Forbidden("You can only access your own journals"))
		return
	}
	journals, err := h.store.ListJournalsByUser(r.Context(), id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, "Journals retrieved", envelope{"journals": journals, "total": len(journals)})
}

// UpdateJournal handles PUT /api/journals/{id}.
func (h *Handler) UpdateJournal(w http.ResponseWriter, r *http.Request) {
	j, err := h.ownJournal(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	var req UpdateJournalRequest
	if err := h.decode(r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}
	updated, err := h.store.UpdateJournal(r.Context(), j.ID, store.JournalUpdate{
		Title:   req.Title,
		Content: req.Content,
		Mood:    req.Mood,
	})
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, "Journal updated", envelope{"journal": updated})
}

// DeleteJournal handles DELETE /api/journals/{id}.
func (h *Handler) DeleteJournal(w http.ResponseWriter, r *http.Request) {
	j, err := h.ownJournal(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	if err := h.store.DeleteJournal(r.Context(), j.ID); err != nil {
		h.respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, "Journal deleted", envelope{"id": j.ID})
}
