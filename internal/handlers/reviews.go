package handlers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/AnshRaj112/serenify-care/internal/apperrors"
	"github.com/AnshRaj112/serenify-care/internal/middleware"
	"github.com/AnshRaj112/serenify-care/internal/models"
	"github.com/AnshRaj112/serenify-care/internal/store"
)

type SubmitReviewRequest struct {
	TherapistID uuid.UUID `json:"therapist_id" validate:"required"`
	Rating      int       `json:"rating" validate:"min=1,max=5"`
	Comment     string    `json:"comment" validate:"max=2000"`
}

type UpdateReviewRequest struct {
	Rating  *int    `json:"rating" validate:"omitempty,min=1,max=5"`
	Comment *string `json:"comment" validate:"omitempty,max=2000"`
}

// SubmitReview handles POST /api/reviews/submitReview. Students are recorded as the author.
func (h *Handler) SubmitReview(w http.ResponseWriter, r *http.Request) {
	var req SubmitReviewRequest
	if err := h.decode(r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}
	review := models.Review{TherapistID: req.TherapistID, Rating: req.Rating, Comment: req.Comment}
	if claims, ok := middleware.ClaimsFromContext(r.Context()); ok && claims.Role == models.RoleStudent {
		author := callerID(r)
		review.StudentID = &author
	}
	created, err := h.store.CreateReview(r.Context(), review)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respond(w, http.StatusCreated, "Review submitted", envelope{"review": created})
}

// GetReview handles GET /api/reviews/{id}.
func (h *Handler) GetReview(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	review, err := h.store.GetReview(r.Context(), id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, "Review retrieved", envelope{"review": review})
}

// TherapistReviews handles GET /api/reviews/therapist/{id} with the average rating.
func (h *Handler) TherapistReviews(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	summary, err := h.store.ListTherapistReviews(r.Context(), id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, "Reviews retrieved", envelope{
		"reviews":        summary.Reviews,
		"average_rating": summary.AverageRating,
		"count":          summary.Count,
	})
}

// UpdateReview handles PUT /api/reviews/{id}. Only the author may edit.
func (h *Handler) UpdateReview(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	var req UpdateReviewRequest
	if err := h.decode(r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}
	current, err := h.store.GetReview(r.Context(), id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	if current.StudentID == nil || *current.StudentID != callerID(r) {
		h.respondError(w, r, apperrors.Forbidden("You can only edit your own reviews"))
		return
	}
	review, err := h.store.UpdateReview(r.Context(), id, store.ReviewUpdate{Rating: req.Rating, Comment: req.Comment})
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, "Review updated", envelope{"review": review})
}
