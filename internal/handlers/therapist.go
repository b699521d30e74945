package handlers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/AnshRaj112/serenify-care/internal/apperrors"
	"github.com/AnshRaj112/serenify-care/internal/models"
	"github.com/AnshRaj112/serenify-care/internal/services"
	"github.com/AnshRaj112/serenify-care/internal/store"
)

// RegisterTherapistRequest creates the therapist profile for a therapist-role user.
// UserID defaults to the caller.
type RegisterTherapistRequest struct {
	UserID            uuid.UUID `json:"user_id"`
	LicenseNumber     string    `json:"license_number" validate:"required,max=64"`
	Specialization    string    `json:"specialization" validate:"max=200"`
	YearsOfExperience int       `json:"years_of_experience" validate:"gte=0,lte=80"`
	MonthlyRate       float64   `json:"monthly_rate" validate:"gte=0"`
	CertificateURL    string    `json:"certificate_url" validate:"omitempty,url"`
	Bio               string    `json:"bio" validate:"max=2000"`
	IsAvailable       *bool     `json:"is_available"`
}

type UpdateTherapistRequest struct {
	Specialization    *string  `json:"specialization" validate:"omitempty,max=200"`
	YearsOfExperience *int     `json:"years_of_experience" validate:"omitempty,gte=0,lte=80"`
	MonthlyRate       *float64 `json:"monthly_rate" validate:"omitempty,gte=0"`
	IsAvailable       *bool    `json:"is_available"`
	CertificateURL    *string  `json:"certificate_url" validate:"omitempty,url"`
	Bio               *string  `json:"bio" validate:"omitempty,max=2000"`
}

type AssignmentRequest struct {
	TherapistID uuid.UUID `json:"therapist_id" validate:"required"`
	StudentID   uuid.UUID `json:"student_id" validate:"required"`
}

// RegisterTherapist handles POST /api/therapists.
func (h *Handler) RegisterTherapist(w http.ResponseWriter, r *http.Request) {
	var req RegisterTherapistRequest
	if err := h.decode(r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}
	userID := orCaller(r, req.UserID)
	if userID == uuid.Nil {
		h.respondError(w, r, apperrors.BadRequest("user_id is required"))
		return
	}
	available := true
	if req.IsAvailable != nil {
		available = *req.IsAvailable
	}

	therapist, err := h.store.CreateTherapist(r.Context(), models.Therapist{
		UserID:            userID,
		LicenseNumber:     strings.TrimSpace(req.LicenseNumber),
		Specialization:    strings.TrimSpace(req.Specialization),
		YearsOfExperience: req.YearsOfExperience,
		MonthlyRate:       req.MonthlyRate,
		IsAvailable:       available,
		CertificateURL:    req.CertificateURL,
		Bio:               req.Bio,
	})
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.invalidateTherapists(r)
	respond(w, http.StatusCreated, "Therapist registered successfully", envelope{"therapist": therapist})
}

// ListAvailableTherapists serves the available listing from Redis when cached.
func (h *Handler) ListAvailableTherapists(w http.ResponseWriter, r *http.Request) {
	var therapists []models.TherapistDetails
	hit, err := h.cache.Get(r.Context(), services.AvailableTherapistsCacheKey, &therapists)
	if err != nil {
		h.log.WithError(err).Warn("therapist cache read failed")
	}
	if !hit {
		therapists, err = h.store.ListAvailableTherapists(r.Context())
		if err != nil {
			h.respondError(w, r, err)
			return
		}
		if err := h.cache.Set(r.Context(), services.AvailableTherapistsCacheKey, therapists); err != nil {
			h.log.WithError(err).Warn("therapist cache write failed")
		}
	}
	respond(w, http.StatusOK, "Therapists retrieved", envelope{"therapists": therapists})
}

// GetTherapistDetails handles GET /api/therapists/{id}.
func (h *Handler) GetTherapistDetails(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	therapist, err := h.store.GetTherapistDetails(r.Context(), id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, "Therapist retrieved", envelope{"therapist": therapist})
}

// UpdateTherapist handles PUT /api/therapists/{id}. Only the owning user may edit.
func (h *Handler) UpdateTherapist(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	var req UpdateTherapistRequest
	if err := h.decode(r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}

	current, err := h.store.GetTherapist(r.Context(), id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	if current.UserID != callerID(r) {
		h.respondError(w, r, apperrors.Forbidden("You can only edit your own therapist profile"))
		return
	}

	therapist, err := h.store.UpdateTherapist(r.Context(), id, store.TherapistUpdate{
		Specialization:    trimmed(req.Specialization),
		YearsOfExperience: req.YearsOfExperience,
		MonthlyRate:       req.MonthlyRate,
		IsAvailable:       req.IsAvailable,
		CertificateURL:    req.CertificateURL,
		Bio:               req.Bio,
	})
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.invalidateTherapists(r)
	respond(w, http.StatusOK, "Therapist updated", envelope{"therapist": therapist})
}

// TherapistsForStudent handles GET /api/therapists/student/{id}.
func (h *Handler) TherapistsForStudent(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	therapists, err := h.store.ListTherapistsForStudent(r.Context(), id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, "Therapists retrieved", envelope{"therapists": therapists})
}

// StudentsForTherapist handles GET /api/therapists/{id}/students.
func (h *Handler) StudentsForTherapist(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	students, err := h.store.ListStudentsForTherapist(r.Context(), id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, "Students retrieved", envelope{"students": students})
}

// AssignTherapist handles POST /api/therapists/assign.
func (h *Handler) AssignTherapist(w http.ResponseWriter, r *http.Request) {
	var req AssignmentRequest
	if err := h.decode(r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}
	if err := h.store.AssignTherapist(r.Context(), req.TherapistID, req.StudentID); err != nil {
		h.respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, "Therapist assigned", nil)
}

// UnassignTherapist handles POST /api/therapists/unassign.
func (h *Handler) UnassignTherapist(w http.ResponseWriter, r *http.Request) {
	var req AssignmentRequest
	if err := h.decode(r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}
	if err := h.store.UnassignTherapist(r.Context(), req.TherapistID, req.StudentID); err != nil {
		h.respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, "Therapist unassigned", nil)
}
