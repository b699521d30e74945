package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/AnshRaj112/serenify-care/internal/apperrors"
	"github.com/AnshRaj112/serenify-care/internal/middleware"
	"github.com/AnshRaj112/serenify-care/internal/models"
	"github.com/AnshRaj112/serenify-care/internal/store"
	"github.com/AnshRaj112/serenify-care/pkg/utils"
)

type UpdateUserRequest struct {
	FirstName *string `json:"first_name" validate:"omitempty,max=100"`
	LastName  *string `json:"last_name" validate:"omitempty,max=100"`
	Phone     *string `json:"phone" validate:"omitempty,max=32"`
	Bio       *string `json:"bio" validate:"omitempty,max=2000"`
}

type ChangeEmailRequest struct {
	Email string `json:"email" validate:"required"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required"`
}

type AvailabilityRequest struct {
	IsAvailable *bool `json:"is_available" validate:"required"`
}

// GetUser handles GET /api/users/{id}.
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	user, err := h.store.GetUser(r.Context(), id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, "User retrieved", envelope{"user": user})
}

// UpdateUser handles PUT /api/users/{id}. Only the account owner may call it.
func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	var req UpdateUserRequest
	if err := h.decode(r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}
	for field, value := range map[string]*string{"first_name": req.FirstName, "last_name": req.LastName} {
		if value == nil {
			continue
		}
		if err := utils.ValidateName(field, *value); err != nil {
			h.respondError(w, r, apperrors.BadRequest(err.Error()))
			return
		}
	}

	user, err := h.store.UpdateUser(r.Context(), id, store.UserUpdate{
		FirstName: trimmed(req.FirstName),
		LastName:  trimmed(req.LastName),
		Phone:     trimmed(req.Phone),
		Bio:       req.Bio,
	})
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, "Profile updated", envelope{"user": user})
}

// DeleteUser handles DELETE /api/users/{id} and DELETE /api/account-settings/{id}.
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	if err := h.store.DeleteUser(r.Context(), id); err != nil {
		h.respondError(w, r, err)
		return
	}
	h.invalidateTherapists(r)
	respond(w, http.StatusOK, "Account deleted", nil)
}

// AccountAudit handles GET /api/users/audit/{id}.
func (h *Handler) AccountAudit(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	entries, err := h.store.ListAccountAudit(r.Context(), id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, "Account audit retrieved", envelope{"audit": entries})
}

// ChangeEmail handles PUT /api/account-settings/{id}/email.
func (h *Handler) ChangeEmail(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	var req ChangeEmailRequest
	if err := h.decode(r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}
	email := utils.NormalizeEmail(req.Email)
	if err := utils.ValidateEmail(email); err != nil {
		h.respondError(w, r, apperrors.BadRequest(err.Error()))
		return
	}
	if err := h.store.UpdateEmail(r.Context(), id, email); err != nil {
		h.respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, "Email updated", envelope{"email": email})
}

// ChangePassword handles PUT /api/account-settings/{id}/password. The current
// password must match.
func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	var req ChangePasswordRequest
	if err := h.decode(r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}
	if err := utils.ValidatePassword(req.NewPassword); err != nil {
		h.respondError(w, r, apperrors.BadRequest(err.Error()))
		return
	}

	cred, err := h.store.GetCredentialByUserID(r.Context(), id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	if ok, _ := utils.VerifyPassword(req.CurrentPassword, cred.PasswordHash); !ok {
		h.respondError(w, r, apperrors.Unauthorized("Current password is incorrect"))
		return
	}

	hash, err := utils.HashPassword(req.NewPassword)
	if err != nil {
		h.respondError(w, r, apperrors.Internal("Failed to hash password", err))
		return
	}
	if err := h.store.UpdatePasswordHash(r.Context(), id, hash, models.AccountActionPasswordChange); err != nil {
		h.respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, "Password updated", nil)
}

// SetAvailability handles PUT /api/account-settings/{id}/availability for therapists.
func (h *Handler) SetAvailability(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	if claims, ok := middleware.ClaimsFromContext(r.Context()); !ok || claims.Role != models.RoleTherapist {
		h.respondError(w, r, apperrors.Forbidden("Only therapists can change availability"))
		return
	}
	var req AvailabilityRequest
	if err := h.decode(r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}

	therapist, err := h.store.SetAvailabilityByUserID(r.Context(), id, *req.IsAvailable)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			err = apperrors.NotFound("Therapist profile not found")
		}
		h.respondError(w, r, err)
		return
	}
	h.invalidateTherapists(r)
	respond(w, http.StatusOK, "Availability updated", envelope{"therapist": therapist})
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	return &t
}
