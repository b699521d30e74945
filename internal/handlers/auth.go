package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/AnshRaj112/serenify-care/internal/apperrors"
	"github.com/AnshRaj112/serenify-care/internal/middleware"
	"github.com/AnshRaj112/serenify-care/internal/models"
	"github.com/AnshRaj112/serenify-care/internal/services"
	"github.com/AnshRaj112/serenify-care/internal/store"
	"github.com/AnshRaj112/serenify-care/pkg/clientip"
	"github.com/AnshRaj112/serenify-care/pkg/utils"
)

// RegisterRequest creates a student or therapist account. Student fields are ignored for therapists.
type RegisterRequest struct {
	Email            string `json:"email" validate:"required"`
	Password         string `json:"password" validate:"required"`
	Role             string `json:"role" validate:"required,oneof=student therapist"`
	FirstName        string `json:"first_name" validate:"required"`
	LastName         string `json:"last_name" validate:"required"`
	Phone            string `json:"phone" validate:"max=32"`
	Bio              string `json:"bio" validate:"max=2000"`
	School           string `json:"school" validate:"max=200"`
	YearOfStudy      int    `json:"year_of_study" validate:"gte=0,lte=12"`
	EmergencyContact string `json:"emergency_contact" validate:"max=200"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type ResetPasswordRequest struct {
	Email       string `json:"email" validate:"required"`
	NewPassword string `json:"new_password" validate:"required"`
}

// validateCredentials checks email format and password strength.
func validateCredentials(email, password string) error {
	if err := utils.ValidateEmail(email); err != nil {
		return apperrors.BadRequest(err.Error())
	}
	if err := utils.ValidatePassword(password); err != nil {
		return apperrors.BadRequest(err.Error())
	}
	return nil
}

// Register handles POST /api/auth/register.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := h.decode(r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}
	email := utils.NormalizeEmail(req.Email)
	if err := validateCredentials(email, req.Password); err != nil {
		h.respondError(w, r, err)
		return
	}
	if err := utils.ValidateName("first_name", req.FirstName); err != nil {
		h.respondError(w, r, apperrors.BadRequest(err.Error()))
		return
	}
	if err := utils.ValidateName("last_name", req.LastName); err != nil {
		h.respondError(w, r, apperrors.BadRequest(err.Error()))
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		h.respondError(w, r, apperrors.Internal("Failed to hash password", err))
		return
	}

	role := models.Role(req.Role)
	acct := store.NewAccount{
		User: models.User{
			Role:      role,
			FirstName: strings.TrimSpace(req.FirstName),
			LastName:  strings.TrimSpace(req.LastName),
			Phone:     strings.TrimSpace(req.Phone),
			Bio:       req.Bio,
		},
		Email:        email,
		PasswordHash: hash,
	}
	if role == models.RoleStudent {
		acct.Student = &models.Student{
			School:           strings.TrimSpace(req.School),
			YearOfStudy:      req.YearOfStudy,
			EmergencyContact: strings.TrimSpace(req.EmergencyContact),
		}
	}

	profile, err := h.store.CreateAccount(r.Context(), acct)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	token, expiresAt, err := h.sessions.Issue(profile.ID, profile.Role, profile.Email)
	if err != nil {
		h.respondError(w, r, apperrors.Internal("Failed to create session", err))
		return
	}

	h.activity.RecordAsync(services.ActivityEvent{
		Type:      services.ActivityRegistered,
		UserID:    profile.ID.String(),
		IPAddress: clientip.RealClientIP(r),
		Metadata:  map[string]string{"role": string(profile.Role)},
	})

	respond(w, http.StatusCreated, "Account created successfully", envelope{
		"user":       profile,
		"token":      token,
		"expires_at": expiresAt,
	})
}

// Login handles POST /api/auth/login.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := h.decode(r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}
	invalid := apperrors.Unauthorized("Invalid email or password")

	cred, err := h.store.GetCredentialByEmail(r.Context(), utils.NormalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			err = invalid
		}
		h.respondError(w, r, err)
		return
	}
	ok, err := utils.VerifyPassword(req.Password, cred.PasswordHash)
	if err != nil {
		h.log.WithError(err).WithField("user_id", cred.UserID).Error("stored password hash is unreadable")
	}
	if !ok {
		h.respondError(w, r, invalid)
		return
	}

	profile, err := h.store.GetUser(r.Context(), cred.UserID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	token, expiresAt, err := h.sessions.Issue(profile.ID, profile.Role, profile.Email)
	if err != nil {
		h.respondError(w, r, apperrors.Internal("Failed to create session", err))
		return
	}

	h.activity.RecordAsync(services.ActivityEvent{
		Type:      services.ActivityLogin,
		UserID:    profile.ID.String(),
		IPAddress: clientip.RealClientIP(r),
	})

	respond(w, http.StatusOK, "Login successful", envelope{
		"user":       profile,
		"token":      token,
		"expires_at": expiresAt,
	})
}

// Logout is stateless; the client discards its token.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	respond(w, http.StatusOK, "Logged out successfully", nil)
}

// Me returns the caller's user record with email and role profile.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		h.respondError(w, r, apperrors.Unauthorized("Authentication required"))
		return
	}
	id, err := claims.UserID()
	if err != nil {
		h.respondError(w, r, apperrors.Unauthorized("Invalid authentication token"))
		return
	}

	profile, err := h.store.GetUser(r.Context(), id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			err = apperrors.Unauthorized("Account no longer exists")
		}
		h.respondError(w, r, err)
		return
	}

	extra := envelope{"user": profile}
	switch profile.Role {
	case models.RoleStudent:
		student, err := h.store.GetStudent(r.Context(), id)
		if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
			h.respondError(w, r, err)
			return
		}
		extra["student"] = student
	case models.RoleTherapist:
		therapist, err := h.store.GetTherapistByUserID(r.Context(), id)
		if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
			h.respondError(w, r, err)
			return
		}
		extra["therapist"] = therapist
	}
	respond(w, http.StatusOK, "Profile retrieved", extra)
}

// CheckEmail handles GET /api/auth/check-email?email=.
func (h *Handler) CheckEmail(w http.ResponseWriter, r *http.Request) {
	email := utils.NormalizeEmail(r.URL.Query().Get("email"))
	if email == "" {
		h.respondError(w, r, apperrors.BadRequest("email is required"))
		return
	}
	exists, err := h.store.EmailExists(r.Context(), email)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, "Email checked", envelope{"exists": exists})
}

// ResetPasswordDirect overwrites a password given only the email. It performs no
// ownership verification and can be disabled with ALLOW_DIRECT_PASSWORD_RESET=false.
func (h *Handler) ResetPasswordDirect(w http.ResponseWriter, r *http.Request) {
	if !h.cfg.AllowDirectPasswordReset {
		h.respondError(w, r, apperrors.Forbidden("Direct password reset is disabled"))
		return
	}
	var req ResetPasswordRequest
	if err := h.decode(r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}
	email := utils.NormalizeEmail(req.Email)
	if err := validateCredentials(email, req.NewPassword); err != nil {
		h.respondError(w, r, err)
		return
	}

	cred, err := h.store.GetCredentialByEmail(r.Context(), email)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	hash, err := utils.HashPassword(req.NewPassword)
	if err != nil {
		h.respondError(w, r, apperrors.Internal("Failed to hash password", err))
		return
	}
	if err := h.store.UpdatePasswordHash(r.Context(), cred.UserID, hash, models.AccountActionPasswordReset); err != nil {
		h.respondError(w, r, err)
		return
	}

	h.log.WithFields(logrus.Fields{
		"user_id": cred.UserID,
		"ip":      clientip.RealClientIP(r),
	}).Warn("password reset without verification")
	respond(w, http.StatusOK, "Password reset successfully", nil)
}
