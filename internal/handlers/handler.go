// Package handlers implements the HTTP controllers.
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/AnshRaj112/serenify-care/internal/apperrors"
	"github.com/AnshRaj112/serenify-care/internal/config"
	"github.com/AnshRaj112/serenify-care/internal/middleware"
	"github.com/AnshRaj112/serenify-care/internal/services"
	"github.com/AnshRaj112/serenify-care/internal/store"
)

const maxJSONBody = 1 << 20

// Deps are the collaborators shared by every controller.
type Deps struct {
	Config    *config.Config
	Store     *store.Store
	Sessions  *services.SessionManager
	Cache     *services.CacheService
	Messages  *services.MessageService
	Hub       *services.ChatHub
	Uploader  services.FileUploader // nil when Cloudinary is not configured
	Activity  *services.ActivityLogger
	ChatLimit *middleware.ChatSendLimiter
	Log       logrus.FieldLogger
}

type Handler struct {
	cfg       *config.Config
	store     *store.Store
	sessions  *services.SessionManager
	cache     *services.CacheService
	messages  *services.MessageService
	hub       *services.ChatHub
	uploader  services.FileUploader
	activity  *services.ActivityLogger
	chatLimit *middleware.ChatSendLimiter
	log       logrus.FieldLogger
	validate  *validator.Validate
}

func New(d Deps) *Handler {
	v := validator.New()
	// report json names in validation messages
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	chatLimit := d.ChatLimit
	if chatLimit == nil {
		chatLimit = middleware.NewChatSendLimiter()
	}
	return &Handler{
		cfg:       d.Config,
		store:     d.Store,
		sessions:  d.Sessions,
		cache:     d.Cache,
		messages:  d.Messages,
		hub:       d.Hub,
		uploader:  d.Uploader,
		activity:  d.Activity,
		chatLimit: chatLimit,
		log:       d.Log,
		validate:  v,
	}
}

type envelope map[string]interface{}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// respond writes a success envelope; extra keys are merged into it.
func respond(w http.ResponseWriter, status int, message string, extra envelope) {
	body := envelope{"success": true, "message": message}
	for k, v := range extra {
		body[k] = v
	}
	writeJSON(w, status, body)
}

// respondError maps err to its status. Internal causes are logged, never returned.
func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, err error) {
	appErr := apperrors.From(err)
	status := appErr.HTTPStatus()
	if status >= http.StatusInternalServerError {
		h.log.WithError(appErr).WithFields(logrus.Fields{
			"method": r.Method,
			"path":   r.URL.Path,
		}).Error("request failed")
	}
	writeJSON(w, status, envelope{"success": false, "message": apperrors.PublicMessage(appErr)})
}

// decode reads a JSON body into dst and runs struct validation on it.
func (h *Handler) decode(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxJSONBody))
	if err := dec.Decode(dst); err != nil {
		return apperrors.Wrap(apperrors.KindBadRequest, "Invalid request body", err)
	}
	if err := h.validate.Struct(dst); err != nil {
		return validationError(err)
	}
	return nil
}

func validationError(err error) error {
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) || len(errs) == 0 {
		return apperrors.Wrap(apperrors.KindBadRequest, "Invalid request body", err)
	}
	fe := errs[0]
	var msg string
	switch fe.Tag() {
	case "required":
		msg = fmt.Sprintf("%s is required", fe.Field())
	case "min", "gte":
		msg = fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "max", "lte":
		msg = fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	case "gt":
		msg = fmt.Sprintf("%s must be greater than %s", fe.Field(), fe.Param())
	case "len":
		msg = fmt.Sprintf("%s must have exactly %s entries", fe.Field(), fe.Param())
	case "oneof":
		msg = fmt.Sprintf("%s must be one of: %s", fe.Field(), fe.Param())
	case "email":
		msg = fmt.Sprintf("%s must be a valid email address", fe.Field())
	default:
		msg = fmt.Sprintf("%s is invalid", fe.Field())
	}
	return apperrors.Wrap(apperrors.KindBadRequest, msg, err)
}

// uuidParam parses a chi URL parameter as a UUID.
func uuidParam(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		return uuid.Nil, apperrors.BadRequest("Invalid " + name)
	}
	return id, nil
}

// callerID is the authenticated user, or uuid.Nil on public routes.
func callerID(r *http.Request) uuid.UUID {
	return middleware.UserIDFromContext(r.Context())
}

// orCaller defaults an omitted user id in a request body to the caller.
func orCaller(r *http.Request, id uuid.UUID) uuid.UUID {
	if id == uuid.Nil {
		return callerID(r)
	}
	return id
}

func (h *Handler) invalidateTherapists(r *http.Request) {
	if err := h.cache.Delete(r.Context(), services.AvailableTherapistsCacheKey); err != nil {
		h.log.WithError(err).Warn("failed to invalidate therapist cache")
	}
}

// Health reports whether PostgreSQL is reachable.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Ping(r.Context()); err != nil {
		h.log.WithError(err).Warn("health check failed")
		writeJSON(w, http.StatusServiceUnavailable, envelope{"status": "unavailable", "database": "down"})
		return
	}
	writeJSON(w, http.StatusOK, envelope{
		"status":   "ok",
		"database": "up",
		"redis":    h.cache.Enabled(),
		"activity": h.activity.Enabled(),
	})
}
