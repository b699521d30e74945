package handlers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/AnshRaj112/serenify-care/internal/apperrors"
	"github.com/AnshRaj112/serenify-care/internal/services"
	"github.com/AnshRaj112/serenify-care/pkg/clientip"
)

// RecordActivityRequest is the body for POST /api/activity.
type RecordActivityRequest struct {
	Type     string            `json:"type" validate:"omitempty,max=64"`
	Path     string            `json:"path"`
	Metadata map[string]string `json:"metadata" validate:"max=20"`
}

// RecordActivity records a page view or other client event. The user id comes
// from the token when one is present.
func (h *Handler) RecordActivity(w http.ResponseWriter, r *http.Request) {
	var req RecordActivityRequest
	if err := h.decode(r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}
	if !h.activity.Enabled() {
		respond(w, http.StatusAccepted, "Activity logging is disabled", envelope{"recorded": false})
		return
	}

	ev := services.ActivityEvent{
		Type:      req.Type,
		Path:      req.Path,
		IPAddress: clientip.RealClientIP(r),
		Metadata:  req.Metadata,
	}
	if ev.Type == "" {
		ev.Type = services.ActivityPageView
	}
	if ev.Path == "" {
		ev.Path = r.URL.Path
	}
	if id := callerID(r); id != uuid.Nil {
		ev.UserID = id.String()
	}

	if err := h.activity.Record(r.Context(), ev); err != nil {
		h.respondError(w, r, apperrors.Internal("Failed to record activity", err))
		return
	}
	respond(w, http.StatusCreated, "Activity recorded", envelope{"recorded": true})
}
