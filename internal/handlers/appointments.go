package handlers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/AnshRaj112/serenify-care/internal/models"
	"github.com/AnshRaj112/serenify-care/internal/services"
	"github.com/AnshRaj112/serenify-care/internal/store"
)

type ScheduleAppointmentRequest struct {
	StudentID   uuid.UUID `json:"student_id" validate:"required"`
	TherapistID uuid.UUID `json:"therapist_id" validate:"required"`
	ScheduledAt time.Time `json:"scheduled_at" validate:"required"`
	Notes       string    `json:"notes" validate:"max=2000"`
}

type UpdateAppointmentRequest struct {
	ScheduledAt *time.Time `json:"scheduled_at"`
	Notes       *string    `json:"notes" validate:"omitempty,max=2000"`
	Status      *string    `json:"status" validate:"omitempty,oneof=scheduled completed cancelled"`
}

// ScheduleAppointment handles POST /api/appointments/schedule.
func (h *Handler) ScheduleAppointment(w http.ResponseWriter, r *http.Request) {
	var req ScheduleAppointmentRequest
	if err := h.decode(r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}
	appt, err := h.store.ScheduleAppointment(r.Context(), req.StudentID, req.TherapistID, req.ScheduledAt.UTC(), req.Notes)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.activity.RecordAsync(services.ActivityEvent{
		Type:     services.ActivityAppointmentBooked,
		UserID:   callerID(r).String(),
		Metadata: map[string]string{"appointment_id": appt.ID.String()},
	})
	respond(w, http.StatusCreated, "Appointment scheduled", envelope{"appointment": appt})
}

// GetAppointment handles GET /api/appointments/{id}.
func (h *Handler) GetAppointment(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	appt, err := h.store.GetAppointment(r.Context(), id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, "Appointment retrieved", envelope{"appointment": appt})
}

// UpdateAppointment handles PUT /api/appointments/{id}.
func (h *Handler) UpdateAppointment(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	var req UpdateAppointmentRequest
	if err := h.decode(r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}
	upd := store.AppointmentUpdate{Notes: req.Notes}
	if req.ScheduledAt != nil {
		at := req.ScheduledAt.UTC()
		upd.ScheduledAt = &at
	}
	if req.Status != nil {
		status := models.AppointmentStatus(*req.Status)
		upd.Status = &status
	}

	appt, err := h.store.UpdateAppointment(r.Context(), id, upd)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, "Appointment updated", envelope{"appointment": appt})
}

// CancelAppointment handles PUT /api/appointments/{id}/cancel. Cancelling twice is a no-op.
func (h *Handler) CancelAppointment(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	appt, err := h.store.CancelAppointment(r.Context(), id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.activity.RecordAsync(services.ActivityEvent{
		Type:     services.ActivityAppointmentCanceled,
		UserID:   callerID(r).String(),
		Metadata: map[string]string{"appointment_id": appt.ID.String()},
	})
	respond(w, http.StatusOK, "Appointment cancelled", envelope{"appointment": appt})
}

// StudentAppointments handles GET /api/appointments/student/{id}.
func (h *Handler) StudentAppointments(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	appts, err := h.store.ListStudentAppointments(r.Context(), id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, "Appointments retrieved", envelope{"appointments": appts})
}

// TherapistAppointments handles GET /api/appointments/therapist/{id}.
func (h *Handler) TherapistAppointments(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	appts, err := h.store.ListTherapistAppointments(r.Context(), id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, "Appointments retrieved", envelope{"appointments": appts})
}
