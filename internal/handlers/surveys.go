package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/AnshRaj112/serenify-care/internal/apperrors"
	"github.com/AnshRaj112/serenify-care/internal/store"
)

type SubmitSurveyRequest struct {
	UserID  uuid.UUID       `json:"user_id"`
	Title   string          `json:"title" validate:"required,max=200"`
	Answers json.RawMessage `json:"answers" validate:"required"`
	Score   *int            `json:"score" validate:"omitempty,gte=0"`
}

type UpdateSurveyRequest struct {
	Title   *string         `json:"title" validate:"omitempty,max=200"`
	Answers json.RawMessage `json:"answers"`
	Score   *int            `json:"score" validate:"omitempty,gte=0"`
}

// requireJSONObject rejects answers that are not a JSON object.
func requireJSONObject(raw json.RawMessage) error {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' || !json.Valid(trimmed) {
		return apperrors.BadRequest("answers must be a JSON object")
	}
	return nil
}

// SubmitSurvey handles POST /api/surveys.
func (h *Handler) SubmitSurvey(w http.ResponseWriter, r *http.Request) {
	var req SubmitSurveyRequest
	if err := h.decode(r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}
	if err := requireJSONObject(req.Answers); err != nil {
		h.respondError(w, r, err)
		return
	}
	survey, err := h.store.CreateSurvey(r.Context(), orCaller(r, req.UserID), req.Title, req.Answers, req.Score)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respond(w, http.StatusCreated, "Survey submitted", envelope{"survey": survey})
}

// GetSurvey handles GET /api/surveys/{id}.
func (h *Handler) GetSurvey(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	survey, err := h.store.GetSurvey(r.Context(), id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, "Survey retrieved", envelope{"survey": survey})
}

// UserSurveys handles GET /api/surveys/user/{id}.
func (h *Handler) UserSurveys(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	surveys, err := h.store.ListSurveysByUser(r.Context(), id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, "Surveys retrieved", envelope{"surveys": surveys})
}

// UpdateSurvey handles PUT /api/surveys/{id}.
func (h *Handler) UpdateSurvey(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	var req UpdateSurveyRequest
	if err := h.decode(r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}
	if len(req.Answers) > 0 && string(req.Answers) != "null" {
		if err := requireJSONObject(req.Answers); err != nil {
			h.respondError(w, r, err)
			return
		}
	} else {
		req.Answers = nil
	}

	survey, err := h.store.UpdateSurvey(r.Context(), id, store.SurveyUpdate{
		Title:   req.Title,
		Answers: req.Answers,
		Score:   req.Score,
	})
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, "Survey updated", envelope{"survey": survey})
}
