package handlers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/AnshRaj112/serenify-care/internal/apperrors"
)

type CreateConversationRequest struct {
	ParticipantIDs []uuid.UUID `json:"participant_ids" validate:"required,len=2"`
}

type SendMessageRequest struct {
	ConversationID uuid.UUID `json:"conversation_id" validate:"required"`
	SenderID       uuid.UUID `json:"sender_id"`
	ReceiverID     uuid.UUID `json:"receiver_id" validate:"required"`
	Content        string    `json:"content" validate:"max=5000"`
}

// CreateConversation handles POST /api/conversations/create. An existing conversation for
// the same pair is returned with 200; a new one with 201.
func (h *Handler) CreateConversation(w http.ResponseWriter, r *http.Request) {
	var req CreateConversationRequest
	if err := h.decode(r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}
	conv, created, err := h.store.CreateConversation(r.Context(), req.ParticipantIDs[0], req.ParticipantIDs[1])
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	if created {
		respond(w, http.StatusCreated, "Conversation created", envelope{"conversation": conv})
		return
	}
	respond(w, http.StatusOK, "Conversation already exists", envelope{"conversation": conv})
}

// UserConversations handles GET /api/conversations/{id}.
func (h *Handler) UserConversations(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	convs, err := h.store.ListConversationsByUser(r.Context(), id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, "Conversations retrieved", envelope{"conversations": convs})
}

// ConversationDetails handles GET /api/conversations/details/{id}.
func (h *Handler) ConversationDetails(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	conv, err := h.store.GetConversationDetails(r.Context(), id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, "Conversation retrieved", envelope{"conversation": conv})
}

// SendMessage handles POST /api/messages/send. The sender must be the caller.
func (h *Handler) SendMessage(w http.ResponseWriter, r *http.Request) {
	var req SendMessageRequest
	if err := h.decode(r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}
	sender := orCaller(r, req.SenderID)
	if sender != callerID(r) {
		h.respondError(w, r, apperrors.Forbidden("You can only send messages as yourself"))
		return
	}
	if !h.chatLimit.Allow(sender) {
		writeJSON(w, http.StatusTooManyRequests, envelope{"success": false, "message": "You are sending messages too quickly."})
		return
	}

	msg, err := h.messages.Send(r.Context(), req.ConversationID, sender, req.ReceiverID, strings.TrimSpace(req.Content))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respond(w, http.StatusCreated, "Message sent", envelope{"data": msg})
}

// ConversationMessages handles GET /api/messages/conversations/{id}/allMessages.
func (h *Handler) ConversationMessages(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	msgs, err := h.store.ListMessages(r.Context(), id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, "Messages retrieved", envelope{"messages": msgs})
}

// MarkAsRead handles PUT /api/messages/{id}. Only the receiver may mark it.
func (h *Handler) MarkAsRead(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	msg, err := h.store.GetMessage(r.Context(), id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	if msg.ReceiverID != callerID(r) {
		h.respondError(w, r, apperrors.Forbidden("Only the receiver can mark a message as read"))
		return
	}
	msg, err = h.store.MarkMessageRead(r.Context(), id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, "Message marked as read", envelope{"data": msg})
}
