package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/AnshRaj112/serenify-care/internal/apperrors"
	"github.com/AnshRaj112/serenify-care/internal/models"
	"github.com/AnshRaj112/serenify-care/internal/services"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type CreateInvoiceRequest struct {
	StudentID   uuid.UUID  `json:"student_id" validate:"required"`
	TherapistID *uuid.UUID `json:"therapist_id"`
	Amount      float64    `json:"amount" validate:"gt=0"`
	Description string     `json:"description" validate:"max=500"`
}

// CreateInvoice handles POST /api/invoices.
func (h *Handler) CreateInvoice(w http.ResponseWriter, r *http.Request) {
	var req CreateInvoiceRequest
	if err := h.decode(r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}
	inv, err := h.store.CreateInvoice(r.Context(), models.Invoice{
		StudentID:   req.StudentID,
		TherapistID: req.TherapistID,
		Amount:      req.Amount,
		Description: strings.TrimSpace(req.Description),
	})
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respond(w, http.StatusCreated, "Invoice created", envelope{"invoice": inv})
}

// GetInvoice handles GET /api/invoices/{id}.
func (h *Handler) GetInvoice(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	inv, err := h.store.GetInvoice(r.Context(), id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, "Invoice retrieved", envelope{"invoice": inv})
}

// StudentInvoices handles GET /api/invoices/student/{id}.
func (h *Handler) StudentInvoices(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	invoices, err := h.store.ListInvoicesByStudent(r.Context(), id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, "Invoices retrieved", envelope{"invoices": invoices})
}

// PayInvoice handles PUT /api/invoices/{id}/pay for the invoiced student. Paying a paid invoice is a conflict.
func (h *Handler) PayInvoice(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	current, err := h.store.GetInvoice(r.Context(), id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	if current.StudentID != callerID(r) {
		h.respondError(w, r, apperrors.Forbidden("Only the invoiced student can pay this invoice"))
		return
	}
	inv, err := h.store.PayInvoice(r.Context(), id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, "Invoice paid", envelope{"invoice": inv})
}

// ExportStudentInvoices handles GET /api/invoices/student/{id}/export as an .xlsx download.
func (h *Handler) ExportStudentInvoices(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	invoices, err := h.store.ListInvoicesByStudent(r.Context(), id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	// build in memory so a failure can still be reported as JSON
	var buf bytes.Buffer
	if err := services.WriteInvoicesXLSX(&buf, invoices); err != nil {
		h.respondError(w, r, apperrors.Internal("Failed to export invoices", err))
		return
	}
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="invoices-%s.xlsx"`, id))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}
