package store

import (
	"context"

	"github.com/google/uuid"

	"github.com/AnshRaj112/serenify-care/internal/apperrors"
	"github.com/AnshRaj112/serenify-care/internal/models"
)

const invoiceColumns = `id, student_id, therapist_id, amount::float8 AS amount, description, is_paid, issued_at, paid_at`

func (s *Store) CreateInvoice(ctx context.Context, inv models.Invoice) (*models.Invoice, error) {
	if err := requireStudent(ctx, s.db, inv.StudentID); err != nil {
		return nil, err
	}
	var out models.Invoice
	err := s.db.GetContext(ctx, &out,
		`INSERT INTO invoices (student_id, therapist_id, amount, description) VALUES ($1, $2, $3, $4)
		 RETURNING `+invoiceColumns,
		inv.StudentID, inv.TherapistID, inv.Amount, inv.Description)
	if err != nil {
		return nil, mapError(err, "Invoice")
	}
	return &out, nil
}

func (s *Store) GetInvoice(ctx context.Context, id uuid.UUID) (*models.Invoice, error) {
	var out models.Invoice
	if err := s.db.GetContext(ctx, &out, `SELECT `+invoiceColumns+` FROM invoices WHERE id = $1`, id); err != nil {
		return nil, mapError(err, "Invoice")
	}
	return &out, nil
}

// ListInvoicesByStudent returns a student's invoices, oldest first.
func (s *Store) ListInvoicesByStudent(ctx context.Context, studentID uuid.UUID) ([]models.Invoice, error) {
	var out []models.Invoice
	err := s.db.SelectContext(ctx, &out,
		`SELECT `+invoiceColumns+` FROM invoices WHERE student_id = $1 ORDER BY issued_at, id`, studentID)
	if err != nil {
		return nil, mapError(err, "Invoice")
	}
	return nonNil(out), nil
}

// PayInvoice flips is_paid false -> true. Paying a paid invoice is a Conflict.
func (s *Store) PayInvoice(ctx context.Context, id uuid.UUID) (*models.Invoice, error) {
	var out models.Invoice
	err := s.db.GetContext(ctx, &out,
		`UPDATE invoices SET is_paid = TRUE, paid_at = NOW()
		 WHERE id = $1 AND is_paid = FALSE
		 RETURNING `+invoiceColumns, id)
	if err == nil {
		return &out, nil
	}
	if mapped := apperrors.From(mapError(err, "Invoice")); mapped.Kind != apperrors.KindNotFound {
		return nil, mapped
	}
	// no row updated: either absent or already paid
	if _, getErr := s.GetInvoice(ctx, id); getErr != nil {
		return nil, getErr
	}
	return nil, apperrors.Conflict("Invoice is already paid")
}
