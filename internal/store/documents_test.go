package store

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AnshRaj112/serenify-care/internal/apperrors"
	"github.com/AnshRaj112/serenify-care/internal/models"
)

var (
	documentCols = []string{"id", "user_id", "title", "content", "created_at", "updated_at"}
	auditCols    = []string{"id", "document_id", "user_id", "action", "content", "recorded_at"}
	invoiceCols  = []string{"id", "student_id", "therapist_id", "amount", "description", "is_paid", "issued_at", "paid_at"}
)

func TestCreateDocumentWritesCreatedAudit(t *testing.T) {
	s, mock := newMockStore(t)
	id, user := uuid.New(), uuid.New()
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO documents").
		WillReturnRows(sqlmock.NewRows(documentCols).AddRow(id.String(), user.String(), "Notes", "v1", now, now))
	mock.ExpectExec("INSERT INTO document_audit").
		WithArgs(id, user, models.DocumentActionCreated, "v1").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	d, err := s.CreateDocument(context.Background(), user, "Notes", "v1")
	require.NoError(t, err)
	assert.Equal(t, "v1", d.Content)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateDocumentAuditsPriorContent(t *testing.T) {
	s, mock := newMockStore(t)
	id, user := uuid.New(), uuid.New()
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").WithArgs(id).
		WillReturnRows(sqlmock.NewRows(documentCols).AddRow(id.String(), user.String(), "Notes", "v1", now, now))
	mock.ExpectExec("INSERT INTO document_audit").
		WithArgs(id, user, models.DocumentActionUpdated, "v1").
		WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectQuery("UPDATE documents SET").
		WillReturnRows(sqlmock.NewRows(documentCols).AddRow(id.String(), user.String(), "Notes", "v2", now, now))
	mock.ExpectCommit()

	d, err := s.UpdateDocument(context.Background(), id, nil, "v2")
	require.NoError(t, err)
	assert.Equal(t, "v2", d.Content)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateMissingDocumentWritesNoAudit(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").WillReturnRows(sqlmock.NewRows(documentCols))
	mock.ExpectRollback()

	_, err := s.UpdateDocument(context.Background(), uuid.New(), nil, "v2")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListUserDocumentAuditOrder(t *testing.T) {
	s, mock := newMockStore(t)
	doc, user := uuid.New(), uuid.New()
	at := time.Now()

	mock.ExpectQuery("ORDER BY recorded_at, id").WithArgs(user).
		WillReturnRows(sqlmock.NewRows(auditCols).
			AddRow(1, doc.String(), user.String(), "created", "v1", at).
			AddRow(2, doc.String(), user.String(), "updated", "v1", at))

	entries, err := s.ListUserDocumentAudit(context.Background(), user)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, models.DocumentActionCreated, entries[0].Action)
	assert.Equal(t, models.DocumentActionUpdated, entries[1].Action)
}

func TestPayInvoiceTwiceIsConflict(t *testing.T) {
	s, mock := newMockStore(t)
	id := uuid.New()
	now := time.Now()

	mock.ExpectQuery("UPDATE invoices SET is_paid").WithArgs(id).WillReturnRows(sqlmock.NewRows(invoiceCols))
	mock.ExpectQuery("FROM invoices WHERE id").WithArgs(id).
		WillReturnRows(sqlmock.NewRows(invoiceCols).AddRow(id.String(), uuid.NewString(), nil, 50.0, "", true, now, now))

	_, err := s.PayInvoice(context.Background(), id)
	assert.ErrorIs(t, err, apperrors.ErrConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPayMissingInvoiceIsNotFound(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery("UPDATE invoices SET is_paid").WillReturnRows(sqlmock.NewRows(invoiceCols))
	mock.ExpectQuery("FROM invoices WHERE id").WillReturnRows(sqlmock.NewRows(invoiceCols))

	_, err := s.PayInvoice(context.Background(), uuid.New())
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListTherapistReviewsAverage(t *testing.T) {
	s, mock := newMockStore(t)
	therapist := uuid.New()
	now := time.Now()
	cols := []string{"id", "therapist_id", "student_id", "rating", "comment", "created_at", "updated_at"}

	mock.ExpectQuery("FROM reviews WHERE therapist_id").
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow(uuid.NewString(), therapist.String(), nil, 5, "great", now, now).
			AddRow(uuid.NewString(), therapist.String(), nil, 4, "", now, now))

	summary, err := s.ListTherapistReviews(context.Background(), therapist)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Count)
	assert.InDelta(t, 4.5, summary.AverageRating, 0.0001)
}
