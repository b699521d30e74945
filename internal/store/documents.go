package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/AnshRaj112/serenify-care/internal/models"
)

const (
	documentColumns = `id, user_id, title, content, created_at, updated_at`
	auditColumns    = `id, document_id, user_id, action, content, recorded_at`
)

// CreateDocument inserts the document and its "created" audit entry in one transaction.
func (s *Store) CreateDocument(ctx context.Context, userID uuid.UUID, title, content string) (*models.Document, error) {
	var d models.Document
	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		if err := tx.GetContext(ctx, &d,
			`INSERT INTO documents (user_id, title, content) VALUES ($1, $2, $3) RETURNING `+documentColumns,
			userID, title, content); err != nil {
			return mapError(err, "Document")
		}
		return appendDocumentAudit(ctx, tx, d.ID, d.UserID, models.DocumentActionCreated, content)
	})
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (s *Store) GetDocument(ctx context.Context, id uuid.UUID) (*models.Document, error) {
	var d models.Document
	if err := s.db.GetContext(ctx, &d, `SELECT `+documentColumns+` FROM documents WHERE id = $1`, id); err != nil {
		return nil, mapError(err, "Document")
	}
	return &d, nil
}

// ListUserDocuments returns a user's documents, most recently edited first.
func (s *Store) ListUserDocuments(ctx context.Context, userID uuid.UUID) ([]models.Document, error) {
	var out []models.Document
	err := s.db.SelectContext(ctx, &out,
		`SELECT `+documentColumns+` FROM documents WHERE user_id = $1 ORDER BY updated_at DESC, id`, userID)
	if err != nil {
		return nil, mapError(err, "Document")
	}
	return nonNil(out), nil
}

// UpdateDocument locks the row, records the prior content and overwrites it,
// all in one transaction. A nil title keeps the current title.
func (s *Store) UpdateDocument(ctx context.Context, id uuid.UUID, title *string, content string) (*models.Document, error) {
	var d models.Document
	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		var prior models.Document
		if err := tx.GetContext(ctx, &prior,
			`SELECT `+documentColumns+` FROM documents WHERE id = $1 FOR UPDATE`, id); err != nil {
			return mapError(err, "Document")
		}
		if err := appendDocumentAudit(ctx, tx, prior.ID, prior.UserID, models.DocumentActionUpdated, prior.Content); err != nil {
			return err
		}
		err := tx.GetContext(ctx, &d,
			`UPDATE documents SET title = COALESCE($2, title), content = $3, updated_at = NOW()
			 WHERE id = $1 RETURNING `+documentColumns,
			id, title, content)
		return mapError(err, "Document")
	})
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// ListDocumentAudit returns one document's audit entries in recorded order.
func (s *Store) ListDocumentAudit(ctx context.Context, documentID uuid.UUID) ([]models.DocumentAuditEntry, error) {
	if _, err := s.GetDocument(ctx, documentID); err != nil {
		return nil, err
	}
	var out []models.DocumentAuditEntry
	err := s.db.SelectContext(ctx, &out,
		`SELECT `+auditColumns+` FROM document_audit WHERE document_id = $1 ORDER BY recorded_at, id`, documentID)
	if err != nil {
		return nil, mapError(err, "Audit entry")
	}
	return nonNil(out), nil
}

// ListUserDocumentAudit returns the audit entries of all documents owned by userID in recorded order.
func (s *Store) ListUserDocumentAudit(ctx context.Context, userID uuid.UUID) ([]models.DocumentAuditEntry, error) {
	var out []models.DocumentAuditEntry
	err := s.db.SelectContext(ctx, &out,
		`SELECT `+auditColumns+` FROM document_audit WHERE user_id = $1 ORDER BY recorded_at, id`, userID)
	if err != nil {
		return nil, mapError(err, "Audit entry")
	}
	return nonNil(out), nil
}

func appendDocumentAudit(ctx context.Context, ex sqlx.ExecerContext, documentID, userID uuid.UUID, action, content string) error {
	_, err := ex.ExecContext(ctx,
		`INSERT INTO document_audit (document_id, user_id, action, content) VALUES ($1, $2, $3, $4)`,
		documentID, userID, action, content)
	return mapError(err, "Audit entry")
}
