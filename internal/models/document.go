package models

import (
	"time"

	"github.com/google/uuid"
)

type Document struct {
	ID        uuid.UUID `db:"id" json:"id"`
	UserID    uuid.UUID `db:"user_id" json:"user_id"`
	Title     string    `db:"title" json:"title"`
	Content   string    `db:"content" json:"content"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

const (
	DocumentActionCreated = "created"
	DocumentActionUpdated = "updated"
)

// DocumentAuditEntry is append-only. For "created" Content is the initial content,
// for "updated" it is the content as it was before the update.
type DocumentAuditEntry struct {
	ID         int64     `db:"id" json:"id"`
	DocumentID uuid.UUID `db:"document_id" json:"document_id"`
	UserID     uuid.UUID `db:"user_id" json:"user_id"`
	Action     string    `db:"action" json:"action"`
	Content    string    `db:"content" json:"content"`
	RecordedAt time.Time `db:"recorded_at" json:"recorded_at"`
}
