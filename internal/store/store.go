// Package store holds the PostgreSQL data-access functions, one file per entity.
package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/AnshRaj112/serenify-care/internal/apperrors"
)

// PostgreSQL SQLSTATE codes mapped to client errors.
const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
	pqInvalidText         = "22P02"
	pqCheckViolation      = "23514"
)

// Store wraps the connection pool. All methods are safe for concurrent use.
type Store struct {
	db *sqlx.DB
}

func New(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// Ping checks the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// withTx runs fn in a transaction, committing on nil and rolling back otherwise.
func (s *Store) withTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return apperrors.Internal("Failed to start transaction", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return apperrors.Internal("Failed to commit transaction", err)
	}
	return nil
}

// mapError translates driver errors into API errors. entity names the row kind in messages.
func mapError(err error, entity string) error {
	if err == nil {
		return nil
	}
	var appErr *apperrors.Error
	if errors.As(err, &appErr) {
		return err
	}
	if errors.Is(err, sql.ErrNoRows) {
		return apperrors.NotFound(entity + " not found")
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch string(pqErr.Code) {
		case pqUniqueViolation:
			return apperrors.Wrap(apperrors.KindConflict, entity+" already exists", err)
		case pqForeignKeyViolation:
			return apperrors.Wrap(apperrors.KindBadRequest, "Referenced record does not exist", err)
		case pqInvalidText, pqCheckViolation:
			return apperrors.Wrap(apperrors.KindBadRequest, "Invalid "+lowerFirst(entity)+" data", err)
		}
	}
	return apperrors.Internal("Database error", err)
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	b := []byte(s)
	if b[0] >= 'A' && b[0] <= 'Z' {
		b[0] += 'a' - 'A'
	}
	return string(b)
}

// nonNil keeps JSON list responses as [] instead of null.
func nonNil[T any](in []T) []T {
	if in == nil {
		return []T{}
	}
	return in
}
