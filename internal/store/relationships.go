package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/AnshRaj112/serenify-care/internal/apperrors"
	"github.com/AnshRaj112/serenify-care/internal/models"
)

// AssignTherapist links a student to a therapist. Linking an existing pair is a no-op.
func (s *Store) AssignTherapist(ctx context.Context, therapistID, studentID uuid.UUID) error {
	return s.withTx(ctx, func(tx *sqlx.Tx) error {
		if err := requireStudent(ctx, tx, studentID); err != nil {
			return err
		}
		if err := requireTherapist(ctx, tx, therapistID); err != nil {
			return err
		}
		return linkStudentTherapist(ctx, tx, studentID, therapistID)
	})
}

// UnassignTherapist removes the link; NotFound if the pair was not linked.
func (s *Store) UnassignTherapist(ctx context.Context, therapistID, studentID uuid.UUID) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM student_therapists WHERE therapist_id = $1 AND student_id = $2`, therapistID, studentID)
	if err != nil {
		return mapError(err, "Relationship")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperrors.NotFound("Relationship not found")
	}
	return nil
}

// ListTherapistsForStudent returns the therapists linked to a student.
func (s *Store) ListTherapistsForStudent(ctx context.Context, studentID uuid.UUID) ([]models.TherapistDetails, error) {
	var out []models.TherapistDetails
	err := s.db.SelectContext(ctx, &out,
		therapistDetailsSelect+`
		JOIN student_therapists st ON st.therapist_id = t.id
		WHERE st.student_id = $1
		ORDER BY st.assigned_at`, studentID)
	if err != nil {
		return nil, mapError(err, "Therapist")
	}
	return nonNil(out), nil
}

// ListStudentsForTherapist returns the students linked to a therapist.
func (s *Store) ListStudentsForTherapist(ctx context.Context, therapistID uuid.UUID) ([]models.StudentSummary, error) {
	var out []models.StudentSummary
	err := s.db.SelectContext(ctx, &out, `
		SELECT u.id AS user_id, u.first_name, u.last_name, a.email,
			COALESCE(s.school, '') AS school, st.assigned_at
		FROM student_therapists st
		JOIN users u ON u.id = st.student_id
		JOIN auth a ON a.user_id = u.id
		LEFT JOIN students s ON s.user_id = u.id
		WHERE st.therapist_id = $1
		ORDER BY st.assigned_at`, therapistID)
	if err != nil {
		return nil, mapError(err, "Student")
	}
	return nonNil(out), nil
}

func linkStudentTherapist(ctx context.Context, ex sqlx.ExecerContext, studentID, therapistID uuid.UUID) error {
	_, err := ex.ExecContext(ctx,
		`INSERT INTO student_therapists (student_id, therapist_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
		studentID, therapistID)
	return mapError(err, "Relationship")
}

// requireStudent returns BadRequest unless id is a user with role student.
func requireStudent(ctx context.Context, q sqlx.QueryerContext, id uuid.UUID) error {
	var role models.Role
	err := q.QueryRowxContext(ctx, `SELECT role FROM users WHERE id = $1`, id).Scan(&role)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperrors.BadRequest("Student not found")
		}
		return mapError(err, "Student")
	}
	if role != models.RoleStudent {
		return apperrors.BadRequest("User is not a student")
	}
	return nil
}

// requireTherapist returns BadRequest unless id is a therapist profile.
func requireTherapist(ctx context.Context, q sqlx.QueryerContext, id uuid.UUID) error {
	var exists bool
	err := q.QueryRowxContext(ctx, `SELECT EXISTS (SELECT 1 FROM therapists WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return mapError(err, "Therapist")
	}
	if !exists {
		return apperrors.BadRequest("Therapist not found")
	}
	return nil
}
