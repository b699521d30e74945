package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/AnshRaj112/serenify-care/internal/apperrors"
	"github.com/AnshRaj112/serenify-care/internal/models"
)

const userProfileQuery = `
	SELECT u.id, u.role, u.first_name, u.last_name, u.phone, u.bio, u.created_at, u.updated_at, a.email
	FROM users u
	JOIN auth a ON a.user_id = u.id
	WHERE u.id = $1`

// NewAccount is everything written by registration.
type NewAccount struct {
	User         models.User
	Email        string
	PasswordHash string
	Student      *models.Student // only for role student
}

// UserUpdate holds optional profile fields; nil means unchanged.
type UserUpdate struct {
	FirstName *string
	LastName  *string
	Phone     *string
	Bio       *string
}

// CreateAccount inserts the user, its credential and (for students) the student profile
// in one transaction.
func (s *Store) CreateAccount(ctx context.Context, acct NewAccount) (*models.UserProfile, error) {
	profile := &models.UserProfile{User: acct.User, Email: acct.Email}

	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		err := tx.QueryRowxContext(ctx,
			`INSERT INTO users (role, first_name, last_name, phone, bio)
			 VALUES ($1, $2, $3, $4, $5)
			 RETURNING id, created_at, updated_at`,
			acct.User.Role, acct.User.FirstName, acct.User.LastName, acct.User.Phone, acct.User.Bio,
		).Scan(&profile.ID, &profile.CreatedAt, &profile.UpdatedAt)
		if err != nil {
			return mapError(err, "User")
		}

		_, err = tx.ExecContext(ctx,
			`INSERT INTO auth (user_id, email, password_hash) VALUES ($1, $2, $3)`,
			profile.ID, acct.Email, acct.PasswordHash)
		if err != nil {
			if isUniqueViolation(err) {
				return apperrors.Wrap(apperrors.KindConflict, "Email already registered", err)
			}
			return mapError(err, "Credential")
		}

		if acct.User.Role == models.RoleStudent {
			st := acct.Student
			if st == nil {
				st = &models.Student{}
			}
			_, err = tx.ExecContext(ctx,
				`INSERT INTO students (user_id, school, year_of_study, emergency_contact) VALUES ($1, $2, $3, $4)`,
				profile.ID, st.School, st.YearOfStudy, st.EmergencyContact)
			if err != nil {
				return mapError(err, "Student profile")
			}
		}

		return recordAccountAudit(ctx, tx, profile.ID, models.AccountActionRegistered, string(acct.User.Role))
	})
	if err != nil {
		return nil, err
	}
	return profile, nil
}

// EmailExists reports whether a credential with this email exists.
func (s *Store) EmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := s.db.QueryRowxContext(ctx, `SELECT EXISTS (SELECT 1 FROM auth WHERE email = $1)`, email).Scan(&exists)
	if err != nil {
		return false, mapError(err, "Credential")
	}
	return exists, nil
}

// GetCredentialByEmail returns NotFound when no account uses the email.
func (s *Store) GetCredentialByEmail(ctx context.Context, email string) (*models.Credential, error) {
	var c models.Credential
	err := s.db.GetContext(ctx, &c,
		`SELECT user_id, email, password_hash, created_at, updated_at FROM auth WHERE email = $1`, email)
	if err != nil {
		return nil, mapError(err, "Account")
	}
	return &c, nil
}

func (s *Store) GetCredentialByUserID(ctx context.Context, userID uuid.UUID) (*models.Credential, error) {
	var c models.Credential
	err := s.db.GetContext(ctx, &c,
		`SELECT user_id, email, password_hash, created_at, updated_at FROM auth WHERE user_id = $1`, userID)
	if err != nil {
		return nil, mapError(err, "Account")
	}
	return &c, nil
}

// GetUser returns the user joined with its email.
func (s *Store) GetUser(ctx context.Context, id uuid.UUID) (*models.UserProfile, error) {
	var u models.UserProfile
	if err := s.db.GetContext(ctx, &u, userProfileQuery, id); err != nil {
		return nil, mapError(err, "User")
	}
	return &u, nil
}

// GetStudent returns the student profile for a user id.
func (s *Store) GetStudent(ctx context.Context, userID uuid.UUID) (*models.Student, error) {
	var st models.Student
	err := s.db.GetContext(ctx, &st,
		`SELECT user_id, school, year_of_study, emergency_contact, created_at FROM students WHERE user_id = $1`, userID)
	if err != nil {
		return nil, mapError(err, "Student")
	}
	return &st, nil
}

// UpdateUser applies the non-nil profile fields.
func (s *Store) UpdateUser(ctx context.Context, id uuid.UUID, upd UserUpdate) (*models.UserProfile, error) {
	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx,
			`UPDATE users SET
				first_name = COALESCE($2, first_name),
				last_name = COALESCE($3, last_name),
				phone = COALESCE($4, phone),
				bio = COALESCE($5, bio),
				updated_at = NOW()
			 WHERE id = $1`,
			id, upd.FirstName, upd.LastName, upd.Phone, upd.Bio)
		if err != nil {
			return mapError(err, "User")
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return apperrors.NotFound("User not found")
		}
		return recordAccountAudit(ctx, tx, id, models.AccountActionProfileUpdated, "")
	})
	if err != nil {
		return nil, err
	}
	return s.GetUser(ctx, id)
}

// UpdateEmail changes the login email. Conflict when the email is taken.
func (s *Store) UpdateEmail(ctx context.Context, userID uuid.UUID, email string) error {
	return s.withTx(ctx, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx,
			`UPDATE auth SET email = $2, updated_at = NOW() WHERE user_id = $1`, userID, email)
		if err != nil {
			if isUniqueViolation(err) {
				return apperrors.Wrap(apperrors.KindConflict, "Email already registered", err)
			}
			return mapError(err, "Account")
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return apperrors.NotFound("Account not found")
		}
		return recordAccountAudit(ctx, tx, userID, models.AccountActionEmailChanged, email)
	})
}

// UpdatePasswordHash overwrites the stored hash and records action in the account audit.
func (s *Store) UpdatePasswordHash(ctx context.Context, userID uuid.UUID, hash, action string) error {
	return s.withTx(ctx, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx,
			`UPDATE auth SET password_hash = $2, updated_at = NOW() WHERE user_id = $1`, userID, hash)
		if err != nil {
			return mapError(err, "Account")
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return apperrors.NotFound("Account not found")
		}
		return recordAccountAudit(ctx, tx, userID, action, "")
	})
}

// DeleteUser removes relationship rows, the role profile, the credential and the user
// in one transaction. Users still referenced by appointments, messages or other
// records cannot be deleted.
func (s *Store) DeleteUser(ctx context.Context, id uuid.UUID) error {
	return s.withTx(ctx, func(tx *sqlx.Tx) error {
		var role models.Role
		if err := tx.QueryRowxContext(ctx, `SELECT role FROM users WHERE id = $1 FOR UPDATE`, id).Scan(&role); err != nil {
			return mapError(err, "User")
		}

		steps := []string{
			`DELETE FROM student_therapists
			 WHERE student_id = $1 OR therapist_id IN (SELECT id FROM therapists WHERE user_id = $1)`,
			`DELETE FROM therapists WHERE user_id = $1`,
			`DELETE FROM students WHERE user_id = $1`,
			`DELETE FROM auth WHERE user_id = $1`,
			`DELETE FROM users WHERE id = $1`,
		}
		for _, q := range steps {
			if _, err := tx.ExecContext(ctx, q, id); err != nil {
				if isForeignKeyViolation(err) {
					return apperrors.Wrap(apperrors.KindConflict, "User still has appointments, messages or other records", err)
				}
				return mapError(err, "User")
			}
		}
		return nil
	})
}

// ListAccountAudit returns the user's account audit trail, oldest first.
func (s *Store) ListAccountAudit(ctx context.Context, userID uuid.UUID) ([]models.AccountAuditEntry, error) {
	var out []models.AccountAuditEntry
	err := s.db.SelectContext(ctx, &out,
		`SELECT id, user_id, action, detail, recorded_at FROM account_audit
		 WHERE user_id = $1 ORDER BY recorded_at, id`, userID)
	if err != nil {
		return nil, mapError(err, "Audit entry")
	}
	return nonNil(out), nil
}

func recordAccountAudit(ctx context.Context, ex sqlx.ExecerContext, userID uuid.UUID, action, detail string) error {
	_, err := ex.ExecContext(ctx,
		`INSERT INTO account_audit (user_id, action, detail) VALUES ($1, $2, $3)`, userID, action, detail)
	return mapError(err, "Audit entry")
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && string(pqErr.Code) == pqUniqueViolation
}

func isForeignKeyViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && string(pqErr.Code) == pqForeignKeyViolation
}
