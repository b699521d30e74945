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

const therapistColumns = `id, user_id, license_number, specialization, years_of_experience,
	monthly_rate, is_available, certificate_url, bio, created_at, updated_at`

const therapistDetailsSelect = `
	SELECT t.id, t.user_id, t.license_number, t.specialization, t.years_of_experience,
		t.monthly_rate, t.is_available, t.certificate_url, t.bio, t.created_at, t.updated_at,
		u.first_name, u.last_name, a.email,
		COALESCE(r.avg_rating, 0) AS average_rating, COALESCE(r.review_count, 0) AS review_count
	FROM therapists t
	JOIN users u ON u.id = t.user_id
	JOIN auth a ON a.user_id = t.user_id
	LEFT JOIN (
		SELECT therapist_id, AVG(rating)::float8 AS avg_rating, COUNT(*) AS review_count
		FROM reviews GROUP BY therapist_id
	) r ON r.therapist_id = t.id`

// TherapistUpdate holds optional therapist fields; nil means unchanged.
type TherapistUpdate struct {
	Specialization    *string
	YearsOfExperience *int
	MonthlyRate       *float64
	IsAvailable       *bool
	CertificateURL    *string
	Bio               *string
}

// CreateTherapist inserts a therapist profile for a therapist-role user whose license is verified.
func (s *Store) CreateTherapist(ctx context.Context, t models.Therapist) (*models.Therapist, error) {
	var out models.Therapist
	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		var role models.Role
		err := tx.QueryRowxContext(ctx, `SELECT role FROM users WHERE id = $1`, t.UserID).Scan(&role)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return apperrors.BadRequest("User not found")
			}
			return mapError(err, "User")
		}
		if role != models.RoleTherapist {
			return apperrors.BadRequest("User is not registered as a therapist")
		}

		verified, err := licenseVerified(ctx, tx, t.LicenseNumber)
		if err != nil {
			return err
		}
		if !verified {
			return apperrors.Forbidden("License number is not verified")
		}

		err = tx.GetContext(ctx, &out,
			`INSERT INTO therapists (user_id, license_number, specialization, years_of_experience,
				monthly_rate, is_available, certificate_url, bio)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			 RETURNING `+therapistColumns,
			t.UserID, t.LicenseNumber, t.Specialization, t.YearsOfExperience,
			t.MonthlyRate, t.IsAvailable, t.CertificateURL, t.Bio)
		if err != nil {
			if isUniqueViolation(err) {
				return apperrors.Wrap(apperrors.KindConflict, "Therapist profile or license already registered", err)
			}
			return mapError(err, "Therapist")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// GetTherapist returns the bare therapist profile.
func (s *Store) GetTherapist(ctx context.Context, id uuid.UUID) (*models.Therapist, error) {
	var t models.Therapist
	if err := s.db.GetContext(ctx, &t, `SELECT `+therapistColumns+` FROM therapists WHERE id = $1`, id); err != nil {
		return nil, mapError(err, "Therapist")
	}
	return &t, nil
}

// GetTherapistByUserID returns the therapist profile owned by a user.
func (s *Store) GetTherapistByUserID(ctx context.Context, userID uuid.UUID) (*models.Therapist, error) {
	var t models.Therapist
	if err := s.db.GetContext(ctx, &t, `SELECT `+therapistColumns+` FROM therapists WHERE user_id = $1`, userID); err != nil {
		return nil, mapError(err, "Therapist")
	}
	return &t, nil
}

// GetTherapistDetails joins the therapist with user names, email and review summary.
func (s *Store) GetTherapistDetails(ctx context.Context, id uuid.UUID) (*models.TherapistDetails, error) {
	var t models.TherapistDetails
	if err := s.db.GetContext(ctx, &t, therapistDetailsSelect+` WHERE t.id = $1`, id); err != nil {
		return nil, mapError(err, "Therapist")
	}
	return &t, nil
}

// ListAvailableTherapists returns therapists accepting students, most experienced first.
func (s *Store) ListAvailableTherapists(ctx context.Context) ([]models.TherapistDetails, error) {
	var out []models.TherapistDetails
	err := s.db.SelectContext(ctx, &out,
		therapistDetailsSelect+` WHERE t.is_available = TRUE ORDER BY t.years_of_experience DESC, t.created_at`)
	if err != nil {
		return nil, mapError(err, "Therapist")
	}
	return nonNil(out), nil
}

// UpdateTherapist applies the non-nil fields.
func (s *Store) UpdateTherapist(ctx context.Context, id uuid.UUID, upd TherapistUpdate) (*models.Therapist, error) {
	var t models.Therapist
	err := s.db.GetContext(ctx, &t,
		`UPDATE therapists SET
			specialization = COALESCE($2, specialization),
			years_of_experience = COALESCE($3, years_of_experience),
			monthly_rate = COALESCE($4, monthly_rate),
			is_available = COALESCE($5, is_available),
			certificate_url = COALESCE($6, certificate_url),
			bio = COALESCE($7, bio),
			updated_at = NOW()
		 WHERE id = $1
		 RETURNING `+therapistColumns,
		id, upd.Specialization, upd.YearsOfExperience, upd.MonthlyRate, upd.IsAvailable, upd.CertificateURL, upd.Bio)
	if err != nil {
		return nil, mapError(err, "Therapist")
	}
	return &t, nil
}

// SetAvailabilityByUserID toggles availability for the therapist owned by userID.
func (s *Store) SetAvailabilityByUserID(ctx context.Context, userID uuid.UUID, available bool) (*models.Therapist, error) {
	var t models.Therapist
	err := s.db.GetContext(ctx, &t,
		`UPDATE therapists SET is_available = $2, updated_at = NOW() WHERE user_id = $1 RETURNING `+therapistColumns,
		userID, available)
	if err != nil {
		return nil, mapError(err, "Therapist")
	}
	return &t, nil
}

// IsLicenseVerified reports whether the license number is in the verified set.
func (s *Store) IsLicenseVerified(ctx context.Context, license string) (bool, error) {
	return licenseVerified(ctx, s.db, license)
}

// SeedVerifiedLicenses inserts license numbers that are not yet present and
// returns how many were added.
func (s *Store) SeedVerifiedLicenses(ctx context.Context, licenses []string) (int64, error) {
	var added int64
	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		for _, l := range licenses {
			res, err := tx.ExecContext(ctx,
				`INSERT INTO verified_licenses (license_number) VALUES ($1) ON CONFLICT DO NOTHING`, l)
			if err != nil {
				return mapError(err, "License")
			}
			n, _ := res.RowsAffected()
			added += n
		}
		return nil
	})
	return added, err
}

func licenseVerified(ctx context.Context, q sqlx.QueryerContext, license string) (bool, error) {
	var ok bool
	err := q.QueryRowxContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM verified_licenses WHERE license_number = $1)`, license).Scan(&ok)
	if err != nil {
		return false, mapError(err, "License")
	}
	return ok, nil
}
