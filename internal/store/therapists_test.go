package store

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AnshRaj112/serenify-care/internal/apperrors"
	"github.com/AnshRaj112/serenify-care/internal/models"
)

var therapistCols = []string{"id", "user_id", "license_number", "specialization", "years_of_experience",
	"monthly_rate", "is_available", "certificate_url", "bio", "created_at", "updated_at"}

func TestCreateTherapistUnverifiedLicenseIsForbidden(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT role FROM users").
		WillReturnRows(sqlmock.NewRows([]string{"role"}).AddRow("therapist"))
	mock.ExpectQuery("verified_licenses").WithArgs("LIC-404").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectRollback()

	_, err := s.CreateTherapist(context.Background(), models.Therapist{UserID: uuid.New(), LicenseNumber: "LIC-404"})
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateTherapistRequiresTherapistRole(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT role FROM users").
		WillReturnRows(sqlmock.NewRows([]string{"role"}).AddRow("student"))
	mock.ExpectRollback()

	_, err := s.CreateTherapist(context.Background(), models.Therapist{UserID: uuid.New(), LicenseNumber: "LIC-1"})
	assert.ErrorIs(t, err, apperrors.ErrBadRequest)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateTherapistDuplicateLicenseIsConflict(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT role FROM users").
		WillReturnRows(sqlmock.NewRows([]string{"role"}).AddRow("therapist"))
	mock.ExpectQuery("verified_licenses").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery("INSERT INTO therapists").WillReturnError(&pq.Error{Code: "23505"})
	mock.ExpectRollback()

	_, err := s.CreateTherapist(context.Background(), models.Therapist{UserID: uuid.New(), LicenseNumber: "LIC-1"})
	assert.ErrorIs(t, err, apperrors.ErrConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateTherapist(t *testing.T) {
	s, mock := newMockStore(t)
	id, userID := uuid.New(), uuid.New()
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT role FROM users").
		WillReturnRows(sqlmock.NewRows([]string{"role"}).AddRow("therapist"))
	mock.ExpectQuery("verified_licenses").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery("INSERT INTO therapists").
		WillReturnRows(sqlmock.NewRows(therapistCols).
			AddRow(id.String(), userID.String(), "LIC-1", "CBT", 4, "120.50", true, "", "", now, now))
	mock.ExpectCommit()

	th, err := s.CreateTherapist(context.Background(), models.Therapist{
		UserID: userID, LicenseNumber: "LIC-1", Specialization: "CBT", YearsOfExperience: 4, MonthlyRate: 120.5, IsAvailable: true,
	})
	require.NoError(t, err)
	assert.Equal(t, id, th.ID)
	assert.InDelta(t, 120.5, th.MonthlyRate, 0.001)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSeedVerifiedLicensesCountsInserted(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO verified_licenses").WithArgs("A").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO verified_licenses").WithArgs("B").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	added, err := s.SeedVerifiedLicenses(context.Background(), []string{"A", "B"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, added)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUnassignTherapistMissingPair(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec("DELETE FROM student_therapists").WillReturnResult(sqlmock.NewResult(0, 0))

	err := s.UnassignTherapist(context.Background(), uuid.New(), uuid.New())
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
