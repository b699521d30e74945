package services

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AnshRaj112/serenify-care/internal/apperrors"
	"github.com/AnshRaj112/serenify-care/internal/models"
)

func TestIssueAndVerify(t *testing.T) {
	m := NewSessionManager("secret", time.Hour)
	id := uuid.New()

	token, exp, err := m.Issue(id, models.RoleStudent, "a@b.com")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)

	claims, err := m.Verify(token)
	require.NoError(t, err)
	got, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, id, got)
	assert.Equal(t, models.RoleStudent, claims.Role)
	assert.Equal(t, "a@b.com", claims.Email)
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	m := NewSessionManager("secret", time.Hour)
	m.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	token, _, err := m.Issue(uuid.New(), models.RoleTherapist, "t@b.com")
	require.NoError(t, err)

	m.now = time.Now
	_, err = m.Verify(token)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
	assert.Equal(t, "Session expired", apperrors.From(err).Message)
}

func TestVerifyRejectsWrongSecretAndAlgorithm(t *testing.T) {
	token, _, err := NewSessionManager("other", time.Hour).Issue(uuid.New(), models.RoleStudent, "a@b.com")
	require.NoError(t, err)

	m := NewSessionManager("secret", time.Hour)
	_, err = m.Verify(token)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = m.Verify(none)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)

	_, err = m.Verify("")
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestVerifyRejectsNonUUIDSubject(t *testing.T) {
	m := NewSessionManager("secret", time.Hour)
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "not-a-uuid",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = m.Verify(token)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}
