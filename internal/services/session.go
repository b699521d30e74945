package services

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/AnshRaj112/serenify-care/internal/apperrors"
	"github.com/AnshRaj112/serenify-care/internal/models"
)

// DefaultSessionDuration applies when no TTL is configured.
const DefaultSessionDuration = 24 * time.Hour

// Claims carried by a session token. The subject is the user id.
type Claims struct {
	Role  models.Role `json:"role"`
	Email string      `json:"email"`
	jwt.RegisteredClaims
}

// UserID parses the subject claim.
func (c *Claims) UserID() (uuid.UUID, error) {
	return uuid.Parse(c.Subject)
}

// SessionManager issues and verifies stateless HS256 session tokens.
// Logout is client-side: tokens stay valid until they expire.
type SessionManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewSessionManager(secret string, ttl time.Duration) *SessionManager {
	if ttl <= 0 {
		ttl = DefaultSessionDuration
	}
	return &SessionManager{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue signs a token for the user and returns it with its expiry.
func (m *SessionManager) Issue(userID uuid.UUID, role models.Role, email string) (string, time.Time, error) {
	now := m.now()
	exp := now.Add(m.ttl)
	claims := &Claims{
		Role:  role,
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// Verify validates signature, algorithm and expiry. Every failure is Unauthorized.
func (m *SessionManager) Verify(token string) (*Claims, error) {
	if token == "" {
		return nil, apperrors.Unauthorized("Missing authentication token")
	}
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperrors.Wrap(apperrors.KindUnauthorized, "Session expired", err)
		}
		return nil, apperrors.Wrap(apperrors.KindUnauthorized, "Invalid authentication token", err)
	}
	if !parsed.Valid {
		return nil, apperrors.Unauthorized("Invalid authentication token")
	}
	if _, err := claims.UserID(); err != nil {
		return nil, apperrors.Wrap(apperrors.KindUnauthorized, "Invalid authentication token", err)
	}
	return claims, nil
}
