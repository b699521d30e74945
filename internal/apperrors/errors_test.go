package apperrors

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	cases := map[*Error]int{
		BadRequest("x"):        http.StatusBadRequest,
		Unauthorized("x"):      http.StatusUnauthorized,
		Forbidden("x"):         http.StatusForbidden,
		NotFound("x"):          http.StatusNotFound,
		Conflict("x"):          http.StatusConflict,
		Internal("x", nil):     http.StatusInternalServerError,
		{Kind: "mystery"}:      http.StatusInternalServerError,
	}
	for err, want := range cases {
		assert.Equal(t, want, err.HTTPStatus(), string(err.Kind))
	}
}

func TestIsMatchesKind(t *testing.T) {
	err := fmt.Errorf("loading appointment: %w", NotFound("Appointment not found"))
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrConflict))
}

func TestFromWrapsUnknownErrors(t *testing.T) {
	appErr := From(sql.ErrConnDone)
	assert.Equal(t, KindInternal, appErr.Kind)
	assert.ErrorIs(t, appErr, sql.ErrConnDone)
	assert.Equal(t, "Internal server error", PublicMessage(appErr))
	assert.Nil(t, From(nil))
}

func TestPublicMessageHidesCause(t *testing.T) {
	appErr := Internal("Failed to load messages", errors.New("pq: relation \"messages\" does not exist"))
	assert.Equal(t, "Failed to load messages", PublicMessage(appErr))
	assert.NotContains(t, PublicMessage(appErr), "pq:")
}
