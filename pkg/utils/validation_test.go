package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateEmail(t *testing.T) {
	cases := map[string]bool{
		"a@b.com":          true,
		"first.last@x.org": true,
		"":                 false,
		"no-at-sign":       false,
		"a@localhost":      false,
		"Name <a@b.com>":   false,
	}
	for in, valid := range cases {
		err := ValidateEmail(in)
		if valid {
			assert.NoError(t, err, in)
		} else {
			assert.Error(t, err, in)
		}
	}
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "a@b.com", NormalizeEmail("  A@B.com "))
}

func TestValidatePassword(t *testing.T) {
	assert.Error(t, ValidatePassword("short"))
	assert.NoError(t, ValidatePassword("longenough"))

	err := ValidatePassword("1234567")
	var ve *ValidationError
	assert.ErrorAs(t, err, &ve)
	assert.Equal(t, "password", ve.Field)
}

func TestValidateName(t *testing.T) {
	assert.Error(t, ValidateName("first_name", "   "))
	assert.NoError(t, ValidateName("first_name", "Ada"))
}
