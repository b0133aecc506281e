package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeUsername(t *testing.T) {
	assert.Equal(t, "hanna_f", NormalizeUsername("  Hanna_F  "))
	assert.Equal(t, "a.b", NormalizeUsername("A.B"))
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "me@example.com", NormalizeEmail(" Me@Example.COM "))
}

func TestValidateUsername(t *testing.T) {
	valid := []string{"abc", "user_name", "a.b.c", "user123", strings.Repeat("a", 20)}
	for _, u := range valid {
		assert.NoError(t, ValidateUsername(u), u)
	}

	invalid := []string{"", "ab", strings.Repeat("a", 21), "UPPER", "with space", "dash-ed", "émoji"}
	for _, u := range invalid {
		assert.Error(t, ValidateUsername(u), u)
	}
}

func TestValidateEmail(t *testing.T) {
	assert.NoError(t, ValidateEmail("me@example.com"))
	assert.NoError(t, ValidateEmail("a.b+c@sub.example.org"))

	invalid := []string{"", "plainaddress", "@example.com", "me@", "me@@example.com"}
	for _, e := range invalid {
		assert.Error(t, ValidateEmail(e), e)
	}
}

func TestValidatePassword(t *testing.T) {
	assert.NoError(t, ValidatePassword("secret1"))
	assert.Error(t, ValidatePassword("12345"))
	assert.Error(t, ValidatePassword(""))
}
