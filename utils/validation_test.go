package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "user@example.com", NormalizeEmail("  User@Example.COM  "))
	assert.Equal(t, "", NormalizeEmail("   "))
}

func TestIsValidEmail(t *testing.T) {
	assert.True(t, IsValidEmail("user@example.com"))
	assert.False(t, IsValidEmail("user@example"))
	assert.False(t, IsValidEmail("not an email"))
	assert.False(t, IsValidEmail(""))
}

func TestTrimPtr(t *testing.T) {
	blank := "   "
	assert.Nil(t, TrimPtr(nil))
	assert.Nil(t, TrimPtr(&blank))

	padded := "  hello  "
	trimmed := TrimPtr(&padded)
	assert.NotNil(t, trimmed)
	assert.Equal(t, "hello", *trimmed)
}

func TestStrPtr(t *testing.T) {
	assert.Nil(t, StrPtr(""))

	p := StrPtr("value")
	assert.NotNil(t, p)
	assert.Equal(t, "value", *p)
}
