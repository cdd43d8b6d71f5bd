package identity

import (
	"testing"

	"github.com/arogyacare/arogya-api/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestNormalizeNationalID(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"1234-5678-9012", "123456789012"},
		{"1234 5678 9012", "123456789012"},
		{"123456789012", "123456789012"},
		{" 1234-5678 9012 ", "123456789012"},
		{"", ""},
		{"- - -", ""},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, NormalizeNationalID(tc.in), "input %q", tc.in)
	}
}

func TestNormalizeNationalID_Idempotent(t *testing.T) {
	inputs := []string{"1234-5678-9012", "1234 5678 9012", "123456789012", "abc-def"}
	for _, in := range inputs {
		once := NormalizeNationalID(in)
		assert.Equal(t, once, NormalizeNationalID(once), "normalize must be idempotent for %q", in)
	}
}

func TestValidNationalID(t *testing.T) {
	assert.True(t, ValidNationalID("123456789012", 12))
	assert.False(t, ValidNationalID("12345678901", 12), "too short")
	assert.False(t, ValidNationalID("1234567890123", 12), "too long")
	assert.False(t, ValidNationalID("12345678901a", 12), "non-digit")
	assert.False(t, ValidNationalID("", 12))

	// Digit runes from other scripts must not count, even when their
	// UTF-8 byte length happens to match: "१२३४" is 4 runes, 12 bytes.
	assert.False(t, ValidNationalID("१२३४", 12), "non-ASCII digits")
	assert.False(t, ValidNationalID("12345678901٢", 12), "mixed-script digits")
}

func TestRoleValidity(t *testing.T) {
	for _, role := range []domain.Role{domain.RoleAdmin, domain.RoleDoctor, domain.RolePatient, domain.RoleUser} {
		assert.True(t, role.IsValid(), "role %q", role)
	}
	assert.False(t, domain.Role("wizard").IsValid())
	assert.False(t, domain.Role("").IsValid())

	assert.True(t, domain.RoleDoctor.SelfService())
	assert.True(t, domain.RolePatient.SelfService())
	assert.False(t, domain.RoleAdmin.SelfService())
	assert.False(t, domain.RoleUser.SelfService())
}
