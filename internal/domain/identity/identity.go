package identity

import (
	"fmt"
	"strings"
	"time"

	"github.com/arogyacare/arogya-api/internal/domain"
)

// Identity is the sole persisted entity of the authentication service:
// one row per registered user, keyed by the normalized national ID.
// The password is stored only as a bcrypt hash. Rows are never deleted
// by the authentication flow.
type Identity struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`

	DisplayName  string      `gorm:"column:display_name;type:varchar(100);not null"`
	Email        string      `gorm:"column:email;type:varchar(255);not null"`
	NationalID   string      `gorm:"column:national_id;type:varchar(20);not null;uniqueIndex"`
	Phone        string      `gorm:"column:phone;type:varchar(20);not null"`
	PasswordHash string      `gorm:"column:password_hash;type:varchar(255);not null"`
	Role         domain.Role `gorm:"column:role;type:varchar(20);not null;index"`
}

func (Identity) TableName() string {
	return "identities"
}

// Validate checks the invariants every persisted row must satisfy: no
// empty required column and a role from the closed set. The store runs
// this on insert so an invalid row can never reach the table, whatever
// the caller did.
func (i *Identity) Validate() error {
	var fields []string

	if i.DisplayName == "" {
		fields = append(fields, "display_name is required")
	}
	if i.Email == "" {
		fields = append(fields, "email is required")
	}
	if i.NationalID == "" {
		fields = append(fields, "national_id is required")
	}
	if i.Phone == "" {
		fields = append(fields, "phone is required")
	}
	if i.PasswordHash == "" {
		fields = append(fields, "password_hash is required")
	}
	if !i.Role.IsValid() {
		fields = append(fields, fmt.Sprintf("role %q is not recognized", i.Role))
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// NormalizeNationalID strips separator characters (spaces and hyphens)
// so "1234-5678-9012" and "123456789012" resolve to the same key. It
// is idempotent.
func NormalizeNationalID(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		if r == ' ' || r == '-' {
			continue
		}
		b.WriteRune(r)
	}
	return strings.TrimSpace(b.String())
}

// ValidNationalID reports whether a normalized ID is exactly length
// ASCII digits. Only '0'-'9' count: other scripts' digit runes are
// rejected, so byte length and digit count always agree.
func ValidNationalID(normalized string, length int) bool {
	if len(normalized) != length {
		return false
	}
	for i := 0; i < len(normalized); i++ {
		if normalized[i] < '0' || normalized[i] > '9' {
			return false
		}
	}
	return true
}

// RegisterCommand carries the raw signup input; fields are trimmed and
// the national ID normalized by the registration service before
// validation and storage.
type RegisterCommand struct {
	DisplayName string
	Email       string
	NationalID  string
	Phone       string
	Password    string
	Role        domain.Role
}
