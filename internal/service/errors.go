package service

import (
	"errors"
	"strings"
)

var ErrForbidden = errors.New("forbidden: insufficient permissions")

type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Fields, "; ")
}

// AuditEntry is the service-facing shape of an audit event; the audit
// service maps it onto the persisted model.
type AuditEntry struct {
	IdentityID uint
	Role       string
	Action     string
	Subject    string
	Outcome    string
	Detail     string
	IPAddress  string
	RequestID  string
}
