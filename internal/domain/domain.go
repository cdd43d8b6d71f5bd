package domain

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleAdmin   Role = "admin"
	RoleDoctor  Role = "doctor"
	RolePatient Role = "patient"
	RoleUser    Role = "user"
)

func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleDoctor, RolePatient, RoleUser:
		return true
	}
	return false
}

// SelfServiceRoles are the roles a caller may claim at signup. Admin
// accounts are provisioned out of band.
func (r Role) SelfService() bool {
	return r == RoleDoctor || r == RolePatient
}

// Session is the result of a successful authentication. IdentityID is
// zero for the operator bootstrap account, which has no identity row.
type Session struct {
	IdentityID  uint      `json:"identity_id"`
	DisplayName string    `json:"display_name"`
	Role        Role      `json:"role"`
	Tokens      TokenPair `json:"tokens"`
}

type TokenPair struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
	TokenType    string    `json:"token_type"` // Always "Bearer"
}

type Claims struct {
	IdentityID  uint   `json:"sub"`
	DisplayName string `json:"name"`
	Role        Role   `json:"role"`
}

type AuditAction string

const (
	ActionRegister      AuditAction = "register"
	ActionLogin         AuditAction = "login"
	ActionResetRequest  AuditAction = "reset_request"
	ActionResetComplete AuditAction = "reset_complete"
	ActionList          AuditAction = "list"
)

type AuditLog struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	OccurredAt time.Time `gorm:"autoCreateTime;index"`

	// Who
	IdentityID uint   `gorm:"column:identity_id;index"`
	Role       Role   `gorm:"column:role;type:varchar(20)"`
	IPAddress  string `gorm:"column:ip_address;type:varchar(45)"` // Supports IPv6

	// What
	Action  AuditAction `gorm:"column:action;type:varchar(30);not null;index"`
	Subject string      `gorm:"column:subject;type:varchar(50);index"` // normalized national ID, if any
	Outcome string      `gorm:"column:outcome;type:varchar(20);not null"`
	Detail  string      `gorm:"column:detail;type:text"`

	RequestID string `gorm:"column:request_id;type:varchar(50);index"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}
