package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/arogyacare/arogya-api/internal/config"
	"github.com/arogyacare/arogya-api/internal/domain/identity"
	"github.com/arogyacare/arogya-api/pkg/metrics"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 8

type RegistrationService struct {
	repo      identity.Repository
	auditSvc  *AuditService
	collector *metrics.Collector
	cfg       config.AuthConfig
	log       *zap.Logger
}

func NewRegistrationService(repo identity.Repository, auditSvc *AuditService, collector *metrics.Collector, cfg config.AuthConfig, log *zap.Logger) *RegistrationService {
	return &RegistrationService{
		repo:      repo,
		auditSvc:  auditSvc,
		collector: collector,
		cfg:       cfg,
		log:       log,
	}
}

// Register validates and persists a new identity. It does not log the
// user in. The password is hashed before it reaches the store; the raw
// secret is never persisted.
func (s *RegistrationService) Register(ctx context.Context, cmd *identity.RegisterCommand, ip string) (*identity.Identity, error) {
	nid := identity.NormalizeNationalID(cmd.NationalID)

	if err := s.validateCommand(cmd, nid); err != nil {
		s.collector.RegistrationsTotal.WithLabelValues("invalid").Inc()
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cmd.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	ident := &identity.Identity{
		DisplayName:  strings.TrimSpace(cmd.DisplayName),
		Email:        strings.ToLower(strings.TrimSpace(cmd.Email)),
		NationalID:   nid,
		Phone:        strings.TrimSpace(cmd.Phone),
		PasswordHash: string(hash),
		Role:         cmd.Role,
	}

	if err := s.repo.Create(ctx, ident); err != nil {
		if errors.Is(err, identity.ErrAlreadyExists) {
			s.collector.RegistrationsTotal.WithLabelValues("duplicate").Inc()
			return nil, err
		}
		s.log.Error("failed to create identity", zap.Error(err))
		return nil, fmt.Errorf("creating identity: %w", err)
	}

	s.collector.RegistrationsTotal.WithLabelValues("success").Inc()
	s.auditSvc.LogAsync(ctx, AuditEntry{
		IdentityID: ident.ID,
		Role:       string(ident.Role),
		Action:     "register",
		Subject:    nid,
		Outcome:    "success",
		IPAddress:  ip,
	})

	s.log.Info("identity registered",
		zap.Uint("identity_id", ident.ID),
		zap.String("role", string(ident.Role)),
	)

	return ident, nil
}

func (s *RegistrationService) validateCommand(cmd *identity.RegisterCommand, normalizedID string) error {
	var errs []string

	if strings.TrimSpace(cmd.DisplayName) == "" {
		errs = append(errs, "display_name is required")
	}
	if strings.TrimSpace(cmd.Email) == "" {
		errs = append(errs, "email is required")
	}
	if strings.TrimSpace(cmd.Phone) == "" {
		errs = append(errs, "phone is required")
	}
	if normalizedID == "" {
		errs = append(errs, "national_id is required")
	} else if !identity.ValidNationalID(normalizedID, s.cfg.NationalIDLength) {
		errs = append(errs, fmt.Sprintf("national_id must be exactly %d digits", s.cfg.NationalIDLength))
	}
	if cmd.Password == "" {
		errs = append(errs, "password is required")
	} else if len(cmd.Password) < minPasswordLength {
		errs = append(errs, fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}

	if len(errs) > 0 {
		return &ValidationError{Fields: errs}
	}

	// Self-service signup is limited to doctor and patient; admin
	// accounts are provisioned out of band.
	if !cmd.Role.IsValid() || !cmd.Role.SelfService() {
		return identity.ErrInvalidRole
	}

	return nil
}
