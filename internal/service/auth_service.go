package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/arogyacare/arogya-api/internal/config"
	"github.com/arogyacare/arogya-api/internal/domain"
	"github.com/arogyacare/arogya-api/internal/domain/identity"
	"github.com/arogyacare/arogya-api/pkg/auth"
	"github.com/arogyacare/arogya-api/pkg/metrics"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrBadPassword  = errors.New("incorrect password")
	ErrRoleMismatch = errors.New("role does not match the registered account")
)

// operatorDisplayName labels sessions from the bootstrap credential;
// they carry identity ID 0 since no row backs them.
const operatorDisplayName = "operator"

type AuthService struct {
	repo       identity.Repository
	jwtManager *auth.JWTManager
	auditSvc   *AuditService
	collector  *metrics.Collector
	cfg        config.AuthConfig
	log        *zap.Logger
}

func NewAuthService(repo identity.Repository, jwtManager *auth.JWTManager, auditSvc *AuditService, collector *metrics.Collector, cfg config.AuthConfig, log *zap.Logger) *AuthService {
	return &AuthService{
		repo:       repo,
		jwtManager: jwtManager,
		auditSvc:   auditSvc,
		collector:  collector,
		cfg:        cfg,
		log:        log,
	}
}

// Login verifies a national-ID/password pair against the claimed role
// and returns a session on success. The identity record is never
// mutated by this path.
func (s *AuthService) Login(ctx context.Context, nationalID, password string, claimedRole domain.Role, ip string) (*domain.Session, error) {
	nid := identity.NormalizeNationalID(nationalID)

	if err := validateLoginInput(nid, password, claimedRole); err != nil {
		s.collector.LoginsTotal.WithLabelValues("invalid").Inc()
		return nil, err
	}

	// Bootstrap path: an operator credential provisioned via the
	// environment, checked before any store lookup. The operator has
	// no identity row and can only claim the admin role.
	if s.cfg.OperatorEnabled() && claimedRole == domain.RoleAdmin && nid == s.cfg.OperatorID {
		return s.loginOperator(ctx, password, ip)
	}

	ident, err := s.repo.GetByNationalID(ctx, nid)
	if err != nil {
		if errors.Is(err, identity.ErrNotFound) {
			s.collector.LoginsTotal.WithLabelValues("not_found").Inc()
			return nil, identity.ErrNotFound
		}
		s.log.Error("identity lookup failed", zap.Error(err))
		return nil, fmt.Errorf("looking up identity: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(ident.PasswordHash), []byte(password)); err != nil {
		s.collector.LoginsTotal.WithLabelValues("bad_password").Inc()
		s.auditLogin(ctx, ident.ID, claimedRole, nid, "bad_password", ip)
		s.log.Warn("failed login attempt",
			zap.String("subject", nid),
			zap.String("ip", ip),
		)
		return nil, ErrBadPassword
	}

	if ident.Role != claimedRole {
		s.collector.LoginsTotal.WithLabelValues("role_mismatch").Inc()
		s.auditLogin(ctx, ident.ID, claimedRole, nid, "role_mismatch", ip)
		return nil, ErrRoleMismatch
	}

	session, err := s.newSession(ident.ID, ident.DisplayName, ident.Role)
	if err != nil {
		return nil, err
	}

	s.collector.LoginsTotal.WithLabelValues("success").Inc()
	s.auditLogin(ctx, ident.ID, ident.Role, nid, "success", ip)
	s.log.Info("user logged in",
		zap.Uint("identity_id", ident.ID),
		zap.String("ip", ip),
	)

	return session, nil
}

// RefreshToken issues a new token pair given a valid refresh token.
func (s *AuthService) RefreshToken(ctx context.Context, refreshToken string) (*domain.TokenPair, error) {
	claims, err := s.jwtManager.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, err
	}
	return s.jwtManager.GenerateTokenPair(claims)
}

func (s *AuthService) loginOperator(ctx context.Context, password string, ip string) (*domain.Session, error) {
	if err := bcrypt.CompareHashAndPassword([]byte(s.cfg.OperatorPasswordHash), []byte(password)); err != nil {
		s.collector.LoginsTotal.WithLabelValues("bad_password").Inc()
		s.log.Warn("failed operator login attempt", zap.String("ip", ip))
		return nil, ErrBadPassword
	}

	session, err := s.newSession(0, operatorDisplayName, domain.RoleAdmin)
	if err != nil {
		return nil, err
	}

	s.collector.LoginsTotal.WithLabelValues("success").Inc()
	s.auditLogin(ctx, 0, domain.RoleAdmin, s.cfg.OperatorID, "operator_success", ip)
	return session, nil
}

func (s *AuthService) newSession(identityID uint, displayName string, role domain.Role) (*domain.Session, error) {
	pair, err := s.jwtManager.GenerateTokenPair(&domain.Claims{
		IdentityID:  identityID,
		DisplayName: displayName,
		Role:        role,
	})
	if err != nil {
		s.log.Error("failed to generate token pair", zap.Error(err))
		return nil, fmt.Errorf("generating tokens: %w", err)
	}

	return &domain.Session{
		IdentityID:  identityID,
		DisplayName: displayName,
		Role:        role,
		Tokens:      *pair,
	}, nil
}

func (s *AuthService) auditLogin(ctx context.Context, identityID uint, role domain.Role, subject, outcome, ip string) {
	s.auditSvc.LogAsync(ctx, AuditEntry{
		IdentityID: identityID,
		Role:       string(role),
		Action:     "login",
		Subject:    subject,
		Outcome:    outcome,
		IPAddress:  ip,
	})
}

func validateLoginInput(normalizedID, password string, claimedRole domain.Role) error {
	var errs []string

	if normalizedID == "" {
		errs = append(errs, "national_id is required")
	}
	if password == "" {
		errs = append(errs, "password is required")
	}
	if !claimedRole.IsValid() {
		errs = append(errs, "role must be one of admin, doctor, patient, user")
	}

	if len(errs) > 0 {
		return &ValidationError{Fields: errs}
	}
	return nil
}
