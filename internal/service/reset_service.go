package service

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"sync"
	"time"

	"github.com/arogyacare/arogya-api/internal/config"
	"github.com/arogyacare/arogya-api/internal/domain/identity"
	"github.com/arogyacare/arogya-api/internal/notify"
	"github.com/arogyacare/arogya-api/pkg/metrics"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrNoChallenge        = errors.New("no password reset in progress for this account")
	ErrChallengeExpired   = errors.New("reset code has expired, request a new one")
	ErrCodeMismatch       = errors.New("incorrect reset code")
	ErrTooManyAttempts    = errors.New("too many incorrect attempts, request a new code")
	ErrResetNotAuthorized = errors.New("reset code has not been verified")
)

// challenge is one pending reset. Challenges are ephemeral: they live
// only in the service's keyed table, never in durable storage, and at
// most one is live per subject.
type challenge struct {
	code     string
	issuedAt time.Time
	attempts int
	verified bool
}

// ResetService drives the OTP-based password reset flow:
// request (issue + deliver) -> verify -> complete.
type ResetService struct {
	repo      identity.Repository
	gateway   notify.Gateway
	auditSvc  *AuditService
	collector *metrics.Collector
	cfg       config.OTPConfig
	log       *zap.Logger

	mu      sync.Mutex
	pending map[string]*challenge

	// now is a seam for expiry tests.
	now func() time.Time
}

func NewResetService(repo identity.Repository, gateway notify.Gateway, auditSvc *AuditService, collector *metrics.Collector, cfg config.OTPConfig, log *zap.Logger) *ResetService {
	return &ResetService{
		repo:      repo,
		gateway:   gateway,
		auditSvc:  auditSvc,
		collector: collector,
		cfg:       cfg,
		log:       log,
		pending:   make(map[string]*challenge),
		now:       time.Now,
	}
}

// RequestReset issues a one-time code for the given subject and hands
// it to the notification gateway. A prior live challenge for the same
// subject is overwritten (last writer wins). A delivery failure is
// reported to the caller but leaves the challenge valid, so delivery
// can be retried without regenerating the code.
func (s *ResetService) RequestReset(ctx context.Context, nationalID string, ip string) error {
	nid := identity.NormalizeNationalID(nationalID)
	if nid == "" {
		return &ValidationError{Fields: []string{"national_id is required"}}
	}

	ident, err := s.repo.GetByNationalID(ctx, nid)
	if err != nil {
		if errors.Is(err, identity.ErrNotFound) {
			return identity.ErrNotFound
		}
		return fmt.Errorf("looking up identity: %w", err)
	}

	code, err := generateCode(s.cfg.Digits)
	if err != nil {
		return fmt.Errorf("generating reset code: %w", err)
	}

	s.mu.Lock()
	s.pending[nid] = &challenge{code: code, issuedAt: s.now()}
	s.mu.Unlock()

	s.collector.OTPIssuedTotal.Inc()
	s.auditSvc.LogAsync(ctx, AuditEntry{
		IdentityID: ident.ID,
		Role:       string(ident.Role),
		Action:     "reset_request",
		Subject:    nid,
		Outcome:    "issued",
		IPAddress:  ip,
	})

	dest := notify.EmailDestination(ident.Email)
	if ident.Email == "" {
		dest = notify.SMSDestination(ident.Phone)
	}

	message := fmt.Sprintf("Your password reset code is: %s. It expires in %s.",
		code, s.cfg.TTL.Round(time.Minute))

	deliverCtx, cancel := context.WithTimeout(ctx, s.cfg.DeliveryTimeout)
	defer cancel()

	if err := s.gateway.Send(deliverCtx, dest, message); err != nil {
		s.log.Warn("reset code delivery failed",
			zap.String("subject", nid),
			zap.Error(err),
		)
		return err
	}

	s.log.Info("reset code issued", zap.String("subject", nid))
	return nil
}

// Verify checks a submitted code against the pending challenge. On a
// mismatch the challenge stays live until the attempt budget is spent,
// after which it is discarded. On a match the challenge transitions to
// verified and CompleteReset becomes authorized, once.
func (s *ResetService) Verify(nationalID, submittedCode string) error {
	nid := identity.NormalizeNationalID(nationalID)

	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.pending[nid]
	if !ok {
		s.collector.OTPVerifiedTotal.WithLabelValues("no_challenge").Inc()
		return ErrNoChallenge
	}

	if s.now().Sub(c.issuedAt) > s.cfg.TTL {
		delete(s.pending, nid)
		s.collector.OTPVerifiedTotal.WithLabelValues("expired").Inc()
		return ErrChallengeExpired
	}

	if subtle.ConstantTimeCompare([]byte(c.code), []byte(submittedCode)) != 1 {
		c.attempts++
		if c.attempts >= s.cfg.MaxAttempts {
			delete(s.pending, nid)
			s.collector.OTPVerifiedTotal.WithLabelValues("locked").Inc()
			return ErrTooManyAttempts
		}
		s.collector.OTPVerifiedTotal.WithLabelValues("mismatch").Inc()
		return ErrCodeMismatch
	}

	c.verified = true
	s.collector.OTPVerifiedTotal.WithLabelValues("success").Inc()
	return nil
}

// CompleteReset sets a new password for a subject whose challenge has
// been verified. The challenge is consumed whether or not the update
// succeeds: a second call requires a fresh request/verify round trip.
func (s *ResetService) CompleteReset(ctx context.Context, nationalID, newPassword string) error {
	nid := identity.NormalizeNationalID(nationalID)

	if newPassword == "" {
		return &ValidationError{Fields: []string{"password is required"}}
	}
	if len(newPassword) < minPasswordLength {
		return &ValidationError{Fields: []string{
			fmt.Sprintf("password must be at least %d characters", minPasswordLength),
		}}
	}

	s.mu.Lock()
	c, ok := s.pending[nid]
	if !ok || !c.verified {
		s.mu.Unlock()
		return ErrResetNotAuthorized
	}
	delete(s.pending, nid)
	s.mu.Unlock()

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}

	if err := s.repo.UpdatePassword(ctx, nid, string(hash)); err != nil {
		s.collector.ResetsTotal.WithLabelValues("failure").Inc()
		return err
	}

	s.collector.ResetsTotal.WithLabelValues("success").Inc()
	s.auditSvc.LogAsync(ctx, AuditEntry{
		Action:  "reset_complete",
		Subject: nid,
		Outcome: "success",
	})

	s.log.Info("password reset completed", zap.String("subject", nid))
	return nil
}

// generateCode draws a uniformly random number from the fixed-width
// range for the configured digit count (e.g. 100000-999999 for six
// digits) using a cryptographically secure source. Every code in the
// range has the full width, so no padding is needed.
func generateCode(digits int) (string, error) {
	low := int64(1)
	for i := 1; i < digits; i++ {
		low *= 10
	}
	span := big.NewInt(low*10 - low)

	n, err := rand.Int(rand.Reader, span)
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(low+n.Int64(), 10), nil
}
