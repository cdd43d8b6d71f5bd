package service

import (
	"context"
	"time"

	"github.com/arogyacare/arogya-api/internal/domain"
	"github.com/arogyacare/arogya-api/pkg/metrics"
	"go.uber.org/zap"
)

type AuditRepository interface {
	Create(ctx context.Context, entry *domain.AuditLog) error
}

type auditCtxKey struct{}

// WithRequestID tags a context with the request correlation ID so every
// audit entry written downstream carries it without each service call
// threading the value explicitly.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, auditCtxKey{}, requestID)
}

func requestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(auditCtxKey{}).(string)
	return id
}

// AuditService persists audit events asynchronously so authentication
// calls never block on the audit table.
type AuditService struct {
	repo      AuditRepository
	log       *zap.Logger
	collector *metrics.Collector
	entries   chan *domain.AuditLog
	done      chan struct{}
}

const auditBufferSize = 10_000

func NewAuditService(repo AuditRepository, collector *metrics.Collector, log *zap.Logger) *AuditService {
	svc := &AuditService{
		repo:      repo,
		log:       log,
		collector: collector,
		entries:   make(chan *domain.AuditLog, auditBufferSize),
		done:      make(chan struct{}),
	}
	go svc.worker()
	return svc
}

// LogAsync enqueues an audit entry for async persistence.
// If the buffer is full, the entry is dropped and a warning is emitted.
func (s *AuditService) LogAsync(ctx context.Context, entry AuditEntry) {
	if entry.RequestID == "" {
		entry.RequestID = requestIDFromContext(ctx)
	}

	al := &domain.AuditLog{
		IdentityID: entry.IdentityID,
		Role:       domain.Role(entry.Role),
		Action:     domain.AuditAction(entry.Action),
		Subject:    entry.Subject,
		Outcome:    entry.Outcome,
		Detail:     entry.Detail,
		IPAddress:  entry.IPAddress,
		RequestID:  entry.RequestID,
	}

	select {
	case s.entries <- al:
	default:
		if s.collector != nil {
			s.collector.AuditBufferDropped.Inc()
		}
		s.log.Warn("audit log buffer full, dropping entry",
			zap.String("action", entry.Action),
			zap.String("subject", entry.Subject),
		)
	}
}

func (s *AuditService) Shutdown() {
	close(s.entries)
	select {
	case <-s.done:
	case <-time.After(10 * time.Second):
		s.log.Warn("audit service shutdown timed out; some entries may be lost")
	}
}

func (s *AuditService) worker() {
	defer close(s.done)
	for entry := range s.entries {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := s.repo.Create(ctx, entry); err != nil {
			s.log.Error("failed to persist audit log", zap.Error(err))
		} else if s.collector != nil {
			s.collector.AuditEntriesTotal.Inc()
		}
		cancel()
	}
}
