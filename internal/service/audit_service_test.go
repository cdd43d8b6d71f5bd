package service

import (
	"context"
	"sync"
	"testing"

	"github.com/arogyacare/arogya-api/internal/config"
	"github.com/arogyacare/arogya-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// recordingAuditRepository captures persisted entries so tests can
// inspect what the async worker wrote.
type recordingAuditRepository struct {
	mu      sync.Mutex
	entries []*domain.AuditLog
}

func (r *recordingAuditRepository) Create(ctx context.Context, entry *domain.AuditLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, entry)
	return nil
}

func (r *recordingAuditRepository) all() []*domain.AuditLog {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*domain.AuditLog(nil), r.entries...)
}

func TestAuditLog_RequestIDFromContext(t *testing.T) {
	repo := &recordingAuditRepository{}
	svc := NewAuditService(repo, testCollector, zap.NewNop())

	ctx := WithRequestID(context.Background(), "req-42")
	svc.LogAsync(ctx, AuditEntry{Action: "login", Subject: "123456789012", Outcome: "success"})
	svc.Shutdown()

	entries := repo.all()
	require.Len(t, entries, 1)
	assert.Equal(t, "req-42", entries[0].RequestID)
}

func TestAuditLog_ExplicitRequestIDWins(t *testing.T) {
	repo := &recordingAuditRepository{}
	svc := NewAuditService(repo, testCollector, zap.NewNop())

	ctx := WithRequestID(context.Background(), "req-ctx")
	svc.LogAsync(ctx, AuditEntry{Action: "login", RequestID: "req-explicit"})
	svc.LogAsync(context.Background(), AuditEntry{Action: "login"})
	svc.Shutdown()

	entries := repo.all()
	require.Len(t, entries, 2)
	assert.Equal(t, "req-explicit", entries[0].RequestID)
	assert.Empty(t, entries[1].RequestID, "no tagged context, no correlation ID")
}

func TestLogin_AuditCarriesRequestID(t *testing.T) {
	repo := &recordingAuditRepository{}
	auditSvc := NewAuditService(repo, testCollector, zap.NewNop())

	store := newFakeIdentityStore()
	seedIdentity(t, store, "pw1-secret", domain.RolePatient)
	svc := NewAuthService(store, testJWTManager(), auditSvc, testCollector, config.AuthConfig{}, zap.NewNop())

	ctx := WithRequestID(context.Background(), "req-login-1")
	_, err := svc.Login(ctx, "123456789012", "pw1-secret", domain.RolePatient, "127.0.0.1")
	require.NoError(t, err)
	auditSvc.Shutdown()

	entries := repo.all()
	require.Len(t, entries, 1)
	assert.Equal(t, domain.ActionLogin, entries[0].Action)
	assert.Equal(t, "req-login-1", entries[0].RequestID)
}
