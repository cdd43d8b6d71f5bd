package service

import (
	"context"
	"errors"
	"sync"

	"github.com/arogyacare/arogya-api/internal/domain"
	"github.com/arogyacare/arogya-api/internal/domain/identity"
	"github.com/arogyacare/arogya-api/internal/notify"
	"github.com/arogyacare/arogya-api/pkg/metrics"
	"go.uber.org/zap"
)

// Prometheus collectors register against the default registry, so the
// package shares a single instance across tests.
var testCollector = metrics.NewCollector("test")

// Compile-time check to ensure MockIdentityRepository implements identity.Repository.
var _ identity.Repository = (*MockIdentityRepository)(nil)

// MockIdentityRepository is a function-field mock of identity.Repository.
type MockIdentityRepository struct {
	CreateFunc                 func(ctx context.Context, ident *identity.Identity) error
	GetByNationalIDFunc        func(ctx context.Context, nationalID string) (*identity.Identity, error)
	GetByNationalIDAndRoleFunc func(ctx context.Context, nationalID string, role domain.Role) (*identity.Identity, error)
	UpdatePasswordFunc         func(ctx context.Context, nationalID string, newHash string) error
	ListFunc                   func(ctx context.Context) ([]*identity.Identity, error)
}

func (m *MockIdentityRepository) Create(ctx context.Context, ident *identity.Identity) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, ident)
	}
	return errors.New("CreateFunc not implemented in mock")
}

func (m *MockIdentityRepository) GetByNationalID(ctx context.Context, nationalID string) (*identity.Identity, error) {
	if m.GetByNationalIDFunc != nil {
		return m.GetByNationalIDFunc(ctx, nationalID)
	}
	return nil, errors.New("GetByNationalIDFunc not implemented in mock")
}

func (m *MockIdentityRepository) GetByNationalIDAndRole(ctx context.Context, nationalID string, role domain.Role) (*identity.Identity, error) {
	if m.GetByNationalIDAndRoleFunc != nil {
		return m.GetByNationalIDAndRoleFunc(ctx, nationalID, role)
	}
	return nil, errors.New("GetByNationalIDAndRoleFunc not implemented in mock")
}

func (m *MockIdentityRepository) UpdatePassword(ctx context.Context, nationalID string, newHash string) error {
	if m.UpdatePasswordFunc != nil {
		return m.UpdatePasswordFunc(ctx, nationalID, newHash)
	}
	return errors.New("UpdatePasswordFunc not implemented in mock")
}

func (m *MockIdentityRepository) List(ctx context.Context) ([]*identity.Identity, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	return nil, nil
}

// fakeIdentityStore is a stateful in-memory identity.Repository for
// flow tests that span registration, login, and reset.
type fakeIdentityStore struct {
	mu     sync.Mutex
	nextID uint
	rows   map[string]*identity.Identity
}

var _ identity.Repository = (*fakeIdentityStore)(nil)

func newFakeIdentityStore() *fakeIdentityStore {
	return &fakeIdentityStore{nextID: 1, rows: make(map[string]*identity.Identity)}
}

func (f *fakeIdentityStore) Create(ctx context.Context, ident *identity.Identity) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rows[ident.NationalID]; ok {
		return identity.ErrAlreadyExists
	}
	ident.ID = f.nextID
	f.nextID++
	cp := *ident
	f.rows[ident.NationalID] = &cp
	return nil
}

func (f *fakeIdentityStore) GetByNationalID(ctx context.Context, nationalID string) (*identity.Identity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ident, ok := f.rows[nationalID]
	if !ok {
		return nil, identity.ErrNotFound
	}
	cp := *ident
	return &cp, nil
}

func (f *fakeIdentityStore) GetByNationalIDAndRole(ctx context.Context, nationalID string, role domain.Role) (*identity.Identity, error) {
	ident, err := f.GetByNationalID(ctx, nationalID)
	if err != nil {
		return nil, err
	}
	if ident.Role != role {
		return nil, identity.ErrNotFound
	}
	return ident, nil
}

func (f *fakeIdentityStore) UpdatePassword(ctx context.Context, nationalID string, newHash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	ident, ok := f.rows[nationalID]
	if !ok {
		return identity.ErrNotFound
	}
	ident.PasswordHash = newHash
	return nil
}

func (f *fakeIdentityStore) List(ctx context.Context) ([]*identity.Identity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*identity.Identity, 0, len(f.rows))
	for _, ident := range f.rows {
		cp := *ident
		out = append(out, &cp)
	}
	return out, nil
}

// Compile-time check to ensure MockGateway implements notify.Gateway.
var _ notify.Gateway = (*MockGateway)(nil)

// MockGateway records every delivery so tests can recover the issued
// code from the message body.
type MockGateway struct {
	SendFunc func(ctx context.Context, dest notify.Destination, message string) error

	mu       sync.Mutex
	Sent     []string
	LastDest notify.Destination
}

func (m *MockGateway) Send(ctx context.Context, dest notify.Destination, message string) error {
	m.mu.Lock()
	m.Sent = append(m.Sent, message)
	m.LastDest = dest
	m.mu.Unlock()
	if m.SendFunc != nil {
		return m.SendFunc(ctx, dest, message)
	}
	return nil
}

// mockAuditRepository drops entries; audit persistence is covered by
// the repository tests.
type mockAuditRepository struct{}

func (mockAuditRepository) Create(ctx context.Context, entry *domain.AuditLog) error {
	return nil
}

func newTestAuditService() *AuditService {
	return NewAuditService(mockAuditRepository{}, testCollector, zap.NewNop())
}
