package identity

import (
	"context"

	"github.com/arogyacare/arogya-api/internal/domain"
)

type Repository interface {
	// Create persists a new identity. Returns ErrAlreadyExists on a
	// duplicate national ID; the unique index makes this atomic under
	// concurrent inserts.
	Create(ctx context.Context, ident *Identity) error

	// GetByNationalID retrieves an identity by its normalized national
	// ID. Returns ErrNotFound if absent.
	GetByNationalID(ctx context.Context, nationalID string) (*Identity, error)

	// GetByNationalIDAndRole retrieves an identity only when both key
	// and role match.
	GetByNationalIDAndRole(ctx context.Context, nationalID string, role domain.Role) (*Identity, error)

	// UpdatePassword replaces the stored password hash. Returns
	// ErrNotFound when no row matches.
	UpdatePassword(ctx context.Context, nationalID string, newHash string) error

	// List returns all identities. Administrative use only.
	List(ctx context.Context) ([]*Identity, error)
}
