package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/arogyacare/arogya-api/internal/domain"
	"github.com/arogyacare/arogya-api/internal/domain/identity"
	"gorm.io/gorm"
)

// IdentityRepository is the GORM/SQLite implementation of
// identity.Repository. Uniqueness of national_id is enforced by the
// unique index, so concurrent inserts of the same key resolve to
// exactly one success without application-level locking.
type IdentityRepository struct {
	db *gorm.DB
}

var _ identity.Repository = (*IdentityRepository)(nil)

func NewIdentityRepository(db *gorm.DB) *IdentityRepository {
	return &IdentityRepository{db: db}
}

func (r *IdentityRepository) Create(ctx context.Context, ident *identity.Identity) error {
	if err := ident.Validate(); err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Create(ident).Error; err != nil {
		// TranslateError is enabled on the connection, so constraint
		// violations surface as gorm.ErrDuplicatedKey.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return identity.ErrAlreadyExists
		}
		return fmt.Errorf("inserting identity: %w", err)
	}
	return nil
}

func (r *IdentityRepository) GetByNationalID(ctx context.Context, nationalID string) (*identity.Identity, error) {
	var ident identity.Identity
	err := r.db.WithContext(ctx).
		Where("national_id = ?", nationalID).
		First(&ident).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, identity.ErrNotFound
		}
		return nil, fmt.Errorf("querying identity: %w", err)
	}
	return &ident, nil
}

func (r *IdentityRepository) GetByNationalIDAndRole(ctx context.Context, nationalID string, role domain.Role) (*identity.Identity, error) {
	var ident identity.Identity
	err := r.db.WithContext(ctx).
		Where("national_id = ? AND role = ?", nationalID, role).
		First(&ident).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, identity.ErrNotFound
		}
		return nil, fmt.Errorf("querying identity by role: %w", err)
	}
	return &ident, nil
}

func (r *IdentityRepository) UpdatePassword(ctx context.Context, nationalID string, newHash string) error {
	res := r.db.WithContext(ctx).
		Model(&identity.Identity{}).
		Where("national_id = ?", nationalID).
		Update("password_hash", newHash)
	if res.Error != nil {
		return fmt.Errorf("updating password: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return identity.ErrNotFound
	}
	return nil
}

func (r *IdentityRepository) List(ctx context.Context) ([]*identity.Identity, error) {
	var idents []*identity.Identity
	if err := r.db.WithContext(ctx).Order("id").Find(&idents).Error; err != nil {
		return nil, fmt.Errorf("listing identities: %w", err)
	}
	return idents, nil
}
