package repository

import (
	"context"
	"testing"

	"github.com/arogyacare/arogya-api/internal/domain"
	"github.com/arogyacare/arogya-api/internal/domain/identity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&identity.Identity{}, &domain.AuditLog{}))
	return db
}

func testIdentity(nationalID string, role domain.Role) *identity.Identity {
	return &identity.Identity{
		DisplayName:  "Jane Doe",
		Email:        "j@x.com",
		NationalID:   nationalID,
		Phone:        "555-0100",
		PasswordHash: "$2a$10$notarealhashnotarealhashnotarealhash",
		Role:         role,
	}
}

func TestCreate_AssignsIDAndEnforcesUniqueness(t *testing.T) {
	repo := NewIdentityRepository(testDB(t))
	ctx := context.Background()

	first := testIdentity("123456789012", domain.RolePatient)
	require.NoError(t, repo.Create(ctx, first))
	assert.Equal(t, uint(1), first.ID)

	dup := testIdentity("123456789012", domain.RoleDoctor)
	err := repo.Create(ctx, dup)
	assert.ErrorIs(t, err, identity.ErrAlreadyExists)

	all, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1, "the failed insert must not leave a partial row")
}

func TestCreate_RejectsInvalidRows(t *testing.T) {
	repo := NewIdentityRepository(testDB(t))
	ctx := context.Background()

	var validErr *identity.ValidationError

	err := repo.Create(ctx, &identity.Identity{Role: domain.RolePatient})
	require.ErrorAs(t, err, &validErr)
	assert.Contains(t, validErr.Fields, "display_name is required")
	assert.Contains(t, validErr.Fields, "email is required")
	assert.Contains(t, validErr.Fields, "national_id is required")
	assert.Contains(t, validErr.Fields, "phone is required")
	assert.Contains(t, validErr.Fields, "password_hash is required")

	err = repo.Create(ctx, testIdentity("123456789012", domain.Role("wizard")))
	require.ErrorAs(t, err, &validErr)
	assert.Contains(t, validErr.Fields, `role "wizard" is not recognized`)

	all, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, all, "invalid rows must not reach the table")
}

func TestGetByNationalID(t *testing.T) {
	repo := NewIdentityRepository(testDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, testIdentity("123456789012", domain.RolePatient)))

	ident, err := repo.GetByNationalID(ctx, "123456789012")
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", ident.DisplayName)

	_, err = repo.GetByNationalID(ctx, "999999999999")
	assert.ErrorIs(t, err, identity.ErrNotFound)
}

func TestGetByNationalIDAndRole(t *testing.T) {
	repo := NewIdentityRepository(testDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, testIdentity("123456789012", domain.RolePatient)))

	ident, err := repo.GetByNationalIDAndRole(ctx, "123456789012", domain.RolePatient)
	require.NoError(t, err)
	assert.Equal(t, domain.RolePatient, ident.Role)

	_, err = repo.GetByNationalIDAndRole(ctx, "123456789012", domain.RoleDoctor)
	assert.ErrorIs(t, err, identity.ErrNotFound)
}

func TestUpdatePassword(t *testing.T) {
	repo := NewIdentityRepository(testDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, testIdentity("123456789012", domain.RolePatient)))

	require.NoError(t, repo.UpdatePassword(ctx, "123456789012", "$2a$10$newhash"))
	ident, err := repo.GetByNationalID(ctx, "123456789012")
	require.NoError(t, err)
	assert.Equal(t, "$2a$10$newhash", ident.PasswordHash)

	err = repo.UpdatePassword(ctx, "999999999999", "$2a$10$newhash")
	assert.ErrorIs(t, err, identity.ErrNotFound)
}

func TestList_OrderedByID(t *testing.T) {
	repo := NewIdentityRepository(testDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, testIdentity("111111111111", domain.RolePatient)))
	require.NoError(t, repo.Create(ctx, testIdentity("222222222222", domain.RoleDoctor)))

	all, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, uint(1), all[0].ID)
	assert.Equal(t, uint(2), all[1].ID)
}

func TestAuditRepository_Create(t *testing.T) {
	db := testDB(t)
	repo := NewAuditRepository(db)

	entry := &domain.AuditLog{
		Action:  domain.ActionLogin,
		Subject: "123456789012",
		Outcome: "success",
	}
	require.NoError(t, repo.Create(context.Background(), entry))
	assert.NotEqual(t, entry.ID.String(), "00000000-0000-0000-0000-000000000000")

	var count int64
	require.NoError(t, db.Model(&domain.AuditLog{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}
