package user

import (
	"context"
	"testing"
	"time"

	"hireboard_backend/internal/common"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newSQLiteRepo backs the repository with an in-memory SQLite database. The
// schema is created by hand because the production DDL uses Postgres-only
// defaults.
func newSQLiteRepo(t *testing.T) Repository {
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	err = db.Exec(`
		CREATE TABLE users (
			id TEXT PRIMARY KEY,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL,
			provider_id TEXT NOT NULL,
			email TEXT,
			first_name TEXT,
			last_name TEXT,
			role TEXT NOT NULL DEFAULT 'user',
			provider_metadata BLOB,
			last_login_at DATETIME,
			CONSTRAINT idx_users_provider_id UNIQUE (provider_id),
			CONSTRAINT idx_users_email UNIQUE (email)
		)
	`).Error
	require.NoError(t, err)

	return NewGORMRepository(db)
}

func newDBUser(providerID, email string) *User {
	now := time.Now()
	u := &User{
		BaseModel: common.BaseModel{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		ProviderID: providerID,
		Role:       common.RoleUser,
	}
	if email != "" {
		u.Email = &email
	}
	return u
}

func TestRepository_CreateAndFind(t *testing.T) {
	repo := newSQLiteRepo(t)
	ctx := context.Background()

	u := newDBUser("prov_1", "Mixed.Case@Example.com")
	u.ProviderMetadata = JSONMap{"image_url": "https://img.example.com/u.png"}
	require.NoError(t, repo.Create(ctx, u))

	byID, err := repo.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "prov_1", byID.ProviderID)
	require.NotNil(t, byID.Email)
	assert.Equal(t, "mixed.case@example.com", *byID.Email, "emails are normalized on write")
	assert.Equal(t, "https://img.example.com/u.png", byID.ProviderMetadata["image_url"])

	byProvider, err := repo.FindByProviderID(ctx, "prov_1")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byProvider.ID)

	byEmail, err := repo.FindByEmail(ctx, "MIXED.CASE@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byEmail.ID)
}

func TestRepository_FindMisses(t *testing.T) {
	repo := newSQLiteRepo(t)
	ctx := context.Background()

	_, err := repo.FindByID(ctx, uuid.New())
	assert.ErrorIs(t, err, common.ErrNotFound)

	_, err = repo.FindByProviderID(ctx, "prov_missing")
	assert.ErrorIs(t, err, common.ErrNotFound)

	_, err = repo.FindByEmail(ctx, "missing@example.com")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestRepository_DuplicateProviderIDConflict(t *testing.T) {
	repo := newSQLiteRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newDBUser("prov_dup", "first@example.com")))

	err := repo.Create(ctx, newDBUser("prov_dup", "second@example.com"))
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrConflict)
}

func TestRepository_Update(t *testing.T) {
	repo := newSQLiteRepo(t)
	ctx := context.Background()

	u := newDBUser("prov_upd", "before@example.com")
	require.NoError(t, repo.Create(ctx, u))

	firstName := "Updated"
	u.FirstName = &firstName
	now := time.Now()
	u.LastLoginAt = &now
	require.NoError(t, repo.Update(ctx, u))

	got, err := repo.FindByID(ctx, u.ID)
	require.NoError(t, err)
	require.NotNil(t, got.FirstName)
	assert.Equal(t, "Updated", *got.FirstName)
	assert.NotNil(t, got.LastLoginAt)
}

func TestRepository_DeleteByProviderID(t *testing.T) {
	repo := newSQLiteRepo(t)
	ctx := context.Background()

	u := newDBUser("prov_del", "gone@example.com")
	require.NoError(t, repo.Create(ctx, u))

	rows, err := repo.DeleteByProviderID(ctx, "prov_del")
	require.NoError(t, err)
	assert.Equal(t, int64(1), rows)

	_, err = repo.FindByProviderID(ctx, "prov_del")
	assert.ErrorIs(t, err, common.ErrNotFound)

	// A replayed delete affects zero rows and still succeeds.
	rows, err = repo.DeleteByProviderID(ctx, "prov_del")
	require.NoError(t, err)
	assert.Equal(t, int64(0), rows)
}
