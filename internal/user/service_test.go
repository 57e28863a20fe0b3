package user

import (
	"context"
	"encoding/json"
	"testing"

	"hireboard_backend/internal/common"
	"hireboard_backend/internal/config"
	"hireboard_backend/internal/job"

	firebaseauth "firebase.google.com/go/v4/auth"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type mockRepository struct {
	createFn             func(ctx context.Context, user *User) error
	findByEmailFn        func(ctx context.Context, email string) (*User, error)
	findByIDFn           func(ctx context.Context, id uuid.UUID) (*User, error)
	findByProviderIDFn   func(ctx context.Context, providerID string) (*User, error)
	updateFn             func(ctx context.Context, user *User) error
	deleteByProviderIDFn func(ctx context.Context, providerID string) (int64, error)
}

func (m *mockRepository) Create(ctx context.Context, user *User) error {
	return m.createFn(ctx, user)
}

func (m *mockRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	return m.findByEmailFn(ctx, email)
}

func (m *mockRepository) FindByID(ctx context.Context, id uuid.UUID) (*User, error) {
	return m.findByIDFn(ctx, id)
}

func (m *mockRepository) FindByProviderID(ctx context.Context, providerID string) (*User, error) {
	return m.findByProviderIDFn(ctx, providerID)
}

func (m *mockRepository) Update(ctx context.Context, user *User) error {
	return m.updateFn(ctx, user)
}

func (m *mockRepository) DeleteByProviderID(ctx context.Context, providerID string) (int64, error) {
	return m.deleteByProviderIDFn(ctx, providerID)
}

type mockJobRepository struct {
	findByCreatorFn func(ctx context.Context, creatorID uuid.UUID) ([]job.Job, error)
}

func (m *mockJobRepository) Create(ctx context.Context, j *job.Job) error { return nil }

func (m *mockJobRepository) FindByID(ctx context.Context, id uuid.UUID) (*job.Job, error) {
	return nil, common.ErrNotFound
}

func (m *mockJobRepository) FindByCreator(ctx context.Context, creatorID uuid.UUID) ([]job.Job, error) {
	return m.findByCreatorFn(ctx, creatorID)
}

func (m *mockJobRepository) Update(ctx context.Context, j *job.Job) error { return nil }

func (m *mockJobRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status job.JobStatus) error {
	return nil
}

func (m *mockJobRepository) Search(ctx context.Context, query job.JobSearchQuery) ([]job.Job, *common.Pagination, error) {
	return nil, nil, nil
}

func (m *mockJobRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]job.Job, error) {
	return nil, nil
}

func (m *mockJobRepository) IncrementApplicantCount(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	return nil
}

func (m *mockJobRepository) FindAllForSync(ctx context.Context, offset, limit int) ([]job.Job, error) {
	return nil, nil
}

func (m *mockJobRepository) DB() *gorm.DB { return nil }

func newTestService(repo Repository, jobRepo job.Repository) *ServiceImplementation {
	return NewService(repo, jobRepo, &config.Config{}, zap.NewNop())
}

func TestHandleUserCreated_CreatesNewUser(t *testing.T) {
	var created *User
	repo := &mockRepository{
		findByProviderIDFn: func(ctx context.Context, providerID string) (*User, error) {
			return nil, common.ErrNotFound.WithDetails("User not found.")
		},
		createFn: func(ctx context.Context, user *User) error {
			created = user
			return nil
		},
	}
	svc := newTestService(repo, &mockJobRepository{})

	usr, err := svc.HandleUserCreated(context.Background(), ProviderProfile{
		ProviderID: "prov_123",
		Email:      "New.User@Example.com",
		FirstName:  "New",
		LastName:   "User",
		ImageURL:   "https://img.example.com/a.png",
	})

	require.NoError(t, err)
	require.NotNil(t, created)
	assert.Equal(t, "prov_123", created.ProviderID)
	require.NotNil(t, created.Email)
	assert.Equal(t, "new.user@example.com", *created.Email, "emails are stored lowercased")
	assert.Equal(t, common.RoleUser, created.Role)
	assert.Equal(t, "https://img.example.com/a.png", created.ProviderMetadata["image_url"])
	assert.Equal(t, "prov_123", usr.ProviderID)
}

func TestHandleUserCreated_ReplayIsIdempotent(t *testing.T) {
	existingID := uuid.New()
	createCalls := 0
	updateCalls := 0
	repo := &mockRepository{
		findByProviderIDFn: func(ctx context.Context, providerID string) (*User, error) {
			return &User{
				BaseModel:  common.BaseModel{ID: existingID},
				ProviderID: providerID,
			}, nil
		},
		createFn: func(ctx context.Context, user *User) error {
			createCalls++
			return nil
		},
		updateFn: func(ctx context.Context, user *User) error {
			updateCalls++
			return nil
		},
	}
	svc := newTestService(repo, &mockJobRepository{})

	usr, err := svc.HandleUserCreated(context.Background(), ProviderProfile{
		ProviderID: "prov_123",
		Email:      "same@example.com",
	})

	require.NoError(t, err)
	assert.Equal(t, existingID, usr.ID, "the existing record is reused, never duplicated")
	assert.Equal(t, 0, createCalls)
	assert.Equal(t, 1, updateCalls)
}

func TestHandleUserUpdated_UpsertsUnknownProviderID(t *testing.T) {
	createCalls := 0
	repo := &mockRepository{
		findByProviderIDFn: func(ctx context.Context, providerID string) (*User, error) {
			return nil, common.ErrNotFound.WithDetails("User not found.")
		},
		createFn: func(ctx context.Context, user *User) error {
			createCalls++
			return nil
		},
	}
	svc := newTestService(repo, &mockJobRepository{})

	usr, err := svc.HandleUserUpdated(context.Background(), ProviderProfile{
		ProviderID: "prov_out_of_order",
		Email:      "late@example.com",
	})

	require.NoError(t, err)
	assert.Equal(t, 1, createCalls, "out-of-order update events create the record")
	assert.Equal(t, "prov_out_of_order", usr.ProviderID)
}

func TestHandleUserDeleted_UnknownProviderIDSucceeds(t *testing.T) {
	repo := &mockRepository{
		deleteByProviderIDFn: func(ctx context.Context, providerID string) (int64, error) {
			return 0, nil
		},
	}
	svc := newTestService(repo, &mockJobRepository{})

	err := svc.HandleUserDeleted(context.Background(), "prov_never_seen")
	assert.NoError(t, err)
}

func TestGetOrCreateUserFromProviderClaims(t *testing.T) {
	t.Run("creates on first sight", func(t *testing.T) {
		repo := &mockRepository{
			findByProviderIDFn: func(ctx context.Context, providerID string) (*User, error) {
				return nil, common.ErrNotFound.WithDetails("User not found.")
			},
			createFn: func(ctx context.Context, user *User) error {
				return nil
			},
		}
		svc := newTestService(repo, &mockJobRepository{})

		token := &firebaseauth.Token{
			UID: "prov_new",
			Claims: map[string]interface{}{
				"email":   "fresh@example.com",
				"name":    "Fresh New User",
				"picture": "https://img.example.com/p.png",
			},
		}
		usr, wasCreated, err := svc.GetOrCreateUserFromProviderClaims(context.Background(), token)

		require.NoError(t, err)
		assert.True(t, wasCreated)
		require.NotNil(t, usr.FirstName)
		assert.Equal(t, "Fresh", *usr.FirstName)
		require.NotNil(t, usr.LastName)
		assert.Equal(t, "New User", *usr.LastName)
	})

	t.Run("existing user updates last login", func(t *testing.T) {
		existingID := uuid.New()
		var updated *User
		repo := &mockRepository{
			findByProviderIDFn: func(ctx context.Context, providerID string) (*User, error) {
				return &User{
					BaseModel:  common.BaseModel{ID: existingID},
					ProviderID: providerID,
				}, nil
			},
			updateFn: func(ctx context.Context, user *User) error {
				updated = user
				return nil
			},
		}
		svc := newTestService(repo, &mockJobRepository{})

		usr, wasCreated, err := svc.GetOrCreateUserFromProviderClaims(context.Background(), &firebaseauth.Token{UID: "prov_known"})

		require.NoError(t, err)
		assert.False(t, wasCreated)
		assert.Equal(t, existingID, usr.ID)
		require.NotNil(t, updated)
		assert.NotNil(t, updated.LastLoginAt)
	})
}

func TestGetPublicProfile_StripsMetadataAndBucketsJobs(t *testing.T) {
	userID := uuid.New()
	email := "owner@example.com"
	repo := &mockRepository{
		findByIDFn: func(ctx context.Context, id uuid.UUID) (*User, error) {
			return &User{
				BaseModel:  common.BaseModel{ID: userID},
				ProviderID: "prov_owner",
				Email:      &email,
				ProviderMetadata: JSONMap{
					"image_url":      "https://img.example.com/owner.png",
					"phone_numbers":  []interface{}{"555-0100"},
					"external_token": "secret-opaque-value",
				},
			}, nil
		},
	}
	jobRepo := &mockJobRepository{
		findByCreatorFn: func(ctx context.Context, creatorID uuid.UUID) ([]job.Job, error) {
			return []job.Job{
				{BaseModel: common.BaseModel{ID: uuid.New()}, Title: "Active role", Status: job.StatusActive, CreatedByID: userID},
				{BaseModel: common.BaseModel{ID: uuid.New()}, Title: "Old role", Status: job.StatusExpired, CreatedByID: userID},
			}, nil
		},
	}
	svc := newTestService(repo, jobRepo)

	profile, err := svc.GetPublicProfile(context.Background(), userID)
	require.NoError(t, err)

	require.NotNil(t, profile.ImageURL)
	assert.Equal(t, "https://img.example.com/owner.png", *profile.ImageURL)
	require.Len(t, profile.Jobs.Active, 1)
	require.Len(t, profile.Jobs.Expired, 1)
	assert.Equal(t, "Active role", profile.Jobs.Active[0].Title)
	assert.Equal(t, "Old role", profile.Jobs.Expired[0].Title)

	// The serialized profile must never leak the raw provider metadata.
	raw, err := json.Marshal(profile)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "secret-opaque-value")
	assert.NotContains(t, string(raw), "phone_numbers")
}

func TestGetPublicProfile_EmptyJobBucketsSerializeAsArrays(t *testing.T) {
	userID := uuid.New()
	repo := &mockRepository{
		findByIDFn: func(ctx context.Context, id uuid.UUID) (*User, error) {
			return &User{BaseModel: common.BaseModel{ID: userID}, ProviderID: "prov_x"}, nil
		},
	}
	jobRepo := &mockJobRepository{
		findByCreatorFn: func(ctx context.Context, creatorID uuid.UUID) ([]job.Job, error) {
			return []job.Job{}, nil
		},
	}
	svc := newTestService(repo, jobRepo)

	profile, err := svc.GetPublicProfile(context.Background(), userID)
	require.NoError(t, err)

	raw, err := json.Marshal(profile)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"active":[]`)
	assert.Contains(t, string(raw), `"expired":[]`)
}
