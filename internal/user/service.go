package user

import (
	"context"
	"errors"
	"strings"
	"time"

	"hireboard_backend/internal/common"
	"hireboard_backend/internal/config"
	"hireboard_backend/internal/job"
	"hireboard_backend/internal/shared"

	firebaseauth "firebase.google.com/go/v4/auth"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service defines the full user business logic surface, a superset of
// shared.Service.
type Service interface {
	shared.Service
	HandleUserCreated(ctx context.Context, profile ProviderProfile) (*shared.User, error)
	HandleUserUpdated(ctx context.Context, profile ProviderProfile) (*shared.User, error)
	HandleUserDeleted(ctx context.Context, providerID string) error
	GetPublicProfile(ctx context.Context, id uuid.UUID) (*PublicProfile, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, req UpdateProfileRequest) (*shared.User, error)
}

// PublicProfile is the profile view exposed to anyone. It never carries the
// raw provider metadata, only the image URL extracted from it, and buckets
// the user's postings by liveness.
type PublicProfile struct {
	ID        uuid.UUID         `json:"id"`
	Email     *string           `json:"email,omitempty"`
	FirstName *string           `json:"first_name,omitempty"`
	LastName  *string           `json:"last_name,omitempty"`
	ImageURL  *string           `json:"image_url,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
	Jobs      PublicProfileJobs `json:"jobs"`
}

type PublicProfileJobs struct {
	Active  []job.JobResponse `json:"active"`
	Expired []job.JobResponse `json:"expired"`
}

// ServiceImplementation implements the user.Service interface.
type ServiceImplementation struct {
	repo    Repository
	jobRepo job.Repository
	cfg     *config.Config
	logger  *zap.Logger
}

var _ Service = (*ServiceImplementation)(nil)
var _ shared.Service = (*ServiceImplementation)(nil)

// NewService creates a new user service.
func NewService(
	repo Repository,
	jobRepo job.Repository,
	cfg *config.Config,
	logger *zap.Logger,
) *ServiceImplementation {
	return &ServiceImplementation{
		repo:    repo,
		jobRepo: jobRepo,
		cfg:     cfg,
		logger:  logger,
	}
}

func (s *ServiceImplementation) GetUserByID(ctx context.Context, id uuid.UUID) (*shared.User, error) {
	dbUser, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			s.logger.Info("User not found by ID", zap.String("userID", id.String()))
		} else {
			s.logger.Error("Error finding user by ID", zap.Error(err), zap.String("userID", id.String()))
		}
		return nil, err
	}
	return DBToShared(dbUser), nil
}

func (s *ServiceImplementation) GetUserByEmail(ctx context.Context, email string) (*shared.User, error) {
	dbUser, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			s.logger.Info("User not found by email", zap.String("email", email))
		} else {
			s.logger.Error("Error finding user by email", zap.Error(err), zap.String("email", email))
		}
		return nil, err
	}
	return DBToShared(dbUser), nil
}

func (s *ServiceImplementation) GetUserByProviderID(ctx context.Context, providerID string) (*shared.User, error) {
	dbUser, err := s.repo.FindByProviderID(ctx, providerID)
	if err != nil {
		return nil, err
	}
	return DBToShared(dbUser), nil
}

// GetOrCreateUserFromProviderClaims resolves a verified ID token to a local
// user, creating the record on first sight. Used by the auth middleware on
// every authenticated request.
func (s *ServiceImplementation) GetOrCreateUserFromProviderClaims(ctx context.Context, token *firebaseauth.Token) (*shared.User, bool, error) {
	dbUser, err := s.repo.FindByProviderID(ctx, token.UID)
	if err == nil {
		now := time.Now()
		dbUser.LastLoginAt = &now
		if updateErr := s.repo.Update(ctx, dbUser); updateErr != nil {
			// Login bookkeeping must not block the request.
			s.logger.Error("Failed to update last login time", zap.Error(updateErr), zap.String("userID", dbUser.ID.String()))
		}
		return DBToShared(dbUser), false, nil
	}
	if !errors.Is(err, common.ErrNotFound) {
		s.logger.Error("Error finding user by provider ID", zap.Error(err), zap.String("uid", token.UID))
		return nil, false, err
	}

	profile := profileFromClaims(token)
	created, err := s.createFromProfile(ctx, profile)
	if err != nil {
		return nil, false, err
	}
	return DBToShared(created), true, nil
}

// HandleUserCreated processes a user.created lifecycle event. Replays are
// idempotent: an existing record for the provider ID is updated, never
// duplicated.
func (s *ServiceImplementation) HandleUserCreated(ctx context.Context, profile ProviderProfile) (*shared.User, error) {
	existing, err := s.repo.FindByProviderID(ctx, profile.ProviderID)
	if err == nil {
		s.logger.Info("user.created replayed for known provider ID, treating as update",
			zap.String("providerID", profile.ProviderID),
			zap.String("userID", existing.ID.String()),
		)
		return s.applyProfile(ctx, existing, profile)
	}
	if !errors.Is(err, common.ErrNotFound) {
		return nil, err
	}

	created, err := s.createFromProfile(ctx, profile)
	if err != nil {
		return nil, err
	}
	s.logger.Info("User created from lifecycle event",
		zap.String("providerID", profile.ProviderID),
		zap.String("userID", created.ID.String()),
	)
	return DBToShared(created), nil
}

// HandleUserUpdated processes a user.updated lifecycle event. An unknown
// provider ID is upserted rather than rejected, since events can arrive out
// of order.
func (s *ServiceImplementation) HandleUserUpdated(ctx context.Context, profile ProviderProfile) (*shared.User, error) {
	existing, err := s.repo.FindByProviderID(ctx, profile.ProviderID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			created, createErr := s.createFromProfile(ctx, profile)
			if createErr != nil {
				return nil, createErr
			}
			return DBToShared(created), nil
		}
		return nil, err
	}
	return s.applyProfile(ctx, existing, profile)
}

// HandleUserDeleted processes a user.deleted lifecycle event. Deleting an
// unknown provider ID succeeds so replays stay idempotent.
func (s *ServiceImplementation) HandleUserDeleted(ctx context.Context, providerID string) error {
	rows, err := s.repo.DeleteByProviderID(ctx, providerID)
	if err != nil {
		s.logger.Error("Failed to delete user for lifecycle event", zap.Error(err), zap.String("providerID", providerID))
		return err
	}
	if rows == 0 {
		s.logger.Info("user.deleted for unknown provider ID, nothing to do", zap.String("providerID", providerID))
		return nil
	}
	s.logger.Info("User deleted from lifecycle event", zap.String("providerID", providerID))
	return nil
}

// GetPublicProfile returns the public view of a user: identity fields, the
// image URL from the provider metadata, and their postings bucketed into
// active and expired.
func (s *ServiceImplementation) GetPublicProfile(ctx context.Context, id uuid.UUID) (*PublicProfile, error) {
	dbUser, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	jobs, err := s.jobRepo.FindByCreator(ctx, id)
	if err != nil {
		s.logger.Error("Failed to load jobs for public profile", zap.Error(err), zap.String("userID", id.String()))
		return nil, err
	}

	profile := &PublicProfile{
		ID:        dbUser.ID,
		Email:     dbUser.Email,
		FirstName: dbUser.FirstName,
		LastName:  dbUser.LastName,
		ImageURL:  dbUser.ImageURL(),
		CreatedAt: dbUser.CreatedAt,
		Jobs: PublicProfileJobs{
			Active:  make([]job.JobResponse, 0),
			Expired: make([]job.JobResponse, 0),
		},
	}

	for i := range jobs {
		resp := job.ToJobResponse(&jobs[i], false)
		if jobs[i].Status == job.StatusExpired {
			profile.Jobs.Expired = append(profile.Jobs.Expired, resp)
		} else {
			profile.Jobs.Active = append(profile.Jobs.Active, resp)
		}
	}

	return profile, nil
}

// UpdateProfile applies a partial update to the user's own record.
func (s *ServiceImplementation) UpdateProfile(ctx context.Context, id uuid.UUID, req UpdateProfileRequest) (*shared.User, error) {
	dbUser, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.FirstName != nil {
		dbUser.FirstName = req.FirstName
	}
	if req.LastName != nil {
		dbUser.LastName = req.LastName
	}
	if req.ImageURL != nil {
		if dbUser.ProviderMetadata == nil {
			dbUser.ProviderMetadata = JSONMap{}
		}
		dbUser.ProviderMetadata["image_url"] = *req.ImageURL
	}
	dbUser.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, dbUser); err != nil {
		s.logger.Error("Failed to update user profile", zap.Error(err), zap.String("userID", id.String()))
		return nil, err
	}
	return DBToShared(dbUser), nil
}

// createFromProfile builds and persists a new user record from provider data.
func (s *ServiceImplementation) createFromProfile(ctx context.Context, profile ProviderProfile) (*User, error) {
	now := time.Now()
	dbUser := &User{
		BaseModel: common.BaseModel{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		ProviderID:       profile.ProviderID,
		Role:             common.RoleUser,
		ProviderMetadata: metadataFromProfile(profile),
	}
	setOptionalString(&dbUser.Email, profile.Email, true)
	setOptionalString(&dbUser.FirstName, profile.FirstName, false)
	setOptionalString(&dbUser.LastName, profile.LastName, false)

	if err := s.repo.Create(ctx, dbUser); err != nil {
		s.logger.Error("Failed to create user from provider profile", zap.Error(err), zap.String("providerID", profile.ProviderID))
		if apiErr, ok := common.IsAPIError(err); ok {
			return nil, apiErr
		}
		return nil, err
	}
	return dbUser, nil
}

// applyProfile updates an existing record with fresh provider data.
func (s *ServiceImplementation) applyProfile(ctx context.Context, dbUser *User, profile ProviderProfile) (*shared.User, error) {
	setOptionalString(&dbUser.Email, profile.Email, true)
	setOptionalString(&dbUser.FirstName, profile.FirstName, false)
	setOptionalString(&dbUser.LastName, profile.LastName, false)
	if md := metadataFromProfile(profile); md != nil {
		dbUser.ProviderMetadata = md
	}
	dbUser.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, dbUser); err != nil {
		s.logger.Error("Failed to apply provider profile", zap.Error(err), zap.String("userID", dbUser.ID.String()))
		return nil, err
	}
	return DBToShared(dbUser), nil
}

func metadataFromProfile(profile ProviderProfile) JSONMap {
	md := JSONMap{}
	for k, v := range profile.Metadata {
		md[k] = v
	}
	if profile.ImageURL != "" {
		md["image_url"] = profile.ImageURL
	}
	if len(md) == 0 {
		return nil
	}
	return md
}

func setOptionalString(dst **string, value string, lower bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return
	}
	if lower {
		value = strings.ToLower(value)
	}
	*dst = &value
}

// profileFromClaims extracts profile fields from a verified ID token.
func profileFromClaims(token *firebaseauth.Token) ProviderProfile {
	profile := ProviderProfile{ProviderID: token.UID}
	if v, ok := token.Claims["email"].(string); ok {
		profile.Email = v
	}
	if v, ok := token.Claims["picture"].(string); ok {
		profile.ImageURL = v
	}
	if name, ok := token.Claims["name"].(string); ok && name != "" {
		parts := strings.Fields(name)
		profile.FirstName = parts[0]
		if len(parts) > 1 {
			profile.LastName = strings.Join(parts[1:], " ")
		}
	}
	return profile
}
