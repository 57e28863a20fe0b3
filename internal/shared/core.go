package shared

import (
	"context"
	"time"

	firebaseauth "firebase.google.com/go/v4/auth"
	"github.com/google/uuid"
)

// User represents a user in the system, decoupled from the GORM model so the
// middleware does not import the user package.
type User struct {
	ID          uuid.UUID
	ProviderID  string
	Email       *string
	FirstName   *string
	LastName    *string
	Role        string
	ImageURL    *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	LastLoginAt *time.Time
}

// Service defines the interface for user-related business logic needed
// outside the user package.
type Service interface {
	GetUserByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	GetOrCreateUserFromProviderClaims(ctx context.Context, token *firebaseauth.Token) (usr *User, wasCreated bool, err error)
	GetUserByProviderID(ctx context.Context, providerID string) (*User, error)
}
