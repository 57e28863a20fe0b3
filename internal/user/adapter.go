package user

import (
	"hireboard_backend/internal/shared"
)

// DBToShared converts a GORM user.User model to a shared.User DTO. The raw
// provider metadata never crosses this boundary; only the extracted image URL
// does.
func DBToShared(dbUser *User) *shared.User {
	if dbUser == nil {
		return nil
	}
	return &shared.User{
		ID:          dbUser.ID,
		ProviderID:  dbUser.ProviderID,
		Email:       dbUser.Email,
		FirstName:   dbUser.FirstName,
		LastName:    dbUser.LastName,
		Role:        dbUser.Role,
		ImageURL:    dbUser.ImageURL(),
		CreatedAt:   dbUser.CreatedAt,
		UpdatedAt:   dbUser.UpdatedAt,
		LastLoginAt: dbUser.LastLoginAt,
	}
}
