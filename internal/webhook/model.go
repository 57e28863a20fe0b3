package webhook

import (
	"hireboard_backend/internal/user"
)

// Supported identity provider lifecycle event types.
const (
	EventUserCreated = "user.created"
	EventUserUpdated = "user.updated"
	EventUserDeleted = "user.deleted"
)

// IdentityEvent is the lifecycle payload delivered by the identity provider.
// The schema is validated at this boundary before any field is used.
type IdentityEvent struct {
	Type string    `json:"type" binding:"required,oneof=user.created user.updated user.deleted"`
	Data EventData `json:"data" binding:"required"`
}

// EventData carries the subject of the event. Only the provider ID is
// mandatory; user.deleted events carry nothing else.
type EventData struct {
	ID             string         `json:"id" binding:"required"`
	EmailAddresses []EmailAddress `json:"email_addresses" binding:"omitempty,dive"`
	FirstName      string         `json:"first_name" binding:"omitempty,max=100"`
	LastName       string         `json:"last_name" binding:"omitempty,max=100"`
	ImageURL       string         `json:"image_url" binding:"omitempty,max=2048"`
	CreatedAt      int64          `json:"created_at"`
}

// EmailAddress mirrors the provider's nested email object.
type EmailAddress struct {
	EmailAddress string `json:"email_address" binding:"required,email"`
}

// ToProviderProfile converts validated event data into the user package's
// provider profile.
func (d *EventData) ToProviderProfile() user.ProviderProfile {
	profile := user.ProviderProfile{
		ProviderID: d.ID,
		FirstName:  d.FirstName,
		LastName:   d.LastName,
		ImageURL:   d.ImageURL,
	}
	if len(d.EmailAddresses) > 0 {
		profile.Email = d.EmailAddresses[0].EmailAddress
	}
	return profile
}
