package user

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"hireboard_backend/internal/common"
)

// JSONMap stores an opaque JSON object in a jsonb column. Used for the raw
// profile metadata delivered by the identity provider.
type JSONMap map[string]interface{}

// Value implements the driver.Valuer interface for JSONMap.
func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	return json.Marshal(m)
}

// Scan implements the sql.Scanner interface for JSONMap.
func (m *JSONMap) Scan(value interface{}) error {
	if value == nil {
		*m = nil
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return errors.New("failed to scan JSONMap: invalid type")
	}
	return json.Unmarshal(data, m)
}

// User represents the user model in the database. Records are keyed on the
// identity provider's ID for webhook upserts.
type User struct {
	common.BaseModel
	ProviderID       string  `gorm:"type:varchar(255);not null;uniqueIndex"`
	Email            *string `gorm:"type:varchar(255);uniqueIndex"`
	FirstName        *string `gorm:"type:varchar(100)"`
	LastName         *string `gorm:"type:varchar(100)"`
	Role             string  `gorm:"type:varchar(50);not null;default:'user'"`
	ProviderMetadata JSONMap `gorm:"type:jsonb"`
	LastLoginAt      *time.Time
}

// TableName specifies the table name for the User model.
func (User) TableName() string {
	return "users"
}

// ImageURL extracts the profile image URL from the provider metadata, if any.
func (u *User) ImageURL() *string {
	if u.ProviderMetadata == nil {
		return nil
	}
	if v, ok := u.ProviderMetadata["image_url"].(string); ok && v != "" {
		return &v
	}
	return nil
}

// ProviderProfile carries the identity fields extracted from a provider
// lifecycle event or token, already validated at the boundary.
type ProviderProfile struct {
	ProviderID string
	Email      string
	FirstName  string
	LastName   string
	ImageURL   string
	Metadata   map[string]interface{}
}

// UpdateProfileRequest defines the partial profile update a user may apply to
// their own record.
type UpdateProfileRequest struct {
	FirstName *string `json:"first_name,omitempty" binding:"omitempty,max=100"`
	LastName  *string `json:"last_name,omitempty" binding:"omitempty,max=100"`
	ImageURL  *string `json:"image_url,omitempty" binding:"omitempty,max=2048"`
}
