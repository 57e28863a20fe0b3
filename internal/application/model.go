package application

import (
	"time"

	"hireboard_backend/internal/common"

	"github.com/google/uuid"
)

// ApplicationStatus represents the review state of an application.
type ApplicationStatus string

const (
	StatusApplied     ApplicationStatus = "applied"
	StatusShortlisted ApplicationStatus = "shortlisted"
	StatusRejected    ApplicationStatus = "rejected"
)

// Application records one candidate's submission for a job. Applications are
// never deleted, only transitioned between statuses by the job owner.
type Application struct {
	common.BaseModel
	JobID         uuid.UUID         `gorm:"type:uuid;not null;index" json:"job_id"`
	OwnerID       uuid.UUID         `gorm:"type:uuid;not null;index" json:"owner_id"`
	ApplicantID   uuid.UUID         `gorm:"type:uuid;not null;index" json:"applicant_id"`
	ApplicantName string            `gorm:"type:varchar(255);not null" json:"applicant_name"`
	Email         string            `gorm:"type:varchar(255);not null" json:"email"`
	ShortIntro    string            `gorm:"type:text" json:"short_intro"`
	ResumeURL     string            `gorm:"type:varchar(2048);not null" json:"resume_url"`
	Status        ApplicationStatus `gorm:"type:varchar(20);not null;default:'applied';index" json:"status"`
}

// TableName specifies the table name for the Application model.
func (Application) TableName() string {
	return "applications"
}

// UpdateStatusRequest is the payload for a status transition.
type UpdateStatusRequest struct {
	Status ApplicationStatus `json:"status" binding:"required,oneof=applied shortlisted rejected"`
}

// ApplicationResponse is the API representation of an application.
type ApplicationResponse struct {
	ID            uuid.UUID         `json:"id"`
	JobID         uuid.UUID         `json:"job_id"`
	ApplicantName string            `json:"applicant_name"`
	Email         string            `json:"email"`
	ShortIntro    string            `json:"short_intro,omitempty"`
	ResumeURL     string            `json:"resume_url"`
	Status        ApplicationStatus `json:"status"`
	CreatedAt     time.Time         `json:"created_at"`
}

// ToApplicationResponse maps an Application to its API representation.
func ToApplicationResponse(a *Application) ApplicationResponse {
	return ApplicationResponse{
		ID:            a.ID,
		JobID:         a.JobID,
		ApplicantName: a.ApplicantName,
		Email:         a.Email,
		ShortIntro:    a.ShortIntro,
		ResumeURL:     a.ResumeURL,
		Status:        a.Status,
		CreatedAt:     a.CreatedAt,
	}
}

// ToApplicationResponses maps a slice of applications. Always returns a
// non-nil slice so empty lists serialize as [].
func ToApplicationResponses(apps []Application) []ApplicationResponse {
	responses := make([]ApplicationResponse, 0, len(apps))
	for i := range apps {
		responses = append(responses, ToApplicationResponse(&apps[i]))
	}
	return responses
}
