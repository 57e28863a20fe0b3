package job

import (
	"encoding/json"
	"fmt"
	"time"

	"hireboard_backend/internal/common"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type JobStatus string

const (
	StatusActive  JobStatus = "active"
	StatusExpired JobStatus = "expired"
)

// Job represents a job posting. Postings are never hard-deleted; expiry flips
// the status and keeps the record (and its applications) around.
type Job struct {
	common.BaseModel
	Title          string         `gorm:"type:varchar(255);not null"`
	Slug           string         `gorm:"type:varchar(300);not null;uniqueIndex"`
	Description    string         `gorm:"type:text;not null"`
	MinPay         *float64       `gorm:"type:numeric(12,2)"`
	MaxPay         *float64       `gorm:"type:numeric(12,2)"`
	Requirements   pq.StringArray `gorm:"type:text[]"`
	Status         JobStatus      `gorm:"type:varchar(50);not null;default:'active'"`
	CreatedByID    uuid.UUID      `gorm:"type:uuid;not null;index"`
	CreatorName    string         `gorm:"type:varchar(200)"`
	CreatorEmail   string         `gorm:"type:varchar(255)"`
	ApplicantCount int            `gorm:"not null;default:0"`
	PostedAt       time.Time      `gorm:"not null"`
}

func (Job) TableName() string {
	return "jobs"
}

// SearchDoc renders the job as its Elasticsearch document.
func (j *Job) SearchDoc() (string, error) {
	doc := map[string]interface{}{
		"title":        j.Title,
		"slug":         j.Slug,
		"description":  j.Description,
		"requirements": []string(j.Requirements),
		"status":       string(j.Status),
		"creator_id":   j.CreatedByID.String(),
		"creator_name": j.CreatorName,
		"applicants":   j.ApplicantCount,
		"posted_at":    j.PostedAt,
		"created_at":   j.CreatedAt,
		"updated_at":   j.UpdatedAt,
	}
	if j.MinPay != nil {
		doc["min_pay"] = *j.MinPay
	}
	if j.MaxPay != nil {
		doc["max_pay"] = *j.MaxPay
	}

	docBytes, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("error marshalling job to JSON for ES: %w", err)
	}
	return string(docBytes), nil
}

// --- DTOs for API ---

type CreateJobRequest struct {
	Title        string   `json:"title" binding:"required,min=3,max=255"`
	Description  string   `json:"description" binding:"required,min=10"`
	MinPay       *float64 `json:"min_pay,omitempty" binding:"omitempty,gte=0"`
	MaxPay       *float64 `json:"max_pay,omitempty" binding:"omitempty,gte=0,gtefield=MinPay"`
	Requirements []string `json:"requirements,omitempty" binding:"omitempty,dive,max=100"`
}

type UpdateJobRequest struct {
	Title        *string  `json:"title,omitempty" binding:"omitempty,min=3,max=255"`
	Description  *string  `json:"description,omitempty" binding:"omitempty,min=10"`
	MinPay       *float64 `json:"min_pay,omitempty" binding:"omitempty,gte=0"`
	MaxPay       *float64 `json:"max_pay,omitempty" binding:"omitempty,gte=0"`
	Requirements []string `json:"requirements,omitempty" binding:"omitempty,dive,max=100"`
}

type JobResponse struct {
	ID             uuid.UUID `json:"id"`
	Title          string    `json:"title"`
	Slug           string    `json:"slug"`
	Description    string    `json:"description"`
	MinPay         *float64  `json:"min_pay,omitempty"`
	MaxPay         *float64  `json:"max_pay,omitempty"`
	Requirements   []string  `json:"requirements"`
	Status         JobStatus `json:"status"`
	CreatedByID    uuid.UUID `json:"created_by_id"`
	CreatorName    string    `json:"creator_name"`
	CreatorEmail   string    `json:"creator_email,omitempty"`
	ApplicantCount int       `json:"applicant_count"`
	PostedAt       time.Time `json:"posted_at"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// ToJobResponse converts a Job model to its API representation. The creator's
// email is only included for the owner's own view.
func ToJobResponse(j *Job, includeCreatorEmail bool) JobResponse {
	resp := JobResponse{
		ID:             j.ID,
		Title:          j.Title,
		Slug:           j.Slug,
		Description:    j.Description,
		MinPay:         j.MinPay,
		MaxPay:         j.MaxPay,
		Requirements:   append([]string{}, j.Requirements...),
		Status:         j.Status,
		CreatedByID:    j.CreatedByID,
		CreatorName:    j.CreatorName,
		ApplicantCount: j.ApplicantCount,
		PostedAt:       j.PostedAt,
		CreatedAt:      j.CreatedAt,
		UpdatedAt:      j.UpdatedAt,
	}
	if includeCreatorEmail {
		resp.CreatorEmail = j.CreatorEmail
	}
	return resp
}

// ToJobResponses converts a slice of jobs, never returning nil so empty
// results serialize as [].
func ToJobResponses(jobs []Job, includeCreatorEmail bool) []JobResponse {
	responses := make([]JobResponse, 0, len(jobs))
	for i := range jobs {
		responses = append(responses, ToJobResponse(&jobs[i], includeCreatorEmail))
	}
	return responses
}

type JobSearchQuery struct {
	common.PaginationQuery
	SearchTerm string `form:"q"`
	Status     string `form:"status" binding:"omitempty,oneof=active expired"`
}
