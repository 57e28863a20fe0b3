package application

import (
	"context"
	"errors"
	"fmt"

	"hireboard_backend/internal/common"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository defines the interface for application data operations.
type Repository interface {
	// Create inserts the application. When tx is non-nil the insert joins
	// that transaction.
	Create(ctx context.Context, tx *gorm.DB, app *Application) error
	FindByID(ctx context.Context, id uuid.UUID) (*Application, error)
	FindByJob(ctx context.Context, jobID uuid.UUID) ([]Application, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status ApplicationStatus) error
}

type gormRepository struct {
	db *gorm.DB
}

// NewGORMRepository creates a new GORM application repository.
func NewGORMRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) Create(ctx context.Context, tx *gorm.DB, app *Application) error {
	db := tx
	if db == nil {
		db = r.db
	}
	if err := db.WithContext(ctx).Create(app).Error; err != nil {
		return fmt.Errorf("failed to create application: %w", err)
	}
	return nil
}

func (r *gormRepository) FindByID(ctx context.Context, id uuid.UUID) (*Application, error) {
	var app Application
	err := r.db.WithContext(ctx).First(&app, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound.WithDetails("Application not found.")
		}
		return nil, err
	}
	return &app, nil
}

// FindByJob returns every application tied to a job, newest first. An empty
// result is a valid answer, not an error.
func (r *gormRepository) FindByJob(ctx context.Context, jobID uuid.UUID) ([]Application, error) {
	var apps []Application
	err := r.db.WithContext(ctx).
		Where("job_id = ?", jobID).
		Order("created_at DESC").
		Find(&apps).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch applications for job: %w", err)
	}
	return apps, nil
}

func (r *gormRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status ApplicationStatus) error {
	result := r.db.WithContext(ctx).Model(&Application{}).Where("id = ?", id).Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return common.ErrNotFound.WithDetails("Application not found.")
	}
	return nil
}
