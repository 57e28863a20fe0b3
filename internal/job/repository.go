package job

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"hireboard_backend/internal/common"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository defines the interface for job data operations.
type Repository interface {
	Create(ctx context.Context, job *Job) error
	FindByID(ctx context.Context, id uuid.UUID) (*Job, error)
	FindByCreator(ctx context.Context, creatorID uuid.UUID) ([]Job, error)
	Update(ctx context.Context, job *Job) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status JobStatus) error
	Search(ctx context.Context, query JobSearchQuery) ([]Job, *common.Pagination, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Job, error)
	IncrementApplicantCount(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
	FindAllForSync(ctx context.Context, offset, limit int) ([]Job, error)
	DB() *gorm.DB
}

type gormRepository struct {
	db *gorm.DB
}

// NewGORMRepository creates a new GORM job repository.
func NewGORMRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

// DB exposes the underlying handle so the application service can run a
// cross-repository transaction.
func (r *gormRepository) DB() *gorm.DB {
	return r.db
}

// Create inserts a new job record.
func (r *gormRepository) Create(ctx context.Context, job *Job) error {
	err := r.db.WithContext(ctx).Create(job).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), "unique constraint") {
			return common.ErrConflict.WithDetails("A job with this slug already exists.")
		}
		return fmt.Errorf("failed to create job: %w", err)
	}
	return nil
}

// FindByID retrieves a job by its ID.
func (r *gormRepository) FindByID(ctx context.Context, id uuid.UUID) (*Job, error) {
	var job Job
	err := r.db.WithContext(ctx).First(&job, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound.WithDetails("Job not found.")
		}
		return nil, err
	}
	return &job, nil
}

// FindByCreator retrieves all jobs owned by a user, newest first. An empty
// result is a valid answer, not an error.
func (r *gormRepository) FindByCreator(ctx context.Context, creatorID uuid.UUID) ([]Job, error) {
	var jobs []Job
	err := r.db.WithContext(ctx).
		Where("created_by_id = ?", creatorID).
		Order("posted_at DESC").
		Find(&jobs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch jobs for creator: %w", err)
	}
	return jobs, nil
}

// Update saves the full job record.
func (r *gormRepository) Update(ctx context.Context, job *Job) error {
	err := r.db.WithContext(ctx).Save(job).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), "unique constraint") {
			return common.ErrConflict.WithDetails("A job with this slug already exists.")
		}
		return fmt.Errorf("failed to update job: %w", err)
	}
	return nil
}

// UpdateStatus flips the status of a job.
func (r *gormRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status JobStatus) error {
	result := r.db.WithContext(ctx).Model(&Job{}).Where("id = ?", id).Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return common.ErrNotFound.WithDetails("Job not found.")
	}
	return nil
}

// Search retrieves jobs matching the query. This is the database fallback for
// the public search; Elasticsearch takes precedence when configured.
func (r *gormRepository) Search(ctx context.Context, queryParams JobSearchQuery) ([]Job, *common.Pagination, error) {
	var jobs []Job
	var totalItems int64

	dbQuery := r.db.WithContext(ctx).Model(&Job{})

	if queryParams.SearchTerm != "" {
		searchTerm := "%" + strings.ToLower(queryParams.SearchTerm) + "%"
		dbQuery = dbQuery.Where("LOWER(jobs.title) LIKE ? OR LOWER(jobs.description) LIKE ?", searchTerm, searchTerm)
	}
	if queryParams.Status != "" {
		dbQuery = dbQuery.Where("jobs.status = ?", queryParams.Status)
	} else {
		dbQuery = dbQuery.Where("jobs.status = ?", StatusActive)
	}

	if err := dbQuery.Count(&totalItems).Error; err != nil {
		return nil, nil, fmt.Errorf("failed to count jobs: %w", err)
	}

	pagination := common.NewPagination(totalItems, queryParams.Page, queryParams.PageSize)
	dbQuery = dbQuery.Order("jobs.posted_at DESC").
		Offset(queryParams.Offset()).
		Limit(queryParams.Limit())

	if err := dbQuery.Find(&jobs).Error; err != nil {
		return nil, nil, fmt.Errorf("failed to search jobs: %w", err)
	}

	return jobs, pagination, nil
}

// FindByIDs fetches the given jobs, preserving no particular order. Used to
// hydrate Elasticsearch hits from the source of truth.
func (r *gormRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Job, error) {
	var jobs []Job
	if len(ids) == 0 {
		return jobs, nil
	}
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&jobs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch jobs by IDs: %w", err)
	}
	return jobs, nil
}

// IncrementApplicantCount bumps the applicant counter within the supplied
// transaction so it commits or rolls back with the application insert.
func (r *gormRepository) IncrementApplicantCount(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	db := tx
	if db == nil {
		db = r.db
	}
	result := db.WithContext(ctx).Model(&Job{}).
		Where("id = ?", id).
		Update("applicant_count", gorm.Expr("applicant_count + 1"))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return common.ErrNotFound.WithDetails("Job not found.")
	}
	return nil
}

// FindAllForSync pages through all jobs for the bulk reindex command.
func (r *gormRepository) FindAllForSync(ctx context.Context, offset, limit int) ([]Job, error) {
	var jobs []Job
	err := r.db.WithContext(ctx).
		Order("created_at ASC").
		Offset(offset).
		Limit(limit).
		Find(&jobs).Error
	return jobs, err
}
