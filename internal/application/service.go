package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"hireboard_backend/internal/common"
	"hireboard_backend/internal/config"
	"hireboard_backend/internal/filestorage"
	"hireboard_backend/internal/job"
	"hireboard_backend/internal/shared"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ResumeStorage is the slice of the file storage service the application
// workflow needs.
type ResumeStorage interface {
	SaveResume(src io.Reader, originalFilename, subDir string) (string, error)
	DeleteFile(relativePath string) error
}

// Service defines the interface for application business logic. Ownership
// checks live here, not in the handlers.
type Service interface {
	// Apply records a submission for an active job: the resume is persisted,
	// then the application row and the job's applicant counter are written in
	// one transaction.
	Apply(ctx context.Context, jobID uuid.UUID, applicantID uuid.UUID, shortIntro, filename string, resume io.Reader) (*Application, error)
	// ListByJob returns a job's applications to its creator only.
	ListByJob(ctx context.Context, jobID uuid.UUID, requesterID uuid.UUID) ([]Application, error)
	// UpdateStatus moves an application along the configured status flow.
	UpdateStatus(ctx context.Context, appID uuid.UUID, requesterID uuid.UUID, newStatus ApplicationStatus) (*Application, error)
}

type service struct {
	repo        Repository
	jobRepo     job.Repository
	userService shared.Service
	storage     ResumeStorage
	cfg         *config.Config
	logger      *zap.Logger
}

var _ Service = (*service)(nil)

// NewService creates a new application service.
func NewService(
	repo Repository,
	jobRepo job.Repository,
	userService shared.Service,
	storage ResumeStorage,
	cfg *config.Config,
	logger *zap.Logger,
) Service {
	return &service{
		repo:        repo,
		jobRepo:     jobRepo,
		userService: userService,
		storage:     storage,
		cfg:         cfg,
		logger:      logger,
	}
}

func (s *service) Apply(ctx context.Context, jobID uuid.UUID, applicantID uuid.UUID, shortIntro, filename string, resume io.Reader) (*Application, error) {
	posting, err := s.jobRepo.FindByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if posting.Status != job.StatusActive {
		return nil, common.ErrConflict.WithDetails("This job is no longer accepting applications.")
	}

	applicant, err := s.userService.GetUserByID(ctx, applicantID)
	if err != nil {
		return nil, err
	}

	relativePath, err := s.storage.SaveResume(resume, filename, jobID.String())
	if err != nil {
		if errors.Is(err, filestorage.ErrUnsupportedFileType) {
			return nil, common.ErrBadRequest.WithDetails("Unsupported resume file type. Allowed: pdf, doc, docx, txt.")
		}
		s.logger.Error("Failed to store resume", zap.Error(err), zap.String("jobID", jobID.String()))
		return nil, fmt.Errorf("failed to store resume: %w", err)
	}

	now := time.Now()
	app := &Application{
		BaseModel: common.BaseModel{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		JobID:         jobID,
		OwnerID:       posting.CreatedByID,
		ApplicantID:   applicantID,
		ApplicantName: applicantDisplayName(applicant),
		ShortIntro:    strings.TrimSpace(shortIntro),
		ResumeURL:     path.Join(s.cfg.ResumePublicBaseURL, relativePath),
		Status:        StatusApplied,
	}
	if applicant.Email != nil {
		app.Email = *applicant.Email
	}

	err = s.jobRepo.DB().Transaction(func(tx *gorm.DB) error {
		if err := s.repo.Create(ctx, tx, app); err != nil {
			return err
		}
		return s.jobRepo.IncrementApplicantCount(ctx, tx, jobID)
	})
	if err != nil {
		s.logger.Error("Failed to record application", zap.Error(err), zap.String("jobID", jobID.String()))
		// The resume was written before the transaction; remove it so a failed
		// insert does not orphan the file.
		if delErr := s.storage.DeleteFile(relativePath); delErr != nil {
			s.logger.Error("Failed to remove resume after rollback",
				zap.String("path", relativePath),
				zap.Error(delErr),
			)
		}
		return nil, err
	}

	s.logger.Info("Application recorded",
		zap.String("applicationID", app.ID.String()),
		zap.String("jobID", jobID.String()),
		zap.String("applicantID", applicantID.String()),
	)
	return app, nil
}

func (s *service) ListByJob(ctx context.Context, jobID uuid.UUID, requesterID uuid.UUID) ([]Application, error) {
	posting, err := s.jobRepo.FindByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if posting.CreatedByID != requesterID {
		s.logger.Warn("User requested applications for a job they do not own",
			zap.String("jobID", jobID.String()),
			zap.String("userID", requesterID.String()),
		)
		return nil, common.ErrForbidden.WithDetails("You do not own this job posting.")
	}
	return s.repo.FindByJob(ctx, jobID)
}

func (s *service) UpdateStatus(ctx context.Context, appID uuid.UUID, requesterID uuid.UUID, newStatus ApplicationStatus) (*Application, error) {
	app, err := s.repo.FindByID(ctx, appID)
	if err != nil {
		return nil, err
	}
	if app.OwnerID != requesterID {
		return nil, common.ErrForbidden.WithDetails("Only the job's creator may update this application.")
	}
	if !s.cfg.TransitionAllowed(string(app.Status), string(newStatus)) {
		return nil, common.ErrUnprocessableEntity.WithDetails(
			fmt.Sprintf("Cannot move an application from %q to %q.", app.Status, newStatus))
	}

	if err := s.repo.UpdateStatus(ctx, appID, newStatus); err != nil {
		return nil, err
	}
	app.Status = newStatus
	app.UpdatedAt = time.Now()

	s.logger.Info("Application status updated",
		zap.String("applicationID", appID.String()),
		zap.String("status", string(newStatus)),
	)
	return app, nil
}

func applicantDisplayName(u *shared.User) string {
	var parts []string
	if u.FirstName != nil && *u.FirstName != "" {
		parts = append(parts, *u.FirstName)
	}
	if u.LastName != nil && *u.LastName != "" {
		parts = append(parts, *u.LastName)
	}
	if len(parts) == 0 && u.Email != nil {
		return *u.Email
	}
	return strings.Join(parts, " ")
}
