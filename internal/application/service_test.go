package application

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"hireboard_backend/internal/common"
	"hireboard_backend/internal/config"
	"hireboard_backend/internal/filestorage"
	"hireboard_backend/internal/job"
	"hireboard_backend/internal/shared"

	firebaseauth "firebase.google.com/go/v4/auth"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type mockRepository struct {
	createFn       func(ctx context.Context, tx *gorm.DB, app *Application) error
	findByIDFn     func(ctx context.Context, id uuid.UUID) (*Application, error)
	findByJobFn    func(ctx context.Context, jobID uuid.UUID) ([]Application, error)
	updateStatusFn func(ctx context.Context, id uuid.UUID, status ApplicationStatus) error
}

func (m *mockRepository) Create(ctx context.Context, tx *gorm.DB, app *Application) error {
	return m.createFn(ctx, tx, app)
}

func (m *mockRepository) FindByID(ctx context.Context, id uuid.UUID) (*Application, error) {
	return m.findByIDFn(ctx, id)
}

func (m *mockRepository) FindByJob(ctx context.Context, jobID uuid.UUID) ([]Application, error) {
	return m.findByJobFn(ctx, jobID)
}

func (m *mockRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status ApplicationStatus) error {
	return m.updateStatusFn(ctx, id, status)
}

type mockJobRepository struct {
	db             *gorm.DB
	findByIDFn     func(ctx context.Context, id uuid.UUID) (*job.Job, error)
	incrementCalls int
	incrementFn    func(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
}

func (m *mockJobRepository) Create(ctx context.Context, j *job.Job) error { return nil }

func (m *mockJobRepository) FindByID(ctx context.Context, id uuid.UUID) (*job.Job, error) {
	return m.findByIDFn(ctx, id)
}

func (m *mockJobRepository) FindByCreator(ctx context.Context, creatorID uuid.UUID) ([]job.Job, error) {
	return nil, nil
}

func (m *mockJobRepository) Update(ctx context.Context, j *job.Job) error { return nil }

func (m *mockJobRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status job.JobStatus) error {
	return nil
}

func (m *mockJobRepository) Search(ctx context.Context, query job.JobSearchQuery) ([]job.Job, *common.Pagination, error) {
	return nil, nil, nil
}

func (m *mockJobRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]job.Job, error) {
	return nil, nil
}

func (m *mockJobRepository) IncrementApplicantCount(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	m.incrementCalls++
	if m.incrementFn != nil {
		return m.incrementFn(ctx, tx, id)
	}
	return nil
}

func (m *mockJobRepository) FindAllForSync(ctx context.Context, offset, limit int) ([]job.Job, error) {
	return nil, nil
}

func (m *mockJobRepository) DB() *gorm.DB { return m.db }

type mockUserService struct {
	getUserByIDFn func(ctx context.Context, id uuid.UUID) (*shared.User, error)
}

func (m *mockUserService) GetUserByID(ctx context.Context, id uuid.UUID) (*shared.User, error) {
	return m.getUserByIDFn(ctx, id)
}

func (m *mockUserService) GetUserByEmail(ctx context.Context, email string) (*shared.User, error) {
	return nil, common.ErrNotFound
}

func (m *mockUserService) GetOrCreateUserFromProviderClaims(ctx context.Context, token *firebaseauth.Token) (*shared.User, bool, error) {
	return nil, false, common.ErrNotFound
}

func (m *mockUserService) GetUserByProviderID(ctx context.Context, providerID string) (*shared.User, error) {
	return nil, common.ErrNotFound
}

type mockStorage struct {
	saveFn       func(src io.Reader, originalFilename, subDir string) (string, error)
	deletedPaths []string
}

func (m *mockStorage) SaveResume(src io.Reader, originalFilename, subDir string) (string, error) {
	return m.saveFn(src, originalFilename, subDir)
}

func (m *mockStorage) DeleteFile(relativePath string) error {
	m.deletedPaths = append(m.deletedPaths, relativePath)
	return nil
}

func strPtr(s string) *string { return &s }

func testConfig(t *testing.T) *config.Config {
	transitions, err := config.ParseStatusFlow("applied>shortlisted,applied>rejected")
	require.NoError(t, err)
	return &config.Config{
		ResumePublicBaseURL: "/resumes",
		StatusTransitions:   transitions,
	}
}

func testDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return db
}

func activeJob(jobID, ownerID uuid.UUID) *job.Job {
	return &job.Job{
		BaseModel:   common.BaseModel{ID: jobID},
		Title:       "Backend Engineer",
		Status:      job.StatusActive,
		CreatedByID: ownerID,
	}
}

func TestApply_RecordsApplicationAndIncrementsCounter(t *testing.T) {
	jobID := uuid.New()
	ownerID := uuid.New()
	applicantID := uuid.New()

	jobRepo := &mockJobRepository{
		db: testDB(t),
		findByIDFn: func(ctx context.Context, id uuid.UUID) (*job.Job, error) {
			return activeJob(jobID, ownerID), nil
		},
	}
	var created *Application
	repo := &mockRepository{
		createFn: func(ctx context.Context, tx *gorm.DB, app *Application) error {
			require.NotNil(t, tx, "the insert must run inside the transaction")
			created = app
			return nil
		},
	}
	userSvc := &mockUserService{
		getUserByIDFn: func(ctx context.Context, id uuid.UUID) (*shared.User, error) {
			return &shared.User{
				ID:        applicantID,
				FirstName: strPtr("Grace"),
				LastName:  strPtr("Hopper"),
				Email:     strPtr("grace@example.com"),
			}, nil
		},
	}
	storage := &mockStorage{
		saveFn: func(src io.Reader, originalFilename, subDir string) (string, error) {
			assert.Equal(t, jobID.String(), subDir)
			return subDir + "/generated.pdf", nil
		},
	}

	svc := NewService(repo, jobRepo, userSvc, storage, testConfig(t), zap.NewNop())
	app, err := svc.Apply(context.Background(), jobID, applicantID, "  Hi there  ", "resume.pdf", strings.NewReader("resume"))

	require.NoError(t, err)
	require.NotNil(t, created)
	assert.Equal(t, jobID, app.JobID)
	assert.Equal(t, ownerID, app.OwnerID)
	assert.Equal(t, applicantID, app.ApplicantID)
	assert.Equal(t, "Grace Hopper", app.ApplicantName)
	assert.Equal(t, "grace@example.com", app.Email)
	assert.Equal(t, "Hi there", app.ShortIntro)
	assert.Equal(t, "/resumes/"+jobID.String()+"/generated.pdf", app.ResumeURL)
	assert.Equal(t, StatusApplied, app.Status)
	assert.Equal(t, 1, jobRepo.incrementCalls)
}

func TestApply_FailedTransactionRemovesStoredResume(t *testing.T) {
	jobID := uuid.New()
	ownerID := uuid.New()
	applicantID := uuid.New()

	storageRoot := t.TempDir()
	store, err := filestorage.NewFileStorageService(storageRoot, zap.NewNop())
	require.NoError(t, err)

	jobRepo := &mockJobRepository{
		db: testDB(t),
		findByIDFn: func(ctx context.Context, id uuid.UUID) (*job.Job, error) {
			return activeJob(jobID, ownerID), nil
		},
	}
	repo := &mockRepository{
		createFn: func(ctx context.Context, tx *gorm.DB, app *Application) error {
			return fmt.Errorf("insert failed")
		},
	}
	userSvc := &mockUserService{
		getUserByIDFn: func(ctx context.Context, id uuid.UUID) (*shared.User, error) {
			return &shared.User{ID: applicantID, Email: strPtr("a@example.com")}, nil
		},
	}

	svc := NewService(repo, jobRepo, userSvc, store, testConfig(t), zap.NewNop())
	_, err = svc.Apply(context.Background(), jobID, applicantID, "", "resume.pdf", strings.NewReader("resume"))
	require.Error(t, err)

	// The resume written before the transaction must not survive the rollback.
	leftovers, err := filepath.Glob(filepath.Join(storageRoot, jobID.String(), "*"))
	require.NoError(t, err)
	assert.Empty(t, leftovers, "resume file left on disk after a failed insert")
}

func TestApply_TransactionErrorReportsDeletedPath(t *testing.T) {
	jobID := uuid.New()
	applicantID := uuid.New()

	jobRepo := &mockJobRepository{
		db: testDB(t),
		findByIDFn: func(ctx context.Context, id uuid.UUID) (*job.Job, error) {
			return activeJob(jobID, uuid.New()), nil
		},
	}
	repo := &mockRepository{
		createFn: func(ctx context.Context, tx *gorm.DB, app *Application) error {
			return fmt.Errorf("insert failed")
		},
	}
	userSvc := &mockUserService{
		getUserByIDFn: func(ctx context.Context, id uuid.UUID) (*shared.User, error) {
			return &shared.User{ID: applicantID, Email: strPtr("a@example.com")}, nil
		},
	}
	storage := &mockStorage{
		saveFn: func(src io.Reader, originalFilename, subDir string) (string, error) {
			return subDir + "/generated.pdf", nil
		},
	}

	svc := NewService(repo, jobRepo, userSvc, storage, testConfig(t), zap.NewNop())
	_, err := svc.Apply(context.Background(), jobID, applicantID, "", "resume.pdf", strings.NewReader("x"))

	require.Error(t, err)
	assert.Equal(t, []string{jobID.String() + "/generated.pdf"}, storage.deletedPaths)
}

func TestApply_MissingJobNotFound(t *testing.T) {
	jobRepo := &mockJobRepository{
		findByIDFn: func(ctx context.Context, id uuid.UUID) (*job.Job, error) {
			return nil, common.ErrNotFound.WithDetails("Job not found.")
		},
	}
	storage := &mockStorage{
		saveFn: func(src io.Reader, originalFilename, subDir string) (string, error) {
			t.Fatal("storage must not be reached when the job does not exist")
			return "", nil
		},
	}

	svc := NewService(&mockRepository{}, jobRepo, &mockUserService{}, storage, testConfig(t), zap.NewNop())
	_, err := svc.Apply(context.Background(), uuid.New(), uuid.New(), "", "resume.pdf", strings.NewReader("x"))

	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrNotFound)
	assert.Equal(t, 0, jobRepo.incrementCalls)
}

func TestApply_ExpiredJobRejected(t *testing.T) {
	jobID := uuid.New()
	jobRepo := &mockJobRepository{
		findByIDFn: func(ctx context.Context, id uuid.UUID) (*job.Job, error) {
			j := activeJob(jobID, uuid.New())
			j.Status = job.StatusExpired
			return j, nil
		},
	}

	svc := NewService(&mockRepository{}, jobRepo, &mockUserService{}, &mockStorage{}, testConfig(t), zap.NewNop())
	_, err := svc.Apply(context.Background(), jobID, uuid.New(), "", "resume.pdf", strings.NewReader("x"))

	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrConflict)
	assert.Equal(t, 0, jobRepo.incrementCalls)
}

func TestApply_UnsupportedResumeType(t *testing.T) {
	jobID := uuid.New()
	applicantID := uuid.New()
	jobRepo := &mockJobRepository{
		findByIDFn: func(ctx context.Context, id uuid.UUID) (*job.Job, error) {
			return activeJob(jobID, uuid.New()), nil
		},
	}
	userSvc := &mockUserService{
		getUserByIDFn: func(ctx context.Context, id uuid.UUID) (*shared.User, error) {
			return &shared.User{ID: applicantID, Email: strPtr("a@example.com")}, nil
		},
	}
	storage := &mockStorage{
		saveFn: func(src io.Reader, originalFilename, subDir string) (string, error) {
			return "", fmt.Errorf("%w: %q", filestorage.ErrUnsupportedFileType, ".exe")
		},
	}

	svc := NewService(&mockRepository{}, jobRepo, userSvc, storage, testConfig(t), zap.NewNop())
	_, err := svc.Apply(context.Background(), jobID, applicantID, "", "resume.exe", strings.NewReader("x"))

	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrBadRequest)
}

func TestApplyThenListAsOwner_ApplicationAppearsOnce(t *testing.T) {
	jobID := uuid.New()
	ownerID := uuid.New()
	applicantID := uuid.New()

	var stored []Application
	repo := &mockRepository{
		createFn: func(ctx context.Context, tx *gorm.DB, app *Application) error {
			stored = append(stored, *app)
			return nil
		},
		findByJobFn: func(ctx context.Context, id uuid.UUID) ([]Application, error) {
			var out []Application
			for _, a := range stored {
				if a.JobID == id {
					out = append(out, a)
				}
			}
			return out, nil
		},
	}
	jobRepo := &mockJobRepository{
		db: testDB(t),
		findByIDFn: func(ctx context.Context, id uuid.UUID) (*job.Job, error) {
			return activeJob(jobID, ownerID), nil
		},
	}
	userSvc := &mockUserService{
		getUserByIDFn: func(ctx context.Context, id uuid.UUID) (*shared.User, error) {
			return &shared.User{ID: applicantID, FirstName: strPtr("Grace"), Email: strPtr("grace@example.com")}, nil
		},
	}
	storage := &mockStorage{
		saveFn: func(src io.Reader, originalFilename, subDir string) (string, error) {
			return subDir + "/generated.pdf", nil
		},
	}

	svc := NewService(repo, jobRepo, userSvc, storage, testConfig(t), zap.NewNop())

	submitted, err := svc.Apply(context.Background(), jobID, applicantID, "Hi", "resume.pdf", strings.NewReader("resume"))
	require.NoError(t, err)

	apps, err := svc.ListByJob(context.Background(), jobID, ownerID)
	require.NoError(t, err)
	require.Len(t, apps, 1, "the submitted application must appear exactly once")
	assert.Equal(t, submitted.ID, apps[0].ID)
	assert.Equal(t, applicantID, apps[0].ApplicantID)
	assert.Equal(t, StatusApplied, apps[0].Status)
}

func TestListByJob_OwnerGetsApplications(t *testing.T) {
	jobID := uuid.New()
	ownerID := uuid.New()
	jobRepo := &mockJobRepository{
		findByIDFn: func(ctx context.Context, id uuid.UUID) (*job.Job, error) {
			return activeJob(jobID, ownerID), nil
		},
	}
	repo := &mockRepository{
		findByJobFn: func(ctx context.Context, id uuid.UUID) ([]Application, error) {
			assert.Equal(t, jobID, id)
			return []Application{
				{JobID: jobID, ApplicantName: "Grace Hopper", Status: StatusApplied},
			}, nil
		},
	}

	svc := NewService(repo, jobRepo, &mockUserService{}, &mockStorage{}, testConfig(t), zap.NewNop())
	apps, err := svc.ListByJob(context.Background(), jobID, ownerID)

	require.NoError(t, err)
	require.Len(t, apps, 1)
	assert.Equal(t, "Grace Hopper", apps[0].ApplicantName)
}

func TestListByJob_NonOwnerForbiddenWithoutData(t *testing.T) {
	jobID := uuid.New()
	jobRepo := &mockJobRepository{
		findByIDFn: func(ctx context.Context, id uuid.UUID) (*job.Job, error) {
			return activeJob(jobID, uuid.New()), nil
		},
	}
	repo := &mockRepository{
		findByJobFn: func(ctx context.Context, id uuid.UUID) ([]Application, error) {
			t.Fatal("the repository must not be queried for a non-owner")
			return nil, nil
		},
	}

	svc := NewService(repo, jobRepo, &mockUserService{}, &mockStorage{}, testConfig(t), zap.NewNop())
	apps, err := svc.ListByJob(context.Background(), jobID, uuid.New())

	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrForbidden)
	assert.Nil(t, apps)
}

func TestListByJob_MissingJobNotFound(t *testing.T) {
	jobRepo := &mockJobRepository{
		findByIDFn: func(ctx context.Context, id uuid.UUID) (*job.Job, error) {
			return nil, common.ErrNotFound.WithDetails("Job not found.")
		},
	}

	svc := NewService(&mockRepository{}, jobRepo, &mockUserService{}, &mockStorage{}, testConfig(t), zap.NewNop())
	apps, err := svc.ListByJob(context.Background(), uuid.New(), uuid.New())

	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrNotFound)
	assert.Nil(t, apps)
}

func TestUpdateStatus_AllowedTransition(t *testing.T) {
	appID := uuid.New()
	ownerID := uuid.New()
	repo := &mockRepository{
		findByIDFn: func(ctx context.Context, id uuid.UUID) (*Application, error) {
			return &Application{
				BaseModel: common.BaseModel{ID: appID},
				OwnerID:   ownerID,
				Status:    StatusApplied,
			}, nil
		},
		updateStatusFn: func(ctx context.Context, id uuid.UUID, status ApplicationStatus) error {
			assert.Equal(t, StatusShortlisted, status)
			return nil
		},
	}

	svc := NewService(repo, &mockJobRepository{}, &mockUserService{}, &mockStorage{}, testConfig(t), zap.NewNop())
	app, err := svc.UpdateStatus(context.Background(), appID, ownerID, StatusShortlisted)

	require.NoError(t, err)
	assert.Equal(t, StatusShortlisted, app.Status)
}

func TestUpdateStatus_DisallowedTransition(t *testing.T) {
	appID := uuid.New()
	ownerID := uuid.New()
	repo := &mockRepository{
		findByIDFn: func(ctx context.Context, id uuid.UUID) (*Application, error) {
			return &Application{
				BaseModel: common.BaseModel{ID: appID},
				OwnerID:   ownerID,
				Status:    StatusRejected,
			}, nil
		},
		updateStatusFn: func(ctx context.Context, id uuid.UUID, status ApplicationStatus) error {
			t.Fatal("a disallowed transition must not reach the repository")
			return nil
		},
	}

	svc := NewService(repo, &mockJobRepository{}, &mockUserService{}, &mockStorage{}, testConfig(t), zap.NewNop())
	_, err := svc.UpdateStatus(context.Background(), appID, ownerID, StatusShortlisted)

	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrUnprocessableEntity)
}

func TestUpdateStatus_NonOwnerForbidden(t *testing.T) {
	appID := uuid.New()
	repo := &mockRepository{
		findByIDFn: func(ctx context.Context, id uuid.UUID) (*Application, error) {
			return &Application{
				BaseModel: common.BaseModel{ID: appID},
				OwnerID:   uuid.New(),
				Status:    StatusApplied,
			}, nil
		},
	}

	svc := NewService(repo, &mockJobRepository{}, &mockUserService{}, &mockStorage{}, testConfig(t), zap.NewNop())
	_, err := svc.UpdateStatus(context.Background(), appID, uuid.New(), StatusShortlisted)

	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrForbidden)
}
