package job

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"hireboard_backend/internal/common"
	"hireboard_backend/internal/config"
	platformES "hireboard_backend/internal/platform/elasticsearch"
	"hireboard_backend/internal/shared"

	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"go.uber.org/zap"
)

// Service defines the interface for job business logic. Ownership checks live
// here, not in the handlers.
type Service interface {
	CreateJob(ctx context.Context, userID uuid.UUID, req CreateJobRequest) (*Job, error)
	GetJobByID(ctx context.Context, id uuid.UUID, viewerID uuid.UUID) (*Job, error)
	GetJobsByOwner(ctx context.Context, ownerID uuid.UUID, jobID *uuid.UUID) ([]Job, error)
	UpdateJob(ctx context.Context, id uuid.UUID, userID uuid.UUID, req UpdateJobRequest) (*Job, error)
	ExpireJob(ctx context.Context, id uuid.UUID, userID uuid.UUID) (*Job, error)
	SearchJobs(ctx context.Context, query JobSearchQuery) ([]Job, *common.Pagination, error)
}

type service struct {
	repo        Repository
	userService shared.Service
	esClient    *platformES.ESClientWrapper
	cfg         *config.Config
	logger      *zap.Logger
}

var _ Service = (*service)(nil)

// NewService creates a new job service. esClient may be nil, in which case
// search falls back to the database and indexing is skipped.
func NewService(
	repo Repository,
	userService shared.Service,
	esClient *platformES.ESClientWrapper,
	cfg *config.Config,
	logger *zap.Logger,
) Service {
	return &service{
		repo:        repo,
		userService: userService,
		esClient:    esClient,
		cfg:         cfg,
		logger:      logger,
	}
}

// CreateJob creates an active job posting owned by userID, denormalizing the
// creator's name and email onto the record.
func (s *service) CreateJob(ctx context.Context, userID uuid.UUID, req CreateJobRequest) (*Job, error) {
	creator, err := s.userService.GetUserByID(ctx, userID)
	if err != nil {
		s.logger.Error("Failed to load creator for new job", zap.Error(err), zap.String("userID", userID.String()))
		return nil, err
	}

	now := time.Now()
	job := &Job{
		BaseModel: common.BaseModel{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		Title:        strings.TrimSpace(req.Title),
		Description:  req.Description,
		MinPay:       req.MinPay,
		MaxPay:       req.MaxPay,
		Requirements: req.Requirements,
		Status:       StatusActive,
		CreatedByID:  userID,
		CreatorName:  creatorDisplayName(creator),
		PostedAt:     now,
	}
	job.Slug = makeJobSlug(job.Title, job.ID)
	if creator.Email != nil {
		job.CreatorEmail = *creator.Email
	}

	if err := s.repo.Create(ctx, job); err != nil {
		return nil, err
	}

	s.indexJob(ctx, job)
	s.logger.Info("Job created", zap.String("jobID", job.ID.String()), zap.String("userID", userID.String()))
	return job, nil
}

// GetJobByID returns the public view of a job. Expired postings are visible
// to their owner only.
func (s *service) GetJobByID(ctx context.Context, id uuid.UUID, viewerID uuid.UUID) (*Job, error) {
	job, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if job.Status == StatusExpired && job.CreatedByID != viewerID {
		return nil, common.ErrNotFound.WithDetails("Job not found.")
	}
	return job, nil
}

// GetJobsByOwner returns the owner's postings. With a jobID it returns just
// that posting after an ownership check; without one it returns all owned
// postings, where an empty slice is a valid result.
func (s *service) GetJobsByOwner(ctx context.Context, ownerID uuid.UUID, jobID *uuid.UUID) ([]Job, error) {
	if jobID != nil {
		job, err := s.repo.FindByID(ctx, *jobID)
		if err != nil {
			return nil, err
		}
		if job.CreatedByID != ownerID {
			s.logger.Warn("User requested a job they do not own",
				zap.String("jobID", jobID.String()),
				zap.String("userID", ownerID.String()),
			)
			return nil, common.ErrForbidden.WithDetails("You do not own this job posting.")
		}
		return []Job{*job}, nil
	}
	return s.repo.FindByCreator(ctx, ownerID)
}

// UpdateJob applies a partial update to a posting the user owns.
func (s *service) UpdateJob(ctx context.Context, id uuid.UUID, userID uuid.UUID, req UpdateJobRequest) (*Job, error) {
	job, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if job.CreatedByID != userID {
		return nil, common.ErrForbidden.WithDetails("Only the creator may update this job posting.")
	}

	if req.Title != nil {
		job.Title = strings.TrimSpace(*req.Title)
		job.Slug = makeJobSlug(job.Title, job.ID)
	}
	if req.Description != nil {
		job.Description = *req.Description
	}
	if req.MinPay != nil {
		job.MinPay = req.MinPay
	}
	if req.MaxPay != nil {
		job.MaxPay = req.MaxPay
	}
	if req.Requirements != nil {
		job.Requirements = req.Requirements
	}
	if req.MinPay != nil || req.MaxPay != nil {
		if job.MinPay != nil && job.MaxPay != nil && *job.MaxPay < *job.MinPay {
			return nil, common.ErrUnprocessableEntity.WithDetails("max_pay must not be less than min_pay.")
		}
	}
	job.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, job); err != nil {
		return nil, err
	}

	s.indexJob(ctx, job)
	return job, nil
}

// ExpireJob marks a posting expired. Expiring an already-expired posting is a
// no-op and succeeds.
func (s *service) ExpireJob(ctx context.Context, id uuid.UUID, userID uuid.UUID) (*Job, error) {
	job, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if job.CreatedByID != userID {
		return nil, common.ErrForbidden.WithDetails("Only the creator may expire this job posting.")
	}
	if job.Status == StatusExpired {
		return job, nil
	}

	if err := s.repo.UpdateStatus(ctx, id, StatusExpired); err != nil {
		return nil, err
	}
	job.Status = StatusExpired

	s.indexJob(ctx, job)
	s.logger.Info("Job expired", zap.String("jobID", id.String()), zap.String("userID", userID.String()))
	return job, nil
}

// SearchJobs runs the public search against Elasticsearch when available,
// otherwise against the database.
func (s *service) SearchJobs(ctx context.Context, query JobSearchQuery) ([]Job, *common.Pagination, error) {
	if s.esClient == nil {
		return s.repo.Search(ctx, query)
	}

	jobs, pagination, err := s.searchElasticsearch(ctx, query)
	if err != nil {
		s.logger.Warn("Elasticsearch search failed, falling back to database", zap.Error(err))
		return s.repo.Search(ctx, query)
	}
	return jobs, pagination, nil
}

// searchElasticsearch queries the jobs index for matching IDs and hydrates
// them from the database.
func (s *service) searchElasticsearch(ctx context.Context, query JobSearchQuery) ([]Job, *common.Pagination, error) {
	status := query.Status
	if status == "" {
		status = string(StatusActive)
	}

	must := []map[string]interface{}{
		{"term": map[string]interface{}{"status": status}},
	}
	if query.SearchTerm != "" {
		must = append(must, map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":  query.SearchTerm,
				"fields": []string{"title^2", "description", "requirements"},
			},
		})
	}

	body := map[string]interface{}{
		"query":   map[string]interface{}{"bool": map[string]interface{}{"must": must}},
		"from":    query.Offset(),
		"size":    query.Limit(),
		"sort":    []map[string]interface{}{{"posted_at": map[string]interface{}{"order": "desc"}}},
		"_source": false,
	}
	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return nil, nil, fmt.Errorf("error marshalling search query: %w", err)
	}

	req := esapi.SearchRequest{
		Index: []string{platformES.JobsIndexName},
		Body:  bytes.NewReader(bodyBytes),
	}
	res, err := req.Do(ctx, s.esClient.Client)
	if err != nil {
		return nil, nil, fmt.Errorf("search request failed: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, nil, fmt.Errorf("search request returned status %s", res.Status())
	}

	var searchResult struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				ID string `json:"_id"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&searchResult); err != nil {
		return nil, nil, fmt.Errorf("failed to decode search response: %w", err)
	}

	ids := make([]uuid.UUID, 0, len(searchResult.Hits.Hits))
	for _, hit := range searchResult.Hits.Hits {
		id, parseErr := uuid.Parse(hit.ID)
		if parseErr != nil {
			s.logger.Warn("Skipping search hit with non-UUID ID", zap.String("id", hit.ID))
			continue
		}
		ids = append(ids, id)
	}

	jobs, err := s.repo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, nil, err
	}

	// Restore index ranking order lost by the IN query.
	byID := make(map[uuid.UUID]Job, len(jobs))
	for _, j := range jobs {
		byID[j.ID] = j
	}
	ordered := make([]Job, 0, len(ids))
	for _, id := range ids {
		if j, ok := byID[id]; ok {
			ordered = append(ordered, j)
		}
	}

	pagination := common.NewPagination(searchResult.Hits.Total.Value, query.Page, query.PageSize)
	return ordered, pagination, nil
}

// indexJob pushes the current job document to Elasticsearch. Indexing is
// best-effort; failures are logged and never surface to the caller.
func (s *service) indexJob(ctx context.Context, job *Job) {
	if s.esClient == nil {
		return
	}

	doc, err := job.SearchDoc()
	if err != nil {
		s.logger.Error("Failed to build Elasticsearch document for job", zap.Error(err), zap.String("jobID", job.ID.String()))
		return
	}

	req := esapi.IndexRequest{
		Index:      platformES.JobsIndexName,
		DocumentID: job.ID.String(),
		Body:       strings.NewReader(doc),
	}
	res, err := req.Do(ctx, s.esClient.Client)
	if err != nil {
		s.logger.Error("Failed to index job", zap.Error(err), zap.String("jobID", job.ID.String()))
		return
	}
	defer res.Body.Close()

	if res.IsError() {
		s.logger.Error("Elasticsearch rejected job document",
			zap.String("status", res.Status()),
			zap.String("jobID", job.ID.String()),
		)
	}
}

func makeJobSlug(title string, id uuid.UUID) string {
	return slug.Make(title) + "-" + id.String()[:8]
}

func creatorDisplayName(u *shared.User) string {
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
