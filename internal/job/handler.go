package job

import (
	"errors"

	"hireboard_backend/internal/common"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Handler struct holds dependencies for job handlers.
type Handler struct {
	service Service
	logger  *zap.Logger
}

// NewHandler creates a new job handler.
func NewHandler(service Service, logger *zap.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes sets up the routes for job operations.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup, authMW gin.HandlerFunc) {
	jobGroup := router.Group("/jobs")
	{
		jobGroup.GET("", h.searchJobs)
		jobGroup.GET("/:id", h.getJobByID)

		authenticated := jobGroup.Group("")
		authenticated.Use(authMW)
		{
			authenticated.POST("", h.createJob)
			authenticated.GET("/mine", h.getMyJobs)
			authenticated.PUT("/:id", h.updateJob)
			authenticated.POST("/:id/expire", h.expireJob)
		}
	}
}

func (h *Handler) createJob(c *gin.Context) {
	var req CreateJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Create job: invalid request body", zap.Error(err))
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			common.RespondWithError(c, common.NewValidationAPIError(common.FormatValidationErrors(ve)))
			return
		}
		common.RespondWithError(c, common.ErrBadRequest.WithDetails(err.Error()))
		return
	}

	userID := common.GetUserIDFromContext(c)
	job, err := h.service.CreateJob(c.Request.Context(), userID, req)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondCreated(c, "Job posted successfully.", ToJobResponse(job, true))
}

func (h *Handler) searchJobs(c *gin.Context) {
	var query JobSearchQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails(err.Error()))
		return
	}
	query.Page, query.PageSize = common.GetPaginationParams(c)

	jobs, pagination, err := h.service.SearchJobs(c.Request.Context(), query)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondPaginated(c, "Jobs retrieved successfully.", ToJobResponses(jobs, false), pagination)
}

func (h *Handler) getMyJobs(c *gin.Context) {
	userID := common.GetUserIDFromContext(c)

	var jobID *uuid.UUID
	if raw := c.Query("jobId"); raw != "" {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid jobId format."))
			return
		}
		jobID = &parsed
	}

	jobs, err := h.service.GetJobsByOwner(c.Request.Context(), userID, jobID)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}

	message := "Jobs retrieved successfully."
	if len(jobs) == 0 {
		message = "No jobs found"
	}
	common.RespondOK(c, message, ToJobResponses(jobs, true))
}

func (h *Handler) getJobByID(c *gin.Context) {
	jobID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid job ID format."))
		return
	}

	// Unauthenticated viewers resolve to uuid.Nil, which never matches an owner.
	viewerID := common.GetUserIDFromContext(c)

	job, err := h.service.GetJobByID(c.Request.Context(), jobID, viewerID)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Job retrieved successfully.", ToJobResponse(job, false))
}

func (h *Handler) updateJob(c *gin.Context) {
	jobID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid job ID format."))
		return
	}

	var req UpdateJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Update job: invalid request body", zap.Error(err))
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			common.RespondWithError(c, common.NewValidationAPIError(common.FormatValidationErrors(ve)))
			return
		}
		common.RespondWithError(c, common.ErrBadRequest.WithDetails(err.Error()))
		return
	}

	userID := common.GetUserIDFromContext(c)
	job, err := h.service.UpdateJob(c.Request.Context(), jobID, userID, req)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Job updated successfully.", ToJobResponse(job, true))
}

func (h *Handler) expireJob(c *gin.Context) {
	jobID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid job ID format."))
		return
	}

	userID := common.GetUserIDFromContext(c)
	job, err := h.service.ExpireJob(c.Request.Context(), jobID, userID)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Job expired successfully.", ToJobResponse(job, true))
}
