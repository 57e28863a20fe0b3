package application

import (
	"errors"
	"net/http"

	"hireboard_backend/internal/common"
	"hireboard_backend/internal/config"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const maxShortIntroLength = 2000

// Handler struct holds dependencies for application handlers.
type Handler struct {
	service Service
	cfg     *config.Config
	logger  *zap.Logger
}

// NewHandler creates a new application handler.
func NewHandler(service Service, cfg *config.Config, logger *zap.Logger) *Handler {
	return &Handler{
		service: service,
		cfg:     cfg,
		logger:  logger,
	}
}

// RegisterRoutes sets up the routes for application operations. All of them
// require a session.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup, authMW gin.HandlerFunc) {
	jobGroup := router.Group("/jobs")
	jobGroup.Use(authMW)
	{
		jobGroup.POST("/:id/apply", h.apply)
	}

	appGroup := router.Group("/applications")
	appGroup.Use(authMW)
	{
		appGroup.GET("", h.listByJob)
		appGroup.PATCH("/:id/status", h.updateStatus)
	}
}

// apply accepts the resume as the raw request body. The original filename
// rides in the "filename" query parameter, an optional introduction in
// "intro".
func (h *Handler) apply(c *gin.Context) {
	userID := common.GetUserIDFromContext(c)
	if userID == uuid.Nil {
		common.RespondWithError(c, common.ErrInternalServer.WithDetails("User identifier missing."))
		return
	}

	jobID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid job ID format."))
		return
	}

	filename := c.Query("filename")
	if filename == "" {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("The filename query parameter is required."))
		return
	}
	intro := c.Query("intro")
	if len(intro) > maxShortIntroLength {
		common.RespondWithError(c, common.NewValidationAPIError(map[string]string{
			"intro": "The intro may not be greater than 2000 characters.",
		}))
		return
	}

	maxBytes := h.cfg.MaxResumeSizeMB * 1024 * 1024
	body := http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)

	app, err := h.service.Apply(c.Request.Context(), jobID, userID, intro, filename, body)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			common.RespondWithError(c, common.NewAPIError(
				http.StatusRequestEntityTooLarge,
				"PAYLOAD_TOO_LARGE",
				"The resume exceeds the maximum allowed size.",
			))
			return
		}
		common.RespondWithError(c, err)
		return
	}
	common.RespondCreated(c, "Application submitted successfully.", ToApplicationResponse(app))
}

func (h *Handler) listByJob(c *gin.Context) {
	userID := common.GetUserIDFromContext(c)
	if userID == uuid.Nil {
		common.RespondWithError(c, common.ErrInternalServer.WithDetails("User identifier missing."))
		return
	}

	jobIDParam := c.Query("jobId")
	if jobIDParam == "" {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("The jobId query parameter is required."))
		return
	}
	jobID, err := uuid.Parse(jobIDParam)
	if err != nil {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid jobId format."))
		return
	}

	apps, err := h.service.ListByJob(c.Request.Context(), jobID, userID)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Applications retrieved successfully.", ToApplicationResponses(apps))
}

func (h *Handler) updateStatus(c *gin.Context) {
	userID := common.GetUserIDFromContext(c)
	if userID == uuid.Nil {
		common.RespondWithError(c, common.ErrInternalServer.WithDetails("User identifier missing."))
		return
	}

	appID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid application ID format."))
		return
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Update application status: invalid request body", zap.Error(err))
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			common.RespondWithError(c, common.NewValidationAPIError(common.FormatValidationErrors(ve)))
			return
		}
		common.RespondWithError(c, common.ErrBadRequest.WithDetails(err.Error()))
		return
	}

	app, err := h.service.UpdateStatus(c.Request.Context(), appID, userID, req.Status)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Application status updated successfully.", ToApplicationResponse(app))
}
