package webhook

import (
	"crypto/subtle"
	"errors"

	"hireboard_backend/internal/common"
	"hireboard_backend/internal/config"
	"hireboard_backend/internal/user"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// SecretHeader carries the shared secret authenticating the identity
// provider's webhook calls.
const SecretHeader = "X-Webhook-Secret"

// Handler receives identity provider lifecycle events.
type Handler struct {
	userService user.Service
	cfg         *config.Config
	logger      *zap.Logger
}

// NewHandler creates a new webhook handler.
func NewHandler(userService user.Service, cfg *config.Config, logger *zap.Logger) *Handler {
	return &Handler{
		userService: userService,
		cfg:         cfg,
		logger:      logger,
	}
}

// RegisterRoutes sets up the webhook routes. These are never behind the
// session auth middleware; the shared secret is the only guard.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/webhooks/identity", h.handleIdentityEvent)
}

func (h *Handler) handleIdentityEvent(c *gin.Context) {
	secret := c.GetHeader(SecretHeader)
	if secret == "" || subtle.ConstantTimeCompare([]byte(secret), []byte(h.cfg.WebhookSecret)) != 1 {
		h.logger.Warn("Webhook call with missing or invalid secret", zap.String("ip", c.ClientIP()))
		common.RespondWithError(c, common.ErrUnauthorized.WithDetails("Invalid webhook secret."))
		return
	}

	var event IdentityEvent
	if err := c.ShouldBindJSON(&event); err != nil {
		h.logger.Warn("Webhook payload failed validation", zap.Error(err))
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			common.RespondWithError(c, common.NewValidationAPIError(common.FormatValidationErrors(ve)))
			return
		}
		common.RespondWithError(c, common.ErrBadRequest.WithDetails(err.Error()))
		return
	}

	ctx := c.Request.Context()
	switch event.Type {
	case EventUserCreated:
		if _, err := h.userService.HandleUserCreated(ctx, event.Data.ToProviderProfile()); err != nil {
			common.RespondWithError(c, err)
			return
		}
	case EventUserUpdated:
		if _, err := h.userService.HandleUserUpdated(ctx, event.Data.ToProviderProfile()); err != nil {
			common.RespondWithError(c, err)
			return
		}
	case EventUserDeleted:
		if err := h.userService.HandleUserDeleted(ctx, event.Data.ID); err != nil {
			common.RespondWithError(c, err)
			return
		}
	}

	h.logger.Info("Identity event processed",
		zap.String("type", event.Type),
		zap.String("providerID", event.Data.ID),
	)
	common.RespondOK(c, "Event processed.", nil)
}
