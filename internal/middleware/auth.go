package middleware

import (
	"context"

	"hireboard_backend/internal/common"
	"hireboard_backend/internal/shared"

	firebaseauth "firebase.google.com/go/v4/auth"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// TokenVerifier verifies an identity provider ID token.
// *firebase.FirebaseService satisfies this.
type TokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*firebaseauth.Token, error)
}

// AuthMiddleware creates a Gin middleware that authenticates requests with an
// identity provider ID token. The verified token is resolved to a local user
// (created on first sight) and its identity is stored in the request context.
// Nothing is cached across requests.
func AuthMiddleware(verifier TokenVerifier, userService shared.Service, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := common.GetTokenFromContext(c)
		if tokenString == "" {
			logger.Debug("Authorization header missing or malformed")
			common.RespondWithError(c, common.ErrUnauthorized.WithDetails("Authorization header must be 'Bearer <token>'."))
			return
		}

		token, err := verifier.VerifyIDToken(c.Request.Context(), tokenString)
		if err != nil {
			logger.Warn("Token verification failed", zap.Error(err))
			common.RespondWithError(c, common.ErrUnauthorized.WithDetails("Invalid or expired session token."))
			return
		}

		usr, wasCreated, err := userService.GetOrCreateUserFromProviderClaims(c.Request.Context(), token)
		if err != nil {
			logger.Error("Failed to resolve local user for verified token", zap.Error(err), zap.String("uid", token.UID))
			common.RespondWithError(c, err)
			return
		}
		if wasCreated {
			logger.Info("Created local user for new provider identity",
				zap.String("userID", usr.ID.String()),
				zap.String("uid", token.UID),
			)
		}

		c.Set(common.UserIDKey, usr.ID)
		if usr.Email != nil {
			c.Set(common.UserEmailKey, *usr.Email)
		}
		c.Set(common.UserRoleKey, usr.Role)
		c.Set(common.ProviderUIDKey, token.UID)

		logger.Debug("User authenticated successfully",
			zap.String("userID", usr.ID.String()),
			zap.String("role", usr.Role),
		)

		c.Next()
	}
}

// RoleAuthMiddleware creates a middleware to check if the authenticated user
// has one of the required roles.
func RoleAuthMiddleware(allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userRole := common.GetUserRoleFromContext(c)
		if userRole == "" {
			common.RespondWithError(c, common.ErrForbidden.WithDetails("User role not found in context."))
			return
		}

		for _, role := range allowedRoles {
			if userRole == role {
				c.Next()
				return
			}
		}

		common.RespondWithError(c, common.ErrForbidden.WithDetails("You do not have sufficient permissions for this resource."))
	}
}
