package middleware

import (
	"context"
	"strings"

	"entitlement-api/internal/apperror"
	"entitlement-api/internal/models"
	"entitlement-api/internal/response"
	"entitlement-api/pkg/logging"

	"firebase.google.com/go/auth"
	"github.com/gin-gonic/gin"
)

const callerKey = "caller"

// TokenVerifier verifies identity-provider ID tokens; *auth.Client satisfies it
type TokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

// CallerAuthMiddleware resolves the caller from a Bearer ID token.
// Requests without an Authorization header continue anonymously and are
// rejected by the operations that need a caller; a bad token is rejected here.
func CallerAuthMiddleware(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.Next()
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
			response.AbortWithError(c, apperror.Unauthenticated("Invalid Authorization header format"))
			return
		}

		token, err := verifier.VerifyIDToken(c.Request.Context(), parts[1])
		if err != nil {
			logging.Warnf("ID token verification failed: %v", err)
			response.AbortWithError(c, apperror.Unauthenticated("Invalid or expired ID token"))
			return
		}

		c.Set(callerKey, &models.Caller{UID: token.UID})
		c.Next()
	}
}

// CallerFrom returns the caller resolved for this request, or nil
func CallerFrom(c *gin.Context) *models.Caller {
	if v, exists := c.Get(callerKey); exists {
		if caller, ok := v.(*models.Caller); ok {
			return caller
		}
	}
	return nil
}
