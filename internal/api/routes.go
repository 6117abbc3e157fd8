package api

import (
	"context"

	"entitlement-api/internal/metrics"
	"entitlement-api/internal/middleware"
	"entitlement-api/internal/models"

	"github.com/gin-gonic/gin"
)

// SessionOpener opens hosted payment sessions
type SessionOpener interface {
	OpenSession(ctx context.Context, caller *models.Caller, order models.OrderRequest) (*models.PaymentSession, error)
}

// PurchaseVerifier verifies purchases and reconciles entitlements
type PurchaseVerifier interface {
	VerifyPurchase(ctx context.Context, caller *models.Caller, receipt models.PurchaseReceipt) (*models.VerifyResult, error)
}

// EntitlementReader reads the caller's entitlement
type EntitlementReader interface {
	GetEntitlement(ctx context.Context, caller *models.Caller) (*models.EntitlementStatus, error)
}

// Dependencies are the process-wide handles the routes are served with
type Dependencies struct {
	TokenVerifier middleware.TokenVerifier
	Sessions      SessionOpener
	Purchases     PurchaseVerifier
	Entitlements  EntitlementReader
}

// SetupRoutes sets up all routes
func SetupRoutes(r *gin.Engine, deps Dependencies) {
	h := &Handler{
		sessions:     deps.Sessions,
		purchases:    deps.Purchases,
		entitlements: deps.Entitlements,
	}

	r.Use(middleware.RequestLogger(), middleware.Metrics())

	// Callable functions (caller identity from the Firebase ID token)
	callable := r.Group("/")
	callable.Use(middleware.CallerAuthMiddleware(deps.TokenVerifier))
	{
		callable.POST("/createPaymentSession", h.CreatePaymentSession)
		callable.POST("/verifyPurchase", h.VerifyPurchase)
		callable.POST("/getEntitlement", h.GetEntitlement)
	}

	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": "entitlement-api",
		})
	})
}
