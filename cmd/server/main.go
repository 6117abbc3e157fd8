package main

import (
	"context"
	"io"
	"log"
	"time"

	"entitlement-api/internal/api"
	"entitlement-api/internal/config"
	"entitlement-api/internal/database"
	"entitlement-api/internal/services"
	"entitlement-api/pkg/logging"

	firebase "firebase.google.com/go"
	"github.com/gin-gonic/gin"
	"google.golang.org/api/option"
)

func main() {
	// Initialize configuration
	if err := config.InitConfig(); err != nil {
		log.Fatal("Failed to initialize config:", err)
	}
	cfg := config.AppConfig

	// Initialize logging
	logging.InitLogging(cfg.LogLevel, cfg.LogFormat)

	ctx := context.Background()

	// Initialize the Firebase app once; its clients are shared by every request
	app, err := initFirebase(ctx, cfg)
	if err != nil {
		log.Fatal("Failed to initialize Firebase:", err)
	}

	authClient, err := app.Auth(ctx)
	if err != nil {
		log.Fatal("Failed to initialize Firebase Auth:", err)
	}

	store, closer, err := initEntitlementStore(ctx, app, cfg)
	if err != nil {
		log.Fatal("Failed to initialize entitlement store:", err)
	}
	defer closer.Close()

	// Initialize Redis for the orphaned session journal
	if err := database.InitRedis(); err != nil {
		log.Fatal("Failed to initialize Redis:", err)
	}
	defer database.CloseDatabase()

	var journal services.OrphanRecorder
	if database.RedisClient != nil {
		journal = services.NewSessionJournal(database.RedisClient, time.Duration(cfg.OrphanSessionTTLHours)*time.Hour)
	}

	gateway := services.NewGatewayClient(services.GatewayConfig{
		BaseURL:     cfg.GatewayBaseURL,
		MerchantID:  cfg.GatewayMerchantID,
		APIPassword: cfg.GatewayAPIPassword,
		Timeout:     time.Duration(cfg.GatewayTimeoutSeconds) * time.Second,
	})

	authorizer, err := services.NewGooglePlayAuthorizer(services.GooglePlayConfig{
		ServiceAccountJSON: cfg.GoogleServiceAccountJSON,
		ClientEmail:        cfg.GoogleClientEmail,
		PrivateKey:         cfg.GooglePrivateKey,
		TokenURL:           cfg.GoogleTokenURL,
		Endpoint:           cfg.AndroidPublisherEndpoint,
	})
	if err != nil {
		log.Fatal("Failed to initialize Google Play billing:", err)
	}

	// Set Gin mode
	gin.SetMode(cfg.Mode)

	// Create Gin engine
	r := gin.New()
	r.Use(gin.Recovery())

	// Setup routes
	api.SetupRoutes(r, api.Dependencies{
		TokenVerifier: authClient,
		Sessions:      services.NewSessionService(gateway, journal),
		Purchases: services.NewPurchaseService(authorizer, store, services.PurchaseConfig{
			DefaultPackageName: cfg.DefaultPackageName,
			PremiumFallback:    time.Duration(cfg.PremiumFallbackDays) * 24 * time.Hour,
		}),
		Entitlements: services.NewEntitlementService(store),
	})

	// Start server
	port := cfg.Port
	logging.Infof("Starting server on port %s", port)

	if err := r.Run(":" + port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}

func initFirebase(ctx context.Context, cfg *config.Config) (*firebase.App, error) {
	var opts []option.ClientOption
	if cfg.FirebaseCredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.FirebaseCredentialsFile))
	}

	var fbConfig *firebase.Config
	if cfg.FirebaseProjectID != "" {
		fbConfig = &firebase.Config{ProjectID: cfg.FirebaseProjectID}
	}

	return firebase.NewApp(ctx, fbConfig, opts...)
}

func initEntitlementStore(ctx context.Context, app *firebase.App, cfg *config.Config) (services.EntitlementStore, io.Closer, error) {
	if cfg.EntitlementBackend == config.BackendSQL {
		if err := database.InitDatabase(); err != nil {
			return nil, nil, err
		}
		logging.Infof("Entitlements stored in SQL")
		return database.NewSQLEntitlementStore(database.DB), io.NopCloser(nil), nil
	}

	client, err := app.Firestore(ctx)
	if err != nil {
		return nil, nil, err
	}
	logging.Infof("Entitlements stored in Firestore collection %q", cfg.UsersCollection)
	return database.NewFirestoreEntitlementStore(client, cfg.UsersCollection), client, nil
}
