package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server configuration
	Port      string
	Mode      string
	LogLevel  string
	LogFormat string

	// Payment gateway configuration
	GatewayBaseURL        string
	GatewayMerchantID     string
	GatewayAPIPassword    string
	GatewayTimeoutSeconds int

	// Firebase configuration
	FirebaseProjectID       string
	FirebaseCredentialsFile string

	// Google Play billing configuration
	GoogleServiceAccountJSON string
	GoogleClientEmail        string
	GooglePrivateKey         string
	GoogleTokenURL           string
	AndroidPublisherEndpoint string
	DefaultPackageName       string
	PremiumFallbackDays      int

	// Entitlement storage configuration
	EntitlementBackend string
	UsersCollection    string
	DatabaseURL        string

	// Redis configuration
	RedisURL              string
	OrphanSessionTTLHours int
}

var AppConfig *Config

const (
	BackendFirestore = "firestore"
	BackendSQL       = "sql"
)

func InitConfig() error {
	// Load .env file; a missing file is fine
	_ = godotenv.Load()

	AppConfig = &Config{
		Port:      getEnv("PORT", "8080"),
		Mode:      getEnv("GIN_MODE", "debug"),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),

		GatewayBaseURL:        getEnv("GATEWAY_BASE_URL", "https://na.gateway.mastercard.com/api/rest"),
		GatewayMerchantID:     getEnv("GATEWAY_MERCHANT_ID", ""),
		GatewayAPIPassword:    getEnv("GATEWAY_API_PASSWORD", ""),
		GatewayTimeoutSeconds: getEnvInt("GATEWAY_TIMEOUT_SECONDS", 30),

		FirebaseProjectID:       getEnv("FIREBASE_PROJECT_ID", ""),
		FirebaseCredentialsFile: getEnv("FIREBASE_CREDENTIALS_FILE", ""),

		GoogleServiceAccountJSON: getEnv("GOOGLE_SERVICE_ACCOUNT_JSON", ""),
		GoogleClientEmail:        getEnv("GOOGLE_CLIENT_EMAIL", ""),
		GooglePrivateKey:         getEnv("GOOGLE_PRIVATE_KEY", ""),
		GoogleTokenURL:           getEnv("GOOGLE_TOKEN_URL", ""),
		AndroidPublisherEndpoint: getEnv("ANDROID_PUBLISHER_ENDPOINT", ""),
		DefaultPackageName:       getEnv("DEFAULT_PACKAGE_NAME", "com.yourcompany.datingapp"),
		PremiumFallbackDays:      getEnvInt("PREMIUM_FALLBACK_DAYS", 30),

		EntitlementBackend: getEnv("ENTITLEMENT_BACKEND", BackendFirestore),
		UsersCollection:    getEnv("USERS_COLLECTION", "users"),
		DatabaseURL:        getEnv("DATABASE_URL", ""),

		RedisURL:              getEnv("REDIS_URL", ""),
		OrphanSessionTTLHours: getEnvInt("ORPHAN_SESSION_TTL_HOURS", 168),
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
