package config

import (
	"os"
	"strconv"
	"strings"
)

// Store backends.
const (
	BackendDynamo = "dynamo"
	BackendMongo  = "mongo"
)

// Push providers.
const (
	ProviderFCM = "fcm"
	ProviderSNS = "sns"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	AppPort  string
	AppEnv   string
	LogLevel string

	StoreBackend   string
	AWSRegion      string
	AWSEndpointURL string // empty in prod, set to LocalStack URL in dev
	AWSAccessKeyID string
	AWSSecretKey   string
	DynamoTables   DynamoTables
	MongoURI       string
	MongoDatabase  string

	PushProvider            string
	FirebaseCredentialsPath string
	SNSRegion               string

	S3BucketName         string // empty disables presigning of profile keys
	ProfileURLTTLMinutes int

	FanoutConcurrency int
	AllowedOrigins    []string // CORS allowed origins
	SentryDSN         string
}

// DynamoTables holds the DynamoDB table name for each entity.
type DynamoTables struct {
	Users         string
	Notifications string
}

// Load reads all configuration from environment variables.
func Load() *Config {
	return &Config{
		AppPort:  getEnv("APP_PORT", "3000"),
		AppEnv:   getEnv("APP_ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		StoreBackend:   strings.ToLower(getEnv("STORE_BACKEND", BackendDynamo)),
		AWSRegion:      getEnv("AWS_REGION", "us-east-1"),
		AWSEndpointURL: getEnv("AWS_ENDPOINT_URL", ""),
		AWSAccessKeyID: getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretKey:   getEnv("AWS_SECRET_ACCESS_KEY", ""),
		DynamoTables: DynamoTables{
			Users:         getEnv("DYNAMO_TABLE_USERS", "users"),
			Notifications: getEnv("DYNAMO_TABLE_NOTIFICATIONS", "notifications"),
		},
		MongoURI:      getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDatabase: getEnv("MONGO_DATABASE", "social"),

		PushProvider:            strings.ToLower(getEnv("PUSH_PROVIDER", ProviderFCM)),
		FirebaseCredentialsPath: getEnv("FIREBASE_CREDENTIALS_PATH", "./firebase-credentials.json"),
		SNSRegion:               getEnv("SNS_REGION", "us-east-1"),

		S3BucketName:         getEnv("S3_BUCKET_NAME", ""),
		ProfileURLTTLMinutes: getEnvInt("PROFILE_URL_TTL_MINUTES", 60),

		FanoutConcurrency: getEnvInt("FANOUT_CONCURRENCY", 32),
		AllowedOrigins:    splitList(getEnv("ALLOWED_ORIGINS", "*")),
		SentryDSN:         getEnv("SENTRY_DSN", ""),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
