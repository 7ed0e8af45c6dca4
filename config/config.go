package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type DiscordConfig struct {
	BotToken string
}

// IsConfigured returns true if all required Discord configuration is present
func (c DiscordConfig) IsConfigured() bool {
	return c.BotToken != ""
}

type OpenAIConfig struct {
	APIKey         string
	BaseURL        string // Optional, for OpenAI-compatible providers
	EmbeddingModel string
}

// IsConfigured returns true if all required OpenAI configuration is present
func (c OpenAIConfig) IsConfigured() bool {
	return c.APIKey != "" && c.EmbeddingModel != ""
}

type PineconeConfig struct {
	APIKey string
	Cloud  string
	Region string
}

// IsConfigured returns true if all required Pinecone configuration is present
func (c PineconeConfig) IsConfigured() bool {
	return c.APIKey != ""
}

type AppConfig struct {
	// Core configuration (always required)
	DatabaseURL    string
	DatabaseSchema string
	Environment    string

	// Organization the mirrored servers are grouped under
	OrganizationName string

	// Sync tuning
	MessageBatchLimit int           // Page size for message pagination
	UpdateInterval    time.Duration // Interval between incremental runs in watch mode
	FetchTimeout      time.Duration // Bound on member/thread listing calls
	PersistWorkers    int           // Worker pool size for batch message persistence

	// Watch-mode status endpoint
	Port               string
	CORSAllowedOrigins string

	// Alerting (optional)
	AlertWebhookURL string
	LogsURL         string

	// Integration configurations (grouped)
	DiscordConfig  DiscordConfig
	OpenAIConfig   OpenAIConfig
	PineconeConfig PineconeConfig
}

func LoadConfig() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		fmt.Println("⚠️ Could not load .env file, continuing with system env vars")
	}

	// Core required configuration
	databaseURL, err := getEnvRequired("DB_URL")
	if err != nil {
		return nil, err
	}

	databaseSchema, err := getEnvRequired("DB_SCHEMA")
	if err != nil {
		return nil, err
	}

	batchLimit, err := getEnvIntWithDefault("MESSAGE_BATCH_LIMIT", 100)
	if err != nil {
		return nil, err
	}

	updateInterval, err := getEnvDurationWithDefault("UPDATE_INTERVAL", time.Hour)
	if err != nil {
		return nil, err
	}

	fetchTimeout, err := getEnvDurationWithDefault("FETCH_TIMEOUT", time.Hour)
	if err != nil {
		return nil, err
	}

	persistWorkers, err := getEnvIntWithDefault("PERSIST_WORKERS", 8)
	if err != nil {
		return nil, err
	}

	config := &AppConfig{
		DatabaseURL:    databaseURL,
		DatabaseSchema: databaseSchema,
		Environment:    getEnvWithDefault("ENVIRONMENT", "dev"),

		OrganizationName: getEnvWithDefault("ORGANIZATION_NAME", "straico"),

		MessageBatchLimit: batchLimit,
		UpdateInterval:    updateInterval,
		FetchTimeout:      fetchTimeout,
		PersistWorkers:    persistWorkers,

		Port:               getEnvWithDefault("PORT", "8080"),
		CORSAllowedOrigins: getEnvWithDefault("CORS_ALLOWED_ORIGINS", "*"),

		AlertWebhookURL: os.Getenv("ALERT_WEBHOOK_URL"),
		LogsURL:         os.Getenv("LOGS_URL"),

		DiscordConfig: DiscordConfig{
			BotToken: os.Getenv("DISCORD_BOT_TOKEN"),
		},

		OpenAIConfig: OpenAIConfig{
			APIKey:         os.Getenv("OPENAI_API_KEY"),
			BaseURL:        os.Getenv("OPENAI_BASE_URL"),
			EmbeddingModel: getEnvWithDefault("OPENAI_EMBEDDING_MODEL", "text-embedding-3-small"),
		},

		PineconeConfig: PineconeConfig{
			APIKey: os.Getenv("PINECONE_API_KEY"),
			Cloud:  getEnvWithDefault("PINECONE_CLOUD", "aws"),
			Region: getEnvWithDefault("PINECONE_REGION", "us-east-1"),
		},
	}

	return config, nil
}

func getEnvRequired(key string) (string, error) {
	value := os.Getenv(key)
	if value == "" {
		return "", fmt.Errorf("%s is not set", key)
	}
	return value, nil
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntWithDefault(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return parsed, nil
}

func getEnvDurationWithDefault(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration: %w", key, err)
	}
	return parsed, nil
}
