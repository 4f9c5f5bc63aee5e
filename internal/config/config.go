package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port        string
	DatabaseURL string

	RabbitUser string
	RabbitPass string
	RabbitHost string
	RabbitPort string

	// Sync
	SyncSource    string
	SyncBatchSize int
	SyncInterval  time.Duration
	FetchTimeout  time.Duration

	// Integrações
	RandomUserURL string
	OpenAIKey     string
	OpenAIBaseURL string
	OpenAIModel   string

	// Auth
	JWTSecret         string
	AdminEmail        string
	AdminPasswordHash string

	// Alertas por email (DLQ)
	MailHost    string
	MailPort    int
	MailUser    string
	MailPass    string
	AlertEmail  string
	CacheTTL    time.Duration
	MetricsPath string
}

// Load lê tudo do ambiente (godotenv já foi carregado no main).
func Load() *Config {
	return &Config{
		Port:        getEnv("PORT", "8080"),
		DatabaseURL: os.Getenv("DATABASE_URL"),

		RabbitUser: getEnv("RABBITMQ_USER", "guest"),
		RabbitPass: getEnv("RABBITMQ_PASS", "guest"),
		RabbitHost: getEnv("RABBITMQ_HOST", "localhost"),
		RabbitPort: getEnv("RABBITMQ_PORT", "5672"),

		SyncSource:    getEnv("SYNC_SOURCE", "randomuser-api"),
		SyncBatchSize: getEnvInt("SYNC_BATCH_SIZE", 10),
		SyncInterval:  getEnvDuration("SYNC_INTERVAL", time.Hour),
		FetchTimeout:  getEnvDuration("SYNC_FETCH_TIMEOUT", 30*time.Second),

		RandomUserURL: getEnv("RANDOMUSER_URL", "https://randomuser.me/api/"),
		OpenAIKey:     os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL: getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		OpenAIModel:   getEnv("OPENAI_MODEL", "gpt-4o-mini"),

		JWTSecret:         getEnv("JWT_SECRET", "dev-secret-change-me"),
		AdminEmail:        getEnv("ADMIN_EMAIL", "admin@contactship.com"),
		AdminPasswordHash: os.Getenv("ADMIN_PASSWORD_HASH"),

		MailHost:   os.Getenv("MAIL_HOST"),
		MailPort:   getEnvInt("MAIL_PORT", 587),
		MailUser:   os.Getenv("MAIL_USER"),
		MailPass:   os.Getenv("MAIL_PASS"),
		AlertEmail: os.Getenv("ALERT_EMAIL"),

		CacheTTL:    getEnvDuration("CACHE_TTL", 5*time.Minute),
		MetricsPath: getEnv("METRICS_PATH", "/metrics"),
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

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
