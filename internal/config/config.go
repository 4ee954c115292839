package config

import (
	"fmt"

	env "github.com/Netflix/go-env"
	"github.com/joho/godotenv"
)

// Config holds all application configuration. Values come from the
// environment; a local .env file is loaded first when present.
type Config struct {
	APIPort int `env:"API_PORT,default=8080"`

	DBHost     string `env:"DB_HOST,default=localhost"`
	DBPort     int    `env:"DB_PORT,default=5432"`
	DBUser     string `env:"DB_USER,default=event_campaigns"`
	DBPassword string `env:"DB_PASSWORD,default=event_campaigns"`
	DBName     string `env:"DB_NAME,default=event_campaigns"`
	DBSSLMode  string `env:"DB_SSLMODE,default=disable"`

	RedisURL  string `env:"REDIS_URL,default=redis://localhost:6379/0"`
	QueueName string `env:"QUEUE_NAME,default=campaign_sends"`

	WorkerConcurrency int    `env:"WORKER_CONCURRENCY,default=3"`
	SendDelayMS       int    `env:"SEND_DELAY_MS,default=500"`
	FailOnAllFailed   bool   `env:"FAIL_ON_ALL_FAILED,default=false"`
	MetricsAddr       string `env:"METRICS_ADDR,default=:9091"`

	TrackingPort    int    `env:"TRACKING_PORT,default=8081"`
	TrackingBaseURL string `env:"TRACKING_BASE_URL,default=http://localhost:8081"`
	TrackingEnabled bool   `env:"TRACKING_ENABLED,default=true"`

	Mailer       string `env:"MAILER,default=mock"`
	FromName     string `env:"MAIL_FROM_NAME,default=Event Team"`
	FromEmail    string `env:"MAIL_FROM_EMAIL,default=no-reply@example.com"`
	AWSAccessKey string `env:"AWS_ACCESS_KEY_ID"`
	AWSSecretKey string `env:"AWS_SECRET_ACCESS_KEY"`
	AWSRegion    string `env:"AWS_REGION,default=us-east-1"`

	MigrationsDir string `env:"MIGRATIONS_DIR,default=migrations"`
}

// Load reads configuration from the environment
func Load() (*Config, error) {
	// Missing .env is fine; real deployments set the environment directly.
	_ = godotenv.Load()

	var cfg Config
	if _, err := env.UnmarshalFromEnviron(&cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if cfg.Mailer != "mock" && cfg.Mailer != "ses" {
		return nil, fmt.Errorf("invalid MAILER: %s (must be 'mock' or 'ses')", cfg.Mailer)
	}

	return &cfg, nil
}

// DSN returns the Postgres connection string
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode,
	)
}
