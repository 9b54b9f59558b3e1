package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Server    ServerConfig
	Postgres  PostgresConfig
	Redis     RedisConfig
	Quote     QuoteConfig
	Google    GoogleConfig
	Assistant AssistantConfig
	Jobs      JobsConfig
}

type ServerConfig struct {
	Host       string `envconfig:"SERVER_HOST" default:"localhost"`
	Port       int    `envconfig:"SERVER_PORT" default:"8080"`
	Production bool   `envconfig:"SERVER_PRODUCTION" default:"false"`
}

type PostgresConfig struct {
	User     string `envconfig:"POSTGRES_USER" required:"true"`
	Password string `envconfig:"POSTGRES_PASSWORD" required:"true"`
	Name     string `envconfig:"POSTGRES_DB" required:"true"`
	Host     string `envconfig:"POSTGRES_HOST" default:"localhost"`
	Port     int    `envconfig:"POSTGRES_PORT" default:"5432"`
	SSLMode  string `envconfig:"POSTGRES_SSLMODE" default:"disable"`
	MaxConns int32  `envconfig:"POSTGRES_MAX_CONNS" default:"10"`
}

type RedisConfig struct {
	Addr     string `envconfig:"REDIS_ADDR" default:"localhost:6380"`
	Password string `envconfig:"REDIS_PASSWORD"`
	DB       int    `envconfig:"REDIS_DB" default:"0"`
}

// QuoteConfig drives the quotation engine policies.
type QuoteConfig struct {
	DefaultCurrency string        `envconfig:"QUOTE_DEFAULT_CURRENCY" default:"LKR"`
	InvoiceStatus   string        `envconfig:"QUOTE_INVOICE_STATUS" default:"Paid"`
	QuotationStatus string        `envconfig:"QUOTE_QUOTATION_STATUS" default:"Approved"`
	DraftTTL        time.Duration `envconfig:"QUOTE_DRAFT_TTL" default:"2h"`
	CatalogCacheTTL time.Duration `envconfig:"QUOTE_CATALOG_CACHE_TTL" default:"5m"`
	UploadTimeout   time.Duration `envconfig:"QUOTE_UPLOAD_TIMEOUT" default:"30s"`
}

// GoogleConfig is optional: an empty CredentialsJSON leaves Drive and Sheets unconfigured.
type GoogleConfig struct {
	CredentialsJSON string `envconfig:"GOOGLE_DRIVE_KEY"`
	DriveFolderID   string `envconfig:"GOOGLE_DRIVE_FOLDER_ID"`
	SheetsID        string `envconfig:"GOOGLE_SHEETS_ID"`
}

type AssistantConfig struct {
	APIKey          string        `envconfig:"API_KEY"`
	Model           string        `envconfig:"ASSISTANT_MODEL" default:"gemini-2.0-flash"`
	RateLimit       int           `envconfig:"ASSISTANT_RATE_LIMIT" default:"10"`
	RateLimitWindow time.Duration `envconfig:"ASSISTANT_RATE_LIMIT_WINDOW" default:"1m"`
}

type JobsConfig struct {
	Concurrency    int    `envconfig:"JOBS_CONCURRENCY" default:"2"`
	SheetsSyncCron string `envconfig:"JOBS_SHEETS_SYNC_CRON" default:"@every 1h"`
}

func New() (*Config, error) {
	const op = "config.New"

	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	cfg.Quote.DefaultCurrency = strings.ToUpper(strings.TrimSpace(cfg.Quote.DefaultCurrency))
	if len(cfg.Quote.DefaultCurrency) != 3 {
		return nil, fmt.Errorf("%s: invalid QUOTE_DEFAULT_CURRENCY %q", op, cfg.Quote.DefaultCurrency)
	}

	if cfg.Server.Port <= 0 {
		return nil, fmt.Errorf("%s: invalid SERVER_PORT: %d", op, cfg.Server.Port)
	}

	return &cfg, nil
}

// PostgresDSN builds the pgx connection string.
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Postgres.User,
		c.Postgres.Password,
		c.Postgres.Host,
		c.Postgres.Port,
		c.Postgres.Name,
		c.Postgres.SSLMode,
	)
}
