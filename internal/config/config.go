package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds application level configuration loaded from environment variables.
type Config struct {
	ServerPort   string        `envconfig:"SERVER_PORT" default:"8080"`
	Env          string        `envconfig:"APP_ENV" default:"development"`
	MySQLDSN     string        `envconfig:"MYSQL_DSN" default:"user:password@tcp(localhost:3306)/avodah?charset=utf8mb4&parseTime=True&loc=Local"`
	StoreTimeout time.Duration `envconfig:"STORE_TIMEOUT" default:"5s"`

	RedisAddr string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	RedisDB   int    `envconfig:"REDIS_DB" default:"0"`
	RedisPass string `envconfig:"REDIS_PASSWORD"`

	JWTSecret  string        `envconfig:"SECRET_KEY" required:"true"`
	TokenTTL   time.Duration `envconfig:"TOKEN_TTL" default:"168h"`
	BcryptCost int           `envconfig:"BCRYPT_COST" default:"10"`

	// Requests per second allowed per client IP on login and register.
	AuthRateLimit float64 `envconfig:"AUTH_RATE_LIMIT" default:"5"`

	AllowedOrigins []string `envconfig:"ALLOWED_ORIGINS" default:"http://localhost:5173"`

	MailtrapToken  string `envconfig:"MAILTRAP_TOKEN"`
	MailtrapAPIURL string `envconfig:"MAILTRAP_API_URL" default:"https://send.api.mailtrap.io/api/send"`
	ReportFrom     string `envconfig:"REPORT_FROM" default:"mailtrap@demomailtrap.com"`
	ReportTo       string `envconfig:"REPORT_TO" default:"luizz.developer@gmail.com"`

	VerseAPIURL string        `envconfig:"VERSE_API_URL" default:"https://bolls.life/get-random-verse/NVIPT/"`
	HTTPTimeout time.Duration `envconfig:"HTTP_CLIENT_TIMEOUT" default:"10s"`

	S3Bucket    string `envconfig:"S3_BUCKET"`
	S3Region    string `envconfig:"S3_REGION" default:"us-east-1"`
	S3Endpoint  string `envconfig:"S3_ENDPOINT"`
	S3AccessKey string `envconfig:"S3_ACCESS_KEY"`
	S3SecretKey string `envconfig:"S3_SECRET_KEY"`
	S3PublicURL string `envconfig:"S3_PUBLIC_URL"`

	SeedAdminUsername string `envconfig:"SEED_ADMIN_USERNAME"`
	SeedAdminEmail    string `envconfig:"SEED_ADMIN_EMAIL"`
	SeedAdminPassword string `envconfig:"SEED_ADMIN_PASSWORD"`

	SwaggerHost string `envconfig:"SWAGGER_HOST"`
}

// Load reads an optional .env file and builds Config from the environment.
func Load() (*Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("load config: SECRET_KEY must not be empty")
	}
	if cfg.TokenTTL <= 0 {
		return nil, fmt.Errorf("load config: TOKEN_TTL must be positive, got %s", cfg.TokenTTL)
	}
	return &cfg, nil
}

// Production reports whether the service runs in the production environment.
func (c *Config) Production() bool {
	return c.Env == "production"
}
