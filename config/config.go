package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	StorageGCS   = "gcs"
	StorageMinio = "minio"
	StorageLocal = "local"
)

type Config struct {
	Port     string `env:"PORT" envDefault:"3000"`
	AppURL   string `env:"APP_URL" envDefault:"http://localhost:3000"`
	LoginURL string `env:"LOGIN_URL" envDefault:"/login"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	SentryDSN         string `env:"SENTRY_DSN"`
	SentryEnvironment string `env:"SENTRY_ENVIRONMENT" envDefault:"development"`

	HTTPTimeout time.Duration `env:"HTTP_TIMEOUT" envDefault:"60s"`

	Database DatabaseConfig
	Auth     AuthConfig
	Storage  StorageConfig
	Gemini   GeminiConfig
}

type DatabaseConfig struct {
	Driver string `env:"DB_DRIVER" envDefault:"postgres"`
	URL    string `env:"DATABASE_URL,required,notEmpty"`
}

type AuthConfig struct {
	JWTSecret      string        `env:"JWT_SECRET,required,notEmpty"`
	Issuer         string        `env:"JWT_ISSUER" envDefault:"snap-vault"`
	TokenDuration  time.Duration `env:"TOKEN_DURATION" envDefault:"24h"`
	CookieDuration time.Duration `env:"COOKIE_DURATION" envDefault:"168h"`
	SecureCookies  bool          `env:"SECURE_COOKIES" envDefault:"false"`
}

type StorageConfig struct {
	Driver        string `env:"STORAGE_DRIVER" envDefault:"gcs"`
	Bucket        string `env:"STORAGE_BUCKET" envDefault:"images"`
	PublicBaseURL string `env:"STORAGE_PUBLIC_BASE_URL"`

	GCSProjectID   string `env:"GCS_PROJECT_ID"`
	GCSCredentials string `env:"GOOGLE_APPLICATION_CREDENTIALS"`
	MinioEndpoint  string `env:"MINIO_ENDPOINT"`
	MinioAccessKey string `env:"MINIO_ACCESS_KEY"`
	MinioSecretKey string `env:"MINIO_SECRET_KEY"`
	MinioUseSSL    bool   `env:"MINIO_USE_SSL" envDefault:"false"`
	LocalDir       string `env:"STORAGE_LOCAL_DIR" envDefault:"./data/images"`
	LocalRoute     string `env:"STORAGE_LOCAL_ROUTE" envDefault:"/files"`
}

type GeminiConfig struct {
	APIKey  string `env:"GEMINI_API_KEY"`
	Model   string `env:"GEMINI_MODEL" envDefault:"gemini-2.0-flash"`
	BaseURL string `env:"GEMINI_BASE_URL"`
}

// Load reads an optional .env file and binds the environment into a Config.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	} else if err != nil {
		log.Println("No .env file found, reading configuration from the environment")
	}

	return FromEnv()
}

// FromEnv binds the current process environment without touching .env.
func FromEnv() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if strings.TrimSpace(c.Auth.JWTSecret) == "" {
		return errors.New("JWT_SECRET must not be empty")
	}
	if strings.TrimSpace(c.Database.URL) == "" {
		return errors.New("DATABASE_URL must not be empty")
	}

	switch c.Database.Driver {
	case DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.Database.Driver)
	}

	switch c.Storage.Driver {
	case StorageGCS:
		if c.Storage.Bucket == "" {
			return errors.New("STORAGE_BUCKET not set")
		}
	case StorageMinio:
		if c.Storage.MinioEndpoint == "" {
			return errors.New("MINIO_ENDPOINT not set")
		}
	case StorageLocal:
		if c.Storage.LocalDir == "" {
			return errors.New("STORAGE_LOCAL_DIR not set")
		}
	default:
		return fmt.Errorf("unsupported STORAGE_DRIVER %q", c.Storage.Driver)
	}

	c.AppURL = strings.TrimRight(c.AppURL, "/")
	return nil
}
