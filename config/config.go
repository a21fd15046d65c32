package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	Port        string   `env:"PORT" envDefault:"8080"`
	Environment string   `env:"ENVIRONMENT" envDefault:"development"`
	CORSOrigins []string `env:"CORS_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000"`

	Mongo      MongoConfig      `envPrefix:"MONGODB_"`
	Auth       AuthConfig
	Logging    LoggingConfig    `envPrefix:"LOG_"`
	Events     EventsConfig     `envPrefix:"EVENTS_"`
	Cloudinary CloudinaryConfig `envPrefix:"CLOUDINARY_"`
	Email      EmailConfig
}

type MongoConfig struct {
	URI      string        `env:"URI,required,notEmpty"`
	Database string        `env:"DATABASE" envDefault:"evently"`
	Timeout  time.Duration `env:"TIMEOUT" envDefault:"5s"`
}

type AuthConfig struct {
	JWTSecret     string        `env:"JWT_SECRET,required,notEmpty"`
	JWTIssuer     string        `env:"JWT_ISSUER" envDefault:"evently"`
	JWTExpiry     time.Duration `env:"JWT_EXPIRY" envDefault:"24h"`
	WebhookSecret string        `env:"WEBHOOK_SECRET"`
}

type LoggingConfig struct {
	Level  string `env:"LEVEL" envDefault:"info"`
	Format string `env:"FORMAT" envDefault:"json"`
}

// EventsConfig toggles behaviors of the event actions.
type EventsConfig struct {
	// ListFiltering applies the query/category filters and page offset to
	// the all-events listing. Off reproduces the unfiltered first page.
	ListFiltering       bool `env:"LIST_FILTERING" envDefault:"false"`
	DeleteRequiresOwner bool `env:"DELETE_REQUIRES_OWNER" envDefault:"true"`
}

type CloudinaryConfig struct {
	CloudName string `env:"CLOUD_NAME"`
	APIKey    string `env:"API_KEY"`
	APISecret string `env:"API_SECRET"`
	Folder    string `env:"FOLDER" envDefault:"events"`
}

func (c CloudinaryConfig) Enabled() bool {
	return c.CloudName != "" && c.APIKey != "" && c.APISecret != ""
}

type EmailConfig struct {
	APIURL string `env:"ZEPTO_API_URL"`
	APIKey string `env:"ZEPTO_API_KEY"`
	From   string `env:"EMAIL_FROM"`
}

func (c EmailConfig) Enabled() bool {
	return c.APIURL != "" && c.APIKey != "" && c.From != ""
}

// Load reads an optional .env file and then the process environment.
// Variables already present in the environment win over the file.
func Load(files ...string) (Config, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load env file: %w", err)
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.Mongo.Timeout <= 0 {
		return Config{}, fmt.Errorf("MONGODB_TIMEOUT must be positive")
	}
	return cfg, nil
}
