package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Exam catalog sources
const (
	SourceFile     = "file"
	SourceHTTP     = "http"
	SourcePostgres = "postgres"
)

// Config holds all application configuration
type Config struct {
	ServerPort  string        `mapstructure:"SERVER_PORT"`
	GinMode     string        `mapstructure:"GIN_MODE"`
	StaticDir   string        `mapstructure:"STATIC_DIR"`
	DatabaseURL string        `mapstructure:"DATABASE_URL"`
	LoadTimeout time.Duration `mapstructure:"LOAD_TIMEOUT"`
	Exams       ExamsConfig   `mapstructure:"EXAMS"`
	Session     SessionConfig `mapstructure:"SESSION"`
	CORS        CORSConfig    `mapstructure:"CORS"`
}

// ExamsConfig selects where the exam catalog is loaded from
type ExamsConfig struct {
	Source string `mapstructure:"SOURCE"` // file, http or postgres
	Path   string `mapstructure:"PATH"`
	URL    string `mapstructure:"URL"`
}

// SessionConfig holds session token and lifetime settings
type SessionConfig struct {
	SigningKey    string        `mapstructure:"SIGNING_KEY"`
	Issuer        string        `mapstructure:"ISSUER"`
	TTL           time.Duration `mapstructure:"TTL"`
	IdleTimeout   time.Duration `mapstructure:"IDLE_TIMEOUT"`
	SweepInterval time.Duration `mapstructure:"SWEEP_INTERVAL"`
}

// CORSConfig lists origins allowed to call the API
type CORSConfig struct {
	AllowOrigins []string `mapstructure:"ALLOW_ORIGINS"`
}

// LoadConfig loads configuration from .env, config.yaml and environment variables
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println(".env not found, skipping")
	}

	v := viper.New()
	v.SetConfigName("config") // config.yaml
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetDefault("SERVER_PORT", ":8080")
	v.SetDefault("GIN_MODE", "debug") // gin.DebugMode, gin.ReleaseMode, gin.TestMode
	v.SetDefault("STATIC_DIR", "./public")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("LOAD_TIMEOUT", "10s")
	v.SetDefault("EXAMS.SOURCE", SourceFile)
	v.SetDefault("EXAMS.PATH", "./public/exams.json")
	v.SetDefault("EXAMS.URL", "")
	v.SetDefault("SESSION.SIGNING_KEY", "")
	v.SetDefault("SESSION.ISSUER", "examprep")
	v.SetDefault("SESSION.TTL", "12h")
	v.SetDefault("SESSION.IDLE_TIMEOUT", "2h")
	v.SetDefault("SESSION.SWEEP_INTERVAL", "5m")
	v.SetDefault("CORS.ALLOW_ORIGINS", []string{"http://localhost:8080"})

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			log.Println("config.yaml not found, using environment variables and defaults")
		} else {
			return nil, fmt.Errorf("fatal error config file: %w", err)
		}
	}

	// e.g. EXAMPREP_SERVER_PORT, EXAMPREP_EXAMS_SOURCE
	v.SetEnvPrefix("EXAMPREP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}

	if cfg.Session.SigningKey == "" {
		key, err := randomKey()
		if err != nil {
			return nil, err
		}
		cfg.Session.SigningKey = key
		log.Println("SESSION.SIGNING_KEY not set, using a random key; session tokens will not survive a restart")
	}
	return &cfg, nil
}

func randomKey() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate signing key: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// Validate checks the settings the host needs before it can serve.
func (c *Config) Validate() error {
	if c.ServerPort == "" {
		return fmt.Errorf("SERVER_PORT must be set")
	}
	switch c.Exams.Source {
	case SourceFile:
		if c.Exams.Path == "" {
			return fmt.Errorf("EXAMS.PATH must be set for the %s source", SourceFile)
		}
	case SourceHTTP:
		if c.Exams.URL == "" {
			return fmt.Errorf("EXAMS.URL must be set for the %s source", SourceHTTP)
		}
	case SourcePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL must be set for the %s source", SourcePostgres)
		}
	default:
		return fmt.Errorf("unknown EXAMS.SOURCE %q", c.Exams.Source)
	}
	if c.Session.SigningKey == "" {
		return fmt.Errorf("SESSION.SIGNING_KEY must be set")
	}
	if c.Session.TTL <= 0 || c.Session.IdleTimeout <= 0 || c.Session.SweepInterval <= 0 {
		return fmt.Errorf("session durations must be positive")
	}
	if c.LoadTimeout <= 0 {
		return fmt.Errorf("LOAD_TIMEOUT must be positive")
	}
	return nil
}
