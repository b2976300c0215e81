// Package config handles loading and parsing application configuration.
// It supports these sources (later ones override earlier ones):
//  1. A .env file in the working directory, if present (godotenv)
//  2. A YAML file: CONFIG_PATH=/path/to/config.yaml or --config=/path/...
//  3. Environment variables named in the env:"..." tags
//
// When no YAML file is given the configuration is read from the
// environment alone, which is how containers usually run the service.
package config

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Environment names accepted in Env.
const (
	EnvDev     = "dev"
	EnvStaging = "staging"
	EnvProd    = "prod"
)

// Storage drivers accepted in Storage.Driver.
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
)

// Config is the root configuration structure.
// Every field maps to a key in the YAML file AND can be overridden
// by the corresponding environment variable (env:"...").
type Config struct {
	// Env controls log format, verbosity and whether internal error
	// details are shown to clients. Valid values: "dev", "staging", "prod".
	Env string `yaml:"env" env:"ENV" env-default:"dev"`

	// Version is reported by /health and the API info document.
	Version string `yaml:"version" env:"APP_VERSION" env-default:"1.0.0"`

	HTTPServer `yaml:"http_server"`
	Storage    Storage   `yaml:"storage"`
	Auth       Auth      `yaml:"auth"`
	RateLimit  RateLimit `yaml:"rate_limit"`
}

// HTTPServer holds settings specific to the HTTP server.
type HTTPServer struct {
	// Addr is the TCP address the server listens on, e.g. "localhost:8082".
	Addr string `yaml:"address" env:"HTTP_SERVER_ADDR" env-default:"0.0.0.0:3000"`

	ReadTimeout  time.Duration `yaml:"read_timeout"  env:"HTTP_READ_TIMEOUT"  env-default:"10s"`
	WriteTimeout time.Duration `yaml:"write_timeout" env:"HTTP_WRITE_TIMEOUT" env-default:"10s"`
	IdleTimeout  time.Duration `yaml:"idle_timeout"  env:"HTTP_IDLE_TIMEOUT"  env-default:"60s"`

	// RequestTimeout is the deadline placed on every request's context.
	RequestTimeout time.Duration `yaml:"request_timeout" env:"HTTP_REQUEST_TIMEOUT" env-default:"8s"`

	// AllowedOrigins feeds CORS. "*" allows any origin.
	AllowedOrigins []string `yaml:"allowed_origins" env:"ALLOWED_ORIGINS" env-separator:"," env-default:"*"`

	// StaticDir, when set, is a built SPA bundle served at "/".
	StaticDir string `yaml:"static_dir" env:"STATIC_DIR"`
}

// Storage selects and configures the persistence backend.
type Storage struct {
	Driver string `yaml:"driver" env:"STORAGE_DRIVER" env-default:"sqlite"`

	// Path is the SQLite database file.
	Path string `yaml:"path" env:"STORAGE_PATH" env-default:"storage/students.db"`

	PostgresDSN string `yaml:"postgres_dsn" env:"POSTGRES_DSN"`

	MongoURI      string `yaml:"mongo_uri"      env:"MONGODB_URI"`
	MongoDatabase string `yaml:"mongo_database" env:"MONGODB_DATABASE" env-default:"college"`
}

// Auth configures the single admin identity and token signing.
type Auth struct {
	JWTSecret string `yaml:"jwt_secret" env:"JWT_SECRET" env-required:"true"`

	// ExpiresIn is a Go duration string ("24h", "90m"). It is echoed
	// verbatim in the login response.
	ExpiresIn string `yaml:"expires_in" env:"JWT_EXPIRES_IN" env-default:"24h"`

	AdminUsername string `yaml:"admin_username" env:"ADMIN_USERNAME" env-default:"admin"`
	AdminPassword string `yaml:"admin_password" env:"ADMIN_PASSWORD" env-default:"admin123"`
}

// RateLimit configures the IP-keyed sliding windows.
type RateLimit struct {
	General int           `yaml:"general" env:"RATE_LIMIT_GENERAL" env-default:"100"`
	Login   int           `yaml:"login"   env:"RATE_LIMIT_LOGIN"   env-default:"5"`
	Window  time.Duration `yaml:"window"  env:"RATE_LIMIT_WINDOW"  env-default:"15m"`
}

// Load reads the configuration from path, or from the environment only
// when path is empty, and checks the values that cleanenv cannot.
func Load(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return nil, fmt.Errorf("config file does not exist: %s", path)
		}
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("cannot read config: %w", err)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("cannot read config from environment: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Env {
	case EnvDev, EnvStaging, EnvProd:
	default:
		return fmt.Errorf("invalid env %q: want dev, staging or prod", c.Env)
	}

	switch c.Storage.Driver {
	case DriverMemory, DriverSQLite:
	case DriverPostgres:
		if c.Storage.PostgresDSN == "" {
			return errors.New("storage.postgres_dsn is required for the postgres driver")
		}
	case DriverMongo:
		if c.Storage.MongoURI == "" {
			return errors.New("storage.mongo_uri is required for the mongo driver")
		}
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}

	if _, err := time.ParseDuration(c.Auth.ExpiresIn); err != nil {
		return fmt.Errorf("invalid auth.expires_in %q: %w", c.Auth.ExpiresIn, err)
	}
	if c.RateLimit.General < 1 || c.RateLimit.Login < 1 || c.RateLimit.Window <= 0 {
		return errors.New("rate_limit values must be positive")
	}
	return nil
}

// IsDev reports whether the service runs in development mode.
func (c *Config) IsDev() bool { return c.Env == EnvDev }

// MustLoad reads, validates, and returns the application config.
//
// Functions prefixed with "Must" are allowed to fatal on failure. Callers
// do not need to check a returned error. If this function returns, the
// config is valid.
func MustLoad() *Config {
	// A missing .env is normal outside local development.
	if err := godotenv.Load(); err == nil {
		log.Println("loaded environment from .env")
	}

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		flags := flag.String("config", "", "Path to the configuration YAML file")
		flag.Parse()
		configPath = *flags
	}

	cfg, err := Load(configPath)
	if err != nil {
		log.Fatal(err)
	}
	return cfg
}
