package config

import (
	"errors"
	"log"
	"os"

	"github.com/joho/godotenv"
)

const (
	DriverPostgres = "pgx"
	DriverSQLite   = "sqlite"

	defaultHTTPAddr   = ":8080"
	defaultSQLitePath = "expenses.db"
	defaultLogEnv     = "dev"
)

var (
	ErrMissingJWTSecret        = errors.New("no JWT_SECRET provided")
	ErrMissingConnectionString = errors.New("missing DB_CONNECTION_STRING in environment variables")
	ErrUnsupportedDriver       = errors.New("DB_DRIVER must be 'pgx' or 'sqlite'")
)

type Config struct {
	JWTSecret        string
	DBDriver         string
	ConnectionString string
	HTTPAddr         string
	MetricsAddr      string
	LogEnv           string
}

// Load reads the .env file when present and builds the configuration from
// the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("Error loading .env file, continuing with system environment variables")
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds the configuration from the given lookup function.
func FromEnv(getenv func(string) string) (*Config, error) {
	cfg := &Config{
		JWTSecret:        getenv("JWT_SECRET"),
		DBDriver:         getenv("DB_DRIVER"),
		ConnectionString: getenv("DB_CONNECTION_STRING"),
		HTTPAddr:         getenv("HTTP_ADDR"),
		MetricsAddr:      getenv("METRICS_ADDR"),
		LogEnv:           getenv("LOG_ENV"),
	}

	if cfg.JWTSecret == "" {
		return nil, ErrMissingJWTSecret
	}

	if cfg.DBDriver == "" {
		cfg.DBDriver = DriverPostgres
	}
	switch cfg.DBDriver {
	case DriverPostgres:
		if cfg.ConnectionString == "" {
			return nil, ErrMissingConnectionString
		}
	case DriverSQLite:
		if cfg.ConnectionString == "" {
			cfg.ConnectionString = defaultSQLitePath
		}
	default:
		return nil, ErrUnsupportedDriver
	}

	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = defaultHTTPAddr
	}
	if cfg.LogEnv == "" {
		cfg.LogEnv = defaultLogEnv
	}
	return cfg, nil
}
