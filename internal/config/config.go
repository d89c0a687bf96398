package config // package config loads application configuration from environment variables

import (
	"log/slog"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all runtime configuration values. Each field corresponds to
// an environment variable; required ones make Load fail when unset.
type Config struct {
	Env          string `envconfig:"APP_ENV" default:"dev"`              // application environment (dev, prod)
	Port         string `envconfig:"APP_PORT" default:"8080"`            // HTTP port to listen on
	DatabaseURL  string `envconfig:"DATABASE_URL" required:"true"`       // postgres connection string
	JWTSecret    string `envconfig:"JWT_SECRET" required:"true"`         // secret used to sign session tokens
	AccessTTLMin int    `envconfig:"ACCESS_TOKEN_TTL_MIN" default:"60"`  // session token lifetime in minutes
	BcryptCost   int    `envconfig:"BCRYPT_COST" default:"10"`           // bcrypt cost used by the seed command
	LogLevel     string `envconfig:"LOG_LEVEL" default:"info"`           // slog level: debug, info, warn, error
}

// LoadDotEnv reads a .env file into the process environment when present.
// A missing file is not an error; the real environment still applies.
func LoadDotEnv() {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file found, relying on system env")
	}
}

// Load reads Config from the environment.
func Load() (Config, error) {
	var c Config
	err := envconfig.Process("", &c)
	return c, err
}

// SlogLevel maps LogLevel onto a slog.Level, defaulting to info.
func (c Config) SlogLevel() slog.Level { return parseLevel(c.LogLevel) }

// DatabaseConfig is the subset read by the migrate and seed commands, which
// never sign tokens and so do not need JWT_SECRET.
type DatabaseConfig struct {
	URL        string `envconfig:"DATABASE_URL" required:"true"`
	BcryptCost int    `envconfig:"BCRYPT_COST" default:"10"`
}

// LoadDatabaseConfig reads DatabaseConfig from the environment.
func LoadDatabaseConfig() (DatabaseConfig, error) {
	var c DatabaseConfig
	err := envconfig.Process("", &c)
	return c, err
}

// LogConfig is read by every subcommand before anything else runs.
type LogConfig struct {
	Env   string `envconfig:"APP_ENV" default:"dev"`
	Level string `envconfig:"LOG_LEVEL" default:"info"`
}

// LoadLogConfig reads LogConfig from the environment.
func LoadLogConfig() (LogConfig, error) {
	var c LogConfig
	err := envconfig.Process("", &c)
	return c, err
}

// SlogLevel maps Level onto a slog.Level, defaulting to info.
func (c LogConfig) SlogLevel() slog.Level { return parseLevel(c.Level) }

func parseLevel(raw string) slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(raw)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}
