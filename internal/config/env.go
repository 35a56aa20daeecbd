package config

import (
	"errors"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Settings are process-wide options read from the environment
type Settings struct {
	Port      string
	DBPath    string
	LogLevel  string
	TaxTables string
}

// Environment variable names
const (
	EnvPort      = "SPLITTAX_PORT"
	EnvDB        = "SPLITTAX_DB"
	EnvLogLevel  = "SPLITTAX_LOG_LEVEL"
	EnvTaxTables = "SPLITTAX_TAX_TABLES"
)

// LoadSettings reads .env files (default ".env") into the environment
// without overriding variables already set, then builds Settings with
// defaults for anything unset.
func LoadSettings(files ...string) Settings {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logrus.WithField("module", "config").Warnf("error loading .env file: %v", err)
	}
	return Settings{
		Port:      getEnv(EnvPort, "8080"),
		DBPath:    getEnv(EnvDB, "splittax.db"),
		LogLevel:  getEnv(EnvLogLevel, "info"),
		TaxTables: os.Getenv(EnvTaxTables),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
