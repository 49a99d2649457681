package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/xo/dburl"
)

type DB struct {
	Driver       string
	URL          string
	DbHOST       string
	DbPORT       string
	DbUSER       string
	DbPASSWORD   string
	DbNAME       string
	DbSSLMODE    string
	MaxOpenConns int
	MaxIdleConns int
}

type Log struct {
	Level string
	File  string
}

type Config struct {
	DB                    DB
	Log                   Log
	MigrationsPath        string
	EnforceGuidelines     bool
	NotificationRetention time.Duration

	// Warnings collects problems found while loading, for the caller to log
	// once a logger exists.
	Warnings []string
}

func getEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return fallback
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func parseDuration(value string, fallback time.Duration) time.Duration {
	duration, err := time.ParseDuration(value)
	if err != nil || duration <= 0 {
		return fallback
	}
	return duration
}

func LoadDB() DB {
	return DB{
		Driver:       getEnv("DB_DRIVER", "postgres"),
		URL:          getEnv("DATABASE_URL", ""),
		DbHOST:       getEnv("DB_HOST", "localhost"),
		DbPORT:       getEnv("DB_PORT", "5432"),
		DbUSER:       getEnv("DB_USER", "postgres"),
		DbPASSWORD:   getEnv("DB_PASSWORD", "password"),
		DbNAME:       getEnv("DB_NAME", "publishing"),
		DbSSLMODE:    getEnv("DB_SSLMODE", "disable"),
		MaxOpenConns: getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
		MaxIdleConns: getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
	}
}

func LoadConfig() *Config {
	var warnings []string
	if err := godotenv.Load(); err != nil {
		warnings = append(warnings, ".env file not found, using environment variables")
	}

	return &Config{
		DB: LoadDB(),
		Log: Log{
			Level: getEnv("LOG_LEVEL", "info"),
			File:  getEnv("LOG_FILE", ""),
		},
		MigrationsPath:        getEnv("MIGRATIONS_PATH", "migrations/001_create_tables.sql"),
		EnforceGuidelines:     getEnvBool("ENFORCE_GUIDELINES", false),
		NotificationRetention: parseDuration(getEnv("NOTIFICATION_RETENTION", "720h"), 30*24*time.Hour),
		Warnings:              warnings,
	}
}

// DataSource returns the driver name and DSN to open. DATABASE_URL wins over the
// individual DB_* settings; its scheme decides the postgres flavour only when
// DB_DRIVER is left at its default.
func (d DB) DataSource() (string, string, error) {
	driver := d.Driver
	if driver != "pgx" {
		driver = "postgres"
	}

	if d.URL == "" {
		dsn := fmt.Sprintf(
			"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
			d.DbHOST, d.DbPORT, d.DbUSER, d.DbPASSWORD, d.DbNAME, d.DbSSLMODE,
		)
		return driver, dsn, nil
	}

	u, err := dburl.Parse(d.URL)
	if err != nil {
		return "", "", fmt.Errorf("could not parse DATABASE_URL: %w", err)
	}
	if u.Driver != "postgres" && u.Driver != "pgx" {
		return "", "", fmt.Errorf("unsupported database driver %q", u.Driver)
	}
	if d.Driver == "" || d.Driver == "postgres" {
		driver = u.Driver
	}

	return driver, u.DSN, nil
}
