package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	App    AppConfig
	DB     DBConfig
	Server ServerConfig
	Seeder SeederConfig
}

// Environment is the execution context the process runs in
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvStaging     Environment = "staging"
	EnvProduction  Environment = "production"
)

// AppConfig holds process-wide settings
type AppConfig struct {
	Env Environment
}

// IsDevelopment reports whether destructive maintenance operations such as
// the bulk import are allowed to run.
func (c AppConfig) IsDevelopment() bool {
	return c.Env == EnvDevelopment
}

// DBType represents database type
type DBType string

const (
	DBTypePostgreSQL DBType = "postgres"
	DBTypeMemory     DBType = "memory"
)

// DBConfig holds database configuration
type DBConfig struct {
	Type     DBType
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

// SeederConfig holds settings for the spreadsheet import
type SeederConfig struct {
	SourcePath string
	// Sheet is the worksheet to read; empty means the first one.
	Sheet string
}

// DSN returns the database connection string
func (c DBConfig) DSN() string {
	if c.Type == DBTypeMemory {
		if c.Name != "" && c.Name != "worldcities" {
			return fmt.Sprintf("file:%s?mode=memory&cache=shared", c.Name)
		}
		return "file::memory:?cache=shared"
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Name, c.SSLMode,
	)
}

// IsMemory returns true if using in-memory database
func (c DBConfig) IsMemory() bool {
	return c.Type == DBTypeMemory
}

// MigrationsSource returns the golang-migrate source URL for the schema
// matching this database type, relative to dir.
func (c DBConfig) MigrationsSource(dir string) string {
	sub := "postgres"
	if c.IsMemory() {
		sub = "sqlite"
	}
	return "file://" + strings.TrimSuffix(dir, "/") + "/" + sub
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	_ = godotenv.Load()

	dbType := DBType(getEnv("DB_TYPE", "memory"))
	if dbType != DBTypePostgreSQL && dbType != DBTypeMemory {
		dbType = DBTypeMemory
	}

	env, err := parseEnvironment(getEnv("APP_ENV", string(EnvProduction)))
	if err != nil {
		return nil, err
	}

	config := &Config{
		App: AppConfig{
			Env: env,
		},
		DB: DBConfig{
			Type:     dbType,
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "worldcities"),
			Password: getEnv("DB_PASSWORD", "worldcities_password"),
			Name:     getEnv("DB_NAME", "worldcities"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Server: ServerConfig{
			Port: getEnv("APP_PORT", "8080"),
		},
		Seeder: SeederConfig{
			SourcePath: getEnv("SEEDER_SOURCE_PATH", "data/worldcities.xlsx"),
			Sheet:      os.Getenv("SEEDER_SHEET"),
		},
	}

	return config, nil
}

func parseEnvironment(value string) (Environment, error) {
	switch env := Environment(strings.ToLower(strings.TrimSpace(value))); env {
	case EnvDevelopment, EnvStaging, EnvProduction:
		return env, nil
	default:
		return "", fmt.Errorf("unknown APP_ENV %q", value)
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
