package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Data     DataConfig
	OCR      OCRConfig
	Drafts   DraftsConfig
	Database DatabaseConfig
	CORS     CORSConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port        string
	Env         string
	MaxUploadMB int
}

// DataConfig locates the assessment tables.
type DataConfig struct {
	Dir        string
	StudyYears []int
}

// OCRConfig tunes record card recognition.
type OCRConfig struct {
	DPI      float64
	Language string
	MaxPages int
}

// DraftsConfig toggles the petition draft archive.
type DraftsConfig struct {
	Enabled bool
}

// DatabaseConfig holds PostgreSQL connection configuration.
type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	PoolMin  int
	PoolMax  int
}

// CORSConfig holds CORS configuration.
type CORSConfig struct {
	Origins []string
}

// LoadEnvFile copies the variables in a dotenv file into the process
// environment. Variables already set win. A missing file is not an error.
func LoadEnvFile(path string) error {
	err := godotenv.Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// Load reads configuration from environment variables.
// It uses viper to read values and provides sensible defaults for development.
func Load() (*Config, error) {
	v := viper.New()

	// Set defaults for development
	v.SetDefault("PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("MAX_UPLOAD_MB", 20)
	v.SetDefault("DATA_DIR", "analysis")
	v.SetDefault("STUDY_YEARS", "2024,2025,2026")
	v.SetDefault("OCR_DPI", 300)
	v.SetDefault("OCR_LANGUAGE", "eng")
	v.SetDefault("OCR_MAX_PAGES", 2)
	v.SetDefault("DRAFTS_ENABLED", false)
	v.SetDefault("DB_HOST", "host.docker.internal")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_NAME", "taxappeal")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_POOL_MIN", 2)
	v.SetDefault("DB_POOL_MAX", 10)
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000,http://localhost:3001")

	// Bind environment variables
	v.AutomaticEnv()

	years, err := parseYears(v.GetString("STUDY_YEARS"))
	if err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	// Build configuration
	cfg := &Config{
		Server: ServerConfig{
			Port:        v.GetString("PORT"),
			Env:         v.GetString("ENV"),
			MaxUploadMB: v.GetInt("MAX_UPLOAD_MB"),
		},
		Data: DataConfig{
			Dir:        v.GetString("DATA_DIR"),
			StudyYears: years,
		},
		OCR: OCRConfig{
			DPI:      v.GetFloat64("OCR_DPI"),
			Language: v.GetString("OCR_LANGUAGE"),
			MaxPages: v.GetInt("OCR_MAX_PAGES"),
		},
		Drafts: DraftsConfig{
			Enabled: v.GetBool("DRAFTS_ENABLED"),
		},
		Database: DatabaseConfig{
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			Name:     v.GetString("DB_NAME"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			PoolMin:  v.GetInt("DB_POOL_MIN"),
			PoolMax:  v.GetInt("DB_POOL_MAX"),
		},
		CORS: CORSConfig{
			Origins: parseOrigins(v.GetString("CORS_ORIGINS")),
		},
	}

	// Validate required fields
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that required configuration is present and valid.
func (c *Config) Validate() error {
	// Validate server config
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}
	if c.Server.MaxUploadMB < 1 {
		return fmt.Errorf("MAX_UPLOAD_MB must be at least 1")
	}

	// Validate data config
	if c.Data.Dir == "" {
		return fmt.Errorf("DATA_DIR is required")
	}
	if len(c.Data.StudyYears) == 0 {
		return fmt.Errorf("STUDY_YEARS is required")
	}

	// Validate OCR config
	if c.OCR.DPI < 72 {
		return fmt.Errorf("OCR_DPI must be at least 72")
	}
	if c.OCR.Language == "" {
		return fmt.Errorf("OCR_LANGUAGE is required")
	}
	if c.OCR.MaxPages < 1 {
		return fmt.Errorf("OCR_MAX_PAGES must be at least 1")
	}

	// The database is only needed for the draft archive
	if c.Drafts.Enabled {
		if err := c.Database.validate(); err != nil {
			return err
		}
	}

	// Validate CORS config
	if len(c.CORS.Origins) == 0 {
		return fmt.Errorf("CORS_ORIGINS is required")
	}

	return nil
}

func (d DatabaseConfig) validate() error {
	if d.Host == "" {
		return fmt.Errorf("DB_HOST is required")
	}
	if d.Port == "" {
		return fmt.Errorf("DB_PORT is required")
	}
	if d.Name == "" {
		return fmt.Errorf("DB_NAME is required")
	}
	if d.User == "" {
		return fmt.Errorf("DB_USER is required")
	}
	if d.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required when DRAFTS_ENABLED is set")
	}
	if d.PoolMin < 0 {
		return fmt.Errorf("DB_POOL_MIN must be non-negative")
	}
	if d.PoolMax < 1 {
		return fmt.Errorf("DB_POOL_MAX must be at least 1")
	}
	if d.PoolMin > d.PoolMax {
		return fmt.Errorf("DB_POOL_MIN must be less than or equal to DB_POOL_MAX")
	}
	return nil
}

// MaxUploadBytes is the record card upload limit in bytes.
func (c *Config) MaxUploadBytes() int64 {
	return int64(c.Server.MaxUploadMB) << 20
}

// parseOrigins splits a comma-separated string of origins into a slice.
func parseOrigins(origins string) []string {
	return splitList(origins)
}

// parseYears parses a comma-separated list of study years.
func parseYears(s string) ([]int, error) {
	parts := splitList(s)
	years := make([]int, 0, len(parts))
	for _, p := range parts {
		y, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("STUDY_YEARS contains an invalid year %q", p)
		}
		if y < 1900 || y > 2999 {
			return nil, fmt.Errorf("STUDY_YEARS year %d is out of range", y)
		}
		years = append(years, y)
	}
	return years, nil
}

func splitList(s string) []string {
	if s == "" {
		return []string{}
	}

	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
