package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_WithDefaults(t *testing.T) {
	// Clear all environment variables
	clearConfigEnvVars()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	// Verify defaults
	if cfg.Server.Port != "8080" {
		t.Errorf("Expected port 8080, got %s", cfg.Server.Port)
	}
	if cfg.Server.Env != "development" {
		t.Errorf("Expected env development, got %s", cfg.Server.Env)
	}
	if cfg.Server.MaxUploadMB != 20 {
		t.Errorf("Expected max upload 20, got %d", cfg.Server.MaxUploadMB)
	}
	if cfg.Data.Dir != "analysis" {
		t.Errorf("Expected data dir analysis, got %s", cfg.Data.Dir)
	}
	if len(cfg.Data.StudyYears) != 3 || cfg.Data.StudyYears[0] != 2024 || cfg.Data.StudyYears[2] != 2026 {
		t.Errorf("Expected study years 2024-2026, got %v", cfg.Data.StudyYears)
	}
	if cfg.OCR.DPI != 300 {
		t.Errorf("Expected OCR DPI 300, got %v", cfg.OCR.DPI)
	}
	if cfg.OCR.Language != "eng" {
		t.Errorf("Expected OCR language eng, got %s", cfg.OCR.Language)
	}
	if cfg.OCR.MaxPages != 2 {
		t.Errorf("Expected OCR max pages 2, got %d", cfg.OCR.MaxPages)
	}
	if cfg.Drafts.Enabled {
		t.Error("Expected drafts disabled by default")
	}
	if cfg.Database.Name != "taxappeal" {
		t.Errorf("Expected db name taxappeal, got %s", cfg.Database.Name)
	}
	if cfg.Database.PoolMin != 2 {
		t.Errorf("Expected pool min 2, got %d", cfg.Database.PoolMin)
	}
	if cfg.Database.PoolMax != 10 {
		t.Errorf("Expected pool max 10, got %d", cfg.Database.PoolMax)
	}
	if len(cfg.CORS.Origins) != 2 {
		t.Errorf("Expected 2 CORS origins, got %d", len(cfg.CORS.Origins))
	}
	if cfg.MaxUploadBytes() != 20<<20 {
		t.Errorf("Expected max upload bytes %d, got %d", 20<<20, cfg.MaxUploadBytes())
	}
}

func TestLoad_WithEnvironmentVariables(t *testing.T) {
	// Set all environment variables
	os.Setenv("PORT", "9090")
	os.Setenv("ENV", "production")
	os.Setenv("MAX_UPLOAD_MB", "5")
	os.Setenv("DATA_DIR", "/srv/assessments")
	os.Setenv("STUDY_YEARS", "2025, 2026")
	os.Setenv("OCR_DPI", "200")
	os.Setenv("OCR_LANGUAGE", "eng+osd")
	os.Setenv("OCR_MAX_PAGES", "3")
	os.Setenv("DRAFTS_ENABLED", "true")
	os.Setenv("DB_HOST", "localhost")
	os.Setenv("DB_PORT", "5433")
	os.Setenv("DB_NAME", "testdb")
	os.Setenv("DB_USER", "testuser")
	os.Setenv("DB_PASSWORD", "testpass")
	os.Setenv("DB_POOL_MIN", "5")
	os.Setenv("DB_POOL_MAX", "20")
	os.Setenv("CORS_ORIGINS", "http://example.com,https://app.example.com")
	defer clearConfigEnvVars()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	// Verify all values from environment
	if cfg.Server.Port != "9090" {
		t.Errorf("Expected port 9090, got %s", cfg.Server.Port)
	}
	if cfg.Server.Env != "production" {
		t.Errorf("Expected env production, got %s", cfg.Server.Env)
	}
	if cfg.Server.MaxUploadMB != 5 {
		t.Errorf("Expected max upload 5, got %d", cfg.Server.MaxUploadMB)
	}
	if cfg.Data.Dir != "/srv/assessments" {
		t.Errorf("Expected data dir /srv/assessments, got %s", cfg.Data.Dir)
	}
	if len(cfg.Data.StudyYears) != 2 || cfg.Data.StudyYears[0] != 2025 {
		t.Errorf("Expected study years [2025 2026], got %v", cfg.Data.StudyYears)
	}
	if cfg.OCR.DPI != 200 {
		t.Errorf("Expected OCR DPI 200, got %v", cfg.OCR.DPI)
	}
	if cfg.OCR.Language != "eng+osd" {
		t.Errorf("Expected OCR language eng+osd, got %s", cfg.OCR.Language)
	}
	if cfg.OCR.MaxPages != 3 {
		t.Errorf("Expected OCR max pages 3, got %d", cfg.OCR.MaxPages)
	}
	if !cfg.Drafts.Enabled {
		t.Error("Expected drafts enabled")
	}
	if cfg.Database.Host != "localhost" {
		t.Errorf("Expected host localhost, got %s", cfg.Database.Host)
	}
	if cfg.Database.Password != "testpass" {
		t.Errorf("Expected password testpass, got %s", cfg.Database.Password)
	}
	if cfg.Database.PoolMax != 20 {
		t.Errorf("Expected pool max 20, got %d", cfg.Database.PoolMax)
	}
	if cfg.CORS.Origins[0] != "http://example.com" {
		t.Errorf("Expected first origin http://example.com, got %s", cfg.CORS.Origins[0])
	}
}

func TestLoad_DraftsRequirePassword(t *testing.T) {
	clearConfigEnvVars()
	os.Setenv("DRAFTS_ENABLED", "true")
	defer clearConfigEnvVars()

	_, err := Load()
	if err == nil {
		t.Error("Expected error when DRAFTS_ENABLED is set and DB_PASSWORD is missing")
	}
}

func TestLoad_InvalidStudyYears(t *testing.T) {
	clearConfigEnvVars()
	os.Setenv("STUDY_YEARS", "2024,twenty")
	defer clearConfigEnvVars()

	_, err := Load()
	if err == nil {
		t.Error("Expected error for a non-numeric study year")
	}
}

func validConfig() *Config {
	return &Config{
		Server: ServerConfig{Port: "8080", Env: "development", MaxUploadMB: 20},
		Data:   DataConfig{Dir: "analysis", StudyYears: []int{2024, 2025, 2026}},
		OCR:    OCRConfig{DPI: 300, Language: "eng", MaxPages: 2},
		Drafts: DraftsConfig{Enabled: true},
		Database: DatabaseConfig{
			Host: "localhost", Port: "5432", Name: "taxappeal",
			User: "postgres", Password: "postgres", PoolMin: 2, PoolMax: 10,
		},
		CORS: CORSConfig{Origins: []string{"http://localhost:3000"}},
	}
}

func TestValidate_InvalidPoolSizes(t *testing.T) {
	tests := []struct {
		name    string
		poolMin int
		poolMax int
		wantErr bool
	}{
		{
			name:    "negative pool min",
			poolMin: -1,
			poolMax: 10,
			wantErr: true,
		},
		{
			name:    "zero pool max",
			poolMin: 0,
			poolMax: 0,
			wantErr: true,
		},
		{
			name:    "pool min greater than max",
			poolMin: 15,
			poolMax: 10,
			wantErr: true,
		},
		{
			name:    "valid pool sizes",
			poolMin: 2,
			poolMax: 10,
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			cfg.Database.PoolMin = tt.poolMin
			cfg.Database.PoolMax = tt.poolMax

			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidate_DatabaseIgnoredWithoutDrafts(t *testing.T) {
	cfg := validConfig()
	cfg.Drafts.Enabled = false
	cfg.Database = DatabaseConfig{}

	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error = %v, want nil", err)
	}
}

func TestValidate_MissingRequiredFields(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{name: "missing port", mutate: func(c *Config) { c.Server.Port = "" }},
		{name: "zero upload limit", mutate: func(c *Config) { c.Server.MaxUploadMB = 0 }},
		{name: "missing data dir", mutate: func(c *Config) { c.Data.Dir = "" }},
		{name: "no study years", mutate: func(c *Config) { c.Data.StudyYears = nil }},
		{name: "low OCR DPI", mutate: func(c *Config) { c.OCR.DPI = 50 }},
		{name: "missing OCR language", mutate: func(c *Config) { c.OCR.Language = "" }},
		{name: "zero OCR pages", mutate: func(c *Config) { c.OCR.MaxPages = 0 }},
		{name: "missing db host", mutate: func(c *Config) { c.Database.Host = "" }},
		{name: "missing db password", mutate: func(c *Config) { c.Database.Password = "" }},
		{name: "missing CORS origins", mutate: func(c *Config) { c.CORS.Origins = []string{} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if err == nil {
				t.Error("Expected validation error but got none")
			}
		})
	}
}

func TestParseOrigins(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		expect []string
	}{
		{
			name:   "single origin",
			input:  "http://localhost:3000",
			expect: []string{"http://localhost:3000"},
		},
		{
			name:   "multiple origins",
			input:  "http://localhost:3000,http://localhost:3001",
			expect: []string{"http://localhost:3000", "http://localhost:3001"},
		},
		{
			name:   "origins with spaces",
			input:  " http://localhost:3000 , http://localhost:3001 ",
			expect: []string{"http://localhost:3000", "http://localhost:3001"},
		},
		{
			name:   "empty string",
			input:  "",
			expect: []string{},
		},
		{
			name:   "only commas",
			input:  ",,,",
			expect: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := parseOrigins(tt.input)
			if len(result) != len(tt.expect) {
				t.Errorf("Expected %d origins, got %d", len(tt.expect), len(result))
				return
			}
			for i, origin := range result {
				if origin != tt.expect[i] {
					t.Errorf("Expected origin %s at index %d, got %s", tt.expect[i], i, origin)
				}
			}
		})
	}
}

func TestParseYears(t *testing.T) {
	years, err := parseYears(" 2024,2025 ,,2026")
	if err != nil {
		t.Fatalf("parseYears() failed: %v", err)
	}
	if len(years) != 3 || years[1] != 2025 {
		t.Errorf("Expected [2024 2025 2026], got %v", years)
	}

	if _, err := parseYears("1492"); err == nil {
		t.Error("Expected error for an out of range year")
	}
}

func TestLoadEnvFile(t *testing.T) {
	clearConfigEnvVars()
	defer clearConfigEnvVars()

	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("DATA_DIR=/srv/study\nPORT=9000\n"), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	os.Setenv("PORT", "7000")

	if err := LoadEnvFile(path); err != nil {
		t.Fatalf("LoadEnvFile() failed: %v", err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Data.Dir != "/srv/study" {
		t.Errorf("Expected DATA_DIR from env file, got %s", cfg.Data.Dir)
	}
	if cfg.Server.Port != "7000" {
		t.Errorf("Expected the process environment to win, got PORT %s", cfg.Server.Port)
	}
}

func TestLoadEnvFile_Missing(t *testing.T) {
	if err := LoadEnvFile(filepath.Join(t.TempDir(), "absent.env")); err != nil {
		t.Errorf("Expected a missing env file to be ignored, got %v", err)
	}
}

// Helper function to clear all config-related environment variables
func clearConfigEnvVars() {
	for _, key := range []string{
		"PORT", "ENV", "MAX_UPLOAD_MB",
		"DATA_DIR", "STUDY_YEARS",
		"OCR_DPI", "OCR_LANGUAGE", "OCR_MAX_PAGES",
		"DRAFTS_ENABLED",
		"DB_HOST", "DB_PORT", "DB_NAME", "DB_USER", "DB_PASSWORD", "DB_POOL_MIN", "DB_POOL_MAX",
		"CORS_ORIGINS",
	} {
		os.Unsetenv(key)
	}
}
