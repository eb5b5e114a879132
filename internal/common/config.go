package common

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	LogLevel string
	Database DatabaseConfig
	OCR      OCRConfig
	DocIntel DocIntelConfig
	Batch    BatchConfig
	Workbook WorkbookConfig
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	DSN             string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
	DialTimeout     time.Duration
}

// OCRConfig holds configuration for the local pdftotext/tesseract extractor
type OCRConfig struct {
	Pdftotext        string
	Pdftoppm         string
	Tesseract        string
	TesseractLang    string
	DPI              int
	ArtifactCacheDir string
}

// DocIntelConfig holds configuration for the Azure Document Intelligence extractor
type DocIntelConfig struct {
	Endpoint     string
	Key          string
	ModelID      string
	APIVersion   string
	PollInterval time.Duration
	Timeout      time.Duration
}

// Enabled reports whether remote extraction is configured.
func (c DocIntelConfig) Enabled() bool {
	return c.Endpoint != "" && c.Key != ""
}

// BatchConfig holds batch runner configuration
type BatchConfig struct {
	Workers         int
	DocumentTimeout time.Duration
}

// WorkbookConfig holds spreadsheet output configuration
type WorkbookConfig struct {
	LayoutPath   string
	TemplatePath string
	OutputPath   string
}

// LoadConfig loads .env (when present) and then reads configuration from environment variables
func LoadConfig() *Config {
	// a missing .env is fine: deployments pass real environment variables
	_ = godotenv.Load()

	return &Config{
		LogLevel: getEnv("LOG_LEVEL", "info"),
		Database: DatabaseConfig{
			DSN:             getEnv("DB_URL", ""),
			MaxConns:        getEnvAsInt32("DB_MAX_CONNS", 10),
			MinConns:        getEnvAsInt32("DB_MIN_CONNS", 1),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", 30*time.Minute),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", 5*time.Minute),
			DialTimeout:     getEnvAsDuration("DB_DIAL_TIMEOUT", 3*time.Second),
		},
		OCR: OCRConfig{
			Pdftotext:        getEnv("PDFTOTEXT_BIN", "pdftotext"),
			Pdftoppm:         getEnv("PDFTOPPM_BIN", "pdftoppm"),
			Tesseract:        getEnv("TESSERACT_BIN", "tesseract"),
			TesseractLang:    getEnv("TESSERACT_LANG", "jpn"),
			DPI:              getEnvAsInt("OCR_DPI", 300),
			ArtifactCacheDir: getEnv("ARTIFACT_CACHE_DIR", "./tmp"),
		},
		DocIntel: DocIntelConfig{
			Endpoint:     getEnv("AZURE_FORMREC_ENDPOINT", ""),
			Key:          getEnv("AZURE_FORMREC_KEY", ""),
			ModelID:      getEnv("FORM_RECOGNIZER_MODEL_ID", "prebuilt-invoice"),
			APIVersion:   getEnv("FORM_RECOGNIZER_API_VERSION", "2023-07-31"),
			PollInterval: getEnvAsDuration("FORM_RECOGNIZER_POLL_INTERVAL", time.Second),
			Timeout:      getEnvAsDuration("FORM_RECOGNIZER_TIMEOUT", 2*time.Minute),
		},
		Batch: BatchConfig{
			Workers:         getEnvAsInt("BATCH_WORKERS", 4),
			DocumentTimeout: getEnvAsDuration("BATCH_DOCUMENT_TIMEOUT", 3*time.Minute),
		},
		Workbook: WorkbookConfig{
			LayoutPath:   getEnv("WORKBOOK_LAYOUT", ""),
			TemplatePath: getEnv("WORKBOOK_TEMPLATE", "template_output.xlsx"),
			OutputPath:   getEnv("WORKBOOK_OUTPUT", "output_combined.xlsx"),
		},
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsInt32(key string, defaultValue int32) int32 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 32); err == nil {
			return int32(intVal)
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	if c.Batch.Workers < 1 {
		return NewAppError("CONFIG_ERROR", "BATCH_WORKERS must be at least 1", ErrInvalidInput)
	}
	if c.Batch.DocumentTimeout <= 0 {
		return NewAppError("CONFIG_ERROR", "BATCH_DOCUMENT_TIMEOUT must be positive", ErrInvalidInput)
	}
	if (c.DocIntel.Endpoint == "") != (c.DocIntel.Key == "") {
		return NewAppError("CONFIG_ERROR", "AZURE_FORMREC_ENDPOINT and AZURE_FORMREC_KEY must be set together", ErrInvalidInput)
	}
	if c.DocIntel.Enabled() && c.DocIntel.PollInterval <= 0 {
		return NewAppError("CONFIG_ERROR", "FORM_RECOGNIZER_POLL_INTERVAL must be positive", ErrInvalidInput)
	}
	return nil
}

// SlogLevel maps LogLevel onto a slog level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
