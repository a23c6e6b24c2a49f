package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server     ServerConfig
	Storage    StorageConfig
	OCR        OCRConfig
	Extraction ExtractionConfig
	Matching   MatchingConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	MaxUploadBytes int64    `mapstructure:"max_upload_bytes"`
}

// StorageConfig locates the catalog database and the asset directory
type StorageConfig struct {
	DatabasePath string `mapstructure:"database_path"`
	AssetsDir    string `mapstructure:"assets_dir"`
}

// OCRConfig holds recognition engine configuration
type OCRConfig struct {
	BaseURL        string        `mapstructure:"base_url"`
	APIKey         string        `mapstructure:"api_key"`
	RequestsPerSec float64       `mapstructure:"requests_per_sec"`
	Timeout        time.Duration `mapstructure:"timeout"`
}

// ExtractionConfig bounds the text-extraction pipeline
type ExtractionConfig struct {
	MaxDimension int           `mapstructure:"max_dimension"`
	Workers      int           `mapstructure:"workers"`
	CacheTTL     time.Duration `mapstructure:"cache_ttl"`
}

// MatchingConfig holds both entry points' thresholds and the
// injectable brand vocabulary
type MatchingConfig struct {
	FilenameMinScore      float64             `mapstructure:"filename_min_score"`
	FilenameMinSeparation float64             `mapstructure:"filename_min_separation"`
	PhotoScoreThreshold   float64             `mapstructure:"photo_score_threshold"`
	PhotoMaxSuggestions   int                 `mapstructure:"photo_max_suggestions"`
	BrandExpansions       map[string][]string `mapstructure:"brand_expansions"`
	EnableDebugLogging    bool                `mapstructure:"enable_debug_logging"`
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	v := viper.New()

	// Set config name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/shelfwatch/")

	// Environment variable settings
	v.SetEnvPrefix("SHELFWATCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Set default values
	setDefaults(v)

	// Read config file (optional - will use env vars if file doesn't exist)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found; using environment variables and defaults
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Validate configuration
	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("server.max_upload_bytes", 8<<20) // 8 MiB

	// Storage defaults
	v.SetDefault("storage.database_path", "./data/catalog.db")
	v.SetDefault("storage.assets_dir", "./data/assets")

	// OCR defaults
	v.SetDefault("ocr.base_url", "http://localhost:8089")
	v.SetDefault("ocr.api_key", "")
	v.SetDefault("ocr.requests_per_sec", 5.0)
	v.SetDefault("ocr.timeout", "15s")

	// Extraction defaults
	v.SetDefault("extraction.max_dimension", 1280)
	v.SetDefault("extraction.workers", 4)
	v.SetDefault("extraction.cache_ttl", "24h")

	// Matching defaults
	v.SetDefault("matching.filename_min_score", 5.0)
	v.SetDefault("matching.filename_min_separation", 2.0)
	v.SetDefault("matching.photo_score_threshold", 70.0)
	v.SetDefault("matching.photo_max_suggestions", 3)
	v.SetDefault("matching.enable_debug_logging", false)
}

// validate validates the configuration
func validate(config *Config) error {
	if config.OCR.BaseURL == "" {
		return fmt.Errorf("OCR engine base URL is required (set SHELFWATCH_OCR_BASE_URL)")
	}

	if config.Storage.DatabasePath == "" {
		return fmt.Errorf("catalog database path is required")
	}

	if config.Server.MaxUploadBytes <= 0 {
		return fmt.Errorf("max upload bytes must be positive, got: %d", config.Server.MaxUploadBytes)
	}

	if config.Matching.PhotoScoreThreshold < 0 || config.Matching.PhotoScoreThreshold > 100 {
		return fmt.Errorf("photo score threshold must be within [0, 100], got: %v", config.Matching.PhotoScoreThreshold)
	}

	return nil
}
