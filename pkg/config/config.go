// Package config loads application configuration from file, environment
// and defaults via viper.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	// Log configuration
	Log LogConfig `mapstructure:"log"`

	// Server configuration
	Server ServerConfig `mapstructure:"server"`

	// Catalog configuration
	Catalog CatalogConfig `mapstructure:"catalog"`

	// Retrieval configuration
	Retrieval RetrievalConfig `mapstructure:"retrieval"`

	// Generation configuration
	Generation GenerationConfig `mapstructure:"generation"`

	// Embedding configuration
	Embedding EmbeddingConfig `mapstructure:"embedding"`

	// Telemetry configuration
	Telemetry TelemetryConfig `mapstructure:"telemetry"`

	// CircuitBreaker configuration
	CircuitBreaker CircuitBreakerConfig `mapstructure:"circuit_breaker"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // gin mode: debug, release, test
}

// CatalogConfig holds the fact catalog location
type CatalogConfig struct {
	DataDir string `mapstructure:"data_dir"`
	File    string `mapstructure:"file"`
}

// Path resolves the catalog file path.
func (c CatalogConfig) Path() string {
	if filepath.IsAbs(c.File) {
		return c.File
	}
	return filepath.Join(c.DataDir, c.File)
}

// RetrievalConfig tunes the hybrid retriever
type RetrievalConfig struct {
	TopK            int     `mapstructure:"top_k"`
	EmbeddingWeight float64 `mapstructure:"embedding_weight"`
	KeywordWeight   float64 `mapstructure:"keyword_weight"`
}

// GenerationConfig holds the answer-generation model settings
type GenerationConfig struct {
	Provider       string  `mapstructure:"provider"` // gemini, openai
	Model          string  `mapstructure:"model"`
	APIKey         string  `mapstructure:"api_key"`
	BaseURL        string  `mapstructure:"base_url"`
	Temperature    float32 `mapstructure:"temperature"`
	MaxTokens      int     `mapstructure:"max_tokens"`
	TimeoutSeconds int     `mapstructure:"timeout_seconds"`
}

// EmbeddingConfig holds embedding configuration
type EmbeddingConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Model   string `mapstructure:"model"`
}

// TelemetryConfig holds telemetry configuration
type TelemetryConfig struct {
	ParquetPath string `mapstructure:"parquet_path"`
}

// CircuitBreakerConfig holds configuration for circuit breaking
type CircuitBreakerConfig struct {
	Enabled          bool    `mapstructure:"enabled"`
	MaxRequests      uint32  `mapstructure:"max_requests"`
	Interval         int     `mapstructure:"interval"` // in seconds
	Timeout          int     `mapstructure:"timeout"`  // in seconds
	ReadyToTripRatio float64 `mapstructure:"ready_to_trip_ratio"`
}

// Load loads configuration from file and environment variables
func Load() (*Config, error) {
	// Set defaults
	setDefaults()

	config := &Config{}
	if err := viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Override with environment variables if present
	overrideWithEnv(config)

	return config, nil
}

// setDefaults sets default configuration values
func setDefaults() {
	// Log defaults
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", "text")

	// Server defaults
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8000)
	viper.SetDefault("server.mode", "release")

	// Catalog defaults
	viper.SetDefault("catalog.data_dir", "data")
	viper.SetDefault("catalog.file", "funds_data.json")

	// Retrieval defaults
	viper.SetDefault("retrieval.top_k", 3)
	viper.SetDefault("retrieval.embedding_weight", 0.7)
	viper.SetDefault("retrieval.keyword_weight", 0.3)

	// Generation defaults
	viper.SetDefault("generation.provider", "gemini")
	viper.SetDefault("generation.model", "gemini-2.0-flash-exp")
	viper.SetDefault("generation.temperature", 0.3)
	viper.SetDefault("generation.max_tokens", 500)
	viper.SetDefault("generation.timeout_seconds", 15)

	// Embedding defaults
	viper.SetDefault("embedding.enabled", true)
	viper.SetDefault("embedding.model", "all-MiniLM-L6-v2")

	// Telemetry defaults
	home, err := os.UserHomeDir()
	if err == nil {
		defaultPath := fmt.Sprintf("%s/.fundfaq/telemetry", home)
		viper.SetDefault("telemetry.parquet_path", defaultPath)
	}
}

// overrideWithEnv overrides config with environment variables
func overrideWithEnv(config *Config) {
	if apiKey := os.Getenv("GEMINI_API_KEY"); apiKey != "" {
		config.Generation.APIKey = apiKey
		if config.Generation.Provider == "" {
			config.Generation.Provider = "gemini"
		}
	}
	if apiKey := os.Getenv("OPENAI_API_KEY"); apiKey != "" && config.Generation.Provider == "openai" {
		config.Generation.APIKey = apiKey
	}

	// Catalog location
	if dataDir := os.Getenv("DATA_DIR"); dataDir != "" {
		config.Catalog.DataDir = dataDir
	}

	// Server settings. PaaS providers expose the listening port via PORT.
	if host := os.Getenv("SERVER_HOST"); host != "" {
		config.Server.Host = host
	}
	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}

	// Telemetry settings
	if path := os.Getenv("TELEMETRY_PARQUET_PATH"); path != "" {
		config.Telemetry.ParquetPath = path
	}
}
