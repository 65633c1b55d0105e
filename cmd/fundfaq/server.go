package fundfaq

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/navlens/fundfaq"
	"github.com/navlens/fundfaq/pkg/config"
	"github.com/navlens/fundfaq/pkg/embedder"
	fundfaqLogger "github.com/navlens/fundfaq/pkg/logger"
	"github.com/navlens/fundfaq/pkg/nlp"
	"github.com/navlens/fundfaq/pkg/server"
	"github.com/navlens/fundfaq/pkg/telemetry"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the FundFAQ HTTP server",
	Long: `Start the FundFAQ HTTP server to answer mutual fund questions over REST.

The server provides endpoints for:
- Answering questions (POST /query, GET /query)
- Listing funds in the knowledge base (GET /funds)
- Rebuilding the retrieval index (POST /rebuild-index)
- Health checks (GET /health)

Configuration can be provided through config files, environment variables, or command-line flags.`,
	RunE: runServer,
}

var (
	serverHost string
	serverPort int
	serverMode string
)

func init() {
	rootCmd.AddCommand(serverCmd)

	// Server-specific flags
	serverCmd.Flags().StringVar(&serverHost, "host", "0.0.0.0", "Server host")
	serverCmd.Flags().IntVar(&serverPort, "port", 8000, "Server port")
	serverCmd.Flags().StringVar(&serverMode, "mode", "release", "Server mode (debug, release, test)")

	// Catalog flags
	serverCmd.Flags().String("data-dir", "data", "Directory holding the fact catalog")
	serverCmd.Flags().String("catalog-file", "funds_data.json", "Catalog file name")

	// Retrieval flags
	serverCmd.Flags().Int("top-k", 3, "Facts retrieved per query")
	serverCmd.Flags().Float64("embedding-weight", 0.7, "Hybrid score weight for embedding similarity")
	serverCmd.Flags().Float64("keyword-weight", 0.3, "Hybrid score weight for keyword overlap")

	// Generation flags
	serverCmd.Flags().String("generation-provider", "gemini", "Generation provider (gemini, openai)")
	serverCmd.Flags().String("generation-model", "", "Generation model")
	serverCmd.Flags().String("generation-api-key", "", "Generation API key")
	serverCmd.Flags().String("generation-base-url", "", "Generation base URL")

	// Embedding flags
	serverCmd.Flags().Bool("embedding-enabled", true, "Enable the local embedding index")
	serverCmd.Flags().String("embedding-model", "", "Embedding model")

	// Telemetry flags
	serverCmd.Flags().String("telemetry-parquet-path", "", "Path to directory for telemetry (warnings and errors)")
}

func runServer(cmd *cobra.Command, args []string) error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Override config with command-line flags
	overrideConfigWithFlags(cmd, cfg)

	// Validate configuration
	if err := validateServerConfig(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	// Initialize pipeline
	fmt.Println("Initializing FundFAQ...")
	pipeline, parquetHandler, err := initializePipeline(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize FundFAQ: %w", err)
	}
	defer pipeline.Close()

	// Create and setup server
	srv := server.New(cfg, pipeline)
	srv.Setup()

	// Handle signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Start server in a goroutine
	serverErrChan := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil {
			serverErrChan <- err
		}
	}()

	// Wait for shutdown signal or server error
	select {
	case err := <-serverErrChan:
		return fmt.Errorf("server error: %w", err)
	case sig := <-sigChan:
		fmt.Printf("\nReceived signal: %v\n", sig)

		// Create shutdown context with timeout
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		// Shutdown server
		if err := srv.Stop(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}

		if parquetHandler != nil {
			if err := parquetHandler.Flush(); err != nil {
				fmt.Printf("Warning: failed to flush telemetry: %v\n", err)
			}
		}

		fmt.Println("Server stopped gracefully")
		return nil
	}
}

func overrideConfigWithFlags(cmd *cobra.Command, cfg *config.Config) {
	// Server flags
	if cmd.Flags().Changed("host") {
		cfg.Server.Host = serverHost
	}
	if cmd.Flags().Changed("port") {
		cfg.Server.Port = serverPort
	}
	if cmd.Flags().Changed("mode") {
		cfg.Server.Mode = serverMode
	}

	// Catalog flags
	if cmd.Flags().Changed("data-dir") {
		cfg.Catalog.DataDir, _ = cmd.Flags().GetString("data-dir")
	}
	if cmd.Flags().Changed("catalog-file") {
		cfg.Catalog.File, _ = cmd.Flags().GetString("catalog-file")
	}

	// Retrieval flags
	if cmd.Flags().Changed("top-k") {
		cfg.Retrieval.TopK, _ = cmd.Flags().GetInt("top-k")
	}
	if cmd.Flags().Changed("embedding-weight") {
		cfg.Retrieval.EmbeddingWeight, _ = cmd.Flags().GetFloat64("embedding-weight")
	}
	if cmd.Flags().Changed("keyword-weight") {
		cfg.Retrieval.KeywordWeight, _ = cmd.Flags().GetFloat64("keyword-weight")
	}

	// Generation flags
	if cmd.Flags().Changed("generation-provider") {
		cfg.Generation.Provider, _ = cmd.Flags().GetString("generation-provider")
	}
	if cmd.Flags().Changed("generation-model") {
		cfg.Generation.Model, _ = cmd.Flags().GetString("generation-model")
	}
	if cmd.Flags().Changed("generation-api-key") {
		cfg.Generation.APIKey, _ = cmd.Flags().GetString("generation-api-key")
	}
	if cmd.Flags().Changed("generation-base-url") {
		cfg.Generation.BaseURL, _ = cmd.Flags().GetString("generation-base-url")
	}

	// Embedding flags
	if cmd.Flags().Changed("embedding-enabled") {
		cfg.Embedding.Enabled, _ = cmd.Flags().GetBool("embedding-enabled")
	}
	if cmd.Flags().Changed("embedding-model") {
		cfg.Embedding.Model, _ = cmd.Flags().GetString("embedding-model")
	}

	// Telemetry flags
	if cmd.Flags().Changed("telemetry-parquet-path") {
		cfg.Telemetry.ParquetPath, _ = cmd.Flags().GetString("telemetry-parquet-path")
	}
}

func validateServerConfig(cfg *config.Config) error {
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", cfg.Server.Port)
	}
	if cfg.Catalog.Path() == "" {
		return fmt.Errorf("catalog path is required")
	}
	if cfg.Retrieval.EmbeddingWeight < 0 || cfg.Retrieval.KeywordWeight < 0 {
		return fmt.Errorf("retrieval weights must be non-negative")
	}
	return nil
}

// initializePipeline wires the pipeline from configuration. Both the
// embedding and generation capabilities are optional; their absence is
// logged and the pipeline degrades rather than failing to start.
func initializePipeline(cfg *config.Config) (*fundfaq.Pipeline, *telemetry.ParquetHandler, error) {
	logger := fundfaqLogger.NewDefaultLogger(fundfaqLogger.ParseLevel(cfg.Log.Level))

	// Telemetry using Parquet
	var parquetHandler *telemetry.ParquetHandler
	if cfg.Telemetry.ParquetPath != "" {
		colorHandler := fundfaqLogger.NewColorHandler(os.Stderr, fundfaqLogger.ParseLevel(cfg.Log.Level))
		h, err := telemetry.NewParquetHandler(colorHandler, cfg.Telemetry.ParquetPath)
		if err != nil {
			fmt.Printf("Warning: Failed to initialize telemetry: %v\n", err)
		} else {
			parquetHandler = h
			logger = slog.New(parquetHandler)
			fmt.Printf("Telemetry enabled at: %s\n", cfg.Telemetry.ParquetPath)
		}
	}

	// Initialize embedder client
	var embedderClient embedder.Client
	if cfg.Embedding.Enabled {
		client, err := embedder.NewEmbedEverythingClient(&embedder.Config{Model: cfg.Embedding.Model})
		if err != nil {
			logger.Warn("embedding model unavailable, serving keyword-only retrieval", "error", err)
		} else {
			embedderClient = client
		}
	}

	// Initialize generation client
	generationClient, err := nlp.NewClient(&nlp.Config{
		Provider:    cfg.Generation.Provider,
		Model:       cfg.Generation.Model,
		APIKey:      cfg.Generation.APIKey,
		BaseURL:     cfg.Generation.BaseURL,
		Temperature: cfg.Generation.Temperature,
		MaxTokens:   cfg.Generation.MaxTokens,
	}, nlp.CircuitBreakerConfig{
		Enabled:          cfg.CircuitBreaker.Enabled,
		MaxRequests:      cfg.CircuitBreaker.MaxRequests,
		Interval:         cfg.CircuitBreaker.Interval,
		Timeout:          cfg.CircuitBreaker.Timeout,
		ReadyToTripRatio: cfg.CircuitBreaker.ReadyToTripRatio,
	}, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create generation client: %w", err)
	}
	if generationClient == nil {
		logger.Info("generation not configured, serving fact-based answers")
	}

	pipeline, err := fundfaq.NewPipeline(context.Background(), fundfaq.Config{
		CatalogPath:       cfg.Catalog.Path(),
		TopK:              cfg.Retrieval.TopK,
		EmbeddingWeight:   cfg.Retrieval.EmbeddingWeight,
		KeywordWeight:     cfg.Retrieval.KeywordWeight,
		GenerationTimeout: time.Duration(cfg.Generation.TimeoutSeconds) * time.Second,
	}, embedderClient, generationClient, logger)
	if err != nil {
		return nil, nil, err
	}

	fmt.Printf("FundFAQ initialized with catalog: %s\n", cfg.Catalog.Path())
	return pipeline, parquetHandler, nil
}
