package fundfaq

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/navlens/fundfaq"
	"github.com/navlens/fundfaq/pkg/config"
	"github.com/navlens/fundfaq/pkg/embedder"
	fundfaqLogger "github.com/navlens/fundfaq/pkg/logger"
	"github.com/navlens/fundfaq/pkg/nlp"
	"github.com/navlens/fundfaq/pkg/types"
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a one-shot question against the fact catalog",
	Long: `Ask answers a single question from the command line and prints the
answer with its source URLs. Useful for checking the catalog without
starting the HTTP server.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

var (
	askFundName string
	askNoEmbed  bool
	askDataDir  string
)

func init() {
	rootCmd.AddCommand(askCmd)

	askCmd.Flags().StringVar(&askFundName, "fund", "", "Fund name to narrow the search")
	askCmd.Flags().BoolVar(&askNoEmbed, "no-embedding", false, "Skip the embedding index, keyword retrieval only")
	askCmd.Flags().StringVar(&askDataDir, "data-dir", "", "Directory holding the fact catalog")
}

func runAsk(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if askDataDir != "" {
		cfg.Catalog.DataDir = askDataDir
	}

	logger := fundfaqLogger.NewDefaultLogger(fundfaqLogger.ParseLevel(cfg.Log.Level))

	// The one-shot path skips the embedding model unless asked for; a
	// single query does not amortize the model load time.
	var embedderClient embedder.Client
	if cfg.Embedding.Enabled && !askNoEmbed {
		client, err := embedder.NewEmbedEverythingClient(&embedder.Config{Model: cfg.Embedding.Model})
		if err != nil {
			logger.Warn("embedding model unavailable, using keyword retrieval", "error", err)
		} else {
			embedderClient = client
		}
	}

	generationClient, err := nlp.NewClient(&nlp.Config{
		Provider:    cfg.Generation.Provider,
		Model:       cfg.Generation.Model,
		APIKey:      cfg.Generation.APIKey,
		BaseURL:     cfg.Generation.BaseURL,
		Temperature: cfg.Generation.Temperature,
		MaxTokens:   cfg.Generation.MaxTokens,
	}, nlp.CircuitBreakerConfig{}, logger)
	if err != nil {
		return fmt.Errorf("failed to create generation client: %w", err)
	}

	pipeline, err := fundfaq.NewPipeline(context.Background(), fundfaq.Config{
		CatalogPath:       cfg.Catalog.Path(),
		TopK:              cfg.Retrieval.TopK,
		EmbeddingWeight:   cfg.Retrieval.EmbeddingWeight,
		KeywordWeight:     cfg.Retrieval.KeywordWeight,
		GenerationTimeout: time.Duration(cfg.Generation.TimeoutSeconds) * time.Second,
	}, embedderClient, generationClient, logger)
	if err != nil {
		return err
	}
	defer pipeline.Close()

	resp, err := pipeline.AnswerQuery(context.Background(), types.Query{
		Text:     strings.Join(args, " "),
		FundName: askFundName,
	})
	if err != nil {
		return err
	}

	fmt.Println(resp.Answer)
	if len(resp.SourceURLs) > 0 {
		fmt.Println()
		fmt.Println("Sources:")
		for _, u := range resp.SourceURLs {
			fmt.Printf("  %s\n", u)
		}
	}
	if resp.FallbackUsed {
		fmt.Printf("\n(answered from catalog facts, confidence %.2f)\n", resp.Confidence)
	}
	return nil
}
