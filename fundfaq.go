// Package fundfaq answers factual questions about mutual funds from a
// precomputed fact catalog.
//
// The pipeline retrieves relevant facts with hybrid embedding+keyword
// scoring and composes an answer, paraphrased by a generation model when
// one is configured and assembled from the facts themselves otherwise.
// Every internal failure past input validation degrades to a fact-based
// answer; callers always get a response.
package fundfaq

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/navlens/fundfaq/pkg/catalog"
	"github.com/navlens/fundfaq/pkg/composer"
	"github.com/navlens/fundfaq/pkg/embedder"
	"github.com/navlens/fundfaq/pkg/index"
	"github.com/navlens/fundfaq/pkg/nlp"
	"github.com/navlens/fundfaq/pkg/retriever"
	"github.com/navlens/fundfaq/pkg/types"
)

// ErrInvalidQuery is returned when the query text is empty after
// trimming. It is the only query-path error that reaches callers.
var ErrInvalidQuery = errors.New("query text must not be empty")

// adviceRefusalAnswer is the fixed reply to requests for investment
// advice. The guard runs before retrieval so advice queries never touch
// the generation model.
const adviceRefusalAnswer = "I can only provide factual information about mutual funds. " +
	"I cannot provide investment advice, recommendations, or opinions about whether you " +
	"should buy, sell, or invest in any fund. For investment guidance, please consult a " +
	"qualified financial advisor."

const guardrailModel = "facts-only"

// advicePatterns are lowercase substrings that mark a query as an advice
// request rather than a factual one.
var advicePatterns = []string{
	"should i",
	"is it good to",
	"is it safe to",
	"is it worth",
	"recommend",
	"recommendation",
	"what should i",
	"which fund should",
	"which is better",
	"which is best",
	"advice",
	"opinion",
	"portfolio",
	"what to invest",
	"where to invest",
	"how much to invest",
	"when to buy",
	"when to sell",
}

// Config holds pipeline construction parameters.
type Config struct {
	// CatalogPath is the funds_data.json file the store loads from.
	CatalogPath string
	// TopK facts retrieved per query. Zero means the retriever default.
	TopK int
	// Hybrid score weights. Both zero means the retriever defaults.
	EmbeddingWeight float64
	KeywordWeight   float64
	// GenerationTimeout bounds each generation call. Zero means the
	// composer default.
	GenerationTimeout time.Duration
}

// snapshot is one immutable generation of the knowledge base. Queries
// read whichever snapshot is current when they start; Rebuild installs a
// complete replacement in one pointer swap.
type snapshot struct {
	store     *catalog.Store
	retriever *retriever.Retriever
}

// Pipeline is the query controller. Safe for concurrent use.
type Pipeline struct {
	cfg       Config
	embedder  embedder.Client // nil when the embedding capability is absent
	generator nlp.Client      // nil when generation is Unavailable
	composer  *composer.Composer
	logger    *slog.Logger

	current   atomic.Pointer[snapshot]
	rebuildMu sync.Mutex
}

// NewPipeline loads the catalog, builds the embedding index when an
// embedder is available and wires the retrieval and composition stages.
// Both emb and generator may be nil; the pipeline then runs keyword-only
// retrieval and fact-based answers respectively.
func NewPipeline(ctx context.Context, cfg Config, emb embedder.Client, generator nlp.Client, logger *slog.Logger) (*Pipeline, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.CatalogPath == "" {
		return nil, fmt.Errorf("catalog path is required")
	}

	var composerOpts []composer.Option
	if cfg.GenerationTimeout > 0 {
		composerOpts = append(composerOpts, composer.WithGenerationTimeout(cfg.GenerationTimeout))
	}

	p := &Pipeline{
		cfg:       cfg,
		embedder:  emb,
		generator: generator,
		composer:  composer.New(generator, logger, composerOpts...),
		logger:    logger,
	}
	if err := p.Rebuild(ctx); err != nil {
		return nil, err
	}
	return p, nil
}

// AnswerQuery answers a free-text question. Only an empty query is an
// error; every downstream failure is absorbed into a fallback answer.
func (p *Pipeline) AnswerQuery(ctx context.Context, query types.Query) (types.AnswerResponse, error) {
	query.Text = strings.TrimSpace(query.Text)
	if query.Text == "" {
		return types.AnswerResponse{}, ErrInvalidQuery
	}

	if isAdviceQuery(query.Text) {
		p.logger.Info("refusing investment advice query")
		return types.AnswerResponse{
			Answer:        adviceRefusalAnswer,
			SourceURLs:    []string{},
			Model:         guardrailModel,
			AdviceRefused: true,
		}, nil
	}

	snap := p.current.Load()
	result := snap.retriever.Retrieve(ctx, query)
	resp := p.composer.Compose(ctx, query, result)

	p.logger.Info("query answered",
		"method", string(result.Method),
		"facts", len(result.Facts),
		"confidence", result.Confidence,
		"fallback_used", resp.FallbackUsed,
	)
	return resp, nil
}

// Rebuild constructs a complete replacement store and index off to the
// side and swaps it in atomically. In-flight queries keep reading the
// snapshot they started with; a failed rebuild leaves the old snapshot
// live. An index build failure is a degradation, not a rebuild failure:
// the new snapshot serves keyword-only retrieval.
func (p *Pipeline) Rebuild(ctx context.Context) error {
	p.rebuildMu.Lock()
	defer p.rebuildMu.Unlock()

	store, err := catalog.Load(p.cfg.CatalogPath)
	if err != nil {
		return err
	}

	var searcher retriever.Searcher
	if p.embedder != nil {
		idx, err := index.Build(ctx, store.Facts(), p.embedder)
		if err != nil {
			p.logger.Warn("embedding index build failed, serving keyword-only retrieval", "error", err)
		} else {
			searcher = idx
		}
	}

	snap := &snapshot{
		store: store,
		retriever: retriever.New(store, searcher, retriever.Options{
			TopK:            p.cfg.TopK,
			EmbeddingWeight: p.cfg.EmbeddingWeight,
			KeywordWeight:   p.cfg.KeywordWeight,
		}),
	}
	p.current.Store(snap)

	stats := store.Stats()
	p.logger.Info("knowledge base loaded",
		"facts", stats.TotalFacts,
		"funds", stats.TotalFunds,
		"index_ready", searcher != nil,
	)
	return nil
}

// AvailableFunds lists the fund names in the current snapshot.
func (p *Pipeline) AvailableFunds() []string {
	return p.current.Load().store.FundNames()
}

// Status reports the health of the current snapshot.
type Status struct {
	TotalFacts           int       `json:"total_facts"`
	TotalFunds           int       `json:"total_funds"`
	LoadedAt             time.Time `json:"loaded_at"`
	IndexReady           bool      `json:"index_ready"`
	GenerationConfigured bool      `json:"generation_configured"`
}

// Status returns catalog counts plus which optional capabilities the
// pipeline resolved at startup.
func (p *Pipeline) Status() Status {
	snap := p.current.Load()
	stats := snap.store.Stats()
	return Status{
		TotalFacts:           stats.TotalFacts,
		TotalFunds:           stats.TotalFunds,
		LoadedAt:             stats.LoadedAt,
		IndexReady:           snap.retriever.HasIndex(),
		GenerationConfigured: p.generator != nil,
	}
}

// Close releases the optional model clients.
func (p *Pipeline) Close() error {
	var errs []error
	if p.embedder != nil {
		if err := p.embedder.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if p.generator != nil {
		if err := p.generator.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func isAdviceQuery(text string) bool {
	lowered := strings.ToLower(text)
	for _, pattern := range advicePatterns {
		if strings.Contains(lowered, pattern) {
			return true
		}
	}
	return false
}
