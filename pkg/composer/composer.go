// Package composer converts retrieved facts into the final answer
// envelope.
//
// When a generation capability is configured the answer is a paraphrase
// grounded in the retrieved facts; on any generation failure the composer
// falls back to the facts themselves. Either way, every emitted source
// URL is backed by a retrieved fact.
package composer

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/navlens/fundfaq/pkg/keyword"
	"github.com/navlens/fundfaq/pkg/nlp"
	"github.com/navlens/fundfaq/pkg/types"
)

// NoInformationAnswer is returned when retrieval found nothing relevant.
const NoInformationAnswer = "I don't have information about that in my knowledge base. " +
	"Please check the official fund house website for more details."

// DefaultGenerationTimeout bounds the generation call; past it the
// composer proceeds with the fact-based fallback.
const DefaultGenerationTimeout = 15 * time.Second

const fallbackModel = "fallback (facts-based)"

// Composer builds answer envelopes from retrieval results.
type Composer struct {
	generator nlp.Client // nil when the capability is Unavailable
	timeout   time.Duration
	logger    *slog.Logger
}

// Option configures a Composer.
type Option func(*Composer)

// WithGenerationTimeout overrides the bounded timeout on generation calls.
func WithGenerationTimeout(d time.Duration) Option {
	return func(c *Composer) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// New creates a Composer. generator may be nil; composition then always
// uses the fact-based fallback branch.
func New(generator nlp.Client, logger *slog.Logger, opts ...Option) *Composer {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Composer{
		generator: generator,
		timeout:   DefaultGenerationTimeout,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Compose produces the final answer for a query from its retrieval
// result. Generation failures are absorbed here: the caller always gets
// an answer, never an error.
func (c *Composer) Compose(ctx context.Context, query types.Query, result types.RetrievalResult) types.AnswerResponse {
	if result.Empty() {
		return types.AnswerResponse{
			Answer:       NoInformationAnswer,
			SourceURLs:   []string{},
			FallbackUsed: true,
			Confidence:   result.Confidence,
			Model:        fallbackModel,
		}
	}

	if c.generator != nil {
		if resp, ok := c.generate(ctx, query, result); ok {
			return resp
		}
	}
	return c.fallback(query, result)
}

// generate asks the configured capability to paraphrase the facts. Any
// failure (timeout, quota, empty output) reports ok=false and the caller
// falls through to the fact-based branch.
func (c *Composer) generate(ctx context.Context, query types.Query, result types.RetrievalResult) (types.AnswerResponse, bool) {
	genCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.generator.Chat(genCtx, []nlp.Message{
		nlp.NewSystemMessage(systemPrompt),
		nlp.NewUserMessage(buildUserPrompt(query, result)),
	})
	if err != nil {
		c.logger.Warn("generation failed, using fact-based fallback", "error", err)
		return types.AnswerResponse{}, false
	}
	answer := strings.TrimSpace(resp.Content)
	if answer == "" {
		c.logger.Warn("generation returned empty answer, using fact-based fallback")
		return types.AnswerResponse{}, false
	}

	return types.AnswerResponse{
		Answer:       answer,
		SourceURLs:   sourceURLs(result),
		FallbackUsed: false,
		Confidence:   result.Confidence,
		Model:        resp.Model,
		ContextUsed:  len(result.Facts),
	}, true
}

// fallback answers directly from the retrieved facts. When the query
// intent maps to a fact type present in the result, the answer is that
// fact's value alone; otherwise the facts are rendered verbatim in score
// order.
func (c *Composer) fallback(query types.Query, result types.RetrievalResult) types.AnswerResponse {
	answer := ""
	if ft, ok := keyword.DetectFactType(query.Text); ok {
		if best := bestOfType(result, ft); best != nil {
			answer = best.DisplayText
		}
	}
	if answer == "" {
		parts := make([]string, 0, len(result.Facts))
		for _, sf := range result.Facts {
			parts = append(parts, sf.Fact.SearchText())
		}
		answer = strings.Join(parts, ". ")
	}

	return types.AnswerResponse{
		Answer:       answer,
		SourceURLs:   sourceURLs(result),
		FallbackUsed: true,
		Confidence:   result.Confidence,
		Model:        fallbackModel,
		ContextUsed:  len(result.Facts),
	}
}

// bestOfType returns the highest-scored retrieved fact of the given type.
// Results are already ordered, so the first hit wins.
func bestOfType(result types.RetrievalResult, ft types.FactType) *types.Fact {
	for i := range result.Facts {
		if result.Facts[i].Fact.Type == ft {
			return &result.Facts[i].Fact
		}
	}
	return nil
}

// sourceURLs collects the retrieved facts' URLs, deduplicated, in
// retrieval order. Only URLs backed by a retrieved fact are ever emitted.
func sourceURLs(result types.RetrievalResult) []string {
	seen := make(map[string]struct{}, len(result.Facts))
	urls := make([]string, 0, len(result.Facts))
	for _, sf := range result.Facts {
		u := sf.Fact.SourceURL
		if _, ok := seen[u]; ok {
			continue
		}
		seen[u] = struct{}{}
		urls = append(urls, u)
	}
	return urls
}
