// Package retriever turns a free-text query into a ranked set of fund
// facts with a confidence score.
//
// Scoring is hybrid: embedding similarity weighted against lexical
// overlap. The retriever is the single fallback decision point in the
// system: when the embedding index reports itself unavailable, the same
// candidate set is re-ranked by keyword score alone and the caller never
// sees the failure.
package retriever

import (
	"context"
	"errors"
	"sort"

	"github.com/navlens/fundfaq/pkg/catalog"
	"github.com/navlens/fundfaq/pkg/index"
	"github.com/navlens/fundfaq/pkg/keyword"
	"github.com/navlens/fundfaq/pkg/types"
)

// DefaultTopK is the number of facts retrieved per query.
const DefaultTopK = 3

// Default hybrid weights. Exposed as options because the split is a
// tuning choice, not a requirement.
const (
	DefaultEmbeddingWeight = 0.7
	DefaultKeywordWeight   = 0.3
)

// Searcher is the part of the embedding index the retriever depends on.
type Searcher interface {
	Search(ctx context.Context, queryText string, topK int) ([]index.Match, error)
}

// Options tunes the hybrid scorer.
type Options struct {
	TopK            int
	EmbeddingWeight float64
	KeywordWeight   float64
}

func (o Options) withDefaults() Options {
	if o.TopK <= 0 {
		o.TopK = DefaultTopK
	}
	if o.EmbeddingWeight <= 0 && o.KeywordWeight <= 0 {
		o.EmbeddingWeight = DefaultEmbeddingWeight
		o.KeywordWeight = DefaultKeywordWeight
	}
	return o
}

// Retriever ranks catalog facts against queries.
type Retriever struct {
	store   *catalog.Store
	index   Searcher
	matcher *keyword.Matcher
	opts    Options
}

// New creates a retriever over the given store and embedding index. The
// index may be nil; retrieval then always runs the keyword path.
func New(store *catalog.Store, idx Searcher, opts Options) *Retriever {
	return &Retriever{
		store:   store,
		index:   idx,
		matcher: keyword.NewMatcher(),
		opts:    opts.withDefaults(),
	}
}

// HasIndex reports whether an embedding index backs this retriever.
func (r *Retriever) HasIndex() bool { return r.index != nil }

// Retrieve ranks facts relevant to the query and returns the top-k with a
// confidence score. An empty candidate set yields an empty result with
// confidence 0; that is a reportable outcome, not an error.
func (r *Retriever) Retrieve(ctx context.Context, query types.Query) types.RetrievalResult {
	candidates := r.store.FactsForFund(query.FundName)
	if len(candidates) == 0 {
		return types.RetrievalResult{Method: types.MethodKeyword}
	}

	// Keyword scores are computed regardless: they are the tie-break
	// sanity weight in hybrid mode and the whole score in fallback mode.
	keywordScores := make([]float64, len(candidates))
	for i := range candidates {
		keywordScores[i] = r.matcher.Score(query.Text, &candidates[i])
	}

	embeddingScores, err := r.embeddingScores(ctx, query.Text, candidates)
	if err != nil {
		// The single fallback decision: keyword-only ranking over the
		// same candidates.
		return r.rank(candidates, keywordScores, nil)
	}
	return r.rank(candidates, keywordScores, embeddingScores)
}

// embeddingScores maps index matches back onto the candidate slice. Facts
// the index does not return score zero. Only ErrIndexUnavailable (or a
// nil index) reaches the caller; the index contract allows no other
// failure mode.
func (r *Retriever) embeddingScores(ctx context.Context, queryText string, candidates []types.Fact) ([]float64, error) {
	if r.index == nil {
		return nil, index.ErrIndexUnavailable
	}
	matches, err := r.index.Search(ctx, queryText, 0)
	if err != nil {
		if errors.Is(err, index.ErrIndexUnavailable) {
			return nil, err
		}
		return nil, index.ErrIndexUnavailable
	}

	byID := make(map[string]float64, len(matches))
	for _, m := range matches {
		byID[m.FactID] = m.Score
	}
	scores := make([]float64, len(candidates))
	for i := range candidates {
		scores[i] = byID[candidates[i].ID]
	}
	return scores, nil
}

// rank combines the score vectors, sorts with the tie-break rule and
// truncates to top-k. embeddingScores may be nil (keyword-only mode).
func (r *Retriever) rank(candidates []types.Fact, keywordScores, embeddingScores []float64) types.RetrievalResult {
	method := types.MethodKeyword
	scored := make([]types.ScoredFact, 0, len(candidates))
	for i := range candidates {
		score := keywordScores[i]
		if embeddingScores != nil {
			score = r.opts.EmbeddingWeight*embeddingScores[i] + r.opts.KeywordWeight*keywordScores[i]
		}
		// A zero score means no lexical or semantic relation at all;
		// such facts are not reported.
		if score <= 0 {
			continue
		}
		scored = append(scored, types.ScoredFact{Fact: candidates[i], Score: clamp01(score)})
	}
	if embeddingScores != nil {
		method = types.MethodHybrid
	}

	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		pi, pj := scored[i].Fact.Type.Priority(), scored[j].Fact.Type.Priority()
		if pi != pj {
			return pi < pj
		}
		return scored[i].Fact.LastUpdated.After(scored[j].Fact.LastUpdated)
	})

	if len(scored) > r.opts.TopK {
		scored = scored[:r.opts.TopK]
	}

	result := types.RetrievalResult{Facts: scored, Method: method}
	if len(scored) > 0 {
		result.Confidence = scored[0].Score
	}
	return result
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
