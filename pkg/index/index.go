// Package index maintains an in-memory embedding index over fund facts.
//
// The index holds one vector per fact, built all-or-nothing: a partially
// embedded fact set never becomes a live index. Search converts cosine
// similarity to a relevance score in [0,1]. The index never degrades
// silently; when the embedding capability cannot serve a query it fails
// with ErrIndexUnavailable and the retriever decides the fallback.
package index

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/navlens/fundfaq/pkg/embedder"
	"github.com/navlens/fundfaq/pkg/types"
)

// ErrIndexUnavailable indicates the embedding search cannot run: the
// embedder is absent, the index was never built, or embedding the query
// failed. Recovered by the retriever, never surfaced to callers.
var ErrIndexUnavailable = errors.New("embedding index unavailable")

// DefaultQueryTimeout bounds the query-embedding call so a wedged model
// turns into a fallback instead of a hung request.
const DefaultQueryTimeout = 10 * time.Second

// Match is one nearest-neighbor hit: the fact's identifier and its
// relevance score in [0,1].
type Match struct {
	FactID string
	Score  float64
}

// Index is an immutable embedding index over a fact set. Rebuilds
// construct a new Index; the pipeline swaps it together with the store.
type Index struct {
	embedder     embedder.Client
	factIDs      []string
	vectors      [][]float32
	queryTimeout time.Duration
}

// Build embeds the textual representation of every fact and returns a
// complete index. If any embedding fails, no index is produced.
func Build(ctx context.Context, facts []types.Fact, client embedder.Client) (*Index, error) {
	return BuildWithTimeout(ctx, facts, client, DefaultQueryTimeout)
}

// BuildWithTimeout is Build with an explicit per-query embedding timeout.
func BuildWithTimeout(ctx context.Context, facts []types.Fact, client embedder.Client, queryTimeout time.Duration) (*Index, error) {
	if client == nil {
		return nil, ErrIndexUnavailable
	}
	if len(facts) == 0 {
		return nil, fmt.Errorf("no facts to index")
	}

	texts := make([]string, len(facts))
	for i := range facts {
		texts[i] = facts[i].SearchText()
	}

	vectors, err := client.Embed(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embedding facts: %w", err)
	}
	if len(vectors) != len(facts) {
		return nil, fmt.Errorf("embedder returned %d vectors for %d facts", len(vectors), len(facts))
	}

	idx := &Index{
		embedder:     client,
		factIDs:      make([]string, len(facts)),
		vectors:      vectors,
		queryTimeout: queryTimeout,
	}
	for i := range facts {
		idx.factIDs[i] = facts[i].ID
	}
	return idx, nil
}

// Size returns the number of indexed facts.
func (idx *Index) Size() int {
	if idx == nil {
		return 0
	}
	return len(idx.factIDs)
}

// Search embeds queryText and returns the topK nearest facts by cosine
// similarity, scored as (1+cosine)/2 clamped to [0,1] and ordered by
// descending score. Fails with ErrIndexUnavailable when the embedding
// capability cannot serve the query.
func (idx *Index) Search(ctx context.Context, queryText string, topK int) ([]Match, error) {
	if idx == nil || idx.embedder == nil || len(idx.vectors) == 0 {
		return nil, ErrIndexUnavailable
	}
	if topK <= 0 {
		topK = len(idx.factIDs)
	}

	embedCtx, cancel := context.WithTimeout(ctx, idx.queryTimeout)
	defer cancel()

	queryVec, err := idx.embedder.EmbedSingle(embedCtx, queryText)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIndexUnavailable, err)
	}

	matches := make([]Match, 0, len(idx.factIDs))
	for i, vec := range idx.vectors {
		cos := CosineSimilarity(queryVec, vec)
		matches = append(matches, Match{
			FactID: idx.factIDs[i],
			Score:  clamp01((1 + cos) / 2),
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	if len(matches) > topK {
		matches = matches[:topK]
	}
	return matches, nil
}

// CosineSimilarity calculates cosine similarity between two vectors.
func CosineSimilarity(vector1, vector2 []float32) float64 {
	if len(vector1) != len(vector2) {
		return 0.0
	}

	var dotProduct float64
	var norm1, norm2 float64

	for i := range vector1 {
		dotProduct += float64(vector1[i]) * float64(vector2[i])
		norm1 += float64(vector1[i]) * float64(vector1[i])
		norm2 += float64(vector2[i]) * float64(vector2[i])
	}

	norm1 = math.Sqrt(norm1)
	norm2 = math.Sqrt(norm2)

	if norm1 == 0 || norm2 == 0 {
		return 0.0 // Handle zero vectors
	}

	return dotProduct / (norm1 * norm2)
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
