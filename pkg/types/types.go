package types

import (
	"errors"
	"time"
)

// Validation errors
var (
	ErrEmptyFundID    = errors.New("fund_id cannot be empty")
	ErrEmptySourceURL = errors.New("source_url cannot be empty")
	ErrEmptyDisplay   = errors.New("display text cannot be empty")
	ErrUnknownType    = errors.New("unknown fact type")
	ErrEmptyQuery     = errors.New("query cannot be empty")
)

// FactType identifies the kind of datum a Fact carries.
type FactType string

const (
	FactExpenseRatio      FactType = "expense_ratio"
	FactExitLoad          FactType = "exit_load"
	FactMinimumSIP        FactType = "minimum_sip"
	FactLockIn            FactType = "lock_in"
	FactRiskometer        FactType = "riskometer"
	FactBenchmark         FactType = "benchmark"
	FactStatementDownload FactType = "statement_download"
	FactRating            FactType = "rating"
)

// AllFactTypes lists every known fact type in tie-break priority order.
// Earlier entries win ties between equally scored retrieval results.
var AllFactTypes = []FactType{
	FactExpenseRatio,
	FactExitLoad,
	FactMinimumSIP,
	FactLockIn,
	FactRiskometer,
	FactBenchmark,
	FactStatementDownload,
	FactRating,
}

var factTypePriority = func() map[FactType]int {
	m := make(map[FactType]int, len(AllFactTypes))
	for i, ft := range AllFactTypes {
		m[ft] = i
	}
	return m
}()

// Priority returns the tie-break rank of the fact type. Lower is higher
// priority. Unknown types sort after all known ones.
func (ft FactType) Priority() int {
	if p, ok := factTypePriority[ft]; ok {
		return p
	}
	return len(AllFactTypes)
}

// Valid reports whether the fact type is one of the known categories.
func (ft FactType) Valid() bool {
	_, ok := factTypePriority[ft]
	return ok
}

// Label returns a human-readable label for the fact type, used when
// composing the text that gets embedded and keyword-matched.
func (ft FactType) Label() string {
	switch ft {
	case FactExpenseRatio:
		return "Expense ratio"
	case FactExitLoad:
		return "Exit load"
	case FactMinimumSIP:
		return "Minimum SIP"
	case FactLockIn:
		return "Lock-in period"
	case FactRiskometer:
		return "Riskometer"
	case FactBenchmark:
		return "Benchmark"
	case FactStatementDownload:
		return "Statement download"
	case FactRating:
		return "Rating"
	default:
		return string(ft)
	}
}

// FactValue holds the typed value of a fact: a number with a unit
// (e.g. 0.85 "%") or a categorical string (e.g. "Very High").
type FactValue struct {
	Number *float64 `json:"number,omitempty"`
	Unit   string   `json:"unit,omitempty"`
	Text   string   `json:"text,omitempty"`
}

// Fact is a single typed datum about one fund. Facts are immutable once
// loaded into a catalog store.
type Fact struct {
	ID          string    `json:"id"`
	FundID      string    `json:"fund_id"`
	FundName    string    `json:"fund_name"`
	Type        FactType  `json:"fact_type"`
	Value       FactValue `json:"value"`
	DisplayText string    `json:"display_text"`
	SourceURL   string    `json:"source_url"`
	LastUpdated time.Time `json:"last_updated"`
}

// Validate checks that the Fact carries the fields every derived answer
// depends on. A fact without a source URL must never enter the store.
func (f *Fact) Validate() error {
	if f.FundID == "" {
		return ErrEmptyFundID
	}
	if !f.Type.Valid() {
		return ErrUnknownType
	}
	if f.DisplayText == "" {
		return ErrEmptyDisplay
	}
	if f.SourceURL == "" {
		return ErrEmptySourceURL
	}
	return nil
}

// SearchText returns the textual representation of the fact used for both
/// embedding and keyword matching: the type label plus the display text.
func (f *Fact) SearchText() string {
	return f.Type.Label() + ": " + f.DisplayText
}

// Query is a free-text question plus an optional fund-name hint that
// narrows the candidate fact set.
type Query struct {
	Text     string `json:"query"`
	FundName string `json:"fund_name,omitempty"`
}

// RetrievalMethod records which scoring path produced a retrieval result.
type RetrievalMethod string

const (
	// MethodHybrid combines embedding and keyword scores.
	MethodHybrid RetrievalMethod = "hybrid"
	// MethodKeyword is the lexical-only fallback path.
	MethodKeyword RetrievalMethod = "keyword"
)

// ScoredFact pairs a fact with its relevance score in [0,1].
type ScoredFact struct {
	Fact  Fact    `json:"fact"`
	Score float64 `json:"score"`
}

// RetrievalResult is an ordered set of scored facts. The ordering is
// non-increasing by score; equal scores are broken by fact-type priority,
// then by recency of LastUpdated.
type RetrievalResult struct {
	Facts      []ScoredFact    `json:"facts"`
	Confidence float64         `json:"confidence"`
	Method     RetrievalMethod `json:"method"`
}

// Empty reports whether retrieval found nothing. An empty result is a
// valid outcome, not an error.
func (r *RetrievalResult) Empty() bool {
	return r == nil || len(r.Facts) == 0
}

// AnswerResponse is the envelope returned to callers of the pipeline.
type AnswerResponse struct {
	Answer       string   `json:"answer"`
	SourceURLs   []string `json:"source_urls"`
	FallbackUsed bool     `json:"fallback_used"`
	Confidence   float64  `json:"confidence"`
	Model        string   `json:"model,omitempty"`
	ContextUsed  int      `json:"context_used"`

	// AdviceRefused marks answers produced by the investment-advice
	// guard rather than by retrieval.
	AdviceRefused bool `json:"advice_refused,omitempty"`
}

// Context keys for request-scoped metadata propagated from the server.
type contextKey string

const (
	ContextKeyRequestID     contextKey = "request_id"
	ContextKeyRequestSource contextKey = "request_source"
)
