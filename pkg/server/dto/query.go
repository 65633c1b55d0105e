// Package dto defines the request and response shapes of the HTTP API.
package dto

import (
	"errors"
	"strings"

	"github.com/navlens/fundfaq/pkg/types"
)

// MaxQueryLength bounds incoming query text.
const MaxQueryLength = 500

// ErrQueryTooLong is returned when the query text exceeds MaxQueryLength.
var ErrQueryTooLong = errors.New("query too long")

// QueryRequest is the body of POST /query.
type QueryRequest struct {
	Query    string `json:"query" binding:"required"`
	FundName string `json:"fund_name,omitempty"`
}

// Validate performs validation on QueryRequest
func (r *QueryRequest) Validate() error {
	if strings.TrimSpace(r.Query) == "" {
		return errors.New("query cannot be empty")
	}
	if len(r.Query) > MaxQueryLength {
		return ErrQueryTooLong
	}
	return nil
}

// ToQuery converts the request into the pipeline query type.
func (r *QueryRequest) ToQuery() types.Query {
	return types.Query{
		Text:     strings.TrimSpace(r.Query),
		FundName: strings.TrimSpace(r.FundName),
	}
}

// QueryResponse is the answer envelope returned by the query endpoints.
type QueryResponse struct {
	Query         string   `json:"query"`
	Answer        string   `json:"answer"`
	SourceURLs    []string `json:"source_urls"`
	FallbackUsed  bool     `json:"fallback_used"`
	Confidence    float64  `json:"confidence"`
	Model         string   `json:"model,omitempty"`
	ContextUsed   int      `json:"context_used"`
	AdviceRefused bool     `json:"advice_refused,omitempty"`
}

// NewQueryResponse maps a pipeline answer onto the wire shape.
func NewQueryResponse(query string, a types.AnswerResponse) QueryResponse {
	urls := a.SourceURLs
	if urls == nil {
		urls = []string{}
	}
	return QueryResponse{
		Query:         query,
		Answer:        a.Answer,
		SourceURLs:    urls,
		FallbackUsed:  a.FallbackUsed,
		Confidence:    a.Confidence,
		Model:         a.Model,
		ContextUsed:   a.ContextUsed,
		AdviceRefused: a.AdviceRefused,
	}
}

// FundsResponse is the body of GET /funds.
type FundsResponse struct {
	Funds []string `json:"funds"`
	Count int      `json:"count"`
}

// RebuildResponse is the body of POST /rebuild-index.
type RebuildResponse struct {
	Status     string `json:"status"`
	TotalFacts int    `json:"total_facts"`
	TotalFunds int    `json:"total_funds"`
	IndexReady bool   `json:"index_ready"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    int    `json:"code,omitempty"`
}
