// Package keyword scores facts against a query by lexical overlap.
//
// The matcher is the guaranteed-available retrieval path: pure, in-memory,
// deterministic, no model and no network. The retriever uses it as the
// fallback when the embedding index is unavailable and as a sanity weight
// alongside embedding scores otherwise.
package keyword

import (
	"strings"

	"github.com/navlens/fundfaq/pkg/types"
)

// synonymBonus is added once when the query literally mentions a synonym
// of the fact's type, capped so scores stay in [0,1].
const synonymBonus = 0.2

// factTypeSynonyms maps each fact type to phrases users reach for when
// asking about it. Matching is case-insensitive substring on the query.
var factTypeSynonyms = map[types.FactType][]string{
	types.FactExpenseRatio:      {"expense ratio", "expense", "charges", "fee", "cost"},
	types.FactExitLoad:          {"exit load", "redemption", "withdrawal", "exit charge"},
	types.FactMinimumSIP:        {"sip", "minimum investment", "min investment"},
	types.FactLockIn:            {"lock in", "lock-in", "lockin"},
	types.FactRiskometer:        {"risk", "riskometer", "risk level"},
	types.FactBenchmark:         {"benchmark", "index"},
	types.FactStatementDownload: {"statement", "download", "account statement"},
	types.FactRating:            {"rating", "rate", "star", "grade"},
}

// Matcher scores facts by token overlap with the query.
type Matcher struct{}

// NewMatcher returns a Matcher. The zero value is also usable.
func NewMatcher() *Matcher { return &Matcher{} }

// Score returns the lexical relevance of fact to query in [0,1].
//
// Both strings are lowercased, stripped of punctuation and tokenized on
// whitespace; the base score is the Jaccard ratio of the token sets. A
// fact-type synonym appearing literally in the query adds a fixed bonus,
// capped at 1.0.
func (m *Matcher) Score(query string, fact *types.Fact) float64 {
	queryTokens := Tokenize(query)
	if len(queryTokens) == 0 {
		return 0
	}
	factTokens := Tokenize(fact.SearchText())
	if len(factTokens) == 0 {
		return 0
	}

	intersection := 0
	for tok := range queryTokens {
		if _, ok := factTokens[tok]; ok {
			intersection++
		}
	}
	union := len(queryTokens) + len(factTokens) - intersection
	score := float64(intersection) / float64(union)

	if m.mentionsType(strings.ToLower(query), fact.Type) {
		score += synonymBonus
	}
	if score > 1 {
		score = 1
	}
	return score
}

// DetectFactType reports which fact type the query is asking about, based
// on the first synonym match in fact-type priority order. Used by the
// fallback composer to answer with the specific value instead of dumping
// every retrieved fact.
func DetectFactType(query string) (types.FactType, bool) {
	lowered := strings.ToLower(query)
	for _, ft := range types.AllFactTypes {
		for _, syn := range factTypeSynonyms[ft] {
			if strings.Contains(lowered, syn) {
				return ft, true
			}
		}
	}
	return "", false
}

func (m *Matcher) mentionsType(loweredQuery string, ft types.FactType) bool {
	for _, syn := range factTypeSynonyms[ft] {
		if strings.Contains(loweredQuery, syn) {
			return true
		}
	}
	return false
}

// Tokenize lowercases s, strips punctuation and splits on whitespace,
// returning the resulting token set.
func Tokenize(s string) map[string]struct{} {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteRune(' ')
		}
	}
	tokens := make(map[string]struct{})
	for _, tok := range strings.Fields(b.String()) {
		tokens[tok] = struct{}{}
	}
	return tokens
}
