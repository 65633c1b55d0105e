package keyword

import (
	"testing"

	"github.com/navlens/fundfaq/pkg/types"
)

func fact(ft types.FactType, display string) *types.Fact {
	return &types.Fact{
		FundID:      "f1",
		FundName:    "Test Fund",
		Type:        ft,
		DisplayText: display,
		SourceURL:   "https://example.com",
	}
}

func TestScoreRange(t *testing.T) {
	m := NewMatcher()
	queries := []string{
		"What is the minimum SIP?",
		"expense ratio",
		"banana",
		"",
		"minimum sip minimum sip minimum sip",
	}
	facts := []*types.Fact{
		fact(types.FactMinimumSIP, "₹100"),
		fact(types.FactExpenseRatio, "0.85%"),
		fact(types.FactBenchmark, "NIFTY 100 Total Return Index"),
	}
	for _, q := range queries {
		for _, f := range facts {
			s := m.Score(q, f)
			if s < 0 || s > 1 {
				t.Errorf("Score(%q, %s) = %f, out of [0,1]", q, f.Type, s)
			}
		}
	}
}

func TestScoreRelevance(t *testing.T) {
	m := NewMatcher()
	sip := fact(types.FactMinimumSIP, "₹100")
	benchmark := fact(types.FactBenchmark, "NIFTY 100 Total Return Index")

	q := "What is the minimum SIP?"
	if m.Score(q, sip) <= m.Score(q, benchmark) {
		t.Errorf("SIP fact should outscore benchmark fact for %q", q)
	}
}

func TestSynonymBonus(t *testing.T) {
	m := NewMatcher()
	risk := fact(types.FactRiskometer, "Very High")

	// "risk" is a riskometer synonym; the same tokens without the synonym
	// must score strictly lower.
	with := m.Score("how much risk level", risk)
	without := m.Score("how much", risk)
	if with <= without {
		t.Errorf("synonym bonus missing: with=%f without=%f", with, without)
	}
}

func TestScoreDeterministic(t *testing.T) {
	m := NewMatcher()
	f := fact(types.FactExitLoad, "1% if redeemed within 1 year")
	q := "what is the exit load for redemption"
	first := m.Score(q, f)
	for i := 0; i < 10; i++ {
		if got := m.Score(q, f); got != first {
			t.Fatalf("Score not deterministic: %f vs %f", got, first)
		}
	}
}

func TestScoreNoOverlap(t *testing.T) {
	m := NewMatcher()
	if got := m.Score("banana", fact(types.FactExpenseRatio, "0.85%")); got != 0 {
		t.Errorf("expected 0 for disjoint tokens, got %f", got)
	}
}

func TestTokenize(t *testing.T) {
	tokens := Tokenize("What is the Lock-In period? ₹100!")
	for _, want := range []string{"what", "is", "the", "lock", "in", "period", "100"} {
		if _, ok := tokens[want]; !ok {
			t.Errorf("missing token %q in %v", want, tokens)
		}
	}
	if _, ok := tokens["₹100"]; ok {
		t.Error("punctuation should be stripped from tokens")
	}
}
