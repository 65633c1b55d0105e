package types

import (
	"testing"
	"time"
)

func TestFactTypePriorityOrder(t *testing.T) {
	// Priority must follow declaration order and be strictly increasing.
	prev := -1
	for _, ft := range AllFactTypes {
		p := ft.Priority()
		if p <= prev {
			t.Errorf("priority for %s is %d, expected > %d", ft, p, prev)
		}
		prev = p
	}

	if got := FactType("nonsense").Priority(); got != len(AllFactTypes) {
		t.Errorf("unknown type priority = %d, want %d", got, len(AllFactTypes))
	}
}

func TestFactValidate(t *testing.T) {
	valid := Fact{
		ID:          "fact-1",
		FundID:      "fund-1",
		FundName:    "Test Fund",
		Type:        FactMinimumSIP,
		DisplayText: "₹100",
		SourceURL:   "https://example.com/fund",
		LastUpdated: time.Now(),
	}

	tests := []struct {
		name    string
		mutate  func(*Fact)
		wantErr error
	}{
		{"valid", func(f *Fact) {}, nil},
		{"missing fund id", func(f *Fact) { f.FundID = "" }, ErrEmptyFundID},
		{"missing source url", func(f *Fact) { f.SourceURL = "" }, ErrEmptySourceURL},
		{"missing display", func(f *Fact) { f.DisplayText = "" }, ErrEmptyDisplay},
		{"unknown type", func(f *Fact) { f.Type = "dividend_yield" }, ErrUnknownType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := valid
			tt.mutate(&f)
			if err := f.Validate(); err != tt.wantErr {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestFactSearchText(t *testing.T) {
	f := Fact{Type: FactExpenseRatio, DisplayText: "0.85%"}
	want := "Expense ratio: 0.85%"
	if got := f.SearchText(); got != want {
		t.Errorf("SearchText() = %q, want %q", got, want)
	}
}

func TestRetrievalResultEmpty(t *testing.T) {
	var nilResult *RetrievalResult
	if !nilResult.Empty() {
		t.Error("nil result should be empty")
	}
	if !(&RetrievalResult{}).Empty() {
		t.Error("zero result should be empty")
	}
	r := &RetrievalResult{Facts: []ScoredFact{{Score: 0.5}}}
	if r.Empty() {
		t.Error("populated result should not be empty")
	}
}
