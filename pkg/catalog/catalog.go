package catalog

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/navlens/fundfaq/pkg/types"
)

// CatalogError indicates bad or missing catalog input. It is fatal at load
// time: a store is never built from a catalog that fails validation.
type CatalogError struct {
	Message string
	Err     error
}

func (e *CatalogError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("catalog: %s: %v", e.Message, e.Err)
	}
	return "catalog: " + e.Message
}

func (e *CatalogError) Unwrap() error { return e.Err }

// Is implements errors.Is support for CatalogError.
func (e *CatalogError) Is(target error) bool {
	_, ok := target.(*CatalogError)
	return ok
}

// factEntry is one per-fact-type object in the funds_data.json shape.
type factEntry struct {
	Value     json.RawMessage `json:"value"`
	Unit      string          `json:"unit"`
	Display   string          `json:"display"`
	SourceURL string          `json:"source_url"`
}

// fundRecord is one fund in the funds_data.json shape produced by the
// external extraction pipeline.
type fundRecord struct {
	FundID      string     `json:"fund_id"`
	FundName    string     `json:"fund_name"`
	SourceURL   string     `json:"source_url"`
	LastUpdated string     `json:"last_updated"`
	Entries     rawEntries `json:"-"`
}

type rawEntries map[types.FactType]*factEntry

// UnmarshalJSON pulls the known per-fact-type objects out of the fund
// record alongside the fixed header fields.
func (f *fundRecord) UnmarshalJSON(data []byte) error {
	type header struct {
		FundID      string `json:"fund_id"`
		FundName    string `json:"fund_name"`
		SourceURL   string `json:"source_url"`
		LastUpdated string `json:"last_updated"`
	}
	var h header
	if err := json.Unmarshal(data, &h); err != nil {
		return err
	}
	f.FundID = h.FundID
	f.FundName = h.FundName
	f.SourceURL = h.SourceURL
	f.LastUpdated = h.LastUpdated

	var all map[string]json.RawMessage
	if err := json.Unmarshal(data, &all); err != nil {
		return err
	}

	f.Entries = make(rawEntries)
	for _, ft := range types.AllFactTypes {
		raw, ok := all[string(ft)]
		if !ok || string(raw) == "null" {
			continue
		}
		var e factEntry
		if err := json.Unmarshal(raw, &e); err != nil {
			return fmt.Errorf("fact %q: %w", ft, err)
		}
		f.Entries[ft] = &e
	}
	return nil
}

// Store is an immutable, in-memory collection of fund facts. A store is
// built once from a catalog and then only read; rebuilds construct a new
// Store and the pipeline swaps it atomically.
type Store struct {
	facts     []types.Fact
	byFund    map[string][]int // fund_id -> indexes into facts
	fundNames []string         // sorted unique fund names
	loadedAt  time.Time
}

// Stats summarizes the store contents for health reporting.
type Stats struct {
	TotalFacts int       `json:"total_facts"`
	TotalFunds int       `json:"total_funds"`
	LoadedAt   time.Time `json:"loaded_at"`
}

// Load reads and validates a funds_data.json catalog from disk.
func Load(path string) (*Store, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &CatalogError{Message: "cannot open catalog file", Err: err}
	}
	defer f.Close()
	return Parse(f)
}

// Parse reads and validates a catalog from r. It fails with *CatalogError
// when the catalog is empty or any derived fact would lack a source URL.
func Parse(r io.Reader) (*Store, error) {
	var funds []fundRecord
	if err := json.NewDecoder(r).Decode(&funds); err != nil {
		return nil, &CatalogError{Message: "cannot decode catalog", Err: err}
	}
	if len(funds) == 0 {
		return nil, &CatalogError{Message: "catalog is empty"}
	}

	s := &Store{
		byFund:   make(map[string][]int),
		loadedAt: time.Now(),
	}
	nameSet := make(map[string]struct{})

	for _, fund := range funds {
		fundID := fund.FundID
		if fundID == "" {
			fundID = uuid.NewString()
		}
		updated := parseUpdated(fund.LastUpdated)

		for _, ft := range types.AllFactTypes {
			entry, ok := fund.Entries[ft]
			if !ok || entry.Display == "" {
				continue
			}
			// Fact-level URL wins; the fund page URL is the default.
			sourceURL := entry.SourceURL
			if sourceURL == "" {
				sourceURL = fund.SourceURL
			}
			fact := types.Fact{
				ID:          fundID + ":" + string(ft),
				FundID:      fundID,
				FundName:    fund.FundName,
				Type:        ft,
				Value:       parseValue(entry),
				DisplayText: entry.Display,
				SourceURL:   sourceURL,
				LastUpdated: updated,
			}
			if err := fact.Validate(); err != nil {
				return nil, &CatalogError{
					Message: fmt.Sprintf("invalid fact %s for fund %q", ft, fund.FundName),
					Err:     err,
				}
			}
			s.byFund[fundID] = append(s.byFund[fundID], len(s.facts))
			s.facts = append(s.facts, fact)
		}
		if fund.FundName != "" {
			nameSet[fund.FundName] = struct{}{}
		}
	}

	if len(s.facts) == 0 {
		return nil, &CatalogError{Message: "catalog contains no usable facts"}
	}

	for name := range nameSet {
		s.fundNames = append(s.fundNames, name)
	}
	sort.Strings(s.fundNames)
	return s, nil
}

func parseUpdated(raw string) time.Time {
	if raw == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05.999999", "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t
		}
	}
	return time.Time{}
}

func parseValue(e *factEntry) types.FactValue {
	v := types.FactValue{Unit: e.Unit}
	if len(e.Value) == 0 || string(e.Value) == "null" {
		v.Text = e.Display
		return v
	}
	var num float64
	if err := json.Unmarshal(e.Value, &num); err == nil {
		v.Number = &num
		return v
	}
	var text string
	if err := json.Unmarshal(e.Value, &text); err == nil {
		v.Text = text
		return v
	}
	v.Text = e.Display
	return v
}

// Facts returns every fact in the store. The returned slice must not be
// mutated.
func (s *Store) Facts() []types.Fact {
	return s.facts
}

// FactsForFund narrows the candidate set by a fund-name hint. An exact
// fund-id or fund-name match wins; otherwise a fuzzy name match is tried.
// When nothing matches, the full fact set is returned so that retrieval
// still has candidates to rank.
func (s *Store) FactsForFund(hint string) []types.Fact {
	hint = strings.TrimSpace(hint)
	if hint == "" {
		return s.facts
	}

	if idxs, ok := s.byFund[hint]; ok {
		return s.collect(idxs)
	}

	var matched []types.Fact
	for _, f := range s.facts {
		if fundNameMatches(hint, f.FundName) {
			matched = append(matched, f)
		}
	}
	if len(matched) == 0 {
		return s.facts
	}
	return matched
}

func (s *Store) collect(idxs []int) []types.Fact {
	out := make([]types.Fact, 0, len(idxs))
	for _, i := range idxs {
		out = append(out, s.facts[i])
	}
	return out
}

// fundNameMatches reports whether the hint refers to the fund name. A
// case-insensitive substring match in either direction is accepted, as is
// the hint being a token subset of the name ("bluechip fund" matches
// "ICICI Prudential Bluechip Fund").
func fundNameMatches(hint, name string) bool {
	h := strings.ToLower(hint)
	n := strings.ToLower(name)
	if h == "" || n == "" {
		return false
	}
	if strings.Contains(n, h) || strings.Contains(h, n) {
		return true
	}
	nameTokens := make(map[string]struct{})
	for _, tok := range strings.Fields(n) {
		nameTokens[tok] = struct{}{}
	}
	for _, tok := range strings.Fields(h) {
		if _, ok := nameTokens[tok]; !ok {
			return false
		}
	}
	return true
}

// FundNames lists the distinct fund names in the store, sorted.
func (s *Store) FundNames() []string {
	return s.fundNames
}

// Stats reports store contents for the health endpoint.
func (s *Store) Stats() Stats {
	return Stats{
		TotalFacts: len(s.facts),
		TotalFunds: len(s.byFund),
		LoadedAt:   s.loadedAt,
	}
}
