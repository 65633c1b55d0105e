package fundfaq

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/navlens/fundfaq/pkg/catalog"
	"github.com/navlens/fundfaq/pkg/composer"
	"github.com/navlens/fundfaq/pkg/nlp"
	"github.com/navlens/fundfaq/pkg/types"
)

const testCatalogJSON = `[
  {
    "fund_id": "test_large_cap_001",
    "fund_name": "Test Large Cap Fund",
    "source_url": "https://example.com/large-cap",
    "last_updated": "2025-01-15T10:30:00",
    "expense_ratio": {"value": 0.85, "unit": "%", "display": "0.85%"},
    "minimum_sip": {"value": 100, "unit": "INR", "display": "₹100"},
    "benchmark": {"value": "Nifty 100 TRI", "unit": null, "display": "Nifty 100 TRI"}
  },
  {
    "fund_id": "test_elss_001",
    "fund_name": "Test ELSS Tax Saver",
    "source_url": "https://example.com/elss",
    "last_updated": "2025-01-10T09:00:00",
    "minimum_sip": {"value": 500, "unit": "INR", "display": "₹500"},
    "lock_in": {"value": 3, "unit": "years", "display": "3 years"}
  }
]`

func writeTestCatalog(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "funds_data.json")
	require.NoError(t, os.WriteFile(path, []byte(testCatalogJSON), 0o644))
	return path
}

// scriptedGenerator returns a fixed response or error and counts calls.
type scriptedGenerator struct {
	resp  *nlp.Response
	err   error
	calls int
}

func (s *scriptedGenerator) Chat(ctx context.Context, messages []nlp.Message) (*nlp.Response, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.resp, nil
}

func (s *scriptedGenerator) Close() error { return nil }

func newTestPipeline(t *testing.T, generator nlp.Client) *Pipeline {
	t.Helper()
	p, err := NewPipeline(context.Background(), Config{CatalogPath: writeTestCatalog(t)}, nil, generator, nil)
	require.NoError(t, err)
	return p
}

func TestAnswerQueryFactBased(t *testing.T) {
	p := newTestPipeline(t, nil)

	resp, err := p.AnswerQuery(context.Background(), types.Query{
		Text:     "What is the minimum SIP?",
		FundName: "Test Large Cap Fund",
	})
	require.NoError(t, err)

	assert.Equal(t, "₹100", resp.Answer)
	assert.True(t, resp.FallbackUsed)
	assert.Equal(t, []string{"https://example.com/large-cap"}, resp.SourceURLs)
	assert.Greater(t, resp.Confidence, 0.0)
}

func TestAnswerQueryGenerated(t *testing.T) {
	gen := &scriptedGenerator{
		resp: &nlp.Response{Content: "The minimum SIP is ₹100 per month.", Model: "gemini-2.0-flash-exp"},
	}
	p := newTestPipeline(t, gen)

	resp, err := p.AnswerQuery(context.Background(), types.Query{Text: "What is the minimum SIP?"})
	require.NoError(t, err)

	assert.Equal(t, "The minimum SIP is ₹100 per month.", resp.Answer)
	assert.False(t, resp.FallbackUsed)
	assert.Equal(t, "gemini-2.0-flash-exp", resp.Model)
	assert.Equal(t, 1, gen.calls)
	assert.NotEmpty(t, resp.SourceURLs)
}

func TestAnswerQueryGenerationFailureFallsBack(t *testing.T) {
	gen := &scriptedGenerator{err: errors.New("quota exhausted")}
	p := newTestPipeline(t, gen)

	resp, err := p.AnswerQuery(context.Background(), types.Query{Text: "What is the minimum SIP?"})
	require.NoError(t, err)

	assert.True(t, resp.FallbackUsed)
	assert.Equal(t, "₹100", resp.Answer)
}

func TestAnswerQueryNoMatch(t *testing.T) {
	p := newTestPipeline(t, nil)

	resp, err := p.AnswerQuery(context.Background(), types.Query{Text: "banana"})
	require.NoError(t, err)

	assert.Equal(t, composer.NoInformationAnswer, resp.Answer)
	assert.True(t, resp.FallbackUsed)
	assert.Empty(t, resp.SourceURLs)
	assert.Zero(t, resp.Confidence)
}

func TestAnswerQueryEmpty(t *testing.T) {
	p := newTestPipeline(t, nil)

	for _, text := range []string{"", "   ", "\n\t"} {
		_, err := p.AnswerQuery(context.Background(), types.Query{Text: text})
		assert.ErrorIs(t, err, ErrInvalidQuery)
	}
}

func TestAnswerQueryAdviceGuard(t *testing.T) {
	gen := &scriptedGenerator{resp: &nlp.Response{Content: "yes"}}
	p := newTestPipeline(t, gen)

	queries := []string{
		"Should I invest in the ELSS fund?",
		"Which is better, large cap or ELSS?",
		"Can you recommend a fund for me?",
		"where to invest my savings",
	}
	for _, q := range queries {
		resp, err := p.AnswerQuery(context.Background(), types.Query{Text: q})
		require.NoError(t, err, q)
		assert.True(t, resp.AdviceRefused, q)
		assert.Equal(t, adviceRefusalAnswer, resp.Answer, q)
	}

	// The guard runs before retrieval and generation.
	assert.Zero(t, gen.calls)
}

func TestRebuildFailureKeepsOldSnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "funds_data.json")
	require.NoError(t, os.WriteFile(path, []byte(testCatalogJSON), 0o644))

	p, err := NewPipeline(context.Background(), Config{CatalogPath: path}, nil, nil, nil)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))
	err = p.Rebuild(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, &catalog.CatalogError{})

	// The previous snapshot still serves queries.
	resp, err := p.AnswerQuery(context.Background(), types.Query{Text: "What is the minimum SIP?"})
	require.NoError(t, err)
	assert.Equal(t, "₹100", resp.Answer)
	assert.Equal(t, 5, p.Status().TotalFacts)
}

func TestRebuildConcurrentWithQueries(t *testing.T) {
	p := newTestPipeline(t, nil)

	var wg sync.WaitGroup
	stop := make(chan struct{})

	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				resp, err := p.AnswerQuery(context.Background(), types.Query{Text: "What is the minimum SIP?"})
				assert.NoError(t, err)
				assert.NotEmpty(t, resp.Answer)
			}
		}()
	}

	for i := 0; i < 25; i++ {
		require.NoError(t, p.Rebuild(context.Background()))
	}
	close(stop)
	wg.Wait()
}

func TestAvailableFunds(t *testing.T) {
	p := newTestPipeline(t, nil)
	assert.Equal(t, []string{"Test ELSS Tax Saver", "Test Large Cap Fund"}, p.AvailableFunds())
}

func TestStatus(t *testing.T) {
	gen := &scriptedGenerator{resp: &nlp.Response{Content: "ok"}}
	p := newTestPipeline(t, gen)

	status := p.Status()
	assert.Equal(t, 5, status.TotalFacts)
	assert.Equal(t, 2, status.TotalFunds)
	assert.False(t, status.LoadedAt.IsZero())
	assert.False(t, status.IndexReady)
	assert.True(t, status.GenerationConfigured)
}

func TestNewPipelineMissingCatalog(t *testing.T) {
	_, err := NewPipeline(context.Background(), Config{CatalogPath: filepath.Join(t.TempDir(), "absent.json")}, nil, nil, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, &catalog.CatalogError{})
}
