package nlp

import (
	"context"
	"errors"
	"testing"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClientUnconfigured(t *testing.T) {
	client, err := NewClient(nil, CircuitBreakerConfig{}, nil)
	require.NoError(t, err)
	assert.Nil(t, client)

	client, err = NewClient(&Config{}, CircuitBreakerConfig{}, nil)
	require.NoError(t, err)
	assert.Nil(t, client)

	// A provider without credentials is Unavailable, not an error.
	client, err = NewClient(&Config{Provider: "gemini"}, CircuitBreakerConfig{}, nil)
	require.NoError(t, err)
	assert.Nil(t, client)
}

func TestNewClientGemini(t *testing.T) {
	client, err := NewClient(&Config{Provider: "gemini", APIKey: "k"}, CircuitBreakerConfig{}, nil)
	require.NoError(t, err)
	require.NotNil(t, client)
	_, ok := client.(*GeminiClient)
	assert.True(t, ok)
}

func TestNewClientUnsupportedProvider(t *testing.T) {
	_, err := NewClient(&Config{Provider: "palm", APIKey: "k"}, CircuitBreakerConfig{}, nil)
	assert.Error(t, err)
}

func TestNewClientWithCircuitBreaker(t *testing.T) {
	client, err := NewClient(&Config{Provider: "gemini", APIKey: "k"},
		CircuitBreakerConfig{Enabled: true, Timeout: 1, ReadyToTripRatio: 0.5}, nil)
	require.NoError(t, err)
	_, ok := client.(*CircuitBreakerClient)
	assert.True(t, ok)
}

// failingClient always errors; used to exercise the breaker.
type failingClient struct{}

func (f *failingClient) Chat(ctx context.Context, messages []Message) (*Response, error) {
	return nil, errors.New("provider down")
}

func (f *failingClient) Close() error { return nil }

func TestCircuitBreakerTripsOpen(t *testing.T) {
	cb := NewCircuitBreakerClient(&failingClient{}, CircuitBreakerConfig{
		Enabled:          true,
		Timeout:          60,
		ReadyToTripRatio: 0.5,
	}, nil)

	for i := 0; i < 5; i++ {
		_, err := cb.Chat(context.Background(), []Message{NewUserMessage("q")})
		require.Error(t, err)
	}

	// After repeated failures the breaker is open and fails fast.
	_, err := cb.Chat(context.Background(), []Message{NewUserMessage("q")})
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
}
