package completion

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amazongreen/storefront/internal/config"
	"github.com/amazongreen/storefront/internal/errs"
	"github.com/amazongreen/storefront/pkg/logger"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(&config.CompletionConfig{
		BaseURL: srv.URL + "/",
		APIKey:  "test-key",
		Model:   "test-model",
		Timeout: 2 * time.Second,
	}, logger.Nop())
}

func TestComplete_Success(t *testing.T) {
	var got completionRequest
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"choices":[{"text":" carbon_footprint\n"}]}`))
	})

	text, err := c.Complete(context.Background(), Request{
		Prompt:    "classify",
		MaxTokens: 5,
		Stop:      []string{"\n"},
	})
	require.NoError(t, err)
	assert.Equal(t, " carbon_footprint\n", text)
	assert.Equal(t, "test-model", got.Model)
	assert.Equal(t, 5, got.MaxTokens)
	assert.Equal(t, []string{"\n"}, got.Stop)
}

func TestComplete_Non2xx(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	})

	_, err := c.Complete(context.Background(), Request{Prompt: "x"})
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.ExternalService))
	assert.Contains(t, err.Error(), "429")
}

func TestComplete_EmptyChoices(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	})

	_, err := c.Complete(context.Background(), Request{Prompt: "x"})
	assert.True(t, errs.Is(err, errs.ExternalService))
}

func TestComplete_Timeout(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	})
	c.httpClient.Timeout = 50 * time.Millisecond

	_, err := c.Complete(context.Background(), Request{Prompt: "x"})
	assert.True(t, errs.Is(err, errs.ExternalService))
}
