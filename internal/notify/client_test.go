package notify

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
	"github.com/amazongreen/storefront/internal/models"
	"github.com/amazongreen/storefront/pkg/logger"
)

func TestNewClient_RequiresURLWhenEnabled(t *testing.T) {
	_, err := NewClient(&config.NotifyConfig{Enabled: true}, logger.Nop())
	assert.Error(t, err)

	c, err := NewClient(&config.NotifyConfig{Enabled: false}, logger.Nop())
	require.NoError(t, err)
	assert.NoError(t, c.AnnounceChallenge(context.Background(), &models.Challenge{}))
}

func TestAnnounceChallenge_PostsPayload(t *testing.T) {
	var got Message
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c, err := NewClient(&config.NotifyConfig{
		Enabled:    true,
		WebhookURL: srv.URL,
		Channel:    "eco",
		Username:   "Green Partner",
	}, logger.Nop())
	require.NoError(t, err)

	challenge := &models.Challenge{
		Name:        "Weekly CO2 Saver",
		Description: "Save 5kg of CO2 this week!",
		Frequency:   models.FrequencyWeekly,
		RewardBadge: models.RewardBadge{Name: "Weekly Challenge Winner"},
		EndDate:     time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, c.AnnounceChallenge(context.Background(), challenge))

	assert.Equal(t, "eco", got.Channel)
	assert.Equal(t, "Green Partner", got.Username)
	assert.Contains(t, got.Text, "Weekly CO2 Saver")
	require.Len(t, got.Attachments, 1)
	assert.Equal(t, "Weekly Challenge Winner", got.Attachments[0].Fields[0].Value)
}

func TestSendMessage_Non2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c, err := NewClient(&config.NotifyConfig{Enabled: true, WebhookURL: srv.URL}, logger.Nop())
	require.NoError(t, err)

	err = c.AnnounceGroupComplete(context.Background(), &models.Group{Name: "g"})
	assert.ErrorContains(t, err, "502")
}
