// Package notify provides a webhook client for storefront announcements.
// Payloads follow the Slack-compatible incoming-webhook format.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/amazongreen/storefront/internal/config"
	"github.com/amazongreen/storefront/internal/metrics"
	"github.com/amazongreen/storefront/internal/models"
	"github.com/amazongreen/storefront/pkg/logger"
)

// Notifier announces storefront events.
type Notifier interface {
	AnnounceChallenge(ctx context.Context, challenge *models.Challenge) error
	AnnounceGroupComplete(ctx context.Context, group *models.Group) error
}

// Client handles webhook notifications.
type Client struct {
	webhookURL string
	channel    string
	username   string
	enabled    bool
	httpClient *http.Client
	log        *logger.Logger
}

// NewClient creates a webhook client. It fails when notifications are
// enabled without a webhook URL.
func NewClient(cfg *config.NotifyConfig, log *logger.Logger) (*Client, error) {
	if cfg.Enabled && cfg.WebhookURL == "" {
		return nil, errors.New("notify: webhook_url is required when enabled")
	}
	return &Client{
		webhookURL: cfg.WebhookURL,
		channel:    cfg.Channel,
		username:   cfg.Username,
		enabled:    cfg.Enabled,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		log:        log,
	}, nil
}

// Message represents a webhook message payload.
type Message struct {
	Channel     string       `json:"channel,omitempty"`
	Username    string       `json:"username,omitempty"`
	Text        string       `json:"text,omitempty"`
	IconURL     string       `json:"icon_url,omitempty"`
	Attachments []Attachment `json:"attachments,omitempty"`
}

// Attachment represents a message attachment.
type Attachment struct {
	Fallback string  `json:"fallback,omitempty"`
	Color    string  `json:"color,omitempty"`
	Title    string  `json:"title,omitempty"`
	Text     string  `json:"text,omitempty"`
	Fields   []Field `json:"fields,omitempty"`
	ThumbURL string  `json:"thumb_url,omitempty"`
	Footer   string  `json:"footer,omitempty"`
}

// Field represents a message field.
type Field struct {
	Short bool   `json:"short"`
	Title string `json:"title"`
	Value string `json:"value"`
}

// SendMessage posts a message to the webhook.
func (c *Client) SendMessage(ctx context.Context, msg *Message) error {
	if !c.enabled {
		c.log.Debug().Msg("Notifications are disabled, skipping message")
		return nil
	}

	if msg.Channel == "" {
		msg.Channel = c.channel
	}
	if msg.Username == "" {
		msg.Username = c.username
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.webhookURL, bytes.NewBuffer(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send webhook message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}

	c.log.Debug().
		Str("channel", msg.Channel).
		Msg("Sent webhook message")

	return nil
}

// AnnounceChallenge posts a newly opened challenge.
func (c *Client) AnnounceChallenge(ctx context.Context, challenge *models.Challenge) error {
	msg := &Message{
		Text: fmt.Sprintf("### 🌱 New %s challenge: %s", challenge.Frequency, challenge.Name),
		Attachments: []Attachment{{
			Fallback: challenge.Description,
			Color:    "#2e7d32",
			Title:    challenge.Name,
			Text:     challenge.Description,
			ThumbURL: challenge.RewardBadge.IconURL,
			Fields: []Field{
				{Short: true, Title: "Reward", Value: challenge.RewardBadge.Name},
				{Short: true, Title: "Ends", Value: challenge.EndDate.Format(time.RFC1123)},
			},
		}},
	}
	return c.record(ctx, "challenge", msg)
}

// AnnounceGroupComplete posts a group-buy that reached its member target.
func (c *Client) AnnounceGroupComplete(ctx context.Context, group *models.Group) error {
	msg := &Message{
		Text: fmt.Sprintf("🤝 Group **%s** is complete with %d members. Orders can go out together!",
			group.Name, len(group.Members)),
	}
	return c.record(ctx, "group_complete", msg)
}

func (c *Client) record(ctx context.Context, kind string, msg *Message) error {
	if !c.enabled {
		return nil
	}
	err := c.SendMessage(ctx, msg)
	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.RecordNotification(kind, status)
	return err
}

// Nop is a Notifier that does nothing.
type Nop struct{}

// AnnounceChallenge implements Notifier.
func (Nop) AnnounceChallenge(context.Context, *models.Challenge) error { return nil }

// AnnounceGroupComplete implements Notifier.
func (Nop) AnnounceGroupComplete(context.Context, *models.Group) error { return nil }
