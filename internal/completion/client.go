// Package completion provides a client for an OpenAI-compatible text-completion API.
package completion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/amazongreen/storefront/internal/config"
	"github.com/amazongreen/storefront/internal/errs"
	"github.com/amazongreen/storefront/internal/metrics"
	"github.com/amazongreen/storefront/pkg/logger"
)

// Request is a single completion call.
type Request struct {
	Prompt      string
	MaxTokens   int
	Temperature float64
	Stop        []string
}

// Completer turns a prompt into text.
type Completer interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// Client calls the /v1/completions endpoint.
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
	log        *logger.Logger
}

// NewClient creates a completion client from configuration.
func NewClient(cfg *config.CompletionConfig, log *logger.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		httpClient: &http.Client{Timeout: timeout},
		log:        log,
	}
}

type completionRequest struct {
	Model       string   `json:"model"`
	Prompt      string   `json:"prompt"`
	MaxTokens   int      `json:"max_tokens,omitempty"`
	Temperature float64  `json:"temperature"`
	Stop        []string `json:"stop,omitempty"`
}

type completionResponse struct {
	Choices []struct {
		Text string `json:"text"`
	} `json:"choices"`
}

// Complete sends the prompt and returns the first choice's text.
func (c *Client) Complete(ctx context.Context, req Request) (string, error) {
	const op = "completion.Complete"

	start := time.Now()
	text, err := c.do(ctx, req)
	elapsed := time.Since(start)

	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.ObserveCompletion(status, elapsed.Seconds())

	if err != nil {
		c.log.Warn().Err(err).Dur("duration", elapsed).Msg("Completion request failed")
		return "", errs.E(errs.ExternalService, op, err)
	}

	c.log.Debug().Dur("duration", elapsed).Int("chars", len(text)).Msg("Completion request succeeded")
	return text, nil
}

func (c *Client) do(ctx context.Context, req Request) (string, error) {
	payload, err := json.Marshal(completionRequest{
		Model:       c.model,
		Prompt:      req.Prompt,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
		Stop:        req.Stop,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/completions", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("failed to call completion service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("completion service returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var out completionResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	if len(out.Choices) == 0 {
		return "", fmt.Errorf("completion service returned no choices")
	}

	return out.Choices[0].Text, nil
}
