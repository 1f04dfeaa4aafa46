// Package groq implements the completion Client against Groq's
// OpenAI-compatible Chat Completions API.
package groq

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/voxrelay/voxrelay/internal/completion"
	"github.com/voxrelay/voxrelay/internal/config"
	"github.com/voxrelay/voxrelay/internal/message"
)

// Client calls the Groq chat completions endpoint with fixed sampling
// parameters from config.
type Client struct {
	apiKey      string
	model       string
	temperature float64
	maxTokens   int
	endpoint    string
	client      *http.Client
}

// New creates a Groq completion client from config. The credential is
// checked here, before any provider call is possible.
func New(cfg config.GroqConfig) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: groq completion", config.ErrMissingCredential)
	}
	return &Client{
		apiKey:      cfg.APIKey,
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		endpoint:    cfg.Endpoint,
		client:      &http.Client{},
	}, nil
}

// Name returns the backend identifier.
func (c *Client) Name() string { return "groq" }

// Complete sends the turn sequence to the Chat Completions API and returns
// the first choice's content.
func (c *Client) Complete(ctx context.Context, turns []message.Turn) (string, error) {
	reqBody := chatRequest{
		Model:       c.model,
		Messages:    turns,
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshalling chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("creating chat request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", &completion.UpstreamError{Provider: "groq", Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return "", &completion.UpstreamError{
			Provider: "groq",
			Status:   resp.StatusCode,
			Message:  providerMessage(respBody),
		}
	}

	var chatResp chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return "", fmt.Errorf("decoding chat response: %w", err)
	}

	if len(chatResp.Choices) == 0 {
		return "", &completion.UpstreamError{Provider: "groq", Message: "no choices returned"}
	}

	text := chatResp.Choices[0].Message.Content
	slog.Debug("completion received", "backend", "groq", "model", c.model, "text_length", len(text))
	return text, nil
}

// Close is a no-op for the Groq client.
func (c *Client) Close() error { return nil }

// --- Internal types and helpers ---

type chatRequest struct {
	Model       string         `json:"model"`
	Messages    []message.Turn `json:"messages"`
	Temperature float64        `json:"temperature"`
	MaxTokens   int            `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// providerMessage extracts the error message from a Groq error body, falling
// back to the raw body when it isn't the expected shape.
func providerMessage(body []byte) string {
	var errResp struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error.Message != "" {
		return errResp.Error.Message
	}
	return string(body)
}
