// Package gemini implements the completion Client using the Google genai SDK.
package gemini

import (
	"context"
	"fmt"
	"log/slog"

	"google.golang.org/genai"

	"github.com/voxrelay/voxrelay/internal/completion"
	"github.com/voxrelay/voxrelay/internal/config"
	"github.com/voxrelay/voxrelay/internal/message"
)

// Client calls the Gemini API with fixed sampling parameters from config.
type Client struct {
	client      *genai.Client
	model       string
	temperature float64
	maxTokens   int
}

// New creates a Gemini completion client from config. The credential is
// checked here, before any provider call is possible.
func New(ctx context.Context, cfg config.GeminiConfig) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: gemini completion", config.ErrMissingCredential)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}

	return &Client{
		client:      client,
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
	}, nil
}

// Name returns the backend identifier.
func (c *Client) Name() string { return "gemini" }

// Complete sends the turn sequence to the Gemini API and returns the
// generated text. The leading system turn becomes the system instruction;
// assistant turns map to the "model" role.
func (c *Client) Complete(ctx context.Context, turns []message.Turn) (string, error) {
	var system string
	var contents []*genai.Content
	for _, turn := range turns {
		switch turn.Role {
		case message.RoleSystem:
			system = turn.Content
		case message.RoleAssistant:
			contents = append(contents, genai.NewContentFromText(turn.Content, genai.RoleModel))
		default:
			contents = append(contents, genai.NewContentFromText(turn.Content, genai.RoleUser))
		}
	}

	cfg := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(float32(c.temperature)),
		MaxOutputTokens: int32(c.maxTokens),
	}
	if system != "" {
		cfg.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.model, contents, cfg)
	if err != nil {
		return "", &completion.UpstreamError{Provider: "gemini", Message: err.Error()}
	}

	text := resp.Text()
	if text == "" {
		return "", &completion.UpstreamError{Provider: "gemini", Message: "empty response"}
	}

	slog.Debug("completion received", "backend", "gemini", "model", c.model, "text_length", len(text))
	return text, nil
}

// Close is a no-op; the genai client holds no persistent connections.
func (c *Client) Close() error { return nil }
