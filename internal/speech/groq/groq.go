// Package groq implements the speech Synthesizer against Groq's
// OpenAI-compatible audio/speech endpoint.
package groq

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/voxrelay/voxrelay/internal/config"
	"github.com/voxrelay/voxrelay/internal/speech"
)

// Groq caps TTS input length; longer completions are truncated rather than
// rejected so the caller still gets audio for the bulk of the answer.
const maxInputLength = 4096

// Synthesizer calls the Groq speech endpoint and drains the audio stream
// into one buffer.
type Synthesizer struct {
	apiKey       string
	model        string
	defaultVoice string
	endpoint     string
	client       *http.Client
}

// New creates a Groq synthesizer from config.
func New(cfg config.GroqSpeechConfig) (*Synthesizer, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: groq speech", config.ErrMissingCredential)
	}
	return &Synthesizer{
		apiKey:       cfg.APIKey,
		model:        cfg.Model,
		defaultVoice: cfg.Voice,
		endpoint:     cfg.Endpoint,
		client:       &http.Client{},
	}, nil
}

// DefaultVoice returns the configured fallback voice id.
func (s *Synthesizer) DefaultVoice() string { return s.defaultVoice }

// Synthesize sends text to the speech endpoint and returns the full WAV
// payload. The response body is a finite byte stream; it is read to EOF
// before returning so the caller never sees partial audio.
func (s *Synthesizer) Synthesize(ctx context.Context, text, voice string) (*speech.Result, error) {
	if text == "" {
		return nil, fmt.Errorf("empty text for synthesis")
	}
	if voice == "" {
		voice = s.defaultVoice
	}
	if len(text) > maxInputLength {
		text = text[:maxInputLength]
	}

	reqBody := speechRequest{
		Model:          s.model,
		Voice:          voice,
		Input:          text,
		ResponseFormat: "wav",
	}
	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshalling speech request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("creating speech request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("speech request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, fmt.Errorf("speech synthesis failed (status %d): %s", resp.StatusCode, respBody)
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading audio stream: %w", err)
	}
	if len(audio) == 0 {
		return nil, fmt.Errorf("provider returned empty audio")
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "audio/wav"
	}

	slog.Debug("speech synthesis complete", "voice", voice, "audio_bytes", len(audio), "content_type", contentType)
	return &speech.Result{Audio: audio, ContentType: contentType}, nil
}

// Close is a no-op — connections are per-request.
func (s *Synthesizer) Close() error { return nil }

type speechRequest struct {
	Model          string `json:"model"`
	Voice          string `json:"voice"`
	Input          string `json:"input"`
	ResponseFormat string `json:"response_format"`
}
