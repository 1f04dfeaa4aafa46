// Package relay implements the response-composition pipeline.
//
// The relay receives a chat request from the transport, normalizes it into a
// conversation, fetches web-search context, composes the system prompt, calls
// the completion backend, synthesizes speech for the completion, and
// assembles the `{text, audio}` payload. Search and synthesis are
// best-effort: their failures degrade the response (no context, null audio)
// but never abort the request. Normalization and completion failures abort
// with an error the transport maps to a status code.
package relay

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/voxrelay/voxrelay/internal/completion"
	"github.com/voxrelay/voxrelay/internal/message"
	"github.com/voxrelay/voxrelay/internal/prompt"
	"github.com/voxrelay/voxrelay/internal/search"
	"github.com/voxrelay/voxrelay/internal/speech"
)

// Searcher fetches grounding snippets for the current query. *search.Adapter
// is the production implementation.
type Searcher interface {
	Fetch(ctx context.Context, query string) []search.Result
}

// Options carries the relay's policy knobs.
type Options struct {
	// DefaultVoice is used when the request doesn't select one.
	DefaultVoice string

	// CompletionTimeout bounds the completion call. Zero means no bound.
	CompletionTimeout time.Duration

	// SpeechTimeout bounds the synthesis call. Zero means no bound.
	SpeechTimeout time.Duration

	// Now overrides the clock, for tests. Nil means time.Now.
	Now func() time.Time
}

// Relay is the pipeline engine. It holds no per-request state; everything a
// request needs is created in Handle and discarded when it returns.
type Relay struct {
	searcher    Searcher          // nil if search is disabled
	client      completion.Client
	synthesizer speech.Synthesizer // nil if speech is disabled
	opts        Options
}

// New creates a Relay. searcher and synthesizer may be nil to disable the
// corresponding stage.
func New(searcher Searcher, client completion.Client, synthesizer speech.Synthesizer, opts Options) *Relay {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Relay{
		searcher:    searcher,
		client:      client,
		synthesizer: synthesizer,
		opts:        opts,
	}
}

// Handle processes a single chat request through the full pipeline.
func (r *Relay) Handle(ctx context.Context, req *message.ChatRequest) (*message.ChatResponse, error) {
	start := time.Now()
	logger := slog.With("request_id", uuid.NewString())

	// Step 1: Normalize the request into a conversation.
	conversation, query, voice, err := req.Normalize(r.opts.DefaultVoice)
	if err != nil {
		logger.Warn("request rejected", "error", err)
		return nil, err
	}
	logger.Info("relay started", "turns", len(conversation), "voice", voice)

	// Step 2: Fetch web-search context. Failure means no context, never an error.
	var results []search.Result
	if r.searcher != nil {
		results = r.searcher.Fetch(ctx, query)
	}

	// Step 3: Compose the prompt.
	composed := prompt.Compose(conversation, r.opts.Now(), results)

	// Step 4: Generate the completion. This is the one stage whose failure
	// fails the request.
	text, err := r.complete(ctx, composed)
	if err != nil {
		logger.Error("completion failed", "backend", r.client.Name(), "error", err)
		return nil, fmt.Errorf("generating completion: %w", err)
	}
	logger.Info("completion complete", "backend", r.client.Name(), "text_length", len(text))

	resp := &message.ChatResponse{Text: text}

	// Step 5: Synthesize speech. Degrades to text-only on failure.
	if r.synthesizer != nil {
		synthResult, err := r.synthesize(ctx, text, voice)
		if err != nil {
			logger.Warn("speech synthesis failed, continuing without audio", "error", err)
		} else {
			resp.SetAudioBytes(synthResult.Audio)
			resp.ContentType = synthResult.ContentType
			logger.Info("speech synthesis complete", "audio_bytes", len(synthResult.Audio))
		}
	}

	logger.Info("relay complete",
		"duration", time.Since(start),
		"search_results", len(results),
		"has_audio", resp.Audio != nil)
	return resp, nil
}

func (r *Relay) complete(ctx context.Context, turns []message.Turn) (string, error) {
	if r.opts.CompletionTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.opts.CompletionTimeout)
		defer cancel()
	}
	return r.client.Complete(ctx, turns)
}

func (r *Relay) synthesize(ctx context.Context, text, voice string) (*speech.Result, error) {
	if r.opts.SpeechTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.opts.SpeechTimeout)
		defer cancel()
	}
	return r.synthesizer.Synthesize(ctx, text, voice)
}
