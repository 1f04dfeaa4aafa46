// Package message defines the core data types flowing through the voxrelay pipeline.
package message

import (
	"encoding/base64"
	"errors"
	"fmt"
)

// ErrBadRequest marks client-side request errors. Transports map anything
// wrapping it to a 400 with the wrapped detail; everything else is a 500.
var ErrBadRequest = errors.New("bad request")

// Conversation roles. Providers reject anything else, so unknown roles are
// passed through rather than validated here.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn is one message in a conversation, tagged with a role.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is the inbound payload from the voice-assistant front end.
//
// Two input shapes are accepted: a full conversation in Messages (the client
// owns history and resends it each call), or a legacy single-turn Message
// string. Messages wins when both are set.
type ChatRequest struct {
	// Messages is the ordered conversation, oldest first.
	Messages []Turn `json:"messages,omitempty"`

	// Message is the legacy single-turn fallback.
	Message string `json:"message,omitempty"`

	// Voice selects the synthesis voice. Empty means the server default.
	Voice string `json:"voice,omitempty"`
}

// Normalize validates the request and produces the canonical conversation,
// the current query (the text the search step operates on) and the effective
// voice id.
func (r *ChatRequest) Normalize(defaultVoice string) (conversation []Turn, query string, voice string, err error) {
	voice = r.Voice
	if voice == "" {
		voice = defaultVoice
	}

	switch {
	case len(r.Messages) > 0:
		conversation = r.Messages
		query = r.Messages[len(r.Messages)-1].Content
	case r.Message != "":
		conversation = []Turn{{Role: RoleUser, Content: r.Message}}
		query = r.Message
	default:
		return nil, "", "", fmt.Errorf("%w: no messages provided", ErrBadRequest)
	}

	return conversation, query, voice, nil
}

// ChatResponse is the outbound payload.
type ChatResponse struct {
	// Text is the model completion.
	Text string `json:"text"`

	// Audio is the synthesized speech as a base64-encoded string, or JSON
	// null when synthesis was skipped or failed. Audio absence is not an
	// error; the field is always present.
	Audio *string `json:"audio"`

	// ContentType is the MIME type of Audio (e.g. "audio/wav").
	ContentType string `json:"content_type,omitempty"`
}

// SetAudioBytes base64-encodes raw audio bytes into Audio.
func (r *ChatResponse) SetAudioBytes(audio []byte) {
	if len(audio) > 0 {
		s := base64.StdEncoding.EncodeToString(audio)
		r.Audio = &s
	}
}

// ErrorResponse is the body returned for 4xx/5xx statuses.
type ErrorResponse struct {
	Error string `json:"error"`
}
