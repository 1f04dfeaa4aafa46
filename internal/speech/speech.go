// Package speech defines the interface for text-to-speech synthesis.
//
// voxrelay speaks its completions back to the caller. Synthesis is
// best-effort: the relay converts any error from a Synthesizer into a
// text-only response, so implementations are free to fail loudly.
package speech

import "context"

// Synthesizer converts text to audio.
type Synthesizer interface {
	// Synthesize generates audio for the given text and voice. The provider
	// may stream; implementations must drain the stream and return one
	// contiguous buffer — audio is an atomic unit in the response.
	Synthesize(ctx context.Context, text, voice string) (*Result, error)

	// Close releases any resources held by the synthesizer.
	Close() error
}

// Result holds the output of speech synthesis.
type Result struct {
	// Audio is the complete synthesized audio.
	Audio []byte

	// ContentType is the MIME type of Audio (e.g., "audio/wav").
	ContentType string
}
