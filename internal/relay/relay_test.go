package relay

import (
	"context"
	"encoding/base64"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voxrelay/voxrelay/internal/completion"
	"github.com/voxrelay/voxrelay/internal/message"
	"github.com/voxrelay/voxrelay/internal/search"
	"github.com/voxrelay/voxrelay/internal/speech"
)

type fakeSearcher struct {
	results  []search.Result
	gotQuery string
}

func (f *fakeSearcher) Fetch(_ context.Context, query string) []search.Result {
	f.gotQuery = query
	return f.results
}

type fakeClient struct {
	text     string
	err      error
	gotTurns []message.Turn
}

func (f *fakeClient) Name() string { return "fake" }
func (f *fakeClient) Complete(_ context.Context, turns []message.Turn) (string, error) {
	f.gotTurns = turns
	return f.text, f.err
}
func (f *fakeClient) Close() error { return nil }

type fakeSynthesizer struct {
	result   *speech.Result
	err      error
	gotText  string
	gotVoice string
}

func (f *fakeSynthesizer) Synthesize(_ context.Context, text, voice string) (*speech.Result, error) {
	f.gotText = text
	f.gotVoice = voice
	return f.result, f.err
}
func (f *fakeSynthesizer) Close() error { return nil }

var fixedNow = func() time.Time {
	return time.Date(2025, time.January, 5, 12, 0, 0, 0, time.UTC)
}

func TestHandleFullPipeline(t *testing.T) {
	searcher := &fakeSearcher{results: []search.Result{{Title: "Paris Weather", Snippet: "18 degrees"}}}
	client := &fakeClient{text: "It's 18 degrees in Paris."}
	synth := &fakeSynthesizer{result: &speech.Result{Audio: []byte("wav-bytes"), ContentType: "audio/wav"}}

	r := New(searcher, client, synth, Options{DefaultVoice: "troy", Now: fixedNow})
	resp, err := r.Handle(context.Background(), &message.ChatRequest{Message: "What's the weather in Paris?"})
	require.NoError(t, err)

	assert.Equal(t, "What's the weather in Paris?", searcher.gotQuery)

	// Composed prompt: system turn first, carrying the search section, then
	// the single user turn.
	require.Len(t, client.gotTurns, 2)
	assert.Equal(t, message.RoleSystem, client.gotTurns[0].Role)
	assert.Contains(t, client.gotTurns[0].Content, "WEB SEARCH RESULTS:")
	assert.Contains(t, client.gotTurns[0].Content, "SOURCE: Paris Weather")
	assert.Equal(t, message.Turn{Role: message.RoleUser, Content: "What's the weather in Paris?"}, client.gotTurns[1])

	assert.Equal(t, "It's 18 degrees in Paris.", resp.Text)
	assert.Equal(t, "It's 18 degrees in Paris.", synth.gotText)
	assert.Equal(t, "troy", synth.gotVoice)

	require.NotNil(t, resp.Audio)
	decoded, err := base64.StdEncoding.DecodeString(*resp.Audio)
	require.NoError(t, err)
	assert.Equal(t, []byte("wav-bytes"), decoded)
}

func TestHandlePreservesConversationOrder(t *testing.T) {
	client := &fakeClient{text: "ok"}
	r := New(nil, client, nil, Options{Now: fixedNow})

	conversation := []message.Turn{
		{Role: message.RoleUser, Content: "hi"},
		{Role: message.RoleAssistant, Content: "hello"},
		{Role: message.RoleUser, Content: "tell me a joke"},
	}
	_, err := r.Handle(context.Background(), &message.ChatRequest{Messages: conversation})
	require.NoError(t, err)

	require.Len(t, client.gotTurns, 4)
	assert.Equal(t, message.RoleSystem, client.gotTurns[0].Role)
	assert.Equal(t, conversation, client.gotTurns[1:])
}

func TestHandleSynthesisFailureDegradesToTextOnly(t *testing.T) {
	client := &fakeClient{text: "a joke"}
	synth := &fakeSynthesizer{err: errors.New("tts unavailable")}

	r := New(nil, client, synth, Options{Now: fixedNow})
	resp, err := r.Handle(context.Background(), &message.ChatRequest{Message: "tell me a joke"})
	require.NoError(t, err, "synthesis failure must not fail the request")
	assert.Equal(t, "a joke", resp.Text)
	assert.Nil(t, resp.Audio)
}

func TestHandleNoSearchResultsStillSucceeds(t *testing.T) {
	searcher := &fakeSearcher{} // always returns nil
	client := &fakeClient{text: "a joke"}

	r := New(searcher, client, nil, Options{Now: fixedNow})
	resp, err := r.Handle(context.Background(), &message.ChatRequest{
		Messages: []message.Turn{{Role: message.RoleUser, Content: "Tell me a joke"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "a joke", resp.Text)
	assert.NotContains(t, client.gotTurns[0].Content, "WEB SEARCH RESULTS")
}

func TestHandleCompletionFailureAborts(t *testing.T) {
	client := &fakeClient{err: &completion.UpstreamError{Provider: "fake", Status: 429, Message: "quota"}}

	r := New(nil, client, nil, Options{Now: fixedNow})
	_, err := r.Handle(context.Background(), &message.ChatRequest{Message: "hi"})
	require.Error(t, err)

	var upstream *completion.UpstreamError
	assert.ErrorAs(t, err, &upstream)
}

func TestHandleEmptyRequestRejected(t *testing.T) {
	client := &fakeClient{text: "never called"}

	r := New(nil, client, nil, Options{Now: fixedNow})
	_, err := r.Handle(context.Background(), &message.ChatRequest{})
	require.Error(t, err)
	assert.ErrorIs(t, err, message.ErrBadRequest)
	assert.Nil(t, client.gotTurns)
}

func TestHandleRequestVoiceOverridesDefault(t *testing.T) {
	client := &fakeClient{text: "ok"}
	synth := &fakeSynthesizer{result: &speech.Result{Audio: []byte("a"), ContentType: "audio/wav"}}

	r := New(nil, client, synth, Options{DefaultVoice: "troy", Now: fixedNow})
	_, err := r.Handle(context.Background(), &message.ChatRequest{Message: "hi", Voice: "aria"})
	require.NoError(t, err)
	assert.Equal(t, "aria", synth.gotVoice)
}
