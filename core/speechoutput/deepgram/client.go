// Package deepgram provides a speech synthesis client backed by Deepgram's
// streaming speak websocket. Synthesized frames are piped into an AudioSink
// for playback; the ended callback fires once the sink drains.
package deepgram

import (
	"fmt"
	"os"
	"slices"
	"sync"
)

// Voice selects a Deepgram synthesis model.
type Voice string

const (
	VoiceThalia    Voice = "aura-2-thalia-en"
	VoiceAndromeda Voice = "aura-2-andromeda-en"
	VoiceHelena    Voice = "aura-2-helena-en"
	VoiceApollo    Voice = "aura-2-apollo-en"
	VoiceArcas     Voice = "aura-2-arcas-en"
	VoiceAsteria   Voice = "aura-asteria-en"
)

const defaultVoice = VoiceThalia

// AvailableVoices lists the supported synthesis models.
func AvailableVoices() []Voice {
	return []Voice{VoiceThalia, VoiceAndromeda, VoiceHelena, VoiceApollo, VoiceArcas, VoiceAsteria}
}

// AudioSink receives synthesized frames for playback. Mark fires its
// callback once every frame queued before it has audibly played; ClearBuffer
// drops queued frames and pending marks.
type AudioSink interface {
	SendAudio(frames []byte) error
	Mark(done func()) error
	ClearBuffer()
}

// Client implements the orchestrator's speech output contract.
type Client struct {
	apiKey string
	voice  Voice
	sink   AudioSink

	mu      sync.Mutex
	current *streamingRequest
}

type ClientOption func(*Client)

// WithAPIKey overrides the DEEPGRAM_API_KEY environment variable.
func WithAPIKey(apiKey string) ClientOption {
	return func(c *Client) { c.apiKey = apiKey }
}

// WithVoice overrides the synthesis model.
func WithVoice(voice Voice) ClientOption {
	return func(c *Client) { c.voice = voice }
}

// NewClient builds a synthesis client around the given playback sink.
func NewClient(sink AudioSink, opts ...ClientOption) (*Client, error) {
	client := &Client{
		apiKey: os.Getenv("DEEPGRAM_API_KEY"),
		voice:  defaultVoice,
		sink:   sink,
	}

	for _, opt := range opts {
		opt(client)
	}

	if client.sink == nil {
		return nil, fmt.Errorf("audio sink is required")
	}
	if client.apiKey == "" {
		return nil, fmt.Errorf("deepgram api key not found")
	}
	if !slices.Contains(AvailableVoices(), client.voice) {
		return nil, fmt.Errorf("invalid voice %q", client.voice)
	}

	return client, nil
}

// Cancel aborts the in-flight utterance and drops its queued audio. The
// cancelled utterance's ended callback never fires.
func (c *Client) Cancel() error {
	c.mu.Lock()
	current := c.current
	c.current = nil
	c.mu.Unlock()

	c.sink.ClearBuffer()
	if current == nil {
		return nil
	}
	return current.cancel()
}

func (c *Client) setCurrent(request *streamingRequest) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = request
}

func (c *Client) clearCurrent(request *streamingRequest) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == request {
		c.current = nil
	}
}

type websocketMessage struct {
	Type string `json:"type"`
}

type speakMessage struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

var (
	flushMsg = websocketMessage{Type: "Flush"}
	clearMsg = websocketMessage{Type: "Clear"}
	closeMsg = websocketMessage{Type: "Close"}
)

func (r *streamingRequest) sendWebsocketMessage(msg any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed || r.ws == nil {
		return fmt.Errorf("websocket connection closed")
	}

	if err := r.ws.WriteJSON(msg); err != nil {
		return fmt.Errorf("failed to write to websocket: %w", err)
	}
	return nil
}

func (r *streamingRequest) closeWebsocket() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	ws := r.ws
	r.mu.Unlock()

	if err := ws.WriteJSON(closeMsg); err != nil {
		if aggressiveErr := ws.Close(); aggressiveErr != nil {
			return fmt.Errorf("failed to close websocket: %w", err)
		}
	}
	return nil
}
