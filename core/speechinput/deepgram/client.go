// Package deepgram provides a speech capture client backed by Deepgram's
// live transcription websocket. Microphone frames come from an AudioSource
// and are streamed to the socket; transcripts, confidences and VAD events
// come back through the capture callbacks.
package deepgram

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const defaultModel = "nova-3"

// Client implements the orchestrator's speech input contract on top of
// Deepgram live transcription.
type Client struct {
	apiKey string
	model  string
	source FrameSource

	connMu    sync.Mutex
	conn      *websocket.Conn
	lastAudio time.Time
	stopped   bool

	captureCancel context.CancelFunc

	// Read-loop owned: transcript accumulation across continuation finals.
	accumulated    string
	confidence     float64
	unendedSegment bool
}

// FrameSource supplies raw microphone frames in the negotiated encoding.
// StartCapture keeps delivering frames until StopCapture or context
// cancellation; the frames callback may be invoked from the audio thread
// and must not block.
type FrameSource interface {
	StartCapture(ctx context.Context, sampleRate int, format string, frames func([]byte)) error
	StopCapture() error
	CaptureSupported() bool
}

type ClientOption func(*Client)

// WithAPIKey overrides the DEEPGRAM_API_KEY environment variable.
func WithAPIKey(apiKey string) ClientOption {
	return func(c *Client) { c.apiKey = apiKey }
}

// WithModel overrides the transcription model.
func WithModel(model string) ClientOption {
	return func(c *Client) { c.model = model }
}

// NewClient builds a capture client around the given microphone source.
func NewClient(source FrameSource, opts ...ClientOption) (*Client, error) {
	client := &Client{
		apiKey: os.Getenv("DEEPGRAM_API_KEY"),
		model:  defaultModel,
		source: source,
	}

	for _, opt := range opts {
		opt(client)
	}

	if client.source == nil {
		return nil, fmt.Errorf("audio source is required")
	}
	if client.apiKey == "" {
		return nil, fmt.Errorf("deepgram api key not found")
	}

	return client, nil
}

// CaptureSupported reports whether the host exposes a usable capture device.
func (c *Client) CaptureSupported() bool {
	return c.source.CaptureSupported()
}

// Stop ends capture and asks the service to flush and close the stream. The
// ended callback fires once the socket actually closes.
func (c *Client) Stop() error {
	c.connMu.Lock()
	c.stopped = true
	conn := c.conn
	cancel := c.captureCancel
	c.connMu.Unlock()

	if cancel != nil {
		cancel()
	}
	if err := c.source.StopCapture(); err != nil {
		logger.Warn("failed to stop capture source", "error", err)
	}

	if conn == nil {
		return nil
	}

	c.connMu.Lock()
	defer c.connMu.Unlock()
	if err := conn.WriteJSON(websocketMessage{Type: "CloseStream"}); err != nil {
		if closeErr := conn.Close(); closeErr != nil {
			return fmt.Errorf("failed to close stream: %w", err)
		}
	}
	return nil
}

type websocketMessage struct {
	Type string `json:"type"`
}
