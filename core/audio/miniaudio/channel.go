package miniaudio

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/voicedesk/voice-core/core/audio"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// recorder accumulates one bounded push-to-talk capture by tapping the
// shared capture device.
type recorder struct {
	mu       sync.Mutex
	active   bool
	buffer   []byte
	maxBytes int
	encoding audio.EncodingInfo
}

// StartRecording engages a bounded capture. The buffer is capped at the
// configured maximum duration; frames past the cap are discarded.
func (c *Client) StartRecording(ctx context.Context, config audio.RecordingConfig) error {
	encoding := config.Encoding
	if encoding.IsZero() {
		encoding = audio.GetDefaultEncodingInfo()
	}

	c.recorder.mu.Lock()
	if c.recorder.active {
		c.recorder.mu.Unlock()
		return fmt.Errorf("recording already in progress")
	}
	c.recorder.active = true
	c.recorder.buffer = nil
	c.recorder.encoding = encoding
	c.recorder.maxBytes = encoding.BytesPerSecond() * int(config.MaxDuration.Milliseconds()) / 1000
	c.recorder.mu.Unlock()

	err := c.captureClient.startTap(encoding.SampleRate, encoding.Format.Name(), c.recorder.append)
	if err != nil {
		c.recorder.mu.Lock()
		c.recorder.active = false
		c.recorder.mu.Unlock()
		return fmt.Errorf("failed to start recording: %w", err)
	}
	return nil
}

// StopRecording disengages the tap and returns the base64-encoded buffer.
func (c *Client) StopRecording() (audio.Recording, error) {
	c.captureClient.stopTap()

	c.recorder.mu.Lock()
	defer c.recorder.mu.Unlock()
	if !c.recorder.active {
		return audio.Recording{}, fmt.Errorf("no recording in progress")
	}
	c.recorder.active = false

	buffer := c.recorder.buffer
	c.recorder.buffer = nil
	if len(buffer) == 0 {
		return audio.Recording{}, nil
	}

	bytesPerSecond := c.recorder.encoding.BytesPerSecond()
	duration := time.Duration(len(buffer)) * time.Second / time.Duration(bytesPerSecond)

	return audio.Recording{
		AudioEncoded: base64.StdEncoding.EncodeToString(buffer),
		Duration:     duration,
		Format:       c.recorder.encoding.Format.MIMEType(),
	}, nil
}

func (r *recorder) append(frame []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.active || len(r.buffer) >= r.maxBytes {
		return
	}
	if remaining := r.maxBytes - len(r.buffer); len(frame) > remaining {
		frame = frame[:remaining]
	}
	r.buffer = append(r.buffer, frame...)
}

// Play queues a payload's audio on the playback device. It returns once the
// audio is resolved and queued; completion arrives through the callbacks.
func (c *Client) Play(ctx context.Context, payload audio.Payload, opts ...audio.PlaybackOption) error {
	options := &audio.PlaybackOptions{}
	for _, opt := range opts {
		opt(options)
	}

	var frames []byte
	var err error
	if payload.Source == audio.PayloadSourceURL {
		frames, err = c.fetcher.fetch(ctx, payload.URL)
	} else {
		frames, err = payload.Decode()
	}
	if err != nil {
		return fmt.Errorf("failed to resolve audio payload: %w", err)
	}
	if len(frames) == 0 {
		return fmt.Errorf("audio payload is empty")
	}

	if err := c.playbackClient.SendAudio(frames); err != nil {
		return fmt.Errorf("failed to queue audio: %w", err)
	}

	if options.StartedCallback != nil {
		options.StartedCallback()
	}
	if options.EndedCallback != nil {
		if err := c.playbackClient.Mark(options.EndedCallback); err != nil {
			return fmt.Errorf("failed to mark playback end: %w", err)
		}
	}
	return nil
}

// StopPlayback drops everything queued on the playback device. Pending
// completion callbacks are discarded with the buffer.
func (c *Client) StopPlayback() error {
	c.playbackClient.ClearBuffer()
	return nil
}

type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

type payloadFetcher struct {
	httpClient httpDoer
}

func newPayloadFetcher() payloadFetcher {
	return payloadFetcher{httpClient: &http.Client{
		Transport: otelhttp.NewTransport(http.DefaultTransport),
		Timeout:   30 * time.Second,
	}}
}

func (f payloadFetcher) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create audio request: %w", err)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch audio: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch audio: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read audio body: %w", err)
	}
	return body, nil
}
