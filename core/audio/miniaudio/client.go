// Package miniaudio implements the orchestrator's audio channel and the
// capture frame source on top of malgo (miniaudio bindings): one capture
// device feeding transcription and push-to-talk recording, one playback
// device draining a shared buffer.
package miniaudio

import (
	"fmt"

	"github.com/gen2brain/malgo"
)

type Client struct {
	// audioContext is only saved to be able to uninitialize it, it is an
	// ownership thing
	audioContext *malgo.AllocatedContext
	playbackClient
	captureClient
	recorder
	fetcher payloadFetcher
}

func NewClient(opts ...ClientOption) (*Client, error) {
	audioCtx, err := malgo.InitContext(
		nil,
		malgo.ContextConfig{},
		func(message string) {},
	)
	if err != nil {
		return nil, fmt.Errorf("malgo InitContext failed: %w", err)
	}

	client := Client{
		audioContext: audioCtx,
		fetcher:      newPayloadFetcher(),
	}

	for _, opt := range opts {
		opt(&client)
	}

	if err := client.playbackClient.Init(audioCtx); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to initialize playback client: %w", err)
	}

	if err := client.playbackClient.Start(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to start playback device: %w", err)
	}

	client.captureClient.audioContext = audioCtx

	return &client, nil
}

type ClientOption func(*Client)

// WithHTTPClient overrides the client used to fetch URL payloads.
func WithHTTPClient(httpClient httpDoer) ClientOption {
	return func(c *Client) { c.fetcher.httpClient = httpClient }
}

// CaptureSupported reports whether the host exposes a capture device.
func (c *Client) CaptureSupported() bool {
	devices, err := c.audioContext.Devices(malgo.Capture)
	if err != nil {
		return false
	}
	return len(devices) > 0
}

func (c *Client) Close() {
	_ = c.captureClient.Uninit()
	_ = c.playbackClient.Uninit()
	_ = c.audioContext.Uninit()
	c.audioContext.Free()
}
