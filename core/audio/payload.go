package audio

import (
	"encoding/base64"
	"fmt"
	"time"
)

// PayloadSource identifies how a playback payload carries its audio.
type PayloadSource string

const (
	PayloadSourceBinary PayloadSource = "binary"
	PayloadSourceBase64 PayloadSource = "base64"
	PayloadSourceURL    PayloadSource = "url"
)

// Payload is one playable piece of audio: raw bytes, base64-encoded text,
// or a remote URL. Exactly one source is set per payload.
type Payload struct {
	Source   PayloadSource
	Data     []byte
	Base64   string
	URL      string
	MIMEType string
}

// BinaryPayload wraps raw audio bytes with their declared media type.
func BinaryPayload(data []byte, mimeType string) Payload {
	return Payload{Source: PayloadSourceBinary, Data: data, MIMEType: mimeType}
}

// Base64Payload wraps base64-encoded audio text.
func Base64Payload(encoded string) Payload {
	return Payload{Source: PayloadSourceBase64, Base64: encoded}
}

// URLPayload wraps a remote audio location.
func URLPayload(url string) Payload {
	return Payload{Source: PayloadSourceURL, URL: url}
}

// Decode resolves a binary or base64 payload into raw bytes. URL payloads
// must be fetched by the playback channel and return an error here.
func (p Payload) Decode() ([]byte, error) {
	switch p.Source {
	case PayloadSourceBinary:
		return p.Data, nil
	case PayloadSourceBase64:
		decoded, err := base64.StdEncoding.DecodeString(p.Base64)
		if err != nil {
			return nil, fmt.Errorf("failed to decode base64 audio: %w", err)
		}
		return decoded, nil
	}
	return nil, fmt.Errorf("payload source %q carries no inline data", p.Source)
}

// RecordingConfig bounds one push-to-talk capture.
type RecordingConfig struct {
	Encoding    EncodingInfo
	MaxDuration time.Duration
}

// Recording is the product of one bounded capture. AudioEncoded holds the
// base64-encoded buffer in the format named by Format.
type Recording struct {
	AudioEncoded string
	Duration     time.Duration
	Format       string
}

// PlaybackOptions carry the lifecycle callbacks of one playback operation.
type PlaybackOptions struct {
	StartedCallback func()
	EndedCallback   func()
	ErrorCallback   func(error)
}

type PlaybackOption func(*PlaybackOptions)

// WithPlaybackStartedCallback registers a callback for playback begin.
func WithPlaybackStartedCallback(callback func()) PlaybackOption {
	return func(o *PlaybackOptions) { o.StartedCallback = callback }
}

// WithPlaybackEndedCallback registers a callback for playback completion.
func WithPlaybackEndedCallback(callback func()) PlaybackOption {
	return func(o *PlaybackOptions) { o.EndedCallback = callback }
}

// WithPlaybackErrorCallback registers a callback for playback failure.
func WithPlaybackErrorCallback(callback func(error)) PlaybackOption {
	return func(o *PlaybackOptions) { o.ErrorCallback = callback }
}
