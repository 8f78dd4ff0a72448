// Package speechoutput defines the synthesis contract consumed by the
// conversation orchestrator: speak a piece of text, report when speech
// starts and ends, and allow mid-utterance cancellation.
package speechoutput

import "github.com/voicedesk/voice-core/core/audio"

// Priority orders competing utterances. High-priority speech (error
// notices, apologies) may preempt queued low-priority speech.
type Priority string

const (
	PriorityLow  Priority = "low"
	PriorityHigh Priority = "high"
)

type SpeakOptions struct {
	Priority Priority

	// StartedCallback fires when audible speech begins.
	StartedCallback func()
	// EndedCallback fires when the utterance has fully played out.
	EndedCallback func()
	// ErrorCallback fires when synthesis or playback fails; this usually
	// means the utterance was cancelled.
	ErrorCallback func(error)

	EncodingInfo audio.EncodingInfo
}

type SpeakOption func(*SpeakOptions)

func WithPriority(priority Priority) SpeakOption {
	return func(o *SpeakOptions) { o.Priority = priority }
}

func WithStartedCallback(callback func()) SpeakOption {
	return func(o *SpeakOptions) { o.StartedCallback = callback }
}

func WithEndedCallback(callback func()) SpeakOption {
	return func(o *SpeakOptions) { o.EndedCallback = callback }
}

func WithErrorCallback(callback func(error)) SpeakOption {
	return func(o *SpeakOptions) { o.ErrorCallback = callback }
}

func WithEncodingInfo(encodingInfo audio.EncodingInfo) SpeakOption {
	return func(o *SpeakOptions) { o.EncodingInfo = encodingInfo }
}
