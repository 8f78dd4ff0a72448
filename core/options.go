package orchestration

import (
	"context"
	"time"

	"github.com/voicedesk/voice-core/core/audio"
	"github.com/voicedesk/voice-core/core/exchange"
	"github.com/voicedesk/voice-core/core/speechinput"
	"github.com/voicedesk/voice-core/core/speechoutput"
)

// SpeechInput is the capture engine collaborator. It owns its own audio
// acquisition and reports transcripts and lifecycle signals through the
// callbacks registered at Listen time.
type SpeechInput interface {
	Listen(ctx context.Context, opts ...speechinput.CaptureOption) error
	Stop() error
}

// CaptureSupportReporter is optionally implemented by SpeechInput clients
// that can tell up front whether the host supports capture at all. An
// unsupported host is the single fatal start condition.
type CaptureSupportReporter interface {
	CaptureSupported() bool
}

// SpeechOutput is the synthesis collaborator. Speak is asynchronous:
// completion and failure arrive through the registered callbacks.
type SpeechOutput interface {
	Speak(ctx context.Context, text string, opts ...speechoutput.SpeakOption) error
	Cancel() error
}

// AudioChannel records bounded utterances and plays response audio. Play is
// asynchronous: completion and failure arrive through the registered
// callbacks.
type AudioChannel interface {
	StartRecording(ctx context.Context, config audio.RecordingConfig) error
	StopRecording() (audio.Recording, error)
	Play(ctx context.Context, payload audio.Payload, opts ...audio.PlaybackOption) error
	StopPlayback() error
}

// ExchangeClient performs one remote assistant round-trip per utterance.
type ExchangeClient interface {
	SendMessage(ctx context.Context, request exchange.Request) (*exchange.Response, error)
}

type Option func(*Orchestrator)

func WithSpeechInput(client SpeechInput) Option {
	return func(o *Orchestrator) { o.input = client }
}

func WithSpeechOutput(client SpeechOutput) Option {
	return func(o *Orchestrator) { o.output = client }
}

func WithAudioChannel(client AudioChannel) Option {
	return func(o *Orchestrator) { o.channel = client }
}

func WithExchangeClient(client ExchangeClient) Option {
	return func(o *Orchestrator) { o.client = client }
}

// WithLanguage sets the language tag sent with every exchange request.
func WithLanguage(language string) Option {
	return func(o *Orchestrator) { o.language = language }
}

// WithInterruptionEnabled controls barge-in: when enabled, user speech
// starting during assistant playback cancels the playback immediately.
func WithInterruptionEnabled(enabled bool) Option {
	return func(o *Orchestrator) { o.interruptionEnabled = enabled }
}

// WithWarmupDelay overrides the delay between Start and capture engaging.
func WithWarmupDelay(delay time.Duration) Option {
	return func(o *Orchestrator) { o.warmupDelay = delay }
}

// WithDebounceDelay overrides the echo-avoidance delay between playback
// ending and listening resuming.
func WithDebounceDelay(delay time.Duration) Option {
	return func(o *Orchestrator) { o.debounceDelay = delay }
}

// WithMaxRecordingDuration bounds push-to-talk captures.
func WithMaxRecordingDuration(duration time.Duration) Option {
	return func(o *Orchestrator) { o.maxRecordingDuration = duration }
}

// WithFallbackTranscript sets the generic text sent alongside push-to-talk
// audio for services that require a text field.
func WithFallbackTranscript(transcript string) Option {
	return func(o *Orchestrator) { o.fallbackTranscript = transcript }
}

// WithApology overrides the text spoken when an exchange fails.
func WithApology(apology string) Option {
	return func(o *Orchestrator) { o.apology = apology }
}

// WithHistoryCapacity overrides the bounded conversation log size.
func WithHistoryCapacity(capacity int) Option {
	return func(o *Orchestrator) { o.history = NewHistoryLog(capacity) }
}

// WithEncodingInfo sets the audio encoding negotiated with collaborators.
func WithEncodingInfo(encodingInfo audio.EncodingInfo) Option {
	return func(o *Orchestrator) { o.encodingInfo = encodingInfo }
}

// SessionOptions carry the per-session observer callbacks registered at
// Start. All callbacks are invoked from the orchestrator's event loop;
// implementations must not block.
type SessionOptions struct {
	onStateChanged         func(State)
	onTranscription        func(transcript string)
	onInterimTranscription func(transcript string)
	onResponse             func(response string)
	onNavigate             func(destination string)
	onEntryAppended        func(Entry)
	onDroppedUtterance     func(transcript string)
	onSpeakingStateChanged func(isSpeaking bool)
}

type SessionOption func(*SessionOptions)

// WithStateChangedCallback registers a callback for state transitions.
func WithStateChangedCallback(callback func(State)) SessionOption {
	return func(o *SessionOptions) { o.onStateChanged = callback }
}

// WithTranscriptionCallback registers a callback for accepted final
// transcripts, invoked before the exchange is dispatched.
func WithTranscriptionCallback(callback func(transcript string)) SessionOption {
	return func(o *SessionOptions) { o.onTranscription = callback }
}

// WithInterimTranscriptionCallback registers a callback for interim
// transcripts, including ones the confidence filter later rejects.
func WithInterimTranscriptionCallback(callback func(transcript string)) SessionOption {
	return func(o *SessionOptions) { o.onInterimTranscription = callback }
}

// WithResponseCallback registers a callback for assistant reply text.
func WithResponseCallback(callback func(response string)) SessionOption {
	return func(o *SessionOptions) { o.onResponse = callback }
}

// WithNavigationCallback registers the consumer of navigation destinations.
// Destinations are delivered fire-and-forget on their own goroutine.
func WithNavigationCallback(callback func(destination string)) SessionOption {
	return func(o *SessionOptions) { o.onNavigate = callback }
}

// WithEntryAppendedCallback registers a callback for new history entries.
func WithEntryAppendedCallback(callback func(Entry)) SessionOption {
	return func(o *SessionOptions) { o.onEntryAppended = callback }
}

// WithDroppedUtteranceCallback registers a callback for accepted utterances
// dropped because an exchange was already outstanding.
func WithDroppedUtteranceCallback(callback func(transcript string)) SessionOption {
	return func(o *SessionOptions) { o.onDroppedUtterance = callback }
}

// WithSpeakingStateChangedCallback registers a callback for user
// speech-activity changes reported by the capture engine.
func WithSpeakingStateChangedCallback(callback func(isSpeaking bool)) SessionOption {
	return func(o *SessionOptions) { o.onSpeakingStateChanged = callback }
}
