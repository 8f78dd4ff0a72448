// Package speechinput defines the capture contract consumed by the
// conversation orchestrator. Implementations deliver transcripts with a
// per-result confidence, plus capture and speech-activity lifecycle signals.
package speechinput

import (
	"time"

	"github.com/voicedesk/voice-core/core/audio"
)

// ErrorCode classifies capture failures. Permission denials need explicit
// user action to recover; the remaining codes are transient.
type ErrorCode string

const (
	ErrorPermissionDenied ErrorCode = "permission-denied"
	ErrorNoSpeech         ErrorCode = "no-speech"
	ErrorDevice           ErrorCode = "device"
)

// Result is one recognizer emission. Interim results are provisional and
// may be revised before the final result for the utterance arrives.
type Result struct {
	Transcript string
	Confidence float64
	Interim    bool
	ReceivedAt time.Time
}

type CaptureOptions struct {
	// ResultCallback receives interim and final transcripts.
	ResultCallback func(Result)
	// ErrorCallback receives classified capture failures.
	ErrorCallback func(ErrorCode)

	StartedCallback func()
	EndedCallback   func()

	SpeechStartedCallback func()
	SpeechEndedCallback   func()

	EncodingInfo audio.EncodingInfo
	Language     string
}

type CaptureOption func(*CaptureOptions)

func WithResultCallback(callback func(Result)) CaptureOption {
	return func(o *CaptureOptions) { o.ResultCallback = callback }
}

func WithErrorCallback(callback func(ErrorCode)) CaptureOption {
	return func(o *CaptureOptions) { o.ErrorCallback = callback }
}

func WithStartedCallback(callback func()) CaptureOption {
	return func(o *CaptureOptions) { o.StartedCallback = callback }
}

func WithEndedCallback(callback func()) CaptureOption {
	return func(o *CaptureOptions) { o.EndedCallback = callback }
}

func WithSpeechStartedCallback(callback func()) CaptureOption {
	return func(o *CaptureOptions) { o.SpeechStartedCallback = callback }
}

func WithSpeechEndedCallback(callback func()) CaptureOption {
	return func(o *CaptureOptions) { o.SpeechEndedCallback = callback }
}

func WithEncodingInfo(encodingInfo audio.EncodingInfo) CaptureOption {
	return func(o *CaptureOptions) { o.EncodingInfo = encodingInfo }
}

func WithLanguage(language string) CaptureOption {
	return func(o *CaptureOptions) { o.Language = language }
}
