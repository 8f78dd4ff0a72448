package events

const (
	// KindUserSpeechStarted identifies start of user speech activity.
	KindUserSpeechStarted Kind = "user_input.speech_started"
	// KindUserSpeechEnded identifies end of user speech activity.
	KindUserSpeechEnded Kind = "user_input.speech_ended"
	// KindUserTranscript identifies an interim or final transcript.
	KindUserTranscript Kind = "user_input.transcript"
	// KindCaptureStarted identifies the capture engine becoming engaged.
	KindCaptureStarted Kind = "user_input.capture_started"
	// KindCaptureEnded identifies the capture engine disengaging.
	KindCaptureEnded Kind = "user_input.capture_ended"
	// KindCaptureFailed identifies a capture engine error.
	KindCaptureFailed Kind = "user_input.capture_failed"
)

// UserSpeechStarted marks when user speech activity starts.
type UserSpeechStarted struct{ Base }

// NewUserSpeechStarted creates a user speech started event.
func NewUserSpeechStarted() UserSpeechStarted {
	return UserSpeechStarted{Base: NewBase(KindUserSpeechStarted)}
}

// UserSpeechEnded marks when user speech activity ends.
type UserSpeechEnded struct{ Base }

// NewUserSpeechEnded creates a user speech ended event.
func NewUserSpeechEnded() UserSpeechEnded {
	return UserSpeechEnded{Base: NewBase(KindUserSpeechEnded)}
}

// UserTranscript carries a recognizer transcript with its confidence.
// Interim marks provisional results that may still be revised.
type UserTranscript struct {
	Base
	Transcript string
	Confidence float64
	Interim    bool
}

// NewUserTranscript creates a transcript event.
func NewUserTranscript(transcript string, confidence float64, interim bool) UserTranscript {
	return UserTranscript{
		Base:       NewBase(KindUserTranscript),
		Transcript: transcript,
		Confidence: confidence,
		Interim:    interim,
	}
}

// CaptureStarted marks the capture engine becoming engaged.
type CaptureStarted struct{ Base }

// NewCaptureStarted creates a capture started event.
func NewCaptureStarted() CaptureStarted {
	return CaptureStarted{Base: NewBase(KindCaptureStarted)}
}

// CaptureEnded marks the capture engine disengaging.
type CaptureEnded struct{ Base }

// NewCaptureEnded creates a capture ended event.
func NewCaptureEnded() CaptureEnded {
	return CaptureEnded{Base: NewBase(KindCaptureEnded)}
}

// CaptureFailed carries a capture engine error code.
type CaptureFailed struct {
	Base
	Code string
}

// NewCaptureFailed creates a capture error event.
func NewCaptureFailed(code string) CaptureFailed {
	return CaptureFailed{Base: NewBase(KindCaptureFailed), Code: code}
}
