package events

import "testing"

func TestConstructorsEmitExpectedKinds(t *testing.T) {
	testCases := []struct {
		name     string
		event    Event
		expected Kind
	}{
		{name: "user speech started", event: NewUserSpeechStarted(), expected: KindUserSpeechStarted},
		{name: "user speech ended", event: NewUserSpeechEnded(), expected: KindUserSpeechEnded},
		{name: "user transcript", event: NewUserTranscript("hello", 0.9, false), expected: KindUserTranscript},
		{name: "capture started", event: NewCaptureStarted(), expected: KindCaptureStarted},
		{name: "capture ended", event: NewCaptureEnded(), expected: KindCaptureEnded},
		{name: "capture failed", event: NewCaptureFailed("device"), expected: KindCaptureFailed},
		{name: "exchange resolved", event: NewExchangeResolved(nil, nil), expected: KindExchangeResolved},
		{name: "assistant playback started", event: NewAssistantPlaybackStarted("speech"), expected: KindAssistantPlaybackStarted},
		{name: "assistant playback ended", event: NewAssistantPlaybackEnded(), expected: KindAssistantPlaybackEnded},
		{name: "assistant playback failed", event: NewAssistantPlaybackFailed(nil), expected: KindAssistantPlaybackFailed},
		{name: "recording start requested", event: NewRecordingStartRequested(), expected: KindRecordingStartRequested},
		{name: "recording stop requested", event: NewRecordingStopRequested(false, 0), expected: KindRecordingStopRequested},
		{name: "session stop requested", event: NewSessionStopRequested(), expected: KindSessionStopRequested},
		{name: "session pause requested", event: NewSessionPauseRequested(), expected: KindSessionPauseRequested},
		{name: "session resume requested", event: NewSessionResumeRequested(), expected: KindSessionResumeRequested},
		{name: "warmup elapsed", event: NewWarmupElapsed(1), expected: KindWarmupElapsed},
		{name: "debounce elapsed", event: NewDebounceElapsed(1), expected: KindDebounceElapsed},
		{name: "history clear requested", event: NewHistoryClearRequested(), expected: KindHistoryClearRequested},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			if got := testCase.event.Kind(); got != testCase.expected {
				t.Fatalf("expected kind %q, got %q", testCase.expected, got)
			}
		})
	}
}

func TestTranscriptCarriesConfidenceAndInterimFlag(t *testing.T) {
	event := NewUserTranscript("hello there", 0.85, true)

	if event.Transcript != "hello there" {
		t.Fatalf("expected transcript preserved, got %q", event.Transcript)
	}
	if event.Confidence != 0.85 {
		t.Fatalf("expected confidence preserved, got %v", event.Confidence)
	}
	if !event.Interim {
		t.Fatalf("expected interim flag preserved")
	}
	if event.Timestamp().IsZero() {
		t.Fatalf("expected timestamp set at construction")
	}
}
