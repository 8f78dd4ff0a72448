package events

const (
	// KindAssistantPlaybackStarted identifies output playback beginning.
	KindAssistantPlaybackStarted Kind = "assistant_playback.started"
	// KindAssistantPlaybackEnded identifies output playback completing.
	KindAssistantPlaybackEnded Kind = "assistant_playback.ended"
	// KindAssistantPlaybackFailed identifies output playback failing.
	KindAssistantPlaybackFailed Kind = "assistant_playback.failed"
)

// AssistantPlaybackStarted marks audio or synthesized speech starting.
// Route names the playback path that was selected for the response.
type AssistantPlaybackStarted struct {
	Base
	Route string
}

// NewAssistantPlaybackStarted creates a playback started event.
func NewAssistantPlaybackStarted(route string) AssistantPlaybackStarted {
	return AssistantPlaybackStarted{Base: NewBase(KindAssistantPlaybackStarted), Route: route}
}

// AssistantPlaybackEnded marks audio or synthesized speech completing.
type AssistantPlaybackEnded struct{ Base }

// NewAssistantPlaybackEnded creates a playback ended event.
func NewAssistantPlaybackEnded() AssistantPlaybackEnded {
	return AssistantPlaybackEnded{Base: NewBase(KindAssistantPlaybackEnded)}
}

// AssistantPlaybackFailed marks a playback error. Playback errors are
// non-fatal; the orchestrator treats them like completion.
type AssistantPlaybackFailed struct {
	Base
	Err error
}

// NewAssistantPlaybackFailed creates a playback failure event.
func NewAssistantPlaybackFailed(err error) AssistantPlaybackFailed {
	return AssistantPlaybackFailed{Base: NewBase(KindAssistantPlaybackFailed), Err: err}
}
