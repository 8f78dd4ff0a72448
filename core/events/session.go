package events

const (
	// KindSessionStopRequested identifies a full session stop.
	KindSessionStopRequested Kind = "session.stop_requested"
	// KindSessionPauseRequested identifies a listening pause.
	KindSessionPauseRequested Kind = "session.pause_requested"
	// KindSessionResumeRequested identifies a listening resume.
	KindSessionResumeRequested Kind = "session.resume_requested"
	// KindWarmupElapsed identifies the post-start warm-up delay firing.
	KindWarmupElapsed Kind = "session.warmup_elapsed"
	// KindDebounceElapsed identifies the post-playback echo-avoidance delay firing.
	KindDebounceElapsed Kind = "session.debounce_elapsed"
	// KindHistoryClearRequested identifies a conversation log wipe.
	KindHistoryClearRequested Kind = "session.history_clear_requested"
)

// SessionStopRequested asks the orchestrator to end the session from any state.
type SessionStopRequested struct{ Base }

// NewSessionStopRequested creates a session stop request.
func NewSessionStopRequested() SessionStopRequested {
	return SessionStopRequested{Base: NewBase(KindSessionStopRequested)}
}

// SessionPauseRequested asks the orchestrator to stop listening without
// ending the session or clearing history.
type SessionPauseRequested struct{ Base }

// NewSessionPauseRequested creates a pause request.
func NewSessionPauseRequested() SessionPauseRequested {
	return SessionPauseRequested{Base: NewBase(KindSessionPauseRequested)}
}

// SessionResumeRequested asks a paused orchestrator to listen again.
type SessionResumeRequested struct{ Base }

// NewSessionResumeRequested creates a resume request.
func NewSessionResumeRequested() SessionResumeRequested {
	return SessionResumeRequested{Base: NewBase(KindSessionResumeRequested)}
}

// WarmupElapsed marks the post-start warm-up delay firing. Generation ties
// the timer to the session that scheduled it so a stale timer is ignored.
type WarmupElapsed struct {
	Base
	Generation uint64
}

// NewWarmupElapsed creates a warm-up timer event.
func NewWarmupElapsed(generation uint64) WarmupElapsed {
	return WarmupElapsed{Base: NewBase(KindWarmupElapsed), Generation: generation}
}

// DebounceElapsed marks the echo-avoidance delay after playback firing.
// Generation invalidates timers scheduled before a barge-in or stop.
type DebounceElapsed struct {
	Base
	Generation uint64
}

// NewDebounceElapsed creates a debounce timer event.
func NewDebounceElapsed(generation uint64) DebounceElapsed {
	return DebounceElapsed{Base: NewBase(KindDebounceElapsed), Generation: generation}
}

// HistoryClearRequested asks the orchestrator to wipe the conversation log
// without touching session state.
type HistoryClearRequested struct{ Base }

// NewHistoryClearRequested creates a history wipe request.
func NewHistoryClearRequested() HistoryClearRequested {
	return HistoryClearRequested{Base: NewBase(KindHistoryClearRequested)}
}
