package orchestration

// State is the orchestrator's turn-taking phase. Transitions happen only on
// the event loop, strictly in event arrival order.
type State string

const (
	// StateIdle means no session is active.
	StateIdle State = "idle"
	// StateListening means capture is engaged and transcripts are accepted.
	StateListening State = "listening"
	// StateAwaitingResponse means one exchange request is outstanding.
	StateAwaitingResponse State = "awaiting_response"
	// StateSpeaking means a response is playing, or the post-playback
	// debounce has not elapsed yet.
	StateSpeaking State = "speaking"
	// StatePaused means the session is alive but deliberately not listening.
	StatePaused State = "paused"
)

// Snapshot is a point-in-time view of conversation state. History entries
// are deep copies; mutating them does not affect the orchestrator.
type Snapshot struct {
	State State

	Active           bool
	Listening        bool
	Speaking         bool
	AwaitingResponse bool
	Recording        bool

	LastCommand  string
	LastResponse string

	History []Entry
}

// Snapshot returns a point-in-time view of conversation state.
func (o *Orchestrator) Snapshot() Snapshot {
	o.mu.RLock()
	snapshot := Snapshot{
		State:            o.state,
		Active:           o.active,
		Listening:        o.listening,
		Speaking:         o.speaking,
		AwaitingResponse: o.awaiting,
		Recording:        o.recording,
		LastCommand:      o.lastCommand,
		LastResponse:     o.lastResponse,
	}
	o.mu.RUnlock()

	snapshot.History = o.history.Snapshot()
	return snapshot
}

// State returns the current turn-taking phase.
func (o *Orchestrator) State() State {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.state
}

// IsActive reports whether a session is running.
func (o *Orchestrator) IsActive() bool {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.active
}

func (o *Orchestrator) setState(state State) {
	o.mu.Lock()
	changed := o.state != state
	o.state = state
	o.listening = state == StateListening || o.recording
	o.mu.Unlock()

	if changed && o.session.onStateChanged != nil {
		o.session.onStateChanged(state)
	}
}

func (o *Orchestrator) setSpeaking(speaking bool) {
	o.mu.Lock()
	o.speaking = speaking
	o.mu.Unlock()
}

func (o *Orchestrator) setAwaiting(awaiting bool) {
	o.mu.Lock()
	o.awaiting = awaiting
	o.mu.Unlock()
}

func (o *Orchestrator) setRecording(recording bool) {
	o.mu.Lock()
	o.recording = recording
	o.listening = o.state == StateListening || recording
	o.mu.Unlock()
}
