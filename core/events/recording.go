package events

const (
	// KindRecordingStartRequested identifies a push-to-talk start request.
	KindRecordingStartRequested Kind = "recording.start_requested"
	// KindRecordingStopRequested identifies an explicit push-to-talk stop.
	KindRecordingStopRequested Kind = "recording.stop_requested"
)

// RecordingStartRequested asks the orchestrator to engage push-to-talk capture.
type RecordingStartRequested struct{ Base }

// NewRecordingStartRequested creates a push-to-talk start request.
func NewRecordingStartRequested() RecordingStartRequested {
	return RecordingStartRequested{Base: NewBase(KindRecordingStartRequested)}
}

// RecordingStopRequested asks the orchestrator to finish push-to-talk
// capture. Timeout marks stops produced by the max-duration timer rather
// than an explicit caller; Generation ties a timer stop to the capture
// that scheduled it so a timer firing after an explicit stop is ignored.
type RecordingStopRequested struct {
	Base
	Timeout    bool
	Generation uint64
}

// NewRecordingStopRequested creates a push-to-talk stop request.
func NewRecordingStopRequested(timeout bool, generation uint64) RecordingStopRequested {
	return RecordingStopRequested{Base: NewBase(KindRecordingStopRequested), Timeout: timeout, Generation: generation}
}
