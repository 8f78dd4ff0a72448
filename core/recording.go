package orchestration

import (
	"time"

	"github.com/voicedesk/voice-core/core/audio"
	"github.com/voicedesk/voice-core/core/events"
	"github.com/voicedesk/voice-core/core/exchange"
)

func (o *Orchestrator) handleRecordingStart(session uint64) {
	if !o.IsActive() {
		return
	}

	o.mu.RLock()
	recording := o.recording
	awaiting := o.awaiting
	o.mu.RUnlock()
	if recording || awaiting {
		return
	}

	err := o.channel.StartRecording(o.baseContext, audio.RecordingConfig{
		Encoding:    o.encodingInfo,
		MaxDuration: o.maxRecordingDuration,
	})
	if err != nil {
		logger.Warn("failed to start recording", "error", err)
		o.speakNotice(noticeDeviceError)
		return
	}

	o.setRecording(true)

	o.recordGen++
	gen := o.recordGen
	o.recordTimer = time.AfterFunc(o.maxRecordingDuration, func() {
		o.postFor(session, events.NewRecordingStopRequested(true, gen))
	})
}

func (o *Orchestrator) handleRecordingStop(session uint64, event events.RecordingStopRequested) {
	o.mu.RLock()
	recording := o.recording
	o.mu.RUnlock()
	if !recording {
		return
	}
	// A timeout from an already-finished recording must not cut the next
	// one short.
	if event.Timeout && event.Generation != o.recordGen {
		return
	}

	o.recordGen++
	if o.recordTimer != nil {
		o.recordTimer.Stop()
		o.recordTimer = nil
	}
	o.setRecording(false)

	rec, err := o.channel.StopRecording()
	if err != nil {
		// Failed recordings are dropped, never retried.
		logger.Warn("failed to stop recording", "error", err)
		o.speakNotice(noticeDeviceError)
		return
	}
	if rec.AudioEncoded == "" {
		return
	}

	if !o.IsActive() {
		return
	}

	entry := newEntry(RoleUser, o.fallbackTranscript)
	o.appendEntry(entry)

	o.mu.Lock()
	o.lastCommand = o.fallbackTranscript
	o.mu.Unlock()

	o.setAwaiting(true)
	o.setState(StateAwaitingResponse)
	o.dispatchExchange(session, exchange.Request{
		Text:         o.fallbackTranscript,
		Language:     o.language,
		AudioEncoded: rec.AudioEncoded,
		AudioFormat:  rec.Format,
	})
}
