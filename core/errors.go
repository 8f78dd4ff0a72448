package orchestration

import (
	"errors"

	"github.com/voicedesk/voice-core/core/speechinput"
)

var (
	// ErrMissingCollaborator is returned by New when one of the four
	// required collaborators was not bound.
	ErrMissingCollaborator = errors.New("missing collaborator")
	// ErrCaptureUnsupported is returned by Start when the host cannot
	// capture speech at all. This is the only fatal start condition.
	ErrCaptureUnsupported = errors.New("speech capture unsupported on this host")
	// ErrSessionActive is returned by Start when a session is already running.
	ErrSessionActive = errors.New("session already active")
	// ErrClosed is returned once the orchestrator has been closed.
	ErrClosed = errors.New("orchestrator closed")
)

// Spoken user-facing notices. Capture and exchange failures never surface
// as errors to the caller; they are voiced and the session carries on.
const (
	noticePermissionDenied = "I can't hear you because microphone access was denied. Please allow microphone access and resume me."
	noticeNoSpeech         = "I didn't catch that. Could you say it again?"
	noticeDeviceError      = "I'm having trouble with the microphone. Let's try again."
	defaultApology         = "Sorry, I couldn't process that. Please try again."
)

// captureNotice maps a capture error code onto its spoken notice and
// whether the session must pause until the user explicitly resumes it.
func captureNotice(code speechinput.ErrorCode) (notice string, pause bool) {
	switch code {
	case speechinput.ErrorPermissionDenied:
		return noticePermissionDenied, true
	case speechinput.ErrorNoSpeech:
		return noticeNoSpeech, false
	}
	return noticeDeviceError, false
}
