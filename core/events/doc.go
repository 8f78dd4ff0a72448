// Package events defines the typed conversation event contract.
//
// Event kinds are grouped by receiver-facing namespaces:
//
//   - user_input.*: speech-capture activity and transcripts.
//   - exchange.*: remote assistant request lifecycle.
//   - assistant_playback.*: audio/speech output lifecycle.
//   - recording.*: push-to-talk capture lifecycle.
//   - session.*: session control requests and internal timers.
//
// Semantics used across the package:
//
//   - Interim: a provisional transcript that may still be revised.
//   - Final: the recognizer's settled transcript for an utterance.
//   - Started/Ended: lifecycle boundaries reported by a collaborator.
//   - Requested: an action asked of the orchestrator that it applies in
//     queue order, never immediately.
//
// Every event carries the wall-clock time it was created at. The
// orchestrator processes events strictly in arrival order; ordering between
// independently produced events is therefore decided by queue insertion,
// not by these timestamps.
package events
