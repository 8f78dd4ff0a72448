package orchestration

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/voicedesk/voice-core/core/audio"
	"github.com/voicedesk/voice-core/core/events"
	"github.com/voicedesk/voice-core/core/exchange"
	"github.com/voicedesk/voice-core/core/speechinput"
	"github.com/voicedesk/voice-core/core/speechoutput"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	// eventQueueCapacity bounds the event backlog; a full queue drops
	// events rather than block a collaborator callback.
	eventQueueCapacity = 64

	// defaultWarmupDelay avoids racing capture-engine initialization
	// right after start.
	defaultWarmupDelay = 500 * time.Millisecond
	// defaultDebounceDelay keeps the microphone from re-capturing the
	// tail of the assistant's own voice after playback.
	defaultDebounceDelay = 500 * time.Millisecond
	// defaultMaxRecordingDuration bounds push-to-talk captures.
	defaultMaxRecordingDuration = 10 * time.Second

	defaultLanguage           = "en"
	defaultFallbackTranscript = "Voice message"
)

// Orchestrator turns speech-capture events and asynchronous assistant
// exchanges into a turn-taking conversation. All collaborator callbacks are
// funneled through one event loop, so state only ever mutates in event
// arrival order; the remaining races are ordering races between
// independently produced events, which the loop resolves one at a time.
type Orchestrator struct {
	input   SpeechInput
	output  SpeechOutput
	channel AudioChannel
	client  ExchangeClient

	language             string
	interruptionEnabled  bool
	warmupDelay          time.Duration
	debounceDelay        time.Duration
	maxRecordingDuration time.Duration
	fallbackTranscript   string
	apology              string
	encodingInfo         audio.EncodingInfo

	history *HistoryLog

	queue     chan queuedEvent
	closeCh   chan struct{}
	done      chan struct{}
	closeOnce sync.Once

	// Loop-owned fields: only the event loop goroutine touches these.
	baseContext    context.Context
	session        SessionOptions
	captureEngaged bool
	pendingNotice  string
	warmupGen      uint64
	debounceGen    uint64
	recordGen      uint64
	recordTimer    *time.Timer

	mu           sync.RWMutex
	sessionID    uint64
	state        State
	active       bool
	listening    bool
	speaking     bool
	awaiting     bool
	recording    bool
	lastCommand  string
	lastResponse string
}

type queuedEvent struct {
	session uint64
	event   events.Event
}

const kindSessionStartRequested events.Kind = "session.start_requested"

// sessionStartRequested carries the per-session context and callbacks into
// the loop; it is the only event the loop accepts from a new session.
type sessionStartRequested struct {
	events.Base
	ctx     context.Context
	options SessionOptions
}

func newSessionStartRequested(ctx context.Context, options SessionOptions) sessionStartRequested {
	return sessionStartRequested{Base: events.NewBase(kindSessionStartRequested), ctx: ctx, options: options}
}

// New builds an orchestrator. All four collaborators must be bound; a
// missing one is a construction error, so call sites never need nil-guards.
func New(opts ...Option) (*Orchestrator, error) {
	o := &Orchestrator{
		language:             defaultLanguage,
		interruptionEnabled:  true,
		warmupDelay:          defaultWarmupDelay,
		debounceDelay:        defaultDebounceDelay,
		maxRecordingDuration: defaultMaxRecordingDuration,
		fallbackTranscript:   defaultFallbackTranscript,
		apology:              defaultApology,
		encodingInfo:         audio.GetDefaultEncodingInfo(),
		history:              NewHistoryLog(DefaultHistoryCapacity),
		queue:                make(chan queuedEvent, eventQueueCapacity),
		closeCh:              make(chan struct{}),
		done:                 make(chan struct{}),
		baseContext:          context.Background(),
		state:                StateIdle,
	}

	for _, opt := range opts {
		opt(o)
	}

	switch {
	case o.input == nil:
		return nil, fmt.Errorf("%w: speech input", ErrMissingCollaborator)
	case o.output == nil:
		return nil, fmt.Errorf("%w: speech output", ErrMissingCollaborator)
	case o.channel == nil:
		return nil, fmt.Errorf("%w: audio channel", ErrMissingCollaborator)
	case o.client == nil:
		return nil, fmt.Errorf("%w: exchange client", ErrMissingCollaborator)
	}

	go o.loop()
	return o, nil
}

// Start begins a session: after a short warm-up delay capture engages and
// the orchestrator listens for utterances. The only error conditions are a
// closed orchestrator, an already-running session, and a host without any
// capture support; every later failure is voiced to the user instead.
func (o *Orchestrator) Start(ctx context.Context, opts ...SessionOption) error {
	if o.isClosed() {
		return ErrClosed
	}

	if reporter, ok := o.input.(CaptureSupportReporter); ok && !reporter.CaptureSupported() {
		return ErrCaptureUnsupported
	}

	options := SessionOptions{}
	for _, opt := range opts {
		opt(&options)
	}

	o.mu.Lock()
	if o.active {
		o.mu.Unlock()
		return ErrSessionActive
	}
	o.active = true
	o.sessionID++
	session := o.sessionID
	o.mu.Unlock()

	if ctx == nil {
		ctx = context.Background()
	}
	o.postFor(session, newSessionStartRequested(ctx, options))
	return nil
}

// Stop ends the session from any state. Capture and playback are cancelled
// best-effort; an in-flight exchange request is not aborted, its late
// resolution is discarded instead. Stop is idempotent.
func (o *Orchestrator) Stop() {
	o.mu.Lock()
	if !o.active {
		o.mu.Unlock()
		return
	}
	o.active = false
	session := o.sessionID
	o.mu.Unlock()

	o.postFor(session, events.NewSessionStopRequested())
}

// Pause stops listening without ending the session or clearing history.
func (o *Orchestrator) Pause() { o.post(events.NewSessionPauseRequested()) }

// Resume returns a paused session to listening.
func (o *Orchestrator) Resume() { o.post(events.NewSessionResumeRequested()) }

// StartAudioRecording engages bounded push-to-talk capture instead of
// continuous listening. Capture auto-stops at the configured maximum
// duration.
func (o *Orchestrator) StartAudioRecording() { o.post(events.NewRecordingStartRequested()) }

// StopAudioRecording finishes push-to-talk capture and sends the encoded
// buffer to the assistant. Failed recordings are never retried.
func (o *Orchestrator) StopAudioRecording() { o.post(events.NewRecordingStopRequested(false, 0)) }

// ClearHistory wipes the conversation log without touching session state.
func (o *Orchestrator) ClearHistory() { o.post(events.NewHistoryClearRequested()) }

// History exposes the bounded conversation log.
func (o *Orchestrator) History() *HistoryLog { return o.history }

// ExportHistory serializes the conversation log for diagnostics.
func (o *Orchestrator) ExportHistory() ([]byte, error) { return o.history.Export() }

// Close ends the session and shuts the event loop down. The orchestrator
// cannot be restarted afterwards.
func (o *Orchestrator) Close() {
	o.closeOnce.Do(func() {
		o.mu.Lock()
		wasActive := o.active
		o.active = false
		o.listening = false
		o.speaking = false
		o.awaiting = false
		o.recording = false
		o.state = StateIdle
		o.mu.Unlock()

		if wasActive {
			if err := o.input.Stop(); err != nil {
				logger.Warn("failed to stop capture on close", "error", err)
			}
			o.cancelPlayback()
		}
		close(o.closeCh)
	})
	<-o.done
}

func (o *Orchestrator) isClosed() bool {
	select {
	case <-o.closeCh:
		return true
	default:
		return false
	}
}

func (o *Orchestrator) post(event events.Event) {
	o.mu.RLock()
	session := o.sessionID
	o.mu.RUnlock()
	o.postFor(session, event)
}

func (o *Orchestrator) postFor(session uint64, event events.Event) {
	select {
	case o.queue <- queuedEvent{session: session, event: event}:
	default:
		logger.Warn("event queue full, dropping event", "kind", string(event.Kind()))
	}
}

func (o *Orchestrator) loop() {
	defer close(o.done)

	for {
		select {
		case <-o.closeCh:
			return
		case queued := <-o.queue:
			o.handleEvent(queued)
		}
	}
}

func (o *Orchestrator) handleEvent(queued queuedEvent) {
	if start, ok := queued.event.(sessionStartRequested); ok {
		o.startSession(queued.session, start)
		return
	}

	// Stop requests are exempt from the staleness check so a stop that
	// races a restart still runs its cleanup; handleStop refuses to touch
	// an active session.
	if _, ok := queued.event.(events.SessionStopRequested); ok {
		o.handleStop()
		return
	}

	o.mu.RLock()
	current := o.sessionID
	o.mu.RUnlock()
	if queued.session != current {
		// Trailing event from a collaborator of an earlier session.
		return
	}

	switch event := queued.event.(type) {
	case events.UserSpeechStarted:
		o.handleSpeechStarted()
	case events.UserSpeechEnded:
		if o.session.onSpeakingStateChanged != nil {
			o.session.onSpeakingStateChanged(false)
		}
	case events.UserTranscript:
		o.handleTranscript(queued.session, event)
	case events.ExchangeResolved:
		o.handleExchangeResolved(queued.session, event)
	case events.AssistantPlaybackStarted:
		o.setSpeaking(true)
	case events.AssistantPlaybackEnded:
		o.handlePlaybackFinished(queued.session, nil)
	case events.AssistantPlaybackFailed:
		o.handlePlaybackFinished(queued.session, event.Err)
	case events.CaptureStarted:
		o.captureEngaged = true
	case events.CaptureEnded:
		o.handleCaptureEnded(queued.session)
	case events.CaptureFailed:
		o.handleCaptureError(speechinput.ErrorCode(event.Code))
	case events.WarmupElapsed:
		o.handleWarmupElapsed(queued.session, event)
	case events.DebounceElapsed:
		o.handleDebounceElapsed(queued.session, event)
	case events.SessionPauseRequested:
		o.handlePause()
	case events.SessionResumeRequested:
		o.handleResume(queued.session)
	case events.RecordingStartRequested:
		o.handleRecordingStart(queued.session)
	case events.RecordingStopRequested:
		o.handleRecordingStop(queued.session, event)
	case events.HistoryClearRequested:
		o.history.Clear()
	}
}

func (o *Orchestrator) startSession(session uint64, start sessionStartRequested) {
	o.baseContext = start.ctx
	o.session = start.options
	o.captureEngaged = false

	o.warmupGen++
	gen := o.warmupGen
	time.AfterFunc(o.warmupDelay, func() {
		o.postFor(session, events.NewWarmupElapsed(gen))
	})
}

func (o *Orchestrator) handleWarmupElapsed(session uint64, event events.WarmupElapsed) {
	if event.Generation != o.warmupGen {
		return
	}
	if !o.IsActive() {
		return
	}
	if o.State() == StatePaused {
		// A capture error paused the session before warm-up finished; only
		// an explicit resume may re-engage the microphone.
		return
	}

	o.resumeListening(session)
}

func (o *Orchestrator) handleSpeechStarted() {
	if o.session.onSpeakingStateChanged != nil {
		o.session.onSpeakingStateChanged(true)
	}
	if !o.IsActive() {
		return
	}

	o.mu.RLock()
	state := o.state
	o.mu.RUnlock()
	if state != StateSpeaking || !o.interruptionEnabled {
		return
	}

	// Barge-in: the user's new utterance outranks assistant playback, so
	// cancel it now instead of waiting for the debounce.
	o.cancelPlayback()
	o.debounceGen++
	o.setSpeaking(false)
	o.setState(StateListening)
}

func (o *Orchestrator) handleTranscript(session uint64, event events.UserTranscript) {
	if !o.IsActive() {
		return
	}

	if event.Interim && o.session.onInterimTranscription != nil {
		o.session.onInterimTranscription(event.Transcript)
	}

	if !acceptTranscript(event.Transcript, event.Confidence, event.Interim) {
		return
	}

	o.mu.RLock()
	state := o.state
	awaiting := o.awaiting
	o.mu.RUnlock()

	if awaiting {
		// One exchange at a time: a second utterance arriving while a
		// request is outstanding is dropped, never queued, so responses
		// cannot resolve out of turn order.
		logger.Info("dropping utterance, exchange outstanding", "transcript", event.Transcript)
		if o.session.onDroppedUtterance != nil {
			o.session.onDroppedUtterance(event.Transcript)
		}
		return
	}
	if state != StateListening {
		return
	}

	transcript := strings.TrimSpace(event.Transcript)
	if o.session.onTranscription != nil {
		o.session.onTranscription(transcript)
	}

	confidence := event.Confidence
	entry := newEntry(RoleUser, transcript)
	entry.Confidence = &confidence
	o.appendEntry(entry)

	o.mu.Lock()
	o.lastCommand = transcript
	o.mu.Unlock()

	o.setAwaiting(true)
	o.setState(StateAwaitingResponse)
	o.dispatchExchange(session, exchange.Request{Text: transcript, Language: o.language})
}

func (o *Orchestrator) dispatchExchange(session uint64, request exchange.Request) {
	baseContext := o.baseContext
	go func() {
		ctx, span := tracer.Start(baseContext, "process utterance")
		defer span.End()
		span.SetAttributes(attribute.Bool("request.has_audio", request.AudioEncoded != ""))

		response, err := o.client.SendMessage(ctx, request)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		o.postFor(session, events.NewExchangeResolved(response, err))
	}()
}

func (o *Orchestrator) handleExchangeResolved(session uint64, event events.ExchangeResolved) {
	o.setAwaiting(false)
	if !o.IsActive() {
		// The session stopped while the request was in flight.
		return
	}

	o.mu.RLock()
	paused := o.state == StatePaused
	o.mu.RUnlock()

	response := event.Response
	if event.Err != nil || response == nil || !response.Success {
		if event.Err != nil {
			logger.Error("assistant exchange failed", "error", event.Err)
		} else if response != nil && response.Error != "" {
			logger.Warn("assistant refused the request", "error", response.Error)
		}
		if paused {
			// The capture pause outlives the exchange; the spoken notice
			// already told the user what happened.
			return
		}
		o.speakText(session, o.apology, speechoutput.PriorityHigh)
		return
	}

	entry := newEntry(RoleAssistant, response.Response)
	entry.Action = response.Action
	o.appendEntry(entry)

	o.mu.Lock()
	o.lastResponse = response.Response
	o.mu.Unlock()

	if o.session.onResponse != nil {
		o.session.onResponse(response.Response)
	}

	if destination := response.Destination(); destination != "" && o.session.onNavigate != nil {
		// Fire-and-forget; navigation never affects the state machine.
		go o.session.onNavigate(destination)
	}

	if paused {
		// The reply is logged and surfaced through callbacks but not
		// voiced; the session stays paused until an explicit resume.
		return
	}

	route := selectRoute(response)
	if route == routeSpeech && strings.TrimSpace(response.Response) == "" {
		// Nothing playable in the reply; keep the turn moving.
		o.resumeListening(session)
		return
	}

	o.startPlayback(session, response, route)
}

func (o *Orchestrator) startPlayback(session uint64, response *exchange.Response, route playbackRoute) {
	o.setSpeaking(true)
	o.setState(StateSpeaking)

	payload, ok := payloadForRoute(response, route)
	if !ok {
		o.speakFallback(session, response.Response)
		return
	}

	err := o.channel.Play(o.baseContext, payload,
		audio.WithPlaybackStartedCallback(func() {
			o.postFor(session, events.NewAssistantPlaybackStarted(string(route)))
		}),
		audio.WithPlaybackEndedCallback(func() {
			o.postFor(session, events.NewAssistantPlaybackEnded())
		}),
		audio.WithPlaybackErrorCallback(func(err error) {
			o.postFor(session, events.NewAssistantPlaybackFailed(err))
		}),
	)
	if err != nil {
		// Non-fatal: treated exactly like a playback that failed midway.
		o.postFor(session, events.NewAssistantPlaybackFailed(err))
	}
}

// speakText voices text through the normal speaking path: the state machine
// enters Speaking and returns to Listening after the debounce.
func (o *Orchestrator) speakText(session uint64, text string, priority speechoutput.Priority) {
	o.setSpeaking(true)
	o.setState(StateSpeaking)
	o.speak(session, text, priority)
}

// speakFallback voices reply text when a response carries no audio.
func (o *Orchestrator) speakFallback(session uint64, text string) {
	o.speak(session, text, speechoutput.PriorityLow)
}

// speakNotice voices a capture notice outside the turn cycle: it never
// enters Speaking and posts no playback events, so a paused session stays
// paused and a notice finishing cannot end an ongoing turn.
func (o *Orchestrator) speakNotice(text string) {
	err := o.output.Speak(o.baseContext, text,
		speechoutput.WithPriority(speechoutput.PriorityHigh),
		speechoutput.WithEncodingInfo(o.encodingInfo),
		speechoutput.WithErrorCallback(func(err error) {
			logger.Warn("notice playback failed", "error", err)
		}),
	)
	if err != nil {
		logger.Warn("failed to speak notice", "error", err)
	}
}

func (o *Orchestrator) speak(session uint64, text string, priority speechoutput.Priority) {
	err := o.output.Speak(o.baseContext, text,
		speechoutput.WithPriority(priority),
		speechoutput.WithEncodingInfo(o.encodingInfo),
		speechoutput.WithStartedCallback(func() {
			o.postFor(session, events.NewAssistantPlaybackStarted(string(routeSpeech)))
		}),
		speechoutput.WithEndedCallback(func() {
			o.postFor(session, events.NewAssistantPlaybackEnded())
		}),
		speechoutput.WithErrorCallback(func(err error) {
			o.postFor(session, events.NewAssistantPlaybackFailed(err))
		}),
	)
	if err != nil {
		o.postFor(session, events.NewAssistantPlaybackFailed(err))
	}
}

func (o *Orchestrator) handlePlaybackFinished(session uint64, playbackErr error) {
	if playbackErr != nil {
		logger.Warn("playback failed, continuing as completed", "error", playbackErr)
	}

	o.setSpeaking(false)
	if !o.IsActive() {
		o.setState(StateIdle)
		return
	}

	o.mu.RLock()
	state := o.state
	o.mu.RUnlock()
	if state != StateSpeaking {
		// A notice finished while listening or paused, or a barge-in
		// already moved the session on.
		return
	}

	o.debounceGen++
	gen := o.debounceGen
	time.AfterFunc(o.debounceDelay, func() {
		o.postFor(session, events.NewDebounceElapsed(gen))
	})
}

func (o *Orchestrator) handleDebounceElapsed(session uint64, event events.DebounceElapsed) {
	if event.Generation != o.debounceGen {
		return
	}
	if !o.IsActive() {
		o.setState(StateIdle)
		return
	}

	o.mu.RLock()
	state := o.state
	o.mu.RUnlock()
	if state != StateSpeaking {
		return
	}

	o.resumeListening(session)
}

func (o *Orchestrator) handleCaptureEnded(session uint64) {
	o.captureEngaged = false

	o.mu.RLock()
	state := o.state
	active := o.active
	o.mu.RUnlock()

	// Capture engines end on their own after silence or errors; keep the
	// session listening by re-engaging.
	if active && state == StateListening {
		if err := o.engageCapture(session); err != nil {
			logger.Warn("failed to restart capture", "error", err)
		}
	}
}

func (o *Orchestrator) handleCaptureError(code speechinput.ErrorCode) {
	if !o.IsActive() {
		return
	}

	notice, pause := captureNotice(code)

	o.mu.RLock()
	state := o.state
	o.mu.RUnlock()

	if pause {
		if err := o.input.Stop(); err != nil {
			logger.Warn("failed to stop capture", "error", err)
		}
		o.captureEngaged = false
		if state == StateSpeaking {
			// The pause outranks the response: cut its playback so the
			// notice owns the output path.
			o.cancelPlayback()
			o.debounceGen++
			o.setSpeaking(false)
		}
		o.pendingNotice = ""
		o.setState(StatePaused)
		o.speakNotice(notice)
		return
	}

	if state == StateSpeaking {
		// The response audio owns the playback path; voice the notice once
		// the turn finishes.
		o.pendingNotice = notice
		return
	}

	o.speakNotice(notice)
}

func (o *Orchestrator) handleStop() {
	if o.IsActive() {
		// Stale stop racing a restart; the new session owns the
		// collaborators now.
		return
	}

	o.warmupGen++
	o.debounceGen++
	o.recordGen++
	o.pendingNotice = ""
	if o.recordTimer != nil {
		o.recordTimer.Stop()
		o.recordTimer = nil
	}

	o.mu.RLock()
	recording := o.recording
	o.mu.RUnlock()
	if recording {
		if _, err := o.channel.StopRecording(); err != nil {
			logger.Warn("failed to stop recording", "error", err)
		}
	}

	if err := o.input.Stop(); err != nil {
		logger.Warn("failed to stop capture", "error", err)
	}
	o.cancelPlayback()
	o.captureEngaged = false

	o.mu.Lock()
	o.listening = false
	o.speaking = false
	o.awaiting = false
	o.recording = false
	o.mu.Unlock()

	o.setState(StateIdle)
}

func (o *Orchestrator) handlePause() {
	o.mu.RLock()
	state := o.state
	o.mu.RUnlock()
	if state != StateListening {
		return
	}

	if err := o.input.Stop(); err != nil {
		logger.Warn("failed to stop capture", "error", err)
	}
	o.captureEngaged = false
	o.setState(StatePaused)
}

func (o *Orchestrator) handleResume(session uint64) {
	if !o.IsActive() {
		return
	}

	o.mu.RLock()
	state := o.state
	o.mu.RUnlock()
	if state != StatePaused {
		return
	}

	o.resumeListening(session)
}

func (o *Orchestrator) resumeListening(session uint64) {
	if !o.IsActive() {
		o.setState(StateIdle)
		return
	}

	if !o.captureEngaged {
		if err := o.engageCapture(session); err != nil {
			logger.Warn("failed to engage capture", "error", err)
			o.speakNotice(noticeDeviceError)
		}
	}
	o.setState(StateListening)

	if notice := o.pendingNotice; notice != "" {
		o.pendingNotice = ""
		o.speakNotice(notice)
	}
}

func (o *Orchestrator) engageCapture(session uint64) error {
	err := o.input.Listen(o.baseContext,
		speechinput.WithLanguage(o.language),
		speechinput.WithEncodingInfo(o.encodingInfo),
		speechinput.WithResultCallback(func(result speechinput.Result) {
			o.postFor(session, events.NewUserTranscript(result.Transcript, result.Confidence, result.Interim))
		}),
		speechinput.WithErrorCallback(func(code speechinput.ErrorCode) {
			o.postFor(session, events.NewCaptureFailed(string(code)))
		}),
		speechinput.WithStartedCallback(func() {
			o.postFor(session, events.NewCaptureStarted())
		}),
		speechinput.WithEndedCallback(func() {
			o.postFor(session, events.NewCaptureEnded())
		}),
		speechinput.WithSpeechStartedCallback(func() {
			o.postFor(session, events.NewUserSpeechStarted())
		}),
		speechinput.WithSpeechEndedCallback(func() {
			o.postFor(session, events.NewUserSpeechEnded())
		}),
	)
	if err != nil {
		return fmt.Errorf("failed to engage capture: %w", err)
	}

	o.captureEngaged = true
	return nil
}

func (o *Orchestrator) cancelPlayback() {
	if err := o.channel.StopPlayback(); err != nil {
		logger.Warn("failed to stop playback", "error", err)
	}
	if err := o.output.Cancel(); err != nil {
		logger.Warn("failed to cancel speech", "error", err)
	}
}

func (o *Orchestrator) appendEntry(entry Entry) {
	o.history.Append(entry)
	if o.session.onEntryAppended != nil {
		o.session.onEntryAppended(entry)
	}
}
