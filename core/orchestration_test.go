package orchestration

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/voicedesk/voice-core/core/audio"
	"github.com/voicedesk/voice-core/core/exchange"
	"github.com/voicedesk/voice-core/core/speechinput"
	"github.com/voicedesk/voice-core/core/speechoutput"
)

func TestNewRequiresAllCollaborators(t *testing.T) {
	_, err := New()
	if !errors.Is(err, ErrMissingCollaborator) {
		t.Fatalf("expected missing collaborator error, got %v", err)
	}

	_, err = New(
		WithSpeechInput(&captureStub{supported: true}),
		WithSpeechOutput(&speakerStub{}),
		WithAudioChannel(&channelStub{}),
	)
	if !errors.Is(err, ErrMissingCollaborator) {
		t.Fatalf("expected missing collaborator error without exchange client, got %v", err)
	}
}

func TestStartEngagesCaptureAfterWarmup(t *testing.T) {
	capture := &captureStub{supported: true}
	o := newTestOrchestrator(t, capture, &speakerStub{}, &channelStub{}, &exchangeStub{})

	if err := o.Start(context.Background()); err != nil {
		t.Fatalf("failed to start session: %v", err)
	}

	waitForCondition(t, 2*time.Second, "listening state", func() bool {
		return o.State() == StateListening
	})
	if got := capture.listenCalls(); got != 1 {
		t.Fatalf("expected capture engaged once, got %d", got)
	}
}

func TestStartFailsWhenCaptureUnsupported(t *testing.T) {
	o := newTestOrchestrator(t, &captureStub{supported: false}, &speakerStub{}, &channelStub{}, &exchangeStub{})

	if err := o.Start(context.Background()); !errors.Is(err, ErrCaptureUnsupported) {
		t.Fatalf("expected capture unsupported error, got %v", err)
	}
	if o.IsActive() {
		t.Fatalf("expected session to stay inactive")
	}
}

func TestStartWhileActiveReturnsError(t *testing.T) {
	o := newTestOrchestrator(t, &captureStub{supported: true}, &speakerStub{}, &channelStub{}, &exchangeStub{})

	if err := o.Start(context.Background()); err != nil {
		t.Fatalf("failed to start session: %v", err)
	}
	if err := o.Start(context.Background()); !errors.Is(err, ErrSessionActive) {
		t.Fatalf("expected session active error, got %v", err)
	}
}

func TestUtteranceRoundTrip(t *testing.T) {
	capture := &captureStub{supported: true}
	speaker := &speakerStub{}
	client := &exchangeStub{respond: func(exchange.Request) (*exchange.Response, error) {
		return &exchange.Response{Success: true, Response: "Hi there"}, nil
	}}
	o := newTestOrchestrator(t, capture, speaker, &channelStub{}, client)

	transcribed := make(chan string, 1)
	responded := make(chan string, 1)
	startListening(t, o,
		WithTranscriptionCallback(func(transcript string) {
			select {
			case transcribed <- transcript:
			default:
			}
		}),
		WithResponseCallback(func(response string) {
			select {
			case responded <- response:
			default:
			}
		}),
	)

	capture.emitFinal("Hello", 0.9)

	select {
	case transcript := <-transcribed:
		if transcript != "Hello" {
			t.Fatalf("expected transcript %q, got %q", "Hello", transcript)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for transcription callback")
	}

	select {
	case response := <-responded:
		if response != "Hi there" {
			t.Fatalf("expected response %q, got %q", "Hi there", response)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for response callback")
	}

	waitForCondition(t, 2*time.Second, "return to listening", func() bool {
		return o.State() == StateListening
	})

	snapshot := o.Snapshot()
	if snapshot.LastCommand != "Hello" {
		t.Fatalf("expected last command %q, got %q", "Hello", snapshot.LastCommand)
	}
	if snapshot.LastResponse != "Hi there" {
		t.Fatalf("expected last response %q, got %q", "Hi there", snapshot.LastResponse)
	}
	if len(snapshot.History) != 2 {
		t.Fatalf("expected 2 history entries, got %d", len(snapshot.History))
	}
	if snapshot.History[0].Role != RoleUser || snapshot.History[1].Role != RoleAssistant {
		t.Fatalf("expected user then assistant entries, got %q then %q",
			snapshot.History[0].Role, snapshot.History[1].Role)
	}
	if got := speaker.spokenTexts(); len(got) != 1 || got[0] != "Hi there" {
		t.Fatalf("expected reply spoken once, got %v", got)
	}
}

func TestResponseAudioPlaysThroughChannelInsteadOfSpeech(t *testing.T) {
	capture := &captureStub{supported: true}
	speaker := &speakerStub{}
	channel := &channelStub{}
	client := &exchangeStub{respond: func(exchange.Request) (*exchange.Response, error) {
		return &exchange.Response{Success: true, Response: "spoken upstream", AudioBase64: "AAAA"}, nil
	}}
	o := newTestOrchestrator(t, capture, speaker, channel, client)
	startListening(t, o)

	capture.emitFinal("play something", 0.9)

	waitForCondition(t, 2*time.Second, "channel playback", func() bool {
		return len(channel.playedPayloads()) == 1
	})
	if payload := channel.playedPayloads()[0]; payload.Source != audio.PayloadSourceBase64 {
		t.Fatalf("expected base64 payload, got %q", payload.Source)
	}
	if got := speaker.spokenTexts(); len(got) != 0 {
		t.Fatalf("expected no synthesized speech, got %v", got)
	}

	waitForCondition(t, 2*time.Second, "return to listening", func() bool {
		return o.State() == StateListening
	})
}

func TestLowConfidenceAndShortTranscriptsIgnored(t *testing.T) {
	capture := &captureStub{supported: true}
	client := &exchangeStub{}
	o := newTestOrchestrator(t, capture, &speakerStub{}, &channelStub{}, client)
	startListening(t, o)

	capture.emitFinal("Hello", 0.4)
	capture.emitFinal("a", 0.99)
	capture.emitInterim("Hello there", 0.7)

	time.Sleep(100 * time.Millisecond)
	if got := client.requestCount(); got != 0 {
		t.Fatalf("expected no exchange requests, got %d", got)
	}

	capture.emitInterim("Hello there", 0.9)
	waitForCondition(t, 2*time.Second, "interim acceptance", func() bool {
		return client.requestCount() == 1
	})
}

func TestUtteranceDroppedWhileExchangeOutstanding(t *testing.T) {
	capture := &captureStub{supported: true}
	release := make(chan struct{})
	client := &exchangeStub{release: release}
	o := newTestOrchestrator(t, capture, &speakerStub{}, &channelStub{}, client)

	dropped := make(chan string, 1)
	startListening(t, o, WithDroppedUtteranceCallback(func(transcript string) {
		select {
		case dropped <- transcript:
		default:
		}
	}))

	capture.emitFinal("first request", 0.9)
	waitForCondition(t, 2*time.Second, "exchange dispatch", func() bool {
		return client.requestCount() == 1
	})

	capture.emitFinal("second request", 0.9)

	select {
	case transcript := <-dropped:
		if transcript != "second request" {
			t.Fatalf("expected second utterance dropped, got %q", transcript)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for dropped utterance callback")
	}

	close(release)
	waitForCondition(t, 2*time.Second, "return to listening", func() bool {
		return o.State() == StateListening
	})
	if got := client.requestCount(); got != 1 {
		t.Fatalf("expected exactly one exchange request, got %d", got)
	}
}

func TestBargeInCancelsPlayback(t *testing.T) {
	capture := &captureStub{supported: true}
	speaker := &speakerStub{}
	channel := &channelStub{manual: true}
	client := &exchangeStub{respond: func(exchange.Request) (*exchange.Response, error) {
		return &exchange.Response{Success: true, Response: "long reply", AudioBase64: "AAAA"}, nil
	}}
	o := newTestOrchestrator(t, capture, speaker, channel, client)
	startListening(t, o)

	capture.emitFinal("tell me a story", 0.9)
	waitForCondition(t, 2*time.Second, "speaking state", func() bool {
		return o.State() == StateSpeaking
	})

	capture.emitSpeechStarted()

	waitForCondition(t, 2*time.Second, "barge-in to listening", func() bool {
		return o.State() == StateListening
	})
	if got := channel.playbackStopCount(); got != 1 {
		t.Fatalf("expected playback stopped once, got %d", got)
	}
	if got := speaker.cancelCount(); got != 1 {
		t.Fatalf("expected speech cancelled once, got %d", got)
	}
}

func TestBargeInDisabledKeepsPlaying(t *testing.T) {
	capture := &captureStub{supported: true}
	channel := &channelStub{manual: true}
	client := &exchangeStub{respond: func(exchange.Request) (*exchange.Response, error) {
		return &exchange.Response{Success: true, Response: "long reply", AudioBase64: "AAAA"}, nil
	}}
	o := newTestOrchestrator(t, capture, &speakerStub{}, channel, client,
		WithInterruptionEnabled(false))
	startListening(t, o)

	capture.emitFinal("tell me a story", 0.9)
	waitForCondition(t, 2*time.Second, "speaking state", func() bool {
		return o.State() == StateSpeaking
	})

	capture.emitSpeechStarted()

	time.Sleep(100 * time.Millisecond)
	if o.State() != StateSpeaking {
		t.Fatalf("expected playback to continue, state is %q", o.State())
	}
	if got := channel.playbackStopCount(); got != 0 {
		t.Fatalf("expected playback untouched, got %d stops", got)
	}
}

func TestStopIsIdempotent(t *testing.T) {
	capture := &captureStub{supported: true}
	o := newTestOrchestrator(t, capture, &speakerStub{}, &channelStub{}, &exchangeStub{})
	startListening(t, o)

	o.Stop()
	waitForCondition(t, 2*time.Second, "idle state", func() bool {
		return o.State() == StateIdle && !o.IsActive()
	})
	stops := capture.stopCalls()

	o.Stop()
	time.Sleep(50 * time.Millisecond)
	if o.State() != StateIdle {
		t.Fatalf("expected state to stay idle, got %q", o.State())
	}
	if got := capture.stopCalls(); got != stops {
		t.Fatalf("expected no additional capture stops, got %d after %d", got, stops)
	}
}

func TestStopDiscardsLateExchangeResolution(t *testing.T) {
	capture := &captureStub{supported: true}
	speaker := &speakerStub{}
	channel := &channelStub{}
	release := make(chan struct{})
	client := &exchangeStub{
		release: release,
		respond: func(exchange.Request) (*exchange.Response, error) {
			return &exchange.Response{Success: true, Response: "too late"}, nil
		},
	}
	o := newTestOrchestrator(t, capture, speaker, channel, client)
	startListening(t, o)

	capture.emitFinal("never mind", 0.9)
	waitForCondition(t, 2*time.Second, "exchange dispatch", func() bool {
		return client.requestCount() == 1
	})

	o.Stop()
	waitForCondition(t, 2*time.Second, "idle state", func() bool {
		return o.State() == StateIdle
	})

	close(release)
	time.Sleep(100 * time.Millisecond)

	if got := speaker.spokenTexts(); len(got) != 0 {
		t.Fatalf("expected late resolution discarded, got speech %v", got)
	}
	snapshot := o.Snapshot()
	if len(snapshot.History) != 1 {
		t.Fatalf("expected only the user entry in history, got %d entries", len(snapshot.History))
	}
}

func TestExchangeFailureSpeaksApology(t *testing.T) {
	capture := &captureStub{supported: true}
	speaker := &speakerStub{}
	client := &exchangeStub{respond: func(exchange.Request) (*exchange.Response, error) {
		return nil, errors.New("connection refused")
	}}
	o := newTestOrchestrator(t, capture, speaker, &channelStub{}, client,
		WithApology("Sorry, something went wrong."))
	startListening(t, o)

	capture.emitFinal("are you there", 0.9)

	waitForCondition(t, 2*time.Second, "apology spoken", func() bool {
		spoken := speaker.spokenTexts()
		return len(spoken) == 1 && spoken[0] == "Sorry, something went wrong."
	})
	waitForCondition(t, 2*time.Second, "return to listening", func() bool {
		return o.State() == StateListening
	})
}

func TestPermissionDeniedPausesSession(t *testing.T) {
	capture := &captureStub{supported: true}
	speaker := &speakerStub{}
	o := newTestOrchestrator(t, capture, speaker, &channelStub{}, &exchangeStub{})
	startListening(t, o)

	capture.emitError(speechinput.ErrorPermissionDenied)

	waitForCondition(t, 2*time.Second, "paused state", func() bool {
		return o.State() == StatePaused
	})
	waitForCondition(t, 2*time.Second, "spoken notice", func() bool {
		return len(speaker.spokenTexts()) == 1
	})

	time.Sleep(100 * time.Millisecond)
	if o.State() != StatePaused {
		t.Fatalf("expected session to stay paused after notice, got %q", o.State())
	}
	if !o.IsActive() {
		t.Fatalf("expected session to stay active while paused")
	}
}

func TestExchangeResolutionWhilePausedStaysPaused(t *testing.T) {
	capture := &captureStub{supported: true}
	speaker := &speakerStub{}
	channel := &channelStub{}
	release := make(chan struct{})
	client := &exchangeStub{
		release: release,
		respond: func(exchange.Request) (*exchange.Response, error) {
			return &exchange.Response{Success: true, Response: "here you go"}, nil
		},
	}
	o := newTestOrchestrator(t, capture, speaker, channel, client)
	startListening(t, o)

	capture.emitFinal("what time is it", 0.9)
	waitForCondition(t, 2*time.Second, "exchange dispatch", func() bool {
		return client.requestCount() == 1
	})

	capture.emitError(speechinput.ErrorPermissionDenied)
	waitForCondition(t, 2*time.Second, "paused state", func() bool {
		return o.State() == StatePaused
	})
	waitForCondition(t, 2*time.Second, "spoken notice", func() bool {
		return len(speaker.spokenTexts()) == 1
	})

	close(release)
	time.Sleep(100 * time.Millisecond)

	if o.State() != StatePaused {
		t.Fatalf("expected session to stay paused after exchange resolved, got %q", o.State())
	}
	if got := capture.listenCalls(); got != 1 {
		t.Fatalf("expected capture not re-engaged, got %d listens", got)
	}
	if got := speaker.spokenTexts(); len(got) != 1 {
		t.Fatalf("expected only the notice spoken, got %v", got)
	}
	if got := channel.playedPayloads(); len(got) != 0 {
		t.Fatalf("expected no playback while paused, got %d payloads", len(got))
	}

	// The reply itself is not lost, only its playback.
	snapshot := o.Snapshot()
	if len(snapshot.History) != 2 || snapshot.History[1].Content != "here you go" {
		t.Fatalf("expected reply recorded in history, got %+v", snapshot.History)
	}
}

func TestCaptureNoticeDeferredWhileSpeaking(t *testing.T) {
	capture := &captureStub{supported: true}
	speaker := &speakerStub{}
	channel := &channelStub{manual: true}
	client := &exchangeStub{respond: func(exchange.Request) (*exchange.Response, error) {
		return &exchange.Response{Success: true, Response: "long reply", AudioBase64: "AAAA"}, nil
	}}
	o := newTestOrchestrator(t, capture, speaker, channel, client)
	startListening(t, o)

	capture.emitFinal("tell me a story", 0.9)
	waitForCondition(t, 2*time.Second, "speaking state", func() bool {
		return o.State() == StateSpeaking
	})

	capture.emitError(speechinput.ErrorDevice)

	time.Sleep(100 * time.Millisecond)
	if o.State() != StateSpeaking {
		t.Fatalf("expected playback to keep the turn, got %q", o.State())
	}
	if got := channel.playbackStopCount(); got != 0 {
		t.Fatalf("expected playback untouched, got %d stops", got)
	}
	if got := speaker.spokenTexts(); len(got) != 0 {
		t.Fatalf("expected notice held back during playback, got %v", got)
	}

	channel.finishPlayback()

	waitForCondition(t, 2*time.Second, "return to listening", func() bool {
		return o.State() == StateListening
	})
	waitForCondition(t, 2*time.Second, "deferred notice", func() bool {
		spoken := speaker.spokenTexts()
		return len(spoken) == 1 && spoken[0] == noticeDeviceError
	})
}

func TestPermissionDeniedWhileSpeakingStopsPlayback(t *testing.T) {
	capture := &captureStub{supported: true}
	speaker := &speakerStub{}
	channel := &channelStub{manual: true}
	client := &exchangeStub{respond: func(exchange.Request) (*exchange.Response, error) {
		return &exchange.Response{Success: true, Response: "long reply", AudioBase64: "AAAA"}, nil
	}}
	o := newTestOrchestrator(t, capture, speaker, channel, client)
	startListening(t, o)

	capture.emitFinal("tell me a story", 0.9)
	waitForCondition(t, 2*time.Second, "speaking state", func() bool {
		return o.State() == StateSpeaking
	})

	capture.emitError(speechinput.ErrorPermissionDenied)

	waitForCondition(t, 2*time.Second, "paused state", func() bool {
		return o.State() == StatePaused
	})
	if got := channel.playbackStopCount(); got != 1 {
		t.Fatalf("expected playback stopped once, got %d", got)
	}
	waitForCondition(t, 2*time.Second, "spoken notice", func() bool {
		spoken := speaker.spokenTexts()
		return len(spoken) == 1 && spoken[0] == noticePermissionDenied
	})

	time.Sleep(100 * time.Millisecond)
	if o.State() != StatePaused {
		t.Fatalf("expected session to stay paused, got %q", o.State())
	}
}

func TestDeviceErrorKeepsListening(t *testing.T) {
	capture := &captureStub{supported: true}
	speaker := &speakerStub{}
	o := newTestOrchestrator(t, capture, speaker, &channelStub{}, &exchangeStub{})
	startListening(t, o)

	capture.emitError(speechinput.ErrorDevice)

	waitForCondition(t, 2*time.Second, "spoken notice", func() bool {
		return len(speaker.spokenTexts()) == 1
	})
	if o.State() != StateListening {
		t.Fatalf("expected session to keep listening, got %q", o.State())
	}
}

func TestPauseAndResume(t *testing.T) {
	capture := &captureStub{supported: true}
	o := newTestOrchestrator(t, capture, &speakerStub{}, &channelStub{}, &exchangeStub{})
	startListening(t, o)

	o.Pause()
	waitForCondition(t, 2*time.Second, "paused state", func() bool {
		return o.State() == StatePaused
	})
	if got := capture.stopCalls(); got != 1 {
		t.Fatalf("expected capture stopped once, got %d", got)
	}

	o.Resume()
	waitForCondition(t, 2*time.Second, "listening state", func() bool {
		return o.State() == StateListening
	})
	if got := capture.listenCalls(); got != 2 {
		t.Fatalf("expected capture re-engaged, got %d listens", got)
	}
}

func TestPushToTalkSendsRecording(t *testing.T) {
	capture := &captureStub{supported: true}
	channel := &channelStub{recordingResult: audio.Recording{
		AudioEncoded: "Zm9v",
		Duration:     time.Second,
		Format:       "audio/l16",
	}}
	release := make(chan struct{})
	client := &exchangeStub{release: release}
	o := newTestOrchestrator(t, capture, &speakerStub{}, channel, client)
	startListening(t, o)

	o.StartAudioRecording()
	waitForCondition(t, 2*time.Second, "recording engaged", func() bool {
		return o.Snapshot().Recording
	})

	o.StopAudioRecording()
	waitForCondition(t, 2*time.Second, "exchange dispatch", func() bool {
		return client.requestCount() == 1
	})

	request := client.lastRequest()
	if request.AudioEncoded != "Zm9v" {
		t.Fatalf("expected recorded audio in request, got %q", request.AudioEncoded)
	}
	if request.Text != defaultFallbackTranscript {
		t.Fatalf("expected fallback transcript %q, got %q", defaultFallbackTranscript, request.Text)
	}

	snapshot := o.Snapshot()
	if len(snapshot.History) != 1 || snapshot.History[0].Content != defaultFallbackTranscript {
		t.Fatalf("expected fallback user entry in history, got %+v", snapshot.History)
	}

	close(release)
}

func TestPushToTalkTimesOut(t *testing.T) {
	capture := &captureStub{supported: true}
	channel := &channelStub{recordingResult: audio.Recording{AudioEncoded: "Zm9v", Format: "audio/l16"}}
	client := &exchangeStub{}
	o := newTestOrchestrator(t, capture, &speakerStub{}, channel, client,
		WithMaxRecordingDuration(20*time.Millisecond))
	startListening(t, o)

	o.StartAudioRecording()

	waitForCondition(t, 2*time.Second, "timed-out recording dispatch", func() bool {
		return client.requestCount() == 1
	})
	if o.Snapshot().Recording {
		t.Fatalf("expected recording flag cleared after timeout")
	}
}

func TestEmptyRecordingIsDiscarded(t *testing.T) {
	capture := &captureStub{supported: true}
	channel := &channelStub{recordingResult: audio.Recording{}}
	client := &exchangeStub{}
	o := newTestOrchestrator(t, capture, &speakerStub{}, channel, client)
	startListening(t, o)

	o.StartAudioRecording()
	waitForCondition(t, 2*time.Second, "recording engaged", func() bool {
		return o.Snapshot().Recording
	})
	o.StopAudioRecording()

	waitForCondition(t, 2*time.Second, "recording disengaged", func() bool {
		return !o.Snapshot().Recording
	})
	time.Sleep(50 * time.Millisecond)
	if got := client.requestCount(); got != 0 {
		t.Fatalf("expected empty recording discarded, got %d requests", got)
	}
}

func TestClearHistory(t *testing.T) {
	capture := &captureStub{supported: true}
	o := newTestOrchestrator(t, capture, &speakerStub{}, &channelStub{}, &exchangeStub{})
	startListening(t, o)

	capture.emitFinal("remember this", 0.9)
	waitForCondition(t, 2*time.Second, "history entries", func() bool {
		return o.History().Len() > 0
	})

	o.ClearHistory()
	waitForCondition(t, 2*time.Second, "history cleared", func() bool {
		return o.History().Len() == 0
	})
}

func TestNavigationCallbackReceivesDestination(t *testing.T) {
	capture := &captureStub{supported: true}
	client := &exchangeStub{respond: func(exchange.Request) (*exchange.Response, error) {
		return &exchange.Response{
			Success:  true,
			Response: "taking you there",
			Action:   "navigate",
			Data:     &exchange.ResponseData{Destination: "/settings"},
		}, nil
	}}
	o := newTestOrchestrator(t, capture, &speakerStub{}, &channelStub{}, client)

	navigated := make(chan string, 1)
	startListening(t, o, WithNavigationCallback(func(destination string) {
		select {
		case navigated <- destination:
		default:
		}
	}))

	capture.emitFinal("open settings", 0.9)

	select {
	case destination := <-navigated:
		if destination != "/settings" {
			t.Fatalf("expected destination %q, got %q", "/settings", destination)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for navigation callback")
	}
}

func newTestOrchestrator(t *testing.T, capture *captureStub, speaker *speakerStub, channel *channelStub, client ExchangeClient, opts ...Option) *Orchestrator {
	t.Helper()

	base := []Option{
		WithSpeechInput(capture),
		WithSpeechOutput(speaker),
		WithAudioChannel(channel),
		WithExchangeClient(client),
		WithWarmupDelay(time.Millisecond),
		WithDebounceDelay(time.Millisecond),
	}
	o, err := New(append(base, opts...)...)
	if err != nil {
		t.Fatalf("failed to build orchestrator: %v", err)
	}
	t.Cleanup(o.Close)
	return o
}

func startListening(t *testing.T, o *Orchestrator, opts ...SessionOption) {
	t.Helper()

	if err := o.Start(context.Background(), opts...); err != nil {
		t.Fatalf("failed to start session: %v", err)
	}
	waitForCondition(t, 2*time.Second, "listening state", func() bool {
		return o.State() == StateListening
	})
}

func waitForCondition(t *testing.T, timeout time.Duration, description string, condition func() bool) {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if condition() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}

	t.Fatalf("timed out waiting for %s", description)
}

type captureStub struct {
	supported bool
	listenErr error

	mu      sync.Mutex
	options speechinput.CaptureOptions
	listens int
	stops   int
}

func (s *captureStub) Listen(_ context.Context, opts ...speechinput.CaptureOption) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listenErr != nil {
		return s.listenErr
	}

	options := speechinput.CaptureOptions{}
	for _, opt := range opts {
		opt(&options)
	}
	s.options = options
	s.listens++

	if options.StartedCallback != nil {
		options.StartedCallback()
	}
	return nil
}

func (s *captureStub) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stops++
	return nil
}

func (s *captureStub) CaptureSupported() bool { return s.supported }

func (s *captureStub) listenCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listens
}

func (s *captureStub) stopCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stops
}

func (s *captureStub) emitFinal(transcript string, confidence float64) {
	s.mu.Lock()
	callback := s.options.ResultCallback
	s.mu.Unlock()
	if callback != nil {
		callback(speechinput.Result{Transcript: transcript, Confidence: confidence, ReceivedAt: time.Now()})
	}
}

func (s *captureStub) emitInterim(transcript string, confidence float64) {
	s.mu.Lock()
	callback := s.options.ResultCallback
	s.mu.Unlock()
	if callback != nil {
		callback(speechinput.Result{Transcript: transcript, Confidence: confidence, Interim: true, ReceivedAt: time.Now()})
	}
}

func (s *captureStub) emitSpeechStarted() {
	s.mu.Lock()
	callback := s.options.SpeechStartedCallback
	s.mu.Unlock()
	if callback != nil {
		callback()
	}
}

func (s *captureStub) emitError(code speechinput.ErrorCode) {
	s.mu.Lock()
	callback := s.options.ErrorCallback
	s.mu.Unlock()
	if callback != nil {
		callback(code)
	}
}

type speakerStub struct {
	mu      sync.Mutex
	spoken  []string
	cancels int
}

func (s *speakerStub) Speak(_ context.Context, text string, opts ...speechoutput.SpeakOption) error {
	options := speechoutput.SpeakOptions{}
	for _, opt := range opts {
		opt(&options)
	}

	s.mu.Lock()
	s.spoken = append(s.spoken, text)
	s.mu.Unlock()

	if options.StartedCallback != nil {
		options.StartedCallback()
	}
	if options.EndedCallback != nil {
		options.EndedCallback()
	}
	return nil
}

func (s *speakerStub) Cancel() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancels++
	return nil
}

func (s *speakerStub) spokenTexts() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.spoken...)
}

func (s *speakerStub) cancelCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancels
}

type channelStub struct {
	// manual keeps queued playback from completing on its own, so tests
	// can interrupt it.
	manual          bool
	recordingResult audio.Recording
	recordErr       error

	mu            sync.Mutex
	played        []audio.Payload
	playbackStops int
	recording     bool
	ended         func()
}

func (s *channelStub) StartRecording(_ context.Context, _ audio.RecordingConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recording = true
	return nil
}

func (s *channelStub) StopRecording() (audio.Recording, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recording = false
	return s.recordingResult, s.recordErr
}

func (s *channelStub) Play(_ context.Context, payload audio.Payload, opts ...audio.PlaybackOption) error {
	options := audio.PlaybackOptions{}
	for _, opt := range opts {
		opt(&options)
	}

	s.mu.Lock()
	s.played = append(s.played, payload)
	s.mu.Unlock()

	if options.StartedCallback != nil {
		options.StartedCallback()
	}
	if s.manual {
		s.mu.Lock()
		s.ended = options.EndedCallback
		s.mu.Unlock()
	} else if options.EndedCallback != nil {
		options.EndedCallback()
	}
	return nil
}

// finishPlayback completes a manual playback, as the device would once the
// buffer drains.
func (s *channelStub) finishPlayback() {
	s.mu.Lock()
	callback := s.ended
	s.ended = nil
	s.mu.Unlock()
	if callback != nil {
		callback()
	}
}

func (s *channelStub) StopPlayback() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.playbackStops++
	return nil
}

func (s *channelStub) playedPayloads() []audio.Payload {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]audio.Payload(nil), s.played...)
}

func (s *channelStub) playbackStopCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.playbackStops
}

type exchangeStub struct {
	respond func(exchange.Request) (*exchange.Response, error)
	// release, when set, blocks every request until the channel closes.
	release chan struct{}

	mu       sync.Mutex
	requests []exchange.Request
}

func (s *exchangeStub) SendMessage(_ context.Context, request exchange.Request) (*exchange.Response, error) {
	s.mu.Lock()
	s.requests = append(s.requests, request)
	s.mu.Unlock()

	if s.release != nil {
		<-s.release
	}
	if s.respond != nil {
		return s.respond(request)
	}
	return &exchange.Response{Success: true, Response: "ok"}, nil
}

func (s *exchangeStub) requestCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.requests)
}

func (s *exchangeStub) lastRequest() exchange.Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.requests) == 0 {
		return exchange.Request{}
	}
	return s.requests[len(s.requests)-1]
}
