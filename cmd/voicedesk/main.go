// voicedesk is a terminal front-end to the conversation orchestrator: it
// wires Deepgram capture and synthesis, a miniaudio channel and a remote
// assistant endpoint together and renders the conversation in a TUI.
package main

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	orchestration "github.com/voicedesk/voice-core/core"
	"github.com/voicedesk/voice-core/core/audio/miniaudio"
	"github.com/voicedesk/voice-core/core/exchange"
	speechin "github.com/voicedesk/voice-core/core/speechinput/deepgram"
	speechout "github.com/voicedesk/voice-core/core/speechoutput/deepgram"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "voicedesk:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := loadConfig()

	audioClient, err := miniaudio.NewClient()
	if err != nil {
		return fmt.Errorf("failed to initialize audio: %w", err)
	}
	defer audioClient.Close()

	input, err := speechin.NewClient(audioClient,
		speechin.WithAPIKey(cfg.Deepgram.APIKey),
		speechin.WithModel(cfg.Deepgram.Model),
	)
	if err != nil {
		return fmt.Errorf("failed to initialize speech capture: %w", err)
	}

	output, err := speechout.NewClient(audioClient,
		speechout.WithAPIKey(cfg.Deepgram.APIKey),
		speechout.WithVoice(speechout.Voice(cfg.Deepgram.Voice)),
	)
	if err != nil {
		return fmt.Errorf("failed to initialize speech synthesis: %w", err)
	}

	client := exchange.NewClient(cfg.Exchange.Endpoint,
		exchange.WithAPIKey(cfg.Exchange.APIKey))

	orchestrator, err := orchestration.New(
		orchestration.WithSpeechInput(input),
		orchestration.WithSpeechOutput(output),
		orchestration.WithAudioChannel(audioClient),
		orchestration.WithExchangeClient(client),
		orchestration.WithLanguage(cfg.Conversation.Language),
		orchestration.WithInterruptionEnabled(cfg.Conversation.InterruptionEnabled),
		orchestration.WithHistoryCapacity(cfg.Conversation.HistoryCapacity),
	)
	if err != nil {
		return fmt.Errorf("failed to build orchestrator: %w", err)
	}
	defer orchestrator.Close()

	program := tea.NewProgram(newModel(orchestrator), tea.WithAltScreen())

	sessionOpts := []orchestration.SessionOption{
		orchestration.WithStateChangedCallback(func(state orchestration.State) {
			program.Send(stateChangedMsg{state: state})
		}),
		orchestration.WithInterimTranscriptionCallback(func(transcript string) {
			program.Send(interimTranscriptMsg{transcript: transcript})
		}),
		orchestration.WithEntryAppendedCallback(func(entry orchestration.Entry) {
			program.Send(entryAppendedMsg{entry: entry})
		}),
		orchestration.WithDroppedUtteranceCallback(func(transcript string) {
			program.Send(droppedUtteranceMsg{transcript: transcript})
		}),
		orchestration.WithNavigationCallback(func(destination string) {
			program.Send(navigationMsg{destination: destination})
		}),
	}

	if err := orchestrator.Start(context.Background(), sessionOpts...); err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}

	if _, err := program.Run(); err != nil {
		return fmt.Errorf("terminal UI failed: %w", err)
	}
	return nil
}
