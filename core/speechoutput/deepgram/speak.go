package deepgram

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/voicedesk/voice-core/core/audio"
	"github.com/voicedesk/voice-core/core/speechoutput"
)

// streamingRequest is one utterance's websocket exchange: text out,
// synthesized frames in, a Flushed confirmation marking the end of audio.
type streamingRequest struct {
	ws *websocket.Conn
	mu sync.Mutex

	sink    AudioSink
	options speechoutput.SpeakOptions

	started   bool
	cancelled bool
	closed    bool
}

// Speak synthesizes text and queues the audio on the sink. It returns once
// the utterance is dispatched; the started callback fires with the first
// synthesized frame and the ended callback once the sink drains. High
// priority utterances preempt whatever is currently speaking.
func (c *Client) Speak(ctx context.Context, text string, opts ...speechoutput.SpeakOption) error {
	options := speechoutput.SpeakOptions{
		Priority:     speechoutput.PriorityLow,
		EncodingInfo: audio.GetDefaultEncodingInfo(),
	}
	for _, opt := range opts {
		opt(&options)
	}

	if options.Priority == speechoutput.PriorityHigh {
		if err := c.Cancel(); err != nil {
			return fmt.Errorf("failed to preempt current speech: %w", err)
		}
	}

	conn, err := c.connectWebsocket(options.EncodingInfo)
	if err != nil {
		return fmt.Errorf("failed to open websocket: %w", err)
	}

	request := &streamingRequest{ws: conn, sink: c.sink, options: options}
	c.setCurrent(request)

	go func() {
		request.processIncomingMessages()
		c.clearCurrent(request)
	}()

	if err := request.sendWebsocketMessage(speakMessage{Type: "Speak", Text: text}); err != nil {
		_ = request.closeWebsocket()
		c.clearCurrent(request)
		return fmt.Errorf("failed to send text: %w", err)
	}
	if err := request.sendWebsocketMessage(flushMsg); err != nil {
		_ = request.closeWebsocket()
		c.clearCurrent(request)
		return fmt.Errorf("failed to flush text: %w", err)
	}

	return nil
}

func (c *Client) connectWebsocket(encodingInfo audio.EncodingInfo) (*websocket.Conn, error) {
	urlValues := url.Values{}
	urlValues.Set("encoding", encodingInfo.Format.Name())
	urlValues.Set("sample_rate", strconv.Itoa(encodingInfo.SampleRate))
	urlValues.Set("model", string(c.voice))
	urlValues.Set("container", "none")

	conn, _, err := websocket.DefaultDialer.Dial(
		(&url.URL{
			Scheme: "wss",
			Host:   "api.deepgram.com", Path: "/v1/speak",
			RawQuery: urlValues.Encode(),
		}).String(),
		http.Header{"Authorization": {"token " + c.apiKey}})
	if err != nil {
		return nil, fmt.Errorf("failed to open socket connection to deepgram: %w", err)
	}

	return conn, nil
}

func (r *streamingRequest) processIncomingMessages() {
	for {
		msgType, msg, err := r.ws.ReadMessage()
		if err != nil {
			r.mu.Lock()
			failed := !r.closed && !r.cancelled
			r.mu.Unlock()

			if failed && err.Error() != "websocket: close 1000 (normal)" {
				if r.options.ErrorCallback != nil {
					r.options.ErrorCallback(fmt.Errorf("websocket read failed: %w", err))
				}
			}
			_ = r.ws.Close()
			return
		}

		switch msgType {
		case websocket.BinaryMessage:
			r.handleAudio(msg)
		case websocket.TextMessage:
			var parsedMsg struct {
				Type string `json:"type"`
			}
			if err := json.Unmarshal(msg, &parsedMsg); err != nil {
				continue
			}

			if parsedMsg.Type == "Flushed" {
				r.handleFlushed()
			}
		}
	}
}

func (r *streamingRequest) handleAudio(frames []byte) {
	r.mu.Lock()
	if r.cancelled {
		r.mu.Unlock()
		return
	}
	started := r.started
	r.started = true
	r.mu.Unlock()

	if !started && r.options.StartedCallback != nil {
		r.options.StartedCallback()
	}
	if err := r.sink.SendAudio(frames); err != nil {
		if r.options.ErrorCallback != nil {
			r.options.ErrorCallback(fmt.Errorf("failed to queue audio: %w", err))
		}
		_ = r.cancel()
	}
}

// handleFlushed means the service has synthesized everything; the utterance
// ends when the sink finishes playing what was queued.
func (r *streamingRequest) handleFlushed() {
	r.mu.Lock()
	cancelled := r.cancelled
	r.mu.Unlock()
	if cancelled {
		return
	}

	if r.options.EndedCallback != nil {
		if err := r.sink.Mark(r.options.EndedCallback); err != nil {
			r.options.EndedCallback()
		}
	}
	_ = r.closeWebsocket()
}

func (r *streamingRequest) cancel() error {
	r.mu.Lock()
	if r.cancelled || r.closed {
		r.mu.Unlock()
		return nil
	}
	r.cancelled = true
	r.mu.Unlock()

	if err := r.sendWebsocketMessage(clearMsg); err != nil {
		return r.closeWebsocket()
	}
	return r.closeWebsocket()
}
