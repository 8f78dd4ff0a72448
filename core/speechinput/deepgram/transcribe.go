package deepgram

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	api "github.com/deepgram/deepgram-go-sdk/pkg/api/listen/v1/websocket/interfaces"
	"github.com/gorilla/websocket"
	"github.com/voicedesk/voice-core/core/audio"
	"github.com/voicedesk/voice-core/core/speechinput"
)

// Listen opens the live transcription socket and starts streaming
// microphone frames into it. It returns once the stream is established;
// results and lifecycle signals arrive through the registered callbacks.
func (c *Client) Listen(ctx context.Context, opts ...speechinput.CaptureOption) error {
	options := &speechinput.CaptureOptions{
		EncodingInfo: audio.GetDefaultEncodingInfo(),
		Language:     "en",
	}
	for _, opt := range opts {
		opt(options)
	}

	encoding, err := convertEncoding(options.EncodingInfo)
	if err != nil {
		return fmt.Errorf("invalid encoding: %w", err)
	}

	conn, err := c.connectWebsocket(connectionOptions{
		sampleRate: encoding.sampleRate,
		encoding:   encoding.format,
		language:   options.Language,
	})
	if err != nil {
		return fmt.Errorf("failed to open websocket: %w", err)
	}

	captureCtx, cancel := context.WithCancel(ctx)

	c.connMu.Lock()
	c.conn = conn
	c.stopped = false
	c.lastAudio = time.Now()
	c.captureCancel = cancel
	c.connMu.Unlock()
	c.accumulated = ""
	c.unendedSegment = false

	go c.readAndProcessMessages(captureCtx, conn, *options)

	err = c.source.StartCapture(captureCtx, encoding.sampleRate, encoding.format, func(frame []byte) {
		if err := c.sendAudio(frame); err != nil {
			logger.Warn("failed to send audio frame", "error", err)
		}
	})
	if err != nil {
		cancel()
		conn.Close()
		return fmt.Errorf("failed to start capture: %w", err)
	}

	if options.StartedCallback != nil {
		options.StartedCallback()
	}
	return nil
}

type connectionOptions struct {
	sampleRate int
	encoding   string
	language   string
}

func (c *Client) connectWebsocket(options connectionOptions) (*websocket.Conn, error) {
	listenURL, _ := url.Parse("wss://api.deepgram.com/v1/listen")
	queryParams := listenURL.Query()
	queryParams.Set("encoding", options.encoding)
	queryParams.Set("sample_rate", strconv.Itoa(options.sampleRate))
	queryParams.Set("channels", "1")
	queryParams.Set("model", c.model)
	queryParams.Set("language", options.language)
	queryParams.Set("smart_format", "true")
	queryParams.Set("interim_results", "true")
	queryParams.Set("utterance_end_ms", "1000")
	queryParams.Set("endpointing", "300")
	queryParams.Set("vad_events", "true")

	listenURL.RawQuery = queryParams.Encode()
	conn, _, err := websocket.DefaultDialer.Dial(listenURL.String(),
		http.Header{"Authorization": {"Token " + c.apiKey}})
	if err != nil {
		return nil, fmt.Errorf("failed to open socket connection to deepgram: %w", err)
	}

	return conn, nil
}

func (c *Client) sendAudio(frame []byte) error {
	c.connMu.Lock()
	defer c.connMu.Unlock()

	if c.conn == nil {
		return fmt.Errorf("websocket connection closed")
	}

	c.lastAudio = time.Now()
	if err := c.conn.WriteMessage(websocket.BinaryMessage, frame); err != nil {
		return fmt.Errorf("failed to write to deepgram client: %w", err)
	}
	return nil
}

func (c *Client) sendSilence(frame []byte) error {
	c.connMu.Lock()
	defer c.connMu.Unlock()

	if c.conn == nil {
		return fmt.Errorf("websocket connection closed")
	}

	if err := c.conn.WriteMessage(websocket.BinaryMessage, frame); err != nil {
		return fmt.Errorf("failed to write to deepgram client: %w", err)
	}
	return nil
}

func (c *Client) sendKeepAlive() {
	c.connMu.Lock()
	defer c.connMu.Unlock()

	if c.conn == nil {
		return
	}
	if err := c.conn.WriteJSON(websocketMessage{Type: "KeepAlive"}); err != nil {
		logger.Warn("failed to send keepalive", "error", err)
	}
}

func (c *Client) readAndProcessMessages(ctx context.Context, conn *websocket.Conn, options speechinput.CaptureOptions) {
	silenceCtx, silenceCancel := context.WithCancel(ctx)
	defer silenceCancel()

	go c.fillSilence(silenceCtx, options.EncodingInfo)

	for {
		msgType, msg, err := conn.ReadMessage()
		if err != nil {
			c.connMu.Lock()
			stopped := c.stopped
			c.conn = nil
			c.connMu.Unlock()
			conn.Close()

			if !stopped && err.Error() != "websocket: close 1000 (normal)" {
				logger.Warn("deepgram websocket read failed", "error", err)
				if options.ErrorCallback != nil {
					options.ErrorCallback(speechinput.ErrorDevice)
				}
			}
			if options.EndedCallback != nil {
				options.EndedCallback()
			}
			return
		}
		if msgType != websocket.BinaryMessage {
			c.processMessage(msg, options)
		}
	}
}

func (c *Client) processMessage(msg []byte, options speechinput.CaptureOptions) {
	var parsedMsg struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(msg, &parsedMsg); err != nil {
		logger.Warn("failed to unmarshal deepgram message", "error", err)
		return
	}

	switch api.TypeResponse(parsedMsg.Type) {
	case api.TypeMessageResponse:
		var msgResp api.MessageResponse
		if err := json.Unmarshal(msg, &msgResp); err != nil {
			logger.Warn("failed to unmarshal deepgram message", "error", err)
			return
		}
		if len(msgResp.Channel.Alternatives) == 0 {
			return
		}

		alternative := msgResp.Channel.Alternatives[0]
		transcript := strings.TrimSpace(alternative.Transcript)

		if msgResp.IsFinal {
			if len(transcript) > 0 {
				c.appendSegment(transcript, alternative.Confidence)
			}
			if msgResp.SpeechFinal {
				c.emitFinal(options)
			}
			return
		}

		if len(transcript) > 0 && options.ResultCallback != nil {
			options.ResultCallback(speechinput.Result{
				Transcript: strings.TrimSpace(c.accumulated + " " + transcript),
				Confidence: alternative.Confidence,
				Interim:    true,
				ReceivedAt: time.Now(),
			})
		}

	case api.TypeUtteranceEndResponse:
		if c.unendedSegment {
			c.emitFinal(options)
		}

	case api.TypeSpeechStartedResponse:
		c.unendedSegment = true
		if options.SpeechStartedCallback != nil {
			options.SpeechStartedCallback()
		}
	}
}

// appendSegment folds a continuation final into the accumulated utterance,
// keeping the lowest segment confidence as the utterance confidence.
func (c *Client) appendSegment(transcript string, confidence float64) {
	if c.accumulated == "" || confidence < c.confidence {
		c.confidence = confidence
	}
	c.accumulated = strings.TrimSpace(c.accumulated + " " + transcript)
}

func (c *Client) emitFinal(options speechinput.CaptureOptions) {
	c.unendedSegment = false

	transcript := strings.TrimSpace(c.accumulated)
	confidence := c.confidence
	c.accumulated = ""
	c.confidence = 0

	if len(transcript) > 0 && options.ResultCallback != nil {
		options.ResultCallback(speechinput.Result{
			Transcript: transcript,
			Confidence: confidence,
			Interim:    false,
			ReceivedAt: time.Now(),
		})
	}
	if options.SpeechEndedCallback != nil {
		options.SpeechEndedCallback()
	}
}

// fillSilence keeps the endpointing timers honest while the microphone is
// quiet: short gaps are padded with silence frames, long gaps fall back to
// keepalive messages so the socket is not dropped.
func (c *Client) fillSilence(ctx context.Context, encoding audio.EncodingInfo) {
	const tick = 50 * time.Millisecond
	const silenceWindow = time.Second
	const keepAliveEvery = 5 * time.Second

	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	chunk := make([]byte, encoding.BytesPerSecond()*int(tick.Milliseconds())/1000)
	for i := range chunk {
		chunk[i] = encoding.SilenceValue()
	}

	var lastKeepAlive time.Time
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.connMu.Lock()
			sinceAudio := time.Since(c.lastAudio)
			c.connMu.Unlock()

			if sinceAudio <= tick {
				continue
			}
			if sinceAudio < silenceWindow {
				if err := c.sendSilence(chunk); err != nil {
					return
				}
				continue
			}
			if time.Since(lastKeepAlive) >= keepAliveEvery {
				lastKeepAlive = time.Now()
				c.sendKeepAlive()
			}
		}
	}
}
