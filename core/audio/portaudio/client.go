// Package portaudio implements a capture frame source on top of PortAudio,
// as an alternative to the miniaudio backend on hosts where PortAudio is
// the better-supported stack.
package portaudio

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/gordonklaus/portaudio"
)

const defaultBufferSize = 480

type Client struct {
	bufferSize int

	mu     sync.Mutex
	stream *portaudio.Stream
	in     []int16
	cancel context.CancelFunc
}

func NewClient(bufferSize int) (*Client, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize portaudio: %w", err)
	}

	if bufferSize <= 0 {
		bufferSize = defaultBufferSize
	}
	return &Client{bufferSize: bufferSize}, nil
}

// CaptureSupported reports whether the host exposes an input device.
func (c *Client) CaptureSupported() bool {
	device, err := portaudio.DefaultInputDevice()
	return err == nil && device != nil
}

// StartCapture opens the default input stream and delivers little-endian
// PCM frames to the callback until StopCapture or context cancellation.
// PortAudio captures signed 16-bit samples, so only linear16 is supported.
func (c *Client) StartCapture(ctx context.Context, sampleRate int, format string, frames func([]byte)) error {
	if format != "linear16" {
		return fmt.Errorf("unsupported capture format %q", format)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stream != nil {
		return nil
	}

	in := make([]int16, c.bufferSize)
	stream, err := portaudio.OpenDefaultStream(1, 0, float64(sampleRate), c.bufferSize, in)
	if err != nil {
		return fmt.Errorf("failed to open portaudio stream: %w", err)
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		return fmt.Errorf("failed to start portaudio stream: %w", err)
	}

	captureCtx, cancel := context.WithCancel(ctx)
	c.stream = stream
	c.in = in
	c.cancel = cancel

	go c.readFrames(captureCtx, stream, in, frames)
	return nil
}

func (c *Client) readFrames(ctx context.Context, stream *portaudio.Stream, in []int16, frames func([]byte)) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
			if err := stream.Read(); err != nil {
				return
			}

			audioBuffer := bytes.Buffer{}
			_ = binary.Write(&audioBuffer, binary.LittleEndian, in)
			frames(audioBuffer.Bytes())
		}
	}
}

func (c *Client) StopCapture() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	if c.stream == nil {
		return nil
	}

	stream := c.stream
	c.stream = nil
	if err := stream.Stop(); err != nil {
		stream.Close()
		return fmt.Errorf("failed to stop portaudio stream: %w", err)
	}
	return stream.Close()
}

func (c *Client) Close() {
	_ = c.StopCapture()
	_ = portaudio.Terminate()
}
