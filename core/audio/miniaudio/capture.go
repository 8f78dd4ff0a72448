package miniaudio

import (
	"context"
	"fmt"
	"sync"

	"github.com/gen2brain/malgo"
)

type captureClient struct {
	audioContext *malgo.AllocatedContext
	device       *malgo.Device
	config       malgo.DeviceConfig

	sampleRate int
	format     string

	onAudio func(audio []byte)
	// tap receives a copy of every frame while a push-to-talk recording is
	// in progress; it coexists with the transcription consumer.
	tap func(audio []byte)

	mu sync.Mutex
}

func malgoFormat(format string) (malgo.FormatType, error) {
	switch format {
	case "linear16":
		return malgo.FormatS16, nil
	case "mulaw", "alaw":
		return malgo.FormatU8, nil
	}
	return malgo.FormatUnknown, fmt.Errorf("unsupported capture format %q", format)
}

// StartCapture engages the microphone at the requested rate and format,
// delivering raw frames to the callback. The device is reinitialized when
// the requested configuration differs from the running one.
func (c *captureClient) StartCapture(_ context.Context, sampleRate int, format string, frames func([]byte)) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.ensureDevice(sampleRate, format); err != nil {
		return err
	}

	c.onAudio = frames
	if c.device.IsStarted() {
		return nil
	}
	if err := c.device.Start(); err != nil {
		return fmt.Errorf("failed to start capture device: %w", err)
	}
	return nil
}

func (c *captureClient) StopCapture() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.onAudio = nil
	if c.device == nil || !c.device.IsStarted() {
		return nil
	}
	if c.tap != nil {
		// A recording still owns the device.
		return nil
	}

	if err := c.device.Stop(); err != nil {
		return fmt.Errorf("failed to stop capture device: %w", err)
	}
	return nil
}

func (c *captureClient) startTap(sampleRate int, format string, tap func([]byte)) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.ensureDevice(sampleRate, format); err != nil {
		return err
	}

	c.tap = tap
	if c.device.IsStarted() {
		return nil
	}
	if err := c.device.Start(); err != nil {
		return fmt.Errorf("failed to start capture device: %w", err)
	}
	return nil
}

func (c *captureClient) stopTap() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.tap = nil
	if c.device != nil && c.device.IsStarted() && c.onAudio == nil {
		_ = c.device.Stop()
	}
}

// ensureDevice (re)initializes the capture device for the requested
// configuration. Caller holds c.mu.
func (c *captureClient) ensureDevice(sampleRate int, format string) error {
	if c.device != nil && c.sampleRate == sampleRate && c.format == format {
		return nil
	}
	if c.device != nil {
		c.device.Uninit()
		c.device = nil
	}

	malgoFmt, err := malgoFormat(format)
	if err != nil {
		return err
	}

	channels := 1
	bytesPerFrame := malgo.SampleSizeInBytes(malgoFmt) * channels

	c.config = malgo.DefaultDeviceConfig(malgo.Capture)
	c.config.SampleRate = uint32(sampleRate)
	c.config.Capture.Format = malgoFmt
	c.config.Capture.Channels = uint32(channels)
	c.config.Alsa.NoMMap = 1
	c.config.PerformanceProfile = malgo.LowLatency
	c.config.PeriodSizeInFrames = 480
	c.config.Periods = 3

	c.device, err = malgo.InitDevice(c.audioContext.Context, c.config, malgo.DeviceCallbacks{
		Data: func(_, pInput []byte, frameCount uint32) {
			n := int(frameCount) * bytesPerFrame
			if len(pInput) < n || n == 0 {
				return
			}
			if c.onAudio != nil {
				c.onAudio(pInput[:n])
			}
			if c.tap != nil {
				c.tap(pInput[:n])
			}
		},
	})
	if err != nil {
		return fmt.Errorf("failed to initialize capture device: %w", err)
	}

	c.sampleRate = sampleRate
	c.format = format
	return nil
}

func (c *captureClient) Uninit() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.device != nil {
		c.device.Uninit()
		c.device = nil
	}

	c.onAudio = nil
	c.tap = nil
	return nil
}
