package deepgram

import (
	"fmt"

	"github.com/voicedesk/voice-core/core/audio"
)

type encodingConfig struct {
	sampleRate int
	format     string
}

func convertEncoding(encoding audio.EncodingInfo) (*encodingConfig, error) {
	converted := encodingConfig{format: encoding.Format.Name()}

	switch encoding.SampleRate {
	case 8000, 16000, 24000, 32000, 48000:
		converted.sampleRate = encoding.SampleRate
	default:
		return nil, fmt.Errorf("unsupported sample rate")
	}

	switch encoding.Format {
	case audio.EncodingLinear16:
	case audio.EncodingALaw, audio.EncodingMulaw:
		if converted.sampleRate != 8000 {
			return nil, fmt.Errorf("unsupported sample rate for %s encoding", encoding.Format.Name())
		}
	default:
		return nil, fmt.Errorf("unsupported encoding")
	}

	return &converted, nil
}
