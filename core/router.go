package orchestration

import (
	"github.com/voicedesk/voice-core/core/audio"
	"github.com/voicedesk/voice-core/core/exchange"
)

// playbackRoute names the output path selected for one response.
type playbackRoute string

const (
	routeBinary playbackRoute = "binary"
	routeBase64 playbackRoute = "base64"
	routeURL    playbackRoute = "url"
	routeSpeech playbackRoute = "speech"
)

// selectRoute picks exactly one playback path for a response, in strict
// priority order: raw binary audio, base64 audio, remote URL, and finally
// synthesized speech of the reply text. Lower-priority audio present in the
// same response is ignored.
func selectRoute(response *exchange.Response) playbackRoute {
	switch {
	case len(response.AudioBinary) > 0:
		return routeBinary
	case response.AudioBase64 != "":
		return routeBase64
	case response.AudioURL != "":
		return routeURL
	}
	return routeSpeech
}

// payloadForRoute builds the AudioChannel payload for an audio route.
// routeSpeech carries no payload; the reply text goes through SpeechOutput.
func payloadForRoute(response *exchange.Response, route playbackRoute) (audio.Payload, bool) {
	switch route {
	case routeBinary:
		return audio.BinaryPayload(response.AudioBinary, response.AudioMIMEType), true
	case routeBase64:
		return audio.Base64Payload(response.AudioBase64), true
	case routeURL:
		return audio.URLPayload(response.AudioURL), true
	}
	return audio.Payload{}, false
}
