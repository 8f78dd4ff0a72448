package orchestration

import (
	"testing"

	"github.com/voicedesk/voice-core/core/audio"
	"github.com/voicedesk/voice-core/core/exchange"
)

func TestSelectRoutePriority(t *testing.T) {
	cases := []struct {
		name     string
		response exchange.Response
		want     playbackRoute
	}{
		{
			name:     "binary beats everything",
			response: exchange.Response{AudioBinary: []byte{1}, AudioBase64: "AAAA", AudioURL: "https://example.com/a.raw"},
			want:     routeBinary,
		},
		{
			name:     "base64 beats url",
			response: exchange.Response{AudioBase64: "AAAA", AudioURL: "https://example.com/a.raw"},
			want:     routeBase64,
		},
		{
			name:     "url beats speech",
			response: exchange.Response{AudioURL: "https://example.com/a.raw", Response: "hello"},
			want:     routeURL,
		},
		{
			name:     "text only falls back to speech",
			response: exchange.Response{Response: "hello"},
			want:     routeSpeech,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := selectRoute(&tc.response); got != tc.want {
				t.Fatalf("selectRoute = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestPayloadForRoute(t *testing.T) {
	response := &exchange.Response{
		AudioBinary:   []byte{1, 2, 3},
		AudioMIMEType: "audio/l16",
		AudioBase64:   "AQID",
		AudioURL:      "https://example.com/a.raw",
	}

	payload, ok := payloadForRoute(response, routeBinary)
	if !ok || payload.Source != audio.PayloadSourceBinary || payload.MIMEType != "audio/l16" {
		t.Fatalf("unexpected binary payload %+v (ok=%v)", payload, ok)
	}

	payload, ok = payloadForRoute(response, routeBase64)
	if !ok || payload.Source != audio.PayloadSourceBase64 || payload.Base64 != "AQID" {
		t.Fatalf("unexpected base64 payload %+v (ok=%v)", payload, ok)
	}

	payload, ok = payloadForRoute(response, routeURL)
	if !ok || payload.Source != audio.PayloadSourceURL || payload.URL != response.AudioURL {
		t.Fatalf("unexpected url payload %+v (ok=%v)", payload, ok)
	}

	if _, ok := payloadForRoute(response, routeSpeech); ok {
		t.Fatalf("expected no payload for the speech route")
	}
}
