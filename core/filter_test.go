package orchestration

import "testing"

func TestAcceptTranscript(t *testing.T) {
	cases := []struct {
		name       string
		transcript string
		confidence float64
		interim    bool
		want       bool
	}{
		{name: "confident final", transcript: "turn on the lights", confidence: 0.9, want: true},
		{name: "final at threshold", transcript: "hello", confidence: 0.5, want: true},
		{name: "final below threshold", transcript: "hello", confidence: 0.49, want: false},
		{name: "single rune", transcript: "a", confidence: 0.99, want: false},
		{name: "two runes", transcript: "hi", confidence: 0.9, want: true},
		{name: "whitespace only", transcript: "   ", confidence: 0.99, want: false},
		{name: "padded transcript counts trimmed runes", transcript: " h \t", confidence: 0.99, want: false},
		{name: "interim needs higher confidence", transcript: "hello", confidence: 0.7, interim: true, want: false},
		{name: "interim at threshold", transcript: "hello", confidence: 0.8, interim: true, want: true},
		{name: "multibyte runes count as runes", transcript: "héj", confidence: 0.9, want: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := acceptTranscript(tc.transcript, tc.confidence, tc.interim); got != tc.want {
				t.Fatalf("acceptTranscript(%q, %v, %v) = %v, want %v",
					tc.transcript, tc.confidence, tc.interim, got, tc.want)
			}
		})
	}
}
