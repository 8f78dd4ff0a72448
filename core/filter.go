package orchestration

import (
	"strings"
	"unicode/utf8"
)

// Acceptance thresholds for recognizer transcripts. Interim results are
// provisional and held to a stricter confidence bar than final ones.
const (
	minFinalConfidence   = 0.5
	minInterimConfidence = 0.8
	minTranscriptRunes   = 2
)

// acceptTranscript decides whether a transcript is worth a remote exchange.
// Rejected transcripts never reach the exchange client.
func acceptTranscript(transcript string, confidence float64, interim bool) bool {
	trimmed := strings.TrimSpace(transcript)
	if utf8.RuneCountInString(trimmed) < minTranscriptRunes {
		return false
	}
	if confidence < minFinalConfidence {
		return false
	}
	if interim && confidence < minInterimConfidence {
		return false
	}
	return true
}
