package deepgram

import (
	"go.opentelemetry.io/contrib/bridges/otelslog"
)

const scopeName = "github.com/voicedesk/voice-core/core/speechinput/deepgram"

var logger = otelslog.NewLogger(scopeName)
