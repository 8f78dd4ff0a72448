package events

import "github.com/voicedesk/voice-core/core/exchange"

const (
	// KindExchangeResolved identifies a finished remote assistant round-trip.
	KindExchangeResolved Kind = "exchange.resolved"
)

// ExchangeResolved carries the outcome of one remote assistant round-trip.
// Exactly one of Response and Err is set.
type ExchangeResolved struct {
	Base
	Response *exchange.Response
	Err      error
}

// NewExchangeResolved creates an exchange outcome event.
func NewExchangeResolved(response *exchange.Response, err error) ExchangeResolved {
	return ExchangeResolved{Base: NewBase(KindExchangeResolved), Response: response, Err: err}
}
