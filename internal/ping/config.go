package ping

import "time"

// DefaultPayload is the echo data carried by every request unless configured otherwise.
const DefaultPayload = "Hello, world"

// Config controls a Session.
type Config struct {
	// Interval is the pause after each exchange. It is not reduced by the round-trip time.
	Interval time.Duration

	// Count stops the run after this many requests. 0 runs until cancelled.
	Count int

	// Payload is copied into every echo request.
	Payload []byte

	// Identifier is fixed for the lifetime of the session.
	Identifier uint16

	// MatchReplies skips datagrams that are not the echo reply to the request just sent.
	MatchReplies bool
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		Interval: time.Second,
		Payload:  []byte(DefaultPayload),
	}
}
