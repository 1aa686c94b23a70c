package icmp

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedMessage is the parent of every decode failure.
	ErrMalformedMessage = errors.New("malformed ICMP message")

	// ErrInvalidTypeCode is returned for a (type, code) pair outside the known set.
	ErrInvalidTypeCode = fmt.Errorf("%w: invalid type or code", ErrMalformedMessage)

	// ErrBufferTooShort is returned when fewer than HeaderLen bytes are decoded.
	ErrBufferTooShort = fmt.Errorf("%w: buffer too short", ErrMalformedMessage)

	// ErrSocketSetup is returned when the raw socket cannot be created.
	ErrSocketSetup = errors.New("raw socket setup failed")
)
