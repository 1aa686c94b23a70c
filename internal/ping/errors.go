package ping

import "errors"

var (
	// ErrResolution is returned when a host has no usable IPv4 address.
	ErrResolution = errors.New("could not resolve host to an IPv4 address")

	// ErrSendFailure is returned when an echo request cannot be written.
	ErrSendFailure = errors.New("failed to send echo request")
)
