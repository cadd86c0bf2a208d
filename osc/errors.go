package osc

import "errors"

var (
	// ErrEmptyAddress is returned when a message has no address pattern.
	ErrEmptyAddress = errors.New("osc: empty address")

	// ErrAddressPrefix is returned when an address does not start with '/'.
	ErrAddressPrefix = errors.New("osc: address must start with '/'")

	// ErrEmbeddedNUL is returned when an address or string argument contains
	// a NUL byte, which would end the field early.
	ErrEmbeddedNUL = errors.New("osc: string contains NUL")

	// ErrMisaligned is returned when a packet length is not a multiple of 4.
	ErrMisaligned = errors.New("osc: packet length not a multiple of 4")

	// ErrTruncated is returned when a packet ends inside a field.
	ErrTruncated = errors.New("osc: truncated packet")

	// ErrMissingTags is returned when the type tag string does not start with ','.
	ErrMissingTags = errors.New("osc: missing type tag string")

	// ErrUnknownTag is returned for type tags other than 's', 'i' and 'f'.
	ErrUnknownTag = errors.New("osc: unsupported type tag")

	// ErrTrailingBytes is returned when bytes remain after the last argument.
	ErrTrailingBytes = errors.New("osc: trailing bytes after arguments")
)
