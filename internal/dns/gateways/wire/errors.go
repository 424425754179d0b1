package wire

import "errors"

var (
	// ErrMalformedHeader is returned when a datagram is too short to hold a DNS header.
	ErrMalformedHeader = errors.New("malformed header")
	// ErrMalformedQuestion is returned when the question section is missing or truncated.
	ErrMalformedQuestion = errors.New("malformed question")
	// ErrMalformedName is returned for bad label encoding, including compression loops.
	ErrMalformedName = errors.New("malformed name")
	// ErrInvalidRecord is returned when an answer cannot be serialized.
	ErrInvalidRecord = errors.New("invalid record")
)
