package wire

import (
	"github.com/haukened/zonedns/internal/dns/domain"
)

// DNSCodec converts between DNS wire messages and domain values.
type DNSCodec interface {
	// DecodeQuery parses an inbound query datagram. Errors wrap ErrMalformedHeader,
	// ErrMalformedQuestion or ErrMalformedName.
	DecodeQuery(data []byte) (domain.Query, error)
	// EncodeResponse serializes an answer. The output is a pure function of the input.
	EncodeResponse(answer domain.Answer) ([]byte, error)
	// EncodeQuery serializes a single-question query message.
	EncodeQuery(query domain.Query) ([]byte, error)
}
