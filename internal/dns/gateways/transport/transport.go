// Package transport owns the network side of the server: it receives datagrams, runs each
// through the decode → resolve → encode pipeline on a bounded worker pool, and sends the
// resulting bytes back to the client.
package transport

import (
	"context"
	"errors"

	"github.com/haukened/zonedns/internal/dns/services/resolver"
)

var (
	// ErrInternalFault wraps panics and encode failures inside a unit of work.
	ErrInternalFault = errors.New("internal fault")
	// ErrNotQuery is returned for inbound messages that have the QR bit set.
	ErrNotQuery = errors.New("message is not a query")
)

// ServerTransport defines the interface for DNS server transport implementations.
type ServerTransport interface {
	// Start binds the socket and serves queries via responder until ctx is canceled or Stop is called.
	Start(ctx context.Context, responder resolver.DNSResponder) error

	// Stop stops reading, drains queued and in-flight work, then closes the socket.
	Stop() error

	// Address returns the network address the transport is bound to.
	Address() string
}

// TransportType names a listener kind as it appears in configuration.
type TransportType string

// TransportUDP is plain DNS over UDP (RFC 1035 §4.2.1).
const TransportUDP TransportType = "udp"
