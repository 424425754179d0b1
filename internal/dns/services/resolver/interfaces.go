package resolver

import (
	"context"
	"net"

	"github.com/haukened/zonedns/internal/dns/domain"
)

// RecordStore is the read-only view of authoritative data the resolver answers from.
type RecordStore interface {
	Lookup(name string, rrType domain.RRType) (domain.RecordSet, bool)
	HasName(name string) bool
	InZone(name string) bool
}

// Blocklist decides whether a query name is denied.
type Blocklist interface {
	Decide(name string) domain.BlockDecision
}

// DNSResponder processes a decoded query and returns the answer to encode.
// The transport handles all network protocol details; the responder only sees domain objects.
type DNSResponder interface {
	HandleQuery(ctx context.Context, query domain.Query, clientAddr net.Addr) (domain.Answer, error)
}
