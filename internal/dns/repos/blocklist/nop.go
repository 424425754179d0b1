package blocklist

import (
	"github.com/haukened/zonedns/internal/dns/domain"
	"github.com/haukened/zonedns/internal/dns/services/resolver"
)

// NoopBlocklist allows every name. Used when no list directory is configured.
type NoopBlocklist struct{}

func (n *NoopBlocklist) Decide(string) domain.BlockDecision {
	return domain.EmptyDecision()
}

var _ resolver.Blocklist = (*NoopBlocklist)(nil)
var _ resolver.Blocklist = (Repository)(nil)
