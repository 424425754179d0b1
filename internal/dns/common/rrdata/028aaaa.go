package rrdata

import (
	"fmt"
	"net/netip"
	"strings"

	"github.com/haukened/zonedns/internal/dns/domain"
)

// parseAAAA parses an IPv6 address, e.g. "2001:db8::1". IPv4-mapped forms are rejected.
func parseAAAA(text string) (domain.RData, error) {
	addr, err := netip.ParseAddr(strings.TrimSpace(text))
	if err != nil || !addr.Is6() || addr.Is4In6() || addr.Zone() != "" {
		return nil, fmt.Errorf("%w: invalid AAAA record IP: %q", ErrInvalidValue, text)
	}
	return domain.AAAA{Addr: addr}, nil
}
