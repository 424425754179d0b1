package rrdata

import (
	"fmt"
	"net/netip"
	"strings"

	"github.com/haukened/zonedns/internal/dns/domain"
)

// parseA parses a dotted-quad IPv4 address, e.g. "192.168.1.101".
func parseA(text string) (domain.RData, error) {
	addr, err := netip.ParseAddr(strings.TrimSpace(text))
	if err != nil || !addr.Is4() {
		return nil, fmt.Errorf("%w: invalid A record IP: %q", ErrInvalidValue, text)
	}
	return domain.A{Addr: addr}, nil
}
