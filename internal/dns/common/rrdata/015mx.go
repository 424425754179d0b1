package rrdata

import (
	"fmt"
	"strconv"

	"github.com/haukened/zonedns/internal/dns/domain"
)

// parseMX parses "preference exchange", e.g. "10 mail" or "20 backup.example.com.".
func parseMX(text, origin string) (domain.RData, error) {
	parts, err := fields("MX", "preference exchange", text, 2)
	if err != nil {
		return nil, err
	}
	pref, err := strconv.ParseUint(parts[0], 10, 16)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid MX preference: %q", ErrInvalidValue, parts[0])
	}
	exchange, err := parseName("MX exchange", parts[1], origin)
	if err != nil {
		return nil, err
	}
	return domain.MX{Preference: uint16(pref), Exchange: exchange}, nil
}
