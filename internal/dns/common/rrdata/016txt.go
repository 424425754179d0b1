package rrdata

import (
	"fmt"
	"strings"

	"github.com/haukened/zonedns/internal/dns/domain"
)

// parseTXT splits a TXT value into character-strings.
// Segments are separated by semicolons (RFC 1035 §3.3.14 allows several strings per record);
// a value wrapped in double quotes is taken verbatim as a single string.
func parseTXT(text string) (domain.RData, error) {
	trimmed := strings.TrimSpace(text)
	if len(trimmed) >= 2 && strings.HasPrefix(trimmed, `"`) && strings.HasSuffix(trimmed, `"`) {
		s := trimmed[1 : len(trimmed)-1]
		if len(s) > domain.MaxCharacterString {
			return nil, fmt.Errorf("%w: TXT segment too long: %d bytes", ErrInvalidValue, len(s))
		}
		return domain.TXT{Strings: []string{s}}, nil
	}

	var segments []string
	for _, segment := range strings.Split(trimmed, ";") {
		segment = strings.TrimSpace(segment)
		if segment == "" {
			continue
		}
		if len(segment) > domain.MaxCharacterString {
			return nil, fmt.Errorf("%w: TXT segment too long: %d bytes", ErrInvalidValue, len(segment))
		}
		segments = append(segments, segment)
	}
	if len(segments) == 0 {
		return nil, fmt.Errorf("%w: TXT record must contain at least one segment", ErrInvalidValue)
	}
	return domain.TXT{Strings: segments}, nil
}
