package rrdata

import (
	"fmt"

	"github.com/haukened/zonedns/internal/dns/domain"
)

// Parse converts a zone-file presentation value into typed record data.
// Relative names inside the value are qualified with origin, which must end in a dot.
func Parse(rrType domain.RRType, text, origin string) (domain.RData, error) {
	var (
		data domain.RData
		err  error
	)
	switch rrType {
	case domain.RRTypeA: // 1
		data, err = parseA(text)
	case domain.RRTypeNS: // 2
		data, err = parseNS(text, origin)
	case domain.RRTypeCNAME: // 5
		data, err = parseCNAME(text, origin)
	case domain.RRTypeSOA: // 6
		data, err = parseSOA(text, origin)
	case domain.RRTypeMX: // 15
		data, err = parseMX(text, origin)
	case domain.RRTypeTXT: // 16
		data, err = parseTXT(text)
	case domain.RRTypeAAAA: // 28
		data, err = parseAAAA(text)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, rrType)
	}
	if err != nil {
		return nil, err
	}
	if err := data.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidValue, err)
	}
	return data, nil
}
