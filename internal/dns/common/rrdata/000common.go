package rrdata

import (
	"errors"
	"fmt"
	"strings"

	"github.com/haukened/zonedns/internal/dns/common/utils"
)

var (
	// ErrUnsupportedType is returned for record types that cannot be served from a zone file.
	ErrUnsupportedType = errors.New("unsupported record type")
	// ErrInvalidValue is returned when a presentation value cannot be parsed for its type.
	ErrInvalidValue = errors.New("invalid record value")
)

const maxLabelLength = 63

// parseName qualifies a target name against origin and checks label lengths.
// The name is returned in presentation form with a trailing dot, case preserved.
func parseName(what, text, origin string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("%w: empty %s", ErrInvalidValue, what)
	}
	if strings.ContainsAny(text, " \t") {
		return "", fmt.Errorf("%w: %s %q contains whitespace", ErrInvalidValue, what, text)
	}
	name := utils.Qualify(text, origin)
	if name == "." {
		return name, nil
	}
	for _, label := range strings.Split(strings.TrimSuffix(name, "."), ".") {
		if label == "" {
			return "", fmt.Errorf("%w: %s %q has an empty label", ErrInvalidValue, what, text)
		}
		if len(label) > maxLabelLength {
			return "", fmt.Errorf("%w: %s %q has a label longer than %d octets", ErrInvalidValue, what, text, maxLabelLength)
		}
	}
	return name, nil
}

// fields splits text on whitespace and checks the field count.
func fields(rrType, format, text string, want int) ([]string, error) {
	parts := strings.Fields(text)
	if len(parts) != want {
		return nil, fmt.Errorf("%w: %s record format is %q, got %q", ErrInvalidValue, rrType, format, text)
	}
	return parts, nil
}
