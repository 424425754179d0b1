package domain

import (
	"errors"
	"fmt"
	"net/netip"
	"strconv"
	"strings"
)

// ErrInvalidRData is returned when a record payload violates the constraints of its type.
var ErrInvalidRData = errors.New("invalid rdata")

// MaxCharacterString is the longest character-string a TXT record may carry (RFC 1035 §3.3).
const MaxCharacterString = 255

// RData is the type-specific payload of a resource record.
// Implementations are immutable values.
type RData interface {
	// Type returns the record type this payload belongs to.
	Type() RRType
	// String returns the zone-file presentation form of the payload.
	String() string
	// Validate reports whether the payload can be serialized.
	Validate() error
}

// A is an IPv4 host address.
type A struct {
	Addr netip.Addr
}

func (A) Type() RRType { return RRTypeA }

func (r A) String() string { return r.Addr.String() }

func (r A) Validate() error {
	if !r.Addr.Is4() {
		return fmt.Errorf("%w: A requires an IPv4 address, got %q", ErrInvalidRData, r.Addr)
	}
	return nil
}

// AAAA is an IPv6 host address.
type AAAA struct {
	Addr netip.Addr
}

func (AAAA) Type() RRType { return RRTypeAAAA }

func (r AAAA) String() string { return r.Addr.String() }

func (r AAAA) Validate() error {
	if !r.Addr.Is6() || r.Addr.Is4In6() {
		return fmt.Errorf("%w: AAAA requires an IPv6 address, got %q", ErrInvalidRData, r.Addr)
	}
	return nil
}

// NS names an authoritative name server for the owner.
type NS struct {
	Host string
}

func (NS) Type() RRType { return RRTypeNS }

func (r NS) String() string { return r.Host }

func (r NS) Validate() error { return validateTarget("NS host", r.Host) }

// CNAME points the owner at its canonical name.
type CNAME struct {
	Target string
}

func (CNAME) Type() RRType { return RRTypeCNAME }

func (r CNAME) String() string { return r.Target }

func (r CNAME) Validate() error { return validateTarget("CNAME target", r.Target) }

// MX is a single mail exchanger with its preference.
type MX struct {
	Preference uint16
	Exchange   string
}

func (MX) Type() RRType { return RRTypeMX }

func (r MX) String() string {
	return strconv.FormatUint(uint64(r.Preference), 10) + " " + r.Exchange
}

func (r MX) Validate() error { return validateTarget("MX exchange", r.Exchange) }

// TXT holds one or more character-strings, each at most 255 octets.
type TXT struct {
	Strings []string
}

func (TXT) Type() RRType { return RRTypeTXT }

func (r TXT) String() string {
	quoted := make([]string, len(r.Strings))
	for i, s := range r.Strings {
		quoted[i] = strconv.Quote(s)
	}
	return strings.Join(quoted, " ")
}

func (r TXT) Validate() error {
	if len(r.Strings) == 0 {
		return fmt.Errorf("%w: TXT requires at least one character-string", ErrInvalidRData)
	}
	for i, s := range r.Strings {
		if len(s) > MaxCharacterString {
			return fmt.Errorf("%w: TXT string %d is %d octets, max %d", ErrInvalidRData, i, len(s), MaxCharacterString)
		}
	}
	return nil
}

// SOA marks the start of a zone of authority.
type SOA struct {
	MName   string
	RName   string
	Serial  uint32
	Refresh uint32
	Retry   uint32
	Expire  uint32
	Minimum uint32
}

func (SOA) Type() RRType { return RRTypeSOA }

func (r SOA) String() string {
	return fmt.Sprintf("%s %s %d %d %d %d %d", r.MName, r.RName, r.Serial, r.Refresh, r.Retry, r.Expire, r.Minimum)
}

func (r SOA) Validate() error {
	if err := validateTarget("SOA mname", r.MName); err != nil {
		return err
	}
	return validateTarget("SOA rname", r.RName)
}

func validateTarget(what, name string) error {
	if name == "" {
		return fmt.Errorf("%w: %s must not be empty", ErrInvalidRData, what)
	}
	if !IsFQDN(name) {
		return fmt.Errorf("%w: %s %q must be fully qualified", ErrInvalidRData, what, name)
	}
	return nil
}
