package utils

import (
	"fmt"

	"golang.org/x/net/publicsuffix"
)

// IsPublicSuffix reports whether name is itself a public suffix (e.g. "com", "co.uk", "github.io").
func IsPublicSuffix(name string) bool {
	name = CanonicalDNSName(name)
	if name == "" {
		return true
	}
	suffix, _ := publicsuffix.PublicSuffix(name)
	return suffix == name
}

// ValidateZoneRoot rejects zone roots that no single operator could be authoritative for.
func ValidateZoneRoot(root string) error {
	if CanonicalDNSName(root) == "" {
		return fmt.Errorf("zone root must not be the DNS root")
	}
	if IsPublicSuffix(root) {
		return fmt.Errorf("zone root %q is a public suffix", root)
	}
	return nil
}

// GetApexDomain returns the registrable domain (eTLD+1) of name, or the canonical name when it has none.
func GetApexDomain(name string) string {
	name = CanonicalDNSName(name)
	apex, err := publicsuffix.EffectiveTLDPlusOne(name)
	if err != nil {
		return name
	}
	return apex
}
