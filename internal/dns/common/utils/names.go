package utils

import "strings"

// CanonicalDNSName returns a DNS name in the form used for deny-list matching:
// - Lowercased
// - Trimmed of surrounding whitespace
// - No trailing dot
func CanonicalDNSName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	for strings.HasSuffix(name, ".") {
		name = strings.TrimSuffix(name, ".")
	}
	return name
}

// Fqdn returns name with exactly one trailing dot. The empty name becomes the root ".".
func Fqdn(name string) string {
	name = strings.TrimSpace(name)
	for strings.HasSuffix(name, "..") {
		name = strings.TrimSuffix(name, ".")
	}
	if strings.HasSuffix(name, ".") {
		return name
	}
	return name + "."
}

// Qualify expands a zone-file owner or target name relative to origin.
// "@" (or an empty string) is the origin itself, names ending in a dot are already absolute,
// anything else gets the origin appended. origin must be fully qualified.
func Qualify(name, origin string) string {
	name = strings.TrimSpace(name)
	switch {
	case name == "" || name == "@":
		return origin
	case strings.HasSuffix(name, "."):
		return name
	case origin == ".":
		return name + "."
	default:
		return name + "." + origin
	}
}
