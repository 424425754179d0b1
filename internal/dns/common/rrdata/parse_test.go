package rrdata

import (
	"errors"
	"net/netip"
	"strings"
	"testing"

	"github.com/haukened/zonedns/internal/dns/domain"
)

func TestParse(t *testing.T) {
	const origin = "example.com."
	tests := []struct {
		name     string
		rrType   domain.RRType
		input    string
		expected domain.RData
	}{
		{"A", domain.RRTypeA, "192.168.1.101", domain.A{Addr: netip.MustParseAddr("192.168.1.101")}},
		{"AAAA", domain.RRTypeAAAA, "2001:db8::1", domain.AAAA{Addr: netip.MustParseAddr("2001:db8::1")}},
		{"NS relative", domain.RRTypeNS, "ns1", domain.NS{Host: "ns1.example.com."}},
		{"NS absolute", domain.RRTypeNS, "ns1.other.net.", domain.NS{Host: "ns1.other.net."}},
		{"CNAME apex", domain.RRTypeCNAME, "@", domain.CNAME{Target: "example.com."}},
		{"CNAME case preserved", domain.RRTypeCNAME, "WWW", domain.CNAME{Target: "WWW.example.com."}},
		{"MX", domain.RRTypeMX, "10 mail", domain.MX{Preference: 10, Exchange: "mail.example.com."}},
		{"TXT", domain.RRTypeTXT, "hello", domain.TXT{Strings: []string{"hello"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.rrType, tt.input, origin)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.Type() != tt.rrType {
				t.Errorf("Type() = %s, want %s", got.Type(), tt.rrType)
			}
			if got.String() != tt.expected.String() {
				t.Errorf("Parse(%s, %q) = %v, want %v", tt.rrType, tt.input, got, tt.expected)
			}
		})
	}
}

func TestParse_UnsupportedType(t *testing.T) {
	for _, rt := range []domain.RRType{domain.RRTypePTR, domain.RRTypeSRV, domain.RRTypeCAA, domain.RRTypeANY, 0} {
		if _, err := Parse(rt, "anything", "example.com."); !errors.Is(err, ErrUnsupportedType) {
			t.Errorf("Parse(%s) expected ErrUnsupportedType, got %v", rt, err)
		}
	}
}

func TestParse_InvalidNames(t *testing.T) {
	long := strings.Repeat("a", 64)
	inputs := []string{
		"",
		"two words",
		"bad..name.",
		long + ".example.com.",
	}
	for _, input := range inputs {
		if _, err := Parse(domain.RRTypeCNAME, input, "example.com."); !errors.Is(err, ErrInvalidValue) {
			t.Errorf("Parse(CNAME, %q) expected ErrInvalidValue, got %v", input, err)
		}
	}
}
