package zone

import (
	"errors"
	"net/netip"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"go.uber.org/multierr"

	"github.com/haukened/zonedns/internal/dns/common/log"
	"github.com/haukened/zonedns/internal/dns/common/rrdata"
	"github.com/haukened/zonedns/internal/dns/domain"
)

const testYAML = `
zone_root: example.com
"@":
  A: "192.168.1.101"
  MX:
    - "10 mail"
    - "20 backup.example.com."
www:
  A: "1.2.3.4"
`

const testJSON = `{
	"zone_root": "nyu.edu.",
	"ttl": 120,
	"@": {
	  "TXT": "This is a TXT record",
	  "NS": "ns1.nyu.edu."
	},
	"api": {
	  "a": ["5.6.7.8", "5.6.7.9"]
	}
}
`

const testTOML = `zone_root = "safebank.com"
ttl = 60
["@"]
A = "192.168.1.102"
AAAA = "2001:db8::1"
[web]
CNAME = "@"
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

func find(records []domain.ResourceRecord, name string, rrType domain.RRType) []domain.ResourceRecord {
	var out []domain.ResourceRecord
	for _, r := range records {
		if r.Name == name && r.Type == rrType {
			out = append(out, r)
		}
	}
	return out
}

func TestLoadZoneDirectory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.yaml", testYAML)
	writeFile(t, dir, "b.json", testJSON)
	writeFile(t, dir, "c.toml", testTOML)
	writeFile(t, dir, "README.md", "# not a zone")

	zones, err := LoadZoneDirectory(dir, 300*time.Second, log.NewNoopLogger())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(zones) != 3 {
		t.Fatalf("expected 3 zones, got %d: %v", len(zones), zones)
	}

	com := zones["example.com."]
	if got := find(com, "example.com.", domain.RRTypeA); len(got) != 1 || got[0].Data.String() != "192.168.1.101" || got[0].TTL != 300 {
		t.Errorf("unexpected apex A: %v", got)
	}
	mx := find(com, "example.com.", domain.RRTypeMX)
	if len(mx) != 2 {
		t.Fatalf("expected 2 MX, got %d", len(mx))
	}
	if mx[0].Data.String() != "10 mail.example.com." || mx[1].Data.String() != "20 backup.example.com." {
		t.Errorf("MX order or qualification wrong: %v, %v", mx[0].Data, mx[1].Data)
	}
	if got := find(com, "www.example.com.", domain.RRTypeA); len(got) != 1 {
		t.Errorf("expected www A, got %v", got)
	}

	edu := zones["nyu.edu."]
	txt := find(edu, "nyu.edu.", domain.RRTypeTXT)
	if len(txt) != 1 || txt[0].TTL != 120 {
		t.Fatalf("unexpected TXT: %v", txt)
	}
	if !reflect.DeepEqual(txt[0].Data.(domain.TXT).Strings, []string{"This is a TXT record"}) {
		t.Errorf("TXT strings = %q", txt[0].Data.(domain.TXT).Strings)
	}
	if got := find(edu, "api.nyu.edu.", domain.RRTypeA); len(got) != 2 {
		t.Errorf("lowercase type key should be accepted, got %v", got)
	}

	bank := zones["safebank.com."]
	if got := find(bank, "safebank.com.", domain.RRTypeAAAA); len(got) != 1 || got[0].Data.(domain.AAAA).Addr != netip.MustParseAddr("2001:db8::1") {
		t.Errorf("unexpected AAAA: %v", got)
	}
	if got := find(bank, "web.safebank.com.", domain.RRTypeCNAME); len(got) != 1 || got[0].Data.String() != "safebank.com." || got[0].TTL != 60 {
		t.Errorf("unexpected CNAME: %v", got)
	}
}

func TestLoadZoneDirectory_Deterministic(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.yaml", testYAML)
	writeFile(t, dir, "b.json", testJSON)

	first, err := LoadZoneDirectory(dir, time.Minute, log.NewNoopLogger())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 0; i < 5; i++ {
		again, err := LoadZoneDirectory(dir, time.Minute, log.NewNoopLogger())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("load %d differs from the first load", i)
		}
	}
}

func TestLoadZoneDirectory_MergesFilesForSameZone(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "1.yaml", "zone_root: example.com\n\"@\":\n  A: 10.0.0.1\n")
	writeFile(t, dir, "2.yaml", "zone_root: example.com.\n\"@\":\n  A: 10.0.0.2\n")

	zones, err := LoadZoneDirectory(dir, time.Minute, log.NewNoopLogger())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := find(zones["example.com."], "example.com.", domain.RRTypeA)
	if len(got) != 2 || got[0].Data.String() != "10.0.0.1" || got[1].Data.String() != "10.0.0.2" {
		t.Errorf("expected files merged in lexical order, got %v", got)
	}
}

func TestLoadZoneDirectory_Empty(t *testing.T) {
	zones, err := LoadZoneDirectory(t.TempDir(), time.Minute, log.NewNoopLogger())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(zones) != 0 {
		t.Errorf("expected no zones, got %d", len(zones))
	}
}

func TestLoadZoneDirectory_MissingDir(t *testing.T) {
	if _, err := LoadZoneDirectory(filepath.Join(t.TempDir(), "nope"), time.Minute, log.NewNoopLogger()); err == nil {
		t.Fatal("expected error for missing directory")
	}
}

func TestLoadZoneDirectory_ReportsAllBrokenFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "good.yaml", testYAML)
	writeFile(t, dir, "bad1.yaml", "www:\n  A: 1.2.3.4\n")
	writeFile(t, dir, "bad2.json", `{"zone_root": "example.org", "www": {"A": "not-an-ip"}}`)

	_, err := LoadZoneDirectory(dir, time.Minute, log.NewNoopLogger())
	if err == nil {
		t.Fatal("expected error")
	}
	errs := multierr.Errors(err)
	if len(errs) != 2 {
		t.Fatalf("expected 2 errors, got %d: %v", len(errs), err)
	}
	if !strings.Contains(errs[0].Error(), "bad1.yaml") || !strings.Contains(errs[1].Error(), "bad2.json") {
		t.Errorf("errors should name the files in walk order: %v", errs)
	}
	if !errors.Is(errs[1], rrdata.ErrInvalidValue) {
		t.Errorf("expected ErrInvalidValue in chain, got %v", errs[1])
	}
}

type warnLogger struct {
	log.Logger
	warnings []map[string]any
}

func (l *warnLogger) Warn(fields map[string]any, _ string) {
	l.warnings = append(l.warnings, fields)
}

func TestLoadZoneDirectory_CNAMEAlongsideOtherData(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "z.yaml", "zone_root: example.com\n\"@\":\n  A: 192.168.1.101\n  CNAME: www\nwww:\n  A: 1.2.3.4\n")
	logger := &warnLogger{Logger: log.NewNoopLogger()}

	zones, err := LoadZoneDirectory(dir, time.Minute, logger)
	if err != nil {
		t.Fatalf("apex CNAME next to A should load, got %v", err)
	}
	records := zones["example.com."]
	if got := find(records, "example.com.", domain.RRTypeCNAME); len(got) != 1 || got[0].Data.String() != "www.example.com." {
		t.Errorf("unexpected apex CNAME: %v", got)
	}
	if got := find(records, "example.com.", domain.RRTypeA); len(got) != 1 {
		t.Errorf("apex A should be kept, got %v", got)
	}
	if len(logger.warnings) != 1 {
		t.Fatalf("expected one warning, got %v", logger.warnings)
	}
	if logger.warnings[0]["owner"] != "example.com." || logger.warnings[0]["zone"] != "example.com." {
		t.Errorf("warning should name zone and owner, got %v", logger.warnings[0])
	}
}

func TestCNAMEConflicts(t *testing.T) {
	rr := func(name string, typ domain.RRType) domain.ResourceRecord {
		return domain.ResourceRecord{Name: name, Type: typ}
	}
	tests := []struct {
		name    string
		records []domain.ResourceRecord
		want    []string
	}{
		{"no CNAME", []domain.ResourceRecord{rr("a.", domain.RRTypeA), rr("a.", domain.RRTypeMX)}, nil},
		{"lone CNAME", []domain.ResourceRecord{rr("a.", domain.RRTypeCNAME), rr("b.", domain.RRTypeA)}, nil},
		{"CNAME with A", []domain.ResourceRecord{rr("a.", domain.RRTypeA), rr("a.", domain.RRTypeCNAME)}, []string{"a."}},
		{"two CNAMEs", []domain.ResourceRecord{rr("b.", domain.RRTypeCNAME), rr("b.", domain.RRTypeCNAME)}, []string{"b."}},
		{"first-seen order", []domain.ResourceRecord{
			rr("z.", domain.RRTypeCNAME), rr("a.", domain.RRTypeCNAME), rr("a.", domain.RRTypeTXT), rr("z.", domain.RRTypeA),
		}, []string{"z.", "a."}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cnameConflicts(tt.records); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("cnameConflicts() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLoadZoneFileWithRoot_Errors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{"missing zone_root", "z.yaml", "www:\n  A: 1.2.3.4\n"},
		{"public suffix root", "z.yaml", "zone_root: co.uk\nwww:\n  A: 1.2.3.4\n"},
		{"root zone", "z.yaml", "zone_root: \".\"\nwww:\n  A: 1.2.3.4\n"},
		{"malformed yaml", "z.yaml", "zone_root: example.com\nwww:\nmail:\n\t\tFoo: \"bar\""},
		{"owner not a map", "z.yaml", "zone_root: example.com\nwww: 1.2.3.4\n"},
		{"owner outside zone", "z.yaml", "zone_root: example.com\nwww.other.org.:\n  A: 1.2.3.4\n"},
		{"unknown type", "z.yaml", "zone_root: example.com\nwww:\n  FOO: bar\n"},
		{"unservable type", "z.yaml", "zone_root: example.com\nwww:\n  SRV: 0 5 5060 sip\n"},
		{"bad value", "z.yaml", "zone_root: example.com\nwww:\n  MX: mail\n"},
		{"negative ttl", "z.json", `{"zone_root": "example.com", "ttl": -1, "www": {"A": "1.2.3.4"}}`},
		{"fractional ttl", "z.json", `{"zone_root": "example.com", "ttl": 1.5, "www": {"A": "1.2.3.4"}}`},
		{"string ttl", "z.json", `{"zone_root": "example.com", "ttl": "soon", "www": {"A": "1.2.3.4"}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, t.TempDir(), tt.file, tt.content)
			if _, _, err := loadZoneFileWithRoot(path, time.Minute); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestLoadZoneFileWithRoot_UnsupportedExtension(t *testing.T) {
	path := writeFile(t, t.TempDir(), "zone.txt", "zone_root: example.com")
	root, records, err := loadZoneFileWithRoot(path, time.Minute)
	if err != nil || root != "" || records != nil {
		t.Errorf("expected file to be skipped, got %q %v %v", root, records, err)
	}
}

func TestLoadZoneFileWithRoot_AbsoluteAndMixedCaseOwners(t *testing.T) {
	content := "zone_root: Example.COM\nWWW:\n  A: 1.2.3.4\nmail.example.com.:\n  A: 5.6.7.8\n"
	path := writeFile(t, t.TempDir(), "z.yaml", content)
	root, records, err := loadZoneFileWithRoot(path, time.Minute)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if root != "example.com." {
		t.Errorf("root = %q", root)
	}
	if len(find(records, "www.example.com.", domain.RRTypeA)) != 1 {
		t.Errorf("owner names should be lowercased: %v", records)
	}
	if len(find(records, "mail.example.com.", domain.RRTypeA)) != 1 {
		t.Errorf("absolute owner should be kept: %v", records)
	}
}

func TestToStringValues(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want []string
	}{
		{"string", " a ", []string{"a"}},
		{"empty string", "  ", nil},
		{"int", 12345, []string{"12345"}},
		{"int64", int64(7), []string{"7"}},
		{"float", float64(10), []string{"10"}},
		{"bool", true, []string{"true"}},
		{"list", []any{"a", "", 3, map[string]any{}}, []string{"a", "3"}},
		{"empty list", []any{}, nil},
		{"map", map[string]any{"x": "y"}, nil},
		{"nil", nil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := toStringValues(tt.in); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("toStringValues(%v) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestZoneTTL(t *testing.T) {
	tests := []struct {
		name    string
		raw     map[string]any
		want    uint32
		wantErr bool
	}{
		{"default", map[string]any{}, 300, false},
		{"int", map[string]any{"ttl": 60}, 60, false},
		{"int64", map[string]any{"ttl": int64(3600)}, 3600, false},
		{"float", map[string]any{"ttl": float64(86400)}, 86400, false},
		{"zero", map[string]any{"ttl": 0}, 0, false},
		{"too big", map[string]any{"ttl": int64(1) << 31}, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := zoneTTL(tt.raw, 5*time.Minute)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("zoneTTL = %d, want %d", got, tt.want)
			}
		})
	}
}
