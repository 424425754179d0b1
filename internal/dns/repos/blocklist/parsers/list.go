// Package parsers turns deny-list files into canonical block rules.
package parsers

import (
	"bufio"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/miekg/dns"

	logpkg "github.com/haukened/zonedns/internal/dns/common/log"
	"github.com/haukened/zonedns/internal/dns/common/utils"
	"github.com/haukened/zonedns/internal/dns/domain"
)

// Format is the line layout of a deny-list file.
type Format int

const (
	// FormatDomains holds one name per line. A leading "*." or "." makes it a suffix rule
	// covering the name and everything below it.
	FormatDomains Format = iota
	// FormatHosts is hosts(5) layout: an address followed by names. Every name is exact.
	FormatHosts
)

func (f Format) String() string {
	switch f {
	case FormatDomains:
		return "domains"
	case FormatHosts:
		return "hosts"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

// FormatFor picks the format from the file extension. ok is false for files that are not lists.
func FormatFor(path string) (f Format, ok bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt", ".list":
		return FormatDomains, true
	case ".hosts":
		return FormatHosts, true
	default:
		return 0, false
	}
}

// Parse reads rules in the given format. Text after '#' is ignored, as is a leading BOM.
// Invalid names are skipped with a debug entry and the first occurrence of each (name, kind)
// wins. Only read errors, including lines longer than bufio.MaxScanTokenSize, fail the parse.
func Parse(r io.Reader, format Format, source string, logger logpkg.Logger, now time.Time) ([]domain.BlockRule, error) {
	sc := bufio.NewScanner(r)
	seen := make(map[string]struct{})
	var out []domain.BlockRule

	for line := 1; sc.Scan(); line++ {
		text := sc.Text()
		if line == 1 {
			text = strings.TrimPrefix(text, "\uFEFF")
		}
		if i := strings.IndexByte(text, '#'); i >= 0 {
			text = text[:i]
		}
		fields := strings.Fields(text)
		if format == FormatHosts && len(fields) > 0 {
			// the address column
			fields = fields[1:]
		}

		for _, raw := range fields {
			name, kind := ruleName(raw, format)
			if !validName(name) {
				logger.Debug(map[string]any{"source": source, "line": line, "token": raw}, "Skipping invalid blocklist entry")
				continue
			}
			key := name + "|" + kind.String()
			if _, dup := seen[key]; dup {
				continue
			}
			rule, err := domain.NewBlockRule(name, kind, source, now)
			if err != nil {
				logger.Debug(map[string]any{"source": source, "line": line, "error": err}, "Skipping blocklist entry")
				continue
			}
			seen[key] = struct{}{}
			out = append(out, rule)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	logger.Debug(map[string]any{"source": source, "format": format.String(), "rules": len(out)}, "Blocklist parsed")
	return out, nil
}

// ruleName canonicalizes one token. Suffix markers are only honoured in domain lists; in a
// hosts file they are left in place so validation rejects the token.
func ruleName(raw string, format Format) (string, domain.BlockRuleKind) {
	kind := domain.BlockRuleExact
	if format == FormatDomains {
		for _, marker := range []string{"*.", "."} {
			if strings.HasPrefix(raw, marker) {
				raw = raw[len(marker):]
				kind = domain.BlockRuleSuffix
				break
			}
		}
	}
	return utils.CanonicalDNSName(raw), kind
}

// validName accepts hostnames of at least two labels built from letters, digits, '-' and '_'.
// A numeric last label is refused so hosts-style addresses never become rules.
func validName(name string) bool {
	labels, ok := dns.IsDomainName(name)
	if !ok || labels < 2 || strings.HasPrefix(name, ".") {
		return false
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		if !(c >= 'a' && c <= 'z' || c >= '0' && c <= '9' || c == '-' || c == '_' || c == '.') {
			return false
		}
	}
	tld := name[strings.LastIndexByte(name, '.')+1:]
	return strings.Trim(tld, "0123456789") != ""
}
