// Package zone loads authoritative zone data from a directory of YAML, JSON or TOML files.
//
// Each file names its zone with `zone_root`, may set a default `ttl` in seconds, and maps
// owner names (`@`, relative labels or absolute names) to record types and presentation values:
//
//	zone_root: example.com
//	ttl: 300
//	"@":
//	  A: 192.168.1.101
//	  MX: ["10 mail", "20 backup"]
//	www:
//	  CNAME: "@"
package zone

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/knadh/koanf"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"go.uber.org/multierr"

	"github.com/haukened/zonedns/internal/dns/common/log"
	"github.com/haukened/zonedns/internal/dns/common/rrdata"
	"github.com/haukened/zonedns/internal/dns/common/utils"
	"github.com/haukened/zonedns/internal/dns/domain"
)

const (
	keyZoneRoot = "zone_root"
	keyTTL      = "ttl"
)

// LoadZoneDirectory walks dir in lexical order, loading every supported zone file and
// returning zone roots mapped to their records. Records keep file order, then sorted owner
// and type order, then the order of list values, so repeated loads produce identical stores.
// Every broken file is reported in the returned error, not just the first. An owner that
// carries a CNAME next to other data is loaded as written and reported through logger.
func LoadZoneDirectory(dir string, defaultTTL time.Duration, logger log.Logger) (map[string][]domain.ResourceRecord, error) {
	zones := make(map[string][]domain.ResourceRecord)
	var errs error

	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		zoneRoot, records, err := loadZoneFileWithRoot(path, defaultTTL)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("zone file %s: %w", path, err))
			return nil
		}
		if zoneRoot != "" {
			zones[zoneRoot] = append(zones[zoneRoot], records...)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if errs != nil {
		return nil, errs
	}

	roots := make([]string, 0, len(zones))
	for root := range zones {
		roots = append(roots, root)
	}
	sort.Strings(roots)
	for _, root := range roots {
		for _, owner := range cnameConflicts(zones[root]) {
			logger.Warn(map[string]any{
				"zone":  root,
				"owner": owner,
			}, "CNAME shares its owner with other records (RFC 1034 §3.6.2)")
		}
	}
	return zones, nil
}

// parserFor picks the koanf parser from the file extension; nil means the file is skipped.
func parserFor(path string) koanf.Parser {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Parser()
	case ".json":
		return json.Parser()
	case ".toml":
		return toml.Parser()
	default:
		return nil
	}
}

// loadZoneFileWithRoot loads and parses a single zone file, returning its zone root and records.
// Unsupported extensions return an empty root and no error.
func loadZoneFileWithRoot(path string, defaultTTL time.Duration) (string, []domain.ResourceRecord, error) {
	parser := parserFor(path)
	if parser == nil {
		return "", nil, nil
	}

	k := koanf.New(".")
	if err := k.Load(file.Provider(path), parser); err != nil {
		return "", nil, fmt.Errorf("failed to load: %w", err)
	}

	raw := k.Raw()
	rootVal, ok := raw[keyZoneRoot].(string)
	if !ok || strings.TrimSpace(rootVal) == "" {
		return "", nil, fmt.Errorf("missing %q", keyZoneRoot)
	}
	root := strings.ToLower(utils.Fqdn(rootVal))
	if err := utils.ValidateZoneRoot(root); err != nil {
		return "", nil, err
	}

	ttl, err := zoneTTL(raw, defaultTTL)
	if err != nil {
		return "", nil, err
	}

	owners := make([]string, 0, len(raw))
	for name := range raw {
		if name == keyZoneRoot || name == keyTTL {
			continue
		}
		owners = append(owners, name)
	}
	sort.Strings(owners)

	var records []domain.ResourceRecord
	for _, name := range owners {
		rawMap, ok := raw[name].(map[string]any)
		if !ok {
			return "", nil, fmt.Errorf("owner %q must map record types to values", name)
		}
		owner := strings.ToLower(utils.Qualify(name, root))
		if owner != root && !strings.HasSuffix(owner, "."+root) {
			return "", nil, fmt.Errorf("owner %q is outside zone %s", name, root)
		}
		recs, err := buildOwnerRecords(owner, root, rawMap, ttl)
		if err != nil {
			return "", nil, err
		}
		records = append(records, recs...)
	}
	return root, records, nil
}

// zoneTTL returns the file's `ttl` key in seconds, or defaultTTL when absent.
func zoneTTL(raw map[string]any, defaultTTL time.Duration) (uint32, error) {
	v, ok := raw[keyTTL]
	if !ok {
		return uint32(defaultTTL / time.Second), nil
	}
	var secs int64
	switch n := v.(type) {
	case int:
		secs = int64(n)
	case int64:
		secs = n
	case float64:
		if n != math.Trunc(n) {
			return 0, fmt.Errorf("%q must be a whole number of seconds, got %v", keyTTL, n)
		}
		secs = int64(n)
	default:
		return 0, fmt.Errorf("%q must be a number, got %T", keyTTL, v)
	}
	// RFC 2181 §8
	if secs < 0 || secs > math.MaxInt32 {
		return 0, fmt.Errorf("%q out of range: %d", keyTTL, secs)
	}
	return uint32(secs), nil
}

// buildOwnerRecords creates the records of one owner, visiting types in sorted order.
func buildOwnerRecords(owner, root string, types map[string]any, ttl uint32) ([]domain.ResourceRecord, error) {
	keys := make([]string, 0, len(types))
	for k := range types {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var records []domain.ResourceRecord
	for _, k := range keys {
		values := toStringValues(types[k])
		if len(values) == 0 {
			continue
		}
		recs, err := buildResourceRecord(owner, root, k, values, ttl)
		if err != nil {
			return nil, fmt.Errorf("%s %s: %w", owner, strings.ToUpper(k), err)
		}
		records = append(records, recs...)
	}
	return records, nil
}

// buildResourceRecord creates one record per value, in value order.
func buildResourceRecord(fqdn, root, rrType string, values []string, ttl uint32) ([]domain.ResourceRecord, error) {
	rType := domain.RRTypeFromString(strings.ToUpper(strings.TrimSpace(rrType)))
	if rType == 0 {
		return nil, fmt.Errorf("%w: %q", rrdata.ErrUnsupportedType, rrType)
	}
	records := make([]domain.ResourceRecord, 0, len(values))
	for _, s := range values {
		data, err := rrdata.Parse(rType, s, root)
		if err != nil {
			return nil, err
		}
		rr, err := domain.NewResourceRecord(fqdn, ttl, data)
		if err != nil {
			return nil, err
		}
		records = append(records, rr)
	}
	return records, nil
}

// toStringValues converts a raw koanf-parsed value (a scalar or a list of scalars) into
// non-empty strings. Numbers and booleans are formatted, since YAML and TOML decode
// unquoted values such as TXT "12345" as non-strings.
func toStringValues(val any) []string {
	switch v := val.(type) {
	case []any:
		out := make([]string, 0, len(v))
		for _, elem := range v {
			if s, ok := scalarString(elem); ok {
				out = append(out, s)
			}
		}
		if len(out) == 0 {
			return nil
		}
		return out
	default:
		if s, ok := scalarString(v); ok {
			return []string{s}
		}
		return nil
	}
}

func scalarString(v any) (string, bool) {
	var s string
	switch x := v.(type) {
	case string:
		s = x
	case int, int64, float64, bool:
		s = fmt.Sprint(x)
	default:
		return "", false
	}
	s = strings.TrimSpace(s)
	return s, s != ""
}

// cnameConflicts returns, in first-seen order, the owners that carry a CNAME together with
// other data or with more than one CNAME. Such zones still load: lookups are by exact type
// and aliases are never followed, so every record set stays answerable.
func cnameConflicts(records []domain.ResourceRecord) []string {
	types := make(map[string]map[domain.RRType]int)
	var order []string
	for _, rr := range records {
		if _, ok := types[rr.Name]; !ok {
			types[rr.Name] = make(map[domain.RRType]int)
			order = append(order, rr.Name)
		}
		types[rr.Name][rr.Type]++
	}
	var owners []string
	for _, name := range order {
		t := types[name]
		if n, ok := t[domain.RRTypeCNAME]; ok && (len(t) > 1 || n > 1) {
			owners = append(owners, name)
		}
	}
	return owners
}
