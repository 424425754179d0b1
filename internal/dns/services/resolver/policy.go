package resolver

import "fmt"

// MissPolicy selects the response code for queries that find no record set.
type MissPolicy string

const (
	// MissEmpty answers every miss with NOERROR and no records.
	MissEmpty MissPolicy = "empty"
	// MissRFC answers REFUSED outside served zones, NXDOMAIN for unknown names and NODATA for
	// known names without the requested type.
	MissRFC MissPolicy = "rfc"
)

// BlockStrategy selects how denied queries are answered.
type BlockStrategy string

const (
	// BlockRefused answers denied queries with REFUSED and no records.
	BlockRefused BlockStrategy = "refused"
	// BlockDrop sends nothing for denied queries.
	BlockDrop BlockStrategy = "drop"
)

// ParseMissPolicy maps a config value onto a MissPolicy. Empty selects MissEmpty.
func ParseMissPolicy(s string) (MissPolicy, error) {
	switch MissPolicy(s) {
	case "", MissEmpty:
		return MissEmpty, nil
	case MissRFC:
		return MissRFC, nil
	default:
		return "", fmt.Errorf("unknown miss policy %q", s)
	}
}

// ParseBlockStrategy maps a config value onto a BlockStrategy. Empty selects BlockRefused.
func ParseBlockStrategy(s string) (BlockStrategy, error) {
	switch BlockStrategy(s) {
	case "", BlockRefused:
		return BlockRefused, nil
	case BlockDrop:
		return BlockDrop, nil
	default:
		return "", fmt.Errorf("unknown block strategy %q", s)
	}
}
