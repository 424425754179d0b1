// Package bloom backs the deny list's negative lookups with bits-and-blooms filters.
package bloom

import (
	bitsbloom "github.com/bits-and-blooms/bloom/v3"

	"github.com/haukened/zonedns/internal/dns/repos/blocklist"
)

// DefaultFPRate is used when a caller asks for a rate outside (0, 1).
const DefaultFPRate = 0.01

type factory struct{}

// NewFactory returns a BloomFactory whose filters are sized by bitsbloom.EstimateParameters.
func NewFactory() blocklist.BloomFactory { return factory{} }

// New sizes a filter for capacity keys. A zero capacity is treated as one key.
func (factory) New(capacity uint64, fpRate float64) blocklist.BloomFilter {
	if capacity == 0 {
		capacity = 1
	}
	if fpRate <= 0 || fpRate >= 1 {
		fpRate = DefaultFPRate
	}
	return filter{bf: bitsbloom.NewWithEstimates(uint(capacity), fpRate)}
}

// filter is filled once by the repository before it is published, then only read.
type filter struct {
	bf *bitsbloom.BloomFilter
}

func (f filter) Add(key []byte)               { f.bf.Add(key) }
func (f filter) MightContain(key []byte) bool { return f.bf.Test(key) }
