package blocklist

// CacheStats reports lightweight cache metrics.
// All fields are best-effort snapshots and may be updated concurrently.
type CacheStats struct {
	Capacity  int    // configured capacity (0 for disabled cache)
	Size      int    // current number of entries
	Hits      uint64 // total cache hits since construction
	Misses    uint64 // total cache misses since construction
	Evictions uint64 // total evictions since construction
}

// StoreStats reports store metrics and metadata.
// Values are read from the store in a read-only transaction.
type StoreStats struct {
	Version     uint64 // snapshot version (0 if unknown)
	UpdatedUnix int64  // last updated unix time (0 if unknown)
	ExactKeys   uint64 // number of exact keys
	SuffixKeys  uint64 // number of suffix keys
}

// RepoStats combines cache and store metrics with the bloom-filter short-circuit count.
type RepoStats struct {
	Cache      CacheStats
	Store      StoreStats
	BloomSkips uint64 // lookups answered "allow" by the bloom filter alone
}

// Fields flattens the stats for structured logging.
func (s RepoStats) Fields() map[string]any {
	return map[string]any{
		"cache_size":      s.Cache.Size,
		"cache_hits":      s.Cache.Hits,
		"cache_misses":    s.Cache.Misses,
		"cache_evictions": s.Cache.Evictions,
		"exact_rules":     s.Store.ExactKeys,
		"suffix_rules":    s.Store.SuffixKeys,
		"version":         s.Store.Version,
		"bloom_skips":     s.BloomSkips,
	}
}
