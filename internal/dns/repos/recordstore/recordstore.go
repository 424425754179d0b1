// Package recordstore holds the authoritative record sets served by the resolver.
// A Store is assembled once by a Builder and is read-only afterwards, so lookups
// from any number of goroutines need no locking.
package recordstore

import (
	"fmt"
	"slices"
	"strings"

	"github.com/haukened/zonedns/internal/dns/domain"
)

type setKey struct {
	name   string
	rrType domain.RRType
}

// Store is an immutable mapping from (owner name, type) to a record set.
type Store struct {
	sets  map[setKey]domain.RecordSet
	names map[string]struct{}
	zones []string
	count int
}

// Lookup returns the record set stored for the exact owner name and type.
// Names are compared byte for byte, including case and the trailing dot.
// A miss is a normal outcome, reported by ok=false.
func (s *Store) Lookup(name string, rrType domain.RRType) (domain.RecordSet, bool) {
	set, ok := s.sets[setKey{name: name, rrType: rrType}]
	if !ok {
		return domain.RecordSet{}, false
	}
	set.Data = slices.Clone(set.Data)
	return set, true
}

// HasName reports whether any record set is stored for the exact owner name.
func (s *Store) HasName(name string) bool {
	_, ok := s.names[name]
	return ok
}

// InZone reports whether name falls at or below one of the zone roots (case-insensitive).
func (s *Store) InZone(name string) bool {
	lower := strings.ToLower(name)
	for _, root := range s.zones {
		if lower == root || strings.HasSuffix(lower, "."+root) {
			return true
		}
	}
	return false
}

// Zones returns the zone roots in sorted order.
func (s *Store) Zones() []string {
	return slices.Clone(s.zones)
}

// Count returns the total number of records across all sets.
func (s *Store) Count() int {
	return s.count
}

// Builder accumulates zones and produces a Store. It is not safe for concurrent use.
type Builder struct {
	sets  map[setKey]*domain.RecordSet
	names map[string]struct{}
	zones map[string]struct{}
	count int
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{
		sets:  make(map[setKey]*domain.RecordSet),
		names: make(map[string]struct{}),
		zones: make(map[string]struct{}),
	}
}

// PutZone registers a zone root and appends its records to the matching record sets.
// Record order is kept; the first record of a set fixes the set's TTL.
func (b *Builder) PutZone(zoneRoot string, records []domain.ResourceRecord) error {
	if !domain.IsFQDN(zoneRoot) {
		return fmt.Errorf("zone root %q must be fully qualified", zoneRoot)
	}
	b.zones[strings.ToLower(zoneRoot)] = struct{}{}
	for _, rr := range records {
		if err := b.Add(rr); err != nil {
			return fmt.Errorf("zone %s: %w", zoneRoot, err)
		}
	}
	return nil
}

// Add appends a single record to its record set.
func (b *Builder) Add(rr domain.ResourceRecord) error {
	if err := rr.Validate(); err != nil {
		return err
	}
	if rr.Class != domain.RRClassIN {
		return fmt.Errorf("record %s %s: only class IN is served, got %s", rr.Name, rr.Type, rr.Class)
	}
	if !rr.Type.IsServable() {
		return fmt.Errorf("record %s: type %s cannot be served", rr.Name, rr.Type)
	}
	k := setKey{name: rr.Name, rrType: rr.Type}
	set, ok := b.sets[k]
	if !ok {
		set = &domain.RecordSet{Name: rr.Name, Type: rr.Type, TTL: rr.TTL}
		b.sets[k] = set
	}
	set.Data = append(set.Data, rr.Data)
	b.names[rr.Name] = struct{}{}
	b.count++
	return nil
}

// Build freezes the accumulated data into a Store. The Builder must not be used afterwards.
func (b *Builder) Build() *Store {
	sets := make(map[setKey]domain.RecordSet, len(b.sets))
	for k, set := range b.sets {
		sets[k] = domain.RecordSet{
			Name: set.Name,
			Type: set.Type,
			TTL:  set.TTL,
			Data: slices.Clip(set.Data),
		}
	}
	zones := make([]string, 0, len(b.zones))
	for z := range b.zones {
		zones = append(zones, z)
	}
	slices.Sort(zones)

	return &Store{
		sets:  sets,
		names: b.names,
		zones: zones,
		count: b.count,
	}
}

// FromZones builds a Store from zone root to records, in sorted zone order.
func FromZones(zones map[string][]domain.ResourceRecord) (*Store, error) {
	roots := make([]string, 0, len(zones))
	for root := range zones {
		roots = append(roots, root)
	}
	slices.Sort(roots)

	b := NewBuilder()
	for _, root := range roots {
		if err := b.PutZone(root, zones[root]); err != nil {
			return nil, err
		}
	}
	return b.Build(), nil
}
