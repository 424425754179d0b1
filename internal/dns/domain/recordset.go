package domain

import "fmt"

// RecordSet groups every payload sharing one owner name and type.
// Data order is the order the payloads were configured in and is preserved on the wire.
type RecordSet struct {
	Name string
	Type RRType
	TTL  uint32
	Data []RData
}

// Validate checks that every payload in the set matches the set's type and is itself valid.
func (s RecordSet) Validate() error {
	if !IsFQDN(s.Name) {
		return fmt.Errorf("record set name %q must be fully qualified", s.Name)
	}
	if len(s.Data) == 0 {
		return fmt.Errorf("record set %s %s is empty", s.Name, s.Type)
	}
	for i, d := range s.Data {
		if d == nil || d.Type() != s.Type {
			return fmt.Errorf("%w: record set %s %s entry %d has the wrong type", ErrInvalidRData, s.Name, s.Type, i)
		}
		if err := d.Validate(); err != nil {
			return fmt.Errorf("record set %s %s entry %d: %w", s.Name, s.Type, i, err)
		}
	}
	return nil
}

// Records expands the set into one ResourceRecord per payload, in stored order.
// owner is the name to write on each record, normally the question name as received.
func (s RecordSet) Records(owner string) []ResourceRecord {
	out := make([]ResourceRecord, 0, len(s.Data))
	for _, d := range s.Data {
		out = append(out, ResourceRecord{
			Name:  owner,
			Type:  s.Type,
			Class: RRClassIN,
			TTL:   s.TTL,
			Data:  d,
		})
	}
	return out
}

// Len returns the number of payloads in the set.
func (s RecordSet) Len() int { return len(s.Data) }
