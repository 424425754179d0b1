package domain

import (
	"fmt"
)

// ResourceRecord represents a single DNS resource record (RR) ready to be written to the answer section.
// Records are produced by the resolver from a RecordSet and never mutated afterwards.
type ResourceRecord struct {
	Name  string
	Type  RRType
	Class RRClass
	TTL   uint32
	Data  RData
}

// NewResourceRecord constructs an IN-class ResourceRecord whose type is taken from its payload.
func NewResourceRecord(name string, ttl uint32, data RData) (ResourceRecord, error) {
	if data == nil {
		return ResourceRecord{}, fmt.Errorf("%w: record %q has no data", ErrInvalidRData, name)
	}
	rr := ResourceRecord{
		Name:  name,
		Type:  data.Type(),
		Class: RRClassIN,
		TTL:   ttl,
		Data:  data,
	}
	if err := rr.Validate(); err != nil {
		return ResourceRecord{}, err
	}
	return rr, nil
}

// Validate checks whether the ResourceRecord fields are valid.
func (rr ResourceRecord) Validate() error {
	if rr.Name == "" {
		return fmt.Errorf("record name must not be empty")
	}
	if !IsFQDN(rr.Name) {
		return fmt.Errorf("record name %q must be fully qualified", rr.Name)
	}
	if rr.Data == nil {
		return fmt.Errorf("%w: record %q has no data", ErrInvalidRData, rr.Name)
	}
	if rr.Data.Type() != rr.Type {
		return fmt.Errorf("%w: record %q is %s but carries %s data", ErrInvalidRData, rr.Name, rr.Type, rr.Data.Type())
	}
	return rr.Data.Validate()
}

// String renders the record in zone-file presentation form.
func (rr ResourceRecord) String() string {
	data := ""
	if rr.Data != nil {
		data = rr.Data.String()
	}
	return fmt.Sprintf("%s\t%d\t%s\t%s\t%s", rr.Name, rr.TTL, rr.Class, rr.Type, data)
}
