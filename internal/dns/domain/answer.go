package domain

import "fmt"

// Answer is the structured response to one Query.
// The transaction id, opcode and RD bit are carried over from the request so the encoder can echo them.
type Answer struct {
	ID               uint16
	Opcode           Opcode
	RecursionDesired bool
	Question         Question
	RCode            RCode
	Records          []ResourceRecord
}

// NewAnswer constructs an Answer for q and validates its fields.
func NewAnswer(q Query, rcode RCode, records []ResourceRecord) (Answer, error) {
	a := Answer{
		ID:               q.Header.ID,
		Opcode:           q.Header.Opcode,
		RecursionDesired: q.Header.RecursionDesired,
		Question:         q.Question,
		RCode:            rcode,
		Records:          records,
	}
	if err := a.Validate(); err != nil {
		return Answer{}, err
	}
	return a, nil
}

// NewEmptyAnswer returns an answer with no records and the given response code.
func NewEmptyAnswer(q Query, rcode RCode) Answer {
	return Answer{
		ID:               q.Header.ID,
		Opcode:           q.Header.Opcode,
		RecursionDesired: q.Header.RecursionDesired,
		Question:         q.Question,
		RCode:            rcode,
	}
}

// Validate checks whether the Answer fields are structurally valid.
func (a Answer) Validate() error {
	if !a.RCode.IsValid() {
		return fmt.Errorf("invalid RCode: %d", a.RCode)
	}
	for i, rr := range a.Records {
		if err := rr.Validate(); err != nil {
			return fmt.Errorf("invalid answer record at index %d: %w", i, err)
		}
	}
	return nil
}

// IsError returns true if the answer carries a non-zero response code.
func (a Answer) IsError() bool {
	return a.RCode != NOERROR
}

// AnswerCount returns the number of answer records.
func (a Answer) AnswerCount() int {
	return len(a.Records)
}
