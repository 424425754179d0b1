package domain

import (
	"fmt"
	"strings"
)

// Question represents the single question section entry of a DNS query.
// Name is kept exactly as received (case preserved) in presentation form with a trailing dot.
type Question struct {
	Name  string
	Type  RRType
	Class RRClass
}

// NewQuestion constructs a Question and validates its fields.
func NewQuestion(name string, rrtype RRType, class RRClass) (Question, error) {
	q := Question{
		Name:  name,
		Type:  rrtype,
		Class: class,
	}
	if err := q.Validate(); err != nil {
		return Question{}, err
	}
	return q, nil
}

// Validate checks whether the Question fields are structurally valid.
func (q Question) Validate() error {
	if q.Name == "" {
		return fmt.Errorf("question name must not be empty")
	}
	if !IsFQDN(q.Name) {
		return fmt.Errorf("question name %q must be fully qualified", q.Name)
	}
	return nil
}

// String renders the question the way dig prints it.
func (q Question) String() string {
	return fmt.Sprintf("%s %s %s", q.Name, q.Class, q.Type)
}

// Query is a decoded inbound DNS message: the request header and its first question.
type Query struct {
	Header   Header
	Question Question
}

// IsFQDN reports whether name is in fully-qualified presentation form (ends with an unescaped dot).
func IsFQDN(name string) bool {
	if !strings.HasSuffix(name, ".") {
		return false
	}
	// count the backslashes immediately before the final dot; an odd count escapes it
	n := 0
	for i := len(name) - 2; i >= 0 && name[i] == '\\'; i-- {
		n++
	}
	return n%2 == 0
}
