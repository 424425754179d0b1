// Package wire provides encoding and decoding of DNS messages for UDP transport.
// It handles the DNS wire format as specified in RFC 1035.
package wire

import (
	"encoding/binary"
	"fmt"

	"github.com/haukened/zonedns/internal/dns/common/log"
	"github.com/haukened/zonedns/internal/dns/domain"
)

// udpCodec implements the DNSCodec interface for standard DNS over UDP messages.
type udpCodec struct {
	logger log.Logger
}

// NewUDPCodec creates and returns a new instance of udpCodec using the provided logger.
func NewUDPCodec(logger log.Logger) *udpCodec {
	return &udpCodec{
		logger: logger,
	}
}

// DecodeQuery parses the header and the first question of a query datagram.
// Additional questions and the answer, authority and additional sections are ignored.
func (c *udpCodec) DecodeQuery(data []byte) (domain.Query, error) {
	h, err := parseHeader(data)
	if err != nil {
		return domain.Query{}, err
	}
	if h.QDCount == 0 {
		return domain.Query{}, fmt.Errorf("%w: question count is zero", ErrMalformedQuestion)
	}

	name, off, err := unpackName(data, HeaderLen)
	if err != nil {
		return domain.Query{}, fmt.Errorf("question name: %w", err)
	}
	if off+4 > len(data) {
		return domain.Query{}, fmt.Errorf("%w: truncated before type and class", ErrMalformedQuestion)
	}
	q := domain.Query{
		Header: h,
		Question: domain.Question{
			Name:  name,
			Type:  domain.RRType(binary.BigEndian.Uint16(data[off : off+2])),
			Class: domain.RRClass(binary.BigEndian.Uint16(data[off+2 : off+4])),
		},
	}

	if h.QDCount > 1 {
		c.logger.Debug(map[string]any{
			"id":      h.ID,
			"qdcount": h.QDCount,
		}, "only the first question is processed")
	}
	return q, nil
}

// EncodeResponse serializes an Answer: QR=1, AA=1, TC=0, RA=0, with the id, opcode and
// RD bit echoed from the request and exactly one question.
func (c *udpCodec) EncodeResponse(answer domain.Answer) ([]byte, error) {
	if !answer.RCode.IsValid() {
		return nil, fmt.Errorf("%w: rcode %d does not fit the header", ErrInvalidRecord, answer.RCode)
	}
	answerCount := len(answer.Records)
	if answerCount > 0xFFFF {
		return nil, fmt.Errorf("%w: too many answer records: %d (max 65535)", ErrInvalidRecord, answerCount)
	}

	h := domain.Header{
		ID:               answer.ID,
		Response:         true,
		Opcode:           answer.Opcode,
		Authoritative:    true,
		RecursionDesired: answer.RecursionDesired,
		RCode:            answer.RCode,
		QDCount:          1,
		ANCount:          uint16(answerCount),
	}

	comp := newCompressor()
	msg := make([]byte, 0, 512)
	msg = appendHeader(msg, h)

	var err error
	if msg, err = c.appendQuestion(comp, msg, answer.Question); err != nil {
		return nil, err
	}

	for i, rr := range answer.Records {
		if msg, err = comp.appendRecord(msg, rr); err != nil {
			return nil, fmt.Errorf("answer %d (%s %s): %w", i, rr.Name, rr.Type, err)
		}
	}

	c.logger.Debug(map[string]any{
		"id":    answer.ID,
		"rcode": answer.RCode.String(),
		"an":    answerCount,
		"size":  len(msg),
	}, "encoded DNS response")

	return msg, nil
}

// EncodeQuery serializes a query message carrying the header flags of query.Header and one question.
func (c *udpCodec) EncodeQuery(query domain.Query) ([]byte, error) {
	h := query.Header
	h.QDCount, h.ANCount, h.NSCount, h.ARCount = 1, 0, 0, 0

	msg := make([]byte, 0, HeaderLen+len(query.Question.Name)+6)
	msg = appendHeader(msg, h)
	return c.appendQuestion(newCompressor(), msg, query.Question)
}

func (c *udpCodec) appendQuestion(comp *compressor, msg []byte, q domain.Question) ([]byte, error) {
	msg, err := comp.appendName(msg, q.Name)
	if err != nil {
		return nil, fmt.Errorf("question name: %w", err)
	}
	msg = binary.BigEndian.AppendUint16(msg, uint16(q.Type))
	msg = binary.BigEndian.AppendUint16(msg, uint16(q.Class))
	return msg, nil
}

var _ DNSCodec = &udpCodec{}
