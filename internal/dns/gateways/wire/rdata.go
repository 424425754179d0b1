package wire

import (
	"encoding/binary"
	"fmt"

	"github.com/haukened/zonedns/internal/dns/domain"
)

// appendRData appends the type-specific RDATA of data to msg.
// Names inside NS, CNAME, MX and SOA payloads are compressed (RFC 3597 §4).
func (c *compressor) appendRData(msg []byte, data domain.RData) ([]byte, error) {
	var err error
	switch d := data.(type) {
	case domain.A:
		a4 := d.Addr.As4()
		msg = append(msg, a4[:]...)
	case domain.AAAA:
		a16 := d.Addr.As16()
		msg = append(msg, a16[:]...)
	case domain.NS:
		msg, err = c.appendName(msg, d.Host)
	case domain.CNAME:
		msg, err = c.appendName(msg, d.Target)
	case domain.MX:
		msg = binary.BigEndian.AppendUint16(msg, d.Preference)
		msg, err = c.appendName(msg, d.Exchange)
	case domain.TXT:
		for _, s := range d.Strings {
			msg = append(msg, byte(len(s)))
			msg = append(msg, s...)
		}
	case domain.SOA:
		if msg, err = c.appendName(msg, d.MName); err != nil {
			break
		}
		if msg, err = c.appendName(msg, d.RName); err != nil {
			break
		}
		for _, v := range [...]uint32{d.Serial, d.Refresh, d.Retry, d.Expire, d.Minimum} {
			msg = binary.BigEndian.AppendUint32(msg, v)
		}
	default:
		return msg, fmt.Errorf("%w: no encoder for %T", ErrInvalidRecord, data)
	}
	if err != nil {
		return msg, fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}
	return msg, nil
}

// appendRecord appends one resource record, back-filling RDLENGTH once the payload is written.
func (c *compressor) appendRecord(msg []byte, rr domain.ResourceRecord) ([]byte, error) {
	if err := rr.Validate(); err != nil {
		return msg, fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}
	var err error
	if msg, err = c.appendName(msg, rr.Name); err != nil {
		return msg, fmt.Errorf("%w: owner: %v", ErrInvalidRecord, err)
	}
	msg = binary.BigEndian.AppendUint16(msg, uint16(rr.Type))
	msg = binary.BigEndian.AppendUint16(msg, uint16(rr.Class))
	msg = binary.BigEndian.AppendUint32(msg, rr.TTL)

	lenAt := len(msg)
	msg = append(msg, 0, 0) // RDLENGTH placeholder
	if msg, err = c.appendRData(msg, rr.Data); err != nil {
		return msg, err
	}
	rdlen := len(msg) - lenAt - 2
	if rdlen > 0xFFFF {
		return msg, fmt.Errorf("%w: rdata of %d octets exceeds 65535", ErrInvalidRecord, rdlen)
	}
	binary.BigEndian.PutUint16(msg[lenAt:], uint16(rdlen))
	return msg, nil
}
