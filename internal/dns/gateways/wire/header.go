package wire

import (
	"encoding/binary"
	"fmt"

	"github.com/haukened/zonedns/internal/dns/domain"
)

// HeaderLen is the fixed size of the DNS message header.
const HeaderLen = 12

// flag word bit layout (RFC 1035 §4.1.1)
const (
	flagQR     = 1 << 15
	flagAA     = 1 << 10
	flagTC     = 1 << 9
	flagRD     = 1 << 8
	flagRA     = 1 << 7
	opcodeShft = 11
	opcodeMask = 0xF
	zShift     = 4
	zMask      = 0x7
	rcodeMask  = 0xF
)

// packFlags builds the 16-bit flag word from the header fields.
func packFlags(h domain.Header) uint16 {
	var f uint16
	if h.Response {
		f |= flagQR
	}
	f |= (uint16(h.Opcode) & opcodeMask) << opcodeShft
	if h.Authoritative {
		f |= flagAA
	}
	if h.Truncated {
		f |= flagTC
	}
	if h.RecursionDesired {
		f |= flagRD
	}
	if h.RecursionAvailable {
		f |= flagRA
	}
	f |= (uint16(h.Z) & zMask) << zShift
	f |= uint16(h.RCode) & rcodeMask
	return f
}

// unpackFlags splits a flag word into the header fields it carries.
func unpackFlags(f uint16, h *domain.Header) {
	h.Response = f&flagQR != 0
	h.Opcode = domain.Opcode((f >> opcodeShft) & opcodeMask)
	h.Authoritative = f&flagAA != 0
	h.Truncated = f&flagTC != 0
	h.RecursionDesired = f&flagRD != 0
	h.RecursionAvailable = f&flagRA != 0
	h.Z = uint8((f >> zShift) & zMask)
	h.RCode = domain.RCode(f & rcodeMask)
}

// parseHeader reads the fixed 12-octet header at the start of msg.
func parseHeader(msg []byte) (domain.Header, error) {
	if len(msg) < HeaderLen {
		return domain.Header{}, fmt.Errorf("%w: need %d octets, got %d", ErrMalformedHeader, HeaderLen, len(msg))
	}
	h := domain.Header{
		ID:      binary.BigEndian.Uint16(msg[0:2]),
		QDCount: binary.BigEndian.Uint16(msg[4:6]),
		ANCount: binary.BigEndian.Uint16(msg[6:8]),
		NSCount: binary.BigEndian.Uint16(msg[8:10]),
		ARCount: binary.BigEndian.Uint16(msg[10:12]),
	}
	unpackFlags(binary.BigEndian.Uint16(msg[2:4]), &h)
	return h, nil
}

// appendHeader appends the 12-octet wire form of h to b.
func appendHeader(b []byte, h domain.Header) []byte {
	b = binary.BigEndian.AppendUint16(b, h.ID)
	b = binary.BigEndian.AppendUint16(b, packFlags(h))
	b = binary.BigEndian.AppendUint16(b, h.QDCount)
	b = binary.BigEndian.AppendUint16(b, h.ANCount)
	b = binary.BigEndian.AppendUint16(b, h.NSCount)
	b = binary.BigEndian.AppendUint16(b, h.ARCount)
	return b
}
