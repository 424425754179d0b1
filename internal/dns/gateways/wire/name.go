package wire

import (
	"encoding/binary"
	"fmt"
	"strings"
)

const (
	maxLabelLen   = 63
	maxNameLen    = 255 // wire octets including the root label
	maxPointerOff = 0x3FFF
	pointerMask   = 0xC0
)

// packName converts a presentation name into uncompressed wire form.
// Backslash escapes (\. \\ \DDD) are honoured so labels may carry any octet.
func packName(name string) ([]byte, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: empty name", ErrMalformedName)
	}
	if name == "." {
		return []byte{0}, nil
	}
	wire := make([]byte, 0, len(name)+1)
	label := make([]byte, 0, maxLabelLen)
	flush := func() error {
		if len(label) == 0 {
			return fmt.Errorf("%w: empty label in %q", ErrMalformedName, name)
		}
		if len(label) > maxLabelLen {
			return fmt.Errorf("%w: label longer than %d octets in %q", ErrMalformedName, maxLabelLen, name)
		}
		wire = append(wire, byte(len(label)))
		wire = append(wire, label...)
		label = label[:0]
		return nil
	}

	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case c == '.':
			if err := flush(); err != nil {
				return nil, err
			}
		case c == '\\':
			if i+1 >= len(name) {
				return nil, fmt.Errorf("%w: dangling escape in %q", ErrMalformedName, name)
			}
			if isDigit(name[i+1]) {
				if i+3 >= len(name) || !isDigit(name[i+2]) || !isDigit(name[i+3]) {
					return nil, fmt.Errorf("%w: bad \\DDD escape in %q", ErrMalformedName, name)
				}
				v := int(name[i+1]-'0')*100 + int(name[i+2]-'0')*10 + int(name[i+3]-'0')
				if v > 255 {
					return nil, fmt.Errorf("%w: escape \\%s out of range in %q", ErrMalformedName, name[i+1:i+4], name)
				}
				label = append(label, byte(v))
				i += 3
			} else {
				label = append(label, name[i+1])
				i++
			}
		default:
			label = append(label, c)
		}
	}
	if len(label) > 0 {
		// relative names are treated as rooted
		if err := flush(); err != nil {
			return nil, err
		}
	}
	wire = append(wire, 0)
	if len(wire) > maxNameLen {
		return nil, fmt.Errorf("%w: %q is %d octets, max %d", ErrMalformedName, name, len(wire), maxNameLen)
	}
	return wire, nil
}

// compressor tracks where name suffixes were already written in the message so later
// names can point back at them. Keys are exact wire octets, so case is preserved.
type compressor struct {
	tbl map[string]int
}

func newCompressor() *compressor {
	return &compressor{tbl: make(map[string]int)}
}

// appendName appends name to msg, replacing the longest already-written suffix with a pointer.
func (c *compressor) appendName(msg []byte, name string) ([]byte, error) {
	wire, err := packName(name)
	if err != nil {
		return msg, err
	}
	for off := 0; wire[off] != 0; off += int(wire[off]) + 1 {
		key := string(wire[off:])
		if ptr, ok := c.tbl[key]; ok {
			msg = append(msg, wire[:off]...)
			return binary.BigEndian.AppendUint16(msg, uint16(pointerMask)<<8|uint16(ptr)), nil
		}
		if pos := len(msg) + off; pos <= maxPointerOff {
			c.tbl[key] = pos
		}
	}
	return append(msg, wire...), nil
}

// unpackName reads a possibly compressed name starting at off and returns it in
// presentation form together with the offset just past the name in the original stream.
//
// Every pointer must target an offset strictly before the start of the segment that
// contains it, so the walk always moves backwards and terminates.
func unpackName(msg []byte, off int) (string, int, error) {
	var sb strings.Builder
	next := -1
	segStart := off
	wireLen := 0

	for {
		if off >= len(msg) {
			return "", 0, fmt.Errorf("%w: name runs past end of message", ErrMalformedName)
		}
		c := int(msg[off])
		switch c & pointerMask {
		case 0x00:
			off++
			wireLen += c + 1
			if wireLen > maxNameLen {
				return "", 0, fmt.Errorf("%w: name longer than %d octets", ErrMalformedName, maxNameLen)
			}
			if c == 0 {
				if next < 0 {
					next = off
				}
				if sb.Len() == 0 {
					sb.WriteByte('.')
				}
				return sb.String(), next, nil
			}
			if off+c > len(msg) {
				return "", 0, fmt.Errorf("%w: label runs past end of message", ErrMalformedName)
			}
			escapeLabel(&sb, msg[off:off+c])
			sb.WriteByte('.')
			off += c
		case pointerMask:
			if off+1 >= len(msg) {
				return "", 0, fmt.Errorf("%w: truncated compression pointer", ErrMalformedName)
			}
			ptr := int(binary.BigEndian.Uint16(msg[off:]) & maxPointerOff)
			if next < 0 {
				next = off + 2
			}
			if ptr >= segStart {
				return "", 0, fmt.Errorf("%w: compression pointer at %d targets %d, not before %d", ErrMalformedName, off, ptr, segStart)
			}
			off = ptr
			segStart = ptr
		default:
			return "", 0, fmt.Errorf("%w: reserved label type 0x%02x at %d", ErrMalformedName, c&pointerMask, off)
		}
	}
}

// escapeLabel writes label octets in presentation form.
func escapeLabel(sb *strings.Builder, label []byte) {
	for _, b := range label {
		switch {
		case b == '.' || b == '\\':
			sb.WriteByte('\\')
			sb.WriteByte(b)
		case b < '!' || b > '~':
			fmt.Fprintf(sb, "\\%03d", b)
		default:
			sb.WriteByte(b)
		}
	}
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }
