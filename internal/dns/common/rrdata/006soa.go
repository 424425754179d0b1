package rrdata

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/haukened/zonedns/internal/dns/domain"
)

// parseSOA parses "mname rname serial refresh retry expire minimum".
// rname may be written as a mailbox ("hostmaster@example.com"); the @ becomes the first label separator.
func parseSOA(text, origin string) (domain.RData, error) {
	parts, err := fields("SOA", "mname rname serial refresh retry expire minimum", text, 7)
	if err != nil {
		return nil, err
	}

	mname, err := parseName("SOA mname", parts[0], origin)
	if err != nil {
		return nil, err
	}

	rtext := parts[1]
	if i := strings.IndexByte(rtext, '@'); i > 0 {
		rtext = strings.ReplaceAll(rtext[:i], ".", `\.`) + "." + rtext[i+1:]
		if !strings.HasSuffix(rtext, ".") {
			rtext += "."
		}
	}
	rname, err := parseName("SOA rname", rtext, origin)
	if err != nil {
		return nil, err
	}

	var nums [5]uint32
	for i := range nums {
		val, err := strconv.ParseUint(parts[i+2], 10, 32)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid SOA field %d: %q", ErrInvalidValue, i+2, parts[i+2])
		}
		nums[i] = uint32(val)
	}

	return domain.SOA{
		MName:   mname,
		RName:   rname,
		Serial:  nums[0],
		Refresh: nums[1],
		Retry:   nums[2],
		Expire:  nums[3],
		Minimum: nums[4],
	}, nil
}
