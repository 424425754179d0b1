package rrdata

import "github.com/haukened/zonedns/internal/dns/domain"

func parseNS(text, origin string) (domain.RData, error) {
	host, err := parseName("NS host", text, origin)
	if err != nil {
		return nil, err
	}
	return domain.NS{Host: host}, nil
}
