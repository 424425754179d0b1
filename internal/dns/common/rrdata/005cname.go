package rrdata

import "github.com/haukened/zonedns/internal/dns/domain"

func parseCNAME(text, origin string) (domain.RData, error) {
	target, err := parseName("CNAME target", text, origin)
	if err != nil {
		return nil, err
	}
	return domain.CNAME{Target: target}, nil
}
