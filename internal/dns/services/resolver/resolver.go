package resolver

import (
	"context"
	"errors"
	"net"

	"github.com/haukened/zonedns/internal/dns/common/log"
	"github.com/haukened/zonedns/internal/dns/common/utils"
	"github.com/haukened/zonedns/internal/dns/domain"
)

// ErrQueryDropped is returned by HandleQuery when no response must be sent.
var ErrQueryDropped = errors.New("query dropped")

// Resolver answers queries from an immutable RecordStore.
type Resolver struct {
	store         RecordStore
	blocklist     Blocklist
	logger        log.Logger
	missPolicy    MissPolicy
	blockStrategy BlockStrategy
}

// ResolverOptions carries the Resolver's collaborators. Blocklist may be nil.
type ResolverOptions struct {
	Store         RecordStore
	Blocklist     Blocklist
	Logger        log.Logger
	MissPolicy    MissPolicy
	BlockStrategy BlockStrategy
}

func NewResolver(opts ResolverOptions) *Resolver {
	r := &Resolver{
		store:         opts.Store,
		blocklist:     opts.Blocklist,
		logger:        opts.Logger,
		missPolicy:    opts.MissPolicy,
		blockStrategy: opts.BlockStrategy,
	}
	if r.logger == nil {
		r.logger = log.NewNoopLogger()
	}
	if r.missPolicy == "" {
		r.missPolicy = MissEmpty
	}
	if r.blockStrategy == "" {
		r.blockStrategy = BlockRefused
	}
	return r
}

// Resolve builds the answer for q from the record store alone. It has no side effects.
//
// A matching record set yields one record per stored RDATA in stored order, owned by the
// question name. Misses follow the configured MissPolicy.
func (r *Resolver) Resolve(q domain.Query) domain.Answer {
	name := q.Question.Name

	if r.missPolicy == MissRFC {
		switch {
		case q.Header.Opcode != domain.OpcodeQuery:
			return domain.NewEmptyAnswer(q, domain.NOTIMP)
		case q.Question.Class != domain.RRClassIN:
			return domain.NewEmptyAnswer(q, domain.REFUSED)
		case !r.store.InZone(name):
			return domain.NewEmptyAnswer(q, domain.REFUSED)
		}
	}

	if q.Question.Class == domain.RRClassIN {
		if set, ok := r.store.Lookup(name, q.Question.Type); ok {
			a := domain.NewEmptyAnswer(q, domain.NOERROR)
			a.Records = set.Records(name)
			return a
		}
	}

	if r.missPolicy == MissRFC && !r.store.HasName(name) {
		return domain.NewEmptyAnswer(q, domain.NXDOMAIN)
	}
	return domain.NewEmptyAnswer(q, domain.NOERROR)
}

// HandleQuery applies the blocklist, then resolves. Denied queries are answered REFUSED or,
// under the drop strategy, rejected with ErrQueryDropped.
func (r *Resolver) HandleQuery(ctx context.Context, q domain.Query, clientAddr net.Addr) (domain.Answer, error) {
	if err := ctx.Err(); err != nil {
		return domain.Answer{}, err
	}

	if r.blocklist != nil {
		if dec := r.blocklist.Decide(q.Question.Name); dec.Blocked {
			fields := map[string]any{
				"name":   q.Question.Name,
				"rule":   dec.MatchedRule,
				"kind":   dec.Kind.String(),
				"source": dec.Source,
				"apex":   utils.GetApexDomain(dec.MatchedRule),
			}
			if clientAddr != nil {
				fields["client"] = clientAddr.String()
			}
			r.logger.Info(fields, "query blocked")
			if r.blockStrategy == BlockDrop {
				return domain.Answer{}, ErrQueryDropped
			}
			return domain.NewEmptyAnswer(q, domain.REFUSED), nil
		}
	}

	a := r.Resolve(q)
	r.logger.Debug(map[string]any{
		"id":      q.Header.ID,
		"name":    q.Question.Name,
		"type":    q.Question.Type.String(),
		"rcode":   a.RCode.String(),
		"answers": len(a.Records),
	}, "resolved query")
	return a, nil
}

var _ DNSResponder = (*Resolver)(nil)
