package transport

import (
	"context"
	"fmt"
	"net"

	"github.com/haukened/zonedns/internal/dns/common/log"
	"github.com/haukened/zonedns/internal/dns/gateways/wire"
	"github.com/haukened/zonedns/internal/dns/services/resolver"
)

// maxUDPResponse is the classic DNS/UDP payload limit (RFC 1035 §4.2.1).
const maxUDPResponse = 512

// Pipeline turns one inbound datagram into the bytes to send back.
type Pipeline struct {
	codec     wire.DNSCodec
	responder resolver.DNSResponder
	logger    log.Logger
}

func NewPipeline(codec wire.DNSCodec, responder resolver.DNSResponder, logger log.Logger) *Pipeline {
	return &Pipeline{codec: codec, responder: responder, logger: logger}
}

// Process decodes datagram, resolves it and encodes the answer. A nil result with a non-nil
// error means nothing is sent. Panics are recovered and reported as ErrInternalFault.
func (p *Pipeline) Process(ctx context.Context, datagram []byte, client net.Addr) (resp []byte, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			resp = nil
			err = fmt.Errorf("%w: panic: %v", ErrInternalFault, rec)
		}
	}()

	query, err := p.codec.DecodeQuery(datagram)
	if err != nil {
		return nil, err
	}
	if query.Header.Response {
		return nil, fmt.Errorf("%w: id %d", ErrNotQuery, query.Header.ID)
	}

	answer, err := p.responder.HandleQuery(ctx, query, client)
	if err != nil {
		return nil, err
	}

	out, err := p.codec.EncodeResponse(answer)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInternalFault, err)
	}
	if len(out) > maxUDPResponse {
		p.logger.Warn(map[string]any{
			"id":      answer.ID,
			"name":    answer.Question.Name,
			"size":    len(out),
			"answers": len(answer.Records),
		}, "response exceeds 512 octets")
	}
	return out, nil
}
