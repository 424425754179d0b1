package transport

import (
	"fmt"

	"github.com/haukened/zonedns/internal/dns/common/log"
	"github.com/haukened/zonedns/internal/dns/gateways/wire"
)

// NewTransport builds the listener named by transportType.
func NewTransport(transportType TransportType, cfg UDPConfig, codec wire.DNSCodec, logger log.Logger) (ServerTransport, error) {
	switch transportType {
	case TransportUDP:
		return NewUDPTransport(cfg, codec, logger), nil
	default:
		return nil, fmt.Errorf("unsupported transport type: %q", transportType)
	}
}
