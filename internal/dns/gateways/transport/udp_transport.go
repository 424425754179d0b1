package transport

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/haukened/zonedns/internal/dns/common/log"
	"github.com/haukened/zonedns/internal/dns/gateways/wire"
	"github.com/haukened/zonedns/internal/dns/services/resolver"
)

// UDPConfig sizes the listener and its worker pool.
type UDPConfig struct {
	Addr       string
	Workers    int
	QueueSize  int
	BufferSize int
}

// DefaultUDPConfig matches the process configuration defaults.
func DefaultUDPConfig(addr string) UDPConfig {
	return UDPConfig{Addr: addr, Workers: 64, QueueSize: 1024, BufferSize: 1024}
}

type packet struct {
	data []byte
	addr *net.UDPAddr
}

// UDPTransport implements ServerTransport for standard DNS over UDP (RFC 1035).
// One reader fills a bounded queue; a fixed pool of workers runs the pipeline. Datagrams
// arriving while the queue is full are dropped.
type UDPTransport struct {
	cfg    UDPConfig
	codec  wire.DNSCodec
	logger log.Logger

	mu         sync.Mutex
	conn       *net.UDPConn
	running    bool
	stopping   atomic.Bool
	queue      chan packet
	readerDone chan struct{}
	workers    sync.WaitGroup
	cancelWait context.CancelFunc
}

// NewUDPTransport creates a new UDP transport instance. Non-positive sizes fall back to defaults.
func NewUDPTransport(cfg UDPConfig, codec wire.DNSCodec, logger log.Logger) *UDPTransport {
	def := DefaultUDPConfig(cfg.Addr)
	if cfg.Workers <= 0 {
		cfg.Workers = def.Workers
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = def.QueueSize
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = def.BufferSize
	}
	return &UDPTransport{cfg: cfg, codec: codec, logger: logger}
}

// Start binds the UDP socket and launches the reader and the worker pool.
// Canceling ctx has the same effect as calling Stop.
func (t *UDPTransport) Start(ctx context.Context, responder resolver.DNSResponder) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.running {
		return fmt.Errorf("UDP transport already running")
	}

	udpAddr, err := net.ResolveUDPAddr("udp", t.cfg.Addr)
	if err != nil {
		return fmt.Errorf("failed to resolve UDP address %s: %w", t.cfg.Addr, err)
	}
	conn, err := net.ListenUDP("udp", udpAddr)
	if err != nil {
		return fmt.Errorf("failed to bind UDP socket on %s: %w", t.cfg.Addr, err)
	}

	t.conn = conn
	t.running = true
	t.stopping.Store(false)
	t.queue = make(chan packet, t.cfg.QueueSize)
	t.readerDone = make(chan struct{})

	pipeline := NewPipeline(t.codec, responder, t.logger)
	// queued work still answers after shutdown begins
	workCtx := context.WithoutCancel(ctx)
	for i := 0; i < t.cfg.Workers; i++ {
		t.workers.Add(1)
		go t.worker(workCtx, pipeline)
	}
	go t.readLoop(conn)

	waitCtx, cancel := context.WithCancel(ctx)
	t.cancelWait = cancel
	go func() {
		<-waitCtx.Done()
		if ctx.Err() != nil {
			t.logger.Debug(nil, "UDP transport stopping due to context cancellation")
			_ = t.Stop()
		}
	}()

	t.logger.Info(map[string]any{
		"transport": "udp",
		"address":   conn.LocalAddr().String(),
		"workers":   t.cfg.Workers,
		"queue":     t.cfg.QueueSize,
	}, "DNS transport started")
	return nil
}

// Stop stops reading, waits for queued and in-flight datagrams to be answered, then closes
// the socket. It is idempotent and safe to call concurrently.
func (t *UDPTransport) Stop() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.running {
		return nil
	}
	t.running = false
	t.cancelWait()

	t.stopping.Store(true)
	// unblocks the pending read
	_ = t.conn.SetReadDeadline(time.Now())
	<-t.readerDone
	t.workers.Wait()

	closeErr := t.conn.Close()
	if closeErr != nil {
		t.logger.Warn(map[string]any{
			"error": closeErr.Error(),
		}, "Error closing UDP connection")
	}

	t.logger.Info(map[string]any{
		"transport": "udp",
		"address":   t.conn.LocalAddr().String(),
	}, "DNS transport stopped")
	return closeErr
}

// Address returns the bound address while running, otherwise the configured one.
func (t *UDPTransport) Address() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.running && t.conn != nil {
		return t.conn.LocalAddr().String()
	}
	return t.cfg.Addr
}

// readLoop is the only sender on the queue and closes it on exit.
func (t *UDPTransport) readLoop(conn *net.UDPConn) {
	defer close(t.readerDone)
	defer close(t.queue)

	buffer := make([]byte, t.cfg.BufferSize)
	for {
		n, clientAddr, err := conn.ReadFromUDP(buffer)
		if err != nil {
			if t.stopping.Load() || errors.Is(err, net.ErrClosed) {
				return
			}
			t.logger.Warn(map[string]any{
				"error": err.Error(),
			}, "Failed to read UDP packet")
			continue
		}

		data := make([]byte, n)
		copy(data, buffer[:n])
		select {
		case t.queue <- packet{data: data, addr: clientAddr}:
		default:
			t.logger.Warn(map[string]any{
				"client": clientAddr.String(),
				"size":   n,
			}, "queue full, dropping datagram")
		}
	}
}

func (t *UDPTransport) worker(ctx context.Context, pipeline *Pipeline) {
	defer t.workers.Done()
	for p := range t.queue {
		t.serve(ctx, pipeline, p)
	}
}

// serve runs one datagram through the pipeline and writes the response, if any.
func (t *UDPTransport) serve(ctx context.Context, pipeline *Pipeline, p packet) {
	resp, err := pipeline.Process(ctx, p.data, p.addr)
	if err != nil {
		t.logDropped(p, err)
		return
	}
	if _, err := t.conn.WriteToUDP(resp, p.addr); err != nil {
		t.logger.Error(map[string]any{
			"client": p.addr.String(),
			"error":  err.Error(),
		}, "Failed to send DNS response")
	}
}

func (t *UDPTransport) logDropped(p packet, err error) {
	fields := map[string]any{
		"client": p.addr.String(),
		"size":   len(p.data),
		"error":  err.Error(),
	}
	switch {
	case errors.Is(err, wire.ErrMalformedHeader),
		errors.Is(err, wire.ErrMalformedQuestion),
		errors.Is(err, wire.ErrMalformedName),
		errors.Is(err, ErrNotQuery):
		t.logger.Warn(fields, "dropped malformed datagram")
	case errors.Is(err, resolver.ErrQueryDropped):
		t.logger.Debug(fields, "dropped blocked query")
	default:
		t.logger.Error(fields, "failed to process datagram")
	}
}

var _ ServerTransport = (*UDPTransport)(nil)
