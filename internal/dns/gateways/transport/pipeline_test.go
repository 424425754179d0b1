package transport

import (
	"context"
	"errors"
	"net"
	"net/netip"
	"testing"

	"github.com/miekg/dns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/haukened/zonedns/internal/dns/common/log"
	"github.com/haukened/zonedns/internal/dns/domain"
	"github.com/haukened/zonedns/internal/dns/gateways/wire"
	"github.com/haukened/zonedns/internal/dns/services/resolver"
)

func packQuery(t testing.TB, name string, qtype uint16) []byte {
	m := new(dns.Msg)
	m.SetQuestion(name, qtype)
	m.Id = 0xBEEF
	b, err := m.Pack()
	require.NoError(t, err)
	return b
}

func newTestPipeline(responder resolver.DNSResponder, logger log.Logger) *Pipeline {
	return NewPipeline(wire.NewUDPCodec(log.NewNoopLogger()), responder, logger)
}

func TestPipeline_Process(t *testing.T) {
	p := newTestPipeline(staticResponder(), log.NewNoopLogger())
	client := &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 40000}

	out, err := p.Process(context.Background(), packQuery(t, "example.com.", dns.TypeA), client)
	require.NoError(t, err)

	resp := new(dns.Msg)
	require.NoError(t, resp.Unpack(out))
	assert.Equal(t, uint16(0xBEEF), resp.Id)
	assert.True(t, resp.Authoritative)
	assert.Equal(t, dns.RcodeSuccess, resp.Rcode)
	require.Len(t, resp.Question, 1)
	assert.Equal(t, "example.com.", resp.Question[0].Name)
	require.Len(t, resp.Answer, 1)
	assert.Equal(t, "192.168.1.101", resp.Answer[0].(*dns.A).A.String())
}

func TestPipeline_Process_Errors(t *testing.T) {
	response := new(dns.Msg)
	response.SetQuestion("example.com.", dns.TypeA)
	response.Response = true
	responseBytes, err := response.Pack()
	require.NoError(t, err)

	tests := []struct {
		name      string
		datagram  []byte
		responder resolver.DNSResponder
		wantErr   error
	}{
		{
			name:      "short header",
			datagram:  []byte{0x12, 0x34},
			responder: staticResponder(),
			wantErr:   wire.ErrMalformedHeader,
		},
		{
			name:      "response bit set",
			datagram:  responseBytes,
			responder: staticResponder(),
			wantErr:   ErrNotQuery,
		},
		{
			name:     "dropped by responder",
			datagram: packQuery(t, "ads.example.com.", dns.TypeA),
			responder: funcResponder(func(context.Context, domain.Query, net.Addr) (domain.Answer, error) {
				return domain.Answer{}, resolver.ErrQueryDropped
			}),
			wantErr: resolver.ErrQueryDropped,
		},
		{
			name:     "panic in responder",
			datagram: packQuery(t, "example.com.", dns.TypeA),
			responder: funcResponder(func(context.Context, domain.Query, net.Addr) (domain.Answer, error) {
				panic("resolver exploded")
			}),
			wantErr: ErrInternalFault,
		},
		{
			name:     "record violating constraints",
			datagram: packQuery(t, "example.com.", dns.TypeA),
			responder: funcResponder(func(_ context.Context, q domain.Query, _ net.Addr) (domain.Answer, error) {
				a := domain.NewEmptyAnswer(q, domain.NOERROR)
				a.Records = []domain.ResourceRecord{{
					Name: "example.com.", Type: domain.RRTypeA, Class: domain.RRClassIN,
					Data: domain.A{Addr: netip.MustParseAddr("2001:db8::1")},
				}}
				return a, nil
			}),
			wantErr: ErrInternalFault,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestPipeline(tt.responder, log.NewNoopLogger())
			out, err := p.Process(context.Background(), tt.datagram, nil)
			assert.Nil(t, out)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v, want %v", err, tt.wantErr)
		})
	}
}

func TestPipeline_Process_EncodeErrorKeepsCause(t *testing.T) {
	codec := &MockDNSCodec{}
	q := domain.Query{Question: domain.Question{Name: "example.com.", Type: domain.RRTypeA, Class: domain.RRClassIN}}
	codec.On("DecodeQuery", []byte("q")).Return(q, nil)
	codec.On("EncodeResponse", mock.Anything).Return(nil, wire.ErrInvalidRecord)

	p := NewPipeline(codec, staticResponder(), log.NewNoopLogger())
	_, err := p.Process(context.Background(), []byte("q"), nil)
	assert.ErrorIs(t, err, ErrInternalFault)
	assert.ErrorIs(t, err, wire.ErrInvalidRecord)
	codec.AssertExpectations(t)
}

func TestPipeline_Process_PassesClientAndContext(t *testing.T) {
	type ctxKey struct{}
	ctx := context.WithValue(context.Background(), ctxKey{}, "v")
	client := &net.UDPAddr{IP: net.IPv4(10, 0, 0, 1), Port: 1234}

	responder := &MockDNSResponder{}
	responder.On("HandleQuery", mock.MatchedBy(func(c context.Context) bool { return c.Value(ctxKey{}) == "v" }),
		mock.AnythingOfType("domain.Query"), client).
		Return(domain.Answer{Question: domain.Question{Name: "example.com.", Type: domain.RRTypeA, Class: domain.RRClassIN}}, nil)

	p := newTestPipeline(responder, log.NewNoopLogger())
	_, err := p.Process(ctx, packQuery(t, "example.com.", dns.TypeA), client)
	require.NoError(t, err)
	responder.AssertExpectations(t)
}

func TestPipeline_Process_WarnsOnLargeResponse(t *testing.T) {
	logger := &recordingLogger{}
	big := funcResponder(func(_ context.Context, q domain.Query, _ net.Addr) (domain.Answer, error) {
		a := domain.NewEmptyAnswer(q, domain.NOERROR)
		for i := 0; i < 4; i++ {
			a.Records = append(a.Records, domain.ResourceRecord{
				Name: q.Question.Name, Type: domain.RRTypeTXT, Class: domain.RRClassIN, TTL: 60,
				Data: domain.TXT{Strings: []string{string(make([]byte, 200))}},
			})
		}
		return a, nil
	})
	p := newTestPipeline(big, logger)

	out, err := p.Process(context.Background(), packQuery(t, "example.com.", dns.TypeTXT), nil)
	require.NoError(t, err)
	assert.Greater(t, len(out), maxUDPResponse)
	assert.True(t, logger.has("warn", "exceeds 512"))
}
