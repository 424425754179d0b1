package main

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/miekg/dns"
	"github.com/stretchr/testify/require"
)

func benchZoneDir(b *testing.B, zones int) string {
	dir := b.TempDir()
	for i := 0; i < zones; i++ {
		writeFile(b, dir, fmt.Sprintf("zone%d.yaml", i), fmt.Sprintf(`zone_root: zone%d.bench
api:
  A: "10.0.%d.1"
web:
  A:
    - "10.0.%d.2"
    - "10.0.%d.3"
`, i, i, i, i))
	}
	return dir
}

// BenchmarkBuildApplication measures the time to construct the full application
func BenchmarkBuildApplication(b *testing.B) {
	silenceLogs(b)
	cfg := testConfig(b, benchZoneDir(b, 10))

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		app, err := buildApplication(cfg)
		require.NoError(b, err)
		_ = app
	}
}

// BenchmarkBuildApplication_WithBlocklist includes parsing and indexing a deny list.
func BenchmarkBuildApplication_WithBlocklist(b *testing.B) {
	silenceLogs(b)
	blDir := b.TempDir()
	var list []byte
	for i := 0; i < 5000; i++ {
		list = fmt.Appendf(list, "ads%d.bench.example\n", i)
	}
	writeFile(b, blDir, "big.txt", string(list))

	cfg := testConfig(b, benchZoneDir(b, 2))
	cfg.Blocklist.Directory = blDir
	cfg.Blocklist.DB = filepath.Join(b.TempDir(), "bl.db")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		app, err := buildApplication(cfg)
		require.NoError(b, err)
		require.NoError(b, closeAll(app.closers))
	}
}

// BenchmarkApplication_Query measures round trips against a running server.
func BenchmarkApplication_Query(b *testing.B) {
	silenceLogs(b)
	app, err := buildApplication(testConfig(b, benchZoneDir(b, 1)))
	require.NoError(b, err)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(b, app.transport.Start(ctx, app.resolver))
	defer func() {
		cancel()
		_ = app.transport.Stop()
	}()
	addr := app.transport.Address()

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		c := &dns.Client{Net: "udp"}
		m := new(dns.Msg)
		m.SetQuestion("web.zone0.bench.", dns.TypeA)
		for pb.Next() {
			if _, _, err := c.Exchange(m, addr); err != nil {
				b.Error(err)
				return
			}
		}
	})
}
