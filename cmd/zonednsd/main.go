package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"go.uber.org/multierr"

	"github.com/haukened/zonedns/internal/dns/common/clock"
	"github.com/haukened/zonedns/internal/dns/common/log"
	"github.com/haukened/zonedns/internal/dns/config"
	"github.com/haukened/zonedns/internal/dns/gateways/transport"
	"github.com/haukened/zonedns/internal/dns/gateways/wire"
	"github.com/haukened/zonedns/internal/dns/repos/blocklist"
	"github.com/haukened/zonedns/internal/dns/repos/blocklist/bloom"
	"github.com/haukened/zonedns/internal/dns/repos/blocklist/bolt"
	"github.com/haukened/zonedns/internal/dns/repos/blocklist/lru"
	"github.com/haukened/zonedns/internal/dns/repos/blocklist/parsers"
	"github.com/haukened/zonedns/internal/dns/repos/recordstore"
	"github.com/haukened/zonedns/internal/dns/repos/zone"
	"github.com/haukened/zonedns/internal/dns/services/resolver"
)

const (
	// Version information
	version = "0.1.0-dev"
	appName = "zonednsd"
)

// Application holds all the components of the DNS server
type Application struct {
	config    *config.AppConfig
	transport transport.ServerTransport
	resolver  *resolver.Resolver
	store     *recordstore.Store
	// closers run after the transport has stopped
	closers []io.Closer
	console io.Reader
}

func main() {
	// Load configuration from environment
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(1)
	}

	// Configure global logging
	if err := log.Configure(cfg.Env, cfg.Log.Level); err != nil {
		fmt.Fprintf(os.Stderr, "Logging configuration error: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	log.Info(map[string]any{
		"app":         appName,
		"version":     version,
		"env":         cfg.Env,
		"log_level":   cfg.Log.Level,
		"address":     cfg.Server.Address,
		"transport":   cfg.Server.Transport,
		"workers":     cfg.Server.Workers,
		"zone_dir":    cfg.Resolver.ZoneDirectory,
		"miss_policy": cfg.Resolver.MissPolicy,
		"blocklist":   cfg.Blocklist.Directory != "",
	}, "Starting zonedns server")

	app, err := buildApplication(cfg)
	if err != nil {
		log.Fatal(map[string]any{"error": err}, "Failed to build application")
	}

	// Shutdown is driven by cancelling the root context, never by signalling ourselves.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx); err != nil {
		log.Error(map[string]any{"error": err}, "Server stopped with errors")
		log.Sync()
		os.Exit(1)
	}

	log.Info(nil, "zonedns server stopped gracefully")
}

// buildApplication constructs all components and wires them together
func buildApplication(cfg *config.AppConfig) (app *Application, err error) {
	clk := &clock.RealClock{}
	logger := log.GetLogger()

	codec := wire.NewUDPCodec(log.Named("wire"))

	store, err := buildRecordStore(cfg.Resolver, logger)
	if err != nil {
		return nil, err
	}

	bl, closer, err := buildBlocklist(cfg.Blocklist, logger, clk)
	if err != nil {
		return nil, fmt.Errorf("failed to build blocklist: %w", err)
	}
	var closers []io.Closer
	if closer != nil {
		closers = append(closers, closer)
	}
	defer func() {
		if err != nil {
			err = multierr.Append(err, closeAll(closers))
		}
	}()

	missPolicy, err := resolver.ParseMissPolicy(cfg.Resolver.MissPolicy)
	if err != nil {
		return nil, err
	}
	strategy, err := resolver.ParseBlockStrategy(cfg.Blocklist.Strategy)
	if err != nil {
		return nil, err
	}

	resolverService := resolver.NewResolver(resolver.ResolverOptions{
		Store:         store,
		Blocklist:     bl,
		Logger:        log.Named("resolver"),
		MissPolicy:    missPolicy,
		BlockStrategy: strategy,
	})

	tr, err := transport.NewTransport(transport.TransportType(cfg.Server.Transport), transport.UDPConfig{
		Addr:       cfg.Server.Address,
		Workers:    cfg.Server.Workers,
		QueueSize:  cfg.Server.QueueSize,
		BufferSize: cfg.Server.BufferSize,
	}, codec, log.Named("transport"))
	if err != nil {
		return nil, fmt.Errorf("failed to build transport: %w", err)
	}

	app = &Application{
		config:    cfg,
		transport: tr,
		resolver:  resolverService,
		store:     store,
		closers:   closers,
	}
	if cfg.Server.Console {
		app.console = os.Stdin
	}
	return app, nil
}

// buildRecordStore loads the zone directory into an immutable record store.
func buildRecordStore(cfg config.ResolverConfig, logger log.Logger) (*recordstore.Store, error) {
	zones, err := zone.LoadZoneDirectory(cfg.ZoneDirectory, time.Duration(cfg.DefaultTTL)*time.Second, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to load zone directory: %w", err)
	}
	store, err := recordstore.FromZones(zones)
	if err != nil {
		return nil, fmt.Errorf("failed to build record store: %w", err)
	}
	logger.Info(map[string]any{
		"zone_dir": cfg.ZoneDirectory,
		"zones":    store.Zones(),
		"records":  store.Count(),
	}, "Zones loaded")
	return store, nil
}

// buildBlocklist returns a no-op blocklist when no directory is configured. Otherwise the
// rules are parsed, indexed into a freshly rebuilt Bolt database and fronted by a bloom
// filter and a decision cache. The returned closer releases the database.
func buildBlocklist(cfg config.BlocklistConfig, logger log.Logger, clk clock.Clock) (resolver.Blocklist, io.Closer, error) {
	if cfg.Directory == "" {
		logger.Info(map[string]any{"enabled": false}, "Blocklist disabled")
		return &blocklist.NoopBlocklist{}, nil, nil
	}

	rules, err := parsers.LoadDirectory(cfg.Directory, log.Named("blocklist"), clk)
	if err != nil {
		if rules == nil {
			return nil, nil, fmt.Errorf("failed to load blocklist directory: %w", err)
		}
		// Readable files still count; the broken ones are reported.
		logger.Warn(map[string]any{"error": err}, "Some blocklist files could not be loaded")
	}

	if err := os.MkdirAll(filepath.Dir(cfg.DB), 0o750); err != nil {
		return nil, nil, fmt.Errorf("failed to create blocklist db directory: %w", err)
	}
	store, err := bolt.New(cfg.DB)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open blocklist db: %w", err)
	}
	cache, err := lru.New(cfg.CacheSize)
	if err != nil {
		return nil, nil, multierr.Append(fmt.Errorf("failed to create blocklist cache: %w", err), store.Close())
	}

	repo := blocklist.NewRepository(store, cache, bloom.NewFactory(), cfg.FPRate)
	now := clk.Now()
	if err := repo.UpdateAll(rules, uint64(now.Unix()), now.Unix()); err != nil {
		return nil, nil, multierr.Append(fmt.Errorf("failed to index blocklist: %w", err), store.Close())
	}

	fields := repo.Stats().Fields()
	fields["dir"] = cfg.Directory
	fields["db"] = cfg.DB
	fields["strategy"] = cfg.Strategy
	logger.Info(fields, "Blocklist loaded")
	return repo, store, nil
}

// Run starts the DNS server and blocks until ctx is cancelled or the console quit
// command is read, then shuts down within the configured timeout.
func (app *Application) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if err := app.transport.Start(ctx, app.resolver); err != nil {
		return multierr.Append(fmt.Errorf("failed to start %s transport: %w", app.config.Server.Transport, err), closeAll(app.closers))
	}

	log.Info(map[string]any{
		"address":   app.transport.Address(),
		"transport": app.config.Server.Transport,
	}, "DNS server started")

	if app.console != nil {
		go watchConsole(app.console, cancel)
		log.Info(nil, "Type 'q' and press enter to quit")
	}

	<-ctx.Done()

	log.Info(nil, "Shutdown initiated")
	return app.shutdown(app.config.Server.ShutdownTimeout)
}

// shutdown stops the transport, then releases the remaining resources.
func (app *Application) shutdown(timeout time.Duration) error {
	done := make(chan error, 1)
	go func() {
		err := app.transport.Stop()
		done <- multierr.Append(err, closeAll(app.closers))
	}()

	select {
	case err := <-done:
		if err != nil {
			log.Warn(map[string]any{"error": err}, "Errors during shutdown")
			return err
		}
		log.Info(nil, "Graceful shutdown completed")
		return nil
	case <-time.After(timeout):
		log.Warn(map[string]any{"timeout": timeout}, "Shutdown timeout exceeded")
		return fmt.Errorf("shutdown timeout after %s", timeout)
	}
}

// watchConsole cancels the server when a line reading "q" arrives on r.
// EOF leaves the server running.
func watchConsole(r io.Reader, cancel context.CancelFunc) {
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		if strings.EqualFold(strings.TrimSpace(sc.Text()), "q") {
			log.Info(nil, "Quit command received")
			cancel()
			return
		}
	}
}

func closeAll(closers []io.Closer) error {
	var errs error
	for _, c := range closers {
		errs = multierr.Append(errs, c.Close())
	}
	return errs
}
