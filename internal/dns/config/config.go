package config

import (
	"fmt"
	"net"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// AppConfig holds configuration values parsed from environment variables.
type AppConfig struct {
	// Env is the runtime environment, either "dev" or "prod".
	Env string `koanf:"env" validate:"required,oneof=dev prod"`

	Log       LoggingConfig   `koanf:"log"`
	Server    ServerConfig    `koanf:"server"`
	Resolver  ResolverConfig  `koanf:"resolver"`
	Blocklist BlocklistConfig `koanf:"blocklist"`
}

type LoggingConfig struct {
	// Level controls log verbosity: "debug", "info", "warn", or "error".
	Level string `koanf:"level" validate:"required,oneof=debug info warn error"`
}

// ServerConfig describes the listener and its worker pool.
type ServerConfig struct {
	// Address is the host:port the transport binds to.
	Address   string `koanf:"address" validate:"required,host_port"`
	Transport string `koanf:"transport" validate:"required,oneof=udp"`
	Workers   int    `koanf:"workers" validate:"gte=1"`
	QueueSize int    `koanf:"queue_size" validate:"gte=1"`
	// BufferSize is the receive buffer for a single datagram.
	BufferSize int `koanf:"buffer_size" validate:"gte=512,lte=65535"`
	// Console enables the interactive "q" quit command on stdin.
	Console         bool          `koanf:"console"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"gt=0"`
}

type ResolverConfig struct {
	// ZoneDirectory is the directory where zone files are located.
	ZoneDirectory string `koanf:"zones" validate:"required"`
	// DefaultTTL applies to zone files that do not set their own ttl, in seconds.
	DefaultTTL uint32 `koanf:"ttl" validate:"lte=2147483647"`
	MissPolicy string `koanf:"miss_policy" validate:"oneof=empty rfc"`
}

// BlocklistConfig configures the optional query deny list. An empty Directory disables it.
type BlocklistConfig struct {
	Directory string  `koanf:"dir"`
	DB        string  `koanf:"db" validate:"required_with=Directory"`
	Strategy  string  `koanf:"strategy" validate:"oneof=refused drop"`
	CacheSize int     `koanf:"cache_size" validate:"gte=0"`
	FPRate    float64 `koanf:"fp_rate" validate:"gt=0,lt=1"`
}

// DEFAULT_APP_CONFIG defines the default application configuration settings for the DNS service.
var DEFAULT_APP_CONFIG = AppConfig{
	Env: "prod",
	Log: LoggingConfig{Level: "info"},
	Server: ServerConfig{
		Address:         ":53",
		Transport:       "udp",
		Workers:         64,
		QueueSize:       1024,
		BufferSize:      1024,
		Console:         false,
		ShutdownTimeout: 10 * time.Second,
	},
	Resolver: ResolverConfig{
		ZoneDirectory: "/etc/zonedns/zones/",
		DefaultTTL:    300,
		MissPolicy:    "empty",
	},
	Blocklist: BlocklistConfig{
		Directory: "",
		DB:        "/var/lib/zonedns/blocklist.db",
		Strategy:  "refused",
		CacheSize: 1000,
		FPRate:    0.01,
	},
}

// envKeys maps every supported environment variable to its koanf key.
// Variables not listed here are ignored.
var envKeys = map[string]string{
	"DNS_ENV":                     "env",
	"DNS_LOG_LEVEL":               "log.level",
	"DNS_SERVER_ADDRESS":          "server.address",
	"DNS_SERVER_TRANSPORT":        "server.transport",
	"DNS_SERVER_WORKERS":          "server.workers",
	"DNS_SERVER_QUEUE_SIZE":       "server.queue_size",
	"DNS_SERVER_BUFFER_SIZE":      "server.buffer_size",
	"DNS_SERVER_CONSOLE":          "server.console",
	"DNS_SERVER_SHUTDOWN_TIMEOUT": "server.shutdown_timeout",
	"DNS_RESOLVER_ZONES":          "resolver.zones",
	"DNS_RESOLVER_TTL":            "resolver.ttl",
	"DNS_RESOLVER_MISS_POLICY":    "resolver.miss_policy",
	"DNS_BLOCKLIST_DIR":           "blocklist.dir",
	"DNS_BLOCKLIST_DB":            "blocklist.db",
	"DNS_BLOCKLIST_STRATEGY":      "blocklist.strategy",
	"DNS_BLOCKLIST_CACHE_SIZE":    "blocklist.cache_size",
	"DNS_BLOCKLIST_FP_RATE":       "blocklist.fp_rate",
}

var hostnameRe = regexp.MustCompile(`^([A-Za-z0-9]([A-Za-z0-9-]{0,61}[A-Za-z0-9])?)(\.[A-Za-z0-9]([A-Za-z0-9-]{0,61}[A-Za-z0-9])?)*\.?$`)

// validHostPort accepts "host:port" where host is empty (all interfaces), an IP literal
// (IPv6 in brackets) or a hostname, and port is 0..65535.
func validHostPort(fl validator.FieldLevel) bool {
	host, port, err := net.SplitHostPort(fl.Field().String())
	if err != nil || port == "" {
		return false
	}
	if _, err := strconv.ParseUint(port, 10, 16); err != nil {
		return false
	}
	if host == "" || net.ParseIP(host) != nil {
		return true
	}
	return len(host) <= 253 && hostnameRe.MatchString(host)
}

// envTransform resolves a DNS_* variable through envKeys. An empty key tells the
// provider to skip the variable.
func envTransform(key, value string) (string, any) {
	k, ok := envKeys[key]
	if !ok {
		return "", nil
	}
	return k, strings.TrimSpace(value)
}

// envLoader loads environment variables with the prefix "DNS_" and can be mocked in tests.
var envLoader = func(k *koanf.Koanf) error {
	return k.Load(env.Provider(".", env.Opt{
		Prefix:        "DNS_",
		TransformFunc: envTransform,
	}), nil)
}

// defaultLoader loads DEFAULT_APP_CONFIG through the structs provider.
var defaultLoader = func(k *koanf.Koanf) error {
	return k.Load(structs.Provider(DEFAULT_APP_CONFIG, "koanf"), nil)
}

// registerValidation registers the "host_port" tag with the provided validator.
var registerValidation = func(v *validator.Validate) error {
	return v.RegisterValidation("host_port", validHostPort)
}

// Load parses environment variables and returns an AppConfig instance.
// It applies default values and runs validation automatically.
func Load() (*AppConfig, error) {
	k := koanf.New(".")

	if err := defaultLoader(k); err != nil {
		return nil, fmt.Errorf("error loading default config: %w", err)
	}

	if err := envLoader(k); err != nil {
		return nil, fmt.Errorf("error loading env: %w", err)
	}

	var cfg AppConfig
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks cfg against its struct tags.
func Validate(cfg *AppConfig) error {
	validate := validator.New(validator.WithRequiredStructEnabled())

	if err := registerValidation(validate); err != nil {
		return fmt.Errorf("error registering validation: %w", err)
	}

	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	return nil
}
