package goGate

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/MrEthical07/goGate/gate"
	"github.com/MrEthical07/goGate/locale"
	"github.com/MrEthical07/goGate/session"
	"github.com/MrEthical07/goGate/storage/redisstore"
)

// EnvPrefix prefixes every environment variable read by LoadConfig.
const EnvPrefix = "GOGATE_"

// Storage backend names accepted by SessionConfig.Backend.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendSQLite = "sqlite"
)

// Config is the complete engine configuration. Start from DefaultConfig.
type Config struct {
	Session SessionConfig `envPrefix:"SESSION_"`
	Gate    GateConfig    `envPrefix:"GATE_"`
	Locale  LocaleConfig  `envPrefix:"LOCALE_"`
	Token   TokenConfig   `envPrefix:"TOKEN_"`
	Metrics MetricsConfig `envPrefix:"METRICS_"`
	Audit   AuditConfig   `envPrefix:"AUDIT_"`
	Logging LoggingConfig `envPrefix:"LOG_"`
}

/*
====================================
SESSION CONFIG
====================================
*/

// SessionConfig selects where tab-scoped sessions live.
type SessionConfig struct {
	StorageKey  string        `env:"STORAGE_KEY"`
	TTL         time.Duration `env:"TTL"`
	Backend     string        `env:"BACKEND"`
	RedisAddr   string        `env:"REDIS_ADDR"`
	RedisPrefix string        `env:"REDIS_PREFIX"`
	TabTTL      time.Duration `env:"TAB_TTL"`
	SQLitePath  string        `env:"SQLITE_PATH"`
}

/*
====================================
GATE CONFIG
====================================
*/

// GateConfig holds redirect targets and the protected route table.
type GateConfig struct {
	LoginPath     string      `env:"LOGIN_PATH"`
	ForbiddenPath string      `env:"FORBIDDEN_PATH"`
	TabCookie     string      `env:"TAB_COOKIE"`
	RulesFile     string      `env:"RULES_FILE"`
	Rules         []gate.Rule
	// Roles maps role names to the roles they inherit. Loaded with Rules.
	Roles map[string][]string
}

// LocaleConfig selects the default UI language.
type LocaleConfig struct {
	Default string `env:"DEFAULT"`
}

// TokenConfig configures signed login tokens.
type TokenConfig struct {
	Enabled       bool          `env:"ENABLED"`
	TTL           time.Duration `env:"TTL"`
	SigningMethod string        `env:"SIGNING_METHOD"`
	Secret        string        `env:"SECRET"`
	PrivateKeyPEM string        `env:"PRIVATE_KEY_PEM"`
	PublicKeyPEM  string        `env:"PUBLIC_KEY_PEM"`
	Issuer        string        `env:"ISSUER"`
}

// MetricsConfig toggles in-process counters and the latency histogram.
type MetricsConfig struct {
	Enabled                 bool `env:"ENABLED"`
	EnableLatencyHistograms bool `env:"LATENCY_HISTOGRAMS"`
}

// AuditConfig controls the async audit dispatcher.
type AuditConfig struct {
	Enabled    bool `env:"ENABLED"`
	BufferSize int  `env:"BUFFER_SIZE"`
	DropIfFull bool `env:"DROP_IF_FULL"`
}

// LoggingConfig configures the process logger built by cmd/gatectl.
type LoggingConfig struct {
	Level      string `env:"LEVEL"`
	Format     string `env:"FORMAT"`
	Output     string `env:"OUTPUT"`
	File       string `env:"FILE"`
	MaxSizeMB  int    `env:"MAX_SIZE_MB"`
	MaxBackups int    `env:"MAX_BACKUPS"`
	MaxAgeDays int    `env:"MAX_AGE_DAYS"`
	Compress   bool   `env:"COMPRESS"`
}

// DefaultConfig returns a configuration that validates as-is: in-memory
// storage, default redirect paths, no protected routes.
func DefaultConfig() Config {
	return Config{
		Session: SessionConfig{
			StorageKey:  session.StorageKey,
			TTL:         time.Hour,
			Backend:     BackendMemory,
			RedisAddr:   "127.0.0.1:6379",
			RedisPrefix: redisstore.DefaultPrefix,
			TabTTL:      24 * time.Hour,
			SQLitePath:  "gogate.db",
		},
		Gate: GateConfig{
			LoginPath:     gate.DefaultLoginPath,
			ForbiddenPath: gate.DefaultForbiddenPath,
			TabCookie:     "gg_tab",
		},
		Locale: LocaleConfig{Default: locale.DefaultLanguage},
		Token: TokenConfig{
			TTL:           time.Hour,
			SigningMethod: "hs256",
			Issuer:        "gogate",
		},
		Metrics: MetricsConfig{Enabled: true},
		Audit: AuditConfig{
			BufferSize: 1024,
			DropIfFull: true,
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "text",
			Output:     "stdout",
			MaxSizeMB:  100,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
	}
}

// LoadConfig layers, over DefaultConfig, an optional dotenv file, then
// GOGATE_* environment variables, then the YAML rules file if one is named.
// Missing dotenv files are ignored.
func LoadConfig(envFiles ...string) (Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load dotenv: %w", err)
	}

	cfg := DefaultConfig()
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return Config{}, fmt.Errorf("%w: parse env: %v", ErrInvalidConfig, err)
	}
	if cfg.Gate.RulesFile != "" {
		if err := cfg.Gate.LoadRulesFile(cfg.Gate.RulesFile); err != nil {
			return Config{}, err
		}
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

type rulesDocument struct {
	Roles map[string][]string `yaml:"roles"`
	Rules []gate.Rule         `yaml:"rules"`
}

// LoadRulesFile replaces Rules and Roles with the contents of a YAML file:
//
//	roles:
//	  admin: [editor]
//	  editor: []
//	rules:
//	  - prefix: /admin
//	    roles: [admin]
func (g *GateConfig) LoadRulesFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("%w: read rules file: %v", ErrInvalidConfig, err)
	}
	return g.ParseRules(data)
}

// ParseRules is LoadRulesFile over raw YAML.
func (g *GateConfig) ParseRules(data []byte) error {
	var doc rulesDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("%w: parse rules: %v", ErrInvalidConfig, err)
	}
	g.Rules = doc.Rules
	g.Roles = doc.Roles
	return nil
}

// Validate reports the first configuration problem, wrapped in ErrInvalidConfig.
func (c *Config) Validate() error {
	// Session
	if strings.TrimSpace(c.Session.StorageKey) == "" {
		return invalid("Session StorageKey must not be empty")
	}
	if c.Session.TTL <= 0 {
		return invalid("Session TTL must be > 0")
	}
	switch c.Session.Backend {
	case BackendMemory:
	case BackendRedis:
		if strings.TrimSpace(c.Session.RedisAddr) == "" {
			return invalid("Session RedisAddr required for redis backend")
		}
		if c.Session.TabTTL < 0 {
			return invalid("Session TabTTL must be >= 0")
		}
	case BackendSQLite:
		if strings.TrimSpace(c.Session.SQLitePath) == "" {
			return invalid("Session SQLitePath required for sqlite backend")
		}
	default:
		return invalid("unsupported Session Backend %q", c.Session.Backend)
	}

	// Gate
	if !strings.HasPrefix(c.Gate.LoginPath, "/") {
		return invalid("Gate LoginPath must start with /")
	}
	if !strings.HasPrefix(c.Gate.ForbiddenPath, "/") {
		return invalid("Gate ForbiddenPath must start with /")
	}
	if c.Gate.LoginPath == c.Gate.ForbiddenPath {
		return invalid("Gate LoginPath and ForbiddenPath must differ")
	}
	if strings.TrimSpace(c.Gate.TabCookie) == "" {
		return invalid("Gate TabCookie must not be empty")
	}
	table := gate.NewTable(c.Gate.Rules...)
	for _, p := range []string{c.Gate.LoginPath, c.Gate.ForbiddenPath} {
		if _, protected := table.Match(p); protected {
			return invalid("Gate rule protects redirect target %s", p)
		}
	}
	for _, r := range c.Gate.Rules {
		if strings.TrimSpace(r.Prefix) == "" {
			return invalid("Gate rule prefix must not be empty")
		}
		if len(c.Gate.Roles) == 0 {
			continue
		}
		for _, name := range r.Roles {
			if _, ok := c.Gate.Roles[name]; !ok {
				return invalid("Gate rule %s names unknown role %q", r.Prefix, name)
			}
		}
	}

	// Locale
	if strings.TrimSpace(c.Locale.Default) == "" {
		return invalid("Locale Default must not be empty")
	}

	// Token
	if c.Token.Enabled {
		if c.Token.TTL <= 0 {
			return invalid("Token TTL must be > 0")
		}
		switch c.Token.SigningMethod {
		case "hs256":
			if len(c.Token.Secret) < 16 {
				return invalid("Token Secret must be at least 16 bytes for hs256")
			}
		case "ed25519":
			if c.Token.PublicKeyPEM == "" || c.Token.PrivateKeyPEM == "" {
				return invalid("ed25519 requires PrivateKeyPEM and PublicKeyPEM")
			}
		default:
			return invalid("unsupported Token SigningMethod %q", c.Token.SigningMethod)
		}
	}

	// Audit
	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return invalid("Audit BufferSize must be > 0")
	}

	// Logging
	switch strings.ToLower(c.Logging.Output) {
	case "", "stdout":
	case "file", "both":
		if strings.TrimSpace(c.Logging.File) == "" {
			return invalid("Logging File required for file output")
		}
	default:
		return invalid("unsupported Logging Output %q", c.Logging.Output)
	}
	return nil
}

// Paths returns the redirect targets.
func (g GateConfig) Paths() gate.Paths {
	return gate.Paths{Login: g.LoginPath, Forbidden: g.ForbiddenPath}
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrInvalidConfig}, args...)...)
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.Gate.Rules = make([]gate.Rule, len(cfg.Gate.Rules))
	for i, r := range cfg.Gate.Rules {
		out.Gate.Rules[i] = gate.Rule{Prefix: r.Prefix, Roles: append([]string(nil), r.Roles...)}
	}
	if cfg.Gate.Roles != nil {
		out.Gate.Roles = make(map[string][]string, len(cfg.Gate.Roles))
		for name, parents := range cfg.Gate.Roles {
			out.Gate.Roles[name] = append([]string(nil), parents...)
		}
	}
	return out
}
