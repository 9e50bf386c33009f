package goGate

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/MrEthical07/goGate/gate"
	"github.com/MrEthical07/goGate/internal/audit"
	"github.com/MrEthical07/goGate/internal/logs"
	"github.com/MrEthical07/goGate/jwt"
	"github.com/MrEthical07/goGate/role"
	"github.com/MrEthical07/goGate/storage"
)

// Builder assembles an Engine. A Builder is single-use.
type Builder struct {
	config    Config
	backend   storage.Backend
	roles     map[string][]string
	auditSink AuditSink
	logger    logrus.FieldLogger
	now       func() time.Time

	built bool
}

// New returns a Builder seeded with DefaultConfig.
func New() *Builder {
	return &Builder{config: DefaultConfig()}
}

func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithStorage sets the tab-scoped storage backend. Required.
func (b *Builder) WithStorage(backend storage.Backend) *Builder {
	b.backend = backend
	return b
}

// WithRoles sets the role inheritance map, overriding Config.Gate.Roles.
func (b *Builder) WithRoles(roles map[string][]string) *Builder {
	b.roles = roles
	return b
}

func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

func (b *Builder) WithLogger(logger logrus.FieldLogger) *Builder {
	b.logger = logger
	return b
}

// WithClock replaces time.Now for session expiry and token issuance.
func (b *Builder) WithClock(now func() time.Time) *Builder {
	b.now = now
	return b
}

func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build validates the configuration and returns a ready Engine.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, ErrBuilderUsed
	}

	cfg := cloneConfig(b.config)
	if b.roles != nil {
		cfg.Gate.Roles = b.roles
	}
	if b.backend == nil {
		return nil, ErrStorageRequired
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// -------- ROLE REGISTRY --------
	var registry *role.Registry
	if len(cfg.Gate.Roles) > 0 {
		registry = role.NewRegistry()
		if err := registry.RegisterAll(cfg.Gate.Roles); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
		registry.Freeze()
	}

	now := b.now
	if now == nil {
		now = time.Now
	}
	logger := b.logger
	if logger == nil {
		logger = logs.Discard()
	}

	engine := &Engine{
		config:  cfg,
		backend: b.backend,
		roles:   registry,
		table:   gate.NewTable(cfg.Gate.Rules...),
		paths:   cfg.Gate.Paths(),
		now:     now,
		logger:  logger,
		metrics: NewMetrics(cfg.Metrics),
		audit: audit.NewDispatcher(audit.Config{
			Enabled:    cfg.Audit.Enabled,
			BufferSize: cfg.Audit.BufferSize,
			DropIfFull: cfg.Audit.DropIfFull,
		}, b.auditSink),
	}

	// -------- LOGIN TOKENS --------
	if cfg.Token.Enabled {
		secret := []byte(cfg.Token.Secret)
		var public []byte
		if cfg.Token.SigningMethod == string(jwt.MethodEd25519) {
			secret = []byte(cfg.Token.PrivateKeyPEM)
			public = []byte(cfg.Token.PublicKeyPEM)
		}
		tm, err := jwt.NewManager(jwt.Config{
			TTL:           cfg.Token.TTL,
			SigningMethod: jwt.SigningMethod(cfg.Token.SigningMethod),
			PrivateKey:    secret,
			PublicKey:     public,
			Issuer:        cfg.Token.Issuer,
			Now:           now,
		})
		if err != nil {
			engine.Close()
			return nil, err
		}
		engine.tokens = tm
	}

	b.built = true
	return engine, nil
}
