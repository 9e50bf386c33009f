package main

import (
	"context"
	"fmt"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	goGate "github.com/MrEthical07/goGate"
	"github.com/MrEthical07/goGate/internal/logs"
	"github.com/MrEthical07/goGate/storage"
	"github.com/MrEthical07/goGate/storage/memory"
	"github.com/MrEthical07/goGate/storage/redisstore"
	"github.com/MrEthical07/goGate/storage/sqlitestore"
)

// embeddedRedis as RedisAddr starts an in-process miniredis.
const embeddedRedis = "embedded"

// openBackend returns the configured storage backend and a func releasing it.
func openBackend(ctx context.Context, cfg goGate.SessionConfig, log logrus.FieldLogger) (storage.Backend, func(), error) {
	switch cfg.Backend {
	case goGate.BackendMemory:
		return memory.New(), func() {}, nil

	case goGate.BackendRedis:
		addr := cfg.RedisAddr
		var mr *miniredis.Miniredis
		if addr == embeddedRedis {
			var err error
			mr, err = miniredis.Run()
			if err != nil {
				return nil, nil, fmt.Errorf("start miniredis: %w", err)
			}
			addr = mr.Addr()
			log.WithField("addr", addr).Info("using embedded redis")
		}
		client := redis.NewUniversalClient(&redis.UniversalOptions{Addrs: []string{addr}})
		backend := redisstore.New(client, cfg.RedisPrefix, cfg.TabTTL)
		rtt, err := backend.Ping(ctx)
		if err != nil {
			_ = client.Close()
			if mr != nil {
				mr.Close()
			}
			return nil, nil, fmt.Errorf("ping redis %s: %w", addr, err)
		}
		log.WithFields(logrus.Fields{"addr": addr, "rtt": rtt}).Debug("redis reachable")
		return backend, func() {
			_ = client.Close()
			if mr != nil {
				mr.Close()
			}
		}, nil

	case goGate.BackendSQLite:
		backend, err := sqlitestore.Open(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return backend, func() { _ = backend.Close() }, nil

	default:
		return nil, nil, fmt.Errorf("unsupported backend %q", cfg.Backend)
	}
}

// newLogger builds the process logger from config.
func newLogger(cfg goGate.LoggingConfig) (*logrus.Logger, error) {
	return logs.New(logs.Options{
		Level:      cfg.Level,
		Format:     cfg.Format,
		Output:     cfg.Output,
		File:       cfg.File,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   cfg.Compress,
	})
}

// buildEngine loads config, the logger and the backend, and assembles an
// engine. The returned func closes the engine and then the backend.
func buildEngine(ctx context.Context, envFile string) (*goGate.Engine, *logrus.Logger, func(), error) {
	cfg, err := goGate.LoadConfig(envFile)
	if err != nil {
		return nil, nil, nil, err
	}
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("init logger: %w", err)
	}
	backend, release, err := openBackend(ctx, cfg.Session, log)
	if err != nil {
		return nil, nil, nil, err
	}

	b := goGate.New().WithConfig(cfg).WithStorage(backend).WithLogger(log)
	if cfg.Audit.Enabled {
		b.WithAuditSink(goGate.NewJSONWriterSink(log.Out))
	}
	engine, err := b.Build()
	if err != nil {
		release()
		return nil, nil, nil, err
	}
	return engine, log, func() {
		engine.Close()
		release()
	}, nil
}
