package goGate

import "errors"

var (
	// ErrEngineNotReady is returned by methods called on a nil or unbuilt Engine.
	ErrEngineNotReady = errors.New("engine not ready")
	// ErrInvalidConfig wraps every configuration validation failure.
	ErrInvalidConfig = errors.New("invalid config")
	// ErrStorageRequired is returned by Build when no storage backend was set.
	ErrStorageRequired = errors.New("storage backend required")
	// ErrTokensDisabled is returned by token logins when Token.Enabled is false.
	ErrTokensDisabled = errors.New("login tokens disabled")
	// ErrBuilderUsed is returned when Build is called twice.
	ErrBuilderUsed = errors.New("builder already used")
)
