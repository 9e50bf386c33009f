package goGate

import (
	"io"

	"github.com/MrEthical07/goGate/internal/audit"
)

// AuditEvent is one session lifecycle change or gate decision.
type AuditEvent = audit.Event

// AuditSink receives audit events from the engine's dispatcher goroutine.
type AuditSink = audit.Sink

// NoOpSink drops every event.
type NoOpSink = audit.NoOpSink

// ChannelSink buffers events in a channel.
type ChannelSink = audit.ChannelSink

// JSONWriterSink writes one JSON object per line.
type JSONWriterSink = audit.JSONWriterSink

// NewChannelSink returns a ChannelSink with the given buffer.
func NewChannelSink(buffer int) *ChannelSink {
	return audit.NewChannelSink(buffer)
}

// NewJSONWriterSink returns a sink writing JSON lines to w.
func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return audit.NewJSONWriterSink(w)
}

// Audit event types emitted for gate decisions. Session events use
// session.EventKind.String().
const (
	AuditGateRender            = "gate_render"
	AuditGateRedirectLogin     = "gate_redirect_login"
	AuditGateRedirectForbidden = "gate_redirect_forbidden"
	AuditLoginTokenRejected    = "login_token_rejected"
)
