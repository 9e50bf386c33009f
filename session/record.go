package session

import (
	"errors"
	"strings"
	"time"
)

// Well-known payload fields read by the authentication-state layer.
const (
	FieldExpiresAt   = "expires_at"
	FieldUserID      = "user_id"
	FieldRoles       = "roles"
	FieldAccessToken = "access_token"
	FieldSessionID   = "session_id"
)

// ErrInvalidRecord is returned by Save for records that cannot be persisted.
var ErrInvalidRecord = errors.New("invalid session record")

// Record is the persisted authentication session. ExpiresAt is epoch seconds;
// Payload carries every other field of the login response.
//
// A record read back from storage is JSON-equivalent to the one saved:
// ExpiresAt is exact, but Payload values take their JSON decoded types
// (numbers become float64, arrays []any, objects map[string]any). Use the
// accessors such as Roles for fields that may come back in either shape.
type Record struct {
	ExpiresAt int64
	Payload   map[string]any
}

// NewRecord builds a record expiring at expiresAt with a copy of payload.
func NewRecord(expiresAt time.Time, payload map[string]any) *Record {
	rec := &Record{
		ExpiresAt: expiresAt.Unix(),
		Payload:   make(map[string]any, len(payload)),
	}
	for k, v := range payload {
		if k == FieldExpiresAt {
			continue
		}
		rec.Payload[k] = v
	}
	return rec
}

// Expired reports whether the record is past its expiry at now. A record is
// still valid during the second it expires in.
func (r *Record) Expired(now time.Time) bool {
	return now.Unix() > r.ExpiresAt
}

// ExpiresTime returns ExpiresAt as a time.Time.
func (r *Record) ExpiresTime() time.Time {
	return time.Unix(r.ExpiresAt, 0)
}

// UserID returns the user_id payload field, or "".
func (r *Record) UserID() string {
	return r.stringField(FieldUserID)
}

// SessionID returns the session_id payload field, or "".
func (r *Record) SessionID() string {
	return r.stringField(FieldSessionID)
}

// AccessToken returns the access_token payload field, or "".
func (r *Record) AccessToken() string {
	return r.stringField(FieldAccessToken)
}

// Roles returns the role tags carried in the payload. Both a decoded JSON
// array and a []string set in-process are accepted; non-string entries are
// skipped.
func (r *Record) Roles() []string {
	if r == nil || r.Payload == nil {
		return nil
	}
	switch v := r.Payload[FieldRoles].(type) {
	case []string:
		out := make([]string, 0, len(v))
		for _, role := range v {
			if role = strings.TrimSpace(role); role != "" {
				out = append(out, role)
			}
		}
		return out
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			role, ok := item.(string)
			if !ok {
				continue
			}
			if role = strings.TrimSpace(role); role != "" {
				out = append(out, role)
			}
		}
		return out
	case string:
		if role := strings.TrimSpace(v); role != "" {
			return []string{role}
		}
	}
	return nil
}

func (r *Record) stringField(name string) string {
	if r == nil || r.Payload == nil {
		return ""
	}
	s, _ := r.Payload[name].(string)
	return s
}

func (r *Record) validate() error {
	if r == nil {
		return errors.New("nil record")
	}
	if r.ExpiresAt <= 0 {
		return errors.New("expires_at must be positive")
	}
	return nil
}
