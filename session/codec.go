package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/bytedance/sonic"
)

var errCorrupt = errors.New("corrupt session record")

// codec follows encoding/json semantics: payload numbers decode as float64
// and arrays as []any. expires_at is read separately from its raw token.
var codec = sonic.ConfigStd

type expiryField struct {
	ExpiresAt json.RawMessage `json:"expires_at"`
}

// Encode serializes rec as a flat JSON object: expires_at plus every payload
// field. A payload entry named expires_at is overridden by rec.ExpiresAt.
func Encode(rec *Record) (string, error) {
	if err := rec.validate(); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}
	flat := make(map[string]any, len(rec.Payload)+1)
	for k, v := range rec.Payload {
		flat[k] = v
	}
	flat[FieldExpiresAt] = rec.ExpiresAt

	data, err := codec.Marshal(flat)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}
	return string(data), nil
}

// Decode parses the stored text form. Any structural problem, including a
// missing or non-numeric expires_at, is reported as corruption.
func Decode(raw string) (*Record, error) {
	var flat map[string]any
	if err := codec.UnmarshalFromString(raw, &flat); err != nil {
		return nil, fmt.Errorf("%w: %v", errCorrupt, err)
	}
	if flat == nil {
		return nil, fmt.Errorf("%w: not an object", errCorrupt)
	}

	var field expiryField
	if err := codec.UnmarshalFromString(raw, &field); err != nil {
		return nil, fmt.Errorf("%w: %v", errCorrupt, err)
	}
	exp, err := parseExpiry(field.ExpiresAt)
	if err != nil {
		return nil, err
	}
	delete(flat, FieldExpiresAt)

	return &Record{
		ExpiresAt: exp,
		Payload:   flat,
	}, nil
}

// parseExpiry reads an integer token exactly. Fractional or exponent forms
// are floored.
func parseExpiry(token json.RawMessage) (int64, error) {
	text := strings.TrimSpace(string(token))
	if text == "" || text == "null" {
		return 0, fmt.Errorf("%w: missing numeric %s", errCorrupt, FieldExpiresAt)
	}
	if exp, err := strconv.ParseInt(text, 10, 64); err == nil {
		if exp < 1 {
			return 0, fmt.Errorf("%w: %s out of range", errCorrupt, FieldExpiresAt)
		}
		return exp, nil
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		var num *strconv.NumError
		if errors.As(err, &num) && errors.Is(num.Err, strconv.ErrRange) {
			return 0, fmt.Errorf("%w: %s out of range", errCorrupt, FieldExpiresAt)
		}
		return 0, fmt.Errorf("%w: missing numeric %s", errCorrupt, FieldExpiresAt)
	}
	// 2^63 is the first float64 above MaxInt64.
	if math.IsNaN(f) || f < 1 || f >= 1<<63 {
		return 0, fmt.Errorf("%w: %s out of range", errCorrupt, FieldExpiresAt)
	}
	return int64(math.Floor(f)), nil
}
