package model

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Payload is the open, additive body of an event. Unknown keys are kept
// untouched; accessors never fail and return zero values for bad shapes.
type Payload map[string]any

// Get returns the raw value stored under key.
func (p Payload) Get(key string) (any, bool) {
	if p == nil {
		return nil, false
	}
	v, ok := p[key]
	return v, ok
}

// String returns the value under key as a string. Numbers are formatted
// without a trailing fraction; other shapes yield "".
func (p Payload) String(key string) string {
	v, ok := p.Get(key)
	if !ok {
		return ""
	}
	switch s := v.(type) {
	case string:
		return s
	case fmt.Stringer:
		return s.String()
	}
	if n, ok := toInt(v); ok {
		return strconv.FormatInt(n, 10)
	}
	return ""
}

// First returns the first non-empty string among keys.
func (p Payload) First(keys ...string) string {
	for _, k := range keys {
		if s := strings.TrimSpace(p.String(k)); s != "" {
			return s
		}
	}
	return ""
}

// Int returns the value under key as an integer.
func (p Payload) Int(key string) (int, bool) {
	v, ok := p.Get(key)
	if !ok {
		return 0, false
	}
	if s, ok := v.(string); ok {
		n, err := strconv.Atoi(strings.TrimSpace(s))
		return n, err == nil
	}
	n, ok := toInt(v)
	return int(n), ok
}

// Bool returns the value under key as a boolean; anything but true/"true"
// is false.
func (p Payload) Bool(key string) bool {
	v, ok := p.Get(key)
	if !ok {
		return false
	}
	switch b := v.(type) {
	case bool:
		return b
	case string:
		parsed, err := strconv.ParseBool(strings.TrimSpace(b))
		return err == nil && parsed
	}
	return false
}

// Side returns the value under key as a Side.
func (p Payload) Side(key string) Side {
	return ParseSide(p.String(key))
}

// PlayerNumber returns the player number stored under key in canonical
// decimal form. Non-numeric or negative values yield "".
func (p Payload) PlayerNumber(key string) string {
	v, ok := p.Get(key)
	if !ok {
		return ""
	}
	return PlayerNumber(v)
}

// Map returns the nested object stored under key, or nil.
func (p Payload) Map(key string) Payload {
	v, ok := p.Get(key)
	if !ok {
		return nil
	}
	return AsPayload(v)
}

// AsPayload converts a decoded nested object to a Payload.
func AsPayload(v any) Payload {
	switch m := v.(type) {
	case Payload:
		return m
	case map[string]any:
		return Payload(m)
	case map[any]any:
		out := make(Payload, len(m))
		for k, val := range m {
			out[fmt.Sprint(k)] = val
		}
		return out
	}
	return nil
}

// PlayerNumber normalizes a decoded player number. It accepts integers,
// integral floats and numeric strings.
func PlayerNumber(v any) string {
	if s, ok := v.(string); ok {
		s = strings.TrimSpace(s)
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			return ""
		}
		return strconv.Itoa(n)
	}
	n, ok := toInt(v)
	if !ok || n < 0 {
		return ""
	}
	return strconv.FormatInt(n, 10)
}

// toInt handles the numeric shapes produced by the JSON, YAML and msgpack
// decoders.
func toInt(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int8:
		return int64(n), true
	case int16:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint:
		return int64(n), true
	case uint8:
		return int64(n), true
	case uint16:
		return int64(n), true
	case uint32:
		return int64(n), true
	case uint64:
		if n > math.MaxInt64 {
			return 0, false
		}
		return int64(n), true
	case float32:
		return floatToInt(float64(n))
	case float64:
		return floatToInt(n)
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i, true
		}
		if f, err := n.Float64(); err == nil {
			return floatToInt(f)
		}
	}
	return 0, false
}

func floatToInt(f float64) (int64, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	return int64(f), true
}
