package model

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/yaml.v3"
)

// Timestamp is an instant decoded from either ISO-8601 text or epoch
// milliseconds. Values that cannot be parsed decode as the zero time.
type Timestamp struct {
	time.Time
}

// layouts accepted for textual timestamps, tried in order.
var layouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// At wraps t.
func At(t time.Time) Timestamp { return Timestamp{Time: t.UTC()} }

// FromMillis builds a Timestamp from epoch milliseconds.
func FromMillis(ms int64) Timestamp { return Timestamp{Time: time.UnixMilli(ms).UTC()} }

// ParseTimestamp parses ISO-8601 text or a decimal epoch-millisecond string.
func ParseTimestamp(s string) Timestamp {
	s = strings.TrimSpace(s)
	if s == "" {
		return Timestamp{}
	}
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		return FromMillis(ms)
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return FromMillis(int64(f))
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return At(t)
		}
	}
	return Timestamp{}
}

// Ptr returns nil for the zero time, used by optional output fields.
func (t Timestamp) Ptr() *Timestamp {
	if t.IsZero() {
		return nil
	}
	return &t
}

// String formats the instant as RFC 3339 in UTC, or "" for the zero time.
func (t Timestamp) String() string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

// MarshalJSON implements json.Marshaler.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.String())
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*t = Timestamp{}
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			*t = Timestamp{}
			return nil //nolint:nilerr // malformed timestamps decode as unknown
		}
		*t = ParseTimestamp(s)
		return nil
	}
	*t = ParseTimestamp(string(data))
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (t Timestamp) MarshalYAML() (any, error) {
	return t.String(), nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (t *Timestamp) UnmarshalYAML(node *yaml.Node) error {
	*t = ParseTimestamp(node.Value)
	return nil
}

// EncodeMsgpack implements msgpack.CustomEncoder.
func (t Timestamp) EncodeMsgpack(enc *msgpack.Encoder) error {
	if t.IsZero() {
		return enc.EncodeNil()
	}
	return enc.EncodeTime(t.Time)
}

// DecodeMsgpack implements msgpack.CustomDecoder.
func (t *Timestamp) DecodeMsgpack(dec *msgpack.Decoder) error {
	v, err := dec.DecodeInterface()
	if err != nil {
		return err
	}
	switch x := v.(type) {
	case time.Time:
		*t = At(x)
	case string:
		*t = ParseTimestamp(x)
	default:
		if ms, ok := toInt(v); ok {
			*t = FromMillis(ms)
			return nil
		}
		*t = Timestamp{}
	}
	return nil
}
