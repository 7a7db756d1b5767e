package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/yaml.v3"

	"github.com/openvolley/scoresheet/internal/domain/model"
)

// File encodings understood by the loader.
const (
	EncodingYAML    = "yaml"
	EncodingJSON    = "json"
	EncodingMsgpack = "msgpack"
)

// ErrUnknownEncoding is returned for files whose extension maps to no encoding.
var ErrUnknownEncoding = errors.New("unknown file encoding")

// MatchFile is the on-disk form of one match: its record, the stored set
// records and the event log in any order.
type MatchFile struct {
	Match  model.Match   `json:"match" yaml:"match" msgpack:"match"`
	Sets   []model.Set   `json:"sets,omitempty" yaml:"sets,omitempty" msgpack:"sets,omitempty"`
	Events []model.Event `json:"events" yaml:"events" msgpack:"events"`
}

// EncodingOf maps a file extension to an encoding.
func EncodingOf(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return EncodingYAML, nil
	case ".json":
		return EncodingJSON, nil
	case ".msgpack", ".mpk", ".mp":
		return EncodingMsgpack, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownEncoding, path)
}

// LoadMatchFile reads and decodes path. Events without a match id inherit
// the match's; events without an id get a positional one so that the
// derivation tie-break stays stable.
func LoadMatchFile(path string) (*MatchFile, error) {
	enc, err := EncodingOf(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	mf, err := Decode(enc, data)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return mf, nil
}

// Decode parses data in the given encoding. YAML documents reject unknown
// keys outside event payloads.
func Decode(enc string, data []byte) (*MatchFile, error) {
	var mf MatchFile
	switch enc {
	case EncodingYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&mf); err != nil && !errors.Is(err, io.EOF) {
			return nil, err
		}
	case EncodingJSON:
		if err := json.Unmarshal(data, &mf); err != nil {
			return nil, err
		}
	case EncodingMsgpack:
		if err := msgpack.Unmarshal(data, &mf); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownEncoding, enc)
	}
	mf.normalize()
	return &mf, nil
}

// Encode serializes mf in the given encoding.
func Encode(enc string, mf *MatchFile) ([]byte, error) {
	switch enc {
	case EncodingYAML:
		var buf bytes.Buffer
		e := yaml.NewEncoder(&buf)
		e.SetIndent(2)
		if err := e.Encode(mf); err != nil {
			return nil, err
		}
		if err := e.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case EncodingJSON:
		out, err := json.MarshalIndent(mf, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(out, '\n'), nil
	case EncodingMsgpack:
		return msgpack.Marshal(mf)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownEncoding, enc)
}

// SaveMatchFile encodes mf by the extension of path and writes it.
func SaveMatchFile(path string, mf *MatchFile) error {
	enc, err := EncodingOf(path)
	if err != nil {
		return err
	}
	data, err := Encode(enc, mf)
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func (mf *MatchFile) normalize() {
	for i := range mf.Events {
		e := &mf.Events[i]
		if e.MatchID == "" {
			e.MatchID = mf.Match.ID
		}
		if e.ID == "" {
			e.ID = fmt.Sprintf("e%06d", i+1)
		}
	}
}
