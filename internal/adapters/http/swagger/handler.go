// Package swagger serves the OpenAPI description of the HTTP API.
package swagger

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"gopkg.in/yaml.v3"
)

// Error constants.
var (
	ErrServe = errors.New("swagger serve failed")
)

// Register attaches the OpenAPI routes to mux:
//
//	GET /swagger/openapi.yaml -> embedded document
//	GET /swagger/openapi.json -> the same document as JSON
func Register(mux *http.ServeMux) error {
	if mux == nil {
		return fmt.Errorf("%w: nil mux", ErrServe)
	}
	asJSON, err := toJSON(OpenAPI)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrServe, err)
	}

	mux.HandleFunc("GET /swagger/openapi.yaml", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/yaml; charset=utf-8")
		_, _ = w.Write(OpenAPI)
	})
	mux.HandleFunc("GET /swagger/openapi.json", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		_, _ = w.Write(asJSON)
	})
	return nil
}

func toJSON(doc []byte) ([]byte, error) {
	var v any
	if err := yaml.Unmarshal(doc, &v); err != nil {
		return nil, fmt.Errorf("parse openapi.yaml: %w", err)
	}
	return json.MarshalIndent(v, "", "  ")
}
