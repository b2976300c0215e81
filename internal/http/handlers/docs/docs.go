// Package docs serves the OpenAPI description of the API and a Swagger UI
// page that renders it.
//
//	GET /api-docs               → Swagger UI
//	GET /api-docs/openapi.yaml  → the document as YAML
//	GET /api-docs/openapi.json  → the same document as JSON
package docs

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"net/http"

	"gopkg.in/yaml.v3"
)

// Path is where the UI is mounted.
const Path = "/api-docs"

//go:embed openapi.yaml
var openapiYAML []byte

//go:embed index.html
var indexHTML []byte

// Docs holds the rendered document. Build it once at startup.
type Docs struct {
	yaml []byte
	json []byte
}

// New parses the embedded document and stamps the running version into
// info.version.
func New(version string) (*Docs, error) {
	var doc map[string]any
	if err := yaml.Unmarshal(openapiYAML, &doc); err != nil {
		return nil, fmt.Errorf("docs: parse openapi.yaml: %w", err)
	}

	info, ok := doc["info"].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("docs: openapi.yaml has no info section")
	}
	if version != "" {
		info["version"] = version
	}

	asYAML, err := yaml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("docs: encode yaml: %w", err)
	}
	asJSON, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("docs: encode json: %w", err)
	}

	return &Docs{yaml: asYAML, json: asJSON}, nil
}

// UI handles GET /api-docs.
func (d *Docs) UI() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write(indexHTML)
	}
}

// YAML handles GET /api-docs/openapi.yaml.
func (d *Docs) YAML() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/yaml")
		_, _ = w.Write(d.yaml)
	}
}

// JSON handles GET /api-docs/openapi.json.
func (d *Docs) JSON() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(d.json)
	}
}
