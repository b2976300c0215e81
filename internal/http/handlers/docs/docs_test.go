package docs_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/aanand-mishra/students-api/internal/http/handlers/docs"
)

func TestNew_StampsVersion(t *testing.T) {
	d, err := docs.New("2.3.4")
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	d.JSON().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api-docs/openapi.json", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var doc struct {
		OpenAPI string `json:"openapi"`
		Info    struct {
			Version string `json:"version"`
		} `json:"info"`
		Paths map[string]any `json:"paths"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	assert.Equal(t, "3.0.3", doc.OpenAPI)
	assert.Equal(t, "2.3.4", doc.Info.Version)

	for _, path := range []string{"/", "/health", "/api/auth/login", "/api/students", "/api/students/{id}"} {
		assert.Contains(t, doc.Paths, path)
	}
}

func TestYAMLMatchesJSON(t *testing.T) {
	d, err := docs.New("1.0.0")
	require.NoError(t, err)

	yamlRec := httptest.NewRecorder()
	d.YAML().ServeHTTP(yamlRec, httptest.NewRequest(http.MethodGet, "/api-docs/openapi.yaml", nil))
	jsonRec := httptest.NewRecorder()
	d.JSON().ServeHTTP(jsonRec, httptest.NewRequest(http.MethodGet, "/api-docs/openapi.json", nil))

	var fromYAML, fromJSON map[string]any
	require.NoError(t, yaml.Unmarshal(yamlRec.Body.Bytes(), &fromYAML))
	require.NoError(t, json.Unmarshal(jsonRec.Body.Bytes(), &fromJSON))
	assert.Contains(t, fromYAML["paths"], "/api/students")
	assert.Contains(t, fromJSON["paths"], "/api/students")
	assert.Equal(t, fromJSON["info"].(map[string]any)["title"], fromYAML["info"].(map[string]any)["title"])
}

func TestUI(t *testing.T) {
	d, err := docs.New("")
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	d.UI().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, docs.Path, nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "/api-docs/openapi.json")
}
