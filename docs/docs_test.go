package docs

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readDoc(t *testing.T) map[string]any {
	t.Helper()
	var parsed map[string]any
	require.NoError(t, json.Unmarshal([]byte(SwaggerInfo.ReadDoc()), &parsed), "ReadDoc should return valid JSON")
	return parsed
}

func TestSwaggerInfo(t *testing.T) {
	assert.Equal(t, "Price Comparator API", SwaggerInfo.Title)
	assert.Equal(t, "1.0", SwaggerInfo.Version)
	assert.Equal(t, "/api", SwaggerInfo.BasePath)
	assert.Equal(t, "swagger", SwaggerInfo.InfoInstanceName)
	assert.Contains(t, SwaggerInfo.Description, "basket optimization")

	doc := readDoc(t)
	assert.Equal(t, "2.0", doc["swagger"])
	assert.Equal(t, "/api", doc["basePath"])
	info := doc["info"].(map[string]any)
	assert.Equal(t, "Price Comparator API", info["title"])
}

func TestSwaggerDocumentsPriceEndpoints(t *testing.T) {
	paths, ok := readDoc(t)["paths"].(map[string]any)
	require.True(t, ok)

	for path, methods := range map[string][]string{
		"/basket/optimize":             {"post"},
		"/products/{name}/history":     {"get"},
		"/products/{name}/substitutes": {"get"},
		"/discounts/best":              {"get"},
		"/discounts/new":               {"get"},
		"/alerts":                      {"get", "post"},
		"/alerts/{id}":                 {"get"},
		"/imports/runs":                {"get"},
		"/cache/health":                {"get"},
		"/cache/refresh":               {"post"},
	} {
		ops, ok := paths[path].(map[string]any)
		require.True(t, ok, "path %s missing", path)
		for _, m := range methods {
			assert.Contains(t, ops, m, "%s %s missing", strings.ToUpper(m), path)
		}
	}
}

func TestSwaggerRefsResolve(t *testing.T) {
	doc := readDoc(t)
	definitions := doc["definitions"].(map[string]any)

	var refs []string
	var walk func(v any)
	walk = func(v any) {
		switch n := v.(type) {
		case map[string]any:
			for k, child := range n {
				if k == "$ref" {
					refs = append(refs, child.(string))
					continue
				}
				walk(child)
			}
		case []any:
			for _, child := range n {
				walk(child)
			}
		}
	}
	walk(doc["paths"])
	walk(definitions)

	require.NotEmpty(t, refs)
	for _, ref := range refs {
		name := strings.TrimPrefix(ref, "#/definitions/")
		assert.Contains(t, definitions, name, "dangling $ref %s", ref)
	}
}

func TestSwaggerSecurityDefinition(t *testing.T) {
	sec := readDoc(t)["securityDefinitions"].(map[string]any)
	apiKey, ok := sec["ApiKeyAuth"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "apiKey", apiKey["type"])
	assert.Equal(t, "header", apiKey["in"])
	assert.Equal(t, "X-API-Key", apiKey["name"])
}
