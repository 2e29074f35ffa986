package docs

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/swaggo/swag"

	"github.com/fkhayef/sharedexpenses/internal/balance"
	"github.com/fkhayef/sharedexpenses/internal/sharedexpense"
)

type document struct {
	BasePath string `json:"basePath"`
	Paths    map[string]map[string]struct {
		Parameters []struct {
			Name string `json:"name"`
			In   string `json:"in"`
		} `json:"parameters"`
	} `json:"paths"`
}

func readDocument(t *testing.T) document {
	t.Helper()
	raw, err := swag.ReadDoc()
	require.NoError(t, err)

	var doc document
	require.NoError(t, json.Unmarshal([]byte(raw), &doc))
	return doc
}

func TestDocumentCoversRoutes(t *testing.T) {
	doc := readDocument(t)
	assert.Equal(t, "/api/v1", doc.BasePath)

	r := chi.NewRouter()
	r.Mount("/shared-expenses", sharedexpense.NewHandler(nil).Routes())
	r.Mount("/balances", balance.NewHandler(nil).Routes())

	routes := 0
	err := chi.Walk(r, func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		routes++
		path := strings.TrimSuffix(route, "/")
		ops, ok := doc.Paths[path]
		if assert.True(t, ok, "%s is not documented", path) {
			assert.Contains(t, ops, strings.ToLower(method), "%s %s is not documented", method, path)
		}
		return nil
	})
	require.NoError(t, err)

	documented := 0
	for _, ops := range doc.Paths {
		documented += len(ops)
	}
	assert.Equal(t, routes, documented, "document lists operations the router does not serve")
}

func TestListParameters(t *testing.T) {
	doc := readDocument(t)

	var query []string
	for _, p := range doc.Paths["/shared-expenses"]["get"].Parameters {
		if p.In == "query" {
			query = append(query, p.Name)
		}
	}
	assert.ElementsMatch(t, []string{"group", "settled", "page", "per_page"}, query)
}
