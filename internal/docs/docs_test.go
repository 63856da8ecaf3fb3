package docs

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDocsMux(t *testing.T) *http.ServeMux {
	t.Helper()
	mux := http.NewServeMux()
	require.NoError(t, Register(mux))
	return mux
}

func get(mux http.Handler, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestDocumentValid(t *testing.T) {
	doc, err := Document()
	require.NoError(t, err)
	require.NoError(t, doc.Validate(t.Context()))

	for _, p := range []string{"/health", "/tareas", "/tareas/{id}"} {
		assert.NotNil(t, doc.Paths.Value(p), p)
	}
	item := doc.Paths.Value("/tareas/{id}")
	assert.NotNil(t, item.Get)
	assert.NotNil(t, item.Patch)
	assert.NotNil(t, item.Delete)
	assert.NotNil(t, doc.Paths.Value("/tareas").Post)

	create := doc.Components.Schemas["CrearTarea"].Value
	require.NotNil(t, create)
	assert.Equal(t, []string{"titulo"}, create.Required)
	assert.NotContains(t, create.Extensions, "$schema")

	patch := doc.Components.Schemas["ActualizarTarea"].Value
	require.NotNil(t, patch)
	assert.Empty(t, patch.Required)
}

func TestDocumentServedAndLoadable(t *testing.T) {
	rec := get(newDocsMux(t), "/docs/json")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")

	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(rec.Body.Bytes())
	require.NoError(t, err)
	require.NoError(t, doc.Validate(loader.Context))

	assert.Equal(t, "Tareas API", doc.Info.Title)
	assert.Equal(t, "1.0.0", doc.Info.Version)

	post := doc.Paths.Value("/tareas").Post
	require.NotNil(t, post)
	assert.NotNil(t, post.Responses.Status(201))
	assert.NotNil(t, post.Responses.Status(400))
}

func TestUIServedLocally(t *testing.T) {
	mux := newDocsMux(t)

	for _, target := range []string{"/docs", "/docs/"} {
		rec := get(mux, target)
		assert.Equal(t, http.StatusMovedPermanently, rec.Code, target)
		assert.Equal(t, "/docs/index.html", rec.Header().Get("Location"), target)
	}

	rec := get(mux, "/docs/index.html")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	body := rec.Body.String()
	assert.Contains(t, body, "./swagger-ui-bundle.js")
	assert.NotContains(t, body, "unpkg.com")
	// html/template escapes slashes inside the JS string
	assert.Contains(t, body, `\/docs\/json`)

	rec = get(mux, "/docs/swagger-ui.css")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/css")
}
