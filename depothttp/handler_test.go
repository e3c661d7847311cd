package depothttp

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/xraph/depot"
)

type store struct {
	dsn string
}

type cache struct {
	size int
}

func newContainer(t *testing.T) *depot.Container {
	t.Helper()

	c := depot.New()
	require.NoError(t, c.Register(
		depot.Define[*store](depot.Name("primary"), depot.Class[*store](), depot.InScope(depot.Singleton)),
		depot.Define[*cache](depot.Class[*cache](), depot.InScope(depot.Singleton)),
	))

	return c
}

func serve(t *testing.T, h http.Handler, method, target string) *httptest.ResponseRecorder {
	t.Helper()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, target, nil))

	return rec
}

func TestDefinitions_JSON(t *testing.T) {
	c := newContainer(t)
	_ = depot.MustResolve[*cache](c)

	rec := serve(t, NewHandler(c), http.MethodGet, "/definitions")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var infos []depot.DefinitionInfo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &infos))
	require.Len(t, infos, 2)
	assert.Equal(t, "*github.com/xraph/depot/depothttp.cache", infos[0].Capability)
	assert.True(t, infos[0].Cached)
	assert.Equal(t, "primary", infos[1].Name)
	assert.False(t, infos[1].Cached)
}

func TestDefinitions_YAMLWithFilter(t *testing.T) {
	c := newContainer(t)

	rec := serve(t, NewHandler(c), http.MethodGet, "/definitions?format=yaml&name=primary")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/yaml", rec.Header().Get("Content-Type"))

	var infos []depot.DefinitionInfo
	require.NoError(t, yaml.Unmarshal(rec.Body.Bytes(), &infos))
	require.Len(t, infos, 1)
	assert.Equal(t, "singleton", infos[0].Scope)
	assert.Equal(t, "class", infos[0].Kind)
}

func TestDefinitions_EmptyIsArray(t *testing.T) {
	rec := serve(t, NewHandler(depot.New()), http.MethodGet, "/definitions")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
}

func TestDefinitions_UnsupportedFormat(t *testing.T) {
	rec := serve(t, NewHandler(depot.New()), http.MethodGet, "/definitions?format=xml")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDump(t *testing.T) {
	c := newContainer(t)

	rec := serve(t, NewHandler(c), http.MethodGet, "/dump")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, c.Dump(), rec.Body.String())
}

func TestRelease(t *testing.T) {
	c := newContainer(t)
	h := NewHandler(c)

	primary := depot.MustResolve[*store](c, depot.Name("primary"))
	cached := depot.MustResolve[*cache](c)

	rec := serve(t, h, http.MethodPost, "/release?name=primary")
	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.NotSame(t, primary, depot.MustResolve[*store](c, depot.Name("primary")))
	assert.Same(t, cached, depot.MustResolve[*cache](c))

	rec = serve(t, h, http.MethodPost, "/release?scope=singleton")
	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.NotSame(t, cached, depot.MustResolve[*cache](c))

	_ = depot.MustResolve[*cache](c)
	rec = serve(t, h, http.MethodPost, "/release")
	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, depot.FindCached(c))
}

func TestRelease_UnknownScope(t *testing.T) {
	rec := serve(t, NewHandler(depot.New()), http.MethodPost, "/release?scope=request")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRelease_MethodNotAllowed(t *testing.T) {
	rec := serve(t, NewHandler(depot.New()), http.MethodGet, "/release")

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
