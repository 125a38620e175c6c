package app

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/restforge/restforge/internal/security"
)

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	full := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(full, data, 0o644))
	return full
}

func TestStaticDir(t *testing.T) {
	dir := t.TempDir()
	foo := []byte("<html><body>Foo</body></html>")
	bar := []byte("binary")
	writeFile(t, dir, "foo.html", foo)
	writeFile(t, dir, "bar.bin", bar)

	a := New("Title", "1.0")
	require.NoError(t, a.RegisterStatic("/static", dir, nil))

	rec := httptest.NewRecorder()
	a.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/static/foo.html", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, foo, rec.Body.Bytes())
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")

	rec = httptest.NewRecorder()
	a.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/static/bar.bin", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, bar, rec.Body.Bytes())
	assert.Equal(t, "application/octet-stream", rec.Header().Get("Content-Type"))
}

func TestStaticDirIndex(t *testing.T) {
	dir := t.TempDir()
	index := []byte("<html><body>Index</body></html>")
	writeFile(t, dir, "index.html", index)

	a := New("Title", "1.0")
	require.NoError(t, a.RegisterStatic("/static", dir, nil))

	for _, path := range []string{"/static/", "/static/index.html"} {
		rec := httptest.NewRecorder()
		a.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, rec.Code, "path %s", path)
		assert.Equal(t, index, rec.Body.Bytes(), "path %s", path)
		assert.Contains(t, rec.Header().Get("Content-Type"), "text/html", "path %s", path)
	}
}

func TestStaticFile(t *testing.T) {
	dir := t.TempDir()
	bar := []byte("binary")
	full := writeFile(t, dir, "bar.bin", bar)

	a := New("Title", "1.0")
	require.NoError(t, a.RegisterStatic("/bar.bin", full, nil))

	rec := httptest.NewRecorder()
	a.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/bar.bin", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, bar, rec.Body.Bytes())
}

func TestStaticNotFound(t *testing.T) {
	dir := t.TempDir()

	a := New("Title", "1.0")
	require.NoError(t, a.RegisterStatic("/static", dir, nil))

	rec := httptest.NewRecorder()
	a.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/static/missing.txt", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStaticTraversalRejected(t *testing.T) {
	parent := t.TempDir()
	secret := writeFile(t, parent, "secret.txt", []byte("secret"))
	dir := filepath.Join(parent, "public")
	require.NoError(t, os.Mkdir(dir, 0o755))

	a := New("Title", "1.0")
	require.NoError(t, a.RegisterStatic("/static", dir, nil))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/static/foo", nil)
	// Force a raw traversal path that bypasses client-side cleaning.
	req.URL.Path = "/static/../secret.txt"
	a.ServeHTTP(rec, req)
	assert.NotEqual(t, http.StatusOK, rec.Code)
	assert.NotEqual(t, "secret", rec.Body.String())

	_ = secret
}

func TestStaticMethodNotAllowed(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "foo.html", []byte("x"))

	a := New("Title", "1.0")
	require.NoError(t, a.RegisterStatic("/static", dir, nil))

	rec := httptest.NewRecorder()
	a.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/static/foo.html", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestStaticHead(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "foo.html", []byte("<html></html>"))

	a := New("Title", "1.0")
	require.NoError(t, a.RegisterStatic("/static", dir, nil))

	rec := httptest.NewRecorder()
	a.ServeHTTP(rec, httptest.NewRequest(http.MethodHead, "/static/foo.html", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Body.Bytes())
}

func TestStaticProtected(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "foo.html", []byte("x"))

	scheme := testScheme()
	god := &security.RoleRequirement{Role: "god", AuthScheme: scheme}

	a := New("Title", "1.0")
	require.NoError(t, a.RegisterStatic("/static", dir, []security.Requirement{god}))

	rec := httptest.NewRecorder()
	a.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/static/foo.html", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/static/foo.html", nil)
	req.SetBasicAuth("sparky", "punkydoodle")
	a.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRegisterStaticMissingSource(t *testing.T) {
	a := New("Title", "1.0")
	err := a.RegisterStatic("/static", filepath.Join(t.TempDir(), "nope"), nil)
	assert.Error(t, err)
}
