package web_test

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/incontext-app/incontext/internal/flash"
	"github.com/incontext-app/incontext/internal/identity"
	"github.com/incontext-app/incontext/internal/web"
)

func testRenderer(t *testing.T) *web.Renderer {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	renderer, err := web.NewRenderer(logger)
	require.NoError(t, err)
	return renderer
}

func TestRenderAnonymous(t *testing.T) {
	renderer := testRenderer(t)

	rec := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/auth/login", nil)

	renderer.Render(rec, r, http.StatusOK, "auth/login.html", "Log In", struct{ Username string }{})

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()

	assert.Contains(t, body, "<title>Log In - incontext</title>")
	assert.Contains(t, body, `href="/auth/register"`)
	assert.NotContains(t, body, "/auth/logout")
}

func TestRenderAuthenticatedWithFlash(t *testing.T) {
	renderer := testRenderer(t)

	r := httptest.NewRequest(http.MethodGet, "/agents/", nil)
	ctx := identity.WithContext(r.Context(), identity.Identity{UserID: uuid.New(), Username: "ada"})
	r = r.WithContext(ctx)

	// stage a pending flash, then carry its cookie onto the request
	staged := httptest.NewRecorder()
	flash.Add(staged, r, flash.CategoryError, "Something went wrong.")
	for _, c := range staged.Result().Cookies() {
		r.AddCookie(c)
	}

	rec := httptest.NewRecorder()
	renderer.Render(rec, r, http.StatusOK, "auth/login.html", "Log In", struct{ Username string }{})

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()

	assert.Contains(t, body, "ada")
	assert.Contains(t, body, "/auth/logout")
	assert.Contains(t, body, "Something went wrong.")

	// rendering consumes the flash cookie
	cleared := false
	for _, c := range rec.Result().Cookies() {
		if c.Name == flash.CookieName && c.MaxAge < 0 {
			cleared = true
		}
	}
	assert.True(t, cleared)
}

func TestRenderUnknownView(t *testing.T) {
	renderer := testRenderer(t)

	rec := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/", nil)

	renderer.Render(rec, r, http.StatusOK, "missing.html", "Missing", nil)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
