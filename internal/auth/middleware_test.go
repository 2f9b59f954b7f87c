package auth_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/incontext-app/incontext/internal/auth"
	"github.com/incontext-app/incontext/internal/identity"
)

const testCookie = "incontext_session"

func TestRequireAuthNoCookie(t *testing.T) {
	gate := auth.RequireAuth(&fakeSystem{}, testCookie)

	called := false
	h := gate(func(w http.ResponseWriter, r *http.Request) { called = true })

	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodGet, "/agents/", nil))

	assert.False(t, called)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, auth.LoginPath, rec.Header().Get("Location"))
}

func TestRequireAuthInvalidSession(t *testing.T) {
	gate := auth.RequireAuth(&fakeSystem{}, testCookie)

	called := false
	h := gate(func(w http.ResponseWriter, r *http.Request) { called = true })

	r := httptest.NewRequest(http.MethodGet, "/agents/", nil)
	r.AddCookie(&http.Cookie{Name: testCookie, Value: "expired-token"})

	rec := httptest.NewRecorder()
	h(rec, r)

	assert.False(t, called)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, auth.LoginPath, rec.Header().Get("Location"))
}

func TestRequireAuthValidSession(t *testing.T) {
	user := auth.User{ID: uuid.New(), Username: "ada", Created: time.Now()}
	sys := &fakeSystem{
		users:    map[string]auth.User{user.Username: user},
		sessions: map[string]uuid.UUID{"valid-token": user.ID},
	}
	gate := auth.RequireAuth(sys, testCookie)

	var got *identity.Identity
	h := gate(func(w http.ResponseWriter, r *http.Request) {
		got = identity.FromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	r := httptest.NewRequest(http.MethodGet, "/agents/", nil)
	r.AddCookie(&http.Cookie{Name: testCookie, Value: "valid-token"})

	rec := httptest.NewRecorder()
	h(rec, r)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, got)
	assert.Equal(t, user.ID, got.UserID)
	assert.Equal(t, "ada", got.Username)
}

func TestIdentityAbsent(t *testing.T) {
	assert.Nil(t, identity.FromContext(context.Background()))
}
