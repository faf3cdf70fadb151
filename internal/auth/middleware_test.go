package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guriri-express/dispatch/internal/shared"
)

func TestHeaderResolver(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderRole, " Client ")
	req.Header.Set(HeaderID, "c1")

	caller, err := HeaderResolver{}.Resolve(req)
	require.NoError(t, err)

	assert.Equal(t, shared.Caller{Role: shared.RoleClient, ID: "c1"}, caller)
}

func TestHeaderResolver_Errors(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	_, err := HeaderResolver{}.Resolve(req)
	assert.ErrorIs(t, err, ErrNoIdentity)

	req.Header.Set(HeaderRole, "admin")
	_, err = HeaderResolver{}.Resolve(req)
	assert.ErrorIs(t, err, shared.ErrInvalidRole)
}

func serve(t *testing.T, h http.Handler, role, id string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/api/reports/orders", nil)
	if role != "" {
		req.Header.Set(HeaderRole, role)
	}
	if id != "" {
		req.Header.Set(HeaderID, id)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRequireCaller(t *testing.T) {
	var seen shared.Caller
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = shared.CallerFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})
	h := Middleware{Resolver: HeaderResolver{}}.RequireCaller(next)

	rec := serve(t, h, "motoboy", "m1")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, shared.Caller{Role: shared.RoleMotoboy, ID: "m1"}, seen)

	assert.Equal(t, http.StatusUnauthorized, serve(t, h, "", "").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(t, h, "root", "x").Code)
	assert.Equal(t, http.StatusForbidden, serve(t, h, "client", "").Code)
}

func TestRequireRole(t *testing.T) {
	m := Middleware{Resolver: HeaderResolver{}}
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	h := m.RequireCaller(m.RequireRole(shared.RoleCentral, shared.RoleClient)(ok))

	assert.Equal(t, http.StatusOK, serve(t, h, "central", "").Code)
	assert.Equal(t, http.StatusOK, serve(t, h, "client", "c1").Code)
	assert.Equal(t, http.StatusForbidden, serve(t, h, "motoboy", "m1").Code)
}
