package jwt_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/lmskit/pkg/jwt"
)

func claimsHandler(got **jwt.Claims) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*got, _ = jwt.ClaimsFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
}

func TestMiddleware(t *testing.T) {
	t.Parallel()

	svc := newService(t)
	token, err := svc.Generate(jwt.Claims{TenantID: "ngo"})
	require.NoError(t, err)

	t.Run("valid bearer token", func(t *testing.T) {
		t.Parallel()

		var got *jwt.Claims
		h := jwt.Middleware(svc)(claimsHandler(&got))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		require.NotNil(t, got)
		assert.Equal(t, "ngo", got.TenantID)
	})

	t.Run("missing token is rejected", func(t *testing.T) {
		t.Parallel()

		var got *jwt.Claims
		rec := httptest.NewRecorder()
		jwt.Middleware(svc)(claimsHandler(&got)).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("optional passes anonymous requests", func(t *testing.T) {
		t.Parallel()

		var got *jwt.Claims
		rec := httptest.NewRecorder()
		jwt.Middleware(svc, jwt.WithOptional())(claimsHandler(&got)).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Nil(t, got)
	})

	t.Run("optional still rejects bad tokens", func(t *testing.T) {
		t.Parallel()

		var got *jwt.Claims
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer forged.token.value")
		rec := httptest.NewRecorder()
		jwt.Middleware(svc, jwt.WithOptional())(claimsHandler(&got)).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("cookie extractor", func(t *testing.T) {
		t.Parallel()

		var got *jwt.Claims
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: "session", Value: token})
		rec := httptest.NewRecorder()
		jwt.Middleware(svc, jwt.WithExtractor(jwt.CookieTokenExtractor("session")))(claimsHandler(&got)).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
		require.NotNil(t, got)
	})

	t.Run("skip", func(t *testing.T) {
		t.Parallel()

		var got *jwt.Claims
		skip := jwt.WithSkip(func(r *http.Request) bool { return r.URL.Path == "/healthz" })
		rec := httptest.NewRecorder()
		jwt.Middleware(svc, skip)(claimsHandler(&got)).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestExtractors(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	_, err := jwt.BearerTokenExtractor(req)
	require.ErrorIs(t, err, jwt.ErrMissingToken)

	req.Header.Set("Authorization", "Basic abc")
	_, err = jwt.BearerTokenExtractor(req)
	require.ErrorIs(t, err, jwt.ErrInvalidToken)

	req.Header.Set("Authorization", "bearer abc")
	token, err := jwt.BearerTokenExtractor(req)
	require.NoError(t, err)
	assert.Equal(t, "abc", token)

	req.Header.Set("X-Api-Token", "xyz")
	token, err = jwt.HeaderTokenExtractor("X-Api-Token")(req)
	require.NoError(t, err)
	assert.Equal(t, "xyz", token)

	_, err = jwt.CookieTokenExtractor("missing")(req)
	require.ErrorIs(t, err, jwt.ErrMissingToken)
}

func TestTenantClaim(t *testing.T) {
	t.Parallel()

	_, ok := jwt.TenantClaim(context.Background())
	assert.False(t, ok)

	ctx := jwt.WithClaims(context.Background(), &jwt.Claims{})
	_, ok = jwt.TenantClaim(ctx)
	assert.False(t, ok)

	ctx = jwt.WithClaims(context.Background(), &jwt.Claims{TenantID: "acme"})
	ctx = jwt.WithToken(ctx, "raw")
	id, ok := jwt.TenantClaim(ctx)
	require.True(t, ok)
	assert.Equal(t, "acme", id)

	raw, ok := jwt.TokenFromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, "raw", raw)
}

func TestRequireRole(t *testing.T) {
	t.Parallel()

	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	h := jwt.RequireRole("admin")(ok)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(jwt.WithClaims(req.Context(), &jwt.Claims{Role: "student"}))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	req = req.WithContext(jwt.WithClaims(req.Context(), &jwt.Claims{Role: "admin"}))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
