package jwt_test

import (
	"testing"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/lmskit/pkg/jwt"
)

var testKey = []byte("0123456789abcdef0123456789abcdef")

func newService(t *testing.T, opts ...jwt.Option) *jwt.Service {
	t.Helper()
	svc, err := jwt.New(testKey, opts...)
	require.NoError(t, err)
	return svc
}

func TestNew(t *testing.T) {
	t.Parallel()

	_, err := jwt.New(nil)
	require.ErrorIs(t, err, jwt.ErrMissingSigningKey)

	_, err = jwt.NewFromConfig(jwt.Config{})
	require.ErrorIs(t, err, jwt.ErrMissingSigningKey)

	svc, err := jwt.NewFromConfig(jwt.Config{SigningKey: string(testKey), Issuer: "lmskit", TTL: time.Hour})
	require.NoError(t, err)
	require.NotNil(t, svc)
}

func TestGenerateParse(t *testing.T) {
	t.Parallel()

	t.Run("round trip keeps tenant claim", func(t *testing.T) {
		t.Parallel()

		svc := newService(t, jwt.WithIssuer("lmskit"), jwt.WithTTL(time.Hour))

		token, err := svc.Generate(jwt.Claims{
			RegisteredClaims: gojwt.RegisteredClaims{Subject: "user-1"},
			TenantID:         "ngo",
			Role:             "instructor",
		})
		require.NoError(t, err)

		claims, err := svc.Parse(token)
		require.NoError(t, err)
		assert.Equal(t, "user-1", claims.Subject)
		assert.Equal(t, "ngo", claims.TenantID)
		assert.Equal(t, "instructor", claims.Role)
		assert.Equal(t, "lmskit", claims.Issuer)
		require.NotNil(t, claims.ExpiresAt)
		require.NotNil(t, claims.IssuedAt)
	})

	t.Run("expired", func(t *testing.T) {
		t.Parallel()

		past := time.Now().Add(-2 * time.Hour)
		issuer := newService(t, jwt.WithTTL(time.Hour), jwt.WithClock(func() time.Time { return past }))
		token, err := issuer.Generate(jwt.Claims{TenantID: "ngo"})
		require.NoError(t, err)

		_, err = newService(t).Parse(token)
		require.ErrorIs(t, err, jwt.ErrExpiredToken)
	})

	t.Run("leeway tolerates skew", func(t *testing.T) {
		t.Parallel()

		past := time.Now().Add(-time.Hour - 10*time.Second)
		issuer := newService(t, jwt.WithTTL(time.Hour), jwt.WithClock(func() time.Time { return past }))
		token, err := issuer.Generate(jwt.Claims{TenantID: "ngo"})
		require.NoError(t, err)

		_, err = newService(t, jwt.WithLeeway(time.Minute)).Parse(token)
		require.NoError(t, err)
	})

	t.Run("wrong key", func(t *testing.T) {
		t.Parallel()

		token, err := newService(t).Generate(jwt.Claims{TenantID: "ngo"})
		require.NoError(t, err)

		other, err := jwt.New([]byte("another-key-another-key-another!"))
		require.NoError(t, err)

		_, err = other.Parse(token)
		require.ErrorIs(t, err, jwt.ErrInvalidSignature)
	})

	t.Run("issuer mismatch", func(t *testing.T) {
		t.Parallel()

		token, err := newService(t, jwt.WithIssuer("someone-else")).Generate(jwt.Claims{})
		require.NoError(t, err)

		_, err = newService(t, jwt.WithIssuer("lmskit")).Parse(token)
		require.ErrorIs(t, err, jwt.ErrInvalidToken)
	})

	t.Run("other algorithms are rejected", func(t *testing.T) {
		t.Parallel()

		token, err := gojwt.NewWithClaims(gojwt.SigningMethodHS512, jwt.Claims{TenantID: "ngo"}).SignedString(testKey)
		require.NoError(t, err)

		_, err = newService(t).Parse(token)
		require.Error(t, err)
	})

	t.Run("garbage", func(t *testing.T) {
		t.Parallel()

		_, err := newService(t).Parse("not.a.token")
		require.ErrorIs(t, err, jwt.ErrInvalidToken)
	})
}
