package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/zeno-labs/museum-companion/internal/middleware"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return raw
}

// do runs a request through the given middleware chain into a handler
// that records the identity the middleware stored.
func do(mw echo.MiddlewareFunc, authHeader string) (*httptest.ResponseRecorder, echo.Context) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	h := mw(func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	_ = h(c)
	return rec, c
}

func TestJWTAuthMissingToken(t *testing.T) {
	rec, _ := do(middleware.JWTAuth(testSecret), "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTAuthBadSecret(t *testing.T) {
	tok := signToken(t, "other-secret", jwt.MapClaims{"uid": float64(7), "role": "VISITOR"})
	rec, _ := do(middleware.JWTAuth(testSecret), "Bearer "+tok)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTAuthSetsClaims(t *testing.T) {
	tok := signToken(t, testSecret, jwt.MapClaims{"uid": float64(7), "role": "OWNER"})
	rec, c := do(middleware.JWTAuth(testSecret), "Bearer "+tok)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, float64(7), c.Get("user_id"))
	require.Equal(t, "OWNER", c.Get("role"))
}

func TestOptionalJWTAuthGuest(t *testing.T) {
	rec, c := do(middleware.OptionalJWTAuth(testSecret), "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Nil(t, c.Get("user_id"))
}

func TestOptionalJWTAuthInvalidTokenIsGuest(t *testing.T) {
	rec, c := do(middleware.OptionalJWTAuth(testSecret), "Bearer not-a-token")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Nil(t, c.Get("user_id"))
}

func TestOptionalJWTAuthWithToken(t *testing.T) {
	tok := signToken(t, testSecret, jwt.MapClaims{"uid": float64(12), "role": "VISITOR"})
	rec, c := do(middleware.OptionalJWTAuth(testSecret), "Bearer "+tok)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, float64(12), c.Get("user_id"))
}

func TestRequireRole(t *testing.T) {
	run := func(role interface{}, allowed ...string) int {
		e := echo.New()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		if role != nil {
			c.Set("role", role)
		}
		h := middleware.RequireRole(allowed...)(func(c echo.Context) error { return c.NoContent(http.StatusOK) })
		_ = h(c)
		return rec.Code
	}

	require.Equal(t, http.StatusOK, run("OWNER", "OWNER"))
	require.Equal(t, http.StatusOK, run("VISITOR", "VISITOR", "OWNER"))
	require.Equal(t, http.StatusForbidden, run("VISITOR", "OWNER"))
	require.Equal(t, http.StatusForbidden, run(nil, "OWNER"))
	require.Equal(t, http.StatusForbidden, run(42, "OWNER"))
}
