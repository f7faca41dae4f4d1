package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
	"net/http" // HTTP status codes for responses
	"strings"  // string utilities for prefix checking and trimming

	"github.com/golang-jwt/jwt/v5" // JWT library for parsing and validating tokens
	"github.com/labstack/echo/v4"  // Echo framework used for defining middleware and handlers
)

// JWTAuth returns an Echo middleware that validates a Bearer session
// token minted by the identity provider and injects the token's user id
// and role claims into the request context.  The provided secret must
// match the provider's signing key.  This middleware should wrap
// protected routes so handlers can read the caller via
// `c.Get("user_id")` and `c.Get("role")`.
func JWTAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			// A valid Authorization header starts with "Bearer "
			// followed by the JWT.  Anything else is rejected with 401.
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			raw := strings.TrimPrefix(auth, "Bearer ")

			claims, err := parseClaims(raw, secret)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}

			// Store the user id and role claims in the context.
			// Handlers and downstream middleware access these via
			// c.Get(); type assertions are left to the consumers.
			c.Set("user_id", claims["uid"])
			c.Set("role", claims["role"])
			return next(c)
		}
	}
}

// OptionalJWTAuth is like JWTAuth but lets unauthenticated requests
// through without claims in the context.  Routes that serve both
// guests and signed-in visitors (the chat widget) use this so a
// missing or expired token degrades to a guest session instead of a
// 401.
func OptionalJWTAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			if strings.HasPrefix(auth, "Bearer ") {
				raw := strings.TrimPrefix(auth, "Bearer ")
				if claims, err := parseClaims(raw, secret); err == nil {
					c.Set("user_id", claims["uid"])
					c.Set("role", claims["role"])
				}
			}
			return next(c)
		}
	}
}

// parseClaims validates an HS256 token against the secret and returns
// its claim map.
func parseClaims(raw, secret string) (jwt.MapClaims, error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		// Only HMAC signatures are acceptable; reject anything else so
		// an attacker cannot downgrade to "none" or swap algorithms.
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, echo.ErrUnauthorized
		}
		return []byte(secret), nil
	})
	if err != nil || !tok.Valid {
		return nil, echo.ErrUnauthorized
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return nil, echo.ErrUnauthorized
	}
	return claims, nil
}
