package middleware

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

const userIDKey = "user_id"

// Auth resolves the caller's identity from an optional Bearer token.
// A missing token is allowed (anonymous donations); a present but
// invalid token is rejected.
func Auth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return next(c)
			}

			tokenString := strings.TrimPrefix(authHeader, "Bearer ")
			if tokenString == authHeader {
				return echo.NewHTTPError(http.StatusUnauthorized, "malformed authorization header")
			}

			claims := &jwt.RegisteredClaims{}
			token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrSignatureInvalid
				}
				return []byte(secret), nil
			})
			if err != nil || !token.Valid || claims.Subject == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			c.Set(userIDKey, claims.Subject)
			return next(c)
		}
	}
}

// UserID returns the authenticated user's id, empty for anonymous callers.
func UserID(c echo.Context) string {
	id, _ := c.Get(userIDKey).(string)
	return id
}
