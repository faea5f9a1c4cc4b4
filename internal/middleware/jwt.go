package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

// Context keys set by JWTAuth.
const (
	ContextUserID = "user_id"
	ContextRole   = "role"
)

// JWTAuth returns an Echo middleware that validates a Bearer access token and
// injects the token's subject (as int64) and role claims into the request
// context.  The secret must match the one used when issuing tokens.
func JWTAuth(secret string) echo.MiddlewareFunc {
	keyFunc := func(*jwt.Token) (interface{}, error) { return []byte(secret), nil }
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return unauthorized(c, "missing bearer token")
			}
			raw := strings.TrimPrefix(auth, "Bearer ")

			claims := jwt.MapClaims{}
			tok, err := jwt.ParseWithClaims(raw, claims, keyFunc,
				jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
				jwt.WithExpirationRequired(),
			)
			if err != nil || !tok.Valid {
				return unauthorized(c, "invalid token")
			}

			sub, err := claims.GetSubject()
			if err != nil {
				return unauthorized(c, "invalid claims")
			}
			id, err := strconv.ParseInt(sub, 10, 64)
			if err != nil || id <= 0 {
				return unauthorized(c, "invalid subject")
			}
			role, _ := claims["role"].(string)

			c.Set(ContextUserID, id)
			c.Set(ContextRole, role)
			return next(c)
		}
	}
}

func unauthorized(c echo.Context, msg string) error {
	return c.JSON(http.StatusUnauthorized, echo.Map{"error": "auth", "message": msg})
}
