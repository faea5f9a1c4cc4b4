package middleware

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

// UserID returns the authenticated user id stored by JWTAuth.
func UserID(c echo.Context) (int64, bool) {
	id, ok := c.Get(ContextUserID).(int64)
	return id, ok && id > 0
}

// Role returns the role claim stored by JWTAuth.
func Role(c echo.Context) string {
	r, _ := c.Get(ContextRole).(string)
	return r
}

// userKey identifies the caller for rate limiting.  Unauthenticated requests
// share the "anon" bucket of their IP.
func userKey(c echo.Context) string {
	if id, ok := UserID(c); ok {
		return strconv.FormatInt(id, 10)
	}
	return "anon"
}
