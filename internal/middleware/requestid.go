package middleware

import (
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// HeaderRequestID carries the request id in both directions.
const HeaderRequestID = "X-Request-ID"

const contextLogger = "logger"

// RequestLogger assigns every request an id (reusing a client supplied one),
// echoes it in the response header and stores a logger tagged with it in the
// context.  One line is logged per request once the handler returns.
func RequestLogger(log *zap.SugaredLogger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id := c.Request().Header.Get(HeaderRequestID)
			if id == "" {
				id = uuid.NewString()
			}
			c.Response().Header().Set(HeaderRequestID, id)
			rl := log.With("request_id", id)
			c.Set(contextLogger, rl)

			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}
			rl.Infow("request",
				"method", c.Request().Method,
				"path", c.Path(),
				"status", c.Response().Status,
				"latency_ms", time.Since(start).Milliseconds(),
				"user_id", userKey(c),
			)
			return nil
		}
	}
}

// Logger returns the request-scoped logger, or a no-op logger outside
// RequestLogger.
func Logger(c echo.Context) *zap.SugaredLogger {
	if l, ok := c.Get(contextLogger).(*zap.SugaredLogger); ok {
		return l
	}
	return zap.NewNop().Sugar()
}
