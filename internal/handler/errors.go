package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/train-seat-reservation/internal/booking"
	"github.com/iliyamo/train-seat-reservation/internal/middleware"
)

// statusFor maps a booking error kind to its HTTP status.
func statusFor(k booking.Kind) int {
	switch k {
	case booking.KindValidation, booking.KindRoute:
		return http.StatusBadRequest
	case booking.KindAuth:
		return http.StatusUnauthorized
	case booking.KindNotFound:
		return http.StatusNotFound
	case booking.KindAvailability, booking.KindConflict, booking.KindState:
		return http.StatusConflict
	case booking.KindUpstream:
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// writeError renders err as {"error": kind, "message": msg}.  Internal and
// upstream causes are logged and never sent to the client.
func writeError(c echo.Context, err error) error {
	kind := booking.KindOf(err)
	status := statusFor(kind)
	msg := err.Error()

	var be *booking.Error
	if errors.As(err, &be) {
		msg = be.Msg
	}
	if status >= http.StatusInternalServerError {
		middleware.Logger(c).Errorw("request failed", "kind", kind.String(), "error", err)
		if kind == booking.KindInternal {
			msg = "internal error"
		}
	}
	return c.JSON(status, echo.Map{"error": kind.String(), "message": msg})
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, echo.Map{"error": booking.KindValidation.String(), "message": msg})
}

func unauthorized(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, echo.Map{"error": booking.KindAuth.String(), "message": "unauthorized"})
}
