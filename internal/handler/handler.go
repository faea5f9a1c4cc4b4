// Package handler exposes the booking engine over HTTP.  Handlers parse and
// validate the transport shape of a request, call the engine and map its
// tagged errors to status codes.  Authentication has already been performed
// by middleware for every protected route.
package handler

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/train-seat-reservation/internal/booking"
	"github.com/iliyamo/train-seat-reservation/internal/model"
)

// Booking is the engine surface used by the handlers.
type Booking interface {
	Stations(ctx context.Context) ([]model.Station, error)
	SearchTrains(ctx context.Context, q booking.SearchQuery) ([]booking.TrainOffer, error)
	SeatMap(ctx context.Context, q booking.SeatMapQuery) (booking.CarInformation, error)
	Reserve(ctx context.Context, userID int64, req booking.ReserveRequest) (booking.ReserveResult, error)
	CommitPayment(ctx context.Context, userID, reservationID int64, cardToken string) (booking.CommitResult, error)
	Cancel(ctx context.Context, userID, reservationID int64) error
	Reject(ctx context.Context, reservationID int64) error
	ListReservations(ctx context.Context, userID int64) ([]booking.ReservationDetail, error)
	ReservationDetail(ctx context.Context, userID, reservationID int64) (booking.ReservationDetail, error)
	BoardingPass(ctx context.Context, userID, reservationID int64) ([]byte, error)
}

var _ Booking = (*booking.Engine)(nil)

// parseDate accepts a YYYY-MM-DD service date or an RFC 3339 instant, which
// is reduced to its Tokyo calendar day.
func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if d, err := booking.ParseDate(s); err == nil {
		return d, true
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return booking.ServiceDate(t), true
	}
	return time.Time{}, false
}

// queryInt reads an optional non-negative integer query parameter.
func queryInt(c echo.Context, name string, def int) (int, bool) {
	v := c.QueryParam(name)
	if v == "" {
		return def, true
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

func pathID(c echo.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	return id, err == nil && id > 0
}
