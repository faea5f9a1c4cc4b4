package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/train-seat-reservation/internal/booking"
)

// TrainHandler serves the unauthenticated browse endpoints.
type TrainHandler struct {
	Booking Booking
}

// NewTrainHandler panics when b is nil.
func NewTrainHandler(b Booking) *TrainHandler {
	if b == nil {
		panic("nil booking engine passed to NewTrainHandler")
	}
	return &TrainHandler{Booking: b}
}

// Stations handles GET /v1/stations.
func (h *TrainHandler) Stations(c echo.Context) error {
	list, err := h.Booking.Stations(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, list)
}

// Search handles GET /v1/trains/search.
//
// Query: use_at (RFC 3339, required), from, to, train_class (optional),
// adult and child (default 1 and 0).
func (h *TrainHandler) Search(c echo.Context) error {
	useAt, err := time.Parse(time.RFC3339, c.QueryParam("use_at"))
	if err != nil {
		return badRequest(c, "use_at must be an RFC 3339 timestamp")
	}
	adult, ok := queryInt(c, "adult", 1)
	if !ok {
		return badRequest(c, "adult must be a non-negative integer")
	}
	child, ok := queryInt(c, "child", 0)
	if !ok {
		return badRequest(c, "child must be a non-negative integer")
	}

	offers, err := h.Booking.SearchTrains(c.Request().Context(), booking.SearchQuery{
		UseAt:      useAt,
		From:       c.QueryParam("from"),
		To:         c.QueryParam("to"),
		TrainClass: c.QueryParam("train_class"),
		Adult:      adult,
		Child:      child,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, offers)
}

// Seats handles GET /v1/trains/seats.
//
// Query: date, train_class, train_name, car_number, from, to.
func (h *TrainHandler) Seats(c echo.Context) error {
	date, ok := parseDate(c.QueryParam("date"))
	if !ok {
		return badRequest(c, "date must be YYYY-MM-DD or RFC 3339")
	}
	car, ok := queryInt(c, "car_number", 0)
	if !ok {
		return badRequest(c, "car_number must be a positive integer")
	}

	info, err := h.Booking.SeatMap(c.Request().Context(), booking.SeatMapQuery{
		Date:       date,
		TrainClass: c.QueryParam("train_class"),
		TrainName:  c.QueryParam("train_name"),
		CarNumber:  car,
		From:       c.QueryParam("from"),
		To:         c.QueryParam("to"),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, info)
}
