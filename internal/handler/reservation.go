package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/train-seat-reservation/internal/booking"
	"github.com/iliyamo/train-seat-reservation/internal/middleware"
)

// ReservationHandler serves the customer booking endpoints.  Every method
// acts on behalf of the authenticated user only.
type ReservationHandler struct {
	Booking Booking
}

// NewReservationHandler panics when b is nil.
func NewReservationHandler(b Booking) *ReservationHandler {
	if b == nil {
		panic("nil booking engine passed to NewReservationHandler")
	}
	return &ReservationHandler{Booking: b}
}

type reserveBody struct {
	Date          string                `json:"date"`
	TrainClass    string                `json:"train_class"`
	TrainName     string                `json:"train_name"`
	CarNumber     int                   `json:"car_number"`
	SeatClass     string                `json:"seat_class"`
	IsSmokingSeat bool                  `json:"is_smoking_seat"`
	Departure     string                `json:"departure"`
	Arrival       string                `json:"arrival"`
	Adult         int                   `json:"adult"`
	Child         int                   `json:"child"`
	Column        string                `json:"column"`
	Seats         []booking.RequestSeat `json:"seats"`
}

// Reserve handles POST /v1/reservations and answers 201 with the
// reservation id, amount and claimed seats.
func (h *ReservationHandler) Reserve(c echo.Context) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return unauthorized(c)
	}
	var body reserveBody
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	date, ok := parseDate(body.Date)
	if !ok {
		return badRequest(c, "date must be YYYY-MM-DD or RFC 3339")
	}

	res, err := h.Booking.Reserve(c.Request().Context(), userID, booking.ReserveRequest{
		Date:          date,
		TrainClass:    body.TrainClass,
		TrainName:     body.TrainName,
		CarNumber:     body.CarNumber,
		SeatClass:     body.SeatClass,
		IsSmokingSeat: body.IsSmokingSeat,
		Departure:     body.Departure,
		Arrival:       body.Arrival,
		Adult:         body.Adult,
		Child:         body.Child,
		Column:        body.Column,
		Seats:         body.Seats,
	})
	if err != nil {
		return writeError(c, err)
	}
	middleware.Logger(c).Infow("reservation created", "reservation_id", res.ReservationID, "user_id", userID, "amount", res.Amount)
	return c.JSON(http.StatusCreated, res)
}

// Commit handles POST /v1/reservations/:id/commit with {"card_token": "..."}.
func (h *ReservationHandler) Commit(c echo.Context) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return unauthorized(c)
	}
	id, ok := pathID(c)
	if !ok {
		return badRequest(c, "invalid reservation id")
	}
	var body struct {
		CardToken string `json:"card_token"`
	}
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	res, err := h.Booking.CommitPayment(c.Request().Context(), userID, id, body.CardToken)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

// Cancel handles POST /v1/reservations/:id/cancel and DELETE
// /v1/reservations/:id.
func (h *ReservationHandler) Cancel(c echo.Context) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return unauthorized(c)
	}
	id, ok := pathID(c)
	if !ok {
		return badRequest(c, "invalid reservation id")
	}
	if err := h.Booking.Cancel(c.Request().Context(), userID, id); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// List handles GET /v1/reservations.
func (h *ReservationHandler) List(c echo.Context) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return unauthorized(c)
	}
	list, err := h.Booking.ListReservations(c.Request().Context(), userID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, list)
}

// Get handles GET /v1/reservations/:id.
func (h *ReservationHandler) Get(c echo.Context) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return unauthorized(c)
	}
	id, ok := pathID(c)
	if !ok {
		return badRequest(c, "invalid reservation id")
	}
	d, err := h.Booking.ReservationDetail(c.Request().Context(), userID, id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, d)
}

// Ticket handles GET /v1/reservations/:id/ticket.png.
func (h *ReservationHandler) Ticket(c echo.Context) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return unauthorized(c)
	}
	id, ok := pathID(c)
	if !ok {
		return badRequest(c, "invalid reservation id")
	}
	png, err := h.Booking.BoardingPass(c.Request().Context(), userID, id)
	if err != nil {
		return writeError(c, err)
	}
	c.Response().Header().Set("Cache-Control", "no-store")
	return c.Blob(http.StatusOK, "image/png", png)
}
