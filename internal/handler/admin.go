package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/train-seat-reservation/internal/middleware"
	"github.com/iliyamo/train-seat-reservation/internal/model"
)

// AdminHandler serves operator endpoints.  Routes must be guarded by the
// ADMIN role.
type AdminHandler struct {
	Booking Booking
}

func NewAdminHandler(b Booking) *AdminHandler {
	if b == nil {
		panic("nil booking engine passed to NewAdminHandler")
	}
	return &AdminHandler{Booking: b}
}

// Reject handles POST /v1/admin/reservations/:id/reject.
func (h *AdminHandler) Reject(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return badRequest(c, "invalid reservation id")
	}
	if err := h.Booking.Reject(c.Request().Context(), id); err != nil {
		return writeError(c, err)
	}
	admin, _ := middleware.UserID(c)
	middleware.Logger(c).Infow("reservation rejected by admin", "reservation_id", id, "user_id", admin)
	return c.JSON(http.StatusOK, echo.Map{"reservation_id": id, "status": model.StatusRejected})
}
