package booking

import (
	"context"
	"fmt"
	"strings"

	qrcode "github.com/skip2/go-qrcode"

	"github.com/iliyamo/train-seat-reservation/internal/model"
)

// BoardingPassSize is the edge length in pixels of the boarding pass PNG.
const BoardingPassSize = 256

// BoardingPassPayload is the text encoded into the boarding pass QR code.
func BoardingPassPayload(d ReservationDetail) string {
	labels := make([]string, 0, len(d.Seats))
	for _, s := range d.Seats {
		labels = append(labels, SeatLabel(s))
	}
	return fmt.Sprintf("RSV:%d|%s|%s %s|%s-%s|%s|car:%d|seats:%s",
		d.ID, d.Date.Format(DateLayout), d.TrainClass, d.TrainName,
		d.Departure, d.Arrival, d.SeatClass, d.CarNumber, strings.Join(labels, ","))
}

// BoardingPass renders a paid reservation as a QR code PNG.
func (e *Engine) BoardingPass(ctx context.Context, userID, reservationID int64) ([]byte, error) {
	d, err := e.ReservationDetail(ctx, userID, reservationID)
	if err != nil {
		return nil, err
	}
	if d.Status != model.StatusDone {
		return nil, stateErr("reservation %d is %s, boarding passes are issued once paid", d.ID, d.Status)
	}
	png, err := qrcode.Encode(BoardingPassPayload(d), qrcode.Medium, BoardingPassSize)
	if err != nil {
		return nil, internalErr(err, "encode boarding pass")
	}
	return png, nil
}
