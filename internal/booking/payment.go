package booking

import "context"

// ChargeRequest asks the payment processor to capture an amount for a
// reservation.
type ChargeRequest struct {
	ReservationID int64
	CardToken     string
	Amount        int
}

// PaymentGateway is the external payment processor.
type PaymentGateway interface {
	// Charge captures the amount and returns the processor payment id.
	Charge(ctx context.Context, req ChargeRequest) (string, error)
	// Refund reverses a captured payment.
	Refund(ctx context.Context, paymentID string) error
}
