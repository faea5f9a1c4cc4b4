package payment

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v84"
	"github.com/stripe/stripe-go/v84/paymentintent"
	"github.com/stripe/stripe-go/v84/refund"
	"go.uber.org/zap"

	"github.com/iliyamo/train-seat-reservation/internal/booking"
)

// StripeGateway charges cards through Stripe PaymentIntents.  The card
// token is a PaymentMethod id collected by the client.
type StripeGateway struct {
	currency string
	timeout  time.Duration
	log      *zap.SugaredLogger
}

// NewStripeGateway configures the Stripe client with secretKey.  Every call
// is bounded by timeout.
func NewStripeGateway(secretKey, currency string, timeout time.Duration, log *zap.SugaredLogger) *StripeGateway {
	stripe.Key = secretKey
	if currency == "" {
		currency = string(stripe.CurrencyJPY)
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &StripeGateway{currency: currency, timeout: timeout, log: log}
}

// Charge confirms a PaymentIntent immediately.  Each attempt carries a fresh
// idempotency key so that a retry after a refunded attempt captures again.
func (g *StripeGateway) Charge(ctx context.Context, req booking.ChargeRequest) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	params := &stripe.PaymentIntentParams{
		Amount:        stripe.Int64(int64(req.Amount)),
		Currency:      stripe.String(g.currency),
		PaymentMethod: stripe.String(req.CardToken),
		Confirm:       stripe.Bool(true),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled:        stripe.Bool(true),
			AllowRedirects: stripe.String("never"),
		},
	}
	params.Context = ctx
	params.AddMetadata("reservation_id", strconv.FormatInt(req.ReservationID, 10))
	params.SetIdempotencyKey(fmt.Sprintf("charge_%d_%s", req.ReservationID, uuid.NewString()))

	pi, err := paymentintent.New(params)
	if err != nil {
		return "", stripeError(err)
	}
	if pi.Status != stripe.PaymentIntentStatusSucceeded {
		g.log.Warnw("payment intent not captured", "reservation_id", req.ReservationID, "status", pi.Status)
		return "", fmt.Errorf("%w: payment intent %s is %s", ErrDeclined, pi.ID, pi.Status)
	}
	return pi.ID, nil
}

// Refund refunds the whole PaymentIntent.  A payment that is already
// refunded counts as success.
func (g *StripeGateway) Refund(ctx context.Context, paymentID string) error {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	params := &stripe.RefundParams{PaymentIntent: stripe.String(paymentID)}
	params.Context = ctx
	params.SetIdempotencyKey("refund_" + paymentID)

	if _, err := refund.New(params); err != nil {
		var se *stripe.Error
		if errors.As(err, &se) && se.Code == stripe.ErrorCodeChargeAlreadyRefunded {
			return nil
		}
		return stripeError(err)
	}
	return nil
}

func stripeError(err error) error {
	var se *stripe.Error
	if !errors.As(err, &se) {
		return fmt.Errorf("stripe: %w", err)
	}
	switch se.Type {
	case stripe.ErrorTypeCard:
		return fmt.Errorf("%w: %s", ErrDeclined, se.Msg)
	}
	switch se.Code {
	case stripe.ErrorCodeAmountTooLarge, stripe.ErrorCodeBalanceInsufficient:
		return fmt.Errorf("%w: %s", ErrDeclined, se.Msg)
	}
	return fmt.Errorf("stripe: %w", err)
}

var _ booking.PaymentGateway = (*StripeGateway)(nil)
