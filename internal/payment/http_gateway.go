// Package payment implements booking.PaymentGateway against the external
// payment processors.
package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"

	"github.com/iliyamo/train-seat-reservation/internal/booking"
)

// ErrDeclined is returned when the processor answers but refuses the
// operation.
var ErrDeclined = errors.New("payment declined")

// HTTPGateway talks to the payment API over JSON/HTTP.
//
// Charge posts {"payment_information": {...}} to /payment and expects
// {"payment_id", "is_ok"}.  Refund sends DELETE /payment/{id} and expects
// {"is_ok"}.
type HTTPGateway struct {
	baseURL       string
	client        *http.Client
	refundTries   uint64
	refundBackoff time.Duration
	log           *zap.SugaredLogger
}

// NewHTTPGateway returns a gateway for the API at baseURL.  Every call is
// bounded by timeout.
func NewHTTPGateway(baseURL string, timeout time.Duration, log *zap.SugaredLogger) *HTTPGateway {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &HTTPGateway{
		baseURL:       strings.TrimRight(baseURL, "/"),
		client:        &http.Client{Timeout: timeout},
		refundTries:   3,
		refundBackoff: 200 * time.Millisecond,
		log:           log,
	}
}

type paymentInformation struct {
	CardToken     string `json:"card_token"`
	ReservationID int64  `json:"reservation_id"`
	Amount        int    `json:"amount"`
}

type chargeRequest struct {
	PaymentInformation paymentInformation `json:"payment_information"`
}

type chargeResponse struct {
	PaymentID string `json:"payment_id"`
	IsOK      bool   `json:"is_ok"`
}

type refundResponse struct {
	IsOK bool `json:"is_ok"`
}

// Charge is not retried: a lost response would otherwise risk a second
// capture.
func (g *HTTPGateway) Charge(ctx context.Context, req booking.ChargeRequest) (string, error) {
	body, err := json.Marshal(chargeRequest{PaymentInformation: paymentInformation{
		CardToken:     req.CardToken,
		ReservationID: req.ReservationID,
		Amount:        req.Amount,
	}})
	if err != nil {
		return "", err
	}
	var out chargeResponse
	if err := g.do(ctx, http.MethodPost, g.baseURL+"/payment", body, &out); err != nil {
		return "", err
	}
	if !out.IsOK || out.PaymentID == "" {
		return "", ErrDeclined
	}
	g.log.Debugw("payment captured", "reservation_id", req.ReservationID, "payment_id", out.PaymentID)
	return out.PaymentID, nil
}

// Refund retries transport failures and 5xx answers with exponential
// backoff.  Deleting the same payment twice is harmless on the processor.
func (g *HTTPGateway) Refund(ctx context.Context, paymentID string) error {
	endpoint := g.baseURL + "/payment/" + url.PathEscape(paymentID)
	backoff := retry.WithMaxRetries(g.refundTries, retry.NewExponential(g.refundBackoff))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		var out refundResponse
		err := g.do(ctx, http.MethodDelete, endpoint, nil, &out)
		var se *statusError
		switch {
		case errors.As(err, &se) && se.code < 500:
			return err
		case err != nil:
			g.log.Warnw("refund attempt failed", "payment_id", paymentID, "error", err)
			return retry.RetryableError(err)
		case !out.IsOK:
			return ErrDeclined
		}
		return nil
	})
}

type statusError struct {
	code int
	body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("payment api returned %d: %s", e.code, e.body)
}

func (g *HTTPGateway) do(ctx context.Context, method, endpoint string, body []byte, out any) error {
	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, rd)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := g.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return &statusError{code: resp.StatusCode, body: strings.TrimSpace(string(raw))}
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode payment response: %w", err)
	}
	return nil
}

var _ booking.PaymentGateway = (*HTTPGateway)(nil)
