package payments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sethvargo/go-retry"

	pkgerrors "github.com/seatrelay/seatrelay-backend/pkg/errors"
	"github.com/seatrelay/seatrelay-backend/pkg/gateway"
	"github.com/seatrelay/seatrelay-backend/pkg/logger"
	"github.com/seatrelay/seatrelay-backend/pkg/metrics"
)

// gatewayReader is the slice of the gateway client the poller needs.
type gatewayReader interface {
	GetPayment(ctx context.Context, paymentID string) (*gateway.PaymentResult, error)
}

// errStillPending marks a poll round that saw a non-terminal gateway state.
var errStillPending = errors.New("payment still pending at gateway")

// Poller repeatedly asks the gateway for a payment's state until it turns
// terminal or the attempt budget runs out.
type Poller struct {
	client      gatewayReader
	interval    time.Duration
	maxAttempts int
	logg        *logger.Logger
	metrics     *metrics.PaymentMetrics
}

// NewPoller builds a bounded reconciliation poller.
func NewPoller(client gatewayReader, interval time.Duration, maxAttempts int, logg *logger.Logger, paymentMetrics *metrics.PaymentMetrics) (*Poller, error) {
	if client == nil {
		return nil, fmt.Errorf("gateway client required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if interval <= 0 {
		interval = 1500 * time.Millisecond
	}
	if maxAttempts <= 0 {
		maxAttempts = 10
	}
	return &Poller{
		client:      client,
		interval:    interval,
		maxAttempts: maxAttempts,
		logg:        logg,
		metrics:     paymentMetrics,
	}, nil
}

// Poll returns the terminal gateway result, or nil when the payment was
// still pending after the attempt budget. Context cancellation aborts the
// loop without touching any state.
func (p *Poller) Poll(ctx context.Context, paymentID string) (*gateway.PaymentResult, error) {
	started := time.Now()
	var result *gateway.PaymentResult

	backoff := retry.WithMaxRetries(uint64(p.maxAttempts-1), retry.NewConstant(p.interval))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		current, err := p.client.GetPayment(ctx, paymentID)
		if err != nil {
			if errors.Is(err, gateway.ErrPaymentNotFound) {
				// The gateway may not know the payment yet right after
				// initiation; keep polling.
				return retry.RetryableError(errStillPending)
			}
			return retry.RetryableError(err)
		}
		if !current.Status.IsTerminal() {
			return retry.RetryableError(errStillPending)
		}
		result = current
		return nil
	})

	switch {
	case err == nil:
		p.metrics.ObservePoll(string(result.Status), time.Since(started))
		return result, nil

	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		p.metrics.ObservePoll("cancelled", time.Since(started))
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reconciliation poll aborted")

	case errors.Is(err, errStillPending):
		p.metrics.ObservePoll("timeout", time.Since(started))
		p.logg.Warn(p.logg.WithSessionID(ctx, paymentID), "gateway payment still pending after poll budget")
		return nil, nil

	default:
		p.metrics.ObservePoll("error", time.Since(started))
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "querying gateway")
	}
}
