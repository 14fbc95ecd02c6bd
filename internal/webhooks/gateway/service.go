package gatewaywebhook

import (
	"context"

	"github.com/google/uuid"

	"github.com/seatrelay/seatrelay-backend/internal/payments"
	pkgerrors "github.com/seatrelay/seatrelay-backend/pkg/errors"
	"github.com/seatrelay/seatrelay-backend/pkg/gateway"
	"github.com/seatrelay/seatrelay-backend/pkg/logger"
	"github.com/seatrelay/seatrelay-backend/pkg/metrics"
)

// Event is the gateway's webhook payload after signature verification.
type Event struct {
	EventID       string         `json:"event_id"`
	PaymentID     string         `json:"payment_id"`
	Status        gateway.Status `json:"status"`
	Amount        int64          `json:"amount"`
	FailureReason string         `json:"failure_reason"`
}

type ServiceParams struct {
	Payments payments.Service
	Logger   *logger.Logger
	Metrics  *metrics.PaymentMetrics
}

type Service struct {
	payments payments.Service
	logg     *logger.Logger
	metrics  *metrics.PaymentMetrics
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Payments == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "payments service required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "logger required")
	}
	return &Service{
		payments: params.Payments,
		logg:     params.Logger,
		metrics:  params.Metrics,
	}, nil
}

// HandleEvent funnels a verified gateway notification into the payment
// ledger. Non-terminal statuses are acknowledged without any state change
// so the gateway stops redelivering them.
func (s *Service) HandleEvent(ctx context.Context, event *Event) error {
	if event == nil || event.PaymentID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "gateway event payment id required")
	}

	if !event.Status.IsTerminal() {
		s.metrics.IncWebhookEvent("ignored")
		return nil
	}

	sessionID, err := uuid.Parse(event.PaymentID)
	if err != nil {
		s.metrics.IncWebhookEvent("error")
		return pkgerrors.New(pkgerrors.CodeValidation, "gateway event payment id is not a session id")
	}

	outcome, err := s.payments.ApplyGatewayResult(ctx, sessionID, &gateway.PaymentResult{
		PaymentID:     event.PaymentID,
		Status:        event.Status,
		Amount:        event.Amount,
		FailureReason: event.FailureReason,
	})
	if err != nil {
		s.metrics.IncWebhookEvent("error")
		return err
	}

	if outcome.Applied {
		s.metrics.IncWebhookEvent("applied")
	} else {
		s.metrics.IncWebhookEvent("replay")
	}
	s.logg.Info(s.logg.WithFields(s.logg.WithSessionID(ctx, event.PaymentID), map[string]any{
		"event_id": event.EventID,
		"applied":  outcome.Applied,
	}), "gateway webhook processed")
	return nil
}
