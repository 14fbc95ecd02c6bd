package gatewaywebhook

import (
	"context"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seatrelay/seatrelay-backend/internal/payments"
	"github.com/seatrelay/seatrelay-backend/pkg/db/models"
	"github.com/seatrelay/seatrelay-backend/pkg/enums"
	pkgerrors "github.com/seatrelay/seatrelay-backend/pkg/errors"
	"github.com/seatrelay/seatrelay-backend/pkg/gateway"
	"github.com/seatrelay/seatrelay-backend/pkg/logger"
)

type fakePayments struct {
	payments.Service

	applied   []uuid.UUID
	lastInput *gateway.PaymentResult
	outcome   *payments.ApplyOutcome
	err       error
}

func (f *fakePayments) ApplyGatewayResult(ctx context.Context, sessionID uuid.UUID, result *gateway.PaymentResult) (*payments.ApplyOutcome, error) {
	f.applied = append(f.applied, sessionID)
	f.lastInput = result
	if f.err != nil {
		return nil, f.err
	}
	if f.outcome != nil {
		return f.outcome, nil
	}
	return &payments.ApplyOutcome{
		Session: models.PaymentSession{ID: sessionID, Status: enums.PaymentSessionStatusDone},
		Applied: true,
	}, nil
}

func newWebhookService(t *testing.T, fake *fakePayments) *Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Payments: fake,
		Logger:   logger.New(logger.Options{ServiceName: "test", Output: io.Discard}),
	})
	require.NoError(t, err)
	return svc
}

func TestHandleEventAppliesTerminalStatus(t *testing.T) {
	fake := &fakePayments{}
	svc := newWebhookService(t, fake)
	sessionID := uuid.New()

	err := svc.HandleEvent(context.Background(), &Event{
		EventID:   "evt-1",
		PaymentID: sessionID.String(),
		Status:    gateway.StatusPaid,
		Amount:    55000,
	})
	require.NoError(t, err)
	require.Len(t, fake.applied, 1)
	assert.Equal(t, sessionID, fake.applied[0])
	assert.Equal(t, gateway.StatusPaid, fake.lastInput.Status)
	assert.Equal(t, int64(55000), fake.lastInput.Amount)
}

func TestHandleEventIgnoresNonTerminalStatus(t *testing.T) {
	fake := &fakePayments{}
	svc := newWebhookService(t, fake)

	err := svc.HandleEvent(context.Background(), &Event{
		EventID:   "evt-2",
		PaymentID: uuid.NewString(),
		Status:    gateway.StatusReady,
	})
	require.NoError(t, err)
	assert.Empty(t, fake.applied)
}

func TestHandleEventRejectsMalformedPaymentID(t *testing.T) {
	fake := &fakePayments{}
	svc := newWebhookService(t, fake)

	err := svc.HandleEvent(context.Background(), &Event{
		EventID:   "evt-3",
		PaymentID: "not-a-uuid",
		Status:    gateway.StatusPaid,
	})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
	assert.Empty(t, fake.applied)
}

func TestHandleEventTreatsReplayAsSuccess(t *testing.T) {
	sessionID := uuid.New()
	fake := &fakePayments{outcome: &payments.ApplyOutcome{
		Session: models.PaymentSession{ID: sessionID, Status: enums.PaymentSessionStatusDone},
		Applied: false,
	}}
	svc := newWebhookService(t, fake)

	err := svc.HandleEvent(context.Background(), &Event{
		EventID:   "evt-4",
		PaymentID: sessionID.String(),
		Status:    gateway.StatusFailed,
	})
	require.NoError(t, err)
}

func TestHandleEventPropagatesApplyError(t *testing.T) {
	fake := &fakePayments{err: pkgerrors.New(pkgerrors.CodeNotFound, "payment session not found")}
	svc := newWebhookService(t, fake)

	err := svc.HandleEvent(context.Background(), &Event{
		EventID:   "evt-5",
		PaymentID: uuid.NewString(),
		Status:    gateway.StatusPaid,
	})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}
