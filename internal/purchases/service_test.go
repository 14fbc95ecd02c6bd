package purchases

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seatrelay/seatrelay-backend/pkg/db/models"
	"github.com/seatrelay/seatrelay-backend/pkg/enums"
	pkgerrors "github.com/seatrelay/seatrelay-backend/pkg/errors"
)

func TestSellerStartsFulfillment(t *testing.T) {
	f := newFixture(t, enums.PurchaseStatusPending)

	result, err := f.svc.Transition(context.Background(), TransitionInput{
		OrderNumber: f.purchase.OrderNumber,
		Target:      enums.PurchaseStatusProcessing,
		ActorUserID: f.sellerID,
	})
	require.NoError(t, err)
	assert.True(t, result.Changed)
	assert.Equal(t, enums.PurchaseStatusProcessing, result.Purchase.Status)

	var notification models.Notification
	require.NoError(t, f.conn.First(&notification).Error)
	assert.Equal(t, f.buyerID, notification.UserID)
	assert.Contains(t, notification.Message, "취켓팅이 시작")
}

func TestBuyerCannotStartFulfillment(t *testing.T) {
	f := newFixture(t, enums.PurchaseStatusPending)

	_, err := f.svc.Transition(context.Background(), TransitionInput{
		OrderNumber: f.purchase.OrderNumber,
		Target:      enums.PurchaseStatusProcessing,
		ActorUserID: f.buyerID,
	})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeForbidden, pkgerrors.As(err).Code())

	current, readErr := f.repo.FindByOrderNumber(context.Background(), f.purchase.OrderNumber)
	require.NoError(t, readErr)
	assert.Equal(t, enums.PurchaseStatusPending, current.Status)
}

func TestStrangerIsRejected(t *testing.T) {
	f := newFixture(t, enums.PurchaseStatusPending)

	_, err := f.svc.Transition(context.Background(), TransitionInput{
		OrderNumber: f.purchase.OrderNumber,
		Target:      enums.PurchaseStatusProcessing,
		ActorUserID: uuid.New(),
	})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeForbidden, pkgerrors.As(err).Code())
}

func TestSkippingStepsIsRejected(t *testing.T) {
	f := newFixture(t, enums.PurchaseStatusPending)

	_, err := f.svc.Transition(context.Background(), TransitionInput{
		OrderNumber: f.purchase.OrderNumber,
		Target:      enums.PurchaseStatusConfirmed,
		ActorUserID: f.buyerID,
	})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeStateConflict, pkgerrors.As(err).Code())
}

func TestBackwardTransitionIsRejected(t *testing.T) {
	f := newFixture(t, enums.PurchaseStatusCompleted)

	_, err := f.svc.Transition(context.Background(), TransitionInput{
		OrderNumber: f.purchase.OrderNumber,
		Target:      enums.PurchaseStatusProcessing,
		ActorUserID: f.sellerID,
	})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeStateConflict, pkgerrors.As(err).Code())
}

func TestSameStatusIsIdempotentNoOp(t *testing.T) {
	f := newFixture(t, enums.PurchaseStatusProcessing)

	result, err := f.svc.Transition(context.Background(), TransitionInput{
		OrderNumber: f.purchase.OrderNumber,
		Target:      enums.PurchaseStatusProcessing,
		ActorUserID: f.sellerID,
	})
	require.NoError(t, err)
	assert.False(t, result.Changed)
	assert.Zero(t, f.notificationCount(t))
}

func TestInvalidStatusValue(t *testing.T) {
	f := newFixture(t, enums.PurchaseStatusPending)

	_, err := f.svc.Transition(context.Background(), TransitionInput{
		OrderNumber: f.purchase.OrderNumber,
		Target:      enums.PurchaseStatus("SHIPPED"),
		ActorUserID: f.sellerID,
	})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

func TestUnknownOrderNumber(t *testing.T) {
	f := newFixture(t, enums.PurchaseStatusPending)

	_, err := f.svc.Transition(context.Background(), TransitionInput{
		OrderNumber: "ORD-20260901-XXXXXX",
		Target:      enums.PurchaseStatusProcessing,
		ActorUserID: f.sellerID,
	})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}

func TestConfirmationSettlesFeeAndSellsListing(t *testing.T) {
	f := newFixture(t, enums.PurchaseStatusCompleted)
	before := time.Now()

	result, err := f.svc.Transition(context.Background(), TransitionInput{
		OrderNumber: f.purchase.OrderNumber,
		Target:      enums.PurchaseStatusConfirmed,
		ActorUserID: f.buyerID,
	})
	require.NoError(t, err)
	assert.True(t, result.Changed)
	assert.Equal(t, enums.PurchaseStatusConfirmed, result.Purchase.Status)

	require.NotNil(t, result.Purchase.FeeAmount)
	assert.Equal(t, int64(5500), *result.Purchase.FeeAmount)
	require.NotNil(t, result.Purchase.FeeDueAt)
	due := *result.Purchase.FeeDueAt
	assert.WithinDuration(t, before.Add(24*time.Hour), due, time.Minute)

	var listing models.Listing
	require.NoError(t, f.conn.First(&listing, "id = ?", f.listing.ID).Error)
	assert.Equal(t, enums.ListingStatusSold, listing.Status)

	var notification models.Notification
	require.NoError(t, f.conn.First(&notification).Error)
	assert.Equal(t, f.sellerID, notification.UserID)
	assert.Contains(t, notification.Message, "구매가 확정")
}

func TestConfirmationByEitherParty(t *testing.T) {
	f := newFixture(t, enums.PurchaseStatusCompleted)

	result, err := f.svc.Transition(context.Background(), TransitionInput{
		OrderNumber: f.purchase.OrderNumber,
		Target:      enums.PurchaseStatusConfirmed,
		ActorUserID: f.sellerID,
	})
	require.NoError(t, err)
	assert.True(t, result.Changed)
}

func TestRepeatedConfirmationDoesNotDoubleCharge(t *testing.T) {
	f := newFixture(t, enums.PurchaseStatusCompleted)
	ctx := context.Background()

	first, err := f.svc.Transition(ctx, TransitionInput{
		OrderNumber: f.purchase.OrderNumber,
		Target:      enums.PurchaseStatusConfirmed,
		ActorUserID: f.buyerID,
	})
	require.NoError(t, err)
	require.NotNil(t, first.Purchase.FeeAmount)

	second, err := f.svc.Transition(ctx, TransitionInput{
		OrderNumber: f.purchase.OrderNumber,
		Target:      enums.PurchaseStatusConfirmed,
		ActorUserID: f.sellerID,
	})
	require.NoError(t, err)
	assert.False(t, second.Changed)
	require.NotNil(t, second.Purchase.FeeAmount)
	assert.Equal(t, *first.Purchase.FeeAmount, *second.Purchase.FeeAmount)
	assert.Equal(t, *first.Purchase.FeeDueAt, *second.Purchase.FeeDueAt)
}

func TestSystemCancelsPendingPurchase(t *testing.T) {
	f := newFixture(t, enums.PurchaseStatusPending)

	result, err := f.svc.Transition(context.Background(), TransitionInput{
		OrderNumber: f.purchase.OrderNumber,
		Target:      enums.PurchaseStatusCancelled,
		System:      true,
	})
	require.NoError(t, err)
	assert.True(t, result.Changed)
	assert.Equal(t, enums.PurchaseStatusCancelled, result.Purchase.Status)
}

func TestUserCannotCancel(t *testing.T) {
	f := newFixture(t, enums.PurchaseStatusPending)

	_, err := f.svc.Transition(context.Background(), TransitionInput{
		OrderNumber: f.purchase.OrderNumber,
		Target:      enums.PurchaseStatusCancelled,
		ActorUserID: f.buyerID,
	})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeForbidden, pkgerrors.As(err).Code())
}

func TestCancelAfterFulfillmentStartIsRejected(t *testing.T) {
	f := newFixture(t, enums.PurchaseStatusProcessing)

	_, err := f.svc.Transition(context.Background(), TransitionInput{
		OrderNumber: f.purchase.OrderNumber,
		Target:      enums.PurchaseStatusCancelled,
		System:      true,
	})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeStateConflict, pkgerrors.As(err).Code())
}

func TestGetDetailOwnerOnly(t *testing.T) {
	f := newFixture(t, enums.PurchaseStatusPending)
	ctx := context.Background()

	detail, err := f.svc.GetDetail(ctx, f.purchase.OrderNumber, f.buyerID)
	require.NoError(t, err)
	assert.Equal(t, f.purchase.OrderNumber, detail.Purchase.OrderNumber)

	_, err = f.svc.GetDetail(ctx, f.purchase.OrderNumber, uuid.New())
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeForbidden, pkgerrors.As(err).Code())
}
