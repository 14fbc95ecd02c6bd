package notifications

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seatrelay/seatrelay-backend/pkg/enums"
)

func TestForTransitionRecipients(t *testing.T) {
	tc := TransitionContext{
		BuyerID:      uuid.New(),
		SellerID:     uuid.New(),
		ListingID:    uuid.New(),
		ListingTitle: "콘서트 VIP",
	}

	processing := ForTransition(enums.PurchaseStatusProcessing, tc)
	require.NotNil(t, processing)
	assert.Equal(t, tc.BuyerID, processing.UserID)
	assert.Contains(t, processing.Message, "취켓팅이 시작")

	completed := ForTransition(enums.PurchaseStatusCompleted, tc)
	require.NotNil(t, completed)
	assert.Equal(t, tc.BuyerID, completed.UserID)
	assert.Contains(t, completed.Message, "구매 확정을 진행해주세요")

	confirmed := ForTransition(enums.PurchaseStatusConfirmed, tc)
	require.NotNil(t, confirmed)
	assert.Equal(t, tc.SellerID, confirmed.UserID)
	assert.Contains(t, confirmed.Message, "구매가 확정")

	cancelled := ForTransition(enums.PurchaseStatusCancelled, tc)
	require.NotNil(t, cancelled)
	assert.Equal(t, tc.BuyerID, cancelled.UserID)

	assert.Nil(t, ForTransition(enums.PurchaseStatusPending, tc))
}

func TestForTransitionCarriesListing(t *testing.T) {
	tc := TransitionContext{BuyerID: uuid.New(), SellerID: uuid.New(), ListingID: uuid.New(), ListingTitle: "야구 개막전"}

	n := ForTransition(enums.PurchaseStatusProcessing, tc)
	require.NotNil(t, n)
	require.NotNil(t, n.ListingID)
	assert.Equal(t, tc.ListingID, *n.ListingID)
	assert.Equal(t, enums.NotificationTypePurchaseStatus, n.Type)
}
