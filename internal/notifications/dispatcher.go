package notifications

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/seatrelay/seatrelay-backend/pkg/db/models"
	"github.com/seatrelay/seatrelay-backend/pkg/enums"
)

// TransitionContext carries the purchase fields needed to address a
// transition notification.
type TransitionContext struct {
	BuyerID      uuid.UUID
	SellerID     uuid.UUID
	ListingID    uuid.UUID
	ListingTitle string
}

// ForTransition builds the in-app notification for an applied purchase
// transition, or nil when the target status has no notification. The
// recipient is the counterparty of whoever drives the step: fulfillment
// updates go to the buyer, confirmation goes to the seller.
func ForTransition(target enums.PurchaseStatus, tc TransitionContext) *models.Notification {
	var (
		recipient uuid.UUID
		message   string
	)

	switch target {
	case enums.PurchaseStatusProcessing:
		recipient = tc.BuyerID
		message = fmt.Sprintf("%s 티켓의 취켓팅이 시작되었습니다.", tc.ListingTitle)
	case enums.PurchaseStatusCompleted:
		recipient = tc.BuyerID
		message = fmt.Sprintf("%s 티켓의 취켓팅이 완료되었습니다. 구매 확정을 진행해주세요.", tc.ListingTitle)
	case enums.PurchaseStatusConfirmed:
		recipient = tc.SellerID
		message = fmt.Sprintf("%s 티켓 구매가 확정되었습니다.", tc.ListingTitle)
	case enums.PurchaseStatusCancelled:
		recipient = tc.BuyerID
		message = fmt.Sprintf("%s 티켓 결제가 취소되었습니다.", tc.ListingTitle)
	default:
		return nil
	}

	listingID := tc.ListingID
	return &models.Notification{
		ID:        uuid.New(),
		UserID:    recipient,
		ListingID: &listingID,
		Type:      enums.NotificationTypePurchaseStatus,
		Message:   message,
	}
}
