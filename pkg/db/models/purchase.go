package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/seatrelay/seatrelay-backend/pkg/enums"
)

// Purchase is the ledger row for a single order. OrderNumber is the public
// identifier; the numeric id never leaves the service.
type Purchase struct {
	ID            int64                `gorm:"column:id;primaryKey;autoIncrement"`
	OrderNumber   string               `gorm:"column:order_number;type:text;not null;uniqueIndex:idx_purchases_order_number"`
	BuyerID       uuid.UUID            `gorm:"column:buyer_id;type:uuid;not null"`
	SellerID      uuid.UUID            `gorm:"column:seller_id;type:uuid;not null"`
	ListingID     uuid.UUID            `gorm:"column:listing_id;type:uuid;not null"`
	Status        enums.PurchaseStatus `gorm:"column:status;type:text;not null;default:'PENDING'"`
	TotalPrice    int64                `gorm:"column:total_price;not null"`
	SelectedSeats string               `gorm:"column:selected_seats;type:text"`
	FeeAmount     *int64               `gorm:"column:fee_amount"`
	FeeDueAt      *time.Time           `gorm:"column:fee_due_at"`
	CreatedAt     time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}
