package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/seatrelay/seatrelay-backend/pkg/enums"
)

// Listing is a ticket listing offered by a seller.
type Listing struct {
	ID          uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	SellerID    uuid.UUID           `gorm:"column:seller_id;type:uuid;not null"`
	Title       string              `gorm:"column:title;type:text;not null"`
	EventName   string              `gorm:"column:event_name;type:text;not null"`
	EventDate   *time.Time          `gorm:"column:event_date"`
	TicketPrice int64               `gorm:"column:ticket_price;not null"`
	Status      enums.ListingStatus `gorm:"column:status;type:text;not null;default:'ACTIVE'"`
	CreatedAt   time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
