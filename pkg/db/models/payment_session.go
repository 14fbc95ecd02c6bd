package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/seatrelay/seatrelay-backend/pkg/enums"
)

// PaymentSession is one gateway payment attempt. The id doubles as the
// gateway correlation id and is minted before any gateway call. Terminal
// statuses never change once written.
type PaymentSession struct {
	ID            uuid.UUID                  `gorm:"column:id;type:uuid;primaryKey"`
	PurchaseID    int64                      `gorm:"column:purchase_id;not null;index"`
	Amount        int64                      `gorm:"column:amount;not null"`
	Status        enums.PaymentSessionStatus `gorm:"column:status;type:text;not null;default:'INITIATED'"`
	FailureReason *string                    `gorm:"column:failure_reason;type:text"`
	CreatedAt     time.Time                  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time                  `gorm:"column:updated_at;autoUpdateTime"`
}
