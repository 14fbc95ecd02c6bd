package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/seatrelay/seatrelay-backend/pkg/enums"
)

// Notification stores in-app notification payloads per user.
type Notification struct {
	ID        uuid.UUID              `gorm:"column:id;type:uuid;primaryKey"`
	UserID    uuid.UUID              `gorm:"column:user_id;type:uuid;not null;index"`
	ListingID *uuid.UUID             `gorm:"column:listing_id;type:uuid"`
	Type      enums.NotificationType `gorm:"column:type;type:text;not null"`
	Message   string                 `gorm:"column:message;type:text;not null"`
	ReadAt    *time.Time             `gorm:"column:read_at"`
	CreatedAt time.Time              `gorm:"column:created_at;autoCreateTime"`
}
