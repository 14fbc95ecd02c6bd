package notifications

import (
	"time"

	"github.com/google/uuid"

	"github.com/seatrelay/seatrelay-backend/pkg/db/models"
	"github.com/seatrelay/seatrelay-backend/pkg/enums"
)

// NotificationDTO is the wire shape for one inbox entry.
type NotificationDTO struct {
	ID        uuid.UUID              `json:"id"`
	ListingID *uuid.UUID             `json:"listing_id,omitempty"`
	Type      enums.NotificationType `json:"type"`
	Message   string                 `json:"message"`
	ReadAt    *time.Time             `json:"read_at,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
}

// ListDTO is one inbox page.
type ListDTO struct {
	Notifications []NotificationDTO `json:"notifications"`
	NextCursor    string            `json:"next_cursor,omitempty"`
}

// ToDTO maps a notification row to its wire shape.
func ToDTO(n models.Notification) NotificationDTO {
	return NotificationDTO{
		ID:        n.ID,
		ListingID: n.ListingID,
		Type:      n.Type,
		Message:   n.Message,
		ReadAt:    n.ReadAt,
		CreatedAt: n.CreatedAt,
	}
}

// ToListDTO maps one page of rows plus its continuation cursor.
func ToListDTO(result ListResult) ListDTO {
	dto := ListDTO{
		Notifications: make([]NotificationDTO, 0, len(result.Notifications)),
		NextCursor:    result.NextCursor,
	}
	for _, n := range result.Notifications {
		dto.Notifications = append(dto.Notifications, ToDTO(n))
	}
	return dto
}
