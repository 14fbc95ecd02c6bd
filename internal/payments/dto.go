package payments

import (
	"time"

	"github.com/google/uuid"

	"github.com/seatrelay/seatrelay-backend/pkg/db/models"
	"github.com/seatrelay/seatrelay-backend/pkg/enums"
)

// SessionDTO is the wire shape for a payment session.
type SessionDTO struct {
	SessionID     uuid.UUID                  `json:"session_id"`
	Status        enums.PaymentSessionStatus `json:"status"`
	Amount        int64                      `json:"amount"`
	FailureReason *string                    `json:"failure_reason,omitempty"`
	CreatedAt     time.Time                  `json:"created_at"`
	UpdatedAt     time.Time                  `json:"updated_at"`
}

// InitiateDTO is returned to the client before it is redirected to the gateway.
type InitiateDTO struct {
	SessionID   uuid.UUID `json:"session_id"`
	OrderNumber string    `json:"order_number"`
	Amount      int64     `json:"amount"`
}

// ConfirmDTO reports the reconciled session and purchase after a
// server-side verification round.
type ConfirmDTO struct {
	Session     SessionDTO           `json:"session"`
	OrderNumber string               `json:"order_number"`
	OrderStatus enums.PurchaseStatus `json:"order_status"`
	Settled     bool                 `json:"settled"`
}

// ToSessionDTO maps a session row to its wire shape.
func ToSessionDTO(s models.PaymentSession) SessionDTO {
	return SessionDTO{
		SessionID:     s.ID,
		Status:        s.Status,
		Amount:        s.Amount,
		FailureReason: s.FailureReason,
		CreatedAt:     s.CreatedAt,
		UpdatedAt:     s.UpdatedAt,
	}
}
