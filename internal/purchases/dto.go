package purchases

import (
	"time"

	"github.com/google/uuid"

	"github.com/seatrelay/seatrelay-backend/pkg/db/models"
	"github.com/seatrelay/seatrelay-backend/pkg/enums"
)

// PurchaseDTO is the wire shape for a single ledger row.
type PurchaseDTO struct {
	OrderNumber   string               `json:"order_number"`
	Status        enums.PurchaseStatus `json:"status"`
	BuyerID       uuid.UUID            `json:"buyer_id"`
	SellerID      uuid.UUID            `json:"seller_id"`
	ListingID     uuid.UUID            `json:"listing_id"`
	TotalPrice    int64                `json:"total_price"`
	SelectedSeats string               `json:"selected_seats,omitempty"`
	FeeAmount     *int64               `json:"fee_amount,omitempty"`
	FeeDueAt      *time.Time           `json:"fee_due_at,omitempty"`
	CreatedAt     time.Time            `json:"created_at"`
	UpdatedAt     time.Time            `json:"updated_at"`
}

// PartyDTO is the public slice of a counterparty shown on order pages.
type PartyDTO struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}

// ListingDTO is the listing summary embedded in order detail responses.
type ListingDTO struct {
	ID          uuid.UUID           `json:"id"`
	Title       string              `json:"title"`
	EventName   string              `json:"event_name"`
	EventDate   *time.Time          `json:"event_date,omitempty"`
	TicketPrice int64               `json:"ticket_price"`
	Status      enums.ListingStatus `json:"status"`
}

// PurchaseDetailDTO is the joined order page payload.
type PurchaseDetailDTO struct {
	PurchaseDTO
	Listing *ListingDTO `json:"listing,omitempty"`
	Buyer   *PartyDTO   `json:"buyer,omitempty"`
	Seller  *PartyDTO   `json:"seller,omitempty"`
}

// TransitionDTO reports the outcome of a status update request.
type TransitionDTO struct {
	PurchaseDTO
	Changed bool `json:"changed"`
}

// ToDTO maps a ledger row to its wire shape.
func ToDTO(p models.Purchase) PurchaseDTO {
	return PurchaseDTO{
		OrderNumber:   p.OrderNumber,
		Status:        p.Status,
		BuyerID:       p.BuyerID,
		SellerID:      p.SellerID,
		ListingID:     p.ListingID,
		TotalPrice:    p.TotalPrice,
		SelectedSeats: p.SelectedSeats,
		FeeAmount:     p.FeeAmount,
		FeeDueAt:      p.FeeDueAt,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

// ToDetailDTO maps the joined read model to its wire shape.
func ToDetailDTO(d PurchaseDetail) PurchaseDetailDTO {
	dto := PurchaseDetailDTO{PurchaseDTO: ToDTO(d.Purchase)}
	if d.Listing != nil {
		dto.Listing = &ListingDTO{
			ID:          d.Listing.ID,
			Title:       d.Listing.Title,
			EventName:   d.Listing.EventName,
			EventDate:   d.Listing.EventDate,
			TicketPrice: d.Listing.TicketPrice,
			Status:      d.Listing.Status,
		}
	}
	if d.Buyer != nil {
		dto.Buyer = &PartyDTO{ID: d.Buyer.ID, Name: d.Buyer.Name, Email: d.Buyer.Email}
	}
	if d.Seller != nil {
		dto.Seller = &PartyDTO{ID: d.Seller.ID, Name: d.Seller.Name, Email: d.Seller.Email}
	}
	return dto
}
