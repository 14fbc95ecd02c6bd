package purchases

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/seatrelay/seatrelay-backend/pkg/db/models"
	"github.com/seatrelay/seatrelay-backend/pkg/enums"
)

// Repository exposes persistence helpers for the purchase ledger.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, purchase *models.Purchase) error
	FindByID(ctx context.Context, id int64) (*models.Purchase, error)
	FindByOrderNumber(ctx context.Context, orderNumber string) (*models.Purchase, error)
	FindDetailByOrderNumber(ctx context.Context, orderNumber string) (*PurchaseDetail, error)
	ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]models.Purchase, error)
	// CompareAndSwapStatus advances the status only when the row still holds
	// the expected value. Returning false means another writer got there
	// first; callers re-read to decide whether that matters.
	CompareAndSwapStatus(ctx context.Context, orderNumber string, from, to enums.PurchaseStatus) (bool, error)
	// SetFee writes the settlement fee once; a second call is a no-op.
	SetFee(ctx context.Context, orderNumber string, amount int64, dueAt time.Time) (bool, error)
}

// PurchaseDetail is the joined read model for a single order page.
type PurchaseDetail struct {
	Purchase models.Purchase
	Listing  *models.Listing
	Buyer    *models.User
	Seller   *models.User
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a purchase repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) Create(ctx context.Context, purchase *models.Purchase) error {
	return r.db.WithContext(ctx).Create(purchase).Error
}

func (r *repositoryImpl) FindByID(ctx context.Context, id int64) (*models.Purchase, error) {
	var purchase models.Purchase
	if err := r.db.WithContext(ctx).First(&purchase, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &purchase, nil
}

func (r *repositoryImpl) FindByOrderNumber(ctx context.Context, orderNumber string) (*models.Purchase, error) {
	var purchase models.Purchase
	if err := r.db.WithContext(ctx).First(&purchase, "order_number = ?", orderNumber).Error; err != nil {
		return nil, err
	}
	return &purchase, nil
}

func (r *repositoryImpl) FindDetailByOrderNumber(ctx context.Context, orderNumber string) (*PurchaseDetail, error) {
	purchase, err := r.FindByOrderNumber(ctx, orderNumber)
	if err != nil {
		return nil, err
	}

	detail := &PurchaseDetail{Purchase: *purchase}

	var listing models.Listing
	if err := r.db.WithContext(ctx).First(&listing, "id = ?", purchase.ListingID).Error; err == nil {
		detail.Listing = &listing
	} else if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	var buyer models.User
	if err := r.db.WithContext(ctx).First(&buyer, "id = ?", purchase.BuyerID).Error; err == nil {
		detail.Buyer = &buyer
	} else if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	var seller models.User
	if err := r.db.WithContext(ctx).First(&seller, "id = ?", purchase.SellerID).Error; err == nil {
		detail.Seller = &seller
	} else if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	return detail, nil
}

func (r *repositoryImpl) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]models.Purchase, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	var rows []models.Purchase
	err := r.db.WithContext(ctx).
		Where("buyer_id = ? OR seller_id = ?", userID, userID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repositoryImpl) CompareAndSwapStatus(ctx context.Context, orderNumber string, from, to enums.PurchaseStatus) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Purchase{}).
		Where("order_number = ? AND status = ?", orderNumber, from).
		Updates(map[string]any{"status": to, "updated_at": time.Now().UTC()})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repositoryImpl) SetFee(ctx context.Context, orderNumber string, amount int64, dueAt time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Purchase{}).
		Where("order_number = ? AND fee_amount IS NULL", orderNumber).
		Updates(map[string]any{"fee_amount": amount, "fee_due_at": dueAt})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
