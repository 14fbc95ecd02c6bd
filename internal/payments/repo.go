package payments

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/seatrelay/seatrelay-backend/pkg/db/models"
	"github.com/seatrelay/seatrelay-backend/pkg/enums"
)

// Repository exposes persistence helpers for payment sessions.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, session *models.PaymentSession) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.PaymentSession, error)
	// CompareAndSwapStatus finalizes a session only while it is still
	// INITIATED. Terminal rows are immutable; a false return means another
	// reporter already finalized the session.
	CompareAndSwapStatus(ctx context.Context, id uuid.UUID, to enums.PaymentSessionStatus, failureReason *string) (bool, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a payment session repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) Create(ctx context.Context, session *models.PaymentSession) error {
	return r.db.WithContext(ctx).Create(session).Error
}

func (r *repositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*models.PaymentSession, error) {
	var session models.PaymentSession
	if err := r.db.WithContext(ctx).First(&session, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *repositoryImpl) CompareAndSwapStatus(ctx context.Context, id uuid.UUID, to enums.PaymentSessionStatus, failureReason *string) (bool, error) {
	updates := map[string]any{"status": to, "updated_at": time.Now().UTC()}
	if failureReason != nil {
		updates["failure_reason"] = *failureReason
	}
	result := r.db.WithContext(ctx).
		Model(&models.PaymentSession{}).
		Where("id = ? AND status = ?", id, enums.PaymentSessionStatusInitiated).
		Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
