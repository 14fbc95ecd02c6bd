package purchases

import (
	"context"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/seatrelay/seatrelay-backend/internal/listings"
	"github.com/seatrelay/seatrelay-backend/internal/notifications"
	"github.com/seatrelay/seatrelay-backend/pkg/db/models"
	"github.com/seatrelay/seatrelay-backend/pkg/enums"
	"github.com/seatrelay/seatrelay-backend/pkg/logger"
)

// sqliteTxRunner mirrors the production transaction runner on the test database.
type sqliteTxRunner struct {
	conn *gorm.DB
}

func (r *sqliteTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	tx := r.conn.WithContext(ctx).Begin()
	if tx.Error != nil {
		return tx.Error
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit().Error
}

func setupPurchaseDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	for _, table := range []string{"purchases", "listings", "notifications", "users"} {
		require.NoError(t, conn.Exec(`DROP TABLE IF EXISTS `+table).Error)
	}
	require.NoError(t, conn.Exec(`CREATE TABLE purchases (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		order_number TEXT NOT NULL UNIQUE,
		buyer_id TEXT NOT NULL,
		seller_id TEXT NOT NULL,
		listing_id TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'PENDING',
		total_price INTEGER NOT NULL,
		selected_seats TEXT,
		fee_amount INTEGER,
		fee_due_at DATETIME,
		created_at DATETIME,
		updated_at DATETIME
	)`).Error)
	require.NoError(t, conn.Exec(`CREATE TABLE listings (
		id TEXT PRIMARY KEY,
		seller_id TEXT NOT NULL,
		title TEXT NOT NULL,
		event_name TEXT NOT NULL,
		event_date DATETIME,
		ticket_price INTEGER NOT NULL,
		status TEXT NOT NULL DEFAULT 'ACTIVE',
		created_at DATETIME,
		updated_at DATETIME
	)`).Error)
	require.NoError(t, conn.Exec(`CREATE TABLE notifications (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		listing_id TEXT,
		type TEXT NOT NULL,
		message TEXT NOT NULL,
		read_at DATETIME,
		created_at DATETIME
	)`).Error)
	require.NoError(t, conn.Exec(`CREATE TABLE users (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT NOT NULL,
		created_at DATETIME,
		updated_at DATETIME
	)`).Error)
	return conn
}

type fixture struct {
	conn     *gorm.DB
	svc      Service
	repo     Repository
	buyerID  uuid.UUID
	sellerID uuid.UUID
	listing  *models.Listing
	purchase *models.Purchase
}

func newFixture(t *testing.T, status enums.PurchaseStatus) *fixture {
	t.Helper()
	conn := setupPurchaseDB(t)

	buyerID := uuid.New()
	sellerID := uuid.New()

	require.NoError(t, conn.Create(&models.User{ID: buyerID, Name: "Buyer Kim", Email: "buyer@example.com"}).Error)
	require.NoError(t, conn.Create(&models.User{ID: sellerID, Name: "Seller Lee", Email: "seller@example.com"}).Error)

	listing := &models.Listing{
		ID:          uuid.New(),
		SellerID:    sellerID,
		Title:       "뮤지컬 R석",
		EventName:   "Spring Musical",
		TicketPrice: 55000,
		Status:      enums.ListingStatusActive,
	}
	require.NoError(t, conn.Create(listing).Error)

	purchase := &models.Purchase{
		OrderNumber: "ORD-20260901-TEST01",
		BuyerID:     buyerID,
		SellerID:    sellerID,
		ListingID:   listing.ID,
		Status:      status,
		TotalPrice:  55000,
	}
	require.NoError(t, conn.Create(purchase).Error)

	repo := NewRepository(conn)
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	svc, err := NewService(
		repo,
		listings.NewRepository(conn),
		notifications.NewRepository(conn),
		&sqliteTxRunner{conn: conn},
		logg,
		nil,
		FeePolicy{},
	)
	require.NoError(t, err)

	return &fixture{
		conn:     conn,
		svc:      svc,
		repo:     repo,
		buyerID:  buyerID,
		sellerID: sellerID,
		listing:  listing,
		purchase: purchase,
	}
}

func (f *fixture) notificationCount(t *testing.T) int64 {
	t.Helper()
	var count int64
	require.NoError(t, f.conn.Model(&models.Notification{}).Count(&count).Error)
	return count
}
