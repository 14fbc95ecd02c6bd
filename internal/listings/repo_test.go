package listings

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/seatrelay/seatrelay-backend/pkg/db/models"
	"github.com/seatrelay/seatrelay-backend/pkg/enums"
)

func setupListingDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open("file::memory:?cache=shared&_pragma=foreign_keys(1)"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, conn.Exec(`DROP TABLE IF EXISTS listings`).Error)
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
	return conn
}

func seedListing(t *testing.T, conn *gorm.DB, status enums.ListingStatus) *models.Listing {
	t.Helper()
	listing := &models.Listing{
		ID:          uuid.New(),
		SellerID:    uuid.New(),
		Title:       "Section 110 Row C",
		EventName:   "Championship Final",
		TicketPrice: 85000,
		Status:      status,
	}
	require.NoError(t, conn.Create(listing).Error)
	return listing
}

func TestMarkSoldFlipsActiveListing(t *testing.T) {
	conn := setupListingDB(t)
	repo := NewRepository(conn)
	listing := seedListing(t, conn, enums.ListingStatusActive)

	sold, err := repo.MarkSold(context.Background(), listing.ID)
	require.NoError(t, err)
	assert.True(t, sold)

	found, err := repo.FindByID(context.Background(), listing.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.ListingStatusSold, found.Status)
}

func TestMarkSoldIsNoOpWhenAlreadySold(t *testing.T) {
	conn := setupListingDB(t)
	repo := NewRepository(conn)
	listing := seedListing(t, conn, enums.ListingStatusSold)

	sold, err := repo.MarkSold(context.Background(), listing.ID)
	require.NoError(t, err)
	assert.False(t, sold)
}

func TestFindByIDMissing(t *testing.T) {
	conn := setupListingDB(t)
	repo := NewRepository(conn)

	_, err := repo.FindByID(context.Background(), uuid.New())
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
