//go:build integration

package database_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayushmohite/auctionhouse/internal/auction"
	"github.com/ayushmohite/auctionhouse/internal/infra/database"
	"github.com/ayushmohite/auctionhouse/internal/testhelpers"
	"github.com/ayushmohite/auctionhouse/internal/users"
)

func insertUser(t *testing.T, pool *pgxpool.Pool, name string, role users.Role) uuid.UUID {
	t.Helper()
	id := uuid.New()
	_, err := pool.Exec(context.Background(), `
		INSERT INTO users (id, name, email, password_hash, role, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, id, name, id.String()+"@example.com", "x", role, time.Now())
	require.NoError(t, err)
	return id
}

func insertAuction(t *testing.T, pool *pgxpool.Pool, vendorID uuid.UUID, status auction.Status, winnerID *uuid.UUID, lockedPrice *int64) uuid.UUID {
	t.Helper()
	id := uuid.New()
	now := time.Now()
	_, err := pool.Exec(context.Background(), `
		INSERT INTO auctions (id, vendor_id, item_name, description, image_url, min_bid,
			current_bid, locked_price, status, start_time, end_time, winner_user_id,
			created_at, updated_at)
		VALUES ($1, $2, $3, '', '', 1000, NULL, $4, $5, $6, $7, $8, $9, $9)
	`, id, vendorID, "Item "+id.String()[:8], lockedPrice, status,
		now.Add(-time.Hour), now.Add(time.Hour), winnerID, now)
	require.NoError(t, err)
	return id
}

func insertBid(t *testing.T, pool *pgxpool.Pool, auctionID, userID uuid.UUID, amount int64, at time.Time) {
	t.Helper()
	_, err := pool.Exec(context.Background(), `
		INSERT INTO bids (id, auction_id, user_id, amount, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, uuid.New(), auctionID, userID, amount, at)
	require.NoError(t, err)
}

func TestDashboardRepository(t *testing.T) {
	testDB := testhelpers.NewTestDatabase(t, "../../../migrations")
	defer testDB.Close()

	pool := testDB.Pool
	repo := database.NewPostgresDashboardRepository(pool)
	ctx := context.Background()

	vendorID := insertUser(t, pool, "Vera Vendor", users.RoleVendor)
	aliceID := insertUser(t, pool, "Alice", users.RoleCustomer)
	bobID := insertUser(t, pool, "Bob", users.RoleCustomer)

	// Alice wins one auction, loses another, and one is still open
	finalPrice := int64(9000)
	wonID := insertAuction(t, pool, vendorID, auction.StatusSold, &aliceID, &finalPrice)
	lostPrice := int64(7000)
	lostID := insertAuction(t, pool, vendorID, auction.StatusSold, &bobID, &lostPrice)
	openID := insertAuction(t, pool, vendorID, auction.StatusActive, nil, nil)

	now := time.Now()
	insertBid(t, pool, wonID, bobID, 8000, now.Add(-3*time.Minute))
	insertBid(t, pool, wonID, aliceID, 9000, now.Add(-2*time.Minute))
	insertBid(t, pool, lostID, aliceID, 6000, now.Add(-3*time.Minute))
	insertBid(t, pool, lostID, bobID, 7000, now.Add(-2*time.Minute))
	insertBid(t, pool, openID, aliceID, 2000, now.Add(-time.Minute))

	t.Run("bid history", func(t *testing.T) {
		history, err := repo.GetCustomerBidHistory(ctx, aliceID)
		require.NoError(t, err)
		require.Len(t, history, 3, "one entry per bid placed")

		// Newest bid first
		assert.Equal(t, openID, history[0].AuctionID)
		assert.True(t, history[0].IsHighestBid)

		byAuction := make(map[uuid.UUID]bool)
		for _, e := range history {
			byAuction[e.AuctionID] = e.IsHighestBid
			assert.Equal(t, "Vera Vendor", e.VendorName)
		}
		assert.True(t, byAuction[wonID], "winning bid is still the highest")
		assert.False(t, byAuction[lostID], "outbid entry is flagged")
	})

	t.Run("wins", func(t *testing.T) {
		wins, err := repo.GetCustomerWins(ctx, aliceID)
		require.NoError(t, err)
		require.Len(t, wins, 1)
		assert.Equal(t, wonID, wins[0].AuctionID)
		assert.Equal(t, "Vera Vendor", wins[0].VendorName)
		assert.Equal(t, int64(9000), wins[0].MyWinningBid)

		// Bob won the other auction
		wins, err = repo.GetCustomerWins(ctx, bobID)
		require.NoError(t, err)
		require.Len(t, wins, 1)
		assert.Equal(t, lostID, wins[0].AuctionID)
	})

	t.Run("customer stats", func(t *testing.T) {
		stats, err := repo.GetCustomerStats(ctx, aliceID)
		require.NoError(t, err)
		assert.Equal(t, int64(3), stats.AuctionsParticipated)
		assert.Equal(t, int64(3), stats.BidsPlaced)
		assert.Equal(t, int64(1), stats.Wins)

		// A customer with no bids gets zeroes, not an error
		stats, err = repo.GetCustomerStats(ctx, uuid.New())
		require.NoError(t, err)
		assert.Equal(t, int64(0), stats.BidsPlaced)
	})

	t.Run("marketplace stats", func(t *testing.T) {
		stats, err := repo.GetMarketplaceStats(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), stats.ActiveAuctions)
		assert.Equal(t, int64(2), stats.SoldAuctions)
		assert.Equal(t, int64(3), stats.TotalAuctions)
		assert.Equal(t, int64(1), stats.TotalVendors)
		assert.Equal(t, int64(2), stats.TotalCustomers)
		assert.Equal(t, int64(5), stats.TotalBids)
	})
}
