//go:build integration

package auction_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayushmohite/auctionhouse/internal/auction"
	infradb "github.com/ayushmohite/auctionhouse/internal/infra/database"
	"github.com/ayushmohite/auctionhouse/internal/testhelpers"
	"github.com/ayushmohite/auctionhouse/pkg/database"
)

// seedUser inserts a user row so auction and bid foreign keys resolve
func seedUser(t *testing.T, pool *pgxpool.Pool, role string) uuid.UUID {
	t.Helper()
	id := uuid.New()
	_, err := pool.Exec(context.Background(), `
		INSERT INTO users (id, name, email, password_hash, role, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, id, "Test "+role, id.String()+"@example.com", "x", role, time.Now())
	require.NoError(t, err, "Failed to seed user")
	return id
}

// seedAuction inserts an auction row directly, bypassing the service
func seedAuction(t *testing.T, pool *pgxpool.Pool, a *auction.Auction) {
	t.Helper()
	now := time.Now()
	_, err := pool.Exec(context.Background(), `
		INSERT INTO auctions (id, vendor_id, item_name, description, image_url, min_bid,
			current_bid, locked_price, status, start_time, end_time, winner_user_id,
			created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`, a.ID, a.VendorID, a.ItemName, a.Description, a.ImageURL, a.MinBid,
		a.CurrentBid, a.LockedPrice, a.Status, a.StartTime, a.EndTime, a.WinnerUserID,
		now, now)
	require.NoError(t, err, "Failed to seed auction")
}

func countOutboxEvents(t *testing.T, pool *pgxpool.Pool, eventType string) int {
	t.Helper()
	var count int
	err := pool.QueryRow(context.Background(),
		`SELECT COUNT(*) FROM outbox_events WHERE event_type = $1`, eventType).Scan(&count)
	require.NoError(t, err)
	return count
}

func setupService(pool *pgxpool.Pool) *auction.Service {
	txManager := database.NewPostgresTransactionManager(pool, 5*time.Second)
	auctionRepo := infradb.NewPostgresAuctionRepository(pool)
	bidRepo := infradb.NewPostgresBidRepository(pool)
	outboxRepo := infradb.NewPostgresOutboxRepository(pool)
	return auction.NewService(txManager, auctionRepo, bidRepo, outboxRepo, nil, false)
}

func TestService_PlaceBid(t *testing.T) {
	testDB := testhelpers.NewTestDatabase(t, "../../migrations")
	defer testDB.Close()

	pool := testDB.Pool
	svc := setupService(pool)
	ctx := context.Background()

	vendorID := seedUser(t, pool, "vendor")
	aliceID := seedUser(t, pool, "customer")
	bobID := seedUser(t, pool, "customer")

	auctionID := uuid.New()
	seedAuction(t, pool, &auction.Auction{
		ID:        auctionID,
		VendorID:  vendorID,
		ItemName:  "Vintage Guitar",
		MinBid:    100000,
		Status:    auction.StatusActive,
		StartTime: time.Now(),
		EndTime:   time.Now().Add(24 * time.Hour),
	})

	// First bid: accepted, nobody outbid
	result, err := svc.PlaceBid(ctx, auction.PlaceBidCommand{
		AuctionID: auctionID,
		UserID:    aliceID,
		Amount:    150000,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(150000), result.Bid.Amount)
	assert.Nil(t, result.PreviousBidderID)
	assert.Equal(t, 0, countOutboxEvents(t, pool, "auction.outbid"))

	// Second bid by another user: previous bidder reported and notified
	result, err = svc.PlaceBid(ctx, auction.PlaceBidCommand{
		AuctionID: auctionID,
		UserID:    bobID,
		Amount:    200000,
	})
	require.NoError(t, err)
	require.NotNil(t, result.PreviousBidderID)
	assert.Equal(t, aliceID, *result.PreviousBidderID)
	assert.Equal(t, 1, countOutboxEvents(t, pool, "auction.outbid"))

	// Raising your own bid reports you as previous bidder but sends nothing
	result, err = svc.PlaceBid(ctx, auction.PlaceBidCommand{
		AuctionID: auctionID,
		UserID:    bobID,
		Amount:    250000,
	})
	require.NoError(t, err)
	require.NotNil(t, result.PreviousBidderID)
	assert.Equal(t, bobID, *result.PreviousBidderID)
	assert.Equal(t, 1, countOutboxEvents(t, pool, "auction.outbid"))

	// Current bid tracks the latest accepted amount
	a, err := svc.GetAuction(ctx, auctionID)
	require.NoError(t, err)
	require.NotNil(t, a.CurrentBid)
	assert.Equal(t, int64(250000), *a.CurrentBid)

	// Too-low and stale bids are rejected
	_, err = svc.PlaceBid(ctx, auction.PlaceBidCommand{
		AuctionID: auctionID,
		UserID:    aliceID,
		Amount:    250000,
	})
	assert.ErrorIs(t, err, auction.ErrBidTooLow)

	_, err = svc.PlaceBid(ctx, auction.PlaceBidCommand{
		AuctionID: uuid.New(),
		UserID:    aliceID,
		Amount:    300000,
	})
	assert.ErrorIs(t, err, auction.ErrAuctionNotFound)
}

func TestService_PlaceBid_ConcurrentBidsSerialize(t *testing.T) {
	testDB := testhelpers.NewTestDatabase(t, "../../migrations")
	defer testDB.Close()

	pool := testDB.Pool
	svc := setupService(pool)
	ctx := context.Background()

	vendorID := seedUser(t, pool, "vendor")
	auctionID := uuid.New()
	seedAuction(t, pool, &auction.Auction{
		ID:        auctionID,
		VendorID:  vendorID,
		ItemName:  "Rare Stamp",
		MinBid:    1000,
		Status:    auction.StatusActive,
		StartTime: time.Now(),
		EndTime:   time.Now().Add(time.Hour),
	})

	const bidders = 10
	var wg sync.WaitGroup
	errs := make([]error, bidders)

	for i := 0; i < bidders; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			userID := seedUser(t, pool, "customer")
			_, errs[n] = svc.PlaceBid(ctx, auction.PlaceBidCommand{
				AuctionID: auctionID,
				UserID:    userID,
				Amount:    int64(2000 + n*100),
			})
		}(i)
	}
	wg.Wait()

	// Every attempt either won the race or lost to a higher committed bid
	accepted := 0
	for _, err := range errs {
		if err == nil {
			accepted++
		} else {
			assert.ErrorIs(t, err, auction.ErrBidTooLow)
		}
	}
	require.Greater(t, accepted, 0)

	// The recorded price must be the highest accepted bid
	a, err := svc.GetAuction(ctx, auctionID)
	require.NoError(t, err)
	require.NotNil(t, a.CurrentBid)

	bids, err := svc.ListBids(ctx, auctionID)
	require.NoError(t, err)
	require.Len(t, bids, accepted)
	assert.Equal(t, bids[0].Amount, *a.CurrentBid)
}

func TestService_LockAuction(t *testing.T) {
	testDB := testhelpers.NewTestDatabase(t, "../../migrations")
	defer testDB.Close()

	pool := testDB.Pool
	svc := setupService(pool)
	ctx := context.Background()

	vendorID := seedUser(t, pool, "vendor")
	otherVendorID := seedUser(t, pool, "vendor")
	aliceID := seedUser(t, pool, "customer")
	bobID := seedUser(t, pool, "customer")

	auctionID := uuid.New()
	seedAuction(t, pool, &auction.Auction{
		ID:        auctionID,
		VendorID:  vendorID,
		ItemName:  "Oil Painting",
		MinBid:    50000,
		Status:    auction.StatusActive,
		StartTime: time.Now(),
		EndTime:   time.Now().Add(24 * time.Hour),
	})

	// No bids yet: nothing to lock
	_, err := svc.LockAuction(ctx, auctionID, vendorID)
	assert.ErrorIs(t, err, auction.ErrNoBids)

	_, err = svc.PlaceBid(ctx, auction.PlaceBidCommand{AuctionID: auctionID, UserID: aliceID, Amount: 60000})
	require.NoError(t, err)
	_, err = svc.PlaceBid(ctx, auction.PlaceBidCommand{AuctionID: auctionID, UserID: bobID, Amount: 70000})
	require.NoError(t, err)

	// Only the owner may lock
	_, err = svc.LockAuction(ctx, auctionID, otherVendorID)
	assert.ErrorIs(t, err, auction.ErrForbidden)

	result, err := svc.LockAuction(ctx, auctionID, vendorID)
	require.NoError(t, err)
	assert.Equal(t, bobID, result.WinnerID)
	assert.Equal(t, int64(70000), result.FinalPrice)
	assert.Equal(t, 1, countOutboxEvents(t, pool, "auction.sold"))

	a, err := svc.GetAuction(ctx, auctionID)
	require.NoError(t, err)
	assert.Equal(t, auction.StatusSold, a.Status)
	require.NotNil(t, a.WinnerUserID)
	assert.Equal(t, bobID, *a.WinnerUserID)
	require.NotNil(t, a.LockedPrice)
	assert.Equal(t, int64(70000), *a.LockedPrice)

	// A sold auction cannot be locked again or bid on
	_, err = svc.LockAuction(ctx, auctionID, vendorID)
	assert.ErrorIs(t, err, auction.ErrAlreadyLocked)

	_, err = svc.PlaceBid(ctx, auction.PlaceBidCommand{AuctionID: auctionID, UserID: aliceID, Amount: 90000})
	assert.ErrorIs(t, err, auction.ErrAuctionNotActive)
}

func TestService_ExpireAuctions(t *testing.T) {
	testDB := testhelpers.NewTestDatabase(t, "../../migrations")
	defer testDB.Close()

	pool := testDB.Pool
	svc := setupService(pool)
	ctx := context.Background()

	vendorID := seedUser(t, pool, "vendor")
	aliceID := seedUser(t, pool, "customer")
	bobID := seedUser(t, pool, "customer")

	// Ended with bids: goes to alice, who bid highest
	withBids := uuid.New()
	seedAuction(t, pool, &auction.Auction{
		ID:        withBids,
		VendorID:  vendorID,
		ItemName:  "Pocket Watch",
		MinBid:    1000,
		Status:    auction.StatusActive,
		StartTime: time.Now().Add(-2 * time.Hour),
		EndTime:   time.Now().Add(time.Minute),
	})
	_, err := svc.PlaceBid(ctx, auction.PlaceBidCommand{AuctionID: withBids, UserID: bobID, Amount: 2000})
	require.NoError(t, err)
	_, err = svc.PlaceBid(ctx, auction.PlaceBidCommand{AuctionID: withBids, UserID: aliceID, Amount: 5000})
	require.NoError(t, err)

	// Ended without bids: expires
	noBids := uuid.New()
	seedAuction(t, pool, &auction.Auction{
		ID:        noBids,
		VendorID:  vendorID,
		ItemName:  "Old Typewriter",
		MinBid:    1000,
		Status:    auction.StatusActive,
		StartTime: time.Now().Add(-2 * time.Hour),
		EndTime:   time.Now().Add(-time.Hour),
	})

	// Still running: must not be touched
	stillOpen := uuid.New()
	seedAuction(t, pool, &auction.Auction{
		ID:        stillOpen,
		VendorID:  vendorID,
		ItemName:  "Chess Set",
		MinBid:    1000,
		Status:    auction.StatusActive,
		StartTime: time.Now(),
		EndTime:   time.Now().Add(24 * time.Hour),
	})

	// Push the first auction past its end
	_, err = pool.Exec(ctx, `UPDATE auctions SET end_time = $1 WHERE id = $2`,
		time.Now().Add(-time.Second), withBids)
	require.NoError(t, err)

	processed, err := svc.ExpireAuctions(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, processed)

	a, err := svc.GetAuction(ctx, withBids)
	require.NoError(t, err)
	assert.Equal(t, auction.StatusSold, a.Status)
	require.NotNil(t, a.WinnerUserID)
	assert.Equal(t, aliceID, *a.WinnerUserID)
	require.NotNil(t, a.LockedPrice)
	assert.Equal(t, int64(5000), *a.LockedPrice)
	assert.Equal(t, 1, countOutboxEvents(t, pool, "auction.sold"))

	a, err = svc.GetAuction(ctx, noBids)
	require.NoError(t, err)
	assert.Equal(t, auction.StatusExpired, a.Status)
	assert.Nil(t, a.WinnerUserID)

	a, err = svc.GetAuction(ctx, stillOpen)
	require.NoError(t, err)
	assert.Equal(t, auction.StatusActive, a.Status)

	// A second sweep finds nothing to do
	processed, err = svc.ExpireAuctions(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, processed)
	assert.Equal(t, 1, countOutboxEvents(t, pool, "auction.sold"))
}

func TestService_SetStatus(t *testing.T) {
	testDB := testhelpers.NewTestDatabase(t, "../../migrations")
	defer testDB.Close()

	pool := testDB.Pool
	svc := setupService(pool)
	ctx := context.Background()

	vendorID := seedUser(t, pool, "vendor")
	auctionID := uuid.New()
	seedAuction(t, pool, &auction.Auction{
		ID:        auctionID,
		VendorID:  vendorID,
		ItemName:  "Silver Coin",
		MinBid:    1000,
		Status:    auction.StatusPending,
		StartTime: time.Now(),
		EndTime:   time.Now().Add(24 * time.Hour),
	})

	// Admins cannot resolve an auction directly: sold and expired come
	// only from the lock and expiry paths, which also set the winner
	assert.ErrorIs(t, svc.SetStatus(ctx, auctionID, auction.StatusSold), auction.ErrInvalidState)
	assert.ErrorIs(t, svc.SetStatus(ctx, auctionID, auction.StatusExpired), auction.ErrInvalidState)

	require.NoError(t, svc.SetStatus(ctx, auctionID, auction.StatusApproved))

	a, err := svc.GetAuction(ctx, auctionID)
	require.NoError(t, err)
	assert.Equal(t, auction.StatusApproved, a.Status)
	assert.Nil(t, a.WinnerUserID)

	// Once out of pending, no further admin transitions are allowed
	assert.ErrorIs(t, svc.SetStatus(ctx, auctionID, auction.StatusApproved), auction.ErrInvalidState)
	assert.ErrorIs(t, svc.SetStatus(ctx, auctionID, auction.StatusPending), auction.ErrInvalidState)
	assert.ErrorIs(t, svc.SetStatus(ctx, auctionID, auction.StatusSold), auction.ErrInvalidState)
	assert.ErrorIs(t, svc.SetStatus(ctx, auctionID, auction.StatusExpired), auction.ErrInvalidState)

	assert.ErrorIs(t, svc.SetStatus(ctx, uuid.New(), auction.StatusApproved), auction.ErrAuctionNotFound)

	// Rejection is the other valid admin move
	rejectedID := uuid.New()
	seedAuction(t, pool, &auction.Auction{
		ID:        rejectedID,
		VendorID:  vendorID,
		ItemName:  "Dubious Listing",
		MinBid:    1000,
		Status:    auction.StatusPending,
		StartTime: time.Now(),
		EndTime:   time.Now().Add(24 * time.Hour),
	})
	require.NoError(t, svc.SetStatus(ctx, rejectedID, auction.StatusRejected))
}

func TestService_DeleteAuction(t *testing.T) {
	testDB := testhelpers.NewTestDatabase(t, "../../migrations")
	defer testDB.Close()

	pool := testDB.Pool
	svc := setupService(pool)
	ctx := context.Background()

	vendorID := seedUser(t, pool, "vendor")
	otherVendorID := seedUser(t, pool, "vendor")

	pendingID := uuid.New()
	seedAuction(t, pool, &auction.Auction{
		ID:        pendingID,
		VendorID:  vendorID,
		ItemName:  "Draft Listing",
		MinBid:    1000,
		Status:    auction.StatusPending,
		StartTime: time.Now(),
		EndTime:   time.Now().Add(24 * time.Hour),
	})

	activeID := uuid.New()
	seedAuction(t, pool, &auction.Auction{
		ID:        activeID,
		VendorID:  vendorID,
		ItemName:  "Live Listing",
		MinBid:    1000,
		Status:    auction.StatusActive,
		StartTime: time.Now(),
		EndTime:   time.Now().Add(24 * time.Hour),
	})

	// Only the owner may delete
	_, err := svc.DeleteAuction(ctx, pendingID, otherVendorID)
	assert.ErrorIs(t, err, auction.ErrForbidden)

	// Live listings cannot be deleted
	_, err = svc.DeleteAuction(ctx, activeID, vendorID)
	assert.ErrorIs(t, err, auction.ErrInvalidState)

	deleted, err := svc.DeleteAuction(ctx, pendingID, vendorID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	_, err = svc.GetAuction(ctx, pendingID)
	assert.ErrorIs(t, err, auction.ErrAuctionNotFound)
}

func TestService_CreateAuction(t *testing.T) {
	testDB := testhelpers.NewTestDatabase(t, "../../migrations")
	defer testDB.Close()

	pool := testDB.Pool
	ctx := context.Background()

	vendorID := seedUser(t, pool, "vendor")

	// Default policy: listings go straight to active
	svc := setupService(pool)
	a, err := svc.CreateAuction(ctx, auction.CreateAuctionCommand{
		VendorID:  vendorID,
		ItemName:  "Brass Telescope",
		MinBid:    20000,
		StartTime: time.Now(),
		EndTime:   time.Now().Add(48 * time.Hour),
	})
	require.NoError(t, err)
	assert.Equal(t, auction.StatusActive, a.Status)

	// A zero minimum survives validation and the schema check
	a, err = svc.CreateAuction(ctx, auction.CreateAuctionCommand{
		VendorID:  vendorID,
		ItemName:  "No Reserve Lot",
		MinBid:    0,
		StartTime: time.Now(),
		EndTime:   time.Now().Add(48 * time.Hour),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(0), a.MinBid)

	// Approval policy: listings start pending
	txManager := database.NewPostgresTransactionManager(pool, 5*time.Second)
	gated := auction.NewService(txManager,
		infradb.NewPostgresAuctionRepository(pool),
		infradb.NewPostgresBidRepository(pool),
		infradb.NewPostgresOutboxRepository(pool),
		nil, true)

	a, err = gated.CreateAuction(ctx, auction.CreateAuctionCommand{
		VendorID:  vendorID,
		ItemName:  "Gated Listing",
		MinBid:    20000,
		StartTime: time.Now(),
		EndTime:   time.Now().Add(48 * time.Hour),
	})
	require.NoError(t, err)
	assert.Equal(t, auction.StatusPending, a.Status)
}
