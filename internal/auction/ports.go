package auction

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/ayushmohite/auctionhouse/pkg/events"
)

// Repository defines the interface for auction persistence
type Repository interface {
	// CreateAuction inserts a new listing
	CreateAuction(ctx context.Context, a *Auction) error

	// GetAuctionByID retrieves an auction by its ID (non-transactional read)
	GetAuctionByID(ctx context.Context, auctionID uuid.UUID) (*Auction, error)

	// GetAuctionByIDForUpdate retrieves an auction and locks its row.
	// Every mutating operation starts here so concurrent bids, vendor
	// locks and the expiry sweep serialize per auction.
	// Must be called within a transaction.
	GetAuctionByIDForUpdate(ctx context.Context, tx pgx.Tx, auctionID uuid.UUID) (*Auction, error)

	// ListAuctions retrieves every auction, newest first
	ListAuctions(ctx context.Context) ([]*Auction, error)

	// ListActiveAuctions retrieves biddable auctions that have not yet ended
	ListActiveAuctions(ctx context.Context, now time.Time) ([]*Auction, error)

	// ListAuctionsByVendorID retrieves a vendor's listings, newest first
	ListAuctionsByVendorID(ctx context.Context, vendorID uuid.UUID) ([]*Auction, error)

	// ListEndedForUpdate retrieves and locks all biddable auctions whose
	// end time has passed. Must be called within a transaction.
	ListEndedForUpdate(ctx context.Context, tx pgx.Tx, now time.Time) ([]*Auction, error)

	// UpdateCurrentBid sets the running highest price within a transaction
	UpdateCurrentBid(ctx context.Context, tx pgx.Tx, auctionID uuid.UUID, amount int64) error

	// MarkSold closes an auction with a winner and final price
	MarkSold(ctx context.Context, tx pgx.Tx, auctionID, winnerID uuid.UUID, finalPrice int64) error

	// MarkExpired closes an auction that received no bids
	MarkExpired(ctx context.Context, tx pgx.Tx, auctionID uuid.UUID) error

	// UpdateStatus sets the auction status within a transaction
	UpdateStatus(ctx context.Context, tx pgx.Tx, auctionID uuid.UUID, status Status) error

	// DeleteAuction removes the auction row and returns the number of rows removed
	DeleteAuction(ctx context.Context, tx pgx.Tx, auctionID, vendorID uuid.UUID) (int64, error)
}

// BidRepository defines the interface for bid persistence
type BidRepository interface {
	// SaveBid saves a bid within a transaction
	SaveBid(ctx context.Context, tx pgx.Tx, bid *Bid) error

	// GetHighestBid returns the winning-candidate bid for an auction:
	// highest amount, earliest submission on a tie. Returns nil when the
	// auction has no bids. Must be called within the locking transaction.
	GetHighestBid(ctx context.Context, tx pgx.Tx, auctionID uuid.UUID) (*Bid, error)

	// GetMostRecentBid returns the latest bid by submission time, or nil.
	// Used to determine who gets the outbid notification.
	GetMostRecentBid(ctx context.Context, tx pgx.Tx, auctionID uuid.UUID) (*Bid, error)

	// ListBidsByAuctionID retrieves all bids for an auction, highest first
	ListBidsByAuctionID(ctx context.Context, auctionID uuid.UUID) ([]*Bid, error)

	// DeleteBidsByAuctionID removes all bids for an auction within a transaction
	DeleteBidsByAuctionID(ctx context.Context, tx pgx.Tx, auctionID uuid.UUID) error
}

// OutboxRepository defines the interface for outbox event persistence
type OutboxRepository interface {
	// SaveEvent saves an outbox event within a transaction
	SaveEvent(ctx context.Context, tx pgx.Tx, event *events.OutboxEvent) error
}

// ListingCache caches the active-auction listing served on the homepage.
// A miss returns (nil, nil).
type ListingCache interface {
	GetActive(ctx context.Context) ([]*Auction, error)
	SetActive(ctx context.Context, auctions []*Auction) error
	Invalidate(ctx context.Context) error
}
