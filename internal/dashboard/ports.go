package dashboard

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the read-only aggregate queries behind the dashboards
type Repository interface {
	// GetCustomerBidHistory retrieves a customer's bids with their
	// auctions, newest bid first
	GetCustomerBidHistory(ctx context.Context, customerID uuid.UUID) ([]*BidHistoryEntry, error)

	// GetCustomerWins retrieves sold auctions the customer won, most
	// recently ended first
	GetCustomerWins(ctx context.Context, customerID uuid.UUID) ([]*Win, error)

	// GetCustomerStats summarizes a customer's bidding activity
	GetCustomerStats(ctx context.Context, customerID uuid.UUID) (*CustomerStats, error)

	// GetMarketplaceStats summarizes the marketplace for the admin view
	GetMarketplaceStats(ctx context.Context) (*MarketplaceStats, error)
}
