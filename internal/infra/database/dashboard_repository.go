package database

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ayushmohite/auctionhouse/internal/auction"
	"github.com/ayushmohite/auctionhouse/internal/dashboard"
	"github.com/ayushmohite/auctionhouse/internal/users"
)

// PostgresDashboardRepository implements dashboard.Repository using pgx
type PostgresDashboardRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresDashboardRepository creates a new PostgreSQL dashboard repository
func NewPostgresDashboardRepository(pool *pgxpool.Pool) *PostgresDashboardRepository {
	return &PostgresDashboardRepository{pool: pool}
}

// GetCustomerBidHistory retrieves a customer's bids joined with their
// auctions, the vendor's name, and whether each bid is still the highest
func (r *PostgresDashboardRepository) GetCustomerBidHistory(ctx context.Context, customerID uuid.UUID) ([]*dashboard.BidHistoryEntry, error) {
	query := `
		SELECT
			b.id,
			b.amount,
			b.created_at,
			a.id,
			a.item_name,
			a.description,
			a.image_url,
			a.min_bid,
			a.current_bid,
			a.locked_price,
			a.status,
			a.end_time,
			a.winner_user_id,
			v.name,
			(SELECT MAX(b2.amount) FROM bids b2 WHERE b2.auction_id = a.id),
			(b.amount = (SELECT MAX(b3.amount) FROM bids b3 WHERE b3.auction_id = a.id))
		FROM bids b
		INNER JOIN auctions a ON b.auction_id = a.id
		INNER JOIN users v ON a.vendor_id = v.id
		WHERE b.user_id = $1
		ORDER BY b.created_at DESC
	`

	rows, err := r.pool.Query(ctx, query, customerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query bid history: %w", err)
	}
	defer rows.Close()

	var entries []*dashboard.BidHistoryEntry
	for rows.Next() {
		var e dashboard.BidHistoryEntry
		if err := rows.Scan(
			&e.BidID,
			&e.BidAmount,
			&e.BidTime,
			&e.AuctionID,
			&e.ItemName,
			&e.Description,
			&e.ImageURL,
			&e.MinBid,
			&e.CurrentBid,
			&e.LockedPrice,
			&e.Status,
			&e.EndTime,
			&e.WinnerUserID,
			&e.VendorName,
			&e.HighestBid,
			&e.IsHighestBid,
		); err != nil {
			return nil, fmt.Errorf("failed to scan bid history entry: %w", err)
		}
		entries = append(entries, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating bid history: %w", err)
	}
	return entries, nil
}

// GetCustomerWins retrieves sold auctions won by the customer
func (r *PostgresDashboardRepository) GetCustomerWins(ctx context.Context, customerID uuid.UUID) ([]*dashboard.Win, error) {
	query := `
		SELECT
			a.id,
			a.item_name,
			a.description,
			a.image_url,
			a.locked_price,
			a.current_bid,
			a.end_time,
			a.status,
			v.name,
			v.email,
			(SELECT amount FROM bids
				WHERE auction_id = a.id AND user_id = $1
				ORDER BY amount DESC LIMIT 1)
		FROM auctions a
		INNER JOIN users v ON a.vendor_id = v.id
		WHERE a.winner_user_id = $1 AND a.status = $2
		ORDER BY a.end_time DESC
	`

	rows, err := r.pool.Query(ctx, query, customerID, auction.StatusSold)
	if err != nil {
		return nil, fmt.Errorf("failed to query wins: %w", err)
	}
	defer rows.Close()

	var wins []*dashboard.Win
	for rows.Next() {
		var w dashboard.Win
		if err := rows.Scan(
			&w.AuctionID,
			&w.ItemName,
			&w.Description,
			&w.ImageURL,
			&w.LockedPrice,
			&w.CurrentBid,
			&w.EndTime,
			&w.Status,
			&w.VendorName,
			&w.VendorEmail,
			&w.MyWinningBid,
		); err != nil {
			return nil, fmt.Errorf("failed to scan win: %w", err)
		}
		wins = append(wins, &w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating wins: %w", err)
	}
	return wins, nil
}

// GetCustomerStats summarizes a customer's bidding activity
func (r *PostgresDashboardRepository) GetCustomerStats(ctx context.Context, customerID uuid.UUID) (*dashboard.CustomerStats, error) {
	query := `
		SELECT
			COUNT(DISTINCT b.auction_id),
			COUNT(b.id),
			(SELECT COUNT(*) FROM auctions
				WHERE winner_user_id = $1 AND status = $2)
		FROM bids b
		WHERE b.user_id = $1
	`

	var stats dashboard.CustomerStats
	err := r.pool.QueryRow(ctx, query, customerID, auction.StatusSold).Scan(
		&stats.AuctionsParticipated,
		&stats.BidsPlaced,
		&stats.Wins,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query customer stats: %w", err)
	}
	return &stats, nil
}

// GetMarketplaceStats summarizes the marketplace for the admin view
func (r *PostgresDashboardRepository) GetMarketplaceStats(ctx context.Context) (*dashboard.MarketplaceStats, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM auctions WHERE status IN ($1, $2)),
			(SELECT COUNT(*) FROM auctions WHERE status = $3),
			(SELECT COUNT(*) FROM auctions),
			(SELECT COUNT(*) FROM users WHERE role = $4),
			(SELECT COUNT(*) FROM users WHERE role = $5),
			(SELECT COUNT(*) FROM bids)
	`

	var stats dashboard.MarketplaceStats
	err := r.pool.QueryRow(ctx, query,
		auction.StatusActive,
		auction.StatusApproved,
		auction.StatusSold,
		users.RoleVendor,
		users.RoleCustomer,
	).Scan(
		&stats.ActiveAuctions,
		&stats.SoldAuctions,
		&stats.TotalAuctions,
		&stats.TotalVendors,
		&stats.TotalCustomers,
		&stats.TotalBids,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query marketplace stats: %w", err)
	}
	return &stats, nil
}
