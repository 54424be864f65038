package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ayushmohite/auctionhouse/internal/auction"
)

// PostgresBidRepository implements auction.BidRepository using pgx
type PostgresBidRepository struct {
	pool *pgxpool.Pool // for read-only operations
}

// NewPostgresBidRepository creates a new PostgreSQL bid repository
func NewPostgresBidRepository(pool *pgxpool.Pool) *PostgresBidRepository {
	return &PostgresBidRepository{pool: pool}
}

// SaveBid saves a bid within a transaction
func (r *PostgresBidRepository) SaveBid(ctx context.Context, tx pgx.Tx, bid *auction.Bid) error {
	query := `
		INSERT INTO bids (id, auction_id, user_id, amount, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := tx.Exec(ctx, query,
		bid.ID,
		bid.AuctionID,
		bid.UserID,
		bid.Amount,
		bid.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert bid: %w", err)
	}
	return nil
}

// GetHighestBid returns the winning-candidate bid: highest amount,
// earliest submission on a tie. Returns nil when there are no bids.
func (r *PostgresBidRepository) GetHighestBid(ctx context.Context, tx pgx.Tx, auctionID uuid.UUID) (*auction.Bid, error) {
	query := `
		SELECT id, auction_id, user_id, amount, created_at
		FROM bids
		WHERE auction_id = $1
		ORDER BY amount DESC, created_at ASC
		LIMIT 1
	`
	return r.queryOne(ctx, tx, query, auctionID)
}

// GetMostRecentBid returns the latest bid by submission time, or nil
func (r *PostgresBidRepository) GetMostRecentBid(ctx context.Context, tx pgx.Tx, auctionID uuid.UUID) (*auction.Bid, error) {
	query := `
		SELECT id, auction_id, user_id, amount, created_at
		FROM bids
		WHERE auction_id = $1
		ORDER BY created_at DESC
		LIMIT 1
	`
	return r.queryOne(ctx, tx, query, auctionID)
}

func (r *PostgresBidRepository) queryOne(ctx context.Context, tx pgx.Tx, query string, auctionID uuid.UUID) (*auction.Bid, error) {
	var bid auction.Bid
	err := tx.QueryRow(ctx, query, auctionID).Scan(
		&bid.ID,
		&bid.AuctionID,
		&bid.UserID,
		&bid.Amount,
		&bid.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get bid: %w", err)
	}
	return &bid, nil
}

// ListBidsByAuctionID retrieves all bids for an auction, highest first
func (r *PostgresBidRepository) ListBidsByAuctionID(ctx context.Context, auctionID uuid.UUID) ([]*auction.Bid, error) {
	query := `
		SELECT id, auction_id, user_id, amount, created_at
		FROM bids
		WHERE auction_id = $1
		ORDER BY amount DESC, created_at ASC
	`
	rows, err := r.pool.Query(ctx, query, auctionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query bids: %w", err)
	}
	defer rows.Close()

	var result []*auction.Bid
	for rows.Next() {
		var bid auction.Bid
		if err := rows.Scan(
			&bid.ID,
			&bid.AuctionID,
			&bid.UserID,
			&bid.Amount,
			&bid.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan bid: %w", err)
		}
		result = append(result, &bid)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating bids: %w", err)
	}

	return result, nil
}

// DeleteBidsByAuctionID removes all bids for an auction within a transaction
func (r *PostgresBidRepository) DeleteBidsByAuctionID(ctx context.Context, tx pgx.Tx, auctionID uuid.UUID) error {
	query := `DELETE FROM bids WHERE auction_id = $1`
	if _, err := tx.Exec(ctx, query, auctionID); err != nil {
		return fmt.Errorf("failed to delete bids: %w", err)
	}
	return nil
}
