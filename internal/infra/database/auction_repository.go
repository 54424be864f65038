package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ayushmohite/auctionhouse/internal/auction"
	pkgdb "github.com/ayushmohite/auctionhouse/pkg/database"
)

const auctionColumns = `id, vendor_id, item_name, description, image_url, min_bid,
		current_bid, locked_price, status, start_time, end_time, winner_user_id,
		created_at, updated_at`

// PostgresAuctionRepository implements auction.Repository using pgx
type PostgresAuctionRepository struct {
	pool *pgxpool.Pool // for non-transactional reads
}

// NewPostgresAuctionRepository creates a new PostgreSQL auction repository
func NewPostgresAuctionRepository(pool *pgxpool.Pool) *PostgresAuctionRepository {
	return &PostgresAuctionRepository{pool: pool}
}

// CreateAuction inserts a new listing
func (r *PostgresAuctionRepository) CreateAuction(ctx context.Context, a *auction.Auction) error {
	query := `
		INSERT INTO auctions (id, vendor_id, item_name, description, image_url, min_bid,
			current_bid, locked_price, status, start_time, end_time, winner_user_id,
			created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`
	_, err := r.pool.Exec(ctx, query,
		a.ID,
		a.VendorID,
		a.ItemName,
		a.Description,
		a.ImageURL,
		a.MinBid,
		a.CurrentBid,
		a.LockedPrice,
		a.Status,
		a.StartTime,
		a.EndTime,
		a.WinnerUserID,
		a.CreatedAt,
		a.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert auction: %w", err)
	}
	return nil
}

// GetAuctionByID retrieves an auction by its ID (non-transactional read)
func (r *PostgresAuctionRepository) GetAuctionByID(ctx context.Context, auctionID uuid.UUID) (*auction.Auction, error) {
	return r.getAuctionByID(ctx, r.pool, auctionID, false)
}

// GetAuctionByIDForUpdate retrieves an auction and locks its row for the
// duration of the transaction
func (r *PostgresAuctionRepository) GetAuctionByIDForUpdate(ctx context.Context, tx pgx.Tx, auctionID uuid.UUID) (*auction.Auction, error) {
	return r.getAuctionByID(ctx, tx, auctionID, true)
}

func (r *PostgresAuctionRepository) getAuctionByID(ctx context.Context, db pkgdb.DBTX, auctionID uuid.UUID, forUpdate bool) (*auction.Auction, error) {
	query := `SELECT ` + auctionColumns + ` FROM auctions WHERE id = $1`
	if forUpdate {
		query += " FOR UPDATE"
	}

	a, err := scanAuction(db.QueryRow(ctx, query, auctionID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, auction.ErrAuctionNotFound
		}
		return nil, fmt.Errorf("failed to get auction: %w", err)
	}
	return a, nil
}

// ListAuctions retrieves every auction, newest first
func (r *PostgresAuctionRepository) ListAuctions(ctx context.Context) ([]*auction.Auction, error) {
	query := `SELECT ` + auctionColumns + ` FROM auctions ORDER BY created_at DESC`
	return r.queryAuctions(ctx, query)
}

// ListActiveAuctions retrieves biddable auctions that have not yet ended
func (r *PostgresAuctionRepository) ListActiveAuctions(ctx context.Context, now time.Time) ([]*auction.Auction, error) {
	query := `SELECT ` + auctionColumns + ` FROM auctions
		WHERE status IN ($1, $2) AND end_time > $3
		ORDER BY end_time ASC`
	return r.queryAuctions(ctx, query, auction.StatusActive, auction.StatusApproved, now)
}

// ListAuctionsByVendorID retrieves a vendor's listings, newest first
func (r *PostgresAuctionRepository) ListAuctionsByVendorID(ctx context.Context, vendorID uuid.UUID) ([]*auction.Auction, error) {
	query := `SELECT ` + auctionColumns + ` FROM auctions WHERE vendor_id = $1 ORDER BY created_at DESC`
	return r.queryAuctions(ctx, query, vendorID)
}

// ListEndedForUpdate retrieves and locks all biddable auctions whose end
// time has passed, for the expiry sweep
func (r *PostgresAuctionRepository) ListEndedForUpdate(ctx context.Context, tx pgx.Tx, now time.Time) ([]*auction.Auction, error) {
	query := `SELECT ` + auctionColumns + ` FROM auctions
		WHERE status IN ($1, $2) AND end_time < $3
		FOR UPDATE`

	rows, err := tx.Query(ctx, query, auction.StatusActive, auction.StatusApproved, now)
	if err != nil {
		return nil, fmt.Errorf("failed to query ended auctions: %w", err)
	}
	defer rows.Close()

	return collectAuctions(rows)
}

// UpdateCurrentBid sets the running highest price within a transaction
func (r *PostgresAuctionRepository) UpdateCurrentBid(ctx context.Context, tx pgx.Tx, auctionID uuid.UUID, amount int64) error {
	query := `UPDATE auctions SET current_bid = $1, updated_at = NOW() WHERE id = $2`
	result, err := tx.Exec(ctx, query, amount, auctionID)
	if err != nil {
		return fmt.Errorf("failed to update current bid: %w", err)
	}
	if result.RowsAffected() == 0 {
		return auction.ErrAuctionNotFound
	}
	return nil
}

// MarkSold closes an auction with a winner and final price
func (r *PostgresAuctionRepository) MarkSold(ctx context.Context, tx pgx.Tx, auctionID, winnerID uuid.UUID, finalPrice int64) error {
	query := `UPDATE auctions
		SET status = $1, winner_user_id = $2, locked_price = $3, updated_at = NOW()
		WHERE id = $4`
	result, err := tx.Exec(ctx, query, auction.StatusSold, winnerID, finalPrice, auctionID)
	if err != nil {
		return fmt.Errorf("failed to mark auction sold: %w", err)
	}
	if result.RowsAffected() == 0 {
		return auction.ErrAuctionNotFound
	}
	return nil
}

// MarkExpired closes an auction that received no bids
func (r *PostgresAuctionRepository) MarkExpired(ctx context.Context, tx pgx.Tx, auctionID uuid.UUID) error {
	query := `UPDATE auctions SET status = $1, updated_at = NOW() WHERE id = $2`
	result, err := tx.Exec(ctx, query, auction.StatusExpired, auctionID)
	if err != nil {
		return fmt.Errorf("failed to mark auction expired: %w", err)
	}
	if result.RowsAffected() == 0 {
		return auction.ErrAuctionNotFound
	}
	return nil
}

// UpdateStatus sets the auction status within a transaction
func (r *PostgresAuctionRepository) UpdateStatus(ctx context.Context, tx pgx.Tx, auctionID uuid.UUID, status auction.Status) error {
	query := `UPDATE auctions SET status = $1, updated_at = NOW() WHERE id = $2`
	result, err := tx.Exec(ctx, query, status, auctionID)
	if err != nil {
		return fmt.Errorf("failed to update status: %w", err)
	}
	if result.RowsAffected() == 0 {
		return auction.ErrAuctionNotFound
	}
	return nil
}

// DeleteAuction removes the auction row and reports the rows removed
func (r *PostgresAuctionRepository) DeleteAuction(ctx context.Context, tx pgx.Tx, auctionID, vendorID uuid.UUID) (int64, error) {
	query := `DELETE FROM auctions WHERE id = $1 AND vendor_id = $2`
	result, err := tx.Exec(ctx, query, auctionID, vendorID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete auction: %w", err)
	}
	return result.RowsAffected(), nil
}

func (r *PostgresAuctionRepository) queryAuctions(ctx context.Context, query string, args ...any) ([]*auction.Auction, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query auctions: %w", err)
	}
	defer rows.Close()

	return collectAuctions(rows)
}

func collectAuctions(rows pgx.Rows) ([]*auction.Auction, error) {
	var result []*auction.Auction
	for rows.Next() {
		a, err := scanAuction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan auction: %w", err)
		}
		result = append(result, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating auctions: %w", err)
	}
	return result, nil
}

func scanAuction(row pgx.Row) (*auction.Auction, error) {
	var a auction.Auction
	err := row.Scan(
		&a.ID,
		&a.VendorID,
		&a.ItemName,
		&a.Description,
		&a.ImageURL,
		&a.MinBid,
		&a.CurrentBid,
		&a.LockedPrice,
		&a.Status,
		&a.StartTime,
		&a.EndTime,
		&a.WinnerUserID,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}
