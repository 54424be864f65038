package auction

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/ayushmohite/auctionhouse/pkg/database"
	"github.com/ayushmohite/auctionhouse/pkg/events"
)

// Validation and state errors
var (
	ErrAuctionNotFound  = errors.New("auction not found")
	ErrForbidden        = errors.New("caller does not own this auction")
	ErrAuctionNotActive = errors.New("auction is not open for bidding")
	ErrAuctionEnded     = errors.New("auction has already ended")
	ErrAuctionLocked    = errors.New("auction has been locked by the vendor")
	ErrBidTooLow        = errors.New("bid amount must be higher than the current price")
	ErrInvalidBidAmount = errors.New("bid amount must be positive")
	ErrAlreadyLocked    = errors.New("auction is already locked")
	ErrNoBids           = errors.New("cannot lock an auction with no bids")
	ErrInvalidState     = errors.New("operation not permitted in the auction's current status")
	ErrInvalidStatus    = errors.New("unknown auction status")
	ErrInvalidMinBid    = errors.New("minimum bid must not be negative")
	ErrInvalidEndTime   = errors.New("end time must be after the start time and in the future")
	ErrInvalidItemName  = errors.New("item name cannot be empty")
)

// validateBid runs the bid preconditions against a locked auction row,
// in order: status, end time, vendor lock, amount.
func validateBid(a *Auction, amount int64, now time.Time) error {
	if !a.Status.AcceptsBids() {
		return ErrAuctionNotActive
	}
	if !now.Before(a.EndTime) {
		return ErrAuctionEnded
	}
	if a.IsLocked() {
		return ErrAuctionLocked
	}
	if amount <= 0 {
		return ErrInvalidBidAmount
	}
	if amount <= a.HighestPrice() {
		return ErrBidTooLow
	}
	return nil
}

// validateCreateAuction checks a vendor submission before it is persisted
func validateCreateAuction(cmd CreateAuctionCommand, now time.Time) error {
	if strings.TrimSpace(cmd.ItemName) == "" {
		return ErrInvalidItemName
	}
	if cmd.MinBid < 0 {
		return ErrInvalidMinBid
	}
	if !cmd.EndTime.After(cmd.StartTime) || !cmd.EndTime.After(now) {
		return ErrInvalidEndTime
	}
	return nil
}

// Service implements the auction lifecycle: listing, bidding, vendor
// locks, admin transitions and the expiry sweep. All mutations run in a
// single transaction that locks the target auction row first.
type Service struct {
	txManager   database.TransactionManager
	auctionRepo Repository
	bidRepo     BidRepository
	outboxRepo  OutboxRepository
	cache       ListingCache
	// requireApproval decides whether new listings start at pending
	// (needing an admin) or go straight to active
	requireApproval bool
}

// NewService creates a new auction service. cache may be nil when no
// listing cache is configured.
func NewService(
	txManager database.TransactionManager,
	auctionRepo Repository,
	bidRepo BidRepository,
	outboxRepo OutboxRepository,
	cache ListingCache,
	requireApproval bool,
) *Service {
	return &Service{
		txManager:       txManager,
		auctionRepo:     auctionRepo,
		bidRepo:         bidRepo,
		outboxRepo:      outboxRepo,
		cache:           cache,
		requireApproval: requireApproval,
	}
}

// CreateAuction persists a new vendor listing
func (s *Service) CreateAuction(ctx context.Context, cmd CreateAuctionCommand) (*Auction, error) {
	now := time.Now()
	if err := validateCreateAuction(cmd, now); err != nil {
		return nil, err
	}

	status := StatusActive
	if s.requireApproval {
		status = StatusPending
	}

	a := &Auction{
		ID:          uuid.New(),
		VendorID:    cmd.VendorID,
		ItemName:    cmd.ItemName,
		Description: cmd.Description,
		ImageURL:    cmd.ImageURL,
		MinBid:      cmd.MinBid,
		Status:      status,
		StartTime:   cmd.StartTime,
		EndTime:     cmd.EndTime,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.auctionRepo.CreateAuction(ctx, a); err != nil {
		return nil, fmt.Errorf("failed to create auction: %w", err)
	}

	s.invalidateListing(ctx)
	return a, nil
}

// GetAuction retrieves a single auction
func (s *Service) GetAuction(ctx context.Context, auctionID uuid.UUID) (*Auction, error) {
	a, err := s.auctionRepo.GetAuctionByID(ctx, auctionID)
	if err != nil {
		return nil, err
	}
	return a, nil
}

// ListAuctions retrieves every auction, newest first
func (s *Service) ListAuctions(ctx context.Context) ([]*Auction, error) {
	return s.auctionRepo.ListAuctions(ctx)
}

// ListActiveAuctions retrieves the biddable listings for the homepage,
// served from the cache when possible
func (s *Service) ListActiveAuctions(ctx context.Context) ([]*Auction, error) {
	if s.cache != nil {
		if cached, err := s.cache.GetActive(ctx); err == nil && cached != nil {
			return cached, nil
		}
	}

	auctions, err := s.auctionRepo.ListActiveAuctions(ctx, time.Now())
	if err != nil {
		return nil, fmt.Errorf("failed to list active auctions: %w", err)
	}

	if s.cache != nil {
		_ = s.cache.SetActive(ctx, auctions)
	}
	return auctions, nil
}

// ListVendorAuctions retrieves a vendor's listings
func (s *Service) ListVendorAuctions(ctx context.Context, vendorID uuid.UUID) ([]*Auction, error) {
	return s.auctionRepo.ListAuctionsByVendorID(ctx, vendorID)
}

// ListBids retrieves the bid history for an auction, highest first
func (s *Service) ListBids(ctx context.Context, auctionID uuid.UUID) ([]*Bid, error) {
	return s.bidRepo.ListBidsByAuctionID(ctx, auctionID)
}

// PlaceBid atomically records a bid. The auction row is locked for the
// duration of the check-and-update so concurrent bids serialize and the
// second bidder always sees the first bidder's price.
//
// The returned PreviousBidderID identifies who was outbid (nil on the
// first bid); an outbid notification is also written to the outbox in
// the same transaction when the previous bidder differs from the new one.
func (s *Service) PlaceBid(ctx context.Context, cmd PlaceBidCommand) (*PlaceBidResult, error) {
	tx, err := s.txManager.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	a, err := s.auctionRepo.GetAuctionByIDForUpdate(ctx, tx, cmd.AuctionID)
	if err != nil {
		return nil, err
	}

	if valErr := validateBid(a, cmd.Amount, time.Now()); valErr != nil {
		return nil, valErr
	}

	// Previous bidder is the most recent bid's bidder, not the runner-up
	// by amount. That is who the outbid notification goes to.
	prev, err := s.bidRepo.GetMostRecentBid(ctx, tx, cmd.AuctionID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up previous bidder: %w", err)
	}

	bid := &Bid{
		ID:        uuid.New(),
		AuctionID: cmd.AuctionID,
		UserID:    cmd.UserID,
		Amount:    cmd.Amount,
		CreatedAt: time.Now(),
	}

	if saveErr := s.bidRepo.SaveBid(ctx, tx, bid); saveErr != nil {
		return nil, fmt.Errorf("failed to save bid: %w", saveErr)
	}

	if updErr := s.auctionRepo.UpdateCurrentBid(ctx, tx, cmd.AuctionID, cmd.Amount); updErr != nil {
		return nil, fmt.Errorf("failed to update current bid: %w", updErr)
	}

	result := &PlaceBidResult{Bid: bid}
	if prev != nil {
		prevID := prev.UserID
		result.PreviousBidderID = &prevID

		if prevID != cmd.UserID {
			event := NewOutbidEvent(cmd.AuctionID, prevID, cmd.Amount)
			if outboxErr := s.enqueueEvent(ctx, tx, EventTypeOutbid, event); outboxErr != nil {
				return nil, outboxErr
			}
		}
	}

	if commitErr := tx.Commit(ctx); commitErr != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", commitErr)
	}

	s.invalidateListing(ctx)
	return result, nil
}

// LockAuction is the vendor's early close: it sells immediately to the
// highest bidder (earliest submission wins a tie).
func (s *Service) LockAuction(ctx context.Context, auctionID, vendorID uuid.UUID) (*LockResult, error) {
	tx, err := s.txManager.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	a, err := s.auctionRepo.GetAuctionByIDForUpdate(ctx, tx, auctionID)
	if err != nil {
		return nil, err
	}
	if !a.IsOwnedBy(vendorID) {
		return nil, ErrForbidden
	}
	if a.Status == StatusSold {
		return nil, ErrAlreadyLocked
	}

	winning, err := s.bidRepo.GetHighestBid(ctx, tx, auctionID)
	if err != nil {
		return nil, fmt.Errorf("failed to find highest bid: %w", err)
	}
	if winning == nil {
		return nil, ErrNoBids
	}

	if markErr := s.auctionRepo.MarkSold(ctx, tx, auctionID, winning.UserID, winning.Amount); markErr != nil {
		return nil, fmt.Errorf("failed to mark auction sold: %w", markErr)
	}

	event := SoldEvent{
		AuctionID:  auctionID,
		WinnerID:   winning.UserID,
		FinalPrice: winning.Amount,
		Source:     "lock",
	}
	if outboxErr := s.enqueueEvent(ctx, tx, EventTypeSold, event); outboxErr != nil {
		return nil, outboxErr
	}

	if commitErr := tx.Commit(ctx); commitErr != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", commitErr)
	}

	s.invalidateListing(ctx)
	return &LockResult{WinnerID: winning.UserID, FinalPrice: winning.Amount}, nil
}

// SetStatus applies an admin approve/reject transition. Only moves out
// of pending are accepted: sold and expired are set exclusively by the
// lock and expiry paths, which also record the winner and final price.
func (s *Service) SetStatus(ctx context.Context, auctionID uuid.UUID, newStatus Status) error {
	if !newStatus.IsValid() {
		return ErrInvalidStatus
	}

	tx, err := s.txManager.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	a, err := s.auctionRepo.GetAuctionByIDForUpdate(ctx, tx, auctionID)
	if err != nil {
		return err
	}
	if a.Status != StatusPending || !a.Status.CanTransitionTo(newStatus) {
		return ErrInvalidState
	}

	if updErr := s.auctionRepo.UpdateStatus(ctx, tx, auctionID, newStatus); updErr != nil {
		return fmt.Errorf("failed to update status: %w", updErr)
	}

	if commitErr := tx.Commit(ctx); commitErr != nil {
		return fmt.Errorf("failed to commit transaction: %w", commitErr)
	}

	s.invalidateListing(ctx)
	return nil
}

// DeleteAuction removes a listing that never went live. Bids are removed
// first in the same transaction, though pending and rejected auctions
// should not have any.
func (s *Service) DeleteAuction(ctx context.Context, auctionID, vendorID uuid.UUID) (int64, error) {
	tx, err := s.txManager.BeginTx(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	a, err := s.auctionRepo.GetAuctionByIDForUpdate(ctx, tx, auctionID)
	if err != nil {
		return 0, err
	}
	if !a.IsOwnedBy(vendorID) {
		return 0, ErrForbidden
	}
	if a.Status != StatusPending && a.Status != StatusRejected {
		return 0, ErrInvalidState
	}

	if delErr := s.bidRepo.DeleteBidsByAuctionID(ctx, tx, auctionID); delErr != nil {
		return 0, fmt.Errorf("failed to delete bids: %w", delErr)
	}

	affected, err := s.auctionRepo.DeleteAuction(ctx, tx, auctionID, vendorID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete auction: %w", err)
	}

	if commitErr := tx.Commit(ctx); commitErr != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", commitErr)
	}

	s.invalidateListing(ctx)
	return affected, nil
}

// ExpireAuctions resolves every biddable auction whose end time has
// passed: sold to the highest bidder, or expired when nobody bid. The
// whole batch commits once; any failure rolls everything back and the
// sweep retries on its next tick.
func (s *Service) ExpireAuctions(ctx context.Context) (int, error) {
	tx, err := s.txManager.BeginTx(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	ended, err := s.auctionRepo.ListEndedForUpdate(ctx, tx, time.Now())
	if err != nil {
		return 0, fmt.Errorf("failed to select ended auctions: %w", err)
	}

	for _, a := range ended {
		if resolveErr := s.resolveEnded(ctx, tx, a); resolveErr != nil {
			return 0, fmt.Errorf("failed to resolve auction %s: %w", a.ID, resolveErr)
		}
	}

	if commitErr := tx.Commit(ctx); commitErr != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", commitErr)
	}

	if len(ended) > 0 {
		s.invalidateListing(ctx)
	}
	return len(ended), nil
}

// resolveEnded closes one ended auction inside the sweep transaction
func (s *Service) resolveEnded(ctx context.Context, tx pgx.Tx, a *Auction) error {
	winning, err := s.bidRepo.GetHighestBid(ctx, tx, a.ID)
	if err != nil {
		return err
	}

	if winning == nil {
		return s.auctionRepo.MarkExpired(ctx, tx, a.ID)
	}

	if err := s.auctionRepo.MarkSold(ctx, tx, a.ID, winning.UserID, winning.Amount); err != nil {
		return err
	}

	event := SoldEvent{
		AuctionID:  a.ID,
		WinnerID:   winning.UserID,
		FinalPrice: winning.Amount,
		Source:     "expiry",
	}
	return s.enqueueEvent(ctx, tx, EventTypeSold, event)
}

// enqueueEvent writes a domain event to the outbox inside the caller's transaction
func (s *Service) enqueueEvent(ctx context.Context, tx pgx.Tx, eventType EventType, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal %s event: %w", eventType, err)
	}

	outboxEvent := &events.OutboxEvent{
		ID:        uuid.New(),
		EventType: eventType.String(),
		Payload:   body,
		Status:    events.OutboxStatusPending,
		CreatedAt: time.Now(),
	}

	if err := s.outboxRepo.SaveEvent(ctx, tx, outboxEvent); err != nil {
		return fmt.Errorf("failed to save outbox event: %w", err)
	}
	return nil
}

// invalidateListing drops the cached homepage listing after any mutation.
// Cache trouble is not worth failing the operation over.
func (s *Service) invalidateListing(ctx context.Context) {
	if s.cache != nil {
		_ = s.cache.Invalidate(ctx)
	}
}
