package auction

import (
	"time"

	"github.com/google/uuid"
)

// Status represents the lifecycle state of an auction
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
	StatusActive   Status = "active"
	StatusSold     Status = "sold"
	StatusExpired  Status = "expired"
)

// String returns the string representation of the status
func (s Status) String() string {
	return string(s)
}

// IsValid checks if the status is a known lifecycle state
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected, StatusActive, StatusSold, StatusExpired:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether no further transitions are allowed
func (s Status) IsTerminal() bool {
	switch s {
	case StatusSold, StatusExpired, StatusRejected:
		return true
	default:
		return false
	}
}

// AcceptsBids reports whether an auction in this status can receive bids
func (s Status) AcceptsBids() bool {
	return s == StatusActive || s == StatusApproved
}

// CanTransitionTo checks the status machine for a legal transition
func (s Status) CanTransitionTo(next Status) bool {
	switch s {
	case StatusPending:
		return next == StatusApproved || next == StatusRejected
	case StatusApproved, StatusActive:
		return next == StatusSold || next == StatusExpired
	default:
		// sold, expired and rejected are terminal
		return false
	}
}

// Auction represents one item listed for sale
type Auction struct {
	ID           uuid.UUID  `db:"id"`
	VendorID     uuid.UUID  `db:"vendor_id"`
	ItemName     string     `db:"item_name"`
	Description  string     `db:"description"`
	ImageURL     string     `db:"image_url"`
	MinBid       int64      `db:"min_bid"` // in cents
	CurrentBid   *int64     `db:"current_bid"`
	LockedPrice  *int64     `db:"locked_price"`
	Status       Status     `db:"status"`
	StartTime    time.Time  `db:"start_time"`
	EndTime      time.Time  `db:"end_time"`
	WinnerUserID *uuid.UUID `db:"winner_user_id"`
	CreatedAt    time.Time  `db:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at"`
}

// IsOwnedBy checks whether the given vendor owns this auction
func (a *Auction) IsOwnedBy(vendorID uuid.UUID) bool {
	return a.VendorID == vendorID
}

// IsLocked reports whether the auction has been closed to further bids
func (a *Auction) IsLocked() bool {
	return a.Status == StatusSold || a.LockedPrice != nil
}

// HighestPrice returns the amount a new bid must exceed:
// the current highest bid, or the minimum bid when nobody has bid yet.
func (a *Auction) HighestPrice() int64 {
	if a.CurrentBid != nil && *a.CurrentBid > a.MinBid {
		return *a.CurrentBid
	}
	return a.MinBid
}

// Bid is an immutable record of one offer on an auction
type Bid struct {
	ID        uuid.UUID `db:"id"`
	AuctionID uuid.UUID `db:"auction_id"`
	UserID    uuid.UUID `db:"user_id"`
	Amount    int64     `db:"amount"` // in cents
	CreatedAt time.Time `db:"created_at"`
}

// CreateAuctionCommand represents a vendor submission of a new listing
type CreateAuctionCommand struct {
	VendorID    uuid.UUID
	ItemName    string
	Description string
	MinBid      int64
	ImageURL    string
	StartTime   time.Time
	EndTime     time.Time
}

// PlaceBidCommand represents the command to place a bid
type PlaceBidCommand struct {
	AuctionID uuid.UUID
	UserID    uuid.UUID
	Amount    int64
}

// PlaceBidResult carries the accepted bid and, when somebody was outbid,
// the bidder whose offer was superseded.
type PlaceBidResult struct {
	Bid              *Bid
	PreviousBidderID *uuid.UUID
}

// LockResult reports the winner of a vendor-locked auction
type LockResult struct {
	WinnerID   uuid.UUID
	FinalPrice int64
}
