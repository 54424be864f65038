package auction

import (
	"fmt"

	"github.com/google/uuid"
)

// EventType represents the type of domain event
type EventType string

const (
	// EventTypeOutbid is emitted when a bidder's offer is superseded
	EventTypeOutbid EventType = "auction.outbid"
	// EventTypeSold is emitted when an auction resolves with a winner,
	// whether by vendor lock or by the expiry sweep
	EventTypeSold EventType = "auction.sold"
)

// String returns the string representation of the event type
func (e EventType) String() string {
	return string(e)
}

// IsValid checks if the event type is valid
func (e EventType) IsValid() bool {
	switch e {
	case EventTypeOutbid, EventTypeSold:
		return true
	default:
		return false
	}
}

// OutbidEvent notifies a bidder that a higher offer arrived
type OutbidEvent struct {
	AuctionID    uuid.UUID `json:"auction_id"`
	OutbidUserID uuid.UUID `json:"outbid_user_id"`
	NewAmount    int64     `json:"new_amount"`
	Message      string    `json:"message"`
}

// NewOutbidEvent builds the payload for an outbid notification
func NewOutbidEvent(auctionID, outbidUserID uuid.UUID, newAmount int64) OutbidEvent {
	return OutbidEvent{
		AuctionID:    auctionID,
		OutbidUserID: outbidUserID,
		NewAmount:    newAmount,
		Message:      fmt.Sprintf("You have been outbid on auction %s!", auctionID),
	}
}

// SoldEvent announces the winner of a resolved auction
type SoldEvent struct {
	AuctionID  uuid.UUID `json:"auction_id"`
	WinnerID   uuid.UUID `json:"winner_id"`
	FinalPrice int64     `json:"final_price"`
	// Source is "lock" for a vendor early close, "expiry" for the sweep
	Source string `json:"source"`
}
