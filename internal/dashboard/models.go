package dashboard

import (
	"time"

	"github.com/google/uuid"

	"github.com/ayushmohite/auctionhouse/internal/auction"
)

// BidHistoryEntry is one of a customer's bids joined with its auction
type BidHistoryEntry struct {
	BidID        uuid.UUID      `json:"bid_id"`
	BidAmount    int64          `json:"bid_amount"`
	BidTime      time.Time      `json:"bid_time"`
	AuctionID    uuid.UUID      `json:"auction_id"`
	ItemName     string         `json:"item_name"`
	Description  string         `json:"description"`
	ImageURL     string         `json:"image_url"`
	MinBid       int64          `json:"min_bid"`
	CurrentBid   *int64         `json:"current_bid"`
	LockedPrice  *int64         `json:"locked_price"`
	Status       auction.Status `json:"status"`
	EndTime      time.Time      `json:"end_time"`
	WinnerUserID *uuid.UUID     `json:"winner_user_id"`
	VendorName   string         `json:"vendor_name"`
	HighestBid   int64          `json:"highest_bid"`
	IsHighestBid bool           `json:"is_highest_bid"`
}

// Win is an auction a customer won
type Win struct {
	AuctionID    uuid.UUID      `json:"auction_id"`
	ItemName     string         `json:"item_name"`
	Description  string         `json:"description"`
	ImageURL     string         `json:"image_url"`
	LockedPrice  *int64         `json:"locked_price"`
	CurrentBid   *int64         `json:"current_bid"`
	EndTime      time.Time      `json:"end_time"`
	Status       auction.Status `json:"status"`
	VendorName   string         `json:"vendor_name"`
	VendorEmail  string         `json:"vendor_email"`
	MyWinningBid int64          `json:"my_winning_bid"`
}

// CustomerStats summarizes a customer's bidding activity
type CustomerStats struct {
	AuctionsParticipated int64 `json:"total_auctions_participated"`
	BidsPlaced           int64 `json:"total_bids_placed"`
	Wins                 int64 `json:"total_wins"`
}

// MarketplaceStats summarizes the whole marketplace for the admin view
type MarketplaceStats struct {
	ActiveAuctions int64 `json:"active_auctions"`
	SoldAuctions   int64 `json:"sold_auctions"`
	TotalAuctions  int64 `json:"total_auctions"`
	TotalVendors   int64 `json:"total_vendors"`
	TotalCustomers int64 `json:"total_customers"`
	TotalBids      int64 `json:"total_bids"`
}
