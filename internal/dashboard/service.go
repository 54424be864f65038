package dashboard

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// Service exposes the read-only dashboard aggregates
type Service struct {
	repo Repository
}

// NewService creates a new dashboard service
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// CustomerBidHistory retrieves a customer's bids with auction context
func (s *Service) CustomerBidHistory(ctx context.Context, customerID uuid.UUID) ([]*BidHistoryEntry, error) {
	entries, err := s.repo.GetCustomerBidHistory(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch bid history: %w", err)
	}
	return entries, nil
}

// CustomerWins retrieves the auctions a customer has won
func (s *Service) CustomerWins(ctx context.Context, customerID uuid.UUID) ([]*Win, error) {
	wins, err := s.repo.GetCustomerWins(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch wins: %w", err)
	}
	return wins, nil
}

// CustomerStats summarizes a customer's bidding activity
func (s *Service) CustomerStats(ctx context.Context, customerID uuid.UUID) (*CustomerStats, error) {
	stats, err := s.repo.GetCustomerStats(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch customer stats: %w", err)
	}
	return stats, nil
}

// MarketplaceStats summarizes the marketplace for the admin view
func (s *Service) MarketplaceStats(ctx context.Context) (*MarketplaceStats, error) {
	stats, err := s.repo.GetMarketplaceStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch marketplace stats: %w", err)
	}
	return stats, nil
}
