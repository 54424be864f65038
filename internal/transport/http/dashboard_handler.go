package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ayushmohite/auctionhouse/internal/dashboard"
	"github.com/ayushmohite/auctionhouse/internal/users"
)

type DashboardService interface {
	CustomerBidHistory(ctx context.Context, customerID uuid.UUID) ([]*dashboard.BidHistoryEntry, error)
	CustomerWins(ctx context.Context, customerID uuid.UUID) ([]*dashboard.Win, error)
	CustomerStats(ctx context.Context, customerID uuid.UUID) (*dashboard.CustomerStats, error)
	MarketplaceStats(ctx context.Context) (*dashboard.MarketplaceStats, error)
}

type DashboardHandler struct {
	service DashboardService
}

func NewDashboardHandler(service DashboardService) *DashboardHandler {
	return &DashboardHandler{service: service}
}

// customerID resolves the customer whose dashboard is requested. A customer
// may only view their own data; admins may view anyone's.
func (h *DashboardHandler) customerID(c *gin.Context) (uuid.UUID, bool) {
	claims, ok := CurrentClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "authentication required"})
		return uuid.Nil, false
	}

	requested, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid user id"})
		return uuid.Nil, false
	}

	callerID, err := claims.UserID()
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "invalid token subject"})
		return uuid.Nil, false
	}
	if callerID != requested && claims.Role != string(users.RoleAdmin) {
		c.JSON(http.StatusForbidden, gin.H{"message": "access forbidden"})
		return uuid.Nil, false
	}
	return requested, true
}

func (h *DashboardHandler) BidHistory(c *gin.Context) {
	customerID, ok := h.customerID(c)
	if !ok {
		return
	}

	history, err := h.service.CustomerBidHistory(c.Request.Context(), customerID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bids": history})
}

func (h *DashboardHandler) Wins(c *gin.Context) {
	customerID, ok := h.customerID(c)
	if !ok {
		return
	}

	wins, err := h.service.CustomerWins(c.Request.Context(), customerID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"wins": wins})
}

func (h *DashboardHandler) Stats(c *gin.Context) {
	customerID, ok := h.customerID(c)
	if !ok {
		return
	}

	stats, err := h.service.CustomerStats(c.Request.Context(), customerID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"stats": stats})
}

// MarketplaceStats reports marketplace-wide totals for the admin console
func (h *DashboardHandler) MarketplaceStats(c *gin.Context) {
	stats, err := h.service.MarketplaceStats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"stats": stats})
}
