package http

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ayushmohite/auctionhouse/internal/auction"
)

// AuctionService is the part of the auction domain the HTTP layer depends on
type AuctionService interface {
	CreateAuction(ctx context.Context, cmd auction.CreateAuctionCommand) (*auction.Auction, error)
	GetAuction(ctx context.Context, auctionID uuid.UUID) (*auction.Auction, error)
	ListAuctions(ctx context.Context) ([]*auction.Auction, error)
	ListActiveAuctions(ctx context.Context) ([]*auction.Auction, error)
	ListVendorAuctions(ctx context.Context, vendorID uuid.UUID) ([]*auction.Auction, error)
	ListBids(ctx context.Context, auctionID uuid.UUID) ([]*auction.Bid, error)
	PlaceBid(ctx context.Context, cmd auction.PlaceBidCommand) (*auction.PlaceBidResult, error)
	LockAuction(ctx context.Context, auctionID, vendorID uuid.UUID) (*auction.LockResult, error)
	SetStatus(ctx context.Context, auctionID uuid.UUID, newStatus auction.Status) error
	DeleteAuction(ctx context.Context, auctionID, vendorID uuid.UUID) (int64, error)
}

// ImageStore persists uploaded listing images and returns their public URL
type ImageStore interface {
	Save(originalName string, r io.Reader) (string, error)
}

type AuctionHandler struct {
	service AuctionService
	images  ImageStore
}

func NewAuctionHandler(service AuctionService, images ImageStore) *AuctionHandler {
	return &AuctionHandler{service: service, images: images}
}

type auctionResponse struct {
	ID           string  `json:"id"`
	VendorID     string  `json:"vendorId"`
	ItemName     string  `json:"itemName"`
	Description  string  `json:"description"`
	ImageURL     string  `json:"imageUrl,omitempty"`
	MinBid       int64   `json:"minBid"`
	CurrentBid   *int64  `json:"currentBid"`
	LockedPrice  *int64  `json:"lockedPrice,omitempty"`
	Status       string  `json:"status"`
	StartTime    string  `json:"startTime"`
	EndTime      string  `json:"endTime"`
	WinnerUserID *string `json:"winnerUserId,omitempty"`
	CreatedAt    string  `json:"createdAt"`
}

func toAuctionResponse(a *auction.Auction) auctionResponse {
	resp := auctionResponse{
		ID:          a.ID.String(),
		VendorID:    a.VendorID.String(),
		ItemName:    a.ItemName,
		Description: a.Description,
		ImageURL:    a.ImageURL,
		MinBid:      a.MinBid,
		CurrentBid:  a.CurrentBid,
		LockedPrice: a.LockedPrice,
		Status:      a.Status.String(),
		StartTime:   a.StartTime.Format(time.RFC3339),
		EndTime:     a.EndTime.Format(time.RFC3339),
		CreatedAt:   a.CreatedAt.Format(time.RFC3339),
	}
	if a.WinnerUserID != nil {
		winner := a.WinnerUserID.String()
		resp.WinnerUserID = &winner
	}
	return resp
}

func toAuctionResponses(auctions []*auction.Auction) []auctionResponse {
	out := make([]auctionResponse, 0, len(auctions))
	for _, a := range auctions {
		out = append(out, toAuctionResponse(a))
	}
	return out
}

type bidResponse struct {
	ID        string `json:"id"`
	AuctionID string `json:"auctionId"`
	UserID    string `json:"userId"`
	Amount    int64  `json:"amount"`
	CreatedAt string `json:"createdAt"`
}

func toBidResponse(b *auction.Bid) bidResponse {
	return bidResponse{
		ID:        b.ID.String(),
		AuctionID: b.AuctionID.String(),
		UserID:    b.UserID.String(),
		Amount:    b.Amount,
		CreatedAt: b.CreatedAt.Format(time.RFC3339),
	}
}

// ListAuctions returns every listing regardless of status
func (h *AuctionHandler) ListAuctions(c *gin.Context) {
	auctions, err := h.service.ListAuctions(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"auctions": toAuctionResponses(auctions)})
}

// ListActiveAuctions returns listings that are open for bidding
func (h *AuctionHandler) ListActiveAuctions(c *gin.Context) {
	auctions, err := h.service.ListActiveAuctions(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"auctions": toAuctionResponses(auctions)})
}

func (h *AuctionHandler) GetAuction(c *gin.Context) {
	auctionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid auction id"})
		return
	}

	a, err := h.service.GetAuction(c.Request.Context(), auctionID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"auction": toAuctionResponse(a)})
}

func (h *AuctionHandler) ListBids(c *gin.Context) {
	auctionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid auction id"})
		return
	}

	bids, err := h.service.ListBids(c.Request.Context(), auctionID)
	if err != nil {
		respondError(c, err)
		return
	}

	out := make([]bidResponse, 0, len(bids))
	for _, b := range bids {
		out = append(out, toBidResponse(b))
	}
	c.JSON(http.StatusOK, gin.H{"bids": out})
}

type createAuctionRequest struct {
	ItemName    string    `form:"itemName" binding:"required"`
	Description string    `form:"description"`
	MinBid      int64     `form:"minBid" binding:"min=0"`
	StartTime   time.Time `form:"startTime" time_format:"2006-01-02T15:04:05Z07:00"`
	EndTime     time.Time `form:"endTime" binding:"required" time_format:"2006-01-02T15:04:05Z07:00"`
}

// CreateAuction accepts a multipart form with the listing fields and an
// optional itemImage file part.
func (h *AuctionHandler) CreateAuction(c *gin.Context) {
	claims, ok := CurrentClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "authentication required"})
		return
	}
	vendorID, err := claims.UserID()
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "invalid token subject"})
		return
	}

	var req createAuctionRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	var imageURL string
	if file, err := c.FormFile("itemImage"); err == nil {
		src, err := file.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "could not read uploaded image"})
			return
		}
		defer src.Close()

		imageURL, err = h.images.Save(file.Filename, src)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
			return
		}
	}

	a, err := h.service.CreateAuction(c.Request.Context(), auction.CreateAuctionCommand{
		VendorID:    vendorID,
		ItemName:    req.ItemName,
		Description: req.Description,
		MinBid:      req.MinBid,
		ImageURL:    imageURL,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"auction": toAuctionResponse(a)})
}

// VendorAuctions lists the authenticated vendor's own listings
func (h *AuctionHandler) VendorAuctions(c *gin.Context) {
	claims, ok := CurrentClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "authentication required"})
		return
	}
	vendorID, err := claims.UserID()
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "invalid token subject"})
		return
	}

	auctions, err := h.service.ListVendorAuctions(c.Request.Context(), vendorID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"auctions": toAuctionResponses(auctions)})
}

// LockAuction lets the owning vendor accept the highest bid early
func (h *AuctionHandler) LockAuction(c *gin.Context) {
	claims, ok := CurrentClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "authentication required"})
		return
	}
	vendorID, err := claims.UserID()
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "invalid token subject"})
		return
	}

	auctionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid auction id"})
		return
	}

	result, err := h.service.LockAuction(c.Request.Context(), auctionID, vendorID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"winnerUserId": result.WinnerID.String(),
		"finalPrice":   result.FinalPrice,
	})
}

// DeleteAuction removes a pending or rejected listing owned by the caller
func (h *AuctionHandler) DeleteAuction(c *gin.Context) {
	claims, ok := CurrentClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "authentication required"})
		return
	}
	vendorID, err := claims.UserID()
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "invalid token subject"})
		return
	}

	auctionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid auction id"})
		return
	}

	deleted, err := h.service.DeleteAuction(c.Request.Context(), auctionID, vendorID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": deleted})
}

type placeBidRequest struct {
	AuctionID string `json:"auctionId" binding:"required"`
	Amount    int64  `json:"amount" binding:"required"`
}

// PlaceBid places a bid for the authenticated customer
func (h *AuctionHandler) PlaceBid(c *gin.Context) {
	claims, ok := CurrentClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "authentication required"})
		return
	}
	userID, err := claims.UserID()
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "invalid token subject"})
		return
	}

	var req placeBidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	auctionID, err := uuid.Parse(req.AuctionID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid auction id"})
		return
	}

	result, err := h.service.PlaceBid(c.Request.Context(), auction.PlaceBidCommand{
		AuctionID: auctionID,
		UserID:    userID,
		Amount:    req.Amount,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"bid": toBidResponse(result.Bid)})
}

type setStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// SetStatus lets an admin move a listing through the approval workflow
func (h *AuctionHandler) SetStatus(c *gin.Context) {
	auctionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid auction id"})
		return
	}

	var req setStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	status := auction.Status(req.Status)
	if !status.IsValid() {
		respondError(c, auction.ErrInvalidStatus)
		return
	}

	if err := h.service.SetStatus(c.Request.Context(), auctionID, status); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": status.String()})
}
