package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ayushmohite/auctionhouse/internal/auction"
	"github.com/ayushmohite/auctionhouse/internal/users"
)

// respondError maps domain errors onto HTTP status codes. Unrecognized
// errors are reported as internal failures without leaking their detail.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, auction.ErrAuctionNotFound),
		errors.Is(err, users.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": err.Error()})
	case errors.Is(err, auction.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"message": err.Error()})
	case errors.Is(err, users.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"message": err.Error()})
	case errors.Is(err, auction.ErrAlreadyLocked),
		errors.Is(err, auction.ErrAuctionLocked),
		errors.Is(err, auction.ErrInvalidState):
		c.JSON(http.StatusConflict, gin.H{"message": err.Error()})
	case errors.Is(err, auction.ErrAuctionNotActive),
		errors.Is(err, auction.ErrAuctionEnded),
		errors.Is(err, auction.ErrBidTooLow),
		errors.Is(err, auction.ErrInvalidBidAmount),
		errors.Is(err, auction.ErrNoBids),
		errors.Is(err, auction.ErrInvalidStatus),
		errors.Is(err, auction.ErrInvalidMinBid),
		errors.Is(err, auction.ErrInvalidEndTime),
		errors.Is(err, auction.ErrInvalidItemName),
		errors.Is(err, users.ErrInvalidInput),
		errors.Is(err, users.ErrUserAlreadyExists):
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"message": "internal server error"})
	}
}
