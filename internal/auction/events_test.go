package auction

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestEventTypeIsValid(t *testing.T) {
	assert.True(t, EventTypeOutbid.IsValid())
	assert.True(t, EventTypeSold.IsValid())
	assert.False(t, EventType("auction.deleted").IsValid())
}

func TestNewOutbidEvent(t *testing.T) {
	auctionID := uuid.New()
	userID := uuid.New()

	event := NewOutbidEvent(auctionID, userID, 5000)

	assert.Equal(t, auctionID, event.AuctionID)
	assert.Equal(t, userID, event.OutbidUserID)
	assert.Equal(t, int64(5000), event.NewAmount)
	assert.Contains(t, event.Message, auctionID.String())
}
