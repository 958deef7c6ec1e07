package session

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"masterbot/internal/constants"
)

func TestStateHistory(t *testing.T) {
	sm := NewSessionManager()
	const chatID = int64(100)

	assert.Equal(t, constants.STATE_IDLE, sm.GetState(chatID))

	sm.SetState(chatID, constants.STATE_ORDER_TITLE)
	sm.SetState(chatID, constants.STATE_ORDER_DESCRIPTION)
	// Повторная установка того же состояния историю не раздувает.
	sm.SetState(chatID, constants.STATE_ORDER_DESCRIPTION)
	assert.Equal(t, constants.STATE_ORDER_DESCRIPTION, sm.GetState(chatID))
	assert.Len(t, sm.GetHistory(chatID), 2)

	assert.Equal(t, constants.STATE_ORDER_TITLE, sm.PopState(chatID))
	assert.Equal(t, constants.STATE_ORDER_TITLE, sm.GetState(chatID))

	// Из единственного состояния возврат ведёт в IDLE.
	assert.Equal(t, constants.STATE_IDLE, sm.PopState(chatID))

	sm.SetState(chatID, constants.STATE_ORDER_TITLE)
	sm.ClearState(chatID)
	assert.Equal(t, constants.STATE_IDLE, sm.GetState(chatID))

	// Сессии пользователей независимы.
	sm.SetState(200, constants.STATE_BID_PRICE)
	assert.Equal(t, constants.STATE_IDLE, sm.GetState(chatID))
}

func TestTempDrafts(t *testing.T) {
	sm := NewSessionManager()
	const chatID = int64(300)

	order := sm.GetTempOrder(chatID)
	assert.Equal(t, chatID, order.ClientChatID)
	order.Order.Title = "Заказ"
	sm.UpdateTempOrder(chatID, order)
	assert.Equal(t, "Заказ", sm.GetTempOrder(chatID).Order.Title)

	sm.ClearTempOrder(chatID)
	assert.Empty(t, sm.GetTempOrder(chatID).Order.Title)

	bid := sm.GetTempBid(chatID)
	bid.OrderID = 42
	bid.Price = 1500
	sm.UpdateTempBid(chatID, bid)
	got := sm.GetTempBid(chatID)
	assert.EqualValues(t, 42, got.OrderID)
	assert.Equal(t, 1500.0, got.Price)
	sm.ClearTempBid(chatID)
	assert.Zero(t, sm.GetTempBid(chatID).OrderID)

	review := TempReviewData{OrderID: 7, ToUserID: 9, Rating: 5}
	sm.UpdateTempReview(chatID, review)
	assert.Equal(t, review, sm.GetTempReview(chatID))
	sm.ClearTempReview(chatID)
	assert.Zero(t, sm.GetTempReview(chatID).OrderID)
}

func TestAddPortfolioPhoto(t *testing.T) {
	sm := NewSessionManager()
	const chatID = int64(400)

	count, err := sm.AddPortfolioPhoto(chatID, "file-1")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	// Дубликат не добавляется.
	_, err = sm.AddPortfolioPhoto(chatID, "file-1")
	assert.Error(t, err)

	for i := 2; i <= constants.MAX_PORTFOLIO_PHOTOS; i++ {
		count, err = sm.AddPortfolioPhoto(chatID, fmt.Sprintf("file-%d", i))
		require.NoError(t, err)
	}
	assert.Equal(t, constants.MAX_PORTFOLIO_PHOTOS, count)

	// Лимит фотографий.
	_, err = sm.AddPortfolioPhoto(chatID, "file-overflow")
	assert.Error(t, err)

	profile := sm.GetTempProfile(chatID)
	assert.Len(t, profile.PortfolioPhotos, constants.MAX_PORTFOLIO_PHOTOS)
}
