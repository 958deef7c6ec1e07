package session

import "masterbot/internal/models"

// TempOrderData хранит черновик заказа во время пошагового диалога создания.
// TempOrderData holds an order draft during the step-by-step creation dialog.
type TempOrderData struct {
	ClientChatID     int64
	Order            models.Order
	CurrentMessageID int // ID сообщения-анкеты, которое бот редактирует по мере шагов
}

// NewTempOrder создает пустой черновик заказа для указанного chatID.
func NewTempOrder(chatID int64) TempOrderData {
	return TempOrderData{ClientChatID: chatID}
}

// TempBidData хранит черновик отклика мастера.
type TempBidData struct {
	WorkerChatID int64
	OrderID      int64
	Price        float64
	Deadline     string
	Comment      string
}

// TempReviewData хранит черновик отзыва до подтверждения оценки.
type TempReviewData struct {
	OrderID  int64
	ToUserID int64
	Rating   int
	Comment  string
}

// TempProfileData хранит черновик анкеты (мастера или заказчика) во время онбординга.
type TempProfileData struct {
	Role            string
	Name            string
	Phone           string // уже нормализованный +7XXXXXXXXXX
	City            string
	Regions         []string
	Categories      []string
	Experience      string
	Description     string
	PortfolioPhotos []string
}
