package service

import "masterbot/internal/models"

// Notifier получает исходящие события ядра. Реализуется транспортом
// (Telegram-адаптер); ядро не знает, как события доставляются.
// Notifier consumes the core's outbound events. Implemented by the transport
// adapter; the core does not know how events are delivered.
type Notifier interface {
	// BidReceived — заказчику пришёл новый отклик.
	BidReceived(order models.Order, clientChatID int64, bid models.Bid)
	// BidSelected — мастер выбран заказчиком.
	BidSelected(order models.Order, workerChatID int64, bid models.Bid)
	// PaymentRequired — мастеру нужно оплатить доступ к контактам.
	PaymentRequired(order models.Order, workerID, workerChatID int64, amount float64)
	// ContactDisclosed — оплата получена, транспорт может раскрыть контакты.
	// Телефон заказчика передаётся в зашифрованном виде (как хранится).
	ContactDisclosed(order models.Order, workerChatID, clientChatID int64, clientName, encryptedPhone string)
	// OrderCompleted — заказ завершён одной из сторон. workerID — выбранный
	// мастер (0, если завершение произошло без выбранного отклика).
	OrderCompleted(order models.Order, clientChatID, workerChatID, workerID int64)
	// OrderCanceled — заказ отменён; уведомляются мастера с активными откликами.
	OrderCanceled(order models.Order, clientChatID int64, bidderChatIDs []int64)
	// ReviewPosted — получен отзыв.
	ReviewPosted(orderID, toChatID int64, rating int)
}

// NopNotifier — заглушка для тестов и офлайн-режима.
type NopNotifier struct{}

func (NopNotifier) BidReceived(models.Order, int64, models.Bid)                     {}
func (NopNotifier) BidSelected(models.Order, int64, models.Bid)                     {}
func (NopNotifier) PaymentRequired(models.Order, int64, int64, float64)             {}
func (NopNotifier) ContactDisclosed(models.Order, int64, int64, string, string)     {}
func (NopNotifier) OrderCompleted(models.Order, int64, int64, int64)                {}
func (NopNotifier) OrderCanceled(models.Order, int64, []int64)                      {}
func (NopNotifier) ReviewPosted(int64, int64, int)                                  {}
