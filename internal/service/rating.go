package service

import (
	"masterbot/internal/models"
)

// SubmitReview принимает отзыв после завершения заказа. Предусловия и
// уникальность проверяет хранилище; вставка и пересчёт среднего атомарны.
// Повторная отправка возвращает db.ErrAlreadyReviewed без побочных эффектов.
func (s *Service) SubmitReview(chatID, orderID, toUserID int64, rating int, comment string) (int64, error) {
	u, err := s.store.GetUserByChatID(chatID)
	if err != nil {
		return 0, err
	}

	id, err := s.store.AddReview(models.Review{
		OrderID:    orderID,
		FromUserID: u.ID,
		ToUserID:   toUserID,
		Rating:     rating,
		Comment:    comment,
	})
	if err != nil {
		return 0, err
	}

	if toChatID := s.chatIDOf(toUserID); toChatID != 0 {
		s.notifier.ReviewPosted(orderID, toChatID, rating)
	}
	return id, nil
}
