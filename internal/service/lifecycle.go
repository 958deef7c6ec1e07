package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"masterbot/internal/constants"
	"masterbot/internal/db"
	"masterbot/internal/models"
)

// CreateOrder размещает заказ от имени заказчика.
func (s *Service) CreateOrder(chatID int64, o models.Order) (int64, error) {
	u, err := s.requireRole(chatID, constants.ROLE_CLIENT)
	if err != nil {
		return 0, err
	}
	o.ClientID = u.ID
	return s.store.CreateOrder(o)
}

// PlaceBid размещает отклик мастера на заказ и уведомляет заказчика.
// Повторный отклик того же мастера заменяет предыдущий.
func (s *Service) PlaceBid(chatID, orderID int64, price float64, deadline, comment string) (int64, error) {
	u, err := s.requireRole(chatID, constants.ROLE_WORKER)
	if err != nil {
		return 0, err
	}

	bidID, err := s.store.CreateBid(models.Bid{
		OrderID:  orderID,
		WorkerID: u.ID,
		Price:    price,
		Deadline: deadline,
		Comment:  comment,
	})
	if err != nil {
		return 0, err
	}

	order, err := s.store.GetOrderByID(orderID)
	if err != nil {
		return bidID, err
	}
	bid, err := s.store.GetBidByID(bidID)
	if err != nil {
		return bidID, err
	}
	if clientChatID := s.chatIDOf(order.ClientID); clientChatID != 0 {
		s.notifier.BidReceived(order, clientChatID, bid)
	}
	return bidID, nil
}

// WithdrawBid отзывает активный отклик мастера.
func (s *Service) WithdrawBid(chatID, bidID int64) error {
	u, err := s.requireRole(chatID, constants.ROLE_WORKER)
	if err != nil {
		return err
	}
	return s.store.WithdrawBid(bidID, u.ID)
}

// SelectBid — заказчик выбирает отклик-победитель. Атомарно: отклик →
// selected, остальные → rejected, создаётся запись contacts_access,
// заказ → master_selected. Мастеру уходят события bid_selected и
// payment_required.
func (s *Service) SelectBid(chatID, orderID, bidID int64) error {
	u, err := s.requireRole(chatID, constants.ROLE_CLIENT)
	if err != nil {
		return err
	}
	order, err := s.store.GetOrderByID(orderID)
	if err != nil {
		return err
	}
	if order.ClientID != u.ID {
		return fmt.Errorf("%w: заказ #%d принадлежит другому заказчику", db.ErrNotFound, orderID)
	}

	bid, err := s.store.SelectBid(orderID, bidID)
	if err != nil {
		return err
	}

	order.Status = constants.ORDER_STATUS_MASTER_SELECTED
	if workerChatID := s.chatIDOf(bid.WorkerID); workerChatID != 0 {
		s.notifier.BidSelected(order, workerChatID, bid)
		s.notifier.PaymentRequired(order, bid.WorkerID, workerChatID, s.accessFee)
	}
	return nil
}

// PaymentReceived обрабатывает событие оплаты от платёжного адаптера.
// Идемпотентно. Событие по неизвестной паре (заказ, мастер) или отменённому
// заказу отбрасывается с записью в лог — это не ошибка вызывающего.
func (s *Service) PaymentReceived(orderID, workerID int64) error {
	advanced, err := s.store.MarkContactAccessPaid(orderID, workerID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) || errors.Is(err, db.ErrOrderTerminated) {
			log.Warn().Int64("order_id", orderID).Int64("worker_id", workerID).Err(err).
				Msg("событие оплаты отброшено")
			return nil
		}
		return err
	}
	if !advanced {
		log.Info().Int64("order_id", orderID).Int64("worker_id", workerID).Msg("повторное событие оплаты, no-op")
		return nil
	}

	order, err := s.store.GetOrderByID(orderID)
	if err != nil {
		return err
	}
	clientName, encryptedPhone := "", ""
	if cp, errProfile := s.store.GetClientProfile(order.ClientID); errProfile == nil {
		clientName, encryptedPhone = cp.Name, cp.Phone
	}
	s.notifier.ContactDisclosed(order, s.chatIDOf(workerID), s.chatIDOf(order.ClientID), clientName, encryptedPhone)
	return nil
}

// CompleteOrder завершает заказ. Команду может выдать любая из сторон
// (заказчик или выбранный мастер); повторный вызов — no-op.
func (s *Service) CompleteOrder(chatID, orderID int64) error {
	u, err := s.store.GetUserByChatID(chatID)
	if err != nil {
		return err
	}
	order, err := s.store.GetOrderByID(orderID)
	if err != nil {
		return err
	}

	isParty := order.ClientID == u.ID
	var workerID int64
	if selected, errSel := s.store.GetSelectedBid(orderID); errSel == nil {
		workerID = selected.WorkerID
		if workerID == u.ID {
			isParty = true
		}
	}
	if !isParty {
		return fmt.Errorf("%w: пользователь #%d не является стороной заказа #%d", db.ErrNotFound, u.ID, orderID)
	}

	completed, err := s.store.CompleteOrder(orderID)
	if err != nil {
		return err
	}
	if !completed {
		return nil // заказ уже был завершён
	}

	order.Status = constants.ORDER_STATUS_DONE
	s.notifier.OrderCompleted(order, s.chatIDOf(order.ClientID), s.chatIDOf(workerID), workerID)
	return nil
}

// CancelOrder отменяет заказ по команде заказчика. Активные отклики
// становятся expired, их авторы уведомляются.
func (s *Service) CancelOrder(chatID, orderID int64) error {
	u, err := s.requireRole(chatID, constants.ROLE_CLIENT)
	if err != nil {
		return err
	}
	order, err := s.store.GetOrderByID(orderID)
	if err != nil {
		return err
	}
	if order.ClientID != u.ID {
		return fmt.Errorf("%w: заказ #%d принадлежит другому заказчику", db.ErrNotFound, orderID)
	}

	// Список мастеров с активными откликами собирается до отмены.
	var bidderChatIDs []int64
	if bids, errBids := s.store.ListBidsForOrder(orderID); errBids == nil {
		for _, b := range bids {
			if b.Status == constants.BID_STATUS_ACTIVE || b.Status == constants.BID_STATUS_SELECTED {
				if cid := s.chatIDOf(b.WorkerID); cid != 0 {
					bidderChatIDs = append(bidderChatIDs, cid)
				}
			}
		}
	}

	if err := s.store.CancelOrder(orderID); err != nil {
		return err
	}

	order.Status = constants.ORDER_STATUS_CANCELED
	s.notifier.OrderCanceled(order, u.ChatID, bidderChatIDs)
	return nil
}

// ExpireStaleBids снимает активные отклики старше age на незакрытых заказах.
// Вызывается внешним таймером, когда настроен bid_expiry_age.
func (s *Service) ExpireStaleBids(age time.Duration) (int64, error) {
	return s.store.ExpireStaleBids(time.Now().Add(-age))
}
