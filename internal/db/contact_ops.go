package db

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"masterbot/internal/constants"
	"masterbot/internal/models"
)

// GetContactAccess извлекает запись доступа к контактам по паре (заказ, мастер).
func (s *Store) GetContactAccess(orderID, workerID int64) (models.ContactAccess, error) {
	var ca models.ContactAccess
	err := s.db.QueryRow(`
        SELECT id, order_id, worker_id, client_id, paid, paid_at, created_at
        FROM contacts_access WHERE order_id = ? AND worker_id = ?`,
		orderID, workerID,
	).Scan(&ca.ID, &ca.OrderID, &ca.WorkerID, &ca.ClientID, &ca.Paid, &ca.PaidAt, &ca.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ca, fmt.Errorf("%w: contact access заказ #%d, мастер #%d", ErrNotFound, orderID, workerID)
	}
	return ca, err
}

// EnsureContactAccess идемпотентно создает запись доступа к контактам.
// Обычно запись создаётся внутри SelectBid; операция оставлена для
// восстановления и прямых вызовов.
func (s *Store) EnsureContactAccess(orderID, workerID, clientID int64) error {
	return s.withWriteTx(func(tx *sql.Tx) error {
		_, err := tx.Exec(`
            INSERT INTO contacts_access (order_id, worker_id, client_id, paid, created_at)
            VALUES (?, ?, ?, 0, ?)
            ON CONFLICT (order_id, worker_id) DO NOTHING`,
			orderID, workerID, clientID, time.Now().UTC(),
		)
		return err
	})
}

// MarkContactAccessPaid обрабатывает событие оплаты: paid=false → true и
// заказ master_selected → contact_shared. Повторная оплата — no-op
// (возвращает false). Неизвестная пара — ErrNotFound; отменённый заказ —
// ErrOrderTerminated (события по нему не принимаются).
// MarkContactAccessPaid handles the payment event: paid=false → true and the
// order advances master_selected → contact_shared. A repeated payment is a
// no-op (returns false).
func (s *Store) MarkContactAccessPaid(orderID, workerID int64) (bool, error) {
	advanced := false
	err := s.withWriteTx(func(tx *sql.Tx) error {
		var caID int64
		var paid bool
		errRow := tx.QueryRow(
			"SELECT id, paid FROM contacts_access WHERE order_id = ? AND worker_id = ?",
			orderID, workerID,
		).Scan(&caID, &paid)
		if errors.Is(errRow, sql.ErrNoRows) {
			return fmt.Errorf("%w: contact access заказ #%d, мастер #%d", ErrNotFound, orderID, workerID)
		}
		if errRow != nil {
			return errRow
		}
		if paid {
			return nil // идемпотентность: повторное событие оплаты
		}

		status, err := getOrderStatusInTx(tx, orderID)
		if err != nil {
			return err
		}
		if status == constants.ORDER_STATUS_CANCELED {
			return fmt.Errorf("%w: заказ #%d отменён, оплата не принимается", ErrOrderTerminated, orderID)
		}
		if err := checkTransition(status, constants.ORDER_STATUS_CONTACT_SHARED); err != nil {
			return err
		}

		now := time.Now().UTC()
		if _, err := tx.Exec(
			"UPDATE contacts_access SET paid = 1, paid_at = ? WHERE id = ?", now, caID,
		); err != nil {
			return err
		}
		if err := setOrderStatusInTx(tx, orderID, constants.ORDER_STATUS_CONTACT_SHARED); err != nil {
			return err
		}
		advanced = true
		return nil
	})
	if advanced {
		log.Info().Int64("order_id", orderID).Int64("worker_id", workerID).Msg("доступ к контактам оплачен")
	}
	return advanced, err
}
