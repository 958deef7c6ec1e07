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

const bidColumns = `b.id, b.order_id, b.worker_id, b.price, b.deadline, b.comment, b.status, b.created_at, b.updated_at`

func scanBid(row interface{ Scan(...interface{}) error }) (models.Bid, error) {
	var b models.Bid
	err := row.Scan(&b.ID, &b.OrderID, &b.WorkerID, &b.Price, &b.Deadline, &b.Comment,
		&b.Status, &b.CreatedAt, &b.UpdatedAt)
	return b, err
}

// CreateBid создает активный отклик мастера на заказ. У мастера может быть не
// больше одного активного отклика на заказ: прежний становится expired, новый —
// active. Первый активный отклик переводит заказ open → pending_choice.
// CreateBid creates an active bid. A worker holds at most one active bid per
// order: the prior one expires, the new one becomes active. The first active
// bid moves the order open → pending_choice.
func (s *Store) CreateBid(b models.Bid) (int64, error) {
	var id int64
	err := s.withWriteTx(func(tx *sql.Tx) error {
		status, err := getOrderStatusInTx(tx, b.OrderID)
		if err != nil {
			return err
		}
		switch status {
		case constants.ORDER_STATUS_OPEN, constants.ORDER_STATUS_PENDING_CHOICE:
			// отклики принимаются
		case constants.ORDER_STATUS_DONE, constants.ORDER_STATUS_CANCELED:
			return fmt.Errorf("%w: заказ #%d", ErrOrderTerminated, b.OrderID)
		default:
			return fmt.Errorf("%w: заказ #%d уже в статусе %s", ErrInvalidTransition, b.OrderID, status)
		}

		now := time.Now().UTC()

		// Прежний активный отклик этого мастера заменяется новым.
		if _, err := tx.Exec(
			"UPDATE bids SET status = ?, updated_at = ? WHERE order_id = ? AND worker_id = ? AND status = ?",
			constants.BID_STATUS_EXPIRED, now, b.OrderID, b.WorkerID, constants.BID_STATUS_ACTIVE,
		); err != nil {
			return err
		}

		res, err := tx.Exec(`
            INSERT INTO bids (order_id, worker_id, price, deadline, comment, status, created_at, updated_at)
            VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			b.OrderID, b.WorkerID, b.Price, b.Deadline, b.Comment, constants.BID_STATUS_ACTIVE, now, now,
		)
		if err != nil {
			return err
		}
		if id, err = res.LastInsertId(); err != nil {
			return err
		}

		if status == constants.ORDER_STATUS_OPEN {
			if err := setOrderStatusInTx(tx, b.OrderID, constants.ORDER_STATUS_PENDING_CHOICE); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	log.Info().Int64("bid_id", id).Int64("order_id", b.OrderID).Int64("worker_id", b.WorkerID).Msg("отклик размещён")
	return id, nil
}

// GetBidByID извлекает отклик по ID.
func (s *Store) GetBidByID(bidID int64) (models.Bid, error) {
	b, err := scanBid(s.db.QueryRow("SELECT "+bidColumns+" FROM bids b WHERE b.id = ?", bidID))
	if errors.Is(err, sql.ErrNoRows) {
		return b, fmt.Errorf("%w: отклик #%d", ErrNotFound, bidID)
	}
	return b, err
}

// ListBidsForOrder возвращает отклики заказа: сначала active, затем остальные,
// внутри группы — по created_at по возрастанию. Отклики удалённых мастеров
// пропускаются (JOIN users).
func (s *Store) ListBidsForOrder(orderID int64) ([]models.Bid, error) {
	rows, err := s.db.Query(`
        SELECT `+bidColumns+`
        FROM bids b
        JOIN users u ON u.id = b.worker_id
        WHERE b.order_id = ?
        ORDER BY CASE b.status WHEN ? THEN 0 ELSE 1 END, b.created_at ASC, b.id ASC`,
		orderID, constants.BID_STATUS_ACTIVE,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bids []models.Bid
	for rows.Next() {
		b, errScan := scanBid(rows)
		if errScan != nil {
			log.Error().Err(errScan).Msg("ошибка сканирования отклика")
			continue
		}
		bids = append(bids, b)
	}
	return bids, rows.Err()
}

// GetSelectedBid возвращает выбранный отклик заказа.
func (s *Store) GetSelectedBid(orderID int64) (models.Bid, error) {
	b, err := scanBid(s.db.QueryRow(
		"SELECT "+bidColumns+" FROM bids b WHERE b.order_id = ? AND b.status = ?",
		orderID, constants.BID_STATUS_SELECTED,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return b, fmt.Errorf("%w: выбранный отклик заказа #%d", ErrNotFound, orderID)
	}
	return b, err
}

// SelectBid атомарно оформляет выбор мастера: выбранный отклик → selected,
// остальные активные → rejected, создаётся (идемпотентно) запись
// contacts_access с paid=false, заказ → master_selected.
// Возвращает выбранный отклик.
func (s *Store) SelectBid(orderID, bidID int64) (models.Bid, error) {
	var selected models.Bid
	err := s.withWriteTx(func(tx *sql.Tx) error {
		status, err := getOrderStatusInTx(tx, orderID)
		if err != nil {
			return err
		}
		if err := checkTransition(status, constants.ORDER_STATUS_MASTER_SELECTED); err != nil {
			return err
		}

		var clientID int64
		if err := tx.QueryRow("SELECT client_id FROM orders WHERE id = ?", orderID).Scan(&clientID); err != nil {
			return err
		}

		b, err := scanBid(tx.QueryRow("SELECT "+bidColumns+" FROM bids b WHERE b.id = ?", bidID))
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: отклик #%d", ErrNotFound, bidID)
		}
		if err != nil {
			return err
		}
		if b.OrderID != orderID {
			return fmt.Errorf("%w: отклик #%d не относится к заказу #%d", ErrBidNotSelectable, bidID, orderID)
		}
		if b.Status != constants.BID_STATUS_ACTIVE {
			return fmt.Errorf("%w: отклик #%d в статусе %s", ErrBidNotSelectable, bidID, b.Status)
		}

		now := time.Now().UTC()
		if _, err := tx.Exec(
			"UPDATE bids SET status = ?, updated_at = ? WHERE order_id = ? AND status = ? AND id != ?",
			constants.BID_STATUS_REJECTED, now, orderID, constants.BID_STATUS_ACTIVE, bidID,
		); err != nil {
			return err
		}
		if _, err := tx.Exec(
			"UPDATE bids SET status = ?, updated_at = ? WHERE id = ?",
			constants.BID_STATUS_SELECTED, now, bidID,
		); err != nil {
			return err
		}

		// Идемпотентное создание записи доступа к контактам.
		if _, err := tx.Exec(`
            INSERT INTO contacts_access (order_id, worker_id, client_id, paid, created_at)
            VALUES (?, ?, ?, 0, ?)
            ON CONFLICT (order_id, worker_id) DO NOTHING`,
			orderID, b.WorkerID, clientID, now,
		); err != nil {
			return err
		}

		if err := setOrderStatusInTx(tx, orderID, constants.ORDER_STATUS_MASTER_SELECTED); err != nil {
			return err
		}

		b.Status = constants.BID_STATUS_SELECTED
		selected = b
		return nil
	})
	if err != nil {
		return models.Bid{}, err
	}
	log.Info().Int64("order_id", orderID).Int64("bid_id", bidID).Int64("worker_id", selected.WorkerID).Msg("мастер выбран")
	return selected, nil
}

// WithdrawBid отзывает активный отклик (→ expired). Если активных откликов у
// заказа не осталось и он в pending_choice, заказ возвращается в open —
// единственный разрешённый переход назад.
func (s *Store) WithdrawBid(bidID, workerID int64) error {
	return s.withWriteTx(func(tx *sql.Tx) error {
		b, err := scanBid(tx.QueryRow("SELECT "+bidColumns+" FROM bids b WHERE b.id = ?", bidID))
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: отклик #%d", ErrNotFound, bidID)
		}
		if err != nil {
			return err
		}
		if b.WorkerID != workerID {
			return fmt.Errorf("%w: отклик #%d принадлежит другому мастеру", ErrBidNotSelectable, bidID)
		}
		if b.Status != constants.BID_STATUS_ACTIVE {
			// rejected/expired/selected отклики неизменяемы
			return fmt.Errorf("%w: отклик #%d в статусе %s", ErrBidNotSelectable, bidID, b.Status)
		}

		now := time.Now().UTC()
		if _, err := tx.Exec(
			"UPDATE bids SET status = ?, updated_at = ? WHERE id = ?",
			constants.BID_STATUS_EXPIRED, now, bidID,
		); err != nil {
			return err
		}
		if err := revertOrderIfNoActiveBids(tx, b.OrderID); err != nil {
			return err
		}
		log.Info().Int64("bid_id", bidID).Int64("order_id", b.OrderID).Msg("отклик отозван")
		return nil
	})
}

// ExpireStaleBids переводит в expired активные отклики старше cutoff на
// заказах в статусах open/pending_choice. Policy hook для внешнего таймера.
// Возвращает количество истёкших откликов.
func (s *Store) ExpireStaleBids(cutoff time.Time) (int64, error) {
	var expired int64
	err := s.withWriteTx(func(tx *sql.Tx) error {
		rows, err := tx.Query(`
            SELECT b.id, b.order_id FROM bids b
            JOIN orders o ON o.id = b.order_id
            WHERE b.status = ? AND b.created_at < ? AND o.status IN (?, ?)`,
			constants.BID_STATUS_ACTIVE, cutoff.UTC(),
			constants.ORDER_STATUS_OPEN, constants.ORDER_STATUS_PENDING_CHOICE,
		)
		if err != nil {
			return err
		}
		type stale struct{ bidID, orderID int64 }
		var stales []stale
		for rows.Next() {
			var st stale
			if errScan := rows.Scan(&st.bidID, &st.orderID); errScan != nil {
				rows.Close()
				return errScan
			}
			stales = append(stales, st)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return err
		}

		now := time.Now().UTC()
		touchedOrders := make(map[int64]bool)
		for _, st := range stales {
			if _, err := tx.Exec(
				"UPDATE bids SET status = ?, updated_at = ? WHERE id = ?",
				constants.BID_STATUS_EXPIRED, now, st.bidID,
			); err != nil {
				return err
			}
			touchedOrders[st.orderID] = true
			expired++
		}
		for orderID := range touchedOrders {
			if err := revertOrderIfNoActiveBids(tx, orderID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	if expired > 0 {
		log.Info().Int64("count", expired).Msg("истёкшие отклики сняты")
	}
	return expired, nil
}

// revertOrderIfNoActiveBids возвращает заказ pending_choice → open, если у
// него не осталось активных откликов.
func revertOrderIfNoActiveBids(tx *sql.Tx, orderID int64) error {
	status, err := getOrderStatusInTx(tx, orderID)
	if err != nil {
		return err
	}
	if status != constants.ORDER_STATUS_PENDING_CHOICE {
		return nil
	}
	var active int
	if err := tx.QueryRow(
		"SELECT COUNT(*) FROM bids WHERE order_id = ? AND status = ?",
		orderID, constants.BID_STATUS_ACTIVE,
	).Scan(&active); err != nil {
		return err
	}
	if active == 0 {
		return setOrderStatusInTx(tx, orderID, constants.ORDER_STATUS_OPEN)
	}
	return nil
}
