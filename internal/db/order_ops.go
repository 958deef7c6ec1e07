package db

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"masterbot/internal/constants"
	"masterbot/internal/models"
)

// Граф допустимых переходов статуса заказа (§ жизненный цикл заказа).
// Единственный разрешённый переход назад — pending_choice → open (все отклики
// отозваны или истекли).
var allowedOrderTransitions = map[string][]string{
	constants.ORDER_STATUS_OPEN:            {constants.ORDER_STATUS_PENDING_CHOICE, constants.ORDER_STATUS_CANCELED},
	constants.ORDER_STATUS_PENDING_CHOICE:  {constants.ORDER_STATUS_MASTER_SELECTED, constants.ORDER_STATUS_OPEN, constants.ORDER_STATUS_CANCELED},
	constants.ORDER_STATUS_MASTER_SELECTED: {constants.ORDER_STATUS_CONTACT_SHARED, constants.ORDER_STATUS_CANCELED},
	constants.ORDER_STATUS_CONTACT_SHARED:  {constants.ORDER_STATUS_DONE, constants.ORDER_STATUS_CANCELED},
	constants.ORDER_STATUS_DONE:            {},
	constants.ORDER_STATUS_CANCELED:        {},
}

func isTerminalOrderStatus(status string) bool {
	return status == constants.ORDER_STATUS_DONE || status == constants.ORDER_STATUS_CANCELED
}

func transitionAllowed(from, to string) bool {
	for _, next := range allowedOrderTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// checkTransition возвращает ошибку нужного класса для недопустимого перехода.
func checkTransition(from, to string) error {
	if transitionAllowed(from, to) {
		return nil
	}
	if isTerminalOrderStatus(from) {
		return fmt.Errorf("%w: статус %s", ErrOrderTerminated, from)
	}
	return fmt.Errorf("%w: %s → %s", ErrInvalidTransition, from, to)
}

const orderColumns = `o.id, o.client_id, o.title, o.description, o.city, o.address, o.category,
               o.budget_type, o.budget_value, o.deadline, o.status, o.created_at, o.updated_at`

func scanOrder(row interface{ Scan(...interface{}) error }) (models.Order, error) {
	var o models.Order
	err := row.Scan(&o.ID, &o.ClientID, &o.Title, &o.Description, &o.City, &o.Address, &o.Category,
		&o.BudgetType, &o.BudgetValue, &o.Deadline, &o.Status, &o.CreatedAt, &o.UpdatedAt)
	return o, err
}

// CreateOrder создает заказ в статусе open.
func (s *Store) CreateOrder(o models.Order) (int64, error) {
	if o.Title == "" {
		return 0, errors.New("название заказа не может быть пустым")
	}
	if o.BudgetType != constants.BUDGET_FIXED && o.BudgetType != constants.BUDGET_FLEXIBLE {
		return 0, fmt.Errorf("неизвестный тип бюджета: %s", o.BudgetType)
	}

	var id int64
	err := s.withWriteTx(func(tx *sql.Tx) error {
		var one int
		if errRow := tx.QueryRow("SELECT 1 FROM users WHERE id = ?", o.ClientID).Scan(&one); errRow != nil {
			if errors.Is(errRow, sql.ErrNoRows) {
				return fmt.Errorf("%w: заказчик #%d", ErrNotFound, o.ClientID)
			}
			return errRow
		}

		now := time.Now().UTC()
		res, errIns := tx.Exec(`
            INSERT INTO orders (client_id, title, description, city, address, category,
                                budget_type, budget_value, deadline, status, created_at, updated_at)
            VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			o.ClientID, o.Title, o.Description, o.City, o.Address, o.Category,
			o.BudgetType, o.BudgetValue.NullFloat64, o.Deadline, constants.ORDER_STATUS_OPEN, now, now,
		)
		if errIns != nil {
			return errIns
		}
		var errID error
		id, errID = res.LastInsertId()
		return errID
	})
	if err != nil {
		return 0, err
	}
	log.Info().Int64("order_id", id).Int64("client_id", o.ClientID).Msg("заказ создан")
	return id, nil
}

// GetOrderByID извлекает заказ по ID.
func (s *Store) GetOrderByID(orderID int64) (models.Order, error) {
	o, err := scanOrder(s.db.QueryRow(
		"SELECT "+orderColumns+" FROM orders o WHERE o.id = ?", orderID))
	if errors.Is(err, sql.ErrNoRows) {
		return o, fmt.Errorf("%w: заказ #%d", ErrNotFound, orderID)
	}
	return o, err
}

// getOrderStatusInTx читает статус заказа внутри транзакции.
func getOrderStatusInTx(tx *sql.Tx, orderID int64) (string, error) {
	var status string
	err := tx.QueryRow("SELECT status FROM orders WHERE id = ?", orderID).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("%w: заказ #%d", ErrNotFound, orderID)
	}
	return status, err
}

func setOrderStatusInTx(tx *sql.Tx, orderID int64, status string) error {
	_, err := tx.Exec("UPDATE orders SET status = ?, updated_at = ? WHERE id = ?",
		status, time.Now().UTC(), orderID)
	return err
}

// UpdateOrderStatus переводит заказ в новый статус, проверяя граф переходов.
// Недопустимый переход — ErrInvalidTransition (ErrOrderTerminated для
// терминальных состояний).
func (s *Store) UpdateOrderStatus(orderID int64, newStatus string) error {
	return s.withWriteTx(func(tx *sql.Tx) error {
		current, err := getOrderStatusInTx(tx, orderID)
		if err != nil {
			return err
		}
		if err := checkTransition(current, newStatus); err != nil {
			return err
		}
		if err := setOrderStatusInTx(tx, orderID, newStatus); err != nil {
			return err
		}
		log.Info().Int64("order_id", orderID).Str("from", current).Str("to", newStatus).Msg("статус заказа обновлён")
		return nil
	})
}

// CompleteOrder переводит заказ contact_shared → done. Повторный вызов —
// no-op (возвращает false без ошибки). Достаточно команды одной из сторон.
func (s *Store) CompleteOrder(orderID int64) (bool, error) {
	completed := false
	err := s.withWriteTx(func(tx *sql.Tx) error {
		current, err := getOrderStatusInTx(tx, orderID)
		if err != nil {
			return err
		}
		if current == constants.ORDER_STATUS_DONE {
			return nil // уже завершён
		}
		if err := checkTransition(current, constants.ORDER_STATUS_DONE); err != nil {
			return err
		}
		if err := setOrderStatusInTx(tx, orderID, constants.ORDER_STATUS_DONE); err != nil {
			return err
		}
		completed = true
		return nil
	})
	if completed {
		log.Info().Int64("order_id", orderID).Msg("заказ завершён")
	}
	return completed, err
}

// CancelOrder отменяет заказ из любого нетерминального статуса. Все активные
// отклики становятся expired; выбранный отклик (если был) сохраняет статус
// selected как историческая запись. Записи contacts_access не трогаем.
func (s *Store) CancelOrder(orderID int64) error {
	return s.withWriteTx(func(tx *sql.Tx) error {
		current, err := getOrderStatusInTx(tx, orderID)
		if err != nil {
			return err
		}
		if err := checkTransition(current, constants.ORDER_STATUS_CANCELED); err != nil {
			return err
		}
		if _, err := tx.Exec(
			"UPDATE bids SET status = ?, updated_at = ? WHERE order_id = ? AND status = ?",
			constants.BID_STATUS_EXPIRED, time.Now().UTC(), orderID, constants.BID_STATUS_ACTIVE,
		); err != nil {
			return err
		}
		if err := setOrderStatusInTx(tx, orderID, constants.ORDER_STATUS_CANCELED); err != nil {
			return err
		}
		log.Info().Int64("order_id", orderID).Str("from", current).Msg("заказ отменён")
		return nil
	})
}

// ListOrdersFeed возвращает ленту заказов для мастера: статусы open и
// pending_choice, сортировка по created_at по убыванию, опциональные фильтры
// по городу и категории. Заказы удалённых заказчиков пропускаются (JOIN users).
func (s *Store) ListOrdersFeed(filter models.OrderFeedFilter) ([]models.Order, error) {
	var conditions []string
	var params []interface{}

	conditions = append(conditions, "o.status IN (?, ?)")
	params = append(params, constants.ORDER_STATUS_OPEN, constants.ORDER_STATUS_PENDING_CHOICE)

	if len(filter.Cities) > 0 {
		conditions = append(conditions, "o.city IN (?"+strings.Repeat(", ?", len(filter.Cities)-1)+")")
		for _, c := range filter.Cities {
			params = append(params, c)
		}
	}
	if len(filter.Categories) > 0 {
		conditions = append(conditions, "o.category IN (?"+strings.Repeat(", ?", len(filter.Categories)-1)+")")
		for _, c := range filter.Categories {
			params = append(params, c)
		}
	}

	query := `
        SELECT ` + orderColumns + `
        FROM orders o
        JOIN users u ON u.id = o.client_id
        WHERE ` + strings.Join(conditions, " AND ") + `
        ORDER BY o.created_at DESC, o.id DESC`
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", filter.Limit, filter.Offset)
	}

	return s.queryOrders(query, params...)
}

// ListOrdersByClient возвращает заказы заказчика, новые сверху.
func (s *Store) ListOrdersByClient(clientID int64) ([]models.Order, error) {
	return s.queryOrders(
		"SELECT "+orderColumns+" FROM orders o WHERE o.client_id = ? ORDER BY o.created_at DESC, o.id DESC",
		clientID,
	)
}

// ListAllOrders возвращает все заказы (для отчётов). Исторический запрос:
// висячие ссылки на удалённых пользователей здесь допустимы.
func (s *Store) ListAllOrders() ([]models.Order, error) {
	return s.queryOrders("SELECT " + orderColumns + " FROM orders o ORDER BY o.id")
}

func (s *Store) queryOrders(query string, params ...interface{}) ([]models.Order, error) {
	rows, err := s.db.Query(query, params...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []models.Order
	for rows.Next() {
		o, errScan := scanOrder(rows)
		if errScan != nil {
			log.Error().Err(errScan).Msg("ошибка сканирования заказа")
			continue
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}
