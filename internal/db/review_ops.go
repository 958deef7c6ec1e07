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

// AddReview добавляет отзыв и атомарно обновляет кэш рейтинга получателя.
// Предусловия (иначе ErrReviewNotAllowed): заказ в статусе done, from —
// участник заказа (заказчик или выбранный мастер), to — вторая сторона,
// rating 1..5. Дубликат по (order, from, to) — ErrAlreadyReviewed без
// побочных эффектов.
// AddReview inserts a review and atomically updates the reviewee's cached
// rating. Insert + running-mean update happen in one transaction.
func (s *Store) AddReview(r models.Review) (int64, error) {
	if r.Rating < 1 || r.Rating > 5 {
		return 0, fmt.Errorf("%w: оценка %d вне диапазона 1..5", ErrReviewNotAllowed, r.Rating)
	}

	var id int64
	err := s.withWriteTx(func(tx *sql.Tx) error {
		status, err := getOrderStatusInTx(tx, r.OrderID)
		if err != nil {
			return err
		}
		if status != constants.ORDER_STATUS_DONE {
			return fmt.Errorf("%w: заказ #%d в статусе %s", ErrReviewNotAllowed, r.OrderID, status)
		}

		var clientID int64
		if err := tx.QueryRow("SELECT client_id FROM orders WHERE id = ?", r.OrderID).Scan(&clientID); err != nil {
			return err
		}
		var workerID int64
		errRow := tx.QueryRow(
			"SELECT worker_id FROM bids WHERE order_id = ? AND status = ?",
			r.OrderID, constants.BID_STATUS_SELECTED,
		).Scan(&workerID)
		if errors.Is(errRow, sql.ErrNoRows) {
			return fmt.Errorf("%w: у заказа #%d нет выбранного мастера", ErrReviewNotAllowed, r.OrderID)
		}
		if errRow != nil {
			return errRow
		}

		// Отзыв возможен только между двумя участниками заказа.
		switch {
		case r.FromUserID == clientID && r.ToUserID == workerID:
			r.RoleFrom, r.RoleTo = constants.ROLE_CLIENT, constants.ROLE_WORKER
		case r.FromUserID == workerID && r.ToUserID == clientID:
			r.RoleFrom, r.RoleTo = constants.ROLE_WORKER, constants.ROLE_CLIENT
		default:
			return fmt.Errorf("%w: пользователи #%d → #%d не являются сторонами заказа #%d",
				ErrReviewNotAllowed, r.FromUserID, r.ToUserID, r.OrderID)
		}

		res, errIns := tx.Exec(`
            INSERT INTO reviews (order_id, from_user_id, to_user_id, role_from, role_to, rating, comment, created_at)
            VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			r.OrderID, r.FromUserID, r.ToUserID, r.RoleFrom, r.RoleTo, r.Rating, r.Comment, time.Now().UTC(),
		)
		if errIns != nil {
			if isUniqueViolation(errIns) {
				return fmt.Errorf("%w: заказ #%d, от #%d к #%d", ErrAlreadyReviewed, r.OrderID, r.FromUserID, r.ToUserID)
			}
			return errIns
		}
		if id, errIns = res.LastInsertId(); errIns != nil {
			return errIns
		}

		return applyRatingInTx(tx, r.ToUserID, r.RoleTo, r.Rating)
	})
	if err != nil {
		return 0, err
	}
	log.Info().Int64("review_id", id).Int64("order_id", r.OrderID).
		Int64("from", r.FromUserID).Int64("to", r.ToUserID).Int("rating", r.Rating).Msg("отзыв добавлен")
	return id, nil
}

// applyRatingInTx обновляет кэш профиля получателя скользящим средним:
// rating_new = (rating_old*count_old + r) / (count_old + 1).
// Для мастера дополнительно растёт verified_reviews: все отзывы проходят
// через завершённый заказ и подтверждены по построению.
func applyRatingInTx(tx *sql.Tx, toUserID int64, roleTo string, rating int) error {
	table := "client_profiles"
	if roleTo == constants.ROLE_WORKER {
		table = "worker_profiles"
	}

	var oldRating float64
	var oldCount int
	errRow := tx.QueryRow(
		"SELECT rating, rating_count FROM "+table+" WHERE user_id = ?", toUserID,
	).Scan(&oldRating, &oldCount)
	if errors.Is(errRow, sql.ErrNoRows) {
		// Профиль получателя удалён: отзыв остаётся исторической записью,
		// обновлять нечего.
		return nil
	}
	if errRow != nil {
		return errRow
	}

	newCount := oldCount + 1
	newRating := (oldRating*float64(oldCount) + float64(rating)) / float64(newCount)

	if table == "worker_profiles" {
		_, err := tx.Exec(
			"UPDATE worker_profiles SET rating = ?, rating_count = ?, verified_reviews = verified_reviews + 1 WHERE user_id = ?",
			newRating, newCount, toUserID,
		)
		return err
	}
	_, err := tx.Exec(
		"UPDATE client_profiles SET rating = ?, rating_count = ? WHERE user_id = ?",
		newRating, newCount, toUserID,
	)
	return err
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// HasReview сообщает, есть ли уже отзыв по ключу (заказ, от, к).
func (s *Store) HasReview(orderID, fromUserID, toUserID int64) (bool, error) {
	var one int
	err := s.db.QueryRow(
		"SELECT 1 FROM reviews WHERE order_id = ? AND from_user_id = ? AND to_user_id = ?",
		orderID, fromUserID, toUserID,
	).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return err == nil, err
}

// ListReviewsForUser возвращает отзывы, полученные пользователем, новые сверху.
func (s *Store) ListReviewsForUser(toUserID int64) ([]models.Review, error) {
	return s.queryReviews(
		`SELECT id, order_id, from_user_id, to_user_id, role_from, role_to, rating, comment, created_at
         FROM reviews WHERE to_user_id = ? ORDER BY created_at DESC, id DESC`, toUserID)
}

// ListAllReviews возвращает все отзывы (для отчётов).
func (s *Store) ListAllReviews() ([]models.Review, error) {
	return s.queryReviews(
		`SELECT id, order_id, from_user_id, to_user_id, role_from, role_to, rating, comment, created_at
         FROM reviews ORDER BY id`)
}

func (s *Store) queryReviews(query string, params ...interface{}) ([]models.Review, error) {
	rows, err := s.db.Query(query, params...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reviews []models.Review
	for rows.Next() {
		var r models.Review
		if errScan := rows.Scan(&r.ID, &r.OrderID, &r.FromUserID, &r.ToUserID,
			&r.RoleFrom, &r.RoleTo, &r.Rating, &r.Comment, &r.CreatedAt); errScan != nil {
			log.Error().Err(errScan).Msg("ошибка сканирования отзыва")
			continue
		}
		reviews = append(reviews, r)
	}
	return reviews, rows.Err()
}

// RecomputeRating пересчитывает рейтинг пользователя агрегацией по таблице
// reviews. Используется для аудита и сверки кэша (property check).
func (s *Store) RecomputeRating(toUserID int64) (float64, int, error) {
	var sum sql.NullFloat64
	var count int
	err := s.db.QueryRow(
		"SELECT SUM(rating), COUNT(*) FROM reviews WHERE to_user_id = ?", toUserID,
	).Scan(&sum, &count)
	if err != nil {
		return 0, 0, err
	}
	if count == 0 {
		return 0, 0, nil
	}
	return sum.Float64 / float64(count), count, nil
}
