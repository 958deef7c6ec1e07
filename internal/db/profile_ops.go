package db

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"masterbot/internal/constants"
	"masterbot/internal/models"
)

// CreateWorkerProfile создает анкету мастера. Повторное создание — ErrProfileExists.
func (s *Store) CreateWorkerProfile(p models.WorkerProfile) error {
	return s.withWriteTx(func(tx *sql.Tx) error {
		if err := ensureProfileAbsent(tx, "worker_profiles", p.UserID); err != nil {
			return err
		}
		_, err := tx.Exec(`
            INSERT INTO worker_profiles (user_id, name, phone, city, regions, categories, experience, description, portfolio_photos)
            VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			p.UserID, p.Name, p.Phone, p.City, p.Regions, p.Categories, p.Experience, p.Description, p.PortfolioPhotos,
		)
		if err != nil {
			return err
		}
		log.Info().Int64("user_id", p.UserID).Msg("анкета мастера создана")
		return nil
	})
}

// CreateClientProfile создает анкету заказчика. Повторное создание — ErrProfileExists.
func (s *Store) CreateClientProfile(p models.ClientProfile) error {
	return s.withWriteTx(func(tx *sql.Tx) error {
		if err := ensureProfileAbsent(tx, "client_profiles", p.UserID); err != nil {
			return err
		}
		_, err := tx.Exec(`
            INSERT INTO client_profiles (user_id, name, phone, city, description)
            VALUES (?, ?, ?, ?, ?)`,
			p.UserID, p.Name, p.Phone, p.City, p.Description,
		)
		if err != nil {
			return err
		}
		log.Info().Int64("user_id", p.UserID).Msg("анкета заказчика создана")
		return nil
	})
}

func ensureProfileAbsent(tx *sql.Tx, table string, userID int64) error {
	var one int
	err := tx.QueryRow("SELECT 1 FROM "+table+" WHERE user_id = ?", userID).Scan(&one)
	if err == nil {
		return fmt.Errorf("%w: user_id %d", ErrProfileExists, userID)
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return err
	}
	return nil
}

// GetWorkerProfile извлекает анкету мастера.
func (s *Store) GetWorkerProfile(userID int64) (models.WorkerProfile, error) {
	var p models.WorkerProfile
	err := s.db.QueryRow(`
        SELECT user_id, name, phone, city, regions, categories, experience, description,
               portfolio_photos, rating, rating_count, verified_reviews
        FROM worker_profiles WHERE user_id = ?`, userID,
	).Scan(&p.UserID, &p.Name, &p.Phone, &p.City, &p.Regions, &p.Categories, &p.Experience,
		&p.Description, &p.PortfolioPhotos, &p.Rating, &p.RatingCount, &p.VerifiedReviews)
	if errors.Is(err, sql.ErrNoRows) {
		return p, fmt.Errorf("%w: анкета мастера user_id %d", ErrNotFound, userID)
	}
	return p, err
}

// GetClientProfile извлекает анкету заказчика.
func (s *Store) GetClientProfile(userID int64) (models.ClientProfile, error) {
	var p models.ClientProfile
	err := s.db.QueryRow(`
        SELECT user_id, name, phone, city, description, rating, rating_count
        FROM client_profiles WHERE user_id = ?`, userID,
	).Scan(&p.UserID, &p.Name, &p.Phone, &p.City, &p.Description, &p.Rating, &p.RatingCount)
	if errors.Is(err, sql.ErrNoRows) {
		return p, fmt.Errorf("%w: анкета заказчика user_id %d", ErrNotFound, userID)
	}
	return p, err
}

// UpdateWorkerField обновляет одно поле анкеты мастера. Допустимые поля
// перечислены явно; всё остальное — ErrInvalidField. Списочные поля принимают
// models.StringList.
// UpdateWorkerField updates a single worker profile field. Allowed fields are
// enumerated exhaustively; anything else fails with ErrInvalidField.
func (s *Store) UpdateWorkerField(userID int64, field string, value interface{}) error {
	var column string
	switch field {
	case constants.FIELD_NAME:
		column = "name"
	case constants.FIELD_PHONE:
		column = "phone"
	case constants.FIELD_CITY:
		column = "city"
	case constants.FIELD_REGIONS:
		column = "regions"
	case constants.FIELD_CATEGORIES:
		column = "categories"
	case constants.FIELD_EXPERIENCE:
		column = "experience"
	case constants.FIELD_DESCRIPTION:
		column = "description"
	case constants.FIELD_PORTFOLIO_PHOTOS:
		column = "portfolio_photos"
	default:
		return fmt.Errorf("%w: %s", ErrInvalidField, field)
	}
	return s.updateProfileColumn("worker_profiles", column, userID, value)
}

// UpdateClientField обновляет одно поле анкеты заказчика.
func (s *Store) UpdateClientField(userID int64, field string, value interface{}) error {
	var column string
	switch field {
	case constants.FIELD_NAME:
		column = "name"
	case constants.FIELD_PHONE:
		column = "phone"
	case constants.FIELD_CITY:
		column = "city"
	case constants.FIELD_DESCRIPTION:
		column = "description"
	default:
		return fmt.Errorf("%w: %s", ErrInvalidField, field)
	}
	return s.updateProfileColumn("client_profiles", column, userID, value)
}

func (s *Store) updateProfileColumn(table, column string, userID int64, value interface{}) error {
	return s.withWriteTx(func(tx *sql.Tx) error {
		res, err := tx.Exec(
			fmt.Sprintf("UPDATE %s SET %s = ? WHERE user_id = ?", table, column),
			value, userID,
		)
		if err != nil {
			return err
		}
		affected, _ := res.RowsAffected()
		if affected == 0 {
			return fmt.Errorf("%w: профиль user_id %d", ErrNotFound, userID)
		}
		log.Info().Int64("user_id", userID).Str("field", column).Msg("поле профиля обновлено")
		return nil
	})
}
