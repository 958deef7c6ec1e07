package db

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"masterbot/internal/models"
)

// UpsertUser регистрирует пользователя по chat_id либо возвращает уже
// существующего. Повторный онбординг с той же ролью идемпотентен; с другой
// ролью — ErrRoleConflict.
// UpsertUser registers a user by chat_id or returns the existing one.
// Re-onboarding with the same role is idempotent; a different role fails with
// ErrRoleConflict.
func (s *Store) UpsertUser(chatID int64, role string) (int64, error) {
	var id int64
	err := s.withWriteTx(func(tx *sql.Tx) error {
		var existingRole string
		errRow := tx.QueryRow("SELECT id, role FROM users WHERE chat_id = ?", chatID).Scan(&id, &existingRole)
		if errRow == nil {
			if existingRole != role {
				return fmt.Errorf("%w: chat_id %d уже имеет роль %s", ErrRoleConflict, chatID, existingRole)
			}
			return nil
		}
		if !errors.Is(errRow, sql.ErrNoRows) {
			return errRow
		}

		res, errIns := tx.Exec(
			"INSERT INTO users (chat_id, role, created_at) VALUES (?, ?, ?)",
			chatID, role, time.Now().UTC(),
		)
		if errIns != nil {
			return errIns
		}
		id, errIns = res.LastInsertId()
		if errIns != nil {
			return errIns
		}
		log.Info().Int64("chat_id", chatID).Str("role", role).Int64("user_id", id).Msg("пользователь зарегистрирован")
		return nil
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

// GetUserByChatID извлекает пользователя по chat_id.
func (s *Store) GetUserByChatID(chatID int64) (models.User, error) {
	var u models.User
	err := s.db.QueryRow(
		"SELECT id, chat_id, role, created_at FROM users WHERE chat_id = ?", chatID,
	).Scan(&u.ID, &u.ChatID, &u.Role, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return u, fmt.Errorf("%w: пользователь с chat_id %d", ErrNotFound, chatID)
	}
	return u, err
}

// GetUserByID извлекает пользователя по внутреннему id.
func (s *Store) GetUserByID(userID int64) (models.User, error) {
	var u models.User
	err := s.db.QueryRow(
		"SELECT id, chat_id, role, created_at FROM users WHERE id = ?", userID,
	).Scan(&u.ID, &u.ChatID, &u.Role, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return u, fmt.Errorf("%w: пользователь #%d", ErrNotFound, userID)
	}
	return u, err
}

// DeleteUser удаляет пользователя вместе с его профилем. Заказы, отклики и
// отзывы остаются как исторические записи (ссылки на user становятся
// висячими, листинги их пропускают). Возвращает false, если пользователя нет.
func (s *Store) DeleteUser(chatID int64) (bool, error) {
	deleted := false
	err := s.withWriteTx(func(tx *sql.Tx) error {
		var id int64
		errRow := tx.QueryRow("SELECT id FROM users WHERE chat_id = ?", chatID).Scan(&id)
		if errors.Is(errRow, sql.ErrNoRows) {
			return nil
		}
		if errRow != nil {
			return errRow
		}

		if _, err := tx.Exec("DELETE FROM worker_profiles WHERE user_id = ?", id); err != nil {
			return err
		}
		if _, err := tx.Exec("DELETE FROM client_profiles WHERE user_id = ?", id); err != nil {
			return err
		}
		if _, err := tx.Exec("DELETE FROM users WHERE id = ?", id); err != nil {
			return err
		}
		deleted = true
		log.Info().Int64("chat_id", chatID).Int64("user_id", id).Msg("пользователь и профиль удалены")
		return nil
	})
	return deleted, err
}
