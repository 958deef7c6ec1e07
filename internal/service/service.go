// Пакет service — ядро жизненного цикла заказов и откликов: принимает команды
// транспорта и события оплаты, исполняет их через Store и публикует исходящие
// события. Мутирующие операции сериализуются writer'ом хранилища.
package service

import (
	"errors"
	"fmt"

	"masterbot/internal/constants"
	"masterbot/internal/db"
	"masterbot/internal/models"
)

// Service связывает хранилище, нотификатор и параметры тарифа.
type Service struct {
	store     *db.Store
	notifier  Notifier
	accessFee float64
}

// New создает ядро. notifier == nil заменяется заглушкой.
func New(store *db.Store, notifier Notifier, accessFee float64) *Service {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &Service{store: store, notifier: notifier, accessFee: accessFee}
}

// Store возвращает хранилище (для read-only хендлеров API).
func (s *Service) Store() *db.Store {
	return s.store
}

// AccessFee возвращает стоимость доступа к контактам.
func (s *Service) AccessFee() float64 {
	return s.accessFee
}

// Onboard регистрирует пользователя с ролью. Повторный вызов с той же ролью
// идемпотентен; с другой — db.ErrRoleConflict.
func (s *Service) Onboard(chatID int64, role string) (int64, error) {
	if role != constants.ROLE_WORKER && role != constants.ROLE_CLIENT {
		return 0, fmt.Errorf("неизвестная роль: %s", role)
	}
	return s.store.UpsertUser(chatID, role)
}

// DeleteProfile удаляет пользователя и его анкету. Заказы, отклики и отзывы
// остаются историческими записями.
func (s *Service) DeleteProfile(chatID int64) (bool, error) {
	return s.store.DeleteUser(chatID)
}

// RegisterWorkerProfile сохраняет анкету мастера после онбординга.
func (s *Service) RegisterWorkerProfile(chatID int64, p models.WorkerProfile) error {
	u, err := s.store.GetUserByChatID(chatID)
	if err != nil {
		return err
	}
	if u.Role != constants.ROLE_WORKER {
		return fmt.Errorf("%w: пользователь #%d не мастер", db.ErrRoleConflict, u.ID)
	}
	p.UserID = u.ID
	return s.store.CreateWorkerProfile(p)
}

// RegisterClientProfile сохраняет анкету заказчика после онбординга.
func (s *Service) RegisterClientProfile(chatID int64, p models.ClientProfile) error {
	u, err := s.store.GetUserByChatID(chatID)
	if err != nil {
		return err
	}
	if u.Role != constants.ROLE_CLIENT {
		return fmt.Errorf("%w: пользователь #%d не заказчик", db.ErrRoleConflict, u.ID)
	}
	p.UserID = u.ID
	return s.store.CreateClientProfile(p)
}

// UpdateProfileField обновляет одно поле анкеты; набор допустимых полей
// зависит от роли пользователя.
func (s *Service) UpdateProfileField(chatID int64, field string, value interface{}) error {
	u, err := s.store.GetUserByChatID(chatID)
	if err != nil {
		return err
	}
	if u.Role == constants.ROLE_WORKER {
		return s.store.UpdateWorkerField(u.ID, field, value)
	}
	return s.store.UpdateClientField(u.ID, field, value)
}

// requireRole возвращает пользователя, если его роль совпадает с требуемой.
func (s *Service) requireRole(chatID int64, role string) (models.User, error) {
	u, err := s.store.GetUserByChatID(chatID)
	if err != nil {
		return u, err
	}
	if u.Role != role {
		return u, fmt.Errorf("%w: операция доступна только роли %s", db.ErrRoleConflict, role)
	}
	return u, nil
}

// chatIDOf возвращает chat_id пользователя, 0 если пользователь удалён.
func (s *Service) chatIDOf(userID int64) int64 {
	u, err := s.store.GetUserByID(userID)
	if err != nil {
		if !errors.Is(err, db.ErrNotFound) {
			return 0
		}
		return 0
	}
	return u.ChatID
}
