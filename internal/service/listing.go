package service

import (
	"errors"

	"masterbot/internal/constants"
	"masterbot/internal/db"
	"masterbot/internal/models"
)

// ProfileView — проекция User + анкета для отображения.
type ProfileView struct {
	User   models.User
	Worker *models.WorkerProfile
	Client *models.ClientProfile
}

// ListFeed возвращает ленту заказов для мастера: open/pending_choice,
// отфильтрованные по городам (регионы ∪ город анкеты) и категориям мастера,
// новые сверху. Пустая анкета означает ленту без фильтров.
func (s *Service) ListFeed(chatID int64, page int) ([]models.Order, error) {
	u, err := s.requireRole(chatID, constants.ROLE_WORKER)
	if err != nil {
		return nil, err
	}

	filter := models.OrderFeedFilter{
		Limit:  constants.OrdersPerPage,
		Offset: page * constants.OrdersPerPage,
	}
	if wp, errProfile := s.store.GetWorkerProfile(u.ID); errProfile == nil {
		cities := append([]string{}, wp.Regions...)
		if wp.City != "" && !wp.Regions.Contains(wp.City) {
			cities = append(cities, wp.City)
		}
		filter.Cities = cities
		filter.Categories = wp.Categories
	} else if !errors.Is(errProfile, db.ErrNotFound) {
		return nil, errProfile
	}

	return s.store.ListOrdersFeed(filter)
}

// ListBids возвращает отклики заказа: active первыми, затем
// rejected/expired, внутри группы по времени создания.
func (s *Service) ListBids(orderID int64) ([]models.Bid, error) {
	return s.store.ListBidsForOrder(orderID)
}

// ListMyOrders возвращает заказы заказчика.
func (s *Service) ListMyOrders(chatID int64) ([]models.Order, error) {
	u, err := s.requireRole(chatID, constants.ROLE_CLIENT)
	if err != nil {
		return nil, err
	}
	return s.store.ListOrdersByClient(u.ID)
}

// GetProfile возвращает объединённое представление пользователя и его анкеты.
func (s *Service) GetProfile(chatID int64) (ProfileView, error) {
	u, err := s.store.GetUserByChatID(chatID)
	if err != nil {
		return ProfileView{}, err
	}

	view := ProfileView{User: u}
	switch u.Role {
	case constants.ROLE_WORKER:
		wp, errProfile := s.store.GetWorkerProfile(u.ID)
		if errProfile != nil && !errors.Is(errProfile, db.ErrNotFound) {
			return view, errProfile
		}
		if errProfile == nil {
			view.Worker = &wp
		}
	case constants.ROLE_CLIENT:
		cp, errProfile := s.store.GetClientProfile(u.ID)
		if errProfile != nil && !errors.Is(errProfile, db.ErrNotFound) {
			return view, errProfile
		}
		if errProfile == nil {
			view.Client = &cp
		}
	}
	return view, nil
}
