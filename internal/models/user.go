package models

import "time"

// User represents a user in the system. ChatID is the Telegram chat id
// (стабильный внешний идентификатор, выдаётся транспортом).
type User struct {
	ID        int64
	ChatID    int64
	Role      string
	CreatedAt time.Time
}

// WorkerProfile — анкета мастера (1:1 с User роли worker).
// Кэшируемые Rating/RatingCount принадлежат движку рейтинга и выводимы
// из таблицы reviews.
type WorkerProfile struct {
	UserID          int64
	Name            string
	Phone           string
	City            string
	Regions         StringList
	Categories      StringList
	Experience      string
	Description     string
	PortfolioPhotos StringList
	Rating          float64
	RatingCount     int
	VerifiedReviews int
}

// ClientProfile — анкета заказчика (1:1 с User роли client).
type ClientProfile struct {
	UserID      int64
	Name        string
	Phone       string
	City        string
	Description string
	Rating      float64
	RatingCount int
}
