package models

import "time"

// Order — заказ, размещённый заказчиком. ClientID может стать «висячей»
// ссылкой после удаления профиля заказчика: заказы хранятся как исторические
// записи, листинги такие строки пропускают.
type Order struct {
	ID          int64
	ClientID    int64
	Title       string
	Description string
	City        string
	Address     string
	Category    string
	BudgetType  string      // fixed | flexible
	BudgetValue NullFloat64 // пусто при flexible
	Deadline    string      // свободная строка даты, как ввёл заказчик
	Status      string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Bid — отклик мастера на заказ.
type Bid struct {
	ID        int64
	OrderID   int64
	WorkerID  int64
	Price     float64
	Deadline  string
	Comment   string
	Status    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// OrderFeedFilter задаёт фильтр ленты заказов для мастера.
// Пустые срезы означают «без фильтра».
type OrderFeedFilter struct {
	Cities     []string
	Categories []string
	Limit      int
	Offset     int
}
