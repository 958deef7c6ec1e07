package models

import "time"

// Review — одноразовый отзыв после завершения заказа.
// Уникальность: не более одной строки на (order_id, from_user_id, to_user_id).
type Review struct {
	ID         int64
	OrderID    int64
	FromUserID int64
	ToUserID   int64
	RoleFrom   string
	RoleTo     string
	Rating     int // 1..5
	Comment    string
	CreatedAt  time.Time
}

// ContactAccess — запись, открывающая мастеру контакты заказчика после оплаты.
// Создаётся при выборе мастера, никогда не удаляется, пока существует заказ.
type ContactAccess struct {
	ID        int64
	OrderID   int64
	WorkerID  int64
	ClientID  int64
	Paid      bool
	PaidAt    NullTime
	CreatedAt time.Time
}
