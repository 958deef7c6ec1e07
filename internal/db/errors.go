package db

import "errors"

// Классы ошибок хранилища (§ таксономия ошибок). Проверяются через errors.Is;
// транспорт решает, как показать их пользователю.
// Store error kinds. Checked with errors.Is; the transport decides how to
// surface them to the user.
var (
	ErrNotFound         = errors.New("запись не найдена")
	ErrRoleConflict     = errors.New("пользователь уже зарегистрирован с другой ролью")
	ErrProfileExists    = errors.New("профиль уже существует")
	ErrAlreadyReviewed  = errors.New("отзыв по этому заказу уже оставлен")
	ErrInvalidField     = errors.New("недопустимое поле профиля")
	ErrInvalidTransition = errors.New("недопустимый переход статуса заказа")
	ErrBidNotSelectable = errors.New("отклик нельзя выбрать")
	ErrReviewNotAllowed = errors.New("отзыв недоступен для этого заказа")
	ErrOrderTerminated  = errors.New("заказ завершён или отменён")
)
