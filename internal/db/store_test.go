package db

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"masterbot/internal/constants"
	"masterbot/internal/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func seedUser(t *testing.T, s *Store, chatID int64, role string) int64 {
	t.Helper()
	id, err := s.UpsertUser(chatID, role)
	require.NoError(t, err)
	return id
}

func testOrder(clientID int64) models.Order {
	return models.Order{
		ClientID:    clientID,
		Title:       "Замена смесителя",
		Description: "Течёт на кухне",
		City:        "Москва",
		Address:     "ул. Ленина, 1",
		Category:    constants.CAT_PLUMBING,
		BudgetType:  constants.BUDGET_FIXED,
		BudgetValue: models.NewNullFloat64(3000),
		Deadline:    "до пятницы",
	}
}

func seedOrder(t *testing.T, s *Store, clientID int64) int64 {
	t.Helper()
	id, err := s.CreateOrder(testOrder(clientID))
	require.NoError(t, err)
	return id
}

func seedBid(t *testing.T, s *Store, orderID, workerID int64, price float64) int64 {
	t.Helper()
	id, err := s.CreateBid(models.Bid{
		OrderID: orderID, WorkerID: workerID, Price: price,
		Deadline: "2 дня", Comment: "сделаю",
	})
	require.NoError(t, err)
	return id
}

func requireOrderStatus(t *testing.T, s *Store, orderID int64, want string) {
	t.Helper()
	o, err := s.GetOrderByID(orderID)
	require.NoError(t, err)
	require.Equal(t, want, o.Status)
}

func TestUpsertUser(t *testing.T) {
	s := newTestStore(t)

	id1 := seedUser(t, s, 100, constants.ROLE_CLIENT)
	require.NotZero(t, id1)

	// Повторный онбординг с той же ролью идемпотентен.
	id2, err := s.UpsertUser(100, constants.ROLE_CLIENT)
	require.NoError(t, err)
	assert.Equal(t, id1, id2)

	// С другой ролью — конфликт.
	_, err = s.UpsertUser(100, constants.ROLE_WORKER)
	assert.ErrorIs(t, err, ErrRoleConflict)

	u, err := s.GetUserByChatID(100)
	require.NoError(t, err)
	assert.Equal(t, constants.ROLE_CLIENT, u.Role)

	_, err = s.GetUserByChatID(999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestProfiles(t *testing.T) {
	s := newTestStore(t)
	workerID := seedUser(t, s, 200, constants.ROLE_WORKER)

	profile := models.WorkerProfile{
		UserID:     workerID,
		Name:       "Иван",
		Phone:      "+79991234567",
		City:       "Москва",
		Regions:    models.StringList{"ЦАО", "САО"},
		Categories: models.StringList{constants.CAT_PLUMBING},
		Experience: "5 лет",
	}
	require.NoError(t, s.CreateWorkerProfile(profile))
	assert.ErrorIs(t, s.CreateWorkerProfile(profile), ErrProfileExists)

	got, err := s.GetWorkerProfile(workerID)
	require.NoError(t, err)
	assert.Equal(t, "Иван", got.Name)
	assert.Equal(t, models.StringList{"ЦАО", "САО"}, got.Regions)
	assert.Zero(t, got.RatingCount)

	require.NoError(t, s.UpdateWorkerField(workerID, constants.FIELD_CITY, "Казань"))
	got, err = s.GetWorkerProfile(workerID)
	require.NoError(t, err)
	assert.Equal(t, "Казань", got.City)

	// Рейтинг руками не правится: поля нет в allow-list.
	assert.ErrorIs(t, s.UpdateWorkerField(workerID, "rating", 5.0), ErrInvalidField)
	assert.ErrorIs(t, s.UpdateWorkerField(workerID, "status", "x"), ErrInvalidField)

	// Обновление несуществующей анкеты.
	assert.ErrorIs(t, s.UpdateClientField(workerID, constants.FIELD_NAME, "x"), ErrNotFound)
}

func TestCreateOrderValidation(t *testing.T) {
	s := newTestStore(t)
	clientID := seedUser(t, s, 300, constants.ROLE_CLIENT)

	o := testOrder(clientID)
	o.Title = ""
	_, err := s.CreateOrder(o)
	assert.Error(t, err)

	o = testOrder(clientID)
	o.BudgetType = "hourly"
	_, err = s.CreateOrder(o)
	assert.Error(t, err)

	o = testOrder(98765)
	_, err = s.CreateOrder(o)
	assert.ErrorIs(t, err, ErrNotFound)

	orderID := seedOrder(t, s, clientID)
	got, err := s.GetOrderByID(orderID)
	require.NoError(t, err)
	assert.Equal(t, constants.ORDER_STATUS_OPEN, got.Status)
	assert.True(t, got.BudgetValue.Valid)
	assert.Equal(t, 3000.0, got.BudgetValue.Float64)
}

// Полный счастливый путь: заказ проходит все статусы до done, обе стороны
// оставляют отзывы, кэш рейтинга совпадает с пересчётом.
func TestOrderLifecycleHappyPath(t *testing.T) {
	s := newTestStore(t)
	clientID := seedUser(t, s, 400, constants.ROLE_CLIENT)
	worker1 := seedUser(t, s, 401, constants.ROLE_WORKER)
	worker2 := seedUser(t, s, 402, constants.ROLE_WORKER)

	require.NoError(t, s.CreateClientProfile(models.ClientProfile{UserID: clientID, Name: "Анна"}))
	require.NoError(t, s.CreateWorkerProfile(models.WorkerProfile{UserID: worker1, Name: "Пётр"}))

	orderID := seedOrder(t, s, clientID)
	requireOrderStatus(t, s, orderID, constants.ORDER_STATUS_OPEN)

	bid1 := seedBid(t, s, orderID, worker1, 2500)
	requireOrderStatus(t, s, orderID, constants.ORDER_STATUS_PENDING_CHOICE)
	bid2 := seedBid(t, s, orderID, worker2, 3000)

	selected, err := s.SelectBid(orderID, bid1)
	require.NoError(t, err)
	assert.Equal(t, worker1, selected.WorkerID)
	assert.Equal(t, constants.BID_STATUS_SELECTED, selected.Status)
	requireOrderStatus(t, s, orderID, constants.ORDER_STATUS_MASTER_SELECTED)

	// Конкурирующий отклик отклонён.
	b2, err := s.GetBidByID(bid2)
	require.NoError(t, err)
	assert.Equal(t, constants.BID_STATUS_REJECTED, b2.Status)

	// Запись доступа к контактам создана, но не оплачена.
	ca, err := s.GetContactAccess(orderID, worker1)
	require.NoError(t, err)
	assert.False(t, ca.Paid)
	assert.Equal(t, clientID, ca.ClientID)

	advanced, err := s.MarkContactAccessPaid(orderID, worker1)
	require.NoError(t, err)
	assert.True(t, advanced)
	requireOrderStatus(t, s, orderID, constants.ORDER_STATUS_CONTACT_SHARED)

	// Повторное событие оплаты — no-op.
	advanced, err = s.MarkContactAccessPaid(orderID, worker1)
	require.NoError(t, err)
	assert.False(t, advanced)
	requireOrderStatus(t, s, orderID, constants.ORDER_STATUS_CONTACT_SHARED)

	completed, err := s.CompleteOrder(orderID)
	require.NoError(t, err)
	assert.True(t, completed)
	requireOrderStatus(t, s, orderID, constants.ORDER_STATUS_DONE)

	// Повторное завершение — no-op.
	completed, err = s.CompleteOrder(orderID)
	require.NoError(t, err)
	assert.False(t, completed)

	_, err = s.AddReview(models.Review{OrderID: orderID, FromUserID: clientID, ToUserID: worker1, Rating: 5, Comment: "отлично"})
	require.NoError(t, err)
	_, err = s.AddReview(models.Review{OrderID: orderID, FromUserID: worker1, ToUserID: clientID, Rating: 4})
	require.NoError(t, err)

	wp, err := s.GetWorkerProfile(worker1)
	require.NoError(t, err)
	assert.Equal(t, 5.0, wp.Rating)
	assert.Equal(t, 1, wp.RatingCount)
	assert.Equal(t, 1, wp.VerifiedReviews)

	cp, err := s.GetClientProfile(clientID)
	require.NoError(t, err)
	assert.Equal(t, 4.0, cp.Rating)
	assert.Equal(t, 1, cp.RatingCount)
}

func TestCreateBidRules(t *testing.T) {
	s := newTestStore(t)
	clientID := seedUser(t, s, 500, constants.ROLE_CLIENT)
	worker1 := seedUser(t, s, 501, constants.ROLE_WORKER)
	worker2 := seedUser(t, s, 502, constants.ROLE_WORKER)

	orderID := seedOrder(t, s, clientID)

	// Новый отклик того же мастера заменяет прежний.
	first := seedBid(t, s, orderID, worker1, 2000)
	second := seedBid(t, s, orderID, worker1, 1800)

	b, err := s.GetBidByID(first)
	require.NoError(t, err)
	assert.Equal(t, constants.BID_STATUS_EXPIRED, b.Status)
	b, err = s.GetBidByID(second)
	require.NoError(t, err)
	assert.Equal(t, constants.BID_STATUS_ACTIVE, b.Status)

	bids, err := s.ListBidsForOrder(orderID)
	require.NoError(t, err)
	require.Len(t, bids, 2)
	// Активные сверху.
	assert.Equal(t, second, bids[0].ID)

	// На заказ с выбранным мастером откликнуться нельзя.
	_, err = s.SelectBid(orderID, second)
	require.NoError(t, err)
	_, err = s.CreateBid(models.Bid{OrderID: orderID, WorkerID: worker2, Price: 100})
	assert.ErrorIs(t, err, ErrInvalidTransition)

	// На отменённый — тем более.
	canceled := seedOrder(t, s, clientID)
	require.NoError(t, s.CancelOrder(canceled))
	_, err = s.CreateBid(models.Bid{OrderID: canceled, WorkerID: worker2, Price: 100})
	assert.ErrorIs(t, err, ErrOrderTerminated)

	_, err = s.CreateBid(models.Bid{OrderID: 77777, WorkerID: worker2, Price: 100})
	assert.ErrorIs(t, err, ErrNotFound)
}

// Отзыв последнего активного отклика возвращает заказ pending_choice → open.
func TestWithdrawBid(t *testing.T) {
	s := newTestStore(t)
	clientID := seedUser(t, s, 600, constants.ROLE_CLIENT)
	worker1 := seedUser(t, s, 601, constants.ROLE_WORKER)
	worker2 := seedUser(t, s, 602, constants.ROLE_WORKER)

	orderID := seedOrder(t, s, clientID)
	bid1 := seedBid(t, s, orderID, worker1, 2000)
	bid2 := seedBid(t, s, orderID, worker2, 2500)
	requireOrderStatus(t, s, orderID, constants.ORDER_STATUS_PENDING_CHOICE)

	// Чужой отклик отозвать нельзя.
	assert.ErrorIs(t, s.WithdrawBid(bid1, worker2), ErrBidNotSelectable)

	require.NoError(t, s.WithdrawBid(bid1, worker1))
	b, err := s.GetBidByID(bid1)
	require.NoError(t, err)
	assert.Equal(t, constants.BID_STATUS_EXPIRED, b.Status)
	// Остался активный отклик второго мастера — статус не откатывается.
	requireOrderStatus(t, s, orderID, constants.ORDER_STATUS_PENDING_CHOICE)

	// Неактивный отклик неизменяем.
	assert.ErrorIs(t, s.WithdrawBid(bid1, worker1), ErrBidNotSelectable)

	require.NoError(t, s.WithdrawBid(bid2, worker2))
	requireOrderStatus(t, s, orderID, constants.ORDER_STATUS_OPEN)
}

func TestSelectBidErrors(t *testing.T) {
	s := newTestStore(t)
	clientID := seedUser(t, s, 700, constants.ROLE_CLIENT)
	worker1 := seedUser(t, s, 701, constants.ROLE_WORKER)
	worker2 := seedUser(t, s, 702, constants.ROLE_WORKER)

	orderA := seedOrder(t, s, clientID)
	orderB := seedOrder(t, s, clientID)

	// Без откликов заказ в open, выбор невозможен.
	_, err := s.SelectBid(orderA, 1)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	bidA := seedBid(t, s, orderA, worker1, 2000)
	bidB := seedBid(t, s, orderB, worker2, 3000)

	// Отклик чужого заказа выбрать нельзя.
	_, err = s.SelectBid(orderA, bidB)
	assert.ErrorIs(t, err, ErrBidNotSelectable)

	_, err = s.SelectBid(orderA, 55555)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.SelectBid(orderA, bidA)
	require.NoError(t, err)

	// Повторный выбор: заказ уже в master_selected.
	_, err = s.SelectBid(orderA, bidA)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	sel, err := s.GetSelectedBid(orderA)
	require.NoError(t, err)
	assert.Equal(t, bidA, sel.ID)
	_, err = s.GetSelectedBid(orderB)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCancelOrder(t *testing.T) {
	s := newTestStore(t)
	clientID := seedUser(t, s, 800, constants.ROLE_CLIENT)
	worker1 := seedUser(t, s, 801, constants.ROLE_WORKER)
	worker2 := seedUser(t, s, 802, constants.ROLE_WORKER)

	orderID := seedOrder(t, s, clientID)
	bid1 := seedBid(t, s, orderID, worker1, 2000)
	bid2 := seedBid(t, s, orderID, worker2, 2500)

	require.NoError(t, s.CancelOrder(orderID))
	requireOrderStatus(t, s, orderID, constants.ORDER_STATUS_CANCELED)

	// Все активные отклики сняты.
	for _, id := range []int64{bid1, bid2} {
		b, err := s.GetBidByID(id)
		require.NoError(t, err)
		assert.Equal(t, constants.BID_STATUS_EXPIRED, b.Status)
	}

	// Повторная отмена — терминальный статус.
	assert.ErrorIs(t, s.CancelOrder(orderID), ErrOrderTerminated)

	// Отмена после выбора мастера: выбранный отклик остаётся историей.
	orderID2 := seedOrder(t, s, clientID)
	bid3 := seedBid(t, s, orderID2, worker1, 2000)
	_, err := s.SelectBid(orderID2, bid3)
	require.NoError(t, err)
	require.NoError(t, s.CancelOrder(orderID2))
	b, err := s.GetBidByID(bid3)
	require.NoError(t, err)
	assert.Equal(t, constants.BID_STATUS_SELECTED, b.Status)
}

func TestMarkContactAccessPaidEdgeCases(t *testing.T) {
	s := newTestStore(t)
	clientID := seedUser(t, s, 900, constants.ROLE_CLIENT)
	workerID := seedUser(t, s, 901, constants.ROLE_WORKER)

	// Событие оплаты по неизвестной паре.
	_, err := s.MarkContactAccessPaid(12345, workerID)
	assert.ErrorIs(t, err, ErrNotFound)

	orderID := seedOrder(t, s, clientID)
	bidID := seedBid(t, s, orderID, workerID, 2000)
	_, err = s.SelectBid(orderID, bidID)
	require.NoError(t, err)

	// Заказ отменён до оплаты: событие не принимается.
	require.NoError(t, s.CancelOrder(orderID))
	_, err = s.MarkContactAccessPaid(orderID, workerID)
	assert.ErrorIs(t, err, ErrOrderTerminated)
}

// EnsureContactAccess — восстановительная операция, идемпотентная по паре
// (заказ, мастер).
func TestEnsureContactAccess(t *testing.T) {
	s := newTestStore(t)
	clientID := seedUser(t, s, 950, constants.ROLE_CLIENT)
	workerID := seedUser(t, s, 951, constants.ROLE_WORKER)
	orderID := seedOrder(t, s, clientID)

	require.NoError(t, s.EnsureContactAccess(orderID, workerID, clientID))
	require.NoError(t, s.EnsureContactAccess(orderID, workerID, clientID))

	ca, err := s.GetContactAccess(orderID, workerID)
	require.NoError(t, err)
	assert.False(t, ca.Paid)
	assert.Equal(t, clientID, ca.ClientID)
}

func TestReviewRules(t *testing.T) {
	s := newTestStore(t)
	clientID := seedUser(t, s, 1000, constants.ROLE_CLIENT)
	workerID := seedUser(t, s, 1001, constants.ROLE_WORKER)
	outsider := seedUser(t, s, 1002, constants.ROLE_WORKER)
	require.NoError(t, s.CreateWorkerProfile(models.WorkerProfile{UserID: workerID, Name: "Пётр"}))

	orderID := seedOrder(t, s, clientID)
	bidID := seedBid(t, s, orderID, workerID, 2000)
	_, err := s.SelectBid(orderID, bidID)
	require.NoError(t, err)

	// До завершения заказа отзывы не принимаются.
	_, err = s.AddReview(models.Review{OrderID: orderID, FromUserID: clientID, ToUserID: workerID, Rating: 5})
	assert.ErrorIs(t, err, ErrReviewNotAllowed)

	_, err = s.MarkContactAccessPaid(orderID, workerID)
	require.NoError(t, err)
	_, err = s.CompleteOrder(orderID)
	require.NoError(t, err)

	// Оценка вне диапазона.
	_, err = s.AddReview(models.Review{OrderID: orderID, FromUserID: clientID, ToUserID: workerID, Rating: 6})
	assert.ErrorIs(t, err, ErrReviewNotAllowed)
	_, err = s.AddReview(models.Review{OrderID: orderID, FromUserID: clientID, ToUserID: workerID, Rating: 0})
	assert.ErrorIs(t, err, ErrReviewNotAllowed)

	// Посторонний не сторона заказа.
	_, err = s.AddReview(models.Review{OrderID: orderID, FromUserID: outsider, ToUserID: clientID, Rating: 3})
	assert.ErrorIs(t, err, ErrReviewNotAllowed)
	_, err = s.AddReview(models.Review{OrderID: orderID, FromUserID: clientID, ToUserID: outsider, Rating: 3})
	assert.ErrorIs(t, err, ErrReviewNotAllowed)

	id, err := s.AddReview(models.Review{OrderID: orderID, FromUserID: clientID, ToUserID: workerID, Rating: 5})
	require.NoError(t, err)
	require.NotZero(t, id)

	// Дубликат по ключу (заказ, от, к) — без побочных эффектов.
	_, err = s.AddReview(models.Review{OrderID: orderID, FromUserID: clientID, ToUserID: workerID, Rating: 1})
	assert.ErrorIs(t, err, ErrAlreadyReviewed)

	has, err := s.HasReview(orderID, clientID, workerID)
	require.NoError(t, err)
	assert.True(t, has)
	has, err = s.HasReview(orderID, workerID, clientID)
	require.NoError(t, err)
	assert.False(t, has)

	wp, err := s.GetWorkerProfile(workerID)
	require.NoError(t, err)
	assert.Equal(t, 5.0, wp.Rating)
	assert.Equal(t, 1, wp.RatingCount)
}

// Кэш рейтинга после серии отзывов совпадает с пересчётом по таблице reviews.
func TestRatingRunningMean(t *testing.T) {
	s := newTestStore(t)
	workerID := seedUser(t, s, 1100, constants.ROLE_WORKER)
	require.NoError(t, s.CreateWorkerProfile(models.WorkerProfile{UserID: workerID, Name: "Пётр"}))

	ratings := []int{5, 3, 4, 5, 2}
	for i, rating := range ratings {
		chatID := int64(1110 + i)
		clientID := seedUser(t, s, chatID, constants.ROLE_CLIENT)
		orderID := seedOrder(t, s, clientID)
		bidID := seedBid(t, s, orderID, workerID, 1000)
		_, err := s.SelectBid(orderID, bidID)
		require.NoError(t, err)
		_, err = s.MarkContactAccessPaid(orderID, workerID)
		require.NoError(t, err)
		_, err = s.CompleteOrder(orderID)
		require.NoError(t, err)
		_, err = s.AddReview(models.Review{OrderID: orderID, FromUserID: clientID, ToUserID: workerID, Rating: rating})
		require.NoError(t, err)
	}

	wp, err := s.GetWorkerProfile(workerID)
	require.NoError(t, err)
	assert.Equal(t, len(ratings), wp.RatingCount)
	assert.Equal(t, len(ratings), wp.VerifiedReviews)
	assert.InDelta(t, 3.8, wp.Rating, 1e-9)

	recomputed, count, err := s.RecomputeRating(workerID)
	require.NoError(t, err)
	assert.Equal(t, len(ratings), count)
	assert.InDelta(t, wp.Rating, recomputed, 1e-9)

	reviews, err := s.ListReviewsForUser(workerID)
	require.NoError(t, err)
	assert.Len(t, reviews, len(ratings))
}

// Удаление пользователя оставляет заказы и отклики как исторические записи;
// листинги с JOIN на users их пропускают.
func TestDeleteUserLeavesHistory(t *testing.T) {
	s := newTestStore(t)
	clientID := seedUser(t, s, 1200, constants.ROLE_CLIENT)
	workerID := seedUser(t, s, 1201, constants.ROLE_WORKER)
	require.NoError(t, s.CreateClientProfile(models.ClientProfile{UserID: clientID, Name: "Анна"}))

	orderID := seedOrder(t, s, clientID)
	seedBid(t, s, orderID, workerID, 2000)

	deleted, err := s.DeleteUser(1200)
	require.NoError(t, err)
	assert.True(t, deleted)
	_, err = s.GetClientProfile(clientID)
	assert.ErrorIs(t, err, ErrNotFound)

	// Заказ жив как запись, но из ленты пропал.
	_, err = s.GetOrderByID(orderID)
	require.NoError(t, err)
	feed, err := s.ListOrdersFeed(models.OrderFeedFilter{})
	require.NoError(t, err)
	assert.Empty(t, feed)

	// Отклики удалённого мастера тоже пропадают из списка.
	deleted, err = s.DeleteUser(1201)
	require.NoError(t, err)
	assert.True(t, deleted)
	bids, err := s.ListBidsForOrder(orderID)
	require.NoError(t, err)
	assert.Empty(t, bids)

	// Отчётные запросы видят историю целиком.
	all, err := s.ListAllOrders()
	require.NoError(t, err)
	assert.Len(t, all, 1)

	deleted, err = s.DeleteUser(55555)
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestListOrdersFeedFilters(t *testing.T) {
	s := newTestStore(t)
	clientID := seedUser(t, s, 1300, constants.ROLE_CLIENT)

	makeOrder := func(city, category string) int64 {
		o := testOrder(clientID)
		o.City = city
		o.Category = category
		id, err := s.CreateOrder(o)
		require.NoError(t, err)
		return id
	}

	moscow1 := makeOrder("Москва", constants.CAT_PLUMBING)
	makeOrder("Казань", constants.CAT_PLUMBING)
	moscow2 := makeOrder("Москва", constants.CAT_ELECTRICS)
	done := makeOrder("Москва", constants.CAT_PLUMBING)
	require.NoError(t, s.CancelOrder(done))

	feed, err := s.ListOrdersFeed(models.OrderFeedFilter{Cities: []string{"Москва"}})
	require.NoError(t, err)
	require.Len(t, feed, 2)
	// Новые сверху.
	assert.Equal(t, moscow2, feed[0].ID)
	assert.Equal(t, moscow1, feed[1].ID)

	feed, err = s.ListOrdersFeed(models.OrderFeedFilter{
		Cities:     []string{"Москва"},
		Categories: []string{constants.CAT_ELECTRICS},
	})
	require.NoError(t, err)
	require.Len(t, feed, 1)
	assert.Equal(t, moscow2, feed[0].ID)

	feed, err = s.ListOrdersFeed(models.OrderFeedFilter{Limit: 2, Offset: 2})
	require.NoError(t, err)
	assert.Len(t, feed, 1)

	orders, err := s.ListOrdersByClient(clientID)
	require.NoError(t, err)
	assert.Len(t, orders, 4)
}

func TestUpdateOrderStatusGraph(t *testing.T) {
	s := newTestStore(t)
	clientID := seedUser(t, s, 1400, constants.ROLE_CLIENT)
	orderID := seedOrder(t, s, clientID)

	// Перепрыгивать статусы нельзя.
	err := s.UpdateOrderStatus(orderID, constants.ORDER_STATUS_DONE)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	err = s.UpdateOrderStatus(orderID, constants.ORDER_STATUS_CONTACT_SHARED)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	require.NoError(t, s.UpdateOrderStatus(orderID, constants.ORDER_STATUS_PENDING_CHOICE))
	// Единственный разрешённый переход назад.
	require.NoError(t, s.UpdateOrderStatus(orderID, constants.ORDER_STATUS_OPEN))
	err = s.UpdateOrderStatus(orderID, constants.ORDER_STATUS_MASTER_SELECTED)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	require.NoError(t, s.UpdateOrderStatus(orderID, constants.ORDER_STATUS_CANCELED))
	err = s.UpdateOrderStatus(orderID, constants.ORDER_STATUS_OPEN)
	assert.ErrorIs(t, err, ErrOrderTerminated)

	err = s.UpdateOrderStatus(44444, constants.ORDER_STATUS_CANCELED)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestExpireStaleBids(t *testing.T) {
	s := newTestStore(t)
	clientID := seedUser(t, s, 1500, constants.ROLE_CLIENT)
	worker1 := seedUser(t, s, 1501, constants.ROLE_WORKER)
	worker2 := seedUser(t, s, 1502, constants.ROLE_WORKER)

	orderID := seedOrder(t, s, clientID)
	bid1 := seedBid(t, s, orderID, worker1, 2000)
	bid2 := seedBid(t, s, orderID, worker2, 2500)

	// Отсечка в прошлом никого не задевает.
	expired, err := s.ExpireStaleBids(time.Now().Add(-time.Hour))
	require.NoError(t, err)
	assert.Zero(t, expired)

	// Отсечка в будущем снимает оба отклика, заказ возвращается в open.
	expired, err = s.ExpireStaleBids(time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.EqualValues(t, 2, expired)
	for _, id := range []int64{bid1, bid2} {
		b, errGet := s.GetBidByID(id)
		require.NoError(t, errGet)
		assert.Equal(t, constants.BID_STATUS_EXPIRED, b.Status)
	}
	requireOrderStatus(t, s, orderID, constants.ORDER_STATUS_OPEN)

	// Отклик выбранного мастера таймер не трогает.
	bid3 := seedBid(t, s, orderID, worker1, 1800)
	_, err = s.SelectBid(orderID, bid3)
	require.NoError(t, err)
	expired, err = s.ExpireStaleBids(time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.Zero(t, expired)
	b, err := s.GetBidByID(bid3)
	require.NoError(t, err)
	assert.Equal(t, constants.BID_STATUS_SELECTED, b.Status)
}
