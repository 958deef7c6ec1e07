package service

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"masterbot/internal/constants"
	"masterbot/internal/db"
	"masterbot/internal/models"
)

// recordingNotifier записывает исходящие события ядра для проверок.
type recordingNotifier struct {
	bidReceived      []int64 // chat_id заказчиков
	bidSelected      []int64 // chat_id мастеров
	paymentRequired  []paymentEvent
	contactDisclosed []contactEvent
	orderCompleted   []completedEvent
	orderCanceled    []canceledEvent
	reviewPosted     []reviewEvent
}

type paymentEvent struct {
	workerID     int64
	workerChatID int64
	amount       float64
}

type contactEvent struct {
	workerChatID   int64
	clientChatID   int64
	clientName     string
	encryptedPhone string
}

type completedEvent struct {
	orderID      int64
	clientChatID int64
	workerChatID int64
	workerID     int64
}

type canceledEvent struct {
	orderID       int64
	bidderChatIDs []int64
}

type reviewEvent struct {
	toChatID int64
	rating   int
}

func (n *recordingNotifier) BidReceived(order models.Order, clientChatID int64, bid models.Bid) {
	n.bidReceived = append(n.bidReceived, clientChatID)
}

func (n *recordingNotifier) BidSelected(order models.Order, workerChatID int64, bid models.Bid) {
	n.bidSelected = append(n.bidSelected, workerChatID)
}

func (n *recordingNotifier) PaymentRequired(order models.Order, workerID, workerChatID int64, amount float64) {
	n.paymentRequired = append(n.paymentRequired, paymentEvent{workerID, workerChatID, amount})
}

func (n *recordingNotifier) ContactDisclosed(order models.Order, workerChatID, clientChatID int64, clientName, encryptedPhone string) {
	n.contactDisclosed = append(n.contactDisclosed, contactEvent{workerChatID, clientChatID, clientName, encryptedPhone})
}

func (n *recordingNotifier) OrderCompleted(order models.Order, clientChatID, workerChatID, workerID int64) {
	n.orderCompleted = append(n.orderCompleted, completedEvent{order.ID, clientChatID, workerChatID, workerID})
}

func (n *recordingNotifier) OrderCanceled(order models.Order, clientChatID int64, bidderChatIDs []int64) {
	n.orderCanceled = append(n.orderCanceled, canceledEvent{order.ID, bidderChatIDs})
}

func (n *recordingNotifier) ReviewPosted(orderID, toChatID int64, rating int) {
	n.reviewPosted = append(n.reviewPosted, reviewEvent{toChatID, rating})
}

const testAccessFee = 199.0

func newTestService(t *testing.T) (*Service, *recordingNotifier) {
	t.Helper()
	store, err := db.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	notifier := &recordingNotifier{}
	return New(store, notifier, testAccessFee), notifier
}

func onboardClient(t *testing.T, svc *Service, chatID int64, name string) int64 {
	t.Helper()
	userID, err := svc.Onboard(chatID, constants.ROLE_CLIENT)
	require.NoError(t, err)
	require.NoError(t, svc.RegisterClientProfile(chatID, models.ClientProfile{
		Name: name, Phone: "encrypted:" + name, City: "Москва",
	}))
	return userID
}

func onboardWorker(t *testing.T, svc *Service, chatID int64, name string) int64 {
	t.Helper()
	userID, err := svc.Onboard(chatID, constants.ROLE_WORKER)
	require.NoError(t, err)
	require.NoError(t, svc.RegisterWorkerProfile(chatID, models.WorkerProfile{
		Name: name, City: "Москва", Categories: models.StringList{constants.CAT_PLUMBING},
	}))
	return userID
}

func placeTestOrder(t *testing.T, svc *Service, clientChatID int64) int64 {
	t.Helper()
	orderID, err := svc.CreateOrder(clientChatID, models.Order{
		Title:      "Замена смесителя",
		City:       "Москва",
		Category:   constants.CAT_PLUMBING,
		BudgetType: constants.BUDGET_FLEXIBLE,
	})
	require.NoError(t, err)
	return orderID
}

func TestOnboard(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Onboard(10, "admin")
	assert.Error(t, err)

	id1, err := svc.Onboard(10, constants.ROLE_CLIENT)
	require.NoError(t, err)
	id2, err := svc.Onboard(10, constants.ROLE_CLIENT)
	require.NoError(t, err)
	assert.Equal(t, id1, id2)

	_, err = svc.Onboard(10, constants.ROLE_WORKER)
	assert.ErrorIs(t, err, db.ErrRoleConflict)
}

func TestRegisterProfileRoleChecks(t *testing.T) {
	svc, _ := newTestService(t)

	// Незарегистрированный chat_id.
	err := svc.RegisterWorkerProfile(50, models.WorkerProfile{Name: "x"})
	assert.ErrorIs(t, err, db.ErrNotFound)

	_, err = svc.Onboard(50, constants.ROLE_CLIENT)
	require.NoError(t, err)

	// Анкета мастера недоступна заказчику, и наоборот.
	err = svc.RegisterWorkerProfile(50, models.WorkerProfile{Name: "x"})
	assert.ErrorIs(t, err, db.ErrRoleConflict)
	require.NoError(t, svc.RegisterClientProfile(50, models.ClientProfile{Name: "Анна"}))

	view, err := svc.GetProfile(50)
	require.NoError(t, err)
	require.NotNil(t, view.Client)
	assert.Nil(t, view.Worker)
	assert.Equal(t, "Анна", view.Client.Name)
}

func TestUpdateProfileField(t *testing.T) {
	svc, _ := newTestService(t)
	onboardWorker(t, svc, 60, "Пётр")

	require.NoError(t, svc.UpdateProfileField(60, constants.FIELD_CITY, "Казань"))
	view, err := svc.GetProfile(60)
	require.NoError(t, err)
	require.NotNil(t, view.Worker)
	assert.Equal(t, "Казань", view.Worker.City)

	// Набор допустимых полей закрыт: рейтинг руками не правится.
	assert.ErrorIs(t, svc.UpdateProfileField(60, "rating", 5.0), db.ErrInvalidField)
	assert.ErrorIs(t, svc.UpdateProfileField(61, constants.FIELD_CITY, "x"), db.ErrNotFound)
}

// Сквозной сценарий: отклик, выбор, оплата, завершение, отзывы — с проверкой
// всех исходящих событий.
func TestLifecycleEvents(t *testing.T) {
	svc, notifier := newTestService(t)
	onboardClient(t, svc, 100, "Анна")
	workerID := onboardWorker(t, svc, 101, "Пётр")

	orderID := placeTestOrder(t, svc, 100)

	bidID, err := svc.PlaceBid(101, orderID, 2500, "2 дня", "сделаю")
	require.NoError(t, err)
	require.Len(t, notifier.bidReceived, 1)
	assert.EqualValues(t, 100, notifier.bidReceived[0])

	require.NoError(t, svc.SelectBid(100, orderID, bidID))
	require.Len(t, notifier.bidSelected, 1)
	assert.EqualValues(t, 101, notifier.bidSelected[0])
	require.Len(t, notifier.paymentRequired, 1)
	assert.Equal(t, paymentEvent{workerID: workerID, workerChatID: 101, amount: testAccessFee}, notifier.paymentRequired[0])

	require.NoError(t, svc.PaymentReceived(orderID, workerID))
	require.Len(t, notifier.contactDisclosed, 1)
	disclosed := notifier.contactDisclosed[0]
	assert.EqualValues(t, 101, disclosed.workerChatID)
	assert.EqualValues(t, 100, disclosed.clientChatID)
	assert.Equal(t, "Анна", disclosed.clientName)
	// Телефон уходит в событие как хранится, расшифровка — дело транспорта.
	assert.Equal(t, "encrypted:Анна", disclosed.encryptedPhone)

	// Завершить может мастер.
	require.NoError(t, svc.CompleteOrder(101, orderID))
	require.Len(t, notifier.orderCompleted, 1)
	assert.Equal(t, completedEvent{orderID: orderID, clientChatID: 100, workerChatID: 101, workerID: workerID}, notifier.orderCompleted[0])

	// Повторное завершение — no-op без события.
	require.NoError(t, svc.CompleteOrder(100, orderID))
	assert.Len(t, notifier.orderCompleted, 1)

	_, err = svc.SubmitReview(100, orderID, workerID, 5, "отлично")
	require.NoError(t, err)
	require.Len(t, notifier.reviewPosted, 1)
	assert.Equal(t, reviewEvent{toChatID: 101, rating: 5}, notifier.reviewPosted[0])

	// Дубликат отзыва — ошибка, второго события нет.
	_, err = svc.SubmitReview(100, orderID, workerID, 1, "")
	assert.ErrorIs(t, err, db.ErrAlreadyReviewed)
	assert.Len(t, notifier.reviewPosted, 1)
}

func TestRoleAndOwnershipChecks(t *testing.T) {
	svc, _ := newTestService(t)
	onboardClient(t, svc, 200, "Анна")
	onboardClient(t, svc, 201, "Ольга")
	workerID := onboardWorker(t, svc, 202, "Пётр")
	onboardWorker(t, svc, 203, "Сидор")

	orderID := placeTestOrder(t, svc, 200)

	// Заказчик не может откликаться, мастер — размещать заказы.
	_, err := svc.PlaceBid(200, orderID, 100, "", "")
	assert.ErrorIs(t, err, db.ErrRoleConflict)
	_, err = svc.CreateOrder(202, models.Order{Title: "x", BudgetType: constants.BUDGET_FLEXIBLE})
	assert.ErrorIs(t, err, db.ErrRoleConflict)

	bidID, err := svc.PlaceBid(202, orderID, 2500, "2 дня", "")
	require.NoError(t, err)

	// Чужой заказ: выбрать отклик и отменить может только владелец.
	assert.ErrorIs(t, svc.SelectBid(201, orderID, bidID), db.ErrNotFound)
	assert.ErrorIs(t, svc.CancelOrder(201, orderID), db.ErrNotFound)

	// Отозвать чужой отклик нельзя.
	assert.ErrorIs(t, svc.WithdrawBid(203, bidID), db.ErrBidNotSelectable)

	require.NoError(t, svc.SelectBid(200, orderID, bidID))
	require.NoError(t, svc.PaymentReceived(orderID, workerID))

	// Посторонний не может завершить заказ.
	assert.ErrorIs(t, svc.CompleteOrder(201, orderID), db.ErrNotFound)
	assert.ErrorIs(t, svc.CompleteOrder(203, orderID), db.ErrNotFound)
	require.NoError(t, svc.CompleteOrder(200, orderID))
}

// События оплаты от адаптера: повторные и неизвестные отбрасываются молча.
func TestPaymentReceivedIdempotence(t *testing.T) {
	svc, notifier := newTestService(t)
	onboardClient(t, svc, 300, "Анна")
	workerID := onboardWorker(t, svc, 301, "Пётр")

	// Неизвестная пара (заказ, мастер) — не ошибка вызывающего.
	require.NoError(t, svc.PaymentReceived(9999, workerID))
	assert.Empty(t, notifier.contactDisclosed)

	orderID := placeTestOrder(t, svc, 300)
	bidID, err := svc.PlaceBid(301, orderID, 2500, "", "")
	require.NoError(t, err)
	require.NoError(t, svc.SelectBid(300, orderID, bidID))

	require.NoError(t, svc.PaymentReceived(orderID, workerID))
	require.Len(t, notifier.contactDisclosed, 1)

	// Повторное событие — no-op, контакты второй раз не раскрываются.
	require.NoError(t, svc.PaymentReceived(orderID, workerID))
	assert.Len(t, notifier.contactDisclosed, 1)

	// Оплата по отменённому заказу отбрасывается.
	orderID2 := placeTestOrder(t, svc, 300)
	bidID2, err := svc.PlaceBid(301, orderID2, 2500, "", "")
	require.NoError(t, err)
	require.NoError(t, svc.SelectBid(300, orderID2, bidID2))
	require.NoError(t, svc.CancelOrder(300, orderID2))
	require.NoError(t, svc.PaymentReceived(orderID2, workerID))
	assert.Len(t, notifier.contactDisclosed, 1)
}

func TestCancelOrderNotifiesBidders(t *testing.T) {
	svc, notifier := newTestService(t)
	onboardClient(t, svc, 400, "Анна")
	onboardWorker(t, svc, 401, "Пётр")
	onboardWorker(t, svc, 402, "Сидор")

	orderID := placeTestOrder(t, svc, 400)
	_, err := svc.PlaceBid(401, orderID, 2000, "", "")
	require.NoError(t, err)
	_, err = svc.PlaceBid(402, orderID, 2500, "", "")
	require.NoError(t, err)

	require.NoError(t, svc.CancelOrder(400, orderID))
	require.Len(t, notifier.orderCanceled, 1)
	assert.Equal(t, orderID, notifier.orderCanceled[0].orderID)
	assert.ElementsMatch(t, []int64{401, 402}, notifier.orderCanceled[0].bidderChatIDs)

	// Повторная отмена — терминальный статус.
	assert.ErrorIs(t, svc.CancelOrder(400, orderID), db.ErrOrderTerminated)
	assert.Len(t, notifier.orderCanceled, 1)
}

func TestWithdrawBidRevertsOrder(t *testing.T) {
	svc, _ := newTestService(t)
	onboardClient(t, svc, 500, "Анна")
	onboardWorker(t, svc, 501, "Пётр")

	orderID := placeTestOrder(t, svc, 500)
	bidID, err := svc.PlaceBid(501, orderID, 2000, "", "")
	require.NoError(t, err)

	require.NoError(t, svc.WithdrawBid(501, bidID))

	order, err := svc.Store().GetOrderByID(orderID)
	require.NoError(t, err)
	assert.Equal(t, constants.ORDER_STATUS_OPEN, order.Status)
}

// Лента мастера фильтруется по городам и категориям его анкеты.
func TestListFeedProfileFilters(t *testing.T) {
	svc, _ := newTestService(t)
	onboardClient(t, svc, 600, "Анна")
	_, err := svc.Onboard(601, constants.ROLE_WORKER)
	require.NoError(t, err)
	require.NoError(t, svc.RegisterWorkerProfile(601, models.WorkerProfile{
		Name:       "Пётр",
		City:       "Казань",
		Regions:    models.StringList{"Москва"},
		Categories: models.StringList{constants.CAT_PLUMBING},
	}))

	makeOrder := func(city, category string) int64 {
		id, errCreate := svc.CreateOrder(600, models.Order{
			Title: "Заказ", City: city, Category: category, BudgetType: constants.BUDGET_FLEXIBLE,
		})
		require.NoError(t, errCreate)
		return id
	}

	match1 := makeOrder("Москва", constants.CAT_PLUMBING)
	match2 := makeOrder("Казань", constants.CAT_PLUMBING)
	makeOrder("Сочи", constants.CAT_PLUMBING)
	makeOrder("Москва", constants.CAT_ELECTRICS)

	feed, err := svc.ListFeed(601, 0)
	require.NoError(t, err)
	ids := make([]int64, 0, len(feed))
	for _, o := range feed {
		ids = append(ids, o.ID)
	}
	assert.ElementsMatch(t, []int64{match1, match2}, ids)

	// Лента доступна только мастеру.
	_, err = svc.ListFeed(600, 0)
	assert.ErrorIs(t, err, db.ErrRoleConflict)
	_, err = svc.ListMyOrders(601)
	assert.ErrorIs(t, err, db.ErrRoleConflict)
}

func TestExpireStaleBidsService(t *testing.T) {
	svc, _ := newTestService(t)
	onboardClient(t, svc, 700, "Анна")
	onboardWorker(t, svc, 701, "Пётр")

	orderID := placeTestOrder(t, svc, 700)
	_, err := svc.PlaceBid(701, orderID, 2000, "", "")
	require.NoError(t, err)

	// Отклики моложе суток не трогаем.
	expired, err := svc.ExpireStaleBids(24 * time.Hour)
	require.NoError(t, err)
	assert.Zero(t, expired)

	// Нулевой возраст снимает всё активное.
	expired, err = svc.ExpireStaleBids(-time.Minute)
	require.NoError(t, err)
	assert.EqualValues(t, 1, expired)

	order, err := svc.Store().GetOrderByID(orderID)
	require.NoError(t, err)
	assert.Equal(t, constants.ORDER_STATUS_OPEN, order.Status)
}

func TestDeleteProfileLeavesOrdersHidden(t *testing.T) {
	svc, notifier := newTestService(t)
	onboardClient(t, svc, 800, "Анна")
	onboardWorker(t, svc, 801, "Пётр")

	orderID := placeTestOrder(t, svc, 800)
	_, err := svc.PlaceBid(801, orderID, 2000, "", "")
	require.NoError(t, err)

	deleted, err := svc.DeleteProfile(800)
	require.NoError(t, err)
	assert.True(t, deleted)

	// Заказ удалённого заказчика из ленты исчез.
	feed, err := svc.ListFeed(801, 0)
	require.NoError(t, err)
	assert.Empty(t, feed)

	// Новый отклик на осиротевший заказ возможен, но уведомлять некого.
	before := len(notifier.bidReceived)
	_, err = svc.PlaceBid(801, orderID, 1500, "", "")
	require.NoError(t, err)
	assert.Len(t, notifier.bidReceived, before)
}
