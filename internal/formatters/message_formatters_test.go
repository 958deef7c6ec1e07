package formatters

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"masterbot/internal/constants"
	"masterbot/internal/models"
)

func feedOrder() models.Order {
	return models.Order{
		ID:         7,
		Title:      "Замена смесителя",
		City:       "Москва",
		Category:   constants.CAT_PLUMBING,
		BudgetType: constants.BUDGET_FLEXIBLE,
	}
}

func TestFormatOrderForFeed(t *testing.T) {
	text := FormatOrderForFeed(feedOrder())
	assert.Contains(t, text, "Заказ №7")
	assert.Contains(t, text, "Замена смесителя")
	assert.Contains(t, text, "По договорённости")

	fixed := feedOrder()
	fixed.BudgetType = constants.BUDGET_FIXED
	fixed.BudgetValue = models.NewNullFloat64(3000)
	assert.Contains(t, FormatOrderForFeed(fixed), "3000 ₽")
}

// Телефон мастера виден только ему самому.
func TestFormatWorkerProfileHidesPhoneInPublicView(t *testing.T) {
	profile := models.WorkerProfile{
		Name:        "Пётр",
		Phone:       "+79991234567",
		City:        "Москва",
		Rating:      4.5,
		RatingCount: 2,
	}

	public := FormatWorkerProfile(profile, true)
	assert.NotContains(t, public, "999")
	assert.NotContains(t, public, "Телефон")
	assert.Contains(t, public, "4.5")

	private := FormatWorkerProfile(profile, false)
	assert.Contains(t, private, "+7 (999) 123-45-67")
}

func TestFormatContactCard(t *testing.T) {
	order := feedOrder()
	text := FormatContactCard(order, "Анна", "+79991234567")
	assert.Contains(t, text, "Анна")
	assert.Contains(t, text, "+7 (999) 123-45-67")
	assert.Contains(t, text, "Замена смесителя")
}

func TestFormatBidList(t *testing.T) {
	order := feedOrder()
	assert.Contains(t, FormatBidList(order, nil, nil), "пока нет откликов")

	bids := []models.Bid{{ID: 1, WorkerID: 5, Price: 2500, Deadline: "2 дня", Comment: "сделаю"}}
	workers := map[int64]*models.WorkerProfile{
		5: {Name: "Пётр", Rating: 5, RatingCount: 3},
	}
	text := FormatBidList(order, bids, workers)
	assert.Contains(t, text, "Пётр")
	assert.Contains(t, text, "2500 ₽")
	assert.Contains(t, text, "5.0")
	assert.Contains(t, text, "сделаю")

	// Без анкеты мастера отображается нейтральное имя.
	text = FormatBidList(order, bids, nil)
	assert.Contains(t, text, "Мастер")
}

func TestFormatReviewList(t *testing.T) {
	assert.Contains(t, FormatReviewList(nil), "Отзывов пока нет")

	reviews := []models.Review{
		{OrderID: 3, Rating: 5, Comment: "отлично"},
		{OrderID: 4, Rating: 2},
	}
	text := FormatReviewList(reviews)
	assert.Contains(t, text, "⭐⭐⭐⭐⭐")
	assert.Contains(t, text, "заказу №3")
	assert.Contains(t, text, "отлично")
	assert.Contains(t, text, "⭐⭐")
}
