package handlers

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/OvyFlash/telegram-bot-api"
	"github.com/rs/zerolog/log"

	"masterbot/internal/constants"
	"masterbot/internal/db"
	"masterbot/internal/formatters"
	"masterbot/internal/models"
	"masterbot/internal/utils"
)

// HandleCallback обрабатывает нажатия inline-кнопок.
func (bh *BotHandler) HandleCallback(update tgbotapi.Update) {
	if update.CallbackQuery == nil {
		return
	}
	callback := update.CallbackQuery
	chatID := callback.Message.Chat.ID
	messageID := callback.Message.MessageID
	data := callback.Data

	log.Debug().Int64("chat_id", chatID).Str("data", data).Msg("входящий callback")

	// Подтверждаем получение коллбэка, чтобы убрать "часики" у кнопки.
	bh.Deps.BotClient.Request(tgbotapi.NewCallback(callback.ID, ""))

	switch {
	case data == "back_to_main":
		bh.SendMainMenu(chatID, messageID)
	case data == "new_order":
		bh.startOrderWizard(chatID)
	case data == "my_orders":
		bh.showMyOrders(chatID)
	case data == "my_profile":
		bh.showMyProfile(chatID, messageID)
	case data == "my_reviews":
		bh.showMyReviews(chatID, messageID)

	case strings.HasPrefix(data, constants.CALLBACK_PREFIX_ONBOARD_ROLE+"_"):
		bh.handleRoleSelect(chatID, messageID, strings.TrimPrefix(data, constants.CALLBACK_PREFIX_ONBOARD_ROLE+"_"))
	case strings.HasPrefix(data, constants.CALLBACK_PREFIX_PROFILE_CATEGORY+"_"):
		bh.handleProfileCategoryToggle(chatID, messageID, strings.TrimPrefix(data, constants.CALLBACK_PREFIX_PROFILE_CATEGORY+"_"))
	case data == constants.CALLBACK_PREFIX_PROFILE_DONE:
		bh.handleProfileDone(chatID)
	case data == constants.CALLBACK_PREFIX_DELETE_PROFILE+"_confirm":
		bh.handleDeleteProfile(chatID)
	case strings.HasPrefix(data, constants.CALLBACK_PREFIX_DELETE_PROFILE+"_"):
		bh.askDeleteProfile(chatID)

	case strings.HasPrefix(data, constants.CALLBACK_PREFIX_ORDER_CATEGORY+"_"):
		bh.handleOrderCategory(chatID, messageID, strings.TrimPrefix(data, constants.CALLBACK_PREFIX_ORDER_CATEGORY+"_"))
	case strings.HasPrefix(data, constants.CALLBACK_PREFIX_BUDGET_TYPE+"_"):
		bh.handleBudgetType(chatID, strings.TrimPrefix(data, constants.CALLBACK_PREFIX_BUDGET_TYPE+"_"))
	case strings.HasPrefix(data, constants.CALLBACK_PREFIX_ORDER_CONFIRM+"_"):
		bh.handleOrderConfirm(chatID, messageID, strings.TrimPrefix(data, constants.CALLBACK_PREFIX_ORDER_CONFIRM+"_"))

	case strings.HasPrefix(data, constants.CALLBACK_PREFIX_FEED_PAGE+"_"):
		if page, err := strconv.Atoi(strings.TrimPrefix(data, constants.CALLBACK_PREFIX_FEED_PAGE+"_")); err == nil {
			bh.showFeed(chatID, page)
		}
	case strings.HasPrefix(data, constants.CALLBACK_PREFIX_PLACE_BID+"_"):
		if orderID, err := strconv.ParseInt(strings.TrimPrefix(data, constants.CALLBACK_PREFIX_PLACE_BID+"_"), 10, 64); err == nil {
			bh.startBidWizard(chatID, orderID)
		}
	case strings.HasPrefix(data, constants.CALLBACK_PREFIX_WITHDRAW_BID+"_"):
		if bidID, err := strconv.ParseInt(strings.TrimPrefix(data, constants.CALLBACK_PREFIX_WITHDRAW_BID+"_"), 10, 64); err == nil {
			bh.handleWithdrawBid(chatID, bidID)
		}

	case strings.HasPrefix(data, constants.CALLBACK_PREFIX_MY_BIDS_PAGE+"_"):
		parts := strings.Split(strings.TrimPrefix(data, constants.CALLBACK_PREFIX_MY_BIDS_PAGE+"_"), "_")
		if len(parts) == 2 {
			if orderID, err := strconv.ParseInt(parts[0], 10, 64); err == nil {
				bh.showBidsForOrder(chatID, orderID)
			}
		}
	case strings.HasPrefix(data, constants.CALLBACK_PREFIX_SELECT_BID+"_"):
		parts := strings.Split(strings.TrimPrefix(data, constants.CALLBACK_PREFIX_SELECT_BID+"_"), "_")
		if len(parts) == 2 {
			orderID, err1 := strconv.ParseInt(parts[0], 10, 64)
			bidID, err2 := strconv.ParseInt(parts[1], 10, 64)
			if err1 == nil && err2 == nil {
				bh.handleSelectBid(chatID, orderID, bidID)
			}
		}

	case strings.HasPrefix(data, constants.CALLBACK_PREFIX_COMPLETE+"_"):
		if orderID, err := strconv.ParseInt(strings.TrimPrefix(data, constants.CALLBACK_PREFIX_COMPLETE+"_"), 10, 64); err == nil {
			bh.handleCompleteOrder(chatID, orderID)
		}
	case strings.HasPrefix(data, constants.CALLBACK_PREFIX_CANCEL+"_"):
		if orderID, err := strconv.ParseInt(strings.TrimPrefix(data, constants.CALLBACK_PREFIX_CANCEL+"_"), 10, 64); err == nil {
			bh.handleCancelOrder(chatID, orderID)
		}

	case strings.HasPrefix(data, constants.CALLBACK_PREFIX_REVIEW_RATING+"_"):
		if rating, err := utils.ValidateRating(strings.TrimPrefix(data, constants.CALLBACK_PREFIX_REVIEW_RATING+"_")); err == nil {
			bh.handleReviewRating(chatID, rating)
		}
	case strings.HasPrefix(data, constants.CALLBACK_PREFIX_REVIEW+"_"):
		parts := strings.Split(strings.TrimPrefix(data, constants.CALLBACK_PREFIX_REVIEW+"_"), "_")
		if len(parts) == 2 {
			orderID, err1 := strconv.ParseInt(parts[0], 10, 64)
			toUserID, err2 := strconv.ParseInt(parts[1], 10, 64)
			if err1 == nil && err2 == nil {
				bh.startReviewWizard(chatID, orderID, toUserID)
			}
		}

	default:
		log.Warn().Str("data", data).Int64("chat_id", chatID).Msg("неизвестный callback")
	}
}

// --- Онбординг ---

// handleRoleSelect фиксирует роль и запускает анкету.
func (bh *BotHandler) handleRoleSelect(chatID int64, messageID int, role string) {
	if role != constants.ROLE_WORKER && role != constants.ROLE_CLIENT {
		return
	}
	if _, err := bh.Deps.Service.Onboard(chatID, role); err != nil {
		if errors.Is(err, db.ErrRoleConflict) {
			bh.sendErrorMessageHelper(chatID, messageID, "⚠️ Вы уже зарегистрированы с другой ролью. Чтобы сменить роль, удалите профиль командой /delete.")
			return
		}
		log.Error().Err(err).Int64("chat_id", chatID).Msg("ошибка онбординга")
		bh.sendErrorMessageHelper(chatID, messageID, "❌ Не удалось зарегистрироваться. Попробуйте позже.")
		return
	}

	profile := bh.Deps.SessionManager.GetTempProfile(chatID)
	profile.Role = role
	bh.Deps.SessionManager.UpdateTempProfile(chatID, profile)

	bh.deleteMessageHelper(chatID, messageID)
	bh.Deps.SessionManager.SetState(chatID, constants.STATE_PROFILE_NAME)
	bh.sendMessage(chatID, "✍️ Как вас зовут?")
}

// handleProfileCategoryToggle переключает категорию в мульти-выборе анкеты мастера.
func (bh *BotHandler) handleProfileCategoryToggle(chatID int64, messageID int, category string) {
	if _, ok := constants.CategoryDisplayMap[category]; !ok {
		return
	}
	profile := bh.Deps.SessionManager.GetTempProfile(chatID)
	found := false
	for i, cat := range profile.Categories {
		if cat == category {
			profile.Categories = append(profile.Categories[:i], profile.Categories[i+1:]...)
			found = true
			break
		}
	}
	if !found {
		profile.Categories = append(profile.Categories, category)
	}
	bh.Deps.SessionManager.UpdateTempProfile(chatID, profile)

	keyboard := categoryKeyboard(constants.CALLBACK_PREFIX_PROFILE_CATEGORY, profile.Categories)
	bh.sendOrEditMessageHelper(chatID, messageID, "🔧 Выберите ваши специализации и нажмите «Готово»:", &keyboard, "")
}

// handleProfileDone завершает текущий мульти-шаг анкеты мастера.
func (bh *BotHandler) handleProfileDone(chatID int64) {
	state := bh.Deps.SessionManager.GetState(chatID)
	switch state {
	case constants.STATE_PROFILE_CATEGORIES:
		bh.Deps.SessionManager.SetState(chatID, constants.STATE_PROFILE_EXPERIENCE)
		bh.sendMessage(chatID, "🧰 Опыт работы (например, «8 лет», или «-»):")
	case constants.STATE_PROFILE_PORTFOLIO:
		bh.finishProfileRegistration(chatID)
	}
}

// askDeleteProfile запрашивает подтверждение удаления профиля.
func (bh *BotHandler) askDeleteProfile(chatID int64) {
	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🗑️ Да, удалить", constants.CALLBACK_PREFIX_DELETE_PROFILE+"_confirm"),
			tgbotapi.NewInlineKeyboardButtonData("Отмена", "back_to_main"),
		),
	)
	bh.sendMessageWithKeyboard(chatID,
		"Удалить профиль? Ваши заказы, отклики и отзывы останутся в истории, но анкета и контакты будут стёрты безвозвратно.",
		&keyboard)
}

// handleDeleteProfile удаляет пользователя и его анкету.
func (bh *BotHandler) handleDeleteProfile(chatID int64) {
	deleted, err := bh.Deps.Service.DeleteProfile(chatID)
	if err != nil {
		log.Error().Err(err).Int64("chat_id", chatID).Msg("ошибка удаления профиля")
		bh.sendErrorMessageHelper(chatID, 0, "❌ Не удалось удалить профиль. Попробуйте позже.")
		return
	}
	bh.Deps.SessionManager.ClearState(chatID)
	bh.Deps.SessionManager.ClearTempProfile(chatID)
	if deleted {
		bh.sendMessage(chatID, "🗑️ Профиль удалён. Нажмите /start, чтобы зарегистрироваться заново.")
	} else {
		bh.sendMessage(chatID, "Профиль не найден. Нажмите /start для регистрации.")
	}
}

// --- Создание заказа ---

// startOrderWizard запускает пошаговый диалог создания заказа.
func (bh *BotHandler) startOrderWizard(chatID int64) {
	user, exists := bh.getUserFromDB(chatID)
	if !exists || user.Role != constants.ROLE_CLIENT {
		bh.sendMessage(chatID, constants.AccessDeniedMessage)
		return
	}
	bh.Deps.SessionManager.ClearTempOrder(chatID)
	bh.Deps.SessionManager.SetState(chatID, constants.STATE_ORDER_TITLE)
	bh.sendMessage(chatID, "✍️ Коротко опишите, что нужно сделать (например, «Заменить смеситель на кухне»):")
}

// handleOrderCategory фиксирует категорию заказа.
func (bh *BotHandler) handleOrderCategory(chatID int64, messageID int, category string) {
	if _, ok := constants.CategoryDisplayMap[category]; !ok {
		return
	}
	orderData := bh.Deps.SessionManager.GetTempOrder(chatID)
	orderData.Order.Category = category
	bh.Deps.SessionManager.UpdateTempOrder(chatID, orderData)
	bh.deleteMessageHelper(chatID, messageID)
	bh.Deps.SessionManager.SetState(chatID, constants.STATE_ORDER_BUDGET_TYPE)
	keyboard := budgetTypeKeyboard()
	bh.sendMessageWithKeyboard(chatID, "💰 Какой у вас бюджет?", &keyboard)
}

// handleBudgetType фиксирует тип бюджета заказа.
func (bh *BotHandler) handleBudgetType(chatID int64, budgetType string) {
	orderData := bh.Deps.SessionManager.GetTempOrder(chatID)
	switch budgetType {
	case constants.BUDGET_FIXED:
		orderData.Order.BudgetType = constants.BUDGET_FIXED
		bh.Deps.SessionManager.UpdateTempOrder(chatID, orderData)
		bh.Deps.SessionManager.SetState(chatID, constants.STATE_ORDER_BUDGET_VALUE)
		bh.sendMessage(chatID, "💰 Укажите сумму в рублях:")
	case constants.BUDGET_FLEXIBLE:
		orderData.Order.BudgetType = constants.BUDGET_FLEXIBLE
		orderData.Order.BudgetValue = models.NullFloat64{}
		bh.Deps.SessionManager.UpdateTempOrder(chatID, orderData)
		bh.Deps.SessionManager.SetState(chatID, constants.STATE_ORDER_DEADLINE)
		bh.sendMessage(chatID, "📅 Желаемые сроки (например, «до конца недели», или «-»):")
	}
}

// handleOrderConfirm публикует заказ или отменяет черновик.
func (bh *BotHandler) handleOrderConfirm(chatID int64, messageID int, answer string) {
	orderData := bh.Deps.SessionManager.GetTempOrder(chatID)
	bh.deleteMessageHelper(chatID, messageID)

	if answer != "yes" {
		bh.Deps.SessionManager.ClearTempOrder(chatID)
		bh.Deps.SessionManager.ClearState(chatID)
		bh.sendMessage(chatID, "Черновик заказа удалён.")
		bh.SendMainMenu(chatID, 0)
		return
	}

	orderID, err := bh.Deps.Service.CreateOrder(chatID, orderData.Order)
	bh.Deps.SessionManager.ClearTempOrder(chatID)
	bh.Deps.SessionManager.ClearState(chatID)
	if err != nil {
		log.Error().Err(err).Int64("chat_id", chatID).Msg("ошибка создания заказа")
		bh.sendErrorMessageHelper(chatID, 0, "❌ Не удалось опубликовать заказ. Попробуйте позже.")
		return
	}
	bh.sendMessage(chatID, fmt.Sprintf("✅ Заказ №%d опубликован! Мы сообщим, когда мастера откликнутся.", orderID))
	bh.SendMainMenu(chatID, 0)
}

// --- Лента и отклики мастера ---

// showFeed показывает мастеру страницу ленты заказов.
func (bh *BotHandler) showFeed(chatID int64, page int) {
	orders, err := bh.Deps.Service.ListFeed(chatID, page)
	if err != nil {
		if errors.Is(err, db.ErrRoleConflict) {
			bh.sendMessage(chatID, constants.AccessDeniedMessage)
			return
		}
		log.Error().Err(err).Int64("chat_id", chatID).Msg("ошибка загрузки ленты")
		bh.sendErrorMessageHelper(chatID, 0, "❌ Не удалось загрузить ленту. Попробуйте позже.")
		return
	}
	if len(orders) == 0 {
		if page == 0 {
			bh.sendMessage(chatID, "📭 Подходящих заказов пока нет. Загляните позже!")
		} else {
			bh.sendMessage(chatID, "📭 Это все заказы на сегодня.")
		}
		return
	}

	for _, order := range orders {
		keyboard := feedOrderKeyboard(order.ID)
		bh.sendMessageWithKeyboard(chatID, formatters.FormatOrderForFeed(order), &keyboard)
	}
	if len(orders) == constants.OrdersPerPage {
		keyboard := tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("➡️ Ещё", fmt.Sprintf("%s_%d", constants.CALLBACK_PREFIX_FEED_PAGE, page+1)),
			),
		)
		bh.sendMessageWithKeyboard(chatID, "Показать ещё заказы?", &keyboard)
	}
}

// startBidWizard запускает диалог отклика мастера на заказ.
func (bh *BotHandler) startBidWizard(chatID, orderID int64) {
	user, exists := bh.getUserFromDB(chatID)
	if !exists || user.Role != constants.ROLE_WORKER {
		bh.sendMessage(chatID, constants.AccessDeniedMessage)
		return
	}
	bh.Deps.SessionManager.UpdateTempBid(chatID, bh.newTempBid(chatID, orderID))
	bh.Deps.SessionManager.SetState(chatID, constants.STATE_BID_PRICE)
	bh.sendMessage(chatID, fmt.Sprintf("💰 Ваша цена за заказ №%d (в рублях):", orderID))
}

// handleWithdrawBid отзывает активный отклик мастера.
func (bh *BotHandler) handleWithdrawBid(chatID, bidID int64) {
	err := bh.Deps.Service.WithdrawBid(chatID, bidID)
	if err != nil {
		switch {
		case errors.Is(err, db.ErrNotFound):
			bh.sendMessage(chatID, "⚠️ Отклик не найден.")
		case errors.Is(err, db.ErrBidNotSelectable):
			bh.sendMessage(chatID, "⚠️ Этот отклик уже нельзя отозвать.")
		default:
			log.Error().Err(err).Int64("chat_id", chatID).Int64("bid_id", bidID).Msg("ошибка отзыва отклика")
			bh.sendErrorMessageHelper(chatID, 0, "❌ Не удалось отозвать отклик.")
		}
		return
	}
	bh.sendMessage(chatID, "✅ Отклик отозван.")
}

// --- Заказы заказчика ---

// showMyOrders показывает заказчику его заказы с кнопками управления.
func (bh *BotHandler) showMyOrders(chatID int64) {
	orders, err := bh.Deps.Service.ListMyOrders(chatID)
	if err != nil {
		if errors.Is(err, db.ErrRoleConflict) {
			bh.sendMessage(chatID, constants.AccessDeniedMessage)
			return
		}
		log.Error().Err(err).Int64("chat_id", chatID).Msg("ошибка загрузки заказов")
		bh.sendErrorMessageHelper(chatID, 0, "❌ Не удалось загрузить заказы.")
		return
	}
	if len(orders) == 0 {
		bh.sendMessage(chatID, "📭 У вас пока нет заказов. Создайте первый через «Новый заказ»!")
		return
	}

	for _, order := range orders {
		activeBids := 0
		if bids, errBids := bh.Deps.Service.ListBids(order.ID); errBids == nil {
			for _, b := range bids {
				if b.Status == constants.BID_STATUS_ACTIVE {
					activeBids++
				}
			}
		}
		keyboard := clientOrderKeyboard(order.ID, order.Status)
		bh.sendMessageWithKeyboard(chatID, formatters.FormatOrderDetailsForClient(order, activeBids), &keyboard)
	}
}

// showBidsForOrder показывает заказчику отклики на его заказ.
func (bh *BotHandler) showBidsForOrder(chatID, orderID int64) {
	order, err := bh.Deps.Service.Store().GetOrderByID(orderID)
	if err != nil {
		bh.sendMessage(chatID, "⚠️ Заказ не найден.")
		return
	}

	bids, err := bh.Deps.Service.ListBids(orderID)
	if err != nil {
		log.Error().Err(err).Int64("order_id", orderID).Msg("ошибка загрузки откликов")
		bh.sendErrorMessageHelper(chatID, 0, "❌ Не удалось загрузить отклики.")
		return
	}

	// Анкеты мастеров для отображения рейтинга; выбрать можно только активные.
	workers := make(map[int64]*models.WorkerProfile)
	var activeBids []models.Bid
	for _, b := range bids {
		if b.Status != constants.BID_STATUS_ACTIVE {
			continue
		}
		activeBids = append(activeBids, b)
		if wp, errWP := bh.Deps.Service.Store().GetWorkerProfile(b.WorkerID); errWP == nil {
			workers[b.WorkerID] = &wp
		}
	}

	text := formatters.FormatBidList(order, activeBids, workers)
	if len(activeBids) == 0 {
		bh.sendMessage(chatID, text)
		return
	}
	bidIDs := make([]int64, len(activeBids))
	for i, b := range activeBids {
		bidIDs[i] = b.ID
	}
	keyboard := selectBidKeyboard(orderID, bidIDs)
	bh.sendMessageWithKeyboard(chatID, text, &keyboard)
}

// handleSelectBid — заказчик выбирает мастера.
func (bh *BotHandler) handleSelectBid(chatID, orderID, bidID int64) {
	err := bh.Deps.Service.SelectBid(chatID, orderID, bidID)
	if err != nil {
		switch {
		case errors.Is(err, db.ErrBidNotSelectable):
			bh.sendMessage(chatID, "⚠️ Этот отклик уже нельзя выбрать (отозван или снят).")
		case errors.Is(err, db.ErrOrderTerminated):
			bh.sendMessage(chatID, "⚠️ Заказ уже закрыт.")
		case errors.Is(err, db.ErrInvalidTransition):
			bh.sendMessage(chatID, "⚠️ Мастер по этому заказу уже выбран.")
		case errors.Is(err, db.ErrNotFound):
			bh.sendMessage(chatID, "⚠️ Заказ или отклик не найден.")
		default:
			log.Error().Err(err).Int64("order_id", orderID).Int64("bid_id", bidID).Msg("ошибка выбора отклика")
			bh.sendErrorMessageHelper(chatID, 0, "❌ Не удалось выбрать мастера.")
		}
		return
	}
	bh.sendMessage(chatID, "🤝 Мастер выбран! Его контакты откроются вам обоим после оплаты мастером доступа. Мы сообщим.")
}

// handleCompleteOrder завершает заказ по команде любой из сторон.
func (bh *BotHandler) handleCompleteOrder(chatID, orderID int64) {
	err := bh.Deps.Service.CompleteOrder(chatID, orderID)
	if err != nil {
		switch {
		case errors.Is(err, db.ErrOrderTerminated):
			bh.sendMessage(chatID, "⚠️ Заказ уже закрыт.")
		case errors.Is(err, db.ErrInvalidTransition):
			bh.sendMessage(chatID, "⚠️ Заказ ещё нельзя завершить.")
		case errors.Is(err, db.ErrNotFound):
			bh.sendMessage(chatID, "⚠️ Заказ не найден или вы не его участник.")
		default:
			log.Error().Err(err).Int64("order_id", orderID).Msg("ошибка завершения заказа")
			bh.sendErrorMessageHelper(chatID, 0, "❌ Не удалось завершить заказ.")
		}
		return
	}
	bh.sendMessage(chatID, "✅ Заказ завершён. Не забудьте оставить отзыв!")
}

// handleCancelOrder отменяет заказ заказчика.
func (bh *BotHandler) handleCancelOrder(chatID, orderID int64) {
	err := bh.Deps.Service.CancelOrder(chatID, orderID)
	if err != nil {
		switch {
		case errors.Is(err, db.ErrOrderTerminated):
			bh.sendMessage(chatID, "⚠️ Заказ уже закрыт.")
		case errors.Is(err, db.ErrNotFound):
			bh.sendMessage(chatID, "⚠️ Заказ не найден или принадлежит не вам.")
		default:
			log.Error().Err(err).Int64("order_id", orderID).Msg("ошибка отмены заказа")
			bh.sendErrorMessageHelper(chatID, 0, "❌ Не удалось отменить заказ.")
		}
		return
	}
	bh.sendMessage(chatID, "❌ Заказ отменён.")
}

// --- Профиль и отзывы ---

// showMyProfile показывает пользователю его анкету.
func (bh *BotHandler) showMyProfile(chatID int64, messageID int) {
	view, err := bh.Deps.Service.GetProfile(chatID)
	if err != nil {
		bh.sendMessage(chatID, "Анкета не найдена. Нажмите /start, чтобы зарегистрироваться.")
		return
	}

	var text string
	switch {
	case view.Worker != nil:
		profile := *view.Worker
		profile.Phone = bh.decryptPhoneForDisplay(profile.Phone)
		text = formatters.FormatWorkerProfile(profile, false)
	case view.Client != nil:
		profile := *view.Client
		profile.Phone = bh.decryptPhoneForDisplay(profile.Phone)
		text = formatters.FormatClientProfile(profile)
	default:
		bh.sendMessage(chatID, "Анкета ещё не заполнена. Нажмите /start, чтобы продолжить регистрацию.")
		return
	}

	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🗑️ Удалить профиль", constants.CALLBACK_PREFIX_DELETE_PROFILE+"_ask"),
			tgbotapi.NewInlineKeyboardButtonData("🔙 Меню", "back_to_main"),
		),
	)
	bh.sendOrEditMessageHelper(chatID, messageID, text, &keyboard, tgbotapi.ModeMarkdown)
}

// showMyReviews показывает пользователю отзывы о нём.
func (bh *BotHandler) showMyReviews(chatID int64, messageID int) {
	user, exists := bh.getUserFromDB(chatID)
	if !exists {
		bh.sendMessage(chatID, "Нажмите /start, чтобы зарегистрироваться.")
		return
	}
	reviews, err := bh.Deps.Service.Store().ListReviewsForUser(user.ID)
	if err != nil {
		log.Error().Err(err).Int64("chat_id", chatID).Msg("ошибка загрузки отзывов")
		bh.sendErrorMessageHelper(chatID, 0, "❌ Не удалось загрузить отзывы.")
		return
	}
	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔙 Меню", "back_to_main"),
		),
	)
	bh.sendOrEditMessageHelper(chatID, messageID, formatters.FormatReviewList(reviews), &keyboard, tgbotapi.ModeMarkdown)
}

// startReviewWizard запускает диалог отзыва по завершённому заказу.
func (bh *BotHandler) startReviewWizard(chatID, orderID, toUserID int64) {
	user, exists := bh.getUserFromDB(chatID)
	if !exists {
		bh.sendMessage(chatID, "Нажмите /start, чтобы зарегистрироваться.")
		return
	}
	if already, err := bh.Deps.Service.Store().HasReview(orderID, user.ID, toUserID); err == nil && already {
		bh.sendMessage(chatID, fmt.Sprintf("✅ Вы уже оставили отзыв по заказу №%d.", orderID))
		return
	}
	bh.Deps.SessionManager.UpdateTempReview(chatID, bh.newTempReview(orderID, toUserID))
	bh.Deps.SessionManager.SetState(chatID, constants.STATE_REVIEW_RATING)
	keyboard := ratingKeyboard()
	bh.sendMessageWithKeyboard(chatID, fmt.Sprintf("⭐ Оцените работу по заказу №%d:", orderID), &keyboard)
}

// handleReviewRating фиксирует оценку и запрашивает комментарий.
func (bh *BotHandler) handleReviewRating(chatID int64, rating int) {
	if rating < 1 || rating > 5 {
		return
	}
	reviewData := bh.Deps.SessionManager.GetTempReview(chatID)
	if reviewData.OrderID == 0 {
		bh.sendMessage(chatID, "⚠️ Сессия отзыва истекла. Начните заново.")
		return
	}
	reviewData.Rating = rating
	bh.Deps.SessionManager.UpdateTempReview(chatID, reviewData)
	bh.Deps.SessionManager.SetState(chatID, constants.STATE_REVIEW_COMMENT)
	bh.sendMessage(chatID, "💬 Добавьте комментарий к отзыву (или «-», чтобы пропустить):")
}
