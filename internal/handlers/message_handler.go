package handlers

import (
	"errors"
	"fmt"
	"strings"

	tgbotapi "github.com/OvyFlash/telegram-bot-api"
	"github.com/rs/zerolog/log"

	"masterbot/internal/constants"
	"masterbot/internal/db"
	"masterbot/internal/formatters"
	"masterbot/internal/models"
	"masterbot/internal/utils"
)

// HandleMessage обрабатывает входящие сообщения от Telegram.
func (bh *BotHandler) HandleMessage(update tgbotapi.Update) {
	if update.Message == nil {
		return
	}

	message := update.Message
	chatID := message.Chat.ID
	text := strings.TrimSpace(message.Text)

	log.Debug().Int64("chat_id", chatID).Str("text", text).Msg("входящее сообщение")

	if message.IsCommand() {
		bh.handleCommand(chatID, message)
		return
	}

	currentState := bh.Deps.SessionManager.GetState(chatID)

	// Фото портфолио принимаются только в соответствующем шаге анкеты мастера.
	if len(message.Photo) > 0 {
		if currentState == constants.STATE_PROFILE_PORTFOLIO {
			bh.handlePortfolioPhoto(chatID, message)
		}
		return
	}

	switch {
	case strings.HasPrefix(currentState, "profile_"):
		bh.handleProfileWizardStep(chatID, currentState, text)
	case strings.HasPrefix(currentState, "order_"):
		bh.handleOrderWizardStep(chatID, currentState, text)
	case strings.HasPrefix(currentState, "bid_"):
		bh.handleBidWizardStep(chatID, currentState, text)
	case currentState == constants.STATE_REVIEW_COMMENT:
		bh.handleReviewCommentStep(chatID, text)
	default:
		if _, exists := bh.getUserFromDB(chatID); !exists {
			bh.sendMessage(chatID, "Пожалуйста, начните с команды /start, чтобы зарегистрироваться.")
			return
		}
		bh.SendMainMenu(chatID, 0)
	}
}

// handleCommand обрабатывает команды бота.
func (bh *BotHandler) handleCommand(chatID int64, message *tgbotapi.Message) {
	switch message.Command() {
	case "start":
		bh.Deps.SessionManager.ClearState(chatID)
		bh.Deps.SessionManager.ClearTempOrder(chatID)
		bh.Deps.SessionManager.ClearTempBid(chatID)
		bh.Deps.SessionManager.ClearTempReview(chatID)
		bh.Deps.SessionManager.ClearTempProfile(chatID)

		if _, exists := bh.getUserFromDB(chatID); exists {
			bh.SendMainMenu(chatID, 0)
			return
		}
		keyboard := roleSelectKeyboard()
		bh.Deps.SessionManager.SetState(chatID, constants.STATE_ONBOARD_ROLE)
		bh.sendMessageWithKeyboard(chatID,
			"👋 Добро пожаловать! Этот бот соединяет заказчиков с мастерами по ремонту.\n\nКто вы?",
			&keyboard)

	case "help":
		bh.sendMessage(chatID,
			"ℹ️ Команды:\n/start — главное меню\n/delete — удалить профиль\n/help — эта справка\n\n"+
				"Заказчики размещают заказы и выбирают мастера по откликам. "+
				"Мастера откликаются на заказы своего города и получают контакты заказчика после выбора и оплаты доступа.")

	case "delete":
		keyboard := tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("🗑️ Да, удалить", constants.CALLBACK_PREFIX_DELETE_PROFILE+"_confirm"),
				tgbotapi.NewInlineKeyboardButtonData("Отмена", "back_to_main"),
			),
		)
		bh.sendMessageWithKeyboard(chatID,
			"Удалить профиль? Ваши заказы, отклики и отзывы останутся в истории, но анкета и контакты будут стёрты безвозвратно.",
			&keyboard)

	default:
		bh.sendErrorMessageHelper(chatID, 0, "Неизвестная команда. Используйте /help.")
	}
}

// SendMainMenu отправляет главное меню в зависимости от роли пользователя.
func (bh *BotHandler) SendMainMenu(chatID int64, messageIDToEdit int) {
	user, exists := bh.getUserFromDB(chatID)
	if !exists {
		bh.sendMessage(chatID, "Пожалуйста, начните с команды /start.")
		return
	}

	bh.Deps.SessionManager.ClearState(chatID)

	var keyboard tgbotapi.InlineKeyboardMarkup
	var greeting string
	if user.Role == constants.ROLE_WORKER {
		greeting = "🛠️ *Главное меню мастера*\nВыберите действие:"
		keyboard = tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("📋 Лента заказов", constants.CALLBACK_PREFIX_FEED_PAGE+"_0"),
			),
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("👤 Мой профиль", "my_profile"),
				tgbotapi.NewInlineKeyboardButtonData("📝 Мои отзывы", "my_reviews"),
			),
		)
	} else {
		greeting = "🏠 *Главное меню заказчика*\nВыберите действие:"
		keyboard = tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("➕ Новый заказ", "new_order"),
				tgbotapi.NewInlineKeyboardButtonData("📋 Мои заказы", "my_orders"),
			),
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("👤 Мой профиль", "my_profile"),
				tgbotapi.NewInlineKeyboardButtonData("📝 Мои отзывы", "my_reviews"),
			),
		)
	}
	bh.sendOrEditMessageHelper(chatID, messageIDToEdit, greeting, &keyboard, tgbotapi.ModeMarkdown)
}

// --- Анкета (онбординг) ---
// --- Profile wizard (onboarding) ---

// handleProfileWizardStep обрабатывает текстовые шаги анкеты.
func (bh *BotHandler) handleProfileWizardStep(chatID int64, state, text string) {
	profile := bh.Deps.SessionManager.GetTempProfile(chatID)

	switch state {
	case constants.STATE_PROFILE_NAME:
		if text == "" {
			bh.sendMessage(chatID, "Имя не может быть пустым. Как вас зовут?")
			return
		}
		profile.Name = text
		bh.Deps.SessionManager.UpdateTempProfile(chatID, profile)
		bh.Deps.SessionManager.SetState(chatID, constants.STATE_PROFILE_PHONE)
		bh.sendMessage(chatID, "📱 Укажите ваш номер телефона (например, +79991234567):")

	case constants.STATE_PROFILE_PHONE:
		normalized, err := utils.ValidatePhoneNumber(text)
		if err != nil {
			bh.sendMessage(chatID, "❌ Не получилось распознать номер. Формат: +79991234567. Попробуйте ещё раз:")
			return
		}
		profile.Phone = normalized
		bh.Deps.SessionManager.UpdateTempProfile(chatID, profile)
		bh.Deps.SessionManager.SetState(chatID, constants.STATE_PROFILE_CITY)
		bh.sendMessage(chatID, "🏙️ В каком городе вы находитесь?")

	case constants.STATE_PROFILE_CITY:
		if text == "" {
			bh.sendMessage(chatID, "Укажите город:")
			return
		}
		profile.City = text
		bh.Deps.SessionManager.UpdateTempProfile(chatID, profile)
		if profile.Role == constants.ROLE_WORKER {
			bh.Deps.SessionManager.SetState(chatID, constants.STATE_PROFILE_REGIONS)
			bh.sendMessage(chatID, "🗺️ Перечислите районы/города выезда через запятую (или «-», если работаете только по своему городу):")
		} else {
			bh.Deps.SessionManager.SetState(chatID, constants.STATE_PROFILE_DESCRIPTION)
			bh.sendMessage(chatID, "✍️ Пара слов о себе (или «-», чтобы пропустить):")
		}

	case constants.STATE_PROFILE_REGIONS:
		if text != "-" {
			profile.Regions = utils.SplitTags(text)
		}
		bh.Deps.SessionManager.UpdateTempProfile(chatID, profile)
		bh.Deps.SessionManager.SetState(chatID, constants.STATE_PROFILE_CATEGORIES)
		keyboard := categoryKeyboard(constants.CALLBACK_PREFIX_PROFILE_CATEGORY, profile.Categories)
		bh.sendMessageWithKeyboard(chatID, "🔧 Выберите ваши специализации и нажмите «Готово»:", &keyboard)

	case constants.STATE_PROFILE_EXPERIENCE:
		if text != "-" {
			profile.Experience = text
		}
		bh.Deps.SessionManager.UpdateTempProfile(chatID, profile)
		bh.Deps.SessionManager.SetState(chatID, constants.STATE_PROFILE_DESCRIPTION)
		bh.sendMessage(chatID, "✍️ Расскажите о себе и своей работе (или «-», чтобы пропустить):")

	case constants.STATE_PROFILE_DESCRIPTION:
		if text != "-" {
			profile.Description = text
		}
		bh.Deps.SessionManager.UpdateTempProfile(chatID, profile)
		if profile.Role == constants.ROLE_WORKER {
			bh.Deps.SessionManager.SetState(chatID, constants.STATE_PROFILE_PORTFOLIO)
			keyboard := tgbotapi.NewInlineKeyboardMarkup(
				tgbotapi.NewInlineKeyboardRow(
					tgbotapi.NewInlineKeyboardButtonData("✔️ Готово", constants.CALLBACK_PREFIX_PROFILE_DONE),
				),
			)
			bh.sendMessageWithKeyboard(chatID,
				fmt.Sprintf("📸 Пришлите до %d фото ваших работ и нажмите «Готово» (или сразу «Готово», чтобы пропустить):", constants.MAX_PORTFOLIO_PHOTOS),
				&keyboard)
		} else {
			bh.finishProfileRegistration(chatID)
		}

	default:
		// Категории и портфолио обрабатываются коллбэками.
	}
}

// handlePortfolioPhoto добавляет фото в черновик анкеты мастера.
func (bh *BotHandler) handlePortfolioPhoto(chatID int64, message *tgbotapi.Message) {
	fileID := message.Photo[len(message.Photo)-1].FileID
	count, err := bh.Deps.SessionManager.AddPortfolioPhoto(chatID, fileID)
	if err != nil {
		bh.sendMessage(chatID, fmt.Sprintf("⚠️ %s", err.Error()))
		return
	}
	bh.sendMessage(chatID, fmt.Sprintf("📸 Фото добавлено (%d/%d). Пришлите ещё или нажмите «Готово».", count, constants.MAX_PORTFOLIO_PHOTOS))
}

// finishProfileRegistration сохраняет собранную анкету и показывает главное меню.
// Телефон шифруется перед записью в хранилище.
func (bh *BotHandler) finishProfileRegistration(chatID int64) {
	profile := bh.Deps.SessionManager.GetTempProfile(chatID)

	encryptedPhone, err := utils.EncryptPhone(profile.Phone)
	if err != nil {
		log.Error().Err(err).Int64("chat_id", chatID).Msg("ошибка шифрования телефона")
		bh.sendErrorMessageHelper(chatID, 0, "❌ Не удалось сохранить анкету. Попробуйте позже.")
		return
	}

	if profile.Role == constants.ROLE_WORKER {
		err = bh.Deps.Service.RegisterWorkerProfile(chatID, models.WorkerProfile{
			Name:            profile.Name,
			Phone:           encryptedPhone,
			City:            profile.City,
			Regions:         profile.Regions,
			Categories:      profile.Categories,
			Experience:      profile.Experience,
			Description:     profile.Description,
			PortfolioPhotos: profile.PortfolioPhotos,
		})
	} else {
		err = bh.Deps.Service.RegisterClientProfile(chatID, models.ClientProfile{
			Name:        profile.Name,
			Phone:       encryptedPhone,
			City:        profile.City,
			Description: profile.Description,
		})
	}
	if err != nil {
		if errors.Is(err, db.ErrProfileExists) {
			bh.sendMessage(chatID, "У вас уже есть анкета.")
		} else {
			log.Error().Err(err).Int64("chat_id", chatID).Msg("ошибка сохранения анкеты")
			bh.sendErrorMessageHelper(chatID, 0, "❌ Не удалось сохранить анкету. Попробуйте позже.")
			return
		}
	} else {
		bh.sendMessage(chatID, "✅ Анкета сохранена!")
	}

	bh.Deps.SessionManager.ClearTempProfile(chatID)
	bh.Deps.SessionManager.ClearState(chatID)
	bh.SendMainMenu(chatID, 0)
}

// --- Создание заказа ---
// --- Order wizard ---

// handleOrderWizardStep обрабатывает текстовые шаги создания заказа.
func (bh *BotHandler) handleOrderWizardStep(chatID int64, state, text string) {
	orderData := bh.Deps.SessionManager.GetTempOrder(chatID)

	switch state {
	case constants.STATE_ORDER_TITLE:
		if text == "" {
			bh.sendMessage(chatID, "Коротко опишите, что нужно сделать:")
			return
		}
		orderData.Order.Title = utils.Truncate(text, constants.MAX_TITLE_LENGTH)
		bh.Deps.SessionManager.UpdateTempOrder(chatID, orderData)
		bh.Deps.SessionManager.SetState(chatID, constants.STATE_ORDER_DESCRIPTION)
		bh.sendMessage(chatID, "📝 Опишите задачу подробнее (или «-», чтобы пропустить):")

	case constants.STATE_ORDER_DESCRIPTION:
		if text != "-" {
			orderData.Order.Description = text
		}
		bh.Deps.SessionManager.UpdateTempOrder(chatID, orderData)
		bh.Deps.SessionManager.SetState(chatID, constants.STATE_ORDER_CITY)
		bh.sendMessage(chatID, "🏙️ В каком городе нужен мастер?")

	case constants.STATE_ORDER_CITY:
		if text == "" {
			bh.sendMessage(chatID, "Укажите город:")
			return
		}
		orderData.Order.City = text
		bh.Deps.SessionManager.UpdateTempOrder(chatID, orderData)
		bh.Deps.SessionManager.SetState(chatID, constants.STATE_ORDER_ADDRESS)
		bh.sendMessage(chatID, "📍 Адрес или район (или «-», чтобы уточнить позже):")

	case constants.STATE_ORDER_ADDRESS:
		if text != "-" {
			orderData.Order.Address = text
		}
		bh.Deps.SessionManager.UpdateTempOrder(chatID, orderData)
		bh.Deps.SessionManager.SetState(chatID, constants.STATE_ORDER_CATEGORY)
		keyboard := categoryKeyboard(constants.CALLBACK_PREFIX_ORDER_CATEGORY, nil)
		bh.sendMessageWithKeyboard(chatID, "🔧 Выберите категорию работ:", &keyboard)

	case constants.STATE_ORDER_BUDGET_VALUE:
		value, err := utils.ValidateBudget(text)
		if err != nil {
			bh.sendMessage(chatID, "❌ Не понял сумму. Напишите число, например 5000:")
			return
		}
		orderData.Order.BudgetValue = models.NewNullFloat64(value)
		bh.Deps.SessionManager.UpdateTempOrder(chatID, orderData)
		bh.Deps.SessionManager.SetState(chatID, constants.STATE_ORDER_DEADLINE)
		bh.sendMessage(chatID, "📅 Желаемые сроки (например, «до конца недели», или «-»):")

	case constants.STATE_ORDER_DEADLINE:
		if text != "-" {
			orderData.Order.Deadline = text
		}
		bh.Deps.SessionManager.UpdateTempOrder(chatID, orderData)
		bh.Deps.SessionManager.SetState(chatID, constants.STATE_ORDER_CONFIRM)
		keyboard := orderConfirmKeyboard()
		bh.sendMessageWithKeyboard(chatID, formatters.FormatOrderConfirmation(orderData.Order), &keyboard)

	default:
		// Категория, тип бюджета и подтверждение обрабатываются коллбэками.
	}
}

// --- Отклик мастера ---
// --- Bid wizard ---

// handleBidWizardStep обрабатывает шаги создания отклика.
func (bh *BotHandler) handleBidWizardStep(chatID int64, state, text string) {
	bidData := bh.Deps.SessionManager.GetTempBid(chatID)

	switch state {
	case constants.STATE_BID_PRICE:
		price, err := utils.ValidateBudget(text)
		if err != nil {
			bh.sendMessage(chatID, "❌ Не понял цену. Напишите число, например 3500:")
			return
		}
		bidData.Price = price
		bh.Deps.SessionManager.UpdateTempBid(chatID, bidData)
		bh.Deps.SessionManager.SetState(chatID, constants.STATE_BID_DEADLINE)
		bh.sendMessage(chatID, "📅 В какие сроки готовы выполнить? (или «-»)")

	case constants.STATE_BID_DEADLINE:
		if text != "-" {
			bidData.Deadline = text
		}
		bh.Deps.SessionManager.UpdateTempBid(chatID, bidData)
		bh.Deps.SessionManager.SetState(chatID, constants.STATE_BID_COMMENT)
		bh.sendMessage(chatID, "💬 Комментарий для заказчика (или «-»):")

	case constants.STATE_BID_COMMENT:
		if text != "-" {
			bidData.Comment = utils.Truncate(text, constants.MAX_COMMENT_LENGTH)
		}

		_, err := bh.Deps.Service.PlaceBid(chatID, bidData.OrderID, bidData.Price, bidData.Deadline, bidData.Comment)
		bh.Deps.SessionManager.ClearTempBid(chatID)
		bh.Deps.SessionManager.ClearState(chatID)
		if err != nil {
			switch {
			case errors.Is(err, db.ErrOrderTerminated):
				bh.sendMessage(chatID, "⚠️ Этот заказ уже закрыт, отклик невозможен.")
			case errors.Is(err, db.ErrInvalidTransition):
				bh.sendMessage(chatID, "⚠️ Заказчик уже выбрал мастера по этому заказу.")
			default:
				log.Error().Err(err).Int64("chat_id", chatID).Int64("order_id", bidData.OrderID).Msg("ошибка размещения отклика")
				bh.sendErrorMessageHelper(chatID, 0, "❌ Не удалось отправить отклик. Попробуйте позже.")
			}
			return
		}
		bh.sendMessage(chatID, "✅ Отклик отправлен! Если предложите новый, прежний будет заменён. Мы сообщим, если заказчик выберет вас.")
	}
}

// --- Отзыв ---
// --- Review wizard ---

// handleReviewCommentStep принимает текст отзыва и отправляет его в ядро.
func (bh *BotHandler) handleReviewCommentStep(chatID int64, text string) {
	reviewData := bh.Deps.SessionManager.GetTempReview(chatID)
	comment := ""
	if text != "-" {
		comment = utils.Truncate(text, constants.MAX_COMMENT_LENGTH)
	}

	_, err := bh.Deps.Service.SubmitReview(chatID, reviewData.OrderID, reviewData.ToUserID, reviewData.Rating, comment)
	bh.Deps.SessionManager.ClearTempReview(chatID)
	bh.Deps.SessionManager.ClearState(chatID)
	if err != nil {
		switch {
		case errors.Is(err, db.ErrAlreadyReviewed):
			bh.sendMessage(chatID, "⚠️ Вы уже оставили отзыв по этому заказу.")
		case errors.Is(err, db.ErrReviewNotAllowed):
			bh.sendMessage(chatID, "⚠️ Отзыв можно оставить только по завершённому заказу, в котором вы участвовали.")
		default:
			log.Error().Err(err).Int64("chat_id", chatID).Int64("order_id", reviewData.OrderID).Msg("ошибка сохранения отзыва")
			bh.sendErrorMessageHelper(chatID, 0, "❌ Не удалось сохранить отзыв. Попробуйте позже.")
		}
		return
	}
	bh.sendMessage(chatID, "✅ Спасибо за отзыв!")
}
