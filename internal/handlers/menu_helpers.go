package handlers

import (
	"fmt"

	tgbotapi "github.com/OvyFlash/telegram-bot-api"
	"github.com/rs/zerolog/log"

	"masterbot/internal/constants"
	"masterbot/internal/telegram"
)

// --- Вспомогательные функции для отправки сообщений и управления сессией ---
// --- Helper functions for sending messages and managing session ---

// sendOrEditMessageHelper отправляет или редактирует сообщение и обновляет
// CurrentMessageID в черновике сессии.
// sendOrEditMessageHelper sends or edits a message and updates CurrentMessageID in the session draft.
func (bh *BotHandler) sendOrEditMessageHelper(
	chatID int64,
	messageIDToTryEdit int,
	text string,
	keyboard *tgbotapi.InlineKeyboardMarkup,
	parseMode string,
) (tgbotapi.Message, error) {
	sentMsg, err := telegram.SendOrEditMessage(bh.Deps.BotClient, chatID, messageIDToTryEdit, text, keyboard, parseMode)
	if err != nil {
		return tgbotapi.Message{}, err
	}
	if sentMsg.MessageID != 0 {
		orderData := bh.Deps.SessionManager.GetTempOrder(chatID)
		orderData.CurrentMessageID = sentMsg.MessageID
		bh.Deps.SessionManager.UpdateTempOrder(chatID, orderData)
	}
	return sentMsg, nil
}

// sendErrorMessageHelper отправляет сообщение об ошибке пользователю.
func (bh *BotHandler) sendErrorMessageHelper(chatID int64, messageIDToEdit int, errorText string) (tgbotapi.Message, error) {
	return telegram.SendErrorMessage(bh.Deps.BotClient, chatID, messageIDToEdit, errorText)
}

// deleteMessageHelper удаляет сообщение пользователя или бота.
func (bh *BotHandler) deleteMessageHelper(chatID int64, messageID int) bool {
	return telegram.DeleteMessage(bh.Deps.BotClient, chatID, messageID)
}

// sendMessage отправляет простое текстовое сообщение.
func (bh *BotHandler) sendMessage(chatID int64, text string) (tgbotapi.Message, error) {
	msg := tgbotapi.NewMessage(chatID, text)
	sentMsg, err := bh.Deps.BotClient.Send(msg)
	if err != nil {
		log.Error().Err(err).Int64("chat_id", chatID).Msg("ошибка отправки сообщения")
		return tgbotapi.Message{}, err
	}
	return sentMsg, nil
}

// sendMessageWithKeyboard отправляет сообщение с указанной клавиатурой.
func (bh *BotHandler) sendMessageWithKeyboard(chatID int64, text string, keyboard *tgbotapi.InlineKeyboardMarkup) (tgbotapi.Message, error) {
	msg := tgbotapi.NewMessage(chatID, text)
	if keyboard != nil {
		msg.ReplyMarkup = keyboard
	}
	msg.ParseMode = tgbotapi.ModeMarkdown
	sentMsg, err := bh.Deps.BotClient.Send(msg)
	if err != nil {
		log.Error().Err(err).Int64("chat_id", chatID).Msg("ошибка отправки сообщения с клавиатурой")
		return tgbotapi.Message{}, err
	}
	return sentMsg, nil
}

// --- Клавиатуры ---
// --- Keyboards ---

// roleSelectKeyboard — выбор роли при онбординге.
func roleSelectKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("👷 Я мастер", constants.CALLBACK_PREFIX_ONBOARD_ROLE+"_"+constants.ROLE_WORKER),
			tgbotapi.NewInlineKeyboardButtonData("👤 Я заказчик", constants.CALLBACK_PREFIX_ONBOARD_ROLE+"_"+constants.ROLE_CLIENT),
		),
	)
}

// categoryKeyboard — клавиатура категорий с указанным префиксом callback-данных.
// Используется и для выбора категории заказа, и для мульти-выбора в анкете мастера.
func categoryKeyboard(prefix string, selected []string) tgbotapi.InlineKeyboardMarkup {
	selectedSet := make(map[string]bool, len(selected))
	for _, cat := range selected {
		selectedSet[cat] = true
	}

	categories := []string{
		constants.CAT_PLUMBING, constants.CAT_ELECTRICS, constants.CAT_FINISHING,
		constants.CAT_FURNITURE, constants.CAT_APPLIANCES, constants.CAT_OTHER,
	}

	var rows [][]tgbotapi.InlineKeyboardButton
	var row []tgbotapi.InlineKeyboardButton
	for _, cat := range categories {
		label := fmt.Sprintf("%s %s", constants.CategoryEmojiMap[cat], constants.CategoryDisplayMap[cat])
		if selectedSet[cat] {
			label = "✅ " + label
		}
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(label, prefix+"_"+cat))
		if len(row) == 2 {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	if prefix == constants.CALLBACK_PREFIX_PROFILE_CATEGORY {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✔️ Готово", constants.CALLBACK_PREFIX_PROFILE_DONE),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// budgetTypeKeyboard — выбор типа бюджета заказа.
func budgetTypeKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("💰 Фиксированный", constants.CALLBACK_PREFIX_BUDGET_TYPE+"_"+constants.BUDGET_FIXED),
			tgbotapi.NewInlineKeyboardButtonData("🤝 По договорённости", constants.CALLBACK_PREFIX_BUDGET_TYPE+"_"+constants.BUDGET_FLEXIBLE),
		),
	)
}

// orderConfirmKeyboard — подтверждение публикации заказа.
func orderConfirmKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Опубликовать", constants.CALLBACK_PREFIX_ORDER_CONFIRM+"_yes"),
			tgbotapi.NewInlineKeyboardButtonData("❌ Отмена", constants.CALLBACK_PREFIX_ORDER_CONFIRM+"_no"),
		),
	)
}

// ratingKeyboard — выбор оценки 1..5 для отзыва.
func ratingKeyboard() tgbotapi.InlineKeyboardMarkup {
	var row []tgbotapi.InlineKeyboardButton
	for r := 1; r <= 5; r++ {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(
			fmt.Sprintf("%d⭐", r),
			fmt.Sprintf("%s_%d", constants.CALLBACK_PREFIX_REVIEW_RATING, r),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(row...))
}

// feedOrderKeyboard — действия мастера под заказом в ленте.
func feedOrderKeyboard(orderID int64) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📨 Откликнуться", fmt.Sprintf("%s_%d", constants.CALLBACK_PREFIX_PLACE_BID, orderID)),
		),
	)
}

// clientOrderKeyboard — действия заказчика под своим заказом.
func clientOrderKeyboard(orderID int64, status string) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	switch status {
	case constants.ORDER_STATUS_OPEN, constants.ORDER_STATUS_PENDING_CHOICE:
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📨 Отклики", fmt.Sprintf("%s_%d_0", constants.CALLBACK_PREFIX_MY_BIDS_PAGE, orderID)),
			tgbotapi.NewInlineKeyboardButtonData("❌ Отменить", fmt.Sprintf("%s_%d", constants.CALLBACK_PREFIX_CANCEL, orderID)),
		))
	case constants.ORDER_STATUS_MASTER_SELECTED, constants.ORDER_STATUS_CONTACT_SHARED:
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Завершить", fmt.Sprintf("%s_%d", constants.CALLBACK_PREFIX_COMPLETE, orderID)),
			tgbotapi.NewInlineKeyboardButtonData("❌ Отменить", fmt.Sprintf("%s_%d", constants.CALLBACK_PREFIX_CANCEL, orderID)),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// selectBidKeyboard — кнопки выбора мастера под списком откликов.
func selectBidKeyboard(orderID int64, bidIDs []int64) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	var row []tgbotapi.InlineKeyboardButton
	for i, bidID := range bidIDs {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(
			fmt.Sprintf("Выбрать №%d", i+1),
			fmt.Sprintf("%s_%d_%d", constants.CALLBACK_PREFIX_SELECT_BID, orderID, bidID),
		))
		if len(row) == 3 {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}
