package telegram

import (
	"fmt"
	"strings"

	tgbotapi "github.com/OvyFlash/telegram-bot-api"
	"github.com/rs/zerolog/log"
)

// SendOrEditMessage пытается отредактировать существующее сообщение или отправляет новое.
// Если редактирование не удалось из-за "message is not modified", возвращает "фиктивный"
// Message объект с ID оригинального сообщения и nil в качестве ошибки.
// SendOrEditMessage tries to edit an existing message or sends a new one.
func SendOrEditMessage(
	botClient *BotClient,
	chatID int64,
	messageIDToTryEdit int,
	text string,
	keyboard *tgbotapi.InlineKeyboardMarkup,
	parseMode string,
) (tgbotapi.Message, error) {
	if botClient == nil || botClient.api == nil {
		return tgbotapi.Message{}, fmt.Errorf("BotClient не инициализирован")
	}

	// Фиктивный объект Message для возврата при успешном (или no-op) редактировании.
	// Placeholder Message object returned on a successful (or no-op) edit.
	var originalMsgObject tgbotapi.Message
	if messageIDToTryEdit != 0 {
		var chatObj tgbotapi.Chat
		chatObj.ID = chatID
		originalMsgObject.Chat = chatObj
		originalMsgObject.MessageID = messageIDToTryEdit
		originalMsgObject.Text = text
		if keyboard != nil {
			originalMsgObject.ReplyMarkup = keyboard
		}
	}

	if messageIDToTryEdit != 0 {
		var editMsgConfig tgbotapi.EditMessageTextConfig
		if keyboard != nil {
			editMsgConfig = tgbotapi.NewEditMessageTextAndMarkup(chatID, messageIDToTryEdit, text, *keyboard)
		} else {
			editMsgConfig = tgbotapi.NewEditMessageText(chatID, messageIDToTryEdit, text)
		}
		if parseMode != "" {
			editMsgConfig.ParseMode = parseMode
		}

		_, err := botClient.Request(editMsgConfig)
		if err == nil {
			return originalMsgObject, nil
		}

		// "message is not modified" означает, что контент не изменился, это не ошибка.
		if strings.Contains(err.Error(), "message is not modified") {
			return originalMsgObject, nil
		}

		// "message to edit not found" — сообщение удалено, отправим новое.
		if strings.Contains(err.Error(), "message to edit not found") {
			log.Debug().Int64("chat_id", chatID).Int("message_id", messageIDToTryEdit).
				Msg("сообщение для редактирования не найдено, будет отправлено новое")
		} else {
			log.Warn().Err(err).Int64("chat_id", chatID).Int("message_id", messageIDToTryEdit).
				Msg("неожиданная ошибка редактирования сообщения, будет отправлено новое")
		}
	}

	newMsg := tgbotapi.NewMessage(chatID, text)
	if keyboard != nil {
		newMsg.ReplyMarkup = keyboard
	}
	if parseMode != "" {
		newMsg.ParseMode = parseMode
	}

	actualSentMsg, err := botClient.Send(newMsg)
	if err != nil {
		log.Error().Err(err).Int64("chat_id", chatID).Msg("ошибка отправки нового сообщения")
		return tgbotapi.Message{}, err
	}
	return actualSentMsg, nil
}

// SendErrorMessage отправляет стандартизированное сообщение об ошибке пользователю.
// SendErrorMessage sends a standardized error message to the user.
func SendErrorMessage(
	botClient *BotClient,
	chatID int64,
	messageIDToTryEdit int,
	errorText string,
) (tgbotapi.Message, error) {
	if botClient == nil || botClient.api == nil {
		return tgbotapi.Message{}, fmt.Errorf("BotClient не инициализирован")
	}
	log.Debug().Int64("chat_id", chatID).Str("text", errorText).Msg("отправка сообщения об ошибке")

	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔙 Главное меню", "back_to_main"),
		),
	)
	return SendOrEditMessage(botClient, chatID, messageIDToTryEdit, errorText, &keyboard, tgbotapi.ModeMarkdown)
}

// DeleteMessage удаляет сообщение. Возвращает true при успехе.
func DeleteMessage(botClient *BotClient, chatID int64, messageID int) bool {
	if botClient == nil || botClient.api == nil || messageID == 0 {
		return false
	}

	deleteConfig := tgbotapi.NewDeleteMessage(chatID, messageID)
	response, err := botClient.Request(deleteConfig)
	if err != nil {
		log.Debug().Err(err).Int64("chat_id", chatID).Int("message_id", messageID).Msg("ошибка удаления сообщения")
		return false
	}
	if !response.Ok {
		if response.Description != "Bad Request: message to delete not found" &&
			response.Description != "Bad Request: message can't be deleted" &&
			!strings.Contains(response.Description, "MESSAGE_ID_INVALID") {
			log.Warn().Int64("chat_id", chatID).Int("message_id", messageID).
				Str("description", response.Description).Msg("Telegram API не смог удалить сообщение")
		}
		return false
	}
	return true
}
