package telegram

import (
	"fmt"

	tgbotapi "github.com/OvyFlash/telegram-bot-api"
	"github.com/rs/zerolog/log"
)

// BotClient — обертка над Telegram Bot API.
// BotClient wraps the Telegram Bot API.
type BotClient struct {
	api   *tgbotapi.BotAPI
	Debug bool
}

// InitBot инициализирует Telegram бота и возвращает клиент.
// token - API токен бота, debug - флаг режима отладки.
// InitBot initializes the Telegram bot and returns a client.
func InitBot(token string, debug bool) (*BotClient, error) {
	if token == "" {
		return nil, fmt.Errorf("токен Telegram API не предоставлен")
	}

	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("ошибка инициализации Telegram Bot API: %w", err)
	}
	api.Debug = debug

	log.Info().Str("username", api.Self.UserName).Msg("авторизован как аккаунт бота")

	// Отключаем вебхук, если он активен (важно для getUpdates)
	// Disable webhook if active (important for getUpdates)
	deleteWebhookConfig := tgbotapi.DeleteWebhookConfig{
		DropPendingUpdates: true,
	}
	if _, err = api.Request(deleteWebhookConfig); err != nil {
		// Ошибка возможна, если вебхука и не было. Логируем, но не прерываем.
		// An error may occur if no webhook was set. Log, but do not interrupt.
		log.Warn().Err(err).Msg("не удалось отключить вебхук, возможно он не был установлен")
	}

	return &BotClient{api: api, Debug: debug}, nil
}

// GetAPI возвращает нижележащий экземпляр *tgbotapi.BotAPI.
func (bc *BotClient) GetAPI() *tgbotapi.BotAPI {
	if bc == nil || bc.api == nil {
		log.Fatal().Msg("BotClient или его API не инициализирован")
	}
	return bc.api
}

// GetUpdatesChan возвращает канал обновлений от Telegram.
func (bc *BotClient) GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	if bc == nil || bc.api == nil {
		log.Fatal().Msg("BotClient или его API не инициализирован перед запросом обновлений")
	}
	return bc.api.GetUpdatesChan(config)
}

// Send отправляет сообщение через BotClient.
func (bc *BotClient) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if bc == nil || bc.api == nil {
		return tgbotapi.Message{}, fmt.Errorf("BotClient или его API не инициализирован")
	}
	if bc.Debug {
		if msg, ok := c.(tgbotapi.MessageConfig); ok {
			log.Debug().Int64("chat_id", msg.ChatID).Str("text", truncateForLog(msg.Text)).Msg("отправка сообщения")
		} else {
			log.Debug().Type("config", c).Msg("отправка сообщения")
		}
	}
	return bc.api.Send(c)
}

// Request выполняет запрос через BotClient.
func (bc *BotClient) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	if bc == nil || bc.api == nil {
		return nil, fmt.Errorf("BotClient или его API не инициализирован")
	}
	return bc.api.Request(c)
}

func truncateForLog(s string) string {
	const max = 50
	if len(s) > max {
		return s[:max] + "..."
	}
	return s
}
