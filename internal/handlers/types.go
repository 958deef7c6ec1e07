package handlers

import (
	"errors"

	"github.com/rs/zerolog/log"

	"masterbot/internal/config"
	"masterbot/internal/db"
	"masterbot/internal/models"
	"masterbot/internal/service"
	"masterbot/internal/session"
	"masterbot/internal/telegram"
	"masterbot/internal/utils"
)

// HandlerDependencies содержит все зависимости, необходимые для обработчиков.
// HandlerDependencies contains all dependencies required for handlers.
type HandlerDependencies struct {
	Config         *config.Config
	BotClient      *telegram.BotClient
	SessionManager *session.SessionManager
	Service        *service.Service
}

// BotHandler инкапсулирует логику обработки сообщений и коллбэков.
// BotHandler encapsulates the logic for handling messages and callbacks.
type BotHandler struct {
	Deps HandlerDependencies
}

// NewBotHandler создает новый экземпляр BotHandler.
func NewBotHandler(deps HandlerDependencies) *BotHandler {
	if deps.Config == nil || deps.BotClient == nil || deps.SessionManager == nil || deps.Service == nil {
		// Критическая ошибка конфигурации, приложение не сможет работать.
		// Critical configuration error; the application cannot work.
		panic("не все зависимости для BotHandler были предоставлены")
	}
	return &BotHandler{Deps: deps}
}

// newTempBid создает черновик отклика на заказ.
func (bh *BotHandler) newTempBid(chatID, orderID int64) session.TempBidData {
	return session.TempBidData{WorkerChatID: chatID, OrderID: orderID}
}

// newTempReview создает черновик отзыва.
func (bh *BotHandler) newTempReview(orderID, toUserID int64) session.TempReviewData {
	return session.TempReviewData{OrderID: orderID, ToUserID: toUserID}
}

// decryptPhoneForDisplay расшифровывает телефон для показа владельцу анкеты.
// При ошибке дешифрования возвращает пустую строку, чтобы не показать шифротекст.
func (bh *BotHandler) decryptPhoneForDisplay(encrypted string) string {
	if encrypted == "" {
		return ""
	}
	plain, err := utils.DecryptPhone(encrypted)
	if err != nil {
		log.Warn().Err(err).Msg("не удалось расшифровать телефон для отображения")
		return ""
	}
	return plain
}

// getUserFromDB возвращает пользователя по chatID.
// false означает, что пользователь не зарегистрирован или произошла ошибка.
func (bh *BotHandler) getUserFromDB(chatID int64) (models.User, bool) {
	user, err := bh.Deps.Service.Store().GetUserByChatID(chatID)
	if err != nil {
		if !errors.Is(err, db.ErrNotFound) {
			log.Error().Err(err).Int64("chat_id", chatID).Msg("ошибка получения пользователя из БД")
		}
		return models.User{}, false
	}
	return user, true
}
