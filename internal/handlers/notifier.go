package handlers

import (
	"fmt"

	tgbotapi "github.com/OvyFlash/telegram-bot-api"
	"github.com/rs/zerolog/log"
	qrcode "github.com/skip2/go-qrcode"

	"masterbot/internal/config"
	"masterbot/internal/constants"
	"masterbot/internal/formatters"
	"masterbot/internal/models"
	"masterbot/internal/payments"
	"masterbot/internal/telegram"
	"masterbot/internal/utils"
)

// TelegramNotifier доставляет события ядра пользователям через Telegram.
// Реализует service.Notifier.
// TelegramNotifier delivers core events to users via Telegram.
type TelegramNotifier struct {
	cfg       *config.Config
	botClient *telegram.BotClient
}

// NewTelegramNotifier создает нотификатор.
func NewTelegramNotifier(cfg *config.Config, botClient *telegram.BotClient) *TelegramNotifier {
	return &TelegramNotifier{cfg: cfg, botClient: botClient}
}

func (n *TelegramNotifier) send(chatID int64, text string, keyboard *tgbotapi.InlineKeyboardMarkup) {
	if chatID == 0 {
		return
	}
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	if keyboard != nil {
		msg.ReplyMarkup = keyboard
	}
	if _, err := n.botClient.Send(msg); err != nil {
		log.Error().Err(err).Int64("chat_id", chatID).Msg("ошибка доставки уведомления")
	}
}

// BidReceived — заказчику пришёл новый отклик.
func (n *TelegramNotifier) BidReceived(order models.Order, clientChatID int64, bid models.Bid) {
	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📨 Посмотреть отклики",
				fmt.Sprintf("%s_%d_0", constants.CALLBACK_PREFIX_MY_BIDS_PAGE, order.ID)),
		),
	)
	n.send(clientChatID,
		fmt.Sprintf("📨 Новый отклик на заказ №%d «%s»: %s.",
			order.ID, utils.EscapeTelegramMarkdown(order.Title), utils.FormatPrice(bid.Price)),
		&keyboard)
}

// BidSelected — мастер выбран заказчиком.
func (n *TelegramNotifier) BidSelected(order models.Order, workerChatID int64, bid models.Bid) {
	n.send(workerChatID,
		fmt.Sprintf("🎉 Поздравляем! Заказчик выбрал ваш отклик (%s) по заказу №%d «%s».",
			utils.FormatPrice(bid.Price), order.ID, utils.EscapeTelegramMarkdown(order.Title)),
		nil)
}

// PaymentRequired — мастеру нужно оплатить доступ к контактам.
// Отправляет платёжную ссылку и QR-код для оплаты.
func (n *TelegramNotifier) PaymentRequired(order models.Order, workerID, workerChatID int64, amount float64) {
	if workerChatID == 0 {
		return
	}

	if n.cfg.YooKassaShopID == "" || n.cfg.YooKassaSecretKey == "" {
		// Платёжный шлюз не настроен: сообщаем без ссылки, оплату подтвердит вебхук или оператор.
		n.send(workerChatID,
			fmt.Sprintf("💳 Чтобы получить контакты заказчика по заказу №%d, оплатите доступ (%s).",
				order.ID, utils.FormatPrice(amount)),
			nil)
		return
	}

	paymentURL, err := payments.CreateAccessPaymentLink(
		n.cfg.YooKassaShopID, n.cfg.YooKassaSecretKey,
		order.ID, workerID, amount, n.cfg.ReturnURL)
	if err != nil {
		log.Error().Err(err).Int64("order_id", order.ID).Int64("worker_id", workerID).
			Msg("не удалось создать платёжную ссылку")
		n.send(workerChatID,
			"⚠️ Не удалось сформировать ссылку на оплату. Попробуйте позже или обратитесь в поддержку.",
			nil)
		return
	}

	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonURL(fmt.Sprintf("💳 Оплатить %s", utils.FormatPrice(amount)), paymentURL),
		),
	)
	n.send(workerChatID,
		fmt.Sprintf("💳 Оплатите доступ к контактам заказчика по заказу №%d. После оплаты контакты придут автоматически.", order.ID),
		&keyboard)

	// QR-код той же ссылкой, удобно оплатить с другого устройства.
	png, err := qrcode.Encode(paymentURL, qrcode.Medium, 256)
	if err != nil {
		log.Warn().Err(err).Int64("order_id", order.ID).Msg("не удалось сгенерировать QR-код оплаты")
		return
	}
	photo := tgbotapi.NewPhoto(workerChatID, tgbotapi.FileBytes{
		Name:  fmt.Sprintf("payment_order_%d.png", order.ID),
		Bytes: png,
	})
	photo.Caption = "QR-код для оплаты с другого устройства"
	if _, err := n.botClient.Send(photo); err != nil {
		log.Warn().Err(err).Int64("chat_id", workerChatID).Msg("ошибка отправки QR-кода")
	}
}

// ContactDisclosed — оплата получена, раскрываем контакты обеим сторонам.
// Телефон заказчика приходит зашифрованным и расшифровывается здесь.
func (n *TelegramNotifier) ContactDisclosed(order models.Order, workerChatID, clientChatID int64, clientName, encryptedPhone string) {
	phone := ""
	if encryptedPhone != "" {
		plain, err := utils.DecryptPhone(encryptedPhone)
		if err != nil {
			log.Error().Err(err).Int64("order_id", order.ID).Msg("не удалось расшифровать телефон заказчика")
		} else {
			phone = plain
		}
	}
	n.send(workerChatID, formatters.FormatContactCard(order, clientName, phone), nil)
	n.send(clientChatID,
		fmt.Sprintf("📞 Мастер оплатил доступ по заказу №%d и получил ваши контакты. Скоро он с вами свяжется!", order.ID),
		nil)
}

// OrderCompleted — заказ завершён, обеим сторонам предлагается оставить отзыв.
func (n *TelegramNotifier) OrderCompleted(order models.Order, clientChatID, workerChatID, workerID int64) {
	if workerID != 0 {
		keyboard := tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("⭐ Оценить мастера",
					fmt.Sprintf("%s_%d_%d", constants.CALLBACK_PREFIX_REVIEW, order.ID, workerID)),
			),
		)
		n.send(clientChatID,
			fmt.Sprintf("✅ Заказ №%d «%s» завершён. Оцените работу мастера, это поможет другим заказчикам.",
				order.ID, utils.EscapeTelegramMarkdown(order.Title)),
			&keyboard)
	} else {
		n.send(clientChatID,
			fmt.Sprintf("✅ Заказ №%d «%s» завершён.", order.ID, utils.EscapeTelegramMarkdown(order.Title)),
			nil)
	}

	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("⭐ Оценить заказчика",
				fmt.Sprintf("%s_%d_%d", constants.CALLBACK_PREFIX_REVIEW, order.ID, order.ClientID)),
		),
	)
	n.send(workerChatID,
		fmt.Sprintf("✅ Заказ №%d завершён. Оцените заказчика.", order.ID),
		&keyboard)
}

// OrderCanceled — заказ отменён; уведомляются заказчик и мастера с откликами.
func (n *TelegramNotifier) OrderCanceled(order models.Order, clientChatID int64, bidderChatIDs []int64) {
	n.send(clientChatID, fmt.Sprintf("❌ Заказ №%d отменён.", order.ID), nil)
	for _, bidderChatID := range bidderChatIDs {
		n.send(bidderChatID,
			fmt.Sprintf("❌ Заказ №%d «%s» отменён заказчиком, ваш отклик снят.",
				order.ID, utils.EscapeTelegramMarkdown(order.Title)),
			nil)
	}
}

// ReviewPosted — пользователю оставили отзыв.
func (n *TelegramNotifier) ReviewPosted(orderID, toChatID int64, rating int) {
	n.send(toChatID,
		fmt.Sprintf("📝 Вам оставили отзыв по заказу №%d: %d⭐. Рейтинг обновлён.", orderID, rating),
		nil)
}
