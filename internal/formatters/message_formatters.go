package formatters

import (
	"fmt"
	"strings"

	"masterbot/internal/constants"
	"masterbot/internal/models"
	"masterbot/internal/utils"
)

const (
	separator = "─ ─ ─ ─ ─ ─ ─ ─ ─ ─ ─ ─ ─"
)

// formatBudget возвращает человекочитаемое описание бюджета заказа.
func formatBudget(order models.Order) string {
	if order.BudgetType == constants.BUDGET_FIXED && order.BudgetValue.Valid {
		return utils.FormatPrice(order.BudgetValue.Float64)
	}
	return "По договорённости"
}

// FormatOrderConfirmation форматирует сообщение для заказчика на этапе подтверждения создания заказа.
// На этом этапе еще нет ID заказа и откликов.
func FormatOrderConfirmation(order models.Order) string {
	var summaryBuilder strings.Builder

	summaryBuilder.WriteString("📋 *ДЕТАЛИ ЗАКАЗА:*\n")
	summaryBuilder.WriteString(fmt.Sprintf(" •  Что нужно: %s\n", utils.EscapeTelegramMarkdown(order.Title)))
	summaryBuilder.WriteString(fmt.Sprintf(" •  Категория: %s %s\n",
		constants.CategoryEmojiMap[order.Category],
		utils.EscapeTelegramMarkdown(constants.CategoryDisplayMap[order.Category])))
	summaryBuilder.WriteString(fmt.Sprintf(" •  Город: %s\n", utils.EscapeTelegramMarkdown(order.City)))
	if order.Address != "" {
		summaryBuilder.WriteString(fmt.Sprintf(" •  Адрес: %s\n", utils.EscapeTelegramMarkdown(order.Address)))
	}
	if order.Description != "" {
		summaryBuilder.WriteString(fmt.Sprintf(" •  Описание: %s\n", utils.EscapeTelegramMarkdown(order.Description)))
	}
	summaryBuilder.WriteString(fmt.Sprintf(" •  Бюджет: %s\n", utils.EscapeTelegramMarkdown(formatBudget(order))))
	if order.Deadline != "" {
		summaryBuilder.WriteString(fmt.Sprintf(" •  Сроки: %s\n", utils.EscapeTelegramMarkdown(order.Deadline)))
	}

	header := "✨ *Пожалуйста, проверьте ваш заказ*"
	footer := "Всё верно? Нажмите \"Опубликовать\", и мастера вашего города увидят заказ."

	return fmt.Sprintf("%s\n%s\n%s\n%s\n%s",
		header, separator, summaryBuilder.String(), separator, footer)
}

// FormatOrderDetailsForClient форматирует карточку заказа для его владельца-заказчика.
func FormatOrderDetailsForClient(order models.Order, activeBids int) string {
	var summaryBuilder strings.Builder

	summaryBuilder.WriteString(fmt.Sprintf("⚙️ *Статус:* %s %s\n\n",
		constants.OrderStatusEmojiMap[order.Status],
		utils.EscapeTelegramMarkdown(constants.OrderStatusDisplayMap[order.Status])))

	summaryBuilder.WriteString("📋 *ДЕТАЛИ ЗАКАЗА:*\n")
	summaryBuilder.WriteString(fmt.Sprintf(" •  Что нужно: %s\n", utils.EscapeTelegramMarkdown(order.Title)))
	summaryBuilder.WriteString(fmt.Sprintf(" •  Категория: %s\n", utils.EscapeTelegramMarkdown(constants.CategoryDisplayMap[order.Category])))
	summaryBuilder.WriteString(fmt.Sprintf(" •  Город: %s\n", utils.EscapeTelegramMarkdown(order.City)))
	if order.Description != "" {
		summaryBuilder.WriteString(fmt.Sprintf(" •  Описание: %s\n", utils.EscapeTelegramMarkdown(order.Description)))
	}
	summaryBuilder.WriteString(fmt.Sprintf(" •  Бюджет: %s\n", utils.EscapeTelegramMarkdown(formatBudget(order))))
	if order.Deadline != "" {
		summaryBuilder.WriteString(fmt.Sprintf(" •  Сроки: %s\n", utils.EscapeTelegramMarkdown(order.Deadline)))
	}
	summaryBuilder.WriteString("\n")

	if activeBids > 0 {
		summaryBuilder.WriteString(fmt.Sprintf("📨 *Откликов от мастеров: %d*\n", activeBids))
	}

	header := fmt.Sprintf("📋 *Ваш Заказ №%d*", order.ID)
	footer := "Управляйте заказом кнопками ниже."

	return fmt.Sprintf("%s\n%s\n%s\n%s\n%s",
		header, separator, summaryBuilder.String(), separator, footer)
}

// FormatOrderForFeed форматирует заказ для ленты мастера. Контакты заказчика скрыты.
// FormatOrderForFeed formats an order for the worker feed. Client contacts are hidden.
func FormatOrderForFeed(order models.Order) string {
	var summaryBuilder strings.Builder

	summaryBuilder.WriteString(fmt.Sprintf("%s *%s*\n",
		constants.CategoryEmojiMap[order.Category],
		utils.EscapeTelegramMarkdown(order.Title)))
	summaryBuilder.WriteString(fmt.Sprintf(" •  Категория: %s\n", utils.EscapeTelegramMarkdown(constants.CategoryDisplayMap[order.Category])))
	summaryBuilder.WriteString(fmt.Sprintf(" •  Город: %s\n", utils.EscapeTelegramMarkdown(order.City)))
	if order.Description != "" {
		summaryBuilder.WriteString(fmt.Sprintf(" •  Описание: %s\n", utils.EscapeTelegramMarkdown(utils.Truncate(order.Description, 200))))
	}
	summaryBuilder.WriteString(fmt.Sprintf(" •  Бюджет: %s\n", utils.EscapeTelegramMarkdown(formatBudget(order))))
	if order.Deadline != "" {
		summaryBuilder.WriteString(fmt.Sprintf(" •  Сроки: %s\n", utils.EscapeTelegramMarkdown(order.Deadline)))
	}

	header := fmt.Sprintf("🛠️ *Заказ №%d*", order.ID)
	return fmt.Sprintf("%s\n%s\n%s", header, separator, summaryBuilder.String())
}

// FormatBidLine форматирует одну строку отклика в списке откликов заказчика.
func FormatBidLine(index int, bid models.Bid, worker *models.WorkerProfile) string {
	name := "Мастер"
	ratingStr := "без оценок"
	if worker != nil {
		name = worker.Name
		if worker.RatingCount > 0 {
			ratingStr = fmt.Sprintf("⭐ %.1f (%d оценок)", worker.Rating, worker.RatingCount)
		}
	}
	line := fmt.Sprintf("%d. *%s* — %s\n    Цена: %s",
		index,
		utils.EscapeTelegramMarkdown(name),
		ratingStr,
		utils.EscapeTelegramMarkdown(utils.FormatPrice(bid.Price)))
	if bid.Deadline != "" {
		line += fmt.Sprintf(", сроки: %s", utils.EscapeTelegramMarkdown(bid.Deadline))
	}
	if bid.Comment != "" {
		line += fmt.Sprintf("\n    💬 %s", utils.EscapeTelegramMarkdown(utils.Truncate(bid.Comment, 150)))
	}
	return line
}

// FormatBidList форматирует список откликов на заказ для его владельца.
func FormatBidList(order models.Order, bids []models.Bid, workers map[int64]*models.WorkerProfile) string {
	if len(bids) == 0 {
		return fmt.Sprintf("📭 На заказ №%d пока нет откликов. Мы сообщим, когда они появятся.", order.ID)
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("📨 *Отклики на заказ №%d* (%s)\n%s\n",
		order.ID, utils.EscapeTelegramMarkdown(order.Title), separator))
	for i, bid := range bids {
		b.WriteString(FormatBidLine(i+1, bid, workers[bid.WorkerID]))
		b.WriteString("\n\n")
	}
	b.WriteString(separator)
	b.WriteString("\nВыберите мастера кнопкой ниже.")
	return b.String()
}

// FormatWorkerProfile форматирует анкету мастера.
// publicView скрывает телефон (до оплаты доступа контакты не раскрываются).
func FormatWorkerProfile(profile models.WorkerProfile, publicView bool) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("👷 *%s*\n%s\n", utils.EscapeTelegramMarkdown(profile.Name), separator))
	if profile.RatingCount > 0 {
		b.WriteString(fmt.Sprintf(" •  Рейтинг: ⭐ %.1f (%d оценок, %d подтверждённых отзывов)\n",
			profile.Rating, profile.RatingCount, profile.VerifiedReviews))
	} else {
		b.WriteString(" •  Рейтинг: пока нет оценок\n")
	}
	b.WriteString(fmt.Sprintf(" •  Город: %s\n", utils.EscapeTelegramMarkdown(profile.City)))
	if len(profile.Regions) > 0 {
		b.WriteString(fmt.Sprintf(" •  Районы выезда: %s\n", utils.EscapeTelegramMarkdown(strings.Join(profile.Regions, ", "))))
	}
	if len(profile.Categories) > 0 {
		names := make([]string, 0, len(profile.Categories))
		for _, cat := range profile.Categories {
			if display, ok := constants.CategoryDisplayMap[cat]; ok {
				names = append(names, display)
			} else {
				names = append(names, cat)
			}
		}
		b.WriteString(fmt.Sprintf(" •  Специализация: %s\n", utils.EscapeTelegramMarkdown(strings.Join(names, ", "))))
	}
	if profile.Experience != "" {
		b.WriteString(fmt.Sprintf(" •  Опыт: %s\n", utils.EscapeTelegramMarkdown(profile.Experience)))
	}
	if profile.Description != "" {
		b.WriteString(fmt.Sprintf(" •  О себе: %s\n", utils.EscapeTelegramMarkdown(profile.Description)))
	}
	if len(profile.PortfolioPhotos) > 0 {
		b.WriteString(fmt.Sprintf(" •  Портфолио: %d фото\n", len(profile.PortfolioPhotos)))
	}
	if !publicView {
		b.WriteString(fmt.Sprintf(" •  Телефон: %s\n", utils.EscapeTelegramMarkdown(utils.FormatPhoneNumber(profile.Phone))))
	}
	return b.String()
}

// FormatClientProfile форматирует анкету заказчика для него самого.
func FormatClientProfile(profile models.ClientProfile) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("👤 *%s*\n%s\n", utils.EscapeTelegramMarkdown(profile.Name), separator))
	if profile.RatingCount > 0 {
		b.WriteString(fmt.Sprintf(" •  Рейтинг: ⭐ %.1f (%d оценок)\n", profile.Rating, profile.RatingCount))
	} else {
		b.WriteString(" •  Рейтинг: пока нет оценок\n")
	}
	b.WriteString(fmt.Sprintf(" •  Город: %s\n", utils.EscapeTelegramMarkdown(profile.City)))
	if profile.Description != "" {
		b.WriteString(fmt.Sprintf(" •  О себе: %s\n", utils.EscapeTelegramMarkdown(profile.Description)))
	}
	b.WriteString(fmt.Sprintf(" •  Телефон: %s\n", utils.EscapeTelegramMarkdown(utils.FormatPhoneNumber(profile.Phone))))
	return b.String()
}

// FormatContactCard форматирует карточку контактов заказчика после оплаты доступа.
// Телефон передается уже расшифрованным.
func FormatContactCard(order models.Order, clientName, clientPhone string) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("📞 *Контакты заказчика по заказу №%d*\n%s\n", order.ID, separator))
	b.WriteString(fmt.Sprintf(" •  Имя: %s\n", utils.EscapeTelegramMarkdown(clientName)))
	b.WriteString(fmt.Sprintf(" •  Телефон: `%s`\n", utils.EscapeTelegramMarkdown(utils.FormatPhoneNumber(clientPhone))))
	b.WriteString(fmt.Sprintf(" •  Заказ: %s\n", utils.EscapeTelegramMarkdown(order.Title)))
	b.WriteString(separator)
	b.WriteString("\nСвяжитесь с заказчиком и договоритесь о деталях. Удачной работы! 🛠️")
	return b.String()
}

// FormatReviewList форматирует список отзывов о пользователе.
func FormatReviewList(reviews []models.Review) string {
	if len(reviews) == 0 {
		return "📭 Отзывов пока нет."
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf("📝 *Отзывы (%d):*\n%s\n", len(reviews), separator))
	for _, r := range reviews {
		b.WriteString(fmt.Sprintf("%s по заказу №%d", strings.Repeat("⭐", r.Rating), r.OrderID))
		if r.Comment != "" {
			b.WriteString(fmt.Sprintf("\n💬 %s", utils.EscapeTelegramMarkdown(utils.Truncate(r.Comment, 200))))
		}
		b.WriteString("\n\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
