package utils

import (
	"fmt"
	"strconv"
	"strings"
)

// EscapeTelegramMarkdown экранирует спецсимволы для стандартного Markdown Telegram.
func EscapeTelegramMarkdown(text string) string {
	replacer := strings.NewReplacer(
		"_", "\\_",
		"*", "\\*",
		"`", "\\`",
		"[", "\\[",
	)
	return replacer.Replace(text)
}

// EscapeTelegramMarkdownV2 экранирует спецсимволы для MarkdownV2.
func EscapeTelegramMarkdownV2(text string) string {
	replacer := strings.NewReplacer(
		"_", "\\_", "*", "\\*", "[", "\\[", "]", "\\]", "(", "\\(", ")", "\\)",
		"~", "\\~", "`", "\\`", ">", "\\>", "#", "\\#", "+", "\\+", "-", "\\-",
		"=", "\\=", "|", "\\|", "{", "\\{", "}", "\\}", ".", "\\.", "!", "\\!",
	)
	return replacer.Replace(text)
}

// FormatPhoneNumber форматирует номер для отображения: +7 (XXX) XXX-XX-XX.
// Если номер не в каноническом виде +7XXXXXXXXXX, возвращает как есть.
func FormatPhoneNumber(phone string) string {
	if len(phone) == 12 && strings.HasPrefix(phone, "+7") {
		return fmt.Sprintf("+7 (%s) %s-%s-%s", phone[2:5], phone[5:8], phone[8:10], phone[10:12])
	}
	return phone
}

// FormatPrice форматирует цену: целые без дробной части, иначе две цифры.
// FormatPrice(1500) -> "1500 ₽", FormatPrice(1500.50) -> "1500.50 ₽".
func FormatPrice(price float64) string {
	if price == float64(int64(price)) {
		return fmt.Sprintf("%d ₽", int64(price))
	}
	return fmt.Sprintf("%s ₽", strconv.FormatFloat(price, 'f', 2, 64))
}

// Truncate обрезает строку до max рун, добавляя многоточие.
func Truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max <= 1 {
		return string(runes[:max])
	}
	return string(runes[:max-1]) + "…"
}
