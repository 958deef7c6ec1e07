package utils

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ValidatePhoneNumber проверяет и нормализует номер телефона.
// Возвращает номер в формате +7XXXXXXXXXX или ошибку.
// ValidatePhoneNumber checks and normalizes a phone number.
// Returns the number in +7XXXXXXXXXX format or an error.
func ValidatePhoneNumber(phone string) (string, error) {
	phone = strings.ReplaceAll(phone, "\\", "")
	phone = strings.TrimSpace(phone)

	digitsOnly := regexp.MustCompile(`[^\d+]`).ReplaceAllString(phone, "")

	if strings.HasPrefix(digitsOnly, "+") {
		if regexp.MustCompile(`^\+7\d{10}$`).MatchString(digitsOnly) {
			return digitsOnly, nil
		}
		return "", fmt.Errorf("поддерживаются только российские номера в формате +7XXXXXXXXXX или 8XXXXXXXXXX")
	}

	digitsOnly = regexp.MustCompile(`[^\d]`).ReplaceAllString(phone, "")

	if len(digitsOnly) == 11 && (digitsOnly[0] == '8' || digitsOnly[0] == '7') {
		return "+7" + digitsOnly[1:], nil
	}
	if len(digitsOnly) == 10 {
		return "+7" + digitsOnly, nil
	}

	return "", fmt.Errorf("неверный формат номера телефона, укажите в формате +7XXXXXXXXXX или 8XXXXXXXXXX")
}

// ValidateRating парсит и проверяет оценку отзыва (1..5).
func ValidateRating(text string) (int, error) {
	rating, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil {
		return 0, fmt.Errorf("оценка должна быть числом от 1 до 5")
	}
	if rating < 1 || rating > 5 {
		return 0, fmt.Errorf("оценка должна быть в диапазоне от 1 до 5, получено: %d", rating)
	}
	return rating, nil
}

// ValidateBudget парсит сумму бюджета. Допускает пробелы и символ рубля.
func ValidateBudget(text string) (float64, error) {
	cleaned := strings.NewReplacer(" ", "", "₽", "", "руб.", "", "руб", "", ",", ".").Replace(strings.TrimSpace(text))
	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || value <= 0 {
		return 0, fmt.Errorf("некорректная сумма бюджета: '%s'", text)
	}
	return value, nil
}

// SplitTags разбирает введённый пользователем список тегов (регионы,
// категории), разделённый запятыми.
func SplitTags(text string) []string {
	var tags []string
	for _, part := range strings.Split(text, ",") {
		tag := strings.TrimSpace(part)
		if tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}
