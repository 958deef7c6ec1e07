package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEscapeTelegramMarkdown(t *testing.T) {
	assert.Equal(t, "ООО \\_Мастер\\_", EscapeTelegramMarkdown("ООО _Мастер_"))
	assert.Equal(t, "a\\*b\\`c\\[d", EscapeTelegramMarkdown("a*b`c[d"))
	assert.Equal(t, "обычный текст", EscapeTelegramMarkdown("обычный текст"))
}

func TestEscapeTelegramMarkdownV2(t *testing.T) {
	assert.Equal(t, "ул\\. Ленина, д\\. 1", EscapeTelegramMarkdownV2("ул. Ленина, д. 1"))
	assert.Equal(t, "1\\+1\\=2\\!", EscapeTelegramMarkdownV2("1+1=2!"))
}

func TestFormatPhoneNumber(t *testing.T) {
	assert.Equal(t, "+7 (999) 123-45-67", FormatPhoneNumber("+79991234567"))
	// Неканонический вид возвращается без изменений.
	assert.Equal(t, "89991234567", FormatPhoneNumber("89991234567"))
	assert.Equal(t, "", FormatPhoneNumber(""))
}

func TestFormatPrice(t *testing.T) {
	assert.Equal(t, "1500 ₽", FormatPrice(1500))
	assert.Equal(t, "1500.50 ₽", FormatPrice(1500.5))
	assert.Equal(t, "0 ₽", FormatPrice(0))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "привет", Truncate("привет", 10))
	assert.Equal(t, "привет", Truncate("привет", 6))
	assert.Equal(t, "прив…", Truncate("привет", 5))
	assert.Equal(t, "п", Truncate("привет", 1))
}
