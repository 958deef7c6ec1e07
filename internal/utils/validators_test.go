package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidatePhoneNumber(t *testing.T) {
	valid := map[string]string{
		"+79991234567":       "+79991234567",
		"89991234567":        "+79991234567",
		"79991234567":        "+79991234567",
		"9991234567":         "+79991234567",
		"+7 (999) 123-45-67": "+79991234567",
		"8 999 123 45 67":    "+79991234567",
		"  +79991234567  ":   "+79991234567",
	}
	for input, want := range valid {
		got, err := ValidatePhoneNumber(input)
		require.NoError(t, err, "input %q", input)
		assert.Equal(t, want, got, "input %q", input)
	}

	invalid := []string{
		"",
		"привет",
		"+1 202 555 0100", // не российский номер
		"+7999123456",     // мало цифр
		"899912345678",    // много цифр
		"123",
	}
	for _, input := range invalid {
		_, err := ValidatePhoneNumber(input)
		assert.Error(t, err, "input %q", input)
	}
}

func TestValidateRating(t *testing.T) {
	for _, text := range []string{"1", "3", "5", " 4 "} {
		rating, err := ValidateRating(text)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, rating, 1)
		assert.LessOrEqual(t, rating, 5)
	}
	for _, text := range []string{"0", "6", "-1", "пять", "", "3.5"} {
		_, err := ValidateRating(text)
		assert.Error(t, err, "input %q", text)
	}
}

func TestValidateBudget(t *testing.T) {
	cases := map[string]float64{
		"1500":       1500,
		"1 500 ₽":    1500,
		"1500 руб.":  1500,
		"1500,50":    1500.50,
		"  2000.99 ": 2000.99,
	}
	for input, want := range cases {
		got, err := ValidateBudget(input)
		require.NoError(t, err, "input %q", input)
		assert.Equal(t, want, got, "input %q", input)
	}

	for _, input := range []string{"", "бесплатно", "0", "-100", "₽"} {
		_, err := ValidateBudget(input)
		assert.Error(t, err, "input %q", input)
	}
}

func TestSplitTags(t *testing.T) {
	assert.Equal(t, []string{"Москва", "Казань"}, SplitTags("Москва, Казань"))
	assert.Equal(t, []string{"ЦАО"}, SplitTags("  ЦАО  "))
	assert.Equal(t, []string{"а", "б"}, SplitTags("а,,б,"))
	assert.Nil(t, SplitTags(""))
	assert.Nil(t, SplitTags(" , , "))
}
