// internal/config/config.go
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
)

// Config хранит все конфигурационные параметры приложения.
type Config struct {
	TelegramToken string
	BotUsername   string
	AppEnv        string

	// DatabasePath — путь к файлу базы данных.
	DatabasePath string

	// AccessFee — стоимость доступа к контактам заказчика (₽).
	AccessFee float64

	// BidExpiryAge — возраст, после которого активный отклик считается
	// устаревшим. 0 — автоснятие отключено.
	BidExpiryAge time.Duration

	YooKassaShopID    string
	YooKassaSecretKey string
	ReturnURL         string

	// APIToken — токен для админ-эндпоинтов HTTP API. Пустой токен
	// отключает админ-маршруты.
	APIToken string

	Port string
}

const defaultAccessFee = 199.0

// LoadConfig загружает конфигурацию из переменных окружения.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		TelegramToken: os.Getenv("TELEGRAM_APITOKEN"),
		BotUsername:   os.Getenv("BOT_USERNAME"),
		AppEnv:        os.Getenv("ENV"),
		DatabasePath:  os.Getenv("DATABASE_PATH"),
		ReturnURL:     os.Getenv("RETURN_URL"),
		APIToken:      os.Getenv("API_TOKEN"),
		Port:          os.Getenv("PORT"),
	}

	if cfg.DatabasePath == "" {
		cfg.DatabasePath = "masterbot.db"
		log.Warn().Msg("DATABASE_PATH не установлен, используется masterbot.db в рабочем каталоге")
	}
	if cfg.Port == "" {
		cfg.Port = "8080"
	}

	feeStr := os.Getenv("ACCESS_FEE")
	if feeStr == "" {
		cfg.AccessFee = defaultAccessFee
		log.Warn().Float64("default", defaultAccessFee).Msg("ACCESS_FEE не установлен, используется значение по умолчанию")
	} else {
		fee, err := strconv.ParseFloat(feeStr, 64)
		if err != nil || fee <= 0 {
			log.Warn().Str("value", feeStr).Float64("default", defaultAccessFee).
				Msg("некорректное значение ACCESS_FEE, используется значение по умолчанию")
			cfg.AccessFee = defaultAccessFee
		} else {
			cfg.AccessFee = fee
		}
	}

	if ageStr := os.Getenv("BID_EXPIRY_AGE"); ageStr != "" {
		age, err := time.ParseDuration(ageStr)
		if err != nil || age <= 0 {
			log.Warn().Str("value", ageStr).Msg("некорректное значение BID_EXPIRY_AGE, автоснятие откликов отключено")
		} else {
			cfg.BidExpiryAge = age
		}
	}

	cfg.YooKassaShopID = os.Getenv("YOOKASSA_SHOP_ID")
	cfg.YooKassaSecretKey = os.Getenv("YOOKASSA_SECRET_KEY")
	if cfg.YooKassaShopID == "" || cfg.YooKassaSecretKey == "" {
		log.Warn().Msg("YOOKASSA_SHOP_ID/YOOKASSA_SECRET_KEY не установлены, платёжные ссылки создаваться не будут")
	}

	if cfg.TelegramToken == "" {
		log.Error().Msg("TELEGRAM_APITOKEN не установлен")
	}
	if cfg.BotUsername == "" {
		log.Warn().Msg("BOT_USERNAME не установлен")
	}
	if cfg.APIToken == "" {
		log.Warn().Msg("API_TOKEN не установлен, админ-эндпоинты HTTP API отключены")
	}

	log.Info().Msg("конфигурация загружена")
	return cfg, nil
}
