package main

import (
	"net/http"
	"os"
	"time"

	tgbotapi "github.com/OvyFlash/telegram-bot-api"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"masterbot/internal/api"
	"masterbot/internal/config"
	"masterbot/internal/db"
	"masterbot/internal/handlers"
	"masterbot/internal/service"
	"masterbot/internal/session"
	"masterbot/internal/telegram"
	"masterbot/internal/utils"
)

func main() {
	// --- Блок инициализации ---
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg("не удалось загрузить файл .env, переменные окружения должны быть установлены иным способом")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("не удалось загрузить конфигурацию")
	}

	if cfg.AppEnv == "dev" {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	if err := utils.InitEncryptionKey(); err != nil {
		log.Fatal().Err(err).Msg("не удалось инициализировать ключ шифрования")
	}

	store, err := db.Open(cfg.DatabasePath)
	if err != nil {
		log.Fatal().Err(err).Msg("не удалось открыть базу данных")
	}
	defer store.Close()

	botClient, err := telegram.InitBot(cfg.TelegramToken, cfg.AppEnv == "dev")
	if err != nil {
		log.Fatal().Err(err).Msg("не удалось инициализировать Telegram бота")
	}

	sessionManager := session.NewSessionManager()
	notifier := handlers.NewTelegramNotifier(cfg, botClient)
	core := service.New(store, notifier, cfg.AccessFee)

	botHandler := handlers.NewBotHandler(handlers.HandlerDependencies{
		Config:         cfg,
		BotClient:      botClient,
		SessionManager: sessionManager,
		Service:        core,
	})

	// --- HTTP-сервер: вебхук оплаты и админ-эндпоинты ---
	router := api.NewRouter(api.ApiDependencies{
		Config:  cfg,
		Service: core,
	})
	go func() {
		log.Info().Str("port", cfg.Port).Msg("запуск HTTP-сервера")
		if err := http.ListenAndServe(":"+cfg.Port, router); err != nil {
			log.Fatal().Err(err).Msg("не удалось запустить HTTP-сервер")
		}
	}()

	// --- Автоснятие устаревших откликов ---
	if cfg.BidExpiryAge > 0 {
		go func() {
			ticker := time.NewTicker(cfg.BidExpiryAge / 4)
			defer ticker.Stop()
			for range ticker.C {
				expired, err := core.ExpireStaleBids(cfg.BidExpiryAge)
				if err != nil {
					log.Error().Err(err).Msg("ошибка автоснятия откликов")
					continue
				}
				if expired > 0 {
					log.Info().Int64("count", expired).Msg("сняты устаревшие отклики")
				}
			}
		}()
	}

	// --- Цикл обновлений Telegram ---
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := botClient.GetUpdatesChan(u)

	log.Info().Msg("бот и API-сервер запущены и готовы к работе")

	for update := range updates {
		if update.Message != nil {
			go botHandler.HandleMessage(update)
		} else if update.CallbackQuery != nil {
			go botHandler.HandleCallback(update)
		}
	}
}
