package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"masterbot/internal/config"
	"masterbot/internal/service"
)

// ApiDependencies содержит зависимости для обработчиков API.
type ApiDependencies struct {
	Config  *config.Config
	Service *service.Service
}

// NewRouter собирает HTTP-маршруты: вебхук платёжного шлюза и
// админ-эндпоинты (списки и экспорт), защищённые токеном.
// NewRouter assembles HTTP routes: the payment gateway webhook and
// token-protected admin endpoints (listings and export).
func NewRouter(deps ApiDependencies) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Api-Token"},
		MaxAge:         300,
	}))

	h := &apiHandlers{deps: deps}

	r.Get("/health", h.Health)

	// Вебхук ЮKassa аутентифицируется не токеном, а настройкой
	// исходящих адресов в личном кабинете магазина.
	r.Post("/api/payments/yookassa/webhook", h.YooKassaWebhook)

	r.Group(func(r chi.Router) {
		r.Use(TokenAuthMiddleware(deps.Config.APIToken))

		r.Get("/api/admin/orders", h.ListOrders)
		r.Get("/api/admin/orders/{id}/bids", h.ListOrderBids)
		r.Get("/api/admin/reviews", h.ListReviews)
		r.Get("/api/admin/export", h.ExportXLSX)
	})

	return r
}
