package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"masterbot/internal/payments"
)

type apiHandlers struct {
	deps ApiDependencies
}

// respondJSON пишет ответ в формате JSON.
func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if payload != nil {
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			log.Error().Err(err).Msg("ошибка сериализации JSON-ответа")
		}
	}
}

// Health — проверка живости для оркестратора.
func (h *apiHandlers) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// YooKassaWebhook принимает уведомления ЮKassa. На payment.succeeded
// извлекает пару (заказ, мастер) из metadata и передаёт событие оплаты ядру.
// Всегда отвечает 200, чтобы шлюз не повторял доставленные уведомления:
// неизвестные пары ядро отбрасывает с записью в лог.
func (h *apiHandlers) YooKassaWebhook(w http.ResponseWriter, r *http.Request) {
	var notification payments.YooKassaNotification
	if err := json.NewDecoder(r.Body).Decode(&notification); err != nil {
		log.Warn().Err(err).Msg("не удалось разобрать уведомление ЮKassa")
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	log.Info().Str("event", notification.Event).Str("payment_id", notification.Object.ID).
		Msg("уведомление ЮKassa")

	if notification.Event != "payment.succeeded" {
		w.WriteHeader(http.StatusOK)
		return
	}

	orderID, workerID, err := payments.ParseAccessMetadata(notification.Object.Metadata)
	if err != nil {
		log.Warn().Err(err).Str("payment_id", notification.Object.ID).
			Msg("уведомление об оплате без корректной metadata, пропущено")
		w.WriteHeader(http.StatusOK)
		return
	}

	if err := h.deps.Service.PaymentReceived(orderID, workerID); err != nil {
		log.Error().Err(err).Int64("order_id", orderID).Int64("worker_id", workerID).
			Msg("ошибка обработки события оплаты")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// ListOrders возвращает все заказы (админ-обзор).
func (h *apiHandlers) ListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.deps.Service.Store().ListAllOrders()
	if err != nil {
		log.Error().Err(err).Msg("ошибка выборки заказов")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, orders)
}

// ListOrderBids возвращает отклики заказа.
func (h *apiHandlers) ListOrderBids(w http.ResponseWriter, r *http.Request) {
	orderID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "bad order id", http.StatusBadRequest)
		return
	}
	bids, err := h.deps.Service.ListBids(orderID)
	if err != nil {
		log.Error().Err(err).Int64("order_id", orderID).Msg("ошибка выборки откликов")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, bids)
}

// ListReviews возвращает все отзывы (админ-обзор).
func (h *apiHandlers) ListReviews(w http.ResponseWriter, r *http.Request) {
	reviews, err := h.deps.Service.Store().ListAllReviews()
	if err != nil {
		log.Error().Err(err).Msg("ошибка выборки отзывов")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, reviews)
}
