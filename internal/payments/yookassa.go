package payments

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// API-адрес YooKassa
const yooKassaAPIEndpoint = "https://api.yookassa.ru/v3/payments"

// PaymentRequest - структура запроса на создание платежа.
type PaymentRequest struct {
	Amount       Amount          `json:"amount"`
	Confirmation Confirmation    `json:"confirmation"`
	Description  string          `json:"description"`
	Capture      bool            `json:"capture"`
	Metadata     json.RawMessage `json:"metadata,omitempty"`
}

// Amount - сумма платежа.
type Amount struct {
	Value    string `json:"value"`
	Currency string `json:"currency"`
}

// Confirmation - способ подтверждения платежа.
type Confirmation struct {
	Type      string `json:"type"`
	ReturnURL string `json:"return_url"`
}

// PaymentResponse - структура ответа от API YooKassa.
type PaymentResponse struct {
	ID           string               `json:"id"`
	Status       string               `json:"status"`
	Paid         bool                 `json:"paid"`
	Amount       Amount               `json:"amount"`
	Confirmation ConfirmationResponse `json:"confirmation"`
	CreatedAt    time.Time            `json:"created_at"`
	Description  string               `json:"description"`
	Metadata     json.RawMessage      `json:"metadata"`
	Test         bool                 `json:"test"`
}

// ConfirmationResponse - содержит URL для подтверждения платежа пользователем.
type ConfirmationResponse struct {
	Type            string `json:"type"`
	ConfirmationURL string `json:"confirmation_url"`
}

// AccessFeeMetadata кладется в metadata платежа за доступ к контактам и
// возвращается обратно в уведомлении. По ней восстанавливается пара
// (заказ, мастер), которой открываются контакты.
// AccessFeeMetadata is put into the access-fee payment metadata and comes back
// in the notification. It identifies the (order, worker) pair to unlock.
type AccessFeeMetadata struct {
	OrderID  string `json:"order_id"`
	WorkerID string `json:"worker_id"`
}

// CreateAccessPaymentLink создает платежную ссылку на оплату доступа к контактам заказчика.
// В metadata платежа записываются order_id и worker_id.
func CreateAccessPaymentLink(shopID, secretKey string, orderID, workerID int64, amountValue float64, returnURL string) (string, error) {
	log.Info().Int64("order_id", orderID).Int64("worker_id", workerID).
		Msg("создание платежной ссылки за доступ к контактам")

	// 1. Формируем тело JSON-запроса.
	metadata, _ := json.Marshal(AccessFeeMetadata{
		OrderID:  fmt.Sprintf("%d", orderID),
		WorkerID: fmt.Sprintf("%d", workerID),
	})

	requestBody := PaymentRequest{
		Amount: Amount{
			Value:    fmt.Sprintf("%.2f", amountValue),
			Currency: "RUB",
		},
		Confirmation: Confirmation{
			Type:      "redirect",
			ReturnURL: returnURL,
		},
		Description: fmt.Sprintf("Доступ к контактам заказчика по заказу #%d", orderID),
		Capture:     true,
		Metadata:    metadata,
	}

	payload, err := json.Marshal(requestBody)
	if err != nil {
		return "", fmt.Errorf("ошибка подготовки запроса: %w", err)
	}

	// 2. Создаем HTTP-клиент и сам запрос.
	client := &http.Client{Timeout: 15 * time.Second}
	req, err := http.NewRequestWithContext(context.Background(), "POST", yooKassaAPIEndpoint, bytes.NewBuffer(payload))
	if err != nil {
		return "", fmt.Errorf("ошибка создания HTTP-запроса: %w", err)
	}

	// 3. Устанавливаем необходимые заголовки.
	req.SetBasicAuth(shopID, secretKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotence-Key", uuid.New().String())

	// 4. Выполняем запрос.
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("ошибка выполнения запроса к API YooKassa: %w", err)
	}
	defer resp.Body.Close()

	// 5. Читаем и обрабатываем ответ.
	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("ошибка чтения ответа API: %w", err)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		log.Error().Int("status", resp.StatusCode).Str("body", string(responseBody)).
			Msg("API YooKassa вернул ошибку")
		return "", fmt.Errorf("ошибка API YooKassa, статус: %d", resp.StatusCode)
	}

	var paymentResponse PaymentResponse
	if err := json.Unmarshal(responseBody, &paymentResponse); err != nil {
		return "", fmt.Errorf("ошибка обработки ответа API: %w", err)
	}

	// 6. Проверяем и возвращаем ссылку на оплату.
	if paymentResponse.Confirmation.ConfirmationURL == "" {
		return "", fmt.Errorf("API не вернул ссылку на оплату")
	}

	log.Info().Str("payment_id", paymentResponse.ID).Str("status", paymentResponse.Status).
		Msg("платеж YooKassa создан")
	return paymentResponse.Confirmation.ConfirmationURL, nil
}

// YooKassaNotification представляет структуру входящего уведомления от ЮKassa.
type YooKassaNotification struct {
	Type   string          `json:"type"`   // e.g., "notification"
	Event  string          `json:"event"`  // e.g., "payment.succeeded"
	Object PaymentResponse `json:"object"` // Содержит полную информацию о платеже
}

// ParseAccessMetadata извлекает пару (order_id, worker_id) из metadata платежа.
func ParseAccessMetadata(raw json.RawMessage) (orderID, workerID int64, err error) {
	var meta AccessFeeMetadata
	if err = json.Unmarshal(raw, &meta); err != nil {
		return 0, 0, fmt.Errorf("ошибка разбора metadata платежа: %w", err)
	}
	if _, err = fmt.Sscanf(meta.OrderID, "%d", &orderID); err != nil {
		return 0, 0, fmt.Errorf("некорректный order_id в metadata: %q", meta.OrderID)
	}
	if _, err = fmt.Sscanf(meta.WorkerID, "%d", &workerID); err != nil {
		return 0, 0, fmt.Errorf("некорректный worker_id в metadata: %q", meta.WorkerID)
	}
	return orderID, workerID, nil
}
