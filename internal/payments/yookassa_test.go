package payments

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccessMetadataRoundTrip(t *testing.T) {
	raw, err := json.Marshal(AccessFeeMetadata{OrderID: "42", WorkerID: "7"})
	require.NoError(t, err)

	orderID, workerID, err := ParseAccessMetadata(raw)
	require.NoError(t, err)
	assert.EqualValues(t, 42, orderID)
	assert.EqualValues(t, 7, workerID)
}

func TestParseAccessMetadataErrors(t *testing.T) {
	cases := []string{
		`не json`,
		`{}`,
		`{"order_id": "42"}`,
		`{"order_id": "abc", "worker_id": "7"}`,
		`{"order_id": "42", "worker_id": ""}`,
	}
	for _, raw := range cases {
		_, _, err := ParseAccessMetadata(json.RawMessage(raw))
		assert.Error(t, err, "metadata %q", raw)
	}
}

// Уведомление ЮKassa разбирается вместе с metadata платежа.
func TestNotificationDecode(t *testing.T) {
	body := `{
        "type": "notification",
        "event": "payment.succeeded",
        "object": {
            "id": "2d7a1f0e-000f-5000-8000-1e69e3f0a1a1",
            "status": "succeeded",
            "paid": true,
            "amount": {"value": "199.00", "currency": "RUB"},
            "metadata": {"order_id": "13", "worker_id": "5"}
        }
    }`

	var notification YooKassaNotification
	require.NoError(t, json.Unmarshal([]byte(body), &notification))
	assert.Equal(t, "payment.succeeded", notification.Event)
	assert.True(t, notification.Object.Paid)

	orderID, workerID, err := ParseAccessMetadata(notification.Object.Metadata)
	require.NoError(t, err)
	assert.EqualValues(t, 13, orderID)
	assert.EqualValues(t, 5, workerID)
}
