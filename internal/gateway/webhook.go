package gateway

import (
	"encoding/json"
	"errors"
	"strings"
	"time"
)

// ErrInvalidPayload means the webhook body is not a well-formed event envelope.
var ErrInvalidPayload = errors.New("invalid_webhook_payload")

// EventChargeSuccess is the only webhook event the relay acts on.
const EventChargeSuccess = "charge.success"

// WebhookEvent is the gateway's push notification envelope.
type WebhookEvent struct {
	Event string      `json:"event"`
	Data  WebhookData `json:"data"`
}

type WebhookData struct {
	Reference string          `json:"reference"`
	Amount    int64           `json:"amount"`
	Currency  string          `json:"currency"`
	PaidAt    string          `json:"paid_at"`
	IPAddress string          `json:"ip_address"`
	Customer  WebhookCustomer `json:"customer"`
	Metadata  WebhookMetadata `json:"metadata"`
}

type WebhookCustomer struct {
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type WebhookMetadata struct {
	FullName string `json:"full_name"`
	GCLID    string `json:"gclid"`
	Country  string `json:"country"`
}

// ParseWebhook decodes a signature-validated callback body.
func ParseWebhook(payload []byte) (*WebhookEvent, error) {
	var event WebhookEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, ErrInvalidPayload
	}
	if strings.TrimSpace(event.Event) == "" {
		return nil, ErrInvalidPayload
	}
	return &event, nil
}

// FullName resolves the payer display name, preferring checkout metadata.
func (d WebhookData) FullName() string {
	if name := strings.TrimSpace(d.Metadata.FullName); name != "" {
		return name
	}
	return strings.TrimSpace(d.Customer.FirstName + " " + d.Customer.LastName)
}

// PaidAtTime parses the confirmation timestamp, zero when absent or malformed.
func (d WebhookData) PaidAtTime() time.Time {
	t, _ := time.Parse(time.RFC3339, d.PaidAt)
	return t
}
