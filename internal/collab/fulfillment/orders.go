package fulfillment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/coursely/payrelay/internal/checkout/domain"
	"github.com/coursely/payrelay/internal/config"
	"go.uber.org/zap"
)

// Client creates the order record in the fulfillment system, which delivers
// the access email itself.
type Client struct {
	cfg  config.FulfillmentConfig
	http *http.Client
	log  *zap.Logger
}

func NewFromConfig(cfg config.Config, log *zap.Logger) *Client {
	return &Client{
		cfg:  cfg.Fulfillment,
		http: &http.Client{Timeout: 8 * time.Second},
		log:  log.Named("collab.fulfillment"),
	}
}

func (c *Client) Name() string { return "fulfillment" }

func (c *Client) Configured() bool { return c.cfg.Configured() }

type orderRequest struct {
	Reference         string `json:"reference"`
	Email             string `json:"email"`
	FirstName         string `json:"first_name"`
	LastName          string `json:"last_name"`
	Amount            int64  `json:"amount"`
	Currency          string `json:"currency"`
	SendDeliveryEmail bool   `json:"send_delivery_email"`
}

func (c *Client) Deliver(ctx context.Context, payment domain.ConfirmedPayment) error {
	first, last := payment.SplitName()
	body, err := json.Marshal(orderRequest{
		Reference:         payment.Reference,
		Email:             payment.Email,
		FirstName:         first,
		LastName:          last,
		Amount:            payment.AmountMajor(),
		Currency:          payment.Currency,
		SendDeliveryEmail: true,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/orders", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("order creation rejected: status %d: %s", resp.StatusCode, raw)
	}
	return nil
}
