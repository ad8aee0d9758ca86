package list

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

// Client upserts the payer into the mailing list form that triggers the
// welcome/delivery automation.
type Client struct {
	cfg  config.ListConfig
	http *http.Client
	log  *zap.Logger
}

func NewFromConfig(cfg config.Config, log *zap.Logger) *Client {
	return &Client{
		cfg:  cfg.List,
		http: &http.Client{Timeout: 8 * time.Second},
		log:  log.Named("collab.list"),
	}
}

func (c *Client) Name() string { return "list_subscription" }

func (c *Client) Configured() bool { return c.cfg.Configured() }

func (c *Client) Deliver(ctx context.Context, payment domain.ConfirmedPayment) error {
	first, _ := payment.SplitName()

	gclidTag := "gclid:absent"
	if payment.GCLID != "" && payment.GCLID != domain.DirectGCLID {
		gclidTag = "gclid:present"
	}

	body, err := json.Marshal(map[string]any{
		"api_key":    c.cfg.APIKey,
		"email":      payment.Email,
		"first_name": first,
		"tags":       []string{"source:gateway", gclidTag},
	})
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/v3/forms/%s/subscribe", c.cfg.BaseURL, c.cfg.FormID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("list subscription rejected: status %d: %s", resp.StatusCode, raw)
	}
	return nil
}
