package chat

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

// Telegram posts payment alerts to the ops channel via the bot API.
type Telegram struct {
	cfg  config.ChatConfig
	http *http.Client
	log  *zap.Logger
}

func NewFromConfig(cfg config.Config, log *zap.Logger) *Telegram {
	return &Telegram{
		cfg:  cfg.Chat,
		http: &http.Client{Timeout: 8 * time.Second},
		log:  log.Named("collab.chat"),
	}
}

func (t *Telegram) Name() string { return "chat_alert" }

func (t *Telegram) Configured() bool { return t.cfg.Configured() }

func (t *Telegram) Deliver(ctx context.Context, payment domain.ConfirmedPayment) error {
	body, err := json.Marshal(map[string]any{
		"chat_id":                  t.cfg.ChatID,
		"text":                     RenderMessage(payment),
		"parse_mode":               "HTML",
		"disable_web_page_preview": true,
	})
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", t.cfg.BaseURL, t.cfg.BotToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("chat alert rejected: status %d: %s", resp.StatusCode, raw)
	}
	return nil
}
