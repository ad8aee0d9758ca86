package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/coursely/payrelay/internal/config"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	// ErrVerificationFailed means the gateway reports the transaction as not
	// found or not successful.
	ErrVerificationFailed = errors.New("verification_failed")
	// ErrUpstream means the call to the gateway itself failed.
	ErrUpstream = errors.New("gateway_upstream_error")
)

const maxErrorBody = 512

// Client talks to the hosted-checkout gateway.
type Client struct {
	cfg  config.GatewayConfig
	http *http.Client
	log  *zap.Logger
}

func NewClient(cfg config.Config, log *zap.Logger) *Client {
	timeout := cfg.Gateway.Timeout
	if timeout <= 0 {
		timeout = 8 * time.Second
	}
	return &Client{
		cfg:  cfg.Gateway,
		http: &http.Client{Timeout: timeout},
		log:  log.Named("gateway"),
	}
}

// InitializeRequest starts a hosted checkout. Amount is in the currency's
// major unit; the gateway expects minor units.
type InitializeRequest struct {
	Email       string
	FullName    string
	AmountMajor int64
	GCLID       string
}

type InitializeResult struct {
	AuthorizationURL string `json:"authorization_url"`
	AccessCode       string `json:"access_code"`
	Reference        string `json:"reference"`
}

// VerifyResult is the normalized outcome of a transaction status check.
type VerifyResult struct {
	Succeeded   bool      `json:"succeeded"`
	Reference   string    `json:"reference"`
	AmountMinor int64     `json:"amount_minor"`
	Currency    string    `json:"currency"`
	Email       string    `json:"email"`
	FullName    string    `json:"full_name"`
	GCLID       string    `json:"gclid"`
	IP          string    `json:"ip"`
	Country     string    `json:"country"`
	PaidAt      time.Time `json:"paid_at"`
}

// NewReference generates a checkout reference. The relay owns reference
// generation; the reference doubles as the idempotency key.
func NewReference() string {
	return "ref_" + strings.ReplaceAll(uuid.NewString(), "-", "")
}

// Initialize creates a hosted-checkout session and returns the redirect URL.
func (c *Client) Initialize(ctx context.Context, req InitializeRequest) (InitializeResult, error) {
	reference := NewReference()
	body := map[string]any{
		"email":     req.Email,
		"amount":    req.AmountMajor * 100,
		"reference": reference,
		"metadata": map[string]any{
			"full_name": req.FullName,
			"gclid":     req.GCLID,
		},
	}

	var out struct {
		Status bool             `json:"status"`
		Data   InitializeResult `json:"data"`
	}
	if err := c.do(ctx, http.MethodPost, "/transaction/initialize", body, &out); err != nil {
		return InitializeResult{}, err
	}
	if !out.Status || out.Data.AuthorizationURL == "" {
		return InitializeResult{}, fmt.Errorf("%w: initialize rejected", ErrUpstream)
	}
	if out.Data.Reference == "" {
		out.Data.Reference = reference
	}
	return out.Data, nil
}

type verifyEnvelope struct {
	Status bool   `json:"status"`
	Data   struct {
		Status    string `json:"status"`
		Reference string `json:"reference"`
		Amount    int64  `json:"amount"`
		Currency  string `json:"currency"`
		PaidAt    string `json:"paid_at"`
		IPAddress string `json:"ip_address"`
		Customer  struct {
			Email     string `json:"email"`
			FirstName string `json:"first_name"`
			LastName  string `json:"last_name"`
		} `json:"customer"`
		Metadata struct {
			FullName string `json:"full_name"`
			GCLID    string `json:"gclid"`
			Country  string `json:"country"`
		} `json:"metadata"`
	} `json:"data"`
}

// Verify checks the transaction status for a reference and normalizes the
// gateway response. A transaction the gateway does not report as successful
// yields ErrVerificationFailed.
func (c *Client) Verify(ctx context.Context, reference string) (VerifyResult, error) {
	reference = strings.TrimSpace(reference)
	if reference == "" {
		return VerifyResult{}, ErrVerificationFailed
	}

	var out verifyEnvelope
	err := c.do(ctx, http.MethodGet, "/transaction/verify/"+reference, nil, &out)
	if err != nil {
		var se *statusError
		if errors.As(err, &se) && se.code == http.StatusNotFound {
			return VerifyResult{}, ErrVerificationFailed
		}
		return VerifyResult{}, err
	}
	if !out.Status || out.Data.Status != "success" {
		return VerifyResult{}, ErrVerificationFailed
	}

	fullName := strings.TrimSpace(out.Data.Metadata.FullName)
	if fullName == "" {
		fullName = strings.TrimSpace(out.Data.Customer.FirstName + " " + out.Data.Customer.LastName)
	}

	paidAt, _ := time.Parse(time.RFC3339, out.Data.PaidAt)
	return VerifyResult{
		Succeeded:   true,
		Reference:   out.Data.Reference,
		AmountMinor: out.Data.Amount,
		Currency:    strings.ToUpper(strings.TrimSpace(out.Data.Currency)),
		Email:       strings.TrimSpace(out.Data.Customer.Email),
		FullName:    fullName,
		GCLID:       strings.TrimSpace(out.Data.Metadata.GCLID),
		IP:          strings.TrimSpace(out.Data.IPAddress),
		Country:     strings.TrimSpace(out.Data.Metadata.Country),
		PaidAt:      paidAt,
	}, nil
}

type statusError struct {
	code int
	body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("%v: status %d: %s", ErrUpstream, e.code, e.body)
}

func (e *statusError) Unwrap() error { return ErrUpstream }

func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.SecretKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read response: %v", ErrUpstream, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet := string(raw)
		if len(snippet) > maxErrorBody {
			snippet = snippet[:maxErrorBody]
		}
		c.log.Warn("gateway call failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
		)
		return &statusError{code: resp.StatusCode, body: snippet}
	}

	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("%w: decode response: %v", ErrUpstream, err)
		}
	}
	return nil
}
