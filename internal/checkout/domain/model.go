package domain

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"
)

var (
	ErrInvalidRequest   = errors.New("invalid_request")
	ErrInvalidSignature = errors.New("invalid_signature")
)

// DirectGCLID is the sentinel click identifier for conversions without an
// advertising attribution token.
const DirectGCLID = "direct"

// ConfirmedPayment is the normalized result of a successful verification.
// Immutable once constructed; it is the single input to fan-out.
type ConfirmedPayment struct {
	Reference   string    `json:"reference"`
	Email       string    `json:"email"`
	FullName    string    `json:"full_name"`
	AmountMinor int64     `json:"amount_minor"`
	Currency    string    `json:"currency"`
	GCLID       string    `json:"gclid"`
	IP          string    `json:"ip"`
	Country     string    `json:"country"`
	PaidAt      time.Time `json:"paid_at"`
}

// AmountMajor converts the minor-unit amount to major units, rounding to the
// nearest whole unit. The conversion is lossy: a 1-minor-unit amount yields 0.
func (p ConfirmedPayment) AmountMajor() int64 {
	return int64(math.Round(float64(p.AmountMinor) / 100))
}

// SplitName splits the display name into first and last name. The first
// whitespace-delimited token is the first name; the remainder is the last
// name. A single-token name reuses that token as the last name.
func (p ConfirmedPayment) SplitName() (first, last string) {
	fields := strings.Fields(p.FullName)
	if len(fields) == 0 {
		return "", ""
	}
	first = fields[0]
	if len(fields) == 1 {
		return first, first
	}
	return first, strings.Join(fields[1:], " ")
}

type DeliveryStatus string

const (
	DeliverySucceeded DeliveryStatus = "succeeded"
	DeliveryFailed    DeliveryStatus = "failed"
	DeliverySkipped   DeliveryStatus = "skipped"
)

// Delivery is the observed outcome of one collaborator invocation. It never
// fails the overall orchestration.
type Delivery struct {
	Status DeliveryStatus `json:"status"`
	Error  string         `json:"error,omitempty"`
}

// Report maps collaborator name to delivery outcome for one fan-out.
type Report map[string]Delivery

// ProcessOutcome is returned to the caller of the client-initiated path.
type ProcessOutcome struct {
	AlreadyProcessed bool   `json:"already_processed"`
	Reference        string `json:"reference"`
	Report           Report `json:"deliveries,omitempty"`
}

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

type ProcessRequest struct {
	Email     string
	FullName  string
	Reference string
	GCLID     string
	IP        string
	Country   string
}

// Service drives payment completion: checkout initialization, verification,
// and the confirmed-purchase fan-out.
type Service interface {
	Initialize(ctx context.Context, req InitializeRequest) (InitializeResult, error)
	Verify(ctx context.Context, reference string) (ConfirmedPayment, error)
	ProcessOrder(ctx context.Context, req ProcessRequest) (ProcessOutcome, error)
	IngestWebhook(ctx context.Context, payload []byte, signature string) error
}
