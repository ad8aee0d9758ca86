package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/coursely/payrelay/internal/checkout/domain"
	"github.com/coursely/payrelay/internal/config"
	"github.com/coursely/payrelay/internal/fanout"
	"github.com/coursely/payrelay/internal/gateway"
	"github.com/coursely/payrelay/internal/idempotency"
	"github.com/coursely/payrelay/internal/record"
	"github.com/coursely/payrelay/internal/worker"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Log     *zap.Logger
	Cfg     config.Config
	Gateway *gateway.Client
	Guard   *idempotency.Guard
	Fanout  *fanout.Runner
	Records record.Repository
	Pool    *worker.Pool
	GenID   *snowflake.Node
}

// Service is the payment-completion orchestrator. It verifies a transaction,
// consults the idempotency guard, drives fan-out, and commits the reference
// as processed.
type Service struct {
	log     *zap.Logger
	cfg     config.Config
	gateway *gateway.Client
	guard   *idempotency.Guard
	fanout  *fanout.Runner
	records record.Repository
	pool    *worker.Pool
	genID   *snowflake.Node
}

func NewService(p Params) domain.Service {
	return &Service{
		log:     p.Log.Named("checkout"),
		cfg:     p.Cfg,
		gateway: p.Gateway,
		guard:   p.Guard,
		fanout:  p.Fanout,
		records: p.Records,
		pool:    p.Pool,
		genID:   p.GenID,
	}
}

func (s *Service) Initialize(ctx context.Context, req domain.InitializeRequest) (domain.InitializeResult, error) {
	if strings.TrimSpace(req.Email) == "" ||
		strings.TrimSpace(req.FullName) == "" ||
		req.AmountMajor <= 0 {
		return domain.InitializeResult{}, domain.ErrInvalidRequest
	}

	result, err := s.gateway.Initialize(ctx, gateway.InitializeRequest{
		Email:       req.Email,
		FullName:    req.FullName,
		AmountMajor: req.AmountMajor,
		GCLID:       req.GCLID,
	})
	if err != nil {
		return domain.InitializeResult{}, err
	}
	return domain.InitializeResult{
		AuthorizationURL: result.AuthorizationURL,
		AccessCode:       result.AccessCode,
		Reference:        result.Reference,
	}, nil
}

func (s *Service) Verify(ctx context.Context, reference string) (domain.ConfirmedPayment, error) {
	verified, err := s.gateway.Verify(ctx, reference)
	if err != nil {
		return domain.ConfirmedPayment{}, err
	}
	return confirmedFromVerify(verified), nil
}

// ProcessOrder is the client-initiated entry point. Caller-supplied identity
// and amount are never trusted; the transaction is re-verified against the
// gateway first.
func (s *Service) ProcessOrder(ctx context.Context, req domain.ProcessRequest) (domain.ProcessOutcome, error) {
	if strings.TrimSpace(req.Email) == "" ||
		strings.TrimSpace(req.FullName) == "" ||
		strings.TrimSpace(req.Reference) == "" {
		return domain.ProcessOutcome{}, domain.ErrInvalidRequest
	}

	verified, err := s.gateway.Verify(ctx, req.Reference)
	if err != nil {
		return domain.ProcessOutcome{}, err
	}

	payment := confirmedFromVerify(verified)
	if payment.Reference == "" {
		payment.Reference = req.Reference
	}
	if payment.GCLID == domain.DirectGCLID && strings.TrimSpace(req.GCLID) != "" {
		payment.GCLID = strings.TrimSpace(req.GCLID)
	}
	if payment.IP == "" {
		payment.IP = strings.TrimSpace(req.IP)
	}
	if payment.Country == "" {
		payment.Country = strings.TrimSpace(req.Country)
	}

	return s.process(ctx, payment, record.SourceClient)
}

// IngestWebhook is the gateway-initiated entry point. Authenticity comes from
// the signature over the raw body; once valid, fan-out is queued and the
// caller acks immediately without waiting for delivery.
func (s *Service) IngestWebhook(ctx context.Context, payload []byte, signature string) error {
	if !s.gateway.ValidSignature(payload, signature) {
		return domain.ErrInvalidSignature
	}

	// From here on the caller must ack with 200: the body is authentic, and a
	// non-200 only makes the gateway retry a callback we can never act on.
	event, err := gateway.ParseWebhook(payload)
	if err != nil {
		s.log.Warn("webhook payload discarded", zap.Error(err))
		return nil
	}
	if event.Event != gateway.EventChargeSuccess {
		s.log.Debug("webhook event ignored", zap.String("event", event.Event))
		return nil
	}

	payment := confirmedFromWebhook(event.Data)
	if !s.pool.Submit(func(jobCtx context.Context) {
		outcome, err := s.process(jobCtx, payment, record.SourceWebhook)
		if err != nil {
			s.log.Error("webhook fan-out aborted",
				zap.String("reference", payment.Reference),
				zap.Error(err),
			)
			return
		}
		if outcome.AlreadyProcessed {
			s.log.Info("webhook fan-out suppressed, reference already processed",
				zap.String("reference", payment.Reference))
		}
	}) {
		s.log.Warn("webhook fan-out dropped, queue full",
			zap.String("reference", payment.Reference))
	}
	return nil
}

// process runs the guarded fan-out. The reference is committed after fan-out
// has been attempted, win or lose; collaborator failures are observational
// and never fail the orchestration.
func (s *Service) process(ctx context.Context, payment domain.ConfirmedPayment, source string) (domain.ProcessOutcome, error) {
	admitted, err := s.guard.Begin(ctx, payment.Reference)
	if err != nil {
		return domain.ProcessOutcome{}, err
	}
	if !admitted {
		return domain.ProcessOutcome{AlreadyProcessed: true, Reference: payment.Reference}, nil
	}

	// A panic before Commit must not leave the reservation held, or the
	// reference would report already_processed forever without fan-out ever
	// having run.
	committed := false
	defer func() {
		if !committed {
			s.guard.Abandon(payment.Reference)
		}
	}()

	receivedAt := time.Now().UTC()
	report := s.fanout.Run(ctx, payment)
	s.saveRecord(ctx, payment, source, report, receivedAt)

	committed = true
	if err := s.guard.Commit(ctx, payment.Reference); err != nil {
		s.log.Error("idempotency commit failed",
			zap.String("reference", payment.Reference),
			zap.Error(err),
		)
	}

	return domain.ProcessOutcome{
		AlreadyProcessed: false,
		Reference:        payment.Reference,
		Report:           report,
	}, nil
}

func (s *Service) saveRecord(ctx context.Context, payment domain.ConfirmedPayment, source string, report domain.Report, receivedAt time.Time) {
	raw, err := json.Marshal(report)
	if err != nil {
		raw = nil
	}
	rec := &record.PaymentRecord{
		ID:          s.genID.Generate(),
		Reference:   payment.Reference,
		Email:       payment.Email,
		FullName:    payment.FullName,
		AmountMinor: payment.AmountMinor,
		Currency:    payment.Currency,
		GCLID:       payment.GCLID,
		Country:     payment.Country,
		Source:      source,
		Report:      raw,
		ReceivedAt:  receivedAt,
		ProcessedAt: time.Now().UTC(),
	}
	if err := s.records.Save(ctx, rec); err != nil {
		s.log.Warn("payment record save failed",
			zap.String("reference", payment.Reference),
			zap.Error(err),
		)
	}
}

func confirmedFromVerify(v gateway.VerifyResult) domain.ConfirmedPayment {
	return domain.ConfirmedPayment{
		Reference:   v.Reference,
		Email:       v.Email,
		FullName:    v.FullName,
		AmountMinor: v.AmountMinor,
		Currency:    v.Currency,
		GCLID:       normalizeGCLID(v.GCLID),
		IP:          v.IP,
		Country:     v.Country,
		PaidAt:      v.PaidAt,
	}
}

func confirmedFromWebhook(d gateway.WebhookData) domain.ConfirmedPayment {
	return domain.ConfirmedPayment{
		Reference:   d.Reference,
		Email:       strings.TrimSpace(d.Customer.Email),
		FullName:    d.FullName(),
		AmountMinor: d.Amount,
		Currency:    strings.ToUpper(strings.TrimSpace(d.Currency)),
		GCLID:       normalizeGCLID(d.Metadata.GCLID),
		IP:          strings.TrimSpace(d.IPAddress),
		Country:     strings.TrimSpace(d.Metadata.Country),
		PaidAt:      d.PaidAtTime(),
	}
}

func normalizeGCLID(gclid string) string {
	gclid = strings.TrimSpace(gclid)
	if gclid == "" {
		return domain.DirectGCLID
	}
	return gclid
}
