package fanout

import (
	"context"
	"time"

	"github.com/coursely/payrelay/internal/checkout/domain"
	"github.com/coursely/payrelay/internal/config"
	obsmetrics "github.com/coursely/payrelay/internal/observability/metrics"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Deliverer is one downstream collaborator notified of a confirmed purchase.
// New delivery channels are added by implementing this interface, not by
// copying handler code.
type Deliverer interface {
	Name() string
	Configured() bool
	Deliver(ctx context.Context, payment domain.ConfirmedPayment) error
}

type Params struct {
	fx.In

	Log        *zap.Logger
	Cfg        config.Config
	Deliverers []Deliverer
	Metrics    *obsmetrics.Metrics `optional:"true"`
}

// Runner invokes every configured deliverer independently.
type Runner struct {
	log        *zap.Logger
	deliverers []Deliverer
	timeout    time.Duration
	metrics    *obsmetrics.Metrics
}

func NewRunner(p Params) *Runner {
	timeout := p.Cfg.Worker.DeliveryTimeout
	if timeout <= 0 {
		timeout = 8 * time.Second
	}
	return &Runner{
		log:        p.Log.Named("fanout"),
		deliverers: p.Deliverers,
		timeout:    timeout,
		metrics:    p.Metrics,
	}
}

// Run delivers the payment to each configured collaborator. A failure in one
// never prevents attempting the others; failures are logged and reflected in
// the report, not returned.
func (r *Runner) Run(ctx context.Context, payment domain.ConfirmedPayment) domain.Report {
	report := make(domain.Report, len(r.deliverers))

	for _, d := range r.deliverers {
		name := d.Name()
		if !d.Configured() {
			report[name] = domain.Delivery{Status: domain.DeliverySkipped}
			r.metrics.IncFanoutOutcome(name, string(domain.DeliverySkipped))
			continue
		}

		callCtx, cancel := context.WithTimeout(ctx, r.timeout)
		err := d.Deliver(callCtx, payment)
		cancel()

		if err != nil {
			r.log.Warn("collaborator delivery failed",
				zap.String("collaborator", name),
				zap.String("reference", payment.Reference),
				zap.Error(err),
			)
			report[name] = domain.Delivery{Status: domain.DeliveryFailed, Error: err.Error()}
			r.metrics.IncFanoutOutcome(name, string(domain.DeliveryFailed))
			continue
		}
		report[name] = domain.Delivery{Status: domain.DeliverySucceeded}
		r.metrics.IncFanoutOutcome(name, string(domain.DeliverySucceeded))
	}

	return report
}

var Module = fx.Module("fanout",
	fx.Provide(NewRunner),
)
