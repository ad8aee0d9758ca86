package fanout

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/coursely/payrelay/internal/checkout/domain"
	"github.com/coursely/payrelay/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubDeliverer struct {
	name       string
	configured bool
	err        error

	mu    sync.Mutex
	calls []domain.ConfirmedPayment
}

func (d *stubDeliverer) Name() string     { return d.name }
func (d *stubDeliverer) Configured() bool { return d.configured }

func (d *stubDeliverer) Deliver(ctx context.Context, payment domain.ConfirmedPayment) error {
	d.mu.Lock()
	d.calls = append(d.calls, payment)
	d.mu.Unlock()
	return d.err
}

func (d *stubDeliverer) callCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.calls)
}

func newTestRunner(deliverers ...Deliverer) *Runner {
	return NewRunner(Params{
		Log:        zap.NewNop(),
		Cfg:        config.Config{Worker: config.WorkerConfig{DeliveryTimeout: time.Second}},
		Deliverers: deliverers,
	})
}

func TestRunInvokesAllConfiguredDeliverers(t *testing.T) {
	chat := &stubDeliverer{name: "chat_alert", configured: true}
	list := &stubDeliverer{name: "list_subscription", configured: true}
	runner := newTestRunner(chat, list)

	report := runner.Run(context.Background(), domain.ConfirmedPayment{Reference: "txn_1"})

	assert.Equal(t, 1, chat.callCount())
	assert.Equal(t, 1, list.callCount())
	assert.Equal(t, domain.DeliverySucceeded, report["chat_alert"].Status)
	assert.Equal(t, domain.DeliverySucceeded, report["list_subscription"].Status)
}

func TestRunFailureDoesNotShortCircuit(t *testing.T) {
	chat := &stubDeliverer{name: "chat_alert", configured: true, err: errors.New("bot down")}
	list := &stubDeliverer{name: "list_subscription", configured: true}
	runner := newTestRunner(chat, list)

	report := runner.Run(context.Background(), domain.ConfirmedPayment{Reference: "txn_1"})

	require.Equal(t, 1, chat.callCount())
	require.Equal(t, 1, list.callCount(), "later collaborators still attempted after a failure")

	assert.Equal(t, domain.DeliveryFailed, report["chat_alert"].Status)
	assert.Equal(t, "bot down", report["chat_alert"].Error)
	assert.Equal(t, domain.DeliverySucceeded, report["list_subscription"].Status)
}

func TestRunSkipsUnconfiguredDeliverers(t *testing.T) {
	chat := &stubDeliverer{name: "chat_alert", configured: false}
	orders := &stubDeliverer{name: "fulfillment", configured: true}
	runner := newTestRunner(chat, orders)

	report := runner.Run(context.Background(), domain.ConfirmedPayment{Reference: "txn_1"})

	assert.Equal(t, 0, chat.callCount(), "unconfigured collaborator is never invoked")
	assert.Equal(t, domain.DeliverySkipped, report["chat_alert"].Status)
	assert.Equal(t, domain.DeliverySucceeded, report["fulfillment"].Status)
}
