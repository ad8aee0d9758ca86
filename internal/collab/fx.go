package collab

import (
	"github.com/coursely/payrelay/internal/collab/chat"
	"github.com/coursely/payrelay/internal/collab/email"
	"github.com/coursely/payrelay/internal/collab/fulfillment"
	"github.com/coursely/payrelay/internal/collab/list"
	"github.com/coursely/payrelay/internal/fanout"
	"go.uber.org/fx"
)

var Module = fx.Module("collab",
	fx.Provide(
		chat.NewFromConfig,
		list.NewFromConfig,
		email.NewFromConfig,
		fulfillment.NewFromConfig,
		provideDeliverers,
	),
)

// Fan-out order matches the observed handlers: chat alert first, then list,
// email, fulfillment. The order carries no correctness requirement.
func provideDeliverers(
	chatAlert *chat.Telegram,
	subscription *list.Client,
	delivery *email.SMTP,
	orders *fulfillment.Client,
) []fanout.Deliverer {
	return []fanout.Deliverer{chatAlert, subscription, delivery, orders}
}
