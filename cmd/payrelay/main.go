package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/coursely/payrelay/internal/checkout"
	"github.com/coursely/payrelay/internal/collab"
	"github.com/coursely/payrelay/internal/config"
	"github.com/coursely/payrelay/internal/fanout"
	"github.com/coursely/payrelay/internal/gateway"
	"github.com/coursely/payrelay/internal/idempotency"
	"github.com/coursely/payrelay/internal/observability"
	"github.com/coursely/payrelay/internal/record"
	"github.com/coursely/payrelay/internal/server"
	"github.com/coursely/payrelay/internal/worker"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		// Core infrastructure
		config.Module,
		observability.Module,
		fx.Provide(newSnowflake),

		// Payment completion pipeline
		gateway.Module,
		idempotency.Module,
		record.Module,
		collab.Module,
		fanout.Module,
		checkout.Module,
		worker.Module,

		server.Module,
	)
	app.Run()
}

func newSnowflake() (*snowflake.Node, error) {
	return snowflake.NewNode(1)
}
