package server

import (
	"context"
	"net/http"
	"time"

	checkoutdomain "github.com/coursely/payrelay/internal/checkout/domain"
	"github.com/coursely/payrelay/internal/config"
	obslogger "github.com/coursely/payrelay/internal/observability/logger"
	obsmetrics "github.com/coursely/payrelay/internal/observability/metrics"
	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	fx.Provide(newEngine),
	fx.Provide(NewServer),
	fx.Invoke(registerRoutes),
	fx.Invoke(run),
)

func NewEngine(cfg config.Config, metrics *obsmetrics.Metrics) *gin.Engine {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obslogger.GinMiddleware(obslogger.MiddlewareConfig{
		Debug:           cfg.Environment != "production",
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obsmetrics.GinMiddleware(metrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	return r
}

func newEngine(cfg config.Config, metrics *obsmetrics.Metrics) *gin.Engine {
	return NewEngine(cfg, metrics)
}

type Server struct {
	engine      *gin.Engine
	cfg         config.Config
	log         *zap.Logger
	checkoutSvc checkoutdomain.Service
}

type ServerParams struct {
	fx.In

	Gin         *gin.Engine
	Cfg         config.Config
	Log         *zap.Logger
	CheckoutSvc checkoutdomain.Service
}

func NewServer(p ServerParams) *Server {
	return &Server{
		engine:      p.Gin,
		cfg:         p.Cfg,
		log:         p.Log.Named("server"),
		checkoutSvc: p.CheckoutSvc,
	}
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) RegisterRoutes() {
	s.engine.GET("/health", s.Health)

	s.engine.POST("/initialize-payment", s.InitializePayment)
	s.engine.GET("/verify-payment/:reference", s.VerifyPayment)
	s.engine.POST("/process-order", s.ProcessOrder)
	s.engine.POST("/webhook", s.HandleGatewayWebhook)
}

func registerRoutes(s *Server) {
	s.RegisterRoutes()
}

func run(lc fx.Lifecycle, shutdowner fx.Shutdowner, r *gin.Engine, cfg config.Config, log *zap.Logger) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					// Shutdown, not exit: OnStop hooks still drain the pool
					// and close the redis client.
					log.Error("http server failed", zap.Error(err))
					if err := shutdowner.Shutdown(); err != nil {
						log.Error("shutdown request failed", zap.Error(err))
					}
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}
