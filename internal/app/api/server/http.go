package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/ovenline/bakehouse/docs"
	"github.com/ovenline/bakehouse/internal/app/api/handlers"
	batchsvc "github.com/ovenline/bakehouse/internal/app/service/batch"
	"github.com/ovenline/bakehouse/internal/app/service/billing"
	ordersvc "github.com/ovenline/bakehouse/internal/app/service/order"
	"github.com/ovenline/bakehouse/internal/app/service/paymentevent"
	"github.com/ovenline/bakehouse/internal/app/service/statistics"
	subsvc "github.com/ovenline/bakehouse/internal/app/service/subscription"
	cfgpkg "github.com/ovenline/bakehouse/pkg/config"

	mw "github.com/ovenline/bakehouse/internal/app/api/middleware"

	metrics "github.com/ovenline/bakehouse/pkg/metrics"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func newEngine() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	// Add request tracing middleware only; request logger & access log are attached per group in registerRoutes
	r.Use(mw.TraceMiddleware())
	return r
}

type routeDeps struct {
	fx.In

	Log     *zap.SugaredLogger
	Cfg     *cfgpkg.Config
	Batches *batchsvc.Service
	Orders  *ordersvc.Service
	Subs    *subsvc.Service
	Gate    *paymentevent.Gate
	Sweep   *billing.Sweep
	Stats   *statistics.Service
}

func registerRoutes(r *gin.Engine, deps routeDeps) {
	log, cfg := deps.Log, deps.Cfg

	// Prometheus metrics
	if cfg != nil && cfg.MetricsAddr != "" {
		p := metrics.NewPrometheus(metrics.NewPrometheusOptions{
			ReqCntURLLabelMappingFn: func(c *gin.Context) string {
				if fp := c.FullPath(); fp != "" {
					return fp
				}
				return c.Request.URL.Path
			},
			Logger: log,
		})
		p.SetListenAddress(cfg.MetricsAddr)
		p.Use(r)

		log.Infow("metrics started", "addr", cfg.MetricsAddr)
	}

	// Public group: health, swagger, availability, payment webhook.
	pub := r.Group("/")
	pub.Use(mw.RequestLoggerMiddleware(log), mw.AccessLogMiddleware())
	handlers.RegisterHealthRoutes(pub)
	docs.SwaggerInfo.BasePath = "/"
	pub.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	handlers.RegisterPaymentWebhookRoutes(pub.Group("/webhook"), deps.Gate)

	// Customer APIs: bearer token required.
	apiV1 := r.Group("/api/v1")
	apiV1.Use(mw.RequestLoggerMiddleware(log), mw.AccessLogMiddleware())
	handlers.RegisterAvailabilityRoutes(apiV1, deps.Batches)

	authed := apiV1.Group("/")
	authed.Use(mw.AuthMiddleware(cfg))
	handlers.RegisterCheckoutRoutes(authed, deps.Orders)
	handlers.RegisterSubscriptionRoutes(authed, deps.Subs)

	// Admin APIs: role-gated on top of auth.
	admin := apiV1.Group("/admin")
	admin.Use(mw.AuthMiddleware(cfg), mw.RequireRole("admin"))
	handlers.RegisterAdminBatchRoutes(admin, deps.Batches)
	handlers.RegisterAdminOrderRoutes(admin, deps.Orders, deps.Stats)

	// Internal APIs: machine callers only (cron scheduler).
	internal := r.Group("/internal")
	internal.Use(mw.RequestLoggerMiddleware(log), mw.AccessLogMiddleware())
	handlers.RegisterBillingRoutes(internal, cfg, deps.Sweep)
}

func runServer(lc fx.Lifecycle, log *zap.SugaredLogger, cfg *cfgpkg.Config, r *gin.Engine) {
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{Addr: addr, Handler: r, ReadHeaderTimeout: 5 * time.Second}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Infow("starting HTTP server", "addr", addr)
			go func() {
				if err := srv.ListenAndServe(); err != nil {
					log.Errorf("server error: %v", err)
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Infow("stopping HTTP server")
			shutdownCtx, cancel := context.WithTimeout(ctx, 120*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

var Module = fx.Options(
	fx.Provide(newEngine),
	fx.Invoke(registerRoutes),
	fx.Invoke(runServer),
)
