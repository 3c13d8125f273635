package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	adminkeydomain "github.com/appoetlabs/appoet/internal/adminkey/domain"
	"github.com/appoetlabs/appoet/internal/authorization"
	"github.com/appoetlabs/appoet/internal/config"
	orderdomain "github.com/appoetlabs/appoet/internal/order/domain"
	requestdomain "github.com/appoetlabs/appoet/internal/poemrequest/domain"
	"github.com/appoetlabs/appoet/internal/ratelimit"
	sampledomain "github.com/appoetlabs/appoet/internal/sample/domain"
	tierdomain "github.com/appoetlabs/appoet/internal/tier/domain"
)

type Params struct {
	fx.In

	Log         *zap.Logger
	Cfg         config.Config
	DB          *gorm.DB
	Limiter     ratelimit.Limiter
	Authorizer  *authorization.Authorizer
	TierSvc     tierdomain.Service
	SampleSvc   sampledomain.Service
	OrderSvc    orderdomain.Service
	RequestSvc  requestdomain.Service
	AdminKeySvc adminkeydomain.Service
}

type Server struct {
	log         *zap.Logger
	cfg         config.Config
	db          *gorm.DB
	limiter     ratelimit.Limiter
	authorizer  *authorization.Authorizer
	tierSvc     tierdomain.Service
	sampleSvc   sampledomain.Service
	orderSvc    orderdomain.Service
	requestSvc  requestdomain.Service
	adminKeySvc adminkeydomain.Service
}

func NewServer(p Params) *Server {
	return &Server{
		log:         p.Log.Named("server"),
		cfg:         p.Cfg,
		db:          p.DB,
		limiter:     p.Limiter,
		authorizer:  p.Authorizer,
		tierSvc:     p.TierSvc,
		sampleSvc:   p.SampleSvc,
		orderSvc:    p.OrderSvc,
		requestSvc:  p.RequestSvc,
		adminKeySvc: p.AdminKeySvc,
	}
}

func (s *Server) Router() *gin.Engine {
	if s.cfg.App.Env != "development" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(s.MetricsMiddleware())

	r.GET("/healthz", s.Healthz)
	r.GET("/readyz", s.Readyz)
	r.GET("/metrics", s.Metrics())

	api := r.Group("/api")
	{
		api.GET("/tiers", s.ListTiers)
		api.GET("/samples", s.ListSamples)

		api.POST("/orders", s.RateLimited(), s.CreateOrder)
		api.POST("/orders/check", s.RateLimited(), s.CheckOrders)
		api.POST("/orders/:id/capture", s.RateLimited(), s.CaptureOrder)
		api.GET("/orders/:id", s.GetOrder)

		api.POST("/requests", s.SubmitPoemRequest)

		admin := api.Group("/admin")
		{
			admin.GET("/orders",
				s.AdminKeyRequired(authorization.ObjectOrders, authorization.ActionRead),
				s.AdminListOrders)
			admin.GET("/requests",
				s.AdminKeyRequired(authorization.ObjectRequests, authorization.ActionRead),
				s.AdminListRequests)
			admin.PATCH("/requests/:id",
				s.AdminKeyRequired(authorization.ObjectRequests, authorization.ActionWrite),
				s.AdminUpdateRequest)
			admin.POST("/requests/:id/deliver",
				s.AdminKeyRequired(authorization.ObjectRequests, authorization.ActionWrite),
				s.AdminDeliverRequest)

			admin.POST("/tiers",
				s.AdminKeyRequired(authorization.ObjectTiers, authorization.ActionWrite),
				s.CreateTier)
			admin.PATCH("/tiers/:id",
				s.AdminKeyRequired(authorization.ObjectTiers, authorization.ActionWrite),
				s.UpdateTier)

			admin.GET("/keys",
				s.AdminKeyRequired(authorization.ObjectKeys, authorization.ActionRead),
				s.ListAdminKeys)
			admin.POST("/keys",
				s.AdminKeyRequired(authorization.ObjectKeys, authorization.ActionWrite),
				s.IssueAdminKey)
			admin.DELETE("/keys/:id",
				s.AdminKeyRequired(authorization.ObjectKeys, authorization.ActionWrite),
				s.RevokeAdminKey)
		}
	}

	return r
}

var Module = fx.Module("server",
	fx.Provide(NewServer),
	fx.Invoke(registerHTTPServer),
)

func registerHTTPServer(lc fx.Lifecycle, s *Server, log *zap.Logger) {
	srv := &http.Server{
		Addr:              s.cfg.Server.Addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				log.Info("http server listening", zap.String("addr", srv.Addr))
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Error("http server stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})
}
