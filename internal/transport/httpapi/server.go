package httpapi

import (
	"browser-automator/internal/config"
	"browser-automator/internal/metrics"
	"browser-automator/internal/usecase"
	"browser-automator/pkg/logg"
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	readHeaderTimeout = 10 * time.Second
	idleTimeout       = 120 * time.Second
)

type Server struct {
	config *config.Config
	logger *zap.Logger
	router *gin.Engine
	http   *http.Server
}

type Params struct {
	fx.In

	Config  *config.Config
	Logger  *zap.Logger
	Metrics *metrics.Metrics
	Usecase *usecase.Service
}

func NewServer(params Params) *Server {
	if !params.Config.AppConfig.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	logger := params.Logger.With(zap.String(logg.Layer, "HTTPServer"))
	handler := NewHandler(params.Logger, params.Usecase.Automation)

	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(logger), collectMetrics(params.Metrics))

	router.GET("/healthz", handler.Health)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(params.Metrics.Registry, promhttp.HandlerOpts{})))

	api := router.Group("/api")
	api.Use(rateLimit(params.Config.HTTPConfig.RateLimit, params.Config.HTTPConfig.RateBurst))
	api.POST("/automate", handler.Automate)

	return &Server{
		config: params.Config,
		logger: logger,
		router: router,
		http: &http.Server{
			Addr:              params.Config.HTTPConfig.Addr,
			Handler:           router,
			ReadHeaderTimeout: readHeaderTimeout,
			IdleTimeout:       idleTimeout,
		},
	}
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// Start binds the listener synchronously so address errors fail startup, then serves in the background.
func (s *Server) Start(ctx context.Context) error {
	var lc net.ListenConfig

	listener, err := lc.Listen(ctx, "tcp", s.http.Addr)
	if err != nil {
		return err
	}

	s.logger.Info("HTTP server listening", zap.String("addr", listener.Addr().String()))

	go func() {
		if err := s.http.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("HTTP server stopped unexpectedly", zap.Error(err))
		}
	}()

	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")

	return s.http.Shutdown(ctx)
}
