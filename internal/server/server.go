package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/foundrygate/gateway-validator/internal/config"
	"github.com/foundrygate/gateway-validator/internal/server/middlewares"
)

const shutdownTimeout = 10 * time.Second

// RegisterHandlerFn receives the /api/v1 router group and binds the
// application routes onto it.
type RegisterHandlerFn func(router *gin.RouterGroup)

type Server struct {
	httpServer *http.Server
	log        *zap.SugaredLogger
}

func NewServer(cfg *config.Configuration, registerHandlerFn RegisterHandlerFn) (*Server, error) {
	if cfg.Server.Mode == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(middlewares.Logger())
	router.Use(ginzap.RecoveryWithZap(zap.L().Named("http"), true))

	registerHandlerFn(router.Group("/api/v1"))

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "route not found"})
	})

	return &Server{
		httpServer: &http.Server{
			Addr:    fmt.Sprintf(":%d", cfg.Server.HTTPPort),
			Handler: router,
		},
		log: zap.S().Named("server"),
	}, nil
}

// Start blocks serving HTTP until the server errors or Stop is called.
func (s *Server) Start(ctx context.Context) error {
	s.log.Infow("starting http server", "address", s.httpServer.Addr)
	s.httpServer.BaseContext = func(net.Listener) context.Context { return ctx }
	return s.httpServer.ListenAndServe()
}

// Stop performs a graceful shutdown, waiting for in-flight requests.
func (s *Server) Stop(ctx context.Context) error {
	s.log.Info("stopping http server")
	shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()
	return s.httpServer.Shutdown(shutdownCtx)
}
