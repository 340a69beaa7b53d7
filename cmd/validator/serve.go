package main

import (
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/foundrygate/gateway-validator/internal/handlers"
	"github.com/foundrygate/gateway-validator/internal/server"
	"github.com/foundrygate/gateway-validator/internal/services"
	"github.com/foundrygate/gateway-validator/pkg/gateway"
	"github.com/foundrygate/gateway-validator/pkg/scheduler"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the validator as an HTTP service",
	Long: `Starts an HTTP server exposing the validation pipeline, run
history and the connection health cache under /api/v1.`,
	RunE: runServe,
}

func init() {
	flags := serveCmd.Flags()
	flags.Int("port", 8000, "HTTP port to listen on")
	flags.String("mode", "dev", "server mode (dev, prod)")
	cobra.CheckErr(v.BindPFlag("server.http_port", flags.Lookup("port")))
	cobra.CheckErr(v.BindPFlag("server.mode", flags.Lookup("mode")))

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	log := zap.S().Named("serve_cmd")

	st, err := requireStore(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	client := gateway.NewClient(
		gateway.WithTimeout(cfg.Validator.RequestTimeout),
		gateway.WithMaxTries(cfg.Validator.MaxRetries),
	)
	sched := scheduler.NewScheduler[services.Outcome](cfg.Validator.NumWorkers)
	defer sched.Close()

	handler := handlers.New(
		services.NewValidationService(sched, client, st),
		services.NewHealthService(st),
	)

	srv, err := server.NewServer(cfg, func(router *gin.RouterGroup) {
		handlers.RegisterRoutes(router, handler)
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start(ctx)
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
		log.Info("shutdown signal received")
		if err := srv.Stop(cmd.Context()); err != nil {
			log.Warnw("graceful shutdown failed", "error", err)
		}
		<-errCh
	}
	return nil
}
