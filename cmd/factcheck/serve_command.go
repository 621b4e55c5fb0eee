package main

import (
	"context"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"factcheck/internal/daemon"
	"factcheck/internal/logging"
	"factcheck/internal/observability"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	var bindFlag string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if bind := strings.TrimSpace(bindFlag); bind != "" {
				cfg.API.Bind = bind
			}
			if err := cfg.ValidateLLMCredentials(); err != nil {
				return err
			}
			logger, err := ctx.logger()
			if err != nil {
				return err
			}
			if !strings.EqualFold(cfg.Logging.Level, "debug") {
				gin.SetMode(gin.ReleaseMode)
			}

			signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			shutdownTracing, err := observability.InitTracing(signalCtx, cfg.Tracing, version, logger)
			if err != nil {
				return err
			}
			defer func() {
				flushCtx, flushCancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer flushCancel()
				if err := shutdownTracing(flushCtx); err != nil {
					logger.Warn("tracer shutdown failed", logging.Error(err))
				}
			}()

			d, err := daemon.New(signalCtx, cfg, logger, daemon.WithVersion(version))
			if err != nil {
				return err
			}
			defer d.Close()

			if err := d.Run(signalCtx); err != nil {
				return err
			}
			logger.Info("factcheck server shutting down")
			return nil
		},
	}

	cmd.Flags().StringVar(&bindFlag, "bind", "", "Override api.bind (host:port)")
	return cmd
}
