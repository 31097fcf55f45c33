package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/aretw0/aidbuddy/internal/cli"
	httpAdapter "github.com/aretw0/aidbuddy/pkg/adapters/http"
	"github.com/aretw0/aidbuddy/pkg/adapters/scorecard"
	"github.com/aretw0/aidbuddy/pkg/observability"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP chat server",
	Long: `Serves the chat API (/api/chat, /api/state, /api/reset, /api/events),
the direct estimate and school lookup endpoints, /health, /info, /metrics
and the OpenAPI document.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Flags().Changed("addr") {
			cfg.Addr, _ = cmd.Flags().GetString("addr")
		}
		origins, _ := cmd.Flags().GetStringSlice("cors-origin")

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		metrics := observability.NewMetrics()
		streams := httpAdapter.NewStreamManager(logger)

		engine, closeStore, err := cli.NewEngine(ctx, cfg, logger,
			metrics.Hooks(),
			observability.LoggingHooks(logger),
			streams.Hooks(),
		)
		if err != nil {
			return err
		}
		defer closeStore()

		opts := []httpAdapter.Option{
			httpAdapter.WithLogger(logger),
			httpAdapter.WithStreams(streams),
			httpAdapter.WithMetrics(metrics.Handler()),
			httpAdapter.WithCookieSecure(cfg.CookieSecure),
			httpAdapter.WithAllowedOrigins(origins...),
		}
		if cfg.Scorecard.APIKey != "" {
			opts = append(opts, httpAdapter.WithSchools(scorecard.New(cfg.Scorecard.APIKey,
				scorecard.WithURL(cfg.Scorecard.URL),
				scorecard.WithTimeout(cfg.Scorecard.Timeout),
			)))
		} else {
			logger.Info("school lookup disabled (AIDBUDDY_SCORECARD_API_KEY not set)")
		}

		handler, err := httpAdapter.NewHandler(engine, opts...)
		if err != nil {
			return err
		}

		// No WriteTimeout: /api/events streams.
		srv := &http.Server{
			Addr:              cfg.Addr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       30 * time.Second,
			IdleTimeout:       120 * time.Second,
		}

		serverErrors := make(chan error, 1)
		go func() {
			logger.Info("server listening", "addr", srv.Addr, "store", cfg.Store)
			serverErrors <- srv.ListenAndServe()
		}()

		select {
		case err := <-serverErrors:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return fmt.Errorf("server error: %w", err)
		case <-ctx.Done():
			stop()
			logger.Info("shutting down gracefully")

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				_ = srv.Close()
				return fmt.Errorf("graceful shutdown did not complete: %w", err)
			}
			logger.Info("server stopped")
			return nil
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", ":8080", "Address to listen on (overrides AIDBUDDY_ADDR)")
	serveCmd.Flags().StringSlice("cors-origin", nil, "Allowed CORS origin (repeatable)")
}
