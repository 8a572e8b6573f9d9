package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hpn/promptpal/internal/handler"
	"github.com/hpn/promptpal/internal/ui"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.serve(cmd.Context())
		},
	}
}

// newServer builds the HTTP server with every route wired.
func (a *app) newServer() *http.Server {
	if a.cfg.Logging.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	// A nil *flows.Runner must stay a nil interface so the flows routes answer 503.
	var runner handler.FlowRunner
	if r := a.flowRunner(); r != nil {
		runner = r
	}

	completion := handler.NewCompletionHandler(
		a.chatAdapter(),
		handler.WithModels(a.cfg.Models, a.cfg.DefaultModel),
		handler.WithLogger(a.logger),
	)
	router := handler.NewRouter(completion, handler.NewFlowsHandler(runner, a.logger), a.logger)

	return &http.Server{
		Addr:         fmt.Sprintf("%s:%d", a.cfg.Server.Host, a.cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  time.Duration(a.cfg.Server.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(a.cfg.Server.WriteTimeoutSeconds) * time.Second,
	}
}

func (a *app) serve(ctx context.Context) error {
	logger := a.logger
	srv := a.newServer()

	logger.Info("configuration loaded",
		slog.String("host", a.cfg.Server.Host),
		slog.Int("port", a.cfg.Server.Port),
		slog.String("default_model", a.cfg.DefaultModel),
		slog.Int("models", len(a.cfg.Models)),
		slog.Bool("flows_enabled", a.cfg.Flows.Enabled()),
	)

	ui.PrintBanner()
	ui.PrintStartupInfo(a.cfg.Server.Host, a.cfg.Server.Port, a.cfg.DefaultModel, a.cfg.Flows.Enabled())

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("server starting", slog.String("address", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	})

	// Shut down on signal, or when the listener fails.
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutdown initiated")
		ui.PrintShutdown()

		shutdownTimeout := time.Duration(a.cfg.Server.ShutdownTimeoutSeconds) * time.Second
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("server stopped gracefully")
	ui.PrintGoodbye()
	return nil
}
