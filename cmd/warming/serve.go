package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/aouyang1/go-warming/internal/observability"
	"github.com/aouyang1/go-warming/internal/server"
	"github.com/jonboulle/clockwork"
	"github.com/pkg/profile"
	"github.com/spf13/cobra"
)

var profileMode string

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the analysis dashboard and json api",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
	cmd.Flags().StringVar(&profileMode, "profile", "", "write a cpu or mem profile to the working directory")
	return cmd
}

func startProfile(mode string) (interface{ Stop() }, error) {
	switch mode {
	case "":
		return nil, nil
	case "cpu":
		return profile.Start(profile.CPUProfile, profile.ProfilePath("."), profile.NoShutdownHook), nil
	case "mem":
		return profile.Start(profile.MemProfile, profile.ProfilePath("."), profile.NoShutdownHook), nil
	default:
		return nil, fmt.Errorf("invalid profile mode: %s (must be cpu or mem)", mode)
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := observability.NewLogger(cfg)

	prof, err := startProfile(profileMode)
	if err != nil {
		return err
	}
	if prof != nil {
		defer prof.Stop()
	}

	a, err := loadAnalyzer(cfg)
	if err != nil {
		return err
	}
	logger.Info("dataset loaded", "path", cfg.DataPath, "rows", len(a.Years()))

	srv := server.NewServer(
		server.OptionsFromConfig(cfg),
		a,
		observability.NewMetrics(),
		clockwork.NewRealClock(),
		logger,
	)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server error: %w", err)
		}
	case <-ctx.Done():
	}
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	logger.Info("shutdown complete")
	return nil
}
