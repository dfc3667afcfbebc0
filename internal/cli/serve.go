package cli

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"ultracoach/internal/web"
)

func init() {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the web chat server",
		Long:  "Serve the browser chat UI and JSON API. Listens on $PORT (default 8080).",
		Run:   runServe,
	}

	RootCmd.AddCommand(cmd)
}

func runServe(cmd *cobra.Command, args []string) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg := loadConfig()
	if dbPath == "" {
		dbPath = cfg.DBPath
	}

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	coach, err := buildAgent(ctx, cfg, s)
	if err != nil {
		exitErr("serve", err)
	}

	// Prune expired turns on startup so the log does not grow unbounded.
	if cfg.RetentionDays > 0 {
		if n, err := s.PruneTurns(ctx, cfg.RetentionDays); err != nil {
			slog.Warn("prune failed", "error", err)
		} else if n > 0 {
			slog.Info("pruned old turns", "count", n)
		}
	}

	handler := web.NewHandler(coach, s)
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler.Routes(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 0, // agent replies can be slow; websocket needs no write deadline
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		slog.Info("server listening", "addr", srv.Addr, "db", getDBPath())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	stop()

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}
