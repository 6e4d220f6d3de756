package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/trackline/trackline/internal/auth"
	"github.com/trackline/trackline/internal/client"
	"github.com/trackline/trackline/internal/config"
	"github.com/trackline/trackline/internal/history"
	"github.com/trackline/trackline/internal/service"
)

var cfg *config.Config

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	rootCmd := &cobra.Command{
		Use:   "trackline",
		Short: "Client for a remote work-item tracking service",
		Long:  "Trackline maintains an authenticated session against a work-item tracking service and exposes schema-aware entity retrieval, workflow transitions and cross-type search.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.Load()
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			return nil
		},
	}

	rootCmd.AddCommand(
		loginCmd(),
		logoutCmd(),
		statusCmd(),
		searchCmd(),
		getCmd(),
		fieldsCmd(),
		transitionsCmd(),
		historyCmd(),
		mcpCmd(),
	)

	rootCmd.SetContext(ctx)

	err := rootCmd.Execute()
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if cfg != nil && cfg.Logging.Level == "debug" {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg != nil && cfg.Logging.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

func newClient(logger *slog.Logger) *client.Client {
	return client.New(cfg.Server.URI, cfg.Server.Space, cfg.Server.Workspace, logger)
}

func newSessionManager(c *client.Client, logger *slog.Logger) *auth.Manager {
	store := auth.NewKeyringStore("trackline:"+cfg.Server.URI, logger)
	return auth.NewManager(c, store, auth.SystemBrowser{}, cfg.Server.User, logger)
}

// newService assembles the full service context. The history store is
// optional: a failure to open it degrades to no persisted history.
func newService(logger *slog.Logger) *service.Service {
	c := newClient(logger)
	sessions := newSessionManager(c, logger)

	hist, err := history.Open(cfg.History.Path, logger)
	if err != nil {
		logger.Warn("opening history store", "path", cfg.History.Path, "error", err)
		hist = nil
	}

	return service.New(c, sessions, hist, logger)
}

func truncate(s string, maxLen int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	runes := []rune(s)
	if len(runes) > maxLen {
		return string(runes[:maxLen]) + "..."
	}
	return s
}
