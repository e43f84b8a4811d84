package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/iudanet/cropaid/internal/config"
	"github.com/iudanet/cropaid/internal/logging"
	"github.com/iudanet/cropaid/internal/server"
	"github.com/iudanet/cropaid/internal/server/storage/sqlite"
)

var (
	// Version information set via ldflags during build
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	v := config.New()
	var configFile string

	root := &cobra.Command{
		Use:          "cropaid-server",
		Short:        "Reference backend for the CropAid client",
		Version:      Version,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadServer(v, configFile)
			if err != nil {
				return err
			}
			return run(cmd.Context(), cfg)
		},
	}
	root.SetVersionTemplate(fmt.Sprintf("CropAid Server\nVersion:    %s\nBuild Date: %s\nGit Commit: %s\n",
		Version, BuildDate, GitCommit))

	d := config.DefaultServer()
	flags := root.Flags()
	flags.StringVar(&configFile, "config", "", "Path to YAML config file")
	flags.String("addr", d.Addr, "Listen address")
	flags.String("db", d.DB, "Path to SQLite database")
	flags.String("jwt-secret", "", "HS256 secret for access tokens (at least 32 characters)")
	flags.String("log-file", "", "Write logs to a rotated file instead of stderr")
	flags.String("log-level", d.LogLevel, "Log level (debug, info, warn, error)")
	flags.Duration("token-ttl", d.TokenTTL, "Access token lifetime")
	flags.Duration("refresh-ttl", d.RefreshTTL, "Refresh token lifetime")
	flags.Int("rate-limit", d.RateLimit, "Login attempts per minute per IP (0 = unlimited)")

	for _, name := range []string{"addr", "db", "jwt-secret", "log-file", "log-level", "token-ttl", "refresh-ttl", "rate-limit"} {
		_ = v.BindPFlag(strings.ReplaceAll(name, "-", "_"), flags.Lookup(name))
	}

	return root
}

func run(ctx context.Context, cfg *config.Server) error {
	logger, closeLog, err := logging.New(cfg.Logging())
	if err != nil {
		return err
	}
	defer func() {
		_ = closeLog()
	}()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := sqlite.New(ctx, cfg.DB)
	if err != nil {
		logger.Error("Failed to open database", "path", cfg.DB, "error", err)
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Warn("Failed to close database", "error", err)
		}
	}()

	srv := server.New(server.Options{
		Addr:       cfg.Addr,
		Version:    Version,
		JWTSecret:  []byte(cfg.JWTSecret),
		TokenTTL:   cfg.TokenTTL,
		RefreshTTL: cfg.RefreshTTL,
		RateLimit:  cfg.RateLimit,
	}, store, logger)

	if err := srv.ListenAndServe(ctx); err != nil {
		logger.Error("Server stopped with error", "error", err)
		return err
	}

	logger.Info("Server stopped")
	return nil
}
