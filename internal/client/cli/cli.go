// Package cli implements the cropaid command line client on top of the
// offline-first engine.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	apiclient "github.com/iudanet/cropaid/internal/client/api"
	"github.com/iudanet/cropaid/internal/client/auth"
	"github.com/iudanet/cropaid/internal/client/cache"
	"github.com/iudanet/cropaid/internal/client/capture"
	"github.com/iudanet/cropaid/internal/client/connectivity"
	"github.com/iudanet/cropaid/internal/client/iocli"
	"github.com/iudanet/cropaid/internal/client/service"
	"github.com/iudanet/cropaid/internal/client/storage"
	"github.com/iudanet/cropaid/internal/client/storage/boltdb"
	"github.com/iudanet/cropaid/internal/client/storage/fallback"
	clientsync "github.com/iudanet/cropaid/internal/client/sync"
	"github.com/iudanet/cropaid/internal/config"
	"github.com/iudanet/cropaid/internal/logging"
)

// Cli holds the components shared by all commands. It is assembled in the
// root command's PersistentPreRunE and torn down after the command runs.
type Cli struct {
	cfg        *config.Client
	io         iocli.IO
	logger     *slog.Logger
	closeLog   func() error
	store      *boltdb.Storage
	apiClient  *apiclient.Client
	monitor    *connectivity.Monitor
	prober     *connectivity.Prober
	auth       *auth.Service
	captures   *capture.Store
	service    *service.Service
	reconciler *clientsync.Reconciler

	configFile string
	offline    bool
}

// BuildInfo is printed by --version
type BuildInfo struct {
	Version   string
	BuildDate string
	GitCommit string
}

// Execute runs the command line given by args. Storage opened by the
// command is always closed before it returns.
func Execute(ctx context.Context, build BuildInfo, args []string, in io.Reader, out, errOut io.Writer) error {
	c := &Cli{}
	root := c.newRootCommand(build)
	root.SetArgs(args)
	root.SetIn(in)
	root.SetOut(out)
	root.SetErr(errOut)

	err := root.ExecuteContext(ctx)
	if closeErr := c.teardown(); closeErr != nil {
		err = errors.Join(err, closeErr)
	}
	return err
}

// newRootCommand builds the cropaid command tree
func (c *Cli) newRootCommand(build BuildInfo) *cobra.Command {
	v := config.New()

	root := &cobra.Command{
		Use:   "cropaid",
		Short: "Offline-first client for the CropAid farming service",
		Long: `cropaid keeps working without a network connection.

Posts, calendar tasks and media captures are saved locally first and are
sent to the server once it becomes reachable.`,
		Version:      build.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup(cmd, v)
		},
	}
	root.SetVersionTemplate(fmt.Sprintf("CropAid Client\nVersion:    %s\nBuild Date: %s\nGit Commit: %s\n",
		build.Version, build.BuildDate, build.GitCommit))

	flags := root.PersistentFlags()
	flags.StringVar(&c.configFile, "config", "", "Path to YAML config file")
	flags.BoolVar(&c.offline, "offline", false, "Do not contact the server, work from local data")
	flags.String("server", config.DefaultClient().Server, "Server URL")
	flags.String("db", config.DefaultClient().DB, "Path to local database")
	flags.String("fallback", config.DefaultClient().Fallback, "Path to fallback capture journal")
	flags.String("log-file", "", "Write logs to a rotated file instead of stderr")
	flags.String("log-level", config.DefaultClient().LogLevel, "Log level (debug, info, warn, error)")
	flags.Int("max-attempts", 0, "Abandon a queued action after this many failed syncs (0 = never)")
	flags.Bool("guest", false, "Use the client as a guest: every write is queued")

	for key, name := range map[string]string{
		"server":       "server",
		"db":           "db",
		"fallback":     "fallback",
		"log_file":     "log-file",
		"log_level":    "log-level",
		"max_attempts": "max-attempts",
		"guest":        "guest",
	} {
		_ = v.BindPFlag(key, flags.Lookup(name))
	}

	root.AddCommand(
		c.newLoginCommand(),
		c.newLogoutCommand(),
		c.newStatusCommand(),
		c.newPostCommand(),
		c.newPostsCommand(),
		c.newLikeCommand(),
		c.newCommentCommand(),
		c.newTaskCommand(),
		c.newCaptureCommand(),
		c.newQueueCommand(),
		c.newSyncCommand(),
		c.newWatchCommand(),
	)

	return root
}

// setup открывает хранилища и собирает сервисы
func (c *Cli) setup(cmd *cobra.Command, v *viper.Viper) error {
	ctx := cmd.Context()

	cfg, err := config.LoadClient(v, c.configFile)
	if err != nil {
		return err
	}
	c.cfg = cfg
	c.io = iocli.NewStdio(cmd.InOrStdin(), cmd.OutOrStdout())

	logger, closeLog, err := logging.New(cfg.Logging())
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	c.logger, c.closeLog = logger, closeLog

	c.store, err = boltdb.New(ctx, cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	// Журнал захватов необязателен: без него ошибка основного хранилища
	// возвращается вызывающему
	var secondary storage.CaptureStorage
	if cfg.Fallback != "" {
		journal, err := fallback.New(cfg.Fallback)
		if err != nil {
			logger.Warn("Fallback capture store unavailable", "path", cfg.Fallback, "error", err)
		} else {
			secondary = journal
		}
	}

	c.apiClient = apiclient.NewClient(cfg.Server)
	c.monitor = connectivity.NewMonitor(false, logger)
	c.prober = connectivity.NewProber(c.apiClient, c.monitor, cfg.ProbeInterval, cfg.ProbeTimeout, logger)
	c.auth = auth.NewService(c.apiClient, c.store, cfg.Guest, logger)
	c.captures = capture.NewStore(c.store, secondary, logger)

	c.service = service.New(
		c.apiClient,
		c.store,
		cache.New(c.store, logger),
		c.monitor.IsOnline,
		c.auth.Identity,
		logger,
	)

	registry := clientsync.NewRegistry()
	service.RegisterActions(registry, c.apiClient)
	c.reconciler = clientsync.NewReconciler(
		c.store,
		c.captures,
		registry,
		c.apiClient,
		c.monitor.IsOnline,
		clientsync.Config{MaxAttempts: cfg.MaxAttempts},
		logger,
	)

	if !c.offline {
		c.prober.Probe(ctx)
	}

	if err := c.auth.Restore(ctx); err != nil {
		return err
	}
	if c.monitor.IsOnline() {
		refreshCtx, cancel := context.WithTimeout(ctx, cfg.ProbeTimeout)
		defer cancel()
		// Ошибка уже залогирована, команда продолжает работу со старым токеном
		_ = c.auth.RefreshIfExpired(refreshCtx)
	}

	return nil
}

func (c *Cli) teardown() error {
	var errs []error
	if c.reconciler != nil {
		c.reconciler.Stop()
	}
	if c.store != nil {
		if err := c.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		}
		c.store = nil
	}
	if c.closeLog != nil {
		if err := c.closeLog(); err != nil {
			errs = append(errs, err)
		}
		c.closeLog = nil
	}
	return errors.Join(errs...)
}

// connectionLabel describes connectivity for command output
func (c *Cli) connectionLabel() string {
	if c.monitor.IsOnline() {
		return "online"
	}
	return "offline"
}
