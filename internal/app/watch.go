package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/blackwell-systems/journalwatch/internal/config"
	"github.com/blackwell-systems/journalwatch/internal/logging"
	"github.com/blackwell-systems/journalwatch/internal/output"
	"github.com/blackwell-systems/journalwatch/internal/projector"
	"github.com/blackwell-systems/journalwatch/internal/store"
	"github.com/blackwell-systems/journalwatch/internal/watcher"
)

// how long --stop, --restart and --daemon wait for the heartbeat to change
const serviceWaitTimeout = 10 * time.Second

var (
	watchDaemon      bool
	watchDaemonChild bool
	watchStop        bool
	watchRestart     bool
	watchJournalDir  string
	watchInterval    time.Duration
	watchLogFile     string

	watchCmd = &cobra.Command{
		Use:   "watch",
		Short: "Run the journal ingestion service",
		Long: `Follow the newest journal file and project every new event into the
database.

The service holds an exclusive lease in the database: a second service
pointed at the same database refuses to start. While running it refreshes a
heartbeat every poll interval; 'journalwatch status' and other readers use
that heartbeat to decide whether the service is alive.

Watch modes:
  • Foreground (default): Run in current terminal with Ctrl+C to stop
  • Daemon: Run as a detached background process
  • Stop / Restart: Control a running daemon through its heartbeat

On start the service opens the newest journal at its end. Older content is
never replayed; only the commander name and star system are recovered from
it.`,
		Example: `  # Run in foreground (Ctrl+C to stop)
  journalwatch watch

  # Run as background daemon
  journalwatch watch --daemon

  # Stop or restart the daemon
  journalwatch watch --stop
  journalwatch watch --restart

  # Custom journal directory and interval
  journalwatch watch --journal-dir ~/journals --interval 250ms`,
		RunE: runWatch,
	}
)

func init() {
	watchCmd.Flags().BoolVar(&watchDaemon, "daemon", false, "run as background daemon")
	watchCmd.Flags().BoolVar(&watchDaemonChild, "daemon-child", false, "internal flag for daemon child process")
	watchCmd.Flags().BoolVar(&watchStop, "stop", false, "stop running daemon")
	watchCmd.Flags().BoolVar(&watchRestart, "restart", false, "restart running daemon")
	watchCmd.Flags().StringVar(&watchJournalDir, "journal-dir", "", "journal directory (default: from config)")
	watchCmd.Flags().DurationVar(&watchInterval, "interval", 0, "poll interval (default: from config, 500ms)")
	watchCmd.Flags().StringVar(&watchLogFile, "log-file", "", "daemon log file path (default: ~/.journalwatch/watch.log)")

	// Hide the internal daemon-child flag from help
	watchCmd.Flags().MarkHidden("daemon-child")
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := applyWatchFlags(cfg); err != nil {
		return err
	}

	if watchLogFile == "" {
		defaultLog, err := getDefaultLogFile()
		if err != nil {
			return fmt.Errorf("failed to get default log file path: %w", err)
		}
		watchLogFile = defaultLog
	}

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	launcher, err := watcher.NewLauncher(st, watchLogFile, childFlags(cfg)...)
	if err != nil {
		return err
	}

	switch {
	case watchStop:
		return stopService(launcher)
	case watchRestart:
		return restartService(launcher, cfg)
	case watchDaemon:
		return startService(launcher, cfg)
	case watchDaemonChild:
		return runServiceChild(cfg, st)
	}
	return runServiceForeground(cfg, st)
}

// applyWatchFlags overrides config values with watch flags.
func applyWatchFlags(cfg *config.Config) error {
	if watchJournalDir != "" {
		cfg.Journal.Dir = watchJournalDir
	}
	if watchInterval != 0 {
		cfg.Journal.PollInterval = watchInterval
	}
	return cfg.Validate()
}

// childFlags carries the effective settings to a daemon child.
func childFlags(cfg *config.Config) []string {
	args := []string{"--db", cfg.Store.Path, "--interval", cfg.Journal.PollInterval.String()}
	if configPath != "" {
		args = append(args, "--config", configPath)
	}
	if logLevel != "" {
		args = append(args, "--log-level", logLevel)
	}
	return args
}

func watcherOptions(cfg *config.Config, logger *logrus.Logger) watcher.Options {
	return watcher.Options{
		JournalDir:          cfg.Journal.Dir,
		PollInterval:        cfg.Journal.PollInterval,
		LeaseTTL:            cfg.Service.LeaseTTL,
		MaintenanceSchedule: cfg.Service.MaintenanceSchedule,
		SeedIdentity:        cfg.Journal.SeedIdentity,
		Logger:              logger,
	}
}

// startError turns the fatal start conditions into user-facing errors.
func startError(err error, cfg *config.Config) error {
	switch {
	case errors.Is(err, watcher.ErrNoJournalDir):
		return fmt.Errorf("journal directory %s does not exist (set journal.dir or --journal-dir): %w", cfg.Journal.Dir, err)
	case errors.Is(err, store.ErrLeaseHeld):
		return fmt.Errorf("another journalwatch service owns %s: %w", cfg.Store.Path, err)
	default:
		return fmt.Errorf("failed to start service: %w", err)
	}
}

func stopService(launcher *watcher.Launcher) error {
	ctx, cancel := context.WithTimeout(context.Background(), serviceWaitTimeout)
	defer cancel()

	spinner := output.NewSpinner("Stopping service").WithTimeout(serviceWaitTimeout).Start()
	err := launcher.Stop(ctx)
	if errors.Is(err, watcher.ErrNotRunning) {
		spinner.StopWithMessage("Service is not running")
		return nil
	}
	if err != nil {
		spinner.Stop()
		return fmt.Errorf("failed to stop service: %w", err)
	}
	spinner.StopWithMessage("✓ Service stopped")
	return nil
}

func startService(launcher *watcher.Launcher, cfg *config.Config) error {
	if err := checkJournalDir(cfg); err != nil {
		return err
	}

	spinner := output.NewSpinner("Starting service").WithTimeout(serviceWaitTimeout).Start()
	pid, err := launcher.Start(cfg.Journal.Dir)
	if errors.Is(err, watcher.ErrAlreadyRunning) {
		spinner.Stop()
		return fmt.Errorf("service already running (see 'journalwatch status')")
	}
	if err != nil {
		spinner.Stop()
		return fmt.Errorf("failed to start daemon: %w", err)
	}
	return confirmStarted(launcher, spinner, pid, cfg)
}

func restartService(launcher *watcher.Launcher, cfg *config.Config) error {
	if err := checkJournalDir(cfg); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), serviceWaitTimeout)
	defer cancel()

	spinner := output.NewSpinner("Restarting service").WithTimeout(serviceWaitTimeout).Start()
	pid, err := launcher.Restart(ctx, cfg.Journal.Dir)
	if err != nil {
		spinner.Stop()
		return fmt.Errorf("failed to restart service: %w", err)
	}
	return confirmStarted(launcher, spinner, pid, cfg)
}

// checkJournalDir fails early so a daemon child is never forked for a
// directory it would refuse.
func checkJournalDir(cfg *config.Config) error {
	if info, err := os.Stat(cfg.Journal.Dir); err != nil || !info.IsDir() {
		return startError(fmt.Errorf("%w: %s", watcher.ErrNoJournalDir, cfg.Journal.Dir), cfg)
	}
	return nil
}

// confirmStarted waits for the child's first heartbeat and reports it.
func confirmStarted(launcher *watcher.Launcher, spinner *output.Spinner, pid int, cfg *config.Config) error {
	if err := waitRunning(launcher, serviceWaitTimeout); err != nil {
		spinner.Stop()
		return fmt.Errorf("daemon (PID %d) did not report a heartbeat, see %s: %w", pid, watchLogFile, err)
	}
	spinner.StopWithMessage("✓ Service started")

	fmt.Printf("\nJournal ingestion running in the background\n")
	fmt.Printf("  PID:         %d\n", pid)
	fmt.Printf("  Journal dir: %s\n", cfg.Journal.Dir)
	fmt.Printf("  Log file:    %s\n", watchLogFile)
	fmt.Printf("\nTo stop: journalwatch watch --stop\n")
	return nil
}

// waitRunning polls the heartbeat until it shows a live service.
func waitRunning(launcher *watcher.Launcher, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for {
		running, err := launcher.IsRunning()
		if err != nil {
			return err
		}
		if running {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("timed out after %s", timeout)
		}
		time.Sleep(100 * time.Millisecond)
	}
}

// runServiceChild runs as the daemon child. Stdout and stderr are the log
// file, so everything goes through the logger.
func runServiceChild(cfg *config.Config, st *store.Store) error {
	logger, closer := logging.New(logging.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		File:   cfg.Logging.File,
		Output: os.Stderr,
	})
	defer closer.Close()

	w, err := watcher.New(st, watcherOptions(cfg, logger))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	if err := w.Run(ctx); err != nil {
		logger.WithError(err).Error("service exited")
		return startError(err, cfg)
	}
	return nil
}

func runServiceForeground(cfg *config.Config, st *store.Store) error {
	logger, closer := logging.New(logging.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		File:   cfg.Logging.File,
	})
	defer closer.Close()

	opts := watcherOptions(cfg, logger)
	opts.Notifier = projector.NotifierFunc(func(d store.Detection, mc store.MaterialConfig) {
		fmt.Println(output.FormatTrackedAlert(d, mc))
	})
	w, err := watcher.New(st, opts)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	if err := w.Start(ctx); err != nil {
		return startError(err, cfg)
	}
	fmt.Println("✓ Service started")
	fmt.Printf("  Journal dir: %s\n", cfg.Journal.Dir)
	fmt.Printf("  Database:    %s\n", cfg.Store.Path)
	fmt.Println()
	fmt.Println("Press Ctrl+C to stop.")
	fmt.Println()

	select {
	case <-ctx.Done():
		fmt.Println("\nShutting down...")
	case <-w.Done():
	}

	if err := w.Stop(); err != nil {
		return fmt.Errorf("service stopped: %w", err)
	}
	fmt.Println("✓ Service stopped")
	return nil
}
