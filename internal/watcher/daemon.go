package watcher

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"syscall"
	"time"

	"github.com/shirou/gopsutil/v3/process"

	"github.com/blackwell-systems/journalwatch/internal/store"
)

var (
	// ErrAlreadyRunning is returned by Launcher.Start when the heartbeat
	// shows a live service.
	ErrAlreadyRunning = errors.New("service already running")
	// ErrNotRunning is returned by Launcher.Stop when no service is running.
	ErrNotRunning = errors.New("service not running")
)

// Launcher starts and stops the ingestion service as a detached process.
// Liveness is read from the store's heartbeat record only; the operating
// system is consulted just to deliver the termination signal.
type Launcher struct {
	store      *store.Store
	executable string
	logFile    string
	extraArgs  []string
	now        func() time.Time
}

// NewLauncher returns a Launcher that re-executes the current binary. Output
// of the child goes to logFile; extraArgs (for example --db) are appended to
// the child's command line.
func NewLauncher(st *store.Store, logFile string, extraArgs ...string) (*Launcher, error) {
	executable, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("failed to get executable path: %w", err)
	}
	return &Launcher{
		store:      st,
		executable: executable,
		logFile:    logFile,
		extraArgs:  extraArgs,
		now:        time.Now,
	}, nil
}

// IsRunning reports whether the heartbeat shows a live service: running is
// set and the last heartbeat is within twice the poll interval.
func (l *Launcher) IsRunning() (bool, error) {
	hb, err := l.store.GetHeartbeat()
	if err != nil {
		return false, err
	}
	return hb.Alive(l.now()), nil
}

// Start forks `watch --daemon-child` for journalDir in a new session and
// returns the child's pid. It does not wait for the child to acquire the
// lease; a child that cannot start exits non-zero and logs why.
func (l *Launcher) Start(journalDir string) (int, error) {
	running, err := l.IsRunning()
	if err != nil {
		return 0, fmt.Errorf("failed to check service status: %w", err)
	}
	if running {
		return 0, ErrAlreadyRunning
	}

	logF, err := os.OpenFile(l.logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return 0, fmt.Errorf("failed to open log file: %w", err)
	}
	defer logF.Close()

	cmd := exec.Command(l.executable, l.childArgs(journalDir)...)
	cmd.Stdout = logF
	cmd.Stderr = logF
	cmd.Stdin = nil
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Setsid: true, // Create new session
	}

	if err := cmd.Start(); err != nil {
		return 0, fmt.Errorf("failed to start daemon process: %w", err)
	}
	pid := cmd.Process.Pid

	// Detach from parent
	if err := cmd.Process.Release(); err != nil {
		return 0, fmt.Errorf("failed to release process: %w", err)
	}
	return pid, nil
}

func (l *Launcher) childArgs(journalDir string) []string {
	args := []string{"watch", "--daemon-child", "--journal-dir", journalDir}
	return append(args, l.extraArgs...)
}

// Stop sends SIGTERM to the pid in the heartbeat record and waits until the
// heartbeat reports running=false or ctx is done. A heartbeat naming a
// process that no longer exists counts as stopped.
//
// A stale heartbeat is never signalled: its pid may have been reused by an
// unrelated process. Stop returns ErrNotRunning for it, leaving the stale
// record for the next service to overwrite.
func (l *Launcher) Stop(ctx context.Context) error {
	hb, err := l.store.GetHeartbeat()
	if err != nil {
		return fmt.Errorf("failed to read heartbeat: %w", err)
	}
	if !hb.Alive(l.now()) || hb.PID == 0 {
		return ErrNotRunning
	}

	proc, err := process.NewProcessWithContext(ctx, int32(hb.PID))
	if err != nil {
		if errors.Is(err, process.ErrorProcessNotRunning) {
			return nil
		}
		return fmt.Errorf("failed to find process %d: %w", hb.PID, err)
	}
	if err := proc.TerminateWithContext(ctx); err != nil {
		return fmt.Errorf("failed to send SIGTERM to process %d: %w", hb.PID, err)
	}

	return l.waitStopped(ctx, hb.Interval())
}

// waitStopped polls the heartbeat until running is false.
func (l *Launcher) waitStopped(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = 500 * time.Millisecond
	}
	ticker := time.NewTicker(interval / 2)
	defer ticker.Stop()

	for {
		hb, err := l.store.GetHeartbeat()
		if err != nil {
			return fmt.Errorf("failed to read heartbeat: %w", err)
		}
		if !hb.Running {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("waiting for service to stop: %w", ctx.Err())
		case <-ticker.C:
		}
	}
}

// Restart stops any running service and starts a new one for journalDir.
func (l *Launcher) Restart(ctx context.Context, journalDir string) (int, error) {
	if err := l.Stop(ctx); err != nil && !errors.Is(err, ErrNotRunning) {
		return 0, err
	}
	return l.Start(journalDir)
}

// ProcessStats describes the service process for status output.
type ProcessStats struct {
	PID        int
	RSSBytes   uint64
	CPUPercent float64
	StartedAt  time.Time
}

// Stats reports resource usage of the process named in the heartbeat.
func (l *Launcher) Stats(ctx context.Context) (*ProcessStats, error) {
	hb, err := l.store.GetHeartbeat()
	if err != nil {
		return nil, err
	}
	if hb.PID == 0 {
		return nil, ErrNotRunning
	}

	proc, err := process.NewProcessWithContext(ctx, int32(hb.PID))
	if err != nil {
		return nil, fmt.Errorf("failed to find process %d: %w", hb.PID, err)
	}

	stats := &ProcessStats{PID: hb.PID}
	if mem, err := proc.MemoryInfoWithContext(ctx); err == nil {
		stats.RSSBytes = mem.RSS
	}
	if cpu, err := proc.CPUPercentWithContext(ctx); err == nil {
		stats.CPUPercent = cpu
	}
	if created, err := proc.CreateTimeWithContext(ctx); err == nil {
		stats.StartedAt = time.UnixMilli(created)
	}
	return stats, nil
}
