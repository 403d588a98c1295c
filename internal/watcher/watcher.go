package watcher

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/blackwell-systems/journalwatch/internal/journal"
	"github.com/blackwell-systems/journalwatch/internal/projector"
	"github.com/blackwell-systems/journalwatch/internal/store"
)

// ErrNoJournalDir is returned by Start when the journal directory does not
// exist. It is fatal: the service does not retry.
var ErrNoJournalDir = errors.New("journal directory does not exist")

// ErrLeaseLost is returned by Run when another process took over the
// service lease while this one was running.
var ErrLeaseLost = errors.New("service lease lost to another process")

// consecutive read failures before a warning is logged
const readFailureWarnThreshold = 3

// journalSource is the part of journal.Tailer the loop drives.
type journalSource interface {
	Poll() (journal.Batch, error)
	Path() string
	Close() error
}

func newTailerSource(dir string) journalSource {
	return journal.NewTailer(dir)
}

// State is the lifecycle state of a Watcher.
type State int32

const (
	Stopped State = iota
	Starting
	Running
	Stopping
)

func (s State) String() string {
	switch s {
	case Stopped:
		return "stopped"
	case Starting:
		return "starting"
	case Running:
		return "running"
	case Stopping:
		return "stopping"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

// Options configures a Watcher. Zero values take the defaults noted.
type Options struct {
	JournalDir          string
	PollInterval        time.Duration // default 500ms
	LeaseTTL            time.Duration // default 30s
	MaintenanceSchedule string        // cron expression; empty disables
	SeedIdentity        bool
	Owner               store.LeaseOwner // default store.CurrentOwner()
	Logger              *logrus.Logger
	Notifier            projector.Notifier
}

// Watcher is the ingestion service: it tails the journal, projects each
// event into the store in file order, and keeps the heartbeat fresh.
type Watcher struct {
	store     *store.Store
	opts      Options
	log       *logrus.Entry
	projector *projector.Projector
	schedule  cron.Schedule
	newSource func(dir string) journalSource

	state  atomic.Int32
	stopCh chan struct{}
	doneCh chan struct{}
	once   sync.Once
	err    error // set by the loop before doneCh closes

	// Owned by the loop goroutine after Start.
	tailer          journalSource
	notify          *dirNotifier
	readFailures    int
	currentPath     string
	lastBeat        time.Time
	nextMaintenance time.Time
	noSourceLog     rate.Sometimes
}

// New creates a new Watcher instance.
func New(st *store.Store, opts Options) (*Watcher, error) {
	if st == nil {
		return nil, fmt.Errorf("store cannot be nil")
	}
	if opts.JournalDir == "" {
		return nil, fmt.Errorf("journal directory cannot be empty")
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = 500 * time.Millisecond
	}
	if opts.LeaseTTL <= 0 {
		opts.LeaseTTL = 30 * time.Second
	}
	if opts.Owner.PID == 0 {
		opts.Owner = store.CurrentOwner()
	}
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}

	w := &Watcher{
		store:       st,
		opts:        opts,
		log:         opts.Logger.WithField("component", "watcher"),
		newSource:   newTailerSource,
		noSourceLog: rate.Sometimes{First: 1, Interval: time.Minute},
	}

	if opts.MaintenanceSchedule != "" {
		sched, err := cron.ParseStandard(opts.MaintenanceSchedule)
		if err != nil {
			return nil, fmt.Errorf("invalid maintenance schedule %q: %w", opts.MaintenanceSchedule, err)
		}
		w.schedule = sched
	}

	var popts []projector.Option
	if opts.Notifier != nil {
		popts = append(popts, projector.WithNotifier(opts.Notifier))
	}
	w.projector = projector.New(st, opts.Logger, popts...)
	return w, nil
}

// State returns the current lifecycle state.
func (w *Watcher) State() State {
	return State(w.state.Load())
}

// Start acquires the service lease, resolves the journal, optionally seeds
// commander and system from it, marks the heartbeat running and launches the
// loop. It fails with ErrNoJournalDir or store.ErrLeaseHeld without
// retrying.
func (w *Watcher) Start(ctx context.Context) error {
	if !w.state.CompareAndSwap(int32(Stopped), int32(Starting)) {
		return fmt.Errorf("watcher is %s", w.State())
	}

	if err := w.start(); err != nil {
		w.state.Store(int32(Stopped))
		return err
	}

	w.stopCh = make(chan struct{})
	w.doneCh = make(chan struct{})
	w.once = sync.Once{}
	w.err = nil
	w.state.Store(int32(Running))

	go w.loop(ctx)

	w.log.WithFields(logrus.Fields{
		"journal_dir": w.opts.JournalDir,
		"interval":    w.opts.PollInterval,
		"pid":         w.opts.Owner.PID,
	}).Info("service started")
	return nil
}

func (w *Watcher) start() error {
	info, err := os.Stat(w.opts.JournalDir)
	if err != nil || !info.IsDir() {
		return fmt.Errorf("%w: %s", ErrNoJournalDir, w.opts.JournalDir)
	}

	if _, err := w.store.AcquireLease(w.opts.Owner, w.opts.LeaseTTL); err != nil {
		return fmt.Errorf("failed to acquire service lease: %w", err)
	}

	w.tailer = w.newSource(w.opts.JournalDir)
	w.lastBeat = time.Time{}
	w.readFailures = 0
	w.currentPath = ""

	// First resolution: opens the current journal at its end.
	if _, err := w.tailer.Poll(); err != nil {
		w.log.WithError(err).Warn("initial journal poll failed")
	}
	if path := w.tailer.Path(); path != "" {
		if w.opts.SeedIdentity {
			w.seedIdentity(path)
		}
		w.trackPath(path)
	}

	running := true
	interval := w.opts.PollInterval.Seconds()
	file := w.tailer.Path()
	err = w.store.UpdateHeartbeat(store.HeartbeatUpdate{
		Running:      &running,
		PID:          &w.opts.Owner.PID,
		JournalFile:  &file,
		PollInterval: &interval,
		Touch:        true,
	})
	if err != nil {
		w.tailer.Close()
		if rerr := w.store.ReleaseLease(w.opts.Owner); rerr != nil {
			w.log.WithError(rerr).Warn("failed to release lease after start failure")
		}
		return fmt.Errorf("failed to write heartbeat: %w", err)
	}
	w.lastBeat = time.Now()

	if w.schedule != nil {
		w.nextMaintenance = w.schedule.Next(time.Now())
	}

	w.notify = newDirNotifier(w.opts.JournalDir, w.log)
	return nil
}

// Stop asks the loop to finish its current iteration and waits for it to
// write running=false, release the lease and close the journal. Stopping a
// watcher that is not running is a no-op.
func (w *Watcher) Stop() error {
	if w.doneCh == nil {
		return nil
	}
	w.once.Do(func() { close(w.stopCh) })
	<-w.doneCh
	return w.err
}

// Done is closed when the loop of the current run exits, whether by Stop,
// context cancellation or losing the lease. Nil before Start.
func (w *Watcher) Done() <-chan struct{} {
	return w.doneCh
}

// Run starts the watcher and blocks until ctx is cancelled or the loop exits
// on its own, then stops it.
func (w *Watcher) Run(ctx context.Context) error {
	if err := w.Start(ctx); err != nil {
		return err
	}
	select {
	case <-ctx.Done():
	case <-w.doneCh:
	}
	return w.Stop()
}

// loop is the single goroutine that touches the tailer and projects events.
// Cancellation is checked between iterations only.
func (w *Watcher) loop(ctx context.Context) {
	defer close(w.doneCh)

	timer := time.NewTimer(w.opts.PollInterval)
	defer timer.Stop()

	for {
		select {
		case <-w.stopCh:
			w.shutdown()
			return
		case <-ctx.Done():
			w.shutdown()
			return
		default:
		}

		if err := w.iterate(); err != nil {
			w.err = err
			w.abandon()
			return
		}

		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		timer.Reset(w.opts.PollInterval)

		select {
		case <-timer.C:
		case <-w.notify.C():
		case <-w.stopCh:
		case <-ctx.Done():
		}
	}
}

// iterate runs one poll, decode, project pass followed by the periodic
// heartbeat and maintenance. Only losing the lease is returned as an error.
func (w *Watcher) iterate() error {
	batch, err := w.tailer.Poll()
	switch {
	case err != nil:
		w.readFailures++
		entry := w.log.WithError(err).WithField("consecutive", w.readFailures)
		if w.readFailures >= readFailureWarnThreshold {
			entry.Warn("journal read failing")
		} else {
			entry.Debug("journal read failed, retrying next poll")
		}
	case batch.NoSource:
		w.readFailures = 0
		w.noSourceLog.Do(func() {
			w.log.WithField("journal_dir", w.opts.JournalDir).Info("waiting for a journal file")
		})
	default:
		w.readFailures = 0
		if batch.Rotated {
			w.log.WithField("path", w.tailer.Path()).Info("journal rotated")
		}
		w.projectLines(batch.Lines)
	}

	if path := w.tailer.Path(); path != "" && path != w.currentPath {
		w.trackPath(path)
	}

	now := time.Now()
	if w.heartbeatDue(now) {
		if err := w.heartbeat(now); err != nil {
			return err
		}
	}

	w.maybeMaintain(now)
	return nil
}

// projectLines decodes and projects lines in order. Malformed lines and
// store failures are logged and skipped.
func (w *Watcher) projectLines(lines []string) {
	for _, line := range lines {
		ev, err := journal.Decode(line)
		if err != nil {
			var malformed *journal.MalformedError
			if errors.As(err, &malformed) {
				w.log.WithField("reason", malformed.Reason).Debug("discarding malformed journal line")
			} else {
				w.log.WithError(err).Debug("discarding journal line")
			}
			continue
		}

		if err := w.projector.Project(ev); err != nil {
			entry := w.log.WithError(err).WithField("event", ev.Name)
			if store.IsBusy(err) {
				entry.Warn("store busy, event dropped")
			} else {
				entry.Error("failed to project event")
			}
		}
	}
}

// trackPath records a newly followed journal in the session and heartbeat.
func (w *Watcher) trackPath(path string) {
	w.currentPath = path
	if err := w.store.UpdateSession(store.SessionUpdate{LogFile: &path}); err != nil {
		w.log.WithError(err).Warn("failed to record journal path")
	}
	if w.State() == Running {
		if err := w.store.UpdateHeartbeat(store.HeartbeatUpdate{JournalFile: &path}); err != nil {
			w.log.WithError(err).Warn("failed to record journal path in heartbeat")
		}
	}
}

// heartbeatDue reports whether this iteration writes the heartbeat. Every
// iteration does, except notifier wake-ups within half an interval of the
// last write, so the record never ages past 1.5 intervals plus one pass.
func (w *Watcher) heartbeatDue(now time.Time) bool {
	return now.Sub(w.lastBeat) >= w.opts.PollInterval/2
}

// heartbeat refreshes the liveness timestamp and renews the lease.
func (w *Watcher) heartbeat(now time.Time) error {
	if err := w.store.RenewLease(w.opts.Owner, w.opts.LeaseTTL); err != nil {
		if errors.Is(err, store.ErrLeaseHeld) {
			w.log.WithError(err).Error("service lease lost, stopping")
			return fmt.Errorf("%w: %v", ErrLeaseLost, err)
		}
		w.log.WithError(err).Warn("failed to renew lease")
	}
	if err := w.store.UpdateHeartbeat(store.HeartbeatUpdate{Touch: true}); err != nil {
		w.log.WithError(err).Warn("failed to write heartbeat")
		return nil
	}
	w.lastBeat = now
	return nil
}

// maybeMaintain checkpoints the WAL when the maintenance schedule is due.
func (w *Watcher) maybeMaintain(now time.Time) {
	if w.schedule == nil || now.Before(w.nextMaintenance) {
		return
	}
	w.nextMaintenance = w.schedule.Next(now)
	if err := w.store.Checkpoint(); err != nil {
		w.log.WithError(err).Warn("WAL checkpoint failed")
		return
	}
	w.log.WithField("next", w.nextMaintenance).Debug("WAL checkpoint complete")
}

// shutdown runs the Stopping sequence: running=false is written before the
// lease is released so a reader never sees a live flag from a dead process.
func (w *Watcher) shutdown() {
	w.state.Store(int32(Stopping))

	running := false
	if err := w.store.UpdateHeartbeat(store.HeartbeatUpdate{Running: &running, Touch: true}); err != nil {
		w.log.WithError(err).Error("failed to clear running flag")
	}
	if err := w.store.ReleaseLease(w.opts.Owner); err != nil {
		w.log.WithError(err).Warn("failed to release lease")
	}
	w.closeResources()
	w.state.Store(int32(Stopped))
	w.log.Info("service stopped")
}

// abandon stops without touching the heartbeat or lease, which now belong
// to another process.
func (w *Watcher) abandon() {
	w.state.Store(int32(Stopping))
	w.closeResources()
	w.state.Store(int32(Stopped))
}

func (w *Watcher) closeResources() {
	if err := w.tailer.Close(); err != nil {
		w.log.WithError(err).Warn("failed to close journal")
	}
	w.notify.Close()
}
