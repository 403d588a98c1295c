// Package watcher runs the journal ingestion service.
//
// A Watcher holds the store's service lease, follows the newest journal file
// in a directory and projects each appended event into the store in file
// order. Every iteration it refreshes the heartbeat record that readers use
// to decide whether the service is alive; running is cleared before the lease
// is released on shutdown.
//
// Key features:
//   - Single-writer guarantee via the store lease (no PID file)
//   - Rotation to newer journals without replaying old content
//   - Optional commander and system seed from the current journal
//   - fsnotify wake-ups on top of a fixed poll interval
//   - Scheduled WAL checkpoints
//
// Launcher runs the same service as a detached child process and stops it
// through the heartbeat's pid.
//
// Example usage:
//
//	st, err := store.New(dbPath)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer st.Close()
//
//	w, err := watcher.New(st, watcher.Options{JournalDir: dir})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
//	defer stop()
//	if err := w.Run(ctx); err != nil {
//		log.Fatal(err)
//	}
package watcher
