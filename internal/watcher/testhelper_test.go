package watcher

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"

	"github.com/blackwell-systems/journalwatch/internal/store"
)

// setupTestStore creates an in-memory SQLite store for tests and registers
// cleanup with t.Cleanup so callers don't need explicit defer.
func setupTestStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.New(":memory:")
	if err != nil {
		t.Fatalf("setupTestStore: open: %v", err)
	}
	if err := st.CreateSchema(); err != nil {
		st.Close()
		t.Fatalf("setupTestStore: schema: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

// setupTestWatcher builds a fast-polling watcher over dir. The watcher is
// stopped on cleanup.
func setupTestWatcher(t *testing.T, st *store.Store, dir string, mutate ...func(*Options)) (*Watcher, *logtest.Hook) {
	t.Helper()
	logger, hook := logtest.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	opts := Options{
		JournalDir:   dir,
		PollInterval: 25 * time.Millisecond,
		LeaseTTL:     5 * time.Second,
		Logger:       logger,
	}
	for _, m := range mutate {
		m(&opts)
	}

	w, err := New(st, opts)
	require.NoError(t, err)
	t.Cleanup(func() { w.Stop() })
	return w, hook
}

func writeJournal(t *testing.T, path string, lines ...string) {
	t.Helper()
	var data []byte
	for _, l := range lines {
		data = append(data, l...)
		data = append(data, '\n')
	}
	require.NoError(t, os.WriteFile(path, data, 0644))
}

func appendJournal(t *testing.T, path string, lines ...string) {
	t.Helper()
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY|os.O_CREATE, 0644)
	require.NoError(t, err)
	defer f.Close()
	for _, l := range lines {
		_, err := f.WriteString(l + "\n")
		require.NoError(t, err)
	}
}

func journalPath(dir, token string) string {
	return filepath.Join(dir, "Journal."+token+".log")
}
