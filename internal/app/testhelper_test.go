package app

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"

	"github.com/blackwell-systems/journalwatch/internal/store"
)

// setupTestEnv points HOME, the config dir and --db at a temp directory and
// resets every flag to its default. It returns the database path.
func setupTestEnv(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	t.Setenv("NO_COLOR", "1")

	resetFlags(RootCmd)
	t.Cleanup(func() { resetFlags(RootCmd) })

	dbPath = filepath.Join(home, ".journalwatch", "test.db")
	return dbPath
}

// resetFlags restores every flag in the command tree to its default.
// Cobra commands are package globals, so values and Changed marks would
// otherwise leak between executions.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}

// executeCommand runs the root command with args and returns what the
// command wrote to its output.
func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	RootCmd.SetOut(buf)
	RootCmd.SetErr(buf)
	RootCmd.SetArgs(args)
	db := dbPath
	defer func() {
		RootCmd.SetOut(nil)
		RootCmd.SetErr(nil)
		RootCmd.SetArgs(nil)
		resetFlags(RootCmd)
		dbPath = db
	}()

	err := RootCmd.Execute()
	return buf.String(), err
}

// openTestStore opens the file-backed test database with its schema.
func openTestStore(t *testing.T, path string) *store.Store {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	st, err := store.New(path)
	require.NoError(t, err)
	require.NoError(t, st.CreateSchema())
	t.Cleanup(func() { st.Close() })
	return st
}
