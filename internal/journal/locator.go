package journal

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrNotFound is returned when no journal file can be resolved.
var ErrNotFound = errors.New("journal: no journal file found")

const (
	filePrefix = "Journal."
	fileSuffix = ".log"
)

// IsJournalName reports whether name follows the Journal.<token>.log
// convention with a non-empty token.
func IsJournalName(name string) bool {
	return len(name) > len(filePrefix)+len(fileSuffix) &&
		strings.HasPrefix(name, filePrefix) &&
		strings.HasSuffix(name, fileSuffix)
}

// Locate returns the path of the current journal file in dir: the matching
// file with the lexicographically greatest name. Modification times are
// ignored. A missing directory, a path that is not a directory, or a
// directory without matching files all return an error wrapping ErrNotFound.
func Locate(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNotFound, err)
	}

	newest := ""
	for _, entry := range entries {
		if entry.IsDir() || !IsJournalName(entry.Name()) {
			continue
		}
		if entry.Name() > newest {
			newest = entry.Name()
		}
	}
	if newest == "" {
		return "", fmt.Errorf("%w in %s", ErrNotFound, dir)
	}
	return filepath.Join(dir, newest), nil
}
