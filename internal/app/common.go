package app

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/blackwell-systems/journalwatch/internal/config"
)

// getDefaultLogFile returns ~/.journalwatch/watch.log, creating the
// directory if needed.
func getDefaultLogFile() (string, error) {
	dir, err := config.DataDir()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create journalwatch directory: %w", err)
	}
	return filepath.Join(dir, "watch.log"), nil
}
