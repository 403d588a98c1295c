package journal

import (
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collectBackward(t *testing.T, path string) []string {
	t.Helper()
	var lines []string
	require.NoError(t, ScanBackward(path, func(line string) bool {
		lines = append(lines, line)
		return true
	}))
	return lines
}

func TestScanBackward_Order(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Journal.0001.log")
	writeFile(t, path, "one\r\ntwo\n\nthree\nunterminated")

	assert.Equal(t, []string{"unterminated", "three", "two", "one"}, collectBackward(t, path))
}

func TestScanBackward_AcrossBlocks(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Journal.0001.log")

	var want []string
	var b strings.Builder
	for i := 0; i < 3000; i++ {
		line := fmt.Sprintf("line-%04d-%s", i, strings.Repeat("p", 50))
		b.WriteString(line + "\n")
		want = append([]string{line}, want...)
	}
	writeFile(t, path, b.String())

	assert.Equal(t, want, collectBackward(t, path))
}

func TestScanBackward_StopsEarly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Journal.0001.log")
	writeFile(t, path, "a\nb\nc\n")

	var seen []string
	require.NoError(t, ScanBackward(path, func(line string) bool {
		seen = append(seen, line)
		return line != "b"
	}))
	assert.Equal(t, []string{"c", "b"}, seen)
}

func TestScanBackward_MissingFile(t *testing.T) {
	err := ScanBackward(filepath.Join(t.TempDir(), "nope.log"), func(string) bool { return true })
	assert.Error(t, err)
}
