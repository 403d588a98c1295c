package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Levels(t *testing.T) {
	tests := map[string]logrus.Level{
		"debug":   logrus.DebugLevel,
		"info":    logrus.InfoLevel,
		"warn":    logrus.WarnLevel,
		"warning": logrus.WarnLevel,
		"error":   logrus.ErrorLevel,
		"":        logrus.InfoLevel,
		"bogus":   logrus.InfoLevel,
	}
	for in, want := range tests {
		logger, closer := New(Options{Level: in, Output: &bytes.Buffer{}})
		assert.Equal(t, want, logger.GetLevel(), in)
		assert.NoError(t, closer.Close())
	}
}

func TestNew_TextFormat(t *testing.T) {
	var buf bytes.Buffer
	logger, _ := New(Options{Output: &buf})

	logger.WithField("component", "watcher").Info("service started")

	out := buf.String()
	assert.Contains(t, out, "service started")
	assert.Contains(t, out, "component=watcher")
	assert.NotContains(t, out, "\x1b[", "no colors when not a terminal")
}

func TestNew_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger, _ := New(Options{Format: "json", Output: &buf})

	logger.WithField("material", "Painite").Warn("tracked")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "tracked", entry["msg"])
	assert.Equal(t, "warning", entry["level"])
	assert.Equal(t, "Painite", entry["material"])
}

func TestNew_FileSink(t *testing.T) {
	var buf bytes.Buffer
	path := filepath.Join(t.TempDir(), "logs", "journalwatch.log")

	logger, closer := New(Options{File: path, Output: &buf})
	logger.Info("to both")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "to both")
	assert.Contains(t, buf.String(), "to both")
}

func TestNew_UnopenableFileFallsBack(t *testing.T) {
	var buf bytes.Buffer
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0644))

	logger, closer := New(Options{File: filepath.Join(blocker, "sub", "x.log"), Output: &buf})
	defer closer.Close()

	logger.Info("still logging")
	out := buf.String()
	assert.True(t, strings.Contains(out, "could not open log file"))
	assert.Contains(t, out, "still logging")
}
