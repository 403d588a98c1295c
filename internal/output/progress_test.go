package output

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func TestSpinner_NonTTYPrintsOnce(t *testing.T) {
	buf := &bytes.Buffer{}
	s := NewSpinner("Waiting for service to stop")
	s.SetWriter(buf)
	s.Start()

	time.Sleep(150 * time.Millisecond)
	s.Stop()

	got := buf.String()
	if got != "Waiting for service to stop...\n" {
		t.Errorf("Spinner on non-TTY writer = %q, want single message line", got)
	}
}

func TestSpinner_StartStop(t *testing.T) {
	buf := &bytes.Buffer{}
	s := NewSpinner("Test")
	s.SetWriter(buf)

	s.Start()
	if !s.running {
		t.Error("Spinner should be running after Start()")
	}

	s.Stop()
	if s.running {
		t.Error("Spinner should not be running after Stop()")
	}
}

func TestSpinner_MultipleStartsAndStops(t *testing.T) {
	buf := &bytes.Buffer{}
	s := NewSpinner("Test")
	s.SetWriter(buf)

	s.Start()
	s.Start()
	if strings.Count(buf.String(), "Test...") != 1 {
		t.Errorf("second Start() should be a no-op, got %q", buf.String())
	}

	// Multiple stops should not panic
	s.Stop()
	s.Stop()
	s.Stop()
}

func TestSpinner_StopWithMessage(t *testing.T) {
	buf := &bytes.Buffer{}
	s := NewSpinner("Working")
	s.SetWriter(buf)
	s.Start()

	s.StopWithMessage("✓ Service stopped")

	if !strings.Contains(buf.String(), "✓ Service stopped") {
		t.Errorf("Spinner should contain final message, got: %q", buf.String())
	}
}

func TestSpinner_FormatMessage(t *testing.T) {
	s := NewSpinner("Waiting")
	if got := s.formatMessage(); got != "Waiting" {
		t.Errorf("formatMessage() without timeout = %q, want %q", got, "Waiting")
	}

	s.WithTimeout(10 * time.Second)
	s.startTime = time.Now()
	got := s.formatMessage()
	if !strings.HasPrefix(got, "Waiting (") || !strings.HasSuffix(got, "s remaining)") {
		t.Errorf("formatMessage() with timeout = %q, want remaining time", got)
	}

	s.startTime = time.Now().Add(-time.Minute)
	if got := s.formatMessage(); got != "Waiting (0s remaining)" {
		t.Errorf("formatMessage() past timeout = %q, want 0s remaining", got)
	}
}

func TestSpinner_StopClearsLastFrame(t *testing.T) {
	buf := &bytes.Buffer{}
	s := NewSpinner("Starting service")
	s.SetWriter(buf)
	s.Start()
	buf.Reset()

	// As if one frame of "|  Starting service" had been drawn.
	s.mu.Lock()
	s.drawn = len("|  Starting service")
	s.mu.Unlock()
	s.Stop()

	want := "\r" + strings.Repeat(" ", len("|  Starting service")) + "\r"
	if buf.String() != want {
		t.Errorf("Stop() = %q, want %q", buf.String(), want)
	}
}

func BenchmarkFormatSize(b *testing.B) {
	sizes := []uint64{
		512,
		1024 * 1024,
		1024 * 1024 * 1024,
		10 * 1024 * 1024 * 1024,
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		formatSize(sizes[i%len(sizes)])
	}
}

func BenchmarkFormatRelativeTime(b *testing.B) {
	times := []time.Time{
		time.Now().Add(-30 * time.Second),
		time.Now().Add(-5 * time.Minute),
		time.Now().Add(-2 * time.Hour),
		time.Now().Add(-3 * 24 * time.Hour),
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		formatRelativeTime(times[i%len(times)])
	}
}
