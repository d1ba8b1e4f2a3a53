package util

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestNewLoggerLevels(t *testing.T) {
	quiet, err := NewLogger(false)
	if err != nil {
		t.Fatalf("NewLogger(false): %v", err)
	}
	if quiet.Core().Enabled(zap.DebugLevel) {
		t.Errorf("expected debug disabled for non-verbose logger")
	}

	loud, err := NewLogger(true)
	if err != nil {
		t.Fatalf("NewLogger(true): %v", err)
	}
	if !loud.Core().Enabled(zap.DebugLevel) {
		t.Errorf("expected debug enabled for verbose logger")
	}
}

func TestNewLoggerWithFileWritesJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "market.log")

	logger, err := NewLoggerWithFile(path, false)
	if err != nil {
		t.Fatalf("NewLoggerWithFile: %v", err)
	}
	logger.Sugar().Infow("offers_crossed", "outcome", "surplus")
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	line := string(data)
	if !strings.Contains(line, `"msg":"offers_crossed"`) {
		t.Errorf("expected event in log file, got %q", line)
	}
	if !strings.Contains(line, `"ts":`) {
		t.Errorf("expected ts key in log file, got %q", line)
	}
}

func TestFixedClockSteps(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := &FixedClock{T: start, Step: time.Second}

	if got := c.Now(); !got.Equal(start) {
		t.Errorf("expected %v, got %v", start, got)
	}
	if got := c.Now(); !got.Equal(start.Add(time.Second)) {
		t.Errorf("expected %v, got %v", start.Add(time.Second), got)
	}
}
