package logger

import (
	"bytes"
	"strings"
	"testing"
)

func TestLogger_FiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New(LevelWarn, &buf)

	l.Debug("debug %d", 1)
	l.Info("info")
	l.Warn("warn %s", "x")
	l.Error("error")

	out := buf.String()
	if strings.Contains(out, "debug 1") || strings.Contains(out, "INFO") {
		t.Errorf("messages below WARN should be dropped, got:\n%s", out)
	}
	if !strings.Contains(out, "WARN: warn x") || !strings.Contains(out, "ERROR: error") {
		t.Errorf("missing WARN/ERROR lines, got:\n%s", out)
	}
}

func TestLogger_With(t *testing.T) {
	var buf bytes.Buffer
	l := New(LevelDebug, &buf)
	child := l.With("cache").With("evict")

	child.Info("released %s", "en→es")
	if !strings.Contains(buf.String(), "INFO: [cache.evict] released en→es") {
		t.Errorf("unexpected output: %q", buf.String())
	}

	buf.Reset()
	l.SetLevel(LevelError)
	child.Info("dropped")
	if buf.Len() != 0 {
		t.Error("derived loggers should share the parent's level")
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    Level
		wantErr bool
	}{
		{"debug", LevelDebug, false},
		{"INFO", LevelInfo, false},
		{"", LevelInfo, false},
		{"warning", LevelWarn, false},
		{"error", LevelError, false},
		{"loud", LevelInfo, true},
	}

	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, %v; want %v, err=%v", tt.in, got, err, tt.want, tt.wantErr)
		}
	}
}

func TestLevel_String(t *testing.T) {
	if LevelDebug.String() != "DEBUG" || Level(99).String() != "UNKNOWN" {
		t.Error("unexpected level names")
	}
}
