package exporter

import (
	"strings"
	"testing"
	"time"
)

func TestRenderProgress(t *testing.T) {
	start := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	t.Run("counts and percentage", func(t *testing.T) {
		line := renderProgress("Messages", 50, 200, start, start.Add(10*time.Second))
		for _, want := range []string{"Messages", "50/200", "(25%)", "elapsed 10s", "eta 30s"} {
			if !strings.Contains(line, want) {
				t.Errorf("line %q missing %q", line, want)
			}
		}
	})

	t.Run("pure", func(t *testing.T) {
		now := start.Add(time.Minute)
		a := renderProgress("x", 3, 9, start, now)
		b := renderProgress("x", 3, 9, start, now)
		if a != b {
			t.Error("same inputs must render the same line")
		}
	})

	t.Run("zero total", func(t *testing.T) {
		line := renderProgress("Conversations", 0, 0, start, start)
		if !strings.Contains(line, "elapsed 0s") {
			t.Errorf("line %q", line)
		}
	})

	t.Run("done clamped", func(t *testing.T) {
		line := renderProgress("x", 12, 10, start, start.Add(time.Second))
		if !strings.Contains(line, "10/10") || !strings.Contains(line, "(100%)") {
			t.Errorf("line %q", line)
		}
	})

	t.Run("long runs grouped", func(t *testing.T) {
		if got := formatDuration(3*time.Hour + 4*time.Minute + 5*time.Second); got != "3h 4m 5s" {
			t.Errorf("formatDuration = %q", got)
		}
		if got := formatDuration(2 * time.Minute); got != "2m 0s" {
			t.Errorf("formatDuration = %q", got)
		}
		if got := formatDuration(-time.Second); got != "0s" {
			t.Errorf("formatDuration = %q", got)
		}
	})
}
