package exporter

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// Signal blue.
var progressFillStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#3B45FD"))

const (
	progressWidth  = 80
	progressMinBar = 10
	progressMaxBar = 40
)

// renderProgress builds a single progress line from the loop's own counters.
// Pure apart from lipgloss color detection: same inputs, same bar.
func renderProgress(label string, done, total int, start, now time.Time) string {
	if total < 1 {
		total = 1
	}
	if done > total {
		done = total
	}

	barw := progressWidth - 50
	if barw < progressMinBar {
		barw = progressMinBar
	}
	if barw > progressMaxBar {
		barw = progressMaxBar
	}

	fill := barw * done / total
	pct := 100 * done / total
	bar := progressFillStyle.Render(repeatRune('█', fill)) + repeatRune('░', barw-fill)

	elapsed := now.Sub(start)
	var eta time.Duration
	if done > 0 && elapsed > 0 {
		rate := float64(done) / elapsed.Seconds()
		eta = time.Duration(float64(total-done) / rate * float64(time.Second))
	}

	return fmt.Sprintf("%s [%s] %d/%d (%d%%) | elapsed %s | eta %s",
		label, bar, done, total, pct, formatDuration(elapsed), formatDuration(eta))
}

func repeatRune(r rune, n int) string {
	if n <= 0 {
		return ""
	}
	out := make([]rune, n)
	for i := range out {
		out[i] = r
	}
	return string(out)
}

func formatDuration(d time.Duration) string {
	if d <= 0 {
		return "0s"
	}
	total := int(d.Seconds())
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	switch {
	case h > 0:
		return fmt.Sprintf("%dh %dm %ds", h, m, s)
	case m > 0:
		return fmt.Sprintf("%dm %ds", m, s)
	default:
		return fmt.Sprintf("%ds", s)
	}
}
