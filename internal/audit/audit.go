// Package audit appends one JSONL record per scanned asset so repeated
// decrypt runs stay reviewable after the fact.
package audit

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"

	"github.com/leorami/signal-export/internal/models"
)

// Writer tags every record with a per-run id and flushes on Close. The log
// is append-only; earlier runs are never rewritten.
type Writer struct {
	mu    sync.Mutex
	file  *os.File
	buf   *bufio.Writer
	run   string
	count int64
}

func NewWriter(path string) (*Writer, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("audit: create directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("audit: open log: %w", err)
	}
	return &Writer{
		file: f,
		buf:  bufio.NewWriter(f),
		run:  uuid.NewString(),
	}, nil
}

// RunID identifies this run in every record it writes.
func (w *Writer) RunID() string { return w.run }

func (w *Writer) Count() int64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.count
}

func (w *Writer) Write(rec models.AuditRecord) error {
	rec.Run = w.run
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("audit: marshal record: %w", err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if _, err := w.buf.Write(data); err != nil {
		return fmt.Errorf("audit: write record: %w", err)
	}
	if err := w.buf.WriteByte('\n'); err != nil {
		return fmt.Errorf("audit: write record: %w", err)
	}
	w.count++
	return nil
}

func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.buf.Flush(); err != nil {
		w.file.Close()
		return fmt.Errorf("audit: flush: %w", err)
	}
	if err := w.file.Close(); err != nil {
		return fmt.Errorf("audit: close: %w", err)
	}
	return nil
}
