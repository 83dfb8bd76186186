package audit

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/leorami/signal-export/internal/models"
)

func TestWriterAppendsTaggedRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "audit.jsonl")

	w, err := NewWriter(path)
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}
	run1 := w.RunID()
	if run1 == "" {
		t.Fatal("empty run id")
	}
	records := []models.AuditRecord{
		{Path: "assets/Maya/aa_photo.bin", Encrypted: true, Mode: "gcm", DecryptedPath: "assets/Maya/dec_photo.bin", MIME: "image/jpeg"},
		{Path: "assets/Maya/note.txt", Encrypted: false, MIME: "text/plain"},
		{Path: "assets/Noah/blob", Encrypted: true, Error: "no-key"},
	}
	for _, rec := range records {
		if err := w.Write(rec); err != nil {
			t.Fatalf("Write: %v", err)
		}
	}
	if w.Count() != int64(len(records)) {
		t.Errorf("Count = %d, want %d", w.Count(), len(records))
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	// A second run appends, never truncates.
	w2, err := NewWriter(path)
	if err != nil {
		t.Fatal(err)
	}
	if w2.RunID() == run1 {
		t.Error("run ids must differ between runs")
	}
	if err := w2.Write(models.AuditRecord{Path: "assets/x"}); err != nil {
		t.Fatal(err)
	}
	if err := w2.Close(); err != nil {
		t.Fatal(err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	var got []models.AuditRecord
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var rec models.AuditRecord
		if err := json.Unmarshal(scanner.Bytes(), &rec); err != nil {
			t.Fatalf("bad line %q: %v", scanner.Text(), err)
		}
		got = append(got, rec)
	}
	if len(got) != 4 {
		t.Fatalf("lines = %d, want 4", len(got))
	}
	for i := 0; i < 3; i++ {
		if got[i].Run != run1 {
			t.Errorf("record %d run = %q, want %q", i, got[i].Run, run1)
		}
	}
	if got[0].Mode != "gcm" || got[0].DecryptedPath == "" {
		t.Errorf("first record lost fields: %+v", got[0])
	}
	if got[3].Run == run1 {
		t.Error("appended run must carry its own id")
	}
}
