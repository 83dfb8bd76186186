package exporter

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/leorami/signal-export/internal/audit"
	"github.com/leorami/signal-export/internal/crypt"
	"github.com/leorami/signal-export/internal/keymat"
	"github.com/leorami/signal-export/internal/models"
	"github.com/leorami/signal-export/internal/sniff"
	"github.com/leorami/signal-export/internal/storage"
)

// AuditOptions configures a decrypt-assets scan over an existing export.
type AuditOptions struct {
	DBPath  string
	OutDir  string
	OpenSSL string
	// LogPath defaults to <out>/audit.jsonl.
	LogPath string
	// Limit caps decryption attempts; zero means unlimited.
	Limit int

	Provider crypt.Provider
	Log      *zerolog.Logger
}

type AuditSummary struct {
	RunID     string
	LogPath   string
	Scanned   int
	Flagged   int
	Attempted int
	Decrypted int
}

// AuditAssets walks an export's asset tree, flags likely-encrypted blobs,
// retries decryption with key material from the source database, and writes
// one audit record per file. Unlike the export itself, a missing
// cryptographic primitive is fatal here: decryption is the whole point.
func AuditAssets(opts AuditOptions) (*AuditSummary, error) {
	logger := nopIfNil(opts.Log)

	provider := opts.Provider
	if provider == nil {
		provider = crypt.NewOpenSSLProvider(opts.OpenSSL)
	}
	if !provider.Available() {
		return nil, fmt.Errorf("exporter: cryptographic primitive unavailable")
	}

	src, err := storage.Open(opts.DBPath)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	keyRows, err := src.AttachmentKeys()
	if err != nil {
		return nil, err
	}
	// Destination names are <hash>_<declared filename>; the declared
	// filename is the only way back to the database row.
	keyByName := make(map[string]storage.AttachmentKeyRow, len(keyRows))
	for _, row := range keyRows {
		if row.FileName != "" {
			if _, seen := keyByName[row.FileName]; !seen {
				keyByName[row.FileName] = row
			}
		}
	}

	logPath := opts.LogPath
	if logPath == "" {
		logPath = filepath.Join(opts.OutDir, "audit.jsonl")
	}
	w, err := audit.NewWriter(logPath)
	if err != nil {
		return nil, err
	}
	defer w.Close()

	summary := &AuditSummary{RunID: w.RunID(), LogPath: logPath}
	assetsDir := filepath.Join(opts.OutDir, "assets")

	var paths []string
	walkErr := filepath.WalkDir(assetsDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		if strings.HasPrefix(d.Name(), "dec_") {
			return nil
		}
		paths = append(paths, path)
		return nil
	})
	if walkErr != nil {
		return nil, fmt.Errorf("exporter: walk assets: %w", walkErr)
	}
	sort.Strings(paths)

	for _, path := range paths {
		summary.Scanned++
		rec := models.AuditRecord{
			Path: r2rel(opts.OutDir, path),
			MIME: sniff.MIMEType(path, ""),
		}

		if sniff.LooksEncrypted(path) {
			rec.Encrypted = true
			summary.Flagged++
			auditAsset(&rec, path, opts, summary, keyByName, provider)
		}
		if rec.Mode != "" {
			logger.Debug().Str("path", rec.Path).Str("mode", rec.Mode).Msg("asset decrypted")
		}
		if err := w.Write(rec); err != nil {
			return nil, err
		}
	}

	return summary, nil
}

// auditAsset handles a single flagged blob: map it back to a database row,
// extract key material, and retry decryption. It mutates rec in place and
// never fails the scan; per-file problems land in rec.Error.
func auditAsset(rec *models.AuditRecord, path string, opts AuditOptions, summary *AuditSummary, keyByName map[string]storage.AttachmentKeyRow, provider crypt.Provider) {
	name := filepath.Base(path)
	if i := strings.Index(name, "_"); i >= 0 {
		name = name[i+1:]
	}
	row, found := keyByName[name]
	if !found {
		rec.Error = "no-db-row"
		return
	}
	key := keymat.ExtractKey(row.LocalKey, row.AltKey)
	if key == nil {
		rec.Error = "no-key"
		return
	}
	if opts.Limit > 0 && summary.Attempted >= opts.Limit {
		rec.Error = "limit-reached"
		return
	}

	summary.Attempted++
	dst := filepath.Join(filepath.Dir(path), "dec_"+name)
	mode := ""
	if fileExists(dst) {
		// A previous run already produced this plaintext; reuse it.
		mode = "reused"
	} else {
		mode = crypt.AttemptDecrypt(path, dst, key, provider)
	}
	if mode == "" {
		rec.Error = "decrypt-failed"
		return
	}

	summary.Decrypted++
	rec.Mode = mode
	rec.DecryptedPath = r2rel(opts.OutDir, dst)
	rec.MIME = sniff.MIMEType(dst, name)
}

func r2rel(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}
