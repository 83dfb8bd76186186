package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leorami/signal-export/internal/exporter"
)

func NewDecryptAssetsCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "decrypt-assets",
		Short: "Audit an existing export and retry asset decryption",
		Long: `Scan the exported asset tree for likely-encrypted files, look their key
material up in the source database, retry decryption, and append one JSONL
audit record per file to audit.jsonl. Unlike export, a missing openssl
binary is a hard error here.`,
		Example: `  # Audit a finished export
  signal-export decrypt-assets --out ./archive

  # Cap decryption attempts while experimenting
  signal-export decrypt-assets --out ./archive --limit 10`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDecryptAssets(cmd, limit)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum decryption attempts (0 = unlimited)")
	return cmd
}

func runDecryptAssets(cmd *cobra.Command, limit int) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := newLogger()

	fmt.Printf("🔍 Auditing assets under %s\n", cfg.OutDir)
	summary, err := exporter.AuditAssets(exporter.AuditOptions{
		DBPath:  cfg.DBPath,
		OutDir:  cfg.OutDir,
		OpenSSL: cfg.OpenSSL,
		Limit:   limit,
		Log:     &logger,
	})
	if err != nil {
		return fmt.Errorf("audit failed: %w", err)
	}

	fmt.Printf("✅ Scanned %d assets: %d flagged, %d attempted, %d decrypted\n",
		summary.Scanned, summary.Flagged, summary.Attempted, summary.Decrypted)
	fmt.Printf("📄 Audit log: %s (run %s)\n", summary.LogPath, summary.RunID)
	return nil
}
