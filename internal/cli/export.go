package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/leorami/signal-export/internal/exporter"
)

func NewExportCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export all conversations into an archive directory",
		Long: `Walk the decrypted database, copy every attachment and avatar into the
output tree, decrypt what key material allows, and write archive.json.`,
		Example: `  # Export with defaults (~/signal_plain.sqlite -> ~/signal_export)
  signal-export export

  # Explicit paths
  signal-export export --db ./signal_plain.sqlite --src ./attachments.noindex --out ./archive`,
		RunE: runExportCommand,
	}
	return cmd
}

func runExportCommand(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := newLogger()

	fmt.Printf("📦 Exporting %s\n", cfg.DBPath)
	summary, err := exporter.Run(exporter.Options{
		DBPath:    cfg.DBPath,
		SourceDir: cfg.SourceDir,
		OutDir:    cfg.OutDir,
		OpenSSL:   cfg.OpenSSL,
		Log:       &logger,
		Progress:  os.Stdout,
	})
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}

	if !summary.DecryptionEnabled {
		fmt.Println("⚠️  openssl not available, encrypted assets were copied verbatim")
	}
	fmt.Printf("✅ Exported %d threads, %d messages, %d attachments (%d decrypted)\n",
		summary.Threads, summary.Messages, summary.Attachments, summary.Decrypted)
	fmt.Printf("📄 Archive: %s\n", summary.ArchivePath)
	return nil
}
