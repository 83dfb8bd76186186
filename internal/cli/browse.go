package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/leorami/signal-export/internal/exporter"
	"github.com/leorami/signal-export/internal/tui"
)

func NewBrowseCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Browse an exported archive in a TUI",
		Long:  `Open an interactive terminal UI over a finished export's archive.json.`,
		Example: `  # Browse the default archive
  signal-export browse

  # Browse a specific export
  signal-export browse --out ./archive`,
		RunE: runBrowse,
	}
	return cmd
}

func runBrowse(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	archivePath := filepath.Join(cfg.OutDir, "archive.json")
	threads, err := exporter.ReadArchive(archivePath)
	if err != nil {
		return fmt.Errorf("failed to load archive (run export first?): %w", err)
	}
	return tui.NewBrowser(threads).Run()
}
