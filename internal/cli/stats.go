package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/leorami/signal-export/internal/exporter"
)

func NewStatsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show statistics for an exported archive",
		Long:  `Summarize a finished export: thread, message, attachment, and call counts, plus how much remains encrypted.`,
		RunE:  runStats,
	}
	return cmd
}

func runStats(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	archivePath := filepath.Join(cfg.OutDir, "archive.json")
	threads, err := exporter.ReadArchive(archivePath)
	if err != nil {
		return fmt.Errorf("failed to load archive: %w", err)
	}
	stats := exporter.ComputeStats(threads)

	fmt.Println("Signal Export Statistics")
	fmt.Println("========================")
	fmt.Printf("\nThreads: %d\n", stats.Threads)
	fmt.Printf("Messages: %d\n", stats.Messages)
	fmt.Printf("Attachments: %d\n", stats.Attachments)
	fmt.Printf("Call Events: %d\n", stats.Calls)

	if stats.StillEncrypted > 0 {
		fmt.Printf("\n🔒 Still Encrypted: %d (try decrypt-assets)\n", stats.StillEncrypted)
	}
	if stats.Unknown > 0 {
		fmt.Printf("❓ Unknown Threads: %d\n", stats.Unknown)
	}
	fmt.Printf("🖼  Threads with Avatar: %d\n", stats.WithAvatar)
	return nil
}
