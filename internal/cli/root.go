package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	envFile string
	verbose bool
)

func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "signal-export",
		Short: "Archive Signal Desktop conversations",
		Long: `Signal Export - Turn a decrypted Signal Desktop database and its attachment
store into a self-contained archive: copied and best-effort-decrypted assets,
avatars, and an archive.json thread structure ready for rendering.`,
		Version: "0.1.0",
	}

	pf := rootCmd.PersistentFlags()
	pf.String("db", "", "Path to decrypted Signal SQLite database (default: ~/signal_plain.sqlite)")
	pf.String("src", "", "Path to Signal attachments.noindex directory")
	pf.String("out", "", "Output directory for the archive (default: ~/signal_export)")
	pf.String("openssl", "", "Path to the openssl binary (default: openssl on PATH)")
	pf.StringVar(&envFile, "env-file", ".env", "Path to .env file to load")
	pf.BoolVar(&verbose, "verbose", false, "Log per-record diagnostics to stderr")

	rootCmd.AddCommand(
		NewExportCommand(),
		NewDecryptAssetsCommand(),
		NewBrowseCommand(),
		NewStatsCommand(),
	)

	return rootCmd
}

func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
