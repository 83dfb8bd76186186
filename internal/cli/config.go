package cli

import (
	"bufio"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Config is the resolved input/output layout for a run. Precedence is
// CLI flag, then .env file, then process environment, then defaults.
type Config struct {
	DBPath    string
	SourceDir string
	OutDir    string
	OpenSSL   string
}

// defaultSourceDir guesses the platform's Signal attachment store.
func defaultSourceDir(home string) string {
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "Signal", "attachments.noindex")
	case "windows":
		appData := os.Getenv("APPDATA")
		if appData == "" {
			appData = filepath.Join(home, "AppData", "Roaming")
		}
		return filepath.Join(appData, "Signal", "attachments.noindex")
	default:
		return filepath.Join(home, ".config", "Signal", "attachments.noindex")
	}
}

// loadEnvFile loads KEY=VALUE lines into the process environment without
// overriding variables that are already set, which keeps the process
// environment below the file in precedence. Values get $VAR and leading-~
// expansion. A missing file is not an error.
func loadEnvFile(path string) {
	f, err := os.Open(path)
	if err != nil {
		return
	}
	defer f.Close()

	home, _ := os.UserHomeDir()
	scan := bufio.NewScanner(f)
	for scan.Scan() {
		line := strings.TrimSpace(scan.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, found := strings.Cut(line, "=")
		key = strings.TrimSpace(key)
		if !found || key == "" {
			continue
		}
		if _, exists := os.LookupEnv(key); exists {
			continue
		}
		value = strings.Trim(strings.TrimSpace(value), `"'`)
		if value == "~" || strings.HasPrefix(value, "~/") {
			value = home + strings.TrimPrefix(value, "~")
		}
		os.Setenv(key, os.ExpandEnv(value))
	}
}

// loadConfig resolves the layout for the calling command. Flags are bound
// through viper so environment variables fill anything the user left unset.
func loadConfig(cmd *cobra.Command) (Config, error) {
	loadEnvFile(envFile)

	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}

	v := viper.New()
	v.SetDefault("db", filepath.Join(home, "signal_plain.sqlite"))
	v.SetDefault("src", defaultSourceDir(home))
	v.SetDefault("out", filepath.Join(home, "signal_export"))
	v.SetDefault("openssl", "")

	v.BindEnv("db", "SIGNAL_EXPORT_DB", "DB")
	v.BindEnv("src", "SIGNAL_EXPORT_SRC", "SRC")
	v.BindEnv("out", "SIGNAL_EXPORT_OUT", "OUT")
	v.BindEnv("openssl", "OPENSSL_BIN")

	flags := cmd.Root().PersistentFlags()
	for _, name := range []string{"db", "src", "out", "openssl"} {
		if err := v.BindPFlag(name, flags.Lookup(name)); err != nil {
			return Config{}, err
		}
	}

	return Config{
		DBPath:    v.GetString("db"),
		SourceDir: v.GetString("src"),
		OutDir:    v.GetString("out"),
		OpenSSL:   v.GetString("openssl"),
	}, nil
}

// newLogger builds the diagnostic logger. Progress and summaries go to
// stdout separately; this only carries per-record degrade reasons.
func newLogger() zerolog.Logger {
	level := zerolog.WarnLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	writer := zerolog.ConsoleWriter{Out: os.Stderr}
	return zerolog.New(writer).Level(level).With().Timestamp().Logger()
}
