package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/dgallion1/docfreeze/internal/config"
	"github.com/spf13/cobra"
)

var (
	vaultDir     string
	settingsFile string
	verbose      bool

	cfg    config.Config
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "docfreeze",
	Short: "Inline every embed of a markdown note into a standalone copy",
	Long: `docfreeze resolves ![[embeds]] recursively and writes a self-contained
copy of a note next to it (or into a custom directory).`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := slog.LevelWarn
		if verbose {
			level = slog.LevelDebug
		}
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

		var err error
		cfg, err = config.Load()
		if err != nil {
			return err
		}
		if vaultDir != "" {
			cfg.VaultBackend = config.BackendDir
			cfg.VaultDir = vaultDir
		}
		if settingsFile != "" {
			if cfg.Settings, err = config.LoadSettings(settingsFile, cfg.Settings); err != nil {
				return err
			}
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&vaultDir, "vault", "", "vault root directory (default $VAULT_DIR or the current directory)")
	rootCmd.PersistentFlags().StringVar(&settingsFile, "settings", "", "settings file (YAML or JSON)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug output")
}

// docPath turns a command-line path into a vault path. Files given by their
// location on disk are made relative to a directory vault.
func docPath(arg string) (string, error) {
	if cfg.VaultBackend == config.BackendDir {
		if _, err := os.Stat(arg); err == nil {
			root, err := filepath.Abs(cfg.VaultDir)
			if err != nil {
				return "", err
			}
			abs, err := filepath.Abs(arg)
			if err != nil {
				return "", err
			}
			rel, err := filepath.Rel(root, abs)
			if err != nil || strings.HasPrefix(rel, "..") {
				return "", fmt.Errorf("%s is outside the vault %s", arg, cfg.VaultDir)
			}
			return filepath.ToSlash(rel), nil
		}
	}
	return strings.TrimPrefix(filepath.ToSlash(arg), "/"), nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}
