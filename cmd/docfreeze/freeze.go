package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dgallion1/docfreeze/internal/config"
	"github.com/dgallion1/docfreeze/internal/export"
	"github.com/dgallion1/docfreeze/internal/notify"
	"github.com/dgallion1/docfreeze/internal/pipeline"
	"github.com/dgallion1/docfreeze/internal/vault"
	"github.com/pkg/browser"
	"github.com/spf13/cobra"
)

var (
	viaHTML      bool
	saveLocation string
	customDir    string
	openFrozen   bool
	toStdout     bool
	docxOut      string
)

// openFile shows a file on local disk with the desktop's default application.
var openFile = browser.OpenFile

// errReported marks a failure the notifier already showed to the user.
var errReported = errors.New("freeze failed")

func init() {
	freezeCmd.Flags().BoolVar(&viaHTML, "via-html", false, "freeze through an HTML render and convert back")
	freezeCmd.Flags().StringVar(&saveLocation, "save-location", "", "same-directory or custom-directory")
	freezeCmd.Flags().StringVar(&customDir, "custom-dir", "", "directory for frozen files with --save-location custom-directory")
	freezeCmd.Flags().BoolVar(&openFrozen, "open", false, "open the frozen file after saving (default: the openFreezeFile setting, true unless configured)")
	freezeCmd.Flags().BoolVar(&toStdout, "stdout", false, "print the frozen note instead of saving it")
	freezeCmd.Flags().StringVar(&docxOut, "docx", "", "also write the frozen note as a Word document to this file")
	rootCmd.AddCommand(freezeCmd)
}

var freezeCmd = &cobra.Command{
	Use:   "freeze <note>",
	Short: "Freeze a note",
	Long: `Replace every embed of a note by the content it references, recursively,
and save the result as <name>_freeze.<ext>.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Flags().Changed("save-location") {
			cfg.Settings.SaveLocation = config.SaveLocation(saveLocation)
		}
		if cmd.Flags().Changed("custom-dir") {
			cfg.Settings.CustomDirectory = customDir
			if !cmd.Flags().Changed("save-location") {
				cfg.Settings.SaveLocation = config.CustomDirectory
			}
		}
		if cmd.Flags().Changed("open") {
			cfg.Settings.OpenFreezeFile = openFrozen
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		src, err := docPath(args[0])
		if err != nil {
			return err
		}
		mode := pipeline.ModeStructural
		if viaHTML {
			mode = pipeline.ModeHTML
		}

		v, closeVault, err := vault.Open(cfg)
		if err != nil {
			return err
		}
		defer closeVault()

		ctx := cmd.Context()
		console := notify.NewConsole(os.Stderr)
		f := pipeline.NewFreezer(v, cfg.Settings, logger,
			pipeline.WithNotifier(console),
			pipeline.WithOpener(opener()),
		)

		if toStdout {
			text, err := f.Produce(ctx, src, mode)
			if err != nil {
				notify.Errorf(console, "Error freezing file: %v", err)
				return errReported
			}
			fmt.Fprint(cmd.OutOrStdout(), text)
		} else if _, err := f.Run(ctx, src, mode, nil); err != nil {
			return errReported
		}

		if docxOut != "" {
			return writeDOCX(ctx, f, src, docxOut)
		}
		return nil
	},
}

func writeDOCX(ctx context.Context, f *pipeline.Freezer, src, out string) error {
	tree, err := f.FreezeTree(ctx, src)
	if err != nil {
		return err
	}
	file, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("create %s: %w", out, err)
	}
	if err := export.DOCX(tree, file); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// opener opens saved files with the desktop's default application. Only
// directory vaults have files on local disk.
func opener() pipeline.Opener {
	if cfg.VaultBackend != config.BackendDir {
		return nil
	}
	return func(_ context.Context, p string) error {
		return openFile(filepath.Join(cfg.VaultDir, filepath.FromSlash(p)))
	}
}
