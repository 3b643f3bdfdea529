package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/docfreeze/internal/pipeline"
	"github.com/dgallion1/docfreeze/internal/vault"
	"github.com/fatih/color"
	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/spf13/cobra"
)

var diffViaHTML bool

func init() {
	diffCmd.Flags().BoolVar(&diffViaHTML, "via-html", false, "compare with the HTML round-trip result")
	rootCmd.AddCommand(diffCmd)
}

var diffCmd = &cobra.Command{
	Use:   "diff <note>",
	Short: "Show what freezing a note would change",
	Long:  `Print a line diff between a note and its frozen form. Nothing is saved.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate(); err != nil {
			return err
		}
		src, err := docPath(args[0])
		if err != nil {
			return err
		}
		v, closeVault, err := vault.Open(cfg)
		if err != nil {
			return err
		}
		defer closeVault()

		ctx := cmd.Context()
		original, err := v.Read(ctx, src)
		if err != nil {
			return err
		}
		mode := pipeline.ModeStructural
		if diffViaHTML {
			mode = pipeline.ModeHTML
		}
		frozen, err := pipeline.NewFreezer(v, cfg.Settings, logger).Produce(ctx, src, mode)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "--- %s\n+++ %s (frozen)\n", src, src)
		printDiff(out, lineDiff(original, frozen))
		return nil
	},
}

type diffLine struct {
	op   diffmatchpatch.Operation
	text string
}

// lineDiff compares two texts line by line.
func lineDiff(from, to string) []diffLine {
	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(from, to)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	var out []diffLine
	for _, d := range diffs {
		for _, line := range strings.SplitAfter(d.Text, "\n") {
			if line == "" {
				continue
			}
			out = append(out, diffLine{op: d.Type, text: strings.TrimSuffix(line, "\n")})
		}
	}
	return out
}

func printDiff(w io.Writer, lines []diffLine) {
	red := color.New(color.FgRed)
	green := color.New(color.FgGreen)
	for _, l := range lines {
		switch l.op {
		case diffmatchpatch.DiffDelete:
			red.Fprintln(w, "-"+l.text)
		case diffmatchpatch.DiffInsert:
			green.Fprintln(w, "+"+l.text)
		default:
			fmt.Fprintln(w, " "+l.text)
		}
	}
}
