package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/dgallion1/docfreeze/internal/pipeline"
	"github.com/dgallion1/docfreeze/internal/vault"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(embedsCmd)
}

var embedsCmd = &cobra.Command{
	Use:   "embeds <note>",
	Short: "List the embeds of a note and where they resolve",
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

		embeds, err := pipeline.NewFreezer(v, cfg.Settings, logger).Embeds(cmd.Context(), src)
		if err != nil {
			return err
		}

		missing := color.New(color.FgRed).SprintFunc()
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		for _, e := range embeds {
			switch {
			case e.Asset:
				fmt.Fprintf(tw, "![[%s]]\t(asset, kept)\n", e.Raw)
			case e.Found:
				fmt.Fprintf(tw, "![[%s]]\t%s\n", e.Raw, e.Resolved)
			default:
				fmt.Fprintf(tw, "![[%s]]\t%s\n", e.Raw, missing("not found"))
			}
		}
		return tw.Flush()
	},
}
