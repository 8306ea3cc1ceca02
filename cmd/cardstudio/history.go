package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/csheth/cardstudio/internal/history"
)

func newHistoryCmd(o *overrides) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:          "history",
		Short:        "List recent exports",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*o)
			if err != nil {
				return err
			}
			records, err := history.Recent(cfg.HistoryPath, limit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(records) == 0 {
				fmt.Fprintln(out, "No exports yet.")
				return nil
			}
			when := color.New(color.Faint)
			for _, rec := range records {
				when.Fprintf(out, "%s  ", rec.CreatedAt.Local().Format("2006-01-02 15:04"))
				fmt.Fprintf(out, "%-24s %2d cards  %s\n", rec.Topic, rec.Cards, rec.Archive)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "number of exports to show")
	return cmd
}
