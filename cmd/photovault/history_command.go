package main

import (
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"photovault/internal/config"
	"photovault/internal/ledger"
	"photovault/internal/logging"
)

func newHistoryCommand(configFlag *string) *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "Show the archive ledger",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, _, err := config.Load(*configFlag)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			store := ledger.Open(cfg.Paths.StateFile, logging.NewNop())
			records := store.Records()
			sort.Slice(records, func(i, j int) bool {
				return records[i].Path < records[j].Path
			})

			out := cmd.OutOrStdout()
			if len(records) == 0 {
				fmt.Fprintf(out, "No archived files recorded in %s\n", cfg.Paths.StateFile)
				return nil
			}

			rows := make([][]string, 0, len(records))
			for _, rec := range records {
				modified := time.Unix(0, int64(rec.ModTime*1e9)).Format("2006-01-02 15:04:05")
				rows = append(rows, []string{rec.Name(), rec.Digest, modified, rec.Path})
			}

			rounded := isatty.IsTerminal(os.Stdout.Fd())
			fmt.Fprintln(out, renderTable([]string{"Name", "Digest", "Modified", "Source Path"}, rows, rounded))
			fmt.Fprintf(out, "%d archived files\n", len(records))
			return nil
		},
	}
}
