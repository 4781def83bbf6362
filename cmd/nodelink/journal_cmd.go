// cmd/nodelink/journal_cmd.go
package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tamzrod/nodelink/internal/journal"
)

var journalLimit int

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Show the most recent journalled events",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cfg.Journal.Path == "" {
			return errors.New("journal.path is not configured")
		}

		db, err := journal.Open(cfg.Journal.Path)
		if err != nil {
			return err
		}
		defer db.Close()

		rows, err := db.RecentEvents(cmd.Context(), journalLimit)
		if err != nil {
			return err
		}
		for _, r := range rows {
			v := "-"
			if r.Value.Valid {
				v = r.Value.String
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s  %-20s %s\n", r.At.Format("2006-01-02 15:04:05.000"), r.Name, v)
		}
		return nil
	},
}

func init() {
	journalCmd.Flags().IntVarP(&journalLimit, "limit", "n", 20, "Number of events to show")
	rootCmd.AddCommand(journalCmd)
}
