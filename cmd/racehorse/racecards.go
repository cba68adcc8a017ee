package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yourusername/racehorse-ledger/internal/logger"
	"github.com/yourusername/racehorse-ledger/internal/racecard"
)

var racecardsDate string

func init() {
	racecardsCmd.Flags().StringVar(&racecardsDate, "date", "", "Race date (YYYY-MM-DD), defaults to today")
}

var racecardsCmd = &cobra.Command{
	Use:   "racecards",
	Short: "Create the dated candidates file from the example template",
	RunE: func(cmd *cobra.Command, args []string) error {
		date, err := resolveDate(cmd, racecardsDate, "Date for racecard")
		if err != nil {
			return err
		}

		store := racecard.NewStore(cfg.RacecardsDir(), cfg.Paths.TemplateFile)
		res, err := store.Prepare(date)
		if err != nil {
			return err
		}
		logger.NewAuditLogger(appLog).LogRacecardPrepared(date, res.Path, res.Existed)

		out := cmd.OutOrStdout()
		if res.Existed {
			fmt.Fprintf(out, "Candidates file already exists: %s\n", res.Path)
		} else {
			fmt.Fprintf(out, "Created candidates file: %s\n", res.Path)
		}
		fmt.Fprintln(out, "Edit it to list today's shortlisted runners, then run: racehorse predict")
		return nil
	},
}
