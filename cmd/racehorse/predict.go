package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yourusername/racehorse-ledger/internal/prediction"
	"github.com/yourusername/racehorse-ledger/internal/racecard"
)

var predictDate string

func init() {
	predictCmd.Flags().StringVar(&predictDate, "date", "", "Race date (YYYY-MM-DD), defaults to today")
}

var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Ask the model for the value bet of the day",
	RunE: func(cmd *cobra.Command, args []string) error {
		date, err := resolveDate(cmd, predictDate, "Date for prediction")
		if err != nil {
			return err
		}

		client := prediction.NewCompletionClient(&cfg.Model, cfg.GetAPIKey(), appLog)
		store := racecard.NewStore(cfg.RacecardsDir(), cfg.Paths.TemplateFile)
		predictor := prediction.NewPredictor(cfg, store, client, appLog)

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "Calling the model...")

		pred, err := predictor.Predict(cmd.Context(), date)
		if err != nil {
			return err
		}

		s := pred.Selection
		fmt.Fprintf(out, "\nPrediction saved: %s\n", predictor.PathFor(date))
		fmt.Fprintf(out, "Selection for %s: %s %s - %s @ %s\n", date, s.Course, s.Time, s.Horse, s.OddsDecimal.Decimal.String())
		if pred.Reasoning != "" {
			fmt.Fprintf(out, "\nReasoning:\n%s\n", pred.Reasoning)
		}
		return nil
	},
}
