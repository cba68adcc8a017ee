package main

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/yourusername/racehorse-ledger/internal/health"
	"github.com/yourusername/racehorse-ledger/internal/ledger"
	"github.com/yourusername/racehorse-ledger/internal/prediction"
)

var (
	checkJSON      bool
	checkSkipModel bool
)

func init() {
	checkCmd.Flags().BoolVar(&checkJSON, "json", false, "Print the report as JSON")
	checkCmd.Flags().BoolVar(&checkSkipModel, "skip-model", false, "Do not contact the completion service")
	rootCmd.AddCommand(checkCmd)
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify files, directories and the model service are ready",
	RunE: func(cmd *cobra.Command, args []string) error {
		checker := health.NewChecker("racehorse", Version, appLog)
		checker.Add("template", health.FileExists(cfg.TemplatePath()))
		checker.Add("prompt", health.FileExists(cfg.PromptPath()))
		checker.Add("predictions_dir", health.DirWritable(cfg.PredictionsDir()))
		checker.Add("results_dir", health.DirWritable(cfg.ResultsDir()))
		checker.Add("ledger", func(ctx context.Context) error {
			_, err := ledger.NewAppender(cfg.LedgerPath(), appLog).Rows(ctx)
			return err
		})
		if !checkSkipModel {
			client := prediction.NewCompletionClient(&cfg.Model, cfg.GetAPIKey(), appLog)
			checker.Add("model", client.HealthCheck)
		}

		resp := checker.Run(cmd.Context())

		out := cmd.OutOrStdout()
		if checkJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			if err := enc.Encode(resp); err != nil {
				return err
			}
		} else {
			names := make([]string, 0, len(resp.Checks))
			for name := range resp.Checks {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				fmt.Fprintf(out, "%-16s %s\n", name, resp.Checks[name])
			}
			fmt.Fprintf(out, "\nStatus: %s (%s)\n", resp.Status, resp.Duration)
		}

		if !resp.Healthy() {
			return fmt.Errorf("readiness checks failed")
		}
		return nil
	},
}
