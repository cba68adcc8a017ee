package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yourusername/racehorse-ledger/internal/console"
	"github.com/yourusername/racehorse-ledger/internal/ledger"
	"github.com/yourusername/racehorse-ledger/internal/settlement"
)

var (
	settleDate string
	settleWon  bool
	settleSP   float64
)

func init() {
	settleCmd.Flags().StringVar(&settleDate, "date", "", "Date of the bet (YYYY-MM-DD), defaults to today")
	settleCmd.Flags().BoolVar(&settleWon, "won", false, "Whether the selection won")
	settleCmd.Flags().Float64Var(&settleSP, "sp", 0, "Starting price in decimal odds, defaults to the predicted odds")
}

var settleCmd = &cobra.Command{
	Use:   "settle",
	Short: "Record the result of the day's selection and update the ledger",
	RunE: func(cmd *cobra.Command, args []string) error {
		date, err := resolveDate(cmd, settleDate, "Date of bet to record")
		if err != nil {
			return err
		}

		appender := ledger.NewAppender(cfg.LedgerPath(), appLog)
		settler := settlement.NewSettler(cfg, appender, appLog)

		pred, err := settler.Selection(date)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		s := pred.Selection
		fmt.Fprintf(out, "Selection for %s: %s %s - %s @ %s\n", date, s.Course, s.Time, s.Horse, s.OddsDecimal.Decimal.String())

		won := settleWon
		if !cmd.Flags().Changed("won") {
			if !isInteractive() {
				return fmt.Errorf("%w: --won", console.ErrNotInteractive)
			}
			if won, err = newPrompter(cmd).YesNo("Did it win?"); err != nil {
				return err
			}
		}

		sp := settleSP
		if !cmd.Flags().Changed("sp") && isInteractive() {
			if sp, err = newPrompter(cmd).Float("SP decimal odds", s.Odds()); err != nil {
				return err
			}
		}

		outcome, err := settler.Settle(cmd.Context(), date, won, sp)
		if err != nil {
			return err
		}

		row := outcome.Row
		fmt.Fprintf(out, "\nResult saved: %s\n", outcome.ResultPath)
		fmt.Fprintf(out, "Ledger updated: %s\n", appender.Path())
		fmt.Fprintf(out, "Profit %s, cumulative %s, ROI %s\n",
			row.ProfitUnits.StringFixedBank(4), row.CumProfitUnits.StringFixedBank(4), row.ROITotal.StringFixedBank(4))
		return nil
	},
}
