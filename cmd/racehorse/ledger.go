package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yourusername/racehorse-ledger/internal/ledger"
	"github.com/yourusername/racehorse-ledger/internal/metrics"
	"github.com/yourusername/racehorse-ledger/internal/models"
)

var (
	appendDate   string
	appendCourse string
	appendTime   string
	appendHorse  string
	appendOdds   float64
	appendResult string
	appendProfit float64
)

func init() {
	f := ledgerAppendCmd.Flags()
	f.StringVar(&appendDate, "date", "", "Race date (YYYY-MM-DD)")
	f.StringVar(&appendCourse, "course", "", "Course name")
	f.StringVar(&appendTime, "time", "", "Off time")
	f.StringVar(&appendHorse, "horse", "", "Horse name")
	f.Float64Var(&appendOdds, "odds", 0, "Decimal odds taken")
	f.StringVar(&appendResult, "result", "", "win or lose")
	f.Float64Var(&appendProfit, "profit", 0, "Profit in stake units, computed from odds and result when omitted")
	for _, name := range []string{"date", "course", "time", "horse", "odds", "result"} {
		_ = ledgerAppendCmd.MarkFlagRequired(name)
	}

	ledgerCmd.AddCommand(ledgerAppendCmd)
	ledgerCmd.AddCommand(ledgerSummaryCmd)
}

var ledgerCmd = &cobra.Command{
	Use:   "ledger",
	Short: "Inspect or correct the profit ledger",
}

var ledgerAppendCmd = &cobra.Command{
	Use:   "append",
	Short: "Append one settled bet to the ledger by hand",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := models.ValidateDate(appendDate); err != nil {
			return err
		}
		result, err := models.ParseBetResult(appendResult)
		if err != nil {
			return err
		}

		bet := models.NewSettledBet(appendDate, appendCourse, appendTime, appendHorse, appendOdds, result == models.BetResultWin)
		if cmd.Flags().Changed("profit") {
			bet.ProfitUnits = appendProfit
		}

		appender := ledger.NewAppender(cfg.LedgerPath(), appLog)
		row, err := appender.Append(cmd.Context(), bet)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Appended to %s: cumulative %s, ROI %s\n",
			appender.Path(), row.CumProfitUnits.StringFixedBank(4), row.ROITotal.StringFixedBank(4))
		return nil
	},
}

var ledgerSummaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Show totals, strike rate and drawdown for the ledger",
	RunE: func(cmd *cobra.Command, args []string) error {
		appender := ledger.NewAppender(cfg.LedgerPath(), appLog)
		rows, err := appender.Rows(cmd.Context())
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if len(rows) == 0 {
			fmt.Fprintf(out, "No settled bets in %s\n", appender.Path())
			return nil
		}

		s := ledger.Summarize(rows)
		last := rows[len(rows)-1]
		metrics.UpdateLedgerTotals(last.CumProfit(), last.ROI(), len(rows))

		fmt.Fprintf(out, "Ledger:            %s\n", appender.Path())
		fmt.Fprintf(out, "Period:            %s to %s\n", s.FirstDate, s.LastDate)
		fmt.Fprintf(out, "Bets:              %d (%d won, %d lost)\n", s.Bets, s.Wins, s.Losses)
		fmt.Fprintf(out, "Strike rate:       %.1f%%\n", s.StrikeRate*100)
		fmt.Fprintf(out, "Cumulative profit: %s units\n", s.CumProfitUnits.StringFixedBank(4))
		fmt.Fprintf(out, "ROI:               %s\n", s.ROITotal.StringFixedBank(4))
		fmt.Fprintf(out, "Peak profit:       %s units\n", s.PeakCumProfit.StringFixedBank(4))
		fmt.Fprintf(out, "Max drawdown:      %s units\n", s.MaxDrawdown.StringFixedBank(4))
		fmt.Fprintf(out, "Longest losing run: %d\n", s.LongestLosing)
		return nil
	},
}
