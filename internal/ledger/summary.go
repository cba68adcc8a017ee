package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/yourusername/racehorse-ledger/internal/models"
)

// Summary aggregates a ledger for reporting
type Summary struct {
	Bets           int
	Wins           int
	Losses         int
	StrikeRate     float64
	CumProfitUnits decimal.Decimal
	ROITotal       decimal.Decimal
	PeakCumProfit  decimal.Decimal
	MaxDrawdown    decimal.Decimal
	LongestLosing  int
	FirstDate      string
	LastDate       string
}

// Summarize reports totals as stored on the rows. Cumulative profit and ROI
// are read from the last row rather than recomputed.
func Summarize(rows []Row) Summary {
	var s Summary
	if len(rows) == 0 {
		return s
	}

	s.Bets = len(rows)
	s.FirstDate = rows[0].Date
	s.LastDate = rows[len(rows)-1].Date
	s.CumProfitUnits = rows[len(rows)-1].CumProfitUnits
	s.ROITotal = rows[len(rows)-1].ROITotal

	// Drawdown is measured from the running peak, starting at zero
	peak := decimal.Zero
	losing := 0
	for _, r := range rows {
		if r.Result == models.BetResultWin {
			s.Wins++
			losing = 0
		} else {
			s.Losses++
			losing++
			if losing > s.LongestLosing {
				s.LongestLosing = losing
			}
		}

		if r.CumProfitUnits.GreaterThan(peak) {
			peak = r.CumProfitUnits
		}
		if dd := peak.Sub(r.CumProfitUnits); dd.GreaterThan(s.MaxDrawdown) {
			s.MaxDrawdown = dd
		}
	}

	s.PeakCumProfit = peak
	s.StrikeRate = float64(s.Wins) / float64(s.Bets)
	return s
}
