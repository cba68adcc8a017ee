package ledger

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/yourusername/racehorse-ledger/internal/models"
)

// Column order of the ledger store
const (
	colDate = iota
	colCourse
	colTime
	colHorse
	colOdds
	colResult
	colProfit
	colCumProfit
	colROI
	columnCount
)

// fractionDigits is the fixed precision of every numeric field in the store.
// Ties round half to even.
const fractionDigits = 4

// Header is the schema row written once when the store is created
var Header = []string{
	"date",
	"course",
	"time",
	"horse",
	"odds_decimal",
	"result",
	"profit_units",
	"cum_profit_units",
	"roi_total",
}

// Row is one settled bet as stored in the ledger, with its running totals
type Row struct {
	Date           string
	Course         string
	Time           string
	Horse          string
	OddsDecimal    decimal.Decimal
	Result         models.BetResult
	ProfitUnits    decimal.Decimal
	CumProfitUnits decimal.Decimal
	ROITotal       decimal.Decimal
}

// Record renders the row as CSV fields in store order
func (r Row) Record() []string {
	return []string{
		r.Date,
		r.Course,
		r.Time,
		r.Horse,
		r.OddsDecimal.StringFixedBank(fractionDigits),
		r.Result.Label(),
		r.ProfitUnits.StringFixedBank(fractionDigits),
		r.CumProfitUnits.StringFixedBank(fractionDigits),
		r.ROITotal.StringFixedBank(fractionDigits),
	}
}

// CumProfit returns the cumulative profit as a float
func (r Row) CumProfit() float64 {
	return r.CumProfitUnits.InexactFloat64()
}

// ROI returns the aggregate ROI as a float
func (r Row) ROI() float64 {
	return r.ROITotal.InexactFloat64()
}

// parseRow converts a stored record back into a Row
func parseRow(record []string) (Row, error) {
	if len(record) != columnCount {
		return Row{}, fmt.Errorf("expected %d fields, got %d", columnCount, len(record))
	}

	result, err := models.ParseBetResult(record[colResult])
	if err != nil {
		return Row{}, err
	}

	row := Row{
		Date:   record[colDate],
		Course: record[colCourse],
		Time:   record[colTime],
		Horse:  record[colHorse],
		Result: result,
	}

	numeric := []struct {
		name string
		raw  string
		dst  *decimal.Decimal
	}{
		{Header[colOdds], record[colOdds], &row.OddsDecimal},
		{Header[colProfit], record[colProfit], &row.ProfitUnits},
		{Header[colCumProfit], record[colCumProfit], &row.CumProfitUnits},
		{Header[colROI], record[colROI], &row.ROITotal},
	}
	for _, n := range numeric {
		d, err := decimal.NewFromString(n.raw)
		if err != nil {
			return Row{}, fmt.Errorf("%s %q is not a number", n.name, n.raw)
		}
		*n.dst = d
	}

	return row, nil
}
