package models

// SettlementResult is the outcome captured from the user
type SettlementResult struct {
	Won         bool    `json:"won"`
	SPDecimal   float64 `json:"sp_decimal"`
	StakeUnits  float64 `json:"stake_units"`
	ProfitUnits float64 `json:"profit_units"`
}

// ResultRecord is the per-date results file written at settlement
type ResultRecord struct {
	Date      string           `json:"date"`
	Selection *Selection       `json:"selection"`
	Reasoning string           `json:"reasoning"`
	Result    SettlementResult `json:"result"`
}

// SettledBet converts the record into a ledger row input
func (r *ResultRecord) SettledBet() SettledBet {
	return NewSettledBet(r.Date, r.Selection.Course, r.Selection.Time, r.Selection.Horse, r.Result.SPDecimal, r.Result.Won)
}
