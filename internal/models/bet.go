package models

import (
	"fmt"
	"strings"
)

// StakeUnits is the fixed stake placed on every selection.
const StakeUnits = 1.0

// BetResult represents the outcome of a settled bet
type BetResult string

const (
	BetResultWin  BetResult = "WIN"
	BetResultLose BetResult = "LOSE"
)

// ParseBetResult accepts win/lose in any case
func ParseBetResult(s string) (BetResult, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case string(BetResultWin):
		return BetResultWin, nil
	case string(BetResultLose):
		return BetResultLose, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidResult, s)
	}
}

// IsValid reports whether the result is WIN or LOSE
func (r BetResult) IsValid() bool {
	return r == BetResultWin || r == BetResultLose
}

// Label returns the lowercase text stored in the ledger
func (r BetResult) Label() string {
	return strings.ToLower(string(r))
}

// SettledBet is a fully resolved bet handed to the ledger
type SettledBet struct {
	Date        string    `json:"date"`
	Course      string    `json:"course"`
	Time        string    `json:"time"`
	Horse       string    `json:"horse"`
	OddsDecimal float64   `json:"odds_decimal"`
	Result      BetResult `json:"result"`
	ProfitUnits float64   `json:"profit_units"`
}

// NewSettledBet builds a settled bet under the fixed one-unit stake
func NewSettledBet(date, course, raceTime, horse string, spDecimal float64, won bool) SettledBet {
	result := BetResultLose
	if won {
		result = BetResultWin
	}
	return SettledBet{
		Date:        date,
		Course:      course,
		Time:        raceTime,
		Horse:       horse,
		OddsDecimal: spDecimal,
		Result:      result,
		ProfitUnits: ProfitFor(spDecimal, won),
	}
}

// ProfitFor returns the profit in stake units for a one-unit stake
func ProfitFor(spDecimal float64, won bool) float64 {
	if won {
		return spDecimal - StakeUnits
	}
	return -StakeUnits
}
