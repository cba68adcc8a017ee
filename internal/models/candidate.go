package models

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Candidate is one runner the user shortlisted for the day
type Candidate struct {
	Course      string              `json:"course" validate:"required"`
	Time        string              `json:"time" validate:"required"`
	Horse       string              `json:"horse" validate:"required"`
	OddsDecimal decimal.NullDecimal `json:"odds_decimal"`
	Notes       string              `json:"notes,omitempty"`
}

// CandidateFile is the dated racecard the user edits by hand
type CandidateFile struct {
	Date       string      `json:"date"`
	Candidates []Candidate `json:"candidates" validate:"required,min=1,dive"`

	// Raw keeps the file exactly as written so it can be shown to the model
	Raw json.RawMessage `json:"-"`
}

// Validate checks required fields and odds of a candidate
func (c Candidate) Validate() error {
	if c.Course == "" || c.Time == "" || c.Horse == "" {
		return ErrIncompleteCandidate
	}
	if c.OddsDecimal.Valid && c.OddsDecimal.Decimal.LessThanOrEqual(decimal.NewFromInt(1)) {
		return ErrInvalidOdds
	}
	return nil
}
