package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Selection is the single bet chosen from the day's candidates
type Selection struct {
	Course      string              `json:"course"`
	Time        string              `json:"time"`
	Horse       string              `json:"horse"`
	OddsDecimal decimal.NullDecimal `json:"odds_decimal"`
}

// MissingFields lists the required selection keys that are absent
func (s *Selection) MissingFields() []string {
	var missing []string
	if s.Course == "" {
		missing = append(missing, "course")
	}
	if s.Time == "" {
		missing = append(missing, "time")
	}
	if s.Horse == "" {
		missing = append(missing, "horse")
	}
	if !s.OddsDecimal.Valid {
		missing = append(missing, "odds_decimal")
	}
	return missing
}

// Matches reports whether the selection names the given candidate
func (s *Selection) Matches(c Candidate) bool {
	return c.Course == s.Course && c.Time == s.Time && c.Horse == s.Horse
}

// Odds returns the selection odds as a float, zero when absent
func (s *Selection) Odds() float64 {
	if !s.OddsDecimal.Valid {
		return 0
	}
	return s.OddsDecimal.Decimal.InexactFloat64()
}

// PredictionMeta records how a prediction was produced
type PredictionMeta struct {
	RunID       uuid.UUID `json:"run_id"`
	Model       string    `json:"model"`
	Temperature float64   `json:"temperature"`
	CreatedAt   time.Time `json:"created_at"`
	PromptFile  string    `json:"prompt_file"`
}

// Prediction is the saved output of the selection step for one date
type Prediction struct {
	Date           string         `json:"date"`
	CandidatesFile string         `json:"candidates_file"`
	Selection      *Selection     `json:"selection"`
	Reasoning      string         `json:"reasoning"`
	Meta           PredictionMeta `json:"meta"`
}
