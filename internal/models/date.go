package models

import (
	"fmt"
	"time"
)

// DateLayout is the ISO calendar date used for file names and ledger rows
const DateLayout = "2006-01-02"

// ValidateDate checks that s is an ISO calendar date
func ValidateDate(s string) error {
	if _, err := time.Parse(DateLayout, s); err != nil {
		return fmt.Errorf("invalid date %q, expected YYYY-MM-DD", s)
	}
	return nil
}

// Today returns the current local date in DateLayout
func Today() string {
	return time.Now().Format(DateLayout)
}
