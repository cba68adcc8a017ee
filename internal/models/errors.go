package models

import "errors"

// Custom errors
var (
	ErrInvalidResult       = errors.New("result must be win or lose")
	ErrInvalidOdds         = errors.New("decimal odds must be greater than 1")
	ErrIncompleteCandidate = errors.New("candidate is missing course, time or horse")
)
