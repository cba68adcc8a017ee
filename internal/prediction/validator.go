package prediction

import (
	"fmt"
	"strings"

	"github.com/yourusername/racehorse-ledger/internal/models"
)

// ValidateSelection checks the selection is complete and names one of the
// supplied candidates by course, time and horse.
func ValidateSelection(selection *models.Selection, candidates []models.Candidate) error {
	if selection == nil {
		return ErrMissingSelection
	}

	if missing := selection.MissingFields(); len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingSelectionFields, strings.Join(missing, ", "))
	}

	for _, c := range candidates {
		if selection.Matches(c) {
			return nil
		}
	}

	return fmt.Errorf("%w: %s %s %s", ErrSelectionNotInCandidates, selection.Course, selection.Time, selection.Horse)
}
