// Package racecard manages the dated candidate files the user edits by hand.
package racecard

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"

	"github.com/yourusername/racehorse-ledger/internal/models"
)

var (
	// ErrTemplateNotFound indicates the example candidates file is missing
	ErrTemplateNotFound = errors.New("example candidates file not found")
	// ErrRacecardNotFound indicates no candidates file exists for the date
	ErrRacecardNotFound = errors.New("no candidates file for date")
	// ErrEmptyCandidates indicates the candidates list is missing or empty
	ErrEmptyCandidates = errors.New("candidates list is missing or empty")
	// ErrInvalidCandidate indicates a candidate failed validation
	ErrInvalidCandidate = errors.New("invalid candidate")
)

// Store reads and writes candidate files in a single directory
type Store struct {
	dir      string
	template string
	validate *validator.Validate
}

// PrepareResult describes the dated file after Prepare
type PrepareResult struct {
	Path    string
	Existed bool
}

// NewStore creates a store rooted at dir using templateFile as the daily template
func NewStore(dir, templateFile string) *Store {
	return &Store{
		dir:      dir,
		template: templateFile,
		validate: validator.New(),
	}
}

// PathFor returns the candidates file for date
func (s *Store) PathFor(date string) string {
	return filepath.Join(s.dir, date+".json")
}

// TemplatePath returns the example candidates file
func (s *Store) TemplatePath() string {
	return filepath.Join(s.dir, s.template)
}

// Prepare copies the template to the dated file with its date set.
// An existing dated file is never overwritten.
func (s *Store) Prepare(date string) (*PrepareResult, error) {
	if err := models.ValidateDate(date); err != nil {
		return nil, err
	}

	dst := s.PathFor(date)
	data, err := os.ReadFile(s.TemplatePath())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrTemplateNotFound, s.TemplatePath())
		}
		return nil, fmt.Errorf("failed to read template: %w", err)
	}

	if _, err := os.Stat(dst); err == nil {
		return &PrepareResult{Path: dst, Existed: true}, nil
	}

	var card map[string]interface{}
	if err := json.Unmarshal(data, &card); err != nil {
		return nil, fmt.Errorf("failed to parse template %s: %w", s.TemplatePath(), err)
	}
	card["date"] = date

	out, err := json.MarshalIndent(card, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode racecard: %w", err)
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create racecards directory: %w", err)
	}

	f, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return &PrepareResult{Path: dst, Existed: true}, nil
		}
		return nil, fmt.Errorf("failed to create racecard: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(append(out, '\n')); err != nil {
		return nil, fmt.Errorf("failed to write racecard: %w", err)
	}

	return &PrepareResult{Path: dst, Existed: false}, nil
}

// Load reads and validates the candidates file for date
func (s *Store) Load(date string) (*models.CandidateFile, error) {
	if err := models.ValidateDate(date); err != nil {
		return nil, err
	}

	path := s.PathFor(date)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w %s at %s, run the racecards command first and edit the file", ErrRacecardNotFound, date, path)
		}
		return nil, fmt.Errorf("failed to read racecard: %w", err)
	}

	var card models.CandidateFile
	if err := json.Unmarshal(data, &card); err != nil {
		return nil, fmt.Errorf("failed to parse racecard %s: %w", path, err)
	}
	card.Raw = data

	if len(card.Candidates) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyCandidates, path)
	}

	if err := s.validate.Struct(&card); err != nil {
		return nil, fmt.Errorf("%w in %s: %v", ErrInvalidCandidate, path, err)
	}
	for i, c := range card.Candidates {
		if err := c.Validate(); err != nil {
			return nil, fmt.Errorf("%w %d in %s: %v", ErrInvalidCandidate, i, path, err)
		}
	}

	return &card, nil
}
