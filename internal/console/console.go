// Package console asks the user for the answers the commands need when flags are absent.
package console

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"

	"github.com/yourusername/racehorse-ledger/internal/models"
)

var (
	// ErrInvalidAnswer indicates the user typed something that cannot be used
	ErrInvalidAnswer = errors.New("invalid answer")
	// ErrNotInteractive indicates input is required but stdin is not a terminal
	ErrNotInteractive = errors.New("input required but stdin is not a terminal, pass the value as a flag")
)

// Prompter reads one line answers from in and writes questions to out
type Prompter struct {
	scanner *bufio.Scanner
	out     io.Writer
}

// NewPrompter creates a prompter over in and out
func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{
		scanner: bufio.NewScanner(in),
		out:     out,
	}
}

// IsInteractive reports whether stdin is attached to a terminal
func IsInteractive() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// Ask prints question and returns the trimmed answer, or def when the answer is blank
func (p *Prompter) Ask(question, def string) (string, error) {
	if def != "" {
		fmt.Fprintf(p.out, "%s [%s]: ", question, def)
	} else {
		fmt.Fprintf(p.out, "%s: ", question)
	}

	if !p.scanner.Scan() {
		if err := p.scanner.Err(); err != nil {
			return "", fmt.Errorf("failed to read answer: %w", err)
		}
		return def, nil
	}

	answer := strings.TrimSpace(p.scanner.Text())
	if answer == "" {
		return def, nil
	}
	return answer, nil
}

// Date asks for a YYYY-MM-DD date defaulting to today
func (p *Prompter) Date(question, today string) (string, error) {
	answer, err := p.Ask(question+" (YYYY-MM-DD)", today)
	if err != nil {
		return "", err
	}
	if err := models.ValidateDate(answer); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidAnswer, err)
	}
	return answer, nil
}

// YesNo asks a y/n question. Anything else is rejected.
func (p *Prompter) YesNo(question string) (bool, error) {
	answer, err := p.Ask(question+" (y/n)", "")
	if err != nil {
		return false, err
	}
	switch strings.ToLower(answer) {
	case "y":
		return true, nil
	case "n":
		return false, nil
	default:
		return false, fmt.Errorf("%w: please answer 'y' or 'n'", ErrInvalidAnswer)
	}
}

// Float asks for a number and returns def on a blank answer
func (p *Prompter) Float(question string, def float64) (float64, error) {
	fmt.Fprintf(p.out, "%s (press Enter to use %s): ", question, strconv.FormatFloat(def, 'f', -1, 64))

	if !p.scanner.Scan() {
		if err := p.scanner.Err(); err != nil {
			return 0, fmt.Errorf("failed to read answer: %w", err)
		}
		return def, nil
	}

	answer := strings.TrimSpace(p.scanner.Text())
	if answer == "" {
		return def, nil
	}

	v, err := strconv.ParseFloat(answer, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a number", ErrInvalidAnswer, answer)
	}
	return v, nil
}
