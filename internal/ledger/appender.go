// Package ledger maintains the append-only settled bet ledger and its
// running cumulative profit and ROI.
//
// The store is a CSV file. Every row carries the running totals as of that
// row, so the last row alone is enough to continue the series and no
// separate counter is persisted.
package ledger

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/racehorse-ledger/internal/logger"
	"github.com/yourusername/racehorse-ledger/internal/metrics"
	"github.com/yourusername/racehorse-ledger/internal/models"
)

const defaultLockPoll = 50 * time.Millisecond

var (
	// ErrInvalidBet is returned before the store is touched
	ErrInvalidBet = errors.New("invalid settled bet")
	// ErrMalformedRow is returned by Rows for a data row that cannot be read back
	ErrMalformedRow = errors.New("malformed ledger row")
)

// Appender appends settled bets to a ledger store at a fixed path
type Appender struct {
	path     string
	lockPath string
	lockPoll time.Duration
	log      *logger.LedgerLogger
}

// NewAppender creates an appender for the store at path
func NewAppender(path string, log *logrus.Logger) *Appender {
	if log == nil {
		log = logrus.New()
		log.SetOutput(io.Discard)
	}
	return &Appender{
		path:     path,
		lockPath: path + ".lock",
		lockPoll: defaultLockPoll,
		log:      logger.NewLedgerLogger(log, path),
	}
}

// Path returns the store location
func (a *Appender) Path() string {
	return a.path
}

// tail is what the next append needs to know about the existing store
type tail struct {
	hasHeader bool
	rows      int
	cumProfit decimal.Decimal
}

// Append writes one settled bet to the store, extending the running totals.
// The store and its parent directory are created on first use. The whole
// read-then-append sequence runs under an exclusive lock on a sidecar file.
func (a *Appender) Append(ctx context.Context, bet models.SettledBet) (*Row, error) {
	if err := validateBet(bet); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := os.MkdirAll(filepath.Dir(a.path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create ledger directory: %w", err)
	}

	lock := flock.New(a.lockPath)
	if _, err := lock.TryLockContext(ctx, a.lockPoll); err != nil {
		return nil, fmt.Errorf("failed to lock ledger: %w", err)
	}
	defer lock.Unlock()

	f, err := os.OpenFile(a.path, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger: %w", err)
	}
	defer f.Close()

	prev, err := a.readTail(f)
	if err != nil {
		return nil, err
	}

	row := nextRow(bet, prev)

	if err := terminateLastLine(f); err != nil {
		return nil, err
	}

	w := csv.NewWriter(f)
	if !prev.hasHeader {
		if err := w.Write(Header); err != nil {
			return nil, fmt.Errorf("failed to write ledger header: %w", err)
		}
	}
	if err := w.Write(row.Record()); err != nil {
		return nil, fmt.Errorf("failed to write ledger row: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to write ledger row: %w", err)
	}
	if err := f.Sync(); err != nil {
		return nil, fmt.Errorf("failed to sync ledger: %w", err)
	}

	if !prev.hasHeader {
		a.log.LogStoreCreated()
	}
	count := prev.rows + 1
	a.log.LogRowAppended(row.Date, row.Horse, row.Result.Label(), row.ProfitUnits.InexactFloat64(), row.CumProfit(), row.ROI(), count)
	metrics.RecordAppend(row.CumProfit(), row.ROI(), count)

	return &row, nil
}

// nextRow computes the running totals for bet given the existing tail
func nextRow(bet models.SettledBet, prev tail) Row {
	profit := decimal.NewFromFloat(bet.ProfitUnits)
	cum := prev.cumProfit.Add(profit)
	roi := cum.Div(decimal.NewFromInt(int64(prev.rows + 1)))

	return Row{
		Date:           bet.Date,
		Course:         bet.Course,
		Time:           bet.Time,
		Horse:          bet.Horse,
		OddsDecimal:    decimal.NewFromFloat(bet.OddsDecimal),
		Result:         bet.Result,
		ProfitUnits:    profit,
		CumProfitUnits: cum,
		ROITotal:       roi,
	}
}

// readTail reads every record once, keeping only the count and the last
// row's cumulative field. The first record is the header.
func (a *Appender) readTail(r io.Reader) (tail, error) {
	var (
		t       tail
		last    []string
		lastLn  int
		records int
	)

	cr := newReader(r)
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return tail{}, fmt.Errorf("failed to read ledger: %w", err)
		}
		records++
		if records == 1 {
			t.hasHeader = true
			continue
		}
		last = record
		lastLn, _ = cr.FieldPos(0)
	}

	if records <= 1 {
		return t, nil
	}

	t.rows = records - 1
	t.cumProfit = a.priorCumulative(last, lastLn)
	return t, nil
}

// priorCumulative parses the cumulative profit of the last data row.
// A missing or unparsable field is recovered as a zero baseline so that a
// damaged tail never blocks the next append. Only this case is recovered;
// read errors are returned by the caller.
func (a *Appender) priorCumulative(record []string, line int) decimal.Decimal {
	var raw string
	if len(record) > colCumProfit {
		raw = strings.TrimSpace(record[colCumProfit])
		if cum, err := decimal.NewFromString(raw); err == nil {
			return cum
		}
	}

	a.log.LogCorruptTail(raw, line)
	metrics.RecordCorruptTail()
	return decimal.Zero
}

// Rows returns every data row in append order. A missing store has no rows.
func (a *Appender) Rows(ctx context.Context) ([]Row, error) {
	if _, err := os.Stat(a.path); errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}

	lock := flock.New(a.lockPath)
	if _, err := lock.TryRLockContext(ctx, a.lockPoll); err != nil {
		return nil, fmt.Errorf("failed to lock ledger: %w", err)
	}
	defer lock.Unlock()

	f, err := os.Open(a.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger: %w", err)
	}
	defer f.Close()

	cr := newReader(f)
	var rows []Row
	header := true
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read ledger: %w", err)
		}
		if header {
			header = false
			continue
		}
		row, err := parseRow(record)
		if err != nil {
			line, _ := cr.FieldPos(0)
			return nil, fmt.Errorf("%w at line %d: %v", ErrMalformedRow, line, err)
		}
		rows = append(rows, row)
	}

	return rows, nil
}

// terminateLastLine writes a newline when the store does not end with one,
// so a row cut short by a crash is not joined to the next row.
func terminateLastLine(f *os.File) error {
	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat ledger: %w", err)
	}
	if info.Size() == 0 {
		return nil
	}

	last := make([]byte, 1)
	if _, err := f.ReadAt(last, info.Size()-1); err != nil {
		return fmt.Errorf("failed to read ledger: %w", err)
	}
	if last[0] == '\n' {
		return nil
	}
	if _, err := f.Write([]byte{'\n'}); err != nil {
		return fmt.Errorf("failed to write ledger: %w", err)
	}
	return nil
}

func newReader(r io.Reader) *csv.Reader {
	cr := csv.NewReader(r)
	// A damaged row may have lost fields; that is handled per row
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	return cr
}

func validateBet(bet models.SettledBet) error {
	var problems []string

	if strings.TrimSpace(bet.Date) == "" {
		problems = append(problems, "date is required")
	}
	if strings.TrimSpace(bet.Course) == "" {
		problems = append(problems, "course is required")
	}
	if strings.TrimSpace(bet.Time) == "" {
		problems = append(problems, "time is required")
	}
	if strings.TrimSpace(bet.Horse) == "" {
		problems = append(problems, "horse is required")
	}
	if !bet.Result.IsValid() {
		problems = append(problems, fmt.Sprintf("result must be WIN or LOSE, got %q", bet.Result))
	}
	if !isFinite(bet.OddsDecimal) {
		problems = append(problems, "odds_decimal must be finite")
	}
	if !isFinite(bet.ProfitUnits) {
		problems = append(problems, "profit_units must be finite")
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidBet, strings.Join(problems, "; "))
	}
	return nil
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
