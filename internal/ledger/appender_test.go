package ledger

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/racehorse-ledger/internal/models"
)

const headerLine = "date,course,time,horse,odds_decimal,result,profit_units,cum_profit_units,roi_total"

func newTestAppender(t *testing.T) (*Appender, *logtest.Hook) {
	t.Helper()
	log, hook := logtest.NewNullLogger()
	path := filepath.Join(t.TempDir(), "metrics", "summary.csv")
	return NewAppender(path, log), hook
}

func readLines(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
}

func writeStore(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func thunderbolt() models.SettledBet {
	return models.SettledBet{
		Date: "2024-05-01", Course: "Ascot", Time: "14:30", Horse: "Thunderbolt",
		OddsDecimal: 3.50, Result: models.BetResultWin, ProfitUnits: 2.50,
	}
}

func silverArrow() models.SettledBet {
	return models.SettledBet{
		Date: "2024-05-02", Course: "Epsom", Time: "15:00", Horse: "Silver Arrow",
		OddsDecimal: 5.00, Result: models.BetResultLose, ProfitUnits: -1.00,
	}
}

func TestAppendCreatesFreshStore(t *testing.T) {
	appender, _ := newTestAppender(t)

	row, err := appender.Append(context.Background(), thunderbolt())
	require.NoError(t, err)
	require.NotNil(t, row)

	lines := readLines(t, appender.Path())
	require.Len(t, lines, 2)
	assert.Equal(t, headerLine, lines[0])
	assert.Equal(t, "2024-05-01,Ascot,14:30,Thunderbolt,3.5000,win,2.5000,2.5000,2.5000", lines[1])
}

func TestAppendScenario(t *testing.T) {
	appender, _ := newTestAppender(t)
	ctx := context.Background()

	_, err := appender.Append(ctx, thunderbolt())
	require.NoError(t, err)
	row, err := appender.Append(ctx, silverArrow())
	require.NoError(t, err)

	assert.Equal(t, "1.5000", row.CumProfitUnits.StringFixed(4))
	assert.Equal(t, "0.7500", row.ROITotal.StringFixed(4))

	lines := readLines(t, appender.Path())
	require.Len(t, lines, 3)
	assert.Equal(t, "2024-05-02,Epsom,15:00,Silver Arrow,5.0000,lose,-1.0000,1.5000,0.7500", lines[2])
}

func TestAppendRunningTotals(t *testing.T) {
	appender, _ := newTestAppender(t)
	ctx := context.Background()

	profits := []float64{2.5, -1, -1, 0.75, 10, -1, -1, -1, 3.2}
	before := []string{}

	for i, p := range profits {
		result := models.BetResultLose
		if p > 0 {
			result = models.BetResultWin
		}
		bet := models.SettledBet{
			Date: fmt.Sprintf("2024-06-%02d", i+1), Course: "York", Time: "13:50",
			Horse: fmt.Sprintf("Runner %d", i), OddsDecimal: p + 1, Result: result, ProfitUnits: p,
		}
		_, err := appender.Append(ctx, bet)
		require.NoError(t, err)

		lines := readLines(t, appender.Path())
		require.Len(t, lines, i+2, "one header plus one row per append")
		assert.Equal(t, before, lines[:len(before)], "existing rows are never rewritten")
		before = lines
	}

	rows, err := appender.Rows(ctx)
	require.NoError(t, err)
	require.Len(t, rows, len(profits))

	sum := 0.0
	for k, r := range rows {
		sum += profits[k]
		want := decimal.NewFromFloat(sum)
		assert.Equal(t, want.StringFixed(4), r.CumProfitUnits.StringFixed(4), "cumulative at row %d", k+1)
		assert.Equal(t, want.Div(decimal.NewFromInt(int64(k+1))).StringFixedBank(4), r.ROITotal.StringFixed(4), "roi at row %d", k+1)
	}
}

func TestAppendRoundsHalfToEven(t *testing.T) {
	appender, _ := newTestAppender(t)
	ctx := context.Background()

	bets := []models.SettledBet{
		models.NewSettledBet("2024-05-01", "Ascot", "14:30", "A", 2.125, true),
		models.NewSettledBet("2024-05-02", "Ascot", "14:30", "B", 3.0, false),
		models.NewSettledBet("2024-05-03", "Ascot", "14:30", "C", 2.0, true),
		models.NewSettledBet("2024-05-04", "Ascot", "14:30", "D", 3.0, false),
	}
	for _, bet := range bets {
		_, err := appender.Append(ctx, bet)
		require.NoError(t, err)
	}

	lines := readLines(t, appender.Path())
	require.Len(t, lines, 5)
	assert.Equal(t, "2024-05-01,Ascot,14:30,A,2.1250,win,1.1250,1.1250,1.1250", lines[1])
	assert.Equal(t, "2024-05-02,Ascot,14:30,B,3.0000,lose,-1.0000,0.1250,0.0625", lines[2])
	// 0.125 / 4 = 0.03125 is stored as 0.0312
	assert.Equal(t, "2024-05-04,Ascot,14:30,D,3.0000,lose,-1.0000,0.1250,0.0312", lines[4])
}

func TestAppendHeaderOnlyStore(t *testing.T) {
	appender, _ := newTestAppender(t)
	writeStore(t, appender.Path(), headerLine+"\n")

	row, err := appender.Append(context.Background(), silverArrow())
	require.NoError(t, err)
	assert.Equal(t, "-1.0000", row.CumProfitUnits.StringFixed(4))
	assert.Equal(t, "-1.0000", row.ROITotal.StringFixed(4))

	lines := readLines(t, appender.Path())
	require.Len(t, lines, 2)
	assert.Equal(t, headerLine, lines[0])
}

func TestAppendEmptyExistingFileGetsHeader(t *testing.T) {
	appender, _ := newTestAppender(t)
	writeStore(t, appender.Path(), "")

	_, err := appender.Append(context.Background(), thunderbolt())
	require.NoError(t, err)

	lines := readLines(t, appender.Path())
	require.Len(t, lines, 2)
	assert.Equal(t, headerLine, lines[0])
}

func TestAppendCorruptTailRecovery(t *testing.T) {
	tests := []struct {
		name    string
		lastRow string
	}{
		{name: "non-numeric cumulative", lastRow: "2024-05-01,Ascot,14:30,Thunderbolt,3.5000,win,2.5000,oops,2.5000"},
		{name: "empty cumulative", lastRow: "2024-05-01,Ascot,14:30,Thunderbolt,3.5000,win,2.5000,,2.5000"},
		{name: "truncated row", lastRow: "2024-05-01,Ascot,14:30,Thunderbolt,3.5000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			appender, hook := newTestAppender(t)
			writeStore(t, appender.Path(), headerLine+"\n"+tt.lastRow+"\n")

			row, err := appender.Append(context.Background(), silverArrow())
			require.NoError(t, err)

			// Baseline is zero, the count still includes the damaged row
			assert.Equal(t, "-1.0000", row.CumProfitUnits.StringFixed(4))
			assert.Equal(t, "-0.5000", row.ROITotal.StringFixed(4))

			var warned bool
			for _, e := range hook.AllEntries() {
				if e.Level == logrus.WarnLevel {
					warned = true
				}
			}
			assert.True(t, warned, "recovery should be logged")

			lines := readLines(t, appender.Path())
			require.Len(t, lines, 3)
			assert.Equal(t, tt.lastRow, lines[1])
		})
	}
}

func TestAppendAfterUnterminatedLastLine(t *testing.T) {
	appender, _ := newTestAppender(t)
	writeStore(t, appender.Path(), headerLine+"\n"+
		"2024-05-01,Ascot,14:30,Thunderbolt,3.5000,win,2.5000,2.5000,2.5000")

	row, err := appender.Append(context.Background(), silverArrow())
	require.NoError(t, err)
	assert.Equal(t, "1.5000", row.CumProfitUnits.StringFixed(4))

	lines := readLines(t, appender.Path())
	require.Len(t, lines, 3)
	assert.Equal(t, "2024-05-02,Epsom,15:00,Silver Arrow,5.0000,lose,-1.0000,1.5000,0.7500", lines[2])
}

func TestAppendOnlyLastRowMatters(t *testing.T) {
	appender, _ := newTestAppender(t)
	writeStore(t, appender.Path(), headerLine+"\n"+
		"2024-05-01,Ascot,14:30,Thunderbolt,3.5000,win,2.5000,garbage,2.5000\n"+
		"2024-05-02,Epsom,15:00,Silver Arrow,5.0000,lose,-1.0000,10.0000,5.0000\n")

	row, err := appender.Append(context.Background(), thunderbolt())
	require.NoError(t, err)
	assert.Equal(t, "12.5000", row.CumProfitUnits.StringFixed(4))
	assert.Equal(t, "4.1667", row.ROITotal.StringFixed(4))
}

func TestAppendQuotesFieldsWithCommas(t *testing.T) {
	appender, _ := newTestAppender(t)
	ctx := context.Background()

	bet := thunderbolt()
	bet.Horse = "Thunder, Bolt"
	_, err := appender.Append(ctx, bet)
	require.NoError(t, err)
	_, err = appender.Append(ctx, silverArrow())
	require.NoError(t, err)

	rows, err := appender.Rows(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Thunder, Bolt", rows[0].Horse)
	assert.Equal(t, "1.5000", rows[1].CumProfitUnits.StringFixed(4))
}

func TestAppendRejectsInvalidBet(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*models.SettledBet)
	}{
		{name: "nan profit", mutate: func(b *models.SettledBet) { b.ProfitUnits = math.NaN() }},
		{name: "infinite odds", mutate: func(b *models.SettledBet) { b.OddsDecimal = math.Inf(1) }},
		{name: "unknown result", mutate: func(b *models.SettledBet) { b.Result = "VOID" }},
		{name: "missing horse", mutate: func(b *models.SettledBet) { b.Horse = " " }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			appender, _ := newTestAppender(t)
			bet := thunderbolt()
			tt.mutate(&bet)

			_, err := appender.Append(context.Background(), bet)
			assert.ErrorIs(t, err, ErrInvalidBet)

			_, statErr := os.Stat(appender.Path())
			assert.True(t, os.IsNotExist(statErr), "store must not be created")
		})
	}
}

func TestAppendStorageFailure(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "metrics")
	require.NoError(t, os.WriteFile(blocker, []byte("not a directory"), 0o644))

	appender := NewAppender(filepath.Join(blocker, "summary.csv"), nil)
	_, err := appender.Append(context.Background(), thunderbolt())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ledger directory")
}

func TestAppendCancelledContext(t *testing.T) {
	appender, _ := newTestAppender(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := appender.Append(ctx, thunderbolt())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAppendConcurrentAppendersKeepTotals(t *testing.T) {
	path := filepath.Join(t.TempDir(), "summary.csv")
	const writers = 8

	var wg sync.WaitGroup
	errs := make(chan error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			bet := silverArrow()
			bet.Horse = fmt.Sprintf("Runner %d", i)
			_, err := NewAppender(path, nil).Append(context.Background(), bet)
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	rows, err := NewAppender(path, nil).Rows(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, writers)
	for k, r := range rows {
		assert.Equal(t, decimal.NewFromInt(int64(-(k + 1))).StringFixed(4), r.CumProfitUnits.StringFixed(4))
		assert.Equal(t, "-1.0000", r.ROITotal.StringFixed(4))
	}
}

func TestRowsMissingStore(t *testing.T) {
	appender, _ := newTestAppender(t)
	rows, err := appender.Rows(context.Background())
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestRowsMalformed(t *testing.T) {
	appender, _ := newTestAppender(t)
	writeStore(t, appender.Path(), headerLine+"\n"+
		"2024-05-01,Ascot,14:30,Thunderbolt,3.5000,win,2.5000,oops,2.5000\n")

	_, err := appender.Rows(context.Background())
	require.ErrorIs(t, err, ErrMalformedRow)
	assert.Contains(t, err.Error(), "line 2")
}
