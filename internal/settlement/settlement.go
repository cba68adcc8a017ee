// Package settlement records the outcome of a saved prediction and feeds the ledger.
package settlement

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/racehorse-ledger/internal/config"
	"github.com/yourusername/racehorse-ledger/internal/ledger"
	"github.com/yourusername/racehorse-ledger/internal/logger"
	"github.com/yourusername/racehorse-ledger/internal/models"
	"github.com/yourusername/racehorse-ledger/internal/prediction"
)

var (
	// ErrNoPrediction indicates there is nothing to settle for the date
	ErrNoPrediction = prediction.ErrPredictionNotFound
	// ErrIncompleteSelection indicates the saved prediction lacks selection fields
	ErrIncompleteSelection = errors.New("prediction file is missing some selection fields")
	// ErrInvalidSP indicates the starting price is not a usable decimal price
	ErrInvalidSP = errors.New("invalid SP decimal odds")
)

// LedgerAppender appends a settled bet to the ledger store
type LedgerAppender interface {
	Append(ctx context.Context, bet models.SettledBet) (*ledger.Row, error)
}

// Outcome is what a settlement produced
type Outcome struct {
	Record     *models.ResultRecord
	ResultPath string
	Row        *ledger.Row
}

// Settler turns a prediction plus the race outcome into a result file and a ledger row
type Settler struct {
	predictionsDir string
	resultsDir     string
	ledger         LedgerAppender
	audit          *logger.AuditLogger
	logger         *logrus.Logger
}

// NewSettler creates a new settler
func NewSettler(cfg *config.Config, appender LedgerAppender, log *logrus.Logger) *Settler {
	return &Settler{
		predictionsDir: cfg.PredictionsDir(),
		resultsDir:     cfg.ResultsDir(),
		ledger:         appender,
		audit:          logger.NewAuditLogger(log),
		logger:         log,
	}
}

// Selection loads the prediction for date and checks its selection is complete
func (s *Settler) Selection(date string) (*models.Prediction, error) {
	if err := models.ValidateDate(date); err != nil {
		return nil, err
	}

	pred, err := prediction.LoadPrediction(s.predictionsDir, date)
	if err != nil {
		return nil, err
	}

	sel := pred.Selection
	if sel == nil || len(sel.MissingFields()) > 0 || sel.Odds() == 0 {
		return nil, fmt.Errorf("%w: %s", ErrIncompleteSelection, date)
	}
	return pred, nil
}

// Settle records the outcome for date. A zero sp uses the predicted odds.
// The result file is written before the ledger row is appended.
func (s *Settler) Settle(ctx context.Context, date string, won bool, sp float64) (*Outcome, error) {
	pred, err := s.Selection(date)
	if err != nil {
		return nil, err
	}

	if sp == 0 {
		sp = pred.Selection.Odds()
	}
	if math.IsNaN(sp) || math.IsInf(sp, 0) || sp < 1 {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSP, sp)
	}

	record := &models.ResultRecord{
		Date:      date,
		Selection: pred.Selection,
		Reasoning: pred.Reasoning,
		Result: models.SettlementResult{
			Won:         won,
			SPDecimal:   sp,
			StakeUnits:  models.StakeUnits,
			ProfitUnits: models.ProfitFor(sp, won),
		},
	}

	resultPath, err := s.writeResult(record)
	if err != nil {
		return nil, err
	}

	s.audit.LogSettlementRecorded(date, record.Selection.Horse, won, sp, record.Result.ProfitUnits)

	row, err := s.ledger.Append(ctx, record.SettledBet())
	if err != nil {
		s.logger.WithError(err).WithField("result_file", resultPath).Error("Result saved but ledger append failed")
		return nil, fmt.Errorf("failed to append to ledger: %w", err)
	}

	return &Outcome{
		Record:     record,
		ResultPath: resultPath,
		Row:        row,
	}, nil
}

func (s *Settler) writeResult(record *models.ResultRecord) (string, error) {
	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode result: %w", err)
	}

	if err := os.MkdirAll(s.resultsDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create results directory: %w", err)
	}

	path := filepath.Join(s.resultsDir, record.Date+".json")
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return "", fmt.Errorf("failed to write result: %w", err)
	}
	return path, nil
}
