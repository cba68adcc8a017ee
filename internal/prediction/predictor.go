package prediction

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/racehorse-ledger/internal/config"
	"github.com/yourusername/racehorse-ledger/internal/logger"
	"github.com/yourusername/racehorse-ledger/internal/metrics"
	"github.com/yourusername/racehorse-ledger/internal/models"
	"github.com/yourusername/racehorse-ledger/internal/racecard"
)

const systemMessage = "You are a UK horse racing analyst. " +
	"Pick exactly one value bet of the day from the candidate bets provided. " +
	"Never invent horses or races that are not in the candidates JSON."

// modelAnswer is the JSON object the model is asked to return
type modelAnswer struct {
	Selection *models.Selection `json:"selection"`
	Reasoning string            `json:"reasoning"`
}

// Predictor asks the completion service for the day's selection and saves it
type Predictor struct {
	racecards      *racecard.Store
	client         Completer
	model          config.ModelConfig
	promptPath     string
	predictionsDir string
	root           string
	audit          *logger.AuditLogger
	logger         *logrus.Logger
	now            func() time.Time
}

// NewPredictor creates a new predictor
func NewPredictor(cfg *config.Config, racecards *racecard.Store, client Completer, log *logrus.Logger) *Predictor {
	return &Predictor{
		racecards:      racecards,
		client:         client,
		model:          cfg.Model,
		promptPath:     cfg.PromptPath(),
		predictionsDir: cfg.PredictionsDir(),
		root:           cfg.Paths.Root,
		audit:          logger.NewAuditLogger(log),
		logger:         log,
		now:            time.Now,
	}
}

// PathFor returns the prediction file for date
func (p *Predictor) PathFor(date string) string {
	return filepath.Join(p.predictionsDir, date+".json")
}

// Predict selects one candidate for date and writes the prediction file.
// Nothing is written when the model answer fails validation.
func (p *Predictor) Predict(ctx context.Context, date string) (*models.Prediction, error) {
	card, err := p.racecards.Load(date)
	if err != nil {
		return nil, err
	}

	prompt, err := os.ReadFile(p.promptPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read prompt file: %w", err)
	}

	userContent, err := buildUserMessage(string(prompt), date, card.Raw)
	if err != nil {
		return nil, err
	}

	p.logger.WithFields(logrus.Fields{
		"date":       date,
		"model":      p.model.ModelName,
		"candidates": len(card.Candidates),
	}).Info("Requesting selection")

	completion, err := p.client.Complete(ctx, CompletionRequest{
		Model:          p.model.ModelName,
		Temperature:    p.model.Temperature,
		MaxTokens:      p.model.MaxTokens,
		ResponseFormat: &ResponseFormat{Type: "json_object"},
		Messages: []ChatMessage{
			{Role: "system", Content: systemMessage},
			{Role: "user", Content: userContent},
		},
	})
	if err != nil {
		metrics.RecordPrediction("failed")
		return nil, err
	}

	var answer modelAnswer
	if err := json.Unmarshal([]byte(completion.Content), &answer); err != nil {
		metrics.RecordPrediction("invalid_json")
		p.logger.WithField("content", completion.Content).Warn("Model returned content that is not JSON")
		return nil, fmt.Errorf("%w: %v", ErrInvalidModelResponse, err)
	}

	if err := ValidateSelection(answer.Selection, card.Candidates); err != nil {
		metrics.RecordPrediction("rejected")
		return nil, err
	}

	modelName := completion.Model
	if modelName == "" {
		modelName = p.model.ModelName
	}

	prediction := &models.Prediction{
		Date:           date,
		CandidatesFile: p.relative(p.racecards.PathFor(date)),
		Selection:      answer.Selection,
		Reasoning:      strings.TrimSpace(answer.Reasoning),
		Meta: models.PredictionMeta{
			RunID:       uuid.New(),
			Model:       modelName,
			Temperature: p.model.Temperature,
			CreatedAt:   p.now().UTC(),
			PromptFile:  p.model.PromptFile,
		},
	}

	if err := p.save(prediction); err != nil {
		return nil, err
	}

	metrics.RecordPrediction("saved")
	s := prediction.Selection
	p.audit.LogPredictionSaved(prediction.Meta.RunID.String(), date, s.Course, s.Time, s.Horse, s.Odds(), modelName)

	return prediction, nil
}

func (p *Predictor) save(prediction *models.Prediction) error {
	data, err := json.MarshalIndent(prediction, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode prediction: %w", err)
	}

	if err := os.MkdirAll(p.predictionsDir, 0o755); err != nil {
		return fmt.Errorf("failed to create predictions directory: %w", err)
	}

	if err := os.WriteFile(p.PathFor(prediction.Date), append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("failed to write prediction: %w", err)
	}
	return nil
}

func (p *Predictor) relative(path string) string {
	if p.root == "" {
		return path
	}
	rel, err := filepath.Rel(p.root, path)
	if err != nil {
		return path
	}
	return rel
}

func buildUserMessage(prompt, date string, raw json.RawMessage) (string, error) {
	var candidates bytes.Buffer
	if err := json.Indent(&candidates, raw, "", "  "); err != nil {
		return "", fmt.Errorf("failed to format candidates: %w", err)
	}

	var b strings.Builder
	b.WriteString(strings.TrimSpace(prompt))
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "Today's date is %s.\n\n", date)
	b.WriteString("Here is today's candidate bets JSON:\n")
	b.Write(candidates.Bytes())
	return b.String(), nil
}

// LoadPrediction reads the saved prediction for date from dir
func LoadPrediction(dir, date string) (*models.Prediction, error) {
	path := filepath.Join(dir, date+".json")
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w %s at %s", ErrPredictionNotFound, date, path)
		}
		return nil, fmt.Errorf("failed to read prediction: %w", err)
	}

	var prediction models.Prediction
	if err := json.Unmarshal(data, &prediction); err != nil {
		return nil, fmt.Errorf("failed to parse prediction %s: %w", path, err)
	}
	return &prediction, nil
}
