// Package logger provides audit logging.
package logger

import (
	"github.com/sirupsen/logrus"
)

// AuditLogger provides dedicated audit trail logging.
type AuditLogger struct {
	*logrus.Entry
}

// NewAuditLogger creates a new audit logger.
func NewAuditLogger(baseLogger *logrus.Logger) *AuditLogger {
	return &AuditLogger{
		Entry: baseLogger.WithField("component", "audit"),
	}
}

// LogRacecardPrepared logs creation of a dated candidates file.
func (al *AuditLogger) LogRacecardPrepared(date, path string, existed bool) {
	al.WithFields(logrus.Fields{
		"date":    date,
		"path":    path,
		"existed": existed,
	}).Info("Racecard prepared")
}

// LogPredictionSaved logs a validated selection written to disk.
func (al *AuditLogger) LogPredictionSaved(runID, date, course, raceTime, horse string, odds float64, model string) {
	al.WithFields(logrus.Fields{
		"run_id": runID,
		"date":   date,
		"course": course,
		"time":   raceTime,
		"horse":  horse,
		"odds":   odds,
		"model":  model,
	}).Info("Prediction recorded")
}

// LogSettlementRecorded logs the outcome captured for a prediction.
func (al *AuditLogger) LogSettlementRecorded(date, horse string, won bool, spDecimal, profit float64) {
	al.WithFields(logrus.Fields{
		"date":         date,
		"horse":        horse,
		"won":          won,
		"sp_decimal":   spDecimal,
		"profit_units": profit,
	}).Info("Settlement recorded")
}
