// Package logger provides ledger logging.
package logger

import (
	"github.com/sirupsen/logrus"
)

// LedgerLogger logs ledger store events.
type LedgerLogger struct {
	*logrus.Entry
}

// NewLedgerLogger creates a new ledger logger.
func NewLedgerLogger(baseLogger *logrus.Logger, storePath string) *LedgerLogger {
	return &LedgerLogger{
		Entry: baseLogger.WithFields(logrus.Fields{
			"component": "ledger",
			"store":     storePath,
		}),
	}
}

// LogStoreCreated logs creation of a fresh store with its header.
func (ll *LedgerLogger) LogStoreCreated() {
	ll.Info("Ledger store created")
}

// LogRowAppended logs a settled bet appended to the store.
func (ll *LedgerLogger) LogRowAppended(date, horse, result string, profit, cumProfit, roi float64, rowCount int) {
	ll.WithFields(logrus.Fields{
		"date":             date,
		"horse":            horse,
		"result":           result,
		"profit_units":     profit,
		"cum_profit_units": cumProfit,
		"roi_total":        roi,
		"rows":             rowCount,
	}).Info("Settled bet appended")
}

// LogCorruptTail logs recovery from an unreadable cumulative field on the last row.
func (ll *LedgerLogger) LogCorruptTail(rawValue string, lineNumber int) {
	ll.WithFields(logrus.Fields{
		"raw_value": rawValue,
		"line":      lineNumber,
	}).Warn("Last ledger row has no readable cumulative profit, continuing from zero")
}
