// Package logger provides training-specific logging.
package logger

import (
	"github.com/sirupsen/logrus"

	"github.com/yourusername/sharpe-scout/internal/models"
)

// TrainLogger provides dedicated logging for the training pipeline.
type TrainLogger struct {
	*logrus.Entry
}

// NewTrainLogger creates a new training logger.
func NewTrainLogger(baseLogger *logrus.Logger) *TrainLogger {
	return &TrainLogger{
		Entry: baseLogger.WithField("component", "training"),
	}
}

// LogRunCompleted logs a finished per-instrument training run.
func (t *TrainLogger) LogRunCompleted(run *models.TrainingRun) {
	t.WithFields(logrus.Fields{
		"run_id":          run.ID,
		"symbol":          run.Symbol,
		"epochs":          run.Epochs,
		"final_test_loss": run.FinalTestLoss(),
		"test_mse":        run.Final.MSE,
		"test_accuracy":   run.Final.Accuracy,
		"duration":        run.Duration().Seconds(),
	}).Info("Training run completed")
}

// LogInstrumentFailure logs a per-instrument failure that did not abort
// the batch.
func (t *TrainLogger) LogInstrumentFailure(symbol string, err error) {
	t.WithFields(logrus.Fields{
		"symbol": symbol,
	}).WithError(err).Warn("Instrument failed, continuing with remaining instruments")
}

// LogRankingTable logs the final descending ranking.
func (t *TrainLogger) LogRankingTable(rows []models.RankingRow) {
	for i, row := range rows {
		t.WithFields(logrus.Fields{
			"rank":         i + 1,
			"symbol":       row.Symbol,
			"sharpe_ratio": row.SharpeRatio,
		}).Info("Ranking entry")
	}
}
