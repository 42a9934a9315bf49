// Package train runs mini-batch gradient descent over a per-instrument
// time series and records the resulting loss history and test metrics.
package train

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/sharpe-scout/internal/evaluate"
	"github.com/yourusername/sharpe-scout/internal/models"
	"github.com/yourusername/sharpe-scout/internal/nn"
	"github.com/yourusername/sharpe-scout/internal/timeseries"
)

const (
	plateauFactor   = 0.1
	plateauPatience = 5
)

// Config holds the hyperparameters for one training invocation.
type Config struct {
	Epochs       int
	BatchSize    int
	LearningRate float64
}

// Trainer fits a RegressionNetwork against a train/test window pair.
type Trainer struct {
	logger *logrus.Logger
}

// NewTrainer creates a trainer. A nil logger falls back to a default one.
func NewTrainer(logger *logrus.Logger) *Trainer {
	if logger == nil {
		logger = logrus.New()
	}
	return &Trainer{logger: logger}
}

// Train runs the full epoch budget and returns the completed run record.
// There is no early stopping: non-convergence is not an error. Training
// fails only on malformed input (shape mismatch, empty or non-finite
// tables, invalid hyperparameters) or context cancellation.
//
// Batches are consecutive slices of the training window in input order;
// the final batch may be short. The test loss is computed in evaluation
// mode after every epoch and drives a reduce-on-plateau learning-rate
// schedule (factor 0.1, patience 5, no floor).
func (t *Trainer) Train(ctx context.Context, symbol string, net *nn.RegressionNetwork, trainTable, testTable *timeseries.Table, cfg Config) (*models.TrainingRun, error) {
	if err := t.validate(net, trainTable, testTable, cfg); err != nil {
		return nil, err
	}

	run := &models.TrainingRun{
		ID:        uuid.New(),
		Symbol:    symbol,
		Epochs:    cfg.Epochs,
		StartedAt: time.Now(),
	}

	trainX := trainTable.FeatureMatrix()
	trainY := trainTable.Targets()
	testX := testTable.FeatureMatrix()
	testY := testTable.Targets()

	opt := nn.NewAdam(net, cfg.LearningRate)
	sched := nn.NewPlateauScheduler(opt, plateauFactor, plateauPatience)

	for epoch := 0; epoch < cfg.Epochs; epoch++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("training aborted at epoch %d: %w", epoch, err)
		}

		trainLoss, err := t.runEpoch(net, opt, trainX, trainY, cfg.BatchSize)
		if err != nil {
			return nil, err
		}

		testLoss, err := t.testLoss(net, testX, testY)
		if err != nil {
			return nil, err
		}
		reduced := sched.Step(testLoss)

		run.TrainLoss = append(run.TrainLoss, trainLoss)
		run.TestLoss = append(run.TestLoss, testLoss)

		fields := logrus.Fields{
			"symbol":     symbol,
			"epoch":      epoch + 1,
			"train_loss": trainLoss,
			"test_loss":  testLoss,
		}
		if reduced {
			fields["learning_rate"] = opt.LearningRate()
			t.logger.WithFields(fields).Info("Test loss plateaued, reduced learning rate")
		} else {
			t.logger.WithFields(fields).Debug("Epoch completed")
		}
	}

	report, err := t.finalReport(net, testX, testY)
	if err != nil {
		return nil, err
	}
	run.Final = report
	run.CompletedAt = time.Now()
	return run, nil
}

func (t *Trainer) validate(net *nn.RegressionNetwork, trainTable, testTable *timeseries.Table, cfg Config) error {
	if cfg.Epochs < 0 {
		return fmt.Errorf("epochs must be non-negative, got %d", cfg.Epochs)
	}
	if cfg.BatchSize <= 0 {
		return fmt.Errorf("batch size must be positive, got %d", cfg.BatchSize)
	}
	if cfg.LearningRate <= 0 {
		return fmt.Errorf("learning rate must be positive, got %g", cfg.LearningRate)
	}
	if err := trainTable.Validate(); err != nil {
		return fmt.Errorf("train window: %w", err)
	}
	if err := testTable.Validate(); err != nil {
		return fmt.Errorf("test window: %w", err)
	}
	if trainTable.FeatureCount() != net.InputSize() {
		return fmt.Errorf("%w: train window has %d features, network expects %d",
			models.ErrShapeMismatch, trainTable.FeatureCount(), net.InputSize())
	}
	if testTable.FeatureCount() != net.InputSize() {
		return fmt.Errorf("%w: test window has %d features, network expects %d",
			models.ErrShapeMismatch, testTable.FeatureCount(), net.InputSize())
	}
	return nil
}

// runEpoch iterates consecutive, non-shuffled batches and applies one
// optimizer step per batch. Returns the arithmetic mean of batch losses.
func (t *Trainer) runEpoch(net *nn.RegressionNetwork, opt *nn.Adam, x [][]float64, y []float64, batchSize int) (float64, error) {
	net.SetTraining(true)
	defer net.SetTraining(false)

	total := 0.0
	batches := 0
	for start := 0; start < len(x); start += batchSize {
		end := start + batchSize
		if end > len(x) {
			end = len(x)
		}
		loss, grads, err := net.BackwardBatch(x[start:end], y[start:end])
		if err != nil {
			return 0, err
		}
		opt.Step(net, grads)
		total += loss
		batches++
	}
	return total / float64(batches), nil
}

func (t *Trainer) testLoss(net *nn.RegressionNetwork, x [][]float64, y []float64) (float64, error) {
	net.SetTraining(false)
	predictions, err := net.Predict(x)
	if err != nil {
		return 0, err
	}
	loss := 0.0
	for i, p := range predictions {
		d := p - y[i]
		loss += d * d
	}
	return loss / float64(len(predictions)), nil
}

func (t *Trainer) finalReport(net *nn.RegressionNetwork, x [][]float64, y []float64) (models.EvalReport, error) {
	net.SetTraining(false)
	predictions, err := net.Predict(x)
	if err != nil {
		return models.EvalReport{}, err
	}
	return evaluate.Evaluate(predictions, y)
}
