// Package pipeline orchestrates the per-instrument fetch, train,
// evaluate and rank workflow.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/sharpe-scout/internal/config"
	"github.com/yourusername/sharpe-scout/internal/datasource"
	"github.com/yourusername/sharpe-scout/internal/feature"
	"github.com/yourusername/sharpe-scout/internal/logger"
	"github.com/yourusername/sharpe-scout/internal/metrics"
	"github.com/yourusername/sharpe-scout/internal/models"
	"github.com/yourusername/sharpe-scout/internal/nn"
	"github.com/yourusername/sharpe-scout/internal/rank"
	"github.com/yourusername/sharpe-scout/internal/repository"
	"github.com/yourusername/sharpe-scout/internal/timeseries"
	"github.com/yourusername/sharpe-scout/internal/train"
)

// Pipeline runs the full train/evaluate/rank workflow over the
// configured instruments. Instruments are processed strictly
// sequentially; each gets its own network and optimizer state.
type Pipeline struct {
	cfg       *config.Config
	providers *datasource.Factory
	trainer   *train.Trainer
	ranker    *rank.Ranker
	repos     *repository.Repositories
	logger    *logrus.Logger
	trainLog  *logger.TrainLogger
}

// Report is the result of one pipeline invocation. Failures holds
// per-instrument errors that did not abort the batch.
type Report struct {
	RunID       uuid.UUID
	Runs        map[string]*models.TrainingRun
	Ranking     []models.RankingRow
	Failures    map[string]error
	Duration    time.Duration
	CompletedAt time.Time
}

// New creates a pipeline. repos may be nil to skip persistence.
func New(cfg *config.Config, providers *datasource.Factory, repos *repository.Repositories, log *logrus.Logger) (*Pipeline, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if providers == nil {
		return nil, fmt.Errorf("provider factory is required")
	}
	if log == nil {
		log = logrus.New()
	}

	policy, err := rank.ParseUndefinedPolicy(cfg.Ranking.UndefinedPolicy)
	if err != nil {
		return nil, err
	}
	ranker := &rank.Ranker{
		RiskFreeRate:  cfg.Ranking.RiskFreeRate,
		ApplyRiskFree: cfg.Ranking.ApplyRiskFreeRate,
		Policy:        policy,
	}

	return &Pipeline{
		cfg:       cfg,
		providers: providers,
		trainer:   train.NewTrainer(log),
		ranker:    ranker,
		repos:     repos,
		logger:    log,
		trainLog:  logger.NewTrainLogger(log),
	}, nil
}

// Run processes every configured instrument and produces the ranking
// table. A failing instrument is reported and skipped; Run itself fails
// only on configuration problems or context cancellation.
func (p *Pipeline) Run(ctx context.Context) (*Report, error) {
	if len(p.cfg.Instruments) == 0 {
		return nil, models.ErrNoInstruments
	}

	start := time.Now()
	report := &Report{
		RunID:    uuid.New(),
		Runs:     make(map[string]*models.TrainingRun),
		Failures: make(map[string]error),
	}

	p.logger.WithFields(logrus.Fields{
		"run_id":      report.RunID,
		"instruments": len(p.cfg.Instruments),
	}).Info("Starting ranking pipeline")

	var scored []models.RankingRow
	for i, inst := range p.cfg.Instruments {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("pipeline aborted: %w", err)
		}

		run, sharpe, err := p.RunInstrument(ctx, inst, p.cfg.Training.Seed+int64(i))
		if err != nil {
			p.trainLog.LogInstrumentFailure(inst.Symbol, err)
			report.Failures[inst.Symbol] = err
			continue
		}

		report.Runs[inst.Symbol] = run
		scored = append(scored, models.RankingRow{Symbol: inst.Symbol, SharpeRatio: sharpe})

		metrics.RecordTrainingRun(run.Epochs, run.Duration())
		metrics.InstrumentSharpe.WithLabelValues(inst.Symbol).Set(sharpe)
		metrics.InstrumentTestAccuracy.WithLabelValues(inst.Symbol).Set(run.Final.Accuracy)
		p.trainLog.LogRunCompleted(run)
	}

	report.Ranking = p.ranker.BuildTable(scored)
	report.Duration = time.Since(start)
	report.CompletedAt = time.Now()
	metrics.RankedInstruments.Set(float64(len(report.Ranking)))
	p.trainLog.LogRankingTable(report.Ranking)

	if err := p.persist(ctx, report); err != nil {
		p.logger.WithError(err).Warn("Failed to persist pipeline results")
	}

	p.logger.WithFields(logrus.Fields{
		"run_id":   report.RunID,
		"ranked":   len(report.Ranking),
		"failed":   len(report.Failures),
		"duration": report.Duration.Seconds(),
	}).Info("Ranking pipeline completed")
	return report, nil
}

// RunInstrument executes the workflow for a single instrument and
// returns its training run together with the ranking score.
func (p *Pipeline) RunInstrument(ctx context.Context, inst models.Instrument, seed int64) (*models.TrainingRun, float64, error) {
	table, err := p.buildTable(ctx, inst)
	if err != nil {
		return nil, 0, err
	}

	trainStart, trainEnd, testStart, testEnd, err := p.cfg.Split.Windows()
	if err != nil {
		return nil, 0, err
	}
	trainTable, testTable := table.Split(timeseries.SplitWindows{
		TrainStart: trainStart,
		TrainEnd:   trainEnd,
		TestStart:  testStart,
		TestEnd:    testEnd,
	})

	if trainTable.Len() <= p.cfg.Training.BatchSize {
		p.logger.WithFields(logrus.Fields{
			"symbol":     inst.Symbol,
			"rows":       trainTable.Len(),
			"batch_size": p.cfg.Training.BatchSize,
		}).Warn("Train window barely covers one batch")
	}

	net, err := nn.NewRegressionNetwork(table.FeatureCount(), p.cfg.Training.HiddenSize, p.cfg.Training.Dropout, seed)
	if err != nil {
		metrics.RecordTrainingFailure("build_model")
		return nil, 0, fmt.Errorf("building model for %s: %w", inst.Symbol, err)
	}

	run, err := p.trainer.Train(ctx, inst.Symbol, net, trainTable, testTable, train.Config{
		Epochs:       p.cfg.Training.Epochs,
		BatchSize:    p.cfg.Training.BatchSize,
		LearningRate: p.cfg.Training.LearningRate,
	})
	if err != nil {
		metrics.RecordTrainingFailure("train")
		return nil, 0, fmt.Errorf("training %s: %w", inst.Symbol, err)
	}

	sharpe, err := p.ranker.Score(net, table)
	if err != nil {
		metrics.RecordTrainingFailure("rank")
		return nil, 0, fmt.Errorf("ranking %s: %w", inst.Symbol, err)
	}
	return run, sharpe, nil
}

// buildTable fetches, enriches and cleans the instrument's series.
func (p *Pipeline) buildTable(ctx context.Context, inst models.Instrument) (*timeseries.Table, error) {
	trainStart, _, _, testEnd, err := p.cfg.Split.Windows()
	if err != nil {
		return nil, err
	}

	provider := p.providers.ForInstrument(inst)
	fetchStart := time.Now()
	candles, err := provider.FetchDaily(ctx, inst.Symbol, trainStart, testEnd)
	if err != nil {
		metrics.RecordTrainingFailure("fetch")
		return nil, fmt.Errorf("fetching %s: %w", inst.Symbol, err)
	}
	metrics.RecordDataFetch(provider.Name(), time.Since(fetchStart))

	enriched, err := feature.Enrich(candles)
	if err != nil {
		metrics.RecordTrainingFailure("enrich")
		return nil, fmt.Errorf("enriching %s: %w", inst.Symbol, err)
	}

	cleaned := enriched.DropUndefined()
	if cleaned.Len() == 0 {
		metrics.RecordTrainingFailure("clean")
		return nil, fmt.Errorf("cleaning %s: %w", inst.Symbol, models.ErrEmptyTable)
	}

	p.logger.WithFields(logrus.Fields{
		"symbol":  inst.Symbol,
		"fetched": len(candles),
		"usable":  cleaned.Len(),
	}).Debug("Built instrument table")
	return cleaned, nil
}

func (p *Pipeline) persist(ctx context.Context, report *Report) error {
	if p.repos == nil {
		return nil
	}
	for _, run := range report.Runs {
		if err := p.repos.TrainingRun.Create(ctx, run); err != nil {
			return err
		}
	}
	snapshot := &models.RankingSnapshot{
		ID:        report.RunID,
		Rows:      report.Ranking,
		CreatedAt: report.CompletedAt,
	}
	return p.repos.Ranking.CreateSnapshot(ctx, snapshot)
}
