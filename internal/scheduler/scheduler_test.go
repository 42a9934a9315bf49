package scheduler

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/sharpe-scout/internal/config"
	"github.com/yourusername/sharpe-scout/internal/datasource"
	"github.com/yourusername/sharpe-scout/internal/models"
	"github.com/yourusername/sharpe-scout/internal/pipeline"
)

type fixedProvider struct{}

func (fixedProvider) Name() string { return "fixed" }

func (fixedProvider) FetchDaily(ctx context.Context, symbol string, start, end time.Time) ([]models.Candle, error) {
	var out []models.Candle
	price := 100.0
	for i, day := 0, start; !day.After(end); i, day = i+1, day.AddDate(0, 0, 1) {
		price *= 1 + 0.005*math.Sin(float64(i))
		out = append(out, models.Candle{Date: day, Close: price, Volume: 1000 + float64(i%5)})
	}
	return out, nil
}

func newTestPipeline(t *testing.T) *pipeline.Pipeline {
	t.Helper()
	cfg := &config.Config{
		App: config.AppConfig{Name: "sharpe-scout", Environment: "development", LogLevel: "error"},
		Instruments: []models.Instrument{
			{Symbol: "EURUSD"},
		},
		Training: config.TrainingConfig{
			Epochs: 1, BatchSize: 32, LearningRate: 0.01, HiddenSize: 4,
		},
		Split: config.SplitConfig{
			TrainStart: "2024-07-01", TrainEnd: "2024-11-30",
			TestStart: "2024-12-01", TestEnd: "2024-12-31",
		},
	}
	factory := datasource.NewFactoryWithProviders(fixedProvider{}, fixedProvider{})
	p, err := pipeline.New(cfg, factory, nil, logrus.New())
	require.NoError(t, err)
	return p
}

func TestSchedulePipelineInvalidCron(t *testing.T) {
	s := NewScheduler(newTestPipeline(t), logrus.New())
	assert.Error(t, s.SchedulePipeline("not a cron expression"))
}

func TestStartWithoutJobs(t *testing.T) {
	s := NewScheduler(newTestPipeline(t), logrus.New())
	assert.Error(t, s.Start())
}

func TestStartStopLifecycle(t *testing.T) {
	s := NewScheduler(newTestPipeline(t), logrus.New())
	require.NoError(t, s.SchedulePipeline("0 6 * * *"))

	require.NoError(t, s.Start())
	assert.True(t, s.IsRunning())
	assert.Error(t, s.Start(), "double start must fail")

	require.NoError(t, s.Stop())
	assert.False(t, s.IsRunning())
	assert.NoError(t, s.Stop(), "stopping a stopped scheduler is a no-op")
}

func TestScheduleWhileRunning(t *testing.T) {
	s := NewScheduler(newTestPipeline(t), logrus.New())
	require.NoError(t, s.SchedulePipeline("0 6 * * *"))
	require.NoError(t, s.Start())
	defer func() { _ = s.Stop() }()

	assert.Error(t, s.SchedulePipeline("30 6 * * *"))
}
