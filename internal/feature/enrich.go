// Package feature turns raw OHLCV candles into the engineered columns
// and forward-return target the training pipeline consumes.
package feature

import (
	"math"

	"github.com/yourusername/sharpe-scout/internal/models"
	"github.com/yourusername/sharpe-scout/internal/timeseries"
)

const (
	smaPeriod        = 10
	emaPeriod        = 10
	rsiPeriod        = 14
	volatilityPeriod = 10
	volumePeriod     = 20
)

// Names lists the engineered feature columns in table order.
var Names = []string{
	"log_return",
	"sma_ratio",
	"ema_ratio",
	"rsi",
	"volatility",
	"volume_z",
}

// Enrich builds a feature table from candles. Warm-up rows whose
// indicators need more lookback than is available carry NaN, and the
// final row's target is NaN (no realized next-day return yet); both are
// removed by Table.DropUndefined before training.
func Enrich(candles []models.Candle) (*timeseries.Table, error) {
	if len(candles) == 0 {
		return nil, models.ErrEmptyTable
	}

	logReturns := computeLogReturns(candles)
	sma := rollingMean(closes(candles), smaPeriod)
	ema := exponentialMean(closes(candles), emaPeriod)
	rsi := computeRSI(candles, rsiPeriod)
	vol := rollingStd(logReturns, volatilityPeriod)
	volZ := zScores(volumes(candles), volumePeriod)

	table := timeseries.New(Names)
	for i, c := range candles {
		target := math.NaN()
		if i+1 < len(candles) {
			target = math.Log(candles[i+1].Close / c.Close)
		}
		row := timeseries.Row{
			Date:   c.Date,
			Open:   c.Open,
			High:   c.High,
			Low:    c.Low,
			Close:  c.Close,
			Volume: c.Volume,
			Features: []float64{
				logReturns[i],
				ratioTo(c.Close, sma[i]),
				ratioTo(c.Close, ema[i]),
				rsi[i],
				vol[i],
				volZ[i],
			},
			Target: target,
		}
		if err := table.Append(row); err != nil {
			return nil, err
		}
	}
	return table, nil
}

func closes(candles []models.Candle) []float64 {
	out := make([]float64, len(candles))
	for i, c := range candles {
		out[i] = c.Close
	}
	return out
}

func volumes(candles []models.Candle) []float64 {
	out := make([]float64, len(candles))
	for i, c := range candles {
		out[i] = c.Volume
	}
	return out
}

// ratioTo expresses price relative to a reference level, centered at 0.
func ratioTo(price, reference float64) float64 {
	if reference == 0 || math.IsNaN(reference) {
		return math.NaN()
	}
	return price/reference - 1
}

func computeLogReturns(candles []models.Candle) []float64 {
	out := make([]float64, len(candles))
	out[0] = math.NaN()
	for i := 1; i < len(candles); i++ {
		out[i] = math.Log(candles[i].Close / candles[i-1].Close)
	}
	return out
}

func rollingMean(values []float64, period int) []float64 {
	out := make([]float64, len(values))
	sum := 0.0
	for i, v := range values {
		sum += v
		if i >= period {
			sum -= values[i-period]
		}
		if i >= period-1 {
			out[i] = sum / float64(period)
		} else {
			out[i] = math.NaN()
		}
	}
	return out
}

func exponentialMean(values []float64, period int) []float64 {
	out := make([]float64, len(values))
	alpha := 2.0 / (float64(period) + 1)
	ema := values[0]
	for i, v := range values {
		if i > 0 {
			ema = alpha*v + (1-alpha)*ema
		}
		if i >= period-1 {
			out[i] = ema
		} else {
			out[i] = math.NaN()
		}
	}
	return out
}

func rollingStd(values []float64, period int) []float64 {
	out := make([]float64, len(values))
	for i := range values {
		if i < period {
			out[i] = math.NaN()
			continue
		}
		window := values[i-period+1 : i+1]
		mean := 0.0
		for _, v := range window {
			mean += v
		}
		mean /= float64(len(window))
		variance := 0.0
		for _, v := range window {
			d := v - mean
			variance += d * d
		}
		out[i] = math.Sqrt(variance / float64(len(window)))
	}
	return out
}

func zScores(values []float64, period int) []float64 {
	out := make([]float64, len(values))
	for i := range values {
		if i < period-1 {
			out[i] = math.NaN()
			continue
		}
		window := values[i-period+1 : i+1]
		mean := 0.0
		for _, v := range window {
			mean += v
		}
		mean /= float64(len(window))
		variance := 0.0
		for _, v := range window {
			d := v - mean
			variance += d * d
		}
		std := math.Sqrt(variance / float64(len(window)))
		if std == 0 {
			out[i] = 0
			continue
		}
		out[i] = (values[i] - mean) / std
	}
	return out
}

// computeRSI returns the relative strength index rescaled from [0, 100]
// to [-1, 1] so it lives on the same scale as the other features.
func computeRSI(candles []models.Candle, period int) []float64 {
	out := make([]float64, len(candles))
	for i := range candles {
		if i < period {
			out[i] = math.NaN()
			continue
		}
		gains, losses := 0.0, 0.0
		for j := i - period + 1; j <= i; j++ {
			change := candles[j].Close - candles[j-1].Close
			if change > 0 {
				gains += change
			} else {
				losses -= change
			}
		}
		if gains+losses == 0 {
			out[i] = 0
			continue
		}
		rsi := 100 * gains / (gains + losses)
		out[i] = rsi/50 - 1
	}
	return out
}
