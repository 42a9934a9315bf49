package nn

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/sharpe-scout/internal/models"
)

func sampleBatch(n, width int) [][]float64 {
	batch := make([][]float64, n)
	for i := range batch {
		batch[i] = make([]float64, width)
		for j := range batch[i] {
			batch[i][j] = math.Sin(float64(i*width+j)) * 0.5
		}
	}
	return batch
}

func TestNewRegressionNetworkValidation(t *testing.T) {
	tests := []struct {
		name       string
		inputSize  int
		hiddenSize int
		dropout    float64
	}{
		{name: "zero input", inputSize: 0, hiddenSize: 8, dropout: 0.2},
		{name: "negative hidden", inputSize: 4, hiddenSize: -1, dropout: 0.2},
		{name: "dropout one", inputSize: 4, hiddenSize: 8, dropout: 1.0},
		{name: "negative dropout", inputSize: 4, hiddenSize: 8, dropout: -0.1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRegressionNetwork(tt.inputSize, tt.hiddenSize, tt.dropout, 1)
			assert.Error(t, err)
		})
	}
}

func TestSeedDeterminism(t *testing.T) {
	a, err := NewRegressionNetwork(4, 16, 0.2, 42)
	require.NoError(t, err)
	b, err := NewRegressionNetwork(4, 16, 0.2, 42)
	require.NoError(t, err)

	assert.Equal(t, a.ParameterSnapshot(), b.ParameterSnapshot())

	c, err := NewRegressionNetwork(4, 16, 0.2, 43)
	require.NoError(t, err)
	assert.NotEqual(t, a.ParameterSnapshot(), c.ParameterSnapshot())
}

func TestPredictOutputBounds(t *testing.T) {
	net, err := NewRegressionNetwork(4, 16, 0, 7)
	require.NoError(t, err)

	out, err := net.Predict(sampleBatch(50, 4))
	require.NoError(t, err)
	require.Len(t, out, 50)
	for i, v := range out {
		assert.Greater(t, v, -1.0, "sample %d", i)
		assert.Less(t, v, 1.0, "sample %d", i)
	}
}

func TestPredictShapeErrors(t *testing.T) {
	net, err := NewRegressionNetwork(4, 16, 0, 7)
	require.NoError(t, err)

	_, err = net.Predict(nil)
	assert.ErrorIs(t, err, models.ErrEmptySeries)

	_, err = net.Predict([][]float64{{1, 2, 3}})
	assert.ErrorIs(t, err, models.ErrShapeMismatch)
}

func TestDropoutIdentityInEvaluationMode(t *testing.T) {
	net, err := NewRegressionNetwork(4, 16, 0.5, 7)
	require.NoError(t, err)
	net.SetTraining(false)

	batch := sampleBatch(10, 4)
	first, err := net.Predict(batch)
	require.NoError(t, err)
	second, err := net.Predict(batch)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestDropoutActiveInTrainingMode(t *testing.T) {
	net, err := NewRegressionNetwork(4, 32, 0.5, 7)
	require.NoError(t, err)
	net.SetTraining(true)

	batch := sampleBatch(10, 4)
	first, err := net.Predict(batch)
	require.NoError(t, err)
	second, err := net.Predict(batch)
	require.NoError(t, err)

	// Fresh masks are drawn per forward pass, so outputs differ.
	assert.NotEqual(t, first, second)
}

func TestBackwardBatchLossAndErrors(t *testing.T) {
	net, err := NewRegressionNetwork(2, 8, 0, 3)
	require.NoError(t, err)

	batch := sampleBatch(6, 2)
	targets := []float64{0.1, -0.1, 0.2, 0.0, -0.2, 0.05}

	loss, grads, err := net.BackwardBatch(batch, targets)
	require.NoError(t, err)
	require.NotNil(t, grads)
	assert.GreaterOrEqual(t, loss, 0.0)

	// The loss matches a plain MSE over a forward pass.
	predictions, err := net.Predict(batch)
	require.NoError(t, err)
	want := 0.0
	for i, p := range predictions {
		d := p - targets[i]
		want += d * d
	}
	want /= float64(len(predictions))
	assert.InDelta(t, want, loss, 1e-12)

	_, _, err = net.BackwardBatch(nil, nil)
	assert.ErrorIs(t, err, models.ErrEmptySeries)

	_, _, err = net.BackwardBatch(batch, targets[:3])
	assert.ErrorIs(t, err, models.ErrLengthMismatch)
}

func TestAdamStepChangesParameters(t *testing.T) {
	net, err := NewRegressionNetwork(2, 8, 0, 3)
	require.NoError(t, err)

	before := net.ParameterSnapshot()

	batch := sampleBatch(6, 2)
	targets := []float64{0.5, -0.5, 0.5, -0.5, 0.5, -0.5}
	_, grads, err := net.BackwardBatch(batch, targets)
	require.NoError(t, err)

	opt := NewAdam(net, 0.01)
	opt.Step(net, grads)

	assert.NotEqual(t, before, net.ParameterSnapshot())
}

func TestAdamReducesLossOnFixedBatch(t *testing.T) {
	net, err := NewRegressionNetwork(2, 8, 0, 3)
	require.NoError(t, err)

	batch := sampleBatch(16, 2)
	targets := make([]float64, len(batch))
	for i, x := range batch {
		targets[i] = math.Tanh(x[0] - x[1])
	}

	opt := NewAdam(net, 0.01)
	first, grads, err := net.BackwardBatch(batch, targets)
	require.NoError(t, err)
	opt.Step(net, grads)

	last := first
	for i := 0; i < 200; i++ {
		loss, grads, err := net.BackwardBatch(batch, targets)
		require.NoError(t, err)
		opt.Step(net, grads)
		last = loss
	}

	assert.Less(t, last, first)
}

func TestPlateauSchedulerReducesAfterPatience(t *testing.T) {
	net, err := NewRegressionNetwork(2, 4, 0, 1)
	require.NoError(t, err)
	opt := NewAdam(net, 0.01)
	sched := NewPlateauScheduler(opt, 0.1, 5)

	assert.False(t, sched.Step(1.0)) // first observation becomes best

	for i := 0; i < 4; i++ {
		assert.False(t, sched.Step(1.0), "epoch %d", i)
	}
	assert.True(t, sched.Step(1.0)) // fifth consecutive non-improvement
	assert.InDelta(t, 0.001, opt.LearningRate(), 1e-15)
}

func TestPlateauSchedulerResetOnImprovement(t *testing.T) {
	net, err := NewRegressionNetwork(2, 4, 0, 1)
	require.NoError(t, err)
	opt := NewAdam(net, 0.01)
	sched := NewPlateauScheduler(opt, 0.1, 5)

	sched.Step(1.0)
	for i := 0; i < 4; i++ {
		sched.Step(1.0)
	}
	assert.False(t, sched.Step(0.9)) // improvement clears the streak

	for i := 0; i < 4; i++ {
		assert.False(t, sched.Step(0.9), "epoch %d", i)
	}
	assert.True(t, sched.Step(0.9))
	assert.InDelta(t, 0.001, opt.LearningRate(), 1e-15)
}

func TestPlateauSchedulerNoFloor(t *testing.T) {
	net, err := NewRegressionNetwork(2, 4, 0, 1)
	require.NoError(t, err)
	opt := NewAdam(net, 0.01)
	sched := NewPlateauScheduler(opt, 0.1, 1)

	sched.Step(1.0)
	for i := 0; i < 10; i++ {
		require.True(t, sched.Step(1.0))
	}
	assert.InDelta(t, 0.01*math.Pow(0.1, 10), opt.LearningRate(), 1e-20)
}
