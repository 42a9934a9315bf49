// Package nn implements the feed-forward regression network used to
// predict the next-period move of an instrument, together with its
// optimizer and learning-rate scheduler.
package nn

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/yourusername/sharpe-scout/internal/models"
)

const hiddenLayers = 4

// RegressionNetwork maps a feature vector to a single prediction bounded
// to (-1, 1) by the final tanh. Layout: input->hidden affine + ReLU, then
// two blocks of {dropout, hidden->hidden affine + ReLU}, then a
// hidden->output affine + tanh. Dropout is active only in training mode.
type RegressionNetwork struct {
	inputSize  int
	hiddenSize int
	dropout    float64

	// weights[l] is row-major [out][in]; biases[l] is [out].
	weights [hiddenLayers][][]float64
	biases  [hiddenLayers][]float64

	training bool
	rng      *rand.Rand
}

// NewRegressionNetwork builds a network with fan-in scaled (He) weight
// initialization. The same seed always produces the same parameters and
// the same dropout masks.
func NewRegressionNetwork(inputSize, hiddenSize int, dropout float64, seed int64) (*RegressionNetwork, error) {
	if inputSize <= 0 {
		return nil, fmt.Errorf("input size must be positive, got %d", inputSize)
	}
	if hiddenSize <= 0 {
		return nil, fmt.Errorf("hidden size must be positive, got %d", hiddenSize)
	}
	if dropout < 0 || dropout >= 1 {
		return nil, fmt.Errorf("dropout must be in [0, 1), got %g", dropout)
	}

	net := &RegressionNetwork{
		inputSize:  inputSize,
		hiddenSize: hiddenSize,
		dropout:    dropout,
		rng:        rand.New(rand.NewSource(seed)),
	}

	dims := [hiddenLayers][2]int{
		{hiddenSize, inputSize},
		{hiddenSize, hiddenSize},
		{hiddenSize, hiddenSize},
		{1, hiddenSize},
	}
	for l, d := range dims {
		out, in := d[0], d[1]
		scale := math.Sqrt(2.0 / float64(in))
		w := make([][]float64, out)
		for i := range w {
			w[i] = make([]float64, in)
			for j := range w[i] {
				w[i][j] = net.rng.NormFloat64() * scale
			}
		}
		net.weights[l] = w
		net.biases[l] = make([]float64, out)
	}
	return net, nil
}

// InputSize returns the expected feature vector width.
func (n *RegressionNetwork) InputSize() int {
	return n.inputSize
}

// SetTraining toggles training mode. Dropout acts as identity when
// training is false.
func (n *RegressionNetwork) SetTraining(training bool) {
	n.training = training
}

// Training reports whether the network is in training mode.
func (n *RegressionNetwork) Training() bool {
	return n.training
}

// sampleCache holds the per-sample intermediate activations needed by
// the backward pass.
type sampleCache struct {
	input  []float64
	act    [3][]float64 // post-ReLU activations a1, a2, a3
	masks  [2][]float64 // inverted dropout masks applied to a1, a2
	output float64
}

func (n *RegressionNetwork) affine(l int, in []float64) []float64 {
	w, b := n.weights[l], n.biases[l]
	out := make([]float64, len(b))
	for i := range w {
		sum := b[i]
		for j, v := range in {
			sum += w[i][j] * v
		}
		out[i] = sum
	}
	return out
}

func (n *RegressionNetwork) dropoutMask(size int) []float64 {
	mask := make([]float64, size)
	if !n.training || n.dropout == 0 {
		for i := range mask {
			mask[i] = 1
		}
		return mask
	}
	keep := 1 - n.dropout
	for i := range mask {
		if n.rng.Float64() < keep {
			mask[i] = 1 / keep
		}
	}
	return mask
}

func (n *RegressionNetwork) forwardSample(x []float64) *sampleCache {
	c := &sampleCache{input: x}

	a1 := n.affine(0, x)
	relu(a1)
	c.act[0] = a1

	c.masks[0] = n.dropoutMask(len(a1))
	h1 := hadamard(a1, c.masks[0])

	a2 := n.affine(1, h1)
	relu(a2)
	c.act[1] = a2

	c.masks[1] = n.dropoutMask(len(a2))
	h2 := hadamard(a2, c.masks[1])

	a3 := n.affine(2, h2)
	relu(a3)
	c.act[2] = a3

	c.output = math.Tanh(n.affine(3, a3)[0])
	return c
}

// Predict evaluates the network over a batch of feature vectors.
func (n *RegressionNetwork) Predict(batch [][]float64) ([]float64, error) {
	if len(batch) == 0 {
		return nil, models.ErrEmptySeries
	}
	out := make([]float64, len(batch))
	for i, x := range batch {
		if len(x) != n.inputSize {
			return nil, fmt.Errorf("%w: row %d has %d features, network expects %d",
				models.ErrShapeMismatch, i, len(x), n.inputSize)
		}
		out[i] = n.forwardSample(x).output
	}
	return out, nil
}

// BackwardBatch runs a forward pass over the batch in the current mode,
// computes the MSE loss against targets, and returns the loss together
// with the accumulated parameter gradients.
func (n *RegressionNetwork) BackwardBatch(batch [][]float64, targets []float64) (float64, *Gradients, error) {
	if len(batch) == 0 {
		return 0, nil, models.ErrEmptySeries
	}
	if len(batch) != len(targets) {
		return 0, nil, fmt.Errorf("%w: %d inputs, %d targets", models.ErrLengthMismatch, len(batch), len(targets))
	}

	grads := newGradients(n)
	loss := 0.0
	invN := 1.0 / float64(len(batch))

	for i, x := range batch {
		if len(x) != n.inputSize {
			return 0, nil, fmt.Errorf("%w: row %d has %d features, network expects %d",
				models.ErrShapeMismatch, i, len(x), n.inputSize)
		}
		c := n.forwardSample(x)
		diff := c.output - targets[i]
		loss += diff * diff * invN

		// dL/dout for the mean-squared-error term of this sample.
		n.backwardSample(c, 2*diff*invN, grads)
	}
	return loss, grads, nil
}

func (n *RegressionNetwork) backwardSample(c *sampleCache, dOut float64, g *Gradients) {
	// Output layer: tanh derivative then affine.
	dz4 := dOut * (1 - c.output*c.output)
	for j, v := range c.act[2] {
		g.weights[3][0][j] += dz4 * v
	}
	g.biases[3][0] += dz4

	da3 := make([]float64, n.hiddenSize)
	for j := range da3 {
		da3[j] = n.weights[3][0][j] * dz4
	}

	dz3 := reluBackward(da3, c.act[2])
	h2 := hadamard(c.act[1], c.masks[1])
	accumulate(g.weights[2], g.biases[2], dz3, h2)

	dh2 := n.inputGrad(2, dz3)
	da2 := hadamard(dh2, c.masks[1])
	dz2 := reluBackward(da2, c.act[1])
	h1 := hadamard(c.act[0], c.masks[0])
	accumulate(g.weights[1], g.biases[1], dz2, h1)

	dh1 := n.inputGrad(1, dz2)
	da1 := hadamard(dh1, c.masks[0])
	dz1 := reluBackward(da1, c.act[0])
	accumulate(g.weights[0], g.biases[0], dz1, c.input)
}

// inputGrad computes W^T * dz for layer l.
func (n *RegressionNetwork) inputGrad(l int, dz []float64) []float64 {
	w := n.weights[l]
	out := make([]float64, len(w[0]))
	for i, row := range w {
		for j, v := range row {
			out[j] += v * dz[i]
		}
	}
	return out
}

// ParameterSnapshot returns a flat copy of all weights and biases,
// useful for detecting whether training touched the model.
func (n *RegressionNetwork) ParameterSnapshot() []float64 {
	var out []float64
	for l := 0; l < hiddenLayers; l++ {
		for _, row := range n.weights[l] {
			out = append(out, row...)
		}
		out = append(out, n.biases[l]...)
	}
	return out
}

func relu(v []float64) {
	for i := range v {
		if v[i] < 0 {
			v[i] = 0
		}
	}
}

// reluBackward zeroes gradient entries where the forward activation was
// clamped. act is the post-ReLU activation, so act > 0 marks pass-through.
func reluBackward(grad, act []float64) []float64 {
	out := make([]float64, len(grad))
	for i := range grad {
		if act[i] > 0 {
			out[i] = grad[i]
		}
	}
	return out
}

func hadamard(a, b []float64) []float64 {
	out := make([]float64, len(a))
	for i := range a {
		out[i] = a[i] * b[i]
	}
	return out
}

func accumulate(gw [][]float64, gb []float64, dz []float64, in []float64) {
	for i, d := range dz {
		for j, v := range in {
			gw[i][j] += d * v
		}
		gb[i] += d
	}
}
