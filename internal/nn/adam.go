package nn

import "math"

// Adam is a first/second-moment adaptive gradient optimizer bound to one
// network's parameter shapes. Moment state is per-parameter, so an Adam
// instance must never be shared across networks.
type Adam struct {
	lr      float64
	beta1   float64
	beta2   float64
	epsilon float64
	step    int

	mWeights [hiddenLayers][][]float64
	vWeights [hiddenLayers][][]float64
	mBiases  [hiddenLayers][]float64
	vBiases  [hiddenLayers][]float64
}

// NewAdam creates an optimizer for the given network with standard
// beta1=0.9, beta2=0.999 moment decay.
func NewAdam(net *RegressionNetwork, learningRate float64) *Adam {
	a := &Adam{
		lr:      learningRate,
		beta1:   0.9,
		beta2:   0.999,
		epsilon: 1e-8,
	}
	for l := 0; l < hiddenLayers; l++ {
		a.mWeights[l] = zerosLike(net.weights[l])
		a.vWeights[l] = zerosLike(net.weights[l])
		a.mBiases[l] = make([]float64, len(net.biases[l]))
		a.vBiases[l] = make([]float64, len(net.biases[l]))
	}
	return a
}

// LearningRate returns the current learning rate.
func (a *Adam) LearningRate() float64 {
	return a.lr
}

// SetLearningRate replaces the learning rate; moment state is kept.
func (a *Adam) SetLearningRate(lr float64) {
	a.lr = lr
}

// Step applies one update to the network parameters from the gradients.
func (a *Adam) Step(net *RegressionNetwork, grads *Gradients) {
	a.step++
	bc1 := 1 - math.Pow(a.beta1, float64(a.step))
	bc2 := 1 - math.Pow(a.beta2, float64(a.step))

	for l := 0; l < hiddenLayers; l++ {
		for i := range net.weights[l] {
			for j := range net.weights[l][i] {
				g := grads.weights[l][i][j]
				a.mWeights[l][i][j] = a.beta1*a.mWeights[l][i][j] + (1-a.beta1)*g
				a.vWeights[l][i][j] = a.beta2*a.vWeights[l][i][j] + (1-a.beta2)*g*g
				mHat := a.mWeights[l][i][j] / bc1
				vHat := a.vWeights[l][i][j] / bc2
				net.weights[l][i][j] -= a.lr * mHat / (math.Sqrt(vHat) + a.epsilon)
			}
		}
		for i := range net.biases[l] {
			g := grads.biases[l][i]
			a.mBiases[l][i] = a.beta1*a.mBiases[l][i] + (1-a.beta1)*g
			a.vBiases[l][i] = a.beta2*a.vBiases[l][i] + (1-a.beta2)*g*g
			mHat := a.mBiases[l][i] / bc1
			vHat := a.vBiases[l][i] / bc2
			net.biases[l][i] -= a.lr * mHat / (math.Sqrt(vHat) + a.epsilon)
		}
	}
}

// Gradients mirrors a network's parameter shapes.
type Gradients struct {
	weights [hiddenLayers][][]float64
	biases  [hiddenLayers][]float64
}

func newGradients(net *RegressionNetwork) *Gradients {
	g := &Gradients{}
	for l := 0; l < hiddenLayers; l++ {
		g.weights[l] = zerosLike(net.weights[l])
		g.biases[l] = make([]float64, len(net.biases[l]))
	}
	return g
}

func zerosLike(w [][]float64) [][]float64 {
	out := make([][]float64, len(w))
	for i := range w {
		out[i] = make([]float64, len(w[i]))
	}
	return out
}
