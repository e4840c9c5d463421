package service

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrInputWidth is returned when a feature vector does not match the
	// classifier's input dimension.
	ErrInputWidth = errors.New("input width mismatch")

	// ErrInvalidArchitecture marks a network whose layer shapes do not chain.
	ErrInvalidArchitecture = errors.New("invalid classifier architecture")

	// ErrNonFiniteOutput is returned when the forward pass yields NaN.
	ErrNonFiniteOutput = errors.New("classifier produced a non-finite output")
)

// Classifier maps a transformed feature vector to the probability of the
// positive (stroke) class.
type Classifier interface {
	InputDim() int
	PredictProba(features []float64) (float64, error)
}

// Activation names a dense layer's activation function.
type Activation string

const (
	ActivationReLU    Activation = "relu"
	ActivationSigmoid Activation = "sigmoid"
	ActivationLinear  Activation = "linear"
)

func (a Activation) valid() bool {
	switch a {
	case ActivationReLU, ActivationSigmoid, ActivationLinear:
		return true
	default:
		return false
	}
}

func (a Activation) apply(x float64) float64 {
	switch a {
	case ActivationReLU:
		return math.Max(0, x)
	case ActivationSigmoid:
		return sigmoid(x)
	default:
		return x
	}
}

// sigmoid avoids overflow in exp for large |x|.
func sigmoid(x float64) float64 {
	if x >= 0 {
		return 1 / (1 + math.Exp(-x))
	}
	e := math.Exp(x)
	return e / (1 + e)
}

// Layer is one stage of the forward pass.
type Layer interface {
	// OutputDim checks that the layer accepts in inputs and returns its
	// output width.
	OutputDim(in int) (int, error)
	Forward(in []float64) []float64
}

// DenseLayer computes activation(x·W + b). Weights is indexed [input][unit].
type DenseLayer struct {
	Activation Activation
	Weights    [][]float64
	Bias       []float64
}

func (l DenseLayer) units() int { return len(l.Bias) }

func (l DenseLayer) OutputDim(in int) (int, error) {
	if !l.Activation.valid() {
		return 0, fmt.Errorf("%w: unknown activation %q", ErrInvalidArchitecture, l.Activation)
	}
	if len(l.Weights) != in {
		return 0, fmt.Errorf("%w: dense layer expects %d inputs, previous layer yields %d", ErrInvalidArchitecture, len(l.Weights), in)
	}
	if l.units() == 0 {
		return 0, fmt.Errorf("%w: dense layer has no units", ErrInvalidArchitecture)
	}
	for i, row := range l.Weights {
		if len(row) != l.units() {
			return 0, fmt.Errorf("%w: dense weight row %d has %d columns, want %d", ErrInvalidArchitecture, i, len(row), l.units())
		}
	}
	return l.units(), nil
}

func (l DenseLayer) Forward(in []float64) []float64 {
	out := make([]float64, l.units())
	copy(out, l.Bias)
	for i, x := range in {
		if x == 0 {
			continue
		}
		row := l.Weights[i]
		for j := range out {
			out[j] += x * row[j]
		}
	}
	for j := range out {
		out[j] = l.Activation.apply(out[j])
	}
	return out
}

// BatchNormLayer applies batch normalization in inference mode using the
// moving statistics recorded during training.
type BatchNormLayer struct {
	Gamma          []float64
	Beta           []float64
	MovingMean     []float64
	MovingVariance []float64
	Epsilon        float64
}

func (l BatchNormLayer) OutputDim(in int) (int, error) {
	n := len(l.Gamma)
	if n != in {
		return 0, fmt.Errorf("%w: batch norm expects %d inputs, previous layer yields %d", ErrInvalidArchitecture, n, in)
	}
	if len(l.Beta) != n || len(l.MovingMean) != n || len(l.MovingVariance) != n {
		return 0, fmt.Errorf("%w: batch norm parameter lengths differ", ErrInvalidArchitecture)
	}
	if l.Epsilon < 0 {
		return 0, fmt.Errorf("%w: batch norm epsilon must be >= 0", ErrInvalidArchitecture)
	}
	for i, v := range l.MovingVariance {
		if v+l.Epsilon <= 0 {
			return 0, fmt.Errorf("%w: batch norm variance %d is not positive", ErrInvalidArchitecture, i)
		}
	}
	return n, nil
}

func (l BatchNormLayer) Forward(in []float64) []float64 {
	out := make([]float64, len(in))
	for i, x := range in {
		out[i] = l.Gamma[i]*(x-l.MovingMean[i])/math.Sqrt(l.MovingVariance[i]+l.Epsilon) + l.Beta[i]
	}
	return out
}

// DropoutLayer is the identity at inference time. Rate is kept for reporting.
type DropoutLayer struct {
	Rate float64
}

func (l DropoutLayer) OutputDim(in int) (int, error) { return in, nil }

func (l DropoutLayer) Forward(in []float64) []float64 { return in }

// NeuralClassifier is a feed-forward network ending in a single sigmoid unit.
type NeuralClassifier struct {
	layers   []Layer
	inputDim int
}

// NewNeuralClassifier checks that the layers chain from inputDim down to a
// final one-unit sigmoid dense layer.
func NewNeuralClassifier(inputDim int, layers []Layer) (*NeuralClassifier, error) {
	if inputDim <= 0 {
		return nil, fmt.Errorf("%w: input dimension must be positive, got %d", ErrInvalidArchitecture, inputDim)
	}
	if len(layers) == 0 {
		return nil, fmt.Errorf("%w: no layers", ErrInvalidArchitecture)
	}

	width := inputDim
	for i, l := range layers {
		next, err := l.OutputDim(width)
		if err != nil {
			return nil, fmt.Errorf("layer %d: %w", i, err)
		}
		width = next
	}

	last, ok := layers[len(layers)-1].(DenseLayer)
	if !ok || last.units() != 1 || last.Activation != ActivationSigmoid {
		return nil, fmt.Errorf("%w: final layer must be a dense layer with one sigmoid unit", ErrInvalidArchitecture)
	}

	return &NeuralClassifier{layers: layers, inputDim: inputDim}, nil
}

// InputDim returns the expected feature vector length.
func (c *NeuralClassifier) InputDim() int {
	return c.inputDim
}

// Depth returns the number of layers, dropout included.
func (c *NeuralClassifier) Depth() int {
	return len(c.layers)
}

// PredictProba runs the forward pass. The result is clamped to [0, 1].
func (c *NeuralClassifier) PredictProba(features []float64) (float64, error) {
	if len(features) != c.inputDim {
		return 0, fmt.Errorf("%w: got %d features, want %d", ErrInputWidth, len(features), c.inputDim)
	}
	x := features
	for _, l := range c.layers {
		x = l.Forward(x)
	}
	p := x[0]
	if math.IsNaN(p) {
		return 0, ErrNonFiniteOutput
	}
	return math.Min(1, math.Max(0, p)), nil
}
