// Package classifier provides the binary classifier consumed by the
// recommendation pipeline: a logistic regression fitted by batch gradient
// descent, plus ROC-AUC cross-validation for diagnostics.
package classifier

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Classifier errors.
var (
	// ErrSingleClass is returned when the training labels contain only one
	// class. Typically the profit threshold filtered every row one way.
	ErrSingleClass = errors.New("training labels contain a single class")

	// ErrDimensionMismatch is returned when feature and label shapes disagree.
	ErrDimensionMismatch = errors.New("feature and label dimensions do not match")

	// ErrNotFitted is returned when predicting before a successful Fit.
	ErrNotFitted = errors.New("model is not fitted")
)

// Default training hyperparameters.
const (
	DefaultLearningRate = 0.1
	DefaultEpochs       = 500
)

// LogisticRegression is a binary classifier over dense float features.
// Labels are 0/1; predictions are probabilities of class 1.
type LogisticRegression struct {
	LearningRate float64
	Epochs       int

	weights *mat.VecDense // excludes bias
	bias    float64
}

// NewLogisticRegression creates a model with default hyperparameters.
func NewLogisticRegression() *LogisticRegression {
	return &LogisticRegression{
		LearningRate: DefaultLearningRate,
		Epochs:       DefaultEpochs,
	}
}

// Fit trains the model on X (rows = samples) against 0/1 labels y.
func (l *LogisticRegression) Fit(x *mat.Dense, y []float64) error {
	rows, cols := x.Dims()
	if rows != len(y) {
		return fmt.Errorf("%w: %d feature rows, %d labels", ErrDimensionMismatch, rows, len(y))
	}
	if rows == 0 {
		return fmt.Errorf("%w: empty training set", ErrDimensionMismatch)
	}
	if singleClass(y) {
		return ErrSingleClass
	}

	weights := mat.NewVecDense(cols, nil)
	bias := 0.0

	for epoch := 0; epoch < l.Epochs; epoch++ {
		gradW := make([]float64, cols)
		gradB := 0.0
		for i := 0; i < rows; i++ {
			row := x.RawRowView(i)
			diff := sigmoid(dot(row, weights.RawVector().Data)+bias) - y[i]
			for j, v := range row {
				gradW[j] += diff * v
			}
			gradB += diff
		}
		for j := 0; j < cols; j++ {
			weights.SetVec(j, weights.AtVec(j)-l.LearningRate*gradW[j]/float64(rows))
		}
		bias -= l.LearningRate * gradB / float64(rows)
	}

	l.weights = weights
	l.bias = bias
	return nil
}

// PredictProba returns the probability of class 1 for every row of x.
func (l *LogisticRegression) PredictProba(x *mat.Dense) ([]float64, error) {
	if l.weights == nil {
		return nil, ErrNotFitted
	}
	rows, cols := x.Dims()
	if cols != l.weights.Len() {
		return nil, fmt.Errorf("%w: %d feature columns, model has %d weights", ErrDimensionMismatch, cols, l.weights.Len())
	}
	out := make([]float64, rows)
	for i := 0; i < rows; i++ {
		out[i] = sigmoid(dot(x.RawRowView(i), l.weights.RawVector().Data) + l.bias)
	}
	return out, nil
}

// Coefficients returns the fitted feature weights and the bias term.
func (l *LogisticRegression) Coefficients() ([]float64, float64, error) {
	if l.weights == nil {
		return nil, 0, ErrNotFitted
	}
	coefs := make([]float64, l.weights.Len())
	copy(coefs, l.weights.RawVector().Data)
	return coefs, l.bias, nil
}

func sigmoid(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}

func dot(a, b []float64) float64 {
	sum := 0.0
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

func singleClass(y []float64) bool {
	for _, v := range y[1:] {
		if v != y[0] {
			return false
		}
	}
	return true
}
