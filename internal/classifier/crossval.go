package classifier

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// ErrInsufficientData is returned when a cross-validation fold cannot hold
// both classes.
var ErrInsufficientData = errors.New("not enough data for cross-validation")

// AUC computes the area under the ROC curve for scores against 0/1 labels
// using the exact rank formulation: the probability that a random positive
// scores above a random negative, ties counted half.
func AUC(scores, labels []float64) (float64, error) {
	if len(scores) != len(labels) {
		return 0, fmt.Errorf("%w: %d scores, %d labels", ErrDimensionMismatch, len(scores), len(labels))
	}
	var pos, neg int
	for _, y := range labels {
		if y == 1 {
			pos++
		} else {
			neg++
		}
	}
	if pos == 0 || neg == 0 {
		return 0, ErrSingleClass
	}

	sum := 0.0
	for i, si := range scores {
		if labels[i] != 1 {
			continue
		}
		for j, sj := range scores {
			if labels[j] == 1 {
				continue
			}
			switch {
			case si > sj:
				sum++
			case si == sj:
				sum += 0.5
			}
		}
	}
	return sum / float64(pos*neg), nil
}

// CrossValidateAUC estimates the mean ROC-AUC over k contiguous folds.
// Contiguous splits respect the temporal ordering of the training table.
func CrossValidateAUC(x *mat.Dense, y []float64, folds int) (float64, error) {
	rows, cols := x.Dims()
	if rows != len(y) {
		return 0, fmt.Errorf("%w: %d feature rows, %d labels", ErrDimensionMismatch, rows, len(y))
	}
	if folds < 2 || rows < 2*folds {
		return 0, fmt.Errorf("%w: %d rows over %d folds", ErrInsufficientData, rows, folds)
	}

	total := 0.0
	for fold := 0; fold < folds; fold++ {
		lo := fold * rows / folds
		hi := (fold + 1) * rows / folds

		trainRows := rows - (hi - lo)
		trainX := mat.NewDense(trainRows, cols, nil)
		trainY := make([]float64, 0, trainRows)
		testX := mat.NewDense(hi-lo, cols, nil)
		testY := make([]float64, 0, hi-lo)

		ti, vi := 0, 0
		for i := 0; i < rows; i++ {
			if i >= lo && i < hi {
				testX.SetRow(vi, x.RawRowView(i))
				testY = append(testY, y[i])
				vi++
				continue
			}
			trainX.SetRow(ti, x.RawRowView(i))
			trainY = append(trainY, y[i])
			ti++
		}

		model := NewLogisticRegression()
		if err := model.Fit(trainX, trainY); err != nil {
			return 0, err
		}
		scores, err := model.PredictProba(testX)
		if err != nil {
			return 0, err
		}
		auc, err := AUC(scores, testY)
		if err != nil {
			return 0, err
		}
		total += auc
	}
	return total / float64(folds), nil
}
