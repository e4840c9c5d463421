package service

import (
	"errors"
	"fmt"
	"slices"
)

// DecisionThreshold is the probability at or above which a record is
// classified as positive when evaluating a scorer.
const DecisionThreshold = 0.5

// ErrSingleClass is returned by ROCAUC when the labels contain only one class.
var ErrSingleClass = errors.New("roc auc is undefined when only one class is present")

// Confusion holds binary classification counts.
type Confusion struct {
	TN, FP, FN, TP int
}

// ClassScores are precision, recall and F1 for one class. Undefined ratios
// are reported as 0.
type ClassScores struct {
	Precision float64
	Recall    float64
	F1        float64
	Support   int
}

// ConfusionAt counts outcomes with p >= threshold treated as positive.
func ConfusionAt(labels []int, probs []float64, threshold float64) (Confusion, error) {
	if len(labels) != len(probs) {
		return Confusion{}, fmt.Errorf("labels and probabilities differ in length: %d != %d", len(labels), len(probs))
	}
	var c Confusion
	for i, y := range labels {
		pred := probs[i] >= threshold
		switch {
		case y == 1 && pred:
			c.TP++
		case y == 1:
			c.FN++
		case pred:
			c.FP++
		default:
			c.TN++
		}
	}
	return c, nil
}

// Accuracy is the share of correct predictions.
func (c Confusion) Accuracy() float64 {
	return ratio(c.TP+c.TN, c.TP+c.TN+c.FP+c.FN)
}

// Negative returns scores for class 0.
func (c Confusion) Negative() ClassScores {
	return classScores(c.TN, c.FN, c.FP)
}

// Positive returns scores for class 1.
func (c Confusion) Positive() ClassScores {
	return classScores(c.TP, c.FP, c.FN)
}

func classScores(tp, fp, fn int) ClassScores {
	s := ClassScores{
		Precision: ratio(tp, tp+fp),
		Recall:    ratio(tp, tp+fn),
		Support:   tp + fn,
	}
	if s.Precision+s.Recall > 0 {
		s.F1 = 2 * s.Precision * s.Recall / (s.Precision + s.Recall)
	}
	return s
}

func ratio(num, den int) float64 {
	if den == 0 {
		return 0
	}
	return float64(num) / float64(den)
}

// ROCAUC computes the area under the ROC curve via the rank-sum statistic.
// Tied scores receive their average rank.
func ROCAUC(labels []int, probs []float64) (float64, error) {
	if len(labels) != len(probs) {
		return 0, fmt.Errorf("labels and probabilities differ in length: %d != %d", len(labels), len(probs))
	}

	idx := make([]int, len(probs))
	for i := range idx {
		idx[i] = i
	}
	slices.SortFunc(idx, func(a, b int) int {
		switch {
		case probs[a] < probs[b]:
			return -1
		case probs[a] > probs[b]:
			return 1
		default:
			return 0
		}
	})

	ranks := make([]float64, len(probs))
	for i := 0; i < len(idx); {
		j := i
		for j+1 < len(idx) && probs[idx[j+1]] == probs[idx[i]] {
			j++
		}
		avg := float64(i+j)/2 + 1
		for k := i; k <= j; k++ {
			ranks[idx[k]] = avg
		}
		i = j + 1
	}

	var nPos, nNeg int
	var rankSum float64
	for i, y := range labels {
		if y == 1 {
			nPos++
			rankSum += ranks[i]
		} else {
			nNeg++
		}
	}
	if nPos == 0 || nNeg == 0 {
		return 0, ErrSingleClass
	}

	u := rankSum - float64(nPos*(nPos+1))/2
	return u / float64(nPos*nNeg), nil
}
