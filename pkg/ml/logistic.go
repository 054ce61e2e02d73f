package ml

import (
	"fmt"
	"math"
)

// LogisticRegression holds fitted weights for a binary logistic model.
type LogisticRegression struct {
	Bias         float64   `json:"bias"`
	Coefficients []float64 `json:"coefficients"`
}

func (m *LogisticRegression) decision(sample []float64) (float64, error) {
	if len(sample) != len(m.Coefficients) {
		return 0, fmt.Errorf("sample has %d features, model fitted on %d", len(sample), len(m.Coefficients))
	}
	sum := m.Bias
	for i, coeff := range m.Coefficients {
		sum += coeff * sample[i]
	}
	return sum, nil
}

func (m *LogisticRegression) PredictProba(X [][]float64) ([][]float64, error) {
	out := make([][]float64, len(X))
	for i, sample := range X {
		score, err := m.decision(sample)
		if err != nil {
			return nil, err
		}
		p := sigmoid(score)
		out[i] = []float64{1 - p, p}
	}
	return out, nil
}

// SigmoidCalibrated wraps a fitted base model with Platt-style sigmoid
// calibration. It exposes the same two-class probability interface as the
// base, so callers never need to know whether a model was calibrated.
type SigmoidCalibrated struct {
	Base      *LogisticRegression
	Slope     float64
	Intercept float64
}

func (c *SigmoidCalibrated) PredictProba(X [][]float64) ([][]float64, error) {
	if c.Base == nil {
		return nil, fmt.Errorf("calibrated model has no base estimator")
	}
	out := make([][]float64, len(X))
	for i, sample := range X {
		score, err := c.Base.decision(sample)
		if err != nil {
			return nil, err
		}
		p := sigmoid(-(c.Slope*score + c.Intercept))
		out[i] = []float64{1 - p, p}
	}
	return out, nil
}

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}
