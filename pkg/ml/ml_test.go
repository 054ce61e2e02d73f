package ml

import (
	"math"
	"testing"
)

func TestStandardScalerTransform(t *testing.T) {
	transformer := NewColumnTransformer(3, []ColumnStep{
		&StandardScaler{Columns: []int{0, 2}, Mean: []float64{10, 100}, Scale: []float64{2, 50}},
		&Passthrough{Columns: []int{1}},
	})

	out, err := transformer.Transform([][]float64{{12, 7, 150}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []float64{1, 7, 1}
	for i, w := range want {
		if math.Abs(out[0][i]-w) > 1e-12 {
			t.Fatalf("column %d: got %v, want %v", i, out[0][i], w)
		}
	}
}

func TestTransformDoesNotMutateInput(t *testing.T) {
	transformer := NewColumnTransformer(1, []ColumnStep{
		&StandardScaler{Columns: []int{0}, Mean: []float64{1}, Scale: []float64{1}},
	})
	in := [][]float64{{5}}
	if _, err := transformer.Transform(in); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if in[0][0] != 5 {
		t.Fatalf("input row mutated: %v", in[0][0])
	}
}

func TestTransformRejectsWrongWidth(t *testing.T) {
	transformer := NewColumnTransformer(11, nil)
	if _, err := transformer.Transform([][]float64{{1, 2, 3}}); err == nil {
		t.Fatal("expected error for row narrower than fitted width")
	}
}

func TestLogisticPredictProba(t *testing.T) {
	model := &LogisticRegression{Bias: 0, Coefficients: []float64{0, 0}}
	proba, err := model.PredictProba([][]float64{{3, 4}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(proba[0][1]-0.5) > 1e-12 {
		t.Fatalf("zero decision should give 0.5, got %v", proba[0][1])
	}
	if math.Abs(proba[0][0]+proba[0][1]-1) > 1e-12 {
		t.Fatalf("class probabilities should sum to 1, got %v", proba[0])
	}
}

func TestLogisticRejectsWrongWidth(t *testing.T) {
	model := &LogisticRegression{Bias: 0, Coefficients: []float64{1, 2, 3}}
	if _, err := model.PredictProba([][]float64{{1, 2}}); err == nil {
		t.Fatal("expected error for sample narrower than model")
	}
}

func TestSigmoidCalibratedSameInterface(t *testing.T) {
	base := &LogisticRegression{Bias: 0, Coefficients: []float64{0}}
	calibrated := &SigmoidCalibrated{Base: base, Slope: 1, Intercept: 0}

	// Both satisfy Classifier and expose the same two-class rows.
	var clf Classifier = calibrated
	proba, err := clf.PredictProba([][]float64{{1}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(proba[0]) != 2 {
		t.Fatalf("expected two-class row, got %v", proba[0])
	}
	if math.Abs(proba[0][1]-0.5) > 1e-12 {
		t.Fatalf("zero decision through identity calibration should give 0.5, got %v", proba[0][1])
	}
}
