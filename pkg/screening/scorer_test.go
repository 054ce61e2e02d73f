package screening

import (
	"errors"
	"math"
	"testing"

	"github.com/glucora-health/screening/pkg/risk"
)

type identityTransformer struct{}

func (identityTransformer) Transform(X [][]float64) ([][]float64, error) {
	return X, nil
}

type failingTransformer struct{}

func (failingTransformer) Transform(X [][]float64) ([][]float64, error) {
	return nil, errors.New("fitted on different columns")
}

// fixedClassifier always returns the same two-class probability row.
type fixedClassifier struct {
	p0, p1 float64
}

func (c fixedClassifier) PredictProba(X [][]float64) ([][]float64, error) {
	out := make([][]float64, len(X))
	for i := range X {
		out[i] = []float64{c.p0, c.p1}
	}
	return out, nil
}

type panickingClassifier struct{}

func (panickingClassifier) PredictProba(X [][]float64) ([][]float64, error) {
	panic("index out of range")
}

type malformedClassifier struct{}

func (malformedClassifier) PredictProba(X [][]float64) ([][]float64, error) {
	return [][]float64{{0.4}}, nil
}

func TestScoreScalesPositiveClassByThree(t *testing.T) {
	scored, err := Score(validRecord(), identityTransformer{}, fixedClassifier{p0: 0.7, p1: 0.3})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(scored-0.9) > 1e-12 {
		t.Fatalf("expected 0.9, got %v", scored)
	}
}

func TestScoreDoesNotClampAboveOne(t *testing.T) {
	scored, err := Score(validRecord(), identityTransformer{}, fixedClassifier{p0: 0.5, p1: 0.5})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if scored != 1.5 {
		t.Fatalf("expected 1.5 without clamping, got %v", scored)
	}
}

func TestScoreEndToEndModerateTier(t *testing.T) {
	// Stub preprocessor and a classifier fixed at raw 0.1 for the positive
	// class: scaled probability 0.3 lands in the moderate band.
	scored, err := Score(validRecord(), identityTransformer{}, fixedClassifier{p0: 0.9, p1: 0.1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(scored-0.3) > 1e-12 {
		t.Fatalf("expected 0.3, got %v", scored)
	}
	if tier := risk.Classify(scored); tier != risk.TierModerate {
		t.Fatalf("expected Moderate, got %v", tier)
	}
}

func TestScoreInvalidInput(t *testing.T) {
	record := validRecord()
	record.Age = 200
	_, err := Score(record, identityTransformer{}, fixedClassifier{p0: 0.9, p1: 0.1})
	if !IsInvalidInput(err) {
		t.Fatalf("expected InvalidInput, got %v", err)
	}
}

func TestScoreTransformFailed(t *testing.T) {
	_, err := Score(validRecord(), failingTransformer{}, fixedClassifier{p0: 0.9, p1: 0.1})
	if !IsTransformFailed(err) {
		t.Fatalf("expected TransformFailed, got %v", err)
	}
}

func TestScoreRecoversFromPanic(t *testing.T) {
	_, err := Score(validRecord(), identityTransformer{}, panickingClassifier{})
	if !IsTransformFailed(err) {
		t.Fatalf("expected TransformFailed from panic, got %v", err)
	}
}

func TestScoreMalformedProbabilities(t *testing.T) {
	_, err := Score(validRecord(), identityTransformer{}, malformedClassifier{})
	if !IsTransformFailed(err) {
		t.Fatalf("expected TransformFailed for single-class output, got %v", err)
	}
}
