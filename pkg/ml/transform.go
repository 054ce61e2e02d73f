package ml

import "fmt"

// ColumnStep transforms a subset of columns of a feature row in place.
type ColumnStep interface {
	Apply(row []float64) error
}

// ColumnTransformer applies an ordered list of fitted column steps to every
// row. Steps are keyed by column position, not by name: feeding rows in any
// order other than the one the transformer was fitted on silently corrupts
// the output.
type ColumnTransformer struct {
	nFeatures int
	steps     []ColumnStep
}

func NewColumnTransformer(nFeatures int, steps []ColumnStep) *ColumnTransformer {
	return &ColumnTransformer{nFeatures: nFeatures, steps: steps}
}

func (t *ColumnTransformer) NumFeatures() int {
	return t.nFeatures
}

func (t *ColumnTransformer) Transform(X [][]float64) ([][]float64, error) {
	out := make([][]float64, len(X))
	for i, row := range X {
		if len(row) != t.nFeatures {
			return nil, fmt.Errorf("row %d has %d features, transformer fitted on %d", i, len(row), t.nFeatures)
		}
		copied := make([]float64, len(row))
		copy(copied, row)
		for _, step := range t.steps {
			if err := step.Apply(copied); err != nil {
				return nil, err
			}
		}
		out[i] = copied
	}
	return out, nil
}

// StandardScaler centers and scales the listed columns with the mean and
// scale learned at fit time.
type StandardScaler struct {
	Columns []int
	Mean    []float64
	Scale   []float64
}

func (s *StandardScaler) Apply(row []float64) error {
	if len(s.Mean) != len(s.Columns) || len(s.Scale) != len(s.Columns) {
		return fmt.Errorf("scaler has %d columns but %d means and %d scales", len(s.Columns), len(s.Mean), len(s.Scale))
	}
	for i, col := range s.Columns {
		if col < 0 || col >= len(row) {
			return fmt.Errorf("scaler column %d out of range for row of %d", col, len(row))
		}
		if s.Scale[i] == 0 {
			return fmt.Errorf("scaler column %d has zero scale", col)
		}
		row[col] = (row[col] - s.Mean[i]) / s.Scale[i]
	}
	return nil
}

// Passthrough leaves its columns untouched. It exists so fitted pipelines can
// record which columns were deliberately not transformed.
type Passthrough struct {
	Columns []int
}

func (p *Passthrough) Apply(row []float64) error {
	for _, col := range p.Columns {
		if col < 0 || col >= len(row) {
			return fmt.Errorf("passthrough column %d out of range for row of %d", col, len(row))
		}
	}
	return nil
}
