package risk

import (
	"encoding/json"
	"fmt"
)

// Tier is an ordinal risk category. Higher values mean higher risk.
type Tier int

const (
	TierLow Tier = iota
	TierModerate
	TierHigh
)

func (t Tier) String() string {
	switch t {
	case TierHigh:
		return "High"
	case TierModerate:
		return "Moderate"
	default:
		return "Low"
	}
}

func (t Tier) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *Tier) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	switch s {
	case "Low":
		*t = TierLow
	case "Moderate":
		*t = TierModerate
	case "High":
		*t = TierHigh
	default:
		return fmt.Errorf("unknown risk tier %q", s)
	}
	return nil
}

// Thresholds are the clinical cutoffs, already expressed in the scaled (x3)
// probability space the scorer emits. Each tier is inclusive on its lower
// bound.
type Thresholds struct {
	Moderate float64 `yaml:"moderate"`
	High     float64 `yaml:"high"`
}

// DefaultThresholds are the deployed cutoffs: 0.06x3 and 0.24x3.
func DefaultThresholds() Thresholds {
	return Thresholds{Moderate: 0.18, High: 0.72}
}

func (t Thresholds) Validate() error {
	if t.Moderate <= 0 || t.High <= 0 {
		return fmt.Errorf("thresholds must be positive, got moderate=%v high=%v", t.Moderate, t.High)
	}
	if t.Moderate >= t.High {
		return fmt.Errorf("moderate threshold %v must be below high threshold %v", t.Moderate, t.High)
	}
	return nil
}

// Classify buckets a scaled probability into a tier. Total over all floats,
// deterministic, no failure mode.
func (t Thresholds) Classify(probability float64) Tier {
	switch {
	case probability >= t.High:
		return TierHigh
	case probability >= t.Moderate:
		return TierModerate
	default:
		return TierLow
	}
}

// Classify buckets with the deployed default thresholds.
func Classify(probability float64) Tier {
	return DefaultThresholds().Classify(probability)
}

// Assessment is the output of one scoring request. Created fresh per request,
// immutable, never persisted by the core.
type Assessment struct {
	Probability float64 `json:"probability"`
	Tier        Tier    `json:"tier"`
}
