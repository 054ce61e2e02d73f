package artifact

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/glucora-health/screening/pkg/ml"
)

// Artifacts are JSON envelopes written by the offline training exporter:
// a schema version, a kind discriminator, and a kind-specific spec.
type envelope struct {
	Schema int             `json:"schema"`
	Kind   string          `json:"kind"`
	Spec   json.RawMessage `json:"spec"`
}

const (
	maxSchema = 2

	kindColumnTransformer = "column_transformer"
	kindLogistic          = "logistic"
	kindSigmoidCalibrated = "sigmoid_calibrated"

	stepStandardScaler = "standard_scaler"
	stepPassthrough    = "passthrough"
	// Kind written for untouched columns by exporters newer than this
	// runtime. Resolved through the compat alias, see registerCompatKinds.
	stepRemainderCols = "remainder_cols"
)

type stepSpec struct {
	Name    string    `json:"name"`
	Kind    string    `json:"kind"`
	Columns []int     `json:"columns"`
	Mean    []float64 `json:"mean,omitempty"`
	Scale   []float64 `json:"scale,omitempty"`
}

type columnTransformerSpec struct {
	NFeatures int        `json:"n_features"`
	Steps     []stepSpec `json:"steps"`
}

type calibratedSpec struct {
	Base      envelope `json:"base"`
	Slope     float64  `json:"slope"`
	Intercept float64  `json:"intercept"`
}

// StepBuilder turns a serialized pipeline step into its fitted in-memory form.
type StepBuilder func(spec stepSpec) (ml.ColumnStep, error)

var (
	stepMu    sync.RWMutex
	stepKinds = map[string]StepBuilder{
		stepStandardScaler: newStandardScalerStep,
		stepPassthrough:    newPassthroughStep,
	}
)

// RegisterStepKind adds a builder for a pipeline step kind. Registration is
// idempotent per name; the last builder wins.
func RegisterStepKind(kind string, builder StepBuilder) {
	stepMu.Lock()
	defer stepMu.Unlock()
	stepKinds[kind] = builder
}

func lookupStepKind(kind string) (StepBuilder, bool) {
	stepMu.RLock()
	defer stepMu.RUnlock()
	builder, ok := stepKinds[kind]
	return builder, ok
}

// registerCompatKinds installs the cross-version aliases the decoder needs
// before it touches artifacts from newer exporters. Newer exporters label the
// untouched-columns step "remainder_cols"; this runtime's pipeline only knows
// "passthrough". The alias is structural: the step behaves identically, so
// predictions are unchanged. Kept here so scoring code never sees it.
func registerCompatKinds() {
	if _, ok := lookupStepKind(stepRemainderCols); !ok {
		RegisterStepKind(stepRemainderCols, newPassthroughStep)
	}
}

func newStandardScalerStep(spec stepSpec) (ml.ColumnStep, error) {
	if len(spec.Mean) != len(spec.Columns) || len(spec.Scale) != len(spec.Columns) {
		return nil, fmt.Errorf("step %q: %d columns but %d means and %d scales", spec.Name, len(spec.Columns), len(spec.Mean), len(spec.Scale))
	}
	return &ml.StandardScaler{Columns: spec.Columns, Mean: spec.Mean, Scale: spec.Scale}, nil
}

func newPassthroughStep(spec stepSpec) (ml.ColumnStep, error) {
	return &ml.Passthrough{Columns: spec.Columns}, nil
}

func decodeEnvelope(data []byte) (envelope, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return envelope{}, fmt.Errorf("malformed artifact envelope: %w", err)
	}
	if env.Schema < 1 || env.Schema > maxSchema {
		return envelope{}, fmt.Errorf("artifact schema %d not supported (runtime supports 1..%d)", env.Schema, maxSchema)
	}
	return env, nil
}

func decodeTransformer(env envelope) (ml.Transformer, error) {
	if env.Kind != kindColumnTransformer {
		return nil, fmt.Errorf("preprocessor kind %q not supported", env.Kind)
	}
	var spec columnTransformerSpec
	if err := json.Unmarshal(env.Spec, &spec); err != nil {
		return nil, fmt.Errorf("malformed %s spec: %w", env.Kind, err)
	}
	if spec.NFeatures <= 0 {
		return nil, fmt.Errorf("%s declares %d features", env.Kind, spec.NFeatures)
	}
	steps := make([]ml.ColumnStep, 0, len(spec.Steps))
	for _, ss := range spec.Steps {
		builder, ok := lookupStepKind(ss.Kind)
		if !ok {
			return nil, fmt.Errorf("pipeline step kind %q unknown to this runtime", ss.Kind)
		}
		step, err := builder(ss)
		if err != nil {
			return nil, err
		}
		steps = append(steps, step)
	}
	return ml.NewColumnTransformer(spec.NFeatures, steps), nil
}

func decodeClassifier(env envelope) (ml.Classifier, error) {
	switch env.Kind {
	case kindLogistic:
		var model ml.LogisticRegression
		if err := json.Unmarshal(env.Spec, &model); err != nil {
			return nil, fmt.Errorf("malformed %s spec: %w", env.Kind, err)
		}
		if len(model.Coefficients) == 0 {
			return nil, fmt.Errorf("%s spec has no coefficients", env.Kind)
		}
		return &model, nil
	case kindSigmoidCalibrated:
		var spec calibratedSpec
		if err := json.Unmarshal(env.Spec, &spec); err != nil {
			return nil, fmt.Errorf("malformed %s spec: %w", env.Kind, err)
		}
		if spec.Base.Schema == 0 {
			spec.Base.Schema = env.Schema
		}
		base, err := decodeClassifier(spec.Base)
		if err != nil {
			return nil, fmt.Errorf("calibrated base: %w", err)
		}
		logistic, ok := base.(*ml.LogisticRegression)
		if !ok {
			return nil, fmt.Errorf("calibrated base kind %q not supported", spec.Base.Kind)
		}
		return &ml.SigmoidCalibrated{Base: logistic, Slope: spec.Slope, Intercept: spec.Intercept}, nil
	default:
		return nil, fmt.Errorf("classifier kind %q not supported", env.Kind)
	}
}
