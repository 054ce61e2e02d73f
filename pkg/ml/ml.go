package ml

// Transformer is a fitted feature transform, applied at inference time exactly
// as it was applied during training.
type Transformer interface {
	Transform(X [][]float64) ([][]float64, error)
}

// Classifier is a two-class probability estimator. PredictProba returns one
// row per input sample, each row being [P(class 0), P(class 1)].
type Classifier interface {
	PredictProba(X [][]float64) ([][]float64, error)
}
