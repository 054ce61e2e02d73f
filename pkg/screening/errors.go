package screening

import "errors"

type ErrorKind string

const (
	// InvalidInput means the record failed coercion or range validation.
	// Recoverable: the collaborator re-prompts the form.
	InvalidInput ErrorKind = "invalid_input"
	// TransformFailed wraps any failure inside the preprocessing or
	// prediction call. Recoverable: the current request is aborted, the
	// process stays up.
	TransformFailed ErrorKind = "transform_failed"
)

type ScoringError struct {
	Kind ErrorKind
	Err  error
}

func (e *ScoringError) Error() string {
	return string(e.Kind) + ": " + e.Err.Error()
}

func (e *ScoringError) Unwrap() error {
	return e.Err
}

func IsInvalidInput(err error) bool {
	var se *ScoringError
	return errors.As(err, &se) && se.Kind == InvalidInput
}

func IsTransformFailed(err error) bool {
	var se *ScoringError
	return errors.As(err, &se) && se.Kind == TransformFailed
}
