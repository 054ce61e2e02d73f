package artifact

import (
	"errors"
	"fmt"
)

type FailureKind string

const (
	// ArtifactMissing means a named artifact file does not exist on disk.
	ArtifactMissing FailureKind = "artifact_missing"
	// ArtifactIncompatible means the file exists but could not be decoded,
	// typically because it was exported by a different serializer version.
	ArtifactIncompatible FailureKind = "artifact_incompatible"
)

// LoadError is the only error type the store lets past its boundary. It is
// fatal to scoring but never to the process; callers answer "model not
// loaded" and stay up.
type LoadError struct {
	Kind FailureKind
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Path, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Path)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

func IsMissing(err error) bool {
	var le *LoadError
	return errors.As(err, &le) && le.Kind == ArtifactMissing
}

func IsIncompatible(err error) bool {
	var le *LoadError
	return errors.As(err, &le) && le.Kind == ArtifactIncompatible
}
