package artifact

import (
	"fmt"
	"os"
	"sync"

	"github.com/glucora-health/screening/pkg/common/logger"
	"github.com/glucora-health/screening/pkg/ml"
)

// Info describes the loaded artifact pair for diagnostics.
type Info struct {
	PreprocessorPath   string `json:"preprocessor_path"`
	PreprocessorKind   string `json:"preprocessor_kind"`
	PreprocessorSchema int    `json:"preprocessor_schema"`
	ClassifierPath     string `json:"classifier_path"`
	ClassifierKind     string `json:"classifier_kind"`
	ClassifierSchema   int    `json:"classifier_schema"`
}

// Store loads the fitted preprocessor and classifier pair from disk once per
// process and hands out the cached pair afterwards. The pair is read-only
// after load; Reload is an operator escape hatch, never called automatically.
type Store struct {
	preprocessorPath string
	classifierPath   string

	mu     sync.RWMutex
	pre    ml.Transformer
	clf    ml.Classifier
	info   Info
	loaded bool
}

func NewStore(preprocessorPath, classifierPath string) *Store {
	return &Store{
		preprocessorPath: preprocessorPath,
		classifierPath:   classifierPath,
	}
}

// Load returns the cached artifact pair, reading from disk only on first use.
// It never panics past its boundary: every failure comes back as *LoadError.
func (s *Store) Load() (ml.Transformer, ml.Classifier, error) {
	s.mu.RLock()
	if s.loaded {
		pre, clf := s.pre, s.clf
		s.mu.RUnlock()
		return pre, clf, nil
	}
	s.mu.RUnlock()
	return s.Reload()
}

// Reload drops the cached pair and reads both artifacts from disk again.
func (s *Store) Reload() (ml.Transformer, ml.Classifier, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pre, clf, info, err := loadPair(s.preprocessorPath, s.classifierPath)
	if err != nil {
		return nil, nil, err
	}

	s.pre, s.clf, s.info = pre, clf, info
	s.loaded = true

	logger.Log.WithFields(map[string]interface{}{
		"preprocessor": info.PreprocessorKind,
		"classifier":   info.ClassifierKind,
		"schema":       info.ClassifierSchema,
	}).Info("Model artifacts loaded")

	return pre, clf, nil
}

// Describe reports what is currently loaded, for the diagnostics endpoint.
func (s *Store) Describe() (Info, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.info, s.loaded
}

func loadPair(prePath, clfPath string) (pre ml.Transformer, clf ml.Classifier, info Info, err error) {
	// Decoding walks exporter-controlled structures; a panic there must not
	// cross the store boundary.
	defer func() {
		if r := recover(); r != nil {
			pre, clf = nil, nil
			err = &LoadError{Kind: ArtifactIncompatible, Path: clfPath, Err: fmt.Errorf("panic during artifact decode: %v", r)}
		}
	}()

	for _, path := range []string{prePath, clfPath} {
		if _, statErr := os.Stat(path); statErr != nil {
			return nil, nil, Info{}, &LoadError{Kind: ArtifactMissing, Path: path, Err: statErr}
		}
	}

	registerCompatKinds()

	preEnv, err := readEnvelope(prePath)
	if err != nil {
		return nil, nil, Info{}, err
	}
	clfEnv, err := readEnvelope(clfPath)
	if err != nil {
		return nil, nil, Info{}, err
	}

	pre, decErr := decodeTransformer(preEnv)
	if decErr != nil {
		return nil, nil, Info{}, &LoadError{Kind: ArtifactIncompatible, Path: prePath, Err: decErr}
	}
	clf, decErr = decodeClassifier(clfEnv)
	if decErr != nil {
		return nil, nil, Info{}, &LoadError{Kind: ArtifactIncompatible, Path: clfPath, Err: decErr}
	}

	info = Info{
		PreprocessorPath:   prePath,
		PreprocessorKind:   preEnv.Kind,
		PreprocessorSchema: preEnv.Schema,
		ClassifierPath:     clfPath,
		ClassifierKind:     clfEnv.Kind,
		ClassifierSchema:   clfEnv.Schema,
	}
	return pre, clf, info, nil
}

func readEnvelope(path string) (envelope, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return envelope{}, &LoadError{Kind: ArtifactMissing, Path: path, Err: err}
	}
	env, err := decodeEnvelope(data)
	if err != nil {
		return envelope{}, &LoadError{Kind: ArtifactIncompatible, Path: path, Err: err}
	}
	return env, nil
}
