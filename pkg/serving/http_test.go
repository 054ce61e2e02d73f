package serving

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/glucora-health/screening/pkg/artifact"
	"github.com/glucora-health/screening/pkg/common/logger"
	"github.com/glucora-health/screening/pkg/risk"
	"github.com/gorilla/mux"
)

func TestMain(m *testing.M) {
	logger.Init()
	os.Exit(m.Run())
}

const testPreprocessor = `{
  "schema": 2,
  "kind": "column_transformer",
  "spec": {
    "n_features": 11,
    "steps": [
      {"name": "remainder", "kind": "passthrough", "columns": [0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10]}
    ]
  }
}`

// Zero coefficients, bias ln(0.1/0.9): every valid record scores raw 0.1,
// scaled 0.3, which lands in the moderate band.
const testClassifier = `{
  "schema": 2,
  "kind": "logistic",
  "spec": {"bias": -2.1972245773362196, "coefficients": [0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0]}
}`

func newTestRouter(t *testing.T, withArtifacts bool) *mux.Router {
	t.Helper()
	dir := t.TempDir()
	prePath := filepath.Join(dir, "validated_preprocessor.json")
	clfPath := filepath.Join(dir, "validated_model.json")
	if withArtifacts {
		if err := os.WriteFile(prePath, []byte(testPreprocessor), 0o644); err != nil {
			t.Fatalf("write preprocessor: %v", err)
		}
		if err := os.WriteFile(clfPath, []byte(testClassifier), 0o644); err != nil {
			t.Fatalf("write classifier: %v", err)
		}
	}
	store := artifact.NewStore(prePath, clfPath)
	handler := NewHandler(store, risk.DefaultThresholds(), nil, nil, nil)
	router := mux.NewRouter()
	handler.Register(router)
	return router
}

const validBody = `{
  "p1": "Yes", "p13": "No",
  "age": 45, "bmi": 28.5, "HR": 72, "DBP": 80,
  "b8": 5.2, "m14": 95.5, "SBP": 120, "d1": 3, "d3": 5
}`

func TestAssessHappyPath(t *testing.T) {
	router := newTestRouter(t, true)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/assess", strings.NewReader(validBody))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp AssessResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Tier != "Moderate" {
		t.Fatalf("expected Moderate tier, got %q", resp.Tier)
	}
	if resp.ProbabilityDisplay != "30.0%" {
		t.Fatalf("expected display 30.0%%, got %q", resp.ProbabilityDisplay)
	}
	if resp.Severity != "warn" {
		t.Fatalf("expected warn severity, got %q", resp.Severity)
	}
	if resp.Guidance == "" || resp.Disclaimer == "" {
		t.Fatal("guidance and disclaimer must always be present")
	}
	if resp.Record.Age != 45 || resp.Record.VigorousWork != "Yes" {
		t.Fatalf("record not echoed: %+v", resp.Record)
	}
}

func TestAssessCoercesNumericStrings(t *testing.T) {
	router := newTestRouter(t, true)

	body := strings.Replace(validBody, `"age": 45`, `"age": "45"`, 1)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/assess", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for coercible string, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestAssessRejectsNonNumeric(t *testing.T) {
	router := newTestRouter(t, true)

	body := strings.Replace(validBody, `"age": 45`, `"age": "forty-five"`, 1)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/assess", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for non-numeric field, got %d", rec.Code)
	}
}

func TestAssessRejectsOutOfRange(t *testing.T) {
	router := newTestRouter(t, true)

	body := strings.Replace(validBody, `"age": 45`, `"age": 200`, 1)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/assess", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for out-of-range field, got %d", rec.Code)
	}
}

func TestAssessModelNotLoaded(t *testing.T) {
	router := newTestRouter(t, false)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/assess", strings.NewReader(validBody))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 when artifacts absent, got %d", rec.Code)
	}
}

func TestModelStatus(t *testing.T) {
	router := newTestRouter(t, true)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/model", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var status map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &status); err != nil {
		t.Fatalf("decode status: %v", err)
	}
	if loaded, _ := status["loaded"].(bool); !loaded {
		t.Fatalf("expected loaded model, got %v", status)
	}
}

func TestModelStatusWhenMissing(t *testing.T) {
	router := newTestRouter(t, false)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/model", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("diagnostics endpoint should answer 200, got %d", rec.Code)
	}
	var status map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &status); err != nil {
		t.Fatalf("decode status: %v", err)
	}
	if loaded, _ := status["loaded"].(bool); loaded {
		t.Fatal("expected loaded=false when artifacts are absent")
	}
	if msg, _ := status["error"].(string); !strings.Contains(msg, "artifact_missing") {
		t.Fatalf("expected artifact_missing in error, got %q", msg)
	}
}
