package serving

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/glucora-health/screening/pkg/artifact"
	"github.com/glucora-health/screening/pkg/common/logger"
	"github.com/glucora-health/screening/pkg/events"
	"github.com/glucora-health/screening/pkg/risk"
	"github.com/glucora-health/screening/pkg/screening"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// AssessRequest is the wire form of one completed screening form. Numeric
// fields are left loosely typed so values arriving as strings or integers
// coerce the same way regardless of the submitting client.
type AssessRequest struct {
	VigorousWork       string      `json:"p1"`
	ModerateRecreation string      `json:"p13"`
	Age                interface{} `json:"age"`
	BMI                interface{} `json:"bmi"`
	HeartRate          interface{} `json:"HR"`
	DiastolicBP        interface{} `json:"DBP"`
	TotalCholesterol   interface{} `json:"b8"`
	WaistCircumference interface{} `json:"m14"`
	SystolicBP         interface{} `json:"SBP"`
	FruitDays          interface{} `json:"d1"`
	VegetableDays      interface{} `json:"d3"`
}

// AssessResponse is everything the collaborator needs to render a result:
// the scaled probability, its percentage display, the tier with its styling
// severity, the tier-keyed guidance, and the echoed record for the summary.
type AssessResponse struct {
	AssessmentID       string                `json:"assessment_id"`
	Probability        float64               `json:"probability"`
	ProbabilityDisplay string                `json:"probability_display"`
	Tier               string                `json:"risk_tier"`
	Severity           string                `json:"severity"`
	Guidance           string                `json:"guidance"`
	Disclaimer         string                `json:"disclaimer"`
	Record             screening.InputRecord `json:"record"`
	ModelVersion       string                `json:"model_version"`
}

type Handler struct {
	store      *artifact.Store
	thresholds risk.Thresholds
	repo       *Repository
	cache      *Cache
	producer   *events.Producer
}

// NewHandler wires the scoring pipeline behind HTTP. Repository, cache and
// producer are optional; pass nil to disable each.
func NewHandler(store *artifact.Store, thresholds risk.Thresholds, repo *Repository, cache *Cache, producer *events.Producer) *Handler {
	return &Handler{
		store:      store,
		thresholds: thresholds,
		repo:       repo,
		cache:      cache,
		producer:   producer,
	}
}

func (h *Handler) Register(r *mux.Router) {
	r.HandleFunc("/api/v1/assess", h.handleAssess).Methods(http.MethodPost)
	r.HandleFunc("/api/v1/model", h.handleModelStatus).Methods(http.MethodGet)
	r.HandleFunc("/api/v1/model/reload", h.handleModelReload).Methods(http.MethodPost)
}

func (h *Handler) handleAssess(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req AssessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	record, err := buildRecord(req)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	preprocessor, classifier, err := h.store.Load()
	if err != nil {
		logger.Log.WithError(err).Error("model not loaded")
		http.Error(w, "model is not loaded, cannot perform calculation", http.StatusServiceUnavailable)
		return
	}

	ctx := r.Context()
	if h.cache != nil {
		if cached, ok := h.cache.Get(ctx, record); ok {
			writeJSON(w, http.StatusOK, cached)
			return
		}
	}

	probability, err := screening.Score(record, preprocessor, classifier)
	if err != nil {
		switch {
		case screening.IsInvalidInput(err):
			http.Error(w, err.Error(), http.StatusBadRequest)
		default:
			logger.Log.WithError(err).Error("failed during transform or predict")
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		}
		return
	}

	assessment := risk.Assessment{
		Probability: probability,
		Tier:        h.thresholds.Classify(probability),
	}

	id := uuid.New()
	resp := AssessResponse{
		AssessmentID:       id.String(),
		Probability:        assessment.Probability,
		ProbabilityDisplay: fmt.Sprintf("%.1f%%", assessment.Probability*100),
		Tier:               assessment.Tier.String(),
		Severity:           string(assessment.Tier.Severity()),
		Guidance:           assessment.Tier.Guidance(),
		Disclaimer:         risk.Disclaimer,
		Record:             record,
		ModelVersion:       h.modelVersion(),
	}

	latency := time.Since(start)

	if h.cache != nil {
		h.cache.Set(ctx, record, resp)
	}
	if h.repo != nil {
		if err := h.repo.RecordAssessment(ctx, id, record, assessment, resp.ModelVersion, latency); err != nil {
			logger.Log.WithError(err).Error("failed to record assessment")
		}
	}
	if h.producer != nil {
		if err := h.producer.PublishAssessment(ctx, id.String(), assessment.Probability, assessment.Tier.String(), resp.ModelVersion); err != nil {
			logger.Log.WithError(err).Warn("assessment event not published")
		}
	}

	logger.Log.WithFields(map[string]interface{}{
		"assessment_id": id.String(),
		"tier":          resp.Tier,
		"latency_ms":    latency.Milliseconds(),
	}).Info("Assessment completed")

	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleModelStatus(w http.ResponseWriter, r *http.Request) {
	if info, loaded := h.store.Describe(); loaded {
		writeJSON(w, http.StatusOK, map[string]interface{}{"loaded": true, "artifacts": info})
		return
	}
	if _, _, err := h.store.Load(); err != nil {
		writeJSON(w, http.StatusOK, map[string]interface{}{"loaded": false, "error": err.Error()})
		return
	}
	info, _ := h.store.Describe()
	writeJSON(w, http.StatusOK, map[string]interface{}{"loaded": true, "artifacts": info})
}

// handleModelReload is the operator escape hatch; nothing calls it
// automatically.
func (h *Handler) handleModelReload(w http.ResponseWriter, r *http.Request) {
	if _, _, err := h.store.Reload(); err != nil {
		logger.Log.WithError(err).Error("model reload failed")
		writeJSON(w, http.StatusServiceUnavailable, map[string]interface{}{"loaded": false, "error": err.Error()})
		return
	}
	info, _ := h.store.Describe()
	writeJSON(w, http.StatusOK, map[string]interface{}{"loaded": true, "artifacts": info})
}

func (h *Handler) modelVersion() string {
	info, loaded := h.store.Describe()
	if !loaded {
		return "unknown"
	}
	return fmt.Sprintf("%s/v%d", info.ClassifierKind, info.ClassifierSchema)
}

func buildRecord(req AssessRequest) (screening.InputRecord, error) {
	var record screening.InputRecord
	record.VigorousWork = screening.YesNo(req.VigorousWork)
	record.ModerateRecreation = screening.YesNo(req.ModerateRecreation)

	fields := []struct {
		name  string
		value interface{}
		set   func(float64)
	}{
		{"age", req.Age, func(f float64) { record.Age = int(f) }},
		{"bmi", req.BMI, func(f float64) { record.BMI = f }},
		{"HR", req.HeartRate, func(f float64) { record.HeartRate = int(f) }},
		{"DBP", req.DiastolicBP, func(f float64) { record.DiastolicBP = int(f) }},
		{"b8", req.TotalCholesterol, func(f float64) { record.TotalCholesterol = f }},
		{"m14", req.WaistCircumference, func(f float64) { record.WaistCircumference = f }},
		{"SBP", req.SystolicBP, func(f float64) { record.SystolicBP = int(f) }},
		{"d1", req.FruitDays, func(f float64) { record.FruitDays = int(f) }},
		{"d3", req.VegetableDays, func(f float64) { record.VegetableDays = int(f) }},
	}
	for _, field := range fields {
		f, err := toFloat(field.value)
		if err != nil {
			return screening.InputRecord{}, fmt.Errorf("field %s: %w", field.name, err)
		}
		field.set(f)
	}
	return record, nil
}

func toFloat(value interface{}) (float64, error) {
	switch v := value.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case json.Number:
		return v.Float64()
	case string:
		return strconv.ParseFloat(v, 64)
	default:
		return 0, fmt.Errorf("unsupported type %T", value)
	}
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Log.WithError(err).Error("failed to encode response")
	}
}
