package serving

import (
	"context"
	"time"

	"github.com/glucora-health/screening/pkg/risk"
	"github.com/glucora-health/screening/pkg/screening"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AssessmentLog is the persistence model for screening analytics.
type AssessmentLog struct {
	ID           uuid.UUID         `gorm:"primaryKey;column:id"`
	Inputs       datatypes.JSONMap `gorm:"column:inputs"`
	Probability  float64           `gorm:"column:probability"`
	Tier         string            `gorm:"column:tier"`
	ModelVersion string            `gorm:"column:model_version"`
	LatencyMs    float64           `gorm:"column:latency_ms"`
	CreatedAt    time.Time         `gorm:"column:created_at"`
}

// TableName overrides gorm naming.
func (AssessmentLog) TableName() string {
	return "risk_assessments"
}

// Repository handles assessment log queries.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) AutoMigrate() error {
	return r.db.AutoMigrate(&AssessmentLog{})
}

func (r *Repository) RecordAssessment(ctx context.Context, id uuid.UUID, record screening.InputRecord, assessment risk.Assessment, modelVersion string, latency time.Duration) error {
	log := AssessmentLog{
		ID: id,
		Inputs: datatypes.JSONMap{
			"p1":  string(record.VigorousWork),
			"p13": string(record.ModerateRecreation),
			"age": record.Age,
			"bmi": record.BMI,
			"HR":  record.HeartRate,
			"DBP": record.DiastolicBP,
			"b8":  record.TotalCholesterol,
			"m14": record.WaistCircumference,
			"SBP": record.SystolicBP,
			"d1":  record.FruitDays,
			"d3":  record.VegetableDays,
		},
		Probability:  assessment.Probability,
		Tier:         assessment.Tier.String(),
		ModelVersion: modelVersion,
		LatencyMs:    float64(latency.Microseconds()) / 1000.0,
		CreatedAt:    time.Now().UTC(),
	}
	return r.db.WithContext(ctx).Create(&log).Error
}

// Recent returns the most recent assessment logs up to limit.
func (r *Repository) Recent(ctx context.Context, limit int) ([]AssessmentLog, error) {
	if limit <= 0 {
		limit = 50
	}
	var logs []AssessmentLog
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&logs).Error
	return logs, err
}
