package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	// Server
	ServerPort   string
	ServerHost   string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// Model artifacts
	PreprocessorPath   string
	ModelPath          string
	RiskThresholdsPath string

	// Database (assessment audit log, optional)
	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string
	AuditLogEnabled  bool

	// Redis (assessment cache, optional)
	RedisHost          string
	RedisPort          string
	RedisPassword      string
	RedisDB            int
	AssessmentCacheTTL time.Duration
	CacheEnabled       bool

	// Kafka (assessment events, optional)
	KafkaBrokers  []string
	KafkaTopic    string
	EventsEnabled bool
}

func Load() *Config {
	return &Config{
		ServerPort:   getEnv("SERVER_PORT", "8090"),
		ServerHost:   getEnv("SERVER_HOST", "0.0.0.0"),
		ReadTimeout:  getDuration("READ_TIMEOUT", 30*time.Second),
		WriteTimeout: getDuration("WRITE_TIMEOUT", 30*time.Second),

		PreprocessorPath:   getEnv("PREPROCESSOR_PATH", "artifacts/validated_preprocessor.json"),
		ModelPath:          getEnv("MODEL_PATH", "artifacts/validated_model.json"),
		RiskThresholdsPath: getEnv("RISK_THRESHOLDS_PATH", ""),

		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "glucora"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "glucora123"),
		PostgresDB:       getEnv("POSTGRES_DB", "glucora"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
		AuditLogEnabled:  getBoolEnv("AUDIT_LOG_ENABLED", false),

		RedisHost:          getEnv("REDIS_HOST", "localhost"),
		RedisPort:          getEnv("REDIS_PORT", "6379"),
		RedisPassword:      getEnv("REDIS_PASSWORD", ""),
		RedisDB:            getIntEnv("REDIS_DB", 0),
		AssessmentCacheTTL: getDuration("ASSESSMENT_CACHE_TTL", 10*time.Minute),
		CacheEnabled:       getBoolEnv("ASSESSMENT_CACHE_ENABLED", false),

		KafkaBrokers:  getStringSliceEnv("KAFKA_BROKERS", []string{"localhost:9092"}),
		KafkaTopic:    getEnv("KAFKA_TOPIC", "screening.assessments"),
		EventsEnabled: getBoolEnv("ASSESSMENT_EVENTS_ENABLED", false),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getStringSliceEnv(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		return []string{value}
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
