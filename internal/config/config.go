package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds everything the gateway needs at startup. It is loaded once
// in main and passed by reference; nothing re-reads the environment per
// request.
type Config struct {
	Port string

	ProjectID            string
	RawBucket            string
	JobsCollection       string
	ResultsCollection    string
	ExecutionsCollection string

	WorkflowID       string
	WorkflowLocation string

	OriginPrefix   string
	ListLimit      int
	MaxUploadBytes int64
}

// Load reads configuration from the environment, with a .env overlay for
// local development. PROJECT_ID and RAW_BUCKET have no sane default and
// must be set.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, relying on environment variables")
	}

	cfg := &Config{
		Port:                 GetEnv("PORT", "8080"),
		ProjectID:            GetEnv("PROJECT_ID", ""),
		RawBucket:            GetEnv("RAW_BUCKET", ""),
		JobsCollection:       GetEnv("JOBS_COLLECTION", "document-jobs"),
		ResultsCollection:    GetEnv("RESULTS_COLLECTION", "extraction-results"),
		ExecutionsCollection: GetEnv("EXECUTIONS_COLLECTION", "job-executions"),
		WorkflowID:           GetEnv("WORKFLOW_ID", "document-processing"),
		WorkflowLocation:     GetEnv("WORKFLOW_LOCATION", "us-central1"),
		OriginPrefix:         GetEnv("ORIGIN_PREFIX", "web"),
		ListLimit:            getEnvAsInt("LIST_LIMIT", 20),
		MaxUploadBytes:       int64(getEnvAsInt("MAX_UPLOAD_MB", 16)) << 20,
	}

	if cfg.ProjectID == "" {
		return nil, fmt.Errorf("PROJECT_ID environment variable must be set")
	}
	if cfg.RawBucket == "" {
		return nil, fmt.Errorf("RAW_BUCKET environment variable must be set")
	}
	return cfg, nil
}

// GetEnv reads an environment variable or returns a default value.
func GetEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	if value, err := strconv.Atoi(GetEnv(key, "")); err == nil {
		return value
	}
	return fallback
}
