package config

import (
	"log"
	"os"
	"strconv"
)

const (
	defaultJobQueueSize       = 200
	defaultNumJobWorkers      = 4
	defaultFaceMatchThreshold = 0.8
)

type Config struct {
	// database path
	DatabasePath string

	// HTTP listen port
	Port string

	// worker settings
	JobQueueSize  int
	NumJobWorkers int

	// minimum cosine similarity for a face embedding to count as the same
	// person during face propagation
	FaceMatchThreshold float32
}

func getEnvOrDefault(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvIntOrDefault(envVar string, defaultVal int) int {
	valStr := os.Getenv(envVar)
	if valStr == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(valStr)
	if err != nil || val <= 0 {
		log.Printf("Warning: Invalid %s '%s'. Using default %d. Error: %v", envVar, valStr, defaultVal, err)
		return defaultVal
	}
	return val
}

func getEnvFloatOrDefault(envVar string, defaultVal float64) float64 {
	valStr := os.Getenv(envVar)
	if valStr == "" {
		return defaultVal
	}
	val, err := strconv.ParseFloat(valStr, 64)
	if err != nil || val <= 0 {
		log.Printf("Warning: Invalid %s '%s'. Using default %g. Error: %v", envVar, valStr, defaultVal, err)
		return defaultVal
	}
	return val
}

func LoadConfig() (Config, error) {
	cfg := Config{
		DatabasePath:       getEnvOrDefault("DATABASE_PATH", "video_metadata.db"),
		Port:               getEnvOrDefault("PORT", "8080"),
		JobQueueSize:       getEnvIntOrDefault("JOB_QUEUE_SIZE", defaultJobQueueSize),
		NumJobWorkers:      getEnvIntOrDefault("NUM_JOB_WORKERS", defaultNumJobWorkers),
		FaceMatchThreshold: float32(getEnvFloatOrDefault("FACE_MATCH_THRESHOLD", defaultFaceMatchThreshold)),
	}
	return cfg, nil
}
