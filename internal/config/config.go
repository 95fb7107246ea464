package config

import (
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Config stores runtime configuration loaded from environment variables.
type Config struct {
	OCRKey         string
	OCRURL         string
	LLMKey         string
	LLMBaseURL     string
	LLMModel       string
	UploadDir      string
	OutputDir      string
	RemoteTimeout  time.Duration
	RetentionAge   time.Duration
}

// Load reads configuration from the environment, providing sensible defaults.
func Load() Config {
	// Load .env file if it exists (useful for development)
	_ = godotenv.Load()
	cfg := Config{
		OCRKey:        os.Getenv("API_NINJAS_KEY"),
		OCRURL:        getEnv("OCR_URL", "https://api.api-ninjas.com/v1/imagetotext"),
		LLMKey:        os.Getenv("GROQ_API_KEY"),
		LLMBaseURL:    getEnv("GROQ_BASE_URL", "https://api.groq.com/openai/v1"),
		LLMModel:      getEnv("GROQ_MODEL", "llama-3.3-70b-versatile"),
		UploadDir:     getEnv("UPLOAD_DIR", "/tmp/uploads"),
		OutputDir:     getEnv("OUTPUT_DIR", "/tmp/outputs"),
		RemoteTimeout: getDuration("REMOTE_TIMEOUT", 60*time.Second),
		RetentionAge:  getDuration("RETENTION_AGE", 10*time.Minute),
	}

	if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
		log.Fatalf("failed to ensure upload dir %s: %v", cfg.UploadDir, err)
	}
	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		log.Fatalf("failed to ensure output dir %s: %v", cfg.OutputDir, err)
	}

	return cfg
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		if d, err := time.ParseDuration(val); err == nil && d > 0 {
			return d
		}
		log.Printf("ignoring invalid %s=%q, using %s", key, val, fallback)
	}
	return fallback
}
