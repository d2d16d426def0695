package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Addr                string
	DBPath              string
	LogLevel            string
	MaxStateBytes       int
	ReviewQueueLimit    int
	WeakSetThreshold    int
	OpenAIAPIKey        string
	OpenAIBaseURL       string
	OpenAIModel         string
	AITimeoutSeconds    int
	AIMaxRetries        int
	PrefetchWorkerCount int
	PrefetchQueueSize   int
}

// Load reads configuration from a .env file (if present) and environment variables,
// applying sensible defaults when values are missing or invalid.
func Load() Config {
	// Ignore error so the app still starts when .env is absent in production.
	_ = godotenv.Load()

	return Config{
		Addr:     envOr("ADDR", ":8080"),
		DBPath:   envOr("DB_PATH", "file:biaslab.db"),
		LogLevel: envOr("LOG_LEVEL", "INFO"),
		// 4.5MB keeps a comfortable margin under the ~5MB quota of the
		// browser-local stores this state is exported to.
		MaxStateBytes:       envIntOr("MAX_STATE_BYTES", 4_500_000),
		ReviewQueueLimit:    envIntOr("REVIEW_QUEUE_LIMIT", 20),
		WeakSetThreshold:    envIntOr("WEAK_SET_THRESHOLD", 50),
		OpenAIAPIKey:        envOr("OPENAI_API_KEY", ""),
		OpenAIBaseURL:       envOr("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		OpenAIModel:         envOr("OPENAI_MODEL", "gpt-4o-mini"),
		AITimeoutSeconds:    envIntOr("AI_TIMEOUT_SECONDS", 30),
		AIMaxRetries:        envIntOr("AI_MAX_RETRIES", 3),
		PrefetchWorkerCount: envIntOr("PREFETCH_WORKER_COUNT", 2),
		PrefetchQueueSize:   envIntOr("PREFETCH_QUEUE_SIZE", 16),
	}
}

// Validate checks the configuration for invalid values and returns an error
// listing every problem found.
func (c Config) Validate() error {
	var problems []string

	if c.Addr == "" {
		problems = append(problems, "ADDR cannot be empty")
	}
	if c.DBPath == "" {
		problems = append(problems, "DB_PATH cannot be empty")
	}
	switch strings.ToUpper(c.LogLevel) {
	case "DEBUG", "INFO", "WARN", "WARNING", "ERROR":
	default:
		problems = append(problems, fmt.Sprintf("LOG_LEVEL %q is not one of DEBUG, INFO, WARN, ERROR", c.LogLevel))
	}
	if c.MaxStateBytes <= 0 {
		problems = append(problems, "MAX_STATE_BYTES must be positive")
	}
	if c.ReviewQueueLimit <= 0 {
		problems = append(problems, "REVIEW_QUEUE_LIMIT must be positive")
	}
	if c.WeakSetThreshold < 0 || c.WeakSetThreshold > 100 {
		problems = append(problems, "WEAK_SET_THRESHOLD must be between 0 and 100")
	}
	if c.AITimeoutSeconds <= 0 {
		problems = append(problems, "AI_TIMEOUT_SECONDS must be positive")
	}
	if c.AIMaxRetries < 1 {
		problems = append(problems, "AI_MAX_RETRIES must be at least 1")
	}
	if c.PrefetchWorkerCount <= 0 {
		problems = append(problems, "PREFETCH_WORKER_COUNT must be positive")
	}
	if c.PrefetchQueueSize <= 0 {
		problems = append(problems, "PREFETCH_QUEUE_SIZE must be positive")
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envIntOr(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
		log.Printf("invalid value for %s=%q, using default %d", key, v, def)
	}
	return def
}
