// Package config reads the process environment once at startup and hands the
// resulting Environment to whoever needs it. Nothing else in the codebase is
// allowed to consult ambient dev-mode flags directly.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"

	// Load env file into environments.
	_ "github.com/joho/godotenv/autoload"
)

// Collaborators holds the base URLs and shared service key for the external
// AI services. Timeouts differ per call: resume parsing is by far the
// slowest collaborator.
type Collaborators struct {
	ParserURL    string
	ExtractorURL string
	LetterURL    string
	ScorerURL    string
	ServiceKey   string

	ParseTimeout   time.Duration
	DefaultTimeout time.Duration
}

// Environment is the full startup configuration. SkipAuth plus MockUserID
// replace the dev-mode globals of earlier iterations: when SkipAuth is set,
// RequireAuth injects the mock identity instead of validating a token.
type Environment struct {
	Port          int
	AllowOrigins  string
	RedisAddr     string
	RedisPassword string
	BucketName    string
	RateLimitRPS  uint
	LogLevel      string
	LogFormat     string

	SkipAuth   bool
	MockUserID uuid.UUID

	Collaborators Collaborators
}

// Load builds an Environment from the process environment. It fails on a
// malformed MOCK_USER_ID but tolerates absent optional settings, falling
// back to defaults that suit local development.
func Load() (*Environment, error) {
	port, _ := strconv.Atoi(os.Getenv("PORT"))
	if port == 0 {
		port = 8080
	}

	env := &Environment{
		Port:          port,
		AllowOrigins:  os.Getenv("ALLOW_ORIGIN"),
		RedisAddr:     envOr("REDIS_ADDR", "localhost:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		BucketName:    os.Getenv("STORAGE_BUCKET"),
		RateLimitRPS:  envUint("RATE_LIMIT_REQUESTS_PER_SECOND", 5),
		LogLevel:      envOr("LOG_LEVEL", "info"),
		LogFormat:     envOr("LOG_FORMAT", "json"),
		SkipAuth:      envBool("SKIP_AUTH"),
		Collaborators: Collaborators{
			ParserURL:      os.Getenv("RESUME_PARSER_URL"),
			ExtractorURL:   os.Getenv("JOB_EXTRACTOR_URL"),
			LetterURL:      os.Getenv("LETTER_GENERATOR_URL"),
			ScorerURL:      os.Getenv("SCORER_URL"),
			ServiceKey:     os.Getenv("AI_SERVICE_KEY"),
			ParseTimeout:   envDuration("PARSE_TIMEOUT", 120*time.Second),
			DefaultTimeout: envDuration("COLLABORATOR_TIMEOUT", 60*time.Second),
		},
	}

	if raw := os.Getenv("MOCK_USER_ID"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("MOCK_USER_ID is not a valid uuid: %w", err)
		}
		env.MockUserID = id
	}

	if env.SkipAuth && env.MockUserID == uuid.Nil {
		return nil, fmt.Errorf("SKIP_AUTH requires MOCK_USER_ID to be set")
	}

	return env, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envBool(key string) bool {
	v, _ := strconv.ParseBool(os.Getenv(key))
	return v
}

func envUint(key string, fallback uint) uint {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil || v <= 0 {
		return fallback
	}
	return uint(v)
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v, err := time.ParseDuration(os.Getenv(key))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}
