package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	apperrors "fitgraph/backend/pkg/errors"
)

// Config holds all application configuration
type Config struct {
	// App
	Port     string
	Env      string
	LogLevel string

	// Neo4j
	Neo4jURI      string
	Neo4jUser     string
	Neo4jPassword string
	Neo4jDatabase string
	Neo4jTimeout  time.Duration

	// MemMachine insight service
	MemMachineURL     string
	MemMachineAPIKey  string
	LiveMemMachine    bool
	MemMachineTimeout time.Duration

	// Optional LLM extraction tier
	LiteLLMURL       string
	ModelID          string
	OpenRouterAPIKey string
	LLMTimeout       time.Duration

	// Constraints are only persisted above this confidence
	ConfidenceThreshold float64
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file, but don't fail if it doesn't exist
	_ = godotenv.Load()

	cfg := &Config{
		Port:                getEnv("PORT", "8080"),
		Env:                 getEnv("ENV", "development"),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
		Neo4jURI:            getEnv("NEO4J_URI", "neo4j://localhost:7687"),
		Neo4jUser:           getEnv("NEO4J_USER", "neo4j"),
		Neo4jPassword:       getEnv("NEO4J_PASSWORD", ""),
		Neo4jDatabase:       getEnv("NEO4J_DATABASE", ""),
		Neo4jTimeout:        getEnvSeconds("NEO4J_TIMEOUT_SECONDS", 10*time.Second),
		MemMachineURL:       strings.TrimRight(getEnv("MEMVERGE_API_URL", "https://api.memverge.com/v1/memory"), "/"),
		MemMachineAPIKey:    getEnv("MEMVERGE_API_KEY", ""),
		LiveMemMachine:      getEnvBool("LIVE_MEMMACHINE", false),
		MemMachineTimeout:   getEnvSeconds("MEMMACHINE_TIMEOUT_SECONDS", 8*time.Second),
		LiteLLMURL:          strings.TrimRight(getEnv("LITELLM_URL", ""), "/"),
		ModelID:             getEnv("MODEL_ID", "openrouter/anthropic/claude-3.5-sonnet"),
		OpenRouterAPIKey:    getEnv("OPENROUTER_API_KEY", ""),
		LLMTimeout:          getEnvSeconds("LLM_TIMEOUT_SECONDS", 8*time.Second),
		ConfidenceThreshold: getEnvFloat("CONFIDENCE_THRESHOLD", 0.8),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that required configuration values are set
func (c *Config) Validate() error {
	if c.Neo4jPassword == "" {
		return apperrors.NewConfigMissingRequired("NEO4J_PASSWORD")
	}
	if c.Neo4jURI == "" {
		return apperrors.NewConfigMissingRequired("NEO4J_URI")
	}
	if c.Neo4jUser == "" {
		return apperrors.NewConfigMissingRequired("NEO4J_USER")
	}
	if c.ConfidenceThreshold < 0 || c.ConfidenceThreshold > 1 {
		return apperrors.NewConfigValidationFailed("CONFIDENCE_THRESHOLD", "must be within [0, 1]")
	}
	if c.Neo4jTimeout <= 0 {
		return apperrors.NewConfigValidationFailed("NEO4J_TIMEOUT_SECONDS", "must be positive")
	}
	if c.MemMachineTimeout <= 0 {
		return apperrors.NewConfigValidationFailed("MEMMACHINE_TIMEOUT_SECONDS", "must be positive")
	}
	if c.LLMTimeout <= 0 {
		return apperrors.NewConfigValidationFailed("LLM_TIMEOUT_SECONDS", "must be positive")
	}
	// MemMachine and LLM settings are optional; both tiers fall back to local rules
	return nil
}

// UseLiveMemMachine reports whether the remote insight service should be called.
// The flag alone is not enough: without a key the service is simulated.
func (c *Config) UseLiveMemMachine() bool {
	return c.LiveMemMachine && c.MemMachineAPIKey != ""
}

// UseLLM reports whether the LLM extraction tier should be called. It shares
// the live switch with MemMachine: simulated mode is always the local rule set.
func (c *Config) UseLLM() bool {
	return c.LiveMemMachine && c.LiteLLMURL != ""
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	if value == "" {
		return defaultValue
	}
	switch value {
	case "1", "true", "yes":
		return true
	default:
		return false
	}
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		if result, err := strconv.ParseFloat(value, 64); err == nil {
			return result
		}
	}
	return defaultValue
}

func getEnvSeconds(key string, defaultValue time.Duration) time.Duration {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		if secs, err := strconv.Atoi(value); err == nil {
			return time.Duration(secs) * time.Second
		}
	}
	return defaultValue
}

// String renders the configuration without secrets
func (c *Config) String() string {
	return fmt.Sprintf("env=%s neo4j=%s user=%s live_memmachine=%t llm=%t threshold=%.2f",
		c.Env, c.Neo4jURI, c.Neo4jUser, c.UseLiveMemMachine(), c.UseLLM(), c.ConfidenceThreshold)
}
