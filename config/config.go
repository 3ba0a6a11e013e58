// Package config loads the client configuration from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds every tunable of the narrative client. API keys are NOT part
// of the configuration: they live in the credential store and their absence
// is a first-class, player-visible guard condition, not a startup error.
type Config struct {
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`
	LogEncoding string `envconfig:"LOG_ENCODING" default:"console"`

	// Text generation service (OpenAI-compatible chat completions).
	TextAPIBaseURL    string `envconfig:"TEXT_API_BASE_URL" default:"https://api.x.ai/v1"`
	TextModelName     string `envconfig:"TEXT_MODEL_NAME" default:"grok-2-1212"`
	TextTimeout       int    `envconfig:"TEXT_TIMEOUT_SECONDS" default:"120"`
	TextMaxRetries    int    `envconfig:"TEXT_MAX_RETRIES" default:"3"`
	PromptTokenBudget int    `envconfig:"PROMPT_TOKEN_BUDGET" default:"6000"`

	// Image generation service (submit/poll protocol).
	ImageAPIBaseURL   string        `envconfig:"IMAGE_API_BASE_URL" default:"https://api.bfl.ml"`
	ImageTimeout      int           `envconfig:"IMAGE_TIMEOUT_SECONDS" default:"30"`
	ImagePollInterval time.Duration `envconfig:"IMAGE_POLL_INTERVAL" default:"500ms"`
	ImageMaxAttempts  int           `envconfig:"IMAGE_MAX_ATTEMPTS" default:"16"`
	ImageStyleSuffix  string        `envconfig:"IMAGE_STYLE_SUFFIX" default:""`

	// Local durable storage. When RedisAddr is set, the Redis-backed store is
	// used instead of the file store under DataDir.
	DataDir     string `envconfig:"DATA_DIR" default:".aethoria"`
	RedisAddr   string `envconfig:"REDIS_ADDR" default:""`
	SaveSlotKey string `envconfig:"SAVE_SLOT_KEY" default:"game_state"`
}

// Load reads the configuration from a .env file (if present) and the
// environment.
func Load() (*Config, error) {
	// Missing .env is fine; the environment wins either way.
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load client configuration: %w", err)
	}
	return &cfg, nil
}
