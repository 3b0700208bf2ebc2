package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds server and moderation settings parsed from the environment.
// Database and redis adapters keep their own DB_URL/REDIS_URL conventions.
type Config struct {
	HTTPAddr string `env:"HTTP_ADDR" envDefault:":8080"`
	AppEnv   string `env:"APP_ENV" envDefault:"production"`

	// Moderation pipeline
	ModerationEnabled bool          `env:"MODERATION_ENABLED" envDefault:"true"`
	ToxicityThreshold float64       `env:"TOXICITY_THRESHOLD" envDefault:"0.7"`
	AnalyzerURL       string        `env:"ANALYZER_URL"`
	AnalyzerMode      string        `env:"ANALYZER_MODE" envDefault:"summary"` // summary | structured
	AnalyzerTimeout   time.Duration `env:"ANALYZER_TIMEOUT" envDefault:"2s"`
	AnalyzerRPS       float64       `env:"ANALYZER_RPS" envDefault:"10"`

	// Rate limiting
	RateLimitMessages int           `env:"RATE_LIMIT_MESSAGES" envDefault:"10"`
	RateLimitWindow   time.Duration `env:"RATE_LIMIT_WINDOW" envDefault:"10s"`

	// Transport
	TypingTTL        time.Duration `env:"TYPING_TTL" envDefault:"3s"`
	TypingSweepTick  time.Duration `env:"TYPING_SWEEP_TICK" envDefault:"1s"`
	LivenessInterval time.Duration `env:"LIVENESS_INTERVAL" envDefault:"30s"`
}

// Load parses the environment into a Config.
func Load() (Config, error) {
	var c Config
	if err := env.Parse(&c); err != nil {
		return Config{}, fmt.Errorf("config: parse environment: %w", err)
	}
	if c.ToxicityThreshold <= 0 || c.ToxicityThreshold > 1 {
		return Config{}, fmt.Errorf("config: TOXICITY_THRESHOLD must be in (0,1], got %v", c.ToxicityThreshold)
	}
	return c, nil
}
