package config

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/playmatatu/plinko/internal/game"
)

type Config struct {
	// Environment
	Environment string `envconfig:"APP_ENV" default:"development"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`

	// Database. Empty disables the round ledger.
	DatabaseURL    string `envconfig:"DATABASE_URL" default:""`
	MigrateOnStart bool   `envconfig:"MIGRATE_ON_START" default:"true"`

	// Redis. Empty disables the live feed.
	RedisURL string `envconfig:"REDIS_URL" default:""`

	// Server
	Port        string `envconfig:"APP_PORT" default:"8080"`
	FrontendURL string `envconfig:"FRONTEND_URL" default:"http://localhost:5173"`

	// Security
	JWTSecret         string `envconfig:"JWT_SECRET" default:"change-me-in-production"`
	SessionTimeoutMin int    `envconfig:"SESSION_TIMEOUT_MINUTES" default:"30"`

	// Game Settings
	InitialBalance     int64   `envconfig:"INITIAL_BALANCE" default:"1000"`
	MinBet             int64   `envconfig:"MIN_BET" default:"300"`
	MaxActiveBalls     int     `envconfig:"MAX_ACTIVE_BALLS" default:"10"`
	SlotCount          int     `envconfig:"SLOT_COUNT" default:"7"`
	TickRateHz         int     `envconfig:"TICK_RATE_HZ" default:"60"`
	SuppressRepeatHits bool    `envconfig:"SUPPRESS_REPEAT_HITS" default:"false"`
	PayoutOnBallWager  bool    `envconfig:"PAYOUT_ON_BALL_WAGER" default:"false"`
	BigWinMultiplier   float64 `envconfig:"BIG_WIN_MULTIPLIER" default:"27"`
	TuningFile         string  `envconfig:"TUNING_FILE" default:""`
}

// Load reads .env (if present) and the environment.
func Load() (*Config, error) {
	// Load .env file if it exists
	godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.MinBet <= 0 {
		return fmt.Errorf("MIN_BET must be > 0")
	}
	if c.InitialBalance < 0 {
		return fmt.Errorf("INITIAL_BALANCE must be >= 0")
	}
	if c.MaxActiveBalls <= 0 {
		return fmt.Errorf("MAX_ACTIVE_BALLS must be > 0")
	}
	if c.SlotCount <= 0 {
		return fmt.Errorf("SLOT_COUNT must be > 0")
	}
	if c.TickRateHz <= 0 || c.TickRateHz > 1000 {
		return fmt.Errorf("TICK_RATE_HZ must be in 1..1000")
	}
	if c.IsProduction() && c.FrontendURL == "" {
		return fmt.Errorf("FRONTEND_URL is required in production")
	}
	if c.SessionTimeoutMin <= 0 {
		return fmt.Errorf("SESSION_TIMEOUT_MINUTES must be > 0")
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// Rules builds the game rules from the environment, applying the tuning file
// when one is configured.
func (c *Config) Rules() (game.Rules, error) {
	rules := game.DefaultRules()
	rules.InitialBalance = c.InitialBalance
	rules.MinBet = c.MinBet
	rules.MaxActiveBalls = c.MaxActiveBalls
	rules.SlotCount = c.SlotCount
	rules.SuppressRepeatHits = c.SuppressRepeatHits
	rules.PayoutOnBallWager = c.PayoutOnBallWager

	if c.TuningFile == "" {
		return rules, nil
	}
	t, err := LoadTuning(c.TuningFile)
	if err != nil {
		return rules, err
	}
	t.Apply(&rules)
	return rules, nil
}
