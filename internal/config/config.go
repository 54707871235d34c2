package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Config holds the application configuration
type Config struct {
	Port           int
	LogLevel       string
	LogFormat      string
	LogDir         string // empty logs to stdout only
	Environment    string
	ServiceName    string
	Version        string
	APIKey         string   // API key for authentication
	TrustedProxies []string // Proxies whose X-Forwarded-For is honoured

	// Round
	CountdownTicks  int
	TickInterval    time.Duration
	Cooldown        time.Duration
	MinParticipants int
	CommissionRate  decimal.Decimal
	DrawMode        string

	// Ledger
	StartingBalance decimal.Decimal
	ReferralEnabled bool
	ReferralRate    decimal.Decimal
	ReferralShare   decimal.Decimal

	// Settlement history
	HistorySize int
	HistoryTTL  time.Duration

	// Per-user bet throttle
	BetRatePerSecond float64
	BetBurst         int
}

// Load loads the configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists, but don't fail if it doesn't (could be real env vars)
	_ = godotenv.Load()

	cfg := &Config{
		LogLevel:         strings.ToLower(getEnv(EnvLogLevel, DefaultLogLevel)),
		LogFormat:        strings.ToLower(getEnv(EnvLogFormat, DefaultLogFormat)),
		LogDir:           getEnv(EnvLogDir, ""),
		Environment:      getEnv(EnvEnvironment, DefaultEnvironment),
		ServiceName:      getEnv(EnvServiceName, DefaultServiceName),
		Version:          getEnv(EnvVersion, DefaultVersion),
		APIKey:           getEnv(EnvAPIKey, ""),
		TrustedProxies:   getEnvAsList(EnvTrustedProxies),
		CountdownTicks:   getEnvAsInt(EnvCountdownTicks, DefaultCountdownTicks),
		TickInterval:     getEnvAsDuration(EnvTickInterval, DefaultTickInterval),
		Cooldown:         getEnvAsDuration(EnvCooldown, DefaultCooldown),
		MinParticipants:  getEnvAsInt(EnvMinParticipants, DefaultMinParticipants),
		DrawMode:         strings.ToLower(getEnv(EnvDrawMode, DefaultDrawMode)),
		ReferralEnabled:  getEnvAsBool(EnvReferralEnabled, DefaultReferralEnabled),
		HistorySize:      getEnvAsInt(EnvHistorySize, DefaultHistorySize),
		HistoryTTL:       getEnvAsDuration(EnvHistoryTTL, DefaultHistoryTTL),
		BetRatePerSecond: getEnvAsFloat(EnvBetRatePerSecond, DefaultBetRatePerSecond),
		BetBurst:         getEnvAsInt(EnvBetBurst, DefaultBetBurst),
	}

	portStr := getEnv(EnvPort, DefaultPort)
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("invalid PORT value: %w", err)
	}
	cfg.Port = port

	decimals := []struct {
		key string
		def string
		dst *decimal.Decimal
	}{
		{EnvCommissionRate, DefaultCommissionRate, &cfg.CommissionRate},
		{EnvStartingBalance, DefaultStartingBalance, &cfg.StartingBalance},
		{EnvReferralRate, DefaultReferralRate, &cfg.ReferralRate},
		{EnvReferralShare, DefaultReferralShare, &cfg.ReferralShare},
	}
	for _, d := range decimals {
		v, err := decimal.NewFromString(getEnv(d.key, d.def))
		if err != nil {
			return nil, fmt.Errorf("invalid %s value: %w", d.key, err)
		}
		*d.dst = v
	}

	// Validate API key is set
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("API_KEY environment variable must be set for security")
	}

	return cfg, nil
}

// Validate checks value ranges. Load only parses; call Validate before use.
func (c *Config) Validate() error {
	var problems []string
	add := func(format string, args ...interface{}) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	if c.Port < 0 || c.Port > MaxPort {
		add("PORT must be in [0, %d], got %d", MaxPort, c.Port)
	}
	if c.LogFormat != LogFormatJSON && c.LogFormat != LogFormatText {
		add("LOG_FORMAT must be %q or %q, got %q", LogFormatJSON, LogFormatText, c.LogFormat)
	}
	if c.CountdownTicks < 1 {
		add("COUNTDOWN_TICKS must be at least 1, got %d", c.CountdownTicks)
	}
	if c.TickInterval <= 0 {
		add("TICK_INTERVAL must be positive, got %s", c.TickInterval)
	}
	if c.Cooldown < 0 {
		add("COOLDOWN must not be negative, got %s", c.Cooldown)
	}
	if c.MinParticipants < MinParticipantsFloor {
		add("MIN_PARTICIPANTS must be at least %d, got %d", MinParticipantsFloor, c.MinParticipants)
	}
	if c.CommissionRate.IsNegative() || c.CommissionRate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		add("COMMISSION_RATE must be in [0, 1), got %s", c.CommissionRate)
	}
	if c.StartingBalance.IsNegative() {
		add("STARTING_BALANCE must not be negative, got %s", c.StartingBalance)
	}
	if !isUnitInterval(c.ReferralRate) {
		add("REFERRAL_RATE must be in [0, 1], got %s", c.ReferralRate)
	}
	if !isUnitInterval(c.ReferralShare) {
		add("REFERRAL_SHARE must be in [0, 1], got %s", c.ReferralShare)
	}
	if c.ReferralEnabled && c.ReferralRate.Mul(c.ReferralShare).GreaterThan(c.CommissionRate) {
		add("REFERRAL_RATE x REFERRAL_SHARE (%s) must not exceed COMMISSION_RATE (%s)",
			c.ReferralRate.Mul(c.ReferralShare), c.CommissionRate)
	}
	if c.DrawMode != DrawModeServer && c.DrawMode != DrawModeClient {
		add("DRAW_MODE must be %q or %q, got %q", DrawModeServer, DrawModeClient, c.DrawMode)
	}
	if c.HistorySize < 1 {
		add("HISTORY_SIZE must be at least 1, got %d", c.HistorySize)
	}
	if c.HistoryTTL <= 0 {
		add("HISTORY_TTL must be positive, got %s", c.HistoryTTL)
	}
	if c.BetRatePerSecond <= 0 {
		add("BET_RATE_PER_SECOND must be positive, got %v", c.BetRatePerSecond)
	}
	if c.BetBurst < 1 {
		add("BET_BURST must be at least 1, got %d", c.BetBurst)
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

func isUnitInterval(d decimal.Decimal) bool {
	return !d.IsNegative() && d.LessThanOrEqual(decimal.NewFromInt(1))
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvAsInt returns the integer value of key, or defaultValue when unset or malformed
func getEnvAsInt(key string, defaultValue int) int {
	value, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsFloat returns the float value of key, or defaultValue when unset or malformed
func getEnvAsFloat(key string, defaultValue float64) float64 {
	value, err := strconv.ParseFloat(os.Getenv(key), 64)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsBool returns the boolean value of key, or defaultValue when unset or malformed
func getEnvAsBool(key string, defaultValue bool) bool {
	value, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsDuration parses values like "1s" or "4m30s"; bare numbers are rejected
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	value, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsList splits a comma separated value, dropping blanks
func getEnvAsList(key string) []string {
	raw := os.Getenv(key)
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
