package config

import "time"

// Environment variable names
const (
	EnvPort             = "PORT"
	EnvLogLevel         = "LOG_LEVEL"
	EnvLogFormat        = "LOG_FORMAT"
	EnvLogDir           = "LOG_DIR"
	EnvEnvironment      = "ENVIRONMENT"
	EnvServiceName      = "SERVICE_NAME"
	EnvVersion          = "VERSION"
	EnvAPIKey           = "API_KEY"
	EnvTrustedProxies   = "TRUSTED_PROXIES"
	EnvCountdownTicks   = "COUNTDOWN_TICKS"
	EnvTickInterval     = "TICK_INTERVAL"
	EnvCooldown         = "COOLDOWN"
	EnvMinParticipants  = "MIN_PARTICIPANTS"
	EnvCommissionRate   = "COMMISSION_RATE"
	EnvReferralEnabled  = "REFERRAL_ENABLED"
	EnvReferralRate     = "REFERRAL_RATE"
	EnvReferralShare    = "REFERRAL_SHARE"
	EnvStartingBalance  = "STARTING_BALANCE"
	EnvDrawMode         = "DRAW_MODE"
	EnvHistorySize      = "HISTORY_SIZE"
	EnvHistoryTTL       = "HISTORY_TTL"
	EnvBetRatePerSecond = "BET_RATE_PER_SECOND"
	EnvBetBurst         = "BET_BURST"
	EnvSchemaVersion    = "ENV_SCHEMA_VERSION"
)

// Defaults
const (
	DefaultPort             = "8080"
	DefaultLogLevel         = "info"
	DefaultLogFormat        = "text"
	DefaultEnvironment      = "dev"
	DefaultServiceName      = "jackpot-arena"
	DefaultVersion          = "dev"
	DefaultCountdownTicks   = 15
	DefaultTickInterval     = time.Second
	DefaultCooldown         = 4 * time.Second
	DefaultMinParticipants  = 2
	DefaultCommissionRate   = "0.05"
	DefaultReferralEnabled  = true
	DefaultReferralRate     = "0.05"
	DefaultReferralShare    = "0.10"
	DefaultStartingBalance  = "50"
	DefaultDrawMode         = DrawModeServer
	DefaultHistorySize      = 100
	DefaultHistoryTTL       = time.Hour
	DefaultBetRatePerSecond = 5.0
	DefaultBetBurst         = 10
)

// Accepted values
const (
	LogFormatJSON  = "json"
	LogFormatText  = "text"
	DrawModeServer = "server"
	DrawModeClient = "client"
)

// Limits
const (
	MaxPort              = 65535
	MinParticipantsFloor = 2
)

// Example values shipped in .env.example that must not reach production
const (
	ExampleAPIKey = "generate_with_openssl_rand_hex_32"
)
