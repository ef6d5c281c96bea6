package config

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL   string
	Port          string
	IsProduction  bool
	EnableDBCheck bool

	// Messaging
	AMQPURL        string
	LedgerExchange string

	// Ledger behaviour
	EntryNumberPrefix string

	// Settlement variance thresholds. Pct is a percentage of system cash.
	SettlementVarianceAbsThreshold decimal.Decimal
	SettlementVariancePctThreshold decimal.Decimal

	// Requests per minute per client IP. Zero disables rate limiting.
	RateLimitPerMinute int
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("ENABLE_DB_CHECK", false)
	viper.SetDefault("AMQP_URL", "")
	viper.SetDefault("LEDGER_EXCHANGE", "coopcore.events")
	viper.SetDefault("ENTRY_NUMBER_PREFIX", "JV")
	viper.SetDefault("SETTLEMENT_VARIANCE_ABS_THRESHOLD", "100")
	viper.SetDefault("SETTLEMENT_VARIANCE_PCT_THRESHOLD", "1")
	viper.SetDefault("RATE_LIMIT_PER_MINUTE", 300)

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	cfg.Port = viper.GetString("PORT")
	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")
	cfg.EnableDBCheck = viper.GetBool("ENABLE_DB_CHECK")

	cfg.AMQPURL = viper.GetString("AMQP_URL")
	if cfg.AMQPURL == "" {
		log.Println("Warning: AMQP_URL not set. Domain events will be logged instead of published.")
	}
	cfg.LedgerExchange = viper.GetString("LEDGER_EXCHANGE")

	cfg.EntryNumberPrefix = viper.GetString("ENTRY_NUMBER_PREFIX")

	absStr := viper.GetString("SETTLEMENT_VARIANCE_ABS_THRESHOLD")
	abs, err := decimal.NewFromString(absStr)
	if err != nil {
		abs = decimal.NewFromInt(100)
		log.Printf("Warning: Invalid value for SETTLEMENT_VARIANCE_ABS_THRESHOLD ('%s'). Defaulting to %s.\n", absStr, abs.String())
	}
	cfg.SettlementVarianceAbsThreshold = abs

	pctStr := viper.GetString("SETTLEMENT_VARIANCE_PCT_THRESHOLD")
	pct, err := decimal.NewFromString(pctStr)
	if err != nil {
		pct = decimal.NewFromInt(1)
		log.Printf("Warning: Invalid value for SETTLEMENT_VARIANCE_PCT_THRESHOLD ('%s'). Defaulting to %s.\n", pctStr, pct.String())
	}
	cfg.SettlementVariancePctThreshold = pct

	cfg.RateLimitPerMinute = viper.GetInt("RATE_LIMIT_PER_MINUTE")

	return cfg, nil
}
