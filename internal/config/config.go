package config

import (
	"time"

	"github.com/shopspring/decimal"
)

// Config is the root application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Pricing  PricingConfig  `yaml:"pricing"`
	Anomaly  AnomalyConfig  `yaml:"anomaly"`
	Log      LogConfig      `yaml:"log"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `yaml:"host"             env:"SERVER_HOST"             env-default:"0.0.0.0"`
	Port            int           `yaml:"port"             env:"SERVER_PORT"             env-default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout"     env:"SERVER_READ_TIMEOUT"     env-default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout"    env:"SERVER_WRITE_TIMEOUT"    env-default:"30s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"     env:"SERVER_IDLE_TIMEOUT"     env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" env-default:"10s"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	DSN             string        `yaml:"dsn"                env:"DATABASE_DSN"                env-required:"true"`
	MaxConns        int32         `yaml:"max_conns"          env:"DATABASE_MAX_CONNS"          env-default:"25"`
	MinConns        int32         `yaml:"min_conns"          env:"DATABASE_MIN_CONNS"          env-default:"5"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"  env:"DATABASE_MAX_CONN_LIFETIME"  env-default:"1h"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time" env:"DATABASE_MAX_CONN_IDLE_TIME" env-default:"30m"`
	Migrate         bool          `yaml:"migrate"            env:"DATABASE_MIGRATE"            env-default:"true"`
}

// PricingConfig holds the tax rate and markup table. Monetary values are
// configured as strings and parsed into exact decimals during validation.
type PricingConfig struct {
	TaxRateRaw       string `yaml:"tax_rate"         env:"PRICING_TAX_RATE"         env-default:"0.10"`
	DefaultMarkupRaw string `yaml:"default_markup"   env:"PRICING_DEFAULT_MARKUP"   env-default:"1.65"`
	// CategoryMarkupsRaw is a comma-separated "category:multiplier" list.
	CategoryMarkupsRaw string `yaml:"category_markups" env:"PRICING_CATEGORY_MARKUPS" env-default:"Fruit & Veg:1.75,Fridge & Freezer:1.5"`

	// Parsed from the raw fields during validation.
	TaxRate         decimal.Decimal            `yaml:"-" env:"-"`
	DefaultMarkup   decimal.Decimal            `yaml:"-" env:"-"`
	CategoryMarkups map[string]decimal.Decimal `yaml:"-" env:"-"`
}

// AnomalyConfig holds the cost anomaly rule thresholds. Same raw/parsed
// split as PricingConfig.
type AnomalyConfig struct {
	MinMarginRaw   string `yaml:"min_margin"   env:"ANOMALY_MIN_MARGIN"   env-default:"0.10"`
	ThinMarginRaw  string `yaml:"thin_margin"  env:"ANOMALY_THIN_MARGIN"  env-default:"0.50"`
	HighCostRaw    string `yaml:"high_cost"    env:"ANOMALY_HIGH_COST"    env-default:"15"`
	CostCeilingRaw string `yaml:"cost_ceiling" env:"ANOMALY_COST_CEILING" env-default:"20"`
	CaseSellRaw    string `yaml:"case_sell"    env:"ANOMALY_CASE_SELL"    env-default:"50"`
	CaseCostRaw    string `yaml:"case_cost"    env:"ANOMALY_CASE_COST"    env-default:"10"`

	MinMargin   decimal.Decimal `yaml:"-" env:"-"`
	ThinMargin  decimal.Decimal `yaml:"-" env:"-"`
	HighCost    decimal.Decimal `yaml:"-" env:"-"`
	CostCeiling decimal.Decimal `yaml:"-" env:"-"`
	CaseSell    decimal.Decimal `yaml:"-" env:"-"`
	CaseCost    decimal.Decimal `yaml:"-" env:"-"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"json"`
}
