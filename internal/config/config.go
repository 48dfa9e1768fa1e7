package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Environment string           `mapstructure:"environment"`
	LogLevel    string           `mapstructure:"log_level"`
	Server      ServerConfig     `mapstructure:"server"`
	Database    DatabaseConfig   `mapstructure:"database"`
	Redis       RedisConfig      `mapstructure:"redis"`
	Telemetry   TelemetryConfig  `mapstructure:"telemetry"`
	Telegram    TelegramConfig   `mapstructure:"telegram"`
	Analytics   AnalyticsConfig  `mapstructure:"analytics"`
	Compliance  ComplianceConfig `mapstructure:"compliance"`
}

type ServerConfig struct {
	Port           int      `mapstructure:"port"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxConns int32  `mapstructure:"max_conns"`
	MinConns int32  `mapstructure:"min_conns"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	ReportTTL string `mapstructure:"report_ttl"`
}

type TelemetryConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	OTLPEndpoint   string `mapstructure:"otlp_endpoint"`
	ServiceName    string `mapstructure:"service_name"`
	ServiceVersion string `mapstructure:"service_version"`
}

type TelegramConfig struct {
	BotToken string `mapstructure:"bot_token"`
	ChatID   string `mapstructure:"chat_id"`
}

// AnalyticsConfig carries the rates the metrics calculator runs with.
type AnalyticsConfig struct {
	RiskFreeRate  float64 `mapstructure:"risk_free_rate"`
	VaRConfidence float64 `mapstructure:"var_confidence"`
}

// ComplianceConfig carries the regulatory thresholds. The defaults mirror
// the rule set the engine is modeled on; they are configurable so staging
// environments can exercise edge cases.
type ComplianceConfig struct {
	MaxSingleAllocation  float64 `mapstructure:"max_single_allocation"`
	MaxManagementFee     float64 `mapstructure:"max_management_fee"`
	MaxExpenseRatio      float64 `mapstructure:"max_expense_ratio"`
	MaxTotalFees         float64 `mapstructure:"max_total_fees"`
	MinObservations      int     `mapstructure:"min_observations"`
	MinAUM               float64 `mapstructure:"min_aum"`
	MaxLiquidityRatio    float64 `mapstructure:"max_liquidity_ratio"`
	VolatilityAlertLimit float64 `mapstructure:"volatility_alert_limit"`
	ExpenseAlertLimit    float64 `mapstructure:"expense_alert_limit"`
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath(".")

	// Set default values
	setDefaults()

	// Enable environment variable support
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Read config file
	if err := viper.ReadInConfig(); err != nil {
		// Config file not found, use defaults and environment variables
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	config.Environment = strings.ToLower(config.Environment)

	if config.Analytics.VaRConfidence <= 0 || config.Analytics.VaRConfidence >= 1 {
		return nil, fmt.Errorf("var confidence must be between 0 and 1 exclusive, got %v", config.Analytics.VaRConfidence)
	}
	if config.Compliance.MaxSingleAllocation <= 0 || config.Compliance.MaxSingleAllocation > 100 {
		return nil, fmt.Errorf("max single allocation must be a percentage in (0, 100], got %v", config.Compliance.MaxSingleAllocation)
	}
	if config.Compliance.MinObservations <= 0 {
		return nil, fmt.Errorf("min observations must be positive, got %d", config.Compliance.MinObservations)
	}

	return &config, nil
}

func setDefaults() {
	// Environment
	viper.SetDefault("environment", "development")
	viper.SetDefault("log_level", "info")

	// Server
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})

	// Database
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.user", "postgres")
	viper.SetDefault("database.password", "postgres")
	viper.SetDefault("database.dbname", "fundlens")
	viper.SetDefault("database.sslmode", "disable")
	viper.SetDefault("database.max_conns", 25)
	viper.SetDefault("database.min_conns", 2)

	// Redis
	viper.SetDefault("redis.host", "localhost")
	viper.SetDefault("redis.port", 6379)
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("redis.report_ttl", "15m")

	// Telemetry
	viper.SetDefault("telemetry.enabled", false)
	viper.SetDefault("telemetry.otlp_endpoint", "localhost:4318")
	viper.SetDefault("telemetry.service_name", "fundlens")
	viper.SetDefault("telemetry.service_version", "1.0.0")

	// Telegram
	viper.SetDefault("telegram.bot_token", "")
	viper.SetDefault("telegram.chat_id", "")

	// Analytics
	viper.SetDefault("analytics.risk_free_rate", 2.0)
	viper.SetDefault("analytics.var_confidence", 0.95)

	// Compliance thresholds
	viper.SetDefault("compliance.max_single_allocation", 20.0)
	viper.SetDefault("compliance.max_management_fee", 2.5)
	viper.SetDefault("compliance.max_expense_ratio", 3.0)
	viper.SetDefault("compliance.max_total_fees", 4.0)
	viper.SetDefault("compliance.min_observations", 12)
	viper.SetDefault("compliance.min_aum", 10000000.0)
	viper.SetDefault("compliance.max_liquidity_ratio", 30.0)
	viper.SetDefault("compliance.volatility_alert_limit", 25.0)
	viper.SetDefault("compliance.expense_alert_limit", 2.0)
}
