package config

import (
	"fmt"
	"os"
	"time"

	"github.com/creasty/defaults"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Provider ProviderConfig `mapstructure:"provider"`
	Payments PaymentsConfig `mapstructure:"payments"`
	Earnings EarningsConfig `mapstructure:"earnings"`
	Referral ReferralConfig `mapstructure:"referral"`
	Outbox   OutboxConfig   `mapstructure:"outbox"`
	Log      LogConfig      `mapstructure:"log"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Host           string        `mapstructure:"host" default:"0.0.0.0"`
	Port           string        `mapstructure:"port" default:"8080"`
	RequestTimeout time.Duration `mapstructure:"request_timeout" default:"30s"`
	WebhookSecret  string        `mapstructure:"webhook_secret"`
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	Host            string        `mapstructure:"host" default:"localhost"`
	Port            int           `mapstructure:"port" default:"5432"`
	User            string        `mapstructure:"user" default:"postgres"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name" default:"ed_rewards"`
	SSLMode         string        `mapstructure:"ssl" default:"disable"`
	MaxIdleConns    int           `mapstructure:"maxIdleConns" default:"10"`
	MaxOpenConns    int           `mapstructure:"maxOpenConns" default:"50"`
	ConnMaxLifetime time.Duration `mapstructure:"connMaxLifetime" default:"1h"`
}

// RedisConfig holds the ad session store configuration
type RedisConfig struct {
	Addr      string `mapstructure:"addr" default:"localhost:6379"`
	Password  string `mapstructure:"password"`
	DB        int    `mapstructure:"db" default:"0"`
	KeyPrefix string `mapstructure:"key_prefix" default:"ed_rewards:"`
}

// JWTConfig holds JWT-related configuration
type JWTConfig struct {
	Secret string        `mapstructure:"secret"`
	Expiry time.Duration `mapstructure:"expiry" default:"24h"`
}

// ProviderConfig holds the mobile-money provider configuration
type ProviderConfig struct {
	URL            string        `mapstructure:"url"`
	APIUser        string        `mapstructure:"api_user"`
	APIKey         string        `mapstructure:"api_key"`
	Timeout        time.Duration `mapstructure:"timeout" default:"15s"`
	RetryMax       int           `mapstructure:"retry_max" default:"2"`
	RetryWaitMin   time.Duration `mapstructure:"retry_wait_min" default:"200ms"`
	RetryWaitMax   time.Duration `mapstructure:"retry_wait_max" default:"2s"`
	DefaultMedium  string        `mapstructure:"default_medium" default:"mobile money"`
	PaymentMessage string        `mapstructure:"payment_message" default:"Machine purchase"`
}

// DiscountTier applies Percent off prices greater than or equal to MinPrice
type DiscountTier struct {
	MinPrice int64 `mapstructure:"min_price"`
	Percent  int64 `mapstructure:"percent"`
}

// PaymentsConfig holds purchase intent and confirmation settings
type PaymentsConfig struct {
	Region         string         `mapstructure:"region" default:"CM"`
	PriceTolerance int64          `mapstructure:"price_tolerance" default:"1"`
	DedupWindow    time.Duration  `mapstructure:"dedup_window" default:"10m"`
	IntentExpiry   time.Duration  `mapstructure:"intent_expiry" default:"30m"`
	PollInterval   time.Duration  `mapstructure:"poll_interval" default:"30s"`
	PollMinAge     time.Duration  `mapstructure:"poll_min_age" default:"1m"`
	PollBatchSize  int            `mapstructure:"poll_batch_size" default:"50"`
	Discounts      []DiscountTier `mapstructure:"discounts"`
}

// EarningsConfig holds claim and ad reward settings
type EarningsConfig struct {
	ClaimPeriod    time.Duration `mapstructure:"claim_period" default:"24h"`
	AdSessionTTL   time.Duration `mapstructure:"ad_session_ttl" default:"2m"`
	AdMaxReward    string        `mapstructure:"ad_max_reward" default:"0.5"`
	AdMinWatchTime time.Duration `mapstructure:"ad_min_watch_time" default:"5s"`
}

// ReferralConfig holds referral bonus settings
type ReferralConfig struct {
	Bonus int64 `mapstructure:"bonus" default:"1000"`
}

// OutboxConfig holds outbox processor settings
type OutboxConfig struct {
	Interval   time.Duration `mapstructure:"interval" default:"10s"`
	BatchSize  int           `mapstructure:"batch_size" default:"100"`
	MaxRetries int           `mapstructure:"max_retries" default:"10"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string `mapstructure:"level" default:"info"`
}

// ApplyDefaults fills every zero-valued field from its default tag
func (c *Config) ApplyDefaults() error {
	if err := defaults.Set(c); err != nil {
		return fmt.Errorf("could not apply config defaults: %w", err)
	}
	return nil
}

// GetDSN returns the database connection string
func (c *Config) GetDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// GetMigrateURL returns the database url in the form golang-migrate expects
func (c *Config) GetMigrateURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// GetServerAddress returns the server address for binding
func (c *Config) GetServerAddress() string {
	return fmt.Sprintf("%s:%s", c.Server.Host, c.Server.Port)
}

// GetEnvironment returns the current environment
func GetEnvironment() string {
	if env := os.Getenv("ED_REWARDS_ENV"); env != "" {
		return env
	}
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "development"
}
