package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Provider ProviderConfig `mapstructure:"provider"`
	Risk     RiskConfig     `mapstructure:"risk"`
	Payout   PayoutConfig   `mapstructure:"payout"`
	Codec    CodecConfig    `mapstructure:"codec"`
	Fees     FeesConfig     `mapstructure:"fees"`
	Worker   WorkerConfig   `mapstructure:"worker"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // debug, release, test
}

type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// Addr returns the Redis address string.
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

type JWTConfig struct {
	Secret string `mapstructure:"secret"`
	Issuer string `mapstructure:"issuer"`
}

// ProviderConfig holds the mobile-money provider (Daraja-style) settings.
type ProviderConfig struct {
	BaseURL            string        `mapstructure:"base_url"`
	ConsumerKey        string        `mapstructure:"consumer_key"`
	ConsumerSecret     string        `mapstructure:"consumer_secret"`
	ShortCode          string        `mapstructure:"short_code"` // our registered paybill
	InitiatorName      string        `mapstructure:"initiator_name"`
	SecurityCredential string        `mapstructure:"security_credential"`
	ResultURL          string        `mapstructure:"result_url"`
	TimeoutURL         string        `mapstructure:"timeout_url"`
	WebhookSecret      string        `mapstructure:"webhook_secret"`
	HTTPTimeout        time.Duration `mapstructure:"http_timeout"`
}

// RiskConfig holds the scoring thresholds.
type RiskConfig struct {
	LargeAmountThreshold int64         `mapstructure:"large_amount_threshold"`
	Window               time.Duration `mapstructure:"window"`
	SenderCountThreshold int           `mapstructure:"sender_count_threshold"`
	DistinctRefThreshold int           `mapstructure:"distinct_ref_threshold"`
}

// PayoutConfig bounds the dispatch retry policy.
type PayoutConfig struct {
	MaxAttempts int           `mapstructure:"max_attempts"`
	ReceiptTTL  time.Duration `mapstructure:"receipt_ttl"`
}

// CodecConfig maps sequence keys to 2-digit routing code prefixes.
type CodecConfig struct {
	Prefixes map[string]string `mapstructure:"prefixes"`
}

// FeesConfig optionally routes a service fee share of each collection to
// an operator ops wallet. Basis points of the gross amount.
type FeesConfig struct {
	ServiceFeeBps    int    `mapstructure:"service_fee_bps"`
	ServiceFeeWallet string `mapstructure:"service_fee_wallet"` // wallet UUID, empty disables
}

// WorkerConfig tunes the background job runner.
type WorkerConfig struct {
	MaxWorkers        int           `mapstructure:"max_workers"`
	DispatchInterval  time.Duration `mapstructure:"dispatch_interval"`
	AutoDraftInterval time.Duration `mapstructure:"auto_draft_interval"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Pretty bool   `mapstructure:"pretty"` // human-readable output (dev only)
}

// Load reads configuration from file and environment variables.
// Environment variables override file values. Prefix: TSL_ (Transit
// Settlement). Nested keys use underscore: TSL_DATABASE_HOST,
// TSL_PROVIDER_SHORT_CODE, etc.
func Load(path string) (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "postgres")
	v.SetDefault("database.dbname", "transit_settlement")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 20)
	v.SetDefault("database.min_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "30m")
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.issuer", "transit-settlement")
	v.SetDefault("provider.base_url", "https://sandbox.safaricom.co.ke")
	v.SetDefault("provider.http_timeout", "15s")
	v.SetDefault("risk.large_amount_threshold", 7000000) // 70,000.00 in cents
	v.SetDefault("risk.window", "1h")
	v.SetDefault("risk.sender_count_threshold", 5)
	v.SetDefault("risk.distinct_ref_threshold", 3)
	v.SetDefault("payout.max_attempts", 7)
	v.SetDefault("payout.receipt_ttl", "48h")
	v.SetDefault("codec.prefixes", map[string]string{
		"OPERATOR": "20",
		"VEHICLE":  "31",
		"DRIVER":   "42",
	})
	v.SetDefault("fees.service_fee_bps", 0)
	v.SetDefault("fees.service_fee_wallet", "")
	v.SetDefault("worker.max_workers", 5)
	v.SetDefault("worker.dispatch_interval", "30s")
	v.SetDefault("worker.auto_draft_interval", "24h")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)

	// File config
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	// Environment variables: TSL_DATABASE_HOST -> database.host
	v.SetEnvPrefix("TSL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file (not required — env vars can suffice)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return &cfg, nil
}
