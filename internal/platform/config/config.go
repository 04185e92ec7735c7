// Package config はアプリケーション設定を環境変数（および任意の app.env）から読み込みます。
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// ErrMissingAPIKey は TWELVE_DATA_API_KEY が未設定の場合のエラーです。
var ErrMissingAPIKey = errors.New("TWELVE_DATA_API_KEY is required")

// Config はサーバー・取り込みジョブ・CLI 共通の設定です。
type Config struct {
	Port string `mapstructure:"PORT"`

	DBHost        string `mapstructure:"DB_HOST"`
	DBPort        string `mapstructure:"DB_PORT"`
	DBUser        string `mapstructure:"DB_USER"`
	DBPassword    string `mapstructure:"DB_PASSWORD"`
	DBName        string `mapstructure:"DB_NAME"`
	DBSSLMode     string `mapstructure:"DB_SSLMODE"`
	DBInstance    string `mapstructure:"INSTANCE_CONNECTION_NAME"`
	RunMigrations bool   `mapstructure:"RUN_MIGRATIONS"`

	RedisHost     string        `mapstructure:"REDIS_HOST"`
	RedisPort     string        `mapstructure:"REDIS_PORT"`
	RedisPassword string        `mapstructure:"REDIS_PASSWORD"`
	CacheTTL      time.Duration `mapstructure:"CACHE_TTL"`

	TwelveDataAPIKey  string        `mapstructure:"TWELVE_DATA_API_KEY"`
	TwelveDataBaseURL string        `mapstructure:"TWELVE_DATA_BASE_URL"`
	ProviderTimeout   time.Duration `mapstructure:"PROVIDER_TIMEOUT"`
	RateLimitPerMin   int           `mapstructure:"PROVIDER_RATE_LIMIT_PER_MIN"`
	SymbolMapPath     string        `mapstructure:"SYMBOL_MAP_PATH"`

	BacktestTimeout time.Duration `mapstructure:"BACKTEST_TIMEOUT"`
	DefaultQuantity int64         `mapstructure:"DEFAULT_QUANTITY"`

	IngestSchedule     string `mapstructure:"INGEST_SCHEDULE"`
	IngestLookbackDays int    `mapstructure:"INGEST_LOOKBACK_DAYS"`
}

var defaults = map[string]any{
	"PORT":                        "8080",
	"DB_HOST":                     "localhost",
	"DB_PORT":                     "5432",
	"DB_USER":                     "postgres",
	"DB_PASSWORD":                 "",
	"DB_NAME":                     "stock_backtest",
	"DB_SSLMODE":                  "disable",
	"INSTANCE_CONNECTION_NAME":    "",
	"RUN_MIGRATIONS":              false,
	"REDIS_HOST":                  "",
	"REDIS_PORT":                  "6379",
	"REDIS_PASSWORD":              "",
	"CACHE_TTL":                   "5m",
	"TWELVE_DATA_API_KEY":         "",
	"TWELVE_DATA_BASE_URL":        "https://api.twelvedata.com",
	"PROVIDER_TIMEOUT":            "10s",
	"PROVIDER_RATE_LIMIT_PER_MIN": 8,
	"SYMBOL_MAP_PATH":             "",
	"BACKTEST_TIMEOUT":            "30s",
	"DEFAULT_QUANTITY":            1,
	"INGEST_SCHEDULE":             "",
	"INGEST_LOOKBACK_DAYS":        1095,
}

// Load は dir にある app.env（存在すれば）と環境変数から設定を読み込みます。
// 環境変数が app.env より優先されます。
func Load(dir string) (Config, error) {
	v := viper.New()
	v.AddConfigPath(dir)
	v.SetConfigName("app")
	v.SetConfigType("env")
	v.AutomaticEnv()
	// Unmarshal は既知のキーしか見ないため、すべてのキーにデフォルトを登録する
	for k, val := range defaults {
		v.SetDefault(k, val)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

// Validate はプロバイダーを使うプロセスの必須設定を確認します。
// APIキーにデフォルト値は持たせません。
func (c Config) Validate() error {
	if c.TwelveDataAPIKey == "" {
		return ErrMissingAPIKey
	}
	if c.TwelveDataBaseURL == "" {
		return errors.New("TWELVE_DATA_BASE_URL must not be empty")
	}
	if c.ProviderTimeout <= 0 || c.BacktestTimeout <= 0 {
		return errors.New("PROVIDER_TIMEOUT and BACKTEST_TIMEOUT must be positive")
	}
	return nil
}

// RedisAddr は Redis の接続先を返します。REDIS_HOST が空ならキャッシュは無効です。
func (c Config) RedisAddr() string {
	if c.RedisHost == "" {
		return ""
	}
	return c.RedisHost + ":" + c.RedisPort
}

// IngestLookback は取り込み対象期間です。
func (c Config) IngestLookback() time.Duration {
	return time.Duration(c.IngestLookbackDays) * 24 * time.Hour
}
