package config

import (
	"fmt"
	"log"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

type Config struct {
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	Storage     Storage
	Postgres    Postgres
	Telegram    Telegram
	Redis       Redis
	API         API
	Cache       Cache
	Jobs        Jobs
	GoogleDrive GoogleDrive
	Portfolio   Portfolio
}

type Storage struct {
	InMemory bool `env:"STORAGE_IN_MEMORY" envDefault:"false"`
}

type Postgres struct {
	Host            string `env:"PG_HOST" envDefault:"localhost"`
	Port            int    `env:"PG_PORT" envDefault:"5432"`
	DbName          string `env:"PG_DB_NAME" envDefault:"wealth_tracker"`
	Password        string `env:"PG_PASSWORD" envDefault:""`
	User            string `env:"PG_USER" envDefault:"postgres"`
	MaxOpenConns    int    `env:"PG_MAX_OPEN_CONNS" envDefault:"5"`
	ConnMaxLifetime int    `env:"PG_CONN_MAX_LIFETIME" envDefault:"300"`
	MaxIdleConns    int    `env:"PG_MAX_IDLE_CONNS" envDefault:"2"`
	ConnMaxIdleTime int    `env:"PG_CONN_MAX_IDLE_TIME" envDefault:"60"`
	MigrationDir    string `env:"PG_MIGRATION_DIR" envDefault:"data/migrations"`
}

type Telegram struct {
	Token       string        `env:"TELEGRAM_TOKEN"`
	OwnerChatID int64         `env:"TELEGRAM_OWNER_CHAT_ID"`
	UpdTimeout  time.Duration `env:"TELEGRAM_UPD_TIMEOUT" envDefault:"10s"`
}

type Redis struct {
	Enabled  bool   `env:"REDIS_ENABLED" envDefault:"true"`
	Host     string `env:"REDIS_HOST" envDefault:"localhost"`
	Port     int    `env:"REDIS_PORT" envDefault:"6379"`
	Password string `env:"REDIS_PASSWORD" envDefault:""`
	DB       int    `env:"REDIS_DB" envDefault:"0"`
}

type API struct {
	Debug     bool          `env:"API_DEBUG" envDefault:"false"`
	Timeout   time.Duration `env:"API_TIMEOUT" envDefault:"10s"`
	MarketApi MarketApi
}

type MarketApi struct {
	Url       string `env:"MARKET_API_URL" envDefault:"https://query1.finance.yahoo.com"`
	UserAgent string `env:"MARKET_API_USER_AGENT" envDefault:"Mozilla/5.0"`
}

type Cache struct {
	QuoteExpiration       time.Duration `env:"CACHE_QUOTE_EXPIRATION" envDefault:"5m"`
	HistoryExpiration     time.Duration `env:"CACHE_HISTORY_EXPIRATION" envDefault:"1h"`
	SectorExpiration      time.Duration `env:"CACHE_SECTOR_EXPIRATION" envDefault:"24h"`
	FxExpiration          time.Duration `env:"CACHE_FX_EXPIRATION" envDefault:"5m"`
	PerformanceExpiration time.Duration `env:"CACHE_PERFORMANCE_EXPIRATION" envDefault:"1h"`
}

type Jobs struct {
	WarmCacheInterval    time.Duration `env:"WARM_CACHE_JOB_INTERVAL" envDefault:"5m"`
	CleanupDriveInterval time.Duration `env:"CLEANUP_DRIVE_JOB_INTERVAL" envDefault:"24h"`
}

type GoogleDrive struct {
	CredentialsFile string        `env:"GOOGLE_DRIVE_CREDENTIALS_FILE" envDefault:""`
	FileTTL         time.Duration `env:"GOOGLE_DRIVE_FILE_TTL" envDefault:"72h"`
}

func (g GoogleDrive) Enabled() bool {
	return g.CredentialsFile != ""
}

type Portfolio struct {
	ReportingCurrency string          `env:"REPORTING_CURRENCY" envDefault:"THB"`
	BenchmarkSymbol   string          `env:"BENCHMARK_SYMBOL" envDefault:"^GSPC"`
	FxFallback        decimal.Decimal `env:"FX_FALLBACK" envDefault:"34.0"`
	FxFallbackPair    string          `env:"FX_FALLBACK_PAIR" envDefault:"USDTHB"`
	CashCodes         []string        `env:"CASH_CODES" envSeparator:"," envDefault:"THB,USD"`
	CryptoSuffixes    []string        `env:"CRYPTO_SUFFIXES" envSeparator:"," envDefault:"-USD,-USDT,-THB"`
	CryptoPlatforms   []string        `env:"CRYPTO_PLATFORMS" envSeparator:"," envDefault:"Binance"`
}

func Load() (*Config, error) {
	_ = godotenv.Load(".env")

	cfg := &Config{}

	opts := env.Options{RequiredIfNoDef: true}

	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return cfg, nil
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("load config error: %s", err)
	}

	return cfg
}
