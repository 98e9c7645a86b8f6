package config

import (
	"log"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	LogLevel          string `env:"LOG_LEVEL"`
	Ledger            Ledger
	Telegram          Telegram
	Redis             Redis
	API               API
	Cache             Cache
	Jobs              Jobs
	SessionExpiration time.Duration `env:"SESSION_EXPIRATION"`
}

type Ledger struct {
	FilePath string `env:"LEDGER_FILE_PATH" envDefault:"carteira.csv"`
}

type Telegram struct {
	Token      string        `env:"TELEGRAM_TOKEN"`
	UpdTimeout time.Duration `env:"TELEGRAM_UPD_TIMEOUT"`
}

type Redis struct {
	Host     string `env:"REDIS_HOST"`
	Port     int    `env:"REDIS_PORT"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB"`
}

type API struct {
	Debug       bool          `env:"API_DEBUG"`
	Timeout     time.Duration `env:"API_TIMEOUT"`
	YahooApi    YahooApi
	TreasuryApi TreasuryApi
}

type YahooApi struct {
	Url string `env:"YAHOO_API_URL"`
}

type TreasuryApi struct {
	Url string `env:"TREASURY_API_URL"`
}

type Cache struct {
	QuotesExpiration time.Duration `env:"CACHE_QUOTES_EXPIRATION"`
	BondsExpiration  time.Duration `env:"CACHE_BONDS_EXPIRATION"`
}

type Jobs struct {
	RefreshBondPricesInterval time.Duration `env:"REFRESH_BOND_PRICES_JOB_INTERVAL"`
	WarmQuoteCacheInterval    time.Duration `env:"WARM_QUOTE_CACHE_JOB_INTERVAL"`
}

func MustLoad() *Config {
	_ = godotenv.Load(".env")

	cfg := &Config{}

	opts := env.Options{RequiredIfNoDef: true}

	if err := env.ParseWithOptions(cfg, opts); err != nil {
		log.Fatalf("parse config error: %s", err)
	}

	return cfg
}
