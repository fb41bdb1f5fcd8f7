package config

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

type HTTPConfig struct {
	Host string
	Port int
}

type DBConfig struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime string
}

type AuthConfig struct {
	AccessSecret string
}

type LedgerConfig struct {
	DepositLimitRatio decimal.Decimal
	BestClientsLimit  int
}

type Config struct {
	Environment string
	HTTP        HTTPConfig
	DB          DBConfig
	Auth        AuthConfig
	Ledger      LedgerConfig
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("app")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("./deploy")
	v.AddConfigPath("./internal/config")
	v.AutomaticEnv()

	_ = v.ReadInConfig()

	cfg := &Config{
		Environment: v.GetString("APP_ENV"),
		HTTP: HTTPConfig{
			Host: v.GetString("HTTP_HOST"),
			Port: v.GetInt("HTTP_PORT"),
		},
		DB: DBConfig{
			DSN:             v.GetString("DB_DSN"),
			MaxOpenConns:    v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: v.GetString("DB_CONN_MAX_LIFETIME"),
		},
		Auth: AuthConfig{
			AccessSecret: v.GetString("JWT_ACCESS_SECRET"),
		},
		Ledger: LedgerConfig{
			BestClientsLimit: v.GetInt("LEDGER_BEST_CLIENTS_LIMIT"),
		},
	}

	ratio, err := parseRatio(v.GetString("LEDGER_DEPOSIT_LIMIT_RATIO"))
	if err != nil {
		return nil, err
	}
	cfg.Ledger.DepositLimitRatio = ratio

	if cfg.Environment == "" {
		cfg.Environment = "development"
	}
	if cfg.HTTP.Host == "" {
		cfg.HTTP.Host = "0.0.0.0"
	}
	if cfg.HTTP.Port == 0 {
		cfg.HTTP.Port = 7091
	}
	if cfg.Ledger.BestClientsLimit == 0 {
		cfg.Ledger.BestClientsLimit = 2
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func validate(cfg *Config) error {
	if cfg.DB.DSN == "" {
		return fmt.Errorf("DB_DSN is required")
	}
	if cfg.Auth.AccessSecret == "" {
		return fmt.Errorf("JWT_ACCESS_SECRET is required")
	}
	if cfg.Ledger.DepositLimitRatio.IsNegative() || cfg.Ledger.DepositLimitRatio.GreaterThan(decimal.NewFromInt(1)) {
		return fmt.Errorf("LEDGER_DEPOSIT_LIMIT_RATIO must be between 0 and 1")
	}
	return nil
}

func parseRatio(raw string) (decimal.Decimal, error) {
	if raw == "" {
		return decimal.New(25, -2), nil
	}
	ratio, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("invalid LEDGER_DEPOSIT_LIMIT_RATIO: %w", err)
	}
	return ratio, nil
}
