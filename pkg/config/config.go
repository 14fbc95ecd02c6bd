package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App      AppConfig
	DB       DBConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Gateway  GatewayConfig
	Payments PaymentsConfig
	Flags    FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"SEATRELAY_APP_ENV" required:"true"`
	Port         string `envconfig:"SEATRELAY_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"SEATRELAY_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"SEATRELAY_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"SEATRELAY_DB_DSN"`
	Driver string `envconfig:"SEATRELAY_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"SEATRELAY_DB_HOST"`
	LegacyPort     int    `envconfig:"SEATRELAY_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"SEATRELAY_DB_USER"`
	LegacyPassword string `envconfig:"SEATRELAY_DB_PASSWORD"`
	LegacyName     string `envconfig:"SEATRELAY_DB_NAME"`
	LegacySSLMode  string `envconfig:"SEATRELAY_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"SEATRELAY_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"SEATRELAY_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"SEATRELAY_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"SEATRELAY_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"SEATRELAY_REDIS_URL" required:"true"`
	Password     string        `envconfig:"SEATRELAY_REDIS_PASSWORD"`
	DB           int           `envconfig:"SEATRELAY_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"SEATRELAY_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"SEATRELAY_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"SEATRELAY_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"SEATRELAY_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"SEATRELAY_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"SEATRELAY_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"SEATRELAY_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"SEATRELAY_JWT_EXPIRATION_MINUTES" default:"60"`
}

// GatewayConfig covers the external payment gateway integration.
type GatewayConfig struct {
	BaseURL       string        `envconfig:"SEATRELAY_GATEWAY_BASE_URL" required:"true"`
	APISecret     string        `envconfig:"SEATRELAY_GATEWAY_API_SECRET" required:"true"`
	WebhookSecret string        `envconfig:"SEATRELAY_GATEWAY_WEBHOOK_SECRET" required:"true"`
	StoreID       string        `envconfig:"SEATRELAY_GATEWAY_STORE_ID"`
	HTTPTimeout   time.Duration `envconfig:"SEATRELAY_GATEWAY_HTTP_TIMEOUT" default:"10s"`
}

// PaymentsConfig tunes reconciliation and fee behavior.
type PaymentsConfig struct {
	PollInterval    time.Duration `envconfig:"SEATRELAY_PAYMENTS_POLL_INTERVAL" default:"1500ms"`
	PollMaxAttempts int           `envconfig:"SEATRELAY_PAYMENTS_POLL_MAX_ATTEMPTS" default:"10"`
	MinTestAmount   int64         `envconfig:"SEATRELAY_PAYMENTS_MIN_TEST_AMOUNT" default:"110"`
	FeePercent      int           `envconfig:"SEATRELAY_PAYMENTS_FEE_PERCENT" default:"10"`
	FeeDueAfter     time.Duration `envconfig:"SEATRELAY_PAYMENTS_FEE_DUE_AFTER" default:"24h"`
	WebhookEventTTL time.Duration `envconfig:"SEATRELAY_PAYMENTS_WEBHOOK_EVENT_TTL" default:"720h"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"SEATRELAY_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
