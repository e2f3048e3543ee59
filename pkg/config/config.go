package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App     AppConfig
	DB      DBConfig
	Redis   RedisConfig
	JWT     JWTConfig
	Pricing PricingConfig
	TossPay TossPayConfig
	Flags   FeatureFlagsConfig
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
	Env          string `envconfig:"MODOMARKET_APP_ENV" required:"true"`
	Port         string `envconfig:"MODOMARKET_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"MODOMARKET_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"MODOMARKET_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"MODOMARKET_DB_DSN"`
	Driver string `envconfig:"MODOMARKET_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"MODOMARKET_DB_HOST"`
	Port     int    `envconfig:"MODOMARKET_DB_PORT" default:"5432"`
	User     string `envconfig:"MODOMARKET_DB_USER"`
	Password string `envconfig:"MODOMARKET_DB_PASSWORD"`
	Name     string `envconfig:"MODOMARKET_DB_NAME"`
	SSLMode  string `envconfig:"MODOMARKET_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"MODOMARKET_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"MODOMARKET_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"MODOMARKET_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"MODOMARKET_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"MODOMARKET_REDIS_URL" required:"true"`
	Address      string        `envconfig:"MODOMARKET_REDIS_ADDR"`
	Password     string        `envconfig:"MODOMARKET_REDIS_PASSWORD"`
	DB           int           `envconfig:"MODOMARKET_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"MODOMARKET_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"MODOMARKET_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"MODOMARKET_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"MODOMARKET_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"MODOMARKET_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"MODOMARKET_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"MODOMARKET_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"MODOMARKET_JWT_EXPIRATION_MINUTES" default:"60"`
}

// PricingConfig carries the storefront money rules. The thresholds are plain
// KRW amounts, never hardcoded at call sites.
type PricingConfig struct {
	FreeShippingThreshold int `envconfig:"MODOMARKET_PRICING_FREE_SHIPPING_THRESHOLD" default:"50000"`
	DeliveryFlatFee       int `envconfig:"MODOMARKET_PRICING_DELIVERY_FLAT_FEE" default:"3000"`
}

type TossPayConfig struct {
	SecretKey string        `envconfig:"MODOMARKET_TOSSPAY_SECRET_KEY"`
	BaseURL   string        `envconfig:"MODOMARKET_TOSSPAY_BASE_URL" default:"https://api.tosspayments.com"`
	Timeout   time.Duration `envconfig:"MODOMARKET_TOSSPAY_TIMEOUT" default:"10s"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"MODOMARKET_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	hostValues := map[string]string{
		EnvDBHost: db.Host,
		EnvDBUser: db.User,
		EnvDBName: db.Name,
	}
	for _, env := range requiredDBEnvVars {
		if hostValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.User)
	if db.Password != "" {
		userInfo = url.UserPassword(db.User, db.Password)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.Host, db.Port),
		Path:   db.Name,
	}

	if db.SSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.SSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
