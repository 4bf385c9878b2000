package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/gestfood/digital-menu/pkg/instance"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App     AppConfig
	Device  DeviceConfig
	Backend BackendConfig
	Store   StoreConfig
	DB      DBConfig
	Redis   RedisConfig
	Payment PaymentConfig
	Metrics MetricsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if cfg.Device.ID == "" {
		cfg.Device.ID = instance.GetID()
	}
	if err := cfg.Backend.validate(); err != nil {
		return nil, err
	}
	if err := cfg.Store.validate(); err != nil {
		return nil, err
	}
	if cfg.Store.UsesSQL() {
		if err := cfg.DB.ensureDSN(cfg.Store.Driver); err != nil {
			return nil, err
		}
	}
	if cfg.Store.Driver == StoreDriverRedis && cfg.Redis.URL == "" && cfg.Redis.Address == "" {
		return nil, fmt.Errorf("%s or %s is required for the redis store", EnvRedisURL, EnvRedisAddr)
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"GESTFOOD_APP_ENV" default:"dev"`
	Port         string `envconfig:"GESTFOOD_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"GESTFOOD_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"GESTFOOD_LOG_WARN_STACK" default:"false"`

	CORSOrigins     []string      `envconfig:"GESTFOOD_CORS_ORIGINS"`
	ShutdownTimeout time.Duration `envconfig:"GESTFOOD_SHUTDOWN_TIMEOUT" default:"10s"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// DeviceConfig identifies the table device this process serves.
type DeviceConfig struct {
	ID string `envconfig:"GESTFOOD_DEVICE_ID"`
}

// BackendConfig points at the restaurant REST API.
type BackendConfig struct {
	BaseURL string        `envconfig:"GESTFOOD_API_BASE_URL" required:"true"`
	Timeout time.Duration `envconfig:"GESTFOOD_API_TIMEOUT" default:"30s"`
}

func (b BackendConfig) validate() error {
	parsed, err := url.Parse(strings.TrimSpace(b.BaseURL))
	if err != nil {
		return fmt.Errorf("parsing %s: %w", EnvAPIBaseURL, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("%s must be an http(s) url", EnvAPIBaseURL)
	}
	if b.Timeout < 0 {
		return fmt.Errorf("%s must not be negative", EnvAPITimeout)
	}
	return nil
}

// StoreConfig selects the local persistence backend.
type StoreConfig struct {
	Driver      string `envconfig:"GESTFOOD_STORE_DRIVER" default:"sqlite"`
	AutoMigrate bool   `envconfig:"GESTFOOD_STORE_AUTO_MIGRATE" default:"true"`
}

// UsesSQL reports whether the store is backed by a gorm connection.
func (s StoreConfig) UsesSQL() bool {
	return s.Driver == StoreDriverSQLite || s.Driver == StoreDriverPostgres
}

func (s *StoreConfig) validate() error {
	s.Driver = strings.ToLower(strings.TrimSpace(s.Driver))
	for _, candidate := range validStoreDrivers {
		if candidate == s.Driver {
			return nil
		}
	}
	return fmt.Errorf("invalid %s %q (expected one of %s)", EnvStoreDriver, s.Driver, strings.Join(validStoreDrivers, ", "))
}

type DBConfig struct {
	DSN string `envconfig:"GESTFOOD_DB_DSN"`

	SQLitePath string `envconfig:"GESTFOOD_DB_SQLITE_PATH" default:"gestfood.db"`

	Host     string `envconfig:"GESTFOOD_DB_HOST"`
	Port     int    `envconfig:"GESTFOOD_DB_PORT" default:"5432"`
	User     string `envconfig:"GESTFOOD_DB_USER"`
	Password string `envconfig:"GESTFOOD_DB_PASSWORD"`
	Name     string `envconfig:"GESTFOOD_DB_NAME"`
	SSLMode  string `envconfig:"GESTFOOD_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"GESTFOOD_DB_MAX_OPEN_CONNS" default:"4"`
	MaxIdleConns    int           `envconfig:"GESTFOOD_DB_MAX_IDLE_CONNS" default:"2"`
	ConnMaxLifetime time.Duration `envconfig:"GESTFOOD_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"GESTFOOD_DB_CONN_MAX_IDLE_TIME" default:"10m"`

	// Driver is derived from the store driver during Load.
	Driver string `ignored:"true"`
}

type RedisConfig struct {
	URL          string        `envconfig:"GESTFOOD_REDIS_URL"`
	Address      string        `envconfig:"GESTFOOD_REDIS_ADDR"`
	Password     string        `envconfig:"GESTFOOD_REDIS_PASSWORD"`
	DB           int           `envconfig:"GESTFOOD_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"GESTFOOD_REDIS_POOL_SIZE" default:"4"`
	MinIdleConns int           `envconfig:"GESTFOOD_REDIS_MIN_IDLE_CONNS" default:"1"`
	DialTimeout  time.Duration `envconfig:"GESTFOOD_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"GESTFOOD_REDIS_READ_TIMEOUT" default:"3s"`
	WriteTimeout time.Duration `envconfig:"GESTFOOD_REDIS_WRITE_TIMEOUT" default:"3s"`
}

// PaymentConfig drives the simulated Pix and card screens.
type PaymentConfig struct {
	MerchantName    string `envconfig:"GESTFOOD_MERCHANT_NAME" default:"Restaurante GestFood"`
	MerchantCity    string `envconfig:"GESTFOOD_MERCHANT_CITY" default:"SAO PAULO"`
	PixKey          string `envconfig:"GESTFOOD_PIX_KEY" default:"123.456.789-09"`
	MaxInstallments int    `envconfig:"GESTFOOD_CARD_MAX_INSTALLMENTS" default:"6"`
}

type MetricsConfig struct {
	Enabled bool `envconfig:"GESTFOOD_METRICS_ENABLED" default:"true"`
}

func (db *DBConfig) ensureDSN(driver string) error {
	db.Driver = driver
	if db.DSN != "" {
		return nil
	}

	if driver == StoreDriverSQLite {
		path := strings.TrimSpace(db.SQLitePath)
		if path == "" {
			return fmt.Errorf("%s is required for the sqlite store", EnvDBSQLitePath)
		}
		db.DSN = fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", path)
		return nil
	}

	missing := []string{}
	values := map[string]string{
		EnvDBHost: db.Host,
		EnvDBUser: db.User,
		EnvDBName: db.Name,
	}
	for _, env := range postgresDBEnvVars {
		if values[env] == "" {
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
