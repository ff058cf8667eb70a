package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App       AppConfig
	DB        DBConfig
	Redis     RedisConfig
	JWT       JWTConfig
	Password  PasswordConfig
	Razorpay  RazorpayConfig
	PubSub    PubSubConfig
	Outbox    OutboxConfig
	RateLimit AuthRateLimitConfig
	Flags     FeatureFlagsConfig
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
	Env          string `envconfig:"KARAVAN_APP_ENV" required:"true"`
	Port         string `envconfig:"KARAVAN_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"KARAVAN_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"KARAVAN_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"KARAVAN_DB_DSN"`
	Driver string `envconfig:"KARAVAN_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"KARAVAN_DB_HOST"`
	Port     int    `envconfig:"KARAVAN_DB_PORT" default:"5432"`
	User     string `envconfig:"KARAVAN_DB_USER"`
	Password string `envconfig:"KARAVAN_DB_PASSWORD"`
	Name     string `envconfig:"KARAVAN_DB_NAME"`
	SSLMode  string `envconfig:"KARAVAN_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"KARAVAN_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"KARAVAN_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"KARAVAN_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"KARAVAN_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"KARAVAN_REDIS_URL" required:"true"`
	Address      string        `envconfig:"KARAVAN_REDIS_ADDR"`
	Password     string        `envconfig:"KARAVAN_REDIS_PASSWORD"`
	DB           int           `envconfig:"KARAVAN_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"KARAVAN_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"KARAVAN_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"KARAVAN_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"KARAVAN_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"KARAVAN_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"KARAVAN_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"KARAVAN_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"KARAVAN_JWT_EXPIRATION_MINUTES" default:"60"`
}

// AccessTokenTTL returns the access token lifetime.
func (j JWTConfig) AccessTokenTTL() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return time.Hour
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"KARAVAN_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"KARAVAN_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"KARAVAN_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"KARAVAN_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"KARAVAN_ARGON_KEY_LEN" default:"32"`
}

type RazorpayConfig struct {
	KeyID     string        `envconfig:"KARAVAN_RAZORPAY_KEY_ID" required:"true"`
	KeySecret string        `envconfig:"KARAVAN_RAZORPAY_KEY_SECRET" required:"true"`
	Currency  string        `envconfig:"KARAVAN_RAZORPAY_CURRENCY" default:"INR"`
	Timeout   time.Duration `envconfig:"KARAVAN_RAZORPAY_TIMEOUT" default:"10s"`
}

type PubSubConfig struct {
	ProjectID   string `envconfig:"KARAVAN_GCP_PROJECT_ID"`
	OrdersTopic string `envconfig:"KARAVAN_PUBSUB_ORDERS_TOPIC" default:"karavan-order-events"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"KARAVAN_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"KARAVAN_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"KARAVAN_OUTBOX_MAX_ATTEMPTS" default:"10"`
}

type AuthRateLimitConfig struct {
	LoginWindow    time.Duration `envconfig:"KARAVAN_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginLimit     int64         `envconfig:"KARAVAN_RATE_LIMIT_LOGIN_LIMIT" default:"10"`
	RegisterWindow time.Duration `envconfig:"KARAVAN_RATE_LIMIT_REGISTER_WINDOW" default:"1h"`
	RegisterLimit  int64         `envconfig:"KARAVAN_RATE_LIMIT_REGISTER_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"KARAVAN_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	values := map[string]string{
		EnvDBHost: db.Host,
		EnvDBUser: db.User,
		EnvDBName: db.Name,
	}
	for _, env := range requiredDBEnvVars {
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
