package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	Password     PasswordConfig
	FeatureFlags FeatureFlagsConfig
	Eventing     EventingConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
	Outbox       OutboxConfig
	Messaging    MessagingConfig
	Cron         CronConfig
	CORS         CORSConfig
	RateLimit    RateLimitConfig
	Metrics      MetricsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if _, err := cfg.App.Location(); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", EnvTimezone, err)
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"POS_APP_ENV" required:"true"`
	Port         string `envconfig:"POS_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"POS_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"POS_LOG_WARN_STACK" default:"false"`
	Timezone     string `envconfig:"POS_TIMEZONE" default:"Asia/Jakarta"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// Location resolves the business timezone used for daily reports.
func (a AppConfig) Location() (*time.Location, error) {
	tz := strings.TrimSpace(a.Timezone)
	if tz == "" {
		tz = defaultTimezone
	}
	return time.LoadLocation(tz)
}

type ServiceConfig struct {
	Kind string `envconfig:"POS_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"POS_DB_DSN"`
	Driver string `envconfig:"POS_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"POS_DB_HOST"`
	LegacyPort     int    `envconfig:"POS_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"POS_DB_USER"`
	LegacyPassword string `envconfig:"POS_DB_PASSWORD"`
	LegacyName     string `envconfig:"POS_DB_NAME"`
	LegacySSLMode  string `envconfig:"POS_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"POS_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"POS_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"POS_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"POS_DB_CONN_MAX_IDLE_TIME" default:"10m"`

	TxMaxRetries uint64        `envconfig:"POS_DB_TX_MAX_RETRIES" default:"5"`
	TxRetryBase  time.Duration `envconfig:"POS_DB_TX_RETRY_BASE" default:"20ms"`
}

type RedisConfig struct {
	URL          string        `envconfig:"POS_REDIS_URL"`
	Address      string        `envconfig:"POS_REDIS_ADDR"`
	Password     string        `envconfig:"POS_REDIS_PASSWORD"`
	DB           int           `envconfig:"POS_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"POS_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"POS_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"POS_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"POS_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"POS_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"POS_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"POS_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"POS_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"POS_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"POS_ARGON_KEY_LEN" default:"32"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"POS_AUTO_MIGRATE" default:"false"`
}

type EventingConfig struct {
	IdempotencyTTL time.Duration `envconfig:"POS_EVENTING_IDEMPOTENCY_TTL" default:"720h"`
}

type GCPConfig struct {
	ProjectID string `envconfig:"POS_GCP_PROJECT_ID" required:"true"`
}

type PubSubConfig struct {
	JobsTopic                string `envconfig:"POS_PUBSUB_JOBS_TOPIC" default:"pos-job-queue"`
	JobsSubscription         string `envconfig:"POS_PUBSUB_JOBS_SUBSCRIPTION" required:"true"`
	TransactionsTopic        string `envconfig:"POS_PUBSUB_TRANSACTIONS_TOPIC" default:"pos-transactions"`
	TransactionsSubscription string `envconfig:"POS_PUBSUB_TRANSACTIONS_SUBSCRIPTION" required:"true"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"POS_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"POS_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"POS_OUTBOX_MAX_ATTEMPTS" default:"10"`
	RetentionDays  int `envconfig:"POS_OUTBOX_RETENTION_DAYS" default:"30"`
}

// MessagingConfig carries the WhatsApp gateway settings handed to the notification handler.
type MessagingConfig struct {
	GatewayURL string        `envconfig:"POS_MESSAGING_GATEWAY_URL" default:"https://api.fonnte.id"`
	DeviceID   string        `envconfig:"POS_MESSAGING_DEVICE_ID"`
	AdminGroup string        `envconfig:"POS_MESSAGING_ADMIN_GROUP"`
	Timeout    time.Duration `envconfig:"POS_MESSAGING_TIMEOUT" default:"10s"`
}

type CronConfig struct {
	TickInterval  time.Duration `envconfig:"POS_CRON_TICK_INTERVAL" default:"1m"`
	StaleJobAge   time.Duration `envconfig:"POS_CRON_STALE_JOB_AGE" default:"10m"`
	StaleJobBatch int           `envconfig:"POS_CRON_STALE_JOB_BATCH" default:"100"`
}

// MetricsConfig enables the standalone /metrics listener of the background binaries.
type MetricsConfig struct {
	Addr string `envconfig:"POS_METRICS_ADDR"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"POS_CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
}

// RateLimitConfig bounds the unauthenticated write endpoints.
type RateLimitConfig struct {
	RegisterWindow     time.Duration `envconfig:"POS_RATE_LIMIT_REGISTER_WINDOW" default:"1h"`
	RegisterIPLimit    int           `envconfig:"POS_RATE_LIMIT_REGISTER_IP_LIMIT" default:"10"`
	RegisterEmailLimit int           `envconfig:"POS_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	CheckoutWindow     time.Duration `envconfig:"POS_RATE_LIMIT_CHECKOUT_WINDOW" default:"1m"`
	CheckoutIPLimit    int           `envconfig:"POS_RATE_LIMIT_CHECKOUT_IP_LIMIT" default:"120"`
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
