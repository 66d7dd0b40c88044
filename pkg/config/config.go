package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "SITESUPPLY"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvAppEnv    = "SITESUPPLY_APP_ENV"
	EnvPort      = "SITESUPPLY_APP_PORT"
	EnvDBDSN     = "SITESUPPLY_DB_DSN"
	EnvDBHost    = "SITESUPPLY_DB_HOST"
	EnvDBUser    = "SITESUPPLY_DB_USER"
	EnvDBName    = "SITESUPPLY_DB_NAME"
	EnvRedisURL  = "SITESUPPLY_REDIS_URL"
	EnvJWTSecret = "SITESUPPLY_JWT_SECRET"
	EnvJWTIssuer = "SITESUPPLY_JWT_ISSUER"
	EnvJWTExp    = "SITESUPPLY_JWT_EXPIRATION_MINUTES"

	EnvGCPProjectID          = "SITESUPPLY_GCP_PROJECT_ID"
	EnvPubSubDomainTopic     = "SITESUPPLY_PUBSUB_DOMAIN_TOPIC"
	EnvPubSubDomainSub       = "SITESUPPLY_PUBSUB_DOMAIN_SUBSCRIPTION"
	EnvPubSubNotifierEnabled = "SITESUPPLY_PUBSUB_NOTIFIER_ENABLED"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	FeatureFlags FeatureFlagsConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
	Outbox       OutboxConfig
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
	Env          string `envconfig:"SITESUPPLY_APP_ENV" required:"true"`
	Port         string `envconfig:"SITESUPPLY_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"SITESUPPLY_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"SITESUPPLY_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"SITESUPPLY_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"SITESUPPLY_DB_DSN"`
	Driver string `envconfig:"SITESUPPLY_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"SITESUPPLY_DB_HOST"`
	LegacyPort     int    `envconfig:"SITESUPPLY_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"SITESUPPLY_DB_USER"`
	LegacyPassword string `envconfig:"SITESUPPLY_DB_PASSWORD"`
	LegacyName     string `envconfig:"SITESUPPLY_DB_NAME"`
	LegacySSLMode  string `envconfig:"SITESUPPLY_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"SITESUPPLY_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"SITESUPPLY_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"SITESUPPLY_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"SITESUPPLY_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"SITESUPPLY_REDIS_URL" required:"true"`
	PoolSize     int           `envconfig:"SITESUPPLY_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"SITESUPPLY_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"SITESUPPLY_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"SITESUPPLY_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"SITESUPPLY_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"SITESUPPLY_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"SITESUPPLY_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"SITESUPPLY_JWT_EXPIRATION_MINUTES" required:"true"`
}

// Expiration returns the access token lifetime.
func (j JWTConfig) Expiration() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return 0
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"SITESUPPLY_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"SITESUPPLY_AUTO_MIGRATE" default:"false"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"SITESUPPLY_GCP_PROJECT_ID"`
	ApplicationCredentials string `envconfig:"SITESUPPLY_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	DomainTopic        string `envconfig:"SITESUPPLY_PUBSUB_DOMAIN_TOPIC" default:"ss-domain-events"`
	DomainSubscription string `envconfig:"SITESUPPLY_PUBSUB_DOMAIN_SUBSCRIPTION"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"SITESUPPLY_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"SITESUPPLY_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"SITESUPPLY_OUTBOX_MAX_ATTEMPTS" default:"10"`
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
