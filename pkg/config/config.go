package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = ""

	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	Booking       BookingConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
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
	Env          string `envconfig:"JAVI_APP_ENV" required:"true"`
	Port         string `envconfig:"JAVI_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"JAVI_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"JAVI_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"JAVI_DB_DSN"`
	Driver string `envconfig:"JAVI_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"JAVI_DB_HOST"`
	LegacyPort     int    `envconfig:"JAVI_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"JAVI_DB_USER"`
	LegacyPassword string `envconfig:"JAVI_DB_PASSWORD"`
	LegacyName     string `envconfig:"JAVI_DB_NAME"`
	LegacySSLMode  string `envconfig:"JAVI_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"JAVI_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"JAVI_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"JAVI_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"JAVI_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

func (d *DBConfig) ensureDSN() error {
	if d.DSN != "" {
		return nil
	}
	if d.LegacyHost == "" || d.LegacyUser == "" || d.LegacyName == "" {
		return fmt.Errorf("either JAVI_DB_DSN or JAVI_DB_HOST/USER/NAME must be set")
	}
	d.DSN = fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.LegacyHost, d.LegacyPort, d.LegacyUser, d.LegacyPassword, d.LegacyName, d.LegacySSLMode,
	)
	return nil
}

type RedisConfig struct {
	URL          string        `envconfig:"JAVI_REDIS_URL"`
	Address      string        `envconfig:"JAVI_REDIS_ADDR"`
	Password     string        `envconfig:"JAVI_REDIS_PASSWORD"`
	DB           int           `envconfig:"JAVI_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"JAVI_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"JAVI_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"JAVI_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"JAVI_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"JAVI_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"JAVI_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"JAVI_JWT_ISSUER" default:"javi"`
	ExpirationMinutes      int    `envconfig:"JAVI_JWT_EXPIRATION_MINUTES" default:"30"`
	RefreshTokenTTLMinutes int    `envconfig:"JAVI_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// AccessTokenTTL returns the access token lifetime.
func (j JWTConfig) AccessTokenTTL() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return 0
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"JAVI_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"JAVI_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"JAVI_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"JAVI_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"JAVI_ARGON_KEY_LEN" default:"32"`
}

type BookingConfig struct {
	// SnapshotTTL bounds how stale a cached blocked-set may be before the
	// picker refetches it. Write-time re-checks never read the cache.
	SnapshotTTL     time.Duration `envconfig:"JAVI_BOOKING_SNAPSHOT_TTL" default:"15s"`
	DefaultDueHours int           `envconfig:"JAVI_BOOKING_DEFAULT_DUE_HOURS" default:"48"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"JAVI_AUTH_LOGIN_WINDOW" default:"5m"`
	LoginIPLimit       int           `envconfig:"JAVI_AUTH_LOGIN_IP_LIMIT" default:"30"`
	LoginEmailLimit    int           `envconfig:"JAVI_AUTH_LOGIN_EMAIL_LIMIT" default:"10"`
	RegisterWindow     time.Duration `envconfig:"JAVI_AUTH_REGISTER_WINDOW" default:"1h"`
	RegisterIPLimit    int           `envconfig:"JAVI_AUTH_REGISTER_IP_LIMIT" default:"20"`
	RegisterEmailLimit int           `envconfig:"JAVI_AUTH_REGISTER_EMAIL_LIMIT" default:"5"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"JAVI_FEATURE_AUTO_MIGRATE" default:"false"`
}
