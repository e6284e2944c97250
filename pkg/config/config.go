package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	RateLimit     RateLimitConfig
	CORS          CORSConfig
	Reminders     RemindersConfig
	Cron          CronConfig
	Push          PushConfig
	FeatureFlags  FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(cfg.FeatureFlags.UseSQLite); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if len(strings.TrimSpace(c.JWT.Secret)) < minJWTSecretLen && c.App.IsProd() {
		return fmt.Errorf("%s must be at least %d characters in production", EnvJWTSecret, minJWTSecretLen)
	}
	if c.JWT.ExpirationMinutes <= 0 {
		return fmt.Errorf("%s must be positive", EnvJWTExpMins)
	}
	if c.JWT.RefreshTokenTTLDays <= 0 {
		return fmt.Errorf("%s must be positive", EnvRefreshTokenTTLDays)
	}
	if _, err := c.Reminders.BookingOffsets(); err != nil {
		return err
	}
	if c.Push.Enabled && strings.TrimSpace(c.Push.CredentialsFile) == "" {
		return fmt.Errorf("%s is required when push is enabled", EnvPushCredentialsFile)
	}
	return nil
}

type AppConfig struct {
	Env          string `envconfig:"CLINIC_APP_ENV" required:"true"`
	Port         string `envconfig:"CLINIC_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"CLINIC_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"CLINIC_LOG_WARN_STACK" default:"false"`
	PublicURL    string `envconfig:"CLINIC_PUBLIC_URL" default:"http://localhost:3000"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev) || strings.EqualFold(a.Env, "development")
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd) || strings.EqualFold(a.Env, "production")
}

type DBConfig struct {
	DSN    string `envconfig:"CLINIC_DB_DSN"`
	Driver string `envconfig:"CLINIC_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"CLINIC_DB_HOST"`
	LegacyPort     int    `envconfig:"CLINIC_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"CLINIC_DB_USER"`
	LegacyPassword string `envconfig:"CLINIC_DB_PASSWORD"`
	LegacyName     string `envconfig:"CLINIC_DB_NAME"`
	LegacySSLMode  string `envconfig:"CLINIC_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"CLINIC_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"CLINIC_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"CLINIC_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"CLINIC_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"CLINIC_REDIS_URL"`
	Address      string        `envconfig:"CLINIC_REDIS_ADDR" default:"localhost:6379"`
	Password     string        `envconfig:"CLINIC_REDIS_PASSWORD"`
	DB           int           `envconfig:"CLINIC_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"CLINIC_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"CLINIC_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"CLINIC_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"CLINIC_REDIS_READ_TIMEOUT" default:"3s"`
	WriteTimeout time.Duration `envconfig:"CLINIC_REDIS_WRITE_TIMEOUT" default:"3s"`
	KeyPrefix    string        `envconfig:"CLINIC_REDIS_KEY_PREFIX" default:"clinic"`
}

type JWTConfig struct {
	Secret              string `envconfig:"CLINIC_JWT_SECRET" required:"true"`
	Issuer              string `envconfig:"CLINIC_JWT_ISSUER" default:"clinic-api"`
	ExpirationMinutes   int    `envconfig:"CLINIC_JWT_EXPIRATION_MINUTES" default:"15"`
	RefreshTokenTTLDays int    `envconfig:"CLINIC_REFRESH_TOKEN_TTL_DAYS" default:"7"`
}

// AccessTokenTTL returns the access token lifetime.
func (j JWTConfig) AccessTokenTTL() time.Duration {
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

// RefreshTokenTTL returns the refresh token lifetime.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLDays <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLDays) * 24 * time.Hour
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"CLINIC_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"CLINIC_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"CLINIC_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"CLINIC_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"CLINIC_ARGON_KEY_LEN" default:"32"`
	MinLength        int `envconfig:"CLINIC_PASSWORD_MIN_LENGTH" default:"8"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"CLINIC_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"CLINIC_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"CLINIC_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"CLINIC_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"CLINIC_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"CLINIC_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

// RateLimitConfig drives the in-process per-IP limiter on public routes.
type RateLimitConfig struct {
	RequestsPerSecond float64       `envconfig:"CLINIC_RATE_LIMIT_RPS" default:"10"`
	Burst             int           `envconfig:"CLINIC_RATE_LIMIT_BURST" default:"30"`
	IdleTTL           time.Duration `envconfig:"CLINIC_RATE_LIMIT_IDLE_TTL" default:"10m"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"CLINIC_CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
}

type RemindersConfig struct {
	// BookingOffsetsRaw lists how long before an appointment each booking reminder fires.
	BookingOffsetsRaw []string `envconfig:"CLINIC_REMINDER_BOOKING_OFFSETS" default:"168h,24h,2h"`
	DispatchBatch     int      `envconfig:"CLINIC_REMINDER_DISPATCH_BATCH" default:"100"`
}

// BookingOffsets parses the configured offsets.
func (r RemindersConfig) BookingOffsets() ([]time.Duration, error) {
	offsets := make([]time.Duration, 0, len(r.BookingOffsetsRaw))
	for _, raw := range r.BookingOffsetsRaw {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		d, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("%s: invalid offset %q: %w", EnvReminderBookingOffsets, raw, err)
		}
		if d <= 0 {
			return nil, fmt.Errorf("%s: offset %q must be positive", EnvReminderBookingOffsets, raw)
		}
		offsets = append(offsets, d)
	}
	return offsets, nil
}

type CronConfig struct {
	Interval time.Duration `envconfig:"CLINIC_CRON_INTERVAL" default:"1m"`
	LockTTL  time.Duration `envconfig:"CLINIC_CRON_LOCK_TTL" default:"50s"`
}

type PushConfig struct {
	Enabled         bool   `envconfig:"CLINIC_PUSH_ENABLED" default:"false"`
	CredentialsFile string `envconfig:"CLINIC_PUSH_CREDENTIALS_FILE"`
	Topic           string `envconfig:"CLINIC_PUSH_TOPIC" default:"clinic-reminders"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"CLINIC_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"CLINIC_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN(useSQLite bool) error {
	if useSQLite {
		db.Driver = "sqlite"
	}
	if db.DSN != "" {
		return nil
	}
	if useSQLite {
		db.DSN = defaultSQLiteDSN
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
