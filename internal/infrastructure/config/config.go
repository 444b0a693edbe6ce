package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App        AppConfig        `mapstructure:"app"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Log        LogConfig        `mapstructure:"log"`
	HTTP       HTTPConfig       `mapstructure:"http"`
	Contentful ContentfulConfig `mapstructure:"contentful"`
	Scheduler  SchedulerConfig  `mapstructure:"scheduler"`
	Telemetry  TelemetryConfig  `mapstructure:"telemetry"`
	Auth       AuthConfig       `mapstructure:"auth"`
	Storage    StorageConfig    `mapstructure:"storage"`
	Report     ReportConfig     `mapstructure:"report"`
	Swagger    SwaggerConfig    `mapstructure:"swagger"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // json, console
	Output string `mapstructure:"output"` // stdout, stderr, or file path
}

type AppConfig struct {
	Name string `mapstructure:"name"`
	Env  string `mapstructure:"env"`
	Port string `mapstructure:"port"`
}

// DatabaseConfig holds Postgres connection and pool settings
type DatabaseConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	DBName          string `mapstructure:"dbname"`
	SSLMode         string `mapstructure:"sslmode"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`  // minutes
	ConnMaxIdleTime int    `mapstructure:"conn_max_idle_time"` // minutes
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type HTTPConfig struct {
	ReadTimeout      time.Duration `mapstructure:"read_timeout"`
	WriteTimeout     time.Duration `mapstructure:"write_timeout"`
	IdleTimeout      time.Duration `mapstructure:"idle_timeout"`
	MaxHeaderBytes   int           `mapstructure:"max_header_bytes"`
	MaxBodySize      int64         `mapstructure:"max_body_size"`
	CORSAllowOrigins []string      `mapstructure:"cors_allow_origins"`
	CORSAllowMethods []string      `mapstructure:"cors_allow_methods"`
	CORSAllowHeaders []string      `mapstructure:"cors_allow_headers"`
	TrustedProxies   []string      `mapstructure:"trusted_proxies"`
}

// ContentfulConfig locates the upstream product catalog
type ContentfulConfig struct {
	BaseURL     string        `mapstructure:"base_url"`
	SpaceID     string        `mapstructure:"space_id"`
	AccessToken string        `mapstructure:"access_token"`
	Environment string        `mapstructure:"environment"`
	ContentType string        `mapstructure:"content_type"`
	PageSize    int           `mapstructure:"page_size"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

type SchedulerConfig struct {
	Enabled           bool          `mapstructure:"enabled"`
	SyncCronSchedule  string        `mapstructure:"sync_cron_schedule"`
	CheckInterval     time.Duration `mapstructure:"check_interval"`
	MaxConcurrentJobs int           `mapstructure:"max_concurrent_jobs"`
	JobTimeout        time.Duration `mapstructure:"job_timeout"`
	RetryAttempts     int           `mapstructure:"retry_attempts"`
	RetryDelay        time.Duration `mapstructure:"retry_delay"`
}

type TelemetryConfig struct {
	Enabled               bool          `mapstructure:"enabled"`
	CollectorEndpoint     string        `mapstructure:"collector_endpoint"`
	SamplingRatio         float64       `mapstructure:"sampling_ratio"`
	ServiceName           string        `mapstructure:"service_name"`
	Insecure              bool          `mapstructure:"insecure"`
	MetricsEnabled        bool          `mapstructure:"metrics_enabled"`
	LogsEnabled           bool          `mapstructure:"logs_enabled"`
	ProfilingEnabled      bool          `mapstructure:"profiling_enabled"`
	PyroscopeAddress      string        `mapstructure:"pyroscope_address"`
	PyroscopeUser         string        `mapstructure:"pyroscope_user"`
	PyroscopePassword     string        `mapstructure:"pyroscope_password"`
	MetricsExportInterval time.Duration `mapstructure:"metrics_export_interval"`
	DBTraceEnabled        bool          `mapstructure:"db_trace_enabled"`
	DBSlowQueryThresh     time.Duration `mapstructure:"db_slow_query_threshold"`
}

// AuthConfig verifies bearer tokens issued elsewhere. An empty secret
// disables verification.
type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret"`
	Issuer    string `mapstructure:"issuer"`
}

// StorageConfig points at the S3-compatible bucket sync snapshots go to
type StorageConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	Endpoint       string `mapstructure:"endpoint"`
	Region         string `mapstructure:"region"`
	Bucket         string `mapstructure:"bucket"`
	AccessKey      string `mapstructure:"access_key"`
	SecretKey      string `mapstructure:"secret_key"`
	UseSSL         bool   `mapstructure:"use_ssl"`
	UsePathStyle   bool   `mapstructure:"use_path_style"`
	SnapshotPrefix string `mapstructure:"snapshot_prefix"`
}

type ReportConfig struct {
	CacheEnabled bool          `mapstructure:"cache_enabled"`
	CacheTTL     time.Duration `mapstructure:"cache_ttl"`
}

type SwaggerConfig struct {
	Enabled bool `mapstructure:"enabled"`
	// AllowedIPs restricts the docs to these IPs or CIDRs; empty allows all
	AllowedIPs []string `mapstructure:"allowed_ips"`
}

// defaults registers every key; AutomaticEnv only reaches keys viper knows
var defaults = map[string]any{
	"app.name": "catalog-sync",
	"app.env":  "development",
	"app.port": "8080",

	"database.host":               "localhost",
	"database.port":               5432,
	"database.user":               "postgres",
	"database.password":           "",
	"database.dbname":             "catalog",
	"database.sslmode":            "disable",
	"database.max_open_conns":     25,
	"database.max_idle_conns":     5,
	"database.conn_max_lifetime":  60,
	"database.conn_max_idle_time": 30,

	"redis.enabled":  false,
	"redis.host":     "localhost",
	"redis.port":     6379,
	"redis.password": "",
	"redis.db":       0,

	"log.level":  "info",
	"log.format": "console",
	"log.output": "stdout",

	"http.read_timeout": 15 * time.Second,
	// a synchronous sync request waits for the whole sweep
	"http.write_timeout":      5 * time.Minute,
	"http.idle_timeout":       60 * time.Second,
	"http.max_header_bytes":   1 << 20,
	"http.max_body_size":      1 << 20,
	"http.cors_allow_origins": []string{},
	"http.cors_allow_methods": []string{"GET", "POST", "DELETE", "OPTIONS"},
	"http.cors_allow_headers": []string{"Content-Type", "Authorization", "X-Request-ID"},
	"http.trusted_proxies":    []string{},

	"contentful.base_url":     "https://cdn.contentful.com",
	"contentful.space_id":     "",
	"contentful.access_token": "",
	"contentful.environment":  "master",
	"contentful.content_type": "product",
	"contentful.page_size":    1000,
	"contentful.timeout":      30 * time.Second,

	"scheduler.enabled":             true,
	"scheduler.sync_cron_schedule":  "0 * * * *",
	"scheduler.check_interval":      30 * time.Second,
	"scheduler.max_concurrent_jobs": 2,
	"scheduler.job_timeout":         30 * time.Minute,
	// failed sweeps are surfaced, not retried
	"scheduler.retry_attempts": 0,
	"scheduler.retry_delay":    5 * time.Minute,

	"telemetry.enabled":                 false,
	"telemetry.collector_endpoint":      "localhost:4317",
	"telemetry.sampling_ratio":          1.0,
	"telemetry.service_name":            "catalog-sync",
	"telemetry.insecure":                false,
	"telemetry.metrics_enabled":         false,
	"telemetry.logs_enabled":            false,
	"telemetry.profiling_enabled":       false,
	"telemetry.pyroscope_address":       "http://localhost:4040",
	"telemetry.pyroscope_user":          "",
	"telemetry.pyroscope_password":      "",
	"telemetry.metrics_export_interval": 60 * time.Second,
	"telemetry.db_trace_enabled":        false,
	"telemetry.db_slow_query_threshold": 200 * time.Millisecond,

	"auth.jwt_secret": "",
	"auth.issuer":     "",

	"storage.enabled":         false,
	"storage.endpoint":        "",
	"storage.region":          "us-east-1",
	"storage.bucket":          "",
	"storage.access_key":      "",
	"storage.secret_key":      "",
	"storage.use_ssl":         false,
	"storage.use_path_style":  false,
	"storage.snapshot_prefix": "snapshots/",

	"report.cache_enabled": false,
	"report.cache_ttl":     5 * time.Minute,

	"swagger.enabled":     true,
	"swagger.allowed_ips": []string{},
}

// legacyEnv lists unprefixed variable names earlier deployments used.
// The CATALOG_ name still wins when both are set.
var legacyEnv = map[string]string{
	"contentful.space_id":     "CONTENTFUL_SPACE_ID",
	"contentful.access_token": "CONTENTFUL_ACCESS_TOKEN",
	"contentful.environment":  "CONTENTFUL_ENVIRONMENT",
	"contentful.content_type": "CONTENTFUL_CONTENT_TYPE",
}

const envPrefix = "CATALOG"

// Load reads configuration. Sources, highest priority first:
// CATALOG_* environment variables (CATALOG_DATABASE_PASSWORD for
// database.password), variables from an optional .env file, config.toml
// in . or /app, then the built-in defaults.
func Load() (*Config, error) {
	if err := loadDotEnv(".env"); err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("/app")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	for key, val := range defaults {
		v.SetDefault(key, val)
	}
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, legacy := range legacyEnv {
		prefixed := envPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		_ = v.BindEnv(key, prefixed, legacy)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// loadDotEnv exports variables from an optional dotenv file. Variables
// already in the environment are left alone.
func loadDotEnv(path string) error {
	err := godotenv.Load(path)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("read %s: %w", path, err)
}

func (c *Config) validate() error {
	db := c.Database
	switch {
	case db.MaxOpenConns <= 0:
		return errors.New("database.max_open_conns must be positive")
	case db.MaxIdleConns < 0:
		return errors.New("database.max_idle_conns cannot be negative")
	case db.MaxIdleConns > db.MaxOpenConns:
		return fmt.Errorf("database.max_idle_conns (%d) cannot exceed database.max_open_conns (%d)",
			db.MaxIdleConns, db.MaxOpenConns)
	case c.Contentful.PageSize < 1 || c.Contentful.PageSize > 1000:
		return fmt.Errorf("contentful.page_size must be between 1 and 1000, got %d", c.Contentful.PageSize)
	case c.Scheduler.MaxConcurrentJobs < 1:
		return errors.New("scheduler.max_concurrent_jobs must be positive")
	case c.Scheduler.RetryAttempts < 0:
		return errors.New("scheduler.retry_attempts cannot be negative")
	// the trigger fires only on a tick inside the matching minute
	case c.Scheduler.CheckInterval < 0 || c.Scheduler.CheckInterval > time.Minute:
		return fmt.Errorf("scheduler.check_interval must be between 0 and 1m, got %s", c.Scheduler.CheckInterval)
	case c.Report.CacheEnabled && !c.Redis.Enabled:
		return errors.New("report.cache_enabled requires redis.enabled")
	case c.Storage.Enabled && c.Storage.Bucket == "":
		return errors.New("storage.bucket is required when storage is enabled")
	case c.Telemetry.SamplingRatio < 0 || c.Telemetry.SamplingRatio > 1:
		return fmt.Errorf("telemetry.sampling_ratio must be between 0.0 and 1.0, got %f", c.Telemetry.SamplingRatio)
	}
	if c.App.Env == "production" {
		return c.validateProduction()
	}
	return nil
}

func (c *Config) validateProduction() error {
	switch {
	case c.Database.Password == "":
		return errors.New("database.password is required in production")
	case c.Database.SSLMode == "disable":
		return errors.New("database.sslmode cannot be 'disable' in production")
	case c.Auth.JWTSecret != "" && len(c.Auth.JWTSecret) < 32:
		return errors.New("auth.jwt_secret must be at least 32 characters in production")
	case slices.Contains(c.HTTP.CORSAllowOrigins, "*"):
		return errors.New("http.cors_allow_origins cannot be '*' in production")
	}
	return nil
}

// DSN is the postgres:// URL for the database, with user info escaped
func (d *DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:     d.DBName,
		RawQuery: url.Values{"sslmode": {d.SSLMode}}.Encode(),
	}
	return u.String()
}

// Addr returns host:port of the Redis server
func (r *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}
