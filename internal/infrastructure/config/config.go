package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App        AppConfig
	Log        LogConfig
	HTTP       HTTPConfig
	JWT        JWTConfig
	Redis      RedisConfig
	Commission CommissionConfig
	Contact    ContactConfig
	Operators  OperatorsConfig
	Webhook    WebhookConfig
	Snapshot   SnapshotConfig
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
	Port string
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout or stderr
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	MaxHeaderBytes    int
	RateLimitEnabled  bool
	RateLimitRequests int
	RateLimitWindow   time.Duration
	TrustedProxies    []string
}

// JWTConfig holds participant session token settings
type JWTConfig struct {
	Secret          string
	TokenExpiration time.Duration
	Issuer          string
}

// RedisConfig holds Redis connection settings. Redis is optional: when
// disabled the contact cooldown store runs in memory.
type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

// CommissionConfig holds the platform commission settings. The
// percentage is configured as a decimal string ("0.10" = 10%) to avoid
// binary float drift in money math.
type CommissionConfig struct {
	Percent string
}

// ContactConfig holds callback queue settings
type ContactConfig struct {
	Cooldown     time.Duration
	DoneLimit    int
	SupportPhone string
}

// OperatorsConfig holds the static operator allow-list
type OperatorsConfig struct {
	AllowedIDs []string
}

// WebhookConfig holds the outbound notification transport settings.
// With no URL configured deliveries go to the log.
type WebhookConfig struct {
	URL     string
	Token   string
	Timeout time.Duration
}

// SnapshotConfig holds state snapshot settings
type SnapshotConfig struct {
	Enabled bool
	Path    string
}

// Load loads configuration from TOML file and environment variables
// Priority (highest to lowest):
// 1. Environment variables with FIXMARKET_ prefix (e.g., FIXMARKET_JWT_SECRET)
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("./backend")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults and env vars
	}

	v.SetEnvPrefix("FIXMARKET")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:       v.GetDuration("http.read_timeout"),
			WriteTimeout:      v.GetDuration("http.write_timeout"),
			IdleTimeout:       v.GetDuration("http.idle_timeout"),
			MaxHeaderBytes:    v.GetInt("http.max_header_bytes"),
			RateLimitEnabled:  v.GetBool("http.rate_limit_enabled"),
			RateLimitRequests: v.GetInt("http.rate_limit_requests"),
			RateLimitWindow:   v.GetDuration("http.rate_limit_window"),
			TrustedProxies:    v.GetStringSlice("http.trusted_proxies"),
		},
		JWT: JWTConfig{
			Secret:          v.GetString("jwt.secret"),
			TokenExpiration: v.GetDuration("jwt.token_expiration"),
			Issuer:          v.GetString("jwt.issuer"),
		},
		Redis: RedisConfig{
			Enabled:  v.GetBool("redis.enabled"),
			Host:     v.GetString("redis.host"),
			Port:     v.GetInt("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		Commission: CommissionConfig{
			Percent: v.GetString("commission.percent"),
		},
		Contact: ContactConfig{
			Cooldown:     v.GetDuration("contact.cooldown"),
			DoneLimit:    v.GetInt("contact.done_limit"),
			SupportPhone: v.GetString("contact.support_phone"),
		},
		Operators: OperatorsConfig{
			AllowedIDs: v.GetStringSlice("operators.allowed_ids"),
		},
		Webhook: WebhookConfig{
			URL:     v.GetString("webhook.url"),
			Token:   v.GetString("webhook.token"),
			Timeout: v.GetDuration("webhook.timeout"),
		},
		Snapshot: SnapshotConfig{
			Enabled: v.GetBool("snapshot.enabled"),
			Path:    v.GetString("snapshot.path"),
		},
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "fixmarket-backend"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "8080"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}
	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = 15 * time.Second
	}
	if cfg.HTTP.WriteTimeout == 0 {
		cfg.HTTP.WriteTimeout = 15 * time.Second
	}
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = 60 * time.Second
	}
	if cfg.HTTP.MaxHeaderBytes == 0 {
		cfg.HTTP.MaxHeaderBytes = 1 << 20 // 1MB
	}
	if cfg.HTTP.RateLimitRequests == 0 {
		cfg.HTTP.RateLimitRequests = 100
	}
	if cfg.HTTP.RateLimitWindow == 0 {
		cfg.HTTP.RateLimitWindow = time.Minute
	}
	if cfg.JWT.TokenExpiration == 0 {
		cfg.JWT.TokenExpiration = 24 * time.Hour
	}
	if cfg.JWT.Issuer == "" {
		cfg.JWT.Issuer = "fixmarket-backend"
	}
	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
	if cfg.Commission.Percent == "" {
		cfg.Commission.Percent = "0.10"
	}
	if cfg.Contact.Cooldown == 0 {
		cfg.Contact.Cooldown = 300 * time.Second
	}
	if cfg.Contact.DoneLimit == 0 {
		cfg.Contact.DoneLimit = 20
	}
	if cfg.Webhook.Timeout == 0 {
		cfg.Webhook.Timeout = 10 * time.Second
	}
	if cfg.Snapshot.Path == "" {
		cfg.Snapshot.Path = "fixmarket.db"
	}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	if _, err := c.CommissionPercent(); err != nil {
		return fmt.Errorf("commission.percent is not a valid decimal: %w", err)
	}
	pct, _ := c.CommissionPercent()
	if pct.IsNegative() {
		return fmt.Errorf("commission.percent cannot be negative")
	}
	if c.Contact.Cooldown < 0 {
		return fmt.Errorf("contact.cooldown cannot be negative")
	}
	if c.Contact.DoneLimit < 0 {
		return fmt.Errorf("contact.done_limit cannot be negative")
	}

	if c.App.Env == "production" {
		if c.JWT.Secret == "" {
			return fmt.Errorf("jwt.secret is required in production")
		}
		if len(c.JWT.Secret) < 32 {
			return fmt.Errorf("jwt.secret must be at least 32 characters in production")
		}
		if len(c.Operators.AllowedIDs) == 0 {
			return fmt.Errorf("operators.allowed_ids is required in production")
		}
	}

	return nil
}

// CommissionPercent parses the configured commission percentage
func (c *Config) CommissionPercent() (decimal.Decimal, error) {
	return decimal.NewFromString(c.Commission.Percent)
}

// Addr returns the Redis connection address
func (r *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}
