package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Webhook   WebhookConfig   `mapstructure:"webhook"`
	Sink      SinkConfig      `mapstructure:"sink"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
}

type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type WebhookConfig struct {
	Secret          string `mapstructure:"secret"`
	SignatureHeader string `mapstructure:"signature_header"`
	Path            string `mapstructure:"path"`
	MaxBodyBytes    int64  `mapstructure:"max_body_bytes"`
}

type SinkConfig struct {
	URL     string        `mapstructure:"url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type RateLimitConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	RedisURL string        `mapstructure:"redis_url"`
	Requests int           `mapstructure:"requests"`
	Window   time.Duration `mapstructure:"window"`
}

// Load reads .env (if present), then defaults, an optional YAML file and
// RELAY_* environment variables, in increasing order of precedence.
func Load(configPath string) (*Config, error) {
	// A missing .env is the normal case outside local development.
	_ = godotenv.Load()

	v := viper.New()

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.shutdown_timeout", "30s")
	v.SetDefault("webhook.secret", "")
	v.SetDefault("webhook.signature_header", "x-cc-webhook-signature")
	v.SetDefault("webhook.path", "/webhooks")
	v.SetDefault("webhook.max_body_bytes", 1<<20)
	v.SetDefault("sink.url", "")
	v.SetDefault("sink.timeout", "10s")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("ratelimit.enabled", false)
	v.SetDefault("ratelimit.redis_url", "redis://localhost:6379/0")
	v.SetDefault("ratelimit.requests", 600)
	v.SetDefault("ratelimit.window", "1m")

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/charge-relay")
	}

	v.SetEnvPrefix("RELAY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Names used by existing deployments.
	if err := v.BindEnv("webhook.secret", "RELAY_WEBHOOK_SECRET", "COMMERCE_WEBHOOK_SECRET"); err != nil {
		return nil, fmt.Errorf("failed to bind webhook secret: %w", err)
	}
	if err := v.BindEnv("sink.url", "RELAY_SINK_URL", "OPENCLAW_WEBHOOK_URL"); err != nil {
		return nil, fmt.Errorf("failed to bind sink url: %w", err)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// Warnings reports settings that leave the service running in a degraded
// mode. None of them prevent startup.
func (c Config) Warnings() []string {
	var warnings []string
	if strings.TrimSpace(c.Webhook.Secret) == "" {
		warnings = append(warnings, "webhook secret is not set; every webhook will be rejected with 401")
	}
	if strings.TrimSpace(c.Sink.URL) == "" {
		warnings = append(warnings, "sink url is not set; confirmed charges cannot be forwarded")
	}
	if c.Sink.Timeout <= 0 {
		warnings = append(warnings, "sink timeout is not positive; the forwarder default applies")
	}
	if c.RateLimit.Enabled && c.RateLimit.Requests <= 0 {
		warnings = append(warnings, "rate limiting enabled with a non-positive request budget")
	}
	return warnings
}

func (c Config) Addr() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}
