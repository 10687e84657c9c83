package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config 应用配置，来源: config.yaml + 环境变量（HB_ 前缀）
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Log       LogConfig       `mapstructure:"log"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Checkout  CheckoutConfig  `mapstructure:"checkout"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Sentry    SentryConfig    `mapstructure:"sentry"`
	Trace     TraceConfig     `mapstructure:"trace"`
}

type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	Mode            string        `mapstructure:"mode"` // debug / release
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type DatabaseConfig struct {
	Driver   string `mapstructure:"driver"` // postgres / sqlite
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
	// sqlite 时使用，默认 :memory:
	Path string `mapstructure:"path"`
}

func (d DatabaseConfig) DSN() string {
	if d.Driver == "sqlite" {
		if d.Path == "" {
			return ":memory:"
		}
		return d.Path
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type LogConfig struct {
	Level    string `mapstructure:"level"`
	Encoding string `mapstructure:"encoding"`
}

type AuthConfig struct {
	JWTSecret string        `mapstructure:"jwt_secret"`
	TokenTTL  time.Duration `mapstructure:"token_ttl"`
}

// CheckoutConfig 结算管线的业务参数。
// 原始业务里价格容差在 0.1% 与 0.5% 之间摇摆过，最小消费是否因促销码豁免也改过，
// 这里统一做成配置，默认取后期更宽松的行为。
type CheckoutConfig struct {
	// 前后端价格允许的百分比偏差，只用于吸收前端展示层的浮点/舍入误差
	PriceTolerancePercent float64 `mapstructure:"price_tolerance_percent"`
	// 带促销码时是否豁免最小消费
	WaiveMinWithPromo bool `mapstructure:"waive_min_with_promo"`
	// 下单成功后的跳转地址
	RedirectURL string `mapstructure:"redirect_url"`
}

type RateLimitConfig struct {
	Enabled bool `mapstructure:"enabled"`
	// 每用户每窗口允许的请求数
	CheckoutPerMinute int `mapstructure:"checkout_per_minute"`
	PromoPerMinute    int `mapstructure:"promo_per_minute"`
	APIPerMinute      int `mapstructure:"api_per_minute"`
}

type SentryConfig struct {
	DSN         string  `mapstructure:"dsn"`
	Environment string  `mapstructure:"environment"`
	SampleRate  float64 `mapstructure:"sample_rate"`
}

type TraceConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Endpoint string `mapstructure:"endpoint"`
	Service  string `mapstructure:"service"`
}

// Load 读取配置，路径为空时按 ./config 下的 config.yaml 查找
func Load(paths ...string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	for _, p := range paths {
		v.AddConfigPath(p)
	}
	v.AddConfigPath("./config")
	v.AddConfigPath(".")

	v.SetEnvPrefix("HB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// 缺少配置文件时允许全部走默认值 + 环境变量
		var nf viper.ConfigFileNotFoundError
		if !errors.As(err, &nf) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.shutdown_timeout", "10s")

	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.name", "healthy_blend")
	v.SetDefault("database.sslmode", "disable")

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "localhost:6379")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.encoding", "json")

	v.SetDefault("auth.token_ttl", "24h")

	v.SetDefault("checkout.price_tolerance_percent", 0.5)
	v.SetDefault("checkout.waive_min_with_promo", true)
	v.SetDefault("checkout.redirect_url", "/order/")

	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.checkout_per_minute", 10)
	v.SetDefault("rate_limit.promo_per_minute", 10)
	v.SetDefault("rate_limit.api_per_minute", 30)

	v.SetDefault("trace.service", "healthy-blend")
}
