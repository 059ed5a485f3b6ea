package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App     AppConfig     `mapstructure:"app"`
	Server  ServerConfig  `mapstructure:"server"`
	Log     LogConfig     `mapstructure:"log"`
	DB      DBConfig      `mapstructure:"db"`
	Cron    CronConfig    `mapstructure:"cron"`
	Ueeshop UeeshopConfig `mapstructure:"ueeshop"`

	OrderSync   OrderSyncConfig   `mapstructure:"order_sync"`
	ProductSync ProductSyncConfig `mapstructure:"product_sync"`
	Monitor     MonitorConfig     `mapstructure:"monitor"`
	Alert       AlertConfig       `mapstructure:"alert"`
}

type AppConfig struct {
	Env string `mapstructure:"env"`
}

type ServerConfig struct {
	HTTPAddr string `mapstructure:"http_addr"`
}

type LogConfig struct {
	Level             string `mapstructure:"level"`
	Encoding          string `mapstructure:"encoding"`
	Development       bool   `mapstructure:"development"`
	Sampling          bool   `mapstructure:"sampling"`
	DisableCaller     bool   `mapstructure:"disable_caller"`
	DisableStacktrace bool   `mapstructure:"disable_stacktrace"`
}

type DBConfig struct {
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
	Timezone        string        `mapstructure:"timezone"`
}

type CronConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	OrderSync   string `mapstructure:"order_sync"`
	ProductSync string `mapstructure:"product_sync"`
	Monitor     string `mapstructure:"monitor"`
}

// UeeshopConfig carries the vendor gateway credentials. Mock switches
// between the sandbox gateway and the production shop gateway.
type UeeshopConfig struct {
	Mock        bool          `mapstructure:"mock"`
	BaseURLMock string        `mapstructure:"base_url_mock"`
	BaseURLProd string        `mapstructure:"base_url_prod"`
	APIName     string        `mapstructure:"api_name"`
	Number      string        `mapstructure:"number"`
	Secret      string        `mapstructure:"secret"`
	APIFrom     string        `mapstructure:"api_from"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

func (c UeeshopConfig) BaseURL() string {
	if c.Mock {
		return c.BaseURLMock
	}
	return c.BaseURLProd
}

type OrderSyncConfig struct {
	SafetyBackSec int64  `mapstructure:"safety_back_sec"`
	PageSize      int    `mapstructure:"page_size"`
	OrderStatus   string `mapstructure:"order_status"`
}

type ProductSyncConfig struct {
	Enabled  bool `mapstructure:"enabled"`
	PageSize int  `mapstructure:"page_size"`
	MaxPages int  `mapstructure:"max_pages"`
}

type MonitorConfig struct {
	DelayThresholdSec  int64   `mapstructure:"delay_threshold_sec"`
	SampleSize         int     `mapstructure:"sample_size"`
	ErrorRateThreshold float64 `mapstructure:"error_rate_threshold"`
	MinErrorCount      int     `mapstructure:"min_error_count"`
}

type AlertConfig struct {
	WebhookURL string        `mapstructure:"webhook_url"`
	Recipients []string      `mapstructure:"recipients"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

func Load(path string, envOnly bool) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("UEE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.AutomaticEnv()
	v.SetDefault("app.env", "dev")
	v.SetDefault("server.http_addr", ":8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.encoding", "console")
	v.SetDefault("log.development", true)
	v.SetDefault("log.sampling", false)
	v.SetDefault("log.disable_caller", false)
	v.SetDefault("log.disable_stacktrace", false)
	v.SetDefault("db.max_open_conns", 20)
	v.SetDefault("db.max_idle_conns", 5)
	v.SetDefault("db.conn_max_lifetime", "30m")
	v.SetDefault("db.conn_max_idle_time", "5m")
	v.SetDefault("db.timezone", "UTC")
	v.SetDefault("cron.enabled", true)
	v.SetDefault("cron.order_sync", "@every 1m")
	v.SetDefault("cron.product_sync", "@every 6h")
	v.SetDefault("cron.monitor", "@every 5m")
	v.SetDefault("ueeshop.mock", true)
	v.SetDefault("ueeshop.base_url_mock", "https://youjewelry.free.beeceptor.com/gateway/")
	v.SetDefault("ueeshop.base_url_prod", "https://www.yousjewelry.com/gateway/")
	v.SetDefault("ueeshop.api_name", "openapi")
	v.SetDefault("ueeshop.number", "DEV_NUMBER")
	v.SetDefault("ueeshop.secret", "DEV_SECRET")
	v.SetDefault("ueeshop.api_from", "cloud")
	v.SetDefault("ueeshop.timeout", "15s")
	v.SetDefault("order_sync.safety_back_sec", 300)
	v.SetDefault("order_sync.page_size", 100)
	v.SetDefault("order_sync.order_status", "all")
	v.SetDefault("product_sync.enabled", true)
	v.SetDefault("product_sync.page_size", 100)
	v.SetDefault("product_sync.max_pages", 50)
	v.SetDefault("monitor.delay_threshold_sec", 600)
	v.SetDefault("monitor.sample_size", 50)
	v.SetDefault("monitor.error_rate_threshold", 0.5)
	v.SetDefault("monitor.min_error_count", 5)
	v.SetDefault("alert.webhook_url", "")
	v.SetDefault("alert.timeout", "5s")

	if !envOnly {
		if err := v.ReadInConfig(); err != nil {
			return Config{}, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}
