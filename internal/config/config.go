package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const envPrefix = "CHECKOUT"

// Sandbox credentials let the service boot locally; they are refused for the real gateway.
const (
	sandboxKeyID         = "rzp_test_sandbox"
	sandboxKeySecret     = "sandbox_key_secret"
	sandboxWebhookSecret = "sandbox_webhook_secret"
)

type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Log     LogConfig     `mapstructure:"log"`
	Store   StoreConfig   `mapstructure:"store"`
	MySQL   MySQLConfig   `mapstructure:"mysql"`
	Redis   RedisConfig   `mapstructure:"redis"`
	MongoDB MongoDBConfig `mapstructure:"mongodb"`
	Etcd    EtcdConfig    `mapstructure:"etcd"`
	Outbox  OutboxConfig  `mapstructure:"outbox"`
	Payment PaymentConfig `mapstructure:"payment"`
}

type ServerConfig struct {
	Name            string        `mapstructure:"name"`
	Env             string        `mapstructure:"env"`
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type LogConfig struct {
	Level       string   `mapstructure:"level"`
	Encoding    string   `mapstructure:"encoding"`
	OutputPaths []string `mapstructure:"output_paths"`
}

type StoreConfig struct {
	// Driver selects the order/catalog backend: "memory" or "mysql".
	Driver       string        `mapstructure:"driver"`
	SeedProducts []SeedProduct `mapstructure:"seed_products"`
}

// SeedProduct preloads the memory catalog for local runs.
type SeedProduct struct {
	ID            string   `mapstructure:"id"`
	Title         string   `mapstructure:"title"`
	Price         float64  `mapstructure:"price"`
	DiscountPrice *float64 `mapstructure:"discountprice"`
	Stock         int      `mapstructure:"stock"`
	Active        bool     `mapstructure:"isactive"`
}

type MySQLConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	Username        string        `mapstructure:"username"`
	Password        string        `mapstructure:"password"`
	Database        string        `mapstructure:"database"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
}

type RedisConfig struct {
	Addr      string        `mapstructure:"addr"`
	Password  string        `mapstructure:"password"`
	DB        int           `mapstructure:"db"`
	PoolSize  int           `mapstructure:"pool_size"`
	KeyPrefix string        `mapstructure:"key_prefix"`
	LedgerTTL time.Duration `mapstructure:"ledger_ttl"`
}

type MongoDBConfig struct {
	URI        string `mapstructure:"uri"`
	Database   string `mapstructure:"database"`
	Collection string `mapstructure:"collection"`
}

type EtcdConfig struct {
	Endpoints   []string      `mapstructure:"endpoints"`
	DialTimeout time.Duration `mapstructure:"dial_timeout"`
	Prefix      string        `mapstructure:"prefix"`
	LeaseTTL    int64         `mapstructure:"lease_ttl"`
}

// OutboxConfig sizes the in-process event bus feeding the audit trail.
type OutboxConfig struct {
	QueueSize      int           `mapstructure:"queue_size"`
	Concurrency    int           `mapstructure:"concurrency"`
	HandlerTimeout time.Duration `mapstructure:"handler_timeout"`
}

type PaymentConfig struct {
	// Driver selects the gateway client: "sandbox" or "razorpay".
	Driver          string        `mapstructure:"driver"`
	BaseURL         string        `mapstructure:"base_url"`
	KeyID           string        `mapstructure:"key_id"`
	KeySecret       string        `mapstructure:"key_secret"`
	WebhookSecret   string        `mapstructure:"webhook_secret"`
	SignatureHeader string        `mapstructure:"signature_header"`
	EventIDHeader   string        `mapstructure:"event_id_header"`
	DefaultCurrency string        `mapstructure:"default_currency"`
	FetchTimeout    time.Duration `mapstructure:"fetch_timeout"`
	CreateTimeout   time.Duration `mapstructure:"create_timeout"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.name", "checkout")
	v.SetDefault("server.env", "dev")
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.encoding", "json")
	v.SetDefault("log.output_paths", []string{"stdout"})

	v.SetDefault("store.driver", "memory")

	v.SetDefault("mysql.host", "127.0.0.1")
	v.SetDefault("mysql.port", 3306)
	v.SetDefault("mysql.username", "root")
	v.SetDefault("mysql.password", "")
	v.SetDefault("mysql.database", "shop")
	v.SetDefault("mysql.max_idle_conns", 5)
	v.SetDefault("mysql.max_open_conns", 20)
	v.SetDefault("mysql.conn_max_lifetime", time.Hour)
	v.SetDefault("mysql.auto_migrate", true)

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.pool_size", 10)
	v.SetDefault("redis.key_prefix", "checkout:webhook:")
	v.SetDefault("redis.ledger_ttl", 72*time.Hour)

	v.SetDefault("mongodb.uri", "")
	v.SetDefault("mongodb.database", "shop")
	v.SetDefault("mongodb.collection", "order_audit")

	v.SetDefault("etcd.endpoints", []string{})
	v.SetDefault("etcd.dial_timeout", 5*time.Second)
	v.SetDefault("etcd.prefix", "/services/")
	v.SetDefault("etcd.lease_ttl", 30)

	v.SetDefault("outbox.queue_size", 1024)
	v.SetDefault("outbox.concurrency", 8)
	v.SetDefault("outbox.handler_timeout", 30*time.Second)

	v.SetDefault("payment.driver", "sandbox")
	v.SetDefault("payment.base_url", "https://api.razorpay.com")
	v.SetDefault("payment.key_id", sandboxKeyID)
	v.SetDefault("payment.key_secret", sandboxKeySecret)
	v.SetDefault("payment.webhook_secret", sandboxWebhookSecret)
	v.SetDefault("payment.signature_header", "X-Razorpay-Signature")
	v.SetDefault("payment.event_id_header", "X-Razorpay-Event-Id")
	v.SetDefault("payment.default_currency", "INR")
	v.SetDefault("payment.fetch_timeout", 5*time.Second)
	v.SetDefault("payment.create_timeout", 10*time.Second)
}

// Load reads configuration from an optional YAML file, then applies CHECKOUT_* environment overrides.
// An empty path skips the file and relies on defaults and environment alone.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// Validate rejects combinations the service cannot start with.
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case "memory", "mysql":
	default:
		return fmt.Errorf("config: unknown store driver %q", c.Store.Driver)
	}
	switch c.Payment.Driver {
	case "sandbox":
	case "razorpay":
		if c.Payment.KeyID == "" || c.Payment.KeyID == sandboxKeyID ||
			c.Payment.KeySecret == "" || c.Payment.KeySecret == sandboxKeySecret {
			return errors.New("config: payment.key_id and payment.key_secret are required for razorpay")
		}
		if c.Payment.WebhookSecret == "" || c.Payment.WebhookSecret == sandboxWebhookSecret {
			return errors.New("config: payment.webhook_secret is required for razorpay")
		}
	default:
		return fmt.Errorf("config: unknown payment driver %q", c.Payment.Driver)
	}
	if c.Payment.FetchTimeout <= 0 {
		return errors.New("config: payment.fetch_timeout must be positive")
	}
	return nil
}

func (c *MySQLConfig) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
		c.Username, c.Password, c.Host, c.Port, c.Database)
}

func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
