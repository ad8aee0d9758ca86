package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/fx"
)

var Module = fx.Module("config",
	fx.Provide(Load),
)

// Config holds application configuration.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string
	HTTPAddr    string

	LogLevel  string
	LogFormat string

	Gateway     GatewayConfig
	Chat        ChatConfig
	List        ListConfig
	Email       EmailConfig
	Fulfillment FulfillmentConfig
	Redis       RedisConfig
	Database    DatabaseConfig
	Worker      WorkerConfig
}

// GatewayConfig configures the hosted-checkout payment gateway.
type GatewayConfig struct {
	BaseURL   string
	SecretKey string
	Timeout   time.Duration
}

func (c GatewayConfig) Configured() bool {
	return c.SecretKey != ""
}

// ChatConfig configures the bot that posts payment alerts to the ops channel.
type ChatConfig struct {
	BaseURL  string
	BotToken string
	ChatID   string
}

func (c ChatConfig) Configured() bool {
	return c.BotToken != "" && c.ChatID != ""
}

// ListConfig configures the mailing-list subscriber upsert.
type ListConfig struct {
	BaseURL string
	APIKey  string
	FormID  string
}

func (c ListConfig) Configured() bool {
	return c.APIKey != "" && c.FormID != ""
}

// EmailConfig configures the transactional delivery email.
type EmailConfig struct {
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	From         string
	DownloadURL  string
	ProductTitle string
}

func (c EmailConfig) Configured() bool {
	return c.SMTPHost != "" && c.From != ""
}

// FulfillmentConfig configures the order-creation backend.
type FulfillmentConfig struct {
	BaseURL string
	APIKey  string
}

func (c FulfillmentConfig) Configured() bool {
	return c.BaseURL != "" && c.APIKey != ""
}

// RedisConfig selects the Redis-backed processed-reference store when Addr is set.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

func (c RedisConfig) Configured() bool {
	return c.Addr != ""
}

// DatabaseConfig selects the payment record store when DSN is set.
type DatabaseConfig struct {
	Driver string
	DSN    string
}

func (c DatabaseConfig) Configured() bool {
	return c.DSN != ""
}

// WorkerConfig bounds the webhook fan-out pool.
type WorkerConfig struct {
	Workers         int
	QueueSize       int
	DeliveryTimeout time.Duration
	JobTimeout      time.Duration
}

// Load loads configuration from environment variables and .env file.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		AppName:     getenv("APP_SERVICE", "payrelay"),
		AppVersion:  getenv("APP_VERSION", "0.1.0"),
		Environment: getenv("ENVIRONMENT", "development"),
		HTTPAddr:    getenv("HTTP_ADDR", ":8080"),
		LogLevel:    getenv("LOG_LEVEL", "info"),
		LogFormat:   getenv("LOG_FORMAT", "json"),
		Gateway: GatewayConfig{
			BaseURL:   strings.TrimRight(getenv("GATEWAY_BASE_URL", "https://api.paystack.co"), "/"),
			SecretKey: strings.TrimSpace(getenv("GATEWAY_SECRET_KEY", "")),
			Timeout:   getenvDuration("GATEWAY_TIMEOUT", 8*time.Second),
		},
		Chat: ChatConfig{
			BaseURL:  strings.TrimRight(getenv("CHAT_BASE_URL", "https://api.telegram.org"), "/"),
			BotToken: strings.TrimSpace(getenv("CHAT_BOT_TOKEN", "")),
			ChatID:   strings.TrimSpace(getenv("CHAT_CHAT_ID", "")),
		},
		List: ListConfig{
			BaseURL: strings.TrimRight(getenv("LIST_BASE_URL", "https://api.convertkit.com"), "/"),
			APIKey:  strings.TrimSpace(getenv("LIST_API_KEY", "")),
			FormID:  strings.TrimSpace(getenv("LIST_FORM_ID", "")),
		},
		Email: EmailConfig{
			SMTPHost:     getenv("SMTP_HOST", ""),
			SMTPPort:     getenvInt("SMTP_PORT", 587),
			SMTPUsername: getenv("SMTP_USERNAME", ""),
			SMTPPassword: getenv("SMTP_PASSWORD", ""),
			From:         getenv("SMTP_FROM", ""),
			DownloadURL:  getenv("COURSE_DOWNLOAD_URL", ""),
			ProductTitle: getenv("COURSE_TITLE", ""),
		},
		Fulfillment: FulfillmentConfig{
			BaseURL: strings.TrimRight(getenv("FULFILLMENT_BASE_URL", ""), "/"),
			APIKey:  strings.TrimSpace(getenv("FULFILLMENT_API_KEY", "")),
		},
		Redis: RedisConfig{
			Addr:     strings.TrimSpace(getenv("REDIS_ADDR", "")),
			Password: getenv("REDIS_PASSWORD", ""),
			DB:       getenvInt("REDIS_DB", 0),
		},
		Database: DatabaseConfig{
			Driver: strings.ToLower(getenv("DATABASE_DRIVER", "sqlite")),
			DSN:    strings.TrimSpace(getenv("DATABASE_DSN", "")),
		},
		Worker: WorkerConfig{
			Workers:         getenvInt("WORKER_COUNT", 4),
			QueueSize:       getenvInt("WORKER_QUEUE_SIZE", 256),
			DeliveryTimeout: getenvDuration("DELIVERY_TIMEOUT", 8*time.Second),
			JobTimeout:      getenvDuration("WORKER_JOB_TIMEOUT", 60*time.Second),
		},
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return def
	}
	return parsed
}

func getenvDuration(key string, def time.Duration) time.Duration {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return def
	}
	return parsed
}
