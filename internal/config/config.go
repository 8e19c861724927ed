package config

import (
	"os"
	"time"

	"github.com/go-playground/validator/v10"
)

type Config struct {
	Env string `validate:"required,oneof=development production"`

	Http Http

	Orders      Orders `validate:"required"`
	Idempotency Idempotency
	Events      Events
	Metrics     Metrics
}

// Http is only used by the RUN_LOCAL development server; on Lambda the
// API Gateway integration owns the listener.
type Http struct {
	Host string
	Port string `validate:"required"`
}

type Orders struct {
	Table string `validate:"required"`
}

// Idempotency is optional: an empty table name disables idempotent creates.
type Idempotency struct {
	Table     string
	TTLWindow time.Duration `validate:"gte=0"`
}

// Events is optional: an empty queue URL disables order event publishing.
type Events struct {
	QueueURL string `validate:"omitempty,url"`
}

type Metrics struct {
	Namespace string `validate:"required"`
}

func New() Config {
	return Config{
		Env: env("ENV", "development"),

		Http: Http{
			Host: env("HOST", ""),
			Port: env("PORT", "8080"),
		},

		Orders: Orders{
			Table: env("ORDERS_TABLE", ""),
		},

		Idempotency: Idempotency{
			Table:     env("IDEMPOTENCY_TABLE", ""),
			TTLWindow: envDuration("IDEMPOTENCY_TTL", 48*time.Hour),
		},

		Events: Events{
			QueueURL: env("ORDER_EVENTS_QUEUE_URL", ""),
		},

		Metrics: Metrics{
			Namespace: env("METRICS_NAMESPACE", "OrdersApi"),
		},
	}
}

func (c Config) Validate() error {
	validate := validator.New()
	return validate.Struct(c)
}

func env(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		d, err := time.ParseDuration(value)
		if err == nil {
			return d
		}
	}
	return fallback
}
