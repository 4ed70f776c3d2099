package config

import (
	"log"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	DBHost     string `env:"DB_HOST"`
	DBUser     string `env:"DB_USER"`
	DBPassword string `env:"DB_PASSWORD"`
	DBName     string `env:"DB_NAME"`
	DBPort     string `env:"DB_PORT" envDefault:"5432"`

	AppPort           string `env:"APP_PORT" envDefault:"8080"`
	AppEnv            string `env:"APP_ENV" envDefault:"development"`
	SecretKey         string `env:"SECRET_KEY"`
	InternalSecretKey string `env:"INTERNAL_SECRET_KEY"`
	MigrationsPath    string `env:"MIGRATIONS_PATH" envDefault:"./migrations"`

	Gateway   Gateway `envPrefix:"PORTONE_"`
	Lock      Lock
	Kafka     Kafka
	Reconcile Reconcile `envPrefix:"RECONCILE_"`
}

type Gateway struct {
	BaseURL      string        `env:"BASE_URL" envDefault:"https://api.iamport.kr"`
	ShopID       string        `env:"SHOP_ID"`
	APIKey       string        `env:"API_KEY"`
	APISecret    string        `env:"API_SECRET"`
	Timeout      time.Duration `env:"TIMEOUT" envDefault:"10s"`
	Prepare      bool          `env:"PREPARE" envDefault:"false"`
	WebhookToken string        `env:"WEBHOOK_TOKEN"`
}

type Lock struct {
	RedisAddr     string        `env:"REDIS_ADDR"`
	RedisPassword string        `env:"REDIS_PASSWORD"`
	TTL           time.Duration `env:"LOCK_TTL" envDefault:"10s"`
}

type Kafka struct {
	Brokers          []string `env:"KAFKA_BROKERS" envSeparator:","`
	OrderEventsTopic string   `env:"ORDER_EVENTS_TOPIC" envDefault:"storefront.orders"`
	FulfillmentTopic string   `env:"FULFILLMENT_TOPIC" envDefault:"storefront.fulfillment"`
	FulfillmentGroup string   `env:"FULFILLMENT_GROUP" envDefault:"storefront-fulfillment"`
}

type Reconcile struct {
	Interval time.Duration `env:"INTERVAL" envDefault:"0s"`
	MinAge   time.Duration `env:"MIN_AGE" envDefault:"2m"`
	Batch    int           `env:"BATCH" envDefault:"50"`
}

func LoadConfig() *Config {
	_ = godotenv.Load()

	cfg, err := Parse()
	if err != nil {
		log.Fatalf("Failed to parse config: %v", err)
	}

	if cfg.DBHost == "" {
		log.Fatal("Environment variables not loaded properly")
	}

	return cfg
}

// Parse reads the environment without touching .env files or exiting.
func Parse() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
