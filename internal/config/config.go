package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type ExchangeConfig struct {
	Env          string `yaml:"env" env:"EXCHANGE_ENV" env-default:"local"`
	HTTPServer   `yaml:"http_server"`
	GRPCServer   `yaml:"grpc_server"`
	ExchangeDB   `yaml:"exchange_db"`
	LogConfig    `yaml:"log_config"`
	KafkaService `yaml:"kafka-service"`
	RedisCache   `yaml:"redis-cache"`
	Webhook      `yaml:"webhook"`
	Exchange     `yaml:"exchange"`
}

type HTTPServer struct {
	Host         string        `yaml:"host" env:"HTTP_HOST" env-default:"0.0.0.0"`
	Port         string        `yaml:"port" env:"HTTP_PORT" env-default:"8080"`
	ReadTimeout  time.Duration `yaml:"read_timeout" env-default:"5s"`
	WriteTimeout time.Duration `yaml:"write_timeout" env-default:"10s"`
}

type GRPCServer struct {
	Host string `yaml:"host" env:"GRPC_HOST" env-default:"0.0.0.0"`
	Port string `yaml:"port" env:"GRPC_PORT" env-default:"9090"`
}

type ExchangeDB struct {
	// Пустой DSN - хранилище в памяти (локальный запуск)
	Dsn            string `yaml:"dsn" env:"EXCHANGE_DB_DSN"`
	MigrationsPath string `yaml:"migrations_path" env:"EXCHANGE_MIGRATIONS_PATH"`
	MaxOpenConns   int    `yaml:"max_open_conns" env-default:"20"`
	MaxIdleConns   int    `yaml:"max_idle_conns" env-default:"5"`
}

type LogConfig struct {
	LogLevel  string `yaml:"log_level" env:"LOG_LEVEL" env-default:"info"`
	LogFormat string `yaml:"log_format" env:"LOG_FORMAT" env-default:"text"`
	LogOutput string `yaml:"log_output" env:"LOG_OUTPUT" env-default:"stdout"`
}

type KafkaService struct {
	Host  string `yaml:"host" env:"KAFKA_HOST"`
	Port  string `yaml:"port" env:"KAFKA_PORT"`
	Topic string `yaml:"topic" env:"KAFKA_TOPIC" env-default:"discoin-transactions"`
}

type RedisCache struct {
	Addr     string        `yaml:"addr" env:"REDIS_ADDR"`
	Password string        `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int           `yaml:"db" env:"REDIS_DB" env-default:"0"`
	TTL      time.Duration `yaml:"ttl" env-default:"30s"`
}

type Webhook struct {
	URL     string        `yaml:"url" env:"TRANSACTIONS_WEBHOOK"`
	Timeout time.Duration `yaml:"timeout" env-default:"5s"`
}

type Exchange struct {
	Window        time.Duration `yaml:"window" env:"EXCHANGE_WINDOW" env-default:"24h"`
	NotifyTimeout time.Duration `yaml:"notify_timeout" env-default:"10s"`
	// Только для локального запуска с хранилищем в памяти
	AutoVerify bool `yaml:"auto_verify" env:"EXCHANGE_AUTO_VERIFY"`
}

func (k KafkaService) Enabled() bool {
	return k.Host != ""
}

func (k KafkaService) Broker() string {
	return fmt.Sprintf("%s:%s", k.Host, k.Port)
}

func MustLoad() *ExchangeConfig {

	// Processing env config variable and file
	configPath := os.Getenv("EXCHANGE_CONFIG_PATH")

	if configPath == "" {
		log.Fatalf("EXCHANGE_CONFIG_PATH was not found\n")
	}

	cfg, err := Load(configPath)
	if err != nil {
		log.Fatalf("failed to read config file: %v", err)
	}

	return cfg
}

// Load reads the YAML file at path; environment variables override it.
func Load(path string) (*ExchangeConfig, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("failed to find config file: %w", err)
	}

	var cfg ExchangeConfig
	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
