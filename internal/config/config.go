package config

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"

	"github.com/petabencana/cap-feed-service/internal/domain"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	KafkaBrokers     []string
	KafkaSourceTopic string
	KafkaSinkTopic   string
	KafkaGroupID     string
	HTTPAddr         string
	LogLevel         string
	LogFormat        string
	ShutdownTimeout  time.Duration

	BatchSize          int
	BatchFlushInterval time.Duration

	// CAP document settings.
	Timezone      string
	DefaultExpiry time.Duration
	Sender        string
	SenderName    string
	Web           string
	DataURL       string
	Workers       int
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	batchSize, err := sharedcfg.ParseBatchSize()
	if err != nil {
		return nil, err
	}

	flushInterval, err := sharedcfg.ParseBatchFlushInterval()
	if err != nil {
		return nil, err
	}

	expiry, err := parseExpirySeconds()
	if err != nil {
		return nil, err
	}

	workers, err := parseWorkers()
	if err != nil {
		return nil, err
	}

	tpl := domain.DefaultTemplates()
	cfg := &Config{
		KafkaBrokers:       sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaSourceTopic:   sharedcfg.EnvOrDefault("KAFKA_SOURCE_TOPIC", "flood-features"),
		KafkaSinkTopic:     sharedcfg.EnvOrDefault("KAFKA_SINK_TOPIC", "cap-feeds"),
		KafkaGroupID:       sharedcfg.EnvOrDefault("KAFKA_GROUP_ID", "cap-feed-service"),
		HTTPAddr:           sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:           sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:          sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout:    shutdownTimeout,
		BatchSize:          batchSize,
		BatchFlushInterval: flushInterval,

		Timezone:      sharedcfg.EnvOrDefault("CAP_TIMEZONE", "Asia/Jakarta"),
		DefaultExpiry: expiry,
		Sender:        sharedcfg.EnvOrDefault("CAP_SENDER", tpl.Sender),
		SenderName:    sharedcfg.EnvOrDefault("CAP_SENDER_NAME", tpl.SenderName),
		Web:           sharedcfg.EnvOrDefault("CAP_WEB", tpl.Web),
		DataURL:       sharedcfg.EnvOrDefault("CAP_DATA_URL", tpl.DataURL),
		Workers:       workers,
	}

	if len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_BROKERS is required")
	}
	if cfg.KafkaSourceTopic == "" {
		return nil, errors.New("KAFKA_SOURCE_TOPIC is required")
	}
	if cfg.KafkaSinkTopic == "" {
		return nil, errors.New("KAFKA_SINK_TOPIC is required")
	}
	if cfg.DataURL == "" {
		return nil, errors.New("CAP_DATA_URL is required")
	}

	return cfg, nil
}

// Settings resolves the CAP portion of the config into domain settings.
func (c *Config) Settings() (domain.Settings, error) {
	tpl := domain.DefaultTemplates()
	tpl.Sender = c.Sender
	tpl.SenderName = c.SenderName
	tpl.Web = c.Web
	tpl.DataURL = c.DataURL

	s, err := domain.NewSettings(c.Timezone, c.DefaultExpiry, tpl)
	if err != nil {
		return domain.Settings{}, fmt.Errorf("invalid CAP_TIMEZONE or CAP_DEFAULT_EXPIRE_SECONDS: %w", err)
	}
	return s, nil
}

func parseExpirySeconds() (time.Duration, error) {
	s := sharedcfg.EnvOrDefault("CAP_DEFAULT_EXPIRE_SECONDS", "21600")
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid CAP_DEFAULT_EXPIRE_SECONDS %q: must be a positive integer", s)
	}
	return time.Duration(n) * time.Second, nil
}

func parseWorkers() (int, error) {
	s := sharedcfg.EnvOrDefault("CAP_WORKERS", "1")
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 || n > 64 {
		return 0, fmt.Errorf("invalid CAP_WORKERS %q: must be between 1 and 64", s)
	}
	return n, nil
}
