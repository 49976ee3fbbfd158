package config

import (
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	NotifierLog   = "log"
	NotifierSES   = "ses"
	NotifierKafka = "kafka"
)

type Config struct {
	AppPort  string `mapstructure:"app_port"`
	LogLevel string `mapstructure:"log_level"`
	// LogFormat is "json" or "console".
	LogFormat string `mapstructure:"log_format"`

	MySQLHost string `mapstructure:"mysql_host"`
	MySQLPort string `mapstructure:"mysql_port"`
	MySQLDB   string `mapstructure:"mysql_db"`
	MySQLUser string `mapstructure:"mysql_user"`
	MySQLPass string `mapstructure:"mysql_pass"`

	RedisAddr     string `mapstructure:"redis_addr"`
	RedisPassword string `mapstructure:"redis_password"`
	RedisDB       int    `mapstructure:"redis_db"`

	IdempTTLSecs int `mapstructure:"idempotency_ttl_seconds"`

	MinioEndpoint  string `mapstructure:"minio_endpoint"`
	MinioAccessKey string `mapstructure:"minio_access_key"`
	MinioSecretKey string `mapstructure:"minio_secret_key"`
	MinioBucket    string `mapstructure:"minio_bucket"`
	MinioUseSSL    bool   `mapstructure:"minio_use_ssl"`
	MaxUploadBytes int64  `mapstructure:"max_upload_bytes"`

	Notifier   string `mapstructure:"notifier"`
	AdminInbox string `mapstructure:"admin_inbox"`
	SESRegion  string `mapstructure:"ses_region"`
	SESFrom    string `mapstructure:"ses_from"`
	// KafkaBrokers is comma separated.
	KafkaBrokers string `mapstructure:"kafka_brokers"`
	KafkaTopic   string `mapstructure:"kafka_topic"`
}

var defaults = map[string]any{
	"app_port":                "8080",
	"log_level":               "info",
	"log_format":              "json",
	"mysql_host":              "mysql",
	"mysql_port":              "3306",
	"mysql_db":                "backoffice",
	"mysql_user":              "backoffice",
	"mysql_pass":              "backoffice",
	"redis_addr":              "redis:6379",
	"redis_password":          "",
	"redis_db":                0,
	"idempotency_ttl_seconds": 300,
	"minio_endpoint":          "minio:9000",
	"minio_access_key":        "",
	"minio_secret_key":        "",
	"minio_bucket":            "loan-documents",
	"minio_use_ssl":           false,
	"max_upload_bytes":        10 << 20,
	"notifier":                NotifierLog,
	"admin_inbox":             "",
	"ses_region":              "ap-southeast-1",
	"ses_from":                "",
	"kafka_brokers":           "kafka:9092",
	"kafka_topic":             "loan.notifications",
}

// Load reads .env, an optional configs/config.yaml and the environment, in
// increasing precedence. Env keys are the upper-cased mapstructure names.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return load(viper.New())
}

func load(v *viper.Viper) (*Config, error) {
	for k, d := range defaults {
		v.SetDefault(k, d)
	}
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var nf viper.ConfigFileNotFoundError
		if !errors.As(err, &nf) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}
	v.AutomaticEnv()

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &c, nil
}

func (c *Config) Validate() error {
	if c.MySQLHost == "" || c.MySQLPort == "" || c.MySQLDB == "" || c.MySQLUser == "" {
		return errors.New("missing MySQL config (MYSQL_HOST/PORT/DB/USER)")
	}
	if _, err := net.LookupPort("tcp", c.MySQLPort); err != nil {
		return fmt.Errorf("invalid MYSQL_PORT %q: %w", c.MySQLPort, err)
	}
	if c.AppPort == "" {
		return errors.New("missing APP_PORT")
	}
	if c.RedisAddr == "" {
		return errors.New("missing REDIS_ADDR")
	}
	if c.MinioEndpoint == "" || c.MinioBucket == "" {
		return errors.New("missing MinIO config (MINIO_ENDPOINT/BUCKET)")
	}
	switch c.Notifier {
	case NotifierLog:
	case NotifierSES:
		if c.SESFrom == "" || c.SESRegion == "" {
			return errors.New("notifier ses requires SES_FROM and SES_REGION")
		}
	case NotifierKafka:
		if len(c.Brokers()) == 0 || c.KafkaTopic == "" {
			return errors.New("notifier kafka requires KAFKA_BROKERS and KAFKA_TOPIC")
		}
	default:
		return fmt.Errorf("unknown NOTIFIER %q", c.Notifier)
	}
	if c.IdempTTLSecs <= 0 {
		return errors.New("IDEMPOTENCY_TTL_SECONDS must be positive")
	}
	return nil
}

func (c *Config) mysqlAddr() string { return net.JoinHostPort(c.MySQLHost, c.MySQLPort) }

func (c *Config) MySQLDSN() string {
	// parseTime is needed for DATETIME columns
	return fmt.Sprintf("%s:%s@tcp(%s)/%s?parseTime=true&charset=utf8mb4&loc=UTC",
		c.MySQLUser, c.MySQLPass, c.mysqlAddr(), c.MySQLDB)
}

func (c *Config) IdempotencyTTL() time.Duration {
	return time.Duration(c.IdempTTLSecs) * time.Second
}

func (c *Config) Brokers() []string {
	var out []string
	for _, b := range strings.Split(c.KafkaBrokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}
