package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v2"
)

const (
	configDir         = "configs"
	configFilePathENV = "CONFIG_FILE"
	tokenTelegramENV  = "TELEGRAM_TOKEN"
	databaseDSN       = "DATABASE_DSN"

	defaultConfigFile = "values_local.yaml"
	DefaultFormula    = "CE.ltp + PE.ltp"
)

const (
	SourceWebsocket = "ws"
	SourceRedis     = "redis"
)

// Config ...
type Config struct {
	LogLevel string `yaml:"log_level"`

	Service struct {
		Host       string `yaml:"host"`
		PublicPort int    `yaml:"public_port"` // API + websocket push
		AdminPort  int    `yaml:"admin_port"`  // livez/readyz/healthz/metrics
	} `yaml:"service"`

	Feed struct {
		Source string `yaml:"source"` // ws | redis
		URL    string `yaml:"url"`
		// Кадр, который отправляем сразу после коннекта (если задан).
		Subscribe      string        `yaml:"subscribe"`
		PingInterval   time.Duration `yaml:"ping_interval"`
		ReconnectDelay time.Duration `yaml:"reconnect_delay"`
		Buffer         int           `yaml:"buffer"`

		RedisAddr    string `yaml:"redis_addr"`
		RedisChannel string `yaml:"redis_channel"`

		// LoginURL показывается, пока нет ни одной строки.
		LoginURL string `yaml:"login_url"`
	} `yaml:"feed"`

	Formula struct {
		Default string `yaml:"default"`
	} `yaml:"formula"`

	Telegram struct {
		Token  string `yaml:"token"`
		ChatID int64  `yaml:"chat_id"`
	} `yaml:"telegram"`

	DB      string `yaml:"db_dsn"`
	Archive struct {
		Schedule string `yaml:"schedule"` // cron spec, с секундами
	} `yaml:"archive"`

	Tracing struct {
		Enabled     bool   `yaml:"enabled"`
		Host        string `yaml:"host"`
		Port        int    `yaml:"port"`
		ServiceName string `yaml:"service_name"`
	} `yaml:"tracing"`
}

func defaults() Config {
	var c Config
	c.LogLevel = "info"
	c.Service.Host = "0.0.0.0"
	c.Service.PublicPort = 8081
	c.Service.AdminPort = 8080

	c.Feed.Source = SourceWebsocket
	c.Feed.URL = "ws://localhost:4000/ws"
	c.Feed.PingInterval = 20 * time.Second
	c.Feed.ReconnectDelay = time.Second
	c.Feed.Buffer = 1024
	c.Feed.RedisAddr = "localhost:6379"
	c.Feed.RedisChannel = "option_chain.updates"
	c.Feed.LoginURL = "http://localhost:4000/api/fyers/login"

	c.Formula.Default = DefaultFormula
	c.Archive.Schedule = "*/5 * * * * *"

	c.Tracing.Host = "localhost"
	c.Tracing.Port = 6831
	c.Tracing.ServiceName = "option_chain"
	return c
}

func NewConfig() (*Config, error) {
	_ = godotenv.Load()

	name := os.Getenv(configFilePathENV)
	explicit := name != ""
	if !explicit {
		name = defaultConfigFile
	}
	return Load(filepath.Join(configDir, name), explicit)
}

// Load читает yaml поверх дефолтов и применяет переменные окружения.
// Отсутствие файла считается ошибкой, только если он задан явно.
func Load(path string, required bool) (*Config, error) {
	config := defaults()

	file, err := os.Open(path)
	switch {
	case err == nil:
		defer func() {
			_ = file.Close()
		}()
		if err := yaml.NewDecoder(file).Decode(&config); err != nil {
			return nil, errors.Wrapf(err, "decode config file %s", path)
		}
	case os.IsNotExist(err) && !required:
	default:
		return nil, errors.Wrap(err, "open config file")
	}

	applyEnv(&config)

	if err := config.validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// applyEnv: FEED_URL, FEED_SOURCE, SERVICE_PUBLIC_PORT, ... (точка -> подчёркивание).
func applyEnv(c *Config) {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	str := func(key string, dst *string) {
		if s := v.GetString(key); s != "" {
			*dst = s
		}
	}
	num := func(key string, dst *int) {
		if v.IsSet(key) {
			if n := v.GetInt(key); n != 0 {
				*dst = n
			}
		}
	}
	dur := func(key string, dst *time.Duration) {
		if v.IsSet(key) {
			if d := v.GetDuration(key); d > 0 {
				*dst = d
			}
		}
	}

	str("log_level", &c.LogLevel)
	str("service.host", &c.Service.Host)
	num("service.public_port", &c.Service.PublicPort)
	num("service.admin_port", &c.Service.AdminPort)

	str("feed.source", &c.Feed.Source)
	str("feed.url", &c.Feed.URL)
	str("feed.subscribe", &c.Feed.Subscribe)
	dur("feed.ping_interval", &c.Feed.PingInterval)
	dur("feed.reconnect_delay", &c.Feed.ReconnectDelay)
	num("feed.buffer", &c.Feed.Buffer)
	str("feed.redis_addr", &c.Feed.RedisAddr)
	str("feed.redis_channel", &c.Feed.RedisChannel)
	str("feed.login_url", &c.Feed.LoginURL)

	str("formula.default", &c.Formula.Default)
	str("archive.schedule", &c.Archive.Schedule)

	if v.IsSet("tracing.enabled") {
		c.Tracing.Enabled = v.GetBool("tracing.enabled")
	}
	str("tracing.host", &c.Tracing.Host)
	num("tracing.port", &c.Tracing.Port)

	if v.IsSet("telegram.chat_id") {
		c.Telegram.ChatID = v.GetInt64("telegram.chat_id")
	}

	token := os.Getenv(tokenTelegramENV)
	if token != "" {
		c.Telegram.Token = token
	}

	dsn := os.Getenv(databaseDSN)
	if dsn != "" {
		c.DB = dsn
	}
}

func (c *Config) validate() error {
	switch c.Feed.Source {
	case SourceWebsocket:
		if c.Feed.URL == "" {
			return errors.New("feed.url is required for ws source")
		}
	case SourceRedis:
		if c.Feed.RedisAddr == "" || c.Feed.RedisChannel == "" {
			return errors.New("feed.redis_addr and feed.redis_channel are required for redis source")
		}
	default:
		return errors.Errorf("unknown feed.source %q", c.Feed.Source)
	}
	if c.Feed.Buffer <= 0 {
		return errors.New("feed.buffer must be positive")
	}
	return nil
}

// Бот поднимается только с токеном и чатом.
func (c *Config) TelegramEnabled() bool {
	return c.Telegram.Token != "" && c.Telegram.ChatID != 0
}

func (c *Config) ArchiveEnabled() bool { return c.DB != "" }
