package config

import (
	"errors"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type API struct {
	BaseURL string `yaml:"baseUrl"` // http://127.0.0.1:8000/api
}

type WS struct {
	BaseURL string `yaml:"baseUrl"` // ws://127.0.0.1:8000/ws
}

type Auth struct {
	Token     string `yaml:"token"`     // access token, подставляется и в REST, и в ws-query
	DevSecret string `yaml:"devSecret"` // если token пуст — подписываем dev-токен сами
}

type Logging struct {
	Env       string `yaml:"env"`       // dev|prod
	Service   string `yaml:"service"`   // chat-client
	Version   string `yaml:"version"`   // v0.1.0
	Backend   string `yaml:"backend"`   // std|zap
	AddSource bool   `yaml:"addSource"` // false|true
	Debug     bool   `yaml:"debug"`     // false|true
}

type Config struct {
	API     API     `yaml:"api"`
	WS      WS      `yaml:"ws"`
	Auth    Auth    `yaml:"auth"`
	Logging Logging `yaml:"logging"`
}

func LoadConfig() (*Config, error) {
	// .env не обязателен, читаем по возможности
	_ = godotenv.Load()

	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "./config/config.yaml"
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	if tok := os.Getenv("CHAT_ACCESS_TOKEN"); tok != "" {
		cfg.Auth.Token = tok
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.API.BaseURL == "" {
		return errors.New("api.baseUrl is required")
	}
	if c.WS.BaseURL == "" {
		return errors.New("ws.baseUrl is required")
	}
	c.API.BaseURL = strings.TrimRight(c.API.BaseURL, "/")
	c.WS.BaseURL = strings.TrimRight(c.WS.BaseURL, "/")
	// установка дефолтов, если значения не указаны
	if c.Logging.Service == "" {
		c.Logging.Service = "chat-client"
	}
	if c.Logging.Env == "" {
		c.Logging.Env = "dev"
	}
	if c.Logging.Version == "" {
		c.Logging.Version = "v0.1.0"
	}
	if c.Logging.Backend == "" {
		c.Logging.Backend = "std"
	}
	return nil
}
