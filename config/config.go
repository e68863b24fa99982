package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/fansqz/go-debug-translator/constants"
	"gopkg.in/yaml.v3"
)

const (
	DefaultListen   = "127.0.0.1:9229"
	DefaultLogPath  = "/var/go-debug-translator.log"
	DefaultLogLevel = "info"
)

// AdapterConfig 调试适配器的配置
type AdapterConfig struct {
	// Address 适配器监听的tcp地址
	Address string                   `yaml:"address"`
	ID      string                   `yaml:"id"`
	Variant constants.AdapterVariant `yaml:"variant"`
	// Request launch 或者 attach
	Request constants.StartRequest `yaml:"request"`
	// Arguments 原样发送给适配器的 launch/attach 参数
	Arguments       map[string]interface{} `yaml:"arguments"`
	OwningProcessID int                    `yaml:"owning_process_id"`
}

type Config struct {
	Listen   string        `yaml:"listen"`
	LogPath  string        `yaml:"log_path"`
	LogLevel string        `yaml:"log_level"`
	Adapter  AdapterConfig `yaml:"adapter"`
}

// Default 默认配置
func Default() *Config {
	return &Config{
		Listen:   DefaultListen,
		LogPath:  DefaultLogPath,
		LogLevel: DefaultLogLevel,
		Adapter: AdapterConfig{
			Variant: constants.AdapterGeneric,
			Request: constants.LaunchRequest,
		},
	}
}

// Load 读取配置文件，path 为空时返回默认配置
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	if err := loadFromFile(path, cfg); err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}
	return cfg, nil
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	// 文件中的字段会覆盖默认值
	return yaml.Unmarshal(data, cfg)
}

// Validate 校验配置
func (c *Config) Validate() error {
	if c.Listen == "" {
		return fmt.Errorf("listen address cannot be empty")
	}
	if c.Adapter.Address == "" {
		return fmt.Errorf("adapter address cannot be empty")
	}
	switch c.Adapter.Request {
	case constants.LaunchRequest, constants.AttachRequest:
	default:
		return fmt.Errorf("unsupported adapter request %q", c.Adapter.Request)
	}
	if c.Adapter.Variant == "" {
		c.Adapter.Variant = constants.AdapterGeneric
	}
	if c.Adapter.ID == "" {
		c.Adapter.ID = string(c.Adapter.Variant)
	}
	return nil
}

// StartArguments launch/attach 请求的参数
func (a *AdapterConfig) StartArguments() (json.RawMessage, error) {
	if len(a.Arguments) == 0 {
		return json.RawMessage("{}"), nil
	}
	data, err := json.Marshal(a.Arguments)
	if err != nil {
		return nil, fmt.Errorf("marshal adapter arguments: %w", err)
	}
	return data, nil
}
