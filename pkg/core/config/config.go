package config

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Config holds the complete application configuration
type Config struct {
	General GeneralConfig `toml:"general" yaml:"general"`
	Shell   ShellConfig   `toml:"shell" yaml:"shell"`
	Server  ServerConfig  `toml:"server" yaml:"server"`
	GRPC    GRPCConfig    `toml:"grpc" yaml:"grpc"`
}

// GeneralConfig holds general application settings
type GeneralConfig struct {
	Name      string `toml:"name" yaml:"name" env:"NUCMD_NAME"`
	DataDir   string `toml:"data_dir" yaml:"data_dir" env:"NUCMD_DATA_DIR"`
	LogLevel  string `toml:"log_level" yaml:"log_level" env:"NUCMD_LOG_LEVEL"`
	LogFormat string `toml:"log_format" yaml:"log_format" env:"NUCMD_LOG_FORMAT"`
	LogFile   string `toml:"log_file" yaml:"log_file" env:"NUCMD_LOG_FILE"`
}

// ShellConfig holds interactive shell settings
type ShellConfig struct {
	Prompt       string `toml:"prompt" yaml:"prompt" env:"NUCMD_PROMPT"`
	HistoryPath  string `toml:"history_path" yaml:"history_path" env:"NUCMD_HISTORY_PATH"`
	HistoryLimit int    `toml:"history_limit" yaml:"history_limit" env:"NUCMD_HISTORY_LIMIT"`
	ScriptDir    string `toml:"script_dir" yaml:"script_dir" env:"NUCMD_SCRIPT_DIR"`
	NamePrefix   string `toml:"name_prefix" yaml:"name_prefix" env:"NUCMD_NAME_PREFIX"`
}

// ServerConfig holds websocket communicator settings
type ServerConfig struct {
	Host           string   `toml:"host" yaml:"host" env:"NUCMD_WS_HOST"`
	Port           int      `toml:"port" yaml:"port" env:"NUCMD_WS_PORT"`
	Path           string   `toml:"path" yaml:"path" env:"NUCMD_WS_PATH"`
	ReadTimeout    Duration `toml:"read_timeout" yaml:"read_timeout" env:"NUCMD_WS_READ_TIMEOUT"`
	WriteTimeout   Duration `toml:"write_timeout" yaml:"write_timeout" env:"NUCMD_WS_WRITE_TIMEOUT"`
	PingInterval   Duration `toml:"ping_interval" yaml:"ping_interval" env:"NUCMD_WS_PING_INTERVAL"`
	AllowedOrigins []string `toml:"allowed_origins" yaml:"allowed_origins" env:"NUCMD_WS_ALLOWED_ORIGINS"`
}

// GRPCConfig holds gRPC command service settings
type GRPCConfig struct {
	Host             string   `toml:"host" yaml:"host" env:"NUCMD_GRPC_HOST"`
	Port             int      `toml:"port" yaml:"port" env:"NUCMD_GRPC_PORT"`
	EnableReflection bool     `toml:"enable_reflection" yaml:"enable_reflection" env:"NUCMD_GRPC_REFLECTION"`
	KeepaliveTime    Duration `toml:"keepalive_time" yaml:"keepalive_time" env:"NUCMD_GRPC_KEEPALIVE_TIME"`
	KeepaliveTimeout Duration `toml:"keepalive_timeout" yaml:"keepalive_timeout" env:"NUCMD_GRPC_KEEPALIVE_TIMEOUT"`
	MaxRecvMsgSize   int      `toml:"max_recv_msg_size" yaml:"max_recv_msg_size" env:"NUCMD_GRPC_MAX_RECV_MSG_SIZE"`
}

// Duration wraps time.Duration for TOML, YAML and environment parsing
type Duration struct {
	time.Duration
}

// UnmarshalText parses a duration string
func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText formats the duration as a string
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// UnmarshalYAML parses a duration scalar
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	return d.UnmarshalText([]byte(value.Value))
}

// Default returns the configuration used when no file is present
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load loads configuration from a TOML or YAML file, chosen by extension.
// Environment variables override file values.
func Load(path string) (*Config, error) {
	path = os.ExpandEnv(path)

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s", path)
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	default:
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if err := cfg.finish(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// DefaultPaths lists the locations searched by LoadFromEnv
func DefaultPaths() []string {
	return []string{
		"./configs/config.toml",
		"./config.toml",
		filepath.Join(os.Getenv("HOME"), ".config/nucmd/config.toml"),
	}
}

// LoadFromEnv loads configuration from the NUCMD_CONFIG environment variable
// or the first default path that exists. Without any file the defaults are
// used, still subject to environment overrides.
func LoadFromEnv() (*Config, error) {
	path := os.Getenv("NUCMD_CONFIG")
	if path == "" {
		for _, p := range DefaultPaths() {
			if _, err := os.Stat(p); err == nil {
				path = p
				break
			}
		}
	}

	if path != "" {
		return Load(path)
	}

	var cfg Config
	if err := cfg.finish(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) finish() error {
	if err := env.Parse(c); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	c.applyDefaults()
	c.expandEnvVars()
	return c.Validate()
}

// applyDefaults sets default values for missing configuration
func (c *Config) applyDefaults() {
	// General
	if c.General.Name == "" {
		c.General.Name = "nucmd"
	}
	if c.General.DataDir == "" {
		c.General.DataDir = "./data"
	}
	if c.General.LogLevel == "" {
		c.General.LogLevel = "info"
	}
	if c.General.LogFormat == "" {
		c.General.LogFormat = "json"
	}

	// Shell
	if c.Shell.Prompt == "" {
		c.Shell.Prompt = "> "
	}
	if c.Shell.HistoryPath == "" {
		c.Shell.HistoryPath = filepath.Join(c.General.DataDir, "history.db")
	}
	if c.Shell.HistoryLimit == 0 {
		c.Shell.HistoryLimit = 1000
	}
	if c.Shell.ScriptDir == "" {
		c.Shell.ScriptDir = "./scripts"
	}
	if c.Shell.NamePrefix == "" {
		c.Shell.NamePrefix = "-"
	}

	// Server
	if c.Server.Host == "" {
		c.Server.Host = "127.0.0.1"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8765
	}
	if c.Server.Path == "" {
		c.Server.Path = "/ws"
	}
	if c.Server.ReadTimeout.Duration == 0 {
		c.Server.ReadTimeout.Duration = 60 * time.Second
	}
	if c.Server.WriteTimeout.Duration == 0 {
		c.Server.WriteTimeout.Duration = 10 * time.Second
	}
	if c.Server.PingInterval.Duration == 0 {
		c.Server.PingInterval.Duration = 30 * time.Second
	}

	// GRPC
	if c.GRPC.Host == "" {
		c.GRPC.Host = "127.0.0.1"
	}
	if c.GRPC.Port == 0 {
		c.GRPC.Port = 9765
	}
	if c.GRPC.KeepaliveTime.Duration == 0 {
		c.GRPC.KeepaliveTime.Duration = 30 * time.Second
	}
	if c.GRPC.KeepaliveTimeout.Duration == 0 {
		c.GRPC.KeepaliveTimeout.Duration = 10 * time.Second
	}
	if c.GRPC.MaxRecvMsgSize == 0 {
		c.GRPC.MaxRecvMsgSize = 4 * 1024 * 1024
	}
}

// expandEnvVars expands environment variables in path values
func (c *Config) expandEnvVars() {
	c.General.DataDir = os.ExpandEnv(c.General.DataDir)
	c.General.LogFile = os.ExpandEnv(c.General.LogFile)
	c.Shell.HistoryPath = os.ExpandEnv(c.Shell.HistoryPath)
	c.Shell.ScriptDir = os.ExpandEnv(c.Shell.ScriptDir)
}

// Validate checks value ranges
func (c *Config) Validate() error {
	if c.Shell.HistoryLimit < 0 {
		return fmt.Errorf("shell.history_limit must not be negative: %d", c.Shell.HistoryLimit)
	}
	if len(c.Shell.NamePrefix) != 1 {
		return fmt.Errorf("shell.name_prefix must be a single character: %q", c.Shell.NamePrefix)
	}
	for name, port := range map[string]int{"server.port": c.Server.Port, "grpc.port": c.GRPC.Port} {
		if port < 0 || port > 65535 {
			return fmt.Errorf("%s out of range: %d", name, port)
		}
	}
	if !strings.HasPrefix(c.Server.Path, "/") {
		return fmt.Errorf("server.path must start with '/': %q", c.Server.Path)
	}
	return nil
}

// WebsocketAddress returns the listen address of the websocket server
func (c *Config) WebsocketAddress() string {
	return net.JoinHostPort(c.Server.Host, strconv.Itoa(c.Server.Port))
}

// GRPCAddress returns the listen address of the gRPC server
func (c *Config) GRPCAddress() string {
	return net.JoinHostPort(c.GRPC.Host, strconv.Itoa(c.GRPC.Port))
}
