package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"focusd/internal/logger"
)

// ServerConfig configures the optional local stream server.
type ServerConfig struct {
	Enabled bool `json:"enabled" yaml:"enabled"`
	Port    int  `json:"port" yaml:"port"`
}

// Config is the application configuration.
type Config struct {
	// FlushInterval is the periodic input flush interval in seconds.
	FlushInterval int `json:"flush_interval" yaml:"flush_interval"`
	// CacheCapacity bounds the pid -> cmdline cache.
	CacheCapacity int          `json:"cache_capacity" yaml:"cache_capacity"`
	LogLevel      string       `json:"log_level" yaml:"log_level"`
	Server        ServerConfig `json:"server" yaml:"server"`
}

// FlushIntervalDuration returns the flush interval as a time.Duration.
func (c *Config) FlushIntervalDuration() time.Duration {
	return time.Duration(c.FlushInterval) * time.Second
}

// Manager handles configuration
type Manager struct {
	configPath string
	config     *Config
	mu         sync.RWMutex
}

// NewManager creates a new configuration manager. If configFile is empty,
// $HOME/.config/focusd/config.yaml is used, created with defaults on first
// run.
func NewManager(configFile string) (*Manager, error) {
	actualConfigPath := configFile
	if actualConfigPath == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		actualConfigPath = filepath.Join(homeDir, ".config", "focusd", "config.yaml")
	}

	m := &Manager{
		configPath: actualConfigPath,
	}

	if err := m.load(); err != nil {
		if os.IsNotExist(err) {
			logger.WithComponent("config").Info().
				Str("path", m.configPath).
				Msg("Config file not found, creating new config")
			m.config = Defaults()
			if err := m.Save(); err != nil {
				return nil, fmt.Errorf("failed to create default config: %w", err)
			}
		} else {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	logger.WithComponent("config").Info().
		Str("path", m.configPath).
		Int("flush_interval", m.config.FlushInterval).
		Int("cache_capacity", m.config.CacheCapacity).
		Msg("Config loaded")

	return m, nil
}

// Defaults returns the default configuration.
func Defaults() *Config {
	return &Config{
		FlushInterval: 20,
		CacheCapacity: 256,
		LogLevel:      "info",
		Server: ServerConfig{
			Enabled: false,
			Port:    8137,
		},
	}
}

// load reads the configuration from disk
func (m *Manager) load() error {
	data, err := os.ReadFile(m.configPath)
	if err != nil {
		return err
	}

	cfg := Defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}

	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = Defaults().FlushInterval
	}
	if cfg.CacheCapacity <= 0 {
		cfg.CacheCapacity = Defaults().CacheCapacity
	}

	m.mu.Lock()
	m.config = cfg
	m.mu.Unlock()

	return nil
}

// Get returns a copy of the current configuration.
func (m *Manager) Get() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.config == nil {
		return Defaults()
	}
	cfg := *m.config
	return &cfg
}

// Save writes the current configuration to disk.
func (m *Manager) Save() error {
	m.mu.RLock()
	cfg := m.config
	m.mu.RUnlock()

	if cfg == nil {
		cfg = Defaults()
	}

	configDir := filepath.Dir(m.configPath)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(m.configPath, data, 0644); err != nil {
		return err
	}

	logger.WithComponent("config").Debug().
		Str("path", m.configPath).
		Msg("Config saved")
	return nil
}

// SetLogLevel sets the log level.
func (m *Manager) SetLogLevel(level string) {
	m.mu.Lock()
	m.config.LogLevel = level
	m.mu.Unlock()
}

// SetFlushInterval sets the input flush interval in seconds.
func (m *Manager) SetFlushInterval(seconds int) {
	m.mu.Lock()
	m.config.FlushInterval = seconds
	m.mu.Unlock()
}

// SetServerPort sets the stream server port and enables the server.
func (m *Manager) SetServerPort(port int) {
	m.mu.Lock()
	m.config.Server.Port = port
	m.config.Server.Enabled = true
	m.mu.Unlock()
}

// GetConfigPath returns the path to the config file
func (m *Manager) GetConfigPath() string {
	return m.configPath
}
