package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/PixPMusic/gopher-resolume/internal/midi"
)

// Defaults used when the config file or a field is missing
const (
	DefaultHost           = "127.0.0.1"
	DefaultSendPort       = 7000
	DefaultListenPort     = 7001
	DefaultPollingDelayMS = 100
)

// DeviceConfig describes the Launchpad to drive. Empty ports mean
// auto-detect by port name.
type DeviceConfig struct {
	ID      string          `json:"id" yaml:"id"`
	Name    string          `json:"name" yaml:"name"`
	InPort  string          `json:"in_port" yaml:"in_port"`
	OutPort string          `json:"out_port" yaml:"out_port"`
	Type    midi.DeviceType `json:"type" yaml:"type"`
}

// NewDeviceConfig creates a new device config with a generated ID
func NewDeviceConfig() DeviceConfig {
	return DeviceConfig{
		ID:   uuid.New().String(),
		Name: "Launchpad",
		Type: midi.DeviceTypeClassic,
	}
}

// Config holds application configuration
type Config struct {
	Device DeviceConfig `json:"device" yaml:"device"`

	// Resolume OSC endpoint
	Host       string `json:"host" yaml:"host"`
	SendPort   int    `json:"send_port" yaml:"send_port"`
	ListenPort int    `json:"listen_port" yaml:"listen_port"`

	PollingDelayMS int  `json:"polling_delay_ms" yaml:"polling_delay_ms"`
	OpenAtStartup  bool `json:"open_at_startup" yaml:"open_at_startup"`
	TraceOSC       bool `json:"trace_osc" yaml:"trace_osc"`

	path string
}

// Default returns the configuration used when no file exists
func Default() *Config {
	return &Config{
		Device:         NewDeviceConfig(),
		Host:           DefaultHost,
		SendPort:       DefaultSendPort,
		ListenPort:     DefaultListenPort,
		PollingDelayMS: DefaultPollingDelayMS,
	}
}

// configDir returns the platform-appropriate config directory
func configDir() (string, error) {
	configHome, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configHome, "gopher-resolume"), nil
}

// ConfigPath returns the full path to the default config file
func ConfigPath() (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads the config at path, or at ConfigPath when path is empty.
// A missing file yields the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		p, err := ConfigPath()
		if err != nil {
			return nil, errors.Wrap(err, "locate config")
		}
		path = p
	}

	cfg := Default()
	cfg.path = path

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "read config %s", path)
	}

	if isYAML(path) {
		err = yaml.Unmarshal(data, cfg)
	} else {
		err = json.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "parse config %s", path)
	}

	cfg.fillDefaults()
	return cfg, nil
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

// fillDefaults replaces zero values left by a partial file
func (c *Config) fillDefaults() {
	if c.Device.ID == "" {
		c.Device.ID = uuid.New().String()
	}
	if c.Device.Type == "" {
		c.Device.Type = midi.DeviceTypeClassic
	}
	if c.Host == "" {
		c.Host = DefaultHost
	}
	if c.SendPort == 0 {
		c.SendPort = DefaultSendPort
	}
	if c.ListenPort == 0 {
		c.ListenPort = DefaultListenPort
	}
	if c.PollingDelayMS == 0 {
		c.PollingDelayMS = DefaultPollingDelayMS
	}
}

// Validate checks the values that would otherwise fail late, at socket
// or device open time.
func (c *Config) Validate() error {
	for name, port := range map[string]int{"send_port": c.SendPort, "listen_port": c.ListenPort} {
		if port < 1 || port > 65535 {
			return errors.Errorf("%s out of range: %d", name, port)
		}
	}
	if c.SendPort == c.ListenPort {
		return errors.Errorf("send_port and listen_port are both %d", c.SendPort)
	}
	if c.PollingDelayMS < 1 {
		return errors.Errorf("polling_delay_ms must be positive: %d", c.PollingDelayMS)
	}
	switch c.Device.Type {
	case midi.DeviceTypeClassic, midi.DeviceTypeColorful:
	default:
		return errors.Errorf("unknown device type %q", c.Device.Type)
	}
	return nil
}

// PollingDelay returns the input polling delay as a duration
func (c *Config) PollingDelay() time.Duration {
	return time.Duration(c.PollingDelayMS) * time.Millisecond
}

// Path returns the file the config was loaded from
func (c *Config) Path() string {
	return c.path
}

// Save writes the config back to the file it was loaded from, in the same format
func (c *Config) Save() error {
	path := c.path
	if path == "" {
		p, err := ConfigPath()
		if err != nil {
			return errors.Wrap(err, "locate config")
		}
		path = p
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrap(err, "create config dir")
	}

	var data []byte
	var err error
	if isYAML(path) {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return errors.Wrap(err, "encode config")
	}

	return errors.Wrapf(os.WriteFile(path, data, 0644), "write config %s", path)
}
