// Package config loads and validates the posed daemon configuration.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the complete posed configuration.
type Config struct {
	InstanceID       string       `yaml:"instance_id"`
	ShutdownTimeoutS int          `yaml:"shutdown_timeout_s"`
	Model            ModelConfig  `yaml:"model"`
	Camera           CameraConfig `yaml:"camera"`
	Stream           StreamConfig `yaml:"stream"`
	MQTT             MQTTConfig   `yaml:"mqtt"`
}

// ModelConfig describes the pose model asset and its tensor contract.
type ModelConfig struct {
	Path        string `yaml:"path"`
	InputSize   int    `yaml:"input_size"`
	OutChannels int    `yaml:"out_channels"`
	OutAnchors  int    `yaml:"out_anchors"`
}

// CameraConfig contains camera settings.
type CameraConfig struct {
	// Rotation of the sensor in degrees clockwise: 0, 90, 180 or 270.
	Rotation int `yaml:"rotation"`
}

// StreamConfig configures the frame source.
type StreamConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
	FPS    int `yaml:"fps"`
}

// MQTTConfig contains MQTT broker settings.
type MQTTConfig struct {
	Broker string     `yaml:"broker"`
	Topics MQTTTopics `yaml:"topics"`
	QoS    byte       `yaml:"qos"`
}

// MQTTTopics contains topic templates.
type MQTTTopics struct {
	Postures string `yaml:"postures"`
	Health   string `yaml:"health"`
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}
