package config

import (
	"fmt"
	"regexp"
)

var instanceIDPattern = regexp.MustCompile(`^[a-z0-9\-]+$`)

// Validate checks the configuration and fills defaults in place.
func Validate(cfg *Config) error {
	if cfg.InstanceID == "" {
		return fmt.Errorf("instance_id is required")
	}
	if !instanceIDPattern.MatchString(cfg.InstanceID) {
		return fmt.Errorf("instance_id must match pattern [a-z0-9-]+")
	}

	if cfg.ShutdownTimeoutS <= 0 {
		cfg.ShutdownTimeoutS = 5
	}

	if cfg.Model.Path == "" {
		return fmt.Errorf("model.path is required")
	}
	if cfg.Model.InputSize <= 0 {
		cfg.Model.InputSize = 640
	}
	if cfg.Model.OutChannels <= 0 {
		cfg.Model.OutChannels = 56
	}
	if cfg.Model.OutAnchors <= 0 {
		cfg.Model.OutAnchors = 8400
	}

	switch cfg.Camera.Rotation {
	case 0, 90, 180, 270:
	default:
		return fmt.Errorf("camera.rotation must be one of 0/90/180/270, got %d",
			cfg.Camera.Rotation)
	}

	if cfg.Stream.Width <= 0 {
		cfg.Stream.Width = 1280
	}
	if cfg.Stream.Height <= 0 {
		cfg.Stream.Height = 720
	}
	if cfg.Stream.FPS <= 0 {
		cfg.Stream.FPS = 5
	}

	if cfg.MQTT.Broker == "" {
		return fmt.Errorf("mqtt.broker is required")
	}
	if cfg.MQTT.Topics.Postures == "" {
		cfg.MQTT.Topics.Postures = fmt.Sprintf("salat/postures/%s", cfg.InstanceID)
	}
	if cfg.MQTT.Topics.Health == "" {
		cfg.MQTT.Topics.Health = fmt.Sprintf("salat/health/%s", cfg.InstanceID)
	}

	return nil
}
