package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/spaghettifunk/grindsim/engine/core"
)

// Load reads path over the defaults. Files ending in .yaml or .yml are YAML,
// anything else is TOML. Unknown keys are rejected. An empty path returns the
// defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, cfg.Validate()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading config from %s: %w", path, err)
	}
	if err := Decode(cfg, data, filepath.Ext(path)); err != nil {
		return nil, fmt.Errorf("loading config from %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Decode merges data in the format of ext into cfg.
func Decode(cfg *Config, data []byte, ext string) error {
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return err
		}
		return nil
	default:
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		return dec.Decode(cfg)
	}
}

// Validate checks the values the engine cannot run without.
func (c *Config) Validate() error {
	var errs []error
	if c.Window.Width == 0 || c.Window.Height == 0 {
		errs = append(errs, fmt.Errorf("window size must be positive, got %dx%d", c.Window.Width, c.Window.Height))
	}
	if c.Renderer.FramesInFlight < 1 || c.Renderer.FramesInFlight > 3 {
		errs = append(errs, fmt.Errorf("frames_in_flight must be in [1, 3], got %d", c.Renderer.FramesInFlight))
	}
	if c.Renderer.MaxTextures == 0 {
		errs = append(errs, errors.New("max_textures must be positive"))
	}
	if c.Renderer.MaxObjects == 0 {
		errs = append(errs, errors.New("max_objects must be positive"))
	}

	cam := c.Camera
	if cam.FovY <= 0 || cam.FovY >= 180 {
		errs = append(errs, fmt.Errorf("fov_y must be in (0, 180), got %g", cam.FovY))
	}
	if cam.Near <= 0 || cam.Near >= cam.Far {
		errs = append(errs, fmt.Errorf("camera needs 0 < near < far, got near %g far %g", cam.Near, cam.Far))
	}
	if cam.MinDistance <= 0 || cam.MinDistance > cam.MaxDistance {
		errs = append(errs, fmt.Errorf("camera needs 0 < min_distance <= max_distance, got %g and %g", cam.MinDistance, cam.MaxDistance))
	}
	if cam.MinPitch > cam.MaxPitch {
		errs = append(errs, fmt.Errorf("camera min_pitch %g exceeds max_pitch %g", cam.MinPitch, cam.MaxPitch))
	}
	if cam.DollySpeed <= 0 {
		errs = append(errs, fmt.Errorf("dolly_speed must be positive, got %g", cam.DollySpeed))
	}

	if c.Scene.Manifest == "" {
		errs = append(errs, errors.New("scene manifest is required"))
	}
	if _, err := core.ParseLogLevel(c.Logging.Level); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Path resolves name against the asset root.
func (c *Config) Path(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(c.Scene.AssetRoot, name)
}
