// Package config holds the engine configuration.
package config

import (
	"github.com/spaghettifunk/grindsim/engine/core"
	"github.com/spaghettifunk/grindsim/engine/math"
	"github.com/spaghettifunk/grindsim/engine/renderer/components"
)

type Config struct {
	Window   WindowConfig   `toml:"window" yaml:"window"`
	Renderer RendererConfig `toml:"renderer" yaml:"renderer"`
	Camera   CameraConfig   `toml:"camera" yaml:"camera"`
	Scene    SceneConfig    `toml:"scene" yaml:"scene"`
	Logging  core.LogConfig `toml:"logging" yaml:"logging"`
}

type WindowConfig struct {
	Title  string `toml:"title" yaml:"title"`
	Width  uint32 `toml:"width" yaml:"width"`
	Height uint32 `toml:"height" yaml:"height"`
	PosX   uint32 `toml:"pos_x" yaml:"pos_x"`
	PosY   uint32 `toml:"pos_y" yaml:"pos_y"`
}

type RendererConfig struct {
	FramesInFlight int        `toml:"frames_in_flight" yaml:"frames_in_flight"`
	ClearColor     [4]float32 `toml:"clear_color" yaml:"clear_color"`
	VSync          bool       `toml:"vsync" yaml:"vsync"`
	Validation     bool       `toml:"validation" yaml:"validation"`
	// ShaderDir holds the compiled SPIR-V modules.
	ShaderDir   string `toml:"shader_dir" yaml:"shader_dir"`
	MaxTextures uint32 `toml:"max_textures" yaml:"max_textures"`
	// MaxObjects sizes the descriptor pools.
	MaxObjects    uint32 `toml:"max_objects" yaml:"max_objects"`
	DecodeWorkers int    `toml:"decode_workers" yaml:"decode_workers"`
}

// CameraConfig angles are in radians except FovY, which is in degrees.
type CameraConfig struct {
	FovY             float32    `toml:"fov_y" yaml:"fov_y"`
	Near             float32    `toml:"near" yaml:"near"`
	Far              float32    `toml:"far" yaml:"far"`
	OrbitSensitivity float32    `toml:"orbit_sensitivity" yaml:"orbit_sensitivity"`
	PanSensitivity   float32    `toml:"pan_sensitivity" yaml:"pan_sensitivity"`
	DollySpeed       float32    `toml:"dolly_speed" yaml:"dolly_speed"`
	MinDistance      float32    `toml:"min_distance" yaml:"min_distance"`
	MaxDistance      float32    `toml:"max_distance" yaml:"max_distance"`
	MinPitch         float32    `toml:"min_pitch" yaml:"min_pitch"`
	MaxPitch         float32    `toml:"max_pitch" yaml:"max_pitch"`
	Target           [3]float32 `toml:"target" yaml:"target"`
	Distance         float32    `toml:"distance" yaml:"distance"`
	Yaw              float32    `toml:"yaw" yaml:"yaw"`
	Pitch            float32    `toml:"pitch" yaml:"pitch"`
}

type SceneConfig struct {
	// AssetRoot is the directory the manifest and shader paths are relative to.
	AssetRoot     string `toml:"asset_root" yaml:"asset_root"`
	Manifest      string `toml:"manifest" yaml:"manifest"`
	HotReload     bool   `toml:"hot_reload" yaml:"hot_reload"`
	MotionEnabled bool   `toml:"motion_enabled" yaml:"motion_enabled"`
	FlipTextures  bool   `toml:"flip_textures" yaml:"flip_textures"`
	Seed          uint32 `toml:"seed" yaml:"seed"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	orbit := components.DefaultOrbitConfig()
	return &Config{
		Window: WindowConfig{
			Title:  "Grindsim",
			Width:  1280,
			Height: 720,
			PosX:   100,
			PosY:   100,
		},
		Renderer: RendererConfig{
			FramesInFlight: 2,
			ClearColor:     [4]float32{0.01, 0.01, 0.01, 1},
			VSync:          true,
			ShaderDir:      "shaders",
			MaxTextures:    64,
			MaxObjects:     256,
			DecodeWorkers:  4,
		},
		Camera: CameraConfig{
			FovY:             50,
			Near:             0.1,
			Far:              100,
			OrbitSensitivity: orbit.OrbitSensitivity,
			PanSensitivity:   orbit.PanSensitivity,
			DollySpeed:       orbit.DollySpeed,
			MinDistance:      orbit.MinDistance,
			MaxDistance:      orbit.MaxDistance,
			MinPitch:         orbit.MinPitch,
			MaxPitch:         orbit.MaxPitch,
			Target:           [3]float32(orbit.HomeTarget),
			Distance:         orbit.HomeDistance,
			Yaw:              orbit.HomeYaw,
			Pitch:            orbit.HomePitch,
		},
		Scene: SceneConfig{
			AssetRoot:     "assets",
			Manifest:      "scene.toml",
			HotReload:     false,
			MotionEnabled: true,
			Seed:          1,
		},
		Logging: core.LogConfig{
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
	}
}

// Orbit converts the camera section into the orbit controller settings.
func (c CameraConfig) Orbit() components.OrbitConfig {
	return components.OrbitConfig{
		OrbitSensitivity: c.OrbitSensitivity,
		PanSensitivity:   c.PanSensitivity,
		DollySpeed:       c.DollySpeed,
		MinDistance:      c.MinDistance,
		MaxDistance:      c.MaxDistance,
		MinPitch:         c.MinPitch,
		MaxPitch:         c.MaxPitch,
		HomeTarget:       math.Vec3(c.Target),
		HomeDistance:     c.Distance,
		HomeYaw:          c.Yaw,
		HomePitch:        c.Pitch,
	}
}

// FovYRadians returns the vertical field of view in radians.
func (c CameraConfig) FovYRadians() float32 {
	return math.DegToRad(c.FovY)
}
