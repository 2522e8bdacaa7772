package engine

import "github.com/spaghettifunk/grindsim/engine/config"

type ApplicationConfig struct {
	// The application name used in windowing and as the Vulkan application name.
	Name string
	// ConfigPath is the TOML or YAML engine configuration. Empty means defaults.
	ConfigPath string
	// Config is used instead of ConfigPath when set.
	Config *config.Config
}
