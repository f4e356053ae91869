package config

import "sort"

// Presets adjust the default configuration. Each entry starts from
// DefaultConfig so presets only name what they change.
var Presets = map[string]func(*Config){
	"default": func(c *Config) {},
	"moon": func(c *Config) {
		c.Physics.Gravity = 300
		c.Physics.Damping = 0.7
		c.Physics.SpawnSpeedX = 120
	},
	"bouncy": func(c *Config) {
		c.Physics.Damping = 0.85
		c.Physics.Restitution = 0.9
		c.Physics.Friction = 0.995
	},
	"sticky": func(c *Config) {
		c.Physics.Damping = 0.2
		c.Physics.Restitution = 0.1
		c.Physics.Friction = 0.8
		c.Gesture.LongPressMs = 150
	},
	"small": func(c *Config) {
		c.Physics.Radius = 24
		c.Layout.FloorMargin = 60
		c.Run.Bodies = 24
	},
}

// GetPreset returns a fresh configuration for the named preset, or nil.
func GetPreset(name string) *Config {
	apply, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := DefaultConfig()
	apply(cfg)
	return cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
