package config

import (
	"fmt"
	"sort"
)

// params maps the tunable names accepted by SetParam to the fields they
// write.
var params = map[string]func(c *Config, v float64){
	"gravity":         func(c *Config, v float64) { c.Physics.Gravity = v },
	"damping":         func(c *Config, v float64) { c.Physics.Damping = v },
	"friction":        func(c *Config, v float64) { c.Physics.Friction = v },
	"restitution":     func(c *Config, v float64) { c.Physics.Restitution = v },
	"radius":          func(c *Config, v float64) { c.Physics.Radius = v },
	"max_step":        func(c *Config, v float64) { c.Physics.MaxStep = v },
	"spawn_jitter_y":  func(c *Config, v float64) { c.Physics.SpawnJitterY = v },
	"spawn_speed_x":   func(c *Config, v float64) { c.Physics.SpawnSpeedX = v },
	"floor_margin":    func(c *Config, v float64) { c.Layout.FloorMargin = v },
	"long_press_ms":   func(c *Config, v float64) { c.Gesture.LongPressMs = int(v) },
	"cancel_distance": func(c *Config, v float64) { c.Gesture.CancelDistance = v },
}

// SetParam sets one tunable by name. The result is not validated.
func (c *Config) SetParam(name string, v float64) error {
	set, ok := params[name]
	if !ok {
		return fmt.Errorf("unknown parameter %q (available: %v)", name, ParamNames())
	}
	set(c, v)
	return nil
}

func ParamNames() []string {
	names := make([]string, 0, len(params))
	for n := range params {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	out := *c
	return &out
}
