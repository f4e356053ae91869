package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/dotdrop/internal/dots"
	"github.com/san-kum/dotdrop/internal/stage"
)

const (
	DefaultWidth      = 800
	DefaultHeight     = 600
	DefaultDropZoneH  = 120
	DefaultFPS        = 60
	DefaultCellWidth  = 10
	DefaultCellHeight = 20
	DefaultDt         = 1.0 / 60
	DefaultDuration   = 10.0
	DefaultBodies     = 8
)

type Config struct {
	Seed    int64         `yaml:"seed"`
	Physics PhysicsConfig `yaml:"physics"`
	Gesture GestureConfig `yaml:"gesture"`
	Layout  LayoutConfig  `yaml:"layout"`
	Window  WindowConfig  `yaml:"window"`
	TUI     TUIConfig     `yaml:"tui"`
	Run     RunConfig     `yaml:"run"`
}

type PhysicsConfig struct {
	Gravity      float64 `yaml:"gravity"`
	Damping      float64 `yaml:"damping"`
	Friction     float64 `yaml:"friction"`
	Restitution  float64 `yaml:"restitution"`
	Radius       float64 `yaml:"radius"`
	MaxStep      float64 `yaml:"max_step"`
	SpawnJitterY float64 `yaml:"spawn_jitter_y"`
	SpawnSpeedX  float64 `yaml:"spawn_speed_x"`
}

type GestureConfig struct {
	LongPressMs    int     `yaml:"long_press_ms"`
	CancelDistance float64 `yaml:"cancel_distance"`
}

type LayoutConfig struct {
	FloorMargin float64        `yaml:"floor_margin"`
	DropZone    DropZoneConfig `yaml:"drop_zone"`
}

// DropZoneConfig is a rectangle in viewport pixels. Width 0 spans the
// viewport; height 0 disables the zone.
type DropZoneConfig struct {
	X      float64 `yaml:"x"`
	Y      float64 `yaml:"y"`
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

type WindowConfig struct {
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
	Title  string `yaml:"title"`
	Sound  bool   `yaml:"sound"`
}

type TUIConfig struct {
	CellWidth  float64 `yaml:"cell_width"`
	CellHeight float64 `yaml:"cell_height"`
	FPS        int     `yaml:"fps"`
}

type RunConfig struct {
	Dt       float64 `yaml:"dt"`
	Duration float64 `yaml:"duration"`
	Bodies   int     `yaml:"bodies"`
}

func DefaultConfig() *Config {
	t := dots.DefaultTuning()
	return &Config{
		Seed: 1,
		Physics: PhysicsConfig{
			Gravity:      t.Gravity,
			Damping:      t.Damping,
			Friction:     t.Friction,
			Restitution:  t.Restitution,
			Radius:       t.Radius,
			MaxStep:      t.MaxStep,
			SpawnJitterY: t.SpawnJitterY,
			SpawnSpeedX:  t.SpawnSpeedX,
		},
		Gesture: GestureConfig{
			LongPressMs:    int(t.LongPress / time.Millisecond),
			CancelDistance: t.CancelDistance,
		},
		Layout: LayoutConfig{
			FloorMargin: t.FloorMargin,
			DropZone:    DropZoneConfig{Height: DefaultDropZoneH},
		},
		Window: WindowConfig{
			Width:  DefaultWidth,
			Height: DefaultHeight,
			Title:  "dotdrop",
			Sound:  true,
		},
		TUI: TUIConfig{
			CellWidth:  DefaultCellWidth,
			CellHeight: DefaultCellHeight,
			FPS:        DefaultFPS,
		},
		Run: RunConfig{
			Dt:       DefaultDt,
			Duration: DefaultDuration,
			Bodies:   DefaultBodies,
		},
	}
}

// Load reads a YAML file over the defaults, so a partial file only
// overrides the keys it names.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Tuning converts the physics and gesture sections to engine tuning.
func (c *Config) Tuning() dots.Tuning {
	return dots.Tuning{
		Gravity:        c.Physics.Gravity,
		Damping:        c.Physics.Damping,
		Friction:       c.Physics.Friction,
		Restitution:    c.Physics.Restitution,
		Radius:         c.Physics.Radius,
		FloorMargin:    c.Layout.FloorMargin,
		MaxStep:        c.Physics.MaxStep,
		SpawnJitterY:   c.Physics.SpawnJitterY,
		SpawnSpeedX:    c.Physics.SpawnSpeedX,
		LongPress:      time.Duration(c.Gesture.LongPressMs) * time.Millisecond,
		CancelDistance: c.Gesture.CancelDistance,
	}
}

func (c *Config) Validate() error {
	if err := c.Tuning().Validate(); err != nil {
		return err
	}
	switch {
	case c.Window.Width <= 0 || c.Window.Height <= 0:
		return fmt.Errorf("%w: window %dx%d", dots.ErrParameterBounds, c.Window.Width, c.Window.Height)
	case c.Layout.DropZone.Width < 0 || c.Layout.DropZone.Height < 0:
		return fmt.Errorf("%w: negative drop zone size", dots.ErrParameterBounds)
	case c.TUI.CellWidth <= 0 || c.TUI.CellHeight <= 0:
		return fmt.Errorf("%w: tui cell size must be positive", dots.ErrParameterBounds)
	case c.TUI.FPS <= 0:
		return fmt.Errorf("%w: tui fps must be positive", dots.ErrParameterBounds)
	case c.Run.Dt <= 0 || c.Run.Duration <= 0:
		return fmt.Errorf("%w: run dt and duration must be positive", dots.ErrParameterBounds)
	case c.Run.Bodies < 0:
		return fmt.Errorf("%w: negative body count", dots.ErrParameterBounds)
	}
	return nil
}

// Zone returns the configured drop-zone rectangle for a stage.
func (c *Config) Zone() stage.ZoneSpec {
	z := c.Layout.DropZone
	return stage.ZoneSpec{X: z.X, Y: z.Y, W: z.Width, H: z.Height}
}
