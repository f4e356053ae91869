// Package automation runs scripted batches of headless simulations:
// scenarios read from YAML and single-parameter sweeps.
package automation

import (
	"context"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/dotdrop/internal/config"
	"github.com/san-kum/dotdrop/internal/dots"
	"github.com/san-kum/dotdrop/internal/metrics"
	"github.com/san-kum/dotdrop/internal/sim"
	"github.com/san-kum/dotdrop/internal/storage"
)

// Scenario defines a scripted simulation sequence
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep is a single run. Zero fields fall back to the preset.
type ScenarioStep struct {
	Preset   string             `yaml:"preset"`
	Bodies   int                `yaml:"bodies"`
	Duration float64            `yaml:"duration"`
	Dt       float64            `yaml:"dt"`
	Seed     int64              `yaml:"seed"`
	Params   map[string]float64 `yaml:"params"`
	SaveAs   string             `yaml:"save_as"`
}

// LoadScenario loads a scenario from a YAML file
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("scenario %s: %w", path, err)
	}
	if len(scenario.Steps) == 0 {
		return nil, fmt.Errorf("scenario %s: no steps", path)
	}

	return &scenario, nil
}

// Config resolves the step over its preset.
func (s ScenarioStep) Config() (*config.Config, error) {
	name := s.Preset
	if name == "" {
		name = "default"
	}
	cfg := config.GetPreset(name)
	if cfg == nil {
		return nil, fmt.Errorf("unknown preset: %s", name)
	}
	if s.Bodies > 0 {
		cfg.Run.Bodies = s.Bodies
	}
	if s.Duration > 0 {
		cfg.Run.Duration = s.Duration
	}
	if s.Dt > 0 {
		cfg.Run.Dt = s.Dt
	}
	if s.Seed != 0 {
		cfg.Seed = s.Seed
	}
	for k, v := range s.Params {
		if err := cfg.SetParam(k, v); err != nil {
			return nil, err
		}
	}
	return cfg, cfg.Validate()
}

// SimConfig builds the headless run settings for cfg.
func SimConfig(cfg *config.Config) sim.Config {
	return sim.Config{
		Dt:            cfg.Run.Dt,
		Duration:      cfg.Run.Duration,
		Seed:          cfg.Seed,
		Bodies:        cfg.Run.Bodies,
		Viewport:      dots.Size{W: float64(cfg.Window.Width), H: float64(cfg.Window.Height)},
		Zone:          cfg.Zone(),
		ValidateState: true,
	}
}

// DefaultMetrics returns fresh instances of every run metric.
func DefaultMetrics(vp dots.Size, t dots.Tuning) []sim.Metric {
	return []sim.Metric{
		metrics.NewEnergy(vp, t),
		metrics.NewEnergyLoss(vp, t),
		metrics.NewRestTime(20),
		metrics.NewImpacts(),
		metrics.NewApexes(vp, t),
	}
}

// Run executes cfg once with the default metrics.
func Run(ctx context.Context, cfg *config.Config) (*sim.Result, error) {
	t := cfg.Tuning()
	sc := SimConfig(cfg)
	s := sim.New(t)
	for _, m := range DefaultMetrics(sc.Viewport, t) {
		s.AddMetric(m)
	}
	return s.Run(ctx, sc)
}

// RunScenario executes all steps in order. Steps with SaveAs are stored
// when store is not nil. Progress lines go to out.
func RunScenario(ctx context.Context, scenario *Scenario, store *storage.Store, out io.Writer) ([]*sim.Result, error) {
	results := make([]*sim.Result, 0, len(scenario.Steps))

	for i, step := range scenario.Steps {
		fmt.Fprintf(out, "running step %d/%d: %s\n", i+1, len(scenario.Steps), step.Preset)

		cfg, err := step.Config()
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}

		result, err := Run(ctx, cfg)
		if err != nil {
			return results, fmt.Errorf("step %d run: %w", i+1, err)
		}
		results = append(results, result)

		if step.SaveAs != "" && store != nil {
			runID, err := store.Save(step.SaveAs, SimConfig(cfg), cfg.Tuning(), result)
			if err != nil {
				return results, fmt.Errorf("step %d save: %w", i+1, err)
			}
			fmt.Fprintf(out, "  saved %s\n", runID)
		}
	}

	return results, nil
}

// ParameterSweep runs simulations across a range of parameter values
type ParameterSweep struct {
	Base      *config.Config
	ParamName string
	ParamMin  float64
	ParamMax  float64
	NumSteps  int
}

// SweepResult holds the metrics of one sweep point
type SweepResult struct {
	ParamValue float64
	Metrics    map[string]float64
	Totals     sim.Totals
}

// RunSweep executes a parameter sweep
func RunSweep(ctx context.Context, sweep *ParameterSweep, out io.Writer) ([]SweepResult, error) {
	if sweep.NumSteps < 2 {
		return nil, fmt.Errorf("sweep needs at least 2 steps, got %d", sweep.NumSteps)
	}
	results := make([]SweepResult, 0, sweep.NumSteps)
	paramStep := (sweep.ParamMax - sweep.ParamMin) / float64(sweep.NumSteps-1)

	for i := 0; i < sweep.NumSteps; i++ {
		paramVal := sweep.ParamMin + float64(i)*paramStep

		cfg := sweep.Base.Clone()
		if err := cfg.SetParam(sweep.ParamName, paramVal); err != nil {
			return nil, err
		}
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("%s=%.4f: %w", sweep.ParamName, paramVal, err)
		}

		result, err := Run(ctx, cfg)
		if err != nil {
			return nil, err
		}

		results = append(results, SweepResult{
			ParamValue: paramVal,
			Metrics:    result.Metrics,
			Totals:     result.Totals,
		})

		fmt.Fprintf(out, "sweep %d/%d: %s=%.4f\n", i+1, sweep.NumSteps, sweep.ParamName, paramVal)
	}

	return results, nil
}
