// Package config holds the Trestle tunables: solver policy, the node
// radius domain constant, and the strut length-class table. Values load
// from TOML; Default mirrors the stock ball-and-strut kit.
package config

import (
	"github.com/BurntSushi/toml"
	"github.com/cockroachdb/errors"

	"github.com/calder/trestle/pkg/solver"
)

// DefaultNodeRadius is the ball radius in mm. Each bound strut spans its
// own length plus one radius at either end.
const DefaultNodeRadius = 6.5

// SolverConfig are the relaxation solver tunables.
type SolverConfig struct {
	PositionTolerance  float64 `toml:"position_tolerance"`
	RelaxationFactor   float64 `toml:"relaxation_factor"`
	MaxPasses          int     `toml:"max_passes"`
	DegradedMultiplier float64 `toml:"degraded_multiplier"`
	CoincidenceEpsilon float64 `toml:"coincidence_epsilon"`
	Seed               int64   `toml:"seed"`
}

// Config is the full Trestle configuration.
type Config struct {
	Solver        SolverConfig       `toml:"solver"`
	NodeRadius    float64            `toml:"node_radius"`
	LengthClasses map[string]float64 `toml:"length_classes"`
	LogLevel      string             `toml:"log_level"`
}

// Default returns the stock configuration.
func Default() Config {
	s := solver.DefaultSettings()
	return Config{
		Solver: SolverConfig{
			PositionTolerance:  s.PositionTolerance,
			RelaxationFactor:   s.RelaxationFactor,
			MaxPasses:          s.MaxPasses,
			DegradedMultiplier: s.DegradedMultiplier,
			CoincidenceEpsilon: s.CoincidenceEpsilon,
			Seed:               1,
		},
		NodeRadius: DefaultNodeRadius,
		LengthClasses: map[string]float64{
			"short":  38.2,
			"medium": 61.8,
			"long":   100.0,
		},
		LogLevel: "info",
	}
}

// Load reads a TOML file over the defaults, so a partial file only
// overrides what it names.
func Load(path string) (Config, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, errors.Wrapf(err, "config: load %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects configurations the solver cannot run with.
func (c Config) Validate() error {
	if c.Solver.PositionTolerance <= 0 {
		return errors.Newf("config: position_tolerance must be positive, got %v", c.Solver.PositionTolerance)
	}
	if c.Solver.RelaxationFactor <= 0 || c.Solver.RelaxationFactor > 1 {
		return errors.Newf("config: relaxation_factor must be in (0, 1], got %v", c.Solver.RelaxationFactor)
	}
	if c.Solver.MaxPasses <= 0 {
		return errors.Newf("config: max_passes must be positive, got %d", c.Solver.MaxPasses)
	}
	if c.Solver.DegradedMultiplier < 1 {
		return errors.Newf("config: degraded_multiplier must be >= 1, got %v", c.Solver.DegradedMultiplier)
	}
	if c.NodeRadius < 0 {
		return errors.Newf("config: node_radius must not be negative, got %v", c.NodeRadius)
	}
	for class, length := range c.LengthClasses {
		if length <= 0 {
			return errors.Newf("config: length class %q must be positive, got %v", class, length)
		}
	}
	return nil
}

// SolverSettings converts the config into solver tunables.
func (c Config) SolverSettings() solver.Settings {
	return solver.Settings{
		PositionTolerance:  c.Solver.PositionTolerance,
		RelaxationFactor:   c.Solver.RelaxationFactor,
		MaxPasses:          c.Solver.MaxPasses,
		DegradedMultiplier: c.Solver.DegradedMultiplier,
		CoincidenceEpsilon: c.Solver.CoincidenceEpsilon,
	}
}

// ClassLength resolves a strut length class name to a length.
func (c Config) ClassLength(class string) (float64, error) {
	length, ok := c.LengthClasses[class]
	if !ok {
		return 0, errors.Newf("config: unknown length class %q", class)
	}
	return length, nil
}
