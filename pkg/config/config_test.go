package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 6.5, cfg.NodeRadius)
	assert.Equal(t, int64(1), cfg.Solver.Seed)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadPartialFileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trestle.toml")
	body := `
node_radius = 4.0
log_level = "debug"

[solver]
max_passes = 50
seed = 42
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 4.0, cfg.NodeRadius)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 50, cfg.Solver.MaxPasses)
	assert.Equal(t, int64(42), cfg.Solver.Seed)

	// Everything the file does not name keeps its default.
	assert.Equal(t, Default().Solver.PositionTolerance, cfg.Solver.PositionTolerance)
	assert.Equal(t, Default().LengthClasses["medium"], cfg.LengthClasses["medium"])
}

func TestLoadRejectsBadValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trestle.toml")
	require.NoError(t, os.WriteFile(path, []byte("[solver]\nrelaxation_factor = 1.5\n"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "relaxation_factor")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero tolerance", func(c *Config) { c.Solver.PositionTolerance = 0 }},
		{"relaxation too high", func(c *Config) { c.Solver.RelaxationFactor = 1.01 }},
		{"zero relaxation", func(c *Config) { c.Solver.RelaxationFactor = 0 }},
		{"no passes", func(c *Config) { c.Solver.MaxPasses = 0 }},
		{"multiplier below one", func(c *Config) { c.Solver.DegradedMultiplier = 0.5 }},
		{"negative radius", func(c *Config) { c.NodeRadius = -1 }},
		{"non-positive class", func(c *Config) { c.LengthClasses["short"] = 0 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestSolverSettingsMirrorsConfig(t *testing.T) {
	cfg := Default()
	cfg.Solver.MaxPasses = 7
	cfg.Solver.PositionTolerance = 0.5

	s := cfg.SolverSettings()
	assert.Equal(t, 7, s.MaxPasses)
	assert.Equal(t, 0.5, s.PositionTolerance)
	assert.Equal(t, cfg.Solver.RelaxationFactor, s.RelaxationFactor)
}

func TestClassLength(t *testing.T) {
	cfg := Default()

	length, err := cfg.ClassLength("medium")
	require.NoError(t, err)
	assert.Equal(t, 61.8, length)

	_, err = cfg.ClassLength("gigantic")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gigantic")
}
