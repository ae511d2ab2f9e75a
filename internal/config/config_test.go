package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/brownsim/internal/dynamo"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "langevin", cfg.Integrator)
	assert.Equal(t, 0.005, cfg.Dt)
	assert.Equal(t, 1000, cfg.Steps)
	assert.Equal(t, uint64(123), cfg.Seed)
	assert.True(t, cfg.Noise)
	assert.True(t, cfg.Periodic)

	params, err := cfg.Params()
	require.NoError(t, err)
	assert.Equal(t, dynamo.DefaultParams(), params)
}

func TestLoadSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	cfg := GetPreset("centered")
	cfg.Particles = 7
	cfg.InitState = InitStateConfig{R: 0.25, P: -1}

	require.NoError(t, Save(path, cfg))
	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestLoadKeepsDefaultsForMissingKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	require.NoError(t, os.WriteFile(path, []byte("gamma: 2.5\nnoise: false\n"), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2.5, cfg.Gamma)
	assert.False(t, cfg.Noise)
	assert.Equal(t, DefaultDt, cfg.Dt)
	assert.Equal(t, DefaultFrameDelay, cfg.Output.FrameDelay)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("dt: [1, 2"), 0644))
	_, err = Load(path)
	assert.Error(t, err)
}

func TestParamsValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero box", func(c *Config) { c.Box = 0 }},
		{"negative dt", func(c *Config) { c.Dt = -1 }},
		{"no particles", func(c *Config) { c.Particles = 0 }},
		{"negative temperature", func(c *Config) { c.Temperature = -0.5 }},
		{"negative steps", func(c *Config) { c.Steps = -3 }},
		{"unknown wrap", func(c *Config) { c.Wrap = "spherical" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			_, err := cfg.Params()
			assert.True(t, errors.Is(err, dynamo.ErrInvalidParameter), "got %v", err)
		})
	}
}

func TestGetInitState(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Particles = 3
	cfg.InitState = InitStateConfig{R: 0.5, P: 2}

	s := cfg.GetInitState()
	require.Equal(t, 3, s.Len())
	assert.Equal(t, dynamo.Vec3{0.5, 0.5, 0.5}, s.Position[2])
	assert.Equal(t, dynamo.Vec3{2, 2, 2}, s.Momentum[0])
}

func TestGIFName(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Output.FName = "walk"
	assert.Equal(t, "walk_G0.5_T1_N1.gif", cfg.GIFName())
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("driven")
	require.NotNil(t, cfg)
	assert.Equal(t, 1.0, cfg.Force)
	assert.False(t, cfg.Noise)

	cfg.Force = 99
	assert.Equal(t, 1.0, GetPreset("driven").Force, "presets must be returned by copy")

	assert.Nil(t, GetPreset("nonexistent"))
}

func TestPresetsAreValid(t *testing.T) {
	for _, name := range ListPresets() {
		t.Run(name, func(t *testing.T) {
			_, err := GetPreset(name).Params()
			require.NoError(t, err)
			assert.NotEmpty(t, DescribePreset(name))
		})
	}
}

func TestListPresetsSorted(t *testing.T) {
	names := ListPresets()
	require.Len(t, names, len(Presets))
	assert.IsIncreasing(t, names)
}

func TestSet(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Set("gamma", 0.1))
	require.NoError(t, cfg.Set("T", 2))
	require.NoError(t, cfg.Set("n", 10))
	assert.Equal(t, 0.1, cfg.Gamma)
	assert.Equal(t, 2.0, cfg.Temperature)
	assert.Equal(t, 10, cfg.Particles)

	err := cfg.Set("mass", 1)
	assert.ErrorIs(t, err, dynamo.ErrInvalidParameter)
}
