package config

import "sort"

// Presets are the named run scenarios. Each entry starts from DefaultConfig.
var Presets = map[string]*Config{
	"reference": DefaultConfig(),
	"centered": with(func(c *Config) {
		c.Wrap = "nearest"
	}),
	"ablation": with(func(c *Config) {
		c.Noise = false
		c.InitState.P = 1.0
		c.Steps = 2000
	}),
	"driven": with(func(c *Config) {
		c.Gamma = 0
		c.Temperature = 0
		c.Noise = false
		c.Force = 1.0
	}),
	"equipartition": with(func(c *Config) {
		c.Dt = 7e-4
		c.Gamma = 0.1
		c.Particles = 1000
		c.Steps = 20000
	}),
	"unconfined": with(func(c *Config) {
		c.Periodic = false
		c.Wrap = "none"
	}),
}

var presetDescriptions = map[string]string{
	"reference":     "defaults of the original script: one particle, gamma 0.5, T 1",
	"centered":      "nearest-image wrap into [-box/2, box/2)",
	"ablation":      "thermostat noise off; kinetic energy decays to zero",
	"driven":        "constant force, no friction or noise; momentum grows linearly",
	"equipartition": "1000 particles, gamma 0.1, dt 7e-4; <p^2> converges to T",
	"unconfined":    "no periodic wrapping; free diffusion",
}

func with(mutate func(*Config)) *Config {
	cfg := DefaultConfig()
	mutate(cfg)
	return cfg
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

func DescribePreset(name string) string {
	return presetDescriptions[name]
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
