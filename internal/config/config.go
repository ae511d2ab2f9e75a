package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/brownsim/internal/dynamo"
)

const (
	DefaultDt          = 0.005
	DefaultGamma       = 0.5
	DefaultTemperature = 1.0
	DefaultBox         = 1.0
	DefaultParticles   = 1
	DefaultSteps       = 1000
	DefaultSeed        = 123
	DefaultLineWidth   = 2.0
	DefaultFrameDelay  = 120
)

type Config struct {
	Integrator  string          `yaml:"integrator"`
	Dt          float64         `yaml:"dt"`
	Gamma       float64         `yaml:"gamma"`
	Temperature float64         `yaml:"temperature"`
	Box         float64         `yaml:"box"`
	Particles   int             `yaml:"particles"`
	Steps       int             `yaml:"steps"`
	Force       float64         `yaml:"force"`
	Noise       bool            `yaml:"noise"`
	Periodic    bool            `yaml:"periodic"`
	Wrap        string          `yaml:"wrap"`
	Seed        uint64          `yaml:"seed"`
	Stream      uint64          `yaml:"stream"`
	InitState   InitStateConfig `yaml:"init_state"`
	Output      OutputConfig    `yaml:"output"`
}

// InitStateConfig sets every component of every particle to R and P.
type InitStateConfig struct {
	R float64 `yaml:"r"`
	P float64 `yaml:"p"`
}

type OutputConfig struct {
	FName      string  `yaml:"fname"`
	LineWidth  float64 `yaml:"line_width"`
	FrameDelay int     `yaml:"frame_delay_ms"`
}

func DefaultConfig() *Config {
	return &Config{
		Integrator:  "langevin",
		Dt:          DefaultDt,
		Gamma:       DefaultGamma,
		Temperature: DefaultTemperature,
		Box:         DefaultBox,
		Particles:   DefaultParticles,
		Steps:       DefaultSteps,
		Noise:       true,
		Periodic:    true,
		Wrap:        dynamo.WrapModulo.String(),
		Seed:        DefaultSeed,
		Output: OutputConfig{
			FName:      "brownian",
			LineWidth:  DefaultLineWidth,
			FrameDelay: DefaultFrameDelay,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
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

// Params converts the file representation to validated run parameters.
func (c *Config) Params() (dynamo.Params, error) {
	wrap, err := dynamo.ParseWrap(c.Wrap)
	if err != nil {
		return dynamo.Params{}, err
	}
	params := dynamo.Params{
		Dt:          c.Dt,
		Gamma:       c.Gamma,
		Temperature: c.Temperature,
		Box:         c.Box,
		Particles:   c.Particles,
		Force:       c.Force,
		Noise:       c.Noise,
		Periodic:    c.Periodic,
		Wrap:        wrap,
	}
	if err := params.Validate(); err != nil {
		return dynamo.Params{}, err
	}
	if c.Steps < 0 {
		return dynamo.Params{}, &dynamo.ParamError{Name: "steps", Value: c.Steps, Reason: "must be non-negative"}
	}
	return params, nil
}

func (c *Config) GetInitState() dynamo.ParticleState {
	return dynamo.UniformState(c.Particles, c.InitState.R, c.InitState.P)
}

// GIFName follows the {fname}_G{gamma}_T{T}_N{n}.gif convention.
func (c *Config) GIFName() string {
	return fmt.Sprintf("%s_G%g_T%g_N%d.gif", c.Output.FName, c.Gamma, c.Temperature, c.Particles)
}

func (c *Config) Clone() *Config {
	cp := *c
	return &cp
}

// Set assigns a numeric field by its yaml key. It backs parameter sweeps.
func (c *Config) Set(key string, v float64) error {
	switch key {
	case "dt":
		c.Dt = v
	case "gamma":
		c.Gamma = v
	case "temperature", "temp", "T":
		c.Temperature = v
	case "box":
		c.Box = v
	case "force":
		c.Force = v
	case "particles", "n":
		c.Particles = int(v)
	case "steps":
		c.Steps = int(v)
	default:
		return &dynamo.ParamError{Name: key, Value: v, Reason: "is not a sweepable parameter"}
	}
	return nil
}
