package experiment

import (
	"context"
	"errors"
	"testing"

	"github.com/san-kum/brownsim/internal/config"
	"github.com/san-kum/brownsim/internal/dynamo"
)

func TestExperimentRun(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Steps = 200

	exp, err := New(cfg, NewRegistry())
	if err != nil {
		t.Fatal(err)
	}
	res, err := exp.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	if res.Trajectory.Len() != 200 {
		t.Errorf("expected 200 snapshots, got %d", res.Trajectory.Len())
	}
	for _, name := range NewRegistry().ListMetrics() {
		if _, ok := res.Metrics[name]; !ok {
			t.Errorf("missing metric %s", name)
		}
	}
	if res.Metrics["containment"] != 1 {
		t.Errorf("periodic run left the box: containment %f", res.Metrics["containment"])
	}
	if exp.Source().Draws() != 200*3 {
		t.Errorf("expected %d draws, got %d", 200*3, exp.Source().Draws())
	}
}

func TestExperimentDeterministic(t *testing.T) {
	run := func(seed uint64) *dynamo.Trajectory {
		cfg := config.GetPreset("reference")
		cfg.Steps = 50
		cfg.Seed = seed
		exp, err := New(cfg, NewRegistry())
		if err != nil {
			t.Fatal(err)
		}
		res, err := exp.Run(context.Background())
		if err != nil {
			t.Fatal(err)
		}
		return res.Trajectory
	}

	a, b := run(5), run(5)
	if a.Final().Momentum[0] != b.Final().Momentum[0] {
		t.Error("same seed should reproduce the run")
	}
	if a.Final().Momentum[0] == run(6).Final().Momentum[0] {
		t.Error("different seeds should diverge")
	}
}

func TestExperimentRejectsBadConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Box = -1
	if _, err := New(cfg, NewRegistry()); !errors.Is(err, dynamo.ErrInvalidParameter) {
		t.Errorf("expected invalid parameter, got %v", err)
	}

	cfg = config.DefaultConfig()
	cfg.Integrator = "rk4"
	if _, err := New(cfg, NewRegistry()); !errors.Is(err, dynamo.ErrInvalidParameter) {
		t.Errorf("expected unknown integrator error, got %v", err)
	}
}

func TestRegistry(t *testing.T) {
	reg := NewRegistry()

	names := reg.ListIntegrators()
	if len(names) != 2 || names[0] != "euler" || names[1] != "langevin" {
		t.Errorf("unexpected integrators %v", names)
	}

	m, err := reg.GetMetric("temperature", dynamo.DefaultParams(), 0)
	if err != nil || m.Name() != "temperature" {
		t.Errorf("temperature metric: %v, %v", m, err)
	}
	if _, err := reg.GetMetric("energy_drift", dynamo.DefaultParams(), 0); err == nil {
		t.Error("expected error for unregistered metric")
	}

	if got := len(reg.DefaultMetrics(dynamo.DefaultParams(), 0)); got != len(reg.ListMetrics()) {
		t.Errorf("expected one default metric per registered name, got %d", got)
	}
}
