package optim

import (
	"context"
	"math"
	"testing"

	"github.com/san-kum/brownsim/internal/config"
	"github.com/san-kum/brownsim/internal/experiment"
)

func sweepBuilder(steps int) func(map[string]float64) (*experiment.Experiment, error) {
	reg := experiment.NewRegistry()
	return func(params map[string]float64) (*experiment.Experiment, error) {
		cfg := config.DefaultConfig()
		cfg.Particles = 50
		cfg.Steps = steps
		for k, v := range params {
			if err := cfg.Set(k, v); err != nil {
				return nil, err
			}
		}
		return experiment.New(cfg, reg)
	}
}

func TestGridSearchVisitsEveryPoint(t *testing.T) {
	g := NewGridSearch([]string{"gamma", "dt"}, [][]float64{{0.5, 2}, {0.01, 0.02, 0.05}})
	best, score, trials, err := g.Search(context.Background(), sweepBuilder(100), "equipartition_error")
	if err != nil {
		t.Fatal(err)
	}
	if len(trials) != 6 {
		t.Fatalf("expected 6 trials, got %d", len(trials))
	}
	if best == nil || math.IsInf(score, 1) {
		t.Fatal("expected a best point")
	}
	ranked := Ranked(trials)
	if ranked[0].Score != score {
		t.Errorf("ranked head %f does not match best %f", ranked[0].Score, score)
	}
	if trials[0].Params["gamma"] != 0.5 || trials[0].Params["dt"] != 0.01 {
		t.Errorf("unexpected first grid point %v", trials[0].Params)
	}
}

func TestGridSearchRecordsFailures(t *testing.T) {
	g := NewGridSearch([]string{"box"}, [][]float64{{-1, 1}})
	_, _, trials, err := g.Search(context.Background(), sweepBuilder(10), "containment")
	if err != nil {
		t.Fatal(err)
	}
	if trials[0].Err == nil || trials[1].Err != nil {
		t.Errorf("expected only the negative box to fail: %+v", trials)
	}
	if len(Ranked(trials)) != 1 {
		t.Error("failed trials should not be ranked")
	}
}

func TestGridSearchCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	g := NewGridSearch([]string{"gamma"}, [][]float64{{1, 2}})
	if _, _, _, err := g.Search(ctx, sweepBuilder(10), "temperature"); err == nil {
		t.Error("expected cancellation error")
	}
}

func TestLinspace(t *testing.T) {
	got := Linspace(0, 1, 5)
	want := []float64{0, 0.25, 0.5, 0.75, 1}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-15 {
			t.Errorf("index %d: got %f, want %f", i, got[i], want[i])
		}
	}
	if Linspace(3, 4, 1)[0] != 3 || Linspace(0, 1, 0) != nil {
		t.Error("degenerate sizes")
	}
}
