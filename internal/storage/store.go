package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/brownsim/internal/config"
	"github.com/san-kum/brownsim/internal/dynamo"
	"github.com/san-kum/brownsim/internal/sim"
)

const (
	metadataFile   = "metadata.json"
	trajectoryFile = "trajectory.csv"
)

var trajectoryHeader = []string{"step", "time", "particle", "x", "y", "z", "px", "py", "pz"}

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID          string             `json:"id"`
	Timestamp   time.Time          `json:"timestamp"`
	Integrator  string             `json:"integrator"`
	Seed        uint64             `json:"seed"`
	Stream      uint64             `json:"stream"`
	Dt          float64            `json:"dt"`
	Gamma       float64            `json:"gamma"`
	Temperature float64            `json:"temperature"`
	Box         float64            `json:"box"`
	Particles   int                `json:"particles"`
	Steps       int                `json:"steps"`
	Force       float64            `json:"force"`
	Noise       bool               `json:"noise"`
	Periodic    bool               `json:"periodic"`
	Wrap        string             `json:"wrap"`
	InitR       float64            `json:"init_r"`
	InitP       float64            `json:"init_p"`
	Metrics     map[string]float64 `json:"metrics"`
}

// NewMetadata captures everything needed to rerun cfg.
func NewMetadata(cfg *config.Config, metrics map[string]float64) RunMetadata {
	return RunMetadata{
		Timestamp:   time.Now(),
		Integrator:  cfg.Integrator,
		Seed:        cfg.Seed,
		Stream:      cfg.Stream,
		Dt:          cfg.Dt,
		Gamma:       cfg.Gamma,
		Temperature: cfg.Temperature,
		Box:         cfg.Box,
		Particles:   cfg.Particles,
		Steps:       cfg.Steps,
		Force:       cfg.Force,
		Noise:       cfg.Noise,
		Periodic:    cfg.Periodic,
		Wrap:        cfg.Wrap,
		InitR:       cfg.InitState.R,
		InitP:       cfg.InitState.P,
		Metrics:     metrics,
	}
}

// Config rebuilds the run configuration recorded in m.
func (m RunMetadata) Config() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Integrator = m.Integrator
	cfg.Seed = m.Seed
	cfg.Stream = m.Stream
	cfg.Dt = m.Dt
	cfg.Gamma = m.Gamma
	cfg.Temperature = m.Temperature
	cfg.Box = m.Box
	cfg.Particles = m.Particles
	cfg.Steps = m.Steps
	cfg.Force = m.Force
	cfg.Noise = m.Noise
	cfg.Periodic = m.Periodic
	cfg.Wrap = m.Wrap
	cfg.InitState = config.InitStateConfig{R: m.InitR, P: m.InitP}
	return cfg
}

func (s *Store) Save(cfg *config.Config, result *sim.Result) (string, error) {
	runID := fmt.Sprintf("run_%d", time.Now().UnixNano())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := NewMetadata(cfg, result.Metrics)
	meta.ID = runID

	metaFile, err := os.Create(filepath.Join(runDir, metadataFile))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, trajectoryFile))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	if err := WriteTrajectoryCSV(csvFile, result.Trajectory); err != nil {
		return "", err
	}

	return runID, csvFile.Sync()
}

// WriteTrajectoryCSV writes one row per particle per snapshot, step-major.
func WriteTrajectoryCSV(out io.Writer, traj *dynamo.Trajectory) error {
	w := csv.NewWriter(out)

	if err := w.Write(trajectoryHeader); err != nil {
		return err
	}

	row := make([]string, len(trajectoryHeader))
	for step := range traj.Positions {
		for i := range traj.Positions[step] {
			r, p := traj.Positions[step][i], traj.Momenta[step][i]
			row[0] = strconv.Itoa(step)
			row[1] = formatFloat(traj.Times[step])
			row[2] = strconv.Itoa(i)
			for k := 0; k < 3; k++ {
				row[3+k] = formatFloat(r[k])
				row[6+k] = formatFloat(p[k])
			}
			if err := w.Write(row); err != nil {
				return err
			}
		}
	}

	w.Flush()
	return w.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// List returns stored runs, oldest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}

		runs = append(runs, *meta)
	}

	sort.SliceStable(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

func (s *Store) LoadTrajectory(runID string) (*dynamo.Trajectory, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, trajectoryFile))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return ReadTrajectoryCSV(file)
}

// ReadTrajectoryCSV parses the layout produced by WriteTrajectoryCSV.
func ReadTrajectoryCSV(in io.Reader) (*dynamo.Trajectory, error) {
	r := csv.NewReader(in)
	r.FieldsPerRecord = len(trajectoryHeader)

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}

	traj := dynamo.NewTrajectory(0)
	if len(records) < 2 {
		return traj, nil
	}

	var snap dynamo.ParticleState
	current := -1
	flush := func() error {
		if current < 0 {
			return nil
		}
		if len(traj.Positions) > 0 && len(snap.Position) != len(traj.Positions[0]) {
			return fmt.Errorf("trajectory step %d: %d particles, step 0 has %d: %w",
				current, len(snap.Position), len(traj.Positions[0]), dynamo.ErrDimensionMismatch)
		}
		traj.Positions = append(traj.Positions, snap.Position)
		traj.Momenta = append(traj.Momenta, snap.Momentum)
		return nil
	}

	for line, record := range records[1:] {
		vals := make([]float64, len(record))
		for j, field := range record {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("trajectory line %d: %w", line+2, err)
			}
			vals[j] = v
		}

		step := int(vals[0])
		if step != current {
			if step != current+1 {
				return nil, fmt.Errorf("trajectory line %d: step %d follows %d", line+2, step, current)
			}
			if err := flush(); err != nil {
				return nil, err
			}
			current = step
			snap = dynamo.ParticleState{}
			traj.Times = append(traj.Times, vals[1])
		}
		if int(vals[2]) != len(snap.Position) {
			return nil, fmt.Errorf("trajectory line %d: particle %d out of order", line+2, int(vals[2]))
		}
		snap.Position = append(snap.Position, dynamo.Vec3{vals[3], vals[4], vals[5]})
		snap.Momentum = append(snap.Momentum, dynamo.Vec3{vals[6], vals[7], vals[8]})
	}
	if err := flush(); err != nil {
		return nil, err
	}

	return traj, nil
}
