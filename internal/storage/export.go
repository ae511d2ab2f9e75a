package storage

import (
	"encoding/json"
	"io"

	"github.com/san-kum/brownsim/internal/config"
	"github.com/san-kum/brownsim/internal/dynamo"
	"github.com/san-kum/brownsim/internal/sim"
)

type ExportData struct {
	Run       RunMetadata     `json:"run"`
	Times     []float64       `json:"times"`
	Positions [][]dynamo.Vec3 `json:"positions"`
	Momenta   [][]dynamo.Vec3 `json:"momenta"`
}

// ExportJSON writes the run configuration, metrics and full trajectory.
func ExportJSON(out io.Writer, cfg *config.Config, result *sim.Result) error {
	meta := NewMetadata(cfg, result.Metrics)
	meta.Steps = result.Trajectory.Len()

	data := ExportData{
		Run:       meta,
		Times:     result.Trajectory.Times,
		Positions: result.Trajectory.Positions,
		Momenta:   result.Trajectory.Momenta,
	}

	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

func ImportJSON(in io.Reader) (*ExportData, error) {
	var data ExportData
	if err := json.NewDecoder(in).Decode(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

func (d *ExportData) Trajectory() *dynamo.Trajectory {
	return &dynamo.Trajectory{Positions: d.Positions, Momenta: d.Momenta, Times: d.Times}
}
