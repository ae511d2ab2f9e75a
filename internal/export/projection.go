package export

import (
	"gonum.org/v1/plot/plotter"

	"github.com/san-kum/brownsim/internal/dynamo"
	"github.com/san-kum/brownsim/internal/viz"
)

// Projection maps 3D positions to a drawing plane.
type Projection string

const (
	ProjectXY Projection = "xy"
	ProjectXZ Projection = "xz"
	ProjectYZ Projection = "yz"
	// ProjectIso is a perspective view through a rotated camera.
	ProjectIso Projection = "iso"
)

func ParseProjection(name string) (Projection, error) {
	switch p := Projection(name); p {
	case ProjectXY, ProjectXZ, ProjectYZ, ProjectIso:
		return p, nil
	case "":
		return ProjectXY, nil
	}
	return "", &dynamo.ParamError{Name: "projection", Value: name, Reason: "must be one of xy, xz, yz, iso"}
}

func (p Projection) AxisLabel(axis int) string {
	switch p {
	case ProjectXZ:
		return [2]string{"X", "Z"}[axis]
	case ProjectYZ:
		return [2]string{"Y", "Z"}[axis]
	case ProjectIso:
		return ""
	}
	return [2]string{"X", "Y"}[axis]
}

func isoCamera() *viz.Camera {
	cam := viz.NewCamera()
	cam.RotX = -0.6
	cam.RotY = 0.8
	cam.Position.Z = 10
	return cam
}

// Points projects one walk.
func (p Projection) Points(walk []dynamo.Vec3) plotter.XYs {
	xys := make(plotter.XYs, len(walk))
	var cam *viz.Camera
	if p == ProjectIso {
		cam = isoCamera()
	}
	for i, r := range walk {
		switch p {
		case ProjectXZ:
			xys[i].X, xys[i].Y = r[0], r[2]
		case ProjectYZ:
			xys[i].X, xys[i].Y = r[1], r[2]
		case ProjectIso:
			x, y, _, _ := cam.ProjectPoint(viz.FromVec(r))
			xys[i].X, xys[i].Y = x, y
		default:
			xys[i].X, xys[i].Y = r[0], r[1]
		}
	}
	return xys
}
