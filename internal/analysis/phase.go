package analysis

import (
	"strings"

	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/brownsim/internal/dynamo"
)

// PhasePortrait2D holds (position, momentum) pairs for one coordinate.
type PhasePortrait2D struct {
	Particle, Axis int
	Points         []struct{ X, Y float64 }
}

// GeneratePhasePortrait collects axis of particle from every snapshot.
func GeneratePhasePortrait(traj *dynamo.Trajectory, particle, axis int) *PhasePortrait2D {
	if particle < 0 || particle >= traj.Particles() || axis < 0 || axis > 2 {
		return nil
	}

	portrait := &PhasePortrait2D{
		Particle: particle,
		Axis:     axis,
		Points:   make([]struct{ X, Y float64 }, 0, traj.Len()),
	}

	for step := range traj.Positions {
		portrait.Points = append(portrait.Points, struct{ X, Y float64 }{
			X: traj.Positions[step][particle][axis],
			Y: traj.Momenta[step][particle][axis],
		})
	}

	return portrait
}

// densityGlyphs shade a cell by how many samples fall in it.
var densityGlyphs = []rune(" .:-=+*#%@")

// PhasePortraitToASCII bins the portrait on a width x height grid and shades
// each cell by relative sample count. The p = 0 line is drawn where empty.
func PhasePortraitToASCII(portrait *PhasePortrait2D, width, height int) string {
	if portrait == nil || len(portrait.Points) == 0 || width < 2 || height < 2 {
		return ""
	}

	xs := make([]float64, len(portrait.Points))
	ys := make([]float64, len(portrait.Points))
	for i, p := range portrait.Points {
		xs[i], ys[i] = p.X, p.Y
	}
	minX, maxX := padRange(floats.Min(xs), floats.Max(xs))
	minY, maxY := padRange(floats.Min(ys), floats.Max(ys))

	counts := make([][]int, height)
	for i := range counts {
		counts[i] = make([]int, width)
	}
	peak := 0
	for i := range xs {
		col := int((xs[i] - minX) / (maxX - minX) * float64(width-1))
		row := height - 1 - int((ys[i]-minY)/(maxY-minY)*float64(height-1))
		counts[row][col]++
		peak = max(peak, counts[row][col])
	}

	zeroRow := -1
	if minY <= 0 && maxY >= 0 {
		zeroRow = height - 1 - int(-minY/(maxY-minY)*float64(height-1))
	}

	var sb strings.Builder
	top := len(densityGlyphs) - 1
	for row := range counts {
		for _, n := range counts[row] {
			switch {
			case n > 0:
				level := 1 + (n*(top-1)+peak-1)/peak
				sb.WriteRune(densityGlyphs[min(level, top)])
			case row == zeroRow:
				sb.WriteRune('─')
			default:
				sb.WriteRune(' ')
			}
		}
		sb.WriteRune('\n')
	}
	return sb.String()
}

// padRange widens [lo, hi] by 10 % on each side, or to unit width when flat.
func padRange(lo, hi float64) (float64, float64) {
	span := hi - lo
	if span == 0 {
		span = 1
	}
	return lo - 0.1*span, hi + 0.1*span
}
