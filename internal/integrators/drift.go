package integrators

import (
	"math"

	"github.com/san-kum/brownsim/internal/dynamo"
)

// Wrap folds v into the canonical interval of conv. Both periodic folds are
// idempotent: a value already inside the interval is returned unchanged.
func Wrap(v, box float64, conv dynamo.WrapConvention) float64 {
	switch conv {
	case dynamo.WrapNone:
		return v
	case dynamo.WrapNearest:
		return wrapNearest(v, box)
	default:
		return wrapModulo(v, box)
	}
}

// wrapModulo maps v into [0, box).
func wrapModulo(v, box float64) float64 {
	w := math.Mod(v, box)
	if w < 0 {
		w += box
	}
	// w+box can round up to box for tiny negative w.
	if w >= box {
		w -= box
	}
	return w
}

// wrapNearest maps v into [-box/2, box/2).
func wrapNearest(v, box float64) float64 {
	half := box / 2
	if v >= -half && v < half {
		return v
	}
	w := wrapModulo(v+half, box) - half
	if w >= half {
		w -= box
	}
	if w < -half {
		w += box
	}
	return w
}

// Drift returns r + t*(p/box) folded into the periodic domain.
func Drift(t float64, r, p []dynamo.Vec3, box float64, conv dynamo.WrapConvention) []dynamo.Vec3 {
	dst := make([]dynamo.Vec3, len(r))
	DriftInto(dst, r, p, t, box, conv)
	return dst
}

// DriftInto writes the drifted positions into dst, which may alias r.
func DriftInto(dst, r, p []dynamo.Vec3, t, box float64, conv dynamo.WrapConvention) {
	drift(dst, r, p, t, box, conv, DefaultMinChunk)
}

func drift(dst, r, p []dynamo.Vec3, t, box float64, conv dynamo.WrapConvention, minChunk int) {
	dynamo.ParallelFor(len(r), minChunk, func(start, end int) {
		for i := start; i < end; i++ {
			for k := 0; k < 3; k++ {
				dst[i][k] = Wrap(r[i][k]+t*(p[i][k]/box), box, conv)
			}
		}
	})
}
