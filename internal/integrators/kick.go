package integrators

import "github.com/san-kum/brownsim/internal/dynamo"

// DefaultMinChunk is the particle count below which per-particle loops stay
// on the calling goroutine.
const DefaultMinChunk = 4096

// Kick returns p + t*f for every component of every particle. A zero force
// means no force and returns an unchanged copy of p.
func Kick(t float64, p []dynamo.Vec3, f float64) []dynamo.Vec3 {
	dst := make([]dynamo.Vec3, len(p))
	KickInto(dst, p, t, f)
	return dst
}

// KickInto writes the kicked momenta into dst, which may alias p.
func KickInto(dst, p []dynamo.Vec3, t, f float64) {
	kick(dst, p, t, f, DefaultMinChunk)
}

func kick(dst, p []dynamo.Vec3, t, f float64, minChunk int) {
	if f == 0 {
		copy(dst, p)
		return
	}
	impulse := t * f
	dynamo.ParallelFor(len(p), minChunk, func(start, end int) {
		for i := start; i < end; i++ {
			for k := 0; k < 3; k++ {
				dst[i][k] = p[i][k] + impulse
			}
		}
	})
}
