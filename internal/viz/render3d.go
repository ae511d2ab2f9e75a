package viz

import (
	"math"

	"github.com/san-kum/brownsim/internal/dynamo"
)

// Vec3 is a render-space point. Simulation vectors convert through FromVec.
type Vec3 struct {
	X, Y, Z float64
}

func (v Vec3) Add(o Vec3) Vec3      { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }
func (v Vec3) Sub(o Vec3) Vec3      { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }
func (v Vec3) Scale(s float64) Vec3 { return Vec3{v.X * s, v.Y * s, v.Z * s} }
func (v Vec3) Length() float64      { return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z) }

// FromVec converts a simulation vector to a render vector.
func FromVec(v dynamo.Vec3) Vec3 { return Vec3{v[0], v[1], v[2]} }

// Camera orbits Target at distance Position.Z with a pinhole projection.
type Camera struct {
	Position, Target Vec3
	Near             float64
	RotX, RotY, RotZ float64
	Zoom             float64
}

func NewCamera() *Camera {
	return &Camera{Position: Vec3{0, 0, 50}, Near: 0.1, Zoom: 1.0}
}

func (c *Camera) RotateX(a float64) { c.RotX += a }
func (c *Camera) RotateY(a float64) { c.RotY += a }
func (c *Camera) RotateZ(a float64) { c.RotZ += a }
func (c *Camera) ZoomIn()           { c.Zoom = math.Min(50, c.Zoom*1.2) }
func (c *Camera) ZoomOut()          { c.Zoom = math.Max(0.05, c.Zoom/1.2) }

// RotatePoint applies the X, then Y, then Z rotation.
func (c *Camera) RotatePoint(p Vec3) Vec3 {
	cx, sx := math.Cos(c.RotX), math.Sin(c.RotX)
	p.Y, p.Z = p.Y*cx-p.Z*sx, p.Y*sx+p.Z*cx
	cy, sy := math.Cos(c.RotY), math.Sin(c.RotY)
	p.X, p.Z = p.X*cy+p.Z*sy, -p.X*sy+p.Z*cy
	cz, sz := math.Cos(c.RotZ), math.Sin(c.RotZ)
	p.X, p.Y = p.X*cz-p.Y*sz, p.X*sz+p.Y*cz
	return p
}

// ProjectPoint applies rotation, zoom and perspective and returns continuous
// view-plane coordinates plus depth. ok is false behind the near plane.
func (c *Camera) ProjectPoint(p Vec3) (x, y, depth float64, ok bool) {
	rot := c.RotatePoint(p.Sub(c.Target)).Scale(c.Zoom)
	dist := c.Position.Z
	if rot.Z >= dist-c.Near {
		return 0, 0, 0, false
	}
	scale := dist / (dist - rot.Z)
	return rot.X * scale, rot.Y * scale, rot.Z, true
}

// Project maps p onto a sw x sh raster centered on the target. One view-plane
// unit spans a third of the shorter side.
func (c *Camera) Project(p Vec3, sw, sh int) (int, int, float64, bool) {
	px, py, depth, ok := c.ProjectPoint(p)
	if !ok {
		return 0, 0, 0, false
	}
	unit := float64(min(sw, sh)) / 3
	sx := int(math.Round(px*unit)) + sw/2
	sy := int(math.Round(-py*unit)) + sh/2
	return sx, sy, depth, sx >= 0 && sx < sw && sy >= 0 && sy < sh
}

type Segment struct{ Start, End Vec3 }

// Wireframe is one frame of the live scene: box or axes edges, trail
// segments and particle positions.
type Wireframe struct {
	Segments []Segment
	Points   []Vec3
}

func NewWireframe() *Wireframe { return &Wireframe{} }

func (w *Wireframe) AddEdge(s, e Vec3) { w.Segments = append(w.Segments, Segment{s, e}) }
func (w *Wireframe) AddPoint(p Vec3)   { w.Points = append(w.Points, p) }

func (w *Wireframe) Clear() {
	w.Segments = w.Segments[:0]
	w.Points = w.Points[:0]
}

// Render3D draws w onto c at dot resolution. Segments with neither end on
// screen are skipped; points are drawn as marks.
func Render3D(c *Canvas, w *Wireframe, cam *Camera) {
	if c == nil || w == nil || cam == nil {
		return
	}
	dw, dh := 2*c.Width, 4*c.Height
	for _, s := range w.Segments {
		x1, y1, _, v1 := cam.Project(s.Start, dw, dh)
		x2, y2, _, v2 := cam.Project(s.End, dw, dh)
		if v1 || v2 {
			c.DrawLine(x1, y1, x2, y2)
		}
	}
	for _, p := range w.Points {
		if x, y, _, ok := cam.Project(p, dw, dh); ok {
			c.Mark(x, y)
		}
	}
}

// CreateCubeWireframe outlines a cube of edge size centered on the origin.
func CreateCubeWireframe(size float64) *Wireframe {
	w, s := NewWireframe(), size/2
	v := []Vec3{{-s, -s, -s}, {s, -s, -s}, {s, s, -s}, {-s, s, -s}, {-s, -s, s}, {s, -s, s}, {s, s, s}, {-s, s, s}}
	for _, e := range [][2]int{{0, 1}, {1, 2}, {2, 3}, {3, 0}, {4, 5}, {5, 6}, {6, 7}, {7, 4}, {0, 4}, {1, 5}, {2, 6}, {3, 7}} {
		w.AddEdge(v[e[0]], v[e[1]])
	}
	return w
}

// CreateAxesWireframe draws the three positive half-axes of length l.
func CreateAxesWireframe(l float64) *Wireframe {
	w := NewWireframe()
	w.AddEdge(Vec3{}, Vec3{l, 0, 0})
	w.AddEdge(Vec3{}, Vec3{0, l, 0})
	w.AddEdge(Vec3{}, Vec3{0, 0, l})
	return w
}
