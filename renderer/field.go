package renderer

import (
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/orbitsteer/systems"
)

// FieldRenderer draws the attraction field as short vectors sampled on
// shells around each source.
type FieldRenderer struct {
	shells  []float64 // fractions of the falloff radius
	samples int       // points per shell
	scale   float64   // vector length per unit of attraction

	// Sample points are cached per source set
	points []r3.Vec
	cached int
}

// NewFieldRenderer creates a field renderer.
func NewFieldRenderer() *FieldRenderer {
	return &FieldRenderer{
		shells:  []float64{0.3, 0.55, 0.8},
		samples: 160,
		scale:   1.5,
		cached:  -1,
	}
}

// Draw renders the net attraction at every sample point, colored by
// strength relative to the strongest sample. Call inside BeginMode3D.
func (f *FieldRenderer) Draw(field *systems.AttractionField) {
	srcs := field.Sources()
	if len(srcs) != f.cached {
		f.rebuild(srcs)
	}

	vectors := make([]r3.Vec, len(f.points))
	peak := 0.0
	for i, p := range f.points {
		vectors[i] = field.NetAttraction(p)
		peak = math.Max(peak, r3.Norm(vectors[i]))
	}
	if peak == 0 {
		return
	}

	for i, p := range f.points {
		strength := r3.Norm(vectors[i]) / peak
		if strength < 0.02 {
			continue
		}
		color := rl.Color{R: 80, G: uint8(120 + 135*strength), B: 255, A: uint8(60 + 160*strength)}
		rl.DrawLine3D(vec(p), segment(p, vectors[i], f.scale), color)
	}
}

// rebuild lays points on each shell with a Fibonacci sphere.
func (f *FieldRenderer) rebuild(srcs []*systems.GravitySource) {
	f.points = f.points[:0]
	golden := math.Pi * (3 - math.Sqrt(5))
	for _, src := range srcs {
		for _, frac := range f.shells {
			r := math.Max(src.FalloffRadius*frac, src.Radius*1.05)
			for i := 0; i < f.samples; i++ {
				y := 1 - 2*(float64(i)+0.5)/float64(f.samples)
				ring := math.Sqrt(1 - y*y)
				theta := golden * float64(i)
				dir := r3.Vec{X: ring * math.Cos(theta), Y: y, Z: ring * math.Sin(theta)}
				f.points = append(f.points, r3.Add(src.Position, r3.Scale(r, dir)))
			}
		}
	}
	f.cached = len(srcs)
}
