package main

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/orbitsteer/config"
	"github.com/pthm-cable/orbitsteer/systems"
)

// FieldSample is the net attraction at one grid point.
type FieldSample struct {
	Row       int     `csv:"row"`
	Col       int     `csv:"col"`
	X         float64 `csv:"x"`
	Y         float64 `csv:"y"`
	Z         float64 `csv:"z"`
	AX        float64 `csv:"ax"`
	AY        float64 `csv:"ay"`
	AZ        float64 `csv:"az"`
	Magnitude float64 `csv:"magnitude"`
	Nearest   string  `csv:"nearest"`
	Inside    bool    `csv:"inside"` // below the nearest planet's surface
}

// Plane is a square grid perpendicular to a world axis.
type Plane struct {
	Axis       string
	Offset     float64
	Extent     float64 // half-width
	Resolution int
}

// Validate rejects planes that cannot be sampled.
func (p Plane) Validate() error {
	switch p.Axis {
	case "x", "y", "z":
	default:
		return fmt.Errorf("axis must be x, y or z, got %q", p.Axis)
	}
	if p.Resolution < 2 {
		return fmt.Errorf("resolution must be at least 2, got %d", p.Resolution)
	}
	if p.Extent <= 0 {
		return fmt.Errorf("extent must be positive, got %v", p.Extent)
	}
	return nil
}

// Point returns the world position of grid cell (row, col).
func (p Plane) Point(row, col int) r3.Vec {
	step := 2 * p.Extent / float64(p.Resolution-1)
	u := -p.Extent + float64(col)*step
	v := p.Extent - float64(row)*step
	switch p.Axis {
	case "x":
		return r3.Vec{X: p.Offset, Y: v, Z: u}
	case "y":
		return r3.Vec{X: u, Y: p.Offset, Z: v}
	}
	return r3.Vec{X: u, Y: v, Z: p.Offset}
}

// NewField registers every configured planet.
func NewField(cfg *config.Config) *systems.AttractionField {
	field := systems.NewAttractionField()
	for _, pc := range cfg.Planets {
		field.Register(&systems.GravitySource{
			Name:          pc.Name,
			Position:      pc.Position.Vec(),
			Strength:      pc.Strength(),
			FalloffRadius: pc.AttractionRadius,
			Radius:        pc.Radius,
		})
	}
	return field
}

// LargestRadius returns the largest attraction radius in field, or 100.
func LargestRadius(field *systems.AttractionField) float64 {
	r := 0.0
	for _, src := range field.Sources() {
		r = max(r, src.FalloffRadius)
	}
	if r == 0 {
		return 100
	}
	return r
}

// Sample evaluates the field over the plane, row by row.
func Sample(field *systems.AttractionField, p Plane) []FieldSample {
	out := make([]FieldSample, 0, p.Resolution*p.Resolution)
	for row := 0; row < p.Resolution; row++ {
		for col := 0; col < p.Resolution; col++ {
			pt := p.Point(row, col)
			a := field.NetAttraction(pt)
			s := FieldSample{
				Row: row, Col: col,
				X: pt.X, Y: pt.Y, Z: pt.Z,
				AX: a.X, AY: a.Y, AZ: a.Z,
				Magnitude: r3.Norm(a),
			}
			if src, ok := field.Nearest(pt); ok {
				s.Nearest = src.Name
				s.Inside = src.DistanceToCore(pt) < src.Radius
			}
			out = append(out, s)
		}
	}
	return out
}
