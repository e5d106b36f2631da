package systems

import (
	"gonum.org/v1/gonum/spatial/r3"
)

// GravitySource is a planet's attraction field: full Strength at its Position,
// falling off linearly to zero at FalloffRadius.
type GravitySource struct {
	Name          string
	Position      r3.Vec
	Strength      float64 // Positive pulls toward the source
	FalloffRadius float64
	Radius        float64 // Surface radius, informational
}

// Falloff returns the linear falloff factor at distance d: 1 at the centre,
// 0 at or beyond FalloffRadius.
func (s *GravitySource) Falloff(d float64) float64 {
	if s.FalloffRadius <= 0 {
		return 0
	}
	return clamp01(1 - d/s.FalloffRadius)
}

// Attract returns this source's contribution at point p.
// At the exact centre the direction is undefined and the contribution is zero.
func (s *GravitySource) Attract(p r3.Vec) r3.Vec {
	dir := r3.Sub(s.Position, p)
	d := r3.Norm(dir)
	if d == 0 {
		return r3.Vec{}
	}
	return r3.Scale(s.Strength*s.Falloff(d)/d, dir)
}

// DistanceToCore returns the distance from p to the source centre.
func (s *GravitySource) DistanceToCore(p r3.Vec) float64 {
	return Distance(s.Position, p)
}

// AttractionField aggregates any number of gravity sources.
// Sources are kept in registration order; membership is by identity.
type AttractionField struct {
	sources []*GravitySource
	members map[*GravitySource]struct{}
}

// NewAttractionField creates an empty field.
func NewAttractionField() *AttractionField {
	return &AttractionField{
		members: make(map[*GravitySource]struct{}),
	}
}

// Register adds src to the field. Registering the same source again is a no-op
// and returns false.
func (f *AttractionField) Register(src *GravitySource) bool {
	if src == nil {
		return false
	}
	if _, ok := f.members[src]; ok {
		return false
	}
	f.members[src] = struct{}{}
	f.sources = append(f.sources, src)
	return true
}

// Len returns the number of registered sources.
func (f *AttractionField) Len() int {
	return len(f.sources)
}

// Sources returns the registered sources in registration order.
func (f *AttractionField) Sources() []*GravitySource {
	out := make([]*GravitySource, len(f.sources))
	copy(out, f.sources)
	return out
}

// NetAttraction sums every source's contribution at p.
// An empty field yields the zero vector.
func (f *AttractionField) NetAttraction(p r3.Vec) r3.Vec {
	var total r3.Vec
	for _, src := range f.sources {
		total = r3.Add(total, src.Attract(p))
	}
	return total
}

// Nearest returns the source closest to p. Ties go to the earliest registered
// source. ok is false when no sources are registered.
func (f *AttractionField) Nearest(p r3.Vec) (src *GravitySource, ok bool) {
	best := -1.0
	for _, s := range f.sources {
		d := r3.Norm2(r3.Sub(s.Position, p))
		if src == nil || d < best {
			src, best = s, d
		}
	}
	return src, src != nil
}
