package components

import "gonum.org/v1/gonum/spatial/r3"

// Body holds the physical extent of an entity.
type Body struct {
	Radius float64
}

// SphereCollider is a sphere-shaped bounding volume.
type SphereCollider struct {
	Center r3.Vec
	Radius float64
}

// ClosestPoint returns the point of the sphere closest to p.
// Points inside the sphere are their own closest point.
func (c SphereCollider) ClosestPoint(p r3.Vec) r3.Vec {
	d := r3.Sub(p, c.Center)
	n := r3.Norm(d)
	if n <= c.Radius {
		return p
	}
	return r3.Add(c.Center, r3.Scale(c.Radius/n, d))
}
