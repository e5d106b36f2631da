// Package camera provides a pivot camera that orbits a followed point and
// rolls with the surface of the nearest planet.
package camera

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/orbitsteer/systems"
)

// Pitch limits in degrees.
const (
	MinPitch = -40
	MaxPitch = 85
)

var worldUp = r3.Vec{Y: 1}

// Camera orbits Target at a zoom-controlled distance.
// Yaw and pitch are local to the surface under the target.
type Camera struct {
	Target r3.Vec

	// Orientation in degrees
	Yaw, Pitch float64

	// Zoom percent: 0 = MinDistance, 1 = MaxDistance
	Zoom float64

	MinDistance, MaxDistance float64

	// Smoothing is the rate (per second) distance follows zoom. 0 snaps.
	Smoothing float64

	// Sensitivity scales Rotate and ZoomBy input.
	LookSensitivity float64
	ZoomSensitivity float64

	distance float64
	surface  r3.Vec // local up under the target
}

// New creates a camera looking down at the origin from half zoom.
func New(minDistance, maxDistance float64) *Camera {
	c := &Camera{
		Pitch:           30,
		Zoom:            0.5,
		MinDistance:     minDistance,
		MaxDistance:     maxDistance,
		Smoothing:       8,
		LookSensitivity: 1,
		ZoomSensitivity: 1,
		surface:         worldUp,
	}
	c.distance = c.wantDistance()
	return c
}

// Rotate turns the camera by the given yaw and pitch deltas in degrees.
func (c *Camera) Rotate(dYaw, dPitch float64) {
	c.Yaw = math.Mod(c.Yaw+dYaw*c.LookSensitivity, 360)
	c.Pitch = clamp(c.Pitch-dPitch*c.LookSensitivity, MinPitch, MaxPitch)
}

// ZoomBy moves the zoom percent. Positive values zoom in.
func (c *Camera) ZoomBy(delta float64) {
	c.Zoom = clamp(c.Zoom-delta*c.ZoomSensitivity, 0, 1)
}

// Follow pivots around target, aligning the camera's up with the surface of
// the nearest planet in field. Without planets the world Y axis is up.
func (c *Camera) Follow(target r3.Vec, field *systems.AttractionField) {
	c.Target = target
	c.surface = worldUp
	if field == nil {
		return
	}
	if src, ok := field.Nearest(target); ok {
		if up := systems.Unit(r3.Sub(target, src.Position)); up != (r3.Vec{}) {
			c.surface = up
		}
	}
}

// Update eases the orbit distance toward the zoom level.
func (c *Camera) Update(dt float64) {
	want := c.wantDistance()
	if c.Smoothing <= 0 {
		c.distance = want
		return
	}
	t := math.Min(1, c.Smoothing*dt)
	c.distance += (want - c.distance) * t
}

// Distance returns the current orbit distance.
func (c *Camera) Distance() float64 {
	return c.distance
}

// Position returns the camera's world position.
func (c *Camera) Position() r3.Vec {
	return r3.Sub(c.Target, r3.Scale(c.distance, c.Forward()))
}

// Forward returns the unit view direction.
func (c *Camera) Forward() r3.Vec {
	return c.align(r3.Scale(-1, c.localOffset()))
}

// Up returns the camera's unit up vector.
func (c *Camera) Up() r3.Vec {
	yaw, pitch := radians(c.Yaw), radians(c.Pitch)
	local := r3.Vec{
		X: -math.Sin(pitch) * math.Sin(yaw),
		Y: math.Cos(pitch),
		Z: -math.Sin(pitch) * math.Cos(yaw),
	}
	return c.align(local)
}

// localOffset is the unit direction from target to camera with Y up.
func (c *Camera) localOffset() r3.Vec {
	yaw, pitch := radians(c.Yaw), radians(c.Pitch)
	return r3.Vec{
		X: math.Cos(pitch) * math.Sin(yaw),
		Y: math.Sin(pitch),
		Z: math.Cos(pitch) * math.Cos(yaw),
	}
}

func (c *Camera) align(v r3.Vec) r3.Vec {
	return systems.FromToRotate(v, worldUp, c.surface)
}

func (c *Camera) wantDistance() float64 {
	return c.MinDistance + (c.MaxDistance-c.MinDistance)*c.Zoom
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}

func clamp(x, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, x))
}
