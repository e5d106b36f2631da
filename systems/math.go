package systems

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Scalar helpers

// clamp01 clamps a value to the [0, 1] range.
func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// clampFloat clamps a value between minVal and maxVal.
func clampFloat(v, minVal, maxVal float64) float64 {
	if v < minVal {
		return minVal
	}
	if v > maxVal {
		return maxVal
	}
	return v
}

// Remap maps v from [fromMin, fromMax] onto [toMin, toMax], clamping the result
// to the target range. A reversed target range (toMax < toMin) maps linearly too.
func Remap(v, fromMin, fromMax, toMin, toMax float64) float64 {
	lo, hi := math.Min(fromMin, fromMax), math.Max(fromMin, fromMax)
	if hi == lo {
		return toMin
	}

	out := (v-lo)/(hi-lo)*(toMax-toMin) + toMin
	outLo, outHi := math.Min(toMin, toMax), math.Max(toMin, toMax)
	return clampFloat(out, outLo, outHi)
}

// ClampAngle clamps an angle in degrees given in [0, 360) to [minDeg, maxDeg],
// treating values above 180 as negative.
func ClampAngle(angle, minDeg, maxDeg float64) float64 {
	if angle > 180 {
		angle -= 360
	}
	angle = clampFloat(angle, minDeg, maxDeg)
	if angle < 0 {
		angle += 360
	}
	return angle
}

// Vector helpers

// Unit returns the unit vector of v, or the zero vector when v has no length.
// r3.Unit returns NaNs for the zero vector.
func Unit(v r3.Vec) r3.Vec {
	n := r3.Norm(v)
	if n == 0 {
		return r3.Vec{}
	}
	return r3.Scale(1/n, v)
}

// ClampMagnitude shortens v to at most maxLen, preserving direction.
// A non-positive maxLen yields the zero vector.
func ClampMagnitude(v r3.Vec, maxLen float64) r3.Vec {
	if maxLen <= 0 {
		return r3.Vec{}
	}
	n2 := r3.Norm2(v)
	if n2 <= maxLen*maxLen {
		return v
	}
	return r3.Scale(maxLen/math.Sqrt(n2), v)
}

// Distance returns the Euclidean distance between a and b.
func Distance(a, b r3.Vec) float64 {
	return r3.Norm(r3.Sub(a, b))
}

// Sum adds all vectors.
func Sum(vs ...r3.Vec) r3.Vec {
	var total r3.Vec
	for _, v := range vs {
		total = r3.Add(total, v)
	}
	return total
}

// CircleDirection returns the index-th of resolution unit directions evenly
// spaced around the Z axis (on the XY plane).
func CircleDirection(index, resolution int) r3.Vec {
	angle := float64(index) * 2 * math.Pi / float64(resolution)
	return r3.Vec{X: math.Cos(angle), Y: math.Sin(angle)}
}

// CircleDirectionsAroundAxis returns resolution directions on the XY plane fanned
// symmetrically around axis, covering completeness (0-1) of a full turn.
func CircleDirectionsAroundAxis(resolution int, axis r3.Vec, completeness float64) []r3.Vec {
	if resolution <= 0 {
		return nil
	}
	dirs := make([]r3.Vec, resolution)
	step := completeness * 2 * math.Pi / float64(resolution)
	offset := 0.0
	if resolution%2 == 0 {
		offset = step / 2
	}
	middle := float64(resolution / 2)
	base := math.Atan2(axis.Y, axis.X)

	for i := range dirs {
		angle := base + (float64(i)-middle)*step + offset
		dirs[i] = r3.Vec{X: math.Cos(angle), Y: math.Sin(angle)}
	}
	return dirs
}

// RotateToPlane maps a direction expressed on the XY plane (Z up) into the plane
// perpendicular to up. A zero up leaves the direction unchanged.
func RotateToPlane(dir, up r3.Vec) r3.Vec {
	return FromToRotate(dir, r3.Vec{Z: 1}, up)
}

// Tangent projects v onto the plane perpendicular to up and normalizes it.
// It returns the zero vector when v is parallel to up or either is zero.
func Tangent(v, up r3.Vec) r3.Vec {
	u := Unit(up)
	return Unit(r3.Sub(v, r3.Scale(r3.Dot(v, u), u)))
}

// FromToRotate rotates v by the shortest rotation taking from onto to.
// Degenerate inputs (zero vectors) leave v unchanged.
func FromToRotate(v, from, to r3.Vec) r3.Vec {
	f, t := Unit(from), Unit(to)
	if f == (r3.Vec{}) || t == (r3.Vec{}) {
		return v
	}

	cos := clampFloat(r3.Dot(f, t), -1, 1)
	axis := r3.Cross(f, t)
	if r3.Norm2(axis) < 1e-18 {
		if cos > 0 {
			return v
		}
		// Antiparallel: any axis perpendicular to from gives a half turn
		axis = r3.Cross(f, r3.Vec{X: 1})
		if r3.Norm2(axis) < 1e-18 {
			axis = r3.Cross(f, r3.Vec{Y: 1})
		}
	}
	return r3.Rotate(v, math.Acos(cos), Unit(axis))
}
