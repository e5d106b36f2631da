// Package renderer draws the simulation in 3D with raylib.
package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/orbitsteer/components"
)

func vec(v r3.Vec) rl.Vector3 {
	return rl.Vector3{X: float32(v.X), Y: float32(v.Y), Z: float32(v.Z)}
}

func fromRL(v rl.Vector3) r3.Vec {
	return r3.Vec{X: float64(v.X), Y: float64(v.Y), Z: float64(v.Z)}
}

// segment returns the end point of a line of length scale along dir from p.
func segment(p, dir r3.Vec, scale float64) rl.Vector3 {
	return vec(r3.Add(p, r3.Scale(scale, dir)))
}

// dangerColor fades from white at no danger to red at danger >= 1.
func dangerColor(danger float64) rl.Color {
	t := danger
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	gb := uint8(255 * (1 - t))
	return rl.Color{R: 255, G: gb, B: gb, A: 255}
}

// goalColor colors agents by primary behavior.
func goalColor(kind components.GoalKind) rl.Color {
	switch kind {
	case components.GoalSeek:
		return rl.Color{R: 90, G: 170, B: 255, A: 255}
	case components.GoalArrive:
		return rl.Color{R: 80, G: 220, B: 160, A: 255}
	case components.GoalFlee:
		return rl.Color{R: 240, G: 200, B: 80, A: 255}
	case components.GoalPursue:
		return rl.Color{R: 235, G: 70, B: 60, A: 255}
	case components.GoalEvade:
		return rl.Color{R: 200, G: 110, B: 240, A: 255}
	case components.GoalWander:
		return rl.Color{R: 180, G: 180, B: 180, A: 255}
	}
	return rl.White
}
