package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/orbitsteer/components"
	"github.com/pthm-cable/orbitsteer/systems"
)

var (
	planetColor     = rl.Color{R: 60, G: 90, B: 120, A: 255}
	planetWire      = rl.Color{R: 90, G: 130, B: 170, A: 255}
	attractionColor = rl.Color{R: 120, G: 200, B: 255, A: 40}
	obstacleColor   = rl.Color{R: 150, G: 110, B: 80, A: 255}
)

// PlanetRenderer draws gravity sources and static obstacles.
type PlanetRenderer struct {
	rings, slices int32
}

// NewPlanetRenderer creates a planet renderer.
func NewPlanetRenderer() *PlanetRenderer {
	return &PlanetRenderer{rings: 24, slices: 32}
}

// Draw renders every source's surface, and its attraction radius when
// showRadius is set. Call inside BeginMode3D.
func (p *PlanetRenderer) Draw(sources []*systems.GravitySource, showRadius bool) {
	for _, src := range sources {
		center := vec(src.Position)
		if src.Radius > 0 {
			rl.DrawSphereEx(center, float32(src.Radius), p.rings, p.slices, planetColor)
			rl.DrawSphereWires(center, float32(src.Radius)*1.001, p.rings/2, p.slices/2, planetWire)
		}
		if showRadius && src.FalloffRadius > 0 {
			rl.DrawSphereWires(center, float32(src.FalloffRadius), p.rings/2, p.slices/2, attractionColor)
		}
	}
}

// DrawObstacles renders obstacle spheres.
func (p *PlanetRenderer) DrawObstacles(obstacles []components.Obstacle) {
	for _, o := range obstacles {
		rl.DrawSphereEx(vec(o.Position), float32(o.Radius), 12, 16, obstacleColor)
	}
}
