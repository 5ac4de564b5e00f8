package object

import (
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/tomz197/kitebattle/internal/config"
	"github.com/tomz197/kitebattle/internal/draw"
	"github.com/tomz197/kitebattle/internal/physics"
)

// particlePool is a sync.Pool for reusing Particle objects to reduce allocations.
var particlePool = sync.Pool{
	New: func() any {
		return &Particle{}
	},
}

// Particle is one short-lived fragment of a cut kite.
type Particle struct {
	X, Y     float64 // Position
	VX, VY   float64 // Velocity, per tick
	Size     float64 // Side length of the square fragment
	Rotation float64
	Spin     float64 // Rotation added per tick
	Age      time.Duration
	Lifetime time.Duration
	Color    colorful.Color
}

// newParticle takes a particle from the pool and launches it from (x, y) in a
// random direction.
func newParticle(x, y float64, color colorful.Color, cfg config.ParticleConfig, rng *rand.Rand) *Particle {
	p := particlePool.Get().(*Particle)

	angle := physics.RandAngle(rng)
	speed := physics.RandRange(rng, cfg.SpeedMin, cfg.SpeedMax)

	*p = Particle{
		X:        x,
		Y:        y,
		VX:       math.Cos(angle) * speed,
		VY:       math.Sin(angle) * speed,
		Size:     physics.RandRange(rng, cfg.SizeMin, cfg.SizeMax),
		Rotation: physics.RandAngle(rng),
		Spin:     physics.RandRange(rng, -cfg.Spin, cfg.Spin),
		Lifetime: cfg.Lifetime,
		Color:    color,
	}
	return p
}

// Release returns the particle to the pool for reuse.
// Should be called when the particle is removed from the game.
func (p *Particle) Release() {
	particlePool.Put(p)
}

// Alive reports whether the particle is still within its lifetime.
func (p *Particle) Alive() bool {
	return p.Age < p.Lifetime
}

// Life returns the remaining fraction of the lifetime, 1 at birth and 0 at death.
func (p *Particle) Life() float64 {
	if p.Lifetime <= 0 {
		return 0
	}
	return math.Max(0, 1-float64(p.Age)/float64(p.Lifetime))
}

// step ages the particle and integrates one tick: move, fall, slow down, spin.
func (p *Particle) step(delta time.Duration, gravity, friction float64) {
	p.Age += delta

	p.X += p.VX
	p.Y += p.VY

	p.VY += gravity

	p.VX *= friction
	p.VY *= friction

	p.Rotation += p.Spin
}

// Draw renders the particle as a small rotated square that fades with age.
func (p *Particle) Draw(ctx DrawContext) {
	life := p.Life()
	if life <= 0 {
		return
	}

	half := p.Size / 2
	sin, cos := math.Sincos(p.Rotation)
	corners := ctx.Canvas.BorrowPoints(4)
	for i, c := range [4][2]float64{{-half, -half}, {half, -half}, {half, half}, {-half, half}} {
		corners[i] = draw.Point{
			X: p.X + c[0]*cos - c[1]*sin,
			Y: p.Y + c[0]*sin + c[1]*cos,
		}
	}
	ctx.Canvas.DrawPolygon(corners, true, draw.Fade(p.Color, life))
}

// ParticleSystem owns every live particle of a game.
type ParticleSystem struct {
	cfg       config.ParticleConfig
	rng       *rand.Rand
	particles []*Particle
}

// NewParticleSystem creates an empty particle system.
func NewParticleSystem(cfg config.ParticleConfig, rng *rand.Rand) *ParticleSystem {
	return &ParticleSystem{cfg: cfg, rng: rng}
}

// Emit adds count particles at (x, y). A count of zero or less uses the configured default.
func (ps *ParticleSystem) Emit(x, y float64, color colorful.Color, count int) {
	if count <= 0 {
		count = ps.cfg.Count
	}
	for i := 0; i < count; i++ {
		ps.particles = append(ps.particles, newParticle(x, y, color, ps.cfg, ps.rng))
	}
}

// Update advances every particle by one tick and drops the expired ones.
func (ps *ParticleSystem) Update(delta time.Duration) {
	kept := ps.particles[:0]
	for _, p := range ps.particles {
		p.step(delta, ps.cfg.Gravity, ps.cfg.Friction)
		if p.Alive() {
			kept = append(kept, p)
			continue
		}
		p.Release()
	}
	clear(ps.particles[len(kept):])
	ps.particles = kept
}

// Clear removes all particles.
func (ps *ParticleSystem) Clear() {
	for _, p := range ps.particles {
		p.Release()
	}
	clear(ps.particles)
	ps.particles = ps.particles[:0]
}

// Len returns the number of live particles.
func (ps *ParticleSystem) Len() int {
	return len(ps.particles)
}

// Each calls fn for every live particle in emission order.
func (ps *ParticleSystem) Each(fn func(p *Particle)) {
	for _, p := range ps.particles {
		fn(p)
	}
}

// Draw renders all particles.
func (ps *ParticleSystem) Draw(ctx DrawContext) {
	for _, p := range ps.particles {
		p.Draw(ctx)
	}
}
