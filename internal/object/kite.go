// Package object holds the simulated entities: kites and cut-effect particles.
package object

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/tomz197/kitebattle/internal/config"
	"github.com/tomz197/kitebattle/internal/physics"
)

// Role distinguishes the player kite from AI kites.
type Role int

const (
	RolePlayer Role = iota
	RoleAI
)

func (r Role) String() string {
	switch r {
	case RolePlayer:
		return "player"
	case RoleAI:
		return "ai"
	default:
		return fmt.Sprintf("Role(%d)", int(r))
	}
}

// KiteSpec is the parsed per-role tuning shared by every kite of that role.
type KiteSpec struct {
	config.KiteConfig
	Physics config.PhysicsConfig
	Palette []colorful.Color
}

// NewKiteSpec parses the role's color palette and bundles it with the physics constants.
func NewKiteSpec(kc config.KiteConfig, phys config.PhysicsConfig) (*KiteSpec, error) {
	palette, err := ParsePalette(kc.Colors)
	if err != nil {
		return nil, err
	}
	return &KiteSpec{KiteConfig: kc, Physics: phys, Palette: palette}, nil
}

// ParsePalette parses hex color strings such as "#ff0080".
func ParsePalette(hexes []string) ([]colorful.Color, error) {
	if len(hexes) == 0 {
		return nil, fmt.Errorf("empty palette")
	}
	palette := make([]colorful.Color, 0, len(hexes))
	for _, h := range hexes {
		c, err := colorful.Hex(h)
		if err != nil {
			return nil, fmt.Errorf("parsing color %q: %w", h, err)
		}
		palette = append(palette, c)
	}
	return palette, nil
}

// TrailPoint is one remembered position; Alpha grows from oldest to newest.
type TrailPoint struct {
	X, Y  float64
	Alpha float64
}

// Kite is one flying object, either the player or an AI wanderer.
type Kite struct {
	X, Y   float64        // Position (center)
	VX, VY float64        // Velocity, per tick
	Angle  float64        // Heading in radians, follows velocity
	Size   float64        // Diameter for drawing and collision
	Speed  float64        // Base speed
	Color  colorful.Color // Body color
	Role   Role
	Fade   float64 // 0 while alive; rises to 1 after the cut

	spec  *KiteSpec
	rng   *rand.Rand
	cut   bool
	trail []TrailPoint

	// Wander state (AI only)
	targetX, targetY float64
	wanderAngle      float64
	directionTimer   time.Duration
}

// NewKite creates a kite at (x, y). AI kites start with a random wander heading
// and their spawn point as wander target.
func NewKite(x, y float64, role Role, spec *KiteSpec, rng *rand.Rand) *Kite {
	k := &Kite{
		X:     x,
		Y:     y,
		Angle: physics.RandAngle(rng),
		Size:  spec.Size,
		Speed: spec.Speed,
		Role:  role,
		spec:  spec,
		rng:   rng,
		trail: make([]TrailPoint, 0, spec.TrailLength+1),
	}

	if role == RolePlayer {
		k.Color = spec.Palette[0]
	} else {
		k.Color = spec.Palette[rng.Intn(len(spec.Palette))]
		k.targetX = x
		k.targetY = y
		k.wanderAngle = physics.RandAngle(rng)
	}
	return k
}

// NewKiteAtEdge creates an AI kite near a random arena edge. The point is first
// sampled inside an inset rectangle, then snapped to edgeOffset from one of the
// four edges.
func NewKiteAtEdge(arena Arena, inset, edgeOffset float64, spec *KiteSpec, rng *rand.Rand) *Kite {
	x := physics.RandRange(rng, inset, arena.Width-inset)
	y := physics.RandRange(rng, inset, arena.Height-inset)

	switch rng.Intn(4) {
	case 0: // Top
		y = edgeOffset
	case 1: // Bottom
		y = arena.Height - edgeOffset
	case 2: // Left
		x = edgeOffset
	case 3: // Right
		x = arena.Width - edgeOffset
	}

	return NewKite(x, y, RoleAI, spec, rng)
}

// IsAlive reports whether the kite has not been cut.
func (k *Kite) IsAlive() bool {
	return !k.cut
}

// Cut marks the kite as cut. Cutting twice has no further effect.
func (k *Kite) Cut() {
	k.cut = true
}

// Faded reports whether a cut kite has finished fading and can be removed.
func (k *Kite) Faded() bool {
	return k.cut && k.Fade >= 1
}

// Radius returns the collision radius.
func (k *Kite) Radius() float64 {
	return k.Size / 2
}

// Trail returns the remembered positions, oldest first. The slice is owned by the kite.
func (k *Kite) Trail() []TrailPoint {
	return k.trail
}

// WanderTarget returns the AI's current steering target.
func (k *Kite) WanderTarget() (float64, float64) {
	return k.targetX, k.targetY
}

// Update advances the kite by one tick. Position integration is one Euler step per
// call regardless of Delta; Delta only drives the fade and wander timers.
func (k *Kite) Update(ctx UpdateContext) {
	if k.cut {
		k.Fade = math.Min(1, k.Fade+float64(ctx.Delta)/float64(k.spec.Physics.FadeDuration))
		return
	}

	k.VX += ctx.Wind.X
	k.VY += ctx.Wind.Y

	if k.Role == RoleAI {
		k.steer(ctx)
	}

	k.X += k.VX
	k.Y += k.VY

	k.bounce(ctx.Arena)

	if k.VX != 0 || k.VY != 0 {
		k.Angle = math.Atan2(k.VY, k.VX)
	}

	k.pushTrail()

	friction := k.spec.Physics.Friction
	k.VX *= friction
	k.VY *= friction
}

// steer runs the wander behavior: periodically pick a nearby target, then accelerate
// toward it. The acceleration scales with base speed × difficulty while the speed cap
// grows additively with difficulty.
func (k *Kite) steer(ctx UpdateContext) {
	k.directionTimer += ctx.Delta

	if k.directionTimer > k.spec.DirectionChangeInterval {
		k.directionTimer = 0
		k.wanderAngle = physics.NormalizeAngle(k.wanderAngle + physics.RandRange(k.rng, -math.Pi/2, math.Pi/2))

		inset := k.spec.WanderInset
		k.targetX = physics.Clamp(k.X+math.Cos(k.wanderAngle)*k.spec.WanderRadius, inset, ctx.Arena.Width-inset)
		k.targetY = physics.Clamp(k.Y+math.Sin(k.wanderAngle)*k.spec.WanderRadius, inset, ctx.Arena.Height-inset)
	}

	dx := k.targetX - k.X
	dy := k.targetY - k.Y
	dist := math.Sqrt(dx*dx + dy*dy)

	if dist > k.spec.Physics.ArrivalThreshold {
		accel := k.Speed * ctx.Difficulty * k.spec.Physics.SteerFactor
		k.VX += dx / dist * accel
		k.VY += dy / dist * accel
	}

	maxSpeed := math.Min(k.spec.MaxSpeed, k.spec.Speed+ctx.Difficulty)
	k.VX, k.VY = physics.ClampSpeed(k.VX, k.VY, maxSpeed)
}

// bounce clamps the kite inside the arena margin (one kite size) and reflects the
// offending velocity component outward at reduced magnitude.
func (k *Kite) bounce(arena Arena) {
	margin := k.Size
	damping := k.spec.Physics.BounceDamping

	if k.X < margin {
		k.X = margin
		k.VX = math.Abs(k.VX) * damping
	} else if k.X > arena.Width-margin {
		k.X = arena.Width - margin
		k.VX = -math.Abs(k.VX) * damping
	}

	if k.Y < margin {
		k.Y = margin
		k.VY = math.Abs(k.VY) * damping
	} else if k.Y > arena.Height-margin {
		k.Y = arena.Height - margin
		k.VY = -math.Abs(k.VY) * damping
	}
}

// pushTrail appends the current position, evicts the oldest beyond capacity and
// re-weights alpha so the oldest point is the faintest.
func (k *Kite) pushTrail() {
	k.trail = append(k.trail, TrailPoint{X: k.X, Y: k.Y, Alpha: 1})
	if len(k.trail) > k.spec.TrailLength {
		n := copy(k.trail, k.trail[len(k.trail)-k.spec.TrailLength:])
		k.trail = k.trail[:n]
	}
	n := float64(len(k.trail))
	for i := range k.trail {
		k.trail[i].Alpha = float64(i) / n
	}
}

// MoveTowards applies player steering input. (dx, dy) is a unit or zero vector.
// AI kites ignore it.
func (k *Kite) MoveTowards(dx, dy float64) {
	if k.Role != RolePlayer {
		return
	}
	thrust := k.spec.Physics.PlayerThrust
	k.VX += dx * thrust
	k.VY += dy * thrust
	k.VX, k.VY = physics.ClampSpeed(k.VX, k.VY, k.spec.MaxSpeed)
}

// CheckCollision reports whether both kites are alive and their circles overlap.
func (k *Kite) CheckCollision(other *Kite) bool {
	if k.cut || other.cut {
		return false
	}
	return physics.CirclesOverlap(k.X, k.Y, k.Radius(), other.X, other.Y, other.Radius())
}
