package object

import (
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/tomz197/kitebattle/internal/config"
	"github.com/tomz197/kitebattle/internal/draw"
	"gonum.org/v1/gonum/spatial/r2"
)

const tick = 16 * time.Millisecond

var testArena = Arena{Width: 1280, Height: 720}

func testSpecs(t *testing.T) (player, ai *KiteSpec) {
	t.Helper()
	cfg := config.Default()
	player, err := NewKiteSpec(cfg.Player, cfg.Physics)
	if err != nil {
		t.Fatalf("player spec: %v", err)
	}
	ai, err = NewKiteSpec(cfg.AI, cfg.Physics)
	if err != nil {
		t.Fatalf("ai spec: %v", err)
	}
	return player, ai
}

func ctxWith(wind r2.Vec, difficulty float64) UpdateContext {
	return UpdateContext{Delta: tick, Wind: wind, Difficulty: difficulty, Arena: testArena}
}

func TestParsePalette(t *testing.T) {
	if _, err := ParsePalette(nil); err == nil {
		t.Error("empty palette accepted")
	}
	if _, err := ParsePalette([]string{"#00ffff", "not-a-color"}); err == nil {
		t.Error("invalid color accepted")
	}
	p, err := ParsePalette([]string{"#ff0000"})
	if err != nil {
		t.Fatal(err)
	}
	if r, g, b := p[0].RGB255(); r != 255 || g != 0 || b != 0 {
		t.Errorf("parsed #ff0000 as %d,%d,%d", r, g, b)
	}
}

func TestNewKiteRoles(t *testing.T) {
	playerSpec, aiSpec := testSpecs(t)
	rng := rand.New(rand.NewSource(1))

	p := NewKite(640, 360, RolePlayer, playerSpec, rng)
	if p.Size != 90 || p.Speed != 6 || p.Color != playerSpec.Palette[0] {
		t.Errorf("player kite = size %v speed %v color %v", p.Size, p.Speed, p.Color)
	}
	if !p.IsAlive() || p.Fade != 0 {
		t.Error("new kite not alive")
	}

	a := NewKite(300, 200, RoleAI, aiSpec, rng)
	if a.Size != 80 || a.Speed != 2 {
		t.Errorf("ai kite = size %v speed %v", a.Size, a.Speed)
	}
	if tx, ty := a.WanderTarget(); tx != 300 || ty != 200 {
		t.Errorf("ai wander target = (%v, %v), want spawn point", tx, ty)
	}
}

func TestNewKiteAtEdge(t *testing.T) {
	_, aiSpec := testSpecs(t)
	rng := rand.New(rand.NewSource(7))

	for i := 0; i < 200; i++ {
		k := NewKiteAtEdge(testArena, 100, 50, aiSpec, rng)
		onEdge := k.X == 50 || k.X == testArena.Width-50 || k.Y == 50 || k.Y == testArena.Height-50
		if !onEdge {
			t.Fatalf("spawn (%v, %v) not snapped to an edge", k.X, k.Y)
		}
		if !testArena.Contains(k.X, k.Y, 50) {
			t.Fatalf("spawn (%v, %v) outside arena", k.X, k.Y)
		}
		if k.Role != RoleAI {
			t.Fatalf("edge spawn role = %v", k.Role)
		}
	}
}

func TestKiteStaysInBounds(t *testing.T) {
	playerSpec, aiSpec := testSpecs(t)
	rng := rand.New(rand.NewSource(3))

	kites := []*Kite{
		NewKite(640, 360, RolePlayer, playerSpec, rng),
		NewKite(100, 100, RoleAI, aiSpec, rng),
		NewKite(1200, 650, RoleAI, aiSpec, rng),
	}

	wind := r2.Vec{X: 0.3, Y: -0.3}
	for step := 0; step < 2000; step++ {
		for _, k := range kites {
			if k.Role == RolePlayer {
				k.MoveTowards(1, 0)
			}
			k.Update(ctxWith(wind, 2.5))
			if !testArena.Contains(k.X, k.Y, k.Size) {
				t.Fatalf("step %d: %v kite at (%v, %v) left the arena margin", step, k.Role, k.X, k.Y)
			}
		}
	}
}

func TestBounceReflectsVelocity(t *testing.T) {
	playerSpec, _ := testSpecs(t)
	k := NewKite(100, 360, RolePlayer, playerSpec, rand.New(rand.NewSource(1)))
	k.VX = -20

	k.Update(ctxWith(r2.Vec{}, 1))

	if k.X != k.Size {
		t.Errorf("X = %v, want clamped to %v", k.X, k.Size)
	}
	// Reflected at half magnitude, then friction.
	want := 20 * 0.5 * 0.96
	if math.Abs(k.VX-want) > 1e-9 {
		t.Errorf("VX = %v, want %v", k.VX, want)
	}
}

func TestCheckCollision(t *testing.T) {
	playerSpec, aiSpec := testSpecs(t)
	rng := rand.New(rand.NewSource(1))

	tests := []struct {
		name string
		dx   float64
		want bool
	}{
		{"overlapping", 50, true},
		{"touching", 85, false}, // radii 45 + 40
		{"apart", 200, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewKite(400, 400, RolePlayer, playerSpec, rng)
			b := NewKite(400+tt.dx, 400, RoleAI, aiSpec, rng)
			if got := a.CheckCollision(b); got != tt.want {
				t.Errorf("a.CheckCollision(b) = %v, want %v", got, tt.want)
			}
			if got := b.CheckCollision(a); got != tt.want {
				t.Errorf("b.CheckCollision(a) = %v, want %v", got, tt.want)
			}
		})
	}

	a := NewKite(400, 400, RoleAI, aiSpec, rng)
	b := NewKite(410, 400, RoleAI, aiSpec, rng)
	b.Cut()
	if a.CheckCollision(b) || b.CheckCollision(a) {
		t.Error("cut kite still collides")
	}
}

func TestCutAndFade(t *testing.T) {
	_, aiSpec := testSpecs(t)
	k := NewKite(500, 300, RoleAI, aiSpec, rand.New(rand.NewSource(1)))
	k.VX, k.VY = 3, 3

	k.Cut()
	k.Cut()
	if k.IsAlive() {
		t.Fatal("kite alive after Cut")
	}
	if k.Fade != 0 {
		t.Fatalf("Fade = %v right after cut, want 0", k.Fade)
	}

	ctx := ctxWith(r2.Vec{X: 0.3}, 1)
	ctx.Delta = 100 * time.Millisecond
	for i := 0; i < 4; i++ {
		k.Update(ctx)
	}
	if k.Faded() {
		t.Fatalf("faded after 400ms, Fade = %v", k.Fade)
	}
	if math.Abs(k.Fade-0.8) > 1e-9 {
		t.Errorf("Fade after 400ms = %v, want 0.8", k.Fade)
	}

	k.Update(ctx)
	k.Update(ctx)
	if !k.Faded() || k.Fade != 1 {
		t.Errorf("Fade after 600ms = %v, want capped at 1", k.Fade)
	}
	if k.X != 500 || k.Y != 300 {
		t.Errorf("cut kite moved to (%v, %v)", k.X, k.Y)
	}
}

func TestTrailCapacityAndAlpha(t *testing.T) {
	playerSpec, _ := testSpecs(t)
	k := NewKite(640, 360, RolePlayer, playerSpec, rand.New(rand.NewSource(1)))

	for i := 0; i < 40; i++ {
		k.MoveTowards(0, 1)
		k.Update(ctxWith(r2.Vec{}, 1))
		if len(k.Trail()) > playerSpec.TrailLength {
			t.Fatalf("trail length %d exceeds %d", len(k.Trail()), playerSpec.TrailLength)
		}
	}

	trail := k.Trail()
	if len(trail) != playerSpec.TrailLength {
		t.Fatalf("trail length = %d, want %d", len(trail), playerSpec.TrailLength)
	}
	n := float64(len(trail))
	for i, p := range trail {
		if want := float64(i) / n; math.Abs(p.Alpha-want) > 1e-12 {
			t.Errorf("trail[%d].Alpha = %v, want %v", i, p.Alpha, want)
		}
	}
	last := trail[len(trail)-1]
	if last.X != k.X || last.Y != k.Y {
		t.Errorf("newest trail point (%v, %v) != kite position (%v, %v)", last.X, last.Y, k.X, k.Y)
	}
}

func TestPlayerSpeedClamp(t *testing.T) {
	playerSpec, _ := testSpecs(t)
	k := NewKite(640, 360, RolePlayer, playerSpec, rand.New(rand.NewSource(1)))

	s := 1 / math.Sqrt2
	for i := 0; i < 50; i++ {
		k.MoveTowards(s, s)
		if speed := math.Hypot(k.VX, k.VY); speed > playerSpec.MaxSpeed+1e-9 {
			t.Fatalf("speed %v exceeds %v", speed, playerSpec.MaxSpeed)
		}
	}
	if speed := math.Hypot(k.VX, k.VY); math.Abs(speed-playerSpec.MaxSpeed) > 1e-9 {
		t.Errorf("sustained input speed = %v, want %v", speed, playerSpec.MaxSpeed)
	}
}

func TestMoveTowardsIgnoredForAI(t *testing.T) {
	_, aiSpec := testSpecs(t)
	k := NewKite(640, 360, RoleAI, aiSpec, rand.New(rand.NewSource(1)))
	k.MoveTowards(1, 0)
	if k.VX != 0 || k.VY != 0 {
		t.Errorf("AI velocity changed to (%v, %v)", k.VX, k.VY)
	}
}

func TestAISpeedCapGrowsWithDifficulty(t *testing.T) {
	_, aiSpec := testSpecs(t)

	tests := []struct {
		difficulty float64
		cap        float64
	}{
		{1, 3},
		{2.5, 4.5},
		{10, 6},
	}
	for _, tt := range tests {
		rng := rand.New(rand.NewSource(5))
		k := NewKite(640, 360, RoleAI, aiSpec, rng)
		for i := 0; i < 500; i++ {
			k.Update(ctxWith(r2.Vec{X: 0.3}, tt.difficulty))
			// Friction is applied after the cap, so the stored speed stays below it.
			if speed := math.Hypot(k.VX, k.VY); speed > tt.cap+1e-9 {
				t.Fatalf("difficulty %v: speed %v exceeds cap %v", tt.difficulty, speed, tt.cap)
			}
		}
	}
}

func TestWanderTargetStaysInset(t *testing.T) {
	_, aiSpec := testSpecs(t)
	k := NewKite(100, 100, RoleAI, aiSpec, rand.New(rand.NewSource(11)))

	ctx := ctxWith(r2.Vec{}, 1)
	ctx.Delta = 500 * time.Millisecond
	for i := 0; i < 200; i++ {
		k.Update(ctx)
		tx, ty := k.WanderTarget()
		if !testArena.Contains(tx, ty, aiSpec.WanderInset) {
			t.Fatalf("wander target (%v, %v) outside inset", tx, ty)
		}
	}
}

func TestParticleSystemLifecycle(t *testing.T) {
	cfg := config.Default().Particles
	ps := NewParticleSystem(cfg, rand.New(rand.NewSource(1)))

	ps.Emit(100, 100, draw.Background, 20)
	ps.Emit(200, 100, draw.Background, 0)
	if ps.Len() != 20+cfg.Count {
		t.Fatalf("Len = %d, want %d", ps.Len(), 20+cfg.Count)
	}

	ps.Each(func(p *Particle) {
		speed := math.Hypot(p.VX, p.VY)
		if speed < cfg.SpeedMin-1e-9 || speed > cfg.SpeedMax+1e-9 {
			t.Errorf("initial speed %v outside [%v, %v]", speed, cfg.SpeedMin, cfg.SpeedMax)
		}
		if p.Size < cfg.SizeMin || p.Size > cfg.SizeMax {
			t.Errorf("size %v outside [%v, %v]", p.Size, cfg.SizeMin, cfg.SizeMax)
		}
		if math.Abs(p.Spin) > cfg.Spin {
			t.Errorf("spin %v outside ±%v", p.Spin, cfg.Spin)
		}
	})

	for i := 0; i < 5; i++ {
		ps.Update(100 * time.Millisecond)
	}
	if ps.Len() != 20+cfg.Count {
		t.Fatalf("particles expired early: Len = %d after 500ms", ps.Len())
	}

	ps.Update(100 * time.Millisecond)
	if ps.Len() != 0 {
		t.Errorf("Len = %d after 600ms, want 0", ps.Len())
	}
}

func TestParticleStep(t *testing.T) {
	p := &Particle{X: 10, Y: 10, VX: 2, VY: -1, Spin: 0.1, Lifetime: time.Second}
	p.step(tick, 0.15, 0.98)

	if p.X != 12 || p.Y != 9 {
		t.Errorf("position = (%v, %v), want (12, 9)", p.X, p.Y)
	}
	if want := 2 * 0.98; math.Abs(p.VX-want) > 1e-12 {
		t.Errorf("VX = %v, want %v", p.VX, want)
	}
	if want := (-1 + 0.15) * 0.98; math.Abs(p.VY-want) > 1e-12 {
		t.Errorf("VY = %v, want %v", p.VY, want)
	}
	if p.Rotation != 0.1 || p.Age != tick {
		t.Errorf("rotation %v age %v", p.Rotation, p.Age)
	}
}

func TestParticleSystemClear(t *testing.T) {
	ps := NewParticleSystem(config.Default().Particles, rand.New(rand.NewSource(1)))
	ps.Emit(0, 0, draw.Background, 10)
	ps.Clear()
	if ps.Len() != 0 {
		t.Errorf("Len = %d after Clear", ps.Len())
	}
}

func TestKiteDrawsOnCanvas(t *testing.T) {
	playerSpec, _ := testSpecs(t)
	k := NewKite(640, 360, RolePlayer, playerSpec, rand.New(rand.NewSource(1)))
	canvas := draw.NewScaledCanvas(128, 36, testArena.Width, testArena.Height)

	k.Draw(DrawContext{Canvas: canvas, Arena: testArena})
	if _, ok := canvas.Pixel(64, 36); !ok {
		t.Error("kite center not drawn")
	}

	canvas.Clear()
	k.Cut()
	k.Fade = 1
	k.Draw(DrawContext{Canvas: canvas, Arena: testArena})
	if _, ok := canvas.Pixel(64, 36); ok {
		t.Error("fully faded kite still drawn")
	}
}
