package physics

import (
	"math"
	"math/rand"
	"sort"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"
)

func TestNormalizeAngle(t *testing.T) {
	tests := []struct {
		name string
		in   float64
		want float64
	}{
		{"zero", 0, 0},
		{"inside range", 1, 1},
		{"full turn", 2 * math.Pi, 0},
		{"negative", -math.Pi / 2, 3 * math.Pi / 2},
		{"several turns", 5*math.Pi + 0.25, math.Pi + 0.25},
		{"several negative turns", -4*math.Pi - 0.5, 2*math.Pi - 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeAngle(tt.in)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("NormalizeAngle(%v) = %v, want %v", tt.in, got, tt.want)
			}
			if got < 0 || got >= 2*math.Pi {
				t.Errorf("NormalizeAngle(%v) = %v out of [0, 2π)", tt.in, got)
			}
		})
	}
}

func TestClamp(t *testing.T) {
	tests := []struct {
		v, lo, hi, want float64
	}{
		{5, 0, 10, 5},
		{-1, 0, 10, 0},
		{11, 0, 10, 10},
		{5, 8, 2, 8}, // inverted bounds resolve to lo
	}
	for _, tt := range tests {
		if got := Clamp(tt.v, tt.lo, tt.hi); got != tt.want {
			t.Errorf("Clamp(%v, %v, %v) = %v, want %v", tt.v, tt.lo, tt.hi, got, tt.want)
		}
	}
}

func TestCirclesOverlapIsStrict(t *testing.T) {
	if CirclesOverlap(0, 0, 5, 10, 0, 5) {
		t.Error("touching circles should not overlap")
	}
	if !CirclesOverlap(0, 0, 5, 9.99, 0, 5) {
		t.Error("intersecting circles should overlap")
	}
	if got := Distance(0, 0, 3, 4); got != 5 {
		t.Errorf("Distance = %v, want 5", got)
	}
}

func TestClampSpeedPreservesDirection(t *testing.T) {
	vx, vy := ClampSpeed(30, 40, 5)
	if math.Abs(vx-3) > 1e-9 || math.Abs(vy-4) > 1e-9 {
		t.Errorf("ClampSpeed = (%v, %v), want (3, 4)", vx, vy)
	}
	vx, vy = ClampSpeed(1, 1, 5)
	if vx != 1 || vy != 1 {
		t.Errorf("ClampSpeed below cap changed velocity to (%v, %v)", vx, vy)
	}
}

func TestVectorHelpers(t *testing.T) {
	if got := Normalize(r2.Vec{}); got != (r2.Vec{}) {
		t.Errorf("Normalize(zero) = %v, want zero", got)
	}
	u := Normalize(r2.Vec{X: 1, Y: 1})
	if math.Abs(r2.Norm(u)-1) > 1e-9 {
		t.Errorf("Normalize length = %v, want 1", r2.Norm(u))
	}
	l := LimitLength(r2.Vec{X: 0, Y: 10}, 2)
	if math.Abs(l.Y-2) > 1e-9 || l.X != 0 {
		t.Errorf("LimitLength = %v, want (0, 2)", l)
	}
	p := Polar(math.Pi/2, 3)
	if math.Abs(p.X) > 1e-9 || math.Abs(p.Y-3) > 1e-9 {
		t.Errorf("Polar = %v, want (0, 3)", p)
	}
}

func TestRandRangeBounds(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 1000; i++ {
		v := RandRange(rng, -2, 3)
		if v < -2 || v >= 3 {
			t.Fatalf("RandRange out of bounds: %v", v)
		}
		a := RandAngle(rng)
		if a < 0 || a >= 2*math.Pi {
			t.Fatalf("RandAngle out of bounds: %v", a)
		}
	}
}

func TestSpatialGridFindsNeighbors(t *testing.T) {
	g := NewSpatialGrid(400, 300, 80)
	points := [][2]float64{
		{10, 10},   // 0
		{70, 20},   // 1: same neighborhood as 0
		{390, 290}, // 2: far corner
		{-50, 500}, // 3: outside, clamped into bottom-left cell
	}
	for i, p := range points {
		g.Insert(p[0], p[1], i)
	}

	collect := func(x, y float64) []int {
		var got []int
		g.QueryAround(x, y, func(i int) bool {
			got = append(got, i)
			return false
		})
		sort.Ints(got)
		return got
	}

	near := collect(10, 10)
	if len(near) != 2 || near[0] != 0 || near[1] != 1 {
		t.Errorf("neighbors of (10,10) = %v, want [0 1]", near)
	}
	corner := collect(390, 290)
	if len(corner) != 1 || corner[0] != 2 {
		t.Errorf("neighbors of far corner = %v, want [2]", corner)
	}
	edge := collect(0, 299)
	if len(edge) != 1 || edge[0] != 3 {
		t.Errorf("neighbors of bottom-left = %v, want [3]", edge)
	}

	g.Clear()
	if got := collect(10, 10); len(got) != 0 {
		t.Errorf("after Clear got %v, want none", got)
	}
}

func TestSpatialGridEarlyStop(t *testing.T) {
	g := NewSpatialGrid(100, 100, 50)
	for i := 0; i < 5; i++ {
		g.Insert(10, 10, i)
	}
	calls := 0
	g.QueryAround(10, 10, func(int) bool {
		calls++
		return true
	})
	if calls != 1 {
		t.Errorf("QueryAround kept iterating after stop: %d calls", calls)
	}
}
