package object

import (
	"time"

	"github.com/tomz197/kitebattle/internal/draw"
	"gonum.org/v1/gonum/spatial/r2"
)

// UpdateContext provides all the information an object needs during update.
type UpdateContext struct {
	Delta      time.Duration // Elapsed time; drives timers only, not integration
	Wind       r2.Vec        // Ambient force added to velocity each tick
	Difficulty float64       // Difficulty multiplier (>= 1)
	Arena      Arena         // Current arena bounds
}

// DrawContext provides drawing resources for objects.
type DrawContext struct {
	Canvas  *draw.Canvas  // Logical coordinates are arena coordinates
	Arena   Arena
	Elapsed time.Duration // Session time, drives cosmetic animation
}

// Arena is the bounded playing field.
type Arena struct {
	Width  float64
	Height float64
}

// Center returns the arena center point.
func (a Arena) Center() (float64, float64) {
	return a.Width / 2, a.Height / 2
}

// Contains reports whether (x, y) lies within [margin, size-margin] on both axes.
func (a Arena) Contains(x, y, margin float64) bool {
	return x >= margin && x <= a.Width-margin && y >= margin && y <= a.Height-margin
}

// Object is a drawable and updatable game entity.
type Object interface {
	Update(ctx UpdateContext)
	Draw(ctx DrawContext)
}
