package engine

import (
	"time"

	"github.com/tomz197/kitebattle/internal/object"
	"github.com/tomz197/kitebattle/internal/physics"
)

// Advance ticks the simulation by the wall time elapsed since the previous
// Advance, StartGame or Resume.
func (e *Engine) Advance(now time.Time) {
	if e.tornDown || e.phase != PhasePlaying {
		return
	}
	delta := now.Sub(e.lastAdvance)
	e.lastAdvance = now
	e.Tick(delta)
}

// Tick advances a running session by delta, clamped to [0, max frame delta].
// Outside the playing phase it does nothing.
func (e *Engine) Tick(delta time.Duration) {
	if e.tornDown || e.phase != PhasePlaying {
		return
	}
	delta = min(max(delta, 0), e.cfg.Game.MaxFrameDelta)
	e.stats.PlayTime += delta

	e.updateWind(delta)
	e.updateDifficulty(delta)
	e.updateSpawning(delta)

	if e.player != nil && e.player.IsAlive() && (e.intent.X != 0 || e.intent.Y != 0) {
		e.player.MoveTowards(e.intent.X, e.intent.Y)
	}

	// The player ignores difficulty.
	if e.player != nil {
		e.player.Update(e.updateContext(delta, 1))
	}
	aiCtx := e.updateContext(delta, e.difficulty)
	for _, k := range e.ai {
		k.Update(aiCtx)
	}

	e.particles.Update(delta)

	if ended := e.resolveCollisions(); ended {
		return
	}

	e.updateCombo(delta)
}

func (e *Engine) updateContext(delta time.Duration, difficulty float64) object.UpdateContext {
	return object.UpdateContext{
		Delta:      delta,
		Wind:       e.wind,
		Difficulty: difficulty,
		Arena:      e.arena,
	}
}

// updateWind resamples the wind once the change interval is exceeded.
func (e *Engine) updateWind(delta time.Duration) {
	e.windTimer += delta
	if e.windTimer <= e.cfg.Wind.ChangeInterval {
		return
	}
	e.windTimer = 0

	angle := physics.RandAngle(e.rng)
	strength := physics.RandRange(e.rng, 0, e.cfg.Wind.MaxStrength)
	e.wind = physics.Polar(angle, strength)
}

// updateDifficulty raises the multiplier by one step per interval. It never decreases.
func (e *Engine) updateDifficulty(delta time.Duration) {
	e.difficultyTimer += delta
	if e.difficultyTimer <= e.cfg.Difficulty.Interval {
		return
	}
	e.difficultyTimer = 0
	e.difficulty += e.cfg.Difficulty.Step
	e.log.Debug("difficulty increased", "difficulty", e.difficulty)
}

// updateSpawning adds an AI kite once the spawn interval, shortened by the
// difficulty multiplier, is exceeded.
func (e *Engine) updateSpawning(delta time.Duration) {
	e.spawnTimer += delta
	if e.spawnTimer <= e.spawnInterval() {
		return
	}
	e.spawnTimer = 0
	e.spawnAIKite()
}

func (e *Engine) spawnInterval() time.Duration {
	return time.Duration(float64(e.cfg.Game.SpawnInterval) / e.difficulty)
}

// updateCombo closes the combo window once it runs out.
func (e *Engine) updateCombo(delta time.Duration) {
	if e.combo <= 0 {
		return
	}
	e.comboTimer -= delta
	if e.comboTimer <= 0 {
		e.combo = 0
		e.comboTimer = 0
		e.notifyCombo()
	}
}
