package engine

import (
	"slices"
)

// resolveCollisions runs the player pass, then the AI pass. It reports whether
// the session ended during the AI pass.
func (e *Engine) resolveCollisions() bool {
	if e.player == nil || !e.player.IsAlive() {
		return false
	}
	e.resolvePlayerCollisions()
	return e.resolveAICollisions()
}

// resolvePlayerCollisions purges fully faded kites and lets the player cut
// every alive AI kite it touches. Iterates backwards so removal keeps order.
func (e *Engine) resolvePlayerCollisions() {
	for i := len(e.ai) - 1; i >= 0; i-- {
		k := e.ai[i]

		if !k.IsAlive() {
			if k.Faded() {
				e.ai = slices.Delete(e.ai, i, i+1)
			}
			continue
		}

		if !e.player.CheckCollision(k) {
			continue
		}

		k.Cut()
		e.particles.Emit(k.X, k.Y, k.Color, e.cfg.Score.PlayerCutBurst)

		e.combo++
		e.comboTimer = e.cfg.Score.ComboTimeout
		e.score += e.cfg.Score.CutBase + (e.combo-1)*e.cfg.Score.ComboMultiplier

		e.stats.Cuts++
		e.stats.BestCombo = max(e.stats.BestCombo, e.combo)

		e.notifyScore()
		e.notifyCombo()
	}
}

// resolveAICollisions cuts AI kites that run into each other. For each alive kite
// only its first colliding partner with a higher index is processed, and the
// partner is the one cut. Every such cut costs a life.
func (e *Engine) resolveAICollisions() bool {
	e.grid.Clear()
	for i, k := range e.ai {
		if k.IsAlive() {
			e.grid.Insert(k.X, k.Y, i)
		}
	}

	for i, k := range e.ai {
		if !k.IsAlive() {
			continue
		}
		j := e.firstAICollision(i)
		if j < 0 {
			continue
		}

		victim := e.ai[j]
		victim.Cut()
		e.particles.Emit(victim.X, victim.Y, victim.Color, e.cfg.Score.AICutBurst)

		e.lives--
		e.stats.AICollisions++
		e.notifyLives()

		if e.lives <= 0 {
			e.gameOver()
			return true
		}
	}
	return false
}

// firstAICollision returns the lowest index j > i of an alive AI kite colliding
// with kite i, or -1.
func (e *Engine) firstAICollision(i int) int {
	k := e.ai[i]
	first := -1
	e.grid.QueryAround(k.X, k.Y, func(j int) bool {
		if j <= i || (first >= 0 && j >= first) {
			return false
		}
		if k.CheckCollision(e.ai[j]) {
			first = j
		}
		return false
	})
	return first
}
