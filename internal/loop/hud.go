package loop

import (
	"github.com/charmbracelet/log"
	"github.com/tomz197/kitebattle/internal/engine"
	"github.com/tomz197/kitebattle/internal/store"
)

// hud mirrors the engine notifications the screens display.
type hud struct {
	scores *store.Board
	log    *log.Logger

	phase     engine.Phase
	score     int
	highScore int
	lives     int
	combo     int
	top       []store.Entry
}

var _ engine.Observer = (*hud)(nil)

func newHUD(scores *store.Board, logger *log.Logger) *hud {
	return &hud{scores: scores, log: logger}
}

// sync copies the engine's current values, used once before any notification.
func (h *hud) sync(e *engine.Engine) {
	h.phase = e.Phase()
	h.score = e.Score()
	h.highScore = e.HighScore()
	h.lives = e.Lives()
	h.combo = e.Combo()
	h.refreshTop()
}

func (h *hud) PhaseChanged(phase engine.Phase) {
	h.phase = phase
	h.log.Debug("phase changed", "phase", phase)
	if phase == engine.PhaseMenu || phase == engine.PhaseGameOver {
		h.refreshTop()
	}
}

func (h *hud) ScoreChanged(score, highScore int) {
	h.score = score
	h.highScore = highScore
}

func (h *hud) LivesChanged(lives int) {
	h.lives = lives
}

func (h *hud) ComboChanged(combo int) {
	h.combo = combo
}

// refreshTop reloads the leaderboard. A broken score table only hides it.
func (h *hud) refreshTop() {
	if h.scores == nil {
		return
	}
	top, err := h.scores.Top(topScoreCount)
	if err != nil {
		h.log.Warn("loading top scores failed", "err", err)
		return
	}
	h.top = top
}
